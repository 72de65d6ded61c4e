package content

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/involv/contentd/internal/groq"
	"github.com/involv/contentd/internal/model"
	"github.com/involv/contentd/internal/util"
)

// Department is a distinct department among open job postings.
type Department struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// JobStats summarises job postings for one site.
type JobStats struct {
	Total       int          `json:"total"`
	Open        int          `json:"open"`
	Departments []Department `json:"departments"`
}

// JobStats computes posting counts and the departments with open
// postings. The aggregate is evaluated by the store in one round trip;
// either the whole summary is returned or an error.
func (s *Service) JobStats(ctx context.Context, site string) (*JobStats, error) {
	base := groq.New().Where(groq.TypeIs(string(model.TypeJobPosting)))
	if site != "" {
		base.Where(groq.Contains("sites", site))
	}
	open := base.Clone().Where(groq.Equals("status", model.JobStatusOpen))

	text, params, err := groq.NewAggregate().
		Count("total", base).
		Count("open", open).
		Distinct("departments", open, "department").
		Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	var raw struct {
		Total       *int      `json:"total"`
		Open        *int      `json:"open"`
		Departments []*string `json:"departments"`
	}
	if err := s.store.Query(ctx, text, params, &raw); err != nil {
		return nil, &StoreError{Type: model.TypeJobPosting, Op: "aggregate", Err: err}
	}
	if raw.Total == nil || raw.Open == nil {
		return nil, &StoreError{
			Type: model.TypeJobPosting,
			Op:   "aggregate",
			Err:  fmt.Errorf("%w: missing counts in aggregate result", model.ErrInvalidDocument),
		}
	}

	stats := &JobStats{
		Total:       *raw.Total,
		Open:        *raw.Open,
		Departments: make([]Department, 0, len(raw.Departments)),
	}
	seen := make(map[string]bool)
	for _, d := range raw.Departments {
		if d == nil || strings.TrimSpace(*d) == "" {
			continue
		}
		name := strings.TrimSpace(*d)
		if seen[name] {
			continue
		}
		seen[name] = true
		stats.Departments = append(stats.Departments, Department{Name: name, Slug: util.Slugify(name)})
	}
	sort.Slice(stats.Departments, func(i, j int) bool {
		return stats.Departments[i].Name < stats.Departments[j].Name
	})

	return stats, nil
}

// SitemapEntry identifies one public content URL.
type SitemapEntry struct {
	Type      model.ContentType `json:"_type"`
	Slug      string            `json:"slug"`
	UpdatedAt time.Time         `json:"_updatedAt"`
}

// SitemapEntries lists the slug and last update of every content item
// with a slug, across all content types, in one round trip.
func (s *Service) SitemapEntries(ctx context.Context, site string) ([]SitemapEntry, error) {
	types := make([]string, 0, len(model.ContentTypes))
	for _, t := range model.ContentTypes {
		types = append(types, string(t))
	}

	q := groq.New().Where(groq.TypeIn(types...), groq.Defined("slug.current"))
	if site != "" {
		q.Where(groq.Contains("sites", site))
	}
	q.OrderBy("_type", groq.Asc).
		OrderBy("slug.current", groq.Asc).
		Project(groq.Fields("_type", "_updatedAt").With(groq.Rename("slug", "slug.current")))

	text, params, err := q.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	var raw json.RawMessage
	if err := s.store.Query(ctx, text, params, &raw); err != nil {
		return nil, &StoreError{Op: "sitemap", Err: err}
	}

	entries := []SitemapEntry{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &entries); err != nil {
			return nil, &StoreError{Op: "sitemap", Err: err}
		}
	}
	if entries == nil {
		entries = []SitemapEntry{}
	}
	return entries, nil
}
