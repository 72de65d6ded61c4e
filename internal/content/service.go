// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package content is the read path over the CMS: it turns list and lookup
// requests into store queries and returns validated, denormalized content.
//
// Every call issues exactly one store round trip. Nothing is cached, and a
// store failure is always returned as an error wrapping ErrContentStore,
// never replaced by an empty result.
package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/involv/contentd/internal/groq"
	"github.com/involv/contentd/internal/model"
	"github.com/involv/contentd/internal/portabletext"
)

var (
	// ErrContentStore matches every failure to query or decode store content.
	ErrContentStore = errors.New("content store error")
	// ErrInvalidQuery is returned for requests that cannot be expressed.
	ErrInvalidQuery = errors.New("invalid content query")
)

// StoreError wraps a failed round trip or a response that could not be
// decoded into the requested content type.
type StoreError struct {
	Type model.ContentType
	Op   string
	Err  error
}

func (e *StoreError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Type, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying cause.
func (e *StoreError) Unwrap() error { return e.Err }

// Is reports true for ErrContentStore.
func (e *StoreError) Is(target error) bool { return target == ErrContentStore }

// Querier executes a GROQ query and decodes its result into dest.
// *sanity.Client implements it.
type Querier interface {
	Query(ctx context.Context, query string, params map[string]any, dest any) error
}

// Match is a single exact-equality constraint on a scalar field.
type Match struct {
	Field string
	Value any
}

// ListOptions narrows a list request. All set constraints are ANDed.
type ListOptions struct {
	// Site, when non-empty, requires the site to be in the item's sites.
	Site string
	// Match, when set, requires Field == Value.
	Match *Match
	// Limit, when set, keeps the first *Limit items after sorting.
	// Nil returns every matching item.
	Limit *int
}

// Limit returns a pointer for ListOptions.Limit.
func Limit(n int) *int {
	return &n
}

// Service answers content queries.
type Service struct {
	store  Querier
	logger *slog.Logger
}

// NewService creates a Service over store.
func NewService(store Querier, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: store, logger: logger}
}

// List returns the items of type t matching opts, sorted by the type's
// default order (newest first) and then truncated to opts.Limit. The
// result is never nil; nothing matching yields an empty slice.
func (s *Service) List(ctx context.Context, t model.ContentType, opts ListOptions) ([]model.Item, error) {
	sc, err := schemaFor(t)
	if err != nil {
		return nil, err
	}

	q, err := listQuery(t, sc, opts)
	if err != nil {
		return nil, err
	}
	text, params, err := q.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	var raw json.RawMessage
	if err := s.store.Query(ctx, text, params, &raw); err != nil {
		return nil, &StoreError{Type: t, Op: "list", Err: err}
	}

	items, err := sc.decode(raw)
	if err != nil {
		return nil, &StoreError{Type: t, Op: "decode", Err: err}
	}
	for _, item := range items {
		normalize(item, sc)
	}

	s.logger.DebugContext(ctx, "listed content", "type", t, "site", opts.Site, "count", len(items))
	return items, nil
}

func listQuery(t model.ContentType, sc schema, opts ListOptions) (*groq.Query, error) {
	q := groq.New().Where(groq.TypeIs(string(t)))

	if opts.Site != "" {
		q.Where(groq.Contains("sites", opts.Site))
	}
	if m := opts.Match; m != nil {
		if !sc.filterable[m.Field] {
			return nil, fmt.Errorf("%w: %s cannot be filtered by %q", ErrInvalidQuery, t, m.Field)
		}
		if !isScalar(m.Value) {
			return nil, fmt.Errorf("%w: filter value for %q must be a scalar", ErrInvalidQuery, m.Field)
		}
		q.Where(groq.Equals(m.Field, m.Value))
	}

	for _, o := range sc.order {
		q.OrderBy(o.Field, o.Direction)
	}
	q.OrderBy("_id", groq.Asc)

	if opts.Limit != nil {
		if *opts.Limit < 0 {
			return nil, fmt.Errorf("%w: negative limit %d", ErrInvalidQuery, *opts.Limit)
		}
		q.Limit(*opts.Limit)
	}

	return q.Project(sc.projection), nil
}

// GetBySlug returns the item of type t with the given slug, optionally
// restricted to site. It returns (nil, nil) when nothing matches.
//
// If several documents share the slug, the most recently updated one is
// returned and a warning is logged.
func (s *Service) GetBySlug(ctx context.Context, t model.ContentType, slug, site string) (model.Item, error) {
	sc, err := schemaFor(t)
	if err != nil {
		return nil, err
	}
	if slug == "" {
		return nil, fmt.Errorf("%w: empty slug", ErrInvalidQuery)
	}

	q := groq.New().Where(groq.TypeIs(string(t)), groq.Equals("slug.current", slug))
	if site != "" {
		q.Where(groq.Contains("sites", site))
	}
	// Two results are enough to detect a duplicate slug.
	q.OrderBy("_updatedAt", groq.Desc).OrderBy("_id", groq.Asc).Limit(2).Project(sc.projection)

	text, params, err := q.Build()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuery, err)
	}

	var raw json.RawMessage
	if err := s.store.Query(ctx, text, params, &raw); err != nil {
		return nil, &StoreError{Type: t, Op: "get", Err: err}
	}

	items, err := sc.decode(raw)
	if err != nil {
		return nil, &StoreError{Type: t, Op: "decode", Err: err}
	}
	if len(items) == 0 {
		return nil, nil
	}
	if len(items) > 1 {
		s.logger.WarnContext(ctx, "duplicate slug in content store",
			"type", t,
			"slug", slug,
			"site", site,
			"returned_id", items[0].Doc().ID,
			"duplicate_id", items[1].Doc().ID)
	}

	item := items[0]
	normalize(item, sc)
	return item, nil
}

// normalize applies the post-decode denormalization shared by all reads.
func normalize(item model.Item, sc schema) {
	doc := item.Doc()
	doc.DropDanglingCategories()
	if sc.readingTime {
		doc.ReadingTime = portabletext.EstimateReadingTime(doc.Body)
	}
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool, int, int32, int64, float32, float64:
		return true
	}
	return false
}
