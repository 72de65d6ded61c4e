package content

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/involv/contentd/internal/model"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func doc(id, typ, slug, published string, sites ...string) map[string]any {
	return map[string]any{
		"_id":         id,
		"_type":       typ,
		"slug":        slug,
		"title":       "Title " + id,
		"publishedAt": published,
		"_updatedAt":  published,
		"sites":       sites,
	}
}

func with(d map[string]any, kv ...any) map[string]any {
	for i := 0; i+1 < len(kv); i += 2 {
		d[kv[i].(string)] = kv[i+1]
	}
	return d
}

func fivePosts() *memStore {
	s := &memStore{}
	for day := 1; day <= 5; day++ {
		id := fmt.Sprintf("post-%d", day)
		s.docs = append(s.docs, doc(id, "post", id, fmt.Sprintf("2025-01-0%dT09:00:00Z", day), "involv"))
	}
	s.docs = append(s.docs, doc("other-1", "post", "other-1", "2025-02-01T09:00:00Z", "advisory"))
	return s
}

func ids(items []model.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Doc().ID)
	}
	return out
}

func TestList_SiteFilterSortedAndLimited(t *testing.T) {
	store := fivePosts()
	svc := NewService(store, testLogger())

	posts, err := svc.ListPosts(context.Background(), ListOptions{Site: "involv", Limit: Limit(3)})
	require.NoError(t, err)
	require.Len(t, posts, 3)

	var got []string
	for _, p := range posts {
		got = append(got, p.PublishedAt[:10])
	}
	assert.Equal(t, []string{"2025-01-05", "2025-01-04", "2025-01-03"}, got)

	require.Len(t, store.queries, 1)
	assert.True(t, strings.HasPrefix(store.queries[0],
		"*[_type == $type && $sites in sites] | order(publishedAt desc, _id asc) [0...3] {"),
		"query = %s", store.queries[0])
	assert.Equal(t, "involv", store.params[0]["sites"])
}

func TestList_NoLimitReturnsAll(t *testing.T) {
	svc := NewService(fivePosts(), testLogger())

	items, err := svc.List(context.Background(), model.TypePost, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, items, 6)
	assert.Equal(t, "other-1", items[0].Doc().ID)
}

func TestList_EmptyResultIsNotNil(t *testing.T) {
	svc := NewService(&memStore{}, testLogger())

	items, err := svc.List(context.Background(), model.TypeWebinar, ListOptions{Site: "involv"})
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestList_PrefixStability(t *testing.T) {
	store := fivePosts()
	// Equal timestamps exercise the _id tie-breaker.
	store.docs = append(store.docs,
		doc("post-b", "post", "post-b", "2025-01-03T09:00:00Z", "involv"),
		doc("post-a", "post", "post-a", "2025-01-03T09:00:00Z", "involv"),
	)
	svc := NewService(store, testLogger())
	ctx := context.Background()

	for k := 0; k <= 7; k++ {
		for m := 0; m <= 3; m++ {
			small, err := svc.List(ctx, model.TypePost, ListOptions{Site: "involv", Limit: Limit(k)})
			require.NoError(t, err)
			wide, err := svc.List(ctx, model.TypePost, ListOptions{Site: "involv", Limit: Limit(k + m)})
			require.NoError(t, err)

			require.LessOrEqual(t, len(small), len(wide))
			assert.Equal(t, ids(small), ids(wide)[:len(small)], "limit %d vs %d", k, k+m)
		}
	}
}

func jobStore() *memStore {
	return &memStore{docs: []map[string]any{
		with(doc("job-1", "jobPosting", "analyst", "2025-03-01T00:00:00Z", "involv"), "status", "open", "department", "Compliance"),
		with(doc("job-2", "jobPosting", "manager", "2025-03-02T00:00:00Z", "involv"), "status", "closed", "department", "Operations"),
		with(doc("job-3", "jobPosting", "advisor", "2025-03-03T00:00:00Z", "advisory"), "status", "open", "department", "Advisory"),
		with(doc("job-4", "jobPosting", "counsel", "2025-03-04T00:00:00Z", "involv", "advisory"), "status", "open", "department", "Risk & Compliance"),
		with(doc("job-5", "jobPosting", "intern", "2025-03-05T00:00:00Z", "involv"), "status", "open"),
	}}
}

func TestList_SecondaryFilter(t *testing.T) {
	svc := NewService(jobStore(), testLogger())

	jobs, err := svc.ListJobPostings(context.Background(), ListOptions{
		Site:  "involv",
		Match: &Match{Field: "status", Value: "open"},
	})
	require.NoError(t, err)

	var got []string
	for _, j := range jobs {
		assert.True(t, j.IsOpen())
		got = append(got, j.ID)
	}
	assert.Equal(t, []string{"job-5", "job-4", "job-1"}, got)
}

func TestList_FilterConjunction(t *testing.T) {
	svc := NewService(jobStore(), testLogger())
	ctx := context.Background()
	match := &Match{Field: "status", Value: "open"}

	both, err := svc.List(ctx, model.TypeJobPosting, ListOptions{Site: "involv", Match: match})
	require.NoError(t, err)
	siteOnly, err := svc.List(ctx, model.TypeJobPosting, ListOptions{Site: "involv"})
	require.NoError(t, err)
	matchOnly, err := svc.List(ctx, model.TypeJobPosting, ListOptions{Match: match})
	require.NoError(t, err)

	var intersection []string
	for _, id := range ids(siteOnly) {
		for _, other := range ids(matchOnly) {
			if id == other {
				intersection = append(intersection, id)
			}
		}
	}
	assert.ElementsMatch(t, intersection, ids(both))
}

func TestList_InvalidQueries(t *testing.T) {
	tests := []struct {
		name string
		typ  model.ContentType
		opts ListOptions
	}{
		{"unknown type", model.ContentType("page"), ListOptions{}},
		{"negative limit", model.TypePost, ListOptions{Limit: Limit(-1)}},
		{"field not filterable", model.TypePost, ListOptions{Match: &Match{Field: "status", Value: "open"}}},
		{"injection attempt", model.TypeJobPosting, ListOptions{Match: &Match{Field: "status || true", Value: "x"}}},
		{"non-scalar value", model.TypeJobPosting, ListOptions{Match: &Match{Field: "status", Value: []string{"open"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{}
			_, err := NewService(store, testLogger()).List(context.Background(), tt.typ, tt.opts)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidQuery)
			assert.NotErrorIs(t, err, ErrContentStore)
			assert.Zero(t, store.calls, "invalid queries must not reach the store")
		})
	}
}

func TestList_StoreFailureIsNotEmptyResult(t *testing.T) {
	svc := NewService(&memStore{err: errUnreachable}, testLogger())

	items, err := svc.List(context.Background(), model.TypePost, ListOptions{Site: "involv"})
	require.Error(t, err)
	assert.Nil(t, items)
	assert.ErrorIs(t, err, ErrContentStore)
	assert.ErrorIs(t, err, errUnreachable)

	var storeErr *StoreError
	require.True(t, errors.As(err, &storeErr))
	assert.Equal(t, model.TypePost, storeErr.Type)
}

func TestList_MalformedDocumentFails(t *testing.T) {
	store := &memStore{docs: []map[string]any{
		doc("post-1", "post", "post-1", "2025-01-01T00:00:00Z", "involv"),
		with(doc("post-2", "post", "post-2", "2025-01-02T00:00:00Z", "involv"), "title", ""),
	}}

	_, err := NewService(store, testLogger()).List(context.Background(), model.TypePost, ListOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrContentStore)
	assert.ErrorIs(t, err, model.ErrInvalidDocument)
}

func TestList_Denormalization(t *testing.T) {
	body := []map[string]any{{
		"_type":    "block",
		"children": []map[string]any{{"_type": "span", "text": strings.Repeat("word ", 400)}},
	}}
	store := &memStore{docs: []map[string]any{
		with(doc("post-1", "post", "post-1", "2025-01-01T00:00:00Z", "involv"),
			"body", body,
			"categories", []any{map[string]any{"_id": "cat-1", "title": "Gaming"}, nil},
			"mainImage", map[string]any{"alt": "Team", "asset": map[string]any{"_id": "image-a", "url": "https://cdn/a.png"}},
		),
	}}

	posts, err := NewService(store, testLogger()).ListPosts(context.Background(), ListOptions{})
	require.NoError(t, err)
	require.Len(t, posts, 1)

	p := posts[0]
	assert.Equal(t, 2, p.ReadingTime)
	assert.Equal(t, []model.Category{{ID: "cat-1", Title: "Gaming"}}, p.Categories)
	assert.Equal(t, "https://cdn/a.png", p.MainImage.URL())
}

func TestList_InlineObjectsDoNotFailDecode(t *testing.T) {
	body := []map[string]any{
		{
			"_type": "block",
			"children": []map[string]any{
				{"_type": "span", "text": strings.Repeat("word ", 400)},
				{"_type": "footnote", "text": []any{map[string]any{"_type": "block", "children": []any{}}}},
			},
		},
		{"_type": "callout", "children": "Read the annex"},
	}
	store := &memStore{docs: []map[string]any{
		with(doc("post-1", "post", "post-1", "2025-01-01T00:00:00Z", "involv"), "body", body),
	}}

	items, err := NewService(store, testLogger()).List(context.Background(), model.TypePost, ListOptions{Site: "involv"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Doc().ReadingTime)
}

func TestList_EmptyBodyReadingTimeFloor(t *testing.T) {
	store := &memStore{docs: []map[string]any{
		doc("news-1", "newsPress", "news-1", "2025-01-01T00:00:00Z", "involv"),
	}}

	items, err := NewService(store, testLogger()).List(context.Background(), model.TypeNewsPress, ListOptions{})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].Doc().ReadingTime)
}

func TestGetBySlug(t *testing.T) {
	svc := NewService(jobStore(), testLogger())
	ctx := context.Background()

	job, err := svc.GetJobPosting(ctx, "counsel", "advisory")
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "job-4", job.ID)

	job, err = svc.GetJobPosting(ctx, "manager", "advisory")
	require.NoError(t, err)
	assert.Nil(t, job, "site restriction should exclude job-2")
}

func TestGetBySlug_NotFoundVersusError(t *testing.T) {
	ctx := context.Background()

	item, err := NewService(fivePosts(), testLogger()).GetBySlug(ctx, model.TypePost, "missing", "")
	assert.NoError(t, err)
	assert.Nil(t, item)

	item, err = NewService(&memStore{err: errUnreachable}, testLogger()).GetBySlug(ctx, model.TypePost, "post-1", "")
	assert.Nil(t, item)
	assert.ErrorIs(t, err, ErrContentStore)
}

func TestGetBySlug_EmptySlug(t *testing.T) {
	store := &memStore{}
	_, err := NewService(store, testLogger()).GetBySlug(context.Background(), model.TypePost, "", "")
	assert.ErrorIs(t, err, ErrInvalidQuery)
	assert.Zero(t, store.calls)
}

func TestGetBySlug_DuplicateSlugReturnsMostRecentlyUpdated(t *testing.T) {
	store := &memStore{docs: []map[string]any{
		with(doc("news-old", "newsPress", "launch", "2025-01-01T00:00:00Z", "involv"), "_updatedAt", "2025-01-02T00:00:00Z"),
		with(doc("news-new", "newsPress", "launch", "2025-01-01T00:00:00Z", "involv"), "_updatedAt", "2025-06-01T00:00:00Z"),
	}}

	news, err := NewService(store, testLogger()).GetNews(context.Background(), "launch", "involv")
	require.NoError(t, err)
	require.NotNil(t, news)
	assert.Equal(t, "news-new", news.ID)
	assert.Contains(t, store.queries[0], "order(_updatedAt desc, _id asc) [0...2]")
}

func TestTypedWrappers(t *testing.T) {
	store := &memStore{docs: []map[string]any{
		doc("cs-1", "caseStudy", "cs-1", "2025-01-01T00:00:00Z", "involv"),
		doc("wp-1", "whitepaper", "wp-1", "2025-01-01T00:00:00Z", "involv"),
		with(doc("web-1", "webinar", "web-1", "2025-01-01T00:00:00Z", "involv"), "status", "scheduled", "scheduledAt", "2025-02-01T15:00:00Z"),
		doc("news-1", "newsPress", "news-1", "2025-01-01T00:00:00Z", "involv"),
	}}
	svc := NewService(store, testLogger())
	ctx := context.Background()

	cs, err := svc.ListCaseStudies(ctx, ListOptions{})
	require.NoError(t, err)
	assert.Len(t, cs, 1)

	wp, err := svc.GetWhitepaper(ctx, "wp-1", "")
	require.NoError(t, err)
	require.NotNil(t, wp)

	webinars, err := svc.ListWebinars(ctx, ListOptions{Match: &Match{Field: "status", Value: "scheduled"}})
	require.NoError(t, err)
	require.Len(t, webinars, 1)
	assert.Equal(t, model.WebinarScheduled, webinars[0].Status)

	news, err := svc.ListNews(ctx, ListOptions{Site: "other"})
	require.NoError(t, err)
	assert.Empty(t, news)

	post, err := svc.GetPost(ctx, "cs-1", "")
	require.NoError(t, err)
	assert.Nil(t, post)
}
