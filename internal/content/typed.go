package content

import (
	"context"
	"fmt"

	"github.com/involv/contentd/internal/model"
)

// listAs runs List and narrows the items to *T.
func listAs[T any, P itemPtr[T]](ctx context.Context, s *Service, opts ListOptions) ([]P, error) {
	var zero P
	items, err := s.List(ctx, zero.ContentType(), opts)
	if err != nil {
		return nil, err
	}

	out := make([]P, 0, len(items))
	for _, item := range items {
		typed, ok := item.(P)
		if !ok {
			return nil, fmt.Errorf("unexpected %T in %s list", item, zero.ContentType())
		}
		out = append(out, typed)
	}
	return out, nil
}

// getAs runs GetBySlug and narrows the item to *T.
func getAs[T any, P itemPtr[T]](ctx context.Context, s *Service, slug, site string) (P, error) {
	var zero P
	item, err := s.GetBySlug(ctx, zero.ContentType(), slug, site)
	if err != nil || item == nil {
		return nil, err
	}
	typed, ok := item.(P)
	if !ok {
		return nil, fmt.Errorf("unexpected %T for %s", item, zero.ContentType())
	}
	return typed, nil
}

// ListPosts lists insight articles.
func (s *Service) ListPosts(ctx context.Context, opts ListOptions) ([]*model.Post, error) {
	return listAs[model.Post](ctx, s, opts)
}

// GetPost returns the post with slug, or nil.
func (s *Service) GetPost(ctx context.Context, slug, site string) (*model.Post, error) {
	return getAs[model.Post](ctx, s, slug, site)
}

// ListCaseStudies lists case studies.
func (s *Service) ListCaseStudies(ctx context.Context, opts ListOptions) ([]*model.CaseStudy, error) {
	return listAs[model.CaseStudy](ctx, s, opts)
}

// GetCaseStudy returns the case study with slug, or nil.
func (s *Service) GetCaseStudy(ctx context.Context, slug, site string) (*model.CaseStudy, error) {
	return getAs[model.CaseStudy](ctx, s, slug, site)
}

// ListWhitepapers lists whitepapers.
func (s *Service) ListWhitepapers(ctx context.Context, opts ListOptions) ([]*model.Whitepaper, error) {
	return listAs[model.Whitepaper](ctx, s, opts)
}

// GetWhitepaper returns the whitepaper with slug, or nil.
func (s *Service) GetWhitepaper(ctx context.Context, slug, site string) (*model.Whitepaper, error) {
	return getAs[model.Whitepaper](ctx, s, slug, site)
}

// ListWebinars lists webinars, most recently scheduled first.
func (s *Service) ListWebinars(ctx context.Context, opts ListOptions) ([]*model.Webinar, error) {
	return listAs[model.Webinar](ctx, s, opts)
}

// GetWebinar returns the webinar with slug, or nil.
func (s *Service) GetWebinar(ctx context.Context, slug, site string) (*model.Webinar, error) {
	return getAs[model.Webinar](ctx, s, slug, site)
}

// ListJobPostings lists job postings.
func (s *Service) ListJobPostings(ctx context.Context, opts ListOptions) ([]*model.JobPosting, error) {
	return listAs[model.JobPosting](ctx, s, opts)
}

// GetJobPosting returns the job posting with slug, or nil.
func (s *Service) GetJobPosting(ctx context.Context, slug, site string) (*model.JobPosting, error) {
	return getAs[model.JobPosting](ctx, s, slug, site)
}

// ListNews lists news and press items.
func (s *Service) ListNews(ctx context.Context, opts ListOptions) ([]*model.NewsPress, error) {
	return listAs[model.NewsPress](ctx, s, opts)
}

// GetNews returns the news item with slug, or nil.
func (s *Service) GetNews(ctx context.Context, slug, site string) (*model.NewsPress, error) {
	return getAs[model.NewsPress](ctx, s, slug, site)
}
