// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/involv/contentd/internal/content"
	"github.com/involv/contentd/internal/imageurl"
	"github.com/involv/contentd/internal/model"
	"github.com/involv/contentd/internal/seo"
	"github.com/involv/contentd/internal/util"
)

// allSites disables the site constraint when passed as ?site=.
const allSites = "all"

// resolveSite returns the site constraint for a request: the default site
// when none is named, "" (no constraint) for "all".
func (h *Handler) resolveSite(r *http.Request) string {
	site := strings.TrimSpace(r.URL.Query().Get("site"))
	switch site {
	case "":
		return h.opts.DefaultSite
	case allSites:
		return ""
	}
	return site
}

// parseLimit reads ?limit=. Absent means MaxLimit; values above MaxLimit
// are clamped.
func (h *Handler) parseLimit(r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return h.opts.MaxLimit, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return min(n, h.opts.MaxLimit), true
}

// ListContent handles GET /api/v1/content/{type}.
func (h *Handler) ListContent(w http.ResponseWriter, r *http.Request) {
	t := model.ContentType(chi.URLParam(r, "type"))

	limit, ok := h.parseLimit(r)
	if !ok {
		WriteBadRequest(w, "Invalid limit", map[string]string{"limit": "must be a non-negative integer"})
		return
	}

	opts := content.ListOptions{
		Site:  h.resolveSite(r),
		Limit: content.Limit(limit),
	}

	field, value := r.URL.Query().Get("field"), r.URL.Query().Get("value")
	switch {
	case field != "" && value != "":
		opts.Match = &content.Match{Field: field, Value: value}
	case field != "" || value != "":
		WriteBadRequest(w, "field and value must be given together", nil)
		return
	}

	items, err := h.content.List(r.Context(), t, opts)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, items, &Meta{Total: len(items), Limit: limit})
}

// GetContent handles GET /api/v1/content/{type}/{slug}.
func (h *Handler) GetContent(w http.ResponseWriter, r *http.Request) {
	t := model.ContentType(chi.URLParam(r, "type"))
	slug := chi.URLParam(r, "slug")

	if !util.IsValidSlug(slug) {
		WriteBadRequest(w, "Invalid slug", map[string]string{"slug": "must not contain slashes, whitespace or control characters"})
		return
	}

	item, err := h.content.GetBySlug(r.Context(), t, slug, h.resolveSite(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if item == nil {
		WriteNotFound(w, "No "+string(t)+" with slug "+slug)
		return
	}

	WriteJSON(w, http.StatusOK, ItemResponse{
		Data: item,
		SEO:  seo.BuildMeta(item, h.opts.Site),
	})
}

// JobStats handles GET /api/v1/jobs/stats.
func (h *Handler) JobStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.content.JobStats(r.Context(), h.resolveSite(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	WriteSuccess(w, stats, nil)
}

// ImageURLResponse is the body of GET /api/v1/images.
type ImageURLResponse struct {
	URL string `json:"url"`
}

// ImageURL handles GET /api/v1/images. src is an asset reference or an
// already resolved image URL; w, h and q are optional transforms. No
// store request is made.
func (h *Handler) ImageURL(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	src := strings.TrimSpace(q.Get("src"))
	if src == "" {
		WriteBadRequest(w, "src is required", nil)
		return
	}

	dims := map[string]int{}
	for _, key := range []string{"w", "h", "q"} {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			WriteBadRequest(w, "Invalid "+key, map[string]string{key: "must be a non-negative integer"})
			return
		}
		dims[key] = n
	}

	var url string
	format, fit := q.Get("fm"), q.Get("fit")
	if format == "" && fit == "" && isResolvedURL(src) {
		url = imageurl.Build(src, dims["w"], dims["h"], dims["q"])
	} else {
		url = h.opts.Images.URL(src, imageurl.Options{
			Width:   dims["w"],
			Height:  dims["h"],
			Quality: dims["q"],
			Format:  imageurl.ParseFormat(format),
			Fit:     imageurl.ParseFit(fit),
		})
	}
	if url == "" {
		WriteBadRequest(w, "Unrecognised image reference", map[string]string{"src": src})
		return
	}

	WriteSuccess(w, ImageURLResponse{URL: url}, nil)
}

func isResolvedURL(s string) bool {
	return strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "http://")
}

// Sitemap handles GET /sitemap.xml.
func (h *Handler) Sitemap(w http.ResponseWriter, r *http.Request) {
	entries, err := h.content.SitemapEntries(r.Context(), h.resolveSite(r))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	body, err := seo.GenerateSitemap(strings.TrimSuffix(h.opts.Site.SiteURL, "/"), entries)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to build sitemap", "error", err)
		WriteInternalError(w, "Failed to build sitemap")
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Store   string `json:"store,omitempty"`
	Version string `json:"version,omitempty"`
}

// Health handles GET /health. It probes the store when a Pinger is set.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Version: h.opts.Version}
	if h.pinger == nil {
		WriteJSON(w, http.StatusOK, resp)
		return
	}

	if err := h.pinger.Ping(r.Context()); err != nil {
		h.logger.WarnContext(r.Context(), "health check failed", "error", err)
		resp.Status = "degraded"
		resp.Store = "unreachable"
		WriteJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	resp.Store = "ok"
	WriteJSON(w, http.StatusOK, resp)
}

// Routes mounts the API on r. cacheable wraps the routes whose responses
// may be cached by intermediaries; health is never wrapped.
func (h *Handler) Routes(r chi.Router, cacheable ...func(http.Handler) http.Handler) {
	r.Get("/health", h.Health)
	r.Group(func(r chi.Router) {
		r.Use(cacheable...)
		r.Get("/sitemap.xml", h.Sitemap)
		r.Route("/api/v1", func(r chi.Router) {
			r.Get("/content/{type}", h.ListContent)
			r.Get("/content/{type}/{slug}", h.GetContent)
			r.Get("/jobs/stats", h.JobStats)
			r.Get("/images", h.ImageURL)
		})
	})
}
