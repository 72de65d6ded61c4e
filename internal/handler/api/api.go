// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the read-only REST API over the content store.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/involv/contentd/internal/content"
	"github.com/involv/contentd/internal/imageurl"
	"github.com/involv/contentd/internal/seo"
)

// Pinger checks that the content store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configures a Handler.
type Options struct {
	DefaultSite string // Site tag used when a request names none
	MaxLimit    int    // Cap on ?limit=
	Site        seo.SiteConfig
	Images      imageurl.Builder
	Version     string
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	content *content.Service
	pinger  Pinger
	opts    Options
	logger  *slog.Logger
}

// NewHandler creates a new API handler. pinger may be nil, in which case
// the health check does not probe the store.
func NewHandler(svc *content.Service, pinger Pinger, opts Options, logger *slog.Logger) *Handler {
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = 100
	}
	return &Handler{
		content: svc,
		pinger:  pinger,
		opts:    opts,
		logger:  logger,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains list metadata.
type Meta struct {
	Total int `json:"total"`
	Limit int `json:"limit,omitempty"`
}

// ItemResponse wraps a single content item with its SEO data.
type ItemResponse struct {
	Data any       `json:"data"`
	SEO  *seo.Meta `json:"seo,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{
		Data: data,
		Meta: meta,
	})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	resp := ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
	WriteJSON(w, statusCode, resp)
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// writeServiceError maps content service errors to responses. A store
// failure is never reported as an empty result.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, content.ErrInvalidQuery):
		WriteError(w, http.StatusBadRequest, "invalid_query", err.Error(), nil)
	case errors.Is(err, content.ErrContentStore):
		h.logger.ErrorContext(r.Context(), "content store request failed", "path", r.URL.Path, "error", err)
		WriteError(w, http.StatusBadGateway, "store_unavailable", "Content store unavailable", nil)
	default:
		h.logger.ErrorContext(r.Context(), "unexpected error", "path", r.URL.Path, "error", err)
		WriteInternalError(w, "Internal error")
	}
}
