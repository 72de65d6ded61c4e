// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package sanity is a read-only client for the Sanity HTTP query API.
// A Client is built once at startup and is safe for concurrent use; it
// holds no per-call state beyond its HTTP connection pool.
package sanity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/involv/contentd/internal/logging"
)

// Client configuration defaults and limits.
const (
	DefaultTimeout = 10 * time.Second
	UserAgent      = "contentd/1.0"

	// maxGETQueryLength is the longest encoded query sent with GET;
	// longer queries are POSTed.
	maxGETQueryLength = 11264
	// maxErrorBodyLen bounds how much of a failed response is read.
	maxErrorBodyLen = 10 * 1024
)

// ErrConfig is returned by New for incomplete configuration.
var ErrConfig = errors.New("sanity: invalid client configuration")

// Config identifies the project and dataset to query.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string // e.g. "2024-01-01"; a leading "v" is optional
	UseCDN     bool
	Token      string        // optional read token
	Timeout    time.Duration // per request; DefaultTimeout when zero

	// BaseURL overrides the API origin derived from ProjectID and UseCDN.
	BaseURL string
	// HTTPClient overrides the default transport.
	HTTPClient *http.Client
}

// Client issues GROQ queries against one dataset.
type Client struct {
	endpoint string
	token    string
	http     *http.Client
	logger   *slog.Logger
}

// New validates cfg and returns a client.
func New(cfg Config, logger *slog.Logger) (*Client, error) {
	switch {
	case cfg.ProjectID == "":
		return nil, fmt.Errorf("%w: project id is required", ErrConfig)
	case cfg.Dataset == "":
		return nil, fmt.Errorf("%w: dataset is required", ErrConfig)
	case cfg.APIVersion == "":
		return nil, fmt.Errorf("%w: api version is required", ErrConfig)
	}

	base := cfg.BaseURL
	if base == "" {
		host := "api.sanity.io"
		if cfg.UseCDN {
			host = "apicdn.sanity.io"
		}
		base = "https://" + url.PathEscape(cfg.ProjectID) + "." + host
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("%w: base url: %v", ErrConfig, err)
	}

	version := strings.TrimPrefix(cfg.APIVersion, "v")

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		endpoint: strings.TrimSuffix(base, "/") + "/v" + version + "/data/query/" + url.PathEscape(cfg.Dataset),
		token:    cfg.Token,
		http:     httpClient,
		logger:   logger,
	}, nil
}

// Endpoint returns the query endpoint URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// queryResponse is the envelope of a successful query.
type queryResponse struct {
	Result json.RawMessage `json:"result"`
	Ms     int             `json:"ms"`
}

// errorResponse is the envelope of a rejected query.
type errorResponse struct {
	Error struct {
		Description string `json:"description"`
		Type        string `json:"type"`
	} `json:"error"`
}

// Query runs query with params and decodes the result into dest.
// A null result leaves dest untouched. Any transport failure, non-2xx
// status or undecodable payload is returned as *Error.
func (c *Client) Query(ctx context.Context, query string, params map[string]any, dest any) error {
	requestID := logging.RequestID(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := c.logger.With("request_id", requestID)

	req, err := c.newRequest(ctx, query, params)
	if err != nil {
		return &Error{Op: OpRequest, Err: err}
	}
	req.Header.Set("X-Request-Id", requestID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Warn("content store request failed", "error", err, "duration", time.Since(start))
		return &Error{Op: OpRequest, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		storeErr := &Error{Op: OpStatus, StatusCode: resp.StatusCode, Message: errorMessage(body)}
		log.Warn("content store rejected query",
			"status", resp.StatusCode,
			"message", storeErr.Message,
			"duration", time.Since(start))
		return storeErr
	}

	var envelope queryResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return &Error{Op: OpDecode, StatusCode: resp.StatusCode, Err: err}
	}

	log.Debug("content store query",
		"duration", time.Since(start),
		"server_ms", envelope.Ms,
		"bytes", len(envelope.Result))

	if dest == nil || len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return nil
	}
	if raw, ok := dest.(*json.RawMessage); ok {
		*raw = envelope.Result
		return nil
	}
	if err := json.Unmarshal(envelope.Result, dest); err != nil {
		return &Error{Op: OpDecode, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}

// Ping runs a trivial query to check that the store is reachable.
func (c *Client) Ping(ctx context.Context) error {
	var now string
	return c.Query(ctx, "now()", nil, &now)
}

func (c *Client) newRequest(ctx context.Context, query string, params map[string]any) (*http.Request, error) {
	values := url.Values{}
	values.Set("query", query)
	for name, v := range params {
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encoding parameter %s: %w", name, err)
		}
		values.Set("$"+name, string(encoded))
	}

	var req *http.Request
	var err error
	if encoded := values.Encode(); len(encoded) <= maxGETQueryLength {
		req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+encoded, nil)
	} else {
		body, marshalErr := json.Marshal(struct {
			Query  string         `json:"query"`
			Params map[string]any `json:"params,omitempty"`
		}{query, params})
		if marshalErr != nil {
			return nil, fmt.Errorf("encoding query body: %w", marshalErr)
		}
		req, err = http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
		if err == nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// errorMessage extracts the store's error description from a response body.
func errorMessage(body []byte) string {
	var er errorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error.Description != "" {
		return er.Error.Description
	}
	return strings.TrimSpace(string(body))
}
