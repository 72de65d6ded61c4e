// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the content documents read from the CMS.
package model

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/involv/contentd/internal/portabletext"
)

// ErrInvalidDocument is returned when a document fails shape validation.
var ErrInvalidDocument = errors.New("invalid document")

// ContentType is the document discriminant (_type).
type ContentType string

// Content types served by the site.
const (
	TypePost       ContentType = "post"
	TypeCaseStudy  ContentType = "caseStudy"
	TypeWhitepaper ContentType = "whitepaper"
	TypeWebinar    ContentType = "webinar"
	TypeJobPosting ContentType = "jobPosting"
	TypeNewsPress  ContentType = "newsPress"
)

// ContentTypes lists all content types in a stable order.
var ContentTypes = []ContentType{
	TypePost,
	TypeCaseStudy,
	TypeWhitepaper,
	TypeWebinar,
	TypeJobPosting,
	TypeNewsPress,
}

// ParseContentType returns the ContentType named by s.
func ParseContentType(s string) (ContentType, error) {
	t := ContentType(s)
	if slices.Contains(ContentTypes, t) {
		return t, nil
	}
	return "", fmt.Errorf("unknown content type %q", s)
}

func (t ContentType) String() string {
	return string(t)
}

// Item is implemented by every content variant. Callers check ContentType
// before reading variant specific fields.
type Item interface {
	ContentType() ContentType
	Doc() *Document
	Validate() error
}

// Category is a resolved category reference.
type Category struct {
	ID    string `json:"_id"`
	Title string `json:"title"`
}

// Asset is an expanded image asset.
type Asset struct {
	ID  string `json:"_id"`
	URL string `json:"url"`
}

// Image is an image field with its asset already expanded.
type Image struct {
	Asset *Asset `json:"asset,omitempty"`
	Alt   string `json:"alt,omitempty"`
}

// URL returns the asset URL, or "" when the asset is missing.
func (i *Image) URL() string {
	if i == nil || i.Asset == nil {
		return ""
	}
	return i.Asset.URL
}

// Document holds the fields shared by all content variants.
type Document struct {
	ID          string            `json:"_id"`
	Type        ContentType       `json:"_type"`
	Slug        string            `json:"slug"`
	Title       string            `json:"title"`
	Excerpt     string            `json:"excerpt,omitempty"`
	Sites       []string          `json:"sites,omitempty"`
	Categories  []Category        `json:"categories,omitempty"`
	Tags        []string          `json:"tags,omitempty"`
	PublishedAt string            `json:"publishedAt,omitempty"`
	UpdatedAt   string            `json:"_updatedAt,omitempty"`
	MainImage   *Image            `json:"mainImage,omitempty"`
	Body        portabletext.Body `json:"body,omitempty"`
	ReadingTime int               `json:"readingTime,omitempty"`
}

// Doc returns the shared document fields.
func (d *Document) Doc() *Document {
	return d
}

// OnSite reports whether the document is visible on site.
func (d *Document) OnSite(site string) bool {
	return slices.Contains(d.Sites, site)
}

// Published parses PublishedAt. The zero time is returned when unset or
// unparsable.
func (d *Document) Published() time.Time {
	return parseTimestamp(d.PublishedAt)
}

// Updated parses UpdatedAt.
func (d *Document) Updated() time.Time {
	return parseTimestamp(d.UpdatedAt)
}

func (d *Document) validate(want ContentType) error {
	switch {
	case d.Type != want:
		return fmt.Errorf("%w: _type %q, expected %q", ErrInvalidDocument, d.Type, want)
	case d.ID == "":
		return fmt.Errorf("%w: %s without _id", ErrInvalidDocument, want)
	case d.Title == "":
		return fmt.Errorf("%w: %s %s without title", ErrInvalidDocument, want, d.ID)
	case d.Slug == "":
		return fmt.Errorf("%w: %s %s without slug", ErrInvalidDocument, want, d.ID)
	}
	if d.PublishedAt != "" && d.Published().IsZero() {
		return fmt.Errorf("%w: %s %s has malformed publishedAt %q", ErrInvalidDocument, want, d.ID, d.PublishedAt)
	}
	return nil
}

// DropDanglingCategories removes category references whose target no
// longer exists (they dereference to null).
func (d *Document) DropDanglingCategories() {
	d.Categories = slices.DeleteFunc(d.Categories, func(c Category) bool {
		return c.ID == ""
	})
}

func parseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
