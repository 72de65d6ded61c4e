// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package seo provides SEO utilities for building meta tags and structured data.
package seo

import (
	"encoding/json"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/involv/contentd/internal/imageurl"
	"github.com/involv/contentd/internal/model"
	"github.com/involv/contentd/internal/portabletext"
)

// Open Graph image dimensions.
const (
	OGImageWidth  = 1200
	OGImageHeight = 630

	descriptionLength = 160
)

// Meta holds the SEO meta data for a content item.
type Meta struct {
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	Keywords       string          `json:"keywords,omitempty"`
	Canonical      string          `json:"canonical,omitempty"`
	OGTitle        string          `json:"ogTitle"`
	OGDescription  string          `json:"ogDescription,omitempty"`
	OGImage        string          `json:"ogImage,omitempty"`
	OGImageAlt     string          `json:"ogImageAlt,omitempty"`
	OGType         string          `json:"ogType"`
	OGSiteName     string          `json:"ogSiteName,omitempty"`
	OGURL          string          `json:"ogUrl,omitempty"`
	TwitterCard    string          `json:"twitterCard"`
	StructuredData json.RawMessage `json:"structuredData,omitempty"` // JSON-LD
}

// SiteConfig contains site-wide settings for SEO.
type SiteConfig struct {
	SiteName       string
	SiteURL        string
	DefaultOGImage string
}

var strictPolicy = bluemonday.StrictPolicy()

// BuildMeta creates the meta data for a content item with fallbacks:
// excerpt then body text for the description, main image then the site
// default for the OG image.
func BuildMeta(item model.Item, site SiteConfig) *Meta {
	doc := item.Doc()
	meta := &Meta{
		Title:       doc.Title,
		OGTitle:     doc.Title,
		OGType:      "website",
		OGSiteName:  site.SiteName,
		TwitterCard: "summary_large_image",
		Keywords:    strings.Join(doc.Tags, ", "),
	}
	if site.SiteName != "" {
		meta.Title = doc.Title + " | " + site.SiteName
	}

	switch item.ContentType() {
	case model.TypePost, model.TypeNewsPress, model.TypeCaseStudy:
		meta.OGType = "article"
	}

	desc := doc.Excerpt
	if strings.TrimSpace(desc) == "" {
		desc = portabletext.PlainText(doc.Body)
	}
	meta.Description = Description(desc)
	meta.OGDescription = meta.Description

	if u := doc.MainImage.URL(); u != "" {
		meta.OGImage = imageurl.Build(u, OGImageWidth, OGImageHeight, 0)
		meta.OGImageAlt = doc.MainImage.Alt
	} else if site.DefaultOGImage != "" {
		meta.OGImage = makeAbsoluteURL(site.DefaultOGImage, site.SiteURL)
	}

	if path := ItemPath(item.ContentType(), doc.Slug); path != "" {
		meta.Canonical = strings.TrimSuffix(site.SiteURL, "/") + path
	}
	meta.OGURL = meta.Canonical

	meta.StructuredData = buildStructuredData(item, meta, site)
	return meta
}

// Description strips markup from s, collapses whitespace and truncates
// the result for use as a meta description.
func Description(s string) string {
	text := html.UnescapeString(strictPolicy.Sanitize(s))
	text = strings.Join(strings.Fields(text), " ")
	return truncateText(text, descriptionLength)
}

// ArticleSchema represents JSON-LD Article structured data.
type ArticleSchema struct {
	Context          string        `json:"@context"`
	Type             string        `json:"@type"`
	Headline         string        `json:"headline"`
	Description      string        `json:"description,omitempty"`
	Image            string        `json:"image,omitempty"`
	DatePublished    string        `json:"datePublished,omitempty"`
	DateModified     string        `json:"dateModified,omitempty"`
	Author           *PersonSchema `json:"author,omitempty"`
	Publisher        *OrgSchema    `json:"publisher,omitempty"`
	MainEntityOfPage string        `json:"mainEntityOfPage,omitempty"`
}

// PersonSchema represents JSON-LD Person structured data.
type PersonSchema struct {
	Type string `json:"@type"`
	Name string `json:"name"`
}

// OrgSchema represents JSON-LD Organization structured data.
type OrgSchema struct {
	Type   string `json:"@type"`
	Name   string `json:"name"`
	SameAs string `json:"sameAs,omitempty"`
}

// JobPostingSchema represents JSON-LD JobPosting structured data.
type JobPostingSchema struct {
	Context            string        `json:"@context"`
	Type               string        `json:"@type"`
	Title              string        `json:"title"`
	Description        string        `json:"description,omitempty"`
	DatePosted         string        `json:"datePosted,omitempty"`
	ValidThrough       string        `json:"validThrough,omitempty"`
	EmploymentType     string        `json:"employmentType,omitempty"`
	HiringOrganization *OrgSchema    `json:"hiringOrganization"`
	JobLocation        *PlaceSchema  `json:"jobLocation,omitempty"`
	BaseSalary         *SalarySchema `json:"baseSalary,omitempty"`
}

// PlaceSchema represents a JSON-LD Place with a free-form address.
type PlaceSchema struct {
	Type    string `json:"@type"`
	Address string `json:"address"`
}

// SalarySchema represents a JSON-LD MonetaryAmount range.
type SalarySchema struct {
	Type     string            `json:"@type"`
	Currency string            `json:"currency,omitempty"`
	Value    SalaryValueSchema `json:"value"`
}

// SalaryValueSchema is the numeric part of SalarySchema.
type SalaryValueSchema struct {
	Type     string `json:"@type"`
	MinValue int    `json:"minValue,omitempty"`
	MaxValue int    `json:"maxValue,omitempty"`
	UnitText string `json:"unitText"`
}

func buildStructuredData(item model.Item, meta *Meta, site SiteConfig) json.RawMessage {
	doc := item.Doc()
	org := &OrgSchema{Type: "Organization", Name: site.SiteName, SameAs: site.SiteURL}

	switch v := item.(type) {
	case *model.JobPosting:
		job := JobPostingSchema{
			Context:            "https://schema.org",
			Type:               "JobPosting",
			Title:              doc.Title,
			Description:        meta.Description,
			DatePosted:         formatDate(doc.Published()),
			EmploymentType:     v.EmploymentType,
			HiringOrganization: org,
		}
		if v.ApplicationDeadline != "" {
			job.ValidThrough = v.ApplicationDeadline
		}
		if v.Location != "" {
			job.JobLocation = &PlaceSchema{Type: "Place", Address: v.Location}
		}
		if s := v.SalaryRange; s != nil && (s.Min > 0 || s.Max > 0) {
			job.BaseSalary = &SalarySchema{
				Type:     "MonetaryAmount",
				Currency: s.Currency,
				Value:    SalaryValueSchema{Type: "QuantitativeValue", MinValue: s.Min, MaxValue: s.Max, UnitText: "YEAR"},
			}
		}
		return marshalJSONLD(job)
	case *model.Post, *model.NewsPress, *model.CaseStudy:
		article := ArticleSchema{
			Context:          "https://schema.org",
			Type:             "Article",
			Headline:         doc.Title,
			Description:      meta.Description,
			Image:            meta.OGImage,
			DatePublished:    formatDate(doc.Published()),
			DateModified:     formatDate(doc.Updated()),
			Publisher:        org,
			MainEntityOfPage: meta.Canonical,
		}
		if p, ok := v.(*model.Post); ok && p.Author != "" {
			article.Author = &PersonSchema{Type: "Person", Name: p.Author}
		}
		return marshalJSONLD(article)
	}
	return nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func marshalJSONLD(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return data
}

// truncateText truncates text to maxLen characters at word boundary.
func truncateText(text string, maxLen int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}

	truncated := string(runes[:maxLen])
	lastSpace := strings.LastIndex(truncated, " ")
	if lastSpace > len(truncated)/2 {
		truncated = truncated[:lastSpace]
	}

	return strings.TrimSpace(truncated) + "..."
}

// makeAbsoluteURL ensures a URL is absolute by prepending site URL if needed.
func makeAbsoluteURL(url, siteURL string) string {
	if url == "" {
		return ""
	}
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return url
	}
	siteURL = strings.TrimSuffix(siteURL, "/")
	if !strings.HasPrefix(url, "/") {
		url = "/" + url
	}
	return siteURL + url
}
