// Package seo provides SEO utilities for building meta tags, structured data, and sitemaps.
package seo

import (
	"encoding/xml"
	"time"

	"github.com/involv/contentd/internal/content"
	"github.com/involv/contentd/internal/model"
)

// XMLNamespace is the sitemap XML namespace.
const XMLNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"

// ChangeFreq represents the change frequency of a URL.
type ChangeFreq string

// Change frequencies used by the site.
const (
	ChangeFreqDaily   ChangeFreq = "daily"
	ChangeFreqWeekly  ChangeFreq = "weekly"
	ChangeFreqMonthly ChangeFreq = "monthly"
)

// SitemapURL represents a single URL entry in the sitemap.
type SitemapURL struct {
	Loc        string     `xml:"loc"`
	LastMod    string     `xml:"lastmod,omitempty"`
	ChangeFreq ChangeFreq `xml:"changefreq,omitempty"`
	Priority   string     `xml:"priority,omitempty"`
}

// Sitemap represents the complete sitemap document.
type Sitemap struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []SitemapURL `xml:"url"`
}

type route struct {
	prefix     string
	changeFreq ChangeFreq
	priority   string
}

// routes maps each content type to its public path on the site.
var routes = map[model.ContentType]route{
	model.TypePost:       {"/insights/", ChangeFreqWeekly, "0.8"},
	model.TypeCaseStudy:  {"/case-studies/", ChangeFreqMonthly, "0.7"},
	model.TypeWhitepaper: {"/whitepapers/", ChangeFreqMonthly, "0.6"},
	model.TypeWebinar:    {"/webinars/", ChangeFreqWeekly, "0.6"},
	model.TypeJobPosting: {"/careers/", ChangeFreqDaily, "0.5"},
	model.TypeNewsPress:  {"/news/", ChangeFreqMonthly, "0.5"},
}

// ItemPath returns the site path of a content item, or "" for types the
// site has no page for.
func ItemPath(t model.ContentType, slug string) string {
	r, ok := routes[t]
	if !ok || slug == "" {
		return ""
	}
	return r.prefix + slug
}

// SitemapBuilder builds sitemap XML from content entries.
type SitemapBuilder struct {
	siteURL string
	urls    []SitemapURL
}

// NewSitemapBuilder creates a new sitemap builder.
func NewSitemapBuilder(siteURL string) *SitemapBuilder {
	return &SitemapBuilder{
		siteURL: siteURL,
		urls:    make([]SitemapURL, 0),
	}
}

// AddHomepage adds the homepage to the sitemap.
func (b *SitemapBuilder) AddHomepage() {
	b.urls = append(b.urls, SitemapURL{
		Loc:        b.siteURL + "/",
		ChangeFreq: ChangeFreqDaily,
		Priority:   "1.0",
	})
}

// AddEntry adds a content item. Entries of unrouted types are skipped.
func (b *SitemapBuilder) AddEntry(e content.SitemapEntry) {
	r, ok := routes[e.Type]
	if !ok || e.Slug == "" {
		return
	}
	url := SitemapURL{
		Loc:        b.siteURL + r.prefix + e.Slug,
		ChangeFreq: r.changeFreq,
		Priority:   r.priority,
	}
	if !e.UpdatedAt.IsZero() {
		url.LastMod = e.UpdatedAt.UTC().Format(time.RFC3339)
	}
	b.urls = append(b.urls, url)
}

// AddEntries adds multiple content items to the sitemap.
func (b *SitemapBuilder) AddEntries(entries []content.SitemapEntry) {
	for _, e := range entries {
		b.AddEntry(e)
	}
}

// Build generates the sitemap XML.
func (b *SitemapBuilder) Build() ([]byte, error) {
	sitemap := Sitemap{
		XMLNS: XMLNamespace,
		URLs:  b.urls,
	}

	output := []byte(xml.Header)
	xmlBytes, err := xml.MarshalIndent(sitemap, "", "  ")
	if err != nil {
		return nil, err
	}

	return append(output, xmlBytes...), nil
}

// GenerateSitemap builds a sitemap with the homepage followed by entries.
func GenerateSitemap(siteURL string, entries []content.SitemapEntry) ([]byte, error) {
	builder := NewSitemapBuilder(siteURL)
	builder.AddHomepage()
	builder.AddEntries(entries)
	return builder.Build()
}
