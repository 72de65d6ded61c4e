// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package imageurl builds image CDN URLs with transform parameters.
// URL construction is local; nothing here touches the network.
package imageurl

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// CDNBaseURL is the Sanity image CDN origin.
const CDNBaseURL = "https://cdn.sanity.io/images"

// Format is an output image format.
type Format string

// Supported output formats.
const (
	FormatJPG  Format = "jpg"
	FormatPJPG Format = "pjpg"
	FormatPNG  Format = "png"
	FormatWebP Format = "webp"
)

// Fit is a resize/crop mode.
type Fit string

// Supported fit modes.
const (
	FitClip    Fit = "clip"
	FitCrop    Fit = "crop"
	FitFill    Fit = "fill"
	FitFillMax Fit = "fillmax"
	FitMax     Fit = "max"
	FitScale   Fit = "scale"
	FitMin     Fit = "min"
)

var validFormats = map[Format]bool{
	FormatJPG: true, FormatPJPG: true, FormatPNG: true, FormatWebP: true,
}

var validFits = map[Fit]bool{
	FitClip: true, FitCrop: true, FitFill: true, FitFillMax: true,
	FitMax: true, FitScale: true, FitMin: true,
}

// ParseFormat returns the Format named by s, or "" if unknown.
func ParseFormat(s string) Format {
	f := Format(strings.ToLower(s))
	if validFormats[f] {
		return f
	}
	return ""
}

// ParseFit returns the Fit named by s, or "" if unknown.
func ParseFit(s string) Fit {
	f := Fit(strings.ToLower(s))
	if validFits[f] {
		return f
	}
	return ""
}

// Options are optional transforms. Zero values mean "not set".
type Options struct {
	Width   int
	Height  int
	Quality int // 1-100
	Format  Format
	Fit     Fit
}

// IsZero reports whether no transform is set.
func (o Options) IsZero() bool {
	return o.Width <= 0 && o.Height <= 0 && o.Quality <= 0 && o.Format == "" && o.Fit == ""
}

// Build appends width, height and quality transforms to an already
// resolved image URL, together with a fixed crop fit and automatic format
// negotiation. Non-positive values are treated as absent. With no
// transforms the URL is returned unchanged; an empty URL yields "".
func Build(baseURL string, width, height, quality int) string {
	if baseURL == "" {
		return ""
	}

	var params []string
	if width > 0 {
		params = append(params, "w="+strconv.Itoa(width))
	}
	if height > 0 {
		params = append(params, "h="+strconv.Itoa(height))
	}
	if quality > 0 {
		params = append(params, "q="+strconv.Itoa(clampQuality(quality)))
	}
	if len(params) == 0 {
		return baseURL
	}
	params = append(params, "fit=crop", "auto=format")

	return appendQuery(baseURL, strings.Join(params, "&"))
}

// Builder resolves Sanity asset references to CDN URLs for one project
// and dataset.
type Builder struct {
	ProjectID string
	Dataset   string
}

// NewBuilder returns a builder for the given project and dataset.
func NewBuilder(projectID, dataset string) Builder {
	return Builder{ProjectID: projectID, Dataset: dataset}
}

// assetRefRegex matches refs like "image-Tb9Ew8CXIwaY6R1kjMvI0uRR-2000x3000-jpg".
var assetRefRegex = regexp.MustCompile(`^image-([A-Za-z0-9]+)-(\d+x\d+)-([a-z0-9]+)$`)

// URL resolves ref (an asset reference or asset document id) and applies
// opts. An absolute http(s) URL is accepted as an already resolved asset.
// Empty or unrecognised references yield "".
func (b Builder) URL(ref string, opts Options) string {
	base := b.resolve(strings.TrimSpace(ref))
	if base == "" {
		return ""
	}
	if opts.IsZero() {
		return base
	}
	return appendQuery(base, encodeOptions(opts))
}

func (b Builder) resolve(ref string) string {
	if ref == "" {
		return ""
	}
	if strings.HasPrefix(ref, "https://") || strings.HasPrefix(ref, "http://") {
		return ref
	}

	m := assetRefRegex.FindStringSubmatch(ref)
	if m == nil || b.ProjectID == "" || b.Dataset == "" {
		return ""
	}
	return CDNBaseURL + "/" + url.PathEscape(b.ProjectID) + "/" + url.PathEscape(b.Dataset) +
		"/" + m[1] + "-" + m[2] + "." + m[3]
}

func encodeOptions(o Options) string {
	var params []string
	if o.Width > 0 {
		params = append(params, "w="+strconv.Itoa(o.Width))
	}
	if o.Height > 0 {
		params = append(params, "h="+strconv.Itoa(o.Height))
	}
	if o.Quality > 0 {
		params = append(params, "q="+strconv.Itoa(clampQuality(o.Quality)))
	}
	if validFormats[o.Format] {
		params = append(params, "fm="+string(o.Format))
	}
	if validFits[o.Fit] {
		params = append(params, "fit="+string(o.Fit))
	}
	return strings.Join(params, "&")
}

func clampQuality(q int) int {
	if q > 100 {
		return 100
	}
	return q
}

func appendQuery(base, query string) string {
	if query == "" {
		return base
	}
	switch {
	case strings.HasSuffix(base, "?"), strings.HasSuffix(base, "&"):
		return base + query
	case strings.Contains(base, "?"):
		return base + "&" + query
	default:
		return base + "?" + query
	}
}
