// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides slug helpers shared by the API and content layers.
package util

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength bounds slugs accepted from requests.
const MaxSlugLength = 200

var (
	// nonSlugChars matches runs of characters not allowed in a slug.
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	// stripMarks removes combining marks after decomposition (é -> e).
	stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Slugify turns a label such as a department name into a URL-safe slug:
// accents are folded, "&" becomes "and", and every other run of
// non-alphanumeric characters becomes a single hyphen.
func Slugify(s string) string {
	folded, _, err := transform.String(stripMarks, s)
	if err != nil {
		folded = s
	}

	folded = strings.ToLower(folded)
	folded = strings.ReplaceAll(folded, "&", " and ")
	folded = nonSlugChars.ReplaceAllString(folded, "-")

	return strings.Trim(folded, "-")
}

// IsValidSlug reports whether s can be looked up as a slug: non-empty,
// at most MaxSlugLength bytes of valid UTF-8, with no path separators,
// whitespace or control characters. Whether it exists is up to the store.
func IsValidSlug(s string) bool {
	if s == "" || len(s) > MaxSlugLength || !utf8.ValidString(s) {
		return false
	}
	for _, r := range s {
		if r == '/' || r == '\\' || unicode.IsSpace(r) || unicode.IsControl(r) {
			return false
		}
	}
	return true
}
