// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package content

import (
	"encoding/json"
	"fmt"

	"github.com/involv/contentd/internal/groq"
	"github.com/involv/contentd/internal/model"
)

// Shared projection entries. Categories are dereferenced to {_id, title}
// and image assets are expanded so the URL is available without a second
// lookup.
var baseProjection = groq.Fields(
	"_id",
	"_type",
	"_updatedAt",
	"title",
	"excerpt",
	"sites",
	"tags",
	"publishedAt",
	"body",
).With(
	groq.Rename("slug", "slug.current"),
	groq.Rename("categories", "categories[]->{_id, title}"),
	groq.Rename("mainImage", "mainImage{alt, asset->{_id, url}}"),
)

// schema describes how one content type is queried and decoded.
type schema struct {
	projection groq.Projection
	// order is the default sort; _id asc is always appended as a tie-breaker.
	order []groq.Ordering
	// filterable lists the fields accepted by Match for this type.
	filterable map[string]bool
	// readingTime marks types whose body is long-form text.
	readingTime bool
	decode      func(raw json.RawMessage) ([]model.Item, error)
}

var publishedDesc = []groq.Ordering{{Field: "publishedAt", Direction: groq.Desc}}

var schemas = map[model.ContentType]schema{
	model.TypePost: {
		projection:  baseProjection.With("postType", groq.Rename("author", "author->name")),
		order:       publishedDesc,
		filterable:  fieldSet("postType"),
		readingTime: true,
		decode:      decodeList[model.Post],
	},
	model.TypeCaseStudy: {
		projection:  baseProjection.With("client", "industry"),
		order:       publishedDesc,
		filterable:  fieldSet("industry", "client"),
		readingTime: true,
		decode:      decodeList[model.CaseStudy],
	},
	model.TypeWhitepaper: {
		projection: baseProjection.With("pages", groq.Rename("fileUrl", "file.asset->url")),
		order:      publishedDesc,
		filterable: fieldSet(),
		decode:     decodeList[model.Whitepaper],
	},
	model.TypeWebinar: {
		projection: baseProjection.With("scheduledAt", "status", "registrationUrl", "recordingUrl",
			groq.Rename("speakers", "speakers[]->name")),
		order:      []groq.Ordering{{Field: "scheduledAt", Direction: groq.Desc}},
		filterable: fieldSet("status"),
		decode:     decodeList[model.Webinar],
	},
	model.TypeJobPosting: {
		projection: baseProjection.With("department", "location", "employmentType",
			"salaryRange", "applicationDeadline", "status"),
		order:      publishedDesc,
		filterable: fieldSet("status", "department", "location", "employmentType"),
		decode:     decodeList[model.JobPosting],
	},
	model.TypeNewsPress: {
		projection:  baseProjection.With("outlet", "externalUrl"),
		order:       publishedDesc,
		filterable:  fieldSet("outlet"),
		readingTime: true,
		decode:      decodeList[model.NewsPress],
	},
}

func fieldSet(fields ...string) map[string]bool {
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

func schemaFor(t model.ContentType) (schema, error) {
	s, ok := schemas[t]
	if !ok {
		return schema{}, fmt.Errorf("%w: unknown content type %q", ErrInvalidQuery, t)
	}
	return s, nil
}

// itemPtr constrains P to *T implementing model.Item.
type itemPtr[T any] interface {
	*T
	model.Item
}

func decodeList[T any, P itemPtr[T]](raw json.RawMessage) ([]model.Item, error) {
	var docs []T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &docs); err != nil {
			return nil, err
		}
	}

	items := make([]model.Item, 0, len(docs))
	for i := range docs {
		item := P(&docs[i])
		if err := item.Validate(); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
