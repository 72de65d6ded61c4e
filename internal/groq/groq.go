// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package groq builds read-only GROQ queries for the Sanity content store.
//
// Queries are assembled from composable predicates joined with AND, an
// ordering, an optional prefix slice and a projection. User supplied values
// never appear in the query text: they are bound as $parameters and sent
// alongside the query, so the builder cannot emit syntactically invalid
// expressions for the supported filter set.
package groq

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrInvalidField is returned when a field path is not a plain attribute path.
var ErrInvalidField = errors.New("invalid field path")

// ErrInvalidSlice is returned for negative slice bounds.
var ErrInvalidSlice = errors.New("invalid slice bounds")

// fieldPathRegex matches attribute paths such as "status" or "slug.current".
var fieldPathRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)*$`)

// ValidField reports whether s can be used as a field path in a predicate.
func ValidField(s string) bool {
	return fieldPathRegex.MatchString(s)
}

// Params holds the values bound to $parameters of a query.
type Params map[string]any

// binder hands out unique parameter names while a query is rendered.
type binder struct {
	params Params
}

func newBinder() *binder {
	return &binder{params: make(Params)}
}

// bind stores value under a name derived from hint and returns the
// "$name" reference to use in the query text.
func (b *binder) bind(hint string, value any) string {
	name := strings.ReplaceAll(hint, ".", "_")
	if _, taken := b.params[name]; taken {
		for i := 1; ; i++ {
			candidate := name + "_" + strconv.Itoa(i)
			if _, taken := b.params[candidate]; !taken {
				name = candidate
				break
			}
		}
	}
	b.params[name] = value
	return "$" + name
}

// Predicate is a single filter term. Predicates are always combined with AND.
type Predicate interface {
	render(b *binder) (string, error)
}

type predicateFunc func(b *binder) (string, error)

func (f predicateFunc) render(b *binder) (string, error) { return f(b) }

// TypeIs matches documents whose _type equals contentType.
func TypeIs(contentType string) Predicate {
	return predicateFunc(func(b *binder) (string, error) {
		return "_type == " + b.bind("type", contentType), nil
	})
}

// TypeIn matches documents whose _type is one of contentTypes.
func TypeIn(contentTypes ...string) Predicate {
	return predicateFunc(func(b *binder) (string, error) {
		values := append([]string(nil), contentTypes...)
		return "_type in " + b.bind("types", values), nil
	})
}

// Equals matches documents where field is exactly equal to value.
func Equals(field string, value any) Predicate {
	return predicateFunc(func(b *binder) (string, error) {
		if !ValidField(field) {
			return "", fmt.Errorf("%w: %q", ErrInvalidField, field)
		}
		return field + " == " + b.bind(field, value), nil
	})
}

// Contains matches documents whose array field has value as a member.
func Contains(field string, value any) Predicate {
	return predicateFunc(func(b *binder) (string, error) {
		if !ValidField(field) {
			return "", fmt.Errorf("%w: %q", ErrInvalidField, field)
		}
		return b.bind(field, value) + " in " + field, nil
	})
}

// Defined matches documents where field is present and not null.
func Defined(field string) Predicate {
	return predicateFunc(func(b *binder) (string, error) {
		if !ValidField(field) {
			return "", fmt.Errorf("%w: %q", ErrInvalidField, field)
		}
		return "defined(" + field + ")", nil
	})
}

// Direction is a sort direction.
type Direction string

// Sort directions.
const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// Ordering is one sort key.
type Ordering struct {
	Field     string
	Direction Direction
}

// Projection is an ordered list of projection entries. Entries are trusted
// GROQ fragments defined in code, never built from request input.
type Projection []string

// Fields returns a projection selecting the given attributes as-is.
func Fields(names ...string) Projection {
	return Projection(names)
}

// With appends entries to a copy of the projection.
func (p Projection) With(entries ...string) Projection {
	out := make(Projection, 0, len(p)+len(entries))
	out = append(out, p...)
	return append(out, entries...)
}

// Rename returns a projection entry exposing expr under name.
func Rename(name, expr string) string {
	return strconv.Quote(name) + ": " + expr
}

func (p Projection) String() string {
	if len(p) == 0 {
		return ""
	}
	return "{" + strings.Join(p, ", ") + "}"
}

// Query is a document query under construction. A zero Query selects all
// documents; methods return the receiver so calls can be chained.
type Query struct {
	filters    []Predicate
	order      []Ordering
	start, end int
	sliced     bool
	single     bool
	projection Projection
}

// New returns an empty query.
func New() *Query {
	return &Query{}
}

// Clone returns a copy of q that can be extended independently.
func (q *Query) Clone() *Query {
	c := *q
	c.filters = append([]Predicate(nil), q.filters...)
	c.order = append([]Ordering(nil), q.order...)
	c.projection = append(Projection(nil), q.projection...)
	return &c
}

// Where adds predicates to the filter. All predicates are ANDed.
func (q *Query) Where(preds ...Predicate) *Query {
	q.filters = append(q.filters, preds...)
	return q
}

// OrderBy appends a sort key.
func (q *Query) OrderBy(field string, dir Direction) *Query {
	q.order = append(q.order, Ordering{Field: field, Direction: dir})
	return q
}

// Slice restricts the result to the half-open range [start, end).
// Slicing is applied after ordering.
func (q *Query) Slice(start, end int) *Query {
	q.start, q.end = start, end
	q.sliced = true
	q.single = false
	return q
}

// Limit takes the first n results after ordering.
func (q *Query) Limit(n int) *Query {
	return q.Slice(0, n)
}

// First selects the first result after ordering as a single document
// (null when nothing matches).
func (q *Query) First() *Query {
	q.single = true
	q.sliced = false
	return q
}

// Project sets the projection applied to each result.
func (q *Query) Project(p Projection) *Query {
	q.projection = p
	return q
}

// Build renders the query text and its bound parameters.
func (q *Query) Build() (string, Params, error) {
	b := newBinder()
	s, err := q.render(b)
	if err != nil {
		return "", nil, err
	}
	return s, b.params, nil
}

// String renders the query text, or an empty string if the query is invalid.
func (q *Query) String() string {
	s, _, err := q.Build()
	if err != nil {
		return ""
	}
	return s
}

func (q *Query) render(b *binder) (string, error) {
	var sb strings.Builder
	sb.WriteString("*")

	if len(q.filters) > 0 {
		terms := make([]string, 0, len(q.filters))
		for _, p := range q.filters {
			term, err := p.render(b)
			if err != nil {
				return "", err
			}
			terms = append(terms, term)
		}
		sb.WriteString("[" + strings.Join(terms, " && ") + "]")
	}

	if len(q.order) > 0 {
		keys := make([]string, 0, len(q.order))
		for _, o := range q.order {
			if !ValidField(o.Field) {
				return "", fmt.Errorf("%w: %q", ErrInvalidField, o.Field)
			}
			dir := o.Direction
			if dir != Desc {
				dir = Asc
			}
			keys = append(keys, o.Field+" "+string(dir))
		}
		sb.WriteString(" | order(" + strings.Join(keys, ", ") + ")")
	}

	switch {
	case q.single:
		sb.WriteString("[0]")
	case q.sliced:
		if q.start < 0 || q.end < q.start {
			return "", fmt.Errorf("%w: [%d...%d]", ErrInvalidSlice, q.start, q.end)
		}
		sb.WriteString(" [" + strconv.Itoa(q.start) + "..." + strconv.Itoa(q.end) + "]")
	}

	if p := q.projection.String(); p != "" {
		sb.WriteString(" " + p)
	}

	return sb.String(), nil
}
