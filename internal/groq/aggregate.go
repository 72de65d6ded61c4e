package groq

import (
	"fmt"
	"strconv"
	"strings"
)

// Aggregate builds a single object-valued query whose members are computed
// by the store, e.g. {"total": count(*[...]), "departments": array::unique(*[...].department)}.
type Aggregate struct {
	members []aggregateMember
}

type aggregateMember struct {
	name   string
	render func(b *binder) (string, error)
}

// NewAggregate returns an empty aggregate.
func NewAggregate() *Aggregate {
	return &Aggregate{}
}

// Count adds a member holding the number of documents matched by q.
// Ordering, slicing and projection of q are ignored.
func (a *Aggregate) Count(name string, q *Query) *Aggregate {
	a.members = append(a.members, aggregateMember{
		name: name,
		render: func(b *binder) (string, error) {
			sub, err := q.filterOnly().render(b)
			if err != nil {
				return "", err
			}
			return "count(" + sub + ")", nil
		},
	})
	return a
}

// Distinct adds a member holding the unique values of field across the
// documents matched by q.
func (a *Aggregate) Distinct(name string, q *Query, field string) *Aggregate {
	a.members = append(a.members, aggregateMember{
		name: name,
		render: func(b *binder) (string, error) {
			if !ValidField(field) {
				return "", fmt.Errorf("%w: %q", ErrInvalidField, field)
			}
			sub, err := q.filterOnly().render(b)
			if err != nil {
				return "", err
			}
			return "array::unique(" + sub + "." + field + ")", nil
		},
	})
	return a
}

// Build renders the aggregate query text and its bound parameters.
func (a *Aggregate) Build() (string, Params, error) {
	b := newBinder()
	parts := make([]string, 0, len(a.members))
	for _, m := range a.members {
		expr, err := m.render(b)
		if err != nil {
			return "", nil, fmt.Errorf("aggregate %s: %w", m.name, err)
		}
		parts = append(parts, strconv.Quote(m.name)+": "+expr)
	}
	return "{" + strings.Join(parts, ", ") + "}", b.params, nil
}

// filterOnly returns a copy of q reduced to its filter.
func (q *Query) filterOnly() *Query {
	return &Query{filters: q.filters}
}
