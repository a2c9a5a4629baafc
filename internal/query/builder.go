// Package query shapes list requests into store queries: filtering, sorting, field
// projection and pagination. Building a query never touches the store; callers render it
// against a Schema and execute the statement themselves.
package query

import "math"

// DefaultSortField orders results when the request does not.
const DefaultSortField = "createdAt"

// Query is the shaped, store-independent result of a Builder.
type Query struct {
	Filter Filter
	Sort   []Order
	// Fields is the projection allow-list; empty selects every field.
	Fields             []string
	ExcludeBookkeeping bool
	Skip               int
	// Limit of zero means unbounded.
	Limit int
}

// Builder applies the request parameters to a Query. Each step is optional; when used
// they run in the order Filter, Sort, LimitFields, Paginate. The first error sticks and
// is reported by Build.
type Builder struct {
	params Params
	query  Query
	err    error
}

// New starts a builder over a copy of params.
func New(params Params) *Builder {
	return &Builder{params: params.Clone()}
}

// Filter constrains the query by every non-reserved parameter.
func (b *Builder) Filter() *Builder {
	if b.err != nil {
		return b
	}
	b.query.Filter, b.err = ParseFilter(b.params)
	return b
}

// Sort orders by the sort parameter, newest first when absent.
func (b *Builder) Sort() *Builder {
	if b.err != nil {
		return b
	}
	if orders := ParseSort(b.params[KeySort]); len(orders) > 0 {
		b.query.Sort = orders
	} else {
		b.query.Sort = []Order{{Field: DefaultSortField, Desc: true}}
	}
	return b
}

// LimitFields projects onto the fields parameter, or hides bookkeeping when absent.
func (b *Builder) LimitFields() *Builder {
	if b.err != nil {
		return b
	}
	if fields := ParseFields(b.params[KeyFields]); len(fields) > 0 {
		b.query.Fields = fields
		b.query.ExcludeBookkeeping = false
	} else {
		b.query.Fields = nil
		b.query.ExcludeBookkeeping = true
	}
	return b
}

// Paginate skips limit*(page-1) results and returns at most limit. A skip too large to
// represent saturates, so far pages come back empty.
func (b *Builder) Paginate() *Builder {
	if b.err != nil {
		return b
	}
	page, limit := ParsePagination(b.params)
	b.query.Skip = skipFor(page, limit)
	b.query.Limit = limit
	return b
}

func skipFor(page, limit int) int {
	if page-1 > math.MaxInt/limit {
		return math.MaxInt
	}
	return limit * (page - 1)
}

// All applies every step in order.
func (b *Builder) All() *Builder {
	return b.Filter().Sort().LimitFields().Paginate()
}

// Build returns the shaped query or the first error raised by a step.
func (b *Builder) Build() (Query, error) {
	if b.err != nil {
		return Query{}, b.err
	}
	return b.query, nil
}
