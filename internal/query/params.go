package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	apperrors "github.com/spec-kit/tour-service/pkg/util"
)

// Params is the raw query-string mapping of a request. Comparison filters use bracket
// keys: price[gte]=500.
type Params map[string]string

// Reserved keys control shaping and are never filters.
const (
	KeyPage   = "page"
	KeySort   = "sort"
	KeyLimit  = "limit"
	KeyFields = "fields"
)

var reservedKeys = map[string]struct{}{
	KeyPage:   {},
	KeySort:   {},
	KeyLimit:  {},
	KeyFields: {},
}

// Pagination defaults.
const (
	DefaultPage  = 1
	DefaultLimit = 100
)

// Op is a comparison operator of a filter condition.
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
)

var bracketOps = map[string]Op{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
}

// Condition constrains one field. Value is still the raw string; it is typed against
// the store schema when the query is rendered.
type Condition struct {
	Field string
	Op    Op
	Value string
}

// Filter is a conjunction of conditions.
type Filter struct {
	Conditions []Condition
}

// Empty reports whether the filter matches everything.
func (f Filter) Empty() bool {
	return len(f.Conditions) == 0
}

// Order sorts by one field.
type Order struct {
	Field string
	Desc  bool
}

// Clone returns a copy of p.
func (p Params) Clone() Params {
	cp := make(Params, len(p))
	for k, v := range p {
		cp[k] = v
	}
	return cp
}

// ParseFilter turns every non-reserved parameter into a condition. Keys are visited in
// sorted order so the resulting filter is deterministic.
func ParseFilter(p Params) (Filter, error) {
	keys := make([]string, 0, len(p))
	for k := range p {
		if _, reserved := reservedKeys[k]; reserved {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var f Filter
	for _, key := range keys {
		field, op, err := parseKey(key)
		if err != nil {
			return Filter{}, err
		}
		f.Conditions = append(f.Conditions, Condition{Field: field, Op: op, Value: p[key]})
	}
	return f, nil
}

func parseKey(key string) (string, Op, error) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return key, OpEq, nil
	}
	if open == 0 || !strings.HasSuffix(key, "]") {
		return "", "", apperrors.NewValidationError(fmt.Sprintf("Invalid filter: %s", key), nil)
	}
	field, raw := key[:open], key[open+1:len(key)-1]
	op, ok := bracketOps[raw]
	if !ok {
		return "", "", apperrors.NewValidationError(fmt.Sprintf("Invalid filter operator: %s", raw), nil)
	}
	return field, op, nil
}

// ParseSort reads "-price,name" as price descending then name ascending.
func ParseSort(raw string) []Order {
	var orders []Order
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		desc := strings.HasPrefix(part, "-")
		part = strings.TrimPrefix(part, "-")
		if part == "" {
			continue
		}
		orders = append(orders, Order{Field: part, Desc: desc})
	}
	return orders
}

// ParseFields reads a comma separated allow-list.
func ParseFields(raw string) []string {
	var fields []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			fields = append(fields, part)
		}
	}
	return fields
}

// ParsePagination returns page and limit, falling back to defaults for missing,
// malformed or non-positive values.
func ParsePagination(p Params) (page, limit int) {
	return positiveInt(p[KeyPage], DefaultPage), positiveInt(p[KeyLimit], DefaultLimit)
}

func positiveInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
