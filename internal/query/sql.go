package query

import (
	"fmt"
	"strings"
)

// Statement is a rendered SQL statement and its positional arguments.
type Statement struct {
	SQL  string
	Args []any
}

var sqlOps = map[Op]string{
	OpEq:  "=",
	OpGt:  ">",
	OpGte: ">=",
	OpLt:  "<",
	OpLte: "<=",
}

// flipped operators put the argument on the left of ANY(column).
var flippedOps = map[Op]string{
	OpEq:  "=",
	OpGt:  "<",
	OpGte: "<=",
	OpLt:  ">",
	OpLte: ">=",
}

// Select renders q as a SELECT. Scope conditions are ANDed with the request filter and
// are how callers pin a list to a parent, e.g. reviews of one tour.
func (s *Schema) Select(q Query, scope ...Condition) (Statement, error) {
	cols, err := s.projection(q)
	if err != nil {
		return Statement{}, err
	}
	where, args, err := s.where(q.Filter, scope)
	if err != nil {
		return Statement{}, err
	}
	order, err := s.orderBy(q.Sort)
	if err != nil {
		return Statement{}, err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SELECT %s FROM %s", strings.Join(cols, ", "), s.Table)
	b.WriteString(where)
	b.WriteString(order)
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT %d", q.Limit)
	}
	if q.Skip > 0 {
		fmt.Fprintf(&b, " OFFSET %d", q.Skip)
	}
	return Statement{SQL: b.String(), Args: args}, nil
}

func (s *Schema) projection(q Query) ([]string, error) {
	if len(q.Fields) == 0 {
		cols := make([]string, 0, len(s.fields))
		for _, f := range s.fields {
			if q.ExcludeBookkeeping && f.Name == s.Bookkeeping {
				continue
			}
			cols = append(cols, alias(f))
		}
		return cols, nil
	}

	id := s.index[IDField]
	cols := []string{alias(id)}
	seen := map[string]bool{IDField: true}
	for _, name := range q.Fields {
		if seen[name] {
			continue
		}
		f, err := s.field(name)
		if err != nil {
			return nil, err
		}
		seen[name] = true
		cols = append(cols, alias(f))
	}
	return cols, nil
}

func alias(f Field) string {
	if f.Column == f.Name {
		return f.Column
	}
	return fmt.Sprintf("%s AS %q", f.Column, f.Name)
}

func (s *Schema) where(filter Filter, scope []Condition) (string, []any, error) {
	var (
		clauses []string
		args    []any
	)
	if s.Base != "" {
		clauses = append(clauses, s.Base)
	}

	conds := make([]Condition, 0, len(scope)+len(filter.Conditions))
	conds = append(conds, scope...)
	conds = append(conds, filter.Conditions...)
	for _, c := range conds {
		f, err := s.field(c.Field)
		if err != nil {
			return "", nil, err
		}
		op, ok := sqlOps[c.Op]
		if !ok {
			return "", nil, fmt.Errorf("query: unsupported operator %q", c.Op)
		}
		v, err := f.Coerce(c.Value)
		if err != nil {
			return "", nil, err
		}
		args = append(args, v)
		if f.Kind.IsArray() {
			clauses = append(clauses, fmt.Sprintf("$%d %s ANY(%s)", len(args), flippedOps[c.Op], f.Column))
		} else {
			clauses = append(clauses, fmt.Sprintf("%s %s $%d", f.Column, op, len(args)))
		}
	}

	if len(clauses) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args, nil
}

func (s *Schema) orderBy(orders []Order) (string, error) {
	if len(orders) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(orders)+1)
	hasID := false
	for _, o := range orders {
		f, err := s.field(o.Field)
		if err != nil {
			return "", err
		}
		dir := "ASC"
		if o.Desc {
			dir = "DESC"
		}
		parts = append(parts, f.Column+" "+dir)
		hasID = hasID || f.Name == IDField
	}
	// stable pages
	if !hasID {
		parts = append(parts, s.index[IDField].Column+" ASC")
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}
