package query

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/spec-kit/tour-service/pkg/util"
)

// Kind is the store type of a field; filter values are coerced to it.
type Kind int

const (
	KindText Kind = iota
	KindInt
	KindFloat
	KindBool
	KindTime
	KindUUID
	KindTextArray
	KindTimeArray
)

// IsArray reports whether conditions on the kind match any element.
func (k Kind) IsArray() bool {
	return k == KindTextArray || k == KindTimeArray
}

func (k Kind) element() Kind {
	switch k {
	case KindTextArray:
		return KindText
	case KindTimeArray:
		return KindTime
	default:
		return k
	}
}

// Field maps an API field name onto a column.
type Field struct {
	Name   string
	Column string
	Kind   Kind
}

// Schema describes one queryable table. Only listed fields can be filtered, sorted or
// projected, so request input never reaches the SQL text.
type Schema struct {
	Table string
	// Base is a fixed predicate applied to every statement, e.g. hiding soft-deleted rows.
	Base string
	// Bookkeeping names the field hidden by the default projection.
	Bookkeeping string
	fields      []Field
	index       map[string]Field
}

// IDField is always selected.
const IDField = "id"

// NewSchema indexes fields by API name. The id field must be present.
func NewSchema(table string, fields []Field) *Schema {
	s := &Schema{Table: table, fields: fields, index: make(map[string]Field, len(fields))}
	for _, f := range fields {
		s.index[f.Name] = f
	}
	if _, ok := s.index[IDField]; !ok {
		panic(fmt.Sprintf("query: schema %s has no %s field", table, IDField))
	}
	return s
}

// WithBase sets the fixed predicate.
func (s *Schema) WithBase(predicate string) *Schema {
	s.Base = predicate
	return s
}

// WithBookkeeping sets the field hidden by default.
func (s *Schema) WithBookkeeping(name string) *Schema {
	s.Bookkeeping = name
	return s
}

func (s *Schema) field(name string) (Field, error) {
	f, ok := s.index[name]
	if !ok {
		return Field{}, apperrors.NewValidationError(fmt.Sprintf("Invalid field: %s", name), nil)
	}
	return f, nil
}

// Coerce converts a raw filter value to the field kind.
func (f Field) Coerce(raw string) (any, error) {
	v, err := coerce(f.Kind.element(), raw)
	if err != nil {
		return nil, apperrors.NewValidationError(fmt.Sprintf("Invalid %s: %s", f.Name, raw), nil)
	}
	return v, nil
}

var timeLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func coerce(kind Kind, raw string) (any, error) {
	switch kind {
	case KindInt:
		return strconv.ParseInt(raw, 10, 64)
	case KindFloat:
		return strconv.ParseFloat(raw, 64)
	case KindBool:
		return strconv.ParseBool(raw)
	case KindTime:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				return t, nil
			}
		}
		return nil, fmt.Errorf("unrecognised time %q", raw)
	case KindUUID:
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		return id.String(), nil
	default:
		return raw, nil
	}
}
