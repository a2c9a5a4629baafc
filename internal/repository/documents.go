package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/tour-service/internal/query"
)

// Document is one projected row keyed by API field name.
type Document map[string]any

func listDocuments(ctx context.Context, pool *pgxpool.Pool, schema *query.Schema, q query.Query, scope ...query.Condition) ([]Document, error) {
	stmt, err := schema.Select(q, scope...)
	if err != nil {
		return nil, err
	}
	rows, err := pool.Query(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, err
	}
	maps, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, err
	}
	docs := make([]Document, len(maps))
	for i, m := range maps {
		docs[i] = normalize(m)
	}
	return docs, nil
}

// normalize turns driver values into JSON friendly ones.
func normalize(m map[string]any) Document {
	doc := make(Document, len(m))
	for k, v := range m {
		doc[k] = normalizeValue(v)
	}
	return doc
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case [16]byte:
		return uuid.UUID(val).String()
	case time.Time:
		return val.UTC()
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalizeValue(e)
		}
		return out
	default:
		return v
	}
}
