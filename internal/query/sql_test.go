package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/spec-kit/tour-service/pkg/util"
)

func testSchema() *Schema {
	return NewSchema("tours", []Field{
		{Name: "id", Column: "id", Kind: KindUUID},
		{Name: "name", Column: "name", Kind: KindText},
		{Name: "price", Column: "price", Kind: KindFloat},
		{Name: "duration", Column: "duration", Kind: KindInt},
		{Name: "startDates", Column: "start_dates", Kind: KindTimeArray},
		{Name: "createdAt", Column: "created_at", Kind: KindTime},
		{Name: "__v", Column: "version", Kind: KindInt},
	}).WithBase("secret_tour = false").WithBookkeeping("__v")
}

func TestSchema_SelectDefaults(t *testing.T) {
	t.Parallel()

	q, err := New(Params{}).All().Build()
	require.NoError(t, err)

	stmt, err := testSchema().Select(q)
	require.NoError(t, err)
	assert.Equal(t,
		`SELECT id, name, price, duration, start_dates AS "startDates", created_at AS "createdAt" FROM tours`+
			` WHERE secret_tour = false ORDER BY created_at DESC, id ASC LIMIT 100`,
		stmt.SQL)
	assert.Empty(t, stmt.Args)
}

func TestSchema_SelectShaped(t *testing.T) {
	t.Parallel()

	q, err := New(Params{
		"price[gte]": "500",
		"duration":   "5",
		"sort":       "-price,name",
		"fields":     "name,price,name",
		"page":       "2",
		"limit":      "10",
	}).All().Build()
	require.NoError(t, err)

	stmt, err := testSchema().Select(q)
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id, name, price FROM tours WHERE secret_tour = false AND duration = $1 AND price >= $2"+
			" ORDER BY price DESC, name ASC, id ASC LIMIT 10 OFFSET 10",
		stmt.SQL)
	assert.Equal(t, []any{int64(5), float64(500)}, stmt.Args)
}

func TestSchema_ScopeComesFirst(t *testing.T) {
	t.Parallel()

	scope := Condition{Field: "id", Op: OpEq, Value: "4f2c6a1e-8b1d-4c1e-9b7a-0d3c2b1a0f9e"}
	q, err := New(Params{"price[lt]": "10"}).Filter().Build()
	require.NoError(t, err)

	stmt, err := testSchema().Select(q, scope)
	require.NoError(t, err)
	assert.Contains(t, stmt.SQL, " FROM tours WHERE secret_tour = false AND id = $1 AND price < $2")
	assert.Equal(t, []any{scope.Value, float64(10)}, stmt.Args)
}

func TestSchema_ArrayFieldsMatchAnyElement(t *testing.T) {
	t.Parallel()

	q, err := New(Params{"startDates[gte]": "2021-06-01"}).Filter().Build()
	require.NoError(t, err)

	stmt, err := testSchema().Select(q)
	require.NoError(t, err)
	assert.Contains(t, stmt.SQL, "$1 <= ANY(start_dates)")
	assert.Equal(t, []any{time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC)}, stmt.Args)
}

func TestSchema_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		params  Params
		wantMsg string
	}{
		{"unknown filter field", Params{"password": "x"}, "Invalid field: password"},
		{"uncoercible value", Params{"price": "abc"}, "Invalid price: abc"},
		{"bad uuid", Params{"id": "1; DROP TABLE tours"}, "Invalid id: 1; DROP TABLE tours"},
		{"unknown sort field", Params{"sort": "name;--"}, "Invalid field: name;--"},
		{"unknown projection", Params{"fields": "name,secret"}, "Invalid field: secret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			q, err := New(tt.params).All().Build()
			require.NoError(t, err)

			_, err = testSchema().Select(q)
			require.Error(t, err)
			de := apperrors.ToDomainError(err)
			assert.Equal(t, apperrors.CodeValidationFailed, de.Code)
			assert.Equal(t, tt.wantMsg, de.Message)
		})
	}
}

func TestSchema_ExplicitBookkeepingProjection(t *testing.T) {
	t.Parallel()

	q, err := New(Params{"fields": "__v"}).LimitFields().Build()
	require.NoError(t, err)

	stmt, err := testSchema().Select(q)
	require.NoError(t, err)
	assert.Equal(t, `SELECT id, version AS "__v" FROM tours WHERE secret_tour = false`, stmt.SQL)
}

func TestNewSchema_RequiresID(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() { NewSchema("x", []Field{{Name: "name", Column: "name"}}) })
}

func TestSchema_SelectFarPageKeepsOffset(t *testing.T) {
	t.Parallel()

	q, err := New(Params{"page": "9223372036854775807", "limit": "100"}).All().Build()
	require.NoError(t, err)

	stmt, err := testSchema().Select(q)
	require.NoError(t, err)
	assert.Contains(t, stmt.SQL, " LIMIT 100 OFFSET 9223372036854775807")
}
