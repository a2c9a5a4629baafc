package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/tour-service/internal/config"
)

func TestNewLogger(t *testing.T) {
	t.Parallel()

	for _, cfg := range []config.LoggerConfig{{Level: "debug"}, {Level: "bogus"}, {Level: "warn", Development: true}} {
		logger, err := NewLogger(cfg)
		require.NoError(t, err, cfg)
		assert.NotNil(t, logger)
	}
}

func TestRequestLogger(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	metrics := NewMetrics()

	app := fiber.New()
	app.Use(RequestLogger(zap.New(core), metrics))
	app.Get("/tours/:id", func(c *fiber.Ctx) error {
		return c.SendString(RequestID(c))
	})

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/tours/abc", nil))
	require.NoError(t, err)
	id := resp.Header.Get(RequestIDHeader)
	assert.NotEmpty(t, id)

	req := httptest.NewRequest(http.MethodGet, "/tours/def", nil)
	req.Header.Set(RequestIDHeader, "given-id")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "given-id", resp.Header.Get(RequestIDHeader))

	_, err = app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
	require.NoError(t, err)

	require.Equal(t, 3, logs.Len())
	assert.Equal(t, "given-id", logs.All()[1].ContextMap()["request_id"])
	assert.Equal(t, zap.WarnLevel, logs.All()[2].Level)

	snap := metrics.Snapshot()
	assert.EqualValues(t, 3, snap.Requests)
	assert.EqualValues(t, 2, snap.RequestsByPath["/tours/:id|GET|200"])
	assert.Equal(t, []string{"/tours/:id|GET|200"}, snap.TopPaths(1))
}

func TestMetrics_NilSafe(t *testing.T) {
	t.Parallel()

	var m *Metrics
	m.RecordRequest("/", "GET", 200, time.Millisecond)
	m.RecordError("/", "GET", "NOT_FOUND")
	assert.Zero(t, m.Snapshot().Requests)
}

func TestMetrics_Snapshot(t *testing.T) {
	t.Parallel()

	m := NewMetrics()
	m.RecordRequest("/a", "GET", 200, 2*time.Millisecond)
	m.RecordRequest("/a", "GET", 200, 4*time.Millisecond)
	m.RecordError("/a", "GET", "NOT_FOUND")

	snap := m.Snapshot()
	assert.InDelta(t, 3.0, snap.AvgLatencyMs, 0.001)
	assert.EqualValues(t, 1, snap.ErrorsByCode["/a|GET|NOT_FOUND"])

	snap.RequestsByPath["/a|GET|200"] = 99
	assert.EqualValues(t, 2, m.Snapshot().RequestsByPath["/a|GET|200"])
}
