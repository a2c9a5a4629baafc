package events

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestDispatcher_Sync(t *testing.T) {
	t.Parallel()

	d := NewInMemoryDispatcher(zap.NewNop())
	var calls int32
	d.Subscribe(EventUserSignedUp, func(context.Context, Event) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("first failed")
	})
	d.Subscribe(EventUserSignedUp, func(_ context.Context, e Event) error {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "u1", e.SubjectID)
		return nil
	})

	err := d.Publish(context.Background(), NewEvent(EventUserSignedUp, "u1", nil))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first failed")
	assert.EqualValues(t, 2, calls)

	assert.NoError(t, d.Publish(context.Background(), NewEvent(EventBookingCreated, "u1", nil)))
}

func TestDispatcher_AsyncLogsFailures(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.ErrorLevel)
	d := NewInMemoryDispatcher(zap.New(core), WithAsync())
	d.Subscribe(EventPasswordChanged, func(ctx context.Context, _ Event) error {
		return ctx.Err()
	})
	d.Subscribe(EventPasswordChanged, func(context.Context, Event) error {
		return errors.New("smtp down")
	})

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, d.Publish(ctx, NewEvent(EventPasswordChanged, "u1", PasswordChangedPayload{Via: "reset"})))
	cancel()
	d.Wait()

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "smtp down", logs.All()[0].ContextMap()["error"])
}

func TestNewEvent(t *testing.T) {
	t.Parallel()

	a := NewEvent(EventBookingCreated, "u1", BookingCreatedPayload{TourID: "t1"})
	b := NewEvent(EventBookingCreated, "u1", nil)
	assert.NotEqual(t, a.ID, b.ID)
	assert.False(t, a.Timestamp.IsZero())
}
