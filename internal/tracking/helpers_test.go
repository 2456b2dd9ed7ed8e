package tracking_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"roomstatus/internal/tracking"
	"roomstatus/internal/tracking/trackingtest"
)

var testEpoch = time.Date(2026, 10, 1, 8, 0, 0, 0, time.UTC)

// stepClock advances by step on every reading so ledger order is deterministic.
type stepClock struct {
	mu   sync.Mutex
	t    time.Time
	step time.Duration
}

func (c *stepClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(c.step)
	return c.t
}

func newTestService(t *testing.T, opts ...tracking.Option) (*tracking.Service, *trackingtest.Store) {
	t.Helper()
	store := trackingtest.NewStore()
	clock := &stepClock{t: testEpoch, step: time.Minute}
	base := []tracking.Option{
		tracking.WithClock(clock.now),
		tracking.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	return tracking.NewService(store, append(base, opts...)...), store
}

func mustCreateStatus(t *testing.T, svc *tracking.Service, name string, isDefault bool) *tracking.Status {
	t.Helper()
	st, err := svc.CreateStatus(context.Background(), tracking.StatusInput{Name: name, Color: "#22c55e", IsDefault: isDefault})
	require.NoError(t, err)
	return st
}

func mustTransition(t *testing.T, svc *tracking.Service, in tracking.TransitionInput) *tracking.Entry {
	t.Helper()
	e, err := svc.Transition(context.Background(), in)
	require.NoError(t, err)
	return e
}

func ptr[T any](v T) *T { return &v }
