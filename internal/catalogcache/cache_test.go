package catalogcache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roomstatus/internal/tracking"
)

type fakeClient struct {
	data   map[string]string
	ttl    time.Duration
	getErr error
	setErr error
}

func newFakeClient() *fakeClient {
	return &fakeClient{data: map[string]string{}}
}

func (f *fakeClient) Get(ctx context.Context, key string) *redis.StringCmd {
	if f.getErr != nil {
		return redis.NewStringResult("", f.getErr)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	if f.setErr != nil {
		return redis.NewStatusResult("", f.setErr)
	}
	switch v := value.(type) {
	case []byte:
		f.data[key] = string(v)
	case string:
		f.data[key] = v
	}
	f.ttl = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	n := 0
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(int64(n), nil)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCache_SetGetInvalidate(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	c := New(client, 5*time.Minute, quietLogger())

	_, ok := c.Get(ctx)
	assert.False(t, ok)

	statuses := []tracking.Status{
		{ID: "a", Name: "Available", Color: "#22c55e", IsDefault: true, IsActive: true},
		{ID: "b", Name: "Dirty", Color: "#f59e0b", IsActive: true},
	}
	c.Set(ctx, statuses)
	assert.Equal(t, 5*time.Minute, client.ttl)

	got, ok := c.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, []string{"Available", "Dirty"}, []string{got[0].Name, got[1].Name})
	assert.True(t, got[0].IsDefault)

	c.Invalidate(ctx)
	_, ok = c.Get(ctx)
	assert.False(t, ok)
}

func TestCache_FailuresAreMisses(t *testing.T) {
	ctx := context.Background()
	client := newFakeClient()
	c := New(client, time.Minute, quietLogger())

	client.data[Key] = "{not json"
	_, ok := c.Get(ctx)
	assert.False(t, ok)

	client.getErr = errors.New("connection refused")
	_, ok = c.Get(ctx)
	assert.False(t, ok)

	client.setErr = errors.New("READONLY")
	assert.NotPanics(t, func() { c.Set(ctx, []tracking.Status{{ID: "a"}}) })
}
