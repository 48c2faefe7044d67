package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type payload struct {
	Name  string `json:"name"`
	Price int64  `json:"price"`
}

func newTestCache(t *testing.T) (*JSON, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewJSON(client, "catalog", time.Minute), mr
}

func TestJSONRoundTripAndInvalidate(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	var got payload
	ok, err := c.Get(ctx, "list", &got)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.Set(ctx, "list", payload{Name: "Agenda", Price: 2500}))
	ok, err = c.Get(ctx, "list", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Agenda", got.Name)

	require.NoError(t, c.Invalidate(ctx))
	ok, err = c.Get(ctx, "list", &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestJSONExpires(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)
	require.NoError(t, c.Set(ctx, "item", payload{Name: "Lápiz"}))
	mr.FastForward(2 * time.Minute)

	var got payload
	ok, err := c.Get(ctx, "item", &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestNilClientAlwaysMisses(t *testing.T) {
	c := NewJSON(nil, "coupons", time.Minute)
	require.NoError(t, c.Set(context.Background(), "all", payload{}))
	ok, err := c.Get(context.Background(), "all", &payload{})
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, c.Invalidate(context.Background()))
}
