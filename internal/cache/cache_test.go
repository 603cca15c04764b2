package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNilClientIsEmptyCache(t *testing.T) {
	var c *Client
	ctx := context.Background()

	assert.NoError(t, c.Set(ctx, "user:1", []byte("x"), time.Minute))

	got, err := c.Get(ctx, "user:1")
	assert.NoError(t, err)
	assert.Nil(t, got)

	assert.NoError(t, c.Delete(ctx, "user:1"))
	assert.ErrorIs(t, c.Ping(ctx), ErrDisabled)
	assert.NoError(t, c.Close())
}

func TestUnreachableRedisReadsAsMiss(t *testing.T) {
	// Nothing listens on port 1.
	c := New("127.0.0.1:1", "", 0)
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	assert.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.Error(t, c.Ping(ctx))
}
