package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilCacheIsAMiss(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []int{1, 2}, time.Minute))

	var out []int
	found, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Close())
}

func TestConnectWithoutAddrDisablesCache(t *testing.T) {
	c, err := Connect(context.Background(), Options{})
	require.NoError(t, err)
	assert.Nil(t, c)
}
