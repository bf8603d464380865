package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// A nil cache (redis not configured) degrades to misses and no-op
// writes so the service just recomputes.
func TestNilCacheDegradesGracefully(t *testing.T) {
	var r *Reports
	ctx := context.Background()

	var dest []string
	assert.False(t, r.Get(ctx, "s1", "t1", "weeks", &dest))
	assert.NoError(t, r.Set(ctx, "s1", "t1", "weeks", []string{"x"}))
	assert.NoError(t, r.Invalidate(ctx, "s1", "t1"))
}

func TestKeyShapes(t *testing.T) {
	assert.Equal(t, "report:s1:t1:weeks", reportKey("s1", "t1", "weeks"))
	assert.Equal(t, "reportkeys:s1:t1", indexKey("s1", "t1"))
}
