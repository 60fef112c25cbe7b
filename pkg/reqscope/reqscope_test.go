package reqscope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOncePerScope(t *testing.T) {
	ctx := With(context.Background())
	assert.True(t, Once(ctx, "flow_viewed:7"))
	assert.False(t, Once(ctx, "flow_viewed:7"))
	assert.True(t, Once(ctx, "flow_viewed:8"))

	other := With(context.Background())
	assert.True(t, Once(other, "flow_viewed:7"))
}

func TestOnceWithoutScope(t *testing.T) {
	ctx := context.Background()
	assert.Nil(t, From(ctx))
	assert.True(t, Once(ctx, "k"))
	assert.True(t, Once(ctx, "k"))
}
