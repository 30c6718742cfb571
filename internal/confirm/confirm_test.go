package confirm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuto(t *testing.T) {
	yes := &Auto{Answer: true}
	ok, err := yes.Confirm(context.Background(), "summary")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []string{"summary"}, yes.Seen)

	no := &Auto{}
	ok, err = no.Confirm(context.Background(), "summary")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConfirmHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := &Auto{Answer: true}
	ok, err := a.Confirm(ctx, "summary")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
	assert.Empty(t, a.Seen)

	ok, err = NewInteractive().Confirm(ctx, "summary")
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
}
