package carousel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func images(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = string(rune('a' + i))
	}
	return out
}

func TestNextPreviousAreInverse(t *testing.T) {
	for n := 1; n <= 5; n++ {
		for start := 0; start < n; start++ {
			c := New(images(n))
			require.NoError(t, c.JumpTo(start))

			c.Next()
			c.Previous()
			assert.Equal(t, start, c.Index(), "n=%d start=%d next/prev", n, start)

			c.Previous()
			c.Next()
			assert.Equal(t, start, c.Index(), "n=%d start=%d prev/next", n, start)
		}
	}
}

func TestWrapAround(t *testing.T) {
	c := New(images(3))
	c.Previous()
	assert.Equal(t, 2, c.Index())
	c.Next()
	assert.Equal(t, 0, c.Index())
	c.Next()
	c.Next()
	c.Next()
	assert.Equal(t, 0, c.Index())
}

func TestJumpTo(t *testing.T) {
	c := New(images(4))
	for i := 0; i < 4; i++ {
		require.NoError(t, c.JumpTo(i))
		assert.Equal(t, i, c.Index())
	}
	assert.Error(t, c.JumpTo(4))
	assert.Error(t, c.JumpTo(-1))
	assert.Equal(t, 3, c.Index())
}

func TestSwipeDirections(t *testing.T) {
	c := New(images(3))
	c.Swipe(SwipeLeft)
	assert.Equal(t, 1, c.Index())
	c.Swipe(SwipeRight)
	c.Swipe(SwipeRight)
	assert.Equal(t, 2, c.Index())
}

func TestSingleAndEmptyAreNoOps(t *testing.T) {
	one := New(images(1))
	one.Next()
	one.Previous()
	assert.Equal(t, 0, one.Index())
	assert.False(t, one.ShowControls())

	empty := New(nil)
	empty.Next()
	empty.Swipe(SwipeRight)
	assert.Equal(t, 0, empty.Index())
	assert.Equal(t, "", empty.Current())
}

func TestReplaceAndRemoveResetIndex(t *testing.T) {
	c := New(images(4))
	require.NoError(t, c.JumpTo(3))
	c.Replace(images(2))
	assert.Equal(t, 0, c.Index())

	require.NoError(t, c.JumpTo(1))
	require.NoError(t, c.Remove(0))
	assert.Equal(t, 0, c.Index())
	assert.Equal(t, []string{"b"}, c.Images())
	assert.Error(t, c.Remove(5))
}

func TestSeekClamps(t *testing.T) {
	c := New(images(3))
	c.Seek(10)
	assert.Equal(t, 2, c.Index())
	c.Seek(-4)
	assert.Equal(t, 0, c.Index())
	c.Seek(1)
	assert.Equal(t, "b", c.Current())
}
