package featureflags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAndEvaluate(t *testing.T) {
	t.Parallel()
	flags := Parse(" WebP_Images = on , legacy=off, broken, empty=, half=50%, all=100%, bad=x%")

	assert.True(t, flags.On(WebPImages))
	assert.False(t, flags.On("legacy"))
	assert.False(t, flags.On("broken"))
	assert.False(t, flags.On("empty"))
	assert.False(t, flags.On("half"))
	assert.True(t, flags.On("all"))
	assert.False(t, flags.For("bad", 1))
	assert.False(t, flags.On("missing"))
}

func TestRolloutIsStable(t *testing.T) {
	t.Parallel()
	flags := Parse("half=50%")

	enabled := 0
	for id := uint(1); id <= 1000; id++ {
		first := flags.For("half", id)
		assert.Equal(t, first, flags.For("half", id))
		if first {
			enabled++
		}
	}
	assert.InDelta(t, 500, enabled, 100)
}

func TestNilSet(t *testing.T) {
	t.Parallel()
	var flags *Set
	assert.False(t, flags.On(WebPImages))
}
