package ratecontrol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimiterAdmitsBurstThenRejects(t *testing.T) {
	l := NewSubmitLimiter(5)

	for i := 0; i < 5; i++ {
		assert.True(t, l.Allow(), "submission %d should be admitted", i)
	}
	assert.False(t, l.Allow(), "burst exhausted; next submission must wait")
}

func TestZeroRateDisablesLimiting(t *testing.T) {
	l := NewSubmitLimiter(0)
	for i := 0; i < 1000; i++ {
		assert.True(t, l.Allow())
	}
}

func TestSetRate(t *testing.T) {
	l := NewSubmitLimiter(1)
	assert.True(t, l.Allow())
	assert.False(t, l.Allow())

	l.SetRate(0)
	assert.True(t, l.Allow())
	assert.Equal(t, 0, l.Rate())

	l.SetRate(3)
	assert.Equal(t, 3, l.Rate())
	assert.True(t, l.Allow())
}
