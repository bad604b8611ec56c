package clock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNowFormat(t *testing.T) {
	ts := Now()
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z$`, ts)
}

func TestIDAllocatorIsStrictlyIncreasing(t *testing.T) {
	var a IDAllocator
	first := a.Next()
	second := a.Next()
	third := a.Next()
	assert.Equal(t, uint64(0), first)
	assert.Equal(t, uint64(1), second)
	assert.Equal(t, uint64(2), third)
}
