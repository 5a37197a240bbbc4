package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickReportsAfterInterval(t *testing.T) {
	p := NewProfiler()

	p.SetUpdateInterval(time.Hour)
	assert.False(t, p.Tick(), "interval not elapsed, no report expected")

	p.SetUpdateInterval(0)
	assert.True(t, p.Tick(), "zero interval reports on every tick")

	// The reporting tick resets the frame counter, so the next long
	// interval starts fresh.
	p.SetUpdateInterval(time.Hour)
	assert.False(t, p.Tick())
}
