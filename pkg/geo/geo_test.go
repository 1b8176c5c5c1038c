package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMilesToMeters(t *testing.T) {
	assert.InDelta(t, 1609.34, MilesToMeters(1), 0.001)
	assert.InDelta(t, 8046.7, MilesToMeters(5), 0.001)
	assert.Zero(t, MilesToMeters(0))
}
