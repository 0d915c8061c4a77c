package raster

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCornerCoordsNorthUpTransform(t *testing.T) {
	// 10m pixels, origin at (500000, 4100000), no rotation
	gt := [6]float64{500000, 10, 0, 4100000, 0, -10}
	xs, ys := cornerCoords(gt, 100, 50)

	west, east := minMax(xs)
	south, north := minMax(ys)

	assert.Equal(t, 500000.0, west)
	assert.Equal(t, 501000.0, east)
	assert.Equal(t, 4099500.0, south)
	assert.Equal(t, 4100000.0, north)
}

func TestCornerCoordsRotatedTransform(t *testing.T) {
	gt := [6]float64{0, 0, 1, 0, 1, 0}
	xs, ys := cornerCoords(gt, 20, 10)

	west, east := minMax(xs)
	south, north := minMax(ys)

	// axes are swapped by the rotation terms
	assert.Equal(t, 0.0, west)
	assert.Equal(t, 10.0, east)
	assert.Equal(t, 0.0, south)
	assert.Equal(t, 20.0, north)
}
