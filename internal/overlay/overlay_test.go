package overlay

import (
	"bytes"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/smart-field/smart-field-api-poc/internal/indices"
	"github.com/smart-field/smart-field-api-poc/internal/raster"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRampClampsToEndStops(t *testing.T) {
	ramp := DefaultNDVIRamp

	assert.Equal(t, ramp.Stops[0].Color, ramp.Lookup(-2))
	assert.Equal(t, ramp.Stops[len(ramp.Stops)-1].Color, ramp.Lookup(2))
}

func TestRampHitsExactStops(t *testing.T) {
	ramp := Ramp{Stops: []Stop{
		{0, color.RGBA{255, 0, 0, 255}},
		{1, color.RGBA{0, 0, 255, 255}},
	}}

	assert.Equal(t, color.RGBA{255, 0, 0, 255}, ramp.Lookup(0))
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, ramp.Lookup(1))
}

func TestRampInterpolatesBetweenStops(t *testing.T) {
	ramp := Ramp{Stops: []Stop{
		{0, color.RGBA{0, 0, 0, 255}},
		{1, color.RGBA{255, 255, 255, 255}},
	}}

	mid := ramp.Lookup(0.5)
	// Lab-space midpoint of black and white is a mid gray
	assert.InDelta(t, 119, int(mid.R), 20)
	assert.Equal(t, mid.R, mid.G)
	assert.Equal(t, mid.G, mid.B)
}

func TestRenderMaskedPixelsAreTransparent(t *testing.T) {
	nan := float32(math.NaN())
	grid := indices.Grid{Name: "ndvi", Width: 2, Height: 1, Data: []float32{0.5, nan}}

	img := Render(grid, DefaultNDVIRamp, DefaultIndexOpacity)

	assert.Equal(t, uint8(179), img.NRGBAAt(0, 0).A, "valid pixel carries round(0.7*255)")
	assert.Zero(t, img.NRGBAAt(1, 0).A)
}

func TestRenderStoresStraightRampColors(t *testing.T) {
	// the deep-green end stop must land in the pixel data untouched by
	// the partial alpha
	grid := indices.Grid{Name: "ndvi", Width: 1, Height: 1, Data: []float32{1}}

	img := Render(grid, DefaultNDVIRamp, DefaultIndexOpacity)

	stop := DefaultNDVIRamp.Stops[len(DefaultNDVIRamp.Stops)-1].Color
	assert.Equal(t, color.NRGBA{stop.R, stop.G, stop.B, 179}, img.NRGBAAt(0, 0))
}

func TestRenderedColorsSurvivePNGRoundTrip(t *testing.T) {
	grid := indices.Grid{Name: "ndvi", Width: 1, Height: 1, Data: []float32{1}}
	img := Render(grid, DefaultNDVIRamp, DefaultIndexOpacity)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	decoded, err := png.Decode(&buf)
	require.NoError(t, err)

	stop := DefaultNDVIRamp.Stops[len(DefaultNDVIRamp.Stops)-1].Color
	r, g, b, a := decoded.At(0, 0).RGBA()
	// un-premultiply what png gives back and compare to the ramp stop
	assert.Equal(t, uint32(stop.R), (r*0xff+a/2)/a)
	assert.Equal(t, uint32(stop.G), (g*0xff+a/2)/a)
	assert.Equal(t, uint32(stop.B), (b*0xff+a/2)/a)
	assert.Equal(t, uint32(179*0x101), a)
}

func TestRenderCompositeStretchAndMask(t *testing.T) {
	band := func(data []float32) raster.Band {
		return raster.Band{Width: len(data), Height: 1, Data: data}
	}
	bands := raster.Bands{
		Red:   band([]float32{100, 0}),
		Green: band([]float32{50, 0}),
		Blue:  band([]float32{25, 0}),
		Nir:   band([]float32{200, 0}),
	}
	mask := indices.BuildMask(bands)

	img := RenderComposite(bands, mask, 1.0)

	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, img.NRGBAAt(0, 0), "channels at their own p98 saturate")
	assert.Zero(t, img.NRGBAAt(1, 0).A)
}

func TestOpacityAlphaBounds(t *testing.T) {
	assert.Equal(t, uint8(0), opacityAlpha(-1))
	assert.Equal(t, uint8(255), opacityAlpha(2))
	assert.Equal(t, uint8(179), opacityAlpha(0.7))
	assert.Equal(t, uint8(204), opacityAlpha(0.8))
}
