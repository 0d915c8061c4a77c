package overlay

import (
	"image/color"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Stop anchors a color at one value of the ramp domain.
type Stop struct {
	Value float64
	Color color.RGBA
}

// Ramp maps scalar index values onto colors by interpolating between
// ordered stops. Lookup is a pure function of the value; alpha is the
// renderer's business, not the ramp's.
type Ramp struct {
	Stops []Stop
}

// Default ramps, approximating the palettes the agronomists are used to
// reading: red through yellow to green for vegetation vigor, brown to
// teal for moisture, pale to deep green for EVI. Callers pass these in
// explicitly so concurrent pipelines can run with different ramps.
var (
	DefaultNDVIRamp = Ramp{Stops: []Stop{
		{-1.0, color.RGBA{165, 0, 38, 255}},
		{-0.5, color.RGBA{215, 48, 39, 255}},
		{0.0, color.RGBA{254, 224, 139, 255}},
		{0.5, color.RGBA{102, 189, 99, 255}},
		{1.0, color.RGBA{0, 104, 55, 255}},
	}}
	DefaultNDWIRamp = Ramp{Stops: []Stop{
		{-1.0, color.RGBA{84, 48, 5, 255}},
		{-0.5, color.RGBA{191, 129, 45, 255}},
		{0.0, color.RGBA{245, 245, 245, 255}},
		{0.5, color.RGBA{53, 151, 143, 255}},
		{1.0, color.RGBA{0, 60, 48, 255}},
	}}
	DefaultEVIRamp = Ramp{Stops: []Stop{
		{-1.0, color.RGBA{255, 255, 229, 255}},
		{-0.3, color.RGBA{247, 252, 185, 255}},
		{0.2, color.RGBA{173, 221, 142, 255}},
		{0.6, color.RGBA{65, 171, 93, 255}},
		{1.0, color.RGBA{0, 69, 41, 255}},
	}}
)

// Midpoint is the neutral domain value used for color lookup of NaN
// pixels before their alpha is zeroed.
func (r Ramp) Midpoint() float64 {
	return (r.Stops[0].Value + r.Stops[len(r.Stops)-1].Value) / 2
}

// Lookup interpolates the color for a value. Values outside the domain
// clamp to the end stops. Blending happens in Lab space so the midtones
// do not go muddy the way naive RGB interpolation does.
func (r Ramp) Lookup(value float64) color.RGBA {
	stops := r.Stops
	if value <= stops[0].Value {
		return stops[0].Color
	}
	if value >= stops[len(stops)-1].Value {
		return stops[len(stops)-1].Color
	}

	idx := 0
	for value > stops[idx+1].Value {
		idx++
	}

	lo, hi := stops[idx], stops[idx+1]
	t := (value - lo.Value) / (hi.Value - lo.Value)
	c1, _ := colorful.MakeColor(lo.Color)
	c2, _ := colorful.MakeColor(hi.Color)
	blended := c1.BlendLab(c2, t).Clamped()

	rr, gg, bb := blended.RGB255()
	return color.RGBA{rr, gg, bb, 255}
}
