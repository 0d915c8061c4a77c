package overlay

import (
	"image"
	"image/color"
	"math"
	"sort"

	"github.com/smart-field/smart-field-api-poc/internal/indices"
	"github.com/smart-field/smart-field-api-poc/internal/raster"
)

// Default layering opacities for drawing over basemap imagery.
const (
	DefaultIndexOpacity     = 0.7
	DefaultCompositeOpacity = 0.8
)

// Render maps an index grid to an RGBA overlay. NaN pixels look up the
// ramp midpoint for color but are forced fully transparent, so masked
// regions never show a midpoint tint. Valid pixels carry the layering
// opacity in the alpha channel.
//
// The overlay is built in NRGBA: the ramp colors are straight
// (non-premultiplied) and have to survive PNG encoding unchanged, which
// premultiplied image.RGBA cannot guarantee at partial opacity.
func Render(grid indices.Grid, ramp Ramp, opacity float64) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, grid.Width, grid.Height))
	alpha := opacityAlpha(opacity)
	midpoint := ramp.Midpoint()

	for y := 0; y < grid.Height; y++ {
		for x := 0; x < grid.Width; x++ {
			v := float64(grid.Data[y*grid.Width+x])
			if math.IsNaN(v) {
				c := ramp.Lookup(midpoint)
				img.SetNRGBA(x, y, color.NRGBA{c.R, c.G, c.B, 0})
				continue
			}
			c := ramp.Lookup(v)
			img.SetNRGBA(x, y, color.NRGBA{c.R, c.G, c.B, alpha})
		}
	}
	return img
}

// RenderComposite builds the true-color overlay from the visible bands.
// Each channel is stretched against its 98th percentile over valid
// pixels so a few bright rooftops do not flatten the whole field.
func RenderComposite(bands raster.Bands, mask indices.Mask, opacity float64) *image.NRGBA {
	width, height := bands.Red.Width, bands.Red.Height
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	alpha := opacityAlpha(opacity)

	redP98 := percentile98(bands.Red.Data, mask)
	greenP98 := percentile98(bands.Green.Data, mask)
	blueP98 := percentile98(bands.Blue.Data, mask)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			if mask.Invalid[i] {
				img.SetNRGBA(x, y, color.NRGBA{})
				continue
			}
			img.SetNRGBA(x, y, color.NRGBA{
				R: stretch(bands.Red.Data[i], redP98),
				G: stretch(bands.Green.Data[i], greenP98),
				B: stretch(bands.Blue.Data[i], blueP98),
				A: alpha,
			})
		}
	}
	return img
}

func opacityAlpha(opacity float64) uint8 {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	return uint8(math.Round(opacity * 255))
}

func stretch(v, p98 float32) uint8 {
	scaled := float64(v) / float64(p98) * 255
	if scaled < 0 {
		scaled = 0
	}
	if scaled > 255 {
		scaled = 255
	}
	return uint8(scaled)
}

func percentile98(data []float32, mask indices.Mask) float32 {
	valid := make([]float32, 0, len(data))
	for i, v := range data {
		if !mask.Invalid[i] {
			valid = append(valid, v)
		}
	}
	if len(valid) == 0 {
		return 1
	}
	sort.Slice(valid, func(i, j int) bool { return valid[i] < valid[j] })
	idx := int(float64(len(valid)-1) * 0.98)
	p98 := valid[idx]
	if p98 == 0 {
		return 1
	}
	return p98
}
