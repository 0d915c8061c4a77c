package indices

import (
	"math"

	"github.com/smart-field/smart-field-api-poc/internal/raster"
)

// Grid is one computed index: values in [-1, 1], or NaN where the
// validity mask flags the pixel. Immutable once returned.
type Grid struct {
	Name   string
	Width  int
	Height int
	Data   []float32
}

// NDVI computes (nir - red) / (nir + red).
func NDVI(bands raster.Bands, mask Mask) Grid {
	return compute("ndvi", bands.Red, mask, func(i int) float32 {
		nir, red := bands.Nir.Data[i], bands.Red.Data[i]
		return safeDivide(nir-red, nir+red)
	})
}

// NDWI computes (green - nir) / (green + nir).
func NDWI(bands raster.Bands, mask Mask) Grid {
	return compute("ndwi", bands.Green, mask, func(i int) float32 {
		green, nir := bands.Green.Data[i], bands.Nir.Data[i]
		return safeDivide(green-nir, green+nir)
	})
}

// EVI computes 2.5 * (nir - red) / (nir + 6*red - 7.5*blue + 1).
func EVI(bands raster.Bands, mask Mask) Grid {
	return compute("evi", bands.Red, mask, func(i int) float32 {
		nir, red, blue := bands.Nir.Data[i], bands.Red.Data[i], bands.Blue.Data[i]
		return 2.5 * safeDivide(nir-red, nir+6*red-7.5*blue+1)
	})
}

// compute applies the per-pixel formula, clips to [-1, 1], then
// overwrites masked pixels with NaN. The order is load-bearing: the
// zero-denominator guard runs inside the formula, clipping bounds the
// numeric range, and masking wins over whatever the arithmetic produced.
func compute(name string, ref raster.Band, mask Mask, formula func(i int) float32) Grid {
	grid := Grid{
		Name:   name,
		Width:  ref.Width,
		Height: ref.Height,
		Data:   make([]float32, len(ref.Data)),
	}
	for i := range grid.Data {
		grid.Data[i] = clip(formula(i))
		if mask.Invalid[i] {
			grid.Data[i] = float32(math.NaN())
		}
	}
	return grid
}

// safeDivide returns numerator/denominator, or 0 when the denominator
// is exactly zero. Division anomalies are corrected here, never
// surfaced as errors.
func safeDivide(numerator, denominator float32) float32 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

func clip(v float32) float32 {
	if v < -1 {
		return -1
	}
	if v > 1 {
		return 1
	}
	return v
}
