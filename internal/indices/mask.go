package indices

import "github.com/smart-field/smart-field-api-poc/internal/raster"

// Mask flags pixels carrying no measurement. Invalid is true where a
// pixel should be excluded from every derived index.
type Mask struct {
	Width   int
	Height  int
	Invalid []bool
}

// BuildMask derives the validity mask shared by all indices computed
// from the same four bands. A pixel is invalid when all four bands are
// zero, or when any band equals the declared nodata sentinel.
//
// The all-zero rule applies even without a declared sentinel; it can
// misclassify genuinely black pixels, but it matches how the
// orthomosaics are stitched (collar pixels are zero-filled).
func BuildMask(bands raster.Bands) Mask {
	mask := Mask{
		Width:   bands.Red.Width,
		Height:  bands.Red.Height,
		Invalid: make([]bool, len(bands.Red.Data)),
	}

	for i := range mask.Invalid {
		r := bands.Red.Data[i]
		g := bands.Green.Data[i]
		b := bands.Blue.Data[i]
		n := bands.Nir.Data[i]

		if r == 0 && g == 0 && b == 0 && n == 0 {
			mask.Invalid[i] = true
			continue
		}
		if bands.NoData != nil {
			nd := float32(*bands.NoData)
			if r == nd || g == nd || b == nd || n == nd {
				mask.Invalid[i] = true
			}
		}
	}
	return mask
}
