package indices

import (
	"fmt"
	"os"

	"github.com/airbusgeo/godal"
	"github.com/smart-field/smart-field-api-poc/internal/raster"
)

// WriteGeoTIFF saves a single index grid as a one-band float32 GeoTIFF
// with lossless LZW compression, carrying over the source georeferencing.
// The grid may be decimated relative to the source; the geotransform is
// rescaled so the output still covers the same extent.
func WriteGeoTIFF(grid Grid, ref raster.GeoRef, path string) error {
	dst, err := godal.Create(godal.GTiff, path, 1, godal.Float32, grid.Width, grid.Height,
		godal.CreationOption("COMPRESS=LZW"))
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := writeGrid(grid, ref, dst); err != nil {
		dst.Close()
		os.Remove(path)
		return err
	}
	if err := dst.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("failed to finalize %s: %w", path, err)
	}
	return nil
}

func writeGrid(grid Grid, ref raster.GeoRef, dst *godal.Dataset) error {
	gt := ref.Transform
	scaleX := float64(ref.Width) / float64(grid.Width)
	scaleY := float64(ref.Height) / float64(grid.Height)
	gt[1] *= scaleX
	gt[2] *= scaleY
	gt[4] *= scaleX
	gt[5] *= scaleY
	if err := dst.SetGeoTransform(gt); err != nil {
		return fmt.Errorf("failed to set GeoTransform: %w", err)
	}

	if ref.Projection != "" {
		sr, err := godal.NewSpatialRefFromWKT(ref.Projection)
		if err != nil {
			return fmt.Errorf("failed to parse source projection: %w", err)
		}
		defer sr.Close()
		if err := dst.SetSpatialRef(sr); err != nil {
			return fmt.Errorf("failed to set spatial reference: %w", err)
		}
	}

	if err := dst.Bands()[0].Write(0, 0, grid.Data, grid.Width, grid.Height); err != nil {
		return fmt.Errorf("failed to write %s grid: %w", grid.Name, err)
	}
	return nil
}
