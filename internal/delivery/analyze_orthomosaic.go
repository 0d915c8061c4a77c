package delivery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gammazero/workerpool"
	"github.com/smart-field/smart-field-api-poc/internal/indices"
	"github.com/smart-field/smart-field-api-poc/internal/overlay"
	"github.com/smart-field/smart-field-api-poc/internal/properties"
	"github.com/smart-field/smart-field-api-poc/internal/raster"
	"github.com/smart-field/smart-field-api-poc/output"
)

// Config carries the per-run knobs of the visualization path. The zero
// value is not usable; start from DefaultConfig.
type Config struct {
	Decimation       int
	IndexOpacity     float64
	CompositeOpacity float64
	NDVIRamp         overlay.Ramp
	NDWIRamp         overlay.Ramp
	EVIRamp          overlay.Ramp
}

func DefaultConfig() Config {
	return Config{
		Decimation:       10,
		IndexOpacity:     overlay.DefaultIndexOpacity,
		CompositeOpacity: overlay.DefaultCompositeOpacity,
		NDVIRamp:         overlay.DefaultNDVIRamp,
		NDWIRamp:         overlay.DefaultNDWIRamp,
		EVIRamp:          overlay.DefaultEVIRamp,
	}
}

// Result lists the products of one analysis run.
type Result struct {
	IndexRasters []string
	Overlays     []string
	Legends      []string
	Bounds       output.Bounds
}

// AnalyzeOrthomosaic runs the full visualization path for one
// orthomosaic under data/orthomosaics: a decimated 4-band read, one
// shared validity mask, the three index grids, and per-index GeoTIFF,
// overlay PNG and legend, plus the RGB composite overlay.
func AnalyzeOrthomosaic(ctx context.Context, name string, cfg Config) (*Result, error) {
	inputPath := filepath.Join(properties.RootPath(), "data", "orthomosaics", name)
	resultDir := filepath.Join(properties.RootPath(), "data", "result")
	if err := os.MkdirAll(resultDir, os.ModePerm); err != nil {
		return nil, err
	}

	ds, err := raster.Open(inputPath)
	if err != nil {
		return nil, err
	}
	defer ds.Close()

	south, west, north, east, err := raster.BoundsInGeographic(ds)
	if err != nil {
		return nil, err
	}
	bounds := output.Bounds{South: south, West: west, North: north, East: east}

	geoRef, err := raster.GeoRefOf(ds)
	if err != nil {
		return nil, err
	}

	bands, err := raster.ReadBands(ctx, ds, cfg.Decimation)
	if err != nil {
		return nil, err
	}

	// One mask shared by every index computed from these bands.
	mask := indices.BuildMask(bands)

	base := name[:len(name)-len(filepath.Ext(name))]
	result := &Result{Bounds: bounds}

	type product struct {
		grid    indices.Grid
		ramp    overlay.Ramp
		caption string
	}
	products := []product{
		{indices.NDVI(bands, mask), cfg.NDVIRamp, "NDVI (Vegetation Index)"},
		{indices.NDWI(bands, mask), cfg.NDWIRamp, "NDWI (Water Index)"},
		{indices.EVI(bands, mask), cfg.EVIRamp, "EVI (Enhanced Vegetation Index)"},
	}

	// The three index products are independent of each other; fan them
	// out and collect errors under a shared lock.
	var (
		mu   sync.Mutex
		errs []error
	)
	wp := workerpool.New(len(products))
	for _, p := range products {
		wp.Submit(func() {
			rasterPath := filepath.Join(resultDir, fmt.Sprintf("%s_%s.tif", base, p.grid.Name))
			overlayPath := filepath.Join(resultDir, fmt.Sprintf("%s_%s.png", base, p.grid.Name))
			legendPath := filepath.Join(resultDir, fmt.Sprintf("%s_%s_legend.png", base, p.grid.Name))

			if err := indices.WriteGeoTIFF(p.grid, geoRef, rasterPath); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			img := overlay.Render(p.grid, p.ramp, cfg.IndexOpacity)
			if err := output.CreateOverlayImage(img, bounds, overlayPath); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}
			if err := overlay.Legend(p.ramp, p.caption, legendPath); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return
			}

			mu.Lock()
			result.IndexRasters = append(result.IndexRasters, rasterPath)
			result.Overlays = append(result.Overlays, overlayPath)
			result.Legends = append(result.Legends, legendPath)
			mu.Unlock()
		})
	}
	wp.StopWait()
	if len(errs) > 0 {
		return nil, errs[0]
	}

	compositePath := filepath.Join(resultDir, fmt.Sprintf("%s_rgb.png", base))
	composite := overlay.RenderComposite(bands, mask, cfg.CompositeOpacity)
	if err := output.CreateOverlayImage(composite, bounds, compositePath); err != nil {
		return nil, err
	}
	result.Overlays = append(result.Overlays, compositePath)

	return result, nil
}
