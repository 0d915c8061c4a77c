package raster

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/airbusgeo/godal"
	"golang.org/x/sync/errgroup"
)

// Fixed band layout of the drone orthomosaics: 1=red, 2=green, 3=blue, 4=nir.
const (
	BandRed = iota + 1
	BandGreen
	BandBlue
	BandNir
)

var (
	ErrBandCount    = errors.New("orthomosaic must have at least 4 bands (red, green, blue, nir)")
	ErrNoProjection = errors.New("orthomosaic has no spatial reference")
)

// Band holds one spectral channel as float32 samples, row-major.
// Samples are widened to float32 on read so index arithmetic on
// 8/16-bit imagery cannot overflow.
type Band struct {
	Width  int
	Height int
	Data   []float32
}

// Bands is the fixed 4-channel input of the index calculator.
type Bands struct {
	Red    Band
	Green  Band
	Blue   Band
	Nir    Band
	NoData *float64
}

func Open(path string) (*godal.Dataset, error) {
	ds, err := godal.Open(path, godal.ErrLogger(func(ec godal.ErrorCategory, code int, msg string) error {
		if ec == godal.CE_Warning {
			return nil
		}
		return fmt.Errorf("gdal: %s", msg)
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to open raster %s: %w", path, err)
	}
	return ds, nil
}

// ReadBand reads one band, optionally decimated by an integer factor.
// Decimated reads go through GDAL average resampling rather than plain
// subsampling so preview images do not alias.
func ReadBand(ds *godal.Dataset, index, decimation int) (Band, error) {
	if index < 1 || index > ds.Structure().NBands {
		return Band{}, fmt.Errorf("band %d out of range: %w", index, ErrBandCount)
	}
	if decimation < 1 {
		decimation = 1
	}

	srcW := ds.Structure().SizeX
	srcH := ds.Structure().SizeY
	outW := srcW / decimation
	outH := srcH / decimation

	band := ds.Bands()[index-1]
	data := make([]float32, outW*outH)
	opts := []godal.BandIOOption{}
	if decimation > 1 {
		opts = append(opts, godal.Window(srcW, srcH), godal.Resampling(godal.Average))
	}
	if err := band.Read(0, 0, data, outW, outH, opts...); err != nil {
		return Band{}, fmt.Errorf("failed to read band %d: %w", index, err)
	}

	return Band{Width: outW, Height: outH, Data: data}, nil
}

// ReadBands reads the four spectral bands in parallel and joins them
// before returning. The reads are independent of each other; no ordering
// is assumed among them.
func ReadBands(ctx context.Context, ds *godal.Dataset, decimation int) (Bands, error) {
	if ds.Structure().NBands < 4 {
		return Bands{}, fmt.Errorf("expected at least 4 bands, got %d: %w", ds.Structure().NBands, ErrBandCount)
	}

	var bands Bands
	if nodata, ok := ds.Bands()[0].NoData(); ok {
		bands.NoData = &nodata
	}

	g, _ := errgroup.WithContext(ctx)
	for _, read := range []struct {
		index int
		dst   *Band
	}{
		{BandRed, &bands.Red},
		{BandGreen, &bands.Green},
		{BandBlue, &bands.Blue},
		{BandNir, &bands.Nir},
	} {
		g.Go(func() error {
			b, err := ReadBand(ds, read.index, decimation)
			if err != nil {
				return err
			}
			*read.dst = b
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Bands{}, err
	}
	return bands, nil
}

// GeoRef is a value snapshot of a dataset's georeferencing, safe to
// hand to concurrent writers after the dataset itself is closed.
type GeoRef struct {
	Width      int
	Height     int
	Transform  [6]float64
	Projection string
}

func GeoRefOf(ds *godal.Dataset) (GeoRef, error) {
	gt, err := ds.GeoTransform()
	if err != nil {
		return GeoRef{}, fmt.Errorf("failed to get GeoTransform: %w", err)
	}
	return GeoRef{
		Width:      ds.Structure().SizeX,
		Height:     ds.Structure().SizeY,
		Transform:  gt,
		Projection: ds.Projection(),
	}, nil
}

// BoundsInGeographic reprojects the dataset bounds to WGS84 and returns
// them as (south, west, north, east) for overlay placement.
func BoundsInGeographic(ds *godal.Dataset) (float64, float64, float64, float64, error) {
	if ds.Projection() == "" {
		return 0, 0, 0, 0, ErrNoProjection
	}

	gt, err := ds.GeoTransform()
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to get GeoTransform: %w", err)
	}
	xs, ys := cornerCoords(gt, ds.Structure().SizeX, ds.Structure().SizeY)

	srcSR := ds.SpatialRef()
	defer srcSR.Close()
	dstSR, err := godal.NewSpatialRefFromEPSG(4326)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	defer dstSR.Close()
	tr, err := godal.NewTransform(srcSR, dstSR)
	if err != nil {
		return 0, 0, 0, 0, fmt.Errorf("failed to create WGS84 transform: %w", err)
	}
	defer tr.Close()

	if err := tr.TransformEx(xs, ys, nil, nil); err != nil {
		return 0, 0, 0, 0, fmt.Errorf("transform error: %w", err)
	}

	west, east := minMax(xs)
	south, north := minMax(ys)
	return south, west, north, east, nil
}

// cornerCoords returns the native coordinates of the four image corners.
// All four are needed: a rotated geotransform can put the extremes on
// any corner.
func cornerCoords(gt [6]float64, width, height int) ([]float64, []float64) {
	xs := make([]float64, 0, 4)
	ys := make([]float64, 0, 4)
	for _, c := range [][2]float64{{0, 0}, {float64(width), 0}, {0, float64(height)}, {float64(width), float64(height)}} {
		xs = append(xs, gt[0]+gt[1]*c[0]+gt[2]*c[1])
		ys = append(ys, gt[3]+gt[4]*c[0]+gt[5]*c[1])
	}
	return xs, ys
}

func minMax(vals []float64) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vals {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi
}
