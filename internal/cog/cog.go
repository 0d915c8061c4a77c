package cog

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/airbusgeo/godal"
	"github.com/schollz/progressbar/v3"
)

// DefaultTileSize is the internal tile edge length used when none is
// configured. 256 or 512 both work; 512 keeps the tile index small for
// multi-gigabyte orthomosaics.
const DefaultTileSize = 512

// DefaultCompression is lossless, so encoded pixels read back identical
// to the source.
const DefaultCompression = "DEFLATE"

var ErrInvalidProfile = errors.New("invalid cog profile")

// Profile is the validated encoding configuration: tile layout,
// compression codec and the overview pyramid to build.
type Profile struct {
	TileSize    int
	Compression string
	Levels      []int
}

// DefaultProfile computes the profile for a source of the given
// dimensions: default tile size and codec, overview levels derived from
// the dimensions.
func DefaultProfile(width, height int) Profile {
	return Profile{
		TileSize:    DefaultTileSize,
		Compression: DefaultCompression,
		Levels:      OverviewLevels(width, height, DefaultTileSize),
	}
}

// Validate enforces the profile invariants: the tile size is a positive
// power of two and the overview factors are strictly increasing powers
// of two.
func (p Profile) Validate() error {
	if !isPowerOfTwo(p.TileSize) {
		return fmt.Errorf("tile size %d is not a positive power of two: %w", p.TileSize, ErrInvalidProfile)
	}
	if p.Compression == "" {
		return fmt.Errorf("compression codec is empty: %w", ErrInvalidProfile)
	}
	prev := 1
	for _, level := range p.Levels {
		if !isPowerOfTwo(level) {
			return fmt.Errorf("overview factor %d is not a power of two: %w", level, ErrInvalidProfile)
		}
		if level <= prev {
			return fmt.Errorf("overview factors must strictly increase, got %v: %w", p.Levels, ErrInvalidProfile)
		}
		prev = level
	}
	return nil
}

// OverviewLevels returns the decimation factors for the overview
// pyramid: starting at 2 and doubling while the largest dimension at
// that factor still exceeds one tile. 5000x3000 with 512 tiles gives
// {2, 4, 8}.
func OverviewLevels(width, height, tileSize int) []int {
	maxDim := width
	if height > maxDim {
		maxDim = height
	}
	var levels []int
	for factor := 2; float64(maxDim)/float64(factor) > float64(tileSize); factor *= 2 {
		levels = append(levels, factor)
	}
	return levels
}

func isPowerOfTwo(n int) bool {
	return n > 0 && n&(n-1) == 0
}

// State tracks the encoder through its one-way transitions. Error is
// reachable from anywhere; a run that hits it leaves no output file.
type State int

const (
	StateCreated State = iota
	StateOpened
	StateProfileComputed
	StateBandsCopied
	StateOverviewsBuilt
	StateClosed
	StateError
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateOpened:
		return "opened"
	case StateProfileComputed:
		return "profile computed"
	case StateBandsCopied:
		return "bands copied"
	case StateOverviewsBuilt:
		return "overviews built"
	case StateClosed:
		return "closed"
	default:
		return "error"
	}
}

// Encoder copies one source raster into a tiled, compressed output with
// an internal overview pyramid. An encoder owns exclusive write access
// to its output path; it is not safe to point two encoders at the same
// file.
type Encoder struct {
	srcPath string
	dstPath string
	state   State
}

func NewEncoder(srcPath, dstPath string) *Encoder {
	return &Encoder{srcPath: srcPath, dstPath: dstPath, state: StateCreated}
}

func (e *Encoder) State() State {
	return e.state
}

// Encode runs the full pipeline. Band copy and overview build must run
// in this order: overview construction reads back the just-written
// full-resolution tiles. Cancellation is checked between per-band
// copies; an aborted or failed run removes the partial output rather
// than leaving a file that claims overviews it does not contain.
func (e *Encoder) Encode(ctx context.Context, profile Profile) (err error) {
	defer func() {
		if err != nil {
			e.state = StateError
			os.Remove(e.dstPath)
		}
	}()

	src, err := godal.Open(e.srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source %s: %w", e.srcPath, err)
	}
	defer src.Close()
	e.state = StateOpened

	if profile.Levels == nil {
		profile.Levels = OverviewLevels(src.Structure().SizeX, src.Structure().SizeY, profile.TileSize)
	}
	if err = profile.Validate(); err != nil {
		return err
	}
	e.state = StateProfileComputed

	dst, err := e.createDestination(src, profile)
	if err != nil {
		return err
	}
	closed := false
	defer func() {
		if !closed {
			dst.Close()
		}
	}()

	if err = e.copyBands(ctx, src, dst); err != nil {
		return err
	}
	e.state = StateBandsCopied

	if err = ctx.Err(); err != nil {
		return fmt.Errorf("encode canceled: %w", err)
	}
	if len(profile.Levels) > 0 {
		opts := []godal.BuildOverviewsOption{
			godal.Levels(profile.Levels...),
			godal.Resampling(godal.Average),
		}
		if err = dst.BuildOverviews(opts...); err != nil {
			return fmt.Errorf("failed to build overviews %v: %w", profile.Levels, err)
		}
	}
	e.state = StateOverviewsBuilt

	closed = true
	if err = dst.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", e.dstPath, err)
	}
	e.state = StateClosed
	return nil
}

func (e *Encoder) createDestination(src *godal.Dataset, profile Profile) (*godal.Dataset, error) {
	structure := src.Structure()
	dst, err := godal.Create(godal.GTiff, e.dstPath, structure.NBands, src.Bands()[0].Structure().DataType,
		structure.SizeX, structure.SizeY,
		godal.CreationOption(
			"TILED=YES",
			fmt.Sprintf("BLOCKXSIZE=%d", profile.TileSize),
			fmt.Sprintf("BLOCKYSIZE=%d", profile.TileSize),
			fmt.Sprintf("COMPRESS=%s", profile.Compression),
		))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", e.dstPath, err)
	}

	if gt, gtErr := src.GeoTransform(); gtErr == nil {
		if err := dst.SetGeoTransform(gt); err != nil {
			dst.Close()
			return nil, fmt.Errorf("failed to set GeoTransform: %w", err)
		}
	}
	srcSR := src.SpatialRef()
	defer srcSR.Close()
	if err := dst.SetSpatialRef(srcSR); err != nil {
		dst.Close()
		return nil, fmt.Errorf("failed to set spatial reference: %w", err)
	}
	return dst, nil
}

// copyBands copies every source band verbatim, no resampling at full
// resolution. float64 buffers let GDAL convert any source data type
// both ways without loss for the integer types the drones produce.
func (e *Encoder) copyBands(ctx context.Context, src, dst *godal.Dataset) error {
	structure := src.Structure()
	width, height := structure.SizeX, structure.SizeY

	bar := progressbar.Default(int64(structure.NBands), "Copying bands")
	buf := make([]float64, width*height)
	for i := 0; i < structure.NBands; i++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("encode canceled: %w", err)
		}

		srcBand := src.Bands()[i]
		if err := srcBand.Read(0, 0, buf, width, height); err != nil {
			return fmt.Errorf("failed to read band %d: %w", i+1, err)
		}
		dstBand := dst.Bands()[i]
		if err := dstBand.Write(0, 0, buf, width, height); err != nil {
			return fmt.Errorf("failed to write band %d: %w", i+1, err)
		}
		if nodata, ok := srcBand.NoData(); ok {
			if err := dstBand.SetNoData(nodata); err != nil {
				return fmt.Errorf("failed to set nodata on band %d: %w", i+1, err)
			}
		}
		bar.Add(1)
	}
	return nil
}

// ReadOverviewLevels reads back the factor list embedded in an encoded
// file, for verifying an encode end to end.
func ReadOverviewLevels(path string) ([]int, error) {
	ds, err := godal.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer ds.Close()

	band := ds.Bands()[0]
	fullWidth := band.Structure().SizeX
	var levels []int
	for _, ovr := range band.Overviews() {
		levels = append(levels, (fullWidth+ovr.Structure().SizeX/2)/ovr.Structure().SizeX)
	}
	return levels, nil
}
