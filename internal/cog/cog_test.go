package cog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/airbusgeo/godal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverviewLevelsForLargeOrthomosaic(t *testing.T) {
	// 5000/16 = 312.5 < 512, so 16 is excluded
	assert.Equal(t, []int{2, 4, 8}, OverviewLevels(5000, 3000, 512))
}

func TestOverviewLevelsUseLargestDimension(t *testing.T) {
	assert.Equal(t, OverviewLevels(3000, 5000, 512), OverviewLevels(5000, 3000, 512))
}

func TestOverviewLevelsSmallImage(t *testing.T) {
	assert.Empty(t, OverviewLevels(400, 300, 512), "image already fits one tile")
}

func TestOverviewLevelsExactTileBoundary(t *testing.T) {
	// 1024/2 == 512, not strictly greater, so no levels at all
	assert.Empty(t, OverviewLevels(1024, 1024, 512))
	assert.Equal(t, []int{2}, OverviewLevels(1025, 1024, 512))
}

func TestDefaultProfileIsValid(t *testing.T) {
	p := DefaultProfile(5000, 3000)

	assert.NoError(t, p.Validate())
	assert.Equal(t, 512, p.TileSize)
	assert.Equal(t, "DEFLATE", p.Compression)
	assert.Equal(t, []int{2, 4, 8}, p.Levels)
}

func TestValidateRejectsBadTileSize(t *testing.T) {
	for _, size := range []int{0, -512, 500, 513} {
		p := Profile{TileSize: size, Compression: "DEFLATE"}
		assert.ErrorIs(t, p.Validate(), ErrInvalidProfile, "tile size %d", size)
	}
}

func TestValidateRejectsBadLevels(t *testing.T) {
	cases := map[string][]int{
		"not a power of two":      {2, 3},
		"not strictly increasing": {2, 4, 4},
		"decreasing":              {8, 4, 2},
		"starting at one":         {1, 2},
	}
	for name, levels := range cases {
		p := Profile{TileSize: 512, Compression: "DEFLATE", Levels: levels}
		assert.ErrorIs(t, p.Validate(), ErrInvalidProfile, name)
	}
}

func TestEncoderStartsCreated(t *testing.T) {
	e := NewEncoder("in.tif", "out.tif")
	assert.Equal(t, StateCreated, e.State())
	assert.Equal(t, "created", e.State().String())
}

// writeTestGeoTIFF creates a small single-band raster with a
// recognizable pixel pattern and returns its path and data.
func writeTestGeoTIFF(t *testing.T, dir string, width, height int) (string, []byte) {
	t.Helper()
	godal.RegisterInternalDrivers()

	path := filepath.Join(dir, "src.tif")
	ds, err := godal.Create(godal.GTiff, path, 1, godal.Byte, width, height)
	require.NoError(t, err)

	data := make([]byte, width*height)
	for i := range data {
		data[i] = byte(i % 251)
	}
	require.NoError(t, ds.Bands()[0].Write(0, 0, data, width, height))
	require.NoError(t, ds.SetGeoTransform([6]float64{500000, 1, 0, 4100000, 0, -1}))
	require.NoError(t, ds.Close())
	return path, data
}

func TestEncodeRoundTrip(t *testing.T) {
	dir := t.TempDir()
	width, height := 1100, 600
	srcPath, data := writeTestGeoTIFF(t, dir, width, height)
	dstPath := filepath.Join(dir, "out.tif")

	encoder := NewEncoder(srcPath, dstPath)
	profile := Profile{TileSize: 256, Compression: "DEFLATE"}
	require.NoError(t, encoder.Encode(context.Background(), profile))
	assert.Equal(t, StateClosed, encoder.State())

	// 1100/2 = 550 > 256, 1100/4 = 275 > 256, 1100/8 = 137.5 stops
	levels, err := ReadOverviewLevels(dstPath)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4}, levels)

	// lossless codec: full-resolution pixels read back identical
	out, err := godal.Open(dstPath)
	require.NoError(t, err)
	defer out.Close()
	readBack := make([]byte, width*height)
	require.NoError(t, out.Bands()[0].Read(0, 0, readBack, width, height))
	assert.Equal(t, data, readBack)
}

func TestEncodeCanceledRemovesPartialOutput(t *testing.T) {
	dir := t.TempDir()
	srcPath, _ := writeTestGeoTIFF(t, dir, 100, 80)
	dstPath := filepath.Join(dir, "out.tif")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	encoder := NewEncoder(srcPath, dstPath)
	err := encoder.Encode(ctx, Profile{TileSize: 256, Compression: "DEFLATE"})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateError, encoder.State())

	_, statErr := os.Stat(dstPath)
	assert.True(t, os.IsNotExist(statErr), "canceled encode must not leave an output file")
}

func TestEncodeInvalidProfileLeavesNoOutput(t *testing.T) {
	dir := t.TempDir()
	srcPath, _ := writeTestGeoTIFF(t, dir, 100, 80)
	dstPath := filepath.Join(dir, "out.tif")

	encoder := NewEncoder(srcPath, dstPath)
	err := encoder.Encode(context.Background(), Profile{TileSize: 500, Compression: "DEFLATE"})
	require.ErrorIs(t, err, ErrInvalidProfile)
	assert.Equal(t, StateError, encoder.State())

	_, statErr := os.Stat(dstPath)
	assert.True(t, os.IsNotExist(statErr))
}
