package delivery

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/smart-field/smart-field-api-poc/internal/cog"
	"github.com/smart-field/smart-field-api-poc/internal/properties"
)

// ConvertToCOG re-encodes one orthomosaic under data/orthomosaics into
// a Cloud-Optimized GeoTIFF next to it, with a '_cog' suffix. Tile size
// and compression come from the profile; the overview levels are
// derived from the source dimensions when left nil.
func ConvertToCOG(ctx context.Context, name string, profile cog.Profile) (string, error) {
	inputPath := filepath.Join(properties.RootPath(), "data", "orthomosaics", name)
	ext := filepath.Ext(name)
	outputPath := filepath.Join(properties.RootPath(), "data", "orthomosaics",
		strings.TrimSuffix(name, ext)+"_cog"+ext)

	encoder := cog.NewEncoder(inputPath, outputPath)
	if err := encoder.Encode(ctx, profile); err != nil {
		return "", fmt.Errorf("cog encode failed in state %q: %w", encoder.State(), err)
	}

	levels, err := cog.ReadOverviewLevels(outputPath)
	if err != nil {
		return "", err
	}
	fmt.Printf("Embedded overview levels: %v\n", levels)
	return outputPath, nil
}
