package output

import (
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"os"
	"strings"
)

// Bounds is the geographic placement of an overlay, written as a
// sidecar next to the PNG so the dashboard can position the layer.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// CreateOverlayImage saves an overlay as PNG together with its bounds
// sidecar (<name>.bounds.json).
func CreateOverlayImage(img image.Image, bounds Bounds, outputImagePath string) error {
	if !strings.HasSuffix(outputImagePath, ".png") {
		outputImagePath += ".png"
	}

	outputFile, err := os.Create(outputImagePath)
	if err != nil {
		return fmt.Errorf("error creating PNG file: %w", err)
	}
	defer outputFile.Close()

	if err := png.Encode(outputFile, img); err != nil {
		return fmt.Errorf("error encoding PNG file: %w", err)
	}

	boundsPath := strings.TrimSuffix(outputImagePath, ".png") + ".bounds.json"
	boundsFile, err := os.Create(boundsPath)
	if err != nil {
		return fmt.Errorf("error creating bounds file: %w", err)
	}
	defer boundsFile.Close()

	encoder := json.NewEncoder(boundsFile)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(bounds); err != nil {
		return fmt.Errorf("error encoding bounds: %w", err)
	}

	fmt.Println("Overlay created successfully at", outputImagePath)
	return nil
}
