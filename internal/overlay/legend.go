package overlay

import (
	"fmt"

	"github.com/fogleman/gg"
)

// Legend draws a horizontal gradient bar for a ramp with the domain
// endpoints and a caption, for embedding next to the overlay layers.
func Legend(ramp Ramp, caption, outputPath string) error {
	const (
		width     = 320
		barHeight = 24
		height    = 64
		margin    = 10
	)

	dc := gg.NewContext(width, height)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	lo := ramp.Stops[0].Value
	hi := ramp.Stops[len(ramp.Stops)-1].Value
	barWidth := width - 2*margin
	for i := 0; i < barWidth; i++ {
		v := lo + (hi-lo)*float64(i)/float64(barWidth-1)
		c := ramp.Lookup(v)
		dc.SetRGB255(int(c.R), int(c.G), int(c.B))
		dc.DrawRectangle(float64(margin+i), margin, 1, barHeight)
		dc.Fill()
	}

	dc.SetRGB(0.2, 0.2, 0.2)
	dc.DrawStringAnchored(fmt.Sprintf("%.0f", lo), margin, margin+barHeight+6, 0, 1)
	dc.DrawStringAnchored(fmt.Sprintf("%.0f", hi), float64(width-margin), margin+barHeight+6, 1, 1)
	dc.DrawStringAnchored(caption, width/2, margin+barHeight+6, 0.5, 1)

	if err := dc.SavePNG(outputPath); err != nil {
		return fmt.Errorf("failed to save legend: %w", err)
	}
	return nil
}
