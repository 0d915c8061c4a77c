package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/smart-field/smart-field-api-poc/internal/health"
)

// CreateSensorGeoJson writes the scored sensor points as a GeoJSON
// FeatureCollection for the dashboard's marker layer.
func CreateSensorGeoJson(records []*health.Record, outputPath string) error {
	fc := geojson.NewFeatureCollection()

	for _, record := range records {
		feature := geojson.NewFeature(orb.Point{record.Longitude, record.Latitude})
		feature.Properties = geojson.Properties{
			"health": record.Health,
		}
		setIfPresent(feature.Properties, "nitrogen", record.Nitrogen)
		setIfPresent(feature.Properties, "phosphorus", record.Phosphorus)
		setIfPresent(feature.Properties, "potassium", record.Potassium)
		setIfPresent(feature.Properties, "ph", record.PH)
		setIfPresent(feature.Properties, "temperature", record.Temperature)
		setIfPresent(feature.Properties, "ec", record.EC)
		setIfPresent(feature.Properties, "moisture", record.Moisture)
		fc.Append(feature)
	}

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("error creating GeoJSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(fc); err != nil {
		return fmt.Errorf("error encoding GeoJSON: %w", err)
	}

	fmt.Println("GeoJSON file created successfully at", outputPath)
	return nil
}

func setIfPresent(props geojson.Properties, key string, value *float64) {
	if value != nil {
		props[key] = *value
	}
}
