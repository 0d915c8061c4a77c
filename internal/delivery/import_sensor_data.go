package delivery

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/smart-field/smart-field-api-poc/internal/health"
	"github.com/smart-field/smart-field-api-poc/internal/properties"
	"github.com/smart-field/smart-field-api-poc/output"
)

// ImportSensorData scores a sensor CSV from data/sensor_input and
// writes the GeoJSON marker layer and the health CSV to data/result.
func ImportSensorData(name string, tables health.Tables) (string, string, error) {
	inputPath := filepath.Join(properties.RootPath(), "data", "sensor_input", name)
	resultDir := filepath.Join(properties.RootPath(), "data", "result")
	if err := os.MkdirAll(resultDir, os.ModePerm); err != nil {
		return "", "", err
	}

	records, err := health.LoadRecords(inputPath, tables)
	if err != nil {
		return "", "", err
	}
	if len(records) == 0 {
		return "", "", fmt.Errorf("no sensor records found in %s", name)
	}

	base := strings.TrimSuffix(name, filepath.Ext(name))
	geojsonPath := filepath.Join(resultDir, base+".geojson")
	csvPath := filepath.Join(resultDir, base+"_health.csv")

	if err := output.CreateSensorGeoJson(records, geojsonPath); err != nil {
		return "", "", err
	}
	if err := output.CreateHealthCsv(records, csvPath); err != nil {
		return "", "", err
	}
	return geojsonPath, csvPath, nil
}
