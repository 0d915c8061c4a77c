package output

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
	"github.com/smart-field/smart-field-api-poc/internal/health"
)

// CreateHealthCsv exports the scored sensor records back to CSV, with
// the computed health column filled in.
func CreateHealthCsv(records []*health.Record, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&records, file); err != nil {
		return fmt.Errorf("error encoding CSV: %w", err)
	}

	fmt.Println("Health CSV created successfully at", outputPath)
	return nil
}
