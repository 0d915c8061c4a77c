package health

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// Record is one field sensor sample as exported by the ground station.
type Record struct {
	Latitude    float64  `csv:"latitude"`
	Longitude   float64  `csv:"longitude"`
	Nitrogen    *float64 `csv:"N_pct"`
	Phosphorus  *float64 `csv:"P_pct"`
	Potassium   *float64 `csv:"K_pct"`
	PH          *float64 `csv:"pH"`
	Temperature *float64 `csv:"Temp_C"`
	EC          *float64 `csv:"EC_uScm"`
	Moisture    *float64 `csv:"Moist_pct"`
	Health      float64  `csv:"health"`
}

// scoreRange scores one half-open slice of a metric's domain.
// Ranges are ordered so a single monotonic scan finds the match.
type scoreRange struct {
	Lower float64
	Upper float64
	Score float64
}

// ScoreTable maps one metric to a health score: ordered ranges plus the
// floor score for readings outside every range.
type ScoreTable struct {
	Ranges []scoreRange
	Floor  float64
}

// Tables holds the per-metric score tables. The zero value is unusable;
// start from DefaultTables and override what the agronomist tunes.
type Tables map[string]ScoreTable

// DefaultTables encodes the crop-specific optima: full score inside the
// optimal window, 70 in the acceptable shoulder, the floor elsewhere.
func DefaultTables() Tables {
	return Tables{
		"nitrogen": {Ranges: []scoreRange{
			{15, 20, 50}, {20, 30, 70}, {30, 45, 100}, {45, 50, 70}, {50, 55, 50},
		}, Floor: 30},
		"phosphorus": {Ranges: []scoreRange{
			{40, 50, 70}, {50, 65, 100}, {65, 70, 70},
		}, Floor: 50},
		"potassium": {Ranges: []scoreRange{
			{60, 80, 70}, {80, 120, 100}, {120, 130, 70},
		}, Floor: 50},
		"ph": {Ranges: []scoreRange{
			{6.0, 6.5, 70}, {6.5, 7.5, 100}, {7.5, 8.0, 70},
		}, Floor: 50},
		"temperature": {Ranges: []scoreRange{
			{25, 30, 70}, {30, 36, 100}, {36, 40, 70},
		}, Floor: 50},
		"ec": {Ranges: []scoreRange{
			{200, 300, 70}, {300, 600, 100}, {600, 800, 70},
		}, Floor: 50},
		"moisture": {Ranges: []scoreRange{
			{5, 8, 70}, {8, 12, 100}, {12, 15, 70},
		}, Floor: 50},
	}
}

// Score scans the ordered ranges for the ones containing the value.
// Ranges are closed on both ends; a boundary shared by two ranges
// scores with the better tier, because the ground-station rules test
// the optimal window before its shoulders (30 <= n <= 45 scores 100
// before 45 < n <= 50 can score 70).
func (t ScoreTable) Score(value float64) float64 {
	score := t.Floor
	matched := false
	for _, r := range t.Ranges {
		if value < r.Lower {
			break
		}
		if value <= r.Upper && (!matched || r.Score > score) {
			score = r.Score
			matched = true
		}
	}
	return score
}

// Overall averages the scores of the metrics present on the record,
// defaulting to 50 when the record carries no readings at all.
func Overall(r Record, tables Tables) float64 {
	metrics := []struct {
		name  string
		value *float64
	}{
		{"nitrogen", r.Nitrogen},
		{"phosphorus", r.Phosphorus},
		{"potassium", r.Potassium},
		{"ph", r.PH},
		{"temperature", r.Temperature},
		{"ec", r.EC},
		{"moisture", r.Moisture},
	}

	total, count := 0.0, 0
	for _, m := range metrics {
		if m.value == nil {
			continue
		}
		table, ok := tables[m.name]
		if !ok {
			continue
		}
		total += table.Score(*m.value)
		count++
	}
	if count == 0 {
		return 50
	}
	return total / float64(count)
}

// LoadRecords reads the sensor CSV and fills in each record's overall
// health score.
func LoadRecords(path string, tables Tables) ([]*Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sensor data %s: %w", path, err)
	}
	defer file.Close()

	var records []*Record
	if err := gocsv.UnmarshalFile(file, &records); err != nil {
		return nil, fmt.Errorf("failed to parse sensor data %s: %w", path, err)
	}

	for _, record := range records {
		record.Health = Overall(*record, tables)
	}
	return records, nil
}
