package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/bigmountainben/itglue-migrate/pkg/models"
)

// LoadParsedData reads the per-entity JSON files of an export directory
// into a ParsedData aggregate. Missing files simply mean empty lists; a
// partial export is still auditable.
func LoadParsedData(dir string, logger *logrus.Logger) (models.ParsedData, error) {
	var data models.ParsedData

	loaders := []struct {
		file string
		dest interface{}
	}{
		{"organizations.json", &data.Organizations},
		{"configurations.json", &data.Configurations},
		{"documents.json", &data.Documents},
		{"locations.json", &data.Locations},
		{"passwords.json", &data.Passwords},
		{"custom_asset_types.json", &data.CustomAssetTypes},
		{"custom_assets.json", &data.CustomAssets},
	}

	for _, l := range loaders {
		path := filepath.Join(dir, l.file)
		raw, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				if logger != nil {
					logger.Debugf("No %s in export, skipping", l.file)
				}
				continue
			}
			return models.ParsedData{}, fmt.Errorf("reading %s: %w", path, err)
		}
		if err := json.Unmarshal(raw, l.dest); err != nil {
			return models.ParsedData{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	return data, nil
}

// ReadCSV reads a CSV export into the column list and row maps consumed by
// the field inferrer. The first record is the header; short rows leave the
// remaining columns empty.
func ReadCSV(path string) ([]string, []map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil, fmt.Errorf("%s: empty CSV", path)
	}

	columns := records[0]
	rows := make([]map[string]string, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(map[string]string, len(columns))
		for i, column := range columns {
			if i < len(record) {
				row[column] = record[i]
			}
		}
		rows = append(rows, row)
	}

	return columns, rows, nil
}
