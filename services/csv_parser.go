package services

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"product-importer/models"
)

// ParseProductCSV decodes raw CSV bytes into staging records. The first
// row supplies field names; "sku" and "SKU" are the only recognized
// spellings of the key column. SKUs are trimmed and lower-cased; rows with
// an empty sku are dropped silently but still counted in total, which is
// the number of data rows before filtering.
//
// Invalid UTF-8 byte sequences are replaced rather than rejected.
func ParseProductCSV(data []byte, defaultActive bool) (records []models.StagingRecord, total int, err error) {
	text := strings.ToValidUTF8(string(data), "�")

	reader := csv.NewReader(strings.NewReader(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		if _, exists := columns[name]; !exists {
			columns[name] = i
		}
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read CSV row %d: %w", total+1, err)
		}
		total++

		sku := field(row, columns, "sku")
		if sku == "" {
			sku = field(row, columns, "SKU")
		}
		sku = strings.ToLower(strings.TrimSpace(sku))
		if sku == "" {
			continue
		}

		name := field(row, columns, "name")
		if name == "" {
			name = sku
		}

		records = append(records, models.StagingRecord{
			SKU:         sku,
			Name:        name,
			Description: field(row, columns, "description"),
			Active:      defaultActive,
		})
	}

	return records, total, nil
}

func field(row []string, columns map[string]int, name string) string {
	i, ok := columns[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}
