package category

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"

	"github.com/gocarina/gocsv"
)

//go:embed translations_fr.csv
var frenchTranslations []byte

// translation is one line of a translation table file.
type translation struct {
	Label    string `csv:"label"`
	Category string `csv:"category"`
}

// LoadTranslations reads a label,category CSV table.
func LoadTranslations(r io.Reader) (map[string]string, error) {
	var rows []translation
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse translation table: %w", err)
	}

	table := make(map[string]string, len(rows))
	for i, row := range rows {
		if row.Label == "" || row.Category == "" {
			return nil, fmt.Errorf("translation table line %d: label and category are required", i+2)
		}
		table[row.Label] = row.Category
	}
	return table, nil
}

// LoadTranslationsFile reads a translation table from disk. An empty path
// returns the built-in French Splitwise table.
func LoadTranslationsFile(path string) (map[string]string, error) {
	if path == "" {
		return DefaultTranslations()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open translation table: %w", err)
	}
	defer f.Close()
	return LoadTranslations(f)
}

// DefaultTranslations returns the built-in French Splitwise table.
func DefaultTranslations() (map[string]string, error) {
	return LoadTranslations(bytes.NewReader(frenchTranslations))
}
