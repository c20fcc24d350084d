package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"phetools/pkg/domain"
)

// readTable loads a template grid from a TSV/CSV file or a JSON document of
// the shape {"header1": [...], "header2": [...], "rows": [[...], ...]}.
func readTable(path string) (*domain.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.HasSuffix(path, ".json") {
		var table domain.Table
		if err := json.Unmarshal(data, &table); err != nil {
			return nil, fmt.Errorf("decode table %s: %w", path, err)
		}
		return &table, nil
	}

	r := csv.NewReader(strings.NewReader(string(data)))
	r.Comma = '\t'
	if strings.HasSuffix(path, ".csv") {
		r.Comma = ','
	}
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", path, err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("table %s needs two header rows", path)
	}
	return &domain.Table{Header1: rows[0], Header2: rows[1], Rows: rows[2:]}, nil
}
