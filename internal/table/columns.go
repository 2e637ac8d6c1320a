package table

import (
	"fmt"
)

type SchemaMode string

const (
	// SchemaFirstRecord derives the columns from the keys of the first record.
	SchemaFirstRecord SchemaMode = "first"
	// SchemaUnion derives the columns from every key of every record, in order of first appearance.
	SchemaUnion SchemaMode = "union"
)

func ParseSchemaMode(s string) (SchemaMode, error) {
	switch SchemaMode(s) {
	case "", SchemaFirstRecord:
		return SchemaFirstRecord, nil
	case SchemaUnion:
		return SchemaUnion, nil
	}
	return "", fmt.Errorf("unknown schema mode %q (expected %q or %q)", s, SchemaFirstRecord, SchemaUnion)
}

type ExtraKeyPolicy string

const (
	// ExtraKeysIgnore drops fields that are not part of the columns.
	ExtraKeysIgnore ExtraKeyPolicy = "ignore"
	// ExtraKeysFail fails the export when a record has a field that is not part of the columns.
	ExtraKeysFail ExtraKeyPolicy = "fail"
)

func ParseExtraKeyPolicy(s string) (ExtraKeyPolicy, error) {
	switch ExtraKeyPolicy(s) {
	case "", ExtraKeysIgnore:
		return ExtraKeysIgnore, nil
	case ExtraKeysFail:
		return ExtraKeysFail, nil
	}
	return "", fmt.Errorf("unknown extra key policy %q (expected %q or %q)", s, ExtraKeysIgnore, ExtraKeysFail)
}

// DeriveColumns returns the output columns for the records, reserved keys are excluded.
func DeriveColumns(records []Record, mode SchemaMode) []string {
	if len(records) == 0 {
		return nil
	}

	sources := records[:1]
	if mode == SchemaUnion {
		sources = records
	}

	var columns []string
	seen := map[string]bool{}
	for _, record := range sources {
		for _, key := range record.keys {
			if seen[key] || isReserved(key) {
				continue
			}
			seen[key] = true
			columns = append(columns, key)
		}
	}
	return columns
}

// Project maps every record onto the columns. Missing fields become empty cells.
func Project(records []Record, columns []string, policy ExtraKeyPolicy) ([][]Cell, error) {
	known := make(map[string]bool, len(columns))
	for _, c := range columns {
		known[c] = true
	}

	rows := make([][]Cell, 0, len(records))
	for i, record := range records {
		if policy == ExtraKeysFail {
			for _, key := range record.keys {
				if !known[key] && !isReserved(key) {
					return nil, fmt.Errorf("%w: record %d has field %q", ErrUnexpectedField, i, key)
				}
			}
		}

		row := make([]Cell, len(columns))
		for j, column := range columns {
			value, ok := record.Get(column)
			if !ok {
				row[j] = emptyCell
				continue
			}
			row[j] = cellOf(value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}
