// Package dataset loads and cleans the donation CSV and caches the result
// for the process lifetime.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrLoad marks a missing or unreadable input file. Fatal at startup.
	ErrLoad = errors.New("load donations file")
	// ErrSchema marks a required column missing from the header. Fatal.
	ErrSchema = errors.New("donations file schema")
)

// requiredColumns must all be present in the header row.
var requiredColumns = []string{
	"State",
	"Gift Date",
	"Gift Amount",
	"College",
	"Gift Allocation",
	"Allocation Subcategory",
}

// RawRecord is one unparsed row straight from the file. All fields are the
// original strings; nothing has been coerced yet.
type RawRecord struct {
	State       string
	GiftDate    string
	GiftAmount  string
	College     string
	Allocation  string
	Subcategory string
}

// Load reads the delimited donation table at path. The header row is
// validated against the required column set; the data section may be empty.
func Load(path string) ([]RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1 // ragged rows are handled per-field below

	header, err := r.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrSchema)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, col := range requiredColumns {
		if _, ok := idx[col]; !ok {
			return nil, fmt.Errorf("%w: missing required column %q", ErrSchema, col)
		}
	}

	field := func(row []string, col string) string {
		i := idx[col]
		if i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []RawRecord
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoad, err)
		}
		records = append(records, RawRecord{
			State:       field(row, "State"),
			GiftDate:    field(row, "Gift Date"),
			GiftAmount:  field(row, "Gift Amount"),
			College:     field(row, "College"),
			Allocation:  field(row, "Gift Allocation"),
			Subcategory: field(row, "Allocation Subcategory"),
		})
	}
	return records, nil
}
