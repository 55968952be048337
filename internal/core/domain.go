package core

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Categorical column names, matching the input file headers. These are the
// columns the query layer accepts for filtering and grouping.
const (
	ColState       = "State"
	ColCollege     = "College"
	ColAllocation  = "Gift Allocation"
	ColSubcategory = "Allocation Subcategory"
	ColYear        = "Year"
	ColYearMonth   = "YearMonth"
)

type (
	Date struct {
		time.Time
	}

	// Gift is one cleaned donation record. Amount and the calendar fields are
	// derived during cleaning; GeoID is attached by the geo mapper and stays
	// empty when the state code does not resolve.
	Gift struct {
		State       string
		Date        Date
		AmountRaw   string
		Amount      float64
		College     string
		Allocation  string
		Subcategory string
		Year        int
		YearMonth   string
		GeoID       string
	}
)

var (
	ErrInvalidAmount = errors.New("invalid gift amount")
	ErrInvalidDate   = errors.New("invalid gift date")
	ErrUnknownColumn = errors.New("unknown column")
)

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// YearMonth renders the date as "YYYY-MM".
func (d Date) YearMonth() string {
	return fmt.Sprintf("%04d-%02d", d.Time.Year(), int(d.Time.Month()))
}

// Resolved reports whether the record carries a geographic identifier.
func (g Gift) Resolved() bool {
	return g.GeoID != ""
}

// ColumnValue returns the record's value for a named categorical column.
// The error wraps ErrUnknownColumn for names outside the filterable set.
func (g Gift) ColumnValue(column string) (string, error) {
	switch column {
	case ColState:
		return g.State, nil
	case ColCollege:
		return g.College, nil
	case ColAllocation:
		return g.Allocation, nil
	case ColSubcategory:
		return g.Subcategory, nil
	case ColYear:
		return strconv.Itoa(g.Year), nil
	case ColYearMonth:
		return g.YearMonth, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
}

// FilterColumns lists the columns accepted by ColumnValue, in display order.
func FilterColumns() []string {
	return []string{ColState, ColCollege, ColAllocation, ColSubcategory, ColYear, ColYearMonth}
}

// IsFilterColumn reports whether column is a recognized categorical column.
func IsFilterColumn(column string) bool {
	for _, c := range FilterColumns() {
		if c == column {
			return true
		}
	}
	return false
}

// Validate checks the invariants every cleaned record satisfies.
func (g Gift) Validate() error {
	if g.Date.IsZero() {
		return ErrInvalidDate
	}
	if g.YearMonth == "" {
		return errors.New("missing year-month")
	}
	return nil
}
