package core

import "testing"

func TestParseGiftDate(t *testing.T) {
	cases := []struct {
		in        string
		year      int
		yearMonth string
		ok        bool
	}{
		{"1/2/20", 2020, "2020-01", true},
		{"1/2/2020", 2020, "2020-01", true},
		{"12/31/1999", 1999, "1999-12", true},
		{"2021-07-04", 2021, "2021-07", true},
		{"02/03/2015", 2015, "2015-02", true},
		{"not a date", 0, "", false},
		{"13/45/20", 0, "", false},
		{"", 0, "", false},
	}
	for _, tc := range cases {
		d, err := ParseGiftDate(tc.in)
		if !tc.ok {
			if err == nil {
				t.Fatalf("%q expected error, got %v", tc.in, d)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q unexpected error: %v", tc.in, err)
		}
		if d.Year() != tc.year {
			t.Fatalf("%q expected year %d, got %d", tc.in, tc.year, d.Year())
		}
		if ym := d.YearMonth(); ym != tc.yearMonth {
			t.Fatalf("%q expected year-month %q, got %q", tc.in, tc.yearMonth, ym)
		}
	}
}

func TestColumnValue(t *testing.T) {
	g := Gift{
		State:       "CA",
		College:     "Engineering",
		Allocation:  "Scholarship",
		Subcategory: "Undergraduate",
		Year:        2020,
		YearMonth:   "2020-01",
	}

	cases := []struct {
		column string
		want   string
	}{
		{ColState, "CA"},
		{ColCollege, "Engineering"},
		{ColAllocation, "Scholarship"},
		{ColSubcategory, "Undergraduate"},
		{ColYear, "2020"},
		{ColYearMonth, "2020-01"},
	}
	for _, tc := range cases {
		got, err := g.ColumnValue(tc.column)
		if err != nil {
			t.Fatalf("%q unexpected error: %v", tc.column, err)
		}
		if got != tc.want {
			t.Fatalf("%q expected %q, got %q", tc.column, tc.want, got)
		}
	}

	if _, err := g.ColumnValue("Donor Name"); err == nil {
		t.Fatal("expected error for unknown column")
	}
}
