package core

import (
	"strings"
	"time"
)

// giftDateLayouts are the accepted calendar-string formats, tried in order.
// The donation exports use short US-style dates ("1/2/20"); ISO dates show
// up in hand-edited files.
var giftDateLayouts = []string{
	"1/2/2006",
	"1/2/06",
	"2006-01-02",
	"01/02/2006",
}

// ParseGiftDate interprets a raw date string under the accepted layouts.
// Failure returns ErrInvalidDate; the caller drops the row rather than
// propagating.
func ParseGiftDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, ErrInvalidDate
	}
	for _, layout := range giftDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Date{Time: t}, nil
		}
	}
	return Date{}, ErrInvalidDate
}
