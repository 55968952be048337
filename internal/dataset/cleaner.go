package dataset

import (
	"strings"

	"donordash/internal/core"
	"donordash/internal/geo"
)

// Clean coerces raw rows into Gift records and attaches geographic
// identifiers. Rows with an unparsable date or amount are excluded, never
// imputed; rows with an unrecognized state code survive with an empty GeoID.
// An empty input yields an empty cleaned set, not an error.
func Clean(raw []RawRecord) ([]core.Gift, core.CleaningSummary) {
	summary := core.CleaningSummary{RowsRead: len(raw)}
	gifts := make([]core.Gift, 0, len(raw))

	for _, r := range raw {
		date, err := core.ParseGiftDate(r.GiftDate)
		if err != nil {
			summary.BadDates++
			continue
		}
		amount, err := core.ParseAmount(r.GiftAmount)
		if err != nil {
			summary.BadAmounts++
			continue
		}
		gifts = append(gifts, core.Gift{
			State:       strings.TrimSpace(r.State),
			Date:        date,
			AmountRaw:   r.GiftAmount,
			Amount:      amount,
			College:     strings.TrimSpace(r.College),
			Allocation:  strings.TrimSpace(r.Allocation),
			Subcategory: strings.TrimSpace(r.Subcategory),
			Year:        date.Year(),
			YearMonth:   date.YearMonth(),
		})
	}

	summary.Unresolved = geo.Attach(gifts)
	summary.RowsKept = len(gifts)

	for i, g := range gifts {
		if i == 0 || g.Amount < summary.MinAmount {
			summary.MinAmount = g.Amount
		}
		if i == 0 || g.Amount > summary.MaxAmount {
			summary.MaxAmount = g.Amount
		}
	}
	return gifts, summary
}
