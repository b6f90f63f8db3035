package compare

import "waystation/internal/models"

// Row is one line of the comparison table.
type Row struct {
	Rank    int
	Quote   models.Quote
	IsBest  bool
	Missing []string
	// CanRequestClarification gates the clarification action. The action is
	// shown disabled, not hidden, when false.
	CanRequestClarification bool
}

// Comparison is the derived, presentation-ready view of an RFQ's quotes.
type Comparison struct {
	RFQ       models.RFQ
	BestPrice models.Optional[float64]
	Rows      []Row
}

// Compare derives the comparison table for rfq. quotes is not modified.
func Compare(rfq models.RFQ, quotes []models.Quote) Comparison {
	best, ok := BestPrice(quotes)
	cmp := Comparison{RFQ: rfq}
	if ok {
		cmp.BestPrice = models.Present(best)
	}
	for i, q := range SortByPrice(quotes) {
		missing := MissingInfo(q, rfq)
		cmp.Rows = append(cmp.Rows, Row{
			Rank:                    i + 1,
			Quote:                   q,
			IsBest:                  IsBest(q, best, ok),
			Missing:                 missing,
			CanRequestClarification: len(missing) > 0,
		})
	}
	return cmp
}

// BestRows returns the rows flagged best.
func (c Comparison) BestRows() []Row {
	var out []Row
	for _, r := range c.Rows {
		if r.IsBest {
			out = append(out, r)
		}
	}
	return out
}

// Row looks up the row for a quote id.
func (c Comparison) Row(quoteID string) (Row, bool) {
	for _, r := range c.Rows {
		if r.Quote.ID == quoteID {
			return r, true
		}
	}
	return Row{}, false
}
