package compare

import "waystation/internal/models"

// RFQSummary aggregates the all-quotes list for one RFQ.
type RFQSummary struct {
	RFQ         models.RFQInfo
	QuoteCount  int
	PricedCount int
	BestPrice   models.Optional[float64]
	BestQuoteID string
}

// SummarizeByRFQ groups quotes by RFQ in order of first appearance and applies
// the best-price rule within each group. The first best quote in input order
// is reported as BestQuoteID.
func SummarizeByRFQ(quotes []models.FullQuote) []RFQSummary {
	index := map[string]int{}
	groups := [][]models.FullQuote{}
	var summaries []RFQSummary
	for _, q := range quotes {
		i, ok := index[q.RFQ.ID]
		if !ok {
			i = len(summaries)
			index[q.RFQ.ID] = i
			summaries = append(summaries, RFQSummary{RFQ: q.RFQ})
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], q)
	}

	for i, group := range groups {
		s := &summaries[i]
		s.QuoteCount = len(group)
		best, ok := BestPrice(group)
		if ok {
			s.BestPrice = models.Present(best)
		}
		for _, q := range group {
			if q.PricePerPound.IsPresent() {
				s.PricedCount++
			}
			if s.BestQuoteID == "" && IsBest(q, best, ok) {
				s.BestQuoteID = q.ID
			}
		}
	}
	return summaries
}
