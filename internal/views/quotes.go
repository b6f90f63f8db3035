package views

import (
	"context"
	"fmt"
	"io"

	"waystation/internal/compare"
	"waystation/internal/models"
	"waystation/internal/resource"
)

// QuotesView lists every quote in the system.
type QuotesView struct {
	quotes *resource.Controller[resource.None, []models.FullQuote]
}

func NewQuotesView(b resource.Backend) *QuotesView {
	return &QuotesView{quotes: resource.NewAllQuotes(b)}
}

func (v *QuotesView) Load(ctx context.Context) error {
	_, err := v.quotes.Execute(ctx, resource.None{})
	return err
}

func (v *QuotesView) Quotes() resource.Snapshot[[]models.FullQuote] { return v.quotes.Snapshot() }

// Summaries groups the loaded quotes per RFQ.
func (v *QuotesView) Summaries() []compare.RFQSummary {
	return compare.SummarizeByRFQ(v.quotes.Snapshot().Data)
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8] + "..."
}

func (v *QuotesView) Render(w io.Writer) error {
	fmt.Fprintln(w, "All Quotes")
	snap := v.quotes.Snapshot()
	if !renderStatus(w, snap, "quotes", "There are no quotes in the system yet.") {
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "SUPPLIER\tRFQ ITEM\tRFQ ID\tPRICE/LB\tCERTIFICATIONS")
	for _, q := range snap.Data {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			q.Supplier.CompanyName, q.RFQ.Item, shortID(q.RFQ.ID),
			FormatCurrency(q.PricePerPound), joinOrDash(q.CertificationNames(), ", "))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintln(w)
	tw = newTable(w)
	fmt.Fprintln(tw, "RFQ ITEM\tQUOTES\tPRICED\tBEST PRICE")
	for _, s := range v.Summaries() {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n", s.RFQ.Item, s.QuoteCount, s.PricedCount, FormatCurrency(s.BestPrice))
	}
	return tw.Flush()
}
