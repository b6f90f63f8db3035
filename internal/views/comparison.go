package views

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"waystation/internal/apiclient"
	"waystation/internal/compare"
	"waystation/internal/models"
	"waystation/internal/resource"
)

// Form and dialog messages.
const (
	EmptyEmailMessage    = "Email content cannot be empty."
	ProcessEmailFallback = "An unexpected error occurred while processing the email."
	NothingToClarify     = "No missing information found to request."
)

// QuoteComparisonView compares the quotes submitted for one RFQ. It owns its
// own controllers; nothing is shared with other views.
type QuoteComparisonView struct {
	RFQ models.RFQ

	quotes  *resource.Controller[string, []models.Quote]
	email   *resource.Controller[models.EmailSubmission, models.Quote]
	clarify *resource.Controller[string, string]

	EmailDialogOpen bool
	FormError       string

	ClarificationOpen bool
	ClarifyingQuoteID string
}

func NewQuoteComparisonView(b resource.Backend, rfq models.RFQ) *QuoteComparisonView {
	return &QuoteComparisonView{
		RFQ:     rfq,
		quotes:  resource.NewQuotesForRFQ(b),
		email:   resource.NewProcessEmail(b),
		clarify: resource.NewClarificationEmail(b),
	}
}

// Load fetches (or re-fetches) the RFQ's quotes.
func (v *QuoteComparisonView) Load(ctx context.Context) error {
	_, err := v.quotes.Execute(ctx, v.RFQ.ID)
	return err
}

func (v *QuoteComparisonView) Quotes() resource.Snapshot[[]models.Quote] { return v.quotes.Snapshot() }

func (v *QuoteComparisonView) Submission() resource.Snapshot[models.Quote] { return v.email.Snapshot() }

func (v *QuoteComparisonView) Clarification() resource.Snapshot[string] { return v.clarify.Snapshot() }

// OnQuotesChange subscribes fn to quote list updates.
func (v *QuoteComparisonView) OnQuotesChange(fn func(resource.Snapshot[[]models.Quote])) func() {
	return v.quotes.Subscribe(fn)
}

// Comparison derives the comparison table from the quotes currently held.
func (v *QuoteComparisonView) Comparison() compare.Comparison {
	return compare.Compare(v.RFQ, v.quotes.Snapshot().Data)
}

// Rows returns the comparison rows, cheapest first.
func (v *QuoteComparisonView) Rows() []compare.Row { return v.Comparison().Rows }

func (v *QuoteComparisonView) OpenEmailDialog() {
	v.EmailDialogOpen = true
	v.FormError = ""
}

func (v *QuoteComparisonView) CloseEmailDialog() {
	v.EmailDialogOpen = false
}

// SubmitEmail sends a supplier email for this RFQ. Blank text is rejected
// before any call. On success the dialog closes and the quotes are
// re-fetched; on failure the dialog stays open and FormError carries the
// message.
func (v *QuoteComparisonView) SubmitEmail(ctx context.Context, text string) (models.Quote, error) {
	v.EmailDialogOpen = true
	if strings.TrimSpace(text) == "" {
		v.FormError = EmptyEmailMessage
		return models.Quote{}, apiclient.Precondition("raw_text", EmptyEmailMessage)
	}
	v.FormError = ""

	q, err := v.email.Execute(ctx, models.EmailSubmission{RFQID: v.RFQ.ID, RawText: text})
	if err != nil {
		v.FormError = err.Error()
		if v.FormError == "" {
			v.FormError = ProcessEmailFallback
		}
		return models.Quote{}, err
	}
	v.CloseEmailDialog()
	_ = v.Load(ctx)
	return q, nil
}

// RequestClarification opens the clarification dialog for quoteID and
// generates a draft. A quote with nothing missing has the action disabled,
// so no call is made. A failed generation leaves the dialog open with the
// error shown inline.
func (v *QuoteComparisonView) RequestClarification(ctx context.Context, quoteID string) (string, error) {
	if row, ok := v.Comparison().Row(quoteID); ok && !row.CanRequestClarification {
		return "", apiclient.Precondition("quote_id", NothingToClarify)
	}
	v.ClarificationOpen = true
	v.ClarifyingQuoteID = quoteID
	return v.clarify.Execute(ctx, quoteID)
}

func (v *QuoteComparisonView) CloseClarification() {
	v.ClarificationOpen = false
}

func (v *QuoteComparisonView) Render(w io.Writer) error {
	fmt.Fprintln(w, "Quote Comparison")
	fmt.Fprintf(w, "For RFQ: %s\n", v.RFQ.Item)
	fmt.Fprintf(w, "RFQ ID: %s\n", v.RFQ.ID)
	fmt.Fprintf(w, "Amount Required: %s lbs | Due Date: %s | Ship To: %s | Required Certifications: %s\n\n",
		FormatAmount(v.RFQ.AmountRequiredLbs), FormatDate(v.RFQ.DueDate),
		orDash(v.RFQ.ShipToLocation), joinOrDash(v.RFQ.RequiredCertificationNames(), ", "))

	snap := v.quotes.Snapshot()
	if renderStatus(w, snap, "quotes", "No quotes have been submitted for this RFQ yet.") {
		if err := v.renderTable(w); err != nil {
			return err
		}
	}

	if v.EmailDialogOpen && v.FormError != "" {
		fmt.Fprintf(w, "\nEmail submission failed: %s\n", v.FormError)
	}
	if v.ClarificationOpen {
		v.renderClarification(w)
	}
	return nil
}

func (v *QuoteComparisonView) renderTable(w io.Writer) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "RANK\tSUPPLIER\tCONTACT\tPRICE/LB\tORIGIN\tMOQ\tCERTIFICATIONS\tPAYMENT TERMS\tSUBMITTED\tMISSING INFO\tQUOTE ID\tACTION")
	for _, row := range v.Comparison().Rows {
		q := row.Quote
		price := FormatCurrency(q.PricePerPound)
		if row.IsBest {
			price += " (best)"
		}
		action := "request info"
		if !row.CanRequestClarification {
			action = "request info [disabled: complete]"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			row.Rank, q.Supplier.CompanyName, orDash(q.Supplier.ContactName), price,
			orDash(q.CountryOfOrigin), FormatInt(q.MinOrderQty),
			joinOrDash(q.CertificationNames(), ", "), orDash(q.Supplier.PaymentTerms),
			FormatSubmitted(q.DateSubmitted), joinOrDash(row.Missing, "; "), q.ID, action)
	}
	return tw.Flush()
}

func (v *QuoteComparisonView) renderClarification(w io.Writer) {
	fmt.Fprintf(w, "\nClarification email for quote %s\n", v.ClarifyingQuoteID)
	snap := v.clarify.Snapshot()
	switch {
	case snap.IsLoading():
		fmt.Fprintln(w, "Generating email...")
	case snap.Err != nil:
		fmt.Fprintf(w, "Failed to generate email: %s\n", snap.Err.Error())
	case snap.HasData:
		fmt.Fprintln(w, strings.Repeat("-", 60))
		fmt.Fprintln(w, snap.Data)
		fmt.Fprintln(w, strings.Repeat("-", 60))
	}
}

// IsPrecondition reports whether err was raised before any remote call.
func IsPrecondition(err error) bool {
	return errors.Is(err, apiclient.ErrPrecondition)
}
