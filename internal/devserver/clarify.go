package devserver

import (
	"strings"

	"waystation/internal/compare"
	"waystation/internal/models"
)

// ClarificationEmail drafts a request for whatever quote q still lacks
// relative to rfq. It reports false when nothing is missing.
func ClarificationEmail(q models.FullQuote, rfq models.RFQ) (string, bool) {
	missing := compare.MissingInfo(q.Quote, rfq)
	if len(missing) == 0 {
		return "", false
	}

	recipient := q.Supplier.ContactName.OrElse("")
	if recipient == "" {
		recipient = "the team at " + q.Supplier.CompanyName
	}

	var b strings.Builder
	b.WriteString("Hello " + recipient + ",\n\n")
	b.WriteString("Thank you for your quote for " + rfq.Item + ". ")
	b.WriteString("To complete our evaluation, could you please provide the following:\n\n")
	for _, m := range missing {
		b.WriteString("- " + m + "\n")
	}
	b.WriteString("\nWe look forward to hearing from you.\n\nBest regards,\nProcurement Team")
	return b.String(), true
}
