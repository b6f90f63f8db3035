package resource

import (
	"context"
	"strings"

	"waystation/internal/apiclient"
	"waystation/internal/models"
	"waystation/internal/validation"
)

// Backend is the request/response contract the controllers run against.
// *apiclient.Client satisfies it.
type Backend interface {
	ListRFQs(ctx context.Context) ([]models.RFQ, error)
	CreateRFQ(ctx context.Context, payload models.RFQCreatePayload) (models.RFQ, error)
	ListQuotesForRFQ(ctx context.Context, rfqID string) ([]models.Quote, error)
	ListQuotes(ctx context.Context) ([]models.FullQuote, error)
	ProcessEmail(ctx context.Context, sub models.EmailSubmission) (models.Quote, error)
	GenerateClarificationEmail(ctx context.Context, quoteID string) (models.ClarificationEmail, error)
	ListSuppliers(ctx context.Context) ([]models.Supplier, error)
}

// None is the input of operations that take no arguments.
type None = struct{}

func requireID(field, message string) func(string) error {
	return func(id string) error {
		if strings.TrimSpace(id) == "" {
			return apiclient.Precondition(field, message)
		}
		return nil
	}
}

func NewRFQs(b Backend) *Controller[None, []models.RFQ] {
	return New("list_rfqs", func(ctx context.Context, _ None) ([]models.RFQ, error) {
		return b.ListRFQs(ctx)
	}, Options[None]{})
}

func NewCreateRFQ(b Backend) *Controller[models.RFQCreatePayload, models.RFQ] {
	return New("create_rfq", b.CreateRFQ, Options[models.RFQCreatePayload]{
		Validate: func(p models.RFQCreatePayload) error {
			if ve := validation.RFQCreate(p); ve.HasErrors() {
				return apiclient.PreconditionFrom(ve)
			}
			return nil
		},
	})
}

func NewQuotesForRFQ(b Backend) *Controller[string, []models.Quote] {
	return New("list_rfq_quotes", b.ListQuotesForRFQ, Options[string]{
		Validate: requireID("rfq_id", "RFQ ID is required."),
	})
}

func NewAllQuotes(b Backend) *Controller[None, []models.FullQuote] {
	return New("list_quotes", func(ctx context.Context, _ None) ([]models.FullQuote, error) {
		return b.ListQuotes(ctx)
	}, Options[None]{})
}

func NewProcessEmail(b Backend) *Controller[models.EmailSubmission, models.Quote] {
	return New("process_email", b.ProcessEmail, Options[models.EmailSubmission]{
		Validate: func(s models.EmailSubmission) error {
			if ve := validation.EmailSubmission(s); ve.HasErrors() {
				return &apiclient.PreconditionError{Message: "RFQ ID and email text are required.", Cause: ve}
			}
			return nil
		},
	})
}

// NewClarificationEmail drops the previous draft as soon as a new one is
// requested, so a stale email is never shown while generating.
func NewClarificationEmail(b Backend) *Controller[string, string] {
	return New("generate_clarification_email", func(ctx context.Context, quoteID string) (string, error) {
		out, err := b.GenerateClarificationEmail(ctx, quoteID)
		if err != nil {
			return "", err
		}
		return out.EmailText, nil
	}, Options[string]{
		Validate:           requireID("quote_id", "Quote ID is required."),
		ClearDataOnExecute: true,
	})
}

func NewSuppliers(b Backend) *Controller[None, []models.Supplier] {
	return New("list_suppliers", func(ctx context.Context, _ None) ([]models.Supplier, error) {
		return b.ListSuppliers(ctx)
	}, Options[None]{})
}
