package apiclient

import (
	"context"
	"net/url"
	"strings"

	"waystation/internal/models"
	"waystation/internal/validation"
)

// ListRFQs fetches every RFQ.
func (c *Client) ListRFQs(ctx context.Context) ([]models.RFQ, error) {
	var rfqs []models.RFQ
	if err := c.Get(ctx, "/api/rfqs", nil, &rfqs); err != nil {
		return nil, err
	}
	return rfqs, nil
}

// CreateRFQ creates an RFQ; certification names are resolved by the backend.
func (c *Client) CreateRFQ(ctx context.Context, payload models.RFQCreatePayload) (models.RFQ, error) {
	if ve := validation.RFQCreate(payload); ve.HasErrors() {
		return models.RFQ{}, PreconditionFrom(ve)
	}
	if payload.RequiredCertifications == nil {
		payload.RequiredCertifications = []string{}
	}
	var rfq models.RFQ
	if err := c.Post(ctx, "/api/rfqs", payload, &rfq); err != nil {
		return models.RFQ{}, err
	}
	return rfq, nil
}

// ListQuotesForRFQ fetches the quotes submitted against one RFQ.
func (c *Client) ListQuotesForRFQ(ctx context.Context, rfqID string) ([]models.Quote, error) {
	if strings.TrimSpace(rfqID) == "" {
		return nil, Precondition("rfq_id", "RFQ ID is required.")
	}
	var quotes []models.Quote
	if err := c.Get(ctx, "/api/rfqs/"+url.PathEscape(rfqID)+"/quotes", nil, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// ListQuotes fetches every quote with its RFQ reference.
func (c *Client) ListQuotes(ctx context.Context) ([]models.FullQuote, error) {
	var quotes []models.FullQuote
	if err := c.Get(ctx, "/api/quotes", nil, &quotes); err != nil {
		return nil, err
	}
	return quotes, nil
}

// ProcessEmail submits a supplier's raw email for an RFQ; the backend returns
// the created or updated quote.
func (c *Client) ProcessEmail(ctx context.Context, sub models.EmailSubmission) (models.Quote, error) {
	if ve := validation.EmailSubmission(sub); ve.HasErrors() {
		return models.Quote{}, &PreconditionError{Message: "RFQ ID and email text are required.", Cause: ve}
	}
	var quote models.Quote
	path := "/api/rfqs/" + url.PathEscape(sub.RFQID) + "/extract-quote-from-email"
	if err := c.Post(ctx, path, sub, &quote); err != nil {
		return models.Quote{}, err
	}
	return quote, nil
}

// GenerateClarificationEmail asks the backend to draft a request for the
// information a quote is missing.
func (c *Client) GenerateClarificationEmail(ctx context.Context, quoteID string) (models.ClarificationEmail, error) {
	if strings.TrimSpace(quoteID) == "" {
		return models.ClarificationEmail{}, Precondition("quote_id", "Quote ID is required.")
	}
	var out models.ClarificationEmail
	path := "/api/quotes/" + url.PathEscape(quoteID) + "/generate-clarification-email"
	if err := c.Post(ctx, path, nil, &out); err != nil {
		return models.ClarificationEmail{}, err
	}
	return out, nil
}

// ListSuppliers fetches every supplier.
func (c *Client) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	if err := c.Get(ctx, "/api/suppliers", nil, &suppliers); err != nil {
		return nil, err
	}
	return suppliers, nil
}
