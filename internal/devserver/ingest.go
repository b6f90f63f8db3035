package devserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"waystation/internal/models"
)

// ErrNoSupplierEmail is returned when an email names no supplier address.
var ErrNoSupplierEmail = errors.New("devserver: no supplier email address in text")

// IngestEmail records the quote carried by an email for rfqID. The supplier is
// found by address or created; the (supplier, RFQ) quote is created or has
// its present fields overwritten, with certifications replaced. The raw text
// is logged against the quote. created reports whether a new quote was made.
func (s *Store) IngestEmail(ctx context.Context, rfqID, raw string, ex ExtractedQuote) (q models.FullQuote, created bool, err error) {
	if ex.SupplierEmail == "" {
		return q, false, ErrNoSupplierEmail
	}
	if _, err := s.GetRFQ(ctx, rfqID); err != nil {
		return q, false, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return q, false, err
	}
	defer tx.Rollback()

	stamp := s.stamp()
	supplier, err := findSupplierByEmail(ctx, tx, ex.SupplierEmail)
	if errors.Is(err, ErrNotFound) {
		company := ex.CompanyName.OrElse("")
		if company == "" {
			company = fmt.Sprintf("Supplier (%s)", ex.SupplierEmail)
		}
		supplier, err = insertSupplier(ctx, tx, models.Supplier{
			CompanyName:  company,
			ContactName:  ex.ContactName,
			ContactEmail: ex.SupplierEmail,
			ContactPhone: ex.SupplierPhone,
		}, stamp)
	}
	if err != nil {
		return q, false, err
	}

	certs, err := resolveCertifications(ctx, tx, ex.Certifications)
	if err != nil {
		return q, false, err
	}

	var quoteID string
	err = tx.QueryRowContext(ctx, `SELECT id FROM quotes WHERE rfq_id=? AND supplier_id=?`, rfqID, supplier.ID).Scan(&quoteID)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		created = true
		quoteID = uuid.NewString()
		_, err = tx.ExecContext(ctx, `INSERT INTO quotes (id, rfq_id, supplier_id, date_submitted, price_per_pound, country_of_origin, min_order_quantity)
			VALUES (?,?,?,?,?,?,?)`, quoteID, rfqID, supplier.ID, stamp,
			nullable(ex.PricePerPound), nullable(ex.CountryOfOrigin), nullable(ex.MinOrderQty))
	case err == nil:
		_, err = tx.ExecContext(ctx, `UPDATE quotes SET
			price_per_pound = COALESCE(?, price_per_pound),
			country_of_origin = COALESCE(?, country_of_origin),
			min_order_quantity = COALESCE(?, min_order_quantity)
			WHERE id=?`, nullable(ex.PricePerPound), nullable(ex.CountryOfOrigin), nullable(ex.MinOrderQty), quoteID)
	}
	if err != nil {
		return q, false, err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM quote_certifications WHERE quote_id=?`, quoteID); err != nil {
		return q, false, err
	}
	for i, c := range certs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO quote_certifications (quote_id, certification_id, position) VALUES (?,?,?)`, quoteID, c.ID, i); err != nil {
			return q, false, err
		}
	}

	extracted, err := json.Marshal(ex)
	if err != nil {
		return q, false, err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO emails (id, quote_id, raw_text, extracted_data, received_at) VALUES (?,?,?,?,?)`,
		uuid.NewString(), quoteID, raw, string(extracted), stamp); err != nil {
		return q, false, err
	}

	if err := tx.Commit(); err != nil {
		return q, false, err
	}
	q, err = s.GetQuote(ctx, quoteID)
	return q, created, err
}

// EmailLog is a stored inbound email.
type EmailLog struct {
	ID         string
	QuoteID    string
	RawText    string
	Extracted  json.RawMessage
	ReceivedAt models.Timestamp
}

// EmailsForQuote returns the emails logged against a quote, oldest first.
func (s *Store) EmailsForQuote(ctx context.Context, quoteID string) ([]EmailLog, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, quote_id, raw_text, extracted_data, received_at FROM emails WHERE quote_id=? ORDER BY received_at, rowid`, quoteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	logs := []EmailLog{}
	for rows.Next() {
		var (
			e        EmailLog
			data     string
			received string
		)
		if err := rows.Scan(&e.ID, &e.QuoteID, &e.RawText, &data, &received); err != nil {
			return nil, err
		}
		e.Extracted = json.RawMessage(data)
		if e.ReceivedAt, err = models.ParseTimestamp(received); err != nil {
			return nil, err
		}
		logs = append(logs, e)
	}
	return logs, rows.Err()
}
