package devserver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"waystation/internal/models"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("not found")

// timeLayout keeps stored timestamps fixed-width so they sort as text.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// Store persists the sandbox backend's records in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (or creates) the database at path and applies the schema.
// ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection: in-memory databases are per-connection, and PRAGMAs
	// below only apply to the connection they run on.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=10000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS certifications (
			id TEXT PRIMARY KEY, name TEXT NOT NULL UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS suppliers (
			id TEXT PRIMARY KEY, company_name TEXT NOT NULL UNIQUE,
			contact_name TEXT, contact_email TEXT NOT NULL UNIQUE,
			contact_phone TEXT, hq_address TEXT, payment_terms TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS rfqs (
			id TEXT PRIMARY KEY, item TEXT NOT NULL,
			due_date TEXT, amount_required_lbs REAL, ship_to_location TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS rfq_certifications (
			rfq_id TEXT NOT NULL, certification_id TEXT NOT NULL, position INTEGER NOT NULL,
			PRIMARY KEY (rfq_id, certification_id),
			FOREIGN KEY (rfq_id) REFERENCES rfqs(id) ON DELETE CASCADE,
			FOREIGN KEY (certification_id) REFERENCES certifications(id)
		)`,
		`CREATE TABLE IF NOT EXISTS quotes (
			id TEXT PRIMARY KEY, rfq_id TEXT NOT NULL, supplier_id TEXT NOT NULL,
			date_submitted TEXT NOT NULL,
			price_per_pound REAL, country_of_origin TEXT, min_order_quantity INTEGER,
			UNIQUE (rfq_id, supplier_id),
			FOREIGN KEY (rfq_id) REFERENCES rfqs(id) ON DELETE CASCADE,
			FOREIGN KEY (supplier_id) REFERENCES suppliers(id)
		)`,
		`CREATE TABLE IF NOT EXISTS quote_certifications (
			quote_id TEXT NOT NULL, certification_id TEXT NOT NULL, position INTEGER NOT NULL,
			PRIMARY KEY (quote_id, certification_id),
			FOREIGN KEY (quote_id) REFERENCES quotes(id) ON DELETE CASCADE,
			FOREIGN KEY (certification_id) REFERENCES certifications(id)
		)`,
		`CREATE TABLE IF NOT EXISTS emails (
			id TEXT PRIMARY KEY, quote_id TEXT NOT NULL,
			raw_text TEXT NOT NULL, extracted_data TEXT NOT NULL DEFAULT '{}',
			received_at TEXT NOT NULL,
			FOREIGN KEY (quote_id) REFERENCES quotes(id) ON DELETE CASCADE
		)`,
	}
	for _, t := range tables {
		if _, err := s.db.Exec(t); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) stamp() string { return s.now().UTC().Format(timeLayout) }

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func nullable[T any](o models.Optional[T]) any {
	if v, ok := o.Get(); ok {
		return v
	}
	return nil
}

func optString(ns sql.NullString) models.Optional[string] {
	if !ns.Valid {
		return models.Absent[string]()
	}
	return models.Present(ns.String)
}

func optFloat(nf sql.NullFloat64) models.Optional[float64] {
	if !nf.Valid {
		return models.Absent[float64]()
	}
	return models.Present(nf.Float64)
}

func optInt(ni sql.NullInt64) models.Optional[int] {
	if !ni.Valid {
		return models.Absent[int]()
	}
	return models.Present(int(ni.Int64))
}

// resolveCertifications returns records for names in the given order,
// creating the ones that do not exist yet.
func resolveCertifications(ctx context.Context, q queryer, names []string) ([]models.Certification, error) {
	certs := make([]models.Certification, 0, len(names))
	seen := map[string]bool{}
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		var c models.Certification
		err := q.QueryRowContext(ctx, `SELECT id, name FROM certifications WHERE name=?`, name).Scan(&c.ID, &c.Name)
		if errors.Is(err, sql.ErrNoRows) {
			c = models.Certification{ID: uuid.NewString(), Name: name}
			if _, err := q.ExecContext(ctx, `INSERT INTO certifications (id, name) VALUES (?,?)`, c.ID, c.Name); err != nil {
				return nil, err
			}
		} else if err != nil {
			return nil, err
		}
		certs = append(certs, c)
	}
	return certs, nil
}

func linkedCertifications(ctx context.Context, q queryer, table, column, id string) ([]models.Certification, error) {
	rows, err := q.QueryContext(ctx, `SELECT c.id, c.name FROM `+table+` l JOIN certifications c ON c.id = l.certification_id
		WHERE l.`+column+`=? ORDER BY l.position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	certs := []models.Certification{}
	for rows.Next() {
		var c models.Certification
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		certs = append(certs, c)
	}
	return certs, rows.Err()
}

// ListCertifications returns every known certification by name.
func (s *Store) ListCertifications(ctx context.Context) ([]models.Certification, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM certifications ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	certs := []models.Certification{}
	for rows.Next() {
		var c models.Certification
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		certs = append(certs, c)
	}
	return certs, rows.Err()
}

const rfqColumns = `id, item, due_date, amount_required_lbs, ship_to_location`

func scanRFQ(sc interface{ Scan(...any) error }) (models.RFQ, error) {
	var (
		r      models.RFQ
		due    sql.NullString
		amount sql.NullFloat64
		shipTo sql.NullString
	)
	if err := sc.Scan(&r.ID, &r.Item, &due, &amount, &shipTo); err != nil {
		return r, err
	}
	if due.Valid {
		ts, err := models.ParseTimestamp(due.String)
		if err != nil {
			return r, fmt.Errorf("rfq %s due_date: %w", r.ID, err)
		}
		r.DueDate = models.Present(ts)
	}
	r.AmountRequiredLbs = optFloat(amount)
	r.ShipToLocation = optString(shipTo)
	return r, nil
}

func (s *Store) ListRFQs(ctx context.Context) ([]models.RFQ, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+rfqColumns+` FROM rfqs ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	items := []models.RFQ{}
	for rows.Next() {
		r, err := scanRFQ(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		items = append(items, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].RequiredCertifications, err = linkedCertifications(ctx, s.db, "rfq_certifications", "rfq_id", items[i].ID); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (s *Store) GetRFQ(ctx context.Context, id string) (models.RFQ, error) {
	r, err := scanRFQ(s.db.QueryRowContext(ctx, `SELECT `+rfqColumns+` FROM rfqs WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return r, ErrNotFound
	}
	if err != nil {
		return r, err
	}
	r.RequiredCertifications, err = linkedCertifications(ctx, s.db, "rfq_certifications", "rfq_id", id)
	return r, err
}

// CreateRFQ inserts an RFQ, resolving certification names to records.
func (s *Store) CreateRFQ(ctx context.Context, p models.RFQCreatePayload) (models.RFQ, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.RFQ{}, err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `INSERT INTO rfqs (id, item, due_date, amount_required_lbs, ship_to_location, created_at) VALUES (?,?,?,?,?,?)`,
		id, p.Item, nullable(p.DueDate), nullable(p.AmountRequiredLbs), nullable(p.ShipToLocation), s.stamp())
	if err != nil {
		return models.RFQ{}, err
	}
	certs, err := resolveCertifications(ctx, tx, p.RequiredCertifications)
	if err != nil {
		return models.RFQ{}, err
	}
	for i, c := range certs {
		if _, err := tx.ExecContext(ctx, `INSERT INTO rfq_certifications (rfq_id, certification_id, position) VALUES (?,?,?)`, id, c.ID, i); err != nil {
			return models.RFQ{}, err
		}
	}
	if err := tx.Commit(); err != nil {
		return models.RFQ{}, err
	}
	return s.GetRFQ(ctx, id)
}

const quoteSelect = `SELECT q.id, q.rfq_id, r.item, q.date_submitted, q.price_per_pound, q.country_of_origin, q.min_order_quantity,
	s.company_name, s.contact_name, s.hq_address, s.payment_terms
	FROM quotes q JOIN suppliers s ON s.id = q.supplier_id JOIN rfqs r ON r.id = q.rfq_id`

func scanQuote(sc interface{ Scan(...any) error }) (models.FullQuote, error) {
	var (
		fq        models.FullQuote
		submitted string
		price     sql.NullFloat64
		country   sql.NullString
		moq       sql.NullInt64
		contact   sql.NullString
		hq        sql.NullString
		terms     sql.NullString
	)
	err := sc.Scan(&fq.ID, &fq.RFQ.ID, &fq.RFQ.Item, &submitted, &price, &country, &moq,
		&fq.Supplier.CompanyName, &contact, &hq, &terms)
	if err != nil {
		return fq, err
	}
	if fq.DateSubmitted, err = models.ParseTimestamp(submitted); err != nil {
		return fq, fmt.Errorf("quote %s date_submitted: %w", fq.ID, err)
	}
	fq.PricePerPound = optFloat(price)
	fq.CountryOfOrigin = optString(country)
	fq.MinOrderQty = optInt(moq)
	fq.Supplier.ContactName = optString(contact)
	fq.Supplier.HQAddress = optString(hq)
	fq.Supplier.PaymentTerms = optString(terms)
	return fq, nil
}

func (s *Store) queryQuotes(ctx context.Context, query string, args ...any) ([]models.FullQuote, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	quotes := []models.FullQuote{}
	for rows.Next() {
		fq, err := scanQuote(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		quotes = append(quotes, fq)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range quotes {
		if quotes[i].Certifications, err = linkedCertifications(ctx, s.db, "quote_certifications", "quote_id", quotes[i].ID); err != nil {
			return nil, err
		}
	}
	return quotes, nil
}

// ListQuotesForRFQ returns the RFQ's quotes in submission order.
func (s *Store) ListQuotesForRFQ(ctx context.Context, rfqID string) ([]models.Quote, error) {
	if _, err := s.GetRFQ(ctx, rfqID); err != nil {
		return nil, err
	}
	full, err := s.queryQuotes(ctx, quoteSelect+` WHERE q.rfq_id=? ORDER BY q.date_submitted, q.rowid`, rfqID)
	if err != nil {
		return nil, err
	}
	quotes := make([]models.Quote, len(full))
	for i, fq := range full {
		quotes[i] = fq.Quote
	}
	return quotes, nil
}

// ListQuotes returns every quote, newest first.
func (s *Store) ListQuotes(ctx context.Context) ([]models.FullQuote, error) {
	return s.queryQuotes(ctx, quoteSelect+` ORDER BY q.date_submitted DESC, q.rowid DESC`)
}

func (s *Store) GetQuote(ctx context.Context, id string) (models.FullQuote, error) {
	quotes, err := s.queryQuotes(ctx, quoteSelect+` WHERE q.id=?`, id)
	if err != nil {
		return models.FullQuote{}, err
	}
	if len(quotes) == 0 {
		return models.FullQuote{}, ErrNotFound
	}
	return quotes[0], nil
}

const supplierColumns = `id, company_name, contact_name, contact_email, contact_phone, hq_address, payment_terms`

func scanSupplier(sc interface{ Scan(...any) error }) (models.Supplier, error) {
	var sp models.Supplier
	var contact, phone, hq, terms sql.NullString
	if err := sc.Scan(&sp.ID, &sp.CompanyName, &contact, &sp.ContactEmail, &phone, &hq, &terms); err != nil {
		return sp, err
	}
	sp.ContactName = optString(contact)
	sp.ContactPhone = optString(phone)
	sp.HQAddress = optString(hq)
	sp.PaymentTerms = optString(terms)
	return sp, nil
}

func (s *Store) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+supplierColumns+` FROM suppliers ORDER BY created_at, rowid`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []models.Supplier{}
	for rows.Next() {
		sp, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, sp)
	}
	return items, rows.Err()
}

func (s *Store) GetSupplier(ctx context.Context, id string) (models.Supplier, error) {
	sp, err := scanSupplier(s.db.QueryRowContext(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return sp, ErrNotFound
	}
	return sp, err
}

func findSupplierByEmail(ctx context.Context, q queryer, email string) (models.Supplier, error) {
	sp, err := scanSupplier(q.QueryRowContext(ctx, `SELECT `+supplierColumns+` FROM suppliers WHERE lower(contact_email)=lower(?)`, email))
	if errors.Is(err, sql.ErrNoRows) {
		return sp, ErrNotFound
	}
	return sp, err
}

// ErrDuplicate is returned when a unique supplier field is already taken.
var ErrDuplicate = errors.New("duplicate")

func wrapConstraint(err error) error {
	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func insertSupplier(ctx context.Context, q queryer, sp models.Supplier, stamp string) (models.Supplier, error) {
	sp.ID = uuid.NewString()
	_, err := q.ExecContext(ctx, `INSERT INTO suppliers (`+supplierColumns+`, created_at) VALUES (?,?,?,?,?,?,?,?)`,
		sp.ID, sp.CompanyName, nullable(sp.ContactName), sp.ContactEmail, nullable(sp.ContactPhone),
		nullable(sp.HQAddress), nullable(sp.PaymentTerms), stamp)
	return sp, wrapConstraint(err)
}

func (s *Store) CreateSupplier(ctx context.Context, sp models.Supplier) (models.Supplier, error) {
	return insertSupplier(ctx, s.db, sp, s.stamp())
}

// SupplierUpdate carries the fields of a partial supplier update; absent
// fields are left unchanged.
type SupplierUpdate struct {
	CompanyName  models.Optional[string] `json:"company_name"`
	ContactName  models.Optional[string] `json:"contact_name"`
	ContactEmail models.Optional[string] `json:"contact_email"`
	ContactPhone models.Optional[string] `json:"contact_phone"`
	HQAddress    models.Optional[string] `json:"hq_address"`
	PaymentTerms models.Optional[string] `json:"payment_terms"`
}

// Empty reports whether the update sets no field.
func (u SupplierUpdate) Empty() bool {
	return !u.CompanyName.IsPresent() && !u.ContactName.IsPresent() && !u.ContactEmail.IsPresent() &&
		!u.ContactPhone.IsPresent() && !u.HQAddress.IsPresent() && !u.PaymentTerms.IsPresent()
}

// Apply returns sp with the update's present fields overwritten.
func (u SupplierUpdate) Apply(sp models.Supplier) models.Supplier {
	if v, ok := u.CompanyName.Get(); ok {
		sp.CompanyName = v
	}
	if u.ContactName.IsPresent() {
		sp.ContactName = u.ContactName
	}
	if v, ok := u.ContactEmail.Get(); ok {
		sp.ContactEmail = v
	}
	if u.ContactPhone.IsPresent() {
		sp.ContactPhone = u.ContactPhone
	}
	if u.HQAddress.IsPresent() {
		sp.HQAddress = u.HQAddress
	}
	if u.PaymentTerms.IsPresent() {
		sp.PaymentTerms = u.PaymentTerms
	}
	return sp
}

// UpdateSupplier stores sp over the existing record with the same id.
func (s *Store) UpdateSupplier(ctx context.Context, sp models.Supplier) (models.Supplier, error) {
	res, err := s.db.ExecContext(ctx, `UPDATE suppliers SET company_name=?, contact_name=?, contact_email=?, contact_phone=?, hq_address=?, payment_terms=? WHERE id=?`,
		sp.CompanyName, nullable(sp.ContactName), sp.ContactEmail, nullable(sp.ContactPhone),
		nullable(sp.HQAddress), nullable(sp.PaymentTerms), sp.ID)
	if err != nil {
		return models.Supplier{}, wrapConstraint(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Supplier{}, ErrNotFound
	}
	return sp, nil
}
