package devserver

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waystation/internal/models"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createRFQ(t *testing.T, s *Store, item string, certs ...string) models.RFQ {
	t.Helper()
	if certs == nil {
		certs = []string{}
	}
	r, err := s.CreateRFQ(context.Background(), models.RFQCreatePayload{
		Item:                   item,
		AmountRequiredLbs:      models.Present(1000.0),
		DueDate:                models.Present("2025-08-01"),
		RequiredCertifications: certs,
	})
	require.NoError(t, err)
	return r
}

func TestCreateRFQResolvesCertifications(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	first := createRFQ(t, s, "Almonds", "Organic", "Non-GMO")
	second := createRFQ(t, s, "Pecans", "Non-GMO", "Kosher")

	assert.Equal(t, []string{"Organic", "Non-GMO"}, first.RequiredCertificationNames())
	assert.Equal(t, []string{"Non-GMO", "Kosher"}, second.RequiredCertificationNames())
	assert.Equal(t, first.RequiredCertifications[1].ID, second.RequiredCertifications[0].ID)

	due, ok := first.DueDate.Get()
	require.True(t, ok)
	assert.Equal(t, "2025-08-01", due.Format("2006-01-02"))
	assert.False(t, first.ShipToLocation.IsPresent())

	certs, err := s.ListCertifications(ctx)
	require.NoError(t, err)
	assert.Len(t, certs, 3)

	rfqs, err := s.ListRFQs(ctx)
	require.NoError(t, err)
	require.Len(t, rfqs, 2)
	assert.Equal(t, "Almonds", rfqs[0].Item)
}

func TestGetRFQNotFound(t *testing.T) {
	s := setupStore(t)
	_, err := s.GetRFQ(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.ListQuotesForRFQ(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIngestEmailCreatesSupplierAndQuote(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	rfq := createRFQ(t, s, "Almonds", "Organic")

	q, created, err := s.IngestEmail(ctx, rfq.ID, "raw", ExtractedQuote{
		SupplierEmail: "sales@acme.test",
		PricePerPound: models.Present(2.5),
	})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "Supplier (sales@acme.test)", q.Supplier.CompanyName)
	assert.Equal(t, models.Present(2.5), q.PricePerPound)
	assert.Equal(t, rfq.ID, q.RFQ.ID)
	assert.Equal(t, []models.Certification{}, q.Certifications)

	suppliers, err := s.ListSuppliers(ctx)
	require.NoError(t, err)
	require.Len(t, suppliers, 1)
	assert.Equal(t, "sales@acme.test", suppliers[0].ContactEmail)
}

func TestIngestEmailUpdatesExistingQuote(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	rfq := createRFQ(t, s, "Almonds", "Organic")

	first, _, err := s.IngestEmail(ctx, rfq.ID, "first", ExtractedQuote{
		SupplierEmail:   "sales@acme.test",
		CompanyName:     models.Present("Acme"),
		PricePerPound:   models.Present(2.5),
		CountryOfOrigin: models.Present("USA"),
		Certifications:  []string{"Organic", "Halal"},
	})
	require.NoError(t, err)

	second, created, err := s.IngestEmail(ctx, rfq.ID, "second", ExtractedQuote{
		SupplierEmail:  "SALES@acme.test",
		MinOrderQty:    models.Present(500),
		Certifications: []string{"Kosher"},
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, models.Present(2.5), second.PricePerPound)
	assert.Equal(t, models.Present("USA"), second.CountryOfOrigin)
	assert.Equal(t, models.Present(500), second.MinOrderQty)
	assert.Equal(t, []string{"Kosher"}, second.CertificationNames())
	assert.Equal(t, "Acme", second.Supplier.CompanyName)

	logs, err := s.EmailsForQuote(ctx, first.ID)
	require.NoError(t, err)
	require.Len(t, logs, 2)
	assert.Equal(t, "first", logs[0].RawText)
	var extracted map[string]any
	require.NoError(t, json.Unmarshal(logs[1].Extracted, &extracted))
	assert.Equal(t, float64(500), extracted["minimum_order_quantity"])
}

func TestIngestEmailWithoutAddress(t *testing.T) {
	s := setupStore(t)
	rfq := createRFQ(t, s, "Almonds")
	_, _, err := s.IngestEmail(context.Background(), rfq.ID, "raw", ExtractedQuote{})
	assert.ErrorIs(t, err, ErrNoSupplierEmail)
}

func TestSupplierCreateAndUpdate(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	sp, err := s.CreateSupplier(ctx, models.Supplier{CompanyName: "Acme", ContactEmail: "a@acme.test"})
	require.NoError(t, err)
	require.NotEmpty(t, sp.ID)

	_, err = s.CreateSupplier(ctx, models.Supplier{CompanyName: "Acme", ContactEmail: "b@acme.test"})
	assert.ErrorIs(t, err, ErrDuplicate)

	u := SupplierUpdate{PaymentTerms: models.Present("Net 30")}
	assert.False(t, u.Empty())
	updated, err := s.UpdateSupplier(ctx, u.Apply(sp))
	require.NoError(t, err)

	got, err := s.GetSupplier(ctx, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
	assert.Equal(t, models.Present("Net 30"), got.PaymentTerms)

	_, err = s.UpdateSupplier(ctx, models.Supplier{ID: "missing", CompanyName: "X", ContactEmail: "x@x.test"})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.True(t, SupplierUpdate{}.Empty())
}

func TestSeed(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()
	require.NoError(t, s.Seed(ctx))
	require.NoError(t, s.Seed(ctx))

	rfqs, err := s.ListRFQs(ctx)
	require.NoError(t, err)
	assert.Len(t, rfqs, 3)

	suppliers, err := s.ListSuppliers(ctx)
	require.NoError(t, err)
	assert.Len(t, suppliers, 3)

	quotes, err := s.ListQuotes(ctx)
	require.NoError(t, err)
	require.Len(t, quotes, 6)
	assert.Equal(t, "Whey Protein Concentrate", quotes[0].RFQ.Item)
	assert.Equal(t, "Farm Fresh Organics", quotes[0].Supplier.CompanyName)
	assert.Equal(t, "Soy Protein Isolate", quotes[5].RFQ.Item)

	soy, err := s.ListQuotesForRFQ(ctx, rfqs[0].ID)
	require.NoError(t, err)
	assert.Len(t, soy, 2)
}
