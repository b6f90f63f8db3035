package devserver

import (
	"context"
	"fmt"
	"time"

	"waystation/internal/models"
)

type seedQuote struct {
	supplier string
	rfq      string
	raw      string
	ex       ExtractedQuote
}

// Seed loads a small, fixed data set: four certifications, three suppliers,
// three RFQs and six quotes, three of them incomplete. It does nothing when
// RFQs already exist.
func (s *Store) Seed(ctx context.Context) error {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM rfqs`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	if _, err := s.ensureCertifications(ctx, "Non-GMO", "Halal", "Allergen Free", "Organic"); err != nil {
		return err
	}

	suppliers := []models.Supplier{
		{
			CompanyName: "Global Ingredients Inc.", ContactName: models.Present("Jane Doe"),
			ContactEmail: "jane.doe@global-ingredients.com", ContactPhone: models.Present("111-222-3333"),
			HQAddress: models.Present("123 Supply St, Foodville, USA"), PaymentTerms: models.Present("Net 30"),
		},
		{
			CompanyName: "Farm Fresh Organics", ContactName: models.Present("John Smith"),
			ContactEmail: "john.smith@farm-fresh.com", ContactPhone: models.Present("444-555-6666"),
			HQAddress: models.Present("456 Farmer Rd, Greenfield, USA"), PaymentTerms: models.Present("Net 60"),
		},
		{
			CompanyName: "Incomplete Supplies Co.", ContactName: models.Present("Chris P. Bacon"),
			ContactEmail: "chris.b@incomplete-supplies.com", ContactPhone: models.Present("777-888-9999"),
			HQAddress: models.Present("789 Missing Ave, Nowhere, USA"), PaymentTerms: models.Present("COD"),
		},
	}
	emails := map[string]string{}
	for _, sp := range suppliers {
		if _, err := s.CreateSupplier(ctx, sp); err != nil {
			return fmt.Errorf("seed supplier %s: %w", sp.CompanyName, err)
		}
		emails[sp.CompanyName] = sp.ContactEmail
	}

	rfqs := []models.RFQCreatePayload{
		{
			Item: "Soy Protein Isolate", DueDate: models.Present("2025-10-15"),
			AmountRequiredLbs: models.Present(50000.0), ShipToLocation: models.Present("Chicago, IL"),
			RequiredCertifications: []string{"Non-GMO", "Halal"},
		},
		{
			Item: "Organic Pea Protein", DueDate: models.Present("2025-11-01"),
			AmountRequiredLbs: models.Present(25000.0), ShipToLocation: models.Present("Los Angeles, CA"),
			RequiredCertifications: []string{"Organic", "Allergen Free"},
		},
		{
			Item: "Whey Protein Concentrate", DueDate: models.Present("2025-11-30"),
			AmountRequiredLbs: models.Present(10000.0), ShipToLocation: models.Present("Miami, FL"),
			RequiredCertifications: []string{"Non-GMO", "Allergen Free"},
		},
	}
	rfqIDs := map[string]string{}
	for _, p := range rfqs {
		r, err := s.CreateRFQ(ctx, p)
		if err != nil {
			return fmt.Errorf("seed rfq %s: %w", p.Item, err)
		}
		rfqIDs[p.Item] = r.ID
	}

	quotes := []seedQuote{
		{"Global Ingredients Inc.", "Soy Protein Isolate", "Hello, here is our quote for Soy Protein...", ExtractedQuote{
			PricePerPound: models.Present(2.55), CountryOfOrigin: models.Present("USA"),
			MinOrderQty: models.Present(5000), Certifications: []string{"Non-GMO"},
		}},
		{"Farm Fresh Organics", "Soy Protein Isolate", "Hi there - responding to RFQ for soy isolate...", ExtractedQuote{
			PricePerPound: models.Present(2.48), CountryOfOrigin: models.Present("Canada"),
			MinOrderQty: models.Present(10000), Certifications: []string{"Non-GMO", "Halal"},
		}},
		{"Farm Fresh Organics", "Organic Pea Protein", "For the Organic Pea Protein, our price is $4.10/lb...", ExtractedQuote{
			PricePerPound: models.Present(4.10), CountryOfOrigin: models.Present("USA"),
			MinOrderQty: models.Present(2000), Certifications: []string{"Organic", "Allergen Free"},
		}},
		{"Incomplete Supplies Co.", "Whey Protein Concentrate", "Re: Whey Protein. Sourced from USA, MOQ 1000lbs. We have Non-GMO and Allergen Free certs.", ExtractedQuote{
			CountryOfOrigin: models.Present("USA"), MinOrderQty: models.Present(1000),
			Certifications: []string{"Non-GMO", "Allergen Free"},
		}},
		{"Global Ingredients Inc.", "Whey Protein Concentrate", "Hello - for the Whey, our price is $5.50 per pound from Ireland. We are Non-GMO certified.", ExtractedQuote{
			PricePerPound: models.Present(5.50), CountryOfOrigin: models.Present("Ireland"),
			Certifications: []string{"Non-GMO"},
		}},
		{"Farm Fresh Organics", "Whey Protein Concentrate", "Hi, we can supply the Whey Protein Concentrate you requested. Let me know if you need more info.", ExtractedQuote{
			Certifications: []string{},
		}},
	}

	// Space submissions a minute apart so the newest-first listing is stable.
	base := s.now().Add(-time.Duration(len(quotes)) * time.Minute)
	now := s.now
	defer func() { s.now = now }()
	for i, sq := range quotes {
		at := base.Add(time.Duration(i) * time.Minute)
		s.now = func() time.Time { return at }
		sq.ex.SupplierEmail = emails[sq.supplier]
		if _, _, err := s.IngestEmail(ctx, rfqIDs[sq.rfq], sq.raw, sq.ex); err != nil {
			return fmt.Errorf("seed quote %s/%s: %w", sq.supplier, sq.rfq, err)
		}
	}
	return nil
}

func (s *Store) ensureCertifications(ctx context.Context, names ...string) ([]models.Certification, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()
	certs, err := resolveCertifications(ctx, tx, names)
	if err != nil {
		return nil, err
	}
	return certs, tx.Commit()
}
