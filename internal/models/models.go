package models

// Certification is a named compliance attribute. Requirements and awarded
// certifications are matched by Name; IDs differ between the two.
type Certification struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Supplier struct {
	ID           string           `json:"id"`
	CompanyName  string           `json:"company_name"`
	ContactName  Optional[string] `json:"contact_name"`
	ContactEmail string           `json:"contact_email"`
	ContactPhone Optional[string] `json:"contact_phone"`
	HQAddress    Optional[string] `json:"hq_address"`
	PaymentTerms Optional[string] `json:"payment_terms"`
}

// Summary projects a Supplier onto the fields embedded in quotes.
func (s Supplier) Summary() SupplierSummary {
	return SupplierSummary{
		CompanyName:  s.CompanyName,
		ContactName:  s.ContactName,
		HQAddress:    s.HQAddress,
		PaymentTerms: s.PaymentTerms,
	}
}

// SupplierSummary is the supplier projection embedded in a Quote.
type SupplierSummary struct {
	CompanyName  string           `json:"company_name"`
	ContactName  Optional[string] `json:"contact_name"`
	HQAddress    Optional[string] `json:"hq_address"`
	PaymentTerms Optional[string] `json:"payment_terms"`
}

type RFQ struct {
	ID                     string              `json:"id"`
	Item                   string              `json:"item"`
	DueDate                Optional[Timestamp] `json:"due_date"`
	AmountRequiredLbs      Optional[float64]   `json:"amount_required_lbs"`
	ShipToLocation         Optional[string]    `json:"ship_to_location"`
	RequiredCertifications []Certification     `json:"required_certifications"`
}

// RequiredCertificationNames returns requirement names in the RFQ's order.
func (r RFQ) RequiredCertificationNames() []string {
	names := make([]string, 0, len(r.RequiredCertifications))
	for _, c := range r.RequiredCertifications {
		names = append(names, c.Name)
	}
	return names
}

// RFQCreatePayload is the body of a create-RFQ call. Certifications are plain
// names, resolved to records by the backend.
type RFQCreatePayload struct {
	Item                   string            `json:"item"`
	DueDate                Optional[string]  `json:"due_date"`
	AmountRequiredLbs      Optional[float64] `json:"amount_required_lbs"`
	ShipToLocation         Optional[string]  `json:"ship_to_location"`
	RequiredCertifications []string          `json:"required_certifications"`
}

// Quote is a supplier's offer against one RFQ. Absent optional fields mean the
// information is not yet known.
type Quote struct {
	ID              string            `json:"id"`
	DateSubmitted   Timestamp         `json:"date_submitted"`
	PricePerPound   Optional[float64] `json:"price_per_pound"`
	CountryOfOrigin Optional[string]  `json:"country_of_origin"`
	MinOrderQty     Optional[int]     `json:"min_order_quantity"`
	Certifications  []Certification   `json:"certifications"`
	Supplier        SupplierSummary   `json:"supplier"`
}

// Price implements the pricing accessor used by the comparison engine.
func (q Quote) Price() Optional[float64] { return q.PricePerPound }

// CertificationNames returns the names of the certifications the quote holds.
func (q Quote) CertificationNames() []string {
	names := make([]string, 0, len(q.Certifications))
	for _, c := range q.Certifications {
		names = append(names, c.Name)
	}
	return names
}

type RFQInfo struct {
	ID   string `json:"id"`
	Item string `json:"item"`
}

// FullQuote is a Quote with its RFQ reference, as listed in the all-quotes view.
type FullQuote struct {
	Quote
	RFQ RFQInfo `json:"rfq"`
}

// EmailSubmission is the input of the email-ingestion operation.
type EmailSubmission struct {
	RFQID   string `json:"-"`
	RawText string `json:"raw_text"`
}

type ClarificationEmail struct {
	EmailText string `json:"email_text"`
}
