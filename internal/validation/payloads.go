package validation

import "waystation/internal/models"

// RFQCreate validates a create-RFQ payload.
func RFQCreate(p models.RFQCreatePayload) *ValidationErrors {
	ve := &ValidationErrors{}
	RequireField(ve, "item", p.Item)
	ValidateMaxLength(ve, "item", p.Item, MaxStringLength)
	if d, ok := p.DueDate.Get(); ok {
		ValidateDate(ve, "due_date", d)
	}
	if amt, ok := p.AmountRequiredLbs.Get(); ok {
		ValidatePositiveFloat(ve, "amount_required_lbs", amt)
		ValidateMaxQuantity(ve, "amount_required_lbs", amt)
	}
	if loc, ok := p.ShipToLocation.Get(); ok {
		ValidateMaxLength(ve, "ship_to_location", loc, MaxStringLength)
	}
	ValidateUniqueNames(ve, "required_certifications", p.RequiredCertifications)
	return ve
}

// EmailSubmission validates an email-ingestion request.
func EmailSubmission(s models.EmailSubmission) *ValidationErrors {
	ve := &ValidationErrors{}
	RequireField(ve, "rfq_id", s.RFQID)
	RequireField(ve, "raw_text", s.RawText)
	ValidateMaxLength(ve, "raw_text", s.RawText, MaxTextLength)
	return ve
}

// Supplier validates a supplier record before it is stored.
func Supplier(s models.Supplier) *ValidationErrors {
	ve := &ValidationErrors{}
	RequireField(ve, "company_name", s.CompanyName)
	RequireField(ve, "contact_email", s.ContactEmail)
	ValidateEmail(ve, "contact_email", s.ContactEmail)
	return ve
}
