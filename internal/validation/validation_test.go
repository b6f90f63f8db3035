package validation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waystation/internal/models"
)

func fields(ve *ValidationErrors) []string {
	out := make([]string, 0, len(ve.Errors))
	for _, e := range ve.Errors {
		out = append(out, e.Field)
	}
	return out
}

func TestValidationErrorsErr(t *testing.T) {
	ve := &ValidationErrors{}
	assert.NoError(t, ve.Err())

	ve.Add("item", "is required")
	ve.Add("due_date", "must be a valid date (YYYY-MM-DD)")
	require.Error(t, ve.Err())
	assert.Equal(t, "item: is required; due_date: must be a valid date (YYYY-MM-DD)", ve.Error())
}

func TestValidateDate(t *testing.T) {
	for _, ok := range []string{"", "2025-08-01", "2025-08-01T10:00:00Z"} {
		ve := &ValidationErrors{}
		ValidateDate(ve, "due_date", ok)
		assert.False(t, ve.HasErrors(), ok)
	}
	for _, bad := range []string{"08/01/2025", "2025-13-01", "tomorrow"} {
		ve := &ValidationErrors{}
		ValidateDate(ve, "due_date", bad)
		assert.True(t, ve.HasErrors(), bad)
	}
}

func TestNumericBounds(t *testing.T) {
	ve := &ValidationErrors{}
	ValidatePositiveFloat(ve, "a", 0)
	ValidateNonNegativeFloat(ve, "b", -0.01)
	ValidateNonNegativeInt(ve, "c", -1)
	ValidateMaxQuantity(ve, "d", MaxQuantityLbs+1)
	ValidateMaxPrice(ve, "e", MaxPrice+1)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, fields(ve))

	ve = &ValidationErrors{}
	ValidatePositiveFloat(ve, "a", 0.5)
	ValidateNonNegativeFloat(ve, "b", 0)
	ValidateNonNegativeInt(ve, "c", 0)
	ValidateFinite(ve, "d", 2.5)
	assert.False(t, ve.HasErrors())

	ve = &ValidationErrors{}
	ValidateFinite(ve, "nan", math.NaN())
	ValidateFinite(ve, "inf", math.Inf(-1))
	assert.Equal(t, []string{"nan", "inf"}, fields(ve))
}

func TestValidateUniqueNames(t *testing.T) {
	ve := &ValidationErrors{}
	ValidateUniqueNames(ve, "certs", []string{"Organic", "organic"})
	assert.False(t, ve.HasErrors())

	ValidateUniqueNames(ve, "certs", []string{"Organic", "Organic"})
	assert.True(t, ve.HasErrors())

	ve = &ValidationErrors{}
	ValidateUniqueNames(ve, "certs", []string{" "})
	assert.True(t, ve.HasErrors())
}

func TestRFQCreate(t *testing.T) {
	ve := RFQCreate(models.RFQCreatePayload{Item: "Almonds", RequiredCertifications: []string{}})
	assert.False(t, ve.HasErrors())

	ve = RFQCreate(models.RFQCreatePayload{
		Item:              " ",
		DueDate:           models.Present("soon"),
		AmountRequiredLbs: models.Present(-10.0),
	})
	assert.Equal(t, []string{"item", "due_date", "amount_required_lbs"}, fields(ve))
}

func TestEmailSubmission(t *testing.T) {
	assert.False(t, EmailSubmission(models.EmailSubmission{RFQID: "r1", RawText: "hi"}).HasErrors())
	assert.Equal(t, []string{"rfq_id", "raw_text"}, fields(EmailSubmission(models.EmailSubmission{RawText: "\n"})))
}

func TestSupplier(t *testing.T) {
	assert.False(t, Supplier(models.Supplier{CompanyName: "Acme", ContactEmail: "a@acme.test"}).HasErrors())
	assert.Equal(t, []string{"contact_email"}, fields(Supplier(models.Supplier{CompanyName: "Acme", ContactEmail: "nope"})))
	assert.Equal(t, []string{"company_name", "contact_email"}, fields(Supplier(models.Supplier{})))
}
