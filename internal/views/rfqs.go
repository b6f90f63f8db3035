package views

import (
	"context"
	"fmt"
	"io"
	"strings"

	"waystation/internal/models"
	"waystation/internal/resource"
)

// RFQForm is the raw create-RFQ input as a user types it.
type RFQForm struct {
	Item              string
	DueDate           string
	AmountRequiredLbs float64
	ShipToLocation    string
	// Certifications is a comma-separated list of names.
	Certifications string
}

// ParseCertifications splits a comma-separated list, trimming blanks.
func ParseCertifications(input string) []string {
	names := []string{}
	for _, part := range strings.Split(input, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// Payload converts the form, treating empty values as absent.
func (f RFQForm) Payload() models.RFQCreatePayload {
	p := models.RFQCreatePayload{
		Item:                   strings.TrimSpace(f.Item),
		RequiredCertifications: ParseCertifications(f.Certifications),
	}
	if d := strings.TrimSpace(f.DueDate); d != "" {
		p.DueDate = models.Present(d)
	}
	if f.AmountRequiredLbs != 0 {
		p.AmountRequiredLbs = models.Present(f.AmountRequiredLbs)
	}
	if loc := strings.TrimSpace(f.ShipToLocation); loc != "" {
		p.ShipToLocation = models.Present(loc)
	}
	return p
}

// RFQsView lists RFQs and creates new ones.
type RFQsView struct {
	list   *resource.Controller[resource.None, []models.RFQ]
	create *resource.Controller[models.RFQCreatePayload, models.RFQ]

	DialogOpen bool
	FormError  string
}

func NewRFQsView(b resource.Backend) *RFQsView {
	return &RFQsView{
		list:   resource.NewRFQs(b),
		create: resource.NewCreateRFQ(b),
	}
}

func (v *RFQsView) Load(ctx context.Context) error {
	_, err := v.list.Execute(ctx, resource.None{})
	return err
}

func (v *RFQsView) List() resource.Snapshot[[]models.RFQ] { return v.list.Snapshot() }

func (v *RFQsView) Creating() resource.Snapshot[models.RFQ] { return v.create.Snapshot() }

// Find returns the loaded RFQ with the given id.
func (v *RFQsView) Find(id string) (models.RFQ, bool) {
	for _, r := range v.list.Snapshot().Data {
		if r.ID == id {
			return r, true
		}
	}
	return models.RFQ{}, false
}

func (v *RFQsView) OpenCreateDialog() {
	v.DialogOpen = true
	v.FormError = ""
}

// Create submits the form. On success the dialog closes and the list is
// re-fetched; on failure the dialog stays open with the error.
func (v *RFQsView) Create(ctx context.Context, form RFQForm) (models.RFQ, error) {
	v.DialogOpen = true
	rfq, err := v.create.Execute(ctx, form.Payload())
	if err != nil {
		v.FormError = err.Error()
		return models.RFQ{}, err
	}
	v.DialogOpen = false
	v.FormError = ""
	_ = v.Load(ctx)
	return rfq, nil
}

func (v *RFQsView) Render(w io.Writer) error {
	fmt.Fprintln(w, "Requests for Quote (RFQs)")
	snap := v.list.Snapshot()
	if !renderStatus(w, snap, "RFQs", "No RFQs found.") {
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tITEM\tAMOUNT (LBS)\tDUE DATE\tSHIP TO\tREQUIRED CERTIFICATIONS")
	for _, r := range snap.Data {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.Item, FormatAmount(r.AmountRequiredLbs), FormatDate(r.DueDate),
			orDash(r.ShipToLocation), joinOrDash(r.RequiredCertificationNames(), ", "))
	}
	return tw.Flush()
}
