package views

import (
	"context"
	"fmt"
	"io"

	"waystation/internal/models"
	"waystation/internal/resource"
)

type SuppliersView struct {
	suppliers *resource.Controller[resource.None, []models.Supplier]
}

func NewSuppliersView(b resource.Backend) *SuppliersView {
	return &SuppliersView{suppliers: resource.NewSuppliers(b)}
}

func (v *SuppliersView) Load(ctx context.Context) error {
	_, err := v.suppliers.Execute(ctx, resource.None{})
	return err
}

func (v *SuppliersView) Suppliers() resource.Snapshot[[]models.Supplier] { return v.suppliers.Snapshot() }

func (v *SuppliersView) Render(w io.Writer) error {
	fmt.Fprintln(w, "Suppliers")
	snap := v.suppliers.Snapshot()
	if !renderStatus(w, snap, "suppliers", "No suppliers found.") {
		return nil
	}

	tw := newTable(w)
	fmt.Fprintln(tw, "COMPANY\tCONTACT\tEMAIL\tPHONE\tHQ ADDRESS\tPAYMENT TERMS")
	for _, s := range snap.Data {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.CompanyName, orDash(s.ContactName), s.ContactEmail, orDash(s.ContactPhone),
			orDash(s.HQAddress), orDash(s.PaymentTerms))
	}
	return tw.Flush()
}
