// Package compare holds the quote evaluation rules: best-price selection,
// price ordering and missing-information analysis. Every function is pure and
// recomputes from its inputs.
package compare

import (
	"math"
	"sort"

	"waystation/internal/models"
)

// Priced is anything carrying an optional price per pound.
type Priced interface {
	Price() models.Optional[float64]
}

// Missing-information labels, in reporting order.
const (
	MissingPrice       = "Price per pound"
	MissingCountry     = "Country of origin"
	MissingMinOrderQty = "Minimum order quantity"
	MissingCertPrefix  = "Certification: "
)

// effectivePrice maps an absent price to +Inf so it never wins and never
// lowers the minimum.
func effectivePrice(p Priced) float64 {
	return p.Price().OrElse(math.Inf(1))
}

// BestPrice returns the lowest present price. ok is false when no quote has one.
func BestPrice[T Priced](quotes []T) (best float64, ok bool) {
	best = math.Inf(1)
	for _, q := range quotes {
		if p := effectivePrice(q); p < best {
			best = p
		}
	}
	if math.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}

// IsBest reports whether q's price equals the best price. Quotes without a
// price are never best, and nothing is best when bestOK is false.
func IsBest(q Priced, best float64, bestOK bool) bool {
	if !bestOK {
		return false
	}
	p, ok := q.Price().Get()
	return ok && p == best
}

// SortByPrice returns a copy of quotes ordered by ascending price, with
// unpriced quotes last. Equal prices keep their input order.
func SortByPrice[T Priced](quotes []T) []T {
	sorted := make([]T, len(quotes))
	copy(sorted, quotes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return effectivePrice(sorted[i]) < effectivePrice(sorted[j])
	})
	return sorted
}

// CertificationNameSet builds the set of names held by certs.
func CertificationNameSet(certs []models.Certification) map[string]struct{} {
	set := make(map[string]struct{}, len(certs))
	for _, c := range certs {
		set[c.Name] = struct{}{}
	}
	return set
}

// MissingCertifications returns the RFQ-required names, in RFQ order, that the
// quote does not hold. Names match exactly, case included.
func MissingCertifications(q models.Quote, rfq models.RFQ) []string {
	held := CertificationNameSet(q.Certifications)
	var missing []string
	for _, req := range rfq.RequiredCertifications {
		if _, ok := held[req.Name]; !ok {
			missing = append(missing, req.Name)
		}
	}
	return missing
}

// MissingInfo lists what q still lacks relative to rfq: price, country, MOQ,
// then each missing certification as "Certification: <name>".
func MissingInfo(q models.Quote, rfq models.RFQ) []string {
	missing := []string{}
	if !q.PricePerPound.IsPresent() {
		missing = append(missing, MissingPrice)
	}
	if !q.CountryOfOrigin.IsPresent() {
		missing = append(missing, MissingCountry)
	}
	if !q.MinOrderQty.IsPresent() {
		missing = append(missing, MissingMinOrderQty)
	}
	for _, name := range MissingCertifications(q, rfq) {
		missing = append(missing, MissingCertPrefix+name)
	}
	return missing
}

// HasMissingInfo reports whether MissingInfo is non-empty.
func HasMissingInfo(q models.Quote, rfq models.RFQ) bool {
	return len(MissingInfo(q, rfq)) > 0
}
