package devserver

import (
	"bufio"
	"fmt"
	"math"
	"net/mail"
	"regexp"
	"strconv"
	"strings"

	"waystation/internal/models"
)

// ExtractedQuote is the structured content read from a supplier email.
type ExtractedQuote struct {
	SupplierEmail   string                   `json:"supplier_email,omitempty"`
	CompanyName     models.Optional[string]  `json:"company_name"`
	ContactName     models.Optional[string]  `json:"contact_name"`
	SupplierPhone   models.Optional[string]  `json:"supplier_phone"`
	PricePerPound   models.Optional[float64] `json:"price_per_pound"`
	CountryOfOrigin models.Optional[string]  `json:"country_of_origin"`
	MinOrderQty     models.Optional[int]     `json:"minimum_order_quantity"`
	Certifications  []string                 `json:"certifications"`
}

var emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)

// ParseEmail reads the sandbox's "Key: value" email fixture format. Keys are
// case-insensitive; unknown lines are ignored. When no From line carries an
// address, the first address anywhere in the text is used.
func ParseEmail(raw string) (ExtractedQuote, error) {
	ex := ExtractedQuote{Certifications: []string{}}

	sc := bufio.NewScanner(strings.NewReader(raw))
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for sc.Scan() {
		key, value, ok := strings.Cut(sc.Text(), ":")
		if !ok {
			continue
		}
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}

		switch key {
		case "from", "email":
			if addr, err := mail.ParseAddress(value); err == nil {
				ex.SupplierEmail = addr.Address
				if addr.Name != "" && !ex.ContactName.IsPresent() {
					ex.ContactName = models.Present(addr.Name)
				}
			} else if m := emailPattern.FindString(value); m != "" {
				ex.SupplierEmail = m
			}
		case "company":
			ex.CompanyName = models.Present(value)
		case "contact":
			ex.ContactName = models.Present(value)
		case "phone":
			ex.SupplierPhone = models.Present(value)
		case "price per pound", "price":
			p, err := parsePrice(value)
			if err != nil {
				return ex, err
			}
			ex.PricePerPound = models.Present(p)
		case "country of origin", "origin":
			ex.CountryOfOrigin = models.Present(value)
		case "minimum order quantity", "moq":
			n, err := parseQuantity(value)
			if err != nil {
				return ex, err
			}
			ex.MinOrderQty = models.Present(n)
		case "certifications":
			for _, part := range strings.Split(value, ",") {
				if name := strings.TrimSpace(part); name != "" {
					ex.Certifications = append(ex.Certifications, name)
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return ex, err
	}

	if ex.SupplierEmail == "" {
		ex.SupplierEmail = emailPattern.FindString(raw)
	}
	return ex, nil
}

func parsePrice(v string) (float64, error) {
	s := strings.ToLower(v)
	for _, cut := range []string{"$", "usd", "per pound", "/lb", "per lb", ","} {
		s = strings.ReplaceAll(s, cut, "")
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
		return 0, fmt.Errorf("price per pound %q is not a number", v)
	}
	return p, nil
}

func parseQuantity(v string) (int, error) {
	s := strings.ToLower(v)
	for _, cut := range []string{"lbs", "lb", "pounds", ","} {
		s = strings.ReplaceAll(s, cut, "")
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("minimum order quantity %q is not a whole number", v)
	}
	return n, nil
}
