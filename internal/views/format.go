package views

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"
	_ "time/tzdata"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"waystation/internal/models"
	"waystation/internal/resource"
)

var printer = message.NewPrinter(language.AmericanEnglish)

// displayZone is the timezone quote submission times are shown in.
var displayZone = mustLoadLocation("America/Los_Angeles")

// mustLoadLocation panics on an unknown zone; time/tzdata is embedded so the
// lookup does not depend on the host.
func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("views: load location %q: %v", name, err))
	}
	return loc
}

// FormatCurrency renders a price as "$2.50", or "-" when absent.
func FormatCurrency(v models.Optional[float64]) string {
	p, ok := v.Get()
	if !ok {
		return "-"
	}
	return fmt.Sprintf("$%.2f", p)
}

// FormatAmount renders a quantity with thousands separators, or "-".
func FormatAmount(v models.Optional[float64]) string {
	a, ok := v.Get()
	if !ok {
		return "-"
	}
	return printer.Sprint(number.Decimal(a))
}

// FormatInt renders an optional integer with thousands separators, or "-".
func FormatInt(v models.Optional[int]) string {
	n, ok := v.Get()
	if !ok {
		return "-"
	}
	return printer.Sprint(number.Decimal(n))
}

// FormatSubmitted renders a timestamp in Pacific time, e.g. "Jul 1, 2025, 3:30 AM".
func FormatSubmitted(ts models.Timestamp) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.In(displayZone).Format("Jan 2, 2006, 3:04 PM")
}

// FormatDate renders an optional date as "Aug 1, 2025", or "-".
func FormatDate(v models.Optional[models.Timestamp]) string {
	ts, ok := v.Get()
	if !ok || ts.IsZero() {
		return "-"
	}
	return ts.Format("Jan 2, 2006")
}

func orDash(s models.Optional[string]) string {
	v := s.OrElse("")
	if v == "" {
		return "-"
	}
	return v
}

func joinOrDash(names []string, sep string) string {
	if len(names) == 0 {
		return "-"
	}
	return strings.Join(names, sep)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

// renderStatus writes the loading, error and empty affordances shared by all
// views. It reports whether the caller should go on to render rows.
func renderStatus[T any](w io.Writer, snap resource.Snapshot[[]T], what, empty string) bool {
	if snap.IsLoading() && len(snap.Data) == 0 {
		fmt.Fprintf(w, "Loading %s...\n", what)
		return false
	}
	if snap.IsLoading() {
		fmt.Fprintf(w, "Refreshing %s...\n", what)
	}
	if snap.Err != nil {
		fmt.Fprintf(w, "Failed to load %s: %s\n", what, snap.Err.Error())
	}
	if len(snap.Data) > 0 {
		return true
	}
	if snap.Err == nil && snap.State == resource.Success {
		fmt.Fprintln(w, empty)
	}
	return false
}
