package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"waystation/internal/apiclient"
	"waystation/internal/config"
	"waystation/internal/devserver"
	"waystation/internal/export"
	"waystation/internal/resource"
	"waystation/internal/server"
	"waystation/internal/views"
	"waystation/internal/websocket"
)

type cli struct {
	cfg *config.Config
	out io.Writer
	in  io.Reader

	// backend overrides the HTTP client, for tests.
	backend resource.Backend
}

var _ resource.Backend = (*apiclient.Client)(nil)

func (c *cli) client() (resource.Backend, error) {
	if c.backend != nil {
		return c.backend, nil
	}
	return apiclient.New(c.cfg.Client.APIConfig())
}

func (c *cli) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "rfqs":
		return c.listRFQs(ctx)
	case "create-rfq":
		return c.createRFQ(ctx, args)
	case "quotes":
		return c.listQuotes(ctx)
	case "suppliers":
		return c.listSuppliers(ctx)
	case "compare":
		return c.compare(ctx, args)
	case "ingest":
		return c.ingest(ctx, args)
	case "clarify":
		return c.clarify(ctx, args)
	case "watch":
		return c.watch(ctx, args)
	case "serve":
		return c.serve(ctx)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (c *cli) listRFQs(ctx context.Context) error {
	b, err := c.client()
	if err != nil {
		return err
	}
	v := views.NewRFQsView(b)
	loadErr := v.Load(ctx)
	if err := v.Render(c.out); err != nil {
		return err
	}
	return loadErr
}

func (c *cli) createRFQ(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("create-rfq", flag.ContinueOnError)
	var form views.RFQForm
	fs.StringVar(&form.Item, "item", "", "Item name (required)")
	fs.StringVar(&form.DueDate, "due", "", "Due date, YYYY-MM-DD")
	fs.Float64Var(&form.AmountRequiredLbs, "amount", 0, "Amount required in pounds")
	fs.StringVar(&form.ShipToLocation, "ship-to", "", "Ship-to location")
	fs.StringVar(&form.Certifications, "certs", "", "Required certifications, comma-separated")
	if err := fs.Parse(args); err != nil {
		return err
	}

	b, err := c.client()
	if err != nil {
		return err
	}
	v := views.NewRFQsView(b)
	v.OpenCreateDialog()
	rfq, err := v.Create(ctx, form)
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Created RFQ %s (%s)\n\n", rfq.ID, rfq.Item)
	return v.Render(c.out)
}

func (c *cli) listQuotes(ctx context.Context) error {
	b, err := c.client()
	if err != nil {
		return err
	}
	v := views.NewQuotesView(b)
	loadErr := v.Load(ctx)
	if err := v.Render(c.out); err != nil {
		return err
	}
	return loadErr
}

func (c *cli) listSuppliers(ctx context.Context) error {
	b, err := c.client()
	if err != nil {
		return err
	}
	v := views.NewSuppliersView(b)
	loadErr := v.Load(ctx)
	if err := v.Render(c.out); err != nil {
		return err
	}
	return loadErr
}

// comparisonView looks up rfqID among the listed RFQs and returns a loaded
// comparison view for it.
func (c *cli) comparisonView(ctx context.Context, rfqID string) (*views.QuoteComparisonView, error) {
	b, err := c.client()
	if err != nil {
		return nil, err
	}
	rfqs := views.NewRFQsView(b)
	if err := rfqs.Load(ctx); err != nil {
		return nil, err
	}
	rfq, ok := rfqs.Find(rfqID)
	if !ok {
		return nil, fmt.Errorf("RFQ %s not found", rfqID)
	}
	v := views.NewQuoteComparisonView(b, rfq)
	if err := v.Load(ctx); err != nil {
		return v, err
	}
	return v, nil
}

func rfqArg(fs *flag.FlagSet, args []string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, fmt.Errorf("%s: RFQ ID is required", fs.Name())
	}
	return args[0], args[1:], nil
}

func (c *cli) compare(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("compare", flag.ContinueOnError)
	csvPath := fs.String("csv", "", "Write the comparison as CSV to this file")
	xlsxPath := fs.String("xlsx", "", "Write the comparison as an XLSX workbook to this file")
	rfqID, rest, err := rfqArg(fs, args)
	if err != nil {
		return err
	}
	if err := fs.Parse(rest); err != nil {
		return err
	}

	v, err := c.comparisonView(ctx, rfqID)
	if v == nil {
		return err
	}
	if rerr := v.Render(c.out); rerr != nil {
		return rerr
	}
	if err != nil {
		return err
	}

	cmp := v.Comparison()
	if *csvPath != "" {
		if err := writeFile(*csvPath, func(w io.Writer) error { return export.WriteCSV(w, cmp) }); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "\nWrote %s\n", *csvPath)
	}
	if *xlsxPath != "" {
		if err := writeFile(*xlsxPath, func(w io.Writer) error { return export.WriteXLSX(w, cmp) }); err != nil {
			return err
		}
		fmt.Fprintf(c.out, "\nWrote %s\n", *xlsxPath)
	}
	return nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (c *cli) ingest(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("ingest", flag.ContinueOnError)
	file := fs.String("file", "", "Read the email from this file instead of stdin")
	rfqID, rest, err := rfqArg(fs, args)
	if err != nil {
		return err
	}
	if err := fs.Parse(rest); err != nil {
		return err
	}

	var raw []byte
	if *file != "" {
		raw, err = os.ReadFile(*file)
	} else {
		raw, err = io.ReadAll(c.in)
	}
	if err != nil {
		return err
	}

	v, err := c.comparisonView(ctx, rfqID)
	if v == nil {
		return err
	}
	v.OpenEmailDialog()
	q, err := v.SubmitEmail(ctx, string(raw))
	if err != nil {
		return err
	}
	fmt.Fprintf(c.out, "Recorded quote %s from %s\n\n", q.ID, q.Supplier.CompanyName)
	return v.Render(c.out)
}

func (c *cli) clarify(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("clarify: RFQ ID and quote ID are required")
	}
	v, err := c.comparisonView(ctx, args[0])
	if v == nil {
		return err
	}
	_, clarifyErr := v.RequestClarification(ctx, args[1])
	if views.IsPrecondition(clarifyErr) && !v.ClarificationOpen {
		return clarifyErr
	}
	if err := v.Render(c.out); err != nil {
		return err
	}
	return clarifyErr
}

// watch renders the comparison and re-fetches it whenever the backend
// announces a quote change for the RFQ.
func (c *cli) watch(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errors.New("watch: RFQ ID is required")
	}
	rfqID := args[0]
	v, err := c.comparisonView(ctx, rfqID)
	if v == nil {
		return err
	}
	if err := v.Render(c.out); err != nil {
		return err
	}

	err = websocket.Listen(ctx, websocket.URLFor(c.cfg.Client.BaseURL), func(evt websocket.Event) {
		if !strings.HasPrefix(evt.Type, "quote_") || evt.RFQID != rfqID {
			return
		}
		slog.Debug("quote change", "type", evt.Type, "quote_id", evt.ID)
		_ = v.Load(ctx)
		fmt.Fprintf(c.out, "\n[%s %s]\n", evt.Type, evt.ID)
		if err := v.Render(c.out); err != nil {
			slog.Warn("render failed", "error", err)
		}
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (c *cli) serve(ctx context.Context) error {
	store, err := devserver.Open(c.cfg.Server.DBPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", c.cfg.Server.DBPath, err)
	}
	defer store.Close()

	if c.cfg.Server.Seed {
		if err := store.Seed(ctx); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
		slog.Info("seeded sandbox data")
	}

	srv := devserver.New(store, websocket.NewHub())
	addr := fmt.Sprintf(":%d", c.cfg.Server.Port)
	return server.Run(ctx, addr, srv.Handler(c.cfg.Server.RateLimit))
}
