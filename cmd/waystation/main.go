package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"waystation/internal/config"
	"waystation/internal/logger"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage: waystation [flags] <command> [args]

Commands:
  rfqs                       list RFQs
  create-rfq -item NAME ...  create an RFQ
  quotes                     list all quotes with a per-RFQ summary
  suppliers                  list suppliers
  compare RFQ_ID             compare an RFQ's quotes (-csv/-xlsx to export)
  ingest RFQ_ID [-file F]    submit a supplier email (stdin by default)
  clarify RFQ_ID QUOTE_ID    draft a clarification email for a quote
  watch RFQ_ID               re-render the comparison as quotes change
  serve                      run the sandbox backend

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	configPath := flag.String("config", "waystation.yaml", "Path to YAML config file")
	baseURL := flag.String("base-url", "", "Backend base URL (overrides config)")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.Client.BaseURL = *baseURL
	}
	logger.Init(cfg.Log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli{cfg: cfg, out: os.Stdout, in: os.Stdin}
	if err := app.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
