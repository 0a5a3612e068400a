package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mmynk/splitwiser-import/internal/calculator"
	"github.com/mmynk/splitwiser-import/internal/category"
	"github.com/mmynk/splitwiser-import/internal/config"
	"github.com/mmynk/splitwiser-import/internal/metrics"
	"github.com/mmynk/splitwiser-import/internal/service"
	"github.com/mmynk/splitwiser-import/pkg/money"
)

func runImport(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	file := fs.String("file", "", "Ledger export CSV (required)")
	group := fs.String("group", cfg.GroupName, "Group display name")
	currency := fs.String("currency", cfg.Currency, "ISO-4217 currency code of the group")
	categories := fs.String("categories", cfg.CategoriesPath, "label,category translation CSV (default: built-in French table)")
	metricsFile := fs.String("metrics-file", cfg.MetricsFile, "Write import metrics to this file")
	dryRun := fs.Bool("dry-run", false, "Build the ledger without writing it")
	dbPath := dbFlag(fs, cfg)
	fs.Parse(args)

	if *file == "" {
		fs.Usage()
		return errors.New("-file is required")
	}

	cfg.GroupName = *group
	cfg.Currency = *currency
	if err := cfg.Validate(); err != nil {
		return err
	}

	translations, err := category.LoadTranslationsFile(*categories)
	if err != nil {
		return err
	}

	store, err := openStore(*dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	src, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("failed to open ledger export: %w", err)
	}
	defer src.Close()

	m := metrics.NewImportMetrics()
	if *metricsFile != "" {
		defer func() {
			if werr := m.WriteTextfile(*metricsFile); werr != nil {
				slog.Warn("Metrics not written", "path", *metricsFile, "error", werr)
			}
		}()
	}

	resolver := category.NewResolver(translations)
	slog.Debug("Category translations loaded", "labels", resolver.Len())

	svc := service.NewImportService(store, resolver, service.WithMetrics(m))
	req := service.ImportRequest{
		GroupName: cfg.GroupName,
		Currency:  cfg.Currency,
		Source:    src,
	}

	var result *service.ImportResult
	if *dryRun {
		result, err = svc.Plan(context.Background(), req)
	} else {
		result, err = svc.Import(context.Background(), req)
	}
	if err != nil {
		return err
	}

	return printImportSummary(os.Stdout, result)
}

func printImportSummary(w io.Writer, result *service.ImportResult) error {
	l := result.Ledger

	status := "imported"
	if !result.Persisted {
		status = "dry run, nothing written"
	}
	fmt.Fprintf(w, "Group %q (%s): %s\n", l.Group.Name, l.Group.ID, status)
	fmt.Fprintf(w, "  participants: %d\n", len(l.Participants))
	fmt.Fprintf(w, "  expenses:     %d (%d with explicit shares)\n", len(l.Expenses), result.ByAmount)
	fmt.Fprintf(w, "  allocations:  %d\n", len(l.Allocations))
	fmt.Fprintf(w, "  skipped rows: %d\n", len(result.Skipped))
	for _, row := range result.Skipped {
		fmt.Fprintf(w, "    line %d: %s\n", row.Line, row.Description)
	}

	members, debts, err := calculator.CalculateLedgerBalances(l)
	if err != nil {
		return err
	}
	printBalances(w, l.Group.Currency, members, debts, l.ParticipantByID)
	return nil
}

func printBalances(w io.Writer, currency string, members []calculator.MemberBalance, debts []calculator.DebtEdge, lookup participantLookup) {
	fmt.Fprintln(w, "\nBalances:")
	for _, m := range members {
		fmt.Fprintf(w, "  %-20s %12s\n", m.Name, money.Format(m.NetBalance, currency))
	}

	if len(debts) == 0 {
		return
	}
	fmt.Fprintln(w, "\nTo settle up:")
	for _, d := range debts {
		fmt.Fprintf(w, "  %s pays %s %s\n", participantName(lookup, d.From), participantName(lookup, d.To), money.Format(d.Amount, currency))
	}
}
