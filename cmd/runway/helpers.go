package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/runway/internal/cli"
	"github.com/Veraticus/runway/internal/common"
	"github.com/Veraticus/runway/internal/engine"
	"github.com/Veraticus/runway/internal/fx"
	"github.com/Veraticus/runway/internal/model"
	"github.com/Veraticus/runway/internal/storage"
)

// defaultReportDays is the length of the default report range.
const defaultReportDays = 30

// openStorage opens the configured database and brings its schema up to date.
func (a *app) openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(a.cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// newRates builds the exchange rate provider. Without an API key every quote
// comes from the fallback table.
func (a *app) newRates() *fx.Provider {
	var fetcher fx.Fetcher
	if a.cfg.HasRatesAPI() {
		fetcher = fx.NewHTTPFetcher(a.cfg.Rates)
	}
	return fx.NewProvider(fetcher, fx.NewCache(a.cfg.RatesTTL, nil))
}

// newEngine opens storage and wires the report engine. The returned close
// function releases the database.
func (a *app) newEngine(ctx context.Context) (*engine.Engine, func(), error) {
	store, err := a.openStorage(ctx)
	if err != nil {
		return nil, nil, err
	}
	return a.engineFor(store), func() { _ = store.Close() }, nil
}

func (a *app) engineFor(store *storage.SQLiteStorage) *engine.Engine {
	cfg := engine.DefaultConfig()
	cfg.BaseCurrency = a.cfg.BaseCurrency
	return engine.NewWithConfig(store, a.newRates(), cfg)
}

func addRangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "first day (YYYY-MM-DD, default: 30 days before --to)")
	cmd.Flags().String("to", "", "last day (YYYY-MM-DD, default: today)")
}

func addJSONFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "print JSON instead of a table")
}

// parseRange reads --from/--to relative to today.
func parseRange(cmd *cobra.Command, today time.Time) (time.Time, time.Time, error) {
	fromStr, _ := cmd.Flags().GetString("from")
	toStr, _ := cmd.Flags().GetString("to")

	end := today
	if toStr != "" {
		t, err := parseDay(toStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = t
	}

	start := end.AddDate(0, 0, -(defaultReportDays - 1))
	if fromStr != "" {
		t, err := parseDay(fromStr)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = t
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, common.NewUserError(
			fmt.Sprintf("--to %s is before --from %s", end.Format(model.DateFormat), start.Format(model.DateFormat)),
			common.ErrInvalidInput)
	}
	return start, end, nil
}

// parseDayFlag reads a date flag, defaulting to today.
func parseDayFlag(cmd *cobra.Command, name string, today time.Time) (time.Time, error) {
	s, _ := cmd.Flags().GetString(name)
	if s == "" {
		return today, nil
	}
	return parseDay(s)
}

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse(model.DateFormat, s)
	if err != nil {
		return time.Time{}, common.NewUserError(
			fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s), common.ErrInvalidInput)
	}
	return t, nil
}

func wantJSON(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printLines(w io.Writer, lines ...string) {
	for _, line := range lines {
		if line == "" {
			continue
		}
		fmt.Fprintln(w, line)
	}
}

func printFallbackNotice(w io.Writer, usingFallback bool) {
	printLines(w, cli.FallbackNotice(usingFallback))
}
