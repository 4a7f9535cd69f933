package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Edjery/budget-trackr/internal/backend"
	"github.com/Edjery/budget-trackr/internal/config"
	"github.com/Edjery/budget-trackr/internal/core"
	"github.com/Edjery/budget-trackr/internal/log"
)

func newMemoryApp(t *testing.T) *App {
	t.Helper()
	ctx := context.Background()
	cfg := &config.Config{
		StorageBackend:   "memory",
		SummaryCacheSize: 4,
		SummaryCacheTTL:  time.Minute,
	}
	be, err := backend.NewFactory(log.Discard()).CreateBackend(ctx, backend.Config{Type: backend.MemoryBackend})
	if err != nil {
		t.Fatal(err)
	}
	app, err := NewApp(ctx, cfg, log.Discard(), be)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestNewApp_EndToEnd(t *testing.T) {
	ctx := context.Background()
	app := newMemoryApp(t)

	f := core.FormValues{
		Year:         2024,
		Month:        3,
		DayRangeType: core.SingleDay,
		StartDay:     15,
		EndDay:       15,
		Items:        []core.TransactionItem{{Type: core.Earnings, Name: "Salary", Amount: "50000"}},
	}
	if _, err := app.Transactions.Add(ctx, f); err != nil {
		t.Fatal(err)
	}
	if got := app.Summary.Summary(2024, 3).ForMonth.Balance; got != 50000 {
		t.Errorf("balance = %v", got)
	}
	if err := app.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	if len(app.Transactions.List()) != 1 {
		t.Error("reload lost records")
	}

	var buf bytes.Buffer
	if err := app.WriteMetrics(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `budget_trackr_mutations_total{operation="add",outcome="ok"} 1`) {
		t.Errorf("metrics output:\n%s", buf.String())
	}
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: "json"})
	if logger.Component() != log.ComponentApp {
		t.Errorf("component = %s", logger.Component())
	}
	if !logger.Enabled(context.Background(), -4) {
		t.Error("debug level should be enabled")
	}
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "bogus")
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Error("expected validation error")
	}

	t.Setenv("STORAGE_BACKEND", "memory")
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.StorageBackend != "memory" {
		t.Errorf("StorageBackend = %s", cfg.StorageBackend)
	}
}

func TestApp_ReloadPurgesSummaries(t *testing.T) {
	ctx := context.Background()
	app := newMemoryApp(t)

	app.Summary.Summary(2024, 3)
	app.Summary.Summary(2024, 4)
	if got := app.Cache.Stats().Size; got != 2 {
		t.Fatalf("cached summaries = %d, want 2", got)
	}

	var buf bytes.Buffer
	if err := app.WriteMetrics(&buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "budget_trackr_summary_cache_entries 2") {
		t.Errorf("metrics output:\n%s", buf.String())
	}

	if err := app.Reload(ctx); err != nil {
		t.Fatal(err)
	}
	if got := app.Cache.Stats().Size; got != 0 {
		t.Errorf("cached summaries after reload = %d, want 0", got)
	}
}
