package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/Edjery/budget-trackr/internal/backend"
	"github.com/Edjery/budget-trackr/internal/cache"
	"github.com/Edjery/budget-trackr/internal/config"
	"github.com/Edjery/budget-trackr/internal/core"
	"github.com/Edjery/budget-trackr/internal/log"
	"github.com/Edjery/budget-trackr/internal/metrics"
	"github.com/Edjery/budget-trackr/internal/services"
)

// App wires the services over one backend. It is built once per process and
// passed to the commands.
type App struct {
	Config       *config.Config
	Logger       *log.Logger
	Backend      *backend.BackendResult
	Registry     *prometheus.Registry
	Metrics      *metrics.Metrics
	Cache        *cache.LRUCache[core.PeriodSummary]
	Transactions *services.TransactionStore
	Order        *services.OrderService
	Settings     *services.SettingsStore
	Summary      *services.Summarizer
	Backup       *services.BackupService
}

// NewApp loads both stores from the backend. The App owns the backend and
// releases it on Close.
func NewApp(ctx context.Context, cfg *config.Config, logger *log.Logger, be *backend.BackendResult) (*App, error) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	opts := services.Options{
		Notifier: be.Notifier(),
		Metrics:  m,
		Logger:   logger,
	}

	txs, err := services.NewTransactionStore(ctx, be.Store, opts)
	if err != nil {
		return nil, err
	}
	settings, err := services.NewSettingsStore(ctx, be.Store, opts)
	if err != nil {
		return nil, err
	}

	summaryCache := cache.NewLRUCache[core.PeriodSummary](cfg.SummaryCacheSize, cfg.SummaryCacheTTL)

	return &App{
		Config:       cfg,
		Logger:       logger,
		Backend:      be,
		Registry:     reg,
		Metrics:      m,
		Cache:        summaryCache,
		Transactions: txs,
		Order:        services.NewOrderService(txs, opts),
		Settings:     settings,
		Summary:      services.NewSummarizer(txs, summaryCache, opts),
		Backup:       services.NewBackupService(be.Store, txs, settings, opts),
	}, nil
}

// Reload re-reads both persisted documents and drops memoized summaries
func (a *App) Reload(ctx context.Context) error {
	_, settingsErr := a.Settings.Load(ctx)
	err := errors.Join(settingsErr, a.Transactions.Reload(ctx))
	a.Cache.Purge()
	return err
}

// WriteMetrics writes the collected metrics in the Prometheus text format
func (a *App) WriteMetrics(w io.Writer) error {
	a.Metrics.SetSummaryCache(a.Cache.Stats().Size)
	families, err := a.Registry.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return nil
}

// Close releases the backend
func (a *App) Close() error {
	if a.Backend == nil {
		return nil
	}
	return a.Backend.Close()
}
