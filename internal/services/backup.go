package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/Edjery/budget-trackr/internal/amqp"
	"github.com/Edjery/budget-trackr/internal/blob"
	"github.com/Edjery/budget-trackr/internal/core"
	"github.com/Edjery/budget-trackr/internal/log"
	"github.com/Edjery/budget-trackr/internal/metrics"
)

const backupFilePrefix = "budget-trackr-backup-"

// Backup is the bulk export document
type Backup struct {
	Settings     UserSettings       `json:"settings"`
	Transactions []core.Transaction `json:"transactions"`
}

// BackupFilename names an export taken at t, in UTC
func BackupFilename(t time.Time) string {
	return backupFilePrefix + t.UTC().Format("2006-01-02_15-04-05") + ".json"
}

// BackupService exports and imports both persisted documents at once.
type BackupService struct {
	store    blob.Store
	txs      *TransactionStore
	settings *SettingsStore
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *log.Logger
	now      func() time.Time
}

func NewBackupService(store blob.Store, txs *TransactionStore, settings *SettingsStore, opts Options) *BackupService {
	return &BackupService{
		store:    store,
		txs:      txs,
		settings: settings,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		logger:   opts.logger(log.ComponentBackup),
		now:      time.Now,
	}
}

// Export snapshots the current settings and transactions
func (s *BackupService) Export() Backup {
	txs := s.txs.List()
	if txs == nil {
		txs = []core.Transaction{}
	}
	return Backup{
		Settings:     s.settings.Current(),
		Transactions: txs,
	}
}

// WriteTo writes the export as indented JSON
func (s *BackupService) WriteTo(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(s.Export()); err != nil {
		return fmt.Errorf("encode backup: %w", err)
	}
	return nil
}

// ExportFile writes the export into dir and returns the file path
func (s *BackupService) ExportFile(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}

	var buf bytes.Buffer
	if err := s.WriteTo(&buf); err != nil {
		return "", err
	}

	path := filepath.Join(dir, BackupFilename(s.now()))
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("write backup: %w", err)
	}

	s.logger.InfoContext(ctx, "Backup exported",
		log.FieldOperation, log.OpExport,
		log.FieldPath, path)
	return path, nil
}

// Import replaces both persisted documents with the backup read from r and
// reloads the stores. Nothing is written unless the whole backup parses. If
// the second write fails the first is reverted.
func (s *BackupService) Import(ctx context.Context, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read backup: %w", err)
	}

	backup, err := ParseBackup(data)
	if err != nil {
		s.metrics.Mutation(log.OpImport, metrics.OutcomeFailed)
		s.logger.WarnContext(ctx, "Rejected backup",
			log.FieldOperation, log.OpImport,
			log.FieldError, err)
		return err
	}

	settingsData, err := json.Marshal(backup.Settings)
	if err != nil {
		return fmt.Errorf("%w: encode settings: %w", ErrPersist, err)
	}
	txData, err := json.Marshal(backup.Transactions)
	if err != nil {
		return fmt.Errorf("%w: encode transactions: %w", ErrPersist, err)
	}

	if err := s.replace(ctx, settingsData, txData); err != nil {
		s.metrics.Mutation(log.OpImport, metrics.OutcomeFailed)
		return err
	}

	var reloadErr error
	if _, err := s.settings.Load(ctx); err != nil {
		reloadErr = err
	}
	if err := s.txs.Reload(ctx); err != nil {
		reloadErr = errors.Join(reloadErr, err)
	}
	if reloadErr != nil {
		return fmt.Errorf("reload after import: %w", reloadErr)
	}

	s.metrics.Mutation(log.OpImport, metrics.OutcomeOK)
	s.logger.InfoContext(ctx, "Backup imported",
		log.FieldOperation, log.OpImport,
		log.FieldCount, len(backup.Transactions))
	notify(ctx, s.notifier, s.logger, amqp.NewChangeEvent(amqp.EntityBackup, log.OpImport))
	return nil
}

func (s *BackupService) replace(ctx context.Context, settingsData, txData []byte) error {
	prev, hadPrev, err := s.store.Get(ctx, blob.KeyUserSettings)
	if err != nil {
		return fmt.Errorf("read current settings: %w", err)
	}

	if err := s.store.Set(ctx, blob.KeyUserSettings, settingsData); err != nil {
		s.metrics.PersistError(blob.KeyUserSettings)
		return fmt.Errorf("%w: write %s: %w", ErrPersist, blob.KeyUserSettings, err)
	}

	if err := s.store.Set(ctx, blob.KeyTransactions, txData); err != nil {
		s.metrics.PersistError(blob.KeyTransactions)
		s.metrics.Rollback(log.OpImport)

		var restoreErr error
		if hadPrev {
			restoreErr = s.store.Set(ctx, blob.KeyUserSettings, prev)
		} else {
			restoreErr = s.store.Delete(ctx, blob.KeyUserSettings)
		}
		if restoreErr != nil {
			s.logger.ErrorContext(ctx, "Failed to restore settings after partial import",
				log.FieldOperation, log.OpRollback,
				log.FieldError, restoreErr)
		}
		return fmt.Errorf("%w: write %s: %w", ErrPersist, blob.KeyTransactions, err)
	}
	return nil
}

// ParseBackup decodes and validates a backup document. The transactions field
// may also be a JSON string holding the array, as older exports wrote it.
func ParseBackup(data []byte) (Backup, error) {
	var raw struct {
		Settings     json.RawMessage `json:"settings"`
		Transactions json.RawMessage `json:"transactions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Backup{}, fmt.Errorf("%w: %w", ErrInvalidBackup, err)
	}
	if isNull(raw.Settings) {
		return Backup{}, fmt.Errorf("%w: missing settings", ErrInvalidBackup)
	}
	if isNull(raw.Transactions) {
		return Backup{}, fmt.Errorf("%w: missing transactions", ErrInvalidBackup)
	}

	settings, err := decodeSettings(raw.Settings)
	if err != nil {
		return Backup{}, fmt.Errorf("%w: settings: %w", ErrInvalidBackup, err)
	}

	txRaw := bytes.TrimSpace(raw.Transactions)
	if txRaw[0] == '"' {
		var encoded string
		if err := json.Unmarshal(txRaw, &encoded); err != nil {
			return Backup{}, fmt.Errorf("%w: transactions: %w", ErrInvalidBackup, err)
		}
		txRaw = []byte(encoded)
	}

	var txs []core.Transaction
	if err := json.Unmarshal(txRaw, &txs); err != nil {
		return Backup{}, fmt.Errorf("%w: transactions: %w", ErrInvalidBackup, err)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	seen := make(map[string]struct{}, len(txs))
	for i, tx := range txs {
		if err := tx.Validate(); err != nil {
			return Backup{}, fmt.Errorf("%w: transactions[%d]: %w", ErrInvalidBackup, i, err)
		}
		if _, dup := seen[tx.ID]; dup {
			return Backup{}, fmt.Errorf("%w: transactions[%d]: duplicate id %q", ErrInvalidBackup, i, tx.ID)
		}
		seen[tx.ID] = struct{}{}
	}

	return Backup{Settings: settings, Transactions: txs}, nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}
