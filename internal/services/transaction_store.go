package services

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/Edjery/budget-trackr/internal/amqp"
	"github.com/Edjery/budget-trackr/internal/blob"
	"github.com/Edjery/budget-trackr/internal/core"
	"github.com/Edjery/budget-trackr/internal/log"
	"github.com/Edjery/budget-trackr/internal/metrics"
)

// TransactionStore owns the transaction list and mirrors it to the blob store.
//
// Mutations are applied to the in-memory view first and then written as a
// whole document. A failed write restores the snapshot taken before the
// mutation. Mutations are serialized; readers observe the tentative view while
// a write is in flight.
type TransactionStore struct {
	store    blob.Store
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *log.Logger
	newID    func() string

	writeMu sync.Mutex

	mu      sync.RWMutex
	txs     []core.Transaction
	version uint64
}

// NewTransactionStore creates the store and loads the persisted list
func NewTransactionStore(ctx context.Context, store blob.Store, opts Options) (*TransactionStore, error) {
	s := &TransactionStore{
		store:    store,
		notifier: opts.Notifier,
		metrics:  opts.Metrics,
		logger:   opts.logger(log.ComponentTransactions),
		newID:    uuid.NewString,
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload replaces the in-memory view with the persisted list. A missing key
// loads as empty; an undecodable document is logged and loads as empty.
func (s *TransactionStore) Reload(ctx context.Context) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	data, ok, err := s.store.Get(ctx, blob.KeyTransactions)
	if err != nil {
		return fmt.Errorf("load transactions: %w", err)
	}

	var txs []core.Transaction
	if ok && len(data) > 0 {
		if err := json.Unmarshal(data, &txs); err != nil {
			s.logger.WarnContext(ctx, "Stored transactions are unreadable, starting empty",
				log.FieldOperation, log.OpLoad,
				log.FieldError, err)
			txs = nil
		}
	}

	s.mu.Lock()
	s.txs = txs
	s.version++
	s.mu.Unlock()

	s.metrics.SetTransactions(len(txs))
	s.logger.DebugContext(ctx, "Transactions loaded", log.FieldCount, len(txs))
	return nil
}

// List returns a copy of the current view. Order is insertion order; callers
// sort as they need.
func (s *TransactionStore) List() []core.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.txs)
}

// Get returns the record with id
func (s *TransactionStore) Get(id string) (core.Transaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := indexOf(s.txs, id)
	if i < 0 {
		return core.Transaction{}, false
	}
	return s.txs[i], true
}

// Version changes whenever the view changes, including rollbacks and reloads
func (s *TransactionStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Add expands f into one record per (day, item) pair, appends them and
// persists the list. It returns the first created record.
func (s *TransactionStore) Add(ctx context.Context, f core.FormValues) (core.Transaction, error) {
	f = f.Normalize()
	if err := f.ValidateExpandable(); err != nil {
		return core.Transaction{}, err
	}

	var created []core.Transaction
	_, err := s.mutate(ctx, log.OpAdd, func(txs []core.Transaction) ([]core.Transaction, bool) {
		created = core.Expand(f, txs, s.newID)
		return append(txs, created...), len(created) > 0
	})
	if err != nil {
		return core.Transaction{}, err
	}
	if len(created) == 0 {
		return core.Transaction{}, core.ErrNoItems
	}

	ids := make([]string, len(created))
	for i, tx := range created {
		ids[i] = tx.ID
	}
	s.logger.InfoContext(ctx, "Transactions added",
		log.FieldOperation, log.OpAdd,
		log.FieldCount, len(created),
		log.FieldDate, created[0].Date)
	notify(ctx, s.notifier, s.logger, amqp.NewChangeEvent(amqp.EntityTransactions, log.OpAdd, ids...))

	return created[0], nil
}

// Update maps the first item of f onto the record id and re-derives its date
// from (Year, Month, StartDay). Empty item fields keep the stored values. A nil
// SortOrder keeps the stored order, or appends the record to the end of its
// new date group when the date changes. found is false when id does not exist,
// in which case nothing is written.
func (s *TransactionStore) Update(ctx context.Context, id string, f core.FormValues) (tx core.Transaction, found bool, err error) {
	f = f.Normalize()
	if err := f.ValidateRange(); err != nil {
		return core.Transaction{}, false, err
	}
	var item core.TransactionItem
	if len(f.Items) > 0 {
		item = f.Items[0]
		if err := validatePatchItem(item); err != nil {
			return core.Transaction{}, false, err
		}
	}

	found, err = s.mutate(ctx, log.OpUpdate, func(txs []core.Transaction) ([]core.Transaction, bool) {
		i := indexOf(txs, id)
		if i < 0 {
			return txs, false
		}
		tx = applyItem(txs[i], item)
		date := core.DateKey(f.Year, f.Month, f.StartDay)
		if date != tx.Date && item.SortOrder == nil {
			tx.SortOrder = nextSortOrder(txs, date)
		}
		tx.Date = date
		tx.Month = f.Month
		tx.Year = f.Year
		txs[i] = tx
		return txs, true
	})
	if err != nil || !found {
		return core.Transaction{}, found, err
	}

	s.logger.InfoContext(ctx, "Transaction updated",
		log.NewFields().WithOperation(log.OpUpdate).WithTransaction(id, tx.Date).ToSlice()...)
	notify(ctx, s.notifier, s.logger, amqp.NewChangeEvent(amqp.EntityTransactions, log.OpUpdate, id))
	return tx, true, nil
}

// UpdateSortOrder sets the manual order of one record. It reports whether the
// record exists.
func (s *TransactionStore) UpdateSortOrder(ctx context.Context, id string, order int) (bool, error) {
	found, err := s.mutate(ctx, log.OpUpdate, func(txs []core.Transaction) ([]core.Transaction, bool) {
		i := indexOf(txs, id)
		if i < 0 {
			return txs, false
		}
		txs[i].SortOrder = order
		return txs, true
	})
	if err != nil || !found {
		return found, err
	}
	notify(ctx, s.notifier, s.logger, amqp.NewChangeEvent(amqp.EntityTransactions, log.OpMove, id))
	return true, nil
}

// Delete removes the record id. It returns false, without writing, when no
// such record exists.
func (s *TransactionStore) Delete(ctx context.Context, id string) (bool, error) {
	var removed core.Transaction
	found, err := s.mutate(ctx, log.OpDelete, func(txs []core.Transaction) ([]core.Transaction, bool) {
		i := indexOf(txs, id)
		if i < 0 {
			return txs, false
		}
		removed = txs[i]
		return slices.Delete(txs, i, i+1), true
	})
	if err != nil || !found {
		return found, err
	}

	s.logger.InfoContext(ctx, "Transaction deleted",
		log.NewFields().WithOperation(log.OpDelete).WithTransaction(id, removed.Date).ToSlice()...)
	notify(ctx, s.notifier, s.logger, amqp.NewChangeEvent(amqp.EntityTransactions, log.OpDelete, id))
	return true, nil
}

// mutate runs apply on a copy of the list under the write lock. When apply
// reports a change the copy becomes the view, the list is persisted, and the
// previous view is restored if the write fails.
func (s *TransactionStore) mutate(ctx context.Context, op string, apply func([]core.Transaction) ([]core.Transaction, bool)) (bool, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	snapshot := s.txs
	next, changed := apply(slices.Clone(snapshot))
	if !changed {
		s.mu.Unlock()
		s.metrics.Mutation(op, metrics.OutcomeNoop)
		return false, nil
	}
	s.txs = next
	s.version++
	s.mu.Unlock()

	if err := s.persist(ctx, next); err != nil {
		s.mu.Lock()
		s.txs = snapshot
		s.version++
		s.mu.Unlock()

		s.metrics.Rollback(op)
		s.metrics.Mutation(op, metrics.OutcomeFailed)
		s.logger.WarnContext(ctx, "Rolled back transactions after failed write",
			log.FieldOperation, log.OpRollback,
			"mutation", op,
			log.FieldCount, len(snapshot))
		return false, err
	}

	s.metrics.Mutation(op, metrics.OutcomeOK)
	s.metrics.SetTransactions(len(next))
	return true, nil
}

func (s *TransactionStore) persist(ctx context.Context, txs []core.Transaction) error {
	if txs == nil {
		txs = []core.Transaction{}
	}
	data, err := json.Marshal(txs)
	if err != nil {
		return fmt.Errorf("%w: encode transactions: %w", ErrPersist, err)
	}
	if err := s.store.Set(ctx, blob.KeyTransactions, data); err != nil {
		s.metrics.PersistError(blob.KeyTransactions)
		fields := log.NewFields().WithOperation(log.OpPersist).WithError(err)
		fields[log.FieldKey] = blob.KeyTransactions
		s.logger.ErrorContext(ctx, "Failed to persist transactions", fields.ToSlice()...)
		return fmt.Errorf("%w: write %s: %w", ErrPersist, blob.KeyTransactions, err)
	}
	return nil
}

func applyItem(tx core.Transaction, item core.TransactionItem) core.Transaction {
	if item.Type != "" {
		tx.Type = item.Type
	}
	if item.Name != "" {
		tx.Name = item.Name
	}
	if item.Amount != "" {
		tx.Amount = item.Amount
	}
	if item.SortOrder != nil {
		tx.SortOrder = *item.SortOrder
	}
	return tx
}

func validatePatchItem(item core.TransactionItem) error {
	var errs core.ValidationErrors
	if item.Type != "" && !item.Type.IsValid() {
		errs = append(errs, core.FieldError{Field: "items[0].type", Err: core.ErrInvalidType})
	}
	if item.Amount != "" {
		if _, err := core.ParseAmount(item.Amount); err != nil {
			errs = append(errs, core.FieldError{Field: "items[0].amount", Err: err})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// nextSortOrder is one past the highest order used on date, or 0
func nextSortOrder(txs []core.Transaction, date string) int {
	next := 0
	for _, tx := range txs {
		if tx.Date == date && tx.SortOrder >= next {
			next = tx.SortOrder + 1
		}
	}
	return next
}

func indexOf(txs []core.Transaction, id string) int {
	return slices.IndexFunc(txs, func(tx core.Transaction) bool { return tx.ID == id })
}
