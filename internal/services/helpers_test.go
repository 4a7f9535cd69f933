package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Edjery/budget-trackr/internal/amqp"
	"github.com/Edjery/budget-trackr/internal/blob/memory"
	"github.com/Edjery/budget-trackr/internal/core"
	"github.com/Edjery/budget-trackr/internal/log"
)

var errDiskFull = errors.New("quota exceeded")

// flakyStore wraps the memory store and fails writes on demand.
type flakyStore struct {
	*memory.Store

	mu       sync.Mutex
	failKeys map[string]bool
	onSet    func(key string)
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Store: memory.New(), failKeys: map[string]bool{}}
}

func (f *flakyStore) failOn(key string, fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failKeys[key] = fail
}

func (f *flakyStore) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	fail := f.failKeys[key]
	hook := f.onSet
	f.mu.Unlock()

	if hook != nil {
		hook(key)
	}
	if fail {
		return errDiskFull
	}
	return f.Store.Set(ctx, key, value)
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []amqp.ChangeEvent
	err    error
}

func (n *recordingNotifier) PublishChange(_ context.Context, e amqp.ChangeEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, e)
	return n.err
}

func (n *recordingNotifier) Events() []amqp.ChangeEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]amqp.ChangeEvent(nil), n.events...)
}

func testOptions() Options {
	return Options{Logger: log.Discard()}
}

func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("tx-%d", n)
	}
}

func newTestStore(t *testing.T, store *flakyStore, opts Options) *TransactionStore {
	t.Helper()
	s, err := NewTransactionStore(context.Background(), store, opts)
	if err != nil {
		t.Fatalf("NewTransactionStore() error = %v", err)
	}
	s.newID = seqIDs()
	return s
}

func singleDay(day int, items ...core.TransactionItem) core.FormValues {
	return core.FormValues{
		Year:         2024,
		Month:        3,
		DayRangeType: core.SingleDay,
		StartDay:     day,
		EndDay:       day,
		Items:        items,
	}
}

func spend(name, amount string) core.TransactionItem {
	return core.TransactionItem{Type: core.Spendings, Name: name, Amount: amount}
}

func earn(name, amount string) core.TransactionItem {
	return core.TransactionItem{Type: core.Earnings, Name: name, Amount: amount}
}
