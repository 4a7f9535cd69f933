package services

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Edjery/budget-trackr/internal/blob"
	"github.com/Edjery/budget-trackr/internal/core"
)

func groupIDs(group []core.Transaction) []string {
	ids := make([]string, len(group))
	for i, tx := range group {
		ids[i] = tx.ID
	}
	return ids
}

func assertContiguous(t *testing.T, group []core.Transaction) {
	t.Helper()
	for i, tx := range group {
		if tx.SortOrder != i {
			t.Fatalf("sortOrder of %s = %d, want %d", tx.ID, tx.SortOrder, i)
		}
	}
}

func newOrderFixture(t *testing.T, store *flakyStore) (*TransactionStore, *OrderService) {
	t.Helper()
	s := newTestStore(t, store, testOptions())
	items := []core.TransactionItem{spend("A", "1"), spend("B", "2"), spend("C", "3"), spend("D", "4")}
	if _, err := s.Add(context.Background(), singleDay(15, items...)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Add(context.Background(), singleDay(16, spend("Other", "9"))); err != nil {
		t.Fatal(err)
	}
	return s, NewOrderService(s, testOptions())
}

func TestOrderService_Move(t *testing.T) {
	tests := []struct {
		name        string
		active      string
		over        string
		want        []string
		wantChanged int
	}{
		{"down", "tx-1", "tx-3", []string{"tx-2", "tx-3", "tx-1", "tx-4"}, 3},
		{"up", "tx-4", "tx-2", []string{"tx-1", "tx-4", "tx-2", "tx-3"}, 3},
		{"adjacent", "tx-2", "tx-3", []string{"tx-1", "tx-3", "tx-2", "tx-4"}, 2},
		{"same element", "tx-2", "tx-2", []string{"tx-1", "tx-2", "tx-3", "tx-4"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			_, svc := newOrderFixture(t, newFlakyStore())

			changed, err := svc.Move(ctx, "2024-03-15", tt.active, tt.over)
			if err != nil {
				t.Fatalf("Move() error = %v", err)
			}
			if changed != tt.wantChanged {
				t.Errorf("changed = %d, want %d", changed, tt.wantChanged)
			}
			group := svc.Group("2024-03-15")
			if got := groupIDs(group); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
			assertContiguous(t, group)
		})
	}
}

func TestOrderService_MoveInverseRestores(t *testing.T) {
	ctx := context.Background()
	_, svc := newOrderFixture(t, newFlakyStore())
	original := groupIDs(svc.Group("2024-03-15"))

	// tx-1 goes from index 0 to index 2
	if _, err := svc.Move(ctx, "2024-03-15", "tx-1", "tx-3"); err != nil {
		t.Fatal(err)
	}
	// the element now at index 0 marks where tx-1 came from
	back := svc.Group("2024-03-15")[0].ID
	if _, err := svc.Move(ctx, "2024-03-15", "tx-1", back); err != nil {
		t.Fatal(err)
	}

	group := svc.Group("2024-03-15")
	if got := groupIDs(group); !reflect.DeepEqual(got, original) {
		t.Errorf("order = %v, want %v", got, original)
	}
	assertContiguous(t, group)
}

func TestOrderService_MoveNoops(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	_, svc := newOrderFixture(t, store)
	writes := 0
	store.onSet = func(string) { writes++ }

	for _, ids := range [][2]string{{"missing", "tx-1"}, {"tx-1", "missing"}} {
		changed, err := svc.Move(ctx, "2024-03-15", ids[0], ids[1])
		if err != nil || changed != 0 {
			t.Errorf("Move(%v) = %d, %v", ids, changed, err)
		}
	}
	if writes != 0 {
		t.Errorf("writes = %d, want 0", writes)
	}
}

func TestOrderService_SingleElementGroup(t *testing.T) {
	ctx := context.Background()
	_, svc := newOrderFixture(t, newFlakyStore())

	changed, err := svc.Move(ctx, "2024-03-16", "tx-5", "tx-5")
	if err != nil || changed != 0 {
		t.Fatalf("Move() = %d, %v", changed, err)
	}
}

func TestOrderService_RejectsCrossGroup(t *testing.T) {
	ctx := context.Background()
	s, svc := newOrderFixture(t, newFlakyStore())
	before := s.List()

	tests := []struct {
		name, date, active, over string
	}{
		{"ids in different groups", "2024-03-15", "tx-1", "tx-5"},
		{"both ids outside the date", "2024-03-16", "tx-1", "tx-2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Move(ctx, tt.date, tt.active, tt.over)
			if !errors.Is(err, ErrCrossGroupMove) {
				t.Fatalf("Move() error = %v, want ErrCrossGroupMove", err)
			}
		})
	}
	if !reflect.DeepEqual(s.List(), before) {
		t.Error("rejected move changed the list")
	}
}

func TestOrderService_MoveWriteFailure(t *testing.T) {
	ctx := context.Background()
	store := newFlakyStore()
	s, svc := newOrderFixture(t, store)
	before := s.List()

	store.failOn(blob.KeyTransactions, true)
	_, err := svc.Move(ctx, "2024-03-15", "tx-1", "tx-4")
	if !errors.Is(err, ErrPersist) {
		t.Fatalf("Move() error = %v, want ErrPersist", err)
	}
	if !reflect.DeepEqual(s.List(), before) {
		t.Errorf("list after failed move = %+v, want %+v", s.List(), before)
	}
}
