package services

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/Edjery/budget-trackr/internal/core"
	"github.com/Edjery/budget-trackr/internal/log"
)

// OrderService maintains the manual order of records sharing a date.
type OrderService struct {
	store  *TransactionStore
	logger *log.Logger
}

func NewOrderService(store *TransactionStore, opts Options) *OrderService {
	return &OrderService{
		store:  store,
		logger: opts.logger(log.ComponentOrdering),
	}
}

// Group returns the records of date ordered by sortOrder
func (s *OrderService) Group(date string) []core.Transaction {
	return core.SortByOrder(core.FilterByDate(s.store.List(), date))
}

// Move places activeID at overID's position within the date group and
// renumbers the group 0..n-1. Only records whose order changed are written,
// each as its own update. The view is reloaded once every write has settled.
//
// Unknown ids make Move a no-op. Ids that exist outside date, or in two
// different groups, return ErrCrossGroupMove.
func (s *OrderService) Move(ctx context.Context, date, activeID, overID string) (changed int, err error) {
	active, okA := s.store.Get(activeID)
	over, okB := s.store.Get(overID)
	if !okA || !okB {
		return 0, nil
	}
	if active.Date != date || over.Date != date {
		s.logger.WarnContext(ctx, "Rejected move across date groups",
			log.FieldOperation, log.OpMove,
			log.FieldDate, date,
			log.FieldActiveID, activeID,
			log.FieldOverID, overID)
		return 0, fmt.Errorf("move %s over %s: %w", activeID, overID, ErrCrossGroupMove)
	}
	if activeID == overID {
		return 0, nil
	}

	group := s.Group(date)
	from := slices.IndexFunc(group, func(tx core.Transaction) bool { return tx.ID == activeID })
	to := slices.IndexFunc(group, func(tx core.Transaction) bool { return tx.ID == overID })
	if from < 0 || to < 0 {
		return 0, nil
	}

	reordered := arrayMove(group, from, to)

	var g errgroup.Group
	for i, tx := range reordered {
		if tx.SortOrder == i {
			continue
		}
		changed++
		g.Go(func() error {
			_, err := s.store.UpdateSortOrder(ctx, tx.ID, i)
			return err
		})
	}
	writeErr := g.Wait()
	reloadErr := s.store.Reload(ctx)

	if err := errors.Join(writeErr, reloadErr); err != nil {
		s.logger.ErrorContext(ctx, "Reorder failed",
			log.FieldOperation, log.OpMove,
			log.FieldDate, date,
			log.FieldError, err)
		return changed, fmt.Errorf("move %s over %s: %w", activeID, overID, err)
	}

	s.logger.InfoContext(ctx, "Group reordered",
		log.FieldOperation, log.OpMove,
		log.FieldDate, date,
		log.FieldActiveID, activeID,
		log.FieldOverID, overID,
		log.FieldChanged, changed)
	return changed, nil
}

// arrayMove returns a copy of s with the element at from reinserted at to
func arrayMove[T any](s []T, from, to int) []T {
	out := slices.Clone(s)
	item := out[from]
	out = slices.Delete(out, from, from+1)
	return slices.Insert(out, to, item)
}
