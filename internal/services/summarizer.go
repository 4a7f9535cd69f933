package services

import (
	"fmt"
	"time"

	"github.com/Edjery/budget-trackr/internal/cache"
	"github.com/Edjery/budget-trackr/internal/core"
	"github.com/Edjery/budget-trackr/internal/log"
	"github.com/Edjery/budget-trackr/internal/metrics"
)

// DateGroup is one date of the transaction list with its records in manual order
type DateGroup struct {
	Date         string             `json:"date"`
	Net          float64            `json:"net"`
	Transactions []core.Transaction `json:"transactions"`
}

// Summarizer derives read-only views from the transaction store. Period
// summaries are memoized per store version, so any change to the list,
// including a rollback, makes earlier entries unreachable.
type Summarizer struct {
	store   *TransactionStore
	cache   cache.Cache[core.PeriodSummary]
	metrics *metrics.Metrics
	logger  *log.Logger
	now     func() time.Time
}

// NewSummarizer creates a summarizer; a nil cache disables memoization
func NewSummarizer(store *TransactionStore, c cache.Cache[core.PeriodSummary], opts Options) *Summarizer {
	return &Summarizer{
		store:   store,
		cache:   c,
		metrics: opts.Metrics,
		logger:  opts.logger(log.ComponentSummary),
		now:     time.Now,
	}
}

// Summary returns all-time, month and year totals for (year, month)
func (s *Summarizer) Summary(year, month int) core.PeriodSummary {
	version := s.store.Version()
	key := fmt.Sprintf("%d:%04d-%02d", version, year, month)

	if s.cache != nil {
		if sum, ok := s.cache.Get(key); ok {
			s.metrics.SummaryLookup(true)
			return sum
		}
		s.metrics.SummaryLookup(false)
	}

	sum := core.Summarize(s.store.List(), month, year)
	if s.cache != nil {
		s.cache.Set(key, sum)
	}
	s.logger.Debug("Summary computed",
		log.FieldYear, year,
		log.FieldMonth, month,
		"version", version)
	return sum
}

// Current returns the summary for today's month and year
func (s *Summarizer) Current() core.PeriodSummary {
	year, month, _ := core.CurrentDateValues(s.now())
	return s.Summary(year, month)
}

// Groups returns the date groups newest first, optionally restricted to one date key
func (s *Summarizer) Groups(date string) []DateGroup {
	groups := core.GroupByDate(core.FilterByDate(s.store.List(), date))
	dates := core.SortedDates(groups)

	out := make([]DateGroup, 0, len(dates))
	for _, d := range dates {
		txs := core.SortByOrder(groups[d])
		out = append(out, DateGroup{
			Date:         d,
			Net:          core.DateNet(txs),
			Transactions: txs,
		})
	}
	return out
}

// Page returns the visible date groups for "load more" paging
func (s *Summarizer) Page(date string, perPage, page int) core.Page[DateGroup] {
	return core.Paginate(s.Groups(date), perPage, page)
}
