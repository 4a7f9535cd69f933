package core

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Totals is an earnings/spendings aggregate. Balance is always
// Earnings - Spendings.
type Totals struct {
	Earnings  float64 `json:"earnings"`
	Spendings float64 `json:"spendings"`
	Balance   float64 `json:"balance"`
}

// PeriodSummary holds the three independently computed totals shown on the
// summary cards.
type PeriodSummary struct {
	Year     int    `json:"year"`
	Month    int    `json:"month"`
	AllTime  Totals `json:"allTime"`
	ForMonth Totals `json:"forMonth"`
	ForYear  Totals `json:"forYear"`
}

// ComputeTotals sums amounts by type. Amounts that do not parse count as zero.
func ComputeTotals(txs []Transaction) Totals {
	return totalsWhere(txs, func(Transaction) bool { return true })
}

// MonthTotals restricts ComputeTotals to one (month, year).
func MonthTotals(txs []Transaction, month, year int) Totals {
	return totalsWhere(txs, func(tx Transaction) bool {
		return tx.Month == month && tx.Year == year
	})
}

// YearTotals restricts ComputeTotals to one year.
func YearTotals(txs []Transaction, year int) Totals {
	return totalsWhere(txs, func(tx Transaction) bool {
		return tx.Year == year
	})
}

// Summarize computes all-time, month and year totals, each from scratch.
func Summarize(txs []Transaction, month, year int) PeriodSummary {
	return PeriodSummary{
		Year:     year,
		Month:    month,
		AllTime:  ComputeTotals(txs),
		ForMonth: MonthTotals(txs, month, year),
		ForYear:  YearTotals(txs, year),
	}
}

func totalsWhere(txs []Transaction, keep func(Transaction) bool) Totals {
	earnings, spendings := decimal.Zero, decimal.Zero
	for _, tx := range txs {
		if !keep(tx) {
			continue
		}
		switch tx.Type {
		case Earnings:
			earnings = earnings.Add(AmountValue(tx.Amount))
		case Spendings:
			spendings = spendings.Add(AmountValue(tx.Amount))
		}
	}
	return Totals{
		Earnings:  earnings.InexactFloat64(),
		Spendings: spendings.InexactFloat64(),
		Balance:   earnings.Sub(spendings).InexactFloat64(),
	}
}

// DateNet is the net amount of one date group: earnings add, spendings
// subtract.
func DateNet(txs []Transaction) float64 {
	return ComputeTotals(txs).Balance
}

// GroupByDate buckets records by their literal date key. Records keep their
// relative input order inside a bucket.
func GroupByDate(txs []Transaction) map[string][]Transaction {
	groups := make(map[string][]Transaction)
	for _, tx := range txs {
		groups[tx.Date] = append(groups[tx.Date], tx)
	}
	return groups
}

// SortedDates returns the group keys newest first.
func SortedDates(groups map[string][]Transaction) []string {
	dates := make([]string, 0, len(groups))
	for d := range groups {
		dates = append(dates, d)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// SortByOrder returns a copy ordered by SortOrder; ties keep input order.
func SortByOrder(txs []Transaction) []Transaction {
	out := append([]Transaction(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SortOrder < out[j].SortOrder
	})
	return out
}

// FilterByDate keeps the records whose date key equals date. An empty date
// means no filter.
func FilterByDate(txs []Transaction, date string) []Transaction {
	if date == "" {
		return txs
	}
	var out []Transaction
	for _, tx := range txs {
		if tx.Date == date {
			out = append(out, tx)
		}
	}
	return out
}

// Page describes the visible window of an incrementally loaded list.
type Page[T any] struct {
	Items      []T  `json:"items"`
	Current    int  `json:"current"`
	TotalPages int  `json:"totalPages"`
	HasMore    bool `json:"hasMore"`
}

// Paginate implements "load more" paging: the first page shows perPage items
// and every later page adds perPage+1, since the first page reserves a slot
// for the add card.
func Paginate[T any](items []T, perPage, page int) Page[T] {
	if perPage < 1 {
		perPage = 1
	}
	if page < 1 {
		page = 1
	}

	totalPages := 1
	if rest := len(items) - perPage; rest > 0 {
		totalPages += (rest + perPage) / (perPage + 1)
	}
	if page > totalPages {
		page = totalPages
	}

	visible := perPage + (page-1)*(perPage+1)
	if visible > len(items) {
		visible = len(items)
	}
	return Page[T]{
		Items:      items[:visible],
		Current:    page,
		TotalPages: totalPages,
		HasMore:    page < totalPages,
	}
}
