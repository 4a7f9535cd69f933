package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Earnings  TransactionType = "earnings"
	Spendings TransactionType = "spendings"

	SingleDay    DayRangeType = "single"
	MultipleDays DayRangeType = "multiple"
)

type (
	TransactionType string

	DayRangeType string

	// TransactionItem is one line of a submitted form. SortOrder is only set
	// when the caller wants to pin a position (reorder, edit).
	TransactionItem struct {
		ID        string          `json:"id"`
		Type      TransactionType `json:"type"`
		Name      string          `json:"name"`
		Amount    string          `json:"amount"`
		SortOrder *int            `json:"sortOrder,omitempty"`
	}

	// Transaction is the persisted unit. Date is fixed at creation from
	// (Year, Month, day) and is the grouping key for every date based view.
	Transaction struct {
		ID        string          `json:"id"`
		Type      TransactionType `json:"type"`
		Name      string          `json:"name"`
		Amount    string          `json:"amount"`
		SortOrder int             `json:"sortOrder"`
		Date      string          `json:"date"`
		Month     int             `json:"month"`
		Year      int             `json:"year"`
	}

	// FormValues is the transient multi-item, multi-day input aggregate.
	FormValues struct {
		Year         int               `json:"year"`
		Month        int               `json:"month"`
		DayRangeType DayRangeType      `json:"dayRangeType"`
		StartDay     int               `json:"startDay"`
		EndDay       int               `json:"endDay"`
		Items        []TransactionItem `json:"items"`
	}
)

var (
	ErrInvalidYear     = errors.New("invalid year")
	ErrInvalidMonth    = errors.New("invalid month")
	ErrInvalidDay      = errors.New("invalid day")
	ErrInvalidDayRange = errors.New("end day must be after or equal to start day")
	ErrInvalidRange    = errors.New("invalid day range type")
	ErrInvalidType     = errors.New("invalid transaction type")
	ErrEmptyName       = errors.New("empty name")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNoItems         = errors.New("at least one transaction item is required")
	ErrInvalidDate     = errors.New("invalid date")
)

func (t TransactionType) IsValid() bool {
	return t == Earnings || t == Spendings
}

func (d DayRangeType) IsValid() bool {
	return d == SingleDay || d == MultipleDays
}

// FieldError ties a validation failure to the form field that caused it.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e FieldError) Unwrap() error {
	return e.Err
}

// ValidationErrors collects every problem found in a form so they can be
// reported inline at once.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, fe := range v {
		errs[i] = fe
	}
	return errs
}

// Normalize forces EndDay to StartDay for single day submissions and trims
// item amounts to the form they are stored in.
func (f FormValues) Normalize() FormValues {
	if f.DayRangeType == "" {
		f.DayRangeType = SingleDay
	}
	if f.DayRangeType == SingleDay {
		f.EndDay = f.StartDay
	}
	if len(f.Items) > 0 {
		items := make([]TransactionItem, len(f.Items))
		for i, item := range f.Items {
			item.Amount = NormalizeAmount(item.Amount)
			items[i] = item
		}
		f.Items = items
	}
	return f
}

// ValidateRange checks only the calendar part of the form: the fields needed
// to derive date keys.
func (f FormValues) ValidateRange() error {
	var errs ValidationErrors
	f.collectRange(&errs)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Validate applies the full form boundary rules. It is meant to run before
// values reach a store.
func (f FormValues) Validate() error {
	var errs ValidationErrors
	f.collectRange(&errs)

	if len(f.Items) == 0 {
		errs = append(errs, FieldError{Field: "items", Err: ErrNoItems})
	}
	for i, item := range f.Items {
		field := fmt.Sprintf("items[%d]", i)
		if !item.Type.IsValid() {
			errs = append(errs, FieldError{Field: field + ".type", Err: ErrInvalidType})
		}
		if strings.TrimSpace(item.Name) == "" {
			errs = append(errs, FieldError{Field: field + ".name", Err: ErrEmptyName})
		}
		if _, err := ParseAmount(item.Amount); err != nil {
			errs = append(errs, FieldError{Field: field + ".amount", Err: err})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateExpandable checks the calendar fields and every item that Expand
// would keep. Items with an empty name or amount are ignored, but at least one
// item must remain.
func (f FormValues) ValidateExpandable() error {
	var errs ValidationErrors
	f.collectRange(&errs)

	kept := 0
	for i, item := range f.Items {
		if skipItem(item) {
			continue
		}
		kept++
		field := fmt.Sprintf("items[%d]", i)
		if !item.Type.IsValid() {
			errs = append(errs, FieldError{Field: field + ".type", Err: ErrInvalidType})
		}
		if _, err := ParseAmount(item.Amount); err != nil {
			errs = append(errs, FieldError{Field: field + ".amount", Err: err})
		}
	}
	if kept == 0 {
		errs = append(errs, FieldError{Field: "items", Err: ErrNoItems})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func skipItem(item TransactionItem) bool {
	return strings.TrimSpace(item.Name) == "" || strings.TrimSpace(item.Amount) == ""
}

func (f FormValues) collectRange(errs *ValidationErrors) {
	if f.Year < 1 || f.Year > 9999 {
		*errs = append(*errs, FieldError{Field: "year", Err: ErrInvalidYear})
	}
	if f.Month < 1 || f.Month > 12 {
		*errs = append(*errs, FieldError{Field: "month", Err: ErrInvalidMonth})
		return
	}
	if !f.DayRangeType.IsValid() {
		*errs = append(*errs, FieldError{Field: "dayRangeType", Err: ErrInvalidRange})
		return
	}

	maxDay := DaysInMonth(f.Year, f.Month)
	if f.StartDay < 1 || f.StartDay > maxDay {
		*errs = append(*errs, FieldError{Field: "startDay", Err: ErrInvalidDay})
	}
	switch f.DayRangeType {
	case SingleDay:
		if f.EndDay != f.StartDay {
			*errs = append(*errs, FieldError{Field: "endDay", Err: ErrInvalidDayRange})
		}
	case MultipleDays:
		if f.EndDay < 1 || f.EndDay > maxDay {
			*errs = append(*errs, FieldError{Field: "endDay", Err: ErrInvalidDay})
		} else if f.EndDay < f.StartDay {
			*errs = append(*errs, FieldError{Field: "endDay", Err: ErrInvalidDayRange})
		}
	}
}

// Days lists the days covered by the form, in ascending order.
func (f FormValues) Days() []int {
	if f.DayRangeType != MultipleDays {
		return []int{f.StartDay}
	}
	days := make([]int, 0, f.EndDay-f.StartDay+1)
	for d := f.StartDay; d <= f.EndDay; d++ {
		days = append(days, d)
	}
	return days
}

// Expand turns a form into one Transaction per (day, item) pair. Items with an
// empty name or amount are skipped. Each record gets the next sortOrder for
// its date, counting both existing records and the ones expanded before it.
func Expand(f FormValues, existing []Transaction, newID func() string) []Transaction {
	next := make(map[string]int)
	for _, tx := range existing {
		if tx.SortOrder+1 > next[tx.Date] {
			next[tx.Date] = tx.SortOrder + 1
		}
	}

	var out []Transaction
	for _, day := range f.Days() {
		date := DateKey(f.Year, f.Month, day)
		for _, item := range f.Items {
			if skipItem(item) {
				continue
			}
			out = append(out, Transaction{
				ID:        newID(),
				Type:      item.Type,
				Name:      item.Name,
				Amount:    item.Amount,
				SortOrder: next[date],
				Date:      date,
				Month:     f.Month,
				Year:      f.Year,
			})
			next[date]++
		}
	}
	return out
}

// Day returns the day of month encoded in the record's date key.
func (t Transaction) Day() int {
	_, _, d, err := ParseDateKey(t.Date)
	if err != nil {
		return 0
	}
	return d
}

// Validate checks a record read from an external source such as a backup.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return errors.New("empty id")
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	if _, _, _, err := ParseDateKey(t.Date); err != nil {
		return err
	}
	return nil
}
