package core

import (
	"errors"
	"fmt"
	"testing"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestFormValuesValidate(t *testing.T) {
	good := FormValues{
		Year:         2024,
		Month:        3,
		DayRangeType: SingleDay,
		StartDay:     15,
		EndDay:       15,
		Items:        []TransactionItem{{Type: Earnings, Name: "Salary", Amount: "50000"}},
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name  string
		edit  func(*FormValues)
		field string
		err   error
	}{
		{"month out of range", func(f *FormValues) { f.Month = 13 }, "month", ErrInvalidMonth},
		{"day beyond month", func(f *FormValues) { f.Month = 2; f.StartDay = 30; f.EndDay = 30 }, "startDay", ErrInvalidDay},
		{"single with different end", func(f *FormValues) { f.EndDay = 16 }, "endDay", ErrInvalidDayRange},
		{"multiple reversed", func(f *FormValues) { f.DayRangeType = MultipleDays; f.EndDay = 10 }, "endDay", ErrInvalidDayRange},
		{"unknown range type", func(f *FormValues) { f.DayRangeType = "weekly" }, "dayRangeType", ErrInvalidRange},
		{"no items", func(f *FormValues) { f.Items = nil }, "items", ErrNoItems},
		{"empty name", func(f *FormValues) { f.Items[0].Name = " " }, "items[0].name", ErrEmptyName},
		{"zero amount", func(f *FormValues) { f.Items[0].Amount = "0" }, "items[0].amount", ErrInvalidAmount},
		{"bad type", func(f *FormValues) { f.Items[0].Type = "refund" }, "items[0].type", ErrInvalidType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := good
			f.Items = append([]TransactionItem(nil), good.Items...)
			tc.edit(&f)

			err := f.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tc.err) {
				t.Errorf("error %v does not wrap %v", err, tc.err)
			}
			var verrs ValidationErrors
			if !errors.As(err, &verrs) {
				t.Fatalf("expected ValidationErrors, got %T", err)
			}
			found := false
			for _, fe := range verrs {
				if fe.Field == tc.field {
					found = true
				}
			}
			if !found {
				t.Errorf("no error reported for field %q: %v", tc.field, err)
			}
		})
	}
}

func TestNormalizeSingleDay(t *testing.T) {
	f := FormValues{StartDay: 4, EndDay: 9}.Normalize()
	if f.DayRangeType != SingleDay || f.EndDay != 4 {
		t.Fatalf("got %+v", f)
	}

	m := FormValues{DayRangeType: MultipleDays, StartDay: 4, EndDay: 9}.Normalize()
	if m.EndDay != 9 {
		t.Fatalf("multiple range changed: %+v", m)
	}
}

func TestExpandSingleDay(t *testing.T) {
	f := FormValues{
		Year: 2024, Month: 3, DayRangeType: SingleDay, StartDay: 15, EndDay: 15,
		Items: []TransactionItem{
			{Type: Earnings, Name: "Salary", Amount: "50000"},
			{Type: Spendings, Name: "", Amount: "10"},
			{Type: Spendings, Name: "Lunch", Amount: ""},
			{Type: Spendings, Name: "Rent", Amount: "12000"},
		},
	}

	got := Expand(f, nil, seqIDs())
	if len(got) != 2 {
		t.Fatalf("expected 2 records, got %d", len(got))
	}
	for _, tx := range got {
		if tx.Date != "2024-03-15" || tx.Month != 3 || tx.Year != 2024 {
			t.Errorf("unexpected date fields: %+v", tx)
		}
	}
	if got[0].Name != "Salary" || got[0].Amount != "50000" || got[0].Type != Earnings {
		t.Errorf("first record = %+v", got[0])
	}
	if got[0].SortOrder != 0 || got[1].SortOrder != 1 {
		t.Errorf("sort orders = %d, %d", got[0].SortOrder, got[1].SortOrder)
	}
	if got[0].ID == got[1].ID {
		t.Error("ids must be unique")
	}
}

func TestExpandMultipleDays(t *testing.T) {
	f := FormValues{
		Year: 2024, Month: 3, DayRangeType: MultipleDays, StartDay: 1, EndDay: 3,
		Items: []TransactionItem{{Type: Spendings, Name: "Coffee", Amount: "5"}},
	}
	existing := []Transaction{{ID: "old", Date: "2024-03-02", SortOrder: 4}}

	got := Expand(f, existing, seqIDs())
	if len(got) != 3 {
		t.Fatalf("expected 3 records, got %d", len(got))
	}
	wantDates := []string{"2024-03-01", "2024-03-02", "2024-03-03"}
	wantOrder := []int{0, 5, 0}
	for i, tx := range got {
		if tx.Date != wantDates[i] {
			t.Errorf("record %d date = %s, want %s", i, tx.Date, wantDates[i])
		}
		if tx.Amount != "5" {
			t.Errorf("record %d amount = %s", i, tx.Amount)
		}
		if tx.SortOrder != wantOrder[i] {
			t.Errorf("record %d sortOrder = %d, want %d", i, tx.SortOrder, wantOrder[i])
		}
	}
}

func TestExpandCount(t *testing.T) {
	items := []TransactionItem{
		{Type: Spendings, Name: "A", Amount: "1"},
		{Type: Spendings, Name: "B", Amount: "2"},
		{Type: Earnings, Name: "C", Amount: "3"},
	}
	for k := 1; k <= 5; k++ {
		f := FormValues{Year: 2023, Month: 1, DayRangeType: MultipleDays, StartDay: 10, EndDay: 10 + k - 1, Items: items}
		if got := len(Expand(f, nil, seqIDs())); got != len(items)*k {
			t.Errorf("K=%d: got %d records, want %d", k, got, len(items)*k)
		}
	}
}

func TestTransactionValidate(t *testing.T) {
	ok := Transaction{ID: "a", Type: Spendings, Date: "2024-01-31"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	bads := []Transaction{
		{ID: "", Type: Spendings, Date: "2024-01-31"},
		{ID: "a", Type: "other", Date: "2024-01-31"},
		{ID: "a", Type: Earnings, Date: "2024-02-30"},
		{ID: "a", Type: Earnings, Date: "31/01/2024"},
	}
	for i, tx := range bads {
		if err := tx.Validate(); err == nil {
			t.Errorf("case %d expected error", i)
		}
	}
}

func TestValidateExpandable(t *testing.T) {
	base := FormValues{Year: 2024, Month: 3, DayRangeType: SingleDay, StartDay: 15, EndDay: 15}

	tests := []struct {
		name  string
		items []TransactionItem
		want  error
	}{
		{"blank rows are ignored", []TransactionItem{
			{Type: Spendings, Name: "Coffee", Amount: "5"},
			{Type: Spendings},
		}, nil},
		{"only blank rows", []TransactionItem{{Type: Spendings, Name: "Coffee"}}, ErrNoItems},
		{"kept row with bad amount", []TransactionItem{{Type: Spendings, Name: "Coffee", Amount: "abc"}}, ErrInvalidAmount},
		{"kept row with bad type", []TransactionItem{{Type: "gift", Name: "Coffee", Amount: "5"}}, ErrInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := base
			f.Items = tt.items
			err := f.ValidateExpandable()
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("error %v does not wrap %v", err, tt.want)
			}
		})
	}
}
