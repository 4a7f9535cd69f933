package currency

import "testing"

func TestLookup(t *testing.T) {
	c, ok := Lookup("USD")
	if !ok || c.Symbol != "$" || c.Locale != "en-US" {
		t.Fatalf("Lookup(USD) = %+v, %v", c, ok)
	}
	if _, ok := Lookup("XYZ"); ok {
		t.Fatal("expected unknown code to be missing")
	}
	if Default().Code != "PHP" {
		t.Fatalf("default = %+v", Default())
	}
}

func TestAvailableSorted(t *testing.T) {
	all := Available()
	if len(all) != 10 {
		t.Fatalf("expected 10 currencies, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Code >= all[i].Code {
			t.Fatalf("not sorted at %d: %s >= %s", i, all[i-1].Code, all[i].Code)
		}
	}
}

func TestFormat(t *testing.T) {
	php := Default()
	tests := []struct {
		name   string
		amount float64
		opts   Options
		want   string
	}{
		{"default", 1234.5, DefaultOptions(), "₱1234.50"},
		{"no symbol", 1234.5, Options{HideSymbol: true, Decimals: 2}, "1234.50"},
		{"zero decimals", 99.4, Options{Decimals: 0}, "₱99"},
		{"negative", -5, DefaultOptions(), "-₱5.00"},
		{"negative without symbol", -5, Options{HideSymbol: true, Decimals: 2}, "-5.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(php, tt.amount, tt.opts); got != tt.want {
				t.Errorf("Format() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatGrouped(t *testing.T) {
	usd, _ := Lookup("USD")
	if got := FormatGrouped(usd, 1234567.5, DefaultOptions()); got != "$1,234,567.50" {
		t.Errorf("FormatGrouped(USD) = %q", got)
	}
	if got := FormatGrouped(usd, 1234.5, Options{HideSymbol: true, Decimals: 2}); got != "1,234.50" {
		t.Errorf("FormatGrouped(USD, no symbol) = %q", got)
	}
	if got := FormatGrouped(usd, -1234.5, DefaultOptions()); got != "-$1,234.50" {
		t.Errorf("FormatGrouped(USD, negative) = %q", got)
	}
	jpy, _ := Lookup("JPY")
	if got := FormatGrouped(jpy, 1234, Options{Decimals: 0}); got != "¥1,234" {
		t.Errorf("FormatGrouped(JPY) = %q", got)
	}
}
