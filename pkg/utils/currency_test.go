package utils

import "testing"

func TestMoneyFormatter(t *testing.T) {
	t.Run("german grouping with euro code", func(t *testing.T) {
		f := NewMoneyFormatter("EUR", "de")
		if got := f.Format(1234.5); got != "1.234,50 EUR" {
			t.Fatalf("expected %q, got %q", "1.234,50 EUR", got)
		}
	})

	t.Run("english grouping", func(t *testing.T) {
		f := NewMoneyFormatter("USD", "en")
		if got := f.Format(1234.5); got != "1,234.50 USD" {
			t.Fatalf("expected %q, got %q", "1,234.50 USD", got)
		}
	})

	t.Run("invalid inputs fall back to EUR and english", func(t *testing.T) {
		f := NewMoneyFormatter("???", "not a tag!")
		if got := f.Format(10); got != "10.00 EUR" {
			t.Fatalf("expected %q, got %q", "10.00 EUR", got)
		}
	})

	t.Run("optional amount", func(t *testing.T) {
		f := NewMoneyFormatter("EUR", "en")
		if got := f.FormatOptional(nil); got != "" {
			t.Fatalf("expected empty string, got %q", got)
		}
		amount := 5.0
		if got := f.FormatOptional(&amount); got != "5.00 EUR" {
			t.Fatalf("expected %q, got %q", "5.00 EUR", got)
		}
	})
}
