package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"prestamos/models"
)

func TestAmountOwed(t *testing.T) {
	cases := []struct {
		name      string
		principal string
		interes   *float64
		paid      string
		want      string
	}{
		{"nothing paid", "100.000", ptr(10.0), "", "110.000"},
		{"partially paid", "100.000", ptr(10.0), "50.000", "60.000"},
		{"overpaid", "100.000", ptr(10.0), "120.000", "-10.000"},
		{"no interest", "1.500.000", nil, "500.000", "1.000.000"},
		{"rounds half away from zero", "1.005", ptr(10.0), "", "1.106"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			owed, err := AmountOwed(tc.principal, tc.interes, tc.paid)
			if err != nil {
				t.Fatal(err)
			}
			if got := FormatAmount(owed); got != tc.want {
				t.Errorf("got %s want %s", got, tc.want)
			}
		})
	}
}

func TestParseAmount(t *testing.T) {
	cases := map[string]string{
		"":          "0",
		"100.000":   "100000",
		"1.250,5":   "1250.5",
		" 2.000 ":   "2000",
		"1.000.000": "1000000",
	}
	for in, want := range cases {
		got, err := ParseAmount(in)
		if err != nil {
			t.Fatalf("ParseAmount(%q): %v", in, err)
		}
		if !got.Equal(decimal.RequireFromString(want)) {
			t.Errorf("ParseAmount(%q) got %s want %s", in, got, want)
		}
	}

	if _, err := ParseAmount("diez"); err == nil {
		t.Error("got nil error for a non numeric amount")
	}
}

func TestFormatAmount(t *testing.T) {
	cases := map[string]string{
		"0":        "0",
		"999":      "999",
		"1000":     "1.000",
		"1234567":  "1.234.567",
		"-2500.5":  "-2.501",
		"-0.4":     "0",
		"110000.0": "110.000",
	}
	for in, want := range cases {
		if got := FormatAmount(decimal.RequireFromString(in)); got != want {
			t.Errorf("FormatAmount(%s) got %s want %s", in, got, want)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	if got := DaysBetween(start.UnixMilli(), start.AddDate(0, 0, 30).UnixMilli()); got != 30 {
		t.Errorf("got %d want 30", got)
	}
	if got := DaysBetween(start.UnixMilli(), start.Add(47*time.Hour).UnixMilli()); got != 1 {
		t.Errorf("got %d want 1", got)
	}
	if got := DaysBetween(start.Add(36*time.Hour).UnixMilli(), start.UnixMilli()); got != -1 {
		t.Errorf("got %d want -1", got)
	}
}

func TestBadges(t *testing.T) {
	if got := LoanBadge(models.LoanStateUnsuccessfullyClosed); got != "badge text-bg-danger" {
		t.Errorf("got %s", got)
	}
	if got := LoanBadge("otro"); got != "badge text-bg-default" {
		t.Errorf("got %s", got)
	}
	if got := ItemBadge(models.ItemStateUnpublished); got != "badge text-bg-success" {
		t.Errorf("got %s", got)
	}
}

func TestNewLoanDefaults(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	loan := NewLoanDefaults(now)

	if loan.Estado != models.LoanStateActive {
		t.Errorf("got estado %s want Activo", loan.Estado)
	}
	if got := DaysBetween(loan.FechaInicio, loan.FechaFinal); got != 30 {
		t.Errorf("got %d days want 30", got)
	}
}
