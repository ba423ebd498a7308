package service

import (
	"strings"
	"testing"

	"github.com/dzikowski/barbell-bot/internal/domain/model"
)

func TestPadToken(t *testing.T) {
	if got := padToken("GALA"); got != "GALA " {
		t.Errorf("expected %q, got %q", "GALA ", got)
	}
	if got := padToken("GWBTC"); got != "GWBTC" {
		t.Errorf("expected %q, got %q", "GWBTC", got)
	}
}

func TestFormatPriceLine(t *testing.T) {
	got := formatPriceLine("GALA", "GUSDT", 0.01512571)
	want := "1 GALA  =       0.01512571 GUSDT"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestFormatPriceLineWithRef(t *testing.T) {
	got := formatPriceLineWithRef("GWBTC", "GALA", "GUSDT", 7265800, 109875.5)
	want := "1 GWBTC = 7265800.00000000 GALA  =  109875.50000000 GUSDT"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestStatsTable(t *testing.T) {
	lines := statsTable("GALA", []model.Stats{
		{
			Token:            "GWBTC",
			SampleCount:      17,
			Mean:             7243617.5,
			LastPrice:        7265800,
			StdDevPct:        0.3,
			LastDeviationPct: 0.31,
			Direction:        model.MoreExpensive,
		},
	})

	if len(lines) != 3 {
		t.Fatalf("expected header, separator and one row, got %d lines", len(lines))
	}

	wantHeader := " token | cnt |  avg (GALA) | last (GALA) |   std% |   last% |     sign"
	if lines[0] != wantHeader {
		t.Errorf("unexpected header:\n%q\n%q", wantHeader, lines[0])
	}
	if lines[1] != strings.Repeat("=", len(wantHeader)) {
		t.Errorf("unexpected separator %q", lines[1])
	}
	wantRow := " GWBTC |  17 |  7243617.50 |  7265800.00 |  0.30% |   0.31% | more exp"
	if lines[2] != wantRow {
		t.Errorf("unexpected row:\n%q\n%q", wantRow, lines[2])
	}
}

func TestBalanceTable(t *testing.T) {
	targetFor := func(token string) float64 {
		if token == "GALA" {
			return 75
		}
		return 5
	}
	lines := balanceTable("GALA", "GUSDT", targetFor, []model.BalanceInfo{
		{Token: "GALA", Amount: 15358, ValueInBase: 15358, ValueInRef: 232.25, Percent: 75},
		{Token: "TKA", Amount: 512.5, ValueInBase: 5122, ValueInRef: 77.5, Percent: 25},
	})

	// Header, separator, two rows, dashes, total.
	if len(lines) != 6 {
		t.Fatalf("expected 6 lines, got %d: %q", len(lines), lines)
	}

	wantRow := "  GALA |    15358.00000000 |      15358.00 |       232.25 |  75.00% |  75.00%"
	if lines[2] != wantRow {
		t.Errorf("unexpected base row:\n%q\n%q", wantRow, lines[2])
	}
	wantRow = "   TKA |      512.50000000 |       5122.00 |        77.50 |  25.00% |   5.00%"
	if lines[3] != wantRow {
		t.Errorf("unexpected token row:\n%q\n%q", wantRow, lines[3])
	}

	if strings.ContainsAny(lines[4], "0123456789") || !strings.Contains(lines[4], "|") {
		t.Errorf("expected a dashed separator keeping the column bars, got %q", lines[4])
	}

	wantTotal := "       |            Total: |      20480.00 |       309.75 | 100.00%"
	if lines[5] != wantTotal {
		t.Errorf("unexpected total row:\n%q\n%q", wantTotal, lines[5])
	}
}

func TestDashesKeepBars(t *testing.T) {
	got := dashes("ab | cd")
	if got != "---|---" {
		t.Errorf("expected %q, got %q", "---|---", got)
	}
}
