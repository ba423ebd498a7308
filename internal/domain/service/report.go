package service

import (
	"fmt"
	"strings"

	"github.com/dzikowski/barbell-bot/internal/domain/model"
)

// Table rendering for the cycle report. Column formatting is presentation,
// but the numbers in these lines are asserted by tests, so every value comes
// straight from the computed records.

// padToken keeps 4- and 5-letter symbols aligned in price lines.
func padToken(token string) string {
	if len(token) > 4 {
		return token
	}
	return token + " "
}

func formatPriceLine(tokenIn, tokenOut string, price float64) string {
	return fmt.Sprintf("1 %s = %16.8f %s", padToken(tokenIn), price, padToken(tokenOut))
}

func formatPriceLineWithRef(token, base, ref string, priceInBase, priceInRef float64) string {
	return fmt.Sprintf("%s = %16.8f %s", formatPriceLine(token, base, priceInBase), priceInRef, padToken(ref))
}

func directionShort(d model.Direction) string {
	if d == model.MoreExpensive {
		return "more exp"
	}
	return "cheaper"
}

// dashes turns a header into a matching separator, keeping the column bars.
func dashes(header string) string {
	out := []rune(header)
	for i, r := range out {
		if r != '|' {
			out[i] = '-'
		}
	}
	return string(out)
}

func statsTable(baseToken string, stats []model.Stats) []string {
	header := fmt.Sprintf("%6s | %3s | %11s | %11s | %5s%% | %6s%% | %8s",
		"token", "cnt", "avg ("+baseToken+")", "last ("+baseToken+")", "std", "last", "sign")
	lines := []string{header, strings.Repeat("=", len([]rune(header)))}
	for _, s := range stats {
		lines = append(lines, fmt.Sprintf("%6s | %3d | %11.2f | %11.2f | %5.2f%% | %6.2f%% | %8s",
			s.Token, s.SampleCount, s.Mean, s.LastPrice, s.StdDevPct, s.LastDeviationPct, directionShort(s.Direction)))
	}
	return lines
}

func balanceTable(baseToken, refToken string, targetFor func(token string) float64, infos []model.BalanceInfo) []string {
	header := fmt.Sprintf("%6s | %17s | %13s | %12s | %6s%% | %6s%%",
		"token", "amount", "value ("+baseToken+")", "value ("+refToken+")", "share", "target")
	lines := []string{header, strings.Repeat("=", len([]rune(header)))}

	var totalBase, totalRef float64
	for _, b := range infos {
		totalBase += b.ValueInBase
		totalRef += b.ValueInRef
		lines = append(lines, fmt.Sprintf("%6s | %17.8f | %13.2f | %12.2f | %6.2f%% | %6.2f%%",
			b.Token, b.Amount, b.ValueInBase, b.ValueInRef, b.Percent, targetFor(b.Token)))
	}

	lines = append(lines, dashes(header))
	lines = append(lines, fmt.Sprintf("%6s | %17s | %13.2f | %12.2f | %6.2f%%",
		"", "Total:", totalBase, totalRef, 100.0))
	return lines
}
