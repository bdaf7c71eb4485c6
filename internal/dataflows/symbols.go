package dataflows

import (
	"fmt"
	"strings"
	"time"
)

// ValidateSymbol rejects tickers the providers cannot serve.
func ValidateSymbol(symbol string) error {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(symbol) > 10 {
		return fmt.Errorf("symbol too long: %s", symbol)
	}
	return nil
}

// NormalizeSymbol upper-cases and trims a ticker.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// FormatDateRange renders a start/end pair for messages and file names.
func FormatDateRange(start, end time.Time) string {
	return fmt.Sprintf("%s_%s", start.Format("2006-01-02"), end.Format("2006-01-02"))
}

// ParseDateString accepts the date formats seen across provider payloads.
func ParseDateString(dateStr string) (time.Time, error) {
	formats := []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		time.RFC3339,
		"01/02/2006",
		"2006/01/02",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// commonSymbols feeds interactive ticker suggestions. It is not a universe;
// unknown symbols are still accepted by every provider call.
var commonSymbols = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "META", "NVDA", "NFLX",
	"AMD", "INTC", "CRM", "ORCL", "ADBE", "PYPL", "DIS", "V", "MA",
	"JPM", "BAC", "WFC", "C", "GS", "MS", "BRK.B", "JNJ", "PFE",
	"KO", "PEP", "WMT", "HD", "NKE", "MCD", "SBUX", "UNH", "CVX",
}

// SearchSymbols returns known tickers containing the query substring.
func SearchSymbols(query string) []string {
	query = NormalizeSymbol(query)
	if query == "" {
		return nil
	}
	var matches []string
	for _, symbol := range commonSymbols {
		if strings.Contains(symbol, query) {
			matches = append(matches, symbol)
		}
	}
	return matches
}
