// Package format renders numbers and on-chain identifiers for display.
package format

import (
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	defaultPrinter = message.NewPrinter(language.English)
	// Chain activity amounts are shown with Turkish grouping (1.234.567).
	activityPrinter = message.NewPrinter(language.Turkish)
)

// Number groups thousands the default way, e.g. 1,234,567.
func Number(n int64) string {
	return defaultPrinter.Sprintf("%d", n)
}

// Amount groups thousands with the activity locale, e.g. 1.234.567.
func Amount(n int64) string {
	return activityPrinter.Sprintf("%d", n)
}

// AmountString formats a decimal string with the activity locale. Values that are
// not integers are returned unchanged.
func AmountString(s string) string {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return s
	}
	return Amount(n)
}

// ShortWallet abbreviates a wallet address to 0x1234...abcd.
func ShortWallet(addr string) string {
	if len(addr) <= 10 {
		return addr
	}
	return addr[:6] + "..." + addr[len(addr)-4:]
}

// ShortHash abbreviates a transaction hash to its first 8 and last 6 characters.
func ShortHash(h string) string {
	if len(h) <= 14 {
		return h
	}
	return h[:8] + "…" + h[len(h)-6:]
}
