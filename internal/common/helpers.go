package common

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	SOLDecimals = 9 // SOL has 9 decimals (lamports)
)

// LamportsToSOL converts lamports to SOL string without float precision loss
func LamportsToSOL(lamports uint64) string {
	return formatWithDecimals(lamports, SOLDecimals)
}

// ShortSOL is LamportsToSOL with trailing zeros removed, for human-facing status text.
// Example: ShortSOL(2039280) = "0.00203928"
func ShortSOL(lamports uint64) string {
	s := strings.TrimRight(LamportsToSOL(lamports), "0")
	return strings.TrimSuffix(s, ".")
}

// FiatValue converts a lamport amount to a fiat display string using a per-SOL rate.
// Float is used only for display, never for amounts that go on chain.
func FiatValue(lamports uint64, rate string) (string, error) {
	rateFloat, err := strconv.ParseFloat(rate, 64)
	if err != nil {
		return "", fmt.Errorf("failed to parse rate '%s': %w", rate, err)
	}
	solFloat, err := strconv.ParseFloat(LamportsToSOL(lamports), 64)
	if err != nil {
		return "", fmt.Errorf("failed to parse amount: %w", err)
	}
	return fmt.Sprintf("%.2f", solFloat*rateFloat), nil
}

// formatWithDecimals converts integer to decimal string by inserting decimal point
// Example: formatWithDecimals(24981836, 9) = "0.024981836"
func formatWithDecimals(value uint64, decimals int) string {
	s := strconv.FormatUint(value, 10)

	// Pad with leading zeros if needed
	for len(s) <= decimals {
		s = "0" + s
	}

	// Insert decimal point
	pos := len(s) - decimals
	return s[:pos] + "." + s[pos:]
}
