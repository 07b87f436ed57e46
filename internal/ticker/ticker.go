// Package ticker converts security codes between the canonical
// exchange-suffix form used internally (AAPL, 700.HK, 600519.SS, 300750.SZ)
// and the broker-prefixed form used by the quote gateway (US.AAPL, HK.00700,
// SH.600519, SZ.300750).
package ticker

import "strings"

// Normalize canonicalizes any supported spelling of a ticker. It is total:
// unrecognized formats pass through trimmed and uppercased. Plain symbols
// with no suffix address the default (US) market.
func Normalize(raw string) string {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if t == "" {
		return t
	}

	switch {
	case strings.HasPrefix(t, "US."):
		return strings.TrimPrefix(t, "US.")
	case strings.HasPrefix(t, "HK."):
		code := strings.TrimLeft(strings.TrimPrefix(t, "HK."), "0")
		if code == "" {
			code = "0"
		}
		return code + ".HK"
	case strings.HasPrefix(t, "SH."):
		return strings.TrimPrefix(t, "SH.") + ".SS"
	case strings.HasPrefix(t, "SZ."):
		return strings.TrimPrefix(t, "SZ.") + ".SZ"
	}
	return t
}

// ToBrokerCode maps a ticker (canonical or not; it normalizes first) to the
// broker-prefixed form. Hong Kong codes are zero-padded to the gateway's
// fixed five-digit width.
func ToBrokerCode(raw string) string {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if t == "" {
		return t
	}

	// Already broker-prefixed.
	for _, p := range []string{"US.", "HK.", "SH.", "SZ."} {
		if strings.HasPrefix(t, p) {
			return t
		}
	}

	switch {
	case strings.HasSuffix(t, ".HK"):
		return "HK." + padLeft(strings.TrimSuffix(t, ".HK"), 5)
	case strings.HasSuffix(t, ".SS"), strings.HasSuffix(t, ".SH"):
		return "SH." + t[:strings.LastIndex(t, ".")]
	case strings.HasSuffix(t, ".SZ"):
		return "SZ." + strings.TrimSuffix(t, ".SZ")
	}
	// Default market.
	return "US." + t
}

func padLeft(code string, width int) string {
	for len(code) < width {
		code = "0" + code
	}
	return code
}
