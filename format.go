package cidrlab

import (
	"math/big"
	"net/netip"
	"strings"
)

const totalDisplayDigits = 16

func prefixStrings(prefixes []netip.Prefix) []string {
	out := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		out = append(out, p.String())
	}
	return out
}

func formatBigInt(val *big.Int) string {
	if val == nil {
		return "0"
	}
	text := val.String()
	if len(text) <= 3 {
		return text
	}
	var parts []string
	for len(text) > 3 {
		parts = append(parts, text[len(text)-3:])
		text = text[:len(text)-3]
	}
	parts = append(parts, text)
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "_")
}

// formatAddressTotal caps very large totals for display. Callers needing
// exact counts read RangeSet.Size directly.
func formatAddressTotal(total *big.Int) string {
	if total == nil {
		return "0"
	}
	digits := len(total.String())
	if digits >= totalDisplayDigits {
		return "~10^" + itoa(digits-1)
	}
	return formatBigInt(total)
}

const degradedWarning = "decomposition hit the iteration cap; remainder emitted as a host route (lossy)"

const minimalCoverWarning = "minimal-cover output may include addresses outside the input ranges"
