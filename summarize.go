// Copyright (c) 2025 Berik Ashimov

package cidrlab

import "math/big"

type Summary struct {
	CIDRs       []string
	InputCount  int
	OutputCount int
	Addresses   string
	Degraded    bool
	Warnings    []string
	Errors      []ParseError
}

// Summarize merges mixed IPs/CIDRs/ranges per family and decomposes the
// result. Mode is DecomposeExact or DecomposeMinimalCover.
func Summarize(input string, mode DecomposeMode) Summary {
	entries, errs := ParseBatch(input)
	out := Summary{InputCount: len(entries), Errors: errs}

	v4, v6 := splitByFamily(entries)
	total := big.NewInt(0)
	for _, ranges := range [][]Range{v4, v6} {
		if len(ranges) == 0 {
			continue
		}
		merged, err := Merge(ranges)
		if err != nil {
			out.Warnings = append(out.Warnings, err.Error())
			continue
		}
		total.Add(total, merged.Size())
		d, err := DecomposeSet(merged, mode, 0)
		if err != nil {
			out.Warnings = append(out.Warnings, err.Error())
			continue
		}
		out.CIDRs = append(out.CIDRs, prefixStrings(d.Prefixes)...)
		out.Degraded = out.Degraded || d.Degraded
	}
	out.OutputCount = len(out.CIDRs)
	out.Addresses = formatAddressTotal(total)
	if mode == DecomposeMinimalCover {
		out.Warnings = append(out.Warnings, minimalCoverWarning)
	}
	if out.Degraded {
		out.Warnings = append(out.Warnings, degradedWarning)
	}
	return out
}
