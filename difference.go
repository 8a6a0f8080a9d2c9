package cidrlab

import "math/big"

type DifferenceResult struct {
	CIDRs       []string
	MinuendSize string
	ResultSize  string
	Degraded    bool
	Warnings    []string
	Errors      []ParseError
}

// Difference computes A minus B per family and decomposes the remainder.
// Constrained mode aligns every output block to constrainedPrefix.
func Difference(minuend, subtrahend string, mode DecomposeMode, constrainedPrefix int) DifferenceResult {
	entriesA, errsA := ParseBatch(minuend)
	entriesB, errsB := ParseBatch(subtrahend)
	out := DifferenceResult{Errors: append(errsA, errsB...)}

	a4, a6 := splitByFamily(entriesA)
	b4, b6 := splitByFamily(entriesB)

	inputTotal := big.NewInt(0)
	resultTotal := big.NewInt(0)
	for _, pair := range []struct{ a, b []Range }{{a4, b4}, {a6, b6}} {
		if len(pair.a) == 0 {
			continue
		}
		mergedA, err := Merge(pair.a)
		if err != nil {
			out.Warnings = append(out.Warnings, err.Error())
			continue
		}
		mergedB, err := Merge(pair.b)
		if err != nil {
			out.Warnings = append(out.Warnings, err.Error())
			continue
		}
		inputTotal.Add(inputTotal, mergedA.Size())
		diff, err := Subtract(mergedA, mergedB)
		if err != nil {
			out.Warnings = append(out.Warnings, err.Error())
			continue
		}
		resultTotal.Add(resultTotal, diff.Size())
		d, err := DecomposeSet(diff, mode, constrainedPrefix)
		if err != nil {
			out.Warnings = append(out.Warnings, err.Error())
			continue
		}
		out.CIDRs = append(out.CIDRs, prefixStrings(d.Prefixes)...)
		out.Degraded = out.Degraded || d.Degraded
	}
	out.MinuendSize = formatAddressTotal(inputTotal)
	out.ResultSize = formatAddressTotal(resultTotal)
	if mode == DecomposeMinimalCover {
		out.Warnings = append(out.Warnings, minimalCoverWarning)
	}
	if out.Degraded {
		out.Warnings = append(out.Warnings, degradedWarning)
	}
	return out
}
