package cidrlab

import (
	"math/big"
	"net/netip"
	"sort"
)

const (
	PolicyFirstFit = "first-fit"
	PolicyBestFit  = "best-fit"
)

const defaultMaxCandidates = 50

type FreeCandidate struct {
	CIDR string
	Gap  string
}

type FreeSpaceResult struct {
	FreeCIDRs  []string
	Candidates []FreeCandidate
	Warnings   []string
	Errors     []ParseError
}

type freeCandidate struct {
	addr    *big.Int
	bits    int
	prefix  netip.Prefix
	gap     Range
	gapSize *big.Int
}

// FindFree subtracts allocations from the pools and enumerates every
// aligned subnet of targetPrefix inside the remaining gaps. first-fit
// orders candidates by ascending address; best-fit prefers the smallest
// viable gap first, ties broken by address.
func FindFree(pools, allocations string, targetPrefix int, policy string, maxCandidates int) FreeSpaceResult {
	poolEntries, errsA := ParseBatch(pools)
	allocEntries, errsB := ParseBatch(allocations)
	out := FreeSpaceResult{Errors: append(errsA, errsB...)}
	if maxCandidates <= 0 {
		maxCandidates = defaultMaxCandidates
	}
	if targetPrefix < 0 || targetPrefix > 128 {
		out.Warnings = append(out.Warnings, "target prefix out of bounds")
		return out
	}

	p4, p6 := splitByFamily(poolEntries)
	a4, a6 := splitByFamily(allocEntries)

	var candidates []freeCandidate
	for _, pair := range []struct {
		pools  []Range
		allocs []Range
		bits   int
	}{{p4, a4, 32}, {p6, a6, 128}} {
		if len(pair.pools) == 0 {
			continue
		}
		if targetPrefix > pair.bits {
			out.Warnings = append(out.Warnings, "target prefix /"+itoa(targetPrefix)+" too long for this family")
			continue
		}
		poolSet, err := Merge(pair.pools)
		if err != nil {
			out.Warnings = append(out.Warnings, err.Error())
			continue
		}
		for _, alloc := range pair.allocs {
			overlapped := false
			for _, p := range poolSet.Ranges() {
				if p.Overlaps(alloc) {
					overlapped = true
					break
				}
			}
			if !overlapped {
				out.Warnings = append(out.Warnings, "allocation "+alloc.String()+" falls outside all pools")
			}
		}
		allocSet, err := Merge(pair.allocs)
		if err != nil {
			out.Warnings = append(out.Warnings, err.Error())
			continue
		}
		free, err := Subtract(poolSet, allocSet)
		if err != nil {
			out.Warnings = append(out.Warnings, err.Error())
			continue
		}
		if d, err := DecomposeSet(free, DecomposeExact, 0); err == nil {
			out.FreeCIDRs = append(out.FreeCIDRs, prefixStrings(d.Prefixes)...)
		}
		step := blockSize(pair.bits, targetPrefix)
		one := big.NewInt(1)
		for _, gap := range free.Ranges() {
			gapSize := gap.Size()
			cur := alignUp(gap.start, step)
			for n := 0; n < maxCandidates; n++ {
				blockEnd := new(big.Int).Sub(new(big.Int).Add(cur, step), one)
				if blockEnd.Cmp(gap.end) > 0 {
					break
				}
				addr, ok := bigToAddr(cur, pair.bits)
				if !ok {
					break
				}
				candidates = append(candidates, freeCandidate{
					addr:    new(big.Int).Set(cur),
					bits:    pair.bits,
					prefix:  netip.PrefixFrom(addr, targetPrefix),
					gap:     gap,
					gapSize: gapSize,
				})
				cur = new(big.Int).Add(cur, step)
			}
		}
	}

	if policy == PolicyBestFit {
		sort.SliceStable(candidates, func(i, j int) bool {
			if c := candidates[i].gapSize.Cmp(candidates[j].gapSize); c != 0 {
				return c < 0
			}
			if candidates[i].bits != candidates[j].bits {
				return candidates[i].bits < candidates[j].bits
			}
			return candidates[i].addr.Cmp(candidates[j].addr) < 0
		})
	}
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	for _, c := range candidates {
		out.Candidates = append(out.Candidates, FreeCandidate{
			CIDR: c.prefix.String(),
			Gap:  c.gap.String(),
		})
	}
	return out
}
