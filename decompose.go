// Copyright (c) 2025 Berik Ashimov

package cidrlab

import (
	"math/big"
	"net/netip"
)

type DecomposeMode int

const (
	DecomposeExact DecomposeMode = iota
	DecomposeMinimalCover
	DecomposeConstrained
)

const (
	exactIterationCap = 1000
	coverIterationCap = 100

	// coverOvershootDiv controls how far a minimal-cover block may run
	// past the range end: blockSize/coverOvershootDiv.
	coverOvershootDiv = 4
)

// Decomposition is an ordered list of CIDR blocks in address order.
// Degraded is set when an iteration cap was hit and the remainder was
// collapsed into a single host route; callers must surface that as
// lossy output.
type Decomposition struct {
	Prefixes []netip.Prefix
	Degraded bool
}

// DecomposeRange converts one range into CIDR blocks. Exact mode emits
// the unique minimal covering. Minimal-cover mode may round outward by
// up to blockSize/4 to shrink the block count. Constrained mode emits
// only blocks of constrainedPrefix, falling back to host routes where
// the cursor is not aligned.
func DecomposeRange(r Range, mode DecomposeMode, constrainedPrefix int) (Decomposition, error) {
	if r.IsZero() {
		return Decomposition{}, nil
	}
	switch mode {
	case DecomposeExact:
		return decomposeExact(r), nil
	case DecomposeMinimalCover:
		return decomposeCover(r), nil
	case DecomposeConstrained:
		if constrainedPrefix < 0 || constrainedPrefix > r.bits {
			return Decomposition{}, invalidInput("prefix length out of bounds")
		}
		return decomposeConstrained(r, constrainedPrefix), nil
	default:
		return Decomposition{}, invalidInput("unknown decomposition mode")
	}
}

// DecomposeSet decomposes each range of a normalized set independently
// and concatenates the results in range order.
func DecomposeSet(s RangeSet, mode DecomposeMode, constrainedPrefix int) (Decomposition, error) {
	var out Decomposition
	for _, r := range s.ranges {
		d, err := DecomposeRange(r, mode, constrainedPrefix)
		if err != nil {
			return Decomposition{}, err
		}
		out.Prefixes = append(out.Prefixes, d.Prefixes...)
		out.Degraded = out.Degraded || d.Degraded
	}
	return out, nil
}

func decomposeExact(r Range) Decomposition {
	one := big.NewInt(1)
	cursor := new(big.Int).Set(r.start)
	var out Decomposition
	for iter := 0; cursor.Cmp(r.end) <= 0; iter++ {
		if iter >= exactIterationCap {
			out.Prefixes = append(out.Prefixes, hostRoute(cursor, r.bits))
			out.Degraded = true
			return out
		}
		p := maxAlignExp(cursor, r.bits)
		remaining := new(big.Int).Add(new(big.Int).Sub(r.end, cursor), one)
		if m := remaining.BitLen() - 1; m < p {
			p = m
		}
		addr, _ := bigToAddr(cursor, r.bits)
		out.Prefixes = append(out.Prefixes, netip.PrefixFrom(addr, r.bits-p))
		cursor.Add(cursor, new(big.Int).Lsh(one, uint(p)))
	}
	return out
}

func decomposeCover(r Range) Decomposition {
	one := big.NewInt(1)
	cursor := new(big.Int).Set(r.start)
	var out Decomposition
	for iter := 0; cursor.Cmp(r.end) <= 0; iter++ {
		if iter >= coverIterationCap {
			out.Prefixes = append(out.Prefixes, hostRoute(cursor, r.bits))
			out.Degraded = true
			return out
		}
		best := 0
		for p := 1; p <= r.bits; p++ {
			size := new(big.Int).Lsh(one, uint(p))
			aligned := alignDown(cursor, size)
			blockEnd := new(big.Int).Sub(new(big.Int).Add(aligned, size), one)
			limit := new(big.Int).Add(r.end, new(big.Int).Div(size, big.NewInt(coverOvershootDiv)))
			if blockEnd.Cmp(limit) > 0 {
				break
			}
			best = p
		}
		size := new(big.Int).Lsh(one, uint(best))
		aligned := alignDown(cursor, size)
		addr, _ := bigToAddr(aligned, r.bits)
		out.Prefixes = append(out.Prefixes, netip.PrefixFrom(addr, r.bits-best))
		cursor = new(big.Int).Add(aligned, size)
	}
	return out
}

func decomposeConstrained(r Range, prefix int) Decomposition {
	one := big.NewInt(1)
	size := blockSize(r.bits, prefix)
	cursor := new(big.Int).Set(r.start)
	var out Decomposition
	for iter := 0; cursor.Cmp(r.end) <= 0; iter++ {
		if iter >= exactIterationCap {
			out.Prefixes = append(out.Prefixes, hostRoute(cursor, r.bits))
			out.Degraded = true
			return out
		}
		blockEnd := new(big.Int).Sub(new(big.Int).Add(cursor, size), one)
		if alignDown(cursor, size).Cmp(cursor) == 0 && blockEnd.Cmp(r.end) <= 0 {
			addr, _ := bigToAddr(cursor, r.bits)
			out.Prefixes = append(out.Prefixes, netip.PrefixFrom(addr, prefix))
			cursor = new(big.Int).Add(cursor, size)
			continue
		}
		out.Prefixes = append(out.Prefixes, hostRoute(cursor, r.bits))
		cursor = new(big.Int).Add(cursor, one)
	}
	return out
}

func hostRoute(v *big.Int, bits int) netip.Prefix {
	addr, _ := bigToAddr(v, bits)
	return netip.PrefixFrom(addr, bits)
}
