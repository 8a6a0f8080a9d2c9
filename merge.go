// Copyright (c) 2025 Berik Ashimov

package cidrlab

import (
	"math/big"
	"sort"
)

// RangeSet is a normalized sequence of ranges: ascending by start, no two
// ranges overlapping or adjacent. The zero value is the empty set.
type RangeSet struct {
	ranges []Range
	bits   int
}

// Merge normalizes ranges into a RangeSet. Adjacent ranges coalesce, so
// 10.0.0.0/25 and 10.0.0.128/25 become one range covering 10.0.0.0/24.
// All inputs must share one address width.
func Merge(in []Range) (RangeSet, error) {
	if len(in) == 0 {
		return RangeSet{}, nil
	}
	bits := in[0].bits
	sorted := make([]Range, 0, len(in))
	for _, r := range in {
		if r.IsZero() {
			continue
		}
		if r.bits != bits {
			return RangeSet{}, invalidInput("mixed address widths in merge")
		}
		sorted = append(sorted, r)
	}
	if len(sorted) == 0 {
		return RangeSet{}, nil
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		if c := sorted[i].start.Cmp(sorted[j].start); c != 0 {
			return c < 0
		}
		return sorted[i].end.Cmp(sorted[j].end) < 0
	})

	one := big.NewInt(1)
	out := []Range{rangeFromBig(sorted[0].start, sorted[0].end, bits)}
	for _, cur := range sorted[1:] {
		last := &out[len(out)-1]
		gapStart := new(big.Int).Add(last.end, one)
		if cur.start.Cmp(gapStart) <= 0 {
			if cur.end.Cmp(last.end) > 0 {
				last.end = new(big.Int).Set(cur.end)
			}
			continue
		}
		out = append(out, rangeFromBig(cur.start, cur.end, bits))
	}
	return RangeSet{ranges: out, bits: bits}, nil
}

func (s RangeSet) Len() int { return len(s.ranges) }

func (s RangeSet) Empty() bool { return len(s.ranges) == 0 }

func (s RangeSet) Bits() int { return s.bits }

func (s RangeSet) Ranges() []Range {
	out := make([]Range, 0, len(s.ranges))
	for _, r := range s.ranges {
		out = append(out, rangeFromBig(r.start, r.end, r.bits))
	}
	return out
}

// Size returns the exact number of addresses covered by the set.
func (s RangeSet) Size() *big.Int {
	out := big.NewInt(0)
	for _, r := range s.ranges {
		out.Add(out, r.Size())
	}
	return out
}

func (s RangeSet) ContainsAddr(v *big.Int) bool {
	for _, r := range s.ranges {
		if r.start.Cmp(v) <= 0 && r.end.Cmp(v) >= 0 {
			return true
		}
	}
	return false
}
