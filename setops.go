// Copyright (c) 2025 Berik Ashimov

package cidrlab

import "math/big"

// Subtract computes every address in a that is not in b. Both sets must
// share one address width unless either is empty.
func Subtract(a, b RangeSet) (RangeSet, error) {
	if a.Empty() || b.Empty() {
		return a, nil
	}
	if a.bits != b.bits {
		return RangeSet{}, invalidInput("mixed address widths in subtract")
	}
	one := big.NewInt(1)
	work := a.ranges
	for _, bj := range b.ranges {
		next := make([]Range, 0, len(work)+1)
		for _, ai := range work {
			switch {
			case ai.end.Cmp(bj.start) < 0 || ai.start.Cmp(bj.end) > 0:
				next = append(next, ai)
			case bj.start.Cmp(ai.start) <= 0 && bj.end.Cmp(ai.end) >= 0:
				// dropped entirely
			case ai.start.Cmp(bj.start) < 0 && ai.end.Cmp(bj.end) > 0:
				left := rangeFromBig(ai.start, new(big.Int).Sub(bj.start, one), ai.bits)
				right := rangeFromBig(new(big.Int).Add(bj.end, one), ai.end, ai.bits)
				next = append(next, left, right)
			case ai.start.Cmp(bj.start) < 0:
				next = append(next, rangeFromBig(ai.start, new(big.Int).Sub(bj.start, one), ai.bits))
			default:
				next = append(next, rangeFromBig(new(big.Int).Add(bj.end, one), ai.end, ai.bits))
			}
		}
		work = next
		if len(work) == 0 {
			break
		}
	}
	// fragments never recombine, but re-normalizing keeps the invariant
	// independent of the refinement order
	return Merge(work)
}

// Intersect computes the addresses present in both sets.
func Intersect(a, b RangeSet) (RangeSet, error) {
	if a.Empty() || b.Empty() {
		return RangeSet{}, nil
	}
	if a.bits != b.bits {
		return RangeSet{}, invalidInput("mixed address widths in intersect")
	}
	var out []Range
	for _, ai := range a.ranges {
		for _, bj := range b.ranges {
			if ov, ok := overlapRange(ai, bj); ok {
				out = append(out, ov)
			}
		}
	}
	return Merge(out)
}

func overlapRange(a, b Range) (Range, bool) {
	start := a.start
	if b.start.Cmp(start) > 0 {
		start = b.start
	}
	end := a.end
	if b.end.Cmp(end) < 0 {
		end = b.end
	}
	if start.Cmp(end) > 0 {
		return Range{}, false
	}
	return rangeFromBig(start, end, a.bits), true
}

type CoverageStatus int

const (
	CoverOutside CoverageStatus = iota
	CoverPartial
	CoverInside
	CoverEqual
)

func (s CoverageStatus) Label() string {
	switch s {
	case CoverPartial:
		return "partial"
	case CoverInside:
		return "inside"
	case CoverEqual:
		return "equal"
	default:
		return "outside"
	}
}

type Coverage struct {
	Status  CoverageStatus
	Percent float64
	Gaps    []Range
	// Match is the single container range that fully bounds the
	// candidate, if any. Coverage assembled from several containers
	// yields inside with no match.
	Match    Range
	HasMatch bool
}

// Cover reports how much of candidate is covered by the container ranges.
func Cover(candidate Range, containers []Range) (Coverage, error) {
	if candidate.IsZero() {
		return Coverage{}, invalidInput("empty candidate range")
	}
	var overlaps []Range
	match := Range{}
	hasMatch := false
	matches := 0
	for _, c := range containers {
		if c.bits != candidate.bits {
			return Coverage{}, invalidInput("mixed address widths in containment")
		}
		if ov, ok := overlapRange(candidate, c); ok {
			overlaps = append(overlaps, ov)
		}
		if c.ContainsRange(candidate) {
			matches++
			if !hasMatch {
				match = rangeFromBig(c.start, c.end, c.bits)
				hasMatch = true
			}
		}
	}
	covered, err := Merge(overlaps)
	if err != nil {
		return Coverage{}, err
	}
	size := candidate.Size()
	coveredSize := covered.Size()

	out := Coverage{Match: match, HasMatch: hasMatch}
	switch {
	case coveredSize.Sign() == 0:
		out.Status = CoverOutside
		out.Percent = 0
		return out, nil
	case coveredSize.Cmp(size) < 0:
		out.Status = CoverPartial
		out.Percent = percentOf(coveredSize, size)
		candSet := RangeSet{ranges: []Range{candidate}, bits: candidate.bits}
		gaps, err := Subtract(candSet, covered)
		if err != nil {
			return Coverage{}, err
		}
		out.Gaps = gaps.Ranges()
		return out, nil
	default:
		out.Percent = 100
		if hasMatch && matches == 1 && match.Equal(candidate) {
			out.Status = CoverEqual
		} else {
			out.Status = CoverInside
		}
		return out, nil
	}
}

func percentOf(part, whole *big.Int) float64 {
	if whole.Sign() == 0 {
		return 0
	}
	rat := new(big.Rat).SetFrac(part, whole)
	f, _ := rat.Float64()
	pct := f * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
