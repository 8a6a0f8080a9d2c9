package cidrlab

import "strconv"

type ContainmentItem struct {
	Input   string
	Status  string
	Percent string
	Gaps    []string
	Match   string
}

type ContainmentResult struct {
	Items    []ContainmentItem
	Warnings []string
	Errors   []ParseError
}

// Containment checks every candidate against the container ranges and
// reports status, coverage percentage and the uncovered gaps as CIDRs.
func Containment(containers, candidates string, mergeContainers bool) ContainmentResult {
	containerEntries, errsA := ParseBatch(containers)
	candidateEntries, errsB := ParseBatch(candidates)
	out := ContainmentResult{Errors: append(errsA, errsB...)}

	c4, c6 := splitByFamily(containerEntries)
	if mergeContainers {
		var err error
		if c4, err = mergedRanges(c4); err != nil {
			out.Warnings = append(out.Warnings, err.Error())
		}
		if c6, err = mergedRanges(c6); err != nil {
			out.Warnings = append(out.Warnings, err.Error())
		}
	}

	for _, cand := range candidateEntries {
		pool := c4
		if cand.Family == 6 {
			pool = c6
		}
		cov, err := Cover(cand.Range, pool)
		if err != nil {
			out.Warnings = append(out.Warnings, cand.Range.String()+": "+err.Error())
			continue
		}
		item := ContainmentItem{
			Input:   cand.Range.String(),
			Status:  cov.Status.Label(),
			Percent: strconv.FormatFloat(cov.Percent, 'f', 1, 64),
		}
		if cov.HasMatch {
			item.Match = cov.Match.String()
		}
		for _, gap := range cov.Gaps {
			d, err := DecomposeRange(gap, DecomposeExact, 0)
			if err != nil {
				continue
			}
			item.Gaps = append(item.Gaps, prefixStrings(d.Prefixes)...)
		}
		out.Items = append(out.Items, item)
	}
	return out
}

func mergedRanges(in []Range) ([]Range, error) {
	if len(in) == 0 {
		return in, nil
	}
	set, err := Merge(in)
	if err != nil {
		return in, err
	}
	return set.Ranges(), nil
}
