// Copyright (c) 2025 Berik Ashimov

package cidrlab

import (
	"math/big"
	"net/netip"
	"sort"
	"strconv"
	"strings"
)

const (
	StrategyFitBest       = "fit-best"
	StrategyPreserveOrder = "preserve-order"
)

type SubnetRequest struct {
	Name   string
	Hosts  int
	Prefix int
}

type Placement struct {
	Name   string
	CIDR   string
	Prefix int
	Hosts  int
}

type VLSMResult struct {
	Parent     string
	Placements []Placement
	FreeCIDRs  []string
	Warnings   []string
	Errors     []ParseError
}

// hostsToPrefix sizes an IPv4 subnet for hosts plus network, gateway and
// broadcast addresses.
func hostsToPrefix(hosts int) int {
	need := hosts + 3
	for p := 32; p >= 1; p-- {
		size := 1 << (32 - p)
		if size >= need {
			return p
		}
	}
	return 1
}

// ParseRequests parses newline-delimited subnet requests of the form
// "name, 100" (hosts) or "name, /26" (explicit prefix).
func ParseRequests(text string) ([]SubnetRequest, []ParseError) {
	var reqs []SubnetRequest
	var errs []ParseError
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})
		if len(fields) < 2 {
			errs = append(errs, ParseError{Line: i + 1, Input: line, Reason: "expected name and size"})
			continue
		}
		req := SubnetRequest{Name: fields[0]}
		sizeText := fields[1]
		if strings.HasPrefix(sizeText, "/") {
			prefix, err := strconv.Atoi(sizeText[1:])
			if err != nil || prefix < 0 || prefix > 128 {
				errs = append(errs, ParseError{Line: i + 1, Input: line, Reason: "bad prefix length"})
				continue
			}
			req.Prefix = prefix
		} else {
			hosts, err := strconv.Atoi(sizeText)
			if err != nil || hosts <= 0 {
				errs = append(errs, ParseError{Line: i + 1, Input: line, Reason: "bad host count"})
				continue
			}
			req.Hosts = hosts
		}
		reqs = append(reqs, req)
	}
	return reqs, errs
}

// AllocateVLSM places each request inside the parent network at the next
// address aligned to the request's block size. fit-best sorts requests
// largest block first to reduce fragmentation; preserve-order keeps the
// caller's order. Requests that no longer fit are skipped with a warning.
func AllocateVLSM(parentCIDR string, requests []SubnetRequest, strategy string) VLSMResult {
	var out VLSMResult
	parent, err := netip.ParsePrefix(strings.TrimSpace(parentCIDR))
	if err != nil {
		out.Errors = append(out.Errors, ParseError{Input: parentCIDR, Reason: "bad parent CIDR"})
		return out
	}
	parent = parent.Masked()
	out.Parent = parent.String()
	bits := addrBitLen(parent.Addr())
	parentRange := RangeFromPrefix(parent)

	type sized struct {
		req  SubnetRequest
		want int
	}
	var items []sized
	for _, req := range requests {
		want := req.Prefix
		if want == 0 {
			if bits != 32 {
				out.Warnings = append(out.Warnings, "request "+req.Name+": IPv6 requests need an explicit prefix")
				continue
			}
			want = hostsToPrefix(req.Hosts)
		}
		if want < parent.Bits() || want > bits {
			out.Warnings = append(out.Warnings, "request "+req.Name+": prefix /"+itoa(want)+" does not fit parent "+parent.String())
			continue
		}
		items = append(items, sized{req: req, want: want})
	}
	if strategy == StrategyFitBest {
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].want < items[j].want
		})
	}

	one := big.NewInt(1)
	cursor := new(big.Int).Set(parentRange.start)
	var placed []Range
	for _, item := range items {
		step := blockSize(bits, item.want)
		aligned := alignUp(cursor, step)
		blockEnd := new(big.Int).Sub(new(big.Int).Add(aligned, step), one)
		if blockEnd.Cmp(parentRange.end) > 0 {
			out.Warnings = append(out.Warnings, "request "+item.req.Name+": no space left for /"+itoa(item.want))
			continue
		}
		addr, _ := bigToAddr(aligned, bits)
		out.Placements = append(out.Placements, Placement{
			Name:   item.req.Name,
			CIDR:   netip.PrefixFrom(addr, item.want).String(),
			Prefix: item.want,
			Hosts:  item.req.Hosts,
		})
		placed = append(placed, rangeFromBig(aligned, blockEnd, bits))
		cursor = new(big.Int).Add(aligned, step)
	}

	parentSet, _ := Merge([]Range{parentRange})
	placedSet, err := Merge(placed)
	if err == nil {
		if free, err := Subtract(parentSet, placedSet); err == nil {
			if d, err := DecomposeSet(free, DecomposeExact, 0); err == nil {
				out.FreeCIDRs = prefixStrings(d.Prefixes)
			}
		}
	}
	return out
}
