// Copyright (c) 2025 Berik Ashimov

package cidrlab

import (
	"net/netip"
	"strings"
)

type Entry struct {
	Family int // 4 or 6
	Range  Range
}

// ParseEntry accepts a single IP, an IP/prefix, or an IP1-IP2 range.
func ParseEntry(line string) (Entry, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Entry{}, &ParseError{Input: line, Reason: "empty input"}
	}
	if strings.Contains(line, "/") {
		p, err := netip.ParsePrefix(line)
		if err != nil {
			return Entry{}, &ParseError{Input: line, Reason: "bad CIDR"}
		}
		return Entry{Family: addrFamily(p.Addr()), Range: RangeFromPrefix(p)}, nil
	}
	if idx := rangeSeparator(line); idx >= 0 {
		first, err := netip.ParseAddr(strings.TrimSpace(line[:idx]))
		if err != nil {
			return Entry{}, &ParseError{Input: line, Reason: "bad range start"}
		}
		last, err := netip.ParseAddr(strings.TrimSpace(line[idx+1:]))
		if err != nil {
			return Entry{}, &ParseError{Input: line, Reason: "bad range end"}
		}
		if addrBitLen(first) != addrBitLen(last) {
			return Entry{}, &ParseError{Input: line, Reason: "mixed address families in range"}
		}
		r, err := NewRange(first, last)
		if err != nil {
			return Entry{}, err
		}
		return Entry{Family: addrFamily(first), Range: r}, nil
	}
	a, err := netip.ParseAddr(line)
	if err != nil {
		return Entry{}, &ParseError{Input: line, Reason: "bad address"}
	}
	return Entry{Family: addrFamily(a), Range: RangeOfAddr(a)}, nil
}

// ParseBatch parses newline-delimited entries, collecting one error per
// bad line and never aborting. Blank lines and # comments are skipped.
func ParseBatch(text string) ([]Entry, []ParseError) {
	var entries []Entry
	var errs []ParseError
	for i, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entry, err := ParseEntry(line)
		if err != nil {
			errs = append(errs, lineError(i+1, line, err))
			continue
		}
		entries = append(entries, entry)
	}
	return entries, errs
}

func lineError(line int, input string, err error) ParseError {
	if pe, ok := err.(*ParseError); ok {
		return ParseError{Line: line, Input: input, Reason: pe.Reason}
	}
	return ParseError{Line: line, Input: input, Reason: err.Error()}
}

func addrFamily(a netip.Addr) int {
	if a.Is4() {
		return 4
	}
	return 6
}

// rangeSeparator finds the dash splitting IP1-IP2. IPv6 text never
// contains a dash, so any dash is a separator.
func rangeSeparator(line string) int {
	return strings.IndexByte(line, '-')
}

func splitByFamily(entries []Entry) (v4, v6 []Range) {
	for _, e := range entries {
		if e.Family == 4 {
			v4 = append(v4, e.Range)
			continue
		}
		v6 = append(v6, e.Range)
	}
	return v4, v6
}
