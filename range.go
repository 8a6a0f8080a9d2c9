// Copyright (c) 2025 Berik Ashimov

// Package cidrlab is a pure computation library for IP range algebra:
// merging, subtracting and intersecting arbitrary IPv4/IPv6 address
// ranges and converting ranges back into CIDR blocks. Addresses are
// treated as unsigned integers on a 32- or 128-bit number line.
package cidrlab

import (
	"math/big"
	"net/netip"
)

// Range is a closed interval [start, end] of addresses within one
// address family. Values are immutable after construction.
type Range struct {
	start *big.Int
	end   *big.Int
	bits  int
}

func NewRange(first, last netip.Addr) (Range, error) {
	if !first.IsValid() || !last.IsValid() {
		return Range{}, invalidInput("invalid address")
	}
	if addrBitLen(first) != addrBitLen(last) {
		return Range{}, invalidInput("mixed address families in range")
	}
	start := addrToBig(first)
	end := addrToBig(last)
	if start.Cmp(end) > 0 {
		return Range{}, invalidInput("range start after end")
	}
	return Range{start: start, end: end, bits: addrBitLen(first)}, nil
}

func RangeOfAddr(a netip.Addr) Range {
	v := addrToBig(a)
	return Range{start: v, end: new(big.Int).Set(v), bits: addrBitLen(a)}
}

func RangeFromPrefix(p netip.Prefix) Range {
	masked := p.Masked()
	start := addrToBig(masked.Addr())
	end := new(big.Int).Sub(new(big.Int).Add(start, prefixSize(masked)), big.NewInt(1))
	return Range{start: start, end: end, bits: addrBitLen(masked.Addr())}
}

func rangeFromBig(start, end *big.Int, bits int) Range {
	return Range{
		start: new(big.Int).Set(start),
		end:   new(big.Int).Set(end),
		bits:  bits,
	}
}

func (r Range) Bits() int { return r.bits }

func (r Range) IsZero() bool { return r.start == nil }

func (r Range) First() netip.Addr {
	a, _ := bigToAddr(r.start, r.bits)
	return a
}

func (r Range) Last() netip.Addr {
	a, _ := bigToAddr(r.end, r.bits)
	return a
}

func (r Range) Size() *big.Int {
	return new(big.Int).Add(new(big.Int).Sub(r.end, r.start), big.NewInt(1))
}

func (r Range) Overlaps(o Range) bool {
	if r.bits != o.bits {
		return false
	}
	return r.start.Cmp(o.end) <= 0 && o.start.Cmp(r.end) <= 0
}

func (r Range) ContainsRange(o Range) bool {
	if r.bits != o.bits {
		return false
	}
	return r.start.Cmp(o.start) <= 0 && r.end.Cmp(o.end) >= 0
}

func (r Range) Equal(o Range) bool {
	if r.IsZero() || o.IsZero() {
		return r.IsZero() == o.IsZero()
	}
	return r.bits == o.bits && r.start.Cmp(o.start) == 0 && r.end.Cmp(o.end) == 0
}

func (r Range) String() string {
	if r.IsZero() {
		return ""
	}
	if r.start.Cmp(r.end) == 0 {
		return r.First().String()
	}
	return r.First().String() + "-" + r.Last().String()
}
