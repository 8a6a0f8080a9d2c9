// Copyright (c) 2025 Berik Ashimov

package cidrlab

import (
	"math/big"
	"net/netip"
)

func addrBitLen(a netip.Addr) int {
	if a.Is4() {
		return 32
	}
	return 128
}

func addrToBig(a netip.Addr) *big.Int {
	if a.Is4() {
		b := a.As4()
		return new(big.Int).SetBytes(b[:])
	}
	b := a.As16()
	return new(big.Int).SetBytes(b[:])
}

func bigToAddr(i *big.Int, bits int) (netip.Addr, bool) {
	if bits == 32 {
		if i.Sign() < 0 || i.BitLen() > 32 {
			return netip.Addr{}, false
		}
		buf := i.FillBytes(make([]byte, 4))
		var out [4]byte
		copy(out[:], buf)
		return netip.AddrFrom4(out), true
	}
	if i.Sign() < 0 || i.BitLen() > 128 {
		return netip.Addr{}, false
	}
	buf := i.FillBytes(make([]byte, 16))
	var out [16]byte
	copy(out[:], buf)
	return netip.AddrFrom16(out), true
}

func prefixSize(p netip.Prefix) *big.Int {
	bits := addrBitLen(p.Addr())
	sizeBits := bits - p.Bits()
	if sizeBits <= 0 {
		return big.NewInt(1)
	}
	return new(big.Int).Lsh(big.NewInt(1), uint(sizeBits))
}

func blockSize(bits, prefix int) *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(bits-prefix))
}

func alignUp(n, step *big.Int) *big.Int {
	if step.Sign() == 0 {
		return new(big.Int).Set(n)
	}
	q, r := new(big.Int), new(big.Int)
	q.QuoRem(n, step, r)
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q.Mul(q, step)
}

func alignDown(n, step *big.Int) *big.Int {
	if step.Sign() == 0 {
		return new(big.Int).Set(n)
	}
	q := new(big.Int).Div(n, step)
	return q.Mul(q, step)
}

// maxAlignExp returns the largest p such that v is a multiple of 2^p,
// capped at the address width.
func maxAlignExp(v *big.Int, bits int) int {
	if v.Sign() == 0 {
		return bits
	}
	tz := int(v.TrailingZeroBits())
	if tz > bits {
		tz = bits
	}
	return tz
}
