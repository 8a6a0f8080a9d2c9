// Copyright (c) 2025 Berik Ashimov

package cidrlab

import (
	"net/netip"
	"testing"
)

func mustEntry(t *testing.T, line string) Range {
	t.Helper()
	e, err := ParseEntry(line)
	if err != nil {
		t.Fatalf("parse %q: %v", line, err)
	}
	return e.Range
}

func TestMergeAdjacentHalves(t *testing.T) {
	set, err := Merge([]Range{
		mustEntry(t, "10.0.0.0/25"),
		mustEntry(t, "10.0.0.128/25"),
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if set.Len() != 1 {
		t.Fatalf("expected 1 range, got %d", set.Len())
	}
	r := set.Ranges()[0]
	if r.First() != netip.MustParseAddr("10.0.0.0") || r.Last() != netip.MustParseAddr("10.0.0.255") {
		t.Fatalf("unexpected merged range %s", r)
	}
}

func TestMergeOverlapAndOrder(t *testing.T) {
	set, err := Merge([]Range{
		mustEntry(t, "10.0.0.200-10.0.0.250"),
		mustEntry(t, "10.0.0.0-10.0.0.100"),
		mustEntry(t, "10.0.0.50-10.0.0.150"),
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if set.Len() != 2 {
		t.Fatalf("expected 2 ranges, got %d", set.Len())
	}
	ranges := set.Ranges()
	if ranges[0].String() != "10.0.0.0-10.0.0.150" {
		t.Fatalf("unexpected first range %s", ranges[0])
	}
	if ranges[1].String() != "10.0.0.200-10.0.0.250" {
		t.Fatalf("unexpected second range %s", ranges[1])
	}
}

func TestMergeIdempotent(t *testing.T) {
	in := []Range{
		mustEntry(t, "192.168.0.0/24"),
		mustEntry(t, "192.168.1.0/24"),
		mustEntry(t, "192.168.3.7"),
	}
	once, err := Merge(in)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	twice, err := Merge(once.Ranges())
	if err != nil {
		t.Fatalf("merge again: %v", err)
	}
	if once.Len() != twice.Len() {
		t.Fatalf("idempotence broken: %d vs %d", once.Len(), twice.Len())
	}
	a, b := once.Ranges(), twice.Ranges()
	for i := range a {
		if !a[i].Equal(b[i]) {
			t.Fatalf("range %d differs: %s vs %s", i, a[i], b[i])
		}
	}
	if once.Size().Cmp(twice.Size()) != 0 {
		t.Fatalf("size changed on re-merge")
	}
}

func TestMergeMixedWidths(t *testing.T) {
	_, err := Merge([]Range{
		mustEntry(t, "10.0.0.0/24"),
		mustEntry(t, "2001:db8::/64"),
	})
	if err == nil {
		t.Fatalf("expected error for mixed widths")
	}
	if _, ok := err.(*InvalidInput); !ok {
		t.Fatalf("expected InvalidInput, got %T", err)
	}
}

func TestMergeEmpty(t *testing.T) {
	set, err := Merge(nil)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !set.Empty() || set.Size().Sign() != 0 {
		t.Fatalf("expected empty set")
	}
}

func TestMergeV6Adjacent(t *testing.T) {
	set, err := Merge([]Range{
		mustEntry(t, "2001:db8::/65"),
		mustEntry(t, "2001:db8:0:0:8000::/65"),
	})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if set.Len() != 1 {
		t.Fatalf("expected 1 range, got %d", set.Len())
	}
	d, err := DecomposeSet(set, DecomposeExact, 0)
	if err != nil {
		t.Fatalf("decompose: %v", err)
	}
	if len(d.Prefixes) != 1 || d.Prefixes[0].String() != "2001:db8::/64" {
		t.Fatalf("unexpected decomposition %v", d.Prefixes)
	}
}
