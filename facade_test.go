// Copyright (c) 2025 Berik Ashimov

package cidrlab

import "testing"

func TestSummarizeHalves(t *testing.T) {
	res := Summarize("10.0.0.0/25\n10.0.0.128/25\n", DecomposeExact)
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors %v", res.Errors)
	}
	if len(res.CIDRs) != 1 || res.CIDRs[0] != "10.0.0.0/24" {
		t.Fatalf("expected single /24, got %v", res.CIDRs)
	}
	if res.InputCount != 2 || res.OutputCount != 1 {
		t.Fatalf("unexpected counts %d/%d", res.InputCount, res.OutputCount)
	}
	if res.Addresses != "256" {
		t.Fatalf("unexpected total %s", res.Addresses)
	}
}

func TestSummarizeMixedFamilies(t *testing.T) {
	res := Summarize("10.0.0.0/24\n2001:db8::/64\n10.0.1.0/24\n", DecomposeExact)
	if len(res.CIDRs) != 3 {
		t.Fatalf("expected 3 CIDRs, got %v", res.CIDRs)
	}
	// v4 output first, then v6
	if res.CIDRs[2] != "2001:db8::/64" {
		t.Fatalf("expected v6 last, got %v", res.CIDRs)
	}
}

func TestSummarizeBadLinesSurvive(t *testing.T) {
	res := Summarize("10.0.0.0/25\ngarbage\n10.0.0.128/25\n", DecomposeExact)
	if len(res.Errors) != 1 {
		t.Fatalf("expected 1 parse error, got %v", res.Errors)
	}
	if len(res.CIDRs) != 1 || res.CIDRs[0] != "10.0.0.0/24" {
		t.Fatalf("good lines should still summarize, got %v", res.CIDRs)
	}
}

func TestSummarizeMinimalCoverWarns(t *testing.T) {
	res := Summarize("10.0.0.0-10.0.0.199\n", DecomposeMinimalCover)
	if len(res.Warnings) == 0 {
		t.Fatalf("expected lossy-mode warning")
	}
	if len(res.CIDRs) != 1 || res.CIDRs[0] != "10.0.0.0/24" {
		t.Fatalf("unexpected cover %v", res.CIDRs)
	}
}

func TestSummarizeLargeTotalCapped(t *testing.T) {
	res := Summarize("::/0\n", DecomposeExact)
	if res.Addresses != "~10^38" {
		t.Fatalf("expected capped display total, got %s", res.Addresses)
	}
}

func TestDifferenceHalf(t *testing.T) {
	res := Difference("10.0.0.0/24", "10.0.0.128/25", DecomposeExact, 0)
	if len(res.CIDRs) != 1 || res.CIDRs[0] != "10.0.0.0/25" {
		t.Fatalf("expected 10.0.0.0/25, got %v", res.CIDRs)
	}
	if res.ResultSize != "128" {
		t.Fatalf("unexpected result size %s", res.ResultSize)
	}
}

func TestDifferenceConstrained(t *testing.T) {
	res := Difference("10.0.0.0/24", "10.0.0.64/26", DecomposeConstrained, 26)
	want := []string{"10.0.0.0/26", "10.0.0.128/26", "10.0.0.192/26"}
	if len(res.CIDRs) != len(want) {
		t.Fatalf("expected %d blocks, got %v", len(want), res.CIDRs)
	}
	for i, c := range res.CIDRs {
		if c != want[i] {
			t.Fatalf("block %d: got %s want %s", i, c, want[i])
		}
	}
}

func TestDifferenceUntouchedFamily(t *testing.T) {
	// subtracting v4 space must not affect v6 ranges in A
	res := Difference("10.0.0.0/24\n2001:db8::/64", "10.0.0.0/24", DecomposeExact, 0)
	if len(res.CIDRs) != 1 || res.CIDRs[0] != "2001:db8::/64" {
		t.Fatalf("unexpected result %v", res.CIDRs)
	}
}

func TestContainmentScenario(t *testing.T) {
	res := Containment("192.168.1.0/24", "192.168.1.0/25\n192.168.2.0/25\n192.168.0.0-192.168.1.127", true)
	if len(res.Items) != 3 {
		t.Fatalf("expected 3 items, got %v", res.Items)
	}
	inside := res.Items[0]
	if inside.Status != "inside" || inside.Percent != "100.0" || inside.Match == "" {
		t.Fatalf("unexpected inside item %+v", inside)
	}
	outside := res.Items[1]
	if outside.Status != "outside" || outside.Percent != "0.0" {
		t.Fatalf("unexpected outside item %+v", outside)
	}
	partial := res.Items[2]
	if partial.Status != "partial" {
		t.Fatalf("unexpected partial item %+v", partial)
	}
	if len(partial.Gaps) == 0 {
		t.Fatalf("partial item should list gap CIDRs")
	}
}
