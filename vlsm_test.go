// Copyright (c) 2025 Berik Ashimov

package cidrlab

import "testing"

func TestAllocateVLSMFitBest(t *testing.T) {
	res := AllocateVLSM("10.0.0.0/24", []SubnetRequest{
		{Name: "voice", Hosts: 10},
		{Name: "users", Hosts: 100},
		{Name: "printers", Hosts: 50},
	}, StrategyFitBest)
	if len(res.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	if len(res.Placements) != 3 {
		t.Fatalf("expected 3 placements, got %v", res.Placements)
	}
	want := map[string]string{
		"users":    "10.0.0.0/25",
		"printers": "10.0.0.128/26",
		"voice":    "10.0.0.192/28",
	}
	for _, p := range res.Placements {
		if want[p.Name] != p.CIDR {
			t.Fatalf("placement %s: got %s want %s", p.Name, p.CIDR, want[p.Name])
		}
	}
	// largest request first
	if res.Placements[0].Name != "users" {
		t.Fatalf("expected users placed first, got %s", res.Placements[0].Name)
	}
	wantFree := []string{"10.0.0.208/28", "10.0.0.224/27"}
	if len(res.FreeCIDRs) != len(wantFree) {
		t.Fatalf("unexpected free blocks %v", res.FreeCIDRs)
	}
	for i, cidr := range res.FreeCIDRs {
		if cidr != wantFree[i] {
			t.Fatalf("free block %d: got %s want %s", i, cidr, wantFree[i])
		}
	}
}

func TestAllocateVLSMPreserveOrder(t *testing.T) {
	res := AllocateVLSM("10.0.0.0/24", []SubnetRequest{
		{Name: "small", Hosts: 10},
		{Name: "big", Hosts: 100},
	}, StrategyPreserveOrder)
	if len(res.Placements) != 2 {
		t.Fatalf("expected 2 placements, got %v", res.Placements)
	}
	if res.Placements[0].CIDR != "10.0.0.0/28" {
		t.Fatalf("unexpected first placement %s", res.Placements[0].CIDR)
	}
	// /25 must skip to the next aligned boundary after the /28
	if res.Placements[1].CIDR != "10.0.0.128/25" {
		t.Fatalf("unexpected second placement %s", res.Placements[1].CIDR)
	}
}

func TestAllocateVLSMExhaustion(t *testing.T) {
	res := AllocateVLSM("10.0.0.0/24", []SubnetRequest{
		{Name: "a", Hosts: 100},
		{Name: "b", Hosts: 100},
		{Name: "c", Hosts: 100},
	}, StrategyFitBest)
	if len(res.Placements) != 2 {
		t.Fatalf("expected 2 placements, got %v", res.Placements)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected one allocation warning, got %v", res.Warnings)
	}
}

func TestAllocateVLSMBadParent(t *testing.T) {
	res := AllocateVLSM("not-a-cidr", nil, StrategyFitBest)
	if len(res.Errors) != 1 {
		t.Fatalf("expected parse error, got %v", res.Errors)
	}
}

func TestHostsToPrefix(t *testing.T) {
	cases := []struct {
		hosts  int
		prefix int
	}{
		{100, 25},
		{50, 26},
		{10, 28},
		{1, 30},
		{61, 26},
		{62, 25},
	}
	for _, c := range cases {
		if got := hostsToPrefix(c.hosts); got != c.prefix {
			t.Fatalf("hosts %d: got /%d want /%d", c.hosts, got, c.prefix)
		}
	}
}

func TestParseRequests(t *testing.T) {
	reqs, errs := ParseRequests("users, 100\nuplink, /30\n\ndmz 25\n")
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requests, got %v", reqs)
	}
	if reqs[0].Hosts != 100 || reqs[1].Prefix != 30 || reqs[2].Hosts != 25 {
		t.Fatalf("unexpected requests %v", reqs)
	}
	if len(errs) != 0 {
		t.Fatalf("unexpected errors %v", errs)
	}

	_, errs = ParseRequests("onlyname\nok, 10\n")
	if len(errs) != 1 || errs[0].Line != 1 {
		t.Fatalf("expected one error on line 1, got %v", errs)
	}
}
