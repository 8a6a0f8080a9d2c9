// Copyright (c) 2025 Berik Ashimov

package main

import (
	"database/sql"
	"strings"
	"testing"

	_ "modernc.org/sqlite"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestSmokeRunHistory(t *testing.T) {
	db := openTestDB(t)

	id, err := saveRun(db, RunView{
		Tool:     "summarize",
		Input:    "10.0.0.0/25\n10.0.0.128/25",
		Options:  "mode=exact",
		Output:   "10.0.0.0/24",
		Stats:    "inputs=2 cidrs=1 addresses=256",
		Warnings: nil,
		Errors:   nil,
	})
	if err != nil {
		t.Fatalf("save run: %v", err)
	}
	if id <= 0 {
		t.Fatalf("expected run id, got %d", id)
	}

	run, ok := runByID(db, id)
	if !ok {
		t.Fatalf("run %d not found", id)
	}
	if run.Tool != "summarize" || run.Output != "10.0.0.0/24" {
		t.Fatalf("unexpected run %+v", run)
	}

	runs, err := listRuns(db, "summarize", 10)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(runs))
	}
	if runs, _ := listRuns(db, "vlsm", 10); len(runs) != 0 {
		t.Fatalf("tool filter leaked: %v", runs)
	}

	if err := clearRuns(db, "summarize"); err != nil {
		t.Fatalf("clear runs: %v", err)
	}
	if runs, _ := listRuns(db, "", 10); len(runs) != 0 {
		t.Fatalf("expected empty history, got %v", runs)
	}
}

func TestWorksheetRoundTrip(t *testing.T) {
	db := openTestDB(t)

	if err := saveWorksheet(db, "vlsm", "branch", "users, 100\nvoice, 20", "strategy=fit-best"); err != nil {
		t.Fatalf("save worksheet: %v", err)
	}
	// same tool+name overwrites
	if err := saveWorksheet(db, "vlsm", "branch", "users, 120", "strategy=fit-best"); err != nil {
		t.Fatalf("update worksheet: %v", err)
	}

	sheets, err := listWorksheets(db, "vlsm")
	if err != nil {
		t.Fatalf("list worksheets: %v", err)
	}
	if len(sheets) != 1 {
		t.Fatalf("expected 1 worksheet, got %d", len(sheets))
	}
	if sheets[0].Body != "users, 120" {
		t.Fatalf("expected updated body, got %q", sheets[0].Body)
	}

	w, ok := worksheetByID(db, sheets[0].ID)
	if !ok || w.Name != "branch" {
		t.Fatalf("worksheet lookup failed: %+v", w)
	}

	if err := deleteWorksheet(db, w.ID); err != nil {
		t.Fatalf("delete worksheet: %v", err)
	}
	if sheets, _ := listWorksheets(db, ""); len(sheets) != 0 {
		t.Fatalf("expected no worksheets, got %v", sheets)
	}
}

func TestWorksheetBundleImport(t *testing.T) {
	db := openTestDB(t)

	bundle := strings.Join([]string{
		"worksheets:",
		"  - tool: summarize",
		"    name: offices",
		"    body: 10.0.0.0/24",
		"    options: mode=exact",
		"  - tool: nonsense",
		"    name: skipped",
		"    body: x",
	}, "\n")
	imported, err := importWorksheetsYAML(db, []byte(bundle))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imported != 1 {
		t.Fatalf("expected 1 imported, got %d", imported)
	}
	sheets, _ := listWorksheets(db, "summarize")
	if len(sheets) != 1 || sheets[0].Name != "offices" {
		t.Fatalf("unexpected worksheets %v", sheets)
	}
}

func TestTemplatesParse(t *testing.T) {
	names := []string{"summarize", "difference", "containment", "vlsm", "freespace", "history", "worksheets"}
	for _, name := range names {
		if _, err := loadTemplate(name); err != nil {
			t.Fatalf("template %s: %v", name, err)
		}
	}
}
