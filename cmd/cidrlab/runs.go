package main

import (
	"database/sql"
	"strings"
	"time"

	"cidrlab"
)

// RunView carries one calculator invocation: the persisted columns plus
// the structured results the page renders directly.
type RunView struct {
	ID        int64
	Tool      string
	Input     string
	Options   string
	Output    string
	Stats     string
	Warnings  []string
	Errors    []string
	CreatedAt string

	Containment []cidrlab.ContainmentItem
	Placements  []cidrlab.Placement
	Candidates  []cidrlab.FreeCandidate
	FreeCIDRs   []string
}

type Run struct {
	ID        int64
	Tool      string
	Input     string
	Options   string
	Output    string
	Stats     string
	Warnings  string
	Errors    string
	CreatedAt string
}

type Worksheet struct {
	ID        int64
	Tool      string
	Name      string
	Body      string
	Options   string
	UpdatedAt string
}

func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func saveRun(db *sql.DB, view RunView) (int64, error) {
	res, err := db.Exec(`
		INSERT INTO runs(tool, input, options, output, stats, warnings, errors, created_at)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?)`,
		view.Tool, view.Input, view.Options, view.Output, view.Stats,
		strings.Join(view.Warnings, "\n"), strings.Join(view.Errors, "\n"), nowUTC(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func listRuns(db *sql.DB, tool string, limit int) ([]Run, error) {
	query := `
		SELECT id, tool, input, options, output, stats, warnings, errors, created_at
		FROM runs
	`
	var args []any
	if tool != "" {
		query += " WHERE tool=?"
		args = append(args, tool)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Tool, &r.Input, &r.Options, &r.Output, &r.Stats, &r.Warnings, &r.Errors, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func runByID(db *sql.DB, id int64) (Run, bool) {
	var r Run
	err := db.QueryRow(`
		SELECT id, tool, input, options, output, stats, warnings, errors, created_at
		FROM runs WHERE id=?`, id,
	).Scan(&r.ID, &r.Tool, &r.Input, &r.Options, &r.Output, &r.Stats, &r.Warnings, &r.Errors, &r.CreatedAt)
	if err != nil {
		return Run{}, false
	}
	return r, true
}

func clearRuns(db *sql.DB, tool string) error {
	if tool != "" {
		_, err := db.Exec(`DELETE FROM runs WHERE tool=?`, tool)
		return err
	}
	_, err := db.Exec(`DELETE FROM runs`)
	return err
}

func saveWorksheet(db *sql.DB, tool, name, body, options string) error {
	_, err := db.Exec(`
		INSERT INTO worksheets(tool, name, body, options, updated_at)
		VALUES(?, ?, ?, ?, ?)
		ON CONFLICT(tool, name) DO UPDATE SET
			body=excluded.body,
			options=excluded.options,
			updated_at=excluded.updated_at`,
		tool, name, body, options, nowUTC(),
	)
	return err
}

func listWorksheets(db *sql.DB, tool string) ([]Worksheet, error) {
	query := `SELECT id, tool, name, body, COALESCE(options, ''), updated_at FROM worksheets`
	var args []any
	if tool != "" {
		query += " WHERE tool=?"
		args = append(args, tool)
	}
	query += " ORDER BY tool, name"
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Worksheet
	for rows.Next() {
		var w Worksheet
		if err := rows.Scan(&w.ID, &w.Tool, &w.Name, &w.Body, &w.Options, &w.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func worksheetByID(db *sql.DB, id int64) (Worksheet, bool) {
	var w Worksheet
	err := db.QueryRow(`
		SELECT id, tool, name, body, COALESCE(options, ''), updated_at
		FROM worksheets WHERE id=?`, id,
	).Scan(&w.ID, &w.Tool, &w.Name, &w.Body, &w.Options, &w.UpdatedAt)
	if err != nil {
		return Worksheet{}, false
	}
	return w, true
}

func deleteWorksheet(db *sql.DB, id int64) error {
	_, err := db.Exec(`DELETE FROM worksheets WHERE id=?`, id)
	return err
}
