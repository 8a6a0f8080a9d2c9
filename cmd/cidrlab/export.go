package main

import (
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"
)

type ExportRun struct {
	ID        int64    `json:"id" yaml:"id"`
	Tool      string   `json:"tool" yaml:"tool"`
	Input     string   `json:"input" yaml:"input"`
	Options   string   `json:"options" yaml:"options"`
	Output    []string `json:"output" yaml:"output"`
	Stats     string   `json:"stats" yaml:"stats"`
	Warnings  []string `json:"warnings" yaml:"warnings"`
	Errors    []string `json:"errors" yaml:"errors"`
	CreatedAt string   `json:"created_at" yaml:"created_at"`
}

type WorksheetBundle struct {
	Worksheets []ExportWorksheet `json:"worksheets" yaml:"worksheets"`
}

type ExportWorksheet struct {
	Tool    string `json:"tool" yaml:"tool"`
	Name    string `json:"name" yaml:"name"`
	Body    string `json:"body" yaml:"body"`
	Options string `json:"options" yaml:"options"`
}

func exportRun(run Run) ExportRun {
	return ExportRun{
		ID:        run.ID,
		Tool:      run.Tool,
		Input:     run.Input,
		Options:   run.Options,
		Output:    splitLines(run.Output),
		Stats:     run.Stats,
		Warnings:  splitLines(run.Warnings),
		Errors:    splitLines(run.Errors),
		CreatedAt: run.CreatedAt,
	}
}

func splitLines(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(strings.TrimRight(raw, "\n"), "\n")
}

func runFilename(run Run, ext string) string {
	return "cidrlab_" + run.Tool + "_" + itoa64(run.ID) + "." + ext
}

func exportRunJSON(c *gin.Context, run Run) error {
	out, err := json.MarshalIndent(exportRun(run), "", "  ")
	if err != nil {
		return err
	}
	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+runFilename(run, "json"))
	c.String(200, string(out))
	return nil
}

func exportRunYAML(c *gin.Context, run Run) error {
	out, err := yaml.Marshal(exportRun(run))
	if err != nil {
		return err
	}
	c.Header("Content-Type", "application/x-yaml; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+runFilename(run, "yaml"))
	c.Data(http.StatusOK, "application/x-yaml; charset=utf-8", out)
	return nil
}

func exportRunCSV(c *gin.Context, run Run) error {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename="+runFilename(run, "csv"))
	w := csv.NewWriter(c.Writer)
	if err := w.Write([]string{"kind", "value"}); err != nil {
		return err
	}
	for _, line := range splitLines(run.Output) {
		_ = w.Write([]string{"result", line})
	}
	for _, line := range splitLines(run.Warnings) {
		_ = w.Write([]string{"warning", line})
	}
	for _, line := range splitLines(run.Errors) {
		_ = w.Write([]string{"error", line})
	}
	_ = w.Write([]string{"stats", run.Stats})
	w.Flush()
	return w.Error()
}

func exportRunXLSX(c *gin.Context, run Run) error {
	f := excelize.NewFile()
	resultSheet := "Result"
	f.SetSheetName("Sheet1", resultSheet)
	writeSheetRows(f, resultSheet, buildRunResultSheet(run))

	inputSheet := "Input"
	f.NewSheet(inputSheet)
	writeSheetRows(f, inputSheet, buildRunInputSheet(run))

	buf, err := f.WriteToBuffer()
	if err != nil {
		return err
	}
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename="+runFilename(run, "xlsx"))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
	return nil
}

func buildRunResultSheet(run Run) [][]interface{} {
	rows := [][]interface{}{{"#", "Result"}}
	for i, line := range splitLines(run.Output) {
		rows = append(rows, []interface{}{i + 1, line})
	}
	rows = append(rows, []interface{}{"", ""})
	for _, line := range splitLines(run.Warnings) {
		rows = append(rows, []interface{}{"warning", line})
	}
	for _, line := range splitLines(run.Errors) {
		rows = append(rows, []interface{}{"error", line})
	}
	rows = append(rows, []interface{}{"stats", run.Stats})
	return rows
}

func buildRunInputSheet(run Run) [][]interface{} {
	rows := [][]interface{}{
		{"Tool", run.Tool},
		{"Options", run.Options},
		{"Created", run.CreatedAt},
		{"", ""},
		{"Input", ""},
	}
	for _, line := range splitLines(run.Input) {
		rows = append(rows, []interface{}{"", line})
	}
	return rows
}

func writeSheetRows(f *excelize.File, sheet string, rows [][]interface{}) {
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		_ = f.SetSheetRow(sheet, cell, &row)
	}
}

func exportWorksheetsYAML(c *gin.Context, db *sql.DB) error {
	sheets, err := listWorksheets(db, "")
	if err != nil {
		return err
	}
	bundle := WorksheetBundle{}
	for _, w := range sheets {
		bundle.Worksheets = append(bundle.Worksheets, ExportWorksheet{
			Tool:    w.Tool,
			Name:    w.Name,
			Body:    w.Body,
			Options: w.Options,
		})
	}
	out, err := yaml.Marshal(bundle)
	if err != nil {
		return err
	}
	c.Header("Content-Type", "application/x-yaml; charset=utf-8")
	c.Header("Content-Disposition", "attachment; filename=cidrlab_worksheets.yaml")
	c.Data(http.StatusOK, "application/x-yaml; charset=utf-8", out)
	return nil
}

func importWorksheetsYAML(db *sql.DB, body []byte) (int, error) {
	var bundle WorksheetBundle
	if err := yaml.Unmarshal(body, &bundle); err != nil {
		return 0, err
	}
	imported := 0
	for _, w := range bundle.Worksheets {
		tool := strings.TrimSpace(w.Tool)
		name := strings.TrimSpace(w.Name)
		if !validTool(tool) || name == "" {
			continue
		}
		if err := saveWorksheet(db, tool, name, w.Body, strings.TrimSpace(w.Options)); err != nil {
			continue
		}
		imported++
	}
	return imported, nil
}
