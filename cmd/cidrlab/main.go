package main

import (
	"database/sql"
	"embed"
	"html/template"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	_ "modernc.org/sqlite"

	"cidrlab"
)

//go:embed web/templates/*.gohtml
var tmplFS embed.FS

//go:embed migrations/*.sql
var migFS embed.FS

//go:embed assets/*
var assetFS embed.FS

var tmplCache sync.Map

var toolNames = []string{"summarize", "difference", "containment", "vlsm", "freespace"}

func mustEnv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func sqliteDSN(raw string) string {
	if strings.Contains(raw, "_pragma=foreign_keys") {
		return raw
	}
	sep := "?"
	if strings.Contains(raw, "?") {
		sep = "&"
	}
	return raw + sep + "_pragma=foreign_keys(1)"
}

func main() {
	dbPath := mustEnv("DB_PATH", "./cidrlab.sqlite")
	listen := mustEnv("LISTEN_ADDR", "0.0.0.0:8080")

	db, err := sql.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := migrate(db); err != nil {
		log.Fatal(err)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	assetSub, err := fs.Sub(assetFS, "assets")
	if err != nil {
		log.Fatal(err)
	}
	r.StaticFS("/assets", http.FS(assetSub))

	r.GET("/healthz", func(c *gin.Context) { c.String(200, "ok") })
	r.GET("/", func(c *gin.Context) { c.Redirect(302, "/summarize") })

	// Summarize
	r.GET("/summarize", func(c *gin.Context) {
		render(c, "summarize", toolData(c, db, "summarize"))
	})
	r.POST("/summarize", func(c *gin.Context) {
		input := c.PostForm("input")
		mode := parseMode(c.PostForm("mode"))
		res := cidrlab.Summarize(input, mode)
		finishRun(c, db, RunView{
			Tool:     "summarize",
			Input:    input,
			Options:  "mode=" + modeLabel(mode),
			Output:   strings.Join(res.CIDRs, "\n"),
			Stats:    "inputs=" + itoa(res.InputCount) + " cidrs=" + itoa(res.OutputCount) + " addresses=" + res.Addresses,
			Warnings: res.Warnings,
			Errors:   parseErrorStrings(res.Errors),
		})
	})

	// Difference
	r.GET("/difference", func(c *gin.Context) {
		render(c, "difference", toolData(c, db, "difference"))
	})
	r.POST("/difference", func(c *gin.Context) {
		minuend := c.PostForm("minuend")
		subtrahend := c.PostForm("subtrahend")
		mode := parseMode(c.PostForm("mode"))
		prefix := atoiDefault(c.PostForm("constrained_prefix"), 0)
		if mode == cidrlab.DecomposeConstrained && prefix == 0 {
			mode = cidrlab.DecomposeExact
		}
		res := cidrlab.Difference(minuend, subtrahend, mode, prefix)
		finishRun(c, db, RunView{
			Tool:     "difference",
			Input:    "A:\n" + minuend + "\nB:\n" + subtrahend,
			Options:  "mode=" + modeLabel(mode) + constrainedOption(mode, prefix),
			Output:   strings.Join(res.CIDRs, "\n"),
			Stats:    "minuend=" + res.MinuendSize + " result=" + res.ResultSize,
			Warnings: res.Warnings,
			Errors:   parseErrorStrings(res.Errors),
		})
	})

	// Containment
	r.GET("/containment", func(c *gin.Context) {
		render(c, "containment", toolData(c, db, "containment"))
	})
	r.POST("/containment", func(c *gin.Context) {
		containers := c.PostForm("containers")
		candidates := c.PostForm("candidates")
		mergeContainers := c.PostForm("merge_containers") != ""
		res := cidrlab.Containment(containers, candidates, mergeContainers)
		var lines []string
		for _, item := range res.Items {
			line := item.Input + "\t" + item.Status + "\t" + item.Percent + "%"
			if item.Match != "" {
				line += "\tin " + item.Match
			}
			if len(item.Gaps) > 0 {
				line += "\tgaps: " + strings.Join(item.Gaps, ", ")
			}
			lines = append(lines, line)
		}
		finishRun(c, db, RunView{
			Tool:        "containment",
			Input:       "containers:\n" + containers + "\ncandidates:\n" + candidates,
			Options:     "merge_containers=" + strconv.FormatBool(mergeContainers),
			Output:      strings.Join(lines, "\n"),
			Stats:       "candidates=" + itoa(len(res.Items)),
			Warnings:    res.Warnings,
			Errors:      parseErrorStrings(res.Errors),
			Containment: res.Items,
		})
	})

	// VLSM
	r.GET("/vlsm", func(c *gin.Context) {
		render(c, "vlsm", toolData(c, db, "vlsm"))
	})
	r.POST("/vlsm", func(c *gin.Context) {
		parent := strings.TrimSpace(c.PostForm("parent"))
		requestsText := c.PostForm("requests")
		strategy := c.PostForm("strategy")
		if strategy != cidrlab.StrategyPreserveOrder {
			strategy = cidrlab.StrategyFitBest
		}
		requests, reqErrs := cidrlab.ParseRequests(requestsText)
		res := cidrlab.AllocateVLSM(parent, requests, strategy)
		var lines []string
		for _, p := range res.Placements {
			lines = append(lines, p.Name+"\t"+p.CIDR)
		}
		finishRun(c, db, RunView{
			Tool:       "vlsm",
			Input:      "parent: " + parent + "\n" + requestsText,
			Options:    "strategy=" + strategy,
			Output:     strings.Join(lines, "\n"),
			Stats:      "placed=" + itoa(len(res.Placements)) + " free=" + itoa(len(res.FreeCIDRs)),
			Warnings:   res.Warnings,
			Errors:     parseErrorStrings(append(reqErrs, res.Errors...)),
			Placements: res.Placements,
			FreeCIDRs:  res.FreeCIDRs,
		})
	})

	// Free space
	r.GET("/freespace", func(c *gin.Context) {
		render(c, "freespace", toolData(c, db, "freespace"))
	})
	r.POST("/freespace", func(c *gin.Context) {
		pools := c.PostForm("pools")
		allocations := c.PostForm("allocations")
		prefix := atoiDefault(c.PostForm("target_prefix"), 24)
		policy := c.PostForm("policy")
		if policy != cidrlab.PolicyBestFit {
			policy = cidrlab.PolicyFirstFit
		}
		maxCandidates := atoiDefault(c.PostForm("max_candidates"), 0)
		res := cidrlab.FindFree(pools, allocations, prefix, policy, maxCandidates)
		var lines []string
		for _, cand := range res.Candidates {
			lines = append(lines, cand.CIDR+"\t(gap "+cand.Gap+")")
		}
		finishRun(c, db, RunView{
			Tool:       "freespace",
			Input:      "pools:\n" + pools + "\nallocations:\n" + allocations,
			Options:    "prefix=/" + itoa(prefix) + " policy=" + policy,
			Output:     strings.Join(lines, "\n"),
			Stats:      "candidates=" + itoa(len(res.Candidates)) + " free_blocks=" + itoa(len(res.FreeCIDRs)),
			Warnings:   res.Warnings,
			Errors:     parseErrorStrings(res.Errors),
			Candidates: res.Candidates,
			FreeCIDRs:  res.FreeCIDRs,
		})
	})

	// History
	r.GET("/history", func(c *gin.Context) {
		tool := strings.TrimSpace(c.Query("tool"))
		runs, err := listRuns(db, tool, 100)
		if err != nil {
			c.String(500, err.Error())
			return
		}
		data := pageData("history")
		data["Runs"] = runs
		data["Tool"] = tool
		render(c, "history", data)
	})
	r.GET("/history/export", func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.Query("id"), 10, 64)
		run, ok := runByID(db, id)
		if !ok {
			c.String(404, "run not found")
			return
		}
		var err error
		switch c.Query("format") {
		case "xlsx":
			err = exportRunXLSX(c, run)
		case "csv":
			err = exportRunCSV(c, run)
		case "yaml":
			err = exportRunYAML(c, run)
		default:
			err = exportRunJSON(c, run)
		}
		if err != nil {
			c.String(500, err.Error())
		}
	})
	r.POST("/history/clear", func(c *gin.Context) {
		_ = clearRuns(db, strings.TrimSpace(c.PostForm("tool")))
		c.Redirect(302, "/history")
	})

	// Worksheets
	r.GET("/worksheets", func(c *gin.Context) {
		sheets, err := listWorksheets(db, "")
		if err != nil {
			c.String(500, err.Error())
			return
		}
		data := pageData("worksheets")
		data["Worksheets"] = sheets
		render(c, "worksheets", data)
	})
	r.POST("/worksheets", func(c *gin.Context) {
		tool := strings.TrimSpace(c.PostForm("tool"))
		name := strings.TrimSpace(c.PostForm("name"))
		body := c.PostForm("body")
		options := strings.TrimSpace(c.PostForm("options"))
		returnTo := strings.TrimSpace(c.PostForm("return_to"))
		if validTool(tool) && name != "" {
			_ = saveWorksheet(db, tool, name, body, options)
		}
		if strings.HasPrefix(returnTo, "/") {
			c.Redirect(302, returnTo)
			return
		}
		c.Redirect(302, "/worksheets")
	})
	r.POST("/worksheets/delete", func(c *gin.Context) {
		id, _ := strconv.ParseInt(c.PostForm("id"), 10, 64)
		_ = deleteWorksheet(db, id)
		c.Redirect(302, "/worksheets")
	})
	r.GET("/worksheets/export", func(c *gin.Context) {
		if err := exportWorksheetsYAML(c, db); err != nil {
			c.String(500, err.Error())
		}
	})
	r.POST("/worksheets/import", func(c *gin.Context) {
		file, err := c.FormFile("bundle")
		if err != nil {
			c.Redirect(302, "/worksheets")
			return
		}
		f, err := file.Open()
		if err != nil {
			c.Redirect(302, "/worksheets")
			return
		}
		defer f.Close()
		if body, err := io.ReadAll(f); err == nil {
			_, _ = importWorksheetsYAML(db, body)
		}
		c.Redirect(302, "/worksheets")
	})

	log.Printf("listening on http://%s", listen)
	if err := r.Run(listen); err != nil {
		log.Fatal(err)
	}
}

func validTool(tool string) bool {
	for _, name := range toolNames {
		if name == tool {
			return true
		}
	}
	return false
}

func parseMode(raw string) cidrlab.DecomposeMode {
	switch strings.TrimSpace(raw) {
	case "minimal-cover":
		return cidrlab.DecomposeMinimalCover
	case "constrained":
		return cidrlab.DecomposeConstrained
	default:
		return cidrlab.DecomposeExact
	}
}

func modeLabel(mode cidrlab.DecomposeMode) string {
	switch mode {
	case cidrlab.DecomposeMinimalCover:
		return "minimal-cover"
	case cidrlab.DecomposeConstrained:
		return "constrained"
	default:
		return "exact"
	}
}

func constrainedOption(mode cidrlab.DecomposeMode, prefix int) string {
	if mode != cidrlab.DecomposeConstrained {
		return ""
	}
	return " prefix=/" + itoa(prefix)
}

func parseErrorStrings(errs []cidrlab.ParseError) []string {
	out := make([]string, 0, len(errs))
	for i := range errs {
		out = append(out, errs[i].Error())
	}
	return out
}

func pageData(active string) gin.H {
	return gin.H{"Active": active}
}

func toolData(c *gin.Context, db *sql.DB, tool string) gin.H {
	data := pageData(tool)
	if sheets, err := listWorksheets(db, tool); err == nil {
		data["Worksheets"] = sheets
	}
	if runs, err := listRuns(db, tool, 5); err == nil {
		data["RecentRuns"] = runs
	}
	if id, _ := strconv.ParseInt(c.Query("worksheet"), 10, 64); id > 0 {
		if sheet, ok := worksheetByID(db, id); ok && sheet.Tool == tool {
			data["Prefill"] = sheet
		}
	}
	return data
}

func finishRun(c *gin.Context, db *sql.DB, view RunView) {
	if id, err := saveRun(db, view); err == nil {
		view.ID = id
	}
	data := pageData(view.Tool)
	data["Result"] = view
	render(c, view.Tool, data)
}

func render(c *gin.Context, name string, data gin.H) {
	tmpl, err := loadTemplate(name)
	if err != nil {
		c.String(500, err.Error())
		return
	}
	c.Status(http.StatusOK)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(c.Writer, "layout", data); err != nil {
		c.String(500, err.Error())
	}
}

func loadTemplate(name string) (*template.Template, error) {
	if cached, ok := tmplCache.Load(name); ok {
		return cached.(*template.Template), nil
	}
	files := []string{
		"web/templates/layout.gohtml",
		"web/templates/" + name + ".gohtml",
	}
	tmpl, err := template.New("").ParseFS(tmplFS, files...)
	if err != nil {
		return nil, err
	}
	tmplCache.Store(name, tmpl)
	return tmpl, nil
}

func atoiDefault(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}

func itoa(i int) string { return strconv.Itoa(i) }

func itoa64(i int64) string { return strconv.FormatInt(i, 10) }
