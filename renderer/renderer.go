// Package renderer turns replay results into markdown reports.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templates embed.FS

// RenderSnapshot renders one date's holdings and balances to markdown.
func RenderSnapshot(s *Snapshot) string {
	partials := map[string]string{
		"snapshot_holdings": "snapshot_holdings.md",
		"snapshot_balances": "snapshot_balances.md",
	}
	return renderTemplate("snapshot", "snapshot.md", partials, s)
}

// RenderCheck renders the reconciliation check report to markdown.
func RenderCheck(c *Check) string {
	return renderTemplate("check", "check.md", nil, c)
}

// RenderTrades renders the per-security trading summary to markdown.
func RenderTrades(tr *Trades) string {
	partials := map[string]string{
		"trades_profits": "trades_profits.md",
	}
	return renderTemplate("trades", "trades.md", partials, tr)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, "templates/"+file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
