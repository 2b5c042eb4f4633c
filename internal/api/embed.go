package api

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
)

//go:embed templates/page.html.tmpl
var pageFS embed.FS

//go:embed templates/guide.md
var guideMarkdown []byte

var pageTemplate = template.Must(template.ParseFS(pageFS, "templates/page.html.tmpl"))

// renderGuide converts the usage guide to HTML.
func renderGuide() (template.HTML, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert(guideMarkdown, &buf); err != nil {
		return "", fmt.Errorf("render guide: %w", err)
	}
	// The guide is embedded at build time, not user input.
	return template.HTML(buf.String()), nil
}
