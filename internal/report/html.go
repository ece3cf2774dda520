package report

import (
	_ "embed"
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed style.css
var styleCSS string

var (
	reDimensionsHeading = regexp.MustCompile(`(?i)<h2([^>]*)>\s*Dimension Assessments\s*</h2>`)
	reDegradedHeading   = regexp.MustCompile(`<h3([^>]*)>([^<]*\(unavailable\))</h3>`)
)

// HTML converts a markdown report into a standalone HTML document.
func HTML(markdown, title string) (string, error) {
	var content strings.Builder
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert([]byte(markdown), &content); err != nil {
		return "", fmt.Errorf("markdown convert: %w", err)
	}
	if strings.TrimSpace(title) == "" {
		title = "Quote Comparison"
	}
	return "<!doctype html><html><head><meta charset='utf-8'><title>" + html.EscapeString(title) + "</title>" +
		"<style>" + styleCSS + "</style></head><body><article class='report'>" +
		applyPrintLayoutHooks(content.String()) +
		"</article></body></html>", nil
}

func applyPrintLayoutHooks(contentHTML string) string {
	out := reDimensionsHeading.ReplaceAllString(contentHTML, `<h2$1 data-page-break-before="true">Dimension Assessments</h2>`)
	return reDegradedHeading.ReplaceAllString(out, `<h3$1 data-degraded="true">$2</h3>`)
}
