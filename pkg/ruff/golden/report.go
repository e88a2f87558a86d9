package golden

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

const reportHead = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Ruff golden tests</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.25em 0.75em; text-align: left; }
pre { background: #f6f6f6; padding: 0.5em; }
</style>
</head>
<body>
`

const reportTail = `</body>
</html>
`

// Markdown renders summary as a Markdown document
func Markdown(summary *Summary) string {
	var sb strings.Builder

	sb.WriteString("# Golden tests\n\n")
	fmt.Fprintf(&sb, "Passed **%d/%d** tests in %s.\n\n", summary.Passed, summary.Total, summary.Duration.Round(time.Millisecond))

	if len(summary.Results) == 0 {
		sb.WriteString("No fixtures found.\n")
		return sb.String()
	}

	sb.WriteString("| Fixture | Status | Duration |\n")
	sb.WriteString("|---|---|---|\n")
	for _, res := range summary.Results {
		fmt.Fprintf(&sb, "| `%s` | %s | %s |\n", escapeCell(res.Path), status(res), res.Duration.Round(time.Microsecond))
	}

	for _, res := range summary.Results {
		if res.Passed {
			continue
		}
		fmt.Fprintf(&sb, "\n## %s\n\n", res.Name)
		sb.WriteString("Expected:\n\n")
		writeFence(&sb, res.Expected)
		sb.WriteString("\nGot:\n\n")
		writeFence(&sb, res.Got)
	}
	return sb.String()
}

// RenderReport writes summary to w as a standalone HTML page
func RenderReport(summary *Summary, w io.Writer) error {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithXHTML()),
	)

	var body bytes.Buffer
	if err := md.Convert([]byte(Markdown(summary)), &body); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	if _, err := io.WriteString(w, reportHead); err != nil {
		return err
	}
	if _, err := body.WriteTo(w); err != nil {
		return err
	}
	_, err := io.WriteString(w, reportTail)
	return err
}

// WriteReport renders summary as HTML into the file at path
func WriteReport(summary *Summary, path string) error {
	var buf bytes.Buffer
	if err := RenderReport(summary, &buf); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func status(res Result) string {
	switch {
	case !res.Passed:
		return "✗ failed"
	case res.Updated:
		return "✓ updated"
	default:
		return "✓ passed"
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// writeFence writes text as a fenced code block long enough not to be
// closed by backticks inside text
func writeFence(sb *strings.Builder, text string) {
	fence := "```"
	for strings.Contains(text, fence) {
		fence += "`"
	}
	sb.WriteString(fence)
	sb.WriteString("\n")
	if text != "" {
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	sb.WriteString(fence)
	sb.WriteString("\n")
}
