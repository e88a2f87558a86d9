package format

import (
	"strings"
)

// Printer manages formatting state and output
type Printer struct {
	output  strings.Builder
	indent  int    // Current indentation level
	unit    string // One level of indentation
	linePos int    // Current position in the current line
}

// NewPrinter creates a printer that indents with IndentString
func NewPrinter() *Printer {
	return &Printer{unit: IndentString}
}

func newTreePrinter() *Printer {
	return &Printer{unit: TreeIndent}
}

// String returns the formatted output
func (p *Printer) String() string {
	return p.output.String()
}

// Reset clears the printer state for reuse
func (p *Printer) Reset() {
	p.output.Reset()
	p.indent = 0
	p.linePos = 0
}

// write appends a string to the output and updates line position
func (p *Printer) write(s string) {
	p.output.WriteString(s)
	if idx := strings.LastIndex(s, "\n"); idx >= 0 {
		p.linePos = len(s) - idx - 1
	} else {
		p.linePos += len(s)
	}
}

// line writes one indented line
func (p *Printer) line(s string) {
	p.writeIndent()
	p.write(s)
	p.newline()
}

func (p *Printer) newline() {
	p.output.WriteString("\n")
	p.linePos = 0
}

func (p *Printer) writeIndent() {
	p.write(strings.Repeat(p.unit, p.indent))
}

func (p *Printer) indentInc() {
	p.indent++
}

func (p *Printer) indentDec() {
	if p.indent > 0 {
		p.indent--
	}
}

// currentIndentWidth returns the current indentation width in characters
func (p *Printer) currentIndentWidth() int {
	if p.unit == IndentString {
		return p.indent * IndentWidth
	}
	return p.indent * len(p.unit)
}

// wouldFitOnLine checks if a string would fit starting from indent position
func (p *Printer) wouldFitOnLine(s string) bool {
	if strings.Contains(s, "\n") {
		return false
	}
	return p.currentIndentWidth()+len(s) <= MaxLineWidth
}
