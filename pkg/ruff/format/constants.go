// Package format renders parsed Ruff programs: Source prints them back as
// consistently indented source and Tree prints an indented dump of the AST
// nodes, as shown by `ruff ast`.
package format

// Indentation - gofmt style: tabs for source, two spaces for tree dumps
const (
	TabWidth     = 4
	IndentWidth  = TabWidth
	IndentString = "\t"
	TreeIndent   = "  "
)

// Line width - a block whose one-line form fits stays on one line
const MaxLineWidth = 92

// Structure
const (
	BlankLinesBetweenDefs = 1 // Blank lines around top-level func and struct declarations
)
