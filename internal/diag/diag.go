// Package diag formats and accumulates the compiler's diagnostics
// (spec §7): each carries an error kind, an optional source position,
// and a message, rendered as "[line.col] message" or "[?] message"
// when the position is absent.
package diag

import (
	"fmt"
	"strings"

	"github.com/javalette-lang/jtc/internal/token"
)

// Kind classifies a diagnostic by the pipeline stage and condition
// that raised it.
type Kind int

const (
	LexError Kind = iota
	ParseError
	TypeMismatch
	ArityMismatch
	ReferenceBeforeAssignment
	InspectError
	MissingReturn
	CompileError
	AssembleError
	LinkError
)

var kindNames = map[Kind]string{
	LexError:                  "LexError",
	ParseError:                "ParseError",
	TypeMismatch:              "TypeMismatch",
	ArityMismatch:             "ArityMismatch",
	ReferenceBeforeAssignment: "ReferenceBeforeAssignment",
	InspectError:              "InspectError",
	MissingReturn:             "MissingReturn",
	CompileError:              "CompileError",
	AssembleError:             "AssembleError",
	LinkError:                 "LinkError",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Diagnostic is a single compiler error or warning, carrying an
// optional source position.
type Diagnostic struct {
	Kind    Kind
	Pos     token.Position
	Message string
}

// New builds a Diagnostic.
func New(kind Kind, pos token.Position, message string) *Diagnostic {
	return &Diagnostic{Kind: kind, Pos: pos, Message: message}
}

// Error implements the error interface with the mandated
// "[line.col] message" rendering (spec §7).
func (d *Diagnostic) Error() string {
	return fmt.Sprintf("[%s] %s", d.Pos, d.Message)
}

// Bag accumulates diagnostics across a pipeline stage so semantic
// analysis can report every error from a run instead of aborting on
// the first (spec §7: "semantic errors are collected").
type Bag struct {
	diags []*Diagnostic
}

// Add appends a diagnostic.
func (b *Bag) Add(kind Kind, pos token.Position, message string) {
	b.diags = append(b.diags, New(kind, pos, message))
}

// Addf appends a diagnostic with a formatted message.
func (b *Bag) Addf(kind Kind, pos token.Position, format string, args ...interface{}) {
	b.Add(kind, pos, fmt.Sprintf(format, args...))
}

// HasErrors reports whether any diagnostic was collected.
func (b *Bag) HasErrors() bool { return len(b.diags) > 0 }

// All returns the accumulated diagnostics in report order.
func (b *Bag) All() []*Diagnostic { return b.diags }

// Format renders every diagnostic, one per line, in report order —
// the shape the driver writes to stderr before aborting (spec §7).
func Format(diags []*Diagnostic) string {
	lines := make([]string, len(diags))
	for i, d := range diags {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "\n")
}
