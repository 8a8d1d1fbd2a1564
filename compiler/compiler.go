// The compiler-package contains the core of our compiler.
//
// In brief we go through a three-step process:
//
//  1.  Parse the source into an AST, reporting any syntax errors along
//      the way.
//
//  2.  Resolve the program's CONST and VAR sections into constant values
//      and stack offsets.
//
//  3.  Walk the AST once, generating AT&T-syntax x86-64 assembly for
//      each statement and expression as it is encountered.
//
// There is no intermediate form between the AST and the assembly text:
// the generator emits directly as it walks (§4.3). The one piece of
// bookkeeping this requires is a table of interned rodata literals
// (floats and strings), so that the same literal doesn't get written to
// the .rodata section twice.
package compiler

import (
	"pascalc/ast"
	"pascalc/diagnostics"
	"pascalc/parser"
)

// Compiler holds our object-state.
type Compiler struct {

	// code holds the program source we're compiling.
	code string

	// reporter is where diagnostics (syntax errors, type errors,
	// warnings) are sent as they are discovered during parsing and
	// codegen.
	reporter *diagnostics.Reporter
}

//
// Our public API consists of the two functions:
//  New
//  Compile
//
// The rest of the code is an implementation detail.
//

// New creates a new compiler, given the program source and a diagnostics
// reporter to send errors and warnings to.
func New(code string, reporter *diagnostics.Reporter) *Compiler {
	return &Compiler{code: code, reporter: reporter}
}

// Compile parses the program and converts it into AMD64 assembly
// language, in AT&T syntax. The returned string is only meaningful
// when the reporter's error counter is still zero afterwards; callers
// should check that before writing the result anywhere.
func (c *Compiler) Compile() string {
	//
	// Parse the program into an AST. A syntax error here calls the
	// reporter's Exit hook (os.Exit(1) by default), so if we get back
	// here the parse succeeded structurally even if it reported
	// errors/warnings along the way.
	//
	p := parser.New(c.code, c.reporter)
	prog := p.ParseProgram()

	//
	// Walk the AST once, generating assembly directly.
	//
	gen := newGenerator(c.code, c.reporter)
	return gen.compileProgram(prog)
}

// Program exposes the parsed AST for callers that want to inspect the
// program without generating assembly (used by tests).
func (c *Compiler) Program() *ast.Program {
	p := parser.New(c.code, c.reporter)
	return p.ParseProgram()
}
