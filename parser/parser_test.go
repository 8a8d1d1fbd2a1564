package parser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pascalc/ast"
	"pascalc/diagnostics"
)

func newTestParser(code string) (*Parser, *diagnostics.Counters, *bool) {
	var out bytes.Buffer
	counters := &diagnostics.Counters{}
	reporter := diagnostics.New(&out, false, counters)
	exited := false
	reporter.Exit = func(int) { exited = true }
	return New(code, reporter), counters, &exited
}

func TestParseMinimalProgram(t *testing.T) {
	p, _, exited := newTestParser(`PROGRAM Hello;
BEGIN
  WRITELN('hi')
END.`)
	prog := p.ParseProgram()
	require.False(t, *exited)
	assert.Equal(t, "HELLO", prog.Name)
	list, ok := prog.Body.Body.(ast.StatementList)
	require.True(t, ok)
	assert.Len(t, list.Statements, 1)
}

func TestEmptyStatementListIsFatal(t *testing.T) {
	p, counters, exited := newTestParser(`PROGRAM Hello;
BEGIN
END.`)
	p.ParseProgram()
	assert.True(t, *exited)
	assert.Equal(t, 0, counters.Errors)
}

func TestEmptyRepeatBodyIsFatal(t *testing.T) {
	p, _, exited := newTestParser(`PROGRAM P;
VAR X: INTEGER;
BEGIN
  REPEAT UNTIL X = 0
END.`)
	p.ParseProgram()
	assert.True(t, *exited)
}

func TestParseConstAndVarSections(t *testing.T) {
	p, _, exited := newTestParser(`PROGRAM P;
CONST
  LIMIT = 10;
VAR
  X, Y: INTEGER;
  NAME: STRING;
BEGIN
  X := LIMIT
END.`)
	prog := p.ParseProgram()
	require.False(t, *exited)
	require.Len(t, prog.Body.Constants, 1)
	assert.Equal(t, "LIMIT", prog.Body.Constants[0].Name)
	require.Len(t, prog.Body.Variables, 3)
	assert.Equal(t, "X", prog.Body.Variables[0].Name)
	assert.Equal(t, ast.Integer, prog.Body.Variables[0].Type.Kind)
	assert.Equal(t, "NAME", prog.Body.Variables[2].Name)
	assert.Equal(t, ast.Stryng, prog.Body.Variables[2].Type.Kind)
}

func TestParseAssignmentAndArithmetic(t *testing.T) {
	p, _, exited := newTestParser(`PROGRAM P;
VAR X: INTEGER;
BEGIN
  X := 1 + 2 * 3
END.`)
	prog := p.ParseProgram()
	require.False(t, *exited)
	list := prog.Body.Body.(ast.StatementList)
	assign, ok := list.Statements[0].(ast.Assignment)
	require.True(t, ok)
	assert.Equal(t, "X", assign.Name)
	se := assign.Value.Operand1
	require.Len(t, se.Operands, 2)
	assert.Equal(t, []string{"+"}, se.Operators)
	require.Len(t, se.Operands[1].Operands, 2)
	assert.Equal(t, []string{"*"}, se.Operands[1].Operators)
}

func TestParseIfWhileForRepeat(t *testing.T) {
	p, _, exited := newTestParser(`PROGRAM P;
VAR X: INTEGER;
BEGIN
  IF X > 0 THEN X := 1 ELSE X := 2;
  WHILE X < 10 DO X := X + 1;
  FOR X := 1 TO 10 DO X := X;
  REPEAT X := X - 1 UNTIL X = 0
END.`)
	prog := p.ParseProgram()
	require.False(t, *exited)
	list := prog.Body.Body.(ast.StatementList)
	require.Len(t, list.Statements, 4)
	ifs, ok := list.Statements[0].(ast.IfStatement)
	require.True(t, ok)
	assert.True(t, ifs.HasElse)
	_, ok = list.Statements[1].(ast.WhileLoop)
	assert.True(t, ok)
	forLoop, ok := list.Statements[2].(ast.ForLoop)
	require.True(t, ok)
	assert.True(t, forLoop.Ascending)
	_, ok = list.Statements[3].(ast.RepeatLoop)
	assert.True(t, ok)
}

func TestParseProcedureCallAndReadCall(t *testing.T) {
	p, _, exited := newTestParser(`PROGRAM P;
VAR X: INTEGER;
BEGIN
  WRITELN(X);
  READLN(X)
END.`)
	prog := p.ParseProgram()
	require.False(t, *exited)
	list := prog.Body.Body.(ast.StatementList)
	call, ok := list.Statements[0].(ast.ProcedureCall)
	require.True(t, ok)
	assert.Equal(t, "WRITELN", call.Name)
	read, ok := list.Statements[1].(ast.ReadCall)
	require.True(t, ok)
	assert.True(t, read.Newline)
	assert.Equal(t, []string{"X"}, read.Names)
}

func TestReadWithoutParensIsFatal(t *testing.T) {
	p, _, exited := newTestParser(`PROGRAM P;
VAR X: INTEGER;
BEGIN
  READ
END.`)
	func() {
		defer func() { _ = recover() }()
		p.ParseProgram()
	}()
	assert.True(t, *exited)
}

func TestParseArrayTypeAndIndexing(t *testing.T) {
	p, _, exited := newTestParser(`PROGRAM P;
VAR A: ARRAY[1..10] OF INTEGER;
BEGIN
  A[1] := 5
END.`)
	prog := p.ParseProgram()
	require.False(t, *exited)
	assert.Equal(t, ast.ArrayKind, prog.Body.Variables[0].Type.Kind)
	list := prog.Body.Body.(ast.StatementList)
	elem, ok := list.Statements[0].(ast.ElementAssignment)
	require.True(t, ok)
	assert.Equal(t, "A", elem.Name)
}

func TestUnicodeAliasesFoldToASCIIOperators(t *testing.T) {
	p, _, exited := newTestParser(`PROGRAM P;
VAR X: BOOLEAN;
BEGIN
  X := ¬(1 ≤ 2) ∧ (2 ≥ 1)
END.`)
	prog := p.ParseProgram()
	require.False(t, *exited)

	list := prog.Body.Body.(ast.StatementList)
	assign := list.Statements[0].(ast.Assignment)
	term := assign.Value.Operand1.Operands[0]
	assert.Equal(t, []string{"AND"}, term.Operators)

	neg, ok := term.Operands[0].(ast.NegatedFactor)
	require.True(t, ok)
	paren, ok := neg.Operand.(ast.Parenthetical)
	require.True(t, ok)
	assert.Equal(t, "<=", paren.Inner.Operator)

	paren2, ok := term.Operands[1].(ast.Parenthetical)
	require.True(t, ok)
	assert.Equal(t, ">=", paren2.Inner.Operator)
}

func TestReservedWordAsIdentifierIsFatal(t *testing.T) {
	p, _, exited := newTestParser(`PROGRAM P;
CONST
  DIV = 1;
BEGIN
END.`)
	func() {
		defer func() { _ = recover() }()
		p.ParseProgram()
	}()
	assert.True(t, *exited)
}
