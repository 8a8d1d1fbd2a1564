package compiler

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"pascalc/ast"
	"pascalc/diagnostics"
)

func newTestGenerator() *generator {
	var out bytes.Buffer
	reporter := diagnostics.New(&out, false, &diagnostics.Counters{})
	return newGenerator("", reporter)
}

func TestEvaluateTypePromotions(t *testing.T) {
	g := newTestGenerator()
	_ = g

	assert.Equal(t, ast.Integer, evaluateType(ast.Type{Kind: ast.Integer}, ast.Type{Kind: ast.Integer}).Kind)
	assert.Equal(t, ast.Real, evaluateType(ast.Type{Kind: ast.Integer}, ast.Type{Kind: ast.Real}).Kind)
	assert.Equal(t, ast.Real, evaluateType(ast.Type{Kind: ast.Real}, ast.Type{Kind: ast.Integer}).Kind)
	assert.Equal(t, ast.Char, evaluateType(ast.Type{Kind: ast.Integer}, ast.Type{Kind: ast.Char}).Kind)
	assert.Equal(t, ast.Undefined, evaluateType(ast.Type{Kind: ast.Boolean}, ast.Type{Kind: ast.Stryng}).Kind)
}

func TestFormatFloatDropsTrailingZero(t *testing.T) {
	assert.Equal(t, "5", formatFloat(5.0))
	assert.Equal(t, "5.25", formatFloat(5.25))
	assert.Equal(t, "-1.3", formatFloat(-1.3))
}

func TestNegatedFactorAsymmetry(t *testing.T) {
	g := newTestGenerator()

	// Preserved defect (spec §9 item 1): constant Integer NOT is bitwise
	// complement, constant Boolean NOT flips.
	intResult := g.evaluateNegatedFactor(ast.NegatedFactor{
		Operand: ast.ConstantFactor{Value: ast.UnsignedInteger{Value: 5}},
	}, nil, nil)
	assert.Equal(t, "-6", intResult.Constant)

	consts := map[string]constEntry{"TRUE": {Value: "true", Type: ast.Type{Kind: ast.Boolean}}}
	boolResult := g.evaluateNegatedFactor(ast.NegatedFactor{
		Operand: ast.Identifier{Name: "TRUE"},
	}, nil, consts)
	assert.Equal(t, "false", boolResult.Constant)
}

func TestAbsConstantRealTreatsZeroAsNegative(t *testing.T) {
	g := newTestGenerator()
	arg := ast.Identifier{Name: "ABS", Args: []ast.Expression{
		exprOfConstant(ast.UnsignedReal{Value: 0.0}),
	}}
	result := g.evaluateAbsBuiltin(arg, nil, nil)
	assert.Equal(t, "-0", result.Constant)
}

func TestFoldTermDivOnRealWarnsAndFoldsAsDivision(t *testing.T) {
	g := newTestGenerator()
	lhs := constReal(6.0)
	rhs := constReal(3.0)
	result := g.foldTerm(lhs, rhs, "DIV", ast.Type{Kind: ast.Real}, ast.Span{})
	assert.Equal(t, "2", result.Constant)
	assert.Equal(t, 1, g.reporter.Counters.Warnings)
}

func TestRequestLabelDedupsAcrossCalls(t *testing.T) {
	g := newTestGenerator()
	id1 := g.requestLabel(".string \"hi\"")
	id2 := g.requestLabel(".string \"hi\"")
	assert.Equal(t, id1, id2)
	assert.Equal(t, 1, g.rodataTbl.Len())
}

func TestRelCompare(t *testing.T) {
	result, ok := relCompare(1.0, 2.0, "<")
	assert.True(t, ok)
	assert.Equal(t, "true", result)

	_, ok = relCompare(1.0, 2.0, "BOGUS")
	assert.False(t, ok)
}

func exprOfConstant(u ast.UnsignedConstant) ast.Expression {
	factor := ast.ConstantFactor{Value: u}
	term := ast.Term{Operands: []ast.Factor{factor}}
	simple := ast.SimpleExpression{Positive: true, Operands: []ast.Term{term}}
	return ast.Expression{Operand1: simple}
}
