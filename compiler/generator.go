// Single-pass codegen: the generator walks an *ast.Program once and emits
// AT&T-syntax x86-64 assembly directly, with no intermediate form (§4.3).
//
// Every expression-level helper (evaluateFactor, evaluateTerm, ...) returns
// an evalResult: either a runtime Snippet that leaves its value in the
// conventional register for its Type, or a Constant printable literal that
// has not been materialized into any register yet. Constant folding happens
// host-side, in Go, whenever both operands of an operator are still
// constant; the first non-constant operand forces everything above it in
// the expression tree onto the runtime path.
//
// This is ported line-for-line from original_source/src/x86_64_compiler.rs,
// which is the authority for every instruction sequence, register
// convention, and the (intentional) rough edges noted inline and in
// DESIGN.md.
package compiler

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"pascalc/ast"
	"pascalc/diagnostics"
	"pascalc/rodata"
	"pascalc/token"
)

// evalResult is the result of compiling one expression-tree node.
//
// Exactly one of Snippet/Constant is meaningful, selected by IsConst: a
// constant result carries a printable literal (e.g. "3", "9223372036854775807",
// "hello") that the caller may still need to fold further or eventually
// materialize; a non-constant result carries assembly text that leaves the
// value in %rax/%al/%xmm0 per Type, per §4.3's register convention.
type evalResult struct {
	Snippet  string
	Constant string
	Type     ast.Type
	IsConst  bool
}

func undefinedResult() evalResult {
	return evalResult{Type: ast.Type{Kind: ast.Undefined}}
}

func constInt(n int64) evalResult {
	return evalResult{Constant: strconv.FormatInt(n, 10), Type: ast.Type{Kind: ast.Integer}, IsConst: true}
}

func constReal(f float64) evalResult {
	return evalResult{Constant: formatFloat(f), Type: ast.Type{Kind: ast.Real}, IsConst: true}
}

func constBool(b bool) evalResult {
	return evalResult{Constant: strconv.FormatBool(b), Type: ast.Type{Kind: ast.Boolean}, IsConst: true}
}

// formatFloat mirrors Rust's default f64 Display: the shortest decimal
// representation that round-trips, with no trailing ".0" for whole numbers.
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func mustInt(v evalResult) int64 {
	n, _ := strconv.ParseInt(v.Constant, 10, 64)
	return n
}

func mustReal(v evalResult) float64 {
	f, _ := strconv.ParseFloat(v.Constant, 64)
	return f
}

func mustBool(v evalResult) bool {
	b, _ := strconv.ParseBool(v.Constant)
	return b
}

func mustByte(v evalResult) int64 {
	n, _ := strconv.ParseInt(v.Constant, 10, 64)
	return n
}

// constEntry is a resolved CONST declaration: a printable literal together
// with its folded type.
type constEntry struct {
	Value string
	Type  ast.Type
}

// varEntry is a resolved VAR declaration: its %rbp-relative stack offset
// and type. For arrays the offset already has the declared lower bound
// folded in, so a raw declared index addresses the right slot directly
// (§4.3 "Array addressing").
type varEntry struct {
	Offset int64
	Type   ast.Type
}

// generator carries the state shared across one compile: the diagnostics
// sink, the interned rodata table, and the monotonic label counter shared
// between control-flow labels and rodata labels (both emitted as l<id>),
// per request_label in x86_64_compiler.rs.
type generator struct {
	src       string
	reporter  *diagnostics.Reporter
	rodataTbl *rodata.Table
	labelNext uint32
}

func newGenerator(src string, reporter *diagnostics.Reporter) *generator {
	return &generator{src: src, reporter: reporter, rodataTbl: rodata.New()}
}

func (g *generator) report(span ast.Span, message string, class diagnostics.Class) {
	g.reporter.Report(g.src, span.Start, span.End, message, class)
}

func (g *generator) nextLabel() uint32 {
	id := g.labelNext
	g.labelNext++
	return id
}

// requestLabel interns value, sharing the control-flow label counter, and
// returns the label id to use both in the .rodata entry and any reference
// to it.
func (g *generator) requestLabel(value string) uint32 {
	if id, ok := g.rodataTbl.Lookup(value); ok {
		return id
	}
	id := g.nextLabel()
	g.rodataTbl.Insert(id, value)
	return id
}

// materializeConstant emits the instructions that load a still-constant
// value into the conventional register for its type.
func (g *generator) materializeConstant(value string, typ ast.Type) string {
	switch typ.Kind {
	case ast.Integer:
		// MAXINT's stored literal is itself "$"-prefixed (see
		// buildConstantMap), so this can legitimately emit "$$..." for
		// MAXINT. Preserved rather than special-cased; see DESIGN.md.
		return fmt.Sprintf("\tmovq\t$%s, %%rax\n", value)
	case ast.Char:
		return fmt.Sprintf("\tmovb\t$%s, %%al\n", value)
	case ast.Boolean:
		b := "0"
		if value == "true" {
			b = "1"
		}
		return fmt.Sprintf("\tmovb\t$%s, %%al\n", b)
	case ast.Real:
		label := g.requestLabel(".double " + value)
		return fmt.Sprintf("\tmovsd\tl%d(%%rip), %%xmm0\n", label)
	case ast.Stryng:
		label := g.requestLabel(fmt.Sprintf(".string \"%s\"", value))
		return fmt.Sprintf("\tleaq\tl%d(%%rip), %%rax\n", label)
	case ast.Undefined:
		// poison: the error was already reported, there is nothing to load
		return ""
	default:
		panic("Unsupported type")
	}
}

// evaluateType applies the promotion rules of §4.3: equal types unify,
// Integer/Real promotes to Real, Integer/Char promotes to Char, any other
// mismatch is Undefined.
func evaluateType(t1, t2 ast.Type) ast.Type {
	if t1.Equal(t2) {
		return t1
	}
	if (t1.Kind == ast.Integer && t2.Kind == ast.Real) || (t1.Kind == ast.Real && t2.Kind == ast.Integer) {
		return ast.Type{Kind: ast.Real}
	}
	if (t1.Kind == ast.Integer && t2.Kind == ast.Char) || (t1.Kind == ast.Char && t2.Kind == ast.Integer) {
		return ast.Type{Kind: ast.Char}
	}
	return ast.Type{Kind: ast.Undefined}
}

// --- factors ---

func (g *generator) evaluateFactor(f ast.Factor, vars map[string]varEntry, consts map[string]constEntry) evalResult {
	switch v := f.(type) {
	case ast.ConstantFactor:
		return g.evaluateUnsignedConstant(v)
	case ast.Parenthetical:
		return g.evaluateExpression(v.Inner, vars, consts)
	case ast.NegatedFactor:
		return g.evaluateNegatedFactor(v, vars, consts)
	case ast.Identifier:
		return g.evaluateIdentifierFactor(v, vars, consts)
	case ast.ArrayIndex:
		return g.evaluateArrayIndexFactor(v, vars, consts)
	case ast.List:
		// Set displays parse but have no codegen; preserved as a panic
		// rather than a diagnostic, like the original (spec §9 item 3).
		panic("Failed to compile factor. Possible use of list.")
	default:
		panic("unrecognized factor")
	}
}

func (g *generator) evaluateUnsignedConstant(cf ast.ConstantFactor) evalResult {
	switch u := cf.Value.(type) {
	case ast.UnsignedInteger:
		return evalResult{Constant: strconv.FormatUint(u.Value, 10), Type: ast.Type{Kind: ast.Integer}, IsConst: true}
	case ast.UnsignedReal:
		return evalResult{Constant: formatFloat(u.Value), Type: ast.Type{Kind: ast.Real}, IsConst: true}
	case ast.Quote:
		return evalResult{Constant: u.Value, Type: ast.Type{Kind: ast.Stryng}, IsConst: true}
	case ast.CharLit:
		return evalResult{Constant: strconv.Itoa(int(u.Value)), Type: ast.Type{Kind: ast.Char}, IsConst: true}
	case ast.Nil:
		g.report(cf.Spn, "Invalid value in expression", diagnostics.Error)
		return undefinedResult()
	default:
		panic("unrecognized unsigned constant")
	}
}

// evaluateNegatedFactor implements NOT. Its asymmetry is deliberate and
// preserved from the original: the constant Integer path bitwise-complements
// (^n) while the runtime Integer path emits notq — both are "bitwise NOT" so
// they agree; but a constant Boolean simply flips true/false while the
// runtime Boolean path does a subb/negb dance. See spec §9 item 1.
func (g *generator) evaluateNegatedFactor(nf ast.NegatedFactor, vars map[string]varEntry, consts map[string]constEntry) evalResult {
	sub := g.evaluateFactor(nf.Operand, vars, consts)
	span := nf.Spn
	if sub.IsConst {
		switch sub.Type.Kind {
		case ast.Boolean:
			return constBool(!mustBool(sub))
		case ast.Integer:
			return constInt(^mustInt(sub))
		default:
			g.report(span, "Invalid use of NOT", diagnostics.Error)
			return undefinedResult()
		}
	}
	switch sub.Type.Kind {
	case ast.Boolean:
		return evalResult{Snippet: sub.Snippet + "\tsubb\t$1, %al\n\tnegb\t%al\n", Type: ast.Type{Kind: ast.Boolean}}
	case ast.Integer:
		return evalResult{Snippet: sub.Snippet + "\tnotq\t%rax\n", Type: ast.Type{Kind: ast.Integer}}
	default:
		g.report(span, "Invalid use of NOT", diagnostics.Error)
		return undefinedResult()
	}
}

func (g *generator) evaluateIdentifierFactor(id ast.Identifier, vars map[string]varEntry, consts map[string]constEntry) evalResult {
	switch id.Name {
	case token.Ord:
		return g.evaluateOrd(id, vars, consts)
	case token.Chr:
		return g.evaluateChr(id, vars, consts)
	case token.Sqrt:
		return g.evaluateSqrt(id, vars, consts)
	case token.Sqr:
		return g.evaluateSqr(id, vars, consts)
	case token.Abs:
		return g.evaluateAbsBuiltin(id, vars, consts)
	}
	if len(id.Args) > 0 {
		// User-defined functions are out of scope; like unknown-identifier
		// lookups this dies rather than reporting (spec §9 item 4).
		panic("Failed to compile function call.")
	}
	if entry, ok := consts[id.Name]; ok {
		return evalResult{Constant: entry.Value, Type: entry.Type, IsConst: true}
	}
	if id.Name == token.EOF {
		return g.loadLocation("eof(%rip)", ast.Type{Kind: ast.Boolean}, id.Spn)
	}
	v, ok := vars[id.Name]
	if !ok {
		// Preserved defect (spec §9 item 4): an unrecognized identifier
		// panics the compiler instead of reporting a diagnostic.
		panic(fmt.Sprintf("Unrecognized identifier: %s", id.Name))
	}
	return g.loadLocation(fmt.Sprintf("-%d(%%rbp)", v.Offset), v.Type, id.Spn)
}

func (g *generator) loadLocation(location string, typ ast.Type, span ast.Span) evalResult {
	switch typ.Kind {
	case ast.Boolean, ast.Char:
		return evalResult{Snippet: fmt.Sprintf("\tmovb\t%s, %%al\n", location), Type: typ}
	case ast.Integer, ast.Stryng:
		return evalResult{Snippet: fmt.Sprintf("\tmovq\t%s, %%rax\n", location), Type: typ}
	case ast.Real:
		return evalResult{Snippet: fmt.Sprintf("\tmovsd\t%s, %%xmm0\n", location), Type: typ}
	default:
		g.report(span, "Unsupported type used", diagnostics.Error)
		return undefinedResult()
	}
}

func parseNumericConstant(v evalResult) float64 {
	if v.Type.Kind == ast.Integer {
		return float64(mustInt(v))
	}
	return mustReal(v)
}

func (g *generator) evaluateOrd(id ast.Identifier, vars map[string]varEntry, consts map[string]constEntry) evalResult {
	if len(id.Args) != 1 {
		g.report(id.Spn, "Expected 1 argument", diagnostics.Error)
		return evalResult{Type: ast.Type{Kind: ast.Integer}}
	}
	arg := g.evaluateExpression(id.Args[0], vars, consts)
	if arg.Type.Kind != ast.Char && arg.Type.Kind != ast.Undefined {
		g.report(id.Spn, "Expected char as argument", diagnostics.Error)
	}
	if arg.IsConst {
		return evalResult{Constant: arg.Constant, Type: ast.Type{Kind: ast.Integer}, IsConst: true}
	}
	// sign-extend the char byte in %al up to the full %rax
	return evalResult{Snippet: arg.Snippet + "\tcbtw\n\tcwtl\n\tcltq\n", Type: ast.Type{Kind: ast.Integer}}
}

func (g *generator) evaluateChr(id ast.Identifier, vars map[string]varEntry, consts map[string]constEntry) evalResult {
	if len(id.Args) != 1 {
		g.report(id.Spn, "Expected 1 argument", diagnostics.Error)
		return evalResult{Type: ast.Type{Kind: ast.Char}}
	}
	arg := g.evaluateExpression(id.Args[0], vars, consts)
	if arg.Type.Kind != ast.Integer {
		g.report(id.Spn, "Expected integer as argument", diagnostics.Error)
	}
	return evalResult{Snippet: arg.Snippet, Constant: arg.Constant, Type: ast.Type{Kind: ast.Char}, IsConst: arg.IsConst}
}

func (g *generator) evaluateSqrt(id ast.Identifier, vars map[string]varEntry, consts map[string]constEntry) evalResult {
	if len(id.Args) != 1 {
		g.report(id.Spn, "Expected 1 argument", diagnostics.Error)
		return evalResult{Type: ast.Type{Kind: ast.Real}}
	}
	arg := g.evaluateExpression(id.Args[0], vars, consts)
	out := arg
	out.Type = ast.Type{Kind: ast.Real}
	switch {
	case arg.IsConst && (arg.Type.Kind == ast.Integer || arg.Type.Kind == ast.Real):
		out.Constant = formatFloat(math.Sqrt(parseNumericConstant(arg)))
	case arg.IsConst:
		// Keeps the (unusable) constant value, as the original does.
		g.report(id.Spn, "Expected integer or real as argument", diagnostics.Error)
	case arg.Type.Kind == ast.Integer:
		out.Snippet += "\tcvtsi2sd %rax, %xmm0\n\tcall\tsqrt\n"
	case arg.Type.Kind == ast.Real:
		out.Snippet += "\tcall\tsqrt\n"
	default:
		g.report(id.Spn, "Expected integer or real as argument", diagnostics.Error)
	}
	return out
}

func (g *generator) evaluateSqr(id ast.Identifier, vars map[string]varEntry, consts map[string]constEntry) evalResult {
	if len(id.Args) != 1 {
		g.report(id.Spn, "Expected 1 argument", diagnostics.Error)
		return evalResult{Type: ast.Type{Kind: ast.Real}}
	}
	arg := g.evaluateExpression(id.Args[0], vars, consts)
	if arg.IsConst {
		switch arg.Type.Kind {
		case ast.Integer:
			n := mustInt(arg)
			return constInt(n * n)
		case ast.Real:
			f := mustReal(arg)
			return constReal(f * f)
		default:
			g.report(id.Spn, "Expected integer or real as argument", diagnostics.Error)
			return undefinedResult()
		}
	}
	switch arg.Type.Kind {
	case ast.Integer:
		return evalResult{Snippet: arg.Snippet + "\tmovq\t%rax, %rdx\n\timulq\t%rdx\n", Type: ast.Type{Kind: ast.Integer}}
	case ast.Real:
		return evalResult{Snippet: arg.Snippet + "\tmulsd\t%xmm0, %xmm0\n", Type: ast.Type{Kind: ast.Real}}
	default:
		g.report(id.Spn, "Expected integer or real as argument", diagnostics.Error)
		return undefinedResult()
	}
}

func (g *generator) evaluateAbsBuiltin(id ast.Identifier, vars map[string]varEntry, consts map[string]constEntry) evalResult {
	if len(id.Args) != 1 {
		g.report(id.Spn, "Expected 1 argument", diagnostics.Error)
		return evalResult{Type: ast.Type{Kind: ast.Real}}
	}
	arg := g.evaluateExpression(id.Args[0], vars, consts)
	if arg.IsConst {
		switch arg.Type.Kind {
		case ast.Integer:
			n := mustInt(arg)
			if n < 0 {
				n = -n
			}
			return constInt(n)
		case ast.Real:
			f := mustReal(arg)
			// Mirrors the original's ">0.0 keep, else negate" test
			// exactly, including f == 0.0 landing in the negate arm.
			if !(f > 0.0) {
				f = -f
			}
			return constReal(f)
		default:
			g.report(id.Spn, "Expected integer or real as argument", diagnostics.Error)
			return undefinedResult()
		}
	}
	switch arg.Type.Kind {
	case ast.Integer:
		return evalResult{Snippet: arg.Snippet + "\tmovq\t%rax, %rdi\n\tcall\tabs\n", Type: ast.Type{Kind: ast.Integer}}
	case ast.Real:
		return evalResult{Snippet: arg.Snippet + "\tcall\tfabs\n", Type: ast.Type{Kind: ast.Real}}
	default:
		g.report(id.Spn, "Expected integer or real as argument", diagnostics.Error)
		return undefinedResult()
	}
}

func (g *generator) evaluateArrayIndexFactor(ai ast.ArrayIndex, vars map[string]varEntry, consts map[string]constEntry) evalResult {
	v, ok := vars[ai.Name]
	if !ok {
		panic(fmt.Sprintf("Unrecognized identifier: %s", ai.Name))
	}
	switch v.Type.Kind {
	case ast.ArrayKind:
		idx := g.evaluateFinalExpression(ai.Index, vars, consts)
		if idx.Type.Kind != ast.Integer {
			g.report(ai.Spn, "Arrays must indexed with integer type", diagnostics.Error)
		}
		elem := *v.Type.Elem
		switch elem.Kind {
		case ast.Boolean, ast.Char:
			return evalResult{
				Snippet: fmt.Sprintf("%s\tmovq\t%%rax, %%rdx\n\tmovb\t-%d(%%rbp, %%rdx, 1), %%al\n", idx.Snippet, v.Offset),
				Type:    elem,
			}
		case ast.Integer, ast.Stryng:
			return evalResult{
				Snippet: fmt.Sprintf("%s\tmovq\t%%rax, %%rdx\n\tmovq\t-%d(%%rbp, %%rdx, 8), %%rax\n", idx.Snippet, v.Offset),
				Type:    elem,
			}
		case ast.Real:
			return evalResult{
				Snippet: fmt.Sprintf("%s\tmovsd\t-%d(%%rbp, %%rax, 8), %%xmm0\n", idx.Snippet, v.Offset),
				Type:    elem,
			}
		default:
			g.report(ai.Spn, "Unsupported type used", diagnostics.Error)
			return undefinedResult()
		}
	case ast.Stryng:
		idx := g.evaluateFinalExpression(ai.Index, vars, consts)
		if idx.Type.Kind != ast.Integer {
			g.report(ai.Spn, "Arrays must indexed with integer type", diagnostics.Error)
		}
		return evalResult{
			Snippet: fmt.Sprintf("%s\taddq\t-%d(%%rbp), %%rax\n\tdecq\t%%rax\n\tmovzbl\t(%%rax), %%eax\n", idx.Snippet, v.Offset),
			Type:    ast.Type{Kind: ast.Char},
		}
	default:
		g.report(ai.Spn, "Not an array or string type", diagnostics.Error)
		return undefinedResult()
	}
}

// evaluateFinalExpression evaluates expr and, if it's still constant,
// immediately materializes it into runtime form. Used wherever a value is
// about to be consumed directly (assignment RHS, indices, conditions) and
// can't be folded any further.
func (g *generator) evaluateFinalExpression(expr ast.Expression, vars map[string]varEntry, consts map[string]constEntry) evalResult {
	v := g.evaluateExpression(expr, vars, consts)
	if v.IsConst {
		return evalResult{Snippet: g.materializeConstant(v.Constant, v.Type), Type: v.Type}
	}
	return v
}

// --- terms ---

func (g *generator) evaluateTerm(term ast.Term, vars map[string]varEntry, consts map[string]constEntry) evalResult {
	acc := g.evaluateFactor(term.Operands[0], vars, consts)
	for i, op := range term.Operators {
		rhs := g.evaluateFactor(term.Operands[i+1], vars, consts)
		acc = g.combineTerm(acc, rhs, op, term.Span)
	}
	return acc
}

func (g *generator) combineTerm(lhs, rhs evalResult, op string, span ast.Span) evalResult {
	typ := evaluateType(lhs.Type, rhs.Type)
	if typ.Kind == ast.Undefined && lhs.Type.Kind != ast.Undefined && rhs.Type.Kind != ast.Undefined {
		g.report(span, "Mismatched types in term", diagnostics.Error)
		return evalResult{Type: ast.Type{Kind: ast.Undefined}, IsConst: true}
	}
	if lhs.IsConst && rhs.IsConst {
		return g.foldTerm(lhs, rhs, op, typ, span)
	}
	lv, rv := lhs, rhs
	if lv.IsConst {
		lv = evalResult{Snippet: g.materializeConstant(lv.Constant, lv.Type), Type: lv.Type}
	} else if rv.IsConst {
		rv = evalResult{Snippet: g.materializeConstant(rv.Constant, rv.Type), Type: rv.Type}
	}
	return g.emitTerm(lv, rv, op, typ, span)
}

func (g *generator) foldTerm(lhs, rhs evalResult, op string, typ ast.Type, span ast.Span) evalResult {
	switch {
	case typ.Kind == ast.Integer && op == "*":
		return constInt(mustInt(lhs) * mustInt(rhs))
	case typ.Kind == ast.Real && op == "*":
		return constReal(mustReal(lhs) * mustReal(rhs))
	case typ.Kind == ast.Integer && op == "DIV":
		return constInt(mustInt(lhs) / mustInt(rhs))
	case typ.Kind == ast.Real && op == "/":
		return constReal(mustReal(lhs) / mustReal(rhs))
	case typ.Kind == ast.Integer && op == "MOD":
		return constInt(mustInt(lhs) % mustInt(rhs))
	case typ.Kind == ast.Real && op == "MOD":
		return constReal(math.Mod(mustReal(lhs), mustReal(rhs)))
	case typ.Kind == ast.Integer && op == "AND":
		return constInt(mustInt(lhs) & mustInt(rhs))
	case typ.Kind == ast.Boolean && op == "AND":
		return constBool(mustBool(lhs) && mustBool(rhs))
	case typ.Kind == ast.Integer && op == "/":
		g.report(span, "/ is for reals. Did you mean DIV?", diagnostics.Warning)
		return constReal(float64(mustInt(lhs)) / float64(mustInt(rhs)))
	case typ.Kind == ast.Real && op == "DIV":
		// Preserved defect (spec §9 item 6): the original has a second,
		// unreachable match arm for the same (Real, "DIV") case
		// immediately below this one in x86_64_compiler.rs. Go's type
		// switch has no equivalent of a dead second arm, so only the
		// reachable effect is replicated: reported once, folded as a
		// real division like "/" would be.
		g.report(span, "DIV is for integers. Did you mean /?", diagnostics.Warning)
		return constReal(mustReal(lhs) / mustReal(rhs))
	default:
		return evalResult{Type: typ, IsConst: true}
	}
}

func (g *generator) emitTerm(lv, rv evalResult, op string, nominalType ast.Type, span ast.Span) evalResult {
	var out strings.Builder
	out.WriteString(rv.Snippet)
	if nominalType.Kind == ast.Real {
		switch {
		case lv.Type.Kind == ast.Integer:
			out.WriteString("\tsubq\t$8, %rsp\n\tmovsd\t%xmm0, (%rsp)\n")
			out.WriteString(lv.Snippet)
			out.WriteString("\tcvtsi2sd %rax, %xmm0\n\tmovsd\t(%rsp), %xmm1\n\taddq\t$8, %rsp\n")
		case rv.Type.Kind == ast.Integer:
			out.WriteString("\tpushq\t%rax\n")
			out.WriteString(lv.Snippet)
			out.WriteString("\tpopq\t%rax\n\tcvtsi2sd %rax, %xmm1\n")
		default:
			out.WriteString("\tsubq\t$8, %rsp\n\tmovsd\t%xmm0, (%rsp)\n")
			out.WriteString(lv.Snippet)
			out.WriteString("\tmovsd\t(%rsp), %xmm1\n\taddq\t$8, %rsp\n")
		}
	} else {
		out.WriteString("\tpushq\t%rax\n")
		out.WriteString(lv.Snippet)
		out.WriteString("\tpopq\t%rdx\n")
	}

	resultType := nominalType
	switch {
	case op == "*" && nominalType.Kind == ast.Integer:
		out.WriteString("\timulq\t%rdx\n")
	case op == "*" && nominalType.Kind == ast.Real:
		out.WriteString("\tmulsd\t%xmm1, %xmm0\n")
	case op == "DIV" && nominalType.Kind == ast.Integer:
		out.WriteString("\tmovq\t%rdx, %rcx\n\tmovq\t$0, %rdx\n\tidivq\t%rcx\n")
	case op == "/" && nominalType.Kind == ast.Integer:
		g.report(span, "/ is for reals. Did you mean DIV?", diagnostics.Warning)
		resultType = ast.Type{Kind: ast.Real}
		out.WriteString("\tcvtsi2sd %rax, %xmm0\n\tcvtsi2sd %rdx, %xmm1\n\tdivsd\t%xmm1, %xmm0\n")
	case op == "/" && nominalType.Kind == ast.Real:
		out.WriteString("\tdivsd\t%xmm1, %xmm0\n")
	case op == "DIV" && nominalType.Kind == ast.Real:
		g.report(span, "DIV is for integers. Did you mean /?", diagnostics.Warning)
		out.WriteString("\tdivsd\t%xmm1, %xmm0\n")
	case op == "MOD" && nominalType.Kind == ast.Integer:
		out.WriteString("\tmovq\t%rdx, %rcx\n\tmovq\t$0, %rdx\n\tidivq\t%rcx\n\tmovq\t%rdx, %rax\n")
	case op == "MOD" && nominalType.Kind == ast.Real:
		out.WriteString("\tcall\tfmod\n")
	case op == "AND" && nominalType.Kind == ast.Integer:
		out.WriteString("\tandq\t%rdx, %rax\n")
	case op == "AND" && nominalType.Kind == ast.Boolean:
		out.WriteString("\tandb\t%dl, %al\n")
	case nominalType.Kind == ast.Undefined:
		// already reported by combineTerm
	default:
		g.report(span, "Unrecognized operation in term", diagnostics.Error)
	}
	return evalResult{Snippet: out.String(), Type: resultType}
}

// --- simple expressions ---

func (g *generator) evaluateSimpleExpression(se ast.SimpleExpression, vars map[string]varEntry, consts map[string]constEntry) evalResult {
	acc := g.evaluateTerm(se.Operands[0], vars, consts)
	if !se.Positive {
		acc = g.negateValue(acc, se.Span)
	}
	for i, op := range se.Operators {
		rhs := g.evaluateTerm(se.Operands[i+1], vars, consts)
		acc = g.combineSimple(acc, rhs, op, se.Span)
	}
	return acc
}

func (g *generator) negateValue(v evalResult, span ast.Span) evalResult {
	if v.IsConst {
		// Unconditional, as in the original: no type check before
		// prepending "-" to the printable literal.
		return evalResult{Constant: "-" + v.Constant, Type: v.Type, IsConst: true}
	}
	switch v.Type.Kind {
	case ast.Integer:
		return evalResult{Snippet: v.Snippet + "\tnegq\t%rax\n", Type: v.Type}
	case ast.Real:
		return evalResult{
			Snippet: v.Snippet + "\tmovq\t$0x8000000000000000, %rax\n\tmovq\t%rax, %xmm2\n\txorpd\t%xmm2, %xmm0\n",
			Type:    v.Type,
		}
	case ast.Undefined:
		return v
	default:
		g.report(span, "Unrecognized attempt to negate first term", diagnostics.Error)
		return v
	}
}

func (g *generator) combineSimple(lhs, rhs evalResult, op string, span ast.Span) evalResult {
	typ := evaluateType(lhs.Type, rhs.Type)
	if typ.Kind == ast.Undefined && lhs.Type.Kind != ast.Undefined && rhs.Type.Kind != ast.Undefined {
		// The original reuses this exact message here too.
		g.report(span, "Mismatched types in term", diagnostics.Error)
		return evalResult{Type: ast.Type{Kind: ast.Undefined}, IsConst: true}
	}
	if lhs.IsConst && rhs.IsConst {
		return g.foldSimple(lhs, rhs, op, typ)
	}
	lv, rv := lhs, rhs
	if lv.IsConst {
		lv = evalResult{Snippet: g.materializeConstant(lv.Constant, lv.Type), Type: lv.Type}
	} else if rv.IsConst {
		rv = evalResult{Snippet: g.materializeConstant(rv.Constant, rv.Type), Type: rv.Type}
	}
	return g.emitSimple(lv, rv, op, typ, span)
}

func (g *generator) foldSimple(lhs, rhs evalResult, op string, typ ast.Type) evalResult {
	switch {
	case typ.Kind == ast.Integer && op == "+":
		return constInt(mustInt(lhs) + mustInt(rhs))
	case typ.Kind == ast.Real && op == "+":
		return constReal(mustReal(lhs) + mustReal(rhs))
	case typ.Kind == ast.Stryng && op == "+":
		return evalResult{Constant: lhs.Constant + rhs.Constant, Type: ast.Type{Kind: ast.Stryng}, IsConst: true}
	case typ.Kind == ast.Integer && op == "-":
		return constInt(mustInt(lhs) - mustInt(rhs))
	case typ.Kind == ast.Real && op == "-":
		return constReal(mustReal(lhs) - mustReal(rhs))
	case typ.Kind == ast.Integer && op == "OR":
		return constInt(mustInt(lhs) | mustInt(rhs))
	case typ.Kind == ast.Boolean && op == "OR":
		return constBool(mustBool(lhs) || mustBool(rhs))
	default:
		return evalResult{Type: typ, IsConst: true}
	}
}

func (g *generator) emitSimple(lv, rv evalResult, op string, nominalType ast.Type, span ast.Span) evalResult {
	var out strings.Builder
	out.WriteString(rv.Snippet)
	if nominalType.Kind == ast.Real {
		switch {
		case lv.Type.Kind == ast.Integer:
			out.WriteString("\tpushq\t%rax\n")
			out.WriteString(lv.Snippet)
			out.WriteString("\tpopq\t%rax\n\tcvtsi2sd %rax, %xmm1\n")
		case rv.Type.Kind == ast.Integer:
			out.WriteString(lv.Snippet)
			out.WriteString("\tcvtsi2sd %rax, %xmm1\n")
		default:
			out.WriteString("\tsubq\t$8, %rsp\n\tmovsd\t%xmm0, (%rsp)\n")
			out.WriteString(lv.Snippet)
			out.WriteString("\tmovsd\t(%rsp), %xmm1\n\taddq\t$8, %rsp\n")
		}
	} else {
		out.WriteString("\tpushq\t%rax\n")
		out.WriteString(lv.Snippet)
		out.WriteString("\tpopq\t%rdx\n")
	}

	switch {
	case op == "+" && nominalType.Kind == ast.Integer:
		out.WriteString("\taddq\t%rdx, %rax\n")
	case op == "+" && nominalType.Kind == ast.Real:
		out.WriteString("\taddsd\t%xmm1, %xmm0\n")
	case op == "+" && nominalType.Kind == ast.Char:
		out.WriteString("\taddb\t%dl, %al\n")
	case op == "-" && nominalType.Kind == ast.Integer:
		out.WriteString("\tsubq\t%rdx, %rax\n")
	case op == "-" && nominalType.Kind == ast.Real:
		out.WriteString("\tsubsd\t%xmm1, %xmm0\n")
	case op == "-" && nominalType.Kind == ast.Char:
		out.WriteString("\tsubb\t%dl, %al\n")
	case op == "OR" && nominalType.Kind == ast.Integer:
		out.WriteString("\torq\t%rdx, %rax\n")
	case op == "OR" && nominalType.Kind == ast.Boolean:
		out.WriteString("\torb\t%dl, %al\n")
	case nominalType.Kind == ast.Undefined:
		// already reported by combineSimple
	default:
		// Runtime String "+" is not implemented: only constant-fold
		// concatenation works (§9 supplemented features).
		g.report(span, "Unrecognized operation", diagnostics.Error)
	}
	return evalResult{Snippet: out.String(), Type: nominalType}
}

// --- relational expressions ---

func (g *generator) evaluateExpression(expr ast.Expression, vars map[string]varEntry, consts map[string]constEntry) evalResult {
	lhs := g.evaluateSimpleExpression(expr.Operand1, vars, consts)
	if !expr.HasRelation {
		return lhs
	}
	rhs := g.evaluateSimpleExpression(expr.Operand2, vars, consts)
	typ := evaluateType(lhs.Type, rhs.Type)

	if lhs.IsConst && rhs.IsConst {
		return g.foldRelation(lhs, rhs, expr.Operator, typ, expr.Span)
	}
	return g.emitRelation(lhs, rhs, expr.Operator, typ, expr.Span)
}

func (g *generator) foldRelation(lhs, rhs evalResult, op string, typ ast.Type, span ast.Span) evalResult {
	var result string
	var ok bool
	switch typ.Kind {
	case ast.Real:
		result, ok = relCompare(mustReal(lhs), mustReal(rhs), op)
	case ast.Integer:
		result, ok = relCompare(mustInt(lhs), mustInt(rhs), op)
	case ast.Char:
		result, ok = relCompare(mustByte(lhs), mustByte(rhs), op)
	default:
		panic("Invalid type")
	}
	if !ok {
		g.report(span, "Unrecognized operator", diagnostics.Error)
		return evalResult{Type: ast.Type{Kind: ast.Boolean}, IsConst: true}
	}
	return evalResult{Constant: result, Type: ast.Type{Kind: ast.Boolean}, IsConst: true}
}

func relCompare[T int64 | float64](a, b T, op string) (string, bool) {
	switch op {
	case "<":
		return strconv.FormatBool(a < b), true
	case "<=":
		return strconv.FormatBool(a <= b), true
	case "=":
		return strconv.FormatBool(a == b), true
	case "<>":
		return strconv.FormatBool(a != b), true
	case ">=":
		return strconv.FormatBool(a >= b), true
	case ">":
		return strconv.FormatBool(a > b), true
	default:
		return "", false
	}
}

// relJump returns the printf-style jump template (expects one %d label
// operand) that implements a relational operator's "false" branch for typ,
// and whether op was recognized.
func relJump(op string, typ ast.Type) (string, bool) {
	if op == "IN" {
		// Set membership isn't implemented; emit an always-taken jump
		// with an explanatory comment rather than failing outright
		// (§9 supplemented features, preserved from the original).
		return "\tjmp\tl%d # Error: IN not implemented \n", true
	}
	if typ.Kind == ast.Real {
		switch op {
		case "<":
			return "\tjae\tl%d\n", true
		case "<=":
			return "\tja\tl%d\n", true
		case "=":
			return "\tjne\tl%d\n", true
		case "<>":
			return "\tje\tl%d\n", true
		case ">=":
			return "\tjb\tl%d\n", true
		case ">":
			return "\tjbe\tl%d\n", true
		}
		return "", false
	}
	switch op {
	case "<":
		return "\tjge\tl%d\n", true
	case "<=":
		return "\tjg\tl%d\n", true
	case "=":
		return "\tjne\tl%d\n", true
	case "<>":
		return "\tje\tl%d\n", true
	case ">=":
		return "\tjl\tl%d\n", true
	case ">":
		return "\tjle\tl%d\n", true
	}
	return "", false
}

func (g *generator) emitRelation(lhs, rhs evalResult, op string, typ ast.Type, span ast.Span) evalResult {
	lv, rv := lhs, rhs
	if lv.IsConst {
		lv = evalResult{Snippet: g.materializeConstant(lv.Constant, lv.Type), Type: lv.Type}
	} else if rv.IsConst {
		rv = evalResult{Snippet: g.materializeConstant(rv.Constant, rv.Type), Type: rv.Type}
	}

	var out strings.Builder
	out.WriteString(lv.Snippet)
	if lv.Type.Kind == ast.Real {
		out.WriteString("\tsubq\t$8, %rsp\n\tmovsd\t%xmm0, (%rsp)\n")
	} else {
		out.WriteString("\tpushq\t%rax\n")
	}

	if typ.Kind == ast.Undefined && lv.Type.Kind != ast.Undefined && rv.Type.Kind != ast.Undefined {
		g.report(span, "Mismatched types in expression", diagnostics.Error)
	}

	out.WriteString(rv.Snippet)
	switch {
	case lv.Type.Kind == ast.Real:
		out.WriteString("\tmovsd\t(%rsp), %xmm1\n\taddq\t$8, %rsp\n")
		if rv.Type.Kind == ast.Integer {
			out.WriteString("\tcvtsi2sd %rax, %xmm0\n")
		}
		out.WriteString("\txorb\t%al, %al\n\tucomisd\t%xmm0, %xmm1\n")
	case rv.Type.Kind == ast.Real:
		out.WriteString("\tpopq\t%rax\n\tcvtsi2sd %rax, %xmm1\n\txorb\t%al, %al\n\tucomisd\t%xmm0, %xmm1\n")
	case typ.Kind == ast.Char:
		out.WriteString("\tpopq\t%rdx\n\tmovb\t%al, %cl\n\txorb\t%al, %al\n\tcmpb\t%cl, %dl\n")
	case typ.Kind == ast.Integer:
		out.WriteString("\tpopq\t%rdx\n\tmovq\t%rax, %rcx\n\txorb\t%al, %al\n\tcmpq\t%rcx, %rdx\n")
	default:
		// any other operand type emits no compare at all (and leaks the
		// pushed slot); a mismatch was already reported above, and two
		// operands of one non-comparable type are reported here
		if typ.Kind != ast.Undefined {
			g.report(span, "Mismatched types in expression", diagnostics.Error)
		}
	}

	label := g.nextLabel()
	jump, ok := relJump(op, typ)
	if !ok {
		g.report(span, "Unrecognized operator", diagnostics.Error)
	} else {
		out.WriteString(fmt.Sprintf(jump, label))
	}
	out.WriteString(fmt.Sprintf("\tincb\t%%al\nl%d:\n", label))
	return evalResult{Snippet: out.String(), Type: ast.Type{Kind: ast.Boolean}}
}

// --- CONST/VAR resolution ---

// buildConstantMap folds every CONST declaration, in order, so later
// declarations may reference earlier ones. Folding runs against a scratch
// rodata table so that any Real/String literal materialized while folding
// doesn't leak a label into the program's actual .rodata section, while the
// label counter itself keeps advancing — mirrors get_constant_map in
// x86_64_compiler.rs, which passes a fresh Vec for rodata but the real,
// shared label_idx.
func (g *generator) buildConstantMap(decls []ast.ConstDecl) map[string]constEntry {
	consts := map[string]constEntry{
		token.True:   {Value: "true", Type: ast.Type{Kind: ast.Boolean}},
		token.False:  {Value: "false", Type: ast.Type{Kind: ast.Boolean}},
		token.MaxInt: {Value: "$9223372036854775807", Type: ast.Type{Kind: ast.Integer}},
	}
	realRodata := g.rodataTbl
	g.rodataTbl = rodata.New()
	for _, decl := range decls {
		v := g.evaluateExpression(decl.Value, nil, consts)
		consts[decl.Name] = constEntry{Value: v.Constant, Type: v.Type}
	}
	g.rodataTbl = realRodata
	return consts
}

// resolveSuperType converts a parsed ast.SuperType into a concrete ast.Type,
// evaluating array bounds (which may only reference constants, never
// variables) against the already-folded constant map.
func (g *generator) resolveSuperType(st ast.SuperType, consts map[string]constEntry) ast.Type {
	if st.Kind != ast.ArrayKind {
		return ast.Type{Kind: st.Kind}
	}
	lowRes := g.evaluateExpression(st.Low, nil, consts)
	highRes := g.evaluateExpression(st.High, nil, consts)
	low, err := strconv.ParseInt(lowRes.Constant, 10, 64)
	if err != nil {
		panic("Invalid start idx")
	}
	high, err := strconv.ParseInt(highRes.Constant, 10, 64)
	if err != nil {
		panic("Invalid end idx")
	}
	elem := ast.Type{Kind: st.Elem.Kind}
	return ast.Type{Kind: ast.ArrayKind, Elem: &elem, Low: low, High: high}
}

// typeSize returns the stack footprint, in bytes, of a resolved type.
func typeSize(t ast.Type) int64 {
	switch t.Kind {
	case ast.Integer, ast.Real, ast.Stryng:
		return 8
	case ast.Boolean, ast.Char:
		return 1
	case ast.ArrayKind:
		return (t.High - t.Low + 1) * typeSize(*t.Elem)
	default:
		panic("Failed to evaluate type size.")
	}
}

// buildVariableMap assigns each VAR declaration a %rbp-relative offset, in
// declaration order. An array's recorded offset already has its declared
// lower bound folded in, so a factor addressing A[i] can use i directly
// (§4.3 "Array addressing").
func (g *generator) buildVariableMap(decls []ast.VarDecl, consts map[string]constEntry) map[string]varEntry {
	vars := make(map[string]varEntry, len(decls))
	var offset int64
	for _, decl := range decls {
		typ := g.resolveSuperType(decl.Type, consts)
		offset += typeSize(typ)
		entryOffset := offset
		if typ.Kind == ast.ArrayKind {
			entryOffset += typ.Low
		}
		vars[decl.Name] = varEntry{Offset: entryOffset, Type: typ}
	}
	return vars
}

// --- block/statement dispatch ---

func (g *generator) compileBlock(block *ast.Block) string {
	consts := g.buildConstantMap(block.Constants)

	// Deliberately resolves each VarDecl's SuperType twice (once here to
	// sum the frame size, again inside buildVariableMap) — mirrors
	// process_block's own double call to convert_supertype_to_type in
	// the original compiler.
	var totalSize int64
	for _, decl := range block.Variables {
		totalSize += typeSize(g.resolveSuperType(decl.Type, consts))
	}
	if totalSize%16 != 0 {
		totalSize = (totalSize/16 + 1) * 16
	}

	vars := g.buildVariableMap(block.Variables, consts)

	var out strings.Builder
	if totalSize > 0 {
		out.WriteString(fmt.Sprintf("\tsubq\t$%d, %%rsp\n", totalSize))
	}

	list, ok := block.Body.(ast.StatementList)
	if !ok {
		panic("Block type must have a StatementList as the body.")
	}
	for _, stmt := range list.Statements {
		out.WriteString(g.compileStatement(stmt, vars, consts))
	}

	if totalSize > 0 {
		out.WriteString(fmt.Sprintf("\taddq\t$%d, %%rsp\n", totalSize))
	}
	return out.String()
}

func (g *generator) compileStatement(stmt ast.Statement, vars map[string]varEntry, consts map[string]constEntry) string {
	switch s := stmt.(type) {
	case ast.DoNothing:
		return ""
	case ast.Assignment:
		return g.compileAssignment(s, vars, consts)
	case ast.ElementAssignment:
		return g.compileElementAssignment(s, vars, consts)
	case ast.ProcedureCall:
		return g.compileProcedureCall(s, vars, consts)
	case ast.ReadCall:
		return g.compileReadCall(s, vars, consts)
	case ast.StatementList:
		var out strings.Builder
		for _, inner := range s.Statements {
			out.WriteString(g.compileStatement(inner, vars, consts))
		}
		return out.String()
	case ast.IfStatement:
		return g.compileIfStatement(s, vars, consts)
	case ast.WhileLoop:
		return g.compileWhileLoop(s, vars, consts)
	case ast.RepeatLoop:
		return g.compileRepeatLoop(s, vars, consts)
	case ast.ForLoop:
		return g.compileForLoop(s, vars, consts)
	default:
		panic("unrecognized statement")
	}
}

func (g *generator) compileAssignment(a ast.Assignment, vars map[string]varEntry, consts map[string]constEntry) string {
	rhs := g.evaluateFinalExpression(a.Value, vars, consts)
	v, ok := vars[a.Name]
	if !ok {
		panic(fmt.Sprintf("Unrecognized identifier: %s", a.Name))
	}

	intToReal := rhs.Type.Kind == ast.Integer && v.Type.Kind == ast.Real
	charToString := rhs.Type.Kind == ast.Char && v.Type.Kind == ast.Stryng
	if rhs.Type.Kind != v.Type.Kind && !intToReal && !charToString {
		g.report(a.Span, "Mismatched types", diagnostics.Error)
	}

	var out strings.Builder
	out.WriteString(rhs.Snippet)
	dest := fmt.Sprintf("-%d(%%rbp)", v.Offset)
	switch {
	case v.Type.Kind == ast.Char || v.Type.Kind == ast.Boolean:
		out.WriteString(fmt.Sprintf("\tmovb\t%%al, %s\n", dest))
	case v.Type.Kind == ast.Stryng && rhs.Type.Kind == ast.Stryng:
		out.WriteString(fmt.Sprintf("\tmovq\t%%rax, %s\n", dest))
	case charToString:
		out.WriteString(fmt.Sprintf("\tmovb\t%%al, %s\n", dest))
		out.WriteString(fmt.Sprintf("\tmovb\t$0, -%d(%%rbp)\n", v.Offset+1))
	case v.Type.Kind == ast.Integer:
		out.WriteString(fmt.Sprintf("\tmovq\t%%rax, %s\n", dest))
	case v.Type.Kind == ast.Real && rhs.Type.Kind == ast.Real:
		out.WriteString(fmt.Sprintf("\tmovq\t%%xmm0, %s\n", dest))
	case intToReal:
		out.WriteString("\tcvtsi2sd %rax, %xmm0\n")
		out.WriteString(fmt.Sprintf("\tmovq\t%%xmm0, %s\n", dest))
	default:
		panic("Unsupported type used in assignment")
	}
	return out.String()
}

func (g *generator) compileElementAssignment(ea ast.ElementAssignment, vars map[string]varEntry, consts map[string]constEntry) string {
	idx := g.evaluateFinalExpression(ea.Index, vars, consts)
	if idx.Type.Kind != ast.Integer {
		g.report(ea.Span, "Expected integer to access array element", diagnostics.Error)
	}

	v, ok := vars[ea.Name]
	if !ok {
		panic(fmt.Sprintf("Unrecognized identifier: %s", ea.Name))
	}
	if v.Type.Kind != ast.ArrayKind {
		g.report(ea.Span, "Identifier does not belong to an array", diagnostics.Error)
		return ""
	}
	elem := *v.Type.Elem

	var out strings.Builder
	out.WriteString(idx.Snippet)
	out.WriteString("\tpushq\t%rax\n")
	rhs := g.evaluateFinalExpression(ea.Value, vars, consts)
	if elem.Kind != rhs.Type.Kind && !(elem.Kind == ast.Real && rhs.Type.Kind == ast.Integer) {
		g.report(ea.Span, "Mismatched types", diagnostics.Error)
	}
	out.WriteString(rhs.Snippet)
	out.WriteString("\tpopq\t%rdx\n")

	switch {
	case elem.Kind == ast.Char || elem.Kind == ast.Boolean:
		out.WriteString(fmt.Sprintf("\tmovb\t%%al, -%d(%%rbp, %%rdx, 1)\n", v.Offset))
	case elem.Kind == ast.Stryng || elem.Kind == ast.Integer:
		out.WriteString(fmt.Sprintf("\tmovq\t%%rax, -%d(%%rbp, %%rdx, 8)\n", v.Offset))
	case elem.Kind == ast.Real && rhs.Type.Kind == ast.Real:
		out.WriteString(fmt.Sprintf("\tmovq\t%%xmm0, -%d(%%rbp, %%rdx, 8)\n", v.Offset))
	case elem.Kind == ast.Real && rhs.Type.Kind == ast.Integer:
		out.WriteString("\tcvtsi2sd %rax, %xmm0\n")
		out.WriteString(fmt.Sprintf("\tmovq\t%%xmm0, -%d(%%rbp, %%rdx, 8)\n", v.Offset))
	default:
		panic("Unsupported type used in assignment")
	}
	return out.String()
}

func (g *generator) compileProcedureCall(pc ast.ProcedureCall, vars map[string]varEntry, consts map[string]constEntry) string {
	if pc.Name != token.Write && pc.Name != token.Writeln {
		return fmt.Sprintf("\t# Failed to compile call to: %s\n", pc.Name)
	}

	var out strings.Builder
	if pc.Name == token.Writeln && len(pc.Args) == 0 {
		label := g.requestLabel(".string \"\\n\"")
		out.WriteString(fmt.Sprintf("\tleaq\tl%d(%%rip), %%rdi\n\tmovq\t$0, %%rax\n\tcall\tprintf\n", label))
	}
	for i, argExpr := range pc.Args {
		newline := pc.Name == token.Writeln && i == len(pc.Args)-1
		v := g.evaluateExpression(argExpr, vars, consts)
		if v.IsConst && v.Type.Kind != ast.Stryng {
			v = evalResult{Snippet: g.materializeConstant(v.Constant, v.Type), Type: v.Type}
		}
		out.WriteString(g.compileWriteArg(v, newline, pc.Span))
	}
	return out.String()
}

func (g *generator) compileWriteArg(v evalResult, newline bool, span ast.Span) string {
	suffix := ""
	if newline {
		suffix = "\\n"
	}

	var out strings.Builder
	switch v.Type.Kind {
	case ast.Integer:
		out.WriteString(v.Snippet)
		label := g.requestLabel(fmt.Sprintf(".string \"%%ld%s\"", suffix))
		out.WriteString("\tmovq\t%rax, %rsi\n")
		out.WriteString(fmt.Sprintf("\tleaq\tl%d(%%rip), %%rdi\n\tmovq\t$0, %%rax\n\tcall\tprintf\n", label))
	case ast.Real:
		out.WriteString(v.Snippet)
		label := g.requestLabel(fmt.Sprintf(".string \"%%lf%s\"", suffix))
		out.WriteString(fmt.Sprintf("\tleaq\tl%d(%%rip), %%rdi\n\tmovq\t$1, %%rax\n\tcall\tprintf\n", label))
	case ast.Char:
		out.WriteString(v.Snippet)
		label := g.requestLabel(fmt.Sprintf(".string \"%%c%s\"", suffix))
		out.WriteString("\tmovb\t%al, %sil\n")
		out.WriteString(fmt.Sprintf("\tleaq\tl%d(%%rip), %%rdi\n\tmovq\t$0, %%rax\n\tcall\tprintf\n", label))
	case ast.Boolean:
		falseLabel := g.requestLabel(fmt.Sprintf(".string \"FALSE%s\"", suffix))
		trueLabel := g.requestLabel(fmt.Sprintf(".string \"TRUE%s\"", suffix))
		join := g.nextLabel()
		out.WriteString(v.Snippet)
		out.WriteString(fmt.Sprintf("\tleaq\tl%d(%%rip), %%rdi\n", falseLabel))
		out.WriteString("\ttestb\t%al, %al\n")
		out.WriteString(fmt.Sprintf("\tje\tl%d\n", join))
		out.WriteString(fmt.Sprintf("\tleaq\tl%d(%%rip), %%rdi\n", trueLabel))
		out.WriteString(fmt.Sprintf("l%d:\n", join))
		out.WriteString("\tmovq\t$0, %rax\n\tcall\tprintf\n")
	case ast.Stryng:
		if v.IsConst {
			label := g.requestLabel(fmt.Sprintf(".string \"%s%s\"", v.Constant, suffix))
			out.WriteString(fmt.Sprintf("\tleaq\tl%d(%%rip), %%rdi\n\tmovq\t$0, %%rax\n\tcall\tprintf\n", label))
			return out.String()
		}
		out.WriteString(v.Snippet)
		label := g.requestLabel(fmt.Sprintf(".string \"%%s%s\"", suffix))
		out.WriteString("\tmovq\t%rax, %rsi\n")
		out.WriteString(fmt.Sprintf("\tleaq\tl%d(%%rip), %%rdi\n\tmovq\t$0, %%rax\n\tcall\tprintf\n", label))
	case ast.Undefined:
		// already reported wherever the operand went wrong
	default:
		g.report(span, "Print function not defined for all types in call", diagnostics.Error)
	}
	return out.String()
}

func (g *generator) compileReadCall(rc ast.ReadCall, vars map[string]varEntry, consts map[string]constEntry) string {
	var out strings.Builder
	for _, name := range rc.Names {
		v, ok := vars[name]
		if !ok {
			panic(fmt.Sprintf("Unrecognized identifier: %s", name))
		}
		dest := fmt.Sprintf("-%d(%%rbp)", v.Offset)
		switch v.Type.Kind {
		case ast.Char:
			loop := g.nextLabel()
			done := g.nextLabel()
			out.WriteString(fmt.Sprintf("l%d:\n\tcall\tgetchar\n", loop))
			out.WriteString("\tcmpl\t$-1, %eax\n")
			out.WriteString(fmt.Sprintf("\tjne\tl%d\n", done))
			out.WriteString("\tmovl\t$1, eof(%rip)\n")
			out.WriteString(fmt.Sprintf("l%d:\n", done))
			// skip newlines left over from previous reads
			out.WriteString("\tcmpb\t$10, %al\n")
			out.WriteString(fmt.Sprintf("\tje\tl%d\n", loop))
			out.WriteString(fmt.Sprintf("\tmovb\t%%al, %s\n", dest))
		case ast.Integer:
			label := g.requestLabel(".string \"%ld\"")
			out.WriteString(fmt.Sprintf("\tleaq\t%s, %%rsi\n", dest))
			out.WriteString(fmt.Sprintf("\tleaq\tl%d(%%rip), %%rdi\n\tmovq\t$0, %%rax\n\tcall\tscanf\n", label))
		case ast.Real:
			label := g.requestLabel(".string \"%lf\"")
			out.WriteString(fmt.Sprintf("\tleaq\t%s, %%rsi\n", dest))
			out.WriteString(fmt.Sprintf("\tleaq\tl%d(%%rip), %%rdi\n\tmovq\t$0, %%rax\n\tcall\tscanf\n", label))
		case ast.Stryng:
			label := g.requestLabel(".string \" %[^\\n]s\"")
			out.WriteString("\tmovq\t$256, %rdi\n\tmovq\t$1, %rsi\n\tcall\tcalloc\n")
			out.WriteString(fmt.Sprintf("\tmovq\t%%rax, %s\n", dest))
			out.WriteString("\tmovq\t%rax, %rsi\n")
			out.WriteString(fmt.Sprintf("\tleaq\tl%d(%%rip), %%rdi\n\tmovq\t$0, %%rax\n\tcall\tscanf\n", label))
		default:
			g.report(rc.Span, "Unsupported type in read call", diagnostics.Error)
		}
	}
	return out.String()
}

func (g *generator) compileIfStatement(is ast.IfStatement, vars map[string]varEntry, consts map[string]constEntry) string {
	cond := g.evaluateFinalExpression(is.Cond, vars, consts)
	// Unlike the loop forms below, If exempts Undefined from a second
	// report here — preserved asymmetry, not a bug to fix.
	if cond.Type.Kind != ast.Boolean && cond.Type.Kind != ast.Undefined {
		g.report(is.CondSpan, "Condition must be a boolean type", diagnostics.Error)
	}

	var out strings.Builder
	out.WriteString(cond.Snippet)
	skip := g.nextLabel()
	out.WriteString("\ttestb\t%al, %al\n")
	out.WriteString(fmt.Sprintf("\tje\tl%d\n", skip))
	out.WriteString(g.compileStatement(is.Then, vars, consts))

	// the join label is minted only after the then-branch so any labels
	// inside it keep lower numbers, as the traversal order dictates
	if !is.HasElse {
		out.WriteString(fmt.Sprintf("l%d:\n", skip))
		return out.String()
	}
	end := g.nextLabel()
	out.WriteString(fmt.Sprintf("\tjmp\tl%d\n", end))
	out.WriteString(fmt.Sprintf("l%d:\n", skip))
	out.WriteString(g.compileStatement(is.Else, vars, consts))
	out.WriteString(fmt.Sprintf("l%d:\n", end))
	return out.String()
}

func (g *generator) compileWhileLoop(wl ast.WhileLoop, vars map[string]varEntry, consts map[string]constEntry) string {
	start := g.nextLabel()

	var out strings.Builder
	out.WriteString(fmt.Sprintf("l%d:\n", start))
	cond := g.evaluateFinalExpression(wl.Cond, vars, consts)
	if cond.Type.Kind != ast.Boolean {
		g.report(wl.CondSpan, "Condition must be a boolean type", diagnostics.Error)
	}
	out.WriteString(cond.Snippet)

	end := g.nextLabel()
	out.WriteString("\ttestb\t%al, %al\n")
	out.WriteString(fmt.Sprintf("\tje\tl%d\n", end))
	out.WriteString(g.compileStatement(wl.Body, vars, consts))
	out.WriteString(fmt.Sprintf("\tjmp\tl%d\n", start))
	out.WriteString(fmt.Sprintf("l%d:\n", end))
	return out.String()
}

func (g *generator) compileRepeatLoop(rl ast.RepeatLoop, vars map[string]varEntry, consts map[string]constEntry) string {
	start := g.nextLabel()

	cond := g.evaluateFinalExpression(rl.Cond, vars, consts)
	if cond.Type.Kind != ast.Boolean {
		g.report(rl.CondSpan, "Condition must be a boolean type", diagnostics.Error)
	}

	var out strings.Builder
	out.WriteString(fmt.Sprintf("l%d:\n", start))
	out.WriteString(g.compileStatement(rl.Body, vars, consts))
	out.WriteString(cond.Snippet)
	out.WriteString("\ttestb\t%al, %al\n")
	out.WriteString(fmt.Sprintf("\tje\tl%d\n", start))
	return out.String()
}

func (g *generator) compileForLoop(fl ast.ForLoop, vars map[string]varEntry, consts map[string]constEntry) string {
	v, ok := vars[fl.Var]
	if !ok {
		panic(fmt.Sprintf("Unrecognized identifier: %s", fl.Var))
	}
	if v.Type.Kind != ast.Integer {
		g.report(fl.NameSpan, "For loop iterator must be integer type", diagnostics.Error)
	}
	dest := fmt.Sprintf("-%d(%%rbp)", v.Offset)

	start := g.evaluateFinalExpression(fl.Start, vars, consts)
	end := g.evaluateFinalExpression(fl.End, vars, consts)
	if start.Type.Kind != ast.Integer || end.Type.Kind != ast.Integer {
		g.report(fl.RangeSpan, "For loop range must consist of integers", diagnostics.Error)
	}

	var out strings.Builder
	out.WriteString(start.Snippet)
	out.WriteString(fmt.Sprintf("\tmovq\t%%rax, %s\n", dest))
	out.WriteString(end.Snippet)

	// the range is inclusive; bumping the end value once turns it into a
	// half-open bound the loop can test with a plain je
	if fl.Ascending {
		out.WriteString("\tincq\t%rax\n")
	} else {
		out.WriteString("\tdecq\t%rax\n")
	}
	out.WriteString("\tpushq\t$0\n") // keeps the stack 16-byte aligned
	out.WriteString("\tpushq\t%rax\n")

	loopStart := g.nextLabel()
	loopEnd := g.nextLabel()
	out.WriteString(fmt.Sprintf("l%d:\n", loopStart))
	out.WriteString("\tmovq\t(%rsp), %rax\n")
	out.WriteString(fmt.Sprintf("\tmovq\t%s, %%rdx\n", dest))
	out.WriteString("\tcmpq\t%rax, %rdx\n")
	out.WriteString(fmt.Sprintf("\tje\tl%d\n", loopEnd))
	out.WriteString(g.compileStatement(fl.Body, vars, consts))
	if fl.Ascending {
		out.WriteString(fmt.Sprintf("\tincq\t%s\n", dest))
	} else {
		out.WriteString(fmt.Sprintf("\tdecq\t%s\n", dest))
	}
	out.WriteString(fmt.Sprintf("\tjmp\tl%d\n", loopStart))
	out.WriteString(fmt.Sprintf("l%d:\n\taddq\t$16, %%rsp\n", loopEnd))
	return out.String()
}

// compileProgram compiles the whole program and assembles the final
// .data/.rodata/.text sections.
func (g *generator) compileProgram(prog *ast.Program) string {
	body := g.compileBlock(prog.Body)

	var out strings.Builder
	if strings.Contains(body, "eof") {
		out.WriteString(".section .data\neof:\n\t.int 0\n")
	}

	entries := g.rodataTbl.Entries()
	if len(entries) > 0 {
		out.WriteString(".section .rodata\n")
		for _, e := range entries {
			out.WriteString(fmt.Sprintf("l%d:\n\t%s\n", e.ID, e.Value))
		}
	}

	out.WriteString(".text\n.globl main\nmain:\n\tpushq\t%rbp\n\tmovq\t%rsp, %rbp\n")
	out.WriteString(body)
	out.WriteString("\tmovl\t$0, %eax\n\tleave\n\tret\n\n")
	return out.String()
}
