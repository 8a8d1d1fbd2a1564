// Package parser implements pascalc's recursive-descent parser (§4.2),
// turning a token.Token stream from lexer.Lexer into an ast.Program.
//
// Grammar and error-recovery behavior are ported from
// original_source/src/ast.rs's parse_* functions; diagnostics are
// fatal-on-first-syntax-error, matching definitions.rs::report's Syntax
// class (§7).
package parser

import (
	"fmt"
	"strconv"
	"unicode"

	"pascalc/ast"
	"pascalc/diagnostics"
	"pascalc/lexer"
	"pascalc/token"
)

// Parser holds the scanning state for a single parse.
type Parser struct {
	code     string
	lex      *lexer.Lexer
	reporter *diagnostics.Reporter
}

// New returns a Parser over code, reporting fatal syntax errors through
// reporter.
func New(code string, reporter *diagnostics.Reporter) *Parser {
	return &Parser{code: code, lex: lexer.New(code, reporter), reporter: reporter}
}

// ParseProgram parses a full "PROGRAM name(args); block ." unit.
func (p *Parser) ParseProgram() *ast.Program {
	p.expect("PROGRAM")
	name := p.expectIdentifier()
	var args []string
	if p.lex.Peek().Literal == "(" {
		p.lex.Next()
		args = append(args, p.expectIdentifier())
		for p.lex.Peek().Literal == "," {
			p.lex.Next()
			args = append(args, p.expectIdentifier())
		}
		p.expect(")")
	}
	p.expect(";")
	block := p.parseBlock()
	p.expect(".")
	return &ast.Program{Name: name, Args: args, Body: block}
}

func (p *Parser) parseBlock() *ast.Block {
	block := &ast.Block{}
	seenConst, seenVar := false, false
	for {
		switch p.lex.Peek().Literal {
		case "CONST":
			if seenConst {
				p.fatal(p.lex.Peek(), "a block may have at most one CONST section")
			}
			seenConst = true
			p.lex.Next()
			block.Constants = p.parseConstSection()
		case "VAR":
			if seenVar {
				p.fatal(p.lex.Peek(), "a block may have at most one VAR section")
			}
			seenVar = true
			p.lex.Next()
			block.Variables = p.parseVarSection()
		case "BEGIN":
			block.Body = p.parseStatementList()
			return block
		default:
			p.fatal(p.lex.Peek(), "expected CONST, VAR, or BEGIN")
			return block
		}
	}
}

func (p *Parser) parseConstSection() []ast.ConstDecl {
	var decls []ast.ConstDecl
	for p.lex.Peek().Literal != "VAR" && p.lex.Peek().Literal != "BEGIN" {
		nameTok := p.lex.Next()
		name := p.validateIdentifierLiteral(nameTok)
		p.expect("=")
		val := p.parseExpression()
		end := p.expect(";")
		decls = append(decls, ast.ConstDecl{Name: name, Value: val, Span: ast.Span{Start: nameTok.Start, End: end.End}})
	}
	return decls
}

func (p *Parser) parseVarSection() []ast.VarDecl {
	var decls []ast.VarDecl
	for p.lex.Peek().Literal != "BEGIN" {
		var names []token.Token
		names = append(names, p.lex.Next())
		for p.lex.Peek().Literal == "," {
			p.lex.Next()
			names = append(names, p.lex.Next())
		}
		p.expect(":")
		tipe := p.parseType()
		end := p.expect(";")
		for _, n := range names {
			name := p.validateIdentifierLiteral(n)
			decls = append(decls, ast.VarDecl{Name: name, Type: tipe, Span: ast.Span{Start: n.Start, End: end.End}})
		}
	}
	return decls
}

func (p *Parser) parseType() ast.SuperType {
	tok := p.lex.Next()
	switch tok.Literal {
	case "INTEGER":
		return ast.SuperType{Kind: ast.Integer}
	case "BOOLEAN":
		return ast.SuperType{Kind: ast.Boolean}
	case "REAL":
		return ast.SuperType{Kind: ast.Real}
	case "CHAR":
		return ast.SuperType{Kind: ast.Char}
	case "STRING":
		return ast.SuperType{Kind: ast.Stryng}
	case "TEXT":
		return ast.SuperType{Kind: ast.Text}
	case "PACKED":
		p.expect("ARRAY")
		return p.parseArrayType()
	case "ARRAY":
		return p.parseArrayType()
	default:
		p.fatal(tok, "expected a type name")
		return ast.SuperType{Kind: ast.Undefined}
	}
}

func (p *Parser) parseArrayType() ast.SuperType {
	p.expect("[")
	low := p.parseExpression()
	p.expect("..")
	high := p.parseExpression()
	p.expect("]")
	p.expect("OF")
	elem := p.parseType()
	return ast.SuperType{Kind: ast.ArrayKind, Elem: &elem, Low: low, High: high}
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.lex.Peek().Literal {
	case "BEGIN":
		return p.parseStatementList()
	case "IF":
		return p.parseIfStatement()
	case "WHILE":
		return p.parseWhileLoop()
	case "REPEAT":
		return p.parseRepeatLoop()
	case "FOR":
		return p.parseForLoop()
	case "READ", "READLN":
		return p.parseReadCall()
	default:
		return p.parseIdentifierLedStatement()
	}
}

func (p *Parser) parseStatementList() ast.Statement {
	startTok := p.expect("BEGIN")
	var stmts []ast.Statement
	for {
		if p.lex.Peek().Literal == "END" {
			if len(stmts) == 0 {
				p.fatal(p.lex.Peek(), "Empty statement list")
				stmts = append(stmts, ast.DoNothing{})
			}
			break
		}
		stmts = append(stmts, p.parseStatement())
		if p.lex.Peek().Literal == ";" {
			p.lex.Next()
			continue
		}
		break
	}
	endTok := p.expect("END")
	return ast.StatementList{Statements: stmts, Span: ast.Span{Start: startTok.Start, End: endTok.End}}
}

func (p *Parser) parseIfStatement() ast.Statement {
	p.expect("IF")
	cond := p.parseExpression()
	p.expect("THEN")
	thenStmt := p.parseStatement()
	stmt := ast.IfStatement{Cond: cond, Then: thenStmt, CondSpan: cond.Span}
	if p.lex.Peek().Literal == "ELSE" {
		p.lex.Next()
		stmt.Else = p.parseStatement()
		stmt.HasElse = true
	}
	return stmt
}

func (p *Parser) parseWhileLoop() ast.Statement {
	p.expect("WHILE")
	cond := p.parseExpression()
	p.expect("DO")
	body := p.parseStatement()
	return ast.WhileLoop{Cond: cond, Body: body, CondSpan: cond.Span}
}

func (p *Parser) parseRepeatLoop() ast.Statement {
	startTok := p.expect("REPEAT")
	var stmts []ast.Statement
	for {
		if p.lex.Peek().Literal == "UNTIL" {
			if len(stmts) == 0 {
				p.fatal(p.lex.Peek(), "Empty statement list")
				stmts = append(stmts, ast.DoNothing{})
			}
			break
		}
		stmts = append(stmts, p.parseStatement())
		if p.lex.Peek().Literal == ";" {
			p.lex.Next()
			continue
		}
		break
	}
	untilTok := p.expect("UNTIL")
	cond := p.parseExpression()
	body := ast.StatementList{Statements: stmts, Span: ast.Span{Start: startTok.Start, End: untilTok.End}}
	return ast.RepeatLoop{Body: body, Cond: cond, CondSpan: cond.Span}
}

func (p *Parser) parseForLoop() ast.Statement {
	p.expect("FOR")
	varTok := p.lex.Next()
	varName := p.validateIdentifierLiteral(varTok)
	p.expect(":=")
	start := p.parseExpression()
	var ascending bool
	if p.lex.Peek().Literal == "TO" {
		p.lex.Next()
		ascending = true
	} else {
		p.expect("DOWNTO")
		ascending = false
	}
	end := p.parseExpression()
	p.expect("DO")
	body := p.parseStatement()
	return ast.ForLoop{
		Var:      varName,
		NameSpan: ast.Span{Start: varTok.Start, End: varTok.End},
		Start:    start, End: end,
		RangeSpan: ast.Span{Start: start.Span.Start, End: end.Span.End},
		Ascending: ascending, Body: body,
	}
}

func (p *Parser) parseReadCall() ast.Statement {
	tok := p.lex.Next() // READ or READLN
	newline := tok.Literal == "READLN"
	p.expect("(")
	var names []string
	names = append(names, p.expectIdentifier())
	for p.lex.Peek().Literal == "," {
		p.lex.Next()
		names = append(names, p.expectIdentifier())
	}
	end := p.expect(")")
	return ast.ReadCall{Names: names, Newline: newline, Span: ast.Span{Start: tok.Start, End: end.End}}
}

func (p *Parser) parseIdentifierLedStatement() ast.Statement {
	nameTok := p.lex.Next()
	name := p.validateIdentifierLiteral(nameTok)
	switch p.lex.Peek().Literal {
	case ":=":
		p.lex.Next()
		val := p.parseExpression()
		return ast.Assignment{Name: name, Value: val, Span: ast.Span{Start: nameTok.Start, End: val.Span.End}}
	case "[":
		p.lex.Next()
		idx := p.parseExpression()
		p.expect("]")
		p.expect(":=")
		val := p.parseExpression()
		return ast.ElementAssignment{Name: name, Index: idx, Value: val, Span: ast.Span{Start: nameTok.Start, End: val.Span.End}}
	case "(":
		p.lex.Next()
		var args []ast.Expression
		if p.lex.Peek().Literal != ")" {
			args = append(args, p.parseExpression())
			for p.lex.Peek().Literal == "," {
				p.lex.Next()
				args = append(args, p.parseExpression())
			}
		}
		endTok := p.expect(")")
		return ast.ProcedureCall{Name: name, Args: args, Span: ast.Span{Start: nameTok.Start, End: endTok.End}}
	default:
		return ast.ProcedureCall{Name: name, Span: ast.Span{Start: nameTok.Start, End: nameTok.End}}
	}
}

// --- expressions ---

func (p *Parser) parseExpression() ast.Expression {
	op1 := p.parseSimpleExpression()
	if op, ok := relationalOperator(p.lex.Peek().Literal); ok {
		p.lex.Next()
		op2 := p.parseSimpleExpression()
		return ast.Expression{
			Operand1: op1, Operand2: op2, Operator: op, HasRelation: true,
			Span: ast.Span{Start: op1.Span.Start, End: op2.Span.End},
		}
	}
	return ast.Expression{Operand1: op1, Span: op1.Span}
}

func relationalOperator(lit string) (string, bool) {
	switch lit {
	case "<", "<=", "=", "<>", ">=", ">", "IN":
		return lit, true
	}
	return "", false
}

func (p *Parser) parseSimpleExpression() ast.SimpleExpression {
	startTok := p.lex.Peek()
	positive := true
	switch p.lex.Peek().Literal {
	case "+":
		p.lex.Next()
	case "-":
		p.lex.Next()
		positive = false
	}
	var terms []ast.Term
	var ops []string
	terms = append(terms, p.parseTerm())
	for {
		lit := p.lex.Peek().Literal
		if lit == "+" || lit == "-" || lit == "OR" {
			p.lex.Next()
			ops = append(ops, lit)
			terms = append(terms, p.parseTerm())
			continue
		}
		break
	}
	last := terms[len(terms)-1]
	return ast.SimpleExpression{
		Positive: positive, Operands: terms, Operators: ops,
		Span: ast.Span{Start: startTok.Start, End: last.Span.End},
	}
}

func (p *Parser) parseTerm() ast.Term {
	startTok := p.lex.Peek()
	var factors []ast.Factor
	var ops []string
	factors = append(factors, p.parseFactor())
	for {
		lit := p.lex.Peek().Literal
		if lit == "*" || lit == "/" || lit == "DIV" || lit == "MOD" || lit == "AND" {
			p.lex.Next()
			ops = append(ops, lit)
			factors = append(factors, p.parseFactor())
			continue
		}
		break
	}
	last := factors[len(factors)-1]
	return ast.Term{
		Operands: factors, Operators: ops,
		Span: ast.Span{Start: startTok.Start, End: last.Span().End},
	}
}

func (p *Parser) parseFactor() ast.Factor {
	tok := p.lex.Peek()
	switch tok.Literal {
	case "(":
		p.lex.Next()
		inner := p.parseExpression()
		endTok := p.expect(")")
		return ast.Parenthetical{Inner: inner, Spn: ast.Span{Start: tok.Start, End: endTok.End}}
	case "NOT":
		p.lex.Next()
		operand := p.parseFactor()
		return ast.NegatedFactor{Operand: operand, Spn: ast.Span{Start: tok.Start, End: operand.Span().End}}
	case "[":
		return p.parseList()
	case "NIL":
		p.lex.Next()
		span := ast.Span{Start: tok.Start, End: tok.End}
		return ast.ConstantFactor{Value: ast.Nil{Spn: span}, Spn: span}
	}

	if tok.Literal != "" && tok.Literal[0] == '\'' {
		return p.parseQuotedFactor()
	}
	if tok.Literal != "" && tok.Literal[0] >= '0' && tok.Literal[0] <= '9' {
		return p.parseNumericFactor()
	}

	p.lex.Next()
	name := p.validateIdentifierLiteral(tok)
	switch p.lex.Peek().Literal {
	case "(":
		p.lex.Next()
		var args []ast.Expression
		if p.lex.Peek().Literal != ")" {
			args = append(args, p.parseExpression())
			for p.lex.Peek().Literal == "," {
				p.lex.Next()
				args = append(args, p.parseExpression())
			}
		}
		endTok := p.expect(")")
		return ast.Identifier{Name: name, Args: args, Spn: ast.Span{Start: tok.Start, End: endTok.End}}
	case "[":
		p.lex.Next()
		idx := p.parseExpression()
		endTok := p.expect("]")
		return ast.ArrayIndex{Name: name, Index: idx, Spn: ast.Span{Start: tok.Start, End: endTok.End}}
	default:
		return ast.Identifier{Name: name, Spn: ast.Span{Start: tok.Start, End: tok.End}}
	}
}

func (p *Parser) parseQuotedFactor() ast.Factor {
	tok := p.lex.Next()
	inner := tok.Literal[1 : len(tok.Literal)-1]
	var uc ast.UnsignedConstant
	if len(inner) == 1 {
		uc = ast.CharLit{Value: inner[0]}
	} else {
		uc = ast.Quote{Value: inner}
	}
	return ast.ConstantFactor{Value: uc, Spn: ast.Span{Start: tok.Start, End: tok.End}}
}

func (p *Parser) parseNumericFactor() ast.Factor {
	intTok := p.lex.Next()
	if p.lex.Peek().Literal == "." {
		p.lex.Next()
		fracTok := p.lex.Next()
		value, err := strconv.ParseFloat(intTok.Literal+"."+fracTok.Literal, 64)
		if err != nil {
			p.fatal(fracTok, "invalid real literal")
		}
		span := ast.Span{Start: intTok.Start, End: fracTok.End}
		return ast.ConstantFactor{Value: ast.UnsignedReal{Value: value}, Spn: span}
	}
	value, err := strconv.ParseUint(intTok.Literal, 10, 64)
	if err != nil {
		p.fatal(intTok, "invalid integer literal")
	}
	span := ast.Span{Start: intTok.Start, End: intTok.End}
	return ast.ConstantFactor{Value: ast.UnsignedInteger{Value: value}, Spn: span}
}

func (p *Parser) parseList() ast.Factor {
	startTok := p.expect("[")
	var items []ast.ExpressionOrRange
	if p.lex.Peek().Literal != "]" {
		items = append(items, p.parseExpressionOrRange())
		for p.lex.Peek().Literal == "," {
			p.lex.Next()
			items = append(items, p.parseExpressionOrRange())
		}
	}
	endTok := p.expect("]")
	return ast.List{Items: items, Spn: ast.Span{Start: startTok.Start, End: endTok.End}}
}

func (p *Parser) parseExpressionOrRange() ast.ExpressionOrRange {
	low := p.parseExpression()
	if p.lex.Peek().Literal == ".." {
		p.lex.Next()
		high := p.parseExpression()
		return ast.RangeExpr{Low: low, High: high}
	}
	return ast.SingleExpr{Expr: low}
}

// --- helpers ---

func (p *Parser) fatal(tok token.Token, message string) {
	p.reporter.Report(p.code, tok.Start, tok.End, message, diagnostics.Syntax)
}

func (p *Parser) expect(literal string) token.Token {
	tok := p.lex.Next()
	if tok.Literal != literal {
		p.fatal(tok, fmt.Sprintf("expected %q, found %q", literal, tok.Literal))
	}
	return tok
}

// expectIdentifier consumes and validates the next token as an
// identifier, returning its literal.
func (p *Parser) expectIdentifier() string {
	return p.validateIdentifierLiteral(p.lex.Next())
}

// validateIdentifierLiteral reports a fatal syntax error if tok is not a
// well-formed identifier: first character alphabetic, remaining
// characters alphanumeric, and not a reserved word (§4.2
// is_valid_identifier).
func (p *Parser) validateIdentifierLiteral(tok token.Token) string {
	if !isValidIdentifierLiteral(tok.Literal) {
		p.fatal(tok, fmt.Sprintf("%q is not a valid identifier", tok.Literal))
	}
	if token.IsReserved(tok.Literal) {
		p.fatal(tok, fmt.Sprintf("%q is a reserved word and cannot be used as an identifier", tok.Literal))
	}
	return tok.Literal
}

func isValidIdentifierLiteral(s string) bool {
	if s == "" {
		return false
	}
	first := rune(s[0])
	if !unicode.IsLetter(first) {
		return false
	}
	for _, r := range s[1:] {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
