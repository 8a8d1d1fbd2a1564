// Package lexer turns pascalc source text into a stream of token.Token
// values on demand. It skips whitespace and comments, folds Unicode
// operator aliases to their ASCII form, and uppercases identifiers and
// reserved words.
//
// The cursor-based Peek/Next shape follows the teacher's lexer.Lexer; the
// scanning rules themselves (longest-match punctuation, nested comments,
// quoted literals, alias folding) are ported from
// original_source/src/tokenizer.rs.
package lexer

import (
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"pascalc/diagnostics"
	"pascalc/token"
)

var upper = cases.Upper(language.Und)

// Lexer holds the scanning position over a fixed source string.
type Lexer struct {
	Code     string
	pos      int
	reporter *diagnostics.Reporter
}

// New returns a Lexer over code. Fatal scan errors (an unmatched quote,
// or needing a token past end of input) are reported through reporter.
func New(code string, reporter *diagnostics.Reporter) *Lexer {
	return &Lexer{Code: code, reporter: reporter}
}

// Pos reports the current byte offset of the cursor.
func (l *Lexer) Pos() int {
	return l.pos
}

// Peek returns the next token without advancing the cursor. Like Next, it
// is fatal to call Peek when no token remains.
func (l *Lexer) Peek() token.Token {
	lit, start, end, _ := l.scanFatal(l.pos)
	return token.Token{Literal: lit, Start: start, End: end}
}

// Next returns the next token and advances the cursor past it.
func (l *Lexer) Next() token.Token {
	lit, start, end, next := l.scanFatal(l.pos)
	l.pos = next
	return token.Token{Literal: lit, Start: start, End: end}
}

func (l *Lexer) scanFatal(pos int) (lit string, start, end, next int) {
	lit, start, end, next = l.scan(pos, false)
	if lit == "" {
		l.reporter.Report(l.Code, len(l.Code), len(l.Code), "Unexpected end of input", diagnostics.Syntax)
	}
	return lit, start, end, next
}

// scan returns the next raw token starting at or after i, or "" at true
// end of input. ignoreSpecial is true only while consuming a comment's
// interior: it turns quotes into plain punctuation so an apostrophe inside
// a comment can't start a literal. Comment openers of either kind still
// recurse even inside another comment, which is what makes nesting work —
// each nested { or (* consumes its own body.
func (l *Lexer) scan(i int, ignoreSpecial bool) (lit string, start, end, next int) {
	code := l.Code

	for i < len(code) {
		r, w := utf8.DecodeRuneInString(code[i:])
		if !unicode.IsSpace(r) {
			break
		}
		i += w
	}
	start = i

	var tok string
	if i < len(code) {
		tok = token.MatchPunctuation(code[i:])
	}
	j := i + len(tok)

	switch {
	case tok == "{":
		for j < len(code) {
			inner, _, _, n := l.scan(j, true)
			j = n
			if inner == "}" {
				break
			}
		}
		tok = ""
	case tok == "(*":
		for j < len(code) {
			inner, _, _, n := l.scan(j, true)
			j = n
			if inner == "*)" {
				break
			}
		}
		tok = ""
	case tok == "//":
		for j < len(code) && code[j] != '\n' {
			j++
		}
		if j < len(code) {
			j++ // past the newline
		}
		tok = ""
	case tok == "'" && !ignoreSpecial:
		return l.scanQuoted(i)
	case tok == "":
		j = l.identifierEnd(i)
		tok = upper.String(code[i:j])
	default:
		if folded, ok := token.FoldAlias(tok); ok {
			tok = folded
		}
	}

	if tok != "" {
		return tok, start, j, j
	}
	if j < len(code) {
		return l.scan(j, false)
	}
	return "", j, j, j
}

// scanQuoted consumes a 'quoted literal', preserving internal whitespace
// verbatim and including both delimiting quotes in the returned literal.
func (l *Lexer) scanQuoted(i int) (lit string, start, end, next int) {
	code := l.Code
	j := i + 1
	for j < len(code) && code[j] != '\'' {
		j++
	}
	if j >= len(code) {
		l.reporter.Report(code, i, i+1, "Unmatched ' found", diagnostics.Syntax)
		return "", i, len(code), len(code)
	}
	j++
	return code[i:j], i, j, j
}

// identifierEnd returns the end of the maximal run of non-whitespace,
// non-punctuation characters starting at i.
func (l *Lexer) identifierEnd(i int) int {
	code := l.Code
	j := i
	for j < len(code) {
		r, w := utf8.DecodeRuneInString(code[j:])
		if unicode.IsSpace(r) {
			break
		}
		if token.MatchPunctuation(code[j:]) != "" {
			break
		}
		j += w
	}
	return j
}
