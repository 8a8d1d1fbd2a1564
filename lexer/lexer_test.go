package lexer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pascalc/diagnostics"
)

func newTestLexer(code string) (*Lexer, *diagnostics.Counters, *bool) {
	var out bytes.Buffer
	counters := &diagnostics.Counters{}
	reporter := diagnostics.New(&out, false, counters)
	exited := false
	reporter.Exit = func(int) { exited = true }
	return New(code, reporter), counters, &exited
}

func tokens(t *testing.T, l *Lexer, n int) []string {
	t.Helper()
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, l.Next().Literal)
	}
	return out
}

func TestSkipsWhitespace(t *testing.T) {
	l, _, _ := newTestLexer("  \n\t BEGIN   END")
	assert.Equal(t, []string{"BEGIN", "END"}, tokens(t, l, 2))
}

func TestBraceCommentSkipped(t *testing.T) {
	l, _, _ := newTestLexer("BEGIN { this is a comment } END")
	assert.Equal(t, []string{"BEGIN", "END"}, tokens(t, l, 2))
}

func TestNestedBraceComment(t *testing.T) {
	l, _, _ := newTestLexer("BEGIN { outer { inner } still outer } END")
	assert.Equal(t, []string{"BEGIN", "END"}, tokens(t, l, 2))
}

func TestStarComment(t *testing.T) {
	l, _, _ := newTestLexer("BEGIN (* a (* nested *) comment *) END")
	assert.Equal(t, []string{"BEGIN", "END"}, tokens(t, l, 2))
}

func TestLineComment(t *testing.T) {
	l, _, _ := newTestLexer("BEGIN // trailing comment\nEND")
	assert.Equal(t, []string{"BEGIN", "END"}, tokens(t, l, 2))
}

func TestQuotedLiteralPreservesWhitespace(t *testing.T) {
	l, _, _ := newTestLexer("'hello   world'")
	tok := l.Next()
	assert.Equal(t, "'hello   world'", tok.Literal)
}

func TestUnmatchedQuoteIsFatal(t *testing.T) {
	l, _, exited := newTestLexer("'never closed")
	l.Next()
	assert.True(t, *exited)
}

func TestUnicodeAliasFolding(t *testing.T) {
	l, _, _ := newTestLexer("A ≤ B ∧ C ≠ D")
	assert.Equal(t, []string{"A", "<=", "B", "AND", "C", "<>", "D"}, tokens(t, l, 7))
}

func TestIdentifiersAreUppercased(t *testing.T) {
	l, _, _ := newTestLexer("myVar AnotherOne")
	assert.Equal(t, []string{"MYVAR", "ANOTHERONE"}, tokens(t, l, 2))
}

func TestLongestMatchPunctuationThroughLexer(t *testing.T) {
	l, _, _ := newTestLexer("x := 1 <= 2")
	assert.Equal(t, []string{"X", ":=", "1", "<=", "2"}, tokens(t, l, 5))
}

func TestPeekDoesNotAdvance(t *testing.T) {
	l, _, _ := newTestLexer("BEGIN END")
	first := l.Peek()
	second := l.Peek()
	require.Equal(t, first, second)
	assert.Equal(t, "BEGIN", l.Next().Literal)
	assert.Equal(t, "END", l.Peek().Literal)
}

func TestConsumingPastEndOfInputIsFatal(t *testing.T) {
	l, _, exited := newTestLexer("END")
	assert.Equal(t, "END", l.Next().Literal)
	l.Next()
	assert.True(t, *exited)
}

func TestQuoteInsideCommentIsPlainPunctuation(t *testing.T) {
	l, _, _ := newTestLexer("BEGIN { don't start a literal } END")
	assert.Equal(t, []string{"BEGIN", "END"}, tokens(t, l, 2))
}

func TestMixedCommentNesting(t *testing.T) {
	l, _, _ := newTestLexer("BEGIN { brace (* and star *) together } END")
	assert.Equal(t, []string{"BEGIN", "END"}, tokens(t, l, 2))
}

func TestUnterminatedCommentRunsToEndOfInput(t *testing.T) {
	l, _, exited := newTestLexer("BEGIN { never closed")
	assert.Equal(t, "BEGIN", l.Next().Literal)
	l.Next() // consumes the comment to end of input, then needs a token
	assert.True(t, *exited)
}
