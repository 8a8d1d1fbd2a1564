package diagnostics

import (
	"bytes"
	"strings"
	"testing"
)

func TestLineAndColumn(t *testing.T) {
	code := "first\nsecond\nthird"
	tests := []struct {
		pos  int
		line int
		col  int
	}{
		{0, 0, 0},
		{4, 0, 4},
		{6, 1, 0},
		{13, 2, 0},
		{15, 2, 2},
	}
	for _, tt := range tests {
		line, col := lineAndColumn(code, tt.pos)
		if line != tt.line || col != tt.col {
			t.Errorf("lineAndColumn(%d) = (%d, %d), want (%d, %d)", tt.pos, line, col, tt.line, tt.col)
		}
	}
}

func TestReportCountsErrorsAndWarnings(t *testing.T) {
	var out bytes.Buffer
	counters := &Counters{}
	r := New(&out, false, counters)
	r.Exit = func(int) { t.Fatal("Exit called for non-syntax class") }

	code := "VAR x: INTEGER;"
	r.Report(code, 4, 5, "something semantic", Error)
	r.Report(code, 4, 5, "something advisory", Warning)
	r.Report(code, 4, 5, "another advisory", Warning)

	if counters.Errors != 1 {
		t.Errorf("Errors = %d, want 1", counters.Errors)
	}
	if counters.Warnings != 2 {
		t.Errorf("Warnings = %d, want 2", counters.Warnings)
	}
}

func TestReportSyntaxClassCallsExit(t *testing.T) {
	var out bytes.Buffer
	counters := &Counters{}
	r := New(&out, false, counters)
	exitCode := -1
	r.Exit = func(code int) { exitCode = code }

	r.Report("BEGIN", 0, 5, "boom", Syntax)

	if exitCode != 1 {
		t.Errorf("exit code = %d, want 1", exitCode)
	}
	if counters.Errors != 0 {
		t.Errorf("syntax diagnostics must not be counted, got %d", counters.Errors)
	}
}

func TestReportRendersLineAndColumnOneBased(t *testing.T) {
	var out bytes.Buffer
	r := New(&out, false, &Counters{})
	r.Exit = func(int) {}

	code := "line one\nline two here"
	r.Report(code, 14, 17, "unexpected token", Error)

	text := out.String()
	if !strings.Contains(text, "at line 2, character 6:") {
		t.Errorf("expected 1-based line/column anchor, got %q", text)
	}
	if !strings.Contains(text, "unexpected token") {
		t.Errorf("expected the message, got %q", text)
	}
	if !strings.Contains(text, "line two here") {
		t.Errorf("expected the offending source line, got %q", text)
	}
}

func TestReportColorizesWhenEnabled(t *testing.T) {
	var plain, colored bytes.Buffer
	rp := New(&plain, false, &Counters{})
	rp.Exit = func(int) {}
	rc := New(&colored, true, &Counters{})
	rc.Exit = func(int) {}

	code := "x := 'oops"
	rp.Report(code, 5, 10, "unterminated quoted literal", Error)
	rc.Report(code, 5, 10, "unterminated quoted literal", Error)

	if strings.Contains(plain.String(), "\x1b[") {
		t.Errorf("plain output should have no escapes: %q", plain.String())
	}
	if !strings.Contains(colored.String(), "\x1b[") {
		t.Errorf("colored output should contain escapes: %q", colored.String())
	}
}
