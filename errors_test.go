package nexus

import (
	"errors"
	"strconv"
	"strings"
	"testing"
)

func mustContain(t *testing.T, s, sub string) {
	t.Helper()
	if !strings.Contains(s, sub) {
		t.Fatalf("expected output to contain %q\n--- output ---\n%s", sub, s)
	}
}

func mustRuntimeAtLine(t *testing.T, msg string, line int) {
	t.Helper()
	want := "RUNTIME ERROR at " + strconv.Itoa(line) + ":"
	if !strings.Contains(msg, want) {
		t.Fatalf("expected runtime error to report line %d\n--- output ---\n%s", line, msg)
	}
}

func Test_ErrorWrap_Parse_ShowsCaretAndContext(t *testing.T) {
	// Two lines; parse error on line 2: missing ')'
	src := "var x = 1\nf(1"

	_, err := ParseProgram(src)
	if err == nil {
		t.Fatalf("expected parse error, got nil")
	}
	msg := WrapErrorWithSource(err, src).Error()

	mustContain(t, msg, "PARSE ERROR at 2:")
	mustContain(t, msg, "   1 | var x = 1")
	mustContain(t, msg, "   2 | f(1")
	mustContain(t, msg, "expected ')' after arguments")
	mustContain(t, msg, "     | ")
	mustContain(t, msg, "^")
}

func Test_ErrorWrap_Lex_ShowsCaretAndContext(t *testing.T) {
	src := "var ok = 1\nvar bad = @"

	_, err := ParseProgram(src)
	if err == nil {
		t.Fatalf("expected lex error, got nil")
	}
	if _, isLex := err.(*LexError); !isLex {
		t.Fatalf("expected *LexError, got %T", err)
	}
	msg := WrapErrorWithSource(err, src).Error()

	mustContain(t, msg, "LEXICAL ERROR at 2:")
	mustContain(t, msg, "   1 | var ok = 1")
	mustContain(t, msg, "   2 | var bad = @")
	mustContain(t, msg, "unexpected character")
	mustContain(t, msg, "^")
}

func Test_ErrorWrap_Runtime_ShowsKindAndCaret(t *testing.T) {
	src := "var a = 1\na + true"
	ip := NewInterpreter()
	_, err := ip.EvalSource(src)
	if err == nil {
		t.Fatalf("expected runtime error, got nil")
	}
	msg := WrapErrorWithSource(err, src).Error()

	mustRuntimeAtLine(t, msg, 2)
	mustContain(t, msg, "TypeError:")
	mustContain(t, msg, "   1 | var a = 1")
	mustContain(t, msg, "   2 | a + true")
	mustContain(t, msg, "^")
}

func Test_ErrorWrap_CaretColumn(t *testing.T) {
	// The illegal '@' sits at byte column 8 (0-based); the caret must sit
	// under it.
	src := "var x = @"
	_, err := ParseProgram(src)
	if err == nil {
		t.Fatalf("expected lex error")
	}
	le, ok := err.(*LexError)
	if !ok {
		t.Fatalf("expected *LexError, got %T", err)
	}
	if le.Line != 1 || le.Col != 8 {
		t.Fatalf("want 1:8, got %d:%d", le.Line, le.Col)
	}
	msg := WrapErrorWithSource(err, src).Error()
	caretLine := "     | " + strings.Repeat(" ", 8) + "^"
	mustContain(t, msg, caretLine)
}

func Test_ErrorWrap_WithName_IncludesSourceName(t *testing.T) {
	src := "f(1"
	_, err := ParseProgram(src)
	if err == nil {
		t.Fatalf("expected parse error")
	}
	msg := WrapErrorWithName(err, "scripts/boot.nv", src).Error()
	mustContain(t, msg, "PARSE ERROR in scripts/boot.nv at 1:")
}

func Test_ErrorWrap_ForeignErrors_PassThrough(t *testing.T) {
	plain := errors.New("not ours")
	if got := WrapErrorWithSource(plain, "whatever"); got != plain {
		t.Fatalf("foreign errors must pass through unchanged, got %v", got)
	}
}

func Test_ErrorWrap_PositionBeyondSource_Clamps(t *testing.T) {
	// A runtime error whose position outruns the snippet source must not
	// panic the renderer.
	re := &RuntimeError{Kind: ErrType, Line: 99, Col: 42, Msg: "synthetic"}
	msg := WrapErrorWithSource(re, "one line").Error()
	mustContain(t, msg, "TypeError: synthetic")
	mustContain(t, msg, "   1 | one line")
}

func Test_RuntimeError_RawFormat(t *testing.T) {
	re := &RuntimeError{Kind: ErrArity, Line: 3, Col: 5, Msg: "f() expects 1 argument(s), got 2"}
	want := "RUNTIME ERROR at 3:5: ArityError: f() expects 1 argument(s), got 2"
	if re.Error() != want {
		t.Fatalf("got %q, want %q", re.Error(), want)
	}
	if re.Rendered() != "ArityError: f() expects 1 argument(s), got 2" {
		t.Fatalf("Rendered: %q", re.Rendered())
	}
}

func Test_IsIncomplete(t *testing.T) {
	// open block, interactive parse
	_, err := ParseProgramInteractive("while (x) {")
	if !IsIncomplete(err) {
		t.Fatalf("open block should be incomplete, got %v", err)
	}

	// unterminated string runs off the end of input
	_, err = ParseProgramInteractive(`var s = "oops`)
	if !IsIncomplete(err) {
		t.Fatalf("unterminated string should be incomplete, got %v", err)
	}

	// unterminated block comment likewise
	_, err = ParseProgramInteractive("/* still going")
	if !IsIncomplete(err) {
		t.Fatalf("open block comment should be incomplete, got %v", err)
	}

	// a hard syntax error is complete even interactively
	_, err = ParseProgramInteractive("var 5 = 1")
	if err == nil || IsIncomplete(err) {
		t.Fatalf("want hard error, got %v", err)
	}

	if IsIncomplete(nil) {
		t.Fatalf("nil is not incomplete")
	}
	if IsIncomplete(errors.New("other")) {
		t.Fatalf("foreign errors are not incomplete")
	}
}
