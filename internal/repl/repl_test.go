package repl

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"lox/internal/journal"
	"lox/internal/runner"
	"lox/internal/util"
)

type scriptedReader struct {
	lines   []string
	prompts []string
	history []string
}

func (s *scriptedReader) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.lines) == 0 {
		return "", io.EOF
	}
	line := s.lines[0]
	s.lines = s.lines[1:]
	return line, nil
}

func (s *scriptedReader) AppendHistory(item string) {
	s.history = append(s.history, item)
}

func newTestRepl() (*Repl, *bytes.Buffer, *bytes.Buffer) {
	var stdout, stderr bytes.Buffer
	session := runner.NewSession(&stdout, &stderr)
	return &Repl{Session: session, Out: &stdout}, &stdout, &stderr
}

func TestIsIncomplete(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"", false},
		{"print 1;", false},
		{"print );", false},
		{"var 1;", false},
		{"print 1", true},
		{"1 +", true},
		{"{", true},
		{"fun f() {", true},
		{"if (a) {\n print a;", true},
		{"print \"abc", true},
		{"print \"a\nb\";", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := isIncomplete(tt.input); got != tt.expected {
				t.Errorf("isIncomplete(%q) expected=%t, got=%t", tt.input, tt.expected, got)
			}
		})
	}
}

func TestLoop(t *testing.T) {
	r, stdout, stderr := newTestRepl()
	in := &scriptedReader{lines: []string{
		"var a = 1;",
		"{",
		"  print a;",
		"}",
		":reset",
		"print a;",
		":quit",
		"print 2;",
	}}

	r.Loop(in)

	if stdout.String() != "1\ninterpreter reset.\n" {
		t.Errorf("stdout expected=%q, got=%q", "1\ninterpreter reset.\n", stdout.String())
	}
	if !strings.Contains(stderr.String(), "undefined variable 'a'") {
		t.Errorf("expected undefined variable after reset, got %q", stderr.String())
	}

	expectedPrompts := []string{PROMPT, PROMPT, CONT_PROMPT, CONT_PROMPT, PROMPT, PROMPT, PROMPT}
	if strings.Join(in.prompts, "|") != strings.Join(expectedPrompts, "|") {
		t.Errorf("prompts expected=%q, got=%q", expectedPrompts, in.prompts)
	}
	if len(in.lines) != 1 {
		t.Errorf("expected :quit to stop reading, %d lines left", len(in.lines))
	}
	if in.history[1] != "{   print a; }" {
		t.Errorf("multi-line history entry expected on one line, got %q", in.history[1])
	}
}

func TestEmptyContinuationSubmits(t *testing.T) {
	r, stdout, stderr := newTestRepl()
	in := &scriptedReader{lines: []string{"print 1", "", "print 2;"}}

	r.Loop(in)

	expected := "[line 1] Error at end: Expect ';' after value.\n"
	if stderr.String() != expected {
		t.Errorf("stderr expected=%q, got=%q", expected, stderr.String())
	}
	// the final newline comes from reaching end of input
	if stdout.String() != "2\n\n" {
		t.Errorf("stdout expected=%q, got=%q", "2\n\n", stdout.String())
	}
}

func TestReplCommands(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "lib.lox")
	if err := os.WriteFile(script, []byte("fun twice(x) { return x * 2; }\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		lines   []string
		want    string
		wantAST string
	}{
		{name: "help", lines: []string{":help"}, want: ":load <file>"},
		{name: "unknown", lines: []string{":frob"}, want: "unknown command :frob"},
		{name: "load", lines: []string{":load " + script, "print twice(21);"}, want: "42\n"},
		{name: "load missing", lines: []string{":load " + filepath.Join(dir, "nope.lox")}, want: "cannot read"},
		{name: "load usage", lines: []string{":load"}, want: "usage: :load <file>"},
		{name: "ast json", lines: []string{":ast json"}, wantAST: util.DebugASTJSON},
		{name: "ast off", lines: []string{":ast text", ":ast off"}, wantAST: util.DebugASTNone},
		{name: "ast invalid", lines: []string{":ast xml"}, want: "invalid debug_ast format"},
		{name: "runs without journal", lines: []string{":runs"}, want: "no journal configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, stdout, _ := newTestRepl()
			r.Loop(&scriptedReader{lines: tt.lines})

			if !strings.Contains(stdout.String(), tt.want) {
				t.Errorf("output missing %q:\n%s", tt.want, stdout.String())
			}
			if r.Session.DebugAST != tt.wantAST {
				t.Errorf("DebugAST expected=%q, got=%q", tt.wantAST, r.Session.DebugAST)
			}
		})
	}
}

func TestRunsCommand(t *testing.T) {
	j, err := journal.Open("sqlite3://:memory:")
	if err != nil {
		t.Fatalf("open journal: %v", err)
	}
	defer j.Close()

	r, stdout, _ := newTestRepl()
	r.Journal = j
	r.Session.Journal = j

	r.Loop(&scriptedReader{lines: []string{"print 1;", "print x;", ":runs 5", ":runs zero"}})

	out := stdout.String()
	for _, want := range []string{"#1 ", "repl ok", "#2 ", "repl runtime error", "usage: :runs [n]"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "#2 ") > strings.Index(out, "#1 ") {
		t.Errorf("expected newest run first:\n%s", out)
	}
}
