package runner

import (
	"bytes"
	"strings"
	"testing"

	"lox/internal/journal"
	"lox/internal/util"
)

type recorded struct {
	entries []journal.Entry
}

func (r *recorded) Record(entry journal.Entry) {
	r.entries = append(r.entries, entry)
}

func TestRun(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		stdout string
		stderr string
		result Result
	}{
		{
			name:   "ok",
			input:  "print 2*3; var x = 3; print x;",
			stdout: "6\n3\n",
			result: Result{Statements: 3},
		},
		{
			name:   "scan error prevents execution",
			input:  "print 1;\nprint @;",
			stderr: "[line 2] Error: Unexpected character '@'.\n[line 2] Error at ';': Expect expression.\n",
			result: Result{HadError: true, Statements: 1},
		},
		{
			name:   "parse error keeps later statements",
			input:  "print 1 +;\nprint 2;",
			stderr: "[line 1] Error at ';': Expect expression.\n",
			result: Result{HadError: true, Statements: 1},
		},
		{
			name:   "runtime error",
			input:  "print \"a\";\nprint 1 + \"2\";\nprint \"b\";",
			stdout: "a\n",
			stderr: "[line 2] Runtime error at '+': no valid operator for operand types: number + string\n",
			result: Result{HadRuntimeError: true, Statements: 3},
		},
		{
			name:   "runtime error in call",
			input:  "fun f() { return nil + 1; }\nf();",
			stderr: "[line 1] Runtime error at '+': no valid operator for operand types: nil + number\n  at f() [line 2]\n",
			result: Result{HadRuntimeError: true, Statements: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			s := NewSession(&stdout, &stderr)

			result := s.Run("test.lox", tt.input)
			if result != tt.result {
				t.Errorf("result expected=%+v, got=%+v", tt.result, result)
			}
			if stdout.String() != tt.stdout {
				t.Errorf("stdout expected=%q, got=%q", tt.stdout, stdout.String())
			}
			if stderr.String() != tt.stderr {
				t.Errorf("stderr expected=%q, got=%q", tt.stderr, stderr.String())
			}
		})
	}
}

func TestSessionKeepsGlobals(t *testing.T) {
	var stdout, stderr bytes.Buffer
	s := NewSession(&stdout, &stderr)

	s.Run("repl", "var a = 1;")
	s.Run("repl", "print a + 1;")
	if stdout.String() != "2\n" {
		t.Fatalf("expected=%q, got=%q", "2\n", stdout.String())
	}

	// a failed line does not end the session
	if r := s.Run("repl", "print b;"); !r.HadRuntimeError {
		t.Fatalf("expected runtime error")
	}
	s.Run("repl", "print a;")
	if stdout.String() != "2\n1\n" {
		t.Fatalf("expected=%q, got=%q", "2\n1\n", stdout.String())
	}

	s.Reset()
	stderr.Reset()
	s.Run("repl", "print a;")
	if !strings.Contains(stderr.String(), "undefined variable 'a'") {
		t.Errorf("reset kept globals: %q", stderr.String())
	}
}

func TestShowContext(t *testing.T) {
	var stdout, stderr bytes.Buffer
	s := NewSession(&stdout, &stderr)
	s.ShowContext = true

	s.Run("test.lox", "var a = 1;\nvar b = 2;\nprint a + nil;")

	expected := "[line 3] Runtime error at '+': no valid operator for operand types: number + nil\n" +
		"       1 | var a = 1;\n" +
		"       2 | var b = 2;\n" +
		"  >    3 | print a + nil;\n"
	if stderr.String() != expected {
		t.Errorf("expected=%q, got=%q", expected, stderr.String())
	}
}

func TestDebugAST(t *testing.T) {
	formats := []struct {
		format string
		want   string
	}{
		{util.DebugASTText, "print (1 + 2);\n"},
		{util.DebugASTJSON, `"type": "PrintStatement"`},
		{util.DebugASTYAML, "type: PrintStatement"},
	}

	for _, tt := range formats {
		t.Run(tt.format, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			s := NewSession(&stdout, &stderr)
			s.DebugAST = tt.format

			s.Run("test.lox", "print 1 + 2;")
			if !strings.Contains(stderr.String(), tt.want) {
				t.Errorf("dump missing %q:\n%s", tt.want, stderr.String())
			}
			if stdout.String() != "3\n" {
				t.Errorf("program output expected=%q, got=%q", "3\n", stdout.String())
			}
		})
	}
}

func TestJournalRecording(t *testing.T) {
	var stdout, stderr bytes.Buffer
	rec := &recorded{}
	s := NewSession(&stdout, &stderr)
	s.Journal = rec

	s.Run("a.lox", "print 1;")
	s.Run("b.lox", "print x;")

	if len(rec.entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(rec.entries))
	}
	first, second := rec.entries[0], rec.entries[1]
	if first.Origin != "a.lox" || first.Statements != 1 || first.HadRuntimeError || first.Diagnostics != "" {
		t.Errorf("unexpected first entry: %+v", first)
	}
	if !second.HadRuntimeError || !strings.Contains(second.Diagnostics, "undefined variable 'x'") {
		t.Errorf("unexpected second entry: %+v", second)
	}
	if second.FinishedAt.Before(second.StartedAt) {
		t.Errorf("finished before started: %+v", second)
	}
}
