package parser

import (
	"fmt"
	"strings"
	"testing"

	"lox/internal/ast"
	"lox/internal/lexer"
)

func parse(t *testing.T, input string) (*ast.Program, []*ParseError) {
	t.Helper()
	l := lexer.New(input)
	tokens := l.ScanTokens()
	if errs := l.Errors(); len(errs) > 0 {
		t.Fatalf("scan errors: %v", errs)
	}
	p := New(tokens)
	program := p.ParseProgram()
	return program, p.Errors()
}

func checkParserErrors(t *testing.T, errs []*ParseError) {
	t.Helper()
	if len(errs) == 0 {
		return
	}
	t.Errorf("parser has %d errors", len(errs))
	for _, err := range errs {
		t.Errorf("parser error: %s", err)
	}
	t.FailNow()
}

func TestOperatorPrecedence(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"-123 * (45.67);", "(; (* (- 123) (group 45.67)))"},
		{"1 + 2 * 3;", "(; (+ 1 (* 2 3)))"},
		{"1 - 2 - 3;", "(; (- (- 1 2) 3))"},
		{"a = b = c;", "(; (= a (= b c)))"},
		{"!!true;", "(; (! (! true)))"},
		{"1 < 2 == 3 >= 4;", "(; (== (< 1 2) (>= 3 4)))"},
		{"a or b and c;", "(; (or a (and b c)))"},
		{"-f(1)(2, 3);", "(; (- (call (call f 1) 2 3)))"},
		{"x = 1 + 2;", "(; (= x (+ 1 2)))"},
		{`print "hi" + nil;`, `(print (+ "hi" nil))`},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program, errs := parse(t, tt.input)
			checkParserErrors(t, errs)
			if got := program.String(); got != tt.expected {
				t.Errorf("expected=%q, got=%q", tt.expected, got)
			}
		})
	}
}

func TestStatements(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"var a;", "(var a nil)"},
		{"var a = 1;", "(var a 1)"},
		{"{ var a = 1; print a; }", "(block (var a 1) (print a))"},
		{"if (a) print 1; else print 2;", "(if-else a (print 1) (print 2))"},
		{"if (a) if (b) print 1; else print 2;", "(if a (if-else b (print 1) (print 2)))"},
		{"while (a) a = a - 1;", "(while a (; (= a (- a 1))))"},
		{"fun add(a, b) { return a + b; }", "(fun add (a b) (return (+ a b)))"},
		{"fun f() { return; }", "(fun f () (return))"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program, errs := parse(t, tt.input)
			checkParserErrors(t, errs)
			if got := program.String(); got != tt.expected {
				t.Errorf("expected=%q, got=%q", tt.expected, got)
			}
		})
	}
}

func TestForDesugaring(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			"for (var i = 0; i < 3; i = i + 1) print i;",
			"(block (var i 0) (while (< i 3) (block (print i) (; (= i (+ i 1))))))",
		},
		{"for (;;) print 1;", "(while true (print 1))"},
		{"for (x = 0; x < 1;) print x;", "(block (; (= x 0)) (while (< x 1) (print x)))"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program, errs := parse(t, tt.input)
			checkParserErrors(t, errs)
			if got := program.String(); got != tt.expected {
				t.Errorf("expected=%q, got=%q", tt.expected, got)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		input      string
		errors     []string
		statements int
	}{
		{"print 1 +; print 2;", []string{"[line 1] Error at ';': Expect expression."}, 1},
		{"print 1", []string{"[line 1] Error at end: Expect ';' after value."}, 0},
		{"var 1 = 2; print 3;", []string{"[line 1] Error at '1': Expect variable name."}, 1},
		{"a + b = c;", []string{"[line 1] Error at '=': Invalid assignment target."}, 1},
		{"return 1;", []string{"[line 1] Error at 'return': Can't return from top-level code."}, 1},
		{"(1;\nprint 2;", []string{"[line 1] Error at ';': Expect ')' after expression."}, 1},
		{"{ print 1;", []string{"[line 1] Error at end: Expect '}' after block."}, 0},
		{"print 1 print 2; var x = 3;", []string{"[line 1] Error at 'print': Expect ';' after value."}, 1},
		{"if (true) var x = 1;", []string{"[line 1] Error at 'var': Expect expression."}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program, errs := parse(t, tt.input)
			if len(errs) != len(tt.errors) {
				t.Fatalf("expected %d errors, got %d: %v", len(tt.errors), len(errs), errs)
			}
			for i, err := range errs {
				if err.Error() != tt.errors[i] {
					t.Errorf("error %d: expected=%q, got=%q", i, tt.errors[i], err.Error())
				}
			}
			if len(program.Statements) != tt.statements {
				t.Errorf("expected %d statements, got %d (%s)", tt.statements, len(program.Statements), program)
			}
		})
	}
}

func TestResyncInsideBlock(t *testing.T) {
	program, errs := parse(t, "{ var = 1; print 2; }\nprint 3;")
	if len(errs) != 1 {
		t.Fatalf("expected 1 error, got %v", errs)
	}
	if got := program.String(); got != "(block (print 2))\n(print 3)" {
		t.Errorf("got=%q", got)
	}
}

func TestArgumentLimit(t *testing.T) {
	args := make([]string, 256)
	params := make([]string, 256)
	for i := range args {
		args[i] = "1"
		params[i] = fmt.Sprintf("p%d", i)
	}

	_, errs := parse(t, "f("+strings.Join(args, ", ")+");")
	if len(errs) != 1 || errs[0].Message != "Can't have more than 255 arguments." {
		t.Errorf("unexpected errors for 256 arguments: %v", errs)
	}

	program, errs := parse(t, "fun f("+strings.Join(params, ", ")+") {}")
	if len(errs) != 1 || errs[0].Message != "Can't have more than 255 parameters." {
		t.Errorf("unexpected errors for 256 parameters: %v", errs)
	}
	if len(program.Statements) != 1 {
		t.Errorf("function with too many parameters should still be parsed")
	}

	_, errs = parse(t, "f("+strings.Join(args[:255], ", ")+");")
	checkParserErrors(t, errs)
}

func TestEmptyProgram(t *testing.T) {
	program, errs := parse(t, "")
	checkParserErrors(t, errs)
	if len(program.Statements) != 0 {
		t.Errorf("expected no statements, got %d", len(program.Statements))
	}

	// A token stream without a trailing EOF still terminates.
	p := New(nil)
	if program := p.ParseProgram(); len(program.Statements) != 0 {
		t.Errorf("expected no statements from empty token stream")
	}
}

func TestRenderAST(t *testing.T) {
	program, errs := parse(t, "fun f(a) { if (a) print \"x\"; else return -a; }\nvar y;")
	checkParserErrors(t, errs)

	text := RenderASTAsText(program, 0)
	expectedText := "fun f(a) {\n  if (a) print \"x\"; else return (-a);\n}\nvar y;"
	if text != expectedText {
		t.Errorf("text dump:\nexpected=%q\ngot=%q", expectedText, text)
	}

	js, err := RenderASTAsJSON(program)
	if err != nil {
		t.Fatalf("json: %v", err)
	}
	for _, want := range []string{`"type": "FunctionStatement"`, `"name": "y"`, `"initializer": null`} {
		if !strings.Contains(js, want) {
			t.Errorf("json dump missing %s:\n%s", want, js)
		}
	}

	y, err := RenderASTAsYAML(program)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	for _, want := range []string{"type: Program", "type: ReturnStatement", "type: Unary", "name: f"} {
		if !strings.Contains(y, want) {
			t.Errorf("yaml dump missing %s:\n%s", want, y)
		}
	}
}
