package runner

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"lox/internal/ast"
	"lox/internal/evaluator"
	"lox/internal/journal"
	"lox/internal/lexer"
	"lox/internal/object"
	"lox/internal/parser"
	"lox/internal/util"
)

// Result reports what went wrong during one run. It replaces process-wide
// error flags: callers decide exit codes from it.
type Result struct {
	HadError        bool // scan or parse errors; nothing was executed
	HadRuntimeError bool
	Statements      int
}

// Recorder receives one entry per run. *journal.Journal implements it.
type Recorder interface {
	Record(entry journal.Entry)
}

// Session runs sources against one evaluator, so globals persist between
// runs the way they do at the prompt.
type Session struct {
	Stdout io.Writer
	Stderr io.Writer

	// DebugAST selects an AST dump written to Stderr before execution.
	DebugAST string
	// ShowContext prints the offending source lines under diagnostics.
	ShowContext bool
	// Journal, when set, records every run.
	Journal Recorder

	evaluator *evaluator.Evaluator
}

func NewSession(stdout, stderr io.Writer) *Session {
	return &Session{
		Stdout:    stdout,
		Stderr:    stderr,
		evaluator: evaluator.New(stdout),
	}
}

// Reset discards every global binding.
func (s *Session) Reset() {
	s.evaluator = evaluator.New(s.Stdout)
}

// Run scans, parses and executes source. Diagnostics go to Stderr; a scan
// or parse error prevents execution, and the first runtime error stops it.
func (s *Session) Run(origin, source string) Result {
	started := time.Now()
	var result Result
	var diagnostics []string

	report := func(msg string) {
		diagnostics = append(diagnostics, msg)
		fmt.Fprintln(s.Stderr, msg)
	}

	l := lexer.New(source)
	tokens := l.ScanTokens()
	for _, err := range l.Errors() {
		result.HadError = true
		report(s.withContext(err.Error(), source, err.Line))
	}

	p := parser.New(tokens)
	program := p.ParseProgram()
	for _, err := range p.Errors() {
		result.HadError = true
		report(s.withContext(err.Error(), source, err.Token.Line))
	}
	result.Statements = len(program.Statements)

	s.dumpAST(program)

	if !result.HadError {
		if err := s.evaluator.Interpret(program.Statements); err != nil {
			result.HadRuntimeError = true
			report(s.renderRuntimeError(err, source))
		}
	}

	finished := time.Now()
	slog.Debug("run finished",
		slog.String("origin", origin),
		slog.Int("statements", result.Statements),
		slog.Bool("hadError", result.HadError),
		slog.Bool("hadRuntimeError", result.HadRuntimeError),
		slog.Duration("elapsed", finished.Sub(started)))

	if s.Journal != nil {
		s.Journal.Record(journal.Entry{
			Origin:          origin,
			Source:          source,
			Statements:      result.Statements,
			HadError:        result.HadError,
			HadRuntimeError: result.HadRuntimeError,
			Diagnostics:     strings.Join(diagnostics, "\n"),
			StartedAt:       started,
			FinishedAt:      finished,
		})
	}

	return result
}

func (s *Session) withContext(msg, source string, line int) string {
	if !s.ShowContext {
		return msg
	}
	if ctx := util.GetContextLines(source, line); ctx != "" {
		return msg + "\n" + ctx
	}
	return msg
}

func (s *Session) renderRuntimeError(err error, source string) string {
	var rtErr *object.RuntimeError
	if !errors.As(err, &rtErr) {
		return err.Error()
	}
	if !s.ShowContext {
		source = ""
	}
	return object.RenderStacktrace(rtErr, source)
}

func (s *Session) dumpAST(program *ast.Program) {
	var out string
	var err error

	switch s.DebugAST {
	case util.DebugASTNone:
		return
	case util.DebugASTText:
		out = parser.RenderASTAsText(program, 0) + "\n"
	case util.DebugASTJSON:
		out, err = parser.RenderASTAsJSON(program)
	case util.DebugASTYAML:
		out, err = parser.RenderASTAsYAML(program)
	default:
		err = fmt.Errorf("unknown AST format %q", s.DebugAST)
	}

	if err != nil {
		slog.Warn("failed to render AST", slog.Any("error", err))
		return
	}
	io.WriteString(s.Stderr, out)
}
