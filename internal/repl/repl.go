package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/peterh/liner"

	"lox/internal/journal"
	"lox/internal/lexer"
	"lox/internal/parser"
	"lox/internal/runner"
	"lox/internal/token"
	"lox/internal/util"
)

const (
	PROMPT      = "> "
	CONT_PROMPT = ". "
	ORIGIN      = "repl"
)

const helpText = `Commands:
  :help              show this help
  :quit, :exit       leave the prompt
  :reset             discard all global definitions
  :load <file>       run a file in this session
  :ast <format|off>  dump the syntax tree of each input (text, json, yaml)
  :runs [n]          show the last n journal entries
An input that ends inside a block, string or statement continues on the
next line; an empty continuation line submits it as is.
`

// LineReader is the part of *liner.State the prompt loop needs.
type LineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

type Repl struct {
	Session *runner.Session
	Journal *journal.Journal // optional, enables :runs
	Out     io.Writer
	Prompt  string
}

// Start runs an interactive prompt on the terminal until EOF or :quit.
func Start(session *runner.Session, j *journal.Journal, cfg *util.Configuration) {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	histPath := cfg.HistoryPath()
	if histPath != "" {
		if f, err := os.Open(histPath); err == nil {
			_, _ = ln.ReadHistory(f)
			_ = f.Close()
		}
	}

	r := &Repl{Session: session, Journal: j, Out: session.Stdout, Prompt: cfg.Prompt}
	r.Loop(ln)

	// Persist history (best-effort)
	if histPath != "" {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		} else {
			slog.Warn("failed to write history", slog.String("path", histPath), slog.Any("error", err))
		}
	}
}

// Loop reads and runs inputs until the reader is exhausted or :quit is
// entered. Errors are reported and never end the loop.
func (r *Repl) Loop(in LineReader) {
	prompt := r.Prompt
	if prompt == "" {
		prompt = PROMPT
	}

	for {
		code, ok := readByParseProbe(in, prompt, CONT_PROMPT)
		if !ok {
			fmt.Fprintln(r.Out)
			return
		}

		if strings.HasPrefix(strings.TrimSpace(code), ":") {
			if done := r.handleReplCommand(code); done {
				return
			}
			in.AppendHistory(strings.TrimSpace(code))
			continue
		}

		// Skip blank
		if strings.TrimSpace(code) == "" {
			continue
		}

		r.Session.Run(ORIGIN, code)
		in.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}
}

// readByParseProbe keeps prompting while the collected input only fails
// because it ended too early.
func readByParseProbe(in LineReader, prompt, cont string) (string, bool) {
	var b strings.Builder

	for {
		var line string
		var err error
		if b.Len() == 0 {
			line, err = in.Prompt(prompt)
		} else {
			line, err = in.Prompt(cont)
		}
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			// Ctrl+C drops the pending input
			return "", true
		}
		if err != nil {
			slog.Warn("failed to read input", slog.Any("error", err))
			return "", false
		}

		if b.Len() > 0 {
			if strings.TrimSpace(line) == "" {
				return b.String(), true
			}
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if strings.HasPrefix(strings.TrimSpace(src), ":") || !isIncomplete(src) {
			return src, true
		}
	}
}

// isIncomplete reports whether src fails to parse only because input ran
// out: an unterminated string or an error reported at end of input.
func isIncomplete(src string) bool {
	if strings.TrimSpace(src) == "" {
		return false
	}

	l := lexer.New(src)
	tokens := l.ScanTokens()
	for _, err := range l.Errors() {
		if err.Message == "Unterminated string." {
			return true
		}
	}

	p := parser.New(tokens)
	p.ParseProgram()
	for _, err := range p.Errors() {
		if err.Token.Type == token.EOF {
			return true
		}
	}
	return false
}

// handleReplCommand handles :help, :quit, :reset, :load, :ast and :runs
func (r *Repl) handleReplCommand(line string) (exit bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case ":help":
		fmt.Fprint(r.Out, helpText)

	case ":quit", ":exit":
		return true

	case ":reset":
		r.Session.Reset()
		fmt.Fprintln(r.Out, "interpreter reset.")

	case ":load":
		if len(fields) < 2 {
			fmt.Fprintln(r.Out, "usage: :load <file>")
			return false
		}
		path := fields[1]
		src, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(r.Out, "cannot read %s: %v\n", path, err)
			return false
		}
		r.Session.Run(path, string(src))

	case ":ast":
		if len(fields) < 2 {
			fmt.Fprintln(r.Out, "usage: :ast <text|json|yaml|off>")
			return false
		}
		format := strings.ToLower(fields[1])
		if format == "off" {
			format = util.DebugASTNone
		}
		cfg := util.Configuration{DebugAST: format}
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(r.Out, err)
			return false
		}
		r.Session.DebugAST = format

	case ":runs":
		r.showRuns(fields[1:])

	default:
		fmt.Fprintf(r.Out, "unknown command %s. Type :help for a list.\n", cmd)
	}
	return false
}

func (r *Repl) showRuns(args []string) {
	if r.Journal == nil {
		fmt.Fprintln(r.Out, "no journal configured; start with -journal <dsn>")
		return
	}

	limit := 10
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			fmt.Fprintln(r.Out, "usage: :runs [n]")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(context.Background(), journal.WriteTimeout)
	defer cancel()

	entries, err := r.Journal.Recent(ctx, limit)
	if err != nil {
		fmt.Fprintf(r.Out, "cannot read journal: %v\n", err)
		return
	}
	for _, e := range entries {
		status := "ok"
		switch {
		case e.HadError:
			status = "error"
		case e.HadRuntimeError:
			status = "runtime error"
		}
		fmt.Fprintf(r.Out, "#%d %s %s %s (%s)\n", e.ID, e.StartedAt.Local().Format(time.DateTime),
			e.Origin, status, e.FinishedAt.Sub(e.StartedAt).Round(time.Microsecond))
	}
}
