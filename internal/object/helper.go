package object

import (
	"bytes"
	"fmt"
	"lox/internal/util"
)

// RenderStacktrace formats a runtime error with the offending source line
// and the chain of calls that led to it.
func RenderStacktrace(rtErr *RuntimeError, src string) string {
	var buf bytes.Buffer

	buf.WriteString(rtErr.Error())

	if src != "" {
		if ctx := util.GetContextLines(src, rtErr.Token.Line); ctx != "" {
			buf.WriteString("\n")
			buf.WriteString(ctx)
		}
	}

	buf.WriteString(formatRuntimeErrorStack(rtErr))

	return buf.String()
}

// Helper: turn a RuntimeError's stack trace into a human-readable string.
func formatRuntimeErrorStack(rtErr *RuntimeError) string {
	var buf bytes.Buffer

	for _, frame := range rtErr.StackTrace {
		fmt.Fprintf(&buf, "\n  at %s() [line %d]", frame.Function, frame.Line)
	}

	return buf.String()
}
