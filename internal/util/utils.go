package util

import (
	"bytes"
	"fmt"
	"strings"
)

// FormatDiagnostic renders a compile-time diagnostic. where is the location
// hint, e.g. " at 'foo'" or " at end", and may be empty.
func FormatDiagnostic(line int, where string, message string) string {
	return fmt.Sprintf("[line %d] Error%s: %s", line, where, message)
}

// GetContextLines extracts and formats the lines leading up to errorLine,
// marking the error line with an arrow. It returns "" when errorLine is out
// of range.
func GetContextLines(src string, errorLine int) string {
	lines := strings.Split(src, "\n")
	if errorLine < 1 || errorLine > len(lines) {
		return ""
	}

	var result bytes.Buffer

	// Show 2 lines before the error line (if available)
	startLine := errorLine - 2
	if startLine < 1 {
		startLine = 1
	}

	for i := startLine; i <= errorLine; i++ {
		lineContent := strings.TrimRight(lines[i-1], "\r")
		if i == errorLine {
			// Error line with arrow
			result.WriteString(fmt.Sprintf("  >  %3d | %s", i, lineContent))
		} else {
			// Context line
			result.WriteString(fmt.Sprintf("     %3d | %s\n", i, lineContent))
		}
	}

	return result.String()
}
