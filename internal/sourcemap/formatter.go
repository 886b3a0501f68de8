package sourcemap

import (
	"fmt"
	"strings"
	"unicode"
)

// FormatStackFrame formats a frame back into stack trace syntax, keeping the
// indentation of the raw line. Unmapped and native frames are returned as
// they were.
func FormatStackFrame(frame MappedStackFrame) string {
	if !frame.Mapped || frame.IsNative {
		return frame.Raw
	}

	function := frame.FunctionName
	if frame.OriginalName != "" {
		function = frame.OriginalName
	}

	indent := frame.Raw[:len(frame.Raw)-len(strings.TrimLeftFunc(frame.Raw, unicode.IsSpace))]
	return fmt.Sprintf("%sat %s (%s:%d:%d)", indent, function,
		frame.OriginalFileName, frame.OriginalLineNumber, frame.OriginalColumnNumber)
}

// FormatStackTrace formats frames one per line.
func FormatStackTrace(frames []MappedStackFrame) string {
	lines := make([]string, len(frames))
	for i, frame := range frames {
		lines[i] = FormatStackFrame(frame)
	}
	return strings.Join(lines, "\n")
}

// FormatWithMetadata is FormatStackTrace with a mapped marker per frame.
func FormatWithMetadata(frames []MappedStackFrame) string {
	lines := make([]string, len(frames))
	for i, frame := range frames {
		status := "✗ unmapped"
		if frame.Mapped {
			status = "✓ mapped"
		}
		lines[i] = FormatStackFrame(frame) + " " + status
	}
	return strings.Join(lines, "\n")
}
