package sourcemap

import (
	"regexp"
	"strconv"
	"strings"
)

// StackFrame is one frame of a JavaScript stack trace.
type StackFrame struct {
	// Raw is the line as it appeared in the trace.
	Raw          string
	FunctionName string
	FileName     string
	// Line and column numbers are 1-based, nil when the frame has none.
	LineNumber   *int
	ColumnNumber *int
	IsNative     bool
}

var (
	nativeFramePattern = regexp.MustCompile(`at\s+(.+?)\s+\(native\)`)
	namedFramePattern  = regexp.MustCompile(`at\s+(.+?)\s+\((.+?):(\d+):(\d+)\)`)
	bareFramePattern   = regexp.MustCompile(`at\s+(.+?):(\d+):(\d+)`)
	plainFramePattern  = regexp.MustCompile(`^(.+?):(\d+):(\d+)$`)
)

// ParseStackTrace parses every recognised frame of a multi-line stack trace.
func ParseStackTrace(trace string) []StackFrame {
	frames := make([]StackFrame, 0)
	for _, line := range strings.Split(trace, "\n") {
		if frame := ParseStackLine(strings.TrimSuffix(line, "\r")); frame != nil {
			frames = append(frames, *frame)
		}
	}
	return frames
}

// ParseStackLine parses a single stack trace line. Handles:
//   - at functionName (file:line:column)
//   - at file:line:column
//   - at functionName (native)
//   - file:line:column
func ParseStackLine(line string) *StackFrame {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	if strings.Contains(trimmed, "(native)") {
		name := "unknown"
		if m := nativeFramePattern.FindStringSubmatch(trimmed); m != nil {
			name = m[1]
		}
		return &StackFrame{Raw: line, FunctionName: name, FileName: "native", IsNative: true}
	}

	if m := namedFramePattern.FindStringSubmatch(trimmed); m != nil {
		return newFrame(line, m[1], m[2], m[3], m[4])
	}
	if m := bareFramePattern.FindStringSubmatch(trimmed); m != nil {
		return newFrame(line, "<anonymous>", m[1], m[2], m[3])
	}
	if m := plainFramePattern.FindStringSubmatch(trimmed); m != nil {
		return newFrame(line, "<anonymous>", m[1], m[2], m[3])
	}
	return nil
}

func newFrame(raw, function, file, line, column string) *StackFrame {
	lineNum, _ := strconv.Atoi(line)
	colNum, _ := strconv.Atoi(column)
	return &StackFrame{
		Raw:          raw,
		FunctionName: function,
		FileName:     file,
		LineNumber:   &lineNum,
		ColumnNumber: &colNum,
	}
}
