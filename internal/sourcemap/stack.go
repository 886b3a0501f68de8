package sourcemap

// MappedStackFrame is a stack frame with its original position.
type MappedStackFrame struct {
	StackFrame
	Mapped bool
	// The original position is 1-based like the frame's own.
	OriginalFileName     string
	OriginalLineNumber   int
	OriginalColumnNumber int
	// OriginalName comes from the mapping's name or, failing that, from the
	// local binding the function name resolves to at the frame.
	OriginalName string
}

// MapStackFrames maps every frame through the map.
func (sm *SourceMap) MapStackFrames(frames []StackFrame) []MappedStackFrame {
	out := make([]MappedStackFrame, len(frames))
	for i, frame := range frames {
		out[i] = sm.mapStackFrame(frame)
	}
	return out
}

func (sm *SourceMap) mapStackFrame(frame StackFrame) MappedStackFrame {
	mapped := MappedStackFrame{StackFrame: frame}
	if frame.IsNative || frame.LineNumber == nil || frame.ColumnNumber == nil {
		return mapped
	}

	line, column := *frame.LineNumber-1, *frame.ColumnNumber-1
	m, ok := sm.NearestMappingAt(line, column)
	if !ok || m.Source == nil {
		sm.logger.WithField("frame", frame.Raw).Debug("Failed to map stack frame")
		return mapped
	}

	mapped.Mapped = true
	mapped.OriginalFileName = m.Source.URL
	mapped.OriginalLineNumber = m.SourceLine + 1
	mapped.OriginalColumnNumber = m.SourceColumn + 1
	if m.Name != nil {
		mapped.OriginalName = m.Name.Text
	} else if l, ok := sm.LocalAt(line, column, frame.FunctionName, GeneratedName); ok && l.SourceName != nil {
		mapped.OriginalName = l.SourceName.Text
	}
	return mapped
}

// MapStackTrace parses trace, maps its frames and formats the result. With
// debug set every frame is marked as mapped or unmapped.
func (sm *SourceMap) MapStackTrace(trace string, debug bool) string {
	frames := sm.MapStackFrames(ParseStackTrace(trace))
	if debug {
		return FormatWithMetadata(frames)
	}
	return FormatStackTrace(frames)
}
