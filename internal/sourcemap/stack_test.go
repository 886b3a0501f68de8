package sourcemap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStackLine(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		line     string
		function string
		file     string
		lineNum  int
		colNum   int
		native   bool
	}{
		{"named", "    at handler (out.js:12:34)", "handler", "out.js", 12, 34, false},
		{"method", "at Object.run (/app/out.js:1:2)", "Object.run", "/app/out.js", 1, 2, false},
		{"bare", "  at out.js:3:4", "<anonymous>", "out.js", 3, 4, false},
		{"plain", "file:///app/out.js:5:6", "<anonymous>", "file:///app/out.js", 5, 6, false},
		{"native", "    at Array.map (native)", "Array.map", "native", 0, 0, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			frame := ParseStackLine(tc.line)
			require.NotNil(t, frame)
			assert.Equal(t, tc.line, frame.Raw)
			assert.Equal(t, tc.function, frame.FunctionName)
			assert.Equal(t, tc.file, frame.FileName)
			assert.Equal(t, tc.native, frame.IsNative)
			if tc.native {
				assert.Nil(t, frame.LineNumber)
				return
			}
			require.NotNil(t, frame.LineNumber)
			require.NotNil(t, frame.ColumnNumber)
			assert.Equal(t, tc.lineNum, *frame.LineNumber)
			assert.Equal(t, tc.colNum, *frame.ColumnNumber)
		})
	}

	assert.Nil(t, ParseStackLine("Error: boom"))
	assert.Nil(t, ParseStackLine("   "))
}

func TestParseStackTrace(t *testing.T) {
	t.Parallel()
	frames := ParseStackTrace("Error: boom\r\n    at a (x.js:1:1)\r\n\r\n    at x.js:2:2\r\n")
	require.Len(t, frames, 2)
	assert.Equal(t, "a", frames[0].FunctionName)
	assert.Equal(t, "    at x.js:2:2", frames[1].Raw)
}

const stackMapText = `{
  "version": 3,
  "file": "out.js",
  "sources": ["src/app.ts"],
  "names": ["handler", "h"],
  "mappings": "AAAAA;EACE",
  "x_ms_scopes": "CA>CA<",
  "x_ms_locals": "CD"
}`

func TestMapStackTrace(t *testing.T) {
	t.Parallel()
	sm := decodeText(t, stackMapText)
	require.NoError(t, sm.Err())

	trace := "Error: boom\n" +
		"    at handler (out.js:1:5)\n" +
		"    at h (out.js:2:4)\n" +
		"    at Array.map (native)\n" +
		"    at out.js:9:1"

	frames := sm.MapStackFrames(ParseStackTrace(trace))
	require.Len(t, frames, 4)

	assert.True(t, frames[0].Mapped)
	assert.Equal(t, "/app/src/app.ts", frames[0].OriginalFileName)
	assert.Equal(t, 1, frames[0].OriginalLineNumber)
	assert.Equal(t, 1, frames[0].OriginalColumnNumber)
	assert.Equal(t, "handler", frames[0].OriginalName, "name from the mapping")

	assert.True(t, frames[1].Mapped)
	assert.Equal(t, 2, frames[1].OriginalLineNumber)
	assert.Equal(t, 3, frames[1].OriginalColumnNumber)
	assert.Equal(t, "handler", frames[1].OriginalName, "name from the renamed local")

	assert.False(t, frames[2].Mapped)
	assert.False(t, frames[3].Mapped)

	assert.Equal(t, "    at handler (/app/src/app.ts:1:1)\n"+
		"    at handler (/app/src/app.ts:2:3)\n"+
		"    at Array.map (native)\n"+
		"    at out.js:9:1", sm.MapStackTrace(trace, false))

	assert.Equal(t, "    at handler (/app/src/app.ts:1:1) ✓ mapped\n"+
		"    at handler (/app/src/app.ts:2:3) ✓ mapped\n"+
		"    at Array.map (native) ✗ unmapped\n"+
		"    at out.js:9:1 ✗ unmapped", sm.MapStackTrace(trace, true))
}

func TestFormatStackFrame(t *testing.T) {
	t.Parallel()
	line, column := 3, 7
	frame := MappedStackFrame{
		StackFrame: StackFrame{Raw: "\tat f (out.js:3:7)", FunctionName: "f", FileName: "out.js", LineNumber: &line, ColumnNumber: &column},
		Mapped:     true, OriginalFileName: "a.ts", OriginalLineNumber: 10, OriginalColumnNumber: 2,
	}
	assert.Equal(t, "\tat f (a.ts:10:2)", FormatStackFrame(frame))

	frame.OriginalName = "original"
	assert.Equal(t, "\tat original (a.ts:10:2)", FormatStackFrame(frame))

	frame.Mapped = false
	assert.Equal(t, "\tat f (out.js:3:7)", FormatStackFrame(frame))
}
