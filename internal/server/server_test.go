package server

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yousuf/mapindex/internal/host"
	"github.com/yousuf/mapindex/internal/session"
	"github.com/yousuf/mapindex/internal/sourcemap"
	"github.com/yousuf/mapindex/internal/testutils"
)

const testMapText = `{
  "version": 3,
  "file": "out.js",
  "sources": ["a.ts"],
  "names": ["a", "b", "x"],
  "mappings": "AAAA;;;;EAOA",
  "x_ms_scopes": "CA>EA>EA<KA<",
  "x_ms_locals": "A;CC"
}`

func connect(t *testing.T) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/app/out.js.map", []byte(testMapText), 0o644))

	logger := testutils.NewLogger(t)
	maps := session.NewManager(sourcemap.NewDecoder(host.New(fs), logger, sourcemap.Options{}), logger, 0)

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	ss, err := NewMcpServer(maps, logger).Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "mapindex-test", Version: "1.0.0"}, nil)
	cs, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func callTool[T any](t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) T {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	require.False(t, res.IsError, text.Text)

	var out T
	require.NoError(t, json.Unmarshal([]byte(text.Text), &out))
	return out
}

func requireToolError(t *testing.T, cs *mcp.ClientSession, name string, args map[string]any) string {
	t.Helper()
	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{Name: name, Arguments: args})
	if err != nil {
		return err.Error()
	}
	require.True(t, res.IsError)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestListTools(t *testing.T) {
	t.Parallel()
	cs := connect(t)

	res, err := cs.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	var names []string
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"decode_source_map", "original_location", "generated_locations",
		"scope_at", "resolve_local", "map_stack_trace",
	}, names)
}

func TestDecodeSourceMapTool(t *testing.T) {
	t.Parallel()
	cs := connect(t)

	summary := callTool[MapSummary](t, cs, "decode_source_map", map[string]any{"map": "/app/out.js.map"})
	assert.Equal(t, "/app/out.js.map", summary.Map)
	assert.Equal(t, "/app/out.js", summary.GeneratedFile)
	assert.False(t, summary.IndexMap)
	require.Len(t, summary.Sections, 1)
	assert.Empty(t, summary.Sections[0].Error)
	require.Len(t, summary.Sources, 1)
	assert.Equal(t, "/app/a.ts", summary.Sources[0].URL)
	assert.Equal(t, 2, summary.Mappings)
	assert.Equal(t, 2, summary.Scopes)
	assert.Equal(t, 2, summary.Locals)

	msg := requireToolError(t, cs, "decode_source_map", map[string]any{"map": "/app/none.js.map"})
	assert.Contains(t, msg, "none.js.map")
}

func TestOriginalLocationTool(t *testing.T) {
	t.Parallel()
	cs := connect(t)

	res := callTool[OriginalLocationResult](t, cs, "original_location", map[string]any{
		"map": "/app/out.js.map", "line": 4, "column": 5,
	})
	require.True(t, res.Found)
	require.NotNil(t, res.Mapping)
	assert.Equal(t, 1, res.Mapping.Index)
	assert.Equal(t, "/app/a.ts", res.Mapping.Source)
	assert.Equal(t, &sourcemap.Position{Line: 7, Column: 0}, res.Mapping.Original)

	res = callTool[OriginalLocationResult](t, cs, "original_location", map[string]any{
		"map": "/app/out.js.map", "line": 4, "column": 5, "exact": true,
	})
	assert.False(t, res.Found)
}

func TestGeneratedLocationsTool(t *testing.T) {
	t.Parallel()
	cs := connect(t)

	res := callTool[GeneratedLocationsResult](t, cs, "generated_locations", map[string]any{
		"map": "/app/out.js.map", "source": "a.ts", "line": 7,
	})
	require.Len(t, res.Mappings, 1)
	assert.Equal(t, sourcemap.Position{Line: 4, Column: 2}, res.Mappings[0].Generated)

	res = callTool[GeneratedLocationsResult](t, cs, "generated_locations", map[string]any{
		"map": "/app/out.js.map", "source": "/app/a.ts", "line": 7, "column": 3,
	})
	assert.Empty(t, res.Mappings)

	msg := requireToolError(t, cs, "generated_locations", map[string]any{
		"map": "/app/out.js.map", "source": "b.ts", "line": 0,
	})
	assert.Contains(t, msg, `source "b.ts" not found`)
}

func TestScopeAtTool(t *testing.T) {
	t.Parallel()
	cs := connect(t)

	res := callTool[ScopeAtResult](t, cs, "scope_at", map[string]any{"map": "/app/out.js.map", "line": 4, "column": 0})
	require.True(t, res.Found)
	require.Len(t, res.Scopes, 2)
	assert.Equal(t, 1, res.Scopes[0].Index)
	assert.Equal(t, 0, res.Scopes[1].Index)
	require.Len(t, res.Scopes[0].Locals, 1)
	assert.Equal(t, LocalView{Index: 1, GeneratedName: "b", SourceName: "x", Renamed: true}, res.Scopes[0].Locals[0])
	require.Len(t, res.Scopes[1].Locals, 1)
	assert.True(t, res.Scopes[1].Locals[0].Hidden)

	res = callTool[ScopeAtResult](t, cs, "scope_at", map[string]any{"map": "/app/out.js.map", "line": 20, "column": 0})
	assert.False(t, res.Found)
	assert.Empty(t, res.Scopes)
}

func TestResolveLocalTool(t *testing.T) {
	t.Parallel()
	cs := connect(t)

	res := callTool[ResolveLocalResult](t, cs, "resolve_local", map[string]any{
		"map": "/app/out.js.map", "line": 4, "column": 0, "name": "x", "side": "source",
	})
	require.True(t, res.Found)
	assert.Equal(t, "b", res.Local.GeneratedName)
	require.NotNil(t, res.Scope)
	assert.Equal(t, 1, res.Scope.Index)

	res = callTool[ResolveLocalResult](t, cs, "resolve_local", map[string]any{
		"map": "/app/out.js.map", "line": 4, "column": 0, "name": "x",
	})
	assert.False(t, res.Found, "generated names are matched by default")

	msg := requireToolError(t, cs, "resolve_local", map[string]any{
		"map": "/app/out.js.map", "line": 4, "column": 0, "name": "x", "side": "both",
	})
	assert.Contains(t, msg, `invalid side "both"`)
}

func TestMapStackTraceTool(t *testing.T) {
	t.Parallel()
	cs := connect(t)

	res := callTool[MapStackTraceResult](t, cs, "map_stack_trace", map[string]any{
		"map":   "/app/out.js.map",
		"trace": "Error: boom\n    at f (out.js:5:3)\n    at g (out.js:30:1)",
	})
	assert.Equal(t, 2, res.Frames)
	assert.Equal(t, 1, res.Mapped)
	assert.Equal(t, "    at f (/app/a.ts:8:1)\n    at g (out.js:30:1)", res.Trace)
}
