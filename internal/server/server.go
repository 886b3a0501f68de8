package server

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"

	"github.com/yousuf/mapindex/internal/session"
	"github.com/yousuf/mapindex/internal/sourcemap"
)

// MapArgs names the source map a tool works on.
type MapArgs struct {
	Map string `json:"map" jsonschema:"Path or file:// URL of the source map (flat or index map)"`
}

// GeneratedPositionArgs represents the arguments for the scope_at tool
type GeneratedPositionArgs struct {
	Map    string `json:"map" jsonschema:"Path or file:// URL of the source map"`
	Line   int    `json:"line" jsonschema:"Zero-based generated line"`
	Column int    `json:"column" jsonschema:"Zero-based generated column in UTF-16 code units"`
}

// OriginalLocationArgs represents the arguments for the original_location tool
type OriginalLocationArgs struct {
	Map    string `json:"map" jsonschema:"Path or file:// URL of the source map"`
	Line   int    `json:"line" jsonschema:"Zero-based generated line"`
	Column int    `json:"column" jsonschema:"Zero-based generated column in UTF-16 code units"`
	Exact  bool   `json:"exact,omitempty" jsonschema:"Only match a mapping starting exactly at the column (default: false)"`
}

// GeneratedLocationsArgs represents the arguments for the generated_locations tool
type GeneratedLocationsArgs struct {
	Map    string `json:"map" jsonschema:"Path or file:// URL of the source map"`
	Source string `json:"source" jsonschema:"Source URL as listed by decode_source_map, or relative to the map"`
	Line   int    `json:"line" jsonschema:"Zero-based source line"`
	Column *int   `json:"column,omitempty" jsonschema:"Zero-based source column. Omit to match the whole line"`
}

// ResolveLocalArgs represents the arguments for the resolve_local tool
type ResolveLocalArgs struct {
	Map    string `json:"map" jsonschema:"Path or file:// URL of the source map"`
	Line   int    `json:"line" jsonschema:"Zero-based generated line"`
	Column int    `json:"column" jsonschema:"Zero-based generated column in UTF-16 code units"`
	Name   string `json:"name" jsonschema:"Variable name to resolve"`
	Side   string `json:"side,omitempty" jsonschema:"Which name to match: generated (default) or source"`
}

// MapStackTraceArgs represents the arguments for the map_stack_trace tool
type MapStackTraceArgs struct {
	Map   string `json:"map" jsonschema:"Path or file:// URL of the source map"`
	Trace string `json:"trace" jsonschema:"JavaScript stack trace of the generated code"`
	Debug bool   `json:"debug,omitempty" jsonschema:"Mark every frame as mapped or unmapped (default: false)"`
}

// OriginalLocationResult is the result of original_location.
type OriginalLocationResult struct {
	Found   bool         `json:"found"`
	Mapping *MappingView `json:"mapping,omitempty"`
}

// GeneratedLocationsResult is the result of generated_locations.
type GeneratedLocationsResult struct {
	Mappings []MappingView `json:"mappings"`
}

// ScopeAtResult is the result of scope_at.
type ScopeAtResult struct {
	Found bool `json:"found"`
	// Scopes lists the narrowest scope first, then its ancestors.
	Scopes []ScopeView `json:"scopes"`
}

// ResolveLocalResult is the result of resolve_local.
type ResolveLocalResult struct {
	Found bool       `json:"found"`
	Local *LocalView `json:"local,omitempty"`
	Scope *ScopeView `json:"scope,omitempty"`
}

// MapStackTraceResult is the result of map_stack_trace.
type MapStackTraceResult struct {
	Trace  string `json:"trace"`
	Frames int    `json:"frames"`
	Mapped int    `json:"mapped"`
}

// NewMcpServer creates and configures the MCP server
func NewMcpServer(maps *session.Manager, logger logrus.FieldLogger) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "mapindex",
		Version: "1.0.0",
	}, &mcp.ServerOptions{
		Instructions: `
Source map queries

mapindex decodes JavaScript source maps, including index maps and the
x_ms_scopes, x_ms_locals and x_ms_mediaTypes extensions, and answers
questions about them. Maps are cached after the first call.

All lines and columns are zero-based. Columns count UTF-16 code units.

Available Tools:
1. "decode_source_map" - Decode a map and list its sections and sources
2. "original_location" - Map a generated position to its source position
3. "generated_locations" - Find the generated positions of a source position
4. "scope_at" - Show the scope chain and locals at a generated position
5. "resolve_local" - Resolve a variable name at a generated position
6. "map_stack_trace" - Rewrite a stack trace of the generated code
`,
	})

	server.AddReceivingMiddleware(createLoggingMiddleware(logger))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "decode_source_map",
		Description: "Decode a source map and summarise its sections, sources and record counts. Sections that failed to load are listed with their error.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args MapArgs) (*mcp.CallToolResult, MapSummary, error) {
		sm, err := maps.GetOrDecode(ctx, args.Map)
		if err != nil {
			return nil, MapSummary{}, err
		}
		return nil, Summarize(sm), nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "original_location",
		Description: "Map a generated position to the source position of the mapping covering it.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args OriginalLocationArgs) (*mcp.CallToolResult, OriginalLocationResult, error) {
		sm, err := maps.GetOrDecode(ctx, args.Map)
		if err != nil {
			return nil, OriginalLocationResult{}, err
		}

		lookup := sm.NearestMappingAt
		if args.Exact {
			lookup = sm.MappingAt
		}
		m, ok := lookup(args.Line, args.Column)
		if !ok {
			return nil, OriginalLocationResult{}, nil
		}
		view := DescribeMapping(m)
		return nil, OriginalLocationResult{Found: true, Mapping: &view}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "generated_locations",
		Description: "List every mapping, from any section, that points at a source line or position.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args GeneratedLocationsArgs) (*mcp.CallToolResult, GeneratedLocationsResult, error) {
		sm, err := maps.GetOrDecode(ctx, args.Map)
		if err != nil {
			return nil, GeneratedLocationsResult{}, err
		}

		src, ok := sm.SourceByURL(args.Source)
		if !ok {
			return nil, GeneratedLocationsResult{}, fmt.Errorf("source %q not found in %s", args.Source, sm.MapFile())
		}

		var ms []*sourcemap.Mapping
		if args.Column == nil {
			ms = sm.CandidateMappingsAtSourceLine(src.Index, args.Line)
		} else {
			ms = sm.CandidateMappingsAt(src.Index, args.Line, *args.Column)
		}
		return nil, GeneratedLocationsResult{Mappings: DescribeMappings(ms)}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "scope_at",
		Description: "Show the narrowest scope containing a generated position, its enclosing scopes and the locals each declares.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args GeneratedPositionArgs) (*mcp.CallToolResult, ScopeAtResult, error) {
		sm, err := maps.GetOrDecode(ctx, args.Map)
		if err != nil {
			return nil, ScopeAtResult{}, err
		}

		s, ok := sm.NarrowestScopeAt(args.Line, args.Column)
		if !ok {
			return nil, ScopeAtResult{Scopes: []ScopeView{}}, nil
		}
		return nil, ScopeAtResult{Found: true, Scopes: DescribeScopeChain(sm, s)}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "resolve_local",
		Description: "Resolve a variable name among the locals of the narrowest scope at a generated position. Enclosing scopes are not searched.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args ResolveLocalArgs) (*mcp.CallToolResult, ResolveLocalResult, error) {
		side, err := parseSide(args.Side)
		if err != nil {
			return nil, ResolveLocalResult{}, err
		}
		sm, err := maps.GetOrDecode(ctx, args.Map)
		if err != nil {
			return nil, ResolveLocalResult{}, err
		}

		l, ok := sm.LocalAt(args.Line, args.Column, args.Name, side)
		if !ok {
			return nil, ResolveLocalResult{}, nil
		}
		local := DescribeLocal(l)
		result := ResolveLocalResult{Found: true, Local: &local}
		if s, ok := sm.Scope(l.Scope); ok {
			scope := DescribeScopeChain(sm, s)[0]
			result.Scope = &scope
		}
		return nil, result, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "map_stack_trace",
		Description: "Rewrite the frames of a stack trace thrown by the generated code to their source positions and names.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, args MapStackTraceArgs) (*mcp.CallToolResult, MapStackTraceResult, error) {
		sm, err := maps.GetOrDecode(ctx, args.Map)
		if err != nil {
			return nil, MapStackTraceResult{}, err
		}

		frames := sm.MapStackFrames(sourcemap.ParseStackTrace(args.Trace))
		result := MapStackTraceResult{Frames: len(frames)}
		for _, f := range frames {
			if f.Mapped {
				result.Mapped++
			}
		}
		if args.Debug {
			result.Trace = sourcemap.FormatWithMetadata(frames)
		} else {
			result.Trace = sourcemap.FormatStackTrace(frames)
		}
		return nil, result, nil
	})

	return server
}

func parseSide(side string) (sourcemap.NameSide, error) {
	switch side {
	case "", "generated":
		return sourcemap.GeneratedName, nil
	case "source":
		return sourcemap.SourceName, nil
	}
	return 0, fmt.Errorf("invalid side %q (must be generated or source)", side)
}
