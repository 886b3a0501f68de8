package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yousuf/mapindex/internal/server"
	"github.com/yousuf/mapindex/internal/sourcemap"
)

type lookupResult struct {
	Mapping   *server.MappingView  `yaml:"mapping,omitempty"`
	Generated []server.MappingView `yaml:"generated,omitempty"`
	Scopes    []server.ScopeView   `yaml:"scopes,omitempty"`
	Local     *server.LocalView    `yaml:"local,omitempty"`
}

func getCmdLookup(gs *globalState) *cobra.Command {
	var (
		exact  bool
		source string
		name   string
		side   string
	)

	lookupCmd := &cobra.Command{
		Use:   "lookup <map> <line> <column>",
		Short: "Look up a position in a source map",
		Long: `Look up a position in a source map.

  By default the position is in the generated file and the result is the
  mapping covering it, the scope chain at it and, with --name, the local the
  name resolves to. With --source the position is in that source file and the
  result lists the generated positions mapped to it.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			line, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid line %q: %w", args[1], err)
			}
			column, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid column %q: %w", args[2], err)
			}

			sm, err := gs.newDecoder().Decode(args[0])
			if err != nil {
				return err
			}
			if err := sm.Err(); err != nil {
				gs.logger.WithError(err).Warn("Some sections failed to decode")
			}

			var result lookupResult
			if source != "" {
				src, ok := sm.SourceByURL(source)
				if !ok {
					return fmt.Errorf("source %q not found in %s", source, sm.MapFile())
				}
				result.Generated = server.DescribeMappings(sm.CandidateMappingsAt(src.Index, line, column))
				return yamlPrint(gs.stdout, result)
			}

			lookup := sm.NearestMappingAt
			if exact {
				lookup = sm.MappingAt
			}
			if m, ok := lookup(line, column); ok {
				view := server.DescribeMapping(m)
				result.Mapping = &view
			}
			if s, ok := sm.NarrowestScopeAt(line, column); ok {
				result.Scopes = server.DescribeScopeChain(sm, s)
			}
			if name != "" {
				nameSide := sourcemap.GeneratedName
				if side == "source" {
					nameSide = sourcemap.SourceName
				} else if side != "generated" {
					return fmt.Errorf("invalid side %q (must be generated or source)", side)
				}
				if l, ok := sm.LocalAt(line, column, name, nameSide); ok {
					view := server.DescribeLocal(l)
					result.Local = &view
				}
			}
			return yamlPrint(gs.stdout, result)
		},
	}

	flags := lookupCmd.Flags()
	flags.BoolVar(&exact, "exact", false, "only match a mapping starting exactly at the column")
	flags.StringVar(&source, "source", "", "treat the position as one in this source file")
	flags.StringVar(&name, "name", "", "resolve this variable name at the position")
	flags.StringVar(&side, "side", "generated", "which name of a local --name matches: generated or source")
	return lookupCmd
}
