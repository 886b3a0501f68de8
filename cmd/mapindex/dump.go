package main

import (
	"github.com/spf13/cobra"

	"github.com/yousuf/mapindex/internal/server"
)

type dumpResult struct {
	server.MapSummary `yaml:",inline"`
	MediaTypes        []string             `yaml:"mediaTypes,omitempty"`
	MappingList       []server.MappingView `yaml:"mappingList,omitempty"`
	ScopeList         []server.ScopeView   `yaml:"scopeList,omitempty"`
}

func getCmdDump(gs *globalState) *cobra.Command {
	var mappings, scopes bool

	dumpCmd := &cobra.Command{
		Use:   "dump <map>",
		Short: "Print a summary of a decoded source map",
		Long: `Print a summary of a decoded source map as YAML.

  Sections that failed to load are listed with their error. --mappings and
  --scopes add the full tables.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sm, err := gs.newDecoder().Decode(args[0])
			if err != nil {
				return err
			}

			result := dumpResult{MapSummary: server.Summarize(sm), MediaTypes: sm.MediaTypes()}
			if mappings {
				result.MappingList = server.DescribeMappings(sm.Mappings())
			}
			if scopes {
				for _, s := range sm.Scopes() {
					view := server.DescribeScopeChain(sm, s)[0]
					result.ScopeList = append(result.ScopeList, view)
				}
			}
			return yamlPrint(gs.stdout, result)
		},
	}

	dumpCmd.Flags().BoolVar(&mappings, "mappings", false, "include every mapping")
	dumpCmd.Flags().BoolVar(&scopes, "scopes", false, "include every scope with its locals")
	return dumpCmd
}
