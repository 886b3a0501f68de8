package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/yousuf/mapindex/internal/config"
	"github.com/yousuf/mapindex/internal/host"
	"github.com/yousuf/mapindex/internal/session"
	"github.com/yousuf/mapindex/internal/sourcemap"
)

// globalState holds what every command needs. Tests swap the filesystem and
// the output streams.
type globalState struct {
	ctx    context.Context
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer

	configPath string
	logLevel   string
	strict     bool

	cfg    *config.Config
	logger *logrus.Logger
}

func newGlobalState(ctx context.Context) *globalState {
	return &globalState{
		ctx:        ctx,
		fs:         afero.NewOsFs(),
		stdout:     os.Stdout,
		stderr:     os.Stderr,
		configPath: os.Getenv("MAPINDEX_CONFIG"),
	}
}

func newRootCommand(gs *globalState) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mapindex",
		Short: "Decode and query JavaScript source maps",
		Long: `Decode and query JavaScript source maps.

Flat maps, index maps and the x_ms_scopes, x_ms_locals and x_ms_mediaTypes
extensions are supported. Lines and columns are zero-based.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: gs.persistentPreRunE,
	}
	rootCmd.PersistentFlags().AddFlagSet(gs.persistentFlagSet())

	rootCmd.AddCommand(
		getCmdServe(gs),
		getCmdLookup(gs),
		getCmdDump(gs),
	)
	return rootCmd
}

func (gs *globalState) persistentFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.StringVarP(&gs.configPath, "config", "c", gs.configPath, "YAML config file")
	flags.StringVar(&gs.logLevel, "log-level", "", "override the configured log level")
	flags.BoolVar(&gs.strict, "strict", false, "fail on any malformed or unloadable section")
	return flags
}

func (gs *globalState) persistentPreRunE(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(gs.fs, gs.configPath)
	if err != nil {
		return err
	}
	if gs.logLevel != "" {
		if _, err := logrus.ParseLevel(gs.logLevel); err != nil {
			return err
		}
		cfg.Log.Level = gs.logLevel
	}
	if cmd.Flags().Changed("strict") {
		cfg.Decoder.Strict = gs.strict
	}

	gs.cfg = cfg
	gs.logger = cfg.Log.NewLogger(gs.stderr)
	return nil
}

func (gs *globalState) newDecoder() *sourcemap.Decoder {
	return sourcemap.NewDecoder(host.New(gs.fs), gs.logger, gs.cfg.Decoder.Options())
}

func (gs *globalState) newManager() *session.Manager {
	return session.NewManager(gs.newDecoder(), gs.logger, gs.cfg.Cache.MaxEntries)
}

func yamlPrint(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("could not marshal YAML: %w", err)
	}
	return enc.Close()
}
