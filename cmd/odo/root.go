package main

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/fbkclanna/odometer/internal/config"
	"github.com/fbkclanna/odometer/internal/engine"
	"github.com/fbkclanna/odometer/internal/logging"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "odo",
		Short:         "Roll, set, and sync package versions across a workspace",
		Version:       buildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.String("dir", ".", "Directory to start workspace discovery from")
	pf.String("config", "", "Config file (default: nearest "+config.FileName+")")
	pf.Bool("include-ignored", false, "Consider members matched by ignore rules")
	pf.String("format", "", "Output format: simple, json, or yaml")
	pf.String("log-level", "", "Log level: debug, info, warn, or error")
	pf.BoolP("verbose", "v", false, "Debug logging and per-file progress")

	cmd.AddCommand(
		newRollCmd(),
		newSetCmd(),
		newSyncCmd(),
		newShowCmd(),
		newLintCmd(),
	)

	return cmd
}

// app is the per-invocation state shared by every subcommand.
type app struct {
	cfg     *config.Config
	logger  *log.Logger
	engine  *engine.Engine
	dir     string
	verbose bool
}

// setup loads configuration with flags taking precedence over env, file,
// and defaults, then builds the logger and engine.
func setup(cmd *cobra.Command) (*app, error) {
	flags := cmd.Flags()
	dir, _ := flags.GetString("dir")
	cfgPath, _ := flags.GetString("config")
	verbose, _ := flags.GetBool("verbose")

	cfg, used, err := config.Load(dir, cfgPath)
	if err != nil {
		return nil, err
	}
	if flags.Changed("format") {
		cfg.Format, _ = flags.GetString("format")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("include-ignored") {
		cfg.IncludeIgnored, _ = flags.GetBool("include-ignored")
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if used != "" {
		logger.Debug("loaded config", "path", used)
	}

	eng := engine.New(*cfg, logger)
	eng.ToolVersion = buildVersion

	return &app{cfg: cfg, logger: logger, engine: eng, dir: dir, verbose: verbose}, nil
}

func (a *app) request(cmd *cobra.Command) engine.Request {
	includeIgnored, _ := cmd.Flags().GetBool("include-ignored")
	return engine.Request{Dir: a.dir, IncludeIgnored: includeIgnored}
}
