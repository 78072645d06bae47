package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dyne/textsvc/internal/config"
	"github.com/dyne/textsvc/internal/log"
	"github.com/dyne/textsvc/internal/service"
)

type globalOptions struct {
	Verbose    bool
	ConfigPath string
	Seed       uint64
	Plugins    []string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootOpts := &globalOptions{}
	root := &cobra.Command{
		Use:           "textsvc",
		Short:         "Run text services from the command line, a TUI, MCP or over SQLite columns",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVar(&rootOpts.Verbose, "verbose", false, "enable debug logging")
	root.PersistentFlags().StringVar(&rootOpts.ConfigPath, "config", "", "configuration file (.yaml or .toml); defaults to $"+config.EnvPath)
	root.PersistentFlags().Uint64Var(&rootOpts.Seed, "seed", 0, "seed for the shuffle service (0 = random)")
	root.PersistentFlags().StringSliceVar(&rootOpts.Plugins, "plugin", nil, "plugin .so path (repeatable)")

	root.AddCommand(listCmd(rootOpts))
	root.AddCommand(runCmd(rootOpts))
	root.AddCommand(tuiCmd(rootOpts))
	root.AddCommand(mcpCmd(rootOpts))
	root.AddCommand(batchCmd(rootOpts))
	root.AddCommand(planCmd(rootOpts))
	root.AddCommand(inspectCmd(rootOpts))
	return root
}

// logger writes to stderr so stdout stays clean for service output and the
// MCP protocol. base is the level used without --verbose.
func (o *globalOptions) logger(cmd *cobra.Command, base log.Level) *log.Logger {
	level := base
	if o.Verbose {
		level = log.LevelDebug
	}
	return log.New(level, cmd.ErrOrStderr())
}

func (o *globalOptions) randSource() service.RandSource {
	if o.Seed != 0 {
		return service.SeededSource(o.Seed)
	}
	return service.EntropySource()
}

// catalogue loads the configuration and assembles the registry: stock
// services, then plugins, then configured services, which may refer to
// plugin types.
func (o *globalOptions) catalogue(logger *log.Logger) (*service.Registry, *config.Config, error) {
	path := config.ResolvePath(o.ConfigPath)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, err
	}
	if path != "" {
		logger.Debugf("config %s", path)
	}
	src := o.randSource()
	reg := service.NewRegistry()
	if err := service.RegisterDefaults(reg, src); err != nil {
		return nil, nil, err
	}
	plugins := append(append([]string{}, cfg.Plugins...), o.Plugins...)
	if err := service.LoadPlugins(reg, plugins); err != nil {
		return nil, nil, err
	}
	if len(plugins) > 0 {
		logger.Debugf("plugins %s", strings.Join(plugins, ", "))
	}
	if err := service.RegisterConfigured(reg, cfg, src); err != nil {
		return nil, nil, err
	}
	logger.Debugf("catalogue has %d services", reg.Len())
	return reg, cfg, nil
}
