package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fastygo/taskflow/internal/app"
	"github.com/fastygo/taskflow/internal/config"
	"github.com/fastygo/taskflow/pkg/logger"
)

// Options are the global flags shared by every command.
type Options struct {
	Driver   string
	DataPath string
	LogLevel string
	Output   string
}

// Builder assembles the engine once flags are parsed.
type Builder func(ctx context.Context, opts Options) (*app.App, error)

// CLI is the taskctl command tree. The engine is built lazily, so help and
// flag errors never touch storage.
type CLI struct {
	root  *cobra.Command
	build Builder
	opts  Options
	app   *app.App
}

func New(build Builder) *CLI {
	if build == nil {
		build = DefaultBuilder
	}
	c := &CLI{build: build}
	c.root = &cobra.Command{
		Use:           "taskctl",
		Short:         "Manage tasks, time tracking and suggestions from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := c.root.PersistentFlags()
	flags.StringVar(&c.opts.Driver, "storage", "", "Storage driver: bolt, sqlite or redis (default from STORAGE_DRIVER)")
	flags.StringVar(&c.opts.DataPath, "data", "", "Path of the bolt or sqlite file")
	flags.StringVar(&c.opts.LogLevel, "log-level", "warn", "Log level written to stderr")
	flags.StringVarP(&c.opts.Output, "output", "o", outputTable, "Output format: table, json or yaml")

	c.root.AddCommand(
		c.addCmd(),
		c.editCmd(),
		c.removeCmd(),
		c.toggleCmd(),
		c.showCmd(),
		c.listCmd(),
		c.countsCmd(),
		c.statsCmd(),
		c.suggestCmd(),
		c.exportCmd(),
		c.importCmd(),
		c.trackCmd(),
		c.sessionsCmd(),
		c.settingsCmd(),
		c.wipeCmd(),
	)
	return c
}

// Command exposes the root command, e.g. for documentation generation.
func (c *CLI) Command() *cobra.Command {
	return c.root
}

// SetOutput redirects command output.
func (c *CLI) SetOutput(out, errOut io.Writer) {
	c.root.SetOut(out)
	c.root.SetErr(errOut)
}

// Execute runs args and closes the engine afterwards.
func (c *CLI) Execute(ctx context.Context, args []string) error {
	c.root.SetArgs(args)
	err := c.root.ExecuteContext(ctx)
	if closeErr := c.close(); err == nil {
		err = closeErr
	}
	return err
}

func (c *CLI) engine(cmd *cobra.Command) (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	a, err := c.build(cmd.Context(), c.opts)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

func (c *CLI) close() error {
	if c.app == nil {
		return nil
	}
	err := c.app.Close(context.Background())
	c.app = nil
	return err
}

// DefaultBuilder loads the environment configuration and applies flag
// overrides. Logs go to stderr so they never mix with command output.
func DefaultBuilder(ctx context.Context, opts Options) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	applyOptions(cfg, opts)

	zapLogger, err := logger.New(logger.Config{
		Level:    opts.LogLevel,
		Encoding: "console",
		Output:   "stderr",
	})
	if err != nil {
		return nil, err
	}
	return app.Build(ctx, cfg, zapLogger)
}

func applyOptions(cfg *config.Config, opts Options) {
	if opts.Driver != "" {
		cfg.Storage.Driver = opts.Driver
	}
	if opts.DataPath == "" {
		return
	}
	switch cfg.Storage.Driver {
	case config.DriverSQLite:
		cfg.Storage.SQLitePath = opts.DataPath
	default:
		cfg.Storage.BoltPath = opts.DataPath
	}
}

// Main is the taskctl entry point.
func Main() int {
	ctx, stop := signalContext()
	defer stop()

	if err := New(nil).Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}
