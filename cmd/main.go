package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"openml-schema-check/internal/app"
	"openml-schema-check/internal/config"
)

type cliFlags struct {
	logLevel  string
	logFormat string
}

// register binds the flags to fs. Defaults come from the environment so an
// explicit flag always wins.
func (f *cliFlags) register(fs *pflag.FlagSet, cfg *config.Config) {
	fs.StringVar(&f.logLevel, "log-level", cfg.Observability.LogLevel, "log level: debug, info, warn or error")
	fs.StringVar(&f.logFormat, "log-format", cfg.Observability.LogFormat, "log format: console or json")
}

func (f *cliFlags) apply(cfg *config.Config) error {
	switch f.logFormat {
	case "console", "json":
	default:
		return fmt.Errorf("invalid --log-format %q", f.logFormat)
	}
	cfg.Observability.LogLevel = f.logLevel
	cfg.Observability.LogFormat = f.logFormat
	return nil
}

// newRootCommand builds the command. exitCode receives the outcome of the
// validation run.
func newRootCommand(cfg *config.Config, exitCode *int, opts ...app.Option) *cobra.Command {
	flags := &cliFlags{}
	cmd := &cobra.Command{
		Use:           "openml-schema-check",
		Short:         "Check that the pinned OpenML dataset snapshot keeps its schema",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := flags.apply(cfg); err != nil {
				return err
			}
			*exitCode = app.New(cfg, opts...).Run(cmd.Context())
			return nil
		},
	}
	flags.register(cmd.Flags(), cfg)
	return cmd
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	code := 0
	cmd := newRootCommand(config.Load(), &code)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		code = 1
	}
	stop()
	os.Exit(code)
}
