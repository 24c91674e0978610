package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kobzarvs/qline/internal/app"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var opts app.Options
	cmd := &cobra.Command{
		Use:   "qline",
		Short: "Read lines from the terminal with emacs-style editing",
		Long: `qline reads lines from the controlling terminal with emacs-style editing,
a kill ring and history, and writes every accepted line to stdout.

Enter accepts the line once the input parses as complete in the configured
language; ctrl+j always accepts.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGTERM)
			defer stop()
			return app.New(opts, cmd.OutOrStdout()).Run(ctx)
		},
	}
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default: ~/.config/qline/config.toml)")
	cmd.Flags().BoolVar(&opts.Debug, "debug", os.Getenv("QLINE_DEBUG") != "", "log at debug level")
	cmd.Flags().StringVarP(&opts.Language, "language", "l", "", "language deciding when enter accepts (bash, python, go, toml, yaml)")
	cmd.Flags().StringVarP(&opts.Prompt, "prompt", "p", "", "prompt for the first line")
	cmd.Flags().StringVar(&opts.Term, "term", "", "terminal type (default: $TERM)")
	return cmd
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "qline:", err)
		os.Exit(1)
	}
}
