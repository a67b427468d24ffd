package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layoutfix/internal/cli"
	"github.com/matzehuels/layoutfix/pkg/errors"
	"github.com/matzehuels/layoutfix/pkg/observability"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		if stderrors.Is(err, context.Canceled) {
			os.Exit(130) // Standard shell convention for SIGINT
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(errors.ExitCode(err))
	}
}

func run(ctx context.Context) error {
	// A .env next to the working directory may carry LAYOUTFIX_* settings.
	if err := godotenv.Load(); err != nil && !stderrors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}
	if err := registerHooks(); err != nil {
		return err
	}

	var verbose bool

	c := cli.New(os.Stderr, cli.LogInfo)
	root := c.RootCommand()

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	originalPreRun := root.PersistentPreRunE
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		level := cli.LogInfo
		if verbose {
			level = cli.LogDebug
		}
		c.SetLogLevel(level)

		if originalPreRun != nil {
			return originalPreRun(cmd, args)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}

// registerHooks routes pipeline, cache and HTTP events to the global
// OpenTelemetry providers. They stay no-ops until an SDK is installed.
func registerHooks() error {
	pipelineHooks, err := observability.NewOTelPipelineHooks()
	if err != nil {
		return fmt.Errorf("pipeline metrics: %w", err)
	}
	cacheHooks, err := observability.NewOTelCacheHooks()
	if err != nil {
		return fmt.Errorf("cache metrics: %w", err)
	}
	httpHooks, err := observability.NewOTelHTTPHooks()
	if err != nil {
		return fmt.Errorf("http metrics: %w", err)
	}
	observability.SetPipelineHooks(pipelineHooks)
	observability.SetCacheHooks(cacheHooks)
	observability.SetHTTPHooks(httpHooks)
	return nil
}
