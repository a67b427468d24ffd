package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layoutfix/pkg/buildinfo"
	"github.com/matzehuels/layoutfix/pkg/cache"
	"github.com/matzehuels/layoutfix/pkg/config"
	"github.com/matzehuels/layoutfix/pkg/correction"
	"github.com/matzehuels/layoutfix/pkg/critic"
	"github.com/matzehuels/layoutfix/pkg/imageanalysis"
	"github.com/matzehuels/layoutfix/pkg/pipeline"
	"github.com/matzehuels/layoutfix/pkg/tokens"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "layoutfix"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Config is loaded by the root command before any subcommand runs.
	Config config.Config

	configPath string
	out        io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// SetOutput redirects command output (not logs).
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "layoutfix corrects and critiques social-media layouts",
		Long:         `layoutfix takes AI-generated layout drafts (text, image and shape layers), repairs them against design rules such as safe margins, type scale, contrast and overlays, then scores the result with a visual critic.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadOrDefault(c.configPath, ".")
			if err != nil {
				return err
			}
			c.Config = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: layoutfix.toml or $"+config.EnvConfig+")")

	// Register all subcommands
	root.AddCommand(c.correctCommand())
	root.AddCommand(c.critiqueCommand())
	root.AddCommand(c.archetypeCommand())
	root.AddCommand(c.tokensCommand())
	root.AddCommand(c.batchCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use from the loaded config.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}

	copts := []correction.Option{}
	if c.Config.Tokens != "" {
		tk, err := tokens.LoadFile(c.Config.Tokens)
		if err != nil {
			_ = ch.Close()
			return nil, err
		}
		copts = append(copts, correction.WithTokens(tk))
	}

	opts := []pipeline.RunnerOption{
		pipeline.WithCorrection(c.Config.Correction.Corrector(), copts...),
		pipeline.WithCritic(critic.New(critic.WithConfig(c.Config.Critic), critic.WithLogger(c.Logger))),
		pipeline.WithCorrectionTTL(c.Config.Cache.TTL),
	}
	if c.Config.Analysis.URL != "" {
		client := imageanalysis.NewClient(c.Config.Analysis.URL,
			imageanalysis.WithCache(ch, c.Config.Analysis.CacheTTL),
			imageanalysis.WithTimeout(c.Config.Analysis.Timeout),
			imageanalysis.WithLogger(c.Logger))
		opts = append(opts, pipeline.WithAnalyzer(client))
	}
	return pipeline.NewRunner(ch, nil, c.Logger, opts...), nil
}

// newCache builds the configured backend, fronted by an in-memory LRU tier
// when memory_size is set.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache || cfg.Backend == config.BackendNone {
		return cache.NewNullCache(), nil
	}

	var back cache.Cache
	switch cfg.Backend {
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{Addr: cfg.RedisAddr, DB: cfg.RedisDB, Prefix: appName + ":"})
		if err != nil {
			return nil, err
		}
		back = rc
	case config.BackendMemory:
		return cache.NewMemoryCache(max(cfg.MemorySize, 1))
	default:
		dir := cfg.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				c.Logger.Warn("no cache directory, caching disabled", "err", err)
				return cache.NewNullCache(), nil
			}
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		back = fc
	}

	if cfg.MemorySize <= 0 {
		return back, nil
	}
	front, err := cache.NewMemoryCache(cfg.MemorySize)
	if err != nil {
		return back, nil
	}
	return cache.NewTiered(front, back, cfg.TTL), nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/layoutfix/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// runFlags are the pipeline flags shared by correct, batch, watch and inspect.
type runFlags struct {
	width, height  float64
	brand          string
	imageURL       string
	validate       bool
	applyArchetype bool
	maxRevisions   int
	refresh        bool
	noCache        bool
}

func (f *runFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.width, "width", 0, "canvas width (default: draft canvas, then config)")
	cmd.Flags().Float64Var(&f.height, "height", 0, "canvas height (default: draft canvas, then config)")
	cmd.Flags().StringVar(&f.brand, "brand", "", "brand key for archetype history")
	cmd.Flags().StringVar(&f.imageURL, "image-url", "", "background photo to analyze when the draft has no analysis")
	cmd.Flags().BoolVar(&f.validate, "validate", false, "run the template validator first")
	cmd.Flags().BoolVar(&f.applyArchetype, "apply-archetype", false, "fit layers into the selected archetype's zones")
	cmd.Flags().IntVar(&f.maxRevisions, "max-revisions", 0, "critic fix rounds (default: config; -1 disables)")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached analysis and corrections")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
}

// options merges, in increasing precedence: config, document, flags.
func (c *CLI) options(doc pipeline.Document, f runFlags) pipeline.Options {
	opts := doc.Options()
	if opts.Width == 0 {
		opts.Width = c.Config.Canvas.Width
	}
	if opts.Height == 0 {
		opts.Height = c.Config.Canvas.Height
	}
	opts.MaxRevisions = c.Config.Correction.MaxRevisions
	if opts.MaxRevisions == 0 {
		opts.MaxRevisions = -1
	}
	opts.Validate = c.Config.Correction.ValidateFirst

	if f.width > 0 {
		opts.Width = f.width
	}
	if f.height > 0 {
		opts.Height = f.height
	}
	if f.brand != "" {
		opts.Brand = f.brand
	}
	if f.imageURL != "" {
		opts.ImageURL = f.imageURL
	}
	if f.maxRevisions != 0 {
		opts.MaxRevisions = f.maxRevisions
	}
	opts.Validate = opts.Validate || f.validate
	opts.ApplyArchetype = f.applyArchetype
	opts.Refresh = f.refresh
	opts.Logger = c.Logger
	return opts
}

// writeJSON writes v as indented JSON to the command output.
func (c *CLI) writeJSON(v any) error {
	data, err := marshalIndent(v)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = c.out.Write(append(data, '\n'))
	return err
}
