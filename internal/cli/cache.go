package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layoutfix/pkg/cache"
	"github.com/matzehuels/layoutfix/pkg/config"
)

// cacheCommand creates the cache management command.
func (c *CLI) cacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage cached analyses, corrections and archetype history",
	}

	cmd.AddCommand(c.cacheClearCommand())
	cmd.AddCommand(c.cachePathCommand())

	return cmd
}

// cacheClearCommand creates the "cache clear" subcommand.
func (c *CLI) cacheClearCommand() *cobra.Command {
	var (
		brand   string
		expired bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear the file cache, or one brand's archetype history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if brand != "" {
				return c.clearHistory(cmd, brand)
			}
			if c.Config.Cache.Backend != config.BackendFile {
				return fmt.Errorf("cache clear only empties the file backend (configured: %s); use --brand to reset history", c.Config.Cache.Backend)
			}

			dir, err := c.fileCacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			if expired {
				return c.pruneCache(cmd, dir)
			}
			count, err := clearDir(dir)
			if err != nil {
				return err
			}
			if count == 0 {
				printInfo(c.out, "Cache is empty")
				return nil
			}
			printSuccess(c.out, "Cleared %d cached entries", count)
			printDetail(c.out, "Directory: %s", dir)
			return nil
		},
	}

	cmd.Flags().StringVar(&brand, "brand", "", "only forget this brand's recently used archetypes")
	cmd.Flags().BoolVar(&expired, "expired", false, "only remove expired or unreadable entries")
	return cmd
}

func (c *CLI) pruneCache(cmd *cobra.Command, dir string) error {
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return err
	}
	count, err := fc.Prune(cmd.Context())
	if err != nil {
		return fmt.Errorf("prune cache: %w", err)
	}
	printSuccess(c.out, "Removed %d expired entries", count)
	printDetail(c.out, "Directory: %s", dir)
	return nil
}

func (c *CLI) clearHistory(cmd *cobra.Command, brand string) error {
	runner, err := c.newRunner(cmd.Context(), false)
	if err != nil {
		return err
	}
	defer runner.Close()

	if err := runner.History().Clear(cmd.Context(), brand); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	printSuccess(c.out, "Cleared archetype history for %s", StyleHighlight.Render(brand))
	return nil
}

// cachePathCommand creates the "cache path" subcommand.
func (c *CLI) cachePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the file cache directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.fileCacheDir()
			if err != nil {
				return fmt.Errorf("get cache dir: %w", err)
			}
			fmt.Fprintln(c.out, dir)
			return nil
		},
	}
}

// fileCacheDir returns the configured cache directory, or the XDG default.
func (c *CLI) fileCacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// clearDir removes every file under dir along with its subdirectories,
// keeping dir itself. A missing dir counts as empty.
func clearDir(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	count := 0
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("scan cache dir: %w", err)
	}

	for _, e := range entries {
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			return count, fmt.Errorf("clear cache: %w", err)
		}
	}
	return count, nil
}
