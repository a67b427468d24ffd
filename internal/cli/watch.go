package cli

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/layoutfix/pkg/errors"
)

// DefaultDebounce is how long watch waits for writes to settle before
// correcting a changed draft.
const DefaultDebounce = 300 * time.Millisecond

// watchCommand creates the watch command.
func (c *CLI) watchCommand() *cobra.Command {
	var (
		flags    runFlags
		debounce time.Duration
	)

	cmd := &cobra.Command{
		Use:   "watch <dir>",
		Short: "Re-correct drafts whenever they change",
		Long: `Watch a directory tree and correct every draft that is created or
written, once its writes have settled. Outputs (*.corrected.*) are ignored
so the tool never reacts to its own files. Stop with Ctrl+C.`,
		Example: `  layoutfix watch drafts/
  layoutfix watch drafts/ --debounce 1s --apply-archetype`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			dir := args[0]
			if err := errors.ValidatePath(dir); err != nil {
				return err
			}
			if info, err := os.Stat(dir); err != nil || !info.IsDir() {
				return errors.New(errors.ErrCodeInvalidPath, "%s is not a directory", dir)
			}

			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			printInfo(c.out, "Watching %s %s", StyleValue.Render(dir), StyleDim.Render("(Ctrl+C to stop)"))
			return watchDrafts(ctx, dir, debounce, loggerFromContext(ctx), func(path string) {
				res, out, err := c.correctFile(ctx, runner, path, "", flags)
				if err != nil {
					printError(c.out, "%s: %v", path, err)
					return
				}
				c.printResult(path, out, res)
			})
		},
	}

	flags.register(cmd)
	cmd.Flags().DurationVar(&debounce, "debounce", DefaultDebounce, "quiet period before a changed draft is corrected")

	return cmd
}

// watchDrafts calls fn for each draft under root that is created or written,
// after no further events arrived for the debounce period. Drafts changed
// within one period are handled together, in path order. It returns nil when
// ctx is cancelled.
func watchDrafts(ctx context.Context, root string, debounce time.Duration, logger *log.Logger, fn func(path string)) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}
	logger.Debug("watcher started", "root", root, "debounce", debounce)

	pending := map[string]bool{}
	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			timerCh = timer.C
			return
		}
		timer.Reset(debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Debug("watcher stopped")
			return nil

		case <-timerCh:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			clear(pending)
			slices.Sort(paths)
			for _, p := range paths {
				if ctx.Err() != nil {
					return nil
				}
				fn(p)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addDirsRecursive(w, ev.Name); err != nil {
						logger.Warn("watch new directory", "path", ev.Name, "err", err)
					}
					continue
				}
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 || !isDraft(ev.Name) {
				continue
			}
			logger.Debug("draft changed", "path", ev.Name, "op", ev.Op.String())
			pending[ev.Name] = true
			schedule()

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher error", "err", err)
		}
	}
}

// addDirsRecursive adds root and its non-hidden subdirectories to w.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
