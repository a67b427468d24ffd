package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/layoutfix/pkg/errors"
	"github.com/matzehuels/layoutfix/pkg/pipeline"
)

// batchCommand creates the batch command.
func (c *CLI) batchCommand() *cobra.Command {
	var (
		flags       runFlags
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "batch <dir|draft>...",
		Short: "Correct many drafts concurrently",
		Long: `Correct every draft given on the command line. Directories are walked
for .json, .yaml and .yml drafts; corrected outputs (*.corrected.*) are
skipped. Each corrected draft is written next to its source. A failing
draft is reported and does not stop the others.`,
		Example: `  layoutfix batch drafts/
  layoutfix batch a.json b.yaml --concurrency 8 --validate`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			paths, err := collectDrafts(args)
			if err != nil {
				return err
			}
			if len(paths) == 0 {
				printWarning(c.out, "no drafts found")
				return nil
			}

			runner, err := c.newRunner(ctx, flags.noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			var (
				jobs     []pipeline.Job
				docs     = map[string]pipeline.Document{}
				readErrs []pipeline.BatchResult
			)
			for _, p := range paths {
				doc, err := pipeline.ReadDocument(p)
				if err != nil {
					readErrs = append(readErrs, pipeline.BatchResult{Name: p, Err: err})
					continue
				}
				opts := c.options(doc, flags)
				docs[p] = doc
				jobs = append(jobs, pipeline.Job{Name: p, Layers: doc.Layers, Analysis: doc.Analysis, Options: &opts})
			}

			spin := newSpinnerWithContext(ctx, fmt.Sprintf("Correcting %d drafts...", len(jobs)))
			spin.Start()
			start := time.Now()
			results, err := runner.Batch(ctx, jobs, c.options(pipeline.Document{}, flags), concurrency)
			spin.Stop()
			if err != nil {
				return err
			}
			logger.Debug("batch finished", "drafts", len(jobs), "elapsed", time.Since(start))

			failed := len(readErrs)
			for _, br := range readErrs {
				printError(c.out, "%s: %v", br.Name, br.Err)
			}
			for i, br := range results {
				if br.Err != nil {
					failed++
					printError(c.out, "%s: %v", br.Name, br.Err)
					continue
				}
				out := pipeline.OutputPath(br.Name)
				if err := pipeline.WriteDocument(out, correctedDocument(docs[br.Name], br.Result, *jobs[i].Options)); err != nil {
					failed++
					printError(c.out, "%s: %v", br.Name, err)
					continue
				}
				verdict := StyleSuccess.Render(string(br.Result.Critique.Verdict))
				if !br.Result.Critique.Passed {
					verdict = StyleWarning.Render(string(br.Result.Critique.Verdict))
				}
				printSuccess(c.out, "%s %s %s", br.Name, verdict,
					StyleDim.Render(fmt.Sprintf("%.1f · %d corrections · %s", br.Result.Critique.TotalScore, len(br.Result.Corrections), br.Duration.Round(time.Millisecond))))
			}

			total := len(paths)
			if failed > 0 {
				return fmt.Errorf("%d of %d drafts failed", failed, total)
			}
			printInfo(c.out, "Corrected %s drafts in %s", StyleNumber.Render(fmt.Sprint(total)), time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().IntVarP(&concurrency, "concurrency", "j", pipeline.DefaultConcurrency, "drafts corrected in parallel")

	return cmd
}

// isDraft reports whether path looks like a draft this tool reads and is
// not one of its own outputs.
func isDraft(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return !pipeline.IsOutput(path)
	}
	return false
}

// collectDrafts expands directories into the drafts they contain, sorted by
// path. Explicit files are kept even without a draft extension.
func collectDrafts(args []string) ([]string, error) {
	var paths []string
	seen := map[string]bool{}
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		if err := errors.ValidatePath(arg); err != nil {
			return nil, err
		}
		info, err := os.Stat(arg)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "%s not found", arg)
			}
			return nil, err
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		err = filepath.WalkDir(arg, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if p != arg && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if isDraft(p) {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
	}
	return paths, nil
}
