package pipeline

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/layoutfix/pkg/imageanalysis"
	"github.com/matzehuels/layoutfix/pkg/layer"
)

// Job is one layout in a batch.
type Job struct {
	// Name identifies the job in results and logs, usually the draft path.
	Name     string
	Layers   []layer.Layer
	Analysis *imageanalysis.Analysis
	// Options overrides the batch options for this job when non-nil.
	Options *Options
}

// BatchResult is the outcome of one Job. Exactly one of Result and Err is
// set.
type BatchResult struct {
	Name     string
	Result   *Result
	Err      error
	Duration time.Duration
}

// Batch runs jobs with at most concurrency in flight. Results keep input
// order. A failing job does not stop the others; only context cancellation
// aborts the batch and is returned as the error.
func (r *Runner) Batch(ctx context.Context, jobs []Job, opts Options, concurrency int) ([]BatchResult, error) {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	r.applyLogger(&opts)

	results := make([]BatchResult, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			jobOpts := opts
			if job.Options != nil {
				jobOpts = *job.Options
				if jobOpts.Logger == nil {
					jobOpts.Logger = opts.Logger
				}
			}
			start := time.Now()
			res, err := r.Execute(gctx, job.Layers, job.Analysis, jobOpts)
			results[i] = BatchResult{Name: job.Name, Result: res, Err: err, Duration: time.Since(start)}
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				opts.Logger.Warn("batch job failed", "job", job.Name, "err", err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return results, err
	}

	failed := 0
	for _, br := range results {
		if br.Err != nil {
			failed++
		}
	}
	opts.Logger.Info("batch complete", "jobs", len(jobs), "failed", failed, "concurrency", concurrency)
	return results, nil
}
