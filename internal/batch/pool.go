// Package batch runs one operation over many files with a bounded number of
// workers.
package batch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/maxkimambo/windmill/internal/logger"
)

// Job is one file to process.
type Job struct {
	Index int
	Path  string
}

// Result is the outcome of one job. Summary is filled by the job function.
type Result struct {
	Path     string
	Summary  string
	Err      error
	Duration time.Duration
	WorkerID int
}

// Func processes one file and returns a short summary of what it found.
type Func func(ctx context.Context, path string) (string, error)

// Pool runs jobs on a fixed number of workers.
type Pool struct {
	concurrency int
}

// NewPool returns a pool with the given number of workers, at least one.
func NewPool(concurrency int) *Pool {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Pool{concurrency: concurrency}
}

// Run processes every path and returns the results in input order. Jobs not
// started before ctx is cancelled report the context error.
func (p *Pool) Run(ctx context.Context, paths []string, fn Func) []Result {
	results := make([]Result, len(paths))
	jobs := make(chan Job)

	workers := min(p.concurrency, len(paths))
	logger.Op.WithFields(map[string]interface{}{
		"concurrency": workers,
		"jobs":        len(paths),
	}).Debug("Starting worker pool")

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for job := range jobs {
				results[job.Index] = process(ctx, id, job, fn)
			}
		}(i + 1)
	}

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			for j := i; j < len(paths); j++ {
				results[j] = Result{Path: paths[j], Err: fmt.Errorf("not processed: %w", err)}
			}
			break
		}
		jobs <- Job{Index: i, Path: path}
	}
	close(jobs)
	wg.Wait()

	logger.Op.WithFields(map[string]interface{}{
		"failed": Failed(results),
	}).Debug("Worker pool finished")
	return results
}

func process(ctx context.Context, workerID int, job Job, fn Func) Result {
	start := time.Now()
	summary, err := fn(ctx, job.Path)
	r := Result{
		Path:     job.Path,
		Summary:  summary,
		Err:      err,
		Duration: time.Since(start),
		WorkerID: workerID,
	}

	fields := map[string]interface{}{
		"workerID": workerID,
		"path":     job.Path,
		"duration": r.Duration.String(),
	}
	if err != nil {
		fields["error"] = err.Error()
		logger.Op.WithFields(fields).Debug("Job failed")
	} else {
		logger.Op.WithFields(fields).Debug("Job completed")
	}
	return r
}

// Failed counts the results carrying an error.
func Failed(results []Result) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
