// Package engine implements the chunking driver that reduces a sound log
// of unbounded size to accumulated aggregates in bounded memory.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/cecat/soundviz/internal/aggregate"
	"github.com/cecat/soundviz/internal/common"
	"github.com/cecat/soundviz/internal/model"
	"github.com/cecat/soundviz/internal/soundlog"
)

// Config holds configuration options for the chunking driver.
type Config struct {
	// BatchSize is the number of rows reduced per chunk.
	BatchSize int
	// Workers is the worker pool size; 0 or 1 means sequential.
	Workers int
	// Progress, if set, is called once per completed batch.
	Progress func(completed, total int)
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		BatchSize: 5000,
		Workers:   runtime.NumCPU(),
	}
}

// Result is the engine's entire contract surface with the report
// renderer: the accumulated aggregates, the validated row set in
// original file order, and run accounting.
type Result struct {
	Totals      aggregate.Partial
	Rows        []model.Record
	Span        model.TimeSpan
	TotalRows   int
	ValidRows   int
	InvalidRows int
	Batches     int
}

// Driver orchestrates the end-to-end reduction over one log file.
type Driver struct {
	cfg Config
}

// New creates a driver with the given configuration, filling in
// defaults for unset fields.
func New(cfg Config) *Driver {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultConfig().BatchSize
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Driver{cfg: cfg}
}

// Run reduces the log at path. It fails immediately if the log cannot
// be opened, and fails with common.ErrNoValidData after a full scan
// that produced no valid rows.
func (d *Driver) Run(ctx context.Context, path string) (*Result, error) {
	file, err := soundlog.Open(path)
	if err != nil {
		return nil, err
	}

	totalBatches := file.Batches(d.cfg.BatchSize)
	slog.Info("Scanning sound log",
		"path", path,
		"rows", file.DataRows(),
		"header", file.HasHeader(),
		"batches", totalBatches,
		"workers", d.cfg.Workers)

	var chunks []aggregate.ChunkResult
	if d.cfg.Workers > 1 && totalBatches > 1 {
		chunks, err = d.runParallel(ctx, file, totalBatches)
	} else {
		chunks, err = d.runSequential(ctx, file, totalBatches)
	}
	if err != nil {
		return nil, err
	}

	result := &Result{
		Totals:    aggregate.NewPartial(),
		TotalRows: file.DataRows(),
		Batches:   len(chunks),
	}

	// Merge order is irrelevant to the totals; row concatenation is not,
	// so chunks are put back in file order first.
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	for _, c := range chunks {
		result.Totals = aggregate.Merge(result.Totals, c.Partial)
		result.Rows = append(result.Rows, c.Rows...)
		result.ValidRows += len(c.Rows)
		result.InvalidRows += c.Invalid
	}
	result.Span = result.Totals.Span

	slog.Info("Scan complete",
		"rows", result.TotalRows,
		"valid", result.ValidRows,
		"invalid", result.InvalidRows,
		"batches", result.Batches)

	if result.ValidRows == 0 {
		return nil, fmt.Errorf("%s: %w", path, common.ErrNoValidData)
	}
	return result, nil
}

// runSequential reduces batches one at a time in file order.
func (d *Driver) runSequential(ctx context.Context, file *soundlog.File, totalBatches int) ([]aggregate.ChunkResult, error) {
	chunks := make([]aggregate.ChunkResult, 0, totalBatches)
	err := file.StreamBatches(d.cfg.BatchSize, func(index int, rows [][]string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		chunks = append(chunks, aggregate.Reduce(index, rows))
		d.reportProgress(len(chunks), totalBatches)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return chunks, nil
}

// indexedBatch is one unit of work for the pool.
type indexedBatch struct {
	rows  [][]string
	index int
}

// runParallel dispatches batches to a fixed-size worker pool and
// collects results in completion order. A worker failure (or context
// cancellation) is fatal: a silently dropped batch would corrupt the
// totals without any signal.
func (d *Driver) runParallel(ctx context.Context, file *soundlog.File, totalBatches int) ([]aggregate.ChunkResult, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Bounded work channel so the reader never races far ahead of the
	// pool; memory stays proportional to workers, not file size.
	workChan := make(chan indexedBatch, d.cfg.Workers)
	resultsChan := make(chan aggregate.ChunkResult, d.cfg.Workers)
	readErr := make(chan error, 1)

	var wg sync.WaitGroup
	wg.Add(d.cfg.Workers)
	for i := 0; i < d.cfg.Workers; i++ {
		go func(workerID int) {
			defer wg.Done()
			for batch := range workChan {
				slog.Debug("worker reducing batch",
					"worker_id", workerID,
					"batch", batch.index,
					"rows", len(batch.rows))
				select {
				case resultsChan <- aggregate.Reduce(batch.index, batch.rows):
				case <-ctx.Done():
					return
				}
			}
		}(i)
	}

	go func() {
		defer close(workChan)
		readErr <- file.StreamBatches(d.cfg.BatchSize, func(index int, rows [][]string) error {
			select {
			case workChan <- indexedBatch{index: index, rows: rows}:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	}()

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	chunks := make([]aggregate.ChunkResult, 0, totalBatches)
	for chunk := range resultsChan {
		chunks = append(chunks, chunk)
		d.reportProgress(len(chunks), totalBatches)
	}

	if err := <-readErr; err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return chunks, nil
}

func (d *Driver) reportProgress(completed, total int) {
	if d.cfg.Progress != nil {
		d.cfg.Progress(completed, total)
	}
}
