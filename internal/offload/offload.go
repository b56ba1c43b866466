// Package offload runs history processing and statistics on a background worker so interactive
// surfaces stay responsive. Every request can also be served inline.
package offload

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/verte-zerg/tenpin/internal/frames"
	"github.com/verte-zerg/tenpin/internal/model"
	"github.com/verte-zerg/tenpin/internal/scoring"
	"github.com/verte-zerg/tenpin/internal/stats"
)

const (
	// DefaultStatsTimeout bounds a full statistics computation.
	DefaultStatsTimeout = 30 * time.Second
	// DefaultProcessTimeout bounds history processing.
	DefaultProcessTimeout = 10 * time.Second

	queueSize = 8
)

var (
	// ErrTimeout is returned when the worker does not answer in time.
	ErrTimeout = errors.New("offload: worker timed out")
	// ErrClosed is returned once the worker has stopped.
	ErrClosed = errors.New("offload: worker stopped")
)

// ProcessHistoryRequest asks for a raw history to be scored and ordered.
type ProcessHistoryRequest struct {
	Games []model.Game
}

// ProcessHistoryResult holds the valid games rescored in date order and the games rejected.
type ProcessHistoryResult struct {
	Games   []model.Game
	Invalid []model.Game
}

// ComputeStatsRequest asks for a full report.
type ComputeStatsRequest struct {
	Input stats.Input
}

// ComputeStatsResult carries the computed report.
type ComputeStatsResult struct {
	Report stats.Report
}

// ProcessHistory rescores every game with recorded throws, drops games whose throws are not
// legal and sorts the rest by date.
func ProcessHistory(req ProcessHistoryRequest) ProcessHistoryResult {
	var res ProcessHistoryResult
	for _, g := range req.Games {
		if !g.HasThrows() {
			res.Games = append(res.Games, g)
			continue
		}
		if !frames.IsGameValid(g.Frames) {
			res.Invalid = append(res.Invalid, g)
			continue
		}
		res.Games = append(res.Games, scoring.Finalize(g))
	}
	sort.SliceStable(res.Games, func(i, j int) bool {
		return res.Games[i].Date.Before(res.Games[j].Date)
	})
	return res
}

// ComputeStats builds the report for req.
func ComputeStats(req ComputeStatsRequest) ComputeStatsResult {
	return ComputeStatsResult{Report: stats.Compute(req.Input)}
}

type job struct {
	process *ProcessHistoryRequest
	compute *ComputeStatsRequest
	reply   chan any
}

// Worker serves requests one at a time on its own goroutine.
// Run must be called in a goroutine before requests are submitted.
type Worker struct {
	jobs chan job
	done chan struct{}

	// injectable for tests
	processFn func(ProcessHistoryRequest) ProcessHistoryResult
	computeFn func(ComputeStatsRequest) ComputeStatsResult
}

// NewWorker creates an idle worker.
func NewWorker() *Worker {
	return &Worker{
		jobs:      make(chan job, queueSize),
		done:      make(chan struct{}),
		processFn: ProcessHistory,
		computeFn: ComputeStats,
	}
}

// Run serves requests until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)
	slog.Debug("offload: worker started")
	for {
		select {
		case <-ctx.Done():
			slog.Debug("offload: worker stopped", "err", ctx.Err())
			return
		case j := <-w.jobs:
			start := time.Now()
			switch {
			case j.process != nil:
				res := w.processFn(*j.process)
				slog.Debug("offload: processed history", "games", len(res.Games), "invalid", len(res.Invalid), "took", time.Since(start))
				j.reply <- res
			case j.compute != nil:
				res := w.computeFn(*j.compute)
				slog.Debug("offload: computed stats", "games", len(res.Report.Games), "took", time.Since(start))
				j.reply <- res
			}
		}
	}
}

// Client submits requests to a Worker and waits for answers within fixed timeouts.
type Client struct {
	worker         *Worker
	statsTimeout   time.Duration
	processTimeout time.Duration
}

// NewClient creates a client for w. Non-positive timeouts select the defaults.
func NewClient(w *Worker, statsTimeout, processTimeout time.Duration) *Client {
	if statsTimeout <= 0 {
		statsTimeout = DefaultStatsTimeout
	}
	if processTimeout <= 0 {
		processTimeout = DefaultProcessTimeout
	}
	return &Client{worker: w, statsTimeout: statsTimeout, processTimeout: processTimeout}
}

func (c *Client) submit(ctx context.Context, j job, timeout time.Duration) (any, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	j.reply = make(chan any, 1)
	select {
	case c.worker.jobs <- j:
	case <-c.worker.done:
		return nil, ErrClosed
	case <-timer.C:
		return nil, ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case res := <-j.reply:
		return res, nil
	case <-c.worker.done:
		return nil, ErrClosed
	case <-timer.C:
		return nil, ErrTimeout
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// ProcessHistory processes req on the worker.
func (c *Client) ProcessHistory(ctx context.Context, req ProcessHistoryRequest) (ProcessHistoryResult, error) {
	res, err := c.submit(ctx, job{process: &req}, c.processTimeout)
	if err != nil {
		return ProcessHistoryResult{}, err
	}
	return res.(ProcessHistoryResult), nil
}

// ComputeStats computes req on the worker.
func (c *Client) ComputeStats(ctx context.Context, req ComputeStatsRequest) (ComputeStatsResult, error) {
	res, err := c.submit(ctx, job{compute: &req}, c.statsTimeout)
	if err != nil {
		return ComputeStatsResult{}, err
	}
	return res.(ComputeStatsResult), nil
}

// ProcessHistoryWithFallback processes req on the worker and inline when the worker fails.
func (c *Client) ProcessHistoryWithFallback(ctx context.Context, req ProcessHistoryRequest) ProcessHistoryResult {
	res, err := c.ProcessHistory(ctx, req)
	if err == nil {
		return res
	}
	slog.Warn("offload: processing history inline", "games", len(req.Games), "err", err)
	return ProcessHistory(req)
}

// ComputeStatsWithFallback computes req on the worker and inline when the worker fails.
func (c *Client) ComputeStatsWithFallback(ctx context.Context, req ComputeStatsRequest) ComputeStatsResult {
	res, err := c.ComputeStats(ctx, req)
	if err == nil {
		return res
	}
	slog.Warn("offload: computing stats inline", "games", len(req.Input.Games), "err", err)
	return ComputeStats(req)
}
