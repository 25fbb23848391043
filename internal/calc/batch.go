// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package calc

import (
	"context"
	"fmt"
	"io"

	"github.com/pdiddy/singlelep/internal/features"
	"github.com/pdiddy/singlelep/internal/worker"
	"github.com/pdiddy/singlelep/pkg/types"
)

// EventFeatures is the feature record of one event together with its
// identity.
type EventFeatures struct {
	Index    int              `json:"index" yaml:"index"`
	Run      int64            `json:"run" yaml:"run"`
	Lumi     int64            `json:"lumi" yaml:"lumi"`
	Event    int64            `json:"event" yaml:"event"`
	Features *features.Record `json:"features" yaml:"features"`
}

// BatchSummary holds counts from a batch run.
type BatchSummary struct {
	Analyzed int
	Failed   int
	// Skipped counts events not analysed because the run was cancelled.
	Skipped int
}

// HasFailures reports whether any event failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

type eventResult struct {
	ef  EventFeatures
	err error
}

func (r *eventResult) Err() error { return r.err }

// AnalyzeAll runs c over events on the given number of workers and returns
// the successful records in input order. Progress is written to w; a failed
// event is reported and counted, and the batch moves on.
func AnalyzeAll(ctx context.Context, c *Calculator, events []types.Event, workers int, w io.Writer) ([]EventFeatures, BatchSummary) {
	pool := worker.NewPool(ctx, workers)
	pool.Start()
	for i := range events {
		ev := &events[i]
		idx := i
		pool.Submit(worker.JobFunc(func(ctx context.Context) worker.Result {
			if err := ctx.Err(); err != nil {
				return nil
			}
			rec := features.NewRecord()
			if err := c.AnalyzeEvent(ev, rec); err != nil {
				return &eventResult{err: err}
			}
			return &eventResult{ef: EventFeatures{
				Index:    idx,
				Run:      ev.Run,
				Lumi:     ev.Lumi,
				Event:    ev.Event,
				Features: rec,
			}}
		}))
	}
	results := pool.Wait()

	var (
		out     []EventFeatures
		summary BatchSummary
	)
	for i := range events {
		var r *eventResult
		if i < len(results) && results[i] != nil {
			r, _ = results[i].(*eventResult)
		}
		switch {
		case r == nil:
			summary.Skipped++
		case r.err != nil:
			fmt.Fprintf(w, "failed  event %d: %v\n", i, r.err)
			summary.Failed++
		default:
			fmt.Fprintf(w, "analyzed event %d (run %d, event %d, %d features)\n",
				i, r.ef.Run, r.ef.Event, r.ef.Features.Len())
			out = append(out, r.ef)
			summary.Analyzed++
		}
	}
	return out, summary
}
