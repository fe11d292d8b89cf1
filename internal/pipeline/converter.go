package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/dgallion1/treeflat/internal/condition"
	"github.com/dgallion1/treeflat/internal/dectree"
	"github.com/dgallion1/treeflat/internal/flatten"
	"github.com/dgallion1/treeflat/internal/metrics"
	"github.com/dgallion1/treeflat/internal/stats"
)

// Converter turns forest text into flat arrays and records latency.
type Converter struct {
	Vocab       *condition.Vocabulary
	Marker      rune
	Concurrency int
	Stats       *stats.Latency
	Log         *slog.Logger
}

// Result is a converted forest.
type Result struct {
	Forest   dectree.Forest
	Arrays   *flatten.Arrays
	Duration time.Duration
}

// Convert parses and flattens one forest.
func (c *Converter) Convert(ctx context.Context, text string) (*Result, error) {
	start := time.Now()
	marker := c.Marker
	if marker == 0 {
		marker = dectree.DefaultMarker
	}

	forest, err := dectree.ParseForest(text, marker)
	if err != nil {
		c.fail(start, err)
		return nil, err
	}
	arrays, err := flatten.ConvertForest(ctx, forest, c.Vocab, flatten.Options{Concurrency: c.Concurrency})
	if err != nil {
		c.fail(start, err)
		return nil, err
	}

	d := time.Since(start)
	metrics.ObserveConversion(d, arrays.NumTrees())
	if c.Stats != nil {
		c.Stats.Record(d, arrays.NumTrees())
	}
	if c.Log != nil {
		c.Log.Debug("forest converted", "trees", arrays.NumTrees(), "edges", forest.NumEdges(), "width", arrays.Width(), "duration_ms", d.Milliseconds())
	}
	return &Result{Forest: forest, Arrays: arrays, Duration: d}, nil
}

func (c *Converter) fail(start time.Time, err error) {
	metrics.ObserveFailure(time.Since(start), err)
	if c.Log != nil {
		c.Log.Info("forest rejected", "kind", metrics.Kind(err), "error", err)
	}
}
