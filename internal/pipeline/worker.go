package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/dgallion1/treeflat/internal/archive"
	"github.com/dgallion1/treeflat/internal/metrics"
	"github.com/dgallion1/treeflat/internal/source"
)

// Archiver persists converted forests.
type Archiver interface {
	PutForest(ctx context.Context, f archive.Forest) error
}

// archiveAttempts bounds PutForest calls per job, first try included.
const archiveAttempts = 3

const maxArchiveBackoff = 30 * time.Second

// archiveBackoff returns 2^attempt seconds, capped, plus up to 50% jitter.
func archiveBackoff(attempt int) time.Duration {
	wait := min(time.Second<<attempt, maxArchiveBackoff)
	return wait + rand.N(wait/2)
}

// Worker processes a single conversion job.
type Worker struct {
	conv    *Converter
	archive Archiver
	log     *slog.Logger
	srcOpts source.Options
	backoff func(attempt int) time.Duration
}

// NewWorker builds a worker. A nil archiver skips the archiving phase.
func NewWorker(conv *Converter, arch Archiver, log *slog.Logger, srcOpts source.Options) *Worker {
	return &Worker{
		conv:    conv,
		archive: arch,
		log:     log,
		srcOpts: srcOpts,
		backoff: archiveBackoff,
	}
}

// Process runs extract, convert and archive for a job.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "name", job.Name)

	// Phase 1: Extract forest text from the upload.
	job.SetStatus(StatusExtracting, "extracting")
	text, err := source.Extract(bytes.NewReader(job.FileData()), job.Filename, w.srcOpts)
	if err != nil {
		log.Error("extract failed", "filename", job.Filename, "error", err)
		w.fail(job, "extracting", fmt.Sprintf("extract: %s", err))
		return
	}
	job.setContentHash(ContentHashHex([]byte(text)))
	job.releaseFileData()

	// Phase 2: Convert.
	job.SetStatus(StatusConverting, "converting")
	res, err := w.conv.Convert(ctx, text)
	if err != nil {
		log.Warn("conversion rejected", "kind", metrics.Kind(err), "error", err)
		w.fail(job, "converting", err.Error())
		return
	}
	job.SetResult(res.Arrays, res.Forest.NumEdges())
	log.Info("forest converted", "trees", res.Arrays.NumTrees(), "width", res.Arrays.Width(), "duration_ms", res.Duration.Milliseconds())

	if w.archive == nil {
		w.complete(job)
		return
	}

	// Phase 3: Archive.
	job.SetStatus(StatusArchiving, "archiving")
	snap := job.Snapshot()
	f := archive.Forest{
		Name:        job.Name,
		ContentHash: snap.ContentHash,
		Trees:       res.Arrays.NumTrees(),
		Width:       res.Arrays.Width(),
		Arrays:      res.Arrays,
		CreatedAt:   job.CreatedAt.Format(time.RFC3339),
	}
	if err := w.putWithRetry(ctx, log, f); err != nil {
		log.Error("archive failed", "error", err)
		w.fail(job, "archiving", fmt.Sprintf("archive: %s", err))
		return
	}
	job.MarkArchived()
	w.complete(job)
}

func (w *Worker) putWithRetry(ctx context.Context, log *slog.Logger, f archive.Forest) error {
	var err error
	for attempt := range archiveAttempts {
		err = w.archive.PutForest(ctx, f)
		if err == nil || !archive.IsRetryable(err) || attempt == archiveAttempts-1 {
			return err
		}
		log.Warn("retryable archive error", "attempt", attempt, "error", err)
		metrics.ArchiveRetry()
		select {
		case <-time.After(w.backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return err
}

func (w *Worker) fail(job *Job, phase, msg string) {
	job.AddError(msg)
	job.SetStatus(StatusFailed, phase)
	metrics.JobFinished(string(StatusFailed))
}

func (w *Worker) complete(job *Job) {
	job.SetStatus(StatusCompleted, "done")
	metrics.JobFinished(string(StatusCompleted))
}
