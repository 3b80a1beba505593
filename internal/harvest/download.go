package harvest

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"

	"media-harvest/internal/extract"
	"media-harvest/internal/logger"
	"media-harvest/internal/outdir"
	"media-harvest/internal/task"
)

// Download fetches every reference into outDir with at most
// Options.Parallelism transfers in flight. Outcomes are returned in the
// order of refs. A failed transfer never stops the others.
func (h *Harvester) Download(ctx context.Context, run task.Run, outDir string, refs []extract.Reference) []task.DownloadOutcome {
	outcomes := make([]task.DownloadOutcome, len(refs))

	var g errgroup.Group
	g.SetLimit(h.opts.Parallelism)

	for i, ref := range refs {
		g.Go(func() error {
			outcomes[i] = h.downloadOne(ctx, outDir, ref)
			if err := h.recorder.RecordDownload(run.ID, outcomes[i]); err != nil {
				log.Emit(logger.WARNING, "Failed to record download of %s: %v\n", ref.URL, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func (h *Harvester) downloadOne(ctx context.Context, outDir string, ref extract.Reference) task.DownloadOutcome {
	outcome := task.DownloadOutcome{
		Reference: ref,
		Path:      outdir.FilePath(outDir, ref.Filename),
		State:     task.DownloadPending,
	}

	if h.opts.SkipExisting && outdir.FileExists(outDir, ref.Filename) {
		outcome.State = task.DownloadSkipped
		log.Emit(logger.DEBUG, "Skipping %s, %s already exists\n", ref.URL, outcome.Path)
		return outcome
	}

	if err := ctx.Err(); err != nil {
		outcome.State = task.DownloadFailed
		outcome.Err = err
		log.Emit(logger.ERROR, "Error downloading %s: %v\n", ref.URL, err)
		return outcome
	}

	log.Emit(logger.NEW, "Downloading %s to %s\n", ref.URL, outcome.Path)
	start := time.Now()
	n, err := h.fetcher.Fetch(ctx, ref.URL, outcome.Path)
	outcome.Duration = time.Since(start)

	if err != nil {
		outcome.State = task.DownloadFailed
		outcome.Err = err
		log.Emit(logger.ERROR, "Error downloading %s: %v\n", ref.URL, err)
		return outcome
	}

	outcome.State = task.Downloaded
	outcome.Bytes = n
	log.Emit(logger.SUCCESS, "Downloaded %s (%s in %s)\n", outcome.Path, humanize.Bytes(uint64(n)), outcome.Duration.Round(time.Millisecond))
	return outcome
}
