// Package harvest drives a complete run: it lists the JSON files of an
// input directory, extracts their media references into one global set
// and downloads every unique reference into the output directory.
package harvest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"media-harvest/internal/downloader"
	"media-harvest/internal/extract"
	"media-harvest/internal/logger"
	"media-harvest/internal/outdir"
	"media-harvest/internal/playlist"
	"media-harvest/internal/task"
)

var log = logger.Get("Harvest")

// Recorder receives the terminal state of every scan and download. The
// run ledger implements it.
type Recorder interface {
	CreateRun(task.Run) error
	RecordScan(runID string, result task.ScanResult) error
	RecordDownload(runID string, outcome task.DownloadOutcome) error
	Finish(run task.Run, uniqueFiles int) error
}

type Options struct {
	Bases        extract.BaseURLs
	OutputDir    string
	Parallelism  int
	SkipExisting bool

	// PlaylistFile, when set, receives an M3U8 playlist of the videos
	// present after the run. Relative paths are resolved against the
	// output directory.
	PlaylistFile string
}

type Harvester struct {
	opts     Options
	fetcher  downloader.Fetcher
	recorder Recorder
}

// New creates a Harvester. recorder may be nil, in which case nothing is
// persisted.
func New(opts Options, fetcher downloader.Fetcher, recorder Recorder) *Harvester {
	if opts.Parallelism < 1 {
		opts.Parallelism = 1
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}

	return &Harvester{opts: opts, fetcher: fetcher, recorder: recorder}
}

// Report summarises a finished run.
type Report struct {
	Run       task.Run
	Scans     []task.ScanResult
	Downloads []task.DownloadOutcome
	Unique    int
}

func (r *Report) FailedScans() int {
	n := 0
	for _, s := range r.Scans {
		if s.State == task.ScanFailed {
			n++
		}
	}
	return n
}

func (r *Report) CountDownloads(state task.DownloadState) int {
	n := 0
	for _, d := range r.Downloads {
		if d.State == state {
			n++
		}
	}
	return n
}

// Run performs a full harvest of dir. Only a failure to list dir or to
// prepare the output directory is returned as an error; problems with
// individual files or downloads are logged and carried in the report.
func (h *Harvester) Run(ctx context.Context, dir string) (*Report, error) {
	files, err := ListJSONFiles(dir)
	if err != nil {
		return nil, fmt.Errorf("error processing folder %s: %w", dir, err)
	}

	run := task.NewRun(dir, h.opts.Bases)
	h.recordRun(run)

	scans, set := h.Scan(run, files)
	report := &Report{Run: run, Scans: scans, Unique: set.Len()}

	outDir, err := outdir.Ensure(h.opts.OutputDir)
	if err != nil {
		return report, fmt.Errorf("failed to create output directory %s: %w", h.opts.OutputDir, err)
	}

	refs := set.References()
	log.Emit(logger.INFO, "Found file paths:\n")
	for _, ref := range refs {
		log.Emit(logger.INFO, "%s\n", ref.URL)
	}

	report.Downloads = h.Download(ctx, run, outDir, refs)

	if h.opts.PlaylistFile != "" {
		h.writePlaylist(outDir, report.Downloads)
	}

	log.Emit(logger.INFO, "Total unique files found: %d\n", report.Unique)
	if err := h.recorder.Finish(run, report.Unique); err != nil {
		log.Emit(logger.WARNING, "Failed to record completion of run %s: %v\n", run.ID, err)
	}

	return report, nil
}

// ListJSONFiles returns the paths of the regular files directly inside dir
// whose names end in .json, ignoring case. Symlinks are followed; an entry
// that cannot be inspected is still returned so reading it reports the
// failure.
func ListJSONFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		if info, err := os.Stat(path); err == nil && !info.Mode().IsRegular() {
			continue
		}
		files = append(files, path)
	}

	return files, nil
}

// Scan extracts references from each file in turn and merges them into a
// single set. A file that cannot be read or parsed is reported and
// skipped.
func (h *Harvester) Scan(run task.Run, files []string) ([]task.ScanResult, *extract.PathSet) {
	global := extract.NewPathSet()
	results := make([]task.ScanResult, 0, len(files))

	for _, path := range files {
		log.Emit(logger.INFO, "Processing file: %s\n", path)
		result := task.ScanResult{Path: path, State: task.ScanPending}

		set, err := extract.ScanFile(path, h.opts.Bases)
		if err != nil {
			result.State = task.ScanFailed
			result.Err = err
			log.Emit(logger.ERROR, "%v\n", err)
		} else {
			result.State = task.Scanned
			result.References = set.Len()
			added := global.Merge(set)
			log.Emit(logger.DEBUG, "Found %d references in %s (%d new)\n", result.References, path, added)
		}

		if err := h.recorder.RecordScan(run.ID, result); err != nil {
			log.Emit(logger.WARNING, "Failed to record scan of %s: %v\n", path, err)
		}
		results = append(results, result)
	}

	return results, global
}

func (h *Harvester) recordRun(run task.Run) {
	if err := h.recorder.CreateRun(run); err != nil {
		log.Emit(logger.WARNING, "Failed to record run %s: %v\n", run.ID, err)
	}
}

func (h *Harvester) writePlaylist(outDir string, outcomes []task.DownloadOutcome) {
	uris := make([]string, 0)
	for _, o := range outcomes {
		if o.Reference.Class == extract.Video && o.Available() {
			uris = append(uris, o.Reference.Filename)
		}
	}

	path := h.opts.PlaylistFile
	if !filepath.IsAbs(path) {
		path = filepath.Join(outDir, path)
	}

	if err := playlist.Write(path, uris); err != nil {
		log.Emit(logger.ERROR, "Failed to write playlist %s: %v\n", path, err)
		return
	}
	log.Emit(logger.SUCCESS, "Wrote playlist of %d videos to %s\n", len(uris), path)
}

type nopRecorder struct{}

func (nopRecorder) CreateRun(task.Run) error                         { return nil }
func (nopRecorder) RecordScan(string, task.ScanResult) error         { return nil }
func (nopRecorder) RecordDownload(string, task.DownloadOutcome) error { return nil }
func (nopRecorder) Finish(task.Run, int) error                       { return nil }

var _ Recorder = (*task.Ledger)(nil)
