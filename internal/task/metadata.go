package task

import (
	"time"

	"github.com/google/uuid"

	"media-harvest/internal/extract"
)

// ScanState tracks one input file: pending until scanned, then either
// scanned or failed.
type ScanState string

const (
	ScanPending ScanState = "pending"
	Scanned     ScanState = "scanned"
	ScanFailed  ScanState = "scan_failed"
)

func (s ScanState) String() string { return string(s) }

func (s ScanState) IsFinished() bool {
	return s == Scanned || s == ScanFailed
}

// DownloadState tracks one unique reference through the fetcher.
type DownloadState string

const (
	DownloadPending DownloadState = "pending"
	Downloaded      DownloadState = "downloaded"
	DownloadFailed  DownloadState = "download_failed"
	// DownloadSkipped means the destination already existed and
	// re-downloading was disabled.
	DownloadSkipped DownloadState = "skipped"
)

func (s DownloadState) String() string { return string(s) }

func (s DownloadState) IsFinished() bool {
	return s == Downloaded || s == DownloadFailed || s == DownloadSkipped
}

// Run describes one invocation over an input directory.
type Run struct {
	ID           string    `json:"id"`
	InputDir     string    `json:"input_dir"`
	ImageBaseURL string    `json:"image_base_url"`
	VideoBaseURL string    `json:"video_base_url"`
	StartedTime  time.Time `json:"started_time"`
	FinishedTime time.Time `json:"finished_time"`
	UniqueFiles  int       `json:"unique_files"`
}

func NewRun(inputDir string, bases extract.BaseURLs) Run {
	return Run{
		ID:           uuid.NewString(),
		InputDir:     inputDir,
		ImageBaseURL: bases.Image,
		VideoBaseURL: bases.Video,
		StartedTime:  time.Now().UTC(),
	}
}

type ScanResult struct {
	Path       string
	State      ScanState
	References int
	Err        error
}

type DownloadOutcome struct {
	Reference extract.Reference
	Path      string
	State     DownloadState
	Bytes     int64
	Duration  time.Duration
	Err       error
}

// Available reports whether the file is present in the output directory
// after this outcome, either freshly downloaded or left from before.
func (o DownloadOutcome) Available() bool {
	return o.State == Downloaded || o.State == DownloadSkipped
}

func errorString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
