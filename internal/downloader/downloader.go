// Package downloader retrieves remote media files and writes them to local
// destinations, either directly over HTTP or through an aria2 daemon.
package downloader

import (
	"context"
	"fmt"
)

// Fetcher retrieves the resource at url and stores it at dest, returning
// the number of bytes written.
type Fetcher interface {
	Fetch(ctx context.Context, url string, dest string) (int64, error)
}

// Error describes a failed download. StatusCode is set when the server
// answered with something other than 200. Err holds the transport or
// filesystem failure, or the downloader's own report of the status.
type Error struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode != 0 && e.Err != nil {
		return fmt.Sprintf("download of %s failed: status code %d: %v", e.URL, e.StatusCode, e.Err)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("download of %s failed: status code %d", e.URL, e.StatusCode)
	}

	return fmt.Sprintf("download of %s failed: %v", e.URL, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
