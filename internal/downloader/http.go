package downloader

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"
)

// HTTPFetcher streams a GET response straight to disk. The transport
// (TLS or plain) is picked by the client from the URL scheme.
type HTTPFetcher struct {
	Client  *http.Client
	Headers map[string]string
}

// NewHTTPFetcher builds a fetcher whose client gives up after timeout. A
// zero timeout means no limit.
func NewHTTPFetcher(timeout time.Duration, headers map[string]string) *HTTPFetcher {
	return &HTTPFetcher{
		Client:  &http.Client{Timeout: timeout},
		Headers: headers,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, &Error{URL: rawURL, Err: err}
	}
	for k, v := range f.Headers {
		req.Header.Set(k, v)
	}

	resp, err := f.Client.Do(req)
	if err != nil {
		return 0, &Error{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &Error{URL: rawURL, StatusCode: resp.StatusCode}
	}

	file, err := os.Create(dest)
	if err != nil {
		return 0, &Error{URL: rawURL, Err: err}
	}

	written, err := io.Copy(file, resp.Body)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		// Don't leave a truncated file behind
		os.Remove(dest)
		return written, &Error{URL: rawURL, Err: err}
	}

	return written, nil
}
