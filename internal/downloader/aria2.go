package downloader

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const defaultPollInterval = 500 * time.Millisecond

// aria2 exit codes that stand for an HTTP status answered by the server.
var aria2StatusCodes = map[string]int{
	"3":  http.StatusNotFound,
	"24": http.StatusUnauthorized,
}

// Aria2Client hands downloads to an aria2 daemon over JSON-RPC and waits
// for them to finish.
type Aria2Client struct {
	RPCUrl       string
	Secret       string
	Headers      map[string]string
	PollInterval time.Duration
	Client       *http.Client
}

func NewAria2Client(rpcURL string, secret string, headers map[string]string) *Aria2Client {
	return &Aria2Client{
		RPCUrl:       rpcURL,
		Secret:       secret,
		Headers:      headers,
		PollInterval: defaultPollInterval,
		Client:       &http.Client{Timeout: 10 * time.Second},
	}
}

type JsonRpcRequest struct {
	JsonRPC string        `json:"jsonrpc"`
	Method  string        `json:"method"`
	ID      string        `json:"id"`
	Params  []interface{} `json:"params"`
}

type JsonRpcResponse struct {
	ID     string          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *JsonRpcError   `json:"error,omitempty"`
}

type JsonRpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Aria2Status is the subset of aria2.tellStatus fields we ask for.
type Aria2Status struct {
	Gid             string `json:"gid"`
	Status          string `json:"status"`
	CompletedLength string `json:"completedLength"`
	ErrorCode       string `json:"errorCode"`
	ErrorMessage    string `json:"errorMessage"`
}

func (c *Aria2Client) Call(ctx context.Context, method string, result interface{}, params ...interface{}) error {
	// If secret is set, it must be the first parameter as "token:secret"
	finalParams := make([]interface{}, 0, len(params)+1)
	if c.Secret != "" {
		finalParams = append(finalParams, "token:"+c.Secret)
	}
	finalParams = append(finalParams, params...)

	reqBody := JsonRpcRequest{
		JsonRPC: "2.0",
		Method:  method,
		ID:      "media-harvest",
		Params:  finalParams,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.RPCUrl, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var rpcResp JsonRpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return err
	}

	if rpcResp.Error != nil {
		return fmt.Errorf("rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}

	if result == nil {
		return nil
	}
	return json.Unmarshal(rpcResp.Result, result)
}

// AddUri queues uri for download into dir/filename and returns the GID
// aria2 assigned to it.
func (c *Aria2Client) AddUri(ctx context.Context, uri string, dir string, filename string) (string, error) {
	opts := map[string]interface{}{
		"dir":             dir,
		"out":             filename,
		"allow-overwrite": "true",
	}

	headerList := []string{}
	for k, v := range c.Headers {
		headerList = append(headerList, fmt.Sprintf("%s: %s", k, v))
	}
	if len(headerList) > 0 {
		opts["header"] = headerList
	}

	var gid string
	if err := c.Call(ctx, "aria2.addUri", &gid, []string{uri}, opts); err != nil {
		return "", err
	}
	if gid == "" {
		return "", fmt.Errorf("aria2 returned an empty gid")
	}

	return gid, nil
}

func (c *Aria2Client) TellStatus(ctx context.Context, gid string) (Aria2Status, error) {
	var status Aria2Status
	keys := []string{"gid", "status", "completedLength", "errorCode", "errorMessage"}
	err := c.Call(ctx, "aria2.tellStatus", &status, gid, keys)
	return status, err
}

func (c *Aria2Client) ForceRemove(ctx context.Context, gid string) error {
	return c.Call(ctx, "aria2.forceRemove", nil, gid)
}

// RemoveDownloadResult removes a completed/error/removed download from the memory
func (c *Aria2Client) RemoveDownloadResult(ctx context.Context, gid string) error {
	return c.Call(ctx, "aria2.removeDownloadResult", nil, gid)
}

// Fetch submits rawURL to aria2 and blocks until the daemon reports the
// download as complete, failed or removed. Cancelling ctx force-removes
// the download. On failure the partial file and its .aria2 control file are
// removed; a file that existed before the call is only removed once aria2
// has written into it.
func (c *Aria2Client) Fetch(ctx context.Context, rawURL string, dest string) (int64, error) {
	absDest, err := filepath.Abs(dest)
	if err != nil {
		return 0, &Error{URL: rawURL, Err: err}
	}
	_, statErr := os.Stat(absDest)
	existed := statErr == nil

	gid, err := c.AddUri(ctx, rawURL, filepath.Dir(absDest), filepath.Base(absDest))
	if err != nil {
		return 0, &Error{URL: rawURL, Err: err}
	}

	interval := c.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var last Aria2Status
	for {
		status, err := c.TellStatus(ctx, gid)
		if err != nil {
			if ctx.Err() != nil {
				c.abandon(gid)
				removePartial(absDest, existed, last)
				return 0, &Error{URL: rawURL, Err: ctx.Err()}
			}
			return 0, &Error{URL: rawURL, Err: err}
		}
		last = status

		switch status.Status {
		case "complete":
			c.RemoveDownloadResult(ctx, gid)
			written, _ := strconv.ParseInt(status.CompletedLength, 10, 64)
			return written, nil
		case "error":
			c.RemoveDownloadResult(ctx, gid)
			removePartial(absDest, existed, status)
			return 0, &Error{
				URL:        rawURL,
				StatusCode: aria2StatusCodes[status.ErrorCode],
				Err:        fmt.Errorf("aria2 error %s: %s", status.ErrorCode, status.ErrorMessage),
			}
		case "removed":
			removePartial(absDest, existed, status)
			return 0, &Error{URL: rawURL, Err: fmt.Errorf("aria2 download %s was removed", gid)}
		}

		select {
		case <-ticker.C:
		case <-ctx.Done():
			c.abandon(gid)
			removePartial(absDest, existed, last)
			return 0, &Error{URL: rawURL, Err: ctx.Err()}
		}
	}
}

func removePartial(dest string, existed bool, status Aria2Status) {
	os.Remove(dest + ".aria2")

	written, _ := strconv.ParseInt(status.CompletedLength, 10, 64)
	if !existed || written > 0 {
		os.Remove(dest)
	}
}

// abandon removes a download after the caller's context has gone away, so
// it uses a fresh short-lived context of its own.
func (c *Aria2Client) abandon(gid string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.ForceRemove(ctx, gid)
}
