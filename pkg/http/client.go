package http

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/go-faster/errors"

	"github.com/pavelc4/aether-media-bot/pkg/buffer"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
)

// NewAPIClient is meant for short JSON calls.
func NewAPIClient() *http.Client {
	return &http.Client{
		Timeout: DefaultTimeout,
		Transport: &http.Transport{
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   20,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 20 * time.Second,
		},
	}
}

// NewDownloadClient has no overall timeout; callers bound transfers with ctx.
func NewDownloadClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:          50,
			MaxIdleConnsPerHost:   10,
			MaxConnsPerHost:       30,
			IdleConnTimeout:       120 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 90 * time.Second,
		},
	}
}

type StatusError struct {
	URL    string
	Status int
}

func (e *StatusError) Error() string {
	return "http " + http.StatusText(e.Status) + " from " + e.URL
}

// FetchToFile streams url into dest and returns the number of bytes written.
// A partially written dest is removed on failure.
func FetchToFile(ctx context.Context, client *http.Client, url string, headers map[string]string, dest string) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, errors.Wrap(err, "create request")
	}
	req.Header.Set("User-Agent", DefaultUserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "request")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, &StatusError{URL: url, Status: resp.StatusCode}
	}

	f, err := os.Create(dest)
	if err != nil {
		return 0, errors.Wrap(err, "create file")
	}

	buf := buffer.Get()
	defer buffer.Put(buf)

	n, err := io.CopyBuffer(f, resp.Body, buf)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dest)
		return n, errors.Wrap(err, "write file")
	}
	return n, nil
}
