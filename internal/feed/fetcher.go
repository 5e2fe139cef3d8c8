package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"

	"github.com/pders01/anirss/internal/config"
)

const (
	defaultUserAgent = "anirss/1.0 (anime RSS subscriptions; github.com/pders01/anirss)"
	defaultTimeout   = 30 * time.Second
)

// ErrBadStatus matches every StatusError.
var ErrBadStatus = errors.New("unexpected HTTP status")

// StatusError carries the status of a non-2xx response.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("status: %d (%s)", e.Code, e.URL)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrBadStatus
}

type Fetcher struct {
	client    *http.Client
	userAgent string
}

func NewFetcher(cfg *config.Config) *Fetcher {
	timeout := defaultTimeout
	userAgent := defaultUserAgent
	if cfg != nil {
		if cfg.Feed.HTTPTimeout > 0 {
			timeout = cfg.Feed.HTTPTimeout
		}
		if cfg.Feed.UserAgent != "" {
			userAgent = cfg.Feed.UserAgent
		}
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: userAgent,
	}
}

// Client exposes the underlying HTTP client for collaborators that share it.
func (f *Fetcher) Client() *http.Client {
	return f.client
}

// Open issues a GET and returns the body of a 2xx response. The caller
// closes it. A positive timeout bounds the whole exchange including the
// body read.
func (f *Fetcher) Open(ctx context.Context, rawURL string, timeout time.Duration) (io.ReadCloser, error) {
	cancel := context.CancelFunc(func() {})
	if timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, timeout)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		cancel()
		return nil, errors.Wrap(err, "creating request")
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		cancel()
		return nil, errors.Wrapf(err, "fetching %s", rawURL)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		cancel()
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode}
	}

	return &cancelBody{ReadCloser: resp.Body, cancel: cancel}, nil
}

// Get fetches rawURL and returns the full body. Non-2xx responses fail with
// a *StatusError.
func (f *Fetcher) Get(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, error) {
	body, err := f.Open(ctx, rawURL, timeout)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errors.Wrap(err, "reading response")
	}
	return data, nil
}

type cancelBody struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (b *cancelBody) Close() error {
	err := b.ReadCloser.Close()
	b.cancel()
	return err
}
