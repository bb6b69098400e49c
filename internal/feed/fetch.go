package feed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	appLog "github.com/RubberMartyr/jvgh-kantinedienst/internal/log"
)

// RetryHint is the operator-facing message surfaced when the feed cannot be
// fetched. The usual cause in the field is a missing CORS/proxy setup on the
// club site, so the hint points there.
const RetryHint = "Kon de wedstrijdkalender niet laden. Mogelijk door CORS; " +
	"overweeg een proxy endpoint dat de feed doorstuurt. Probeer het later opnieuw."

// FetchError wraps a transport failure on the fixture feed. Callers keep
// their previously parsed fixture set when they see one of these.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("feed fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Hint returns the human-readable retry message for this failure.
func (e *FetchError) Hint() string { return RetryHint }

// Fetcher downloads the raw fixture feed. The feed endpoint is public and is
// fetched without credentials. Conditional headers (ETag / Last-Modified)
// avoid re-downloading an unchanged feed; the last successfully fetched body
// is kept in memory and reused on 304 responses.
type Fetcher struct {
	client *http.Client
	url    string

	etag         string
	lastModified string
	lastBody     []byte
}

// NewFetcher creates a Fetcher for the given feed URL.
func NewFetcher(url string) *Fetcher {
	return &Fetcher{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		url: url,
	}
}

// Fetch returns the current raw feed body. Network errors and non-success
// statuses are returned as *FetchError; the caller's previously parsed state
// must stay untouched in that case.
func (f *Fetcher) Fetch(ctx context.Context) ([]byte, error) {
	if f.url == "" {
		return nil, &FetchError{URL: f.url, Err: errors.New("feed URL is empty")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, &FetchError{URL: f.url, Err: err}
	}
	if f.etag != "" {
		req.Header.Set("If-None-Match", f.etag)
	}
	if f.lastModified != "" {
		req.Header.Set("If-Modified-Since", f.lastModified)
	}

	appLog.Debug("feed fetch start", "url", f.url)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: f.url, Err: err}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, &FetchError{URL: f.url, Err: readErr}
		}
		f.etag = resp.Header.Get("ETag")
		f.lastModified = resp.Header.Get("Last-Modified")
		f.lastBody = body
		appLog.Info("feed fetch success", "url", f.url, "bytes", len(body))
		return body, nil

	case http.StatusNotModified:
		if len(f.lastBody) == 0 {
			return nil, &FetchError{URL: f.url, Err: errors.New("304 Not Modified but no cached body")}
		}
		appLog.Debug("feed not modified; using cached body", "url", f.url)
		return f.lastBody, nil

	default:
		return nil, &FetchError{URL: f.url, Err: errors.New(resp.Status)}
	}
}
