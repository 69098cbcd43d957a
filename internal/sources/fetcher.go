package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/maxaizer/jobs-collector/internal/config"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const userAgent = "Mozilla/5.0 (compatible; jobs-collector/1.0)"

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return http.StatusText(e.code)
}

// fetcher is the transport shared by all adapters: pacing, retries of server
// errors and the mapping of responses onto AdapterError kinds.
type fetcher struct {
	source      string
	kind        string
	httpClient  HTTPClient
	rateLimiter *rate.Limiter
	maxAttempts int
	retryDelay  time.Duration
	now         func() time.Time
}

func newFetcher(cfg config.SourceConfig, kind string) fetcher {
	f := fetcher{
		source:      cfg.Name,
		kind:        kind,
		httpClient:  &http.Client{},
		maxAttempts: 3,
		retryDelay:  2 * time.Second,
		now:         time.Now,
	}
	if cfg.MaxRequestsPerSecond > 0 {
		f.rateLimiter = rate.NewLimiter(rate.Limit(cfg.MaxRequestsPerSecond), 1)
	}
	return f
}

func (f *fetcher) Name() string {
	return f.source
}

func (f *fetcher) SetHTTPClient(client HTTPClient) {
	f.httpClient = client
}

func (f *fetcher) SetRetryDelay(delay time.Duration) {
	f.retryDelay = delay
}

func (f *fetcher) get(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {

	var body []byte
	var err error

	_, _ = lo.AttemptWhile(f.maxAttempts, func(i int) (error, bool) {
		if i > 0 {
			log.Warnf("%s returned a server error, retrying...", f.source)
			if waitErr := f.wait(ctx); waitErr != nil {
				err = newAdapterError(f.source, KindTransport, waitErr, "retry canceled")
				return err, false
			}
		}
		body, err = f.send(ctx, rawURL, header)
		return err, isServerError(err) && ctx.Err() == nil
	})

	return body, err
}

// wait sleeps retryDelay or until ctx is done.
func (f *fetcher) wait(ctx context.Context) error {
	timer := time.NewTimer(f.retryDelay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (f *fetcher) getJSON(ctx context.Context, rawURL string, header http.Header, target any) error {
	body, err := f.get(ctx, rawURL, header)
	if err != nil {
		return err
	}

	if err := json.NewDecoder(bytes.NewReader(body)).Decode(target); err != nil {
		return newAdapterError(f.source, KindSchema, err, "error decoding JSON response")
	}
	return nil
}

// decodeItems unmarshals each item on its own. Items that do not fit T are
// counted as skipped instead of failing the page.
func decodeItems[T any](source string, items []json.RawMessage) ([]T, int) {
	decoded := make([]T, 0, len(items))
	skipped := 0
	for _, raw := range items {
		var item T
		if err := json.Unmarshal(raw, &item); err != nil {
			skipped++
			log.Debugf("%s: skipping malformed item: %v", source, err)
			continue
		}
		decoded = append(decoded, item)
	}
	return decoded, skipped
}

func (f *fetcher) send(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {

	if f.rateLimiter != nil {
		if err := f.rateLimiter.Wait(ctx); err != nil {
			return nil, newAdapterError(f.source, KindTransport, err, "rate limiter wait")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, newAdapterError(f.source, KindTransport, err, "error creating request")
	}
	for key, values := range header {
		req.Header[key] = values
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, newAdapterError(f.source, KindTransport, err, "error sending request")
	}
	defer resp.Body.Close()

	return f.handleResponse(resp)
}

func (f *fetcher) handleResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newAdapterError(f.source, KindTransport, err, "error reading response body")
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, newAdapterError(f.source, KindAuth, &statusError{resp.StatusCode},
			"request rejected with status %d", resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, newAdapterError(f.source, KindTransport, &statusError{resp.StatusCode},
			"request failed with status %d, body: %s", resp.StatusCode, truncate(string(body), 200))
	}

	return body, nil
}

func isServerError(err error) bool {
	var status *statusError
	return errors.As(err, &status) && status.code >= http.StatusInternalServerError
}

// resolveURL resolves ref against base, used for relative pagination and item links.
func resolveURL(base, ref string) string {
	if ref == "" {
		return ""
	}
	baseURL, err := url.Parse(base)
	if err != nil {
		return ref
	}
	refURL, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	return baseURL.ResolveReference(refURL).String()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
