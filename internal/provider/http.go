package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/retry"
	"golang.org/x/xerrors"
)

const (
	userAgent = "forgeheat"

	defaultAttempts = 3
	retryFloor      = 200 * time.Millisecond
	retryCeil       = 2 * time.Second

	// maxBodySize caps upstream responses; a year of heatmap samples is far below it
	maxBodySize = 16 << 20
)

// statusError is a non-2xx upstream response
type statusError struct {
	StatusCode int
	Body       string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// classifyStatus maps an HTTP status to a failure kind and whether the call
// is worth repeating
func classifyStatus(code int) (kind error, retryable bool) {
	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrAuth, false
	case code >= http.StatusInternalServerError:
		return ErrNetwork, true
	default:
		return ErrNetwork, false
	}
}

// withRetry calls fn until it succeeds, reports a non-retryable failure, the
// attempts run out or ctx is done. The first attempt runs immediately
func withRetry(ctx context.Context, attempts int, fn func() (retryable bool, err error)) error {
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	var lastErr error
	attempt := 0
	for r := retry.New(retryFloor, retryCeil); r.Wait(ctx); {
		attempt++
		retryable, err := fn()
		if err == nil || !retryable {
			return err
		}
		lastErr = err
		if attempt >= attempts {
			break
		}
	}
	if lastErr == nil {
		lastErr = ctx.Err()
	}
	return lastErr
}

// jsonGetter issues GET requests and decodes JSON bodies. It is shared by the
// REST forges and carries no per-call state
type jsonGetter struct {
	client   *http.Client
	attempts int
}

func newJSONGetter(client *http.Client, attempts int) jsonGetter {
	if client == nil {
		client = http.DefaultClient
	}
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	return jsonGetter{client: client, attempts: attempts}
}

// getJSON fetches rawURL into out. Transport errors and 5xx responses are
// retried; 401/403 map to ErrAuth, other statuses to ErrNetwork and
// undecodable bodies to ErrParse
func (g jsonGetter) getJSON(ctx context.Context, provider, rawURL string, header http.Header, out any) error {
	var body []byte
	err := withRetry(ctx, g.attempts, func() (bool, error) {
		var err error
		body, err = g.do(ctx, rawURL, header)
		if err == nil {
			return false, nil
		}
		var se *statusError
		if errors.As(err, &se) {
			kind, retryable := classifyStatus(se.StatusCode)
			return retryable, newError(provider, kind, err)
		}
		return true, newError(provider, ErrNetwork, err)
	})
	if err != nil {
		var pe *Error
		if !errors.As(err, &pe) {
			err = newError(provider, ErrNetwork, err)
		}
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return newError(provider, ErrParse, xerrors.Errorf("decode response: %w", err))
	}
	return nil
}

func (g jsonGetter) do(ctx context.Context, rawURL string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, xerrors.Errorf("build request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		// url.Error embeds the full URL, which may carry a credential
		var ue *url.Error
		if errors.As(err, &ue) {
			err = ue.Err
		}
		return nil, xerrors.Errorf("send %s request: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, xerrors.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &statusError{StatusCode: resp.StatusCode, Body: truncate(string(body), 200)}
	}
	return body, nil
}

// normalizeBaseURL validates a self-hosted base URL and strips trailing slashes
func normalizeBaseURL(provider, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", newError(provider, ErrMissingBaseURL, nil)
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", newError(provider, ErrMissingBaseURL, xerrors.Errorf("invalid base url %q", raw))
	}
	return strings.TrimRight(raw, "/"), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
