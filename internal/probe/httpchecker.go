package probe

import (
	"context"
	"io"
	"net/http"
	"time"
)

const (
	userAgent   = "uptimealert/1.0"
	maxBodyRead = 64 << 10
)

// HTTPChecker issues a single timed GET per Check.
type HTTPChecker struct {
	Client  *http.Client
	Timeout time.Duration
}

func NewHTTPChecker(timeout time.Duration, followRedirects bool) *HTTPChecker {
	client := &http.Client{Timeout: timeout}
	if !followRedirects {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
	return &HTTPChecker{Client: client, Timeout: timeout}
}

func (h *HTTPChecker) Check(ctx context.Context, target string) CheckResult {
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return CheckResult{Message: err.Error(), Err: err, Attempts: 1}
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := h.Client.Do(req)
	elapsed := time.Since(start)
	if err != nil {
		return CheckResult{Message: err.Error(), Err: err, Elapsed: elapsed, Attempts: 1}
	}
	defer resp.Body.Close()
	// drain a bounded amount so keep-alive connections can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyRead))

	return CheckResult{
		Success:    true,
		StatusCode: resp.StatusCode,
		Elapsed:    elapsed,
		Message:    resp.Status,
		Attempts:   1,
	}
}
