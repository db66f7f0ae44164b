package probe

import (
	"context"
	"time"
)

// CheckResult holds the outcome of a probe.
//
// Success means a response came back, whatever its status code; judging
// the code is up to the caller. On transport failure StatusCode is 0 and
// Message carries the reason.
type CheckResult struct {
	Success    bool
	StatusCode int
	Elapsed    time.Duration
	Message    string
	Attempts   int
	Err        error
}

// Checker is implemented by anything that can probe a target URL.
type Checker interface {
	Check(ctx context.Context, target string) CheckResult
}
