package domain

import "time"

// Target is a monitored endpoint, identified by its URL.
type Target string

func (t Target) String() string { return string(t) }

// StatusRecord is the last known status of a target. It is replaced
// wholesale after every probe, never merged.
type StatusRecord struct {
	IsUp                bool           `json:"is_up"`
	LastCheck           time.Time      `json:"last_check"`
	ConsecutiveFailures int            `json:"consecutive_failures"`
	StatusCode          *int           `json:"status_code,omitempty"`   // success only
	ResponseTime        *time.Duration `json:"response_time,omitempty"` // success only
	Error               string         `json:"error,omitempty"`         // failure only
}

// InitialRecord is the "assume healthy" prior every target starts from, so
// neither a first successful check nor a first recovery produces an alert.
func InitialRecord() StatusRecord {
	return StatusRecord{IsUp: true}
}

// Checked reports whether the record comes from a completed probe.
func (r StatusRecord) Checked() bool { return !r.LastCheck.IsZero() }

// NextUp builds the record for a healthy probe. The failure streak resets.
func NextUp(at time.Time, statusCode int, elapsed time.Duration) StatusRecord {
	return StatusRecord{
		IsUp:         true,
		LastCheck:    at,
		StatusCode:   &statusCode,
		ResponseTime: &elapsed,
	}
}

// NextDown builds the record that follows prev after an unhealthy probe.
func NextDown(prev StatusRecord, at time.Time, reason string) StatusRecord {
	return StatusRecord{
		IsUp:                false,
		LastCheck:           at,
		ConsecutiveFailures: prev.ConsecutiveFailures + 1,
		Error:               reason,
	}
}
