package config

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	OverlapSkip  = "skip"
	OverlapAllow = "allow"
)

// DemoTargets are monitored when TARGETS is not set.
var DemoTargets = []string{
	"https://www.google.com",
	"https://github.com",
	"https://httpbin.org/status/200",
}

var DefaultSuccessCodes = []int{200, 201, 202, 204, 301, 302, 304}

// Config is read once at startup and never changes afterwards. The json
// tags name the environment variable each field comes from; validation
// errors are keyed by them.
type Config struct {
	WebhookURL       string        `json:"WEBHOOK_URL"`
	Targets          []string      `json:"TARGETS"`
	Schedule         string        `json:"CHECK_SCHEDULE"` // 5-field cron or @every descriptor
	RequestTimeout   time.Duration `json:"REQUEST_TIMEOUT_MS"`
	RetryAttempts    int           `json:"RETRY_ATTEMPTS"`
	RetryBackoff     time.Duration `json:"RETRY_BACKOFF_MS"`
	SuccessCodes     []int         `json:"SUCCESS_STATUS_CODES"`
	Verbose          bool          `json:"VERBOSE_LOGGING"`
	NotifyOnRecovery bool          `json:"NOTIFY_ON_RECOVERY"`
	LogDir           string        `json:"LOG_DIR"`
	Timezone         string        `json:"ALERT_TIMEZONE"`
	FollowRedirects  bool          `json:"FOLLOW_REDIRECTS"`
	OverlapPolicy    string        `json:"OVERLAP_POLICY"`
	MaxConcurrent    int           `json:"MAX_CONCURRENT_CHECKS"` // 0 = unbounded

	StatusAddr    string   `json:"STATUS_ADDR"` // empty disables the status server
	StatusAPIKeys []string `json:"STATUS_API_KEYS"`
	StatusRPM     int      `json:"STATUS_RPM"`
	StatusBurst   int      `json:"STATUS_BURST"`
}

func FromEnv() Config {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("targets", strings.Join(DemoTargets, ","))
	v.SetDefault("check_schedule", "* * * * *")
	v.SetDefault("request_timeout_ms", 10000)
	v.SetDefault("retry_attempts", 3)
	v.SetDefault("retry_backoff_ms", 1000)
	v.SetDefault("success_status_codes", joinInts(DefaultSuccessCodes))
	v.SetDefault("verbose_logging", false)
	v.SetDefault("notify_on_recovery", true)
	v.SetDefault("log_dir", "logs")
	v.SetDefault("alert_timezone", "Local")
	v.SetDefault("follow_redirects", true)
	v.SetDefault("overlap_policy", OverlapSkip)
	v.SetDefault("max_concurrent_checks", 0)
	v.SetDefault("status_rpm", 120)
	v.SetDefault("status_burst", 60)

	return Config{
		WebhookURL:       strings.TrimSpace(v.GetString("webhook_url")),
		Targets:          splitList(v.GetString("targets")),
		Schedule:         strings.TrimSpace(v.GetString("check_schedule")),
		RequestTimeout:   time.Duration(v.GetInt("request_timeout_ms")) * time.Millisecond,
		RetryAttempts:    v.GetInt("retry_attempts"),
		RetryBackoff:     time.Duration(v.GetInt("retry_backoff_ms")) * time.Millisecond,
		SuccessCodes:     parseCodes(v.GetString("success_status_codes")),
		Verbose:          v.GetBool("verbose_logging"),
		NotifyOnRecovery: v.GetBool("notify_on_recovery"),
		LogDir:           v.GetString("log_dir"),
		Timezone:         strings.TrimSpace(v.GetString("alert_timezone")),
		FollowRedirects:  v.GetBool("follow_redirects"),
		OverlapPolicy:    strings.ToLower(strings.TrimSpace(v.GetString("overlap_policy"))),
		MaxConcurrent:    v.GetInt("max_concurrent_checks"),
		StatusAddr:       strings.TrimSpace(v.GetString("status_addr")),
		StatusAPIKeys:    splitList(v.GetString("status_api_keys")),
		StatusRPM:        v.GetInt("status_rpm"),
		StatusBurst:      v.GetInt("status_burst"),
	}
}

// Location resolves Timezone; call Validate first.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// splitList splits a comma-separated value, dropping blanks and repeats.
func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" && !slices.Contains(out, p) {
			out = append(out, p)
		}
	}
	return out
}

// parseCodes keeps unparsable entries as 0 so Validate reports them.
func parseCodes(raw string) []int {
	parts := splitList(raw)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			n = 0
		}
		out = append(out, n)
	}
	return out
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ",")
}
