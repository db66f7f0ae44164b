package config

import (
	"net"
	"net/url"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/robfig/cron/v3"
)

// ValidationError reports every configuration problem found at startup.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string { return "invalid configuration: " + e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

func (c *Config) Validate() error {
	err := validation.ValidateStruct(c,
		validation.Field(&c.WebhookURL,
			validation.Required.Error("webhook URL is required"),
			validation.By(validateHTTPURL),
		),
		validation.Field(&c.Targets,
			validation.Required.Error("at least one target is required"),
			validation.Each(validation.By(validateHTTPURL)),
		),
		validation.Field(&c.Schedule,
			validation.Required,
			validation.By(validateSchedule),
		),
		validation.Field(&c.RequestTimeout,
			validation.Required.Error("must be a positive number of milliseconds"),
			validation.Min(time.Millisecond),
		),
		validation.Field(&c.RetryAttempts,
			validation.Required.Error("must be at least 1"),
			validation.Min(1),
		),
		validation.Field(&c.RetryBackoff, validation.Min(time.Duration(0))),
		validation.Field(&c.SuccessCodes,
			validation.Required,
			validation.Each(validation.By(validateStatusCode)),
		),
		validation.Field(&c.Timezone, validation.By(validateTimezone)),
		validation.Field(&c.OverlapPolicy, validation.Required, validation.In(OverlapSkip, OverlapAllow)),
		validation.Field(&c.MaxConcurrent, validation.Min(0)),
		validation.Field(&c.StatusAddr, validation.When(c.StatusAddr != "", validation.By(validateHostPort))),
		validation.Field(&c.StatusRPM, validation.Min(0)),
		validation.Field(&c.StatusBurst, validation.When(c.StatusRPM > 0, validation.Required, validation.Min(1))),
	)
	if err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}

func validateHTTPURL(value interface{}) error {
	raw, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if raw == "" {
		return nil
	}
	u, err := url.ParseRequestURI(raw)
	if err != nil {
		return validation.NewError("validation_invalid_url", "must be a valid URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return validation.NewError("validation_invalid_scheme", "URL must use http or https scheme")
	}
	if u.Host == "" {
		return validation.NewError("validation_invalid_host", "URL must include a host")
	}
	return nil
}

func validateStatusCode(value interface{}) error {
	code, ok := value.(int)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be an integer")
	}
	if code < 100 || code > 599 {
		return validation.NewError("validation_invalid_status_code", "must be a status code between 100 and 599")
	}
	return nil
}

func validateSchedule(value interface{}) error {
	spec, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if spec == "" {
		return nil
	}
	if _, err := cron.ParseStandard(spec); err != nil {
		return validation.NewError("validation_invalid_schedule", "must be a cron expression (e.g. \"* * * * *\" or \"@every 30s\")")
	}
	return nil
}

func validateTimezone(value interface{}) error {
	tz, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}
	if _, err := time.LoadLocation(tz); err != nil {
		return validation.NewError("validation_invalid_timezone", "must be an IANA time zone name")
	}
	return nil
}

func validateHostPort(value interface{}) error {
	addr, ok := value.(string)
	if !ok {
		return validation.NewError("validation_invalid_type", "must be a string")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return validation.NewError("validation_invalid_hostport", "must be in host:port format")
	}
	if port == "" {
		return validation.NewError("validation_invalid_port", "port cannot be empty")
	}
	if host != "" {
		if err := is.Host.Validate(host); err != nil {
			return validation.NewError("validation_invalid_host", "invalid host")
		}
	}
	return nil
}
