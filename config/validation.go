package config

import (
	"fmt"
	"strings"
)

// ValidationError is one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationErrors collects every invalid field.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i := range e {
		msgs[i] = e[i].Error()
	}
	return strings.Join(msgs, "; ")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs ValidationErrors
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.NBest < 1 {
		add("nbest", "must be positive, got %d", c.NBest)
	}
	if c.MaxWordLength < 0 {
		add("max_word_length", "must not be negative, got %d", c.MaxWordLength)
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		add("log.level", "unknown level %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		add("log.format", "unknown format %q", c.Log.Format)
	}

	d := &c.Dictionary
	switch d.Source {
	case SourceLocal:
		if d.Path == "" {
			add("dictionary.path", "required for source %q", d.Source)
		}
	case SourceMemory:
	case SourceS3:
		if d.Bucket == "" {
			add("dictionary.bucket", "required for source %q", d.Source)
		}
	case SourceMinIO:
		if d.Bucket == "" {
			add("dictionary.bucket", "required for source %q", d.Source)
		}
		if d.Endpoint == "" {
			add("dictionary.endpoint", "required for source %q", d.Source)
		}
	default:
		add("dictionary.source", "unknown source %q", d.Source)
	}
	if d.CacheBytes < 0 {
		add("dictionary.cache_bytes", "must not be negative, got %d", d.CacheBytes)
	}
	if d.IOBytesPerSec < 0 {
		add("dictionary.io_bytes_per_sec", "must not be negative, got %d", d.IOBytesPerSec)
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
