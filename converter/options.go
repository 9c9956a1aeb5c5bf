package converter

import (
	"io"
	"log/slog"
)

// DefaultNBest is the number of paths kept per node.
const DefaultNBest = 10

type options struct {
	nbest         int
	typo          bool
	maxWordLength int
	logger        *slog.Logger
	observer      Observer
}

// Option configures a Kana2Kanji.
type Option func(*options)

// WithNBest sets how many paths every node and the result keep.
func WithNBest(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.nbest = n
		}
	}
}

// WithTypoCorrection asks the cost provider for typo-corrected lookups.
func WithTypoCorrection(enabled bool) Option {
	return func(o *options) {
		o.typo = enabled
	}
}

// WithMaxWordLength limits words to n positions. Zero means no limit.
func WithMaxWordLength(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxWordLength = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver sets the metrics sink.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		if obs != nil {
			o.observer = obs
		}
	}
}

func defaultOptions() options {
	return options{
		nbest:    DefaultNBest,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		observer: noopObserver{},
	}
}
