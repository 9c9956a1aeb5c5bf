package costs

import (
	"io"
	"log/slog"
)

// DefaultTypoPenalty is added to the score of typo-corrected rows.
const DefaultTypoPenalty = -5

type options struct {
	logger      *slog.Logger
	overlays    []Overlay
	typo        func(reading string) []string
	typoPenalty float32
	blocked     map[string]struct{}
	userBuckets bool
}

// Option configures a Provider.
type Option func(*options)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithOverlay adds an overlay searched after the dictionary. Overlays are
// searched in the order they are added.
func WithOverlay(ov Overlay) Option {
	return func(o *options) {
		if ov != nil {
			o.overlays = append(o.overlays, ov)
		}
	}
}

// WithTypoVariants sets the function producing alternative readings for
// typo-corrected lookups, and the penalty their rows get.
func WithTypoVariants(fn func(reading string) []string, penalty float32) Option {
	return func(o *options) {
		o.typo = fn
		o.typoPenalty = penalty
	}
}

// WithBlockedWords removes words from every conversion.
func WithBlockedWords(words ...string) Option {
	return func(o *options) {
		for _, w := range words {
			o.blocked[w] = struct{}{}
		}
	}
}

// WithDictionaryOverlays enables lookups in the reserved user and memory
// buckets of the dictionary.
func WithDictionaryOverlays(enabled bool) Option {
	return func(o *options) {
		o.userBuckets = enabled
	}
}

func defaultOptions() options {
	return options{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		typoPenalty: DefaultTypoPenalty,
		blocked:     make(map[string]struct{}),
		userBuckets: true,
	}
}
