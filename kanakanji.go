package kanakanji

import (
	"context"
	"errors"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/hupe1980/kanakanji/blobstore"
	"github.com/hupe1980/kanakanji/config"
	"github.com/hupe1980/kanakanji/converter"
	"github.com/hupe1980/kanakanji/costs"
	"github.com/hupe1980/kanakanji/dictionary"
	"github.com/hupe1980/kanakanji/internal/cache"
	"github.com/hupe1980/kanakanji/internal/resource"
	"github.com/hupe1980/kanakanji/model"
	"github.com/hupe1980/kanakanji/userdict"
)

// Engine holds the state shared by all sessions: the dictionary, the
// scoring tables, the user dictionary and the learned words. It is safe for
// concurrent use.
type Engine struct {
	cfg    *config.Config
	opts   options
	logger *Logger

	cache  cache.BlockCache
	store  *dictionary.Store
	tables *costs.Tables
	user   *userdict.Dict
	memory *costs.Memory

	nextSession atomic.Uint64
	// overlayGen counts changes to the user dictionary and the learning
	// memory. Sessions rebuild their lattice when it moves.
	overlayGen atomic.Uint64

	mu     sync.RWMutex
	closed bool
}

// Open validates cfg, opens the published dictionary it names and loads the
// scoring tables. A nil cfg means config.DefaultConfig().
func Open(ctx context.Context, cfg *config.Config, optFns ...Option) (*Engine, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	o := applyOptions(optFns)
	logger := o.logger
	if logger == nil {
		var err error
		if logger, err = NewConfiguredLogger(os.Stderr, cfg.Log.Level, cfg.Log.Format); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	e := &Engine{
		cfg:    cfg.Clone(),
		opts:   o,
		logger: logger,
		memory: costs.NewMemory(),
	}
	if err := e.open(ctx); err != nil {
		_ = e.Close()
		logger.LogOpen(ctx, cfg.Dictionary.Source, "", time.Since(start), err)
		return nil, err
	}
	logger.LogOpen(ctx, cfg.Dictionary.Source, e.store.Manifest().Dir(), time.Since(start), nil)
	return e, nil
}

func (e *Engine) open(ctx context.Context) error {
	dc := e.cfg.Dictionary

	blobs, remote := e.opts.blobs, false
	if blobs == nil {
		var err error
		if blobs, remote, err = OpenBlobStore(ctx, dc); err != nil {
			return err
		}
	}

	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   dc.CacheBytes,
		IOLimitBytesPerSec: dc.IOBytesPerSec,
	})
	dictOpts := []dictionary.Option{
		dictionary.WithLogger(e.logger.Logger),
		dictionary.WithObserver(e.opts.metricsCollector),
		dictionary.WithResourceController(rc),
		dictionary.WithVerify(dc.Verify),
	}
	if dc.CacheBytes > 0 {
		e.cache = cache.NewShardedLRUBlockCache(dc.CacheBytes, rc)
		dictOpts = append(dictOpts, dictionary.WithCache(e.cache))
		if remote {
			blobs = blobstore.NewCachingStore(blobs, e.cache, 0)
		}
	}

	store, err := dictionary.Open(ctx, blobs, dictOpts...)
	if err != nil {
		return translateError(err)
	}
	e.store = store

	if e.tables, err = costs.LoadFiles(e.cfg.Costs.Matrix, e.cfg.Costs.Semantic, e.cfg.Costs.Clause); err != nil {
		return err
	}

	if path := e.cfg.UserDict.Path; path != "" {
		if e.user, err = userdict.Open(path, userdict.WithLogger(e.logger.Logger)); err != nil {
			return err
		}
	}
	return nil
}

// Config returns a copy of the configuration the engine was opened with.
func (e *Engine) Config() *config.Config {
	return e.cfg.Clone()
}

// Logger returns the engine logger.
func (e *Engine) Logger() *Logger {
	return e.logger
}

// Store returns the opened dictionary.
func (e *Engine) Store() *dictionary.Store {
	return e.store
}

// Memory returns the learned words. Changes made through it directly are
// not seen by sessions that already hold a lattice; use Session.Learn and
// Forget for that.
func (e *Engine) Memory() *costs.Memory {
	return e.memory
}

// NewSession starts a composing session.
func (e *Engine) NewSession() (*Session, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return nil, ErrClosed
	}

	id := e.nextSession.Add(1)
	logger := e.logger.WithSession(id)

	costOpts := []costs.Option{
		costs.WithLogger(logger.Logger),
		costs.WithBlockedWords(e.opts.blocked...),
		costs.WithTypoVariants(e.opts.typo, e.opts.typoPenalty),
	}
	if e.user != nil {
		costOpts = append(costOpts, costs.WithOverlay(e.user))
	}
	costOpts = append(costOpts, costs.WithOverlay(e.memory))
	for _, ov := range e.opts.overlays {
		costOpts = append(costOpts, costs.WithOverlay(ov))
	}
	provider := costs.NewProvider(e.tables, e.store, costOpts...)

	conv := converter.New(provider,
		converter.WithNBest(e.cfg.NBest),
		converter.WithTypoCorrection(e.cfg.NeedTypoCorrection),
		converter.WithMaxWordLength(e.cfg.MaxWordLength),
		converter.WithLogger(logger.Logger),
		converter.WithObserver(e.opts.metricsCollector),
	)
	return &Session{
		id:       id,
		engine:   e,
		logger:   logger,
		provider: provider,
		conv:     conv,
		gen:      e.overlayGen.Load(),
	}, nil
}

// AddUserWord stores e in the user dictionary. Sessions see it on their
// next conversion.
func (e *Engine) AddUserWord(ctx context.Context, entry model.Entry) error {
	if e.user == nil {
		return ErrNoUserDictionary
	}
	err := e.user.Add(ctx, entry)
	if err == nil {
		e.overlayGen.Add(1)
	}
	e.logger.LogUserWord(ctx, "add", entry.Reading, entry.Word, err)
	return translateError(err)
}

// RemoveUserWord deletes a word from the user dictionary.
func (e *Engine) RemoveUserWord(ctx context.Context, reading, word string) error {
	if e.user == nil {
		return ErrNoUserDictionary
	}
	err := e.user.Remove(ctx, reading, word)
	if err == nil {
		e.overlayGen.Add(1)
	}
	e.logger.LogUserWord(ctx, "remove", reading, word, err)
	return translateError(err)
}

// UserWords returns every user dictionary word.
func (e *Engine) UserWords(ctx context.Context) ([]model.Entry, error) {
	if e.user == nil {
		return nil, ErrNoUserDictionary
	}
	return e.user.All(ctx)
}

// Forget drops a learned word.
func (e *Engine) Forget(reading, word string) {
	e.memory.Forget(reading, word)
	e.overlayGen.Add(1)
}

// learn records entries in the learning memory and returns the new overlay
// generation.
func (e *Engine) learn(entries ...model.Entry) uint64 {
	e.memory.Learn(entries...)
	return e.overlayGen.Add(1)
}

// Close releases the dictionary, the cache and the user dictionary.
// Sessions must not be used afterwards.
func (e *Engine) Close() error {
	if e == nil {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true

	var errs []error
	if e.store != nil {
		errs = append(errs, e.store.Close())
	}
	if e.cache != nil {
		errs = append(errs, e.cache.Close())
	}
	if e.user != nil {
		errs = append(errs, e.user.Close())
	}
	return errors.Join(errs...)
}
