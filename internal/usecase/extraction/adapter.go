package extraction

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"returnsdesk/internal/bootstrap/config"
	"returnsdesk/internal/bootstrap/logging"
	"returnsdesk/internal/domain/returns"
	"returnsdesk/internal/errs"
	"returnsdesk/internal/ports"
)

const defaultTimeout = 30 * time.Second

// Result is the outcome of one extraction call.
type Result struct {
	Candidate returns.Candidate
	Err       error
}

// Adapter turns free text into a natural-language candidate through an
// external extraction client. The external call runs on its own goroutine and
// touches no shared state until it returns.
type Adapter struct {
	client   ports.ExtractionClient
	cache    ports.Cache
	timeout  time.Duration
	cacheTTL time.Duration
}

// NewAdapter wires the client with an optional response cache. A zero
// cfg.CacheTTL turns caching off.
func NewAdapter(client ports.ExtractionClient, cache ports.Cache, cfg config.ExtractionConfig) *Adapter {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	a := &Adapter{
		client:   client,
		timeout:  timeout,
		cacheTTL: cfg.CacheTTL,
	}
	if cfg.CacheTTL > 0 {
		a.cache = cache
	}
	return a
}

// Start issues the extraction call without blocking. The channel is buffered
// so the goroutine finishes even when nobody reads the result.
func (a *Adapter) Start(ctx context.Context, text string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		c, err := a.run(ctx, text)
		out <- Result{Candidate: c, Err: err}
	}()
	return out
}

// Extract starts the call and waits for it, bounded by the configured timeout
// and by ctx. Every failure is an *returns.ExtractionError.
func (a *Adapter) Extract(ctx context.Context, text string) (returns.Candidate, error) {
	if ctx == nil {
		return returns.Candidate{}, errors.New("context is required")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return returns.Candidate{}, &returns.ExtractionError{Cause: returns.ErrEmptyText}
	}
	if a.client == nil {
		return returns.Candidate{}, &returns.ExtractionError{Cause: errors.New("extraction client is required")}
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	select {
	case res := <-a.Start(callCtx, text):
		return res.Candidate, res.Err
	case <-callCtx.Done():
		logging.Warn(ctx, "extraction call abandoned", slog.String("reason", callCtx.Err().Error()))
		return returns.Candidate{}, &returns.ExtractionError{Cause: callCtx.Err()}
	}
}

func (a *Adapter) run(ctx context.Context, text string) (returns.Candidate, error) {
	logCtx := logging.WithAttrs(ctx,
		slog.String("component", "usecase.extraction"),
		slog.String("client", a.client.Name()),
	)

	key := cacheKey(text)
	if raw, cached := a.lookup(logCtx, key); cached {
		partial, err := returns.ParseExtraction(raw)
		if err == nil {
			return a.candidate(logCtx, partial), nil
		}
		logging.Warn(logCtx, "cached extraction response unparseable, evicting", slog.Any("err", errs.Loggable(err)))
		a.evict(logCtx, key)
	}

	started := time.Now()
	raw, err := a.client.Extract(ctx, text)
	if err != nil {
		return returns.Candidate{}, &returns.ExtractionError{Cause: err}
	}
	logging.Info(logCtx, "extraction response received", slog.Duration("elapsed", time.Since(started)))

	partial, err := returns.ParseExtraction(raw)
	if err != nil {
		return returns.Candidate{}, &returns.ExtractionError{Cause: err}
	}
	a.store(logCtx, key, raw)
	return a.candidate(logCtx, partial), nil
}

func (a *Adapter) candidate(logCtx context.Context, partial returns.Partial) returns.Candidate {
	if partial.ApprovedFlag != nil && !strings.EqualFold(*partial.ApprovedFlag, string(returns.ApprovedNo)) {
		logging.Info(logCtx, "extraction approved_flag overridden", slog.String("supplied", *partial.ApprovedFlag))
	}
	return returns.ApplyExtractionDefaults(partial)
}

func (a *Adapter) lookup(ctx context.Context, key string) (string, bool) {
	if a.cache == nil {
		return "", false
	}
	raw, found, err := a.cache.Get(ctx, key)
	if err != nil {
		logging.Warn(ctx, "extraction cache read failed", slog.Any("err", errs.Loggable(err)))
		return "", false
	}
	if found {
		logging.Info(ctx, "extraction cache hit")
	}
	return raw, found
}

func (a *Adapter) store(ctx context.Context, key string, raw string) {
	if a.cache == nil {
		return
	}
	if err := a.cache.Set(ctx, key, raw, a.cacheTTL); err != nil {
		logging.Warn(ctx, "extraction cache write failed", slog.Any("err", errs.Loggable(err)))
	}
}

func (a *Adapter) evict(ctx context.Context, key string) {
	if err := a.cache.Delete(ctx, key); err != nil {
		logging.Warn(ctx, "extraction cache delete failed", slog.Any("err", errs.Loggable(err)))
	}
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(strings.Join(strings.Fields(text), " ")))
	return "extract:" + hex.EncodeToString(sum[:])
}
