package provider

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i2y/bridle/internal/slogx"
	"github.com/i2y/bridle/retry"
)

// EventSource yields the chunks of one backend response, one native event at
// a time. Recv returns io.EOF, with no chunks, after the last event.
type EventSource interface {
	Recv() ([]Chunk, error)
	Close() error
}

// Opener sends the initiating request and returns the event source of its
// response. It is called once per attempt.
type Opener func(ctx context.Context) (EventSource, error)

// StreamConfig describes a stream to NewStream.
type StreamConfig struct {
	Provider string
	Model    string
	Retry    retry.Policy
	Logger   *slog.Logger
	Open     Opener
}

// NewStream returns a lazy stream. The first Next sends the initiating
// request under cfg.Retry and reads up to the first chunk; later calls read
// one native event at a time.
func NewStream(ctx context.Context, cfg StreamConfig) Stream {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	id := uuid.NewString()
	return &stream{
		ctx: ctx,
		cfg: cfg,
		log: cfg.Logger.With(slogx.RequestID(id), slogx.Provider(cfg.Provider), slogx.Model(cfg.Model)),
	}
}

// NewErrorStream returns a stream that fails on the first Next without sending
// anything.
func NewErrorStream(providerName, model string, err error) Stream {
	return &stream{
		done: true,
		err:  &InitiationError{Provider: providerName, Model: model, Err: err},
	}
}

type stream struct {
	ctx context.Context
	cfg StreamConfig
	log *slog.Logger

	src     EventSource
	started bool
	done    bool
	buf     []Chunk
	cur     Chunk
	emitted int
	err     error

	closeOnce sync.Once
	closeErr  error
}

func (s *stream) Next() bool {
	if s.done {
		return false
	}
	if !s.started {
		s.started = true
		if !s.open() {
			return false
		}
	}

	for len(s.buf) == 0 {
		chunks, err := s.src.Recv()
		if errors.Is(err, io.EOF) {
			s.log.Debug("stream finished", slog.Int("chunks", s.emitted))
			s.finish()
			return false
		}
		if err != nil {
			s.log.Debug("stream interrupted", slog.Int("chunks", s.emitted), slogx.Error(err))
			s.err = &InterruptedError{Provider: s.cfg.Provider, Model: s.cfg.Model, Emitted: s.emitted, Err: err}
			s.finish()
			return false
		}
		s.buf = chunks
	}

	s.cur = s.buf[0]
	s.buf[0] = nil
	s.buf = s.buf[1:]
	s.emitted++
	return true
}

func (s *stream) open() bool {
	policy := s.cfg.Retry
	userHook := policy.OnRetry
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		s.log.Debug("retrying stream request",
			slog.Int("attempt", attempt), slogx.Delay(delay), slogx.Error(err))
		if userHook != nil {
			userHook(attempt, delay, err)
		}
	}

	s.log.Debug("opening stream")
	first, attempts, err := retry.Do(s.ctx, policy, func(ctx context.Context, _ int) (firstBatch, error) {
		return s.openFirst(ctx)
	})
	if err != nil {
		s.log.Debug("stream request failed", slog.Int("attempts", attempts), slogx.Error(err))
		s.err = &InitiationError{Provider: s.cfg.Provider, Model: s.cfg.Model, Attempts: attempts, Err: err}
		s.done = true
		return false
	}
	s.src = first.src
	s.buf = first.chunks
	if first.eof {
		s.log.Debug("stream finished", slog.Int("chunks", 0))
		s.finish()
		return false
	}
	return true
}

// firstBatch is an opened source together with the first chunks it produced.
type firstBatch struct {
	src    EventSource
	chunks []Chunk
	eof    bool
}

// openFirst sends the request and reads until the first chunk or the end of
// the response. A backend error event that arrives before any chunk fails the
// attempt, so it can be retried like a failed request.
func (s *stream) openFirst(ctx context.Context) (firstBatch, error) {
	src, err := s.cfg.Open(ctx)
	if err != nil {
		return firstBatch{}, err
	}
	for {
		chunks, err := src.Recv()
		switch {
		case errors.Is(err, io.EOF):
			return firstBatch{src: src, eof: true}, nil
		case err != nil:
			_ = src.Close()
			return firstBatch{}, err
		case len(chunks) > 0:
			return firstBatch{src: src, chunks: chunks}, nil
		}
	}
}

func (s *stream) finish() {
	s.done = true
	s.buf = nil
	_ = s.Close()
}

func (s *stream) Current() Chunk {
	return s.cur
}

func (s *stream) Err() error {
	return s.err
}

func (s *stream) Close() error {
	s.closeOnce.Do(func() {
		s.done = true
		if s.src != nil {
			s.closeErr = s.src.Close()
		}
	})
	return s.closeErr
}

// Chunks adapts s to a range-over-func iterator. The final pair carries the
// stream error, if any. s is closed on every exit path.
func Chunks(s Stream) iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		defer func() { _ = s.Close() }()
		for s.Next() {
			if !yield(s.Current(), nil) {
				return
			}
		}
		if err := s.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// Collect drains s and returns the chunks read before any error.
func Collect(s Stream) ([]Chunk, error) {
	var out []Chunk
	for c, err := range Chunks(s) {
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, nil
}
