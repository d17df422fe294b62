package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"

	"fenrir/internal/common"
	"fenrir/internal/engine"
	"fenrir/internal/feed"
	"fenrir/internal/metrics"
	"fenrir/internal/report"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"
)

const defaultBufferSize = 128

// Summary counts what a run did.
type Summary struct {
	Events   int // accepted events
	Rejected int // malformed or rejected events
	Trades   int // ledger entries, sweep included
}

type Option func(*Runner)

// WithBufferSize sets how many decoded events may queue ahead of the book.
func WithBufferSize(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.bufferSize = n
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Runner) {
		r.metrics = m
	}
}

// Runner drives one OrderBook from a feed. A reader goroutine decodes lines
// into a channel and a matcher goroutine, the only writer of the book, feeds
// them to the book one at a time.
type Runner struct {
	id         uuid.UUID
	book       *engine.OrderBook
	source     io.Reader
	reporter   report.Reporter
	metrics    *metrics.Metrics
	bufferSize int
	logger     zerolog.Logger

	summary Summary
}

// New returns a Runner for book. The caller owns source: Run never closes it.
// If a run is cut short while a read is blocked on source, Run still returns
// and the pending read is abandoned until the caller closes source.
func New(book *engine.OrderBook, source io.Reader, reporter report.Reporter, opts ...Option) *Runner {
	id := uuid.New()
	r := &Runner{
		id:         id,
		book:       book,
		source:     source,
		reporter:   reporter,
		bufferSize: defaultBufferSize,
		logger:     log.With().Str("run", id.String()).Logger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) ID() uuid.UUID {
	return r.id
}

// Run processes the whole feed, sweeps the book and reports the final state.
// It stops early on a feed read error, a report write error, an invalid fill
// or ctx being cancelled; nothing final is reported in those cases.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	r.summary = Summary{}
	t, _ := tomb.WithContext(ctx)
	records := make(chan feed.Record, r.bufferSize)

	r.logger.Info().Msg("run started")

	// The reader is not tracked: a read blocked on the source must not hold
	// the run open once it is dying.
	go r.read(t, records)
	t.Go(func() error {
		return r.match(t, records)
	})

	if err := t.Wait(); err != nil {
		r.logger.Error().Err(err).Interface("summary", r.summary).Msg("run failed")
		return r.summary, err
	}

	r.logger.Info().
		Int("events", r.summary.Events).
		Int("rejected", r.summary.Rejected).
		Int("trades", r.summary.Trades).
		Msg("run finished")
	return r.summary, nil
}

// read feeds decoded records to the matcher until EOF, a read error or the
// run dying. A read error kills the run.
func (r *Runner) read(t *tomb.Tomb, records chan<- feed.Record) {
	decoder := feed.NewDecoder(r.source)
	for {
		record, err := decoder.Next()
		if errors.Is(err, io.EOF) {
			close(records)
			return
		}
		if err != nil {
			t.Kill(err)
			return
		}

		select {
		case <-t.Dying():
			return
		case records <- record:
		}
	}
}

func (r *Runner) match(t *tomb.Tomb, records <-chan feed.Record) error {
	for {
		select {
		case <-t.Dying():
			return nil
		case record, ok := <-records:
			if !ok {
				return r.finish()
			}
			if err := r.process(record); err != nil {
				return err
			}
		}
	}
}

func (r *Runner) process(record feed.Record) error {
	err := record.Err
	var trades []common.Trade
	if err == nil {
		trades, err = r.book.Submit(record.Event)
	}

	switch {
	case err == nil:
	case errors.Is(err, common.ErrMalformedOrder), errors.Is(err, common.ErrRejectedOrder):
		r.summary.Rejected++
		if r.metrics != nil {
			r.metrics.ObserveDropped(err)
		}
		r.logger.Warn().Int("line", record.Line).Err(err).Msg("order dropped")
		return r.reporter.ReportRejection(record.Line, err)
	default:
		return fmt.Errorf("line %d: %w", record.Line, err)
	}

	r.summary.Events++
	r.summary.Trades += len(trades)
	if r.metrics != nil {
		r.metrics.ObserveAccepted()
		r.metrics.ObserveTrades(trades)
		r.metrics.ObserveDepth(r.book.Depth())
	}
	if len(trades) > 0 {
		r.logger.Debug().Int("line", record.Line).Int("trades", len(trades)).Msg("order matched")
	}
	return r.reporter.ReportEvent(record.Line, trades, r.book.Snapshot)
}

func (r *Runner) finish() error {
	swept, err := r.book.Sweep()
	if err != nil {
		return fmt.Errorf("final sweep: %w", err)
	}
	r.summary.Trades += len(swept)
	if r.metrics != nil {
		r.metrics.ObserveTrades(swept)
		r.metrics.ObserveDepth(r.book.Depth())
	}
	return r.reporter.ReportFinal(r.book.Snapshot(), r.book.Ledger())
}
