package sim

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	tomb "gopkg.in/tomb.v2"

	"gleipnir/internal/common"
	"gleipnir/internal/engine"
	"gleipnir/internal/input"
	"gleipnir/internal/logger"
	"gleipnir/internal/metrics"
	"gleipnir/internal/ring"
)

// ErrRingStalled is returned by the producer when the consumer died with
// the ring full and a push could never complete.
var ErrRingStalled = errors.New("ring push abandoned, consumer gone")

type Config struct {
	ArenaCapacity int
	RingCapacity  int
	OutputPath    string
	MetricsAddr   string
}

// Runner drives one matching session. A producer goroutine feeds the
// engine from the event source and pushes every book event onto the ring;
// a consumer goroutine drains the ring into the book logger. The only
// state the two share is the ring and the done flag.
type Runner struct {
	source  input.Source
	engine  *engine.Engine
	logger  *logger.BookLogger
	metrics *metrics.Collector

	ring *ring.Ring[common.BookEvent]
	done atomic.Bool

	runID       uuid.UUID
	metricsAddr string
	inbound     uint64
	emitted     uint64
}

func NewRunner(source input.Source, cfg Config) (*Runner, error) {
	ringCapacity := cfg.RingCapacity
	if ringCapacity == 0 {
		ringCapacity = ring.DefaultCapacity
	}
	r, err := ring.New[common.BookEvent](ringCapacity)
	if err != nil {
		return nil, err
	}

	bookLogger, err := logger.New(cfg.OutputPath)
	if err != nil {
		return nil, err
	}

	return &Runner{
		source:      source,
		engine:      engine.New(cfg.ArenaCapacity),
		logger:      bookLogger,
		metrics:     metrics.NewCollector(),
		ring:        r,
		runID:       uuid.New(),
		metricsAddr: cfg.MetricsAddr,
	}, nil
}

// Engine exposes the engine for post-run inspection.
func (r *Runner) Engine() *engine.Engine {
	return r.engine
}

// Run blocks until the source is exhausted and every event has reached
// the log, or until either side fails.
func (r *Runner) Run(ctx context.Context) error {
	log.Info().Str("runID", r.runID.String()).Msg("matching session starting")
	started := time.Now()

	if r.metricsAddr != "" {
		go func() {
			if err := http.ListenAndServe(r.metricsAddr, r.metrics.Handler()); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	t, _ := tomb.WithContext(ctx)
	t.Go(func() error { return r.produce(t) })
	t.Go(func() error { return r.consume(t) })
	err := t.Wait()

	log.Info().
		Str("runID", r.runID.String()).
		Uint64("inboundEvents", r.inbound).
		Uint64("bookEvents", r.emitted).
		Dur("elapsed", time.Since(started)).
		Msg("matching session finished")
	return err
}

// produce is the matching thread. It owns the engine and the book for its
// whole lifetime. The done flag is set on every return; on a normal finish
// that is after the terminal snapshot has been pushed, so every event is
// observable before the consumer can see done.
func (r *Runner) produce(t *tomb.Tomb) error {
	defer r.done.Store(true)

	for {
		select {
		case <-t.Dying():
			return nil
		default:
		}

		event, ok := r.source.Next()
		if !ok {
			break
		}
		r.inbound++
		r.metrics.ObserveInbound(event)

		for _, out := range r.engine.MatchOrder(event) {
			if err := r.push(t, out); err != nil {
				return err
			}
			r.metrics.ObserveBookEvent(out)
		}
		r.metrics.RingDepth.Set(float64(r.ring.Len()))
	}

	snapshot := common.SnapshotEvent{Text: r.engine.Book().Snapshot()}
	if err := r.push(t, snapshot); err != nil {
		return err
	}
	r.metrics.ObserveBookEvent(snapshot)
	return nil
}

// push spins until the ring accepts the event, giving up only if the
// consumer has died.
func (r *Runner) push(t *tomb.Tomb, event common.BookEvent) error {
	for !r.ring.TryPush(event) {
		select {
		case <-t.Dying():
			return ErrRingStalled
		default:
			runtime.Gosched()
		}
	}
	r.emitted++
	return nil
}

// consume is the logging thread. Once done is observed, everything pushed
// before it is already visible, so a single exhaustive drain finishes the
// stream.
func (r *Runner) consume(t *tomb.Tomb) error {
	for {
		event, ok := r.ring.TryPop()
		if ok {
			if err := r.logger.Log(event); err != nil {
				return err
			}
			continue
		}

		if r.done.Load() {
			for {
				event, ok := r.ring.TryPop()
				if !ok {
					if err := r.logger.Close(); err != nil {
						return fmt.Errorf("close book event log: %w", err)
					}
					return nil
				}
				if err := r.logger.Log(event); err != nil {
					return err
				}
			}
		}

		select {
		case <-t.Dying():
			return nil
		default:
			runtime.Gosched()
		}
	}
}
