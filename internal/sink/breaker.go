package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/metrics"
	"fjacquet/sms-ledger/internal/models"
)

// BreakerOptions configures BreakerStore.
type BreakerOptions struct {
	MaxFailures      uint32        // consecutive failures that open the circuit
	OpenTimeout      time.Duration // time spent open before probing
	HalfOpenRequests uint32        // probes allowed while half-open
}

// BreakerStore guards a Store with a circuit breaker. While the circuit is
// open every call fails fast with ErrUnavailable. Context cancellation is
// the caller's doing and never counts as a store failure.
type BreakerStore struct {
	store   Store
	cb      *gobreaker.CircuitBreaker
	metrics metrics.Collector
	logger  logging.Logger
}

// NewBreakerStore wraps store.
func NewBreakerStore(store Store, opts BreakerOptions, collector metrics.Collector, logger logging.Logger) *BreakerStore {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if opts.MaxFailures == 0 {
		opts.MaxFailures = 5
	}
	if opts.HalfOpenRequests == 0 {
		opts.HalfOpenRequests = 1
	}

	bs := &BreakerStore{store: store, metrics: collector, logger: logger}
	bs.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        store.Name(),
		MaxRequests: opts.HalfOpenRequests,
		Timeout:     opts.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= opts.MaxFailures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			bs.logger.Warn("Circuit breaker state changed",
				logging.F(logging.FieldSink, name),
				logging.F("from", from.String()),
				logging.F("to", to.String()))

			var state metrics.CircuitState
			switch to {
			case gobreaker.StateClosed:
				state = metrics.CircuitClosed
			case gobreaker.StateHalfOpen:
				state = metrics.CircuitHalfOpen
			case gobreaker.StateOpen:
				state = metrics.CircuitOpen
			}
			bs.metrics.RecordCircuitState(name, state)
		},
	})
	return bs
}

// Name returns the wrapped store's name.
func (b *BreakerStore) Name() string {
	return b.store.Name()
}

// State reports the current circuit state.
func (b *BreakerStore) State() gobreaker.State {
	return b.cb.State()
}

func (b *BreakerStore) execute(operation string, fn func() (interface{}, error)) (interface{}, error) {
	start := time.Now()
	result, err := b.cb.Execute(fn)
	b.metrics.RecordSinkOp(b.store.Name(), operation, err == nil, time.Since(start))
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, fmt.Errorf("%s %s: %w", b.store.Name(), operation, ErrUnavailable)
	}
	return result, err
}

// Upsert implements Sink.
func (b *BreakerStore) Upsert(ctx context.Context, tx models.Transaction) (UpsertResult, error) {
	result, err := b.execute("upsert", func() (interface{}, error) {
		return b.store.Upsert(ctx, tx)
	})
	if err != nil {
		return Inserted, err
	}
	return result.(UpsertResult), nil
}

// List implements Sink.
func (b *BreakerStore) List(ctx context.Context, userID string) ([]models.Transaction, error) {
	result, err := b.execute("list", func() (interface{}, error) {
		return b.store.List(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.Transaction), nil
}

// Accounts implements AccountStore.
func (b *BreakerStore) Accounts(ctx context.Context, userID string) ([]models.Account, error) {
	result, err := b.execute("accounts", func() (interface{}, error) {
		return b.store.Accounts(ctx, userID)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.Account), nil
}

// SaveAccount implements AccountStore.
func (b *BreakerStore) SaveAccount(ctx context.Context, account models.Account) error {
	_, err := b.execute("save_account", func() (interface{}, error) {
		return nil, b.store.SaveAccount(ctx, account)
	})
	return err
}

// Close closes the wrapped store.
func (b *BreakerStore) Close() error {
	return b.store.Close()
}
