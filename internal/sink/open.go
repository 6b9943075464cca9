package sink

import (
	"context"
	"fmt"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/metrics"
)

// Options selects and configures a store driver.
type Options struct {
	Driver    string // memory, postgres or redis
	DSN       string
	RedisAddr string
	Breaker   *BreakerOptions // nil disables the circuit breaker
}

// Open creates the configured store. Remote drivers are wrapped in a
// BreakerStore when Breaker is set.
func Open(ctx context.Context, opts Options, collector metrics.Collector, logger logging.Logger) (Store, error) {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}

	var (
		store Store
		err   error
	)
	switch opts.Driver {
	case "", "memory":
		return NewMemoryStore(), nil
	case "postgres":
		if opts.DSN == "" {
			return nil, fmt.Errorf("postgres sink requires a DSN")
		}
		store, err = NewPostgresStore(ctx, opts.DSN)
	case "redis":
		store, err = NewRedisStore(ctx, opts.RedisAddr)
	default:
		return nil, fmt.Errorf("unknown sink driver %q", opts.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("Transaction store opened", logging.F(logging.FieldSink, store.Name()))
	if opts.Breaker != nil {
		return NewBreakerStore(store, *opts.Breaker, collector, logger), nil
	}
	return store, nil
}
