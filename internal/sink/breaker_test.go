package sink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/sms-ledger/internal/logging"
	"fjacquet/sms-ledger/internal/metrics"
	"fjacquet/sms-ledger/internal/models"
	"fjacquet/sms-ledger/internal/sink"
	"fjacquet/sms-ledger/internal/sink/mocks"
)

func TestBreakerStore_OpensAfterConsecutiveFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Name().Return("postgres").AnyTimes()
	store.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(sink.Inserted, errors.New("connection refused")).Times(3)

	logger := logging.NewMockLogger()
	bs := sink.NewBreakerStore(store, sink.BreakerOptions{MaxFailures: 3, OpenTimeout: time.Minute}, metrics.NoOpCollector{}, logger)

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := bs.Upsert(ctx, models.Transaction{})
		require.Error(t, err)
		assert.NotErrorIs(t, err, sink.ErrUnavailable)
	}
	assert.Equal(t, gobreaker.StateOpen, bs.State())

	_, err := bs.Upsert(ctx, models.Transaction{})
	assert.ErrorIs(t, err, sink.ErrUnavailable)
	_, err = bs.List(ctx, "u1")
	assert.ErrorIs(t, err, sink.ErrUnavailable)

	assert.True(t, logger.HasEntry("WARN", "Circuit breaker state changed"))
}

func TestBreakerStore_CancellationIsNotAFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Name().Return("redis").AnyTimes()
	store.EXPECT().Accounts(gomock.Any(), "u1").Return(nil, context.Canceled).Times(5)

	bs := sink.NewBreakerStore(store, sink.BreakerOptions{MaxFailures: 2, OpenTimeout: time.Minute}, nil, nil)
	for i := 0; i < 5; i++ {
		_, err := bs.Accounts(context.Background(), "u1")
		assert.ErrorIs(t, err, context.Canceled)
	}
	assert.Equal(t, gobreaker.StateClosed, bs.State())
}

func TestBreakerStore_PassesResultsThrough(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ctx := context.Background()
	tx := models.Transaction{UserID: "u1", Fingerprint: "fp"}
	acct := models.Account{ID: "a1", UserID: "u1"}

	store := mocks.NewMockStore(ctrl)
	store.EXPECT().Name().Return("memory").AnyTimes()
	store.EXPECT().Upsert(ctx, tx).Return(sink.Duplicate, nil)
	store.EXPECT().List(ctx, "u1").Return([]models.Transaction{tx}, nil)
	store.EXPECT().Accounts(ctx, "u1").Return([]models.Account{acct}, nil)
	store.EXPECT().SaveAccount(ctx, acct).Return(nil)
	store.EXPECT().Close().Return(nil)

	bs := sink.NewBreakerStore(store, sink.BreakerOptions{}, metrics.NoOpCollector{}, nil)

	res, err := bs.Upsert(ctx, tx)
	require.NoError(t, err)
	assert.Equal(t, sink.Duplicate, res)

	list, err := bs.List(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []models.Transaction{tx}, list)

	accounts, err := bs.Accounts(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []models.Account{acct}, accounts)

	require.NoError(t, bs.SaveAccount(ctx, acct))
	assert.Equal(t, "memory", bs.Name())
	require.NoError(t, bs.Close())
}
