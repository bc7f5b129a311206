package db

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
	commits   int
	rollbacks int
	commitErr error
}

func (f *fakeTx) Commit(ctx context.Context) error {
	f.commits++
	return f.commitErr
}

func (f *fakeTx) Rollback(ctx context.Context) error {
	f.rollbacks++
	return nil
}

type fakeBeginner struct {
	tx   *fakeTx
	opts pgx.TxOptions
	err  error
}

func (f *fakeBeginner) BeginTx(ctx context.Context, opts pgx.TxOptions) (pgx.Tx, error) {
	f.opts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.tx, nil
}

func TestWithTxCommits(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	require.NoError(t, WithTx(context.Background(), b, func(pgx.Tx) error { return nil }))
	assert.Equal(t, 1, b.tx.commits)
	assert.Zero(t, b.tx.rollbacks)
	assert.Equal(t, pgx.RepeatableRead, b.opts.IsoLevel)
}

func TestWithTxOptionsRollsBackOnError(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	boom := errors.New("boom")
	err := WithTxOptions(context.Background(), b, ReadCommitted, func(pgx.Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, b.tx.commits)
	assert.Equal(t, 1, b.tx.rollbacks)
	assert.Equal(t, pgx.ReadCommitted, b.opts.IsoLevel)
}

func TestWithTxRollsBackOnPanic(t *testing.T) {
	b := &fakeBeginner{tx: &fakeTx{}}
	assert.Panics(t, func() {
		_ = WithTx(context.Background(), b, func(pgx.Tx) error { panic("kaboom") })
	})
	assert.Equal(t, 1, b.tx.rollbacks)
}

func TestWithTxWrapsBeginAndCommitErrors(t *testing.T) {
	err := WithTx(context.Background(), &fakeBeginner{err: errors.New("no conn")}, func(pgx.Tx) error { return nil })
	assert.ErrorContains(t, err, "begin tx")

	b := &fakeBeginner{tx: &fakeTx{commitErr: errors.New("serialization failure")}}
	err = WithTx(context.Background(), b, func(pgx.Tx) error { return nil })
	assert.ErrorContains(t, err, "commit tx")
	assert.Equal(t, 1, b.tx.rollbacks)
}

func TestPoolConfigAppliesOptions(t *testing.T) {
	cfg, err := Options{
		DSN:             "postgres://u:p@localhost:5432/repdesk?sslmode=disable",
		MaxConns:        12,
		MinConns:        2,
		MaxConnLifetime: time.Hour,
	}.poolConfig()
	require.NoError(t, err)
	assert.Equal(t, int32(12), cfg.MaxConns)
	assert.Equal(t, int32(2), cfg.MinConns)
	assert.Equal(t, time.Hour, cfg.MaxConnLifetime)
	assert.NotNil(t, cfg.AfterConnect)
}

func TestPoolConfigRejectsBadDSN(t *testing.T) {
	_, err := Options{}.poolConfig()
	assert.Error(t, err)
	_, err = Options{DSN: "postgres://%zz"}.poolConfig()
	assert.Error(t, err)
}
