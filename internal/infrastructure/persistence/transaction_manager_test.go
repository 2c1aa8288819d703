package persistence

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// newMockedGorm opens gorm over a sqlmock connection so the tests can
// assert on the exact transaction control statements issued.
func newMockedGorm(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestTransactionManager_CommitsOnSuccess(t *testing.T) {
	db, mock := newMockedGorm(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	tm := NewGormTransactionManager(db)
	called := false
	err := tm.Execute(context.Background(), func(ctx context.Context) error {
		called = true
		assert.NotNil(t, txFromContext(ctx), "transaction travels in the context")
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManager_RollsBackOnError(t *testing.T) {
	db, mock := newMockedGorm(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	tm := NewGormTransactionManager(db)
	boom := errors.New("balance recompute failed")
	err := tm.Execute(context.Background(), func(ctx context.Context) error {
		return boom
	})

	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransactionManager_NestedExecuteJoinsTransaction(t *testing.T) {
	db, mock := newMockedGorm(t)
	// one BEGIN and one COMMIT regardless of nesting depth
	mock.ExpectBegin()
	mock.ExpectCommit()

	tm := NewGormTransactionManager(db)
	innerRan := false
	err := tm.Execute(context.Background(), func(ctx context.Context) error {
		return tm.Execute(ctx, func(ctx context.Context) error {
			innerRan = true
			return nil
		})
	})

	require.NoError(t, err)
	assert.True(t, innerRan)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDBFromContext_FallsBackOutsideTransaction(t *testing.T) {
	db, _ := newMockedGorm(t)

	got := dbFromContext(context.Background(), db)
	assert.NotNil(t, got)
	assert.Nil(t, txFromContext(context.Background()))
}
