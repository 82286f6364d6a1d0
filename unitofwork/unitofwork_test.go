/*
 * Copyright 2025 stratumhq.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package unitofwork

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stratumhq/stratum/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type ledgerEntry struct {
	bun.BaseModel `bun:"table:ledger_entries,alias:ledger_entries"`

	ID     int64  `bun:"id,pk,autoincrement"`
	Label  string `bun:"label"`
	Amount int    `bun:"amount"`
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqlDB, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.ResetModel(context.Background(), (*ledgerEntry)(nil)))
	return db
}

func TestUnitOfWorkSave(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewRepository[ledgerEntry](db)
	ctx := context.Background()

	uow := New(db)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, repo.CreateWithTx(ctx, uow.Conn(), &ledgerEntry{Label: "a", Amount: 1}))
	require.NoError(t, repo.CreateWithTx(ctx, uow.Conn(), &ledgerEntry{Label: "b", Amount: 2}))
	require.NoError(t, uow.Save())

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestUnitOfWorkRollback(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewRepository[ledgerEntry](db)
	ctx := context.Background()

	uow := New(db)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, repo.CreateWithTx(ctx, uow.Conn(), &ledgerEntry{Label: "a", Amount: 1}))
	require.NoError(t, uow.Rollback())

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestUnitOfWorkConnBeforeBegin(t *testing.T) {
	db := newTestDB(t)
	uow := New(db)

	// before Begin the plain database is exposed for read-only sharing
	assert.Same(t, db, uow.Conn())
}

func TestUnitOfWorkDoubleBegin(t *testing.T) {
	db := newTestDB(t)
	uow := New(db)
	ctx := context.Background()

	require.NoError(t, uow.Begin(ctx))
	assert.Error(t, uow.Begin(ctx))
	require.NoError(t, uow.Rollback())
}

func TestUnitOfWorkSaveWithoutBegin(t *testing.T) {
	db := newTestDB(t)
	uow := New(db)

	assert.ErrorIs(t, uow.Save(), ErrNotBegun)
	assert.ErrorIs(t, uow.Rollback(), ErrNotBegun)
}

func TestUnitOfWorkRunCommits(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewRepository[ledgerEntry](db)
	ctx := context.Background()

	err := New(db).Run(ctx, func(ctx context.Context, conn bun.IDB) error {
		return repo.CreateWithTx(ctx, conn, &ledgerEntry{Label: "a", Amount: 1})
	})
	require.NoError(t, err)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestUnitOfWorkRunRollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewRepository[ledgerEntry](db)
	ctx := context.Background()
	boom := errors.New("boom")

	err := New(db).Run(ctx, func(ctx context.Context, conn bun.IDB) error {
		if err := repo.CreateWithTx(ctx, conn, &ledgerEntry{Label: "a", Amount: 1}); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestUnitOfWorkRunDoesNotRetryOtherErrors(t *testing.T) {
	db := newTestDB(t)
	attempts := 0

	err := New(db).Run(context.Background(), func(ctx context.Context, conn bun.IDB) error {
		attempts++
		return errors.New("not a conflict")
	})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrRetryExhausted)
	assert.Equal(t, 1, attempts)
}

func TestUnitOfWorkRunRetriesConflicts(t *testing.T) {
	db := newTestDB(t)
	attempts := 0

	uow := NewWithPolicy(db, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond})
	err := uow.Run(context.Background(), func(ctx context.Context, conn bun.IDB) error {
		attempts++
		if attempts < 3 {
			return repository.ErrOptimisticLock
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestUnitOfWorkRunRetryExhausted(t *testing.T) {
	db := newTestDB(t)
	attempts := 0

	uow := NewWithPolicy(db, RetryPolicy{MaxAttempts: 3, BaseDelay: time.Millisecond})
	err := uow.Run(context.Background(), func(ctx context.Context, conn bun.IDB) error {
		attempts++
		return repository.ErrOptimisticLock
	})
	assert.ErrorIs(t, err, ErrRetryExhausted)
	assert.Equal(t, 3, attempts)
}

func TestUnitOfWorkPolicyClampsAttempts(t *testing.T) {
	db := newTestDB(t)
	attempts := 0

	uow := NewWithPolicy(db, RetryPolicy{MaxAttempts: 0, BaseDelay: time.Millisecond})
	err := uow.Run(context.Background(), func(ctx context.Context, conn bun.IDB) error {
		attempts++
		return repository.ErrOptimisticLock
	})
	assert.ErrorIs(t, err, ErrRetryExhausted)
	assert.Equal(t, 1, attempts)
}
