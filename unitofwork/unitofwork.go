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

// Package unitofwork groups repository writes into one transaction and
// retries optimistic-concurrency conflicts a bounded number of times.
package unitofwork

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/stratumhq/stratum/repository"

	"github.com/uptrace/bun"
)

// ErrRetryExhausted signals that a transactional body kept losing
// optimistic-concurrency races after the policy's final attempt.
var ErrRetryExhausted = errors.New("unitofwork: retries exhausted")

// ErrNotBegun signals Save or Rollback on a unit that never opened a
// transaction.
var ErrNotBegun = errors.New("unitofwork: transaction not begun")

// RetryPolicy bounds how often Run re-executes a body that failed with
// repository.ErrOptimisticLock. The delay doubles after every attempt.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy is used by Run when the unit carries no explicit policy.
var DefaultRetryPolicy = RetryPolicy{MaxAttempts: 3, BaseDelay: 50 * time.Millisecond}

// UnitOfWork is an explicit transaction handle. Begin opens the transaction,
// Conn exposes it to repositories, and exactly one of Save or Rollback ends
// it. Before Begin, Conn returns the plain database so read-only callers can
// share the same code path.
type UnitOfWork struct {
	db     *bun.DB
	tx     bun.Tx
	begun  bool
	policy RetryPolicy
}

// New returns a unit of work bound to the database with the default retry
// policy.
func New(db *bun.DB) *UnitOfWork {
	return &UnitOfWork{db: db, policy: DefaultRetryPolicy}
}

// NewWithPolicy returns a unit of work with a caller-chosen retry policy.
func NewWithPolicy(db *bun.DB, policy RetryPolicy) *UnitOfWork {
	if policy.MaxAttempts < 1 {
		policy.MaxAttempts = 1
	}
	return &UnitOfWork{db: db, policy: policy}
}

// Begin opens the transaction. Beginning twice is an error.
func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.begun {
		return fmt.Errorf("unitofwork: transaction already begun")
	}
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	u.tx = tx
	u.begun = true
	return nil
}

// Conn returns the connection repositories should write through: the open
// transaction after Begin, the plain database before it.
func (u *UnitOfWork) Conn() bun.IDB {
	if u.begun {
		return u.tx
	}
	return u.db
}

// Save commits the open transaction.
func (u *UnitOfWork) Save() error {
	if !u.begun {
		return ErrNotBegun
	}
	u.begun = false
	return u.tx.Commit()
}

// Rollback discards the open transaction.
func (u *UnitOfWork) Rollback() error {
	if !u.begun {
		return ErrNotBegun
	}
	u.begun = false
	return u.tx.Rollback()
}

// Run executes fn inside a transaction, committing on nil and rolling back
// on error. A body that fails with repository.ErrOptimisticLock is retried
// on a fresh transaction, with doubling delays, until the policy's attempts
// are spent; the last conflict is then wrapped in ErrRetryExhausted. Other
// errors abort immediately.
func (u *UnitOfWork) Run(ctx context.Context, fn func(ctx context.Context, conn bun.IDB) error) error {
	delay := u.policy.BaseDelay
	var err error
	for attempt := 1; attempt <= u.policy.MaxAttempts; attempt++ {
		err = u.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			return fn(ctx, tx)
		})
		if err == nil || !errors.Is(err, repository.ErrOptimisticLock) {
			return err
		}
		if attempt == u.policy.MaxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("%w after %d attempts: %v", ErrRetryExhausted, u.policy.MaxAttempts, err)
}
