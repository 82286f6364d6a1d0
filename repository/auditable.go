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

package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/stratumhq/stratum/requestinfo"
	"github.com/stratumhq/stratum/types"

	"github.com/uptrace/bun"
)

// auditableRepositoryImpl wraps a plain repository with audit stamping,
// soft deletion and optimistic concurrency. Reads go through the embedded
// scoped repository, which filters out soft-deleted rows; writes stamp the
// audit columns from the request identity before delegating. The raw
// repository keeps the unfiltered view for hard deletes and admin reads.
type auditableRepositoryImpl[T any] struct {
	*baseRepositoryImpl[T]

	raw   *baseRepositoryImpl[T]
	clock func() time.Time
}

// NewAuditableRepository returns an audit-aware repository for T. *T must
// embed types.Audit; construction panics otherwise, as every later write
// would fail anyway.
func NewAuditableRepository[T any](db *bun.DB) AuditableRepository[T] {
	var zero T
	if _, ok := any(&zero).(types.AuditRecord); !ok {
		panic(fmt.Sprintf("repository: %T does not embed types.Audit", &zero))
	}
	scoped := &baseRepositoryImpl[T]{
		db: db,
		scope: func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.is_deleted = ?", false)
		},
	}
	return &auditableRepositoryImpl[T]{
		baseRepositoryImpl: scoped,
		raw:                &baseRepositoryImpl[T]{db: db},
		clock:              time.Now,
	}
}

func auditOf[T any](entity *T) *types.Audit {
	return any(entity).(types.AuditRecord).AuditFields()
}

func (r *auditableRepositoryImpl[T]) Create(ctx context.Context, entity ...*T) error {
	return r.CreateWithTx(ctx, r.db, entity...)
}

func (r *auditableRepositoryImpl[T]) CreateWithTx(ctx context.Context, tx bun.IDB, entity ...*T) error {
	now := r.clock()
	by := requestinfo.UserID(ctx)
	for _, e := range entity {
		a := auditOf(e)
		a.CreatedBy = by
		a.CreatedAt = now
		a.IsDeleted = false
		a.Version = 1
	}
	return r.raw.CreateWithTx(ctx, tx, entity...)
}

func (r *auditableRepositoryImpl[T]) Update(ctx context.Context, entity *T) error {
	return r.UpdateWithTx(ctx, r.db, entity)
}

// UpdateWithTx stamps the modification columns and writes the row guarded
// by its loaded version. When no row matches, a concurrent writer won the
// race and ErrOptimisticLock is returned with the in-memory version left
// untouched so the caller can reload and retry.
func (r *auditableRepositoryImpl[T]) UpdateWithTx(ctx context.Context, tx bun.IDB, entity *T) error {
	a := auditOf(entity)
	prev := a.Version
	a.UpdatedBy = requestinfo.UserID(ctx)
	a.UpdatedAt = r.clock()
	a.Version = prev + 1

	res, err := tx.NewUpdate().Model(entity).WherePK().
		Where("version = ?", prev).Exec(ctx)
	if err != nil {
		a.Version = prev
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		a.Version = prev
		return err
	}
	if affected == 0 {
		a.Version = prev
		return ErrOptimisticLock
	}
	return nil
}

func (r *auditableRepositoryImpl[T]) Delete(ctx context.Context, id any) error {
	return r.DeleteWithTx(ctx, r.db, id)
}

// DeleteWithTx soft-deletes: the row is re-stamped and flagged rather than
// removed, so scoped reads stop returning it while history survives.
// Deleting an absent or already-deleted row is a silent no-op.
func (r *auditableRepositoryImpl[T]) DeleteWithTx(ctx context.Context, tx bun.IDB, id any) error {
	entity, err := r.GetOneWithTx(ctx, tx, id)
	if err != nil {
		return err
	}
	if entity == nil {
		return nil
	}
	auditOf(entity).IsDeleted = true
	return r.UpdateWithTx(ctx, tx, entity)
}

func (r *auditableRepositoryImpl[T]) HardDelete(ctx context.Context, id any) error {
	return r.raw.Delete(ctx, id)
}

func (r *auditableRepositoryImpl[T]) HardDeleteWithTx(ctx context.Context, tx bun.IDB, id any) error {
	return r.raw.DeleteWithTx(ctx, tx, id)
}

func (r *auditableRepositoryImpl[T]) HardDeleteRange(ctx context.Context, pred *types.QueryPredicate) (int64, error) {
	return r.raw.DeleteRange(ctx, pred)
}

// Unscoped exposes the raw repository, including soft-deleted rows.
func (r *auditableRepositoryImpl[T]) Unscoped() Repository[T] {
	return r.raw
}
