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
	"errors"

	"github.com/stratumhq/stratum/types"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

var (
	// ErrInvalidPage signals a negative page or page size.
	ErrInvalidPage = errors.New("repository: page and page size must not be negative")
	// ErrFilterConsumed signals a terminal call on an already-executed filter.
	ErrFilterConsumed = errors.New("repository: query filter already executed, rebuild it")
	// ErrUnsupported signals a query capability that is not wired.
	ErrUnsupported = errors.New("repository: operation not supported")
	// ErrUnknownFilterOp signals an unrecognized declarative filter operator.
	ErrUnknownFilterOp = errors.New("repository: unknown filter operator")
	// ErrOptimisticLock signals that the row changed concurrently: the
	// entity's version no longer matches the stored one.
	ErrOptimisticLock = errors.New("repository: stale entity version")
)

// CrudRepository defines basic CRUD operations for a generic entity type.
// Absence of a row is reported as (nil, nil), never as an error.
type CrudRepository[T any] interface {
	GetOne(ctx context.Context, id any) (*T, error)

	GetAll(ctx context.Context) ([]*T, error)

	List(ctx context.Context, pred *types.QueryPredicate) ([]*T, error)

	Count(ctx context.Context) (int, error)

	Create(ctx context.Context, entity ...*T) error

	Update(ctx context.Context, entity *T) error

	Delete(ctx context.Context, id any) error

	DeleteRange(ctx context.Context, pred *types.QueryPredicate) (int64, error)
}

// TransactionRepository defines the same operations executed against an
// explicit connection, usually a transaction owned by a unit of work.
type TransactionRepository[T any] interface {
	GetOneWithTx(ctx context.Context, tx bun.IDB, id any) (*T, error)
	CreateWithTx(ctx context.Context, tx bun.IDB, entity ...*T) error
	UpdateWithTx(ctx context.Context, tx bun.IDB, entity *T) error
	DeleteWithTx(ctx context.Context, tx bun.IDB, id any) error
}

// PageQueryRepository defines deferred and declarative query capabilities.
type PageQueryRepository[T any] interface {
	// Query seeds a deferred QueryFilter with an optional predicate over the
	// repository's default list scope.
	Query(schema string, args ...interface{}) *QueryFilter[T]

	// Page returns one page of entities; ordering falls back to the id
	// sequence when the request carries none.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)

	// GetAllByRequest executes an externally-shaped declarative request.
	GetAllByRequest(ctx context.Context, req *types.ListRequest) (*types.Pagination[T], error)
}

// Repository combines CRUD, querying, and transactional operations and
// exposes Bun query builders for advanced use cases.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	TransactionRepository[T]
	Dialect() schema.Dialect
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}

// AuditableRepository decorates Repository for entities embedding
// types.Audit: reads exclude soft-deleted rows, writes stamp audit fields,
// Delete becomes a soft delete, and updates are guarded by the entity
// version. The plain hard-delete behavior stays reachable only through the
// HardDelete family and Unscoped.
type AuditableRepository[T any] interface {
	Repository[T]

	HardDelete(ctx context.Context, id any) error
	HardDeleteWithTx(ctx context.Context, tx bun.IDB, id any) error
	HardDeleteRange(ctx context.Context, pred *types.QueryPredicate) (int64, error)

	// Unscoped returns the underlying repository without the soft-delete
	// scope; soft-deleted rows are visible through it until hard-deleted.
	Unscoped() Repository[T]
}
