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

	"github.com/stratumhq/stratum/types"

	"github.com/uptrace/bun"
)

// QueryFilter is a deferred, composable query description: an optional
// predicate fixed at construction, plus ordering and eager-load hints added
// through the builder methods. Nothing touches the store until a terminal
// call (Select, First, Count, SelectPage) executes it. A filter is single
// use: rebuild it through Repository.Query for another execution.
type QueryFilter[T any] struct {
	repo      *baseRepositoryImpl[T]
	pred      *types.QueryPredicate
	orders    []string
	relations []string
	applies   []func(*bun.SelectQuery) *bun.SelectQuery
	consumed  bool
}

func newQueryFilter[T any](repo *baseRepositoryImpl[T], pred *types.QueryPredicate) *QueryFilter[T] {
	return &QueryFilter[T]{repo: repo, pred: pred}
}

// OrderBy registers result ordering, e.g. "created_at DESC". Without it the
// store's natural order is returned.
func (f *QueryFilter[T]) OrderBy(orders ...string) *QueryFilter[T] {
	f.orders = append(f.orders, orders...)
	return f
}

// Relation registers related paths to eager-load, e.g. "Project",
// "Project.Seeker". Repeatable.
func (f *QueryFilter[T]) Relation(paths ...string) *QueryFilter[T] {
	f.relations = append(f.relations, paths...)
	return f
}

// Apply registers a raw query transform for capabilities the builder does
// not model directly (joins, column filters on joined tables).
func (f *QueryFilter[T]) Apply(fn func(*bun.SelectQuery) *bun.SelectQuery) *QueryFilter[T] {
	if fn != nil {
		f.applies = append(f.applies, fn)
	}
	return f
}

func (f *QueryFilter[T]) consume() error {
	if f.consumed {
		return ErrFilterConsumed
	}
	f.consumed = true
	return nil
}

func (f *QueryFilter[T]) build(model any, withOrders, withRelations bool) *bun.SelectQuery {
	q := f.repo.scoped(f.repo.db.NewSelect().Model(model))
	if f.pred != nil {
		q = q.Where(f.pred.Schema, f.pred.Args...)
	}
	for _, fn := range f.applies {
		q = fn(q)
	}
	if withRelations {
		for _, rel := range f.relations {
			q = q.Relation(rel)
		}
	}
	if withOrders && len(f.orders) > 0 {
		q = q.Order(f.orders...)
	}
	return q
}

// Select executes the filter and returns the full matching sequence.
func (f *QueryFilter[T]) Select(ctx context.Context) ([]*T, error) {
	if err := f.consume(); err != nil {
		return nil, err
	}
	var entities []*T
	if err := f.build(&entities, true, true).Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

// First executes the filter and returns the first match, or (nil, nil) when
// nothing matches.
func (f *QueryFilter[T]) First(ctx context.Context) (*T, error) {
	if err := f.consume(); err != nil {
		return nil, err
	}
	var entities []*T
	if err := f.build(&entities, true, true).Limit(1).Scan(ctx); err != nil {
		return nil, err
	}
	if len(entities) == 0 {
		return nil, nil
	}
	return entities[0], nil
}

// Count executes the filter's predicate only; ordering and eager-load hints
// are ignored.
func (f *QueryFilter[T]) Count(ctx context.Context) (int, error) {
	if err := f.consume(); err != nil {
		return 0, err
	}
	return f.build((*T)(nil), false, false).Count(ctx)
}

// SelectPage executes the filter as a paged fetch and returns the total
// matching count alongside one page of results. Pages are 1-based. A zero
// page or pageSize means "no paging": the full result set is returned and
// the total equals its length. Negative values are a caller error.
func (f *QueryFilter[T]) SelectPage(ctx context.Context, page, pageSize int) (int, []*T, error) {
	if page < 0 || pageSize < 0 {
		return 0, nil, ErrInvalidPage
	}
	if err := f.consume(); err != nil {
		return 0, nil, err
	}
	var entities []*T
	if page == 0 || pageSize == 0 {
		if err := f.build(&entities, true, true).Scan(ctx); err != nil {
			return 0, nil, err
		}
		return len(entities), entities, nil
	}
	total, err := f.build((*T)(nil), false, false).Count(ctx)
	if err != nil {
		return 0, nil, err
	}
	if total == 0 {
		return 0, []*T{}, nil
	}
	q := f.build(&entities, true, true)
	if len(f.orders) == 0 {
		q = q.Order("id ASC")
	}
	if err := q.Offset((page - 1) * pageSize).Limit(pageSize).Scan(ctx); err != nil {
		return 0, nil, err
	}
	return total, entities, nil
}

// ScanColumns is the projection terminal. It is not wired to any store
// capability and fails fast instead of degrading silently.
func (f *QueryFilter[T]) ScanColumns(ctx context.Context, dest ...interface{}) error {
	return ErrUnsupported
}
