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
	"database/sql"
	"errors"
	"fmt"

	"github.com/stratumhq/stratum/types"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

type baseRepositoryImpl[T any] struct {
	db *bun.DB

	// scope narrows every default read query; nil means no narrowing.
	// The auditable decorator installs the soft-delete filter here.
	scope func(*bun.SelectQuery) *bun.SelectQuery
}

// NewRepository returns a generic repository backed by the provided Bun DB.
func NewRepository[T any](db *bun.DB) Repository[T] {
	return &baseRepositoryImpl[T]{db: db}
}

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.db.Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *baseRepositoryImpl[T]) NewInsert() *bun.InsertQuery { return r.db.NewInsert() }

func (r *baseRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery { return r.db.NewUpdate() }

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete() }

func (r *baseRepositoryImpl[T]) ValsToSlice(entity ...*T) []*T {
	entities := make([]*T, len(entity))
	copy(entities, entity)
	return entities
}

func (r *baseRepositoryImpl[T]) scoped(q *bun.SelectQuery) *bun.SelectQuery {
	if r.scope != nil {
		return r.scope(q)
	}
	return q
}

func (r *baseRepositoryImpl[T]) GetOne(ctx context.Context, id any) (*T, error) {
	return r.GetOneWithTx(ctx, r.db, id)
}

func (r *baseRepositoryImpl[T]) GetOneWithTx(ctx context.Context, tx bun.IDB, id any) (*T, error) {
	var entity T
	err := r.scoped(tx.NewSelect().Model(&entity)).Where("id = ?", id).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context) ([]*T, error) {
	var entities []*T
	err := r.scoped(r.db.NewSelect().Model(&entities)).Scan(ctx)
	return entities, err
}

func (r *baseRepositoryImpl[T]) List(ctx context.Context, pred *types.QueryPredicate) ([]*T, error) {
	var entities []*T
	query := r.scoped(r.db.NewSelect().Model(&entities))
	if pred != nil {
		query = query.Where(pred.Schema, pred.Args...)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Count(ctx context.Context) (int, error) {
	return r.scoped(r.db.NewSelect().Model((*T)(nil))).Count(ctx)
}

func (r *baseRepositoryImpl[T]) Query(schema string, args ...interface{}) *QueryFilter[T] {
	var pred *types.QueryPredicate
	if schema != "" {
		pred = types.NewQueryPredicate(schema, args...)
	}
	return newQueryFilter(r, pred)
}

func (r *baseRepositoryImpl[T]) Page(ctx context.Context, pageRequest *types.PageRequest) (*types.Pagination[T], error) {
	var entities []*T
	query := r.scoped(r.db.NewSelect().Model(&entities))
	if f := pageRequest.GetFilter(); f != nil {
		query = query.Where(f.Schema, f.Args...)
	}
	pagination := types.NewDefaultPagination[T](pageRequest.GetPage(), pageRequest.GetPageSize())
	total, err := query.Count(ctx)
	if err != nil || total == 0 {
		return pagination, err
	}
	orders := pageRequest.GetOrders()
	if len(orders) == 0 {
		// deterministic window when the caller does not care about order
		orders = []string{"id ASC"}
	}
	err = query.
		Offset(pageRequest.GetOffset()).
		Limit(pageRequest.GetPageSize()).
		Order(orders...).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func (r *baseRepositoryImpl[T]) GetAllByRequest(ctx context.Context, req *types.ListRequest) (*types.Pagination[T], error) {
	if req == nil {
		req = &types.ListRequest{}
	}
	if req.Page < 0 || req.PageSize < 0 {
		return nil, ErrInvalidPage
	}
	var entities []*T
	query := r.scoped(r.db.NewSelect().Model(&entities))
	query, err := applyListFilters(query, req.Filters)
	if err != nil {
		return nil, err
	}
	for _, s := range req.Sort {
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		query = query.OrderExpr("? ?", bun.Ident(s.Field), bun.Safe(dir))
	}
	if !req.Paged() {
		if err := query.Scan(ctx); err != nil {
			return nil, err
		}
		return &types.Pagination[T]{Page: 1, PageSize: len(entities), Total: len(entities), Items: entities}, nil
	}
	pagination := types.NewDefaultPagination[T](req.Page, req.PageSize)
	total, err := query.Count(ctx)
	if err != nil || total == 0 {
		return pagination, err
	}
	if len(req.Sort) == 0 {
		query = query.Order("id ASC")
	}
	err = query.
		Offset((req.Page - 1) * req.PageSize).
		Limit(req.PageSize).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func applyListFilters(query *bun.SelectQuery, filters []types.ListFilter) (*bun.SelectQuery, error) {
	for _, f := range filters {
		col := bun.Ident(f.Field)
		switch f.Op {
		case "", "eq":
			query = query.Where("? = ?", col, f.Value)
		case "ne":
			query = query.Where("? <> ?", col, f.Value)
		case "lt":
			query = query.Where("? < ?", col, f.Value)
		case "lte":
			query = query.Where("? <= ?", col, f.Value)
		case "gt":
			query = query.Where("? > ?", col, f.Value)
		case "gte":
			query = query.Where("? >= ?", col, f.Value)
		case "like":
			query = query.Where("? LIKE ?", col, f.Value)
		case "in":
			query = query.Where("? IN (?)", col, bun.In(f.Value))
		default:
			return nil, fmt.Errorf("%w: %q", ErrUnknownFilterOp, f.Op)
		}
	}
	return query, nil
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity ...*T) error {
	return r.CreateWithTx(ctx, r.db, entity...)
}

func (r *baseRepositoryImpl[T]) CreateWithTx(ctx context.Context, tx bun.IDB, entity ...*T) error {
	entities := r.ValsToSlice(entity...)
	_, err := tx.NewInsert().Model(&entities).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, entity *T) error {
	return r.UpdateWithTx(ctx, r.db, entity)
}

func (r *baseRepositoryImpl[T]) UpdateWithTx(ctx context.Context, tx bun.IDB, entity *T) error {
	_, err := tx.NewUpdate().Model(entity).WherePK().Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, id any) error {
	return r.DeleteWithTx(ctx, r.db, id)
}

func (r *baseRepositoryImpl[T]) DeleteWithTx(ctx context.Context, tx bun.IDB, id any) error {
	var entity T
	_, err := tx.NewDelete().Model(&entity).Where("id = ?", id).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) DeleteRange(ctx context.Context, pred *types.QueryPredicate) (int64, error) {
	if pred == nil || pred.Schema == "" {
		return 0, fmt.Errorf("%w: delete range requires a predicate", ErrUnsupported)
	}
	var entity T
	res, err := r.db.NewDelete().Model(&entity).Where(pred.Schema, pred.Args...).Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
