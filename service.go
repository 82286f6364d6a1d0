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

package stratum

import (
	"context"
	"errors"

	"github.com/stratumhq/stratum/repository"
	"github.com/stratumhq/stratum/types"
	"github.com/stratumhq/stratum/unitofwork"

	"github.com/uptrace/bun"
)

// ErrEntityNotFound signals an update keyed to a row that is absent or
// soft-deleted.
var ErrEntityNotFound = errors.New("stratum: entity not found")

// Service is the generic business-logic layer over an audit-aware
// repository. Reads return transfer shapes produced by the Mapper; every
// mutating method runs inside a unit of work, so batches commit atomically
// and version conflicts are retried within the configured bound.
type Service[T any, D any] interface {
	// Create persists a new entity mapped from dto and returns its stored
	// shape, audit columns included.
	Create(ctx context.Context, dto *D) (*D, error)

	// CreateAll persists the batch in one transaction.
	CreateAll(ctx context.Context, dtos []*D) ([]*D, error)

	// Get returns the entity by identifier, or nil when it is absent or
	// soft-deleted.
	Get(ctx context.Context, id any) (*D, error)

	// GetAll returns every live entity.
	GetAll(ctx context.Context) ([]*D, error)

	// GetAllPaged returns one page selected by a PageRequest.
	GetAllPaged(ctx context.Context, page *types.PageRequest) (*types.Pagination[D], error)

	// GetAllByRequest serves the externally-shaped declarative query.
	GetAllByRequest(ctx context.Context, req *types.ListRequest) (*types.Pagination[D], error)

	// Update loads the entity keyed by dto, merges the dto onto it and
	// writes it back. ErrEntityNotFound when no live row matches.
	Update(ctx context.Context, dto *D) (*D, error)

	// UpdateAll applies the batch in one transaction.
	UpdateAll(ctx context.Context, dtos []*D) ([]*D, error)

	// UpdateEntities writes already-loaded entities in one transaction,
	// skipping the load-and-merge step.
	UpdateEntities(ctx context.Context, entities []*T) error

	// Delete soft-deletes by identifier; absent rows are a no-op.
	Delete(ctx context.Context, id any) error

	// DeleteAll soft-deletes the batch in one transaction.
	DeleteAll(ctx context.Context, ids []any) error

	// HardDelete removes the row permanently.
	HardDelete(ctx context.Context, id any) error

	// HardDeleteAll removes the batch permanently in one transaction.
	HardDeleteAll(ctx context.Context, ids []any) error

	// Count returns the number of live entities.
	Count(ctx context.Context) (int, error)

	// IDs returns the identifiers of every live entity.
	IDs(ctx context.Context) ([]any, error)

	// Repository exposes the underlying repository for callers that need
	// predicates or relations beyond the generic surface.
	Repository() repository.AuditableRepository[T]
}

type baseServiceImpl[T any, D any] struct {
	db     *bun.DB
	repo   repository.AuditableRepository[T]
	mapper Mapper[T, D]
	policy unitofwork.RetryPolicy
}

// NewService returns the default Service implementation over the given
// repository and mapper.
func NewService[T any, D any](db *bun.DB, repo repository.AuditableRepository[T], mapper Mapper[T, D]) Service[T, D] {
	return &baseServiceImpl[T, D]{
		db:     db,
		repo:   repo,
		mapper: mapper,
		policy: unitofwork.DefaultRetryPolicy,
	}
}

func (s *baseServiceImpl[T, D]) run(ctx context.Context, fn func(ctx context.Context, conn bun.IDB) error) error {
	return unitofwork.NewWithPolicy(s.db, s.policy).Run(ctx, fn)
}

func (s *baseServiceImpl[T, D]) toDTOs(entities []*T) []*D {
	dtos := make([]*D, len(entities))
	for i, e := range entities {
		dtos[i] = s.mapper.ToDTO(e)
	}
	return dtos
}

func (s *baseServiceImpl[T, D]) Create(ctx context.Context, dto *D) (*D, error) {
	dtos, err := s.CreateAll(ctx, []*D{dto})
	if err != nil {
		return nil, err
	}
	return dtos[0], nil
}

func (s *baseServiceImpl[T, D]) CreateAll(ctx context.Context, dtos []*D) ([]*D, error) {
	entities := make([]*T, len(dtos))
	for i, dto := range dtos {
		entities[i] = s.mapper.ToEntity(dto)
	}
	err := s.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		return s.repo.CreateWithTx(ctx, conn, entities...)
	})
	if err != nil {
		return nil, err
	}
	return s.toDTOs(entities), nil
}

func (s *baseServiceImpl[T, D]) Get(ctx context.Context, id any) (*D, error) {
	entity, err := s.repo.GetOne(ctx, id)
	if err != nil || entity == nil {
		return nil, err
	}
	return s.mapper.ToDTO(entity), nil
}

func (s *baseServiceImpl[T, D]) GetAll(ctx context.Context) ([]*D, error) {
	entities, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return s.toDTOs(entities), nil
}

func (s *baseServiceImpl[T, D]) GetAllPaged(ctx context.Context, page *types.PageRequest) (*types.Pagination[D], error) {
	result, err := s.repo.Page(ctx, page)
	if err != nil {
		return nil, err
	}
	return s.mapPagination(result), nil
}

func (s *baseServiceImpl[T, D]) GetAllByRequest(ctx context.Context, req *types.ListRequest) (*types.Pagination[D], error) {
	result, err := s.repo.GetAllByRequest(ctx, req)
	if err != nil {
		return nil, err
	}
	return s.mapPagination(result), nil
}

func (s *baseServiceImpl[T, D]) mapPagination(src *types.Pagination[T]) *types.Pagination[D] {
	return &types.Pagination[D]{
		Page:     src.Page,
		PageSize: src.PageSize,
		Total:    src.Total,
		Items:    s.toDTOs(src.Items),
	}
}

func (s *baseServiceImpl[T, D]) Update(ctx context.Context, dto *D) (*D, error) {
	dtos, err := s.UpdateAll(ctx, []*D{dto})
	if err != nil {
		return nil, err
	}
	return dtos[0], nil
}

func (s *baseServiceImpl[T, D]) UpdateAll(ctx context.Context, dtos []*D) ([]*D, error) {
	entities := make([]*T, len(dtos))
	err := s.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		for i, dto := range dtos {
			entity, err := s.repo.GetOneWithTx(ctx, conn, s.mapper.Key(dto))
			if err != nil {
				return err
			}
			if entity == nil {
				return ErrEntityNotFound
			}
			s.mapper.Apply(dto, entity)
			if err := s.repo.UpdateWithTx(ctx, conn, entity); err != nil {
				return err
			}
			entities[i] = entity
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.toDTOs(entities), nil
}

// UpdateEntities serializes the writes on one transaction: a sql.Tx is not
// safe for concurrent statements, so fan-out happens before this call, not
// inside it.
func (s *baseServiceImpl[T, D]) UpdateEntities(ctx context.Context, entities []*T) error {
	return s.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		for _, entity := range entities {
			if err := s.repo.UpdateWithTx(ctx, conn, entity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *baseServiceImpl[T, D]) Delete(ctx context.Context, id any) error {
	return s.DeleteAll(ctx, []any{id})
}

func (s *baseServiceImpl[T, D]) DeleteAll(ctx context.Context, ids []any) error {
	return s.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		for _, id := range ids {
			if err := s.repo.DeleteWithTx(ctx, conn, id); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *baseServiceImpl[T, D]) HardDelete(ctx context.Context, id any) error {
	return s.HardDeleteAll(ctx, []any{id})
}

func (s *baseServiceImpl[T, D]) HardDeleteAll(ctx context.Context, ids []any) error {
	return s.run(ctx, func(ctx context.Context, conn bun.IDB) error {
		for _, id := range ids {
			if err := s.repo.HardDeleteWithTx(ctx, conn, id); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *baseServiceImpl[T, D]) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func (s *baseServiceImpl[T, D]) IDs(ctx context.Context) ([]any, error) {
	dtos, err := s.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	ids := make([]any, len(dtos))
	for i, dto := range dtos {
		ids[i] = s.mapper.Key(dto)
	}
	return ids, nil
}

func (s *baseServiceImpl[T, D]) Repository() repository.AuditableRepository[T] {
	return s.repo
}
