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

package bidding

import (
	"context"

	"github.com/stratumhq/stratum/repository"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ProjectBidRepository adds the bid-specific lookups the workflow needs on
// top of the generic audit-aware repository.
type ProjectBidRepository interface {
	repository.AuditableRepository[ProjectBid]

	// ActiveBid returns the provider's live bid on the project, excluding
	// canceled ones, or nil.
	ActiveBid(ctx context.Context, projectID, providerID uuid.UUID) (*ProjectBid, error)

	// PairBid returns the provider's bid on the project regardless of its
	// canceled flag, or nil. Cancellation checks need to see canceled bids
	// to report them distinctly from absent ones.
	PairBid(ctx context.Context, projectID, providerID uuid.UUID) (*ProjectBid, error)

	// BidByID returns the bid with its project, seeker, and provider graphs
	// loaded, or nil.
	BidByID(ctx context.Context, id uuid.UUID) (*ProjectBid, error)

	// RejectedBidders returns the live bids on the project from every
	// provider except the approved one, with provider accounts loaded.
	RejectedBidders(ctx context.Context, projectID, approvedProviderID uuid.UUID) ([]*ProjectBid, error)

	// ProjectCountByProviderAndStatus counts the provider's bids whose
	// project currently has the given status.
	ProjectCountByProviderAndStatus(ctx context.Context, providerID uuid.UUID, status ProjectStatus) (int, error)
}

type projectBidRepositoryImpl struct {
	repository.AuditableRepository[ProjectBid]
}

// NewProjectBidRepository returns the bid repository over the given Bun DB.
func NewProjectBidRepository(db *bun.DB) ProjectBidRepository {
	return &projectBidRepositoryImpl{
		AuditableRepository: repository.NewAuditableRepository[ProjectBid](db),
	}
}

func (r *projectBidRepositoryImpl) ActiveBid(ctx context.Context, projectID, providerID uuid.UUID) (*ProjectBid, error) {
	return r.Query("?TableAlias.project_id = ? AND ?TableAlias.provider_id = ?", projectID, providerID).
		Apply(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.is_canceled = ?", false)
		}).
		First(ctx)
}

func (r *projectBidRepositoryImpl) PairBid(ctx context.Context, projectID, providerID uuid.UUID) (*ProjectBid, error) {
	return r.Query("?TableAlias.project_id = ? AND ?TableAlias.provider_id = ?", projectID, providerID).
		First(ctx)
}

func (r *projectBidRepositoryImpl) BidByID(ctx context.Context, id uuid.UUID) (*ProjectBid, error) {
	return r.Query("?TableAlias.id = ?", id).
		Relation("Project", "Project.Seeker", "Project.Seeker.User", "Provider", "Provider.User").
		First(ctx)
}

func (r *projectBidRepositoryImpl) RejectedBidders(ctx context.Context, projectID, approvedProviderID uuid.UUID) ([]*ProjectBid, error) {
	return r.Query("?TableAlias.project_id = ? AND ?TableAlias.provider_id != ?", projectID, approvedProviderID).
		Apply(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Where("?TableAlias.is_canceled = ?", false)
		}).
		Relation("Provider", "Provider.User").
		Select(ctx)
}

func (r *projectBidRepositoryImpl) ProjectCountByProviderAndStatus(ctx context.Context, providerID uuid.UUID, status ProjectStatus) (int, error) {
	return r.Query("?TableAlias.provider_id = ?", providerID).
		Apply(func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.
				Join("JOIN projects ON projects.id = ?TableAlias.project_id").
				Where("projects.status = ?", status)
		}).
		Count(ctx)
}
