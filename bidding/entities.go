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
	"time"

	"github.com/stratumhq/stratum/database"
	"github.com/stratumhq/stratum/types"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is a marketplace account. Seekers and providers both hang off a user
// row, which carries the approval state and notification locale.
type User struct {
	bun.BaseModel `bun:"table:users,alias:users"`

	ID uuid.UUID `bun:"id,pk,type:uuid"`
	types.Audit

	Email    string     `bun:"email,notnull"`
	FullName string     `bun:"full_name"`
	Status   UserStatus `bun:"status"`
	Language string     `bun:"language"`
}

// Seeker posts projects and approves bids.
type Seeker struct {
	bun.BaseModel `bun:"table:seekers,alias:seekers"`

	ID uuid.UUID `bun:"id,pk,type:uuid"`
	types.Audit

	UserID uuid.UUID `bun:"user_id,type:uuid,notnull"`
	User   *User     `bun:"rel:belongs-to,join:user_id=id"`
}

// Provider bids on projects. Skills feed the eligibility score and the
// coordinates feed the geo score.
type Provider struct {
	bun.BaseModel `bun:"table:providers,alias:providers"`

	ID uuid.UUID `bun:"id,pk,type:uuid"`
	types.Audit

	UserID    uuid.UUID         `bun:"user_id,type:uuid,notnull"`
	User      *User             `bun:"rel:belongs-to,join:user_id=id"`
	Skills    types.JSONStrings `bun:"skills"`
	Latitude  *float64          `bun:"latitude"`
	Longitude *float64          `bun:"longitude"`
}

// Project is a seeker's posted piece of work. BudgetMin and BudgetMax are
// both optional; a bid is range-checked only when both bounds are declared,
// a single bound is treated as open-ended. ProjectBidID links the approved
// bid once one is accepted.
type Project struct {
	bun.BaseModel `bun:"table:projects,alias:projects"`

	ID uuid.UUID `bun:"id,pk,type:uuid"`
	types.Audit

	SeekerID uuid.UUID `bun:"seeker_id,type:uuid,notnull"`
	Seeker   *Seeker   `bun:"rel:belongs-to,join:seeker_id=id"`

	Title          string            `bun:"title,notnull"`
	Status         ProjectStatus     `bun:"status"`
	BudgetMin      *float64          `bun:"budget_min"`
	BudgetMax      *float64          `bun:"budget_max"`
	RequiredSkills types.JSONStrings `bun:"required_skills"`
	Latitude       *float64          `bun:"latitude"`
	Longitude      *float64          `bun:"longitude"`

	EndType   ProjectEndType `bun:"end_type"`
	EndDays   int            `bun:"end_days"`
	StartDate *time.Time     `bun:"start_date"`
	EndDate   *time.Time     `bun:"end_date"`

	ProjectBidID *uuid.UUID `bun:"project_bid_id,type:uuid"`
}

// ProjectBid is one provider's offer on a project. Score and GeoScore are
// computed at placement time; IsCanceled withdraws the bid without deleting
// its history.
type ProjectBid struct {
	bun.BaseModel `bun:"table:project_bids,alias:project_bids"`

	ID uuid.UUID `bun:"id,pk,type:uuid"`
	types.Audit

	ProjectID uuid.UUID `bun:"project_id,type:uuid,notnull"`
	Project   *Project  `bun:"rel:belongs-to,join:project_id=id"`

	ProviderID uuid.UUID `bun:"provider_id,type:uuid,notnull"`
	Provider   *Provider `bun:"rel:belongs-to,join:provider_id=id"`

	BidAmount  float64 `bun:"bid_amount"`
	Message    string  `bun:"message"`
	Score      float64 `bun:"score"`
	GeoScore   float64 `bun:"geo_score"`
	IsCanceled bool    `bun:"is_canceled"`
}

func init() {
	database.RegisterModel(database.NewModelAdapter((*User)(nil), 1))
	database.RegisterModel(database.NewModelAdapter((*Seeker)(nil), 2))
	database.RegisterModel(database.NewModelAdapter((*Provider)(nil), 2))
	database.RegisterModel(database.NewModelAdapter((*Project)(nil), 3))
	database.RegisterModel(database.NewModelAdapter((*ProjectBid)(nil), 4))
}
