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
	"errors"
	"time"

	"github.com/stratumhq/stratum"
	"github.com/stratumhq/stratum/appconfig"
	"github.com/stratumhq/stratum/repository"
	"github.com/stratumhq/stratum/requestinfo"
	"github.com/stratumhq/stratum/unitofwork"
	"github.com/stratumhq/stratum/utils"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// BidModel is the transfer shape for a project bid.
type BidModel struct {
	ID         uuid.UUID `json:"id"`
	ProjectID  uuid.UUID `json:"project_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	BidAmount  float64   `json:"bid_amount"`
	Message    string    `json:"message"`
	Score      float64   `json:"score"`
	GeoScore   float64   `json:"geo_score"`
	IsCanceled bool      `json:"is_canceled"`
}

// BidView is the read model for a single bid, with the payment processing
// fee already applied. Both amounts are truncated to two decimal places,
// never rounded, so the displayed total never exceeds what is charged.
type BidView struct {
	ID             uuid.UUID `json:"id"`
	ProjectID      uuid.UUID `json:"project_id"`
	ProjectTitle   string    `json:"project_title"`
	ProviderID     uuid.UUID `json:"provider_id"`
	BidAmount      float64   `json:"bid_amount"`
	AmountToBePaid float64   `json:"amount_to_be_paid"`
	Score          float64   `json:"score"`
	GeoScore       float64   `json:"geo_score"`
	IsCanceled     bool      `json:"is_canceled"`
}

// BidRequest is the input for placing a bid.
type BidRequest struct {
	ProjectID  uuid.UUID `json:"project_id"`
	ProviderID uuid.UUID `json:"provider_id"`
	Amount     float64   `json:"amount"`
	Message    string    `json:"message"`
}

type bidMapper struct{}

func (bidMapper) ToEntity(dto *BidModel) *ProjectBid {
	id := dto.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &ProjectBid{
		ID:         id,
		ProjectID:  dto.ProjectID,
		ProviderID: dto.ProviderID,
		BidAmount:  dto.BidAmount,
		Message:    dto.Message,
		Score:      dto.Score,
		GeoScore:   dto.GeoScore,
		IsCanceled: dto.IsCanceled,
	}
}

func (bidMapper) ToDTO(entity *ProjectBid) *BidModel {
	return &BidModel{
		ID:         entity.ID,
		ProjectID:  entity.ProjectID,
		ProviderID: entity.ProviderID,
		BidAmount:  entity.BidAmount,
		Message:    entity.Message,
		Score:      entity.Score,
		GeoScore:   entity.GeoScore,
		IsCanceled: entity.IsCanceled,
	}
}

func (bidMapper) Apply(dto *BidModel, entity *ProjectBid) {
	entity.BidAmount = dto.BidAmount
	entity.Message = dto.Message
	entity.IsCanceled = dto.IsCanceled
}

func (bidMapper) Key(dto *BidModel) any { return dto.ID }

// ProjectBidService runs the bidding workflow: placing, approving, and
// canceling bids, plus the fee-adjusted read model.
type ProjectBidService interface {
	// BidOnProject validates the request in order and places the bid. Each
	// failed precondition returns its own sentinel error. The project's
	// seeker is notified best effort.
	BidOnProject(ctx context.Context, req *BidRequest) (*BidModel, error)

	// ApproveBid accepts a bid on behalf of the seeker. PaymentMethodOther
	// parks the project in pending_payment without notifications; any other
	// method starts the work and notifies the approved provider and every
	// rejected bidder.
	ApproveBid(ctx context.Context, bidID uuid.UUID, payment PaymentMethod) error

	// CancelBid withdraws the provider's bid on the project. A provider may
	// only cancel their own bid; a seeker-initiated cancellation notifies
	// the provider of the rejection.
	CancelBid(ctx context.Context, projectID, providerID uuid.UUID) error

	// GetBidByID returns the fee-adjusted view of a bid, or nil when it
	// does not exist.
	GetBidByID(ctx context.Context, bidID uuid.UUID) (*BidView, error)
}

type projectBidServiceImpl struct {
	db        *bun.DB
	bids      ProjectBidRepository
	projects  repository.AuditableRepository[Project]
	providers repository.AuditableRepository[Provider]
	seekers   repository.AuditableRepository[Seeker]
	users     repository.AuditableRepository[User]
	crud      stratum.Service[ProjectBid, BidModel]
	settings  appconfig.Service
	notifier  Notifier
	log       *utils.Logger
}

// NewProjectBidService wires the bidding workflow over the given database.
// A nil notifier falls back to the log-backed one.
func NewProjectBidService(db *bun.DB, settings appconfig.Service, notifier Notifier) ProjectBidService {
	if notifier == nil {
		notifier = NewLogNotifier()
	}
	bids := NewProjectBidRepository(db)
	return &projectBidServiceImpl{
		db:        db,
		bids:      bids,
		projects:  repository.NewAuditableRepository[Project](db),
		providers: repository.NewAuditableRepository[Provider](db),
		seekers:   repository.NewAuditableRepository[Seeker](db),
		users:     repository.NewAuditableRepository[User](db),
		crud:      stratum.NewService[ProjectBid, BidModel](db, bids, bidMapper{}),
		settings:  settings,
		notifier:  notifier,
		log:       utils.NewLogger("BIDDING"),
	}
}

func (s *projectBidServiceImpl) BidOnProject(ctx context.Context, req *BidRequest) (*BidModel, error) {
	if err := s.checkUserApproved(ctx); err != nil {
		return nil, err
	}

	existing, err := s.bids.ActiveBid(ctx, req.ProjectID, req.ProviderID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrBidAlreadyExists
	}

	project, err := s.projects.GetOne(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, ErrProjectNotFound
	}
	if project.Status != ProjectStatusOpen {
		return nil, ErrProjectNotOpen
	}
	if !withinBudget(project, req.Amount) {
		return nil, ErrAmountOutOfRange
	}

	provider, err := s.providers.GetOne(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		return nil, ErrProviderNotFound
	}

	score, geoScore, err := s.scoreBid(ctx, project, provider)
	if err != nil {
		return nil, err
	}

	bid, err := s.crud.Create(ctx, &BidModel{
		ProjectID:  req.ProjectID,
		ProviderID: req.ProviderID,
		BidAmount:  req.Amount,
		Message:    req.Message,
		Score:      score,
		GeoScore:   geoScore,
	})
	if err != nil {
		return nil, err
	}

	s.notifySeeker(ctx, project, req.Amount)
	return bid, nil
}

func (s *projectBidServiceImpl) ApproveBid(ctx context.Context, bidID uuid.UUID, payment PaymentMethod) error {
	bid, err := s.bids.BidByID(ctx, bidID)
	if err != nil {
		return err
	}
	if bid == nil {
		return ErrBidNotFound
	}
	if bid.IsCanceled {
		return ErrBidCanceled
	}

	project := bid.Project
	if project == nil {
		return ErrProjectNotFound
	}
	if project.Status != ProjectStatusOpen {
		return ErrProjectNotOpen
	}
	if !withinBudget(project, bid.BidAmount) {
		return ErrAmountOutOfRange
	}
	if bid.Provider == nil {
		return ErrProviderNotFound
	}

	project.ProjectBidID = &bid.ID
	if payment == PaymentMethodOther {
		project.Status = ProjectStatusPendingPayment
	} else {
		project.Status = ProjectStatusInProgress
		now := time.Now()
		project.StartDate = &now
		if project.EndType == ProjectEndTypeWorkingDays {
			end := now.AddDate(0, 0, project.EndDays)
			project.EndDate = &end
		}
	}

	err = unitofwork.New(s.db).Run(ctx, func(ctx context.Context, conn bun.IDB) error {
		return s.projects.UpdateWithTx(ctx, conn, project)
	})
	if err != nil {
		return err
	}

	if payment != PaymentMethodOther {
		s.notifyApproval(ctx, bid, project)
	}
	return nil
}

func (s *projectBidServiceImpl) CancelBid(ctx context.Context, projectID, providerID uuid.UUID) error {
	info, _ := requestinfo.FromContext(ctx)
	if info.Role == requestinfo.RoleProvider && info.ProviderID != providerID {
		return ErrNotBidOwner
	}

	bid, err := s.bids.PairBid(ctx, projectID, providerID)
	if err != nil {
		return err
	}
	if bid == nil {
		return ErrBidNotFound
	}
	if bid.IsCanceled {
		return ErrBidCanceled
	}

	project, err := s.projects.GetOne(ctx, projectID)
	if err != nil {
		return err
	}
	if project == nil {
		return ErrProjectNotFound
	}
	if project.Status != ProjectStatusOpen {
		return ErrProjectNotOpen
	}

	bid.IsCanceled = true
	err = unitofwork.New(s.db).Run(ctx, func(ctx context.Context, conn bun.IDB) error {
		return s.bids.UpdateWithTx(ctx, conn, bid)
	})
	if err != nil {
		return err
	}

	if info.Role == requestinfo.RoleSeeker {
		s.notifyRejection(ctx, project, providerID)
	}
	return nil
}

func (s *projectBidServiceImpl) GetBidByID(ctx context.Context, bidID uuid.UUID) (*BidView, error) {
	bid, err := s.bids.BidByID(ctx, bidID)
	if err != nil || bid == nil {
		return nil, err
	}

	fee, err := s.settings.Float(ctx, appconfig.PaymentProcessingFee)
	if err != nil {
		if !errors.Is(err, appconfig.ErrSettingNotFound) {
			return nil, err
		}
		fee = 0
	}

	view := &BidView{
		ID:             bid.ID,
		ProjectID:      bid.ProjectID,
		ProviderID:     bid.ProviderID,
		BidAmount:      utils.TruncateToPrecision(bid.BidAmount, 2),
		AmountToBePaid: utils.TruncateToPrecision(bid.BidAmount+(bid.BidAmount/100)*fee, 2),
		Score:          bid.Score,
		GeoScore:       bid.GeoScore,
		IsCanceled:     bid.IsCanceled,
	}
	if bid.Project != nil {
		view.ProjectTitle = bid.Project.Title
	}
	return view, nil
}

func (s *projectBidServiceImpl) checkUserApproved(ctx context.Context) error {
	userID, err := uuid.Parse(requestinfo.UserID(ctx))
	if err != nil {
		return ErrUserNotApproved
	}
	user, err := s.users.GetOne(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil || user.Status != UserStatusApproved {
		return ErrUserNotApproved
	}
	return nil
}

// locale prefers the recipient's stored language and falls back to the
// caller's request locale when the account carries none.
func locale(ctx context.Context, recipient string) string {
	if recipient != "" {
		return recipient
	}
	info, _ := requestinfo.FromContext(ctx)
	return info.Language
}

// withinBudget range-checks the amount only when both bounds are declared.
// A single bound is treated as open-ended.
func withinBudget(project *Project, amount float64) bool {
	if project.BudgetMin == nil || project.BudgetMax == nil {
		return true
	}
	return amount >= *project.BudgetMin && amount <= *project.BudgetMax
}

func (s *projectBidServiceImpl) scoreBid(ctx context.Context, project *Project, provider *Provider) (float64, float64, error) {
	newProviderPct, err := s.settings.Float(ctx, appconfig.PercentageForNew)
	if err != nil {
		if !errors.Is(err, appconfig.ErrSettingNotFound) {
			return 0, 0, err
		}
		newProviderPct = 100
	}

	completed, err := s.bids.ProjectCountByProviderAndStatus(ctx, provider.ID, ProjectStatusCompleted)
	if err != nil {
		return 0, 0, err
	}

	score := EligibilityScore(project.RequiredSkills, provider.Skills, completed, newProviderPct)
	geoScore := GeoScore(provider.Latitude, provider.Longitude, project.Latitude, project.Longitude)
	return score, geoScore, nil
}

func (s *projectBidServiceImpl) notifySeeker(ctx context.Context, project *Project, amount float64) {
	seeker, err := s.seekerWithUser(ctx, project.SeekerID)
	if err != nil || seeker == nil || seeker.User == nil {
		s.log.Warnf("skipping bid-placed notification for project %s: seeker account unavailable", project.ID)
		return
	}
	err = s.notifier.OnBidPlaced(ctx, Notification{
		Email:        seeker.User.Email,
		Language:     locale(ctx, seeker.User.Language),
		ProjectTitle: project.Title,
		Amount:       amount,
	})
	if err != nil {
		s.log.Warnf("bid-placed notification failed for project %s: %v", project.ID, err)
	}
}

func (s *projectBidServiceImpl) notifyApproval(ctx context.Context, bid *ProjectBid, project *Project) {
	if bid.Provider != nil && bid.Provider.User != nil {
		err := s.notifier.OnBidApproved(ctx, Notification{
			Email:        bid.Provider.User.Email,
			Language:     locale(ctx, bid.Provider.User.Language),
			ProjectTitle: project.Title,
			Amount:       bid.BidAmount,
		})
		if err != nil {
			s.log.Warnf("bid-approved notification failed for bid %s: %v", bid.ID, err)
		}
	}

	rejected, err := s.bids.RejectedBidders(ctx, project.ID, bid.ProviderID)
	if err != nil {
		s.log.Warnf("skipping rejection notifications for project %s: %v", project.ID, err)
		return
	}
	for _, loser := range rejected {
		if loser.Provider == nil || loser.Provider.User == nil {
			continue
		}
		err := s.notifier.OnBidRejected(ctx, Notification{
			Email:        loser.Provider.User.Email,
			Language:     locale(ctx, loser.Provider.User.Language),
			ProjectTitle: project.Title,
		})
		if err != nil {
			s.log.Warnf("bid-rejected notification failed for bid %s: %v", loser.ID, err)
		}
	}
}

func (s *projectBidServiceImpl) notifyRejection(ctx context.Context, project *Project, providerID uuid.UUID) {
	provider, err := s.providers.Query("?TableAlias.id = ?", providerID).Relation("User").First(ctx)
	if err != nil || provider == nil || provider.User == nil {
		s.log.Warnf("skipping rejection notification for project %s: provider account unavailable", project.ID)
		return
	}
	err = s.notifier.OnBidRejected(ctx, Notification{
		Email:        provider.User.Email,
		Language:     locale(ctx, provider.User.Language),
		ProjectTitle: project.Title,
	})
	if err != nil {
		s.log.Warnf("bid-rejected notification failed for project %s: %v", project.ID, err)
	}
}

func (s *projectBidServiceImpl) seekerWithUser(ctx context.Context, seekerID uuid.UUID) (*Seeker, error) {
	return s.seekers.Query("?TableAlias.id = ?", seekerID).Relation("User").First(ctx)
}
