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
	"database/sql"
	"testing"

	"github.com/stratumhq/stratum/appconfig"
	"github.com/stratumhq/stratum/repository"
	"github.com/stratumhq/stratum/requestinfo"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type capturingNotifier struct {
	placed   []Notification
	approved []Notification
	rejected []Notification
}

func (n *capturingNotifier) OnBidPlaced(ctx context.Context, msg Notification) error {
	n.placed = append(n.placed, msg)
	return nil
}

func (n *capturingNotifier) OnBidApproved(ctx context.Context, msg Notification) error {
	n.approved = append(n.approved, msg)
	return nil
}

func (n *capturingNotifier) OnBidRejected(ctx context.Context, msg Notification) error {
	n.rejected = append(n.rejected, msg)
	return nil
}

type bidEnv struct {
	db       *bun.DB
	svc      ProjectBidService
	settings appconfig.Service
	notifier *capturingNotifier

	seekerUser   *User
	providerUser *User
	seeker       *Seeker
	provider     *Provider
	project      *Project
}

func floatPtr(v float64) *float64 { return &v }

func newBidEnv(t *testing.T) *bidEnv {
	t.Helper()
	sqlDB, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	db := bun.NewDB(sqlDB, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.ResetModel(context.Background(),
		(*User)(nil), (*Seeker)(nil), (*Provider)(nil),
		(*Project)(nil), (*ProjectBid)(nil), (*appconfig.Setting)(nil)))

	notifier := &capturingNotifier{}
	settings := appconfig.NewService(db)
	env := &bidEnv{
		db:       db,
		svc:      NewProjectBidService(db, settings, notifier),
		settings: settings,
		notifier: notifier,
	}
	env.seed(t)
	return env
}

func (e *bidEnv) seed(t *testing.T) {
	t.Helper()
	ctx := requestinfo.NewContext(context.Background(), requestinfo.Info{
		UserID: "seed",
		Role:   requestinfo.RoleAdmin,
	})

	e.seekerUser = &User{
		ID:       uuid.New(),
		Email:    "seeker@example.com",
		FullName: "Sam Seeker",
		Status:   UserStatusApproved,
		Language: "en",
	}
	e.providerUser = &User{
		ID:       uuid.New(),
		Email:    "provider@example.com",
		FullName: "Pat Provider",
		Status:   UserStatusApproved,
		Language: "en",
	}
	users := repository.NewAuditableRepository[User](e.db)
	require.NoError(t, users.Create(ctx, e.seekerUser, e.providerUser))

	e.seeker = &Seeker{ID: uuid.New(), UserID: e.seekerUser.ID}
	require.NoError(t, repository.NewAuditableRepository[Seeker](e.db).Create(ctx, e.seeker))

	e.provider = &Provider{
		ID:        uuid.New(),
		UserID:    e.providerUser.ID,
		Skills:    []string{"go", "sql"},
		Latitude:  floatPtr(10.0),
		Longitude: floatPtr(10.0),
	}
	require.NoError(t, repository.NewAuditableRepository[Provider](e.db).Create(ctx, e.provider))

	e.project = &Project{
		ID:             uuid.New(),
		SeekerID:       e.seeker.ID,
		Title:          "Build the storefront API",
		Status:         ProjectStatusOpen,
		BudgetMin:      floatPtr(100),
		BudgetMax:      floatPtr(1000),
		RequiredSkills: []string{"go", "sql"},
		Latitude:       floatPtr(10.0),
		Longitude:      floatPtr(10.0),
		EndType:        ProjectEndTypeWorkingDays,
		EndDays:        10,
	}
	require.NoError(t, repository.NewAuditableRepository[Project](e.db).Create(ctx, e.project))
}

func (e *bidEnv) providerCtx() context.Context {
	return requestinfo.NewContext(context.Background(), requestinfo.Info{
		UserID:     e.providerUser.ID.String(),
		Role:       requestinfo.RoleProvider,
		ProviderID: e.provider.ID,
		Language:   "en",
	})
}

func (e *bidEnv) seekerCtx() context.Context {
	return requestinfo.NewContext(context.Background(), requestinfo.Info{
		UserID:   e.seekerUser.ID.String(),
		Role:     requestinfo.RoleSeeker,
		SeekerID: e.seeker.ID,
		Language: "en",
	})
}

func (e *bidEnv) setSetting(t *testing.T, name, value string) {
	t.Helper()
	ctx := requestinfo.NewContext(context.Background(), requestinfo.Info{UserID: "seed"})
	_, err := e.settings.Create(ctx, &appconfig.SettingModel{Name: name, Value: value, Kind: "float"})
	require.NoError(t, err)
}

// addProvider seeds another approved provider for multi-bidder scenarios.
func (e *bidEnv) addProvider(t *testing.T, email string) (*Provider, context.Context) {
	t.Helper()
	ctx := requestinfo.NewContext(context.Background(), requestinfo.Info{UserID: "seed"})

	user := &User{ID: uuid.New(), Email: email, Status: UserStatusApproved, Language: "en"}
	require.NoError(t, repository.NewAuditableRepository[User](e.db).Create(ctx, user))

	provider := &Provider{
		ID:     uuid.New(),
		UserID: user.ID,
		Skills: []string{"go"},
	}
	require.NoError(t, repository.NewAuditableRepository[Provider](e.db).Create(ctx, provider))

	return provider, requestinfo.NewContext(context.Background(), requestinfo.Info{
		UserID:     user.ID.String(),
		Role:       requestinfo.RoleProvider,
		ProviderID: provider.ID,
	})
}

func TestBidOnProjectHappyPath(t *testing.T) {
	env := newBidEnv(t)
	env.setSetting(t, appconfig.PercentageForNew, "80")

	bid, err := env.svc.BidOnProject(env.providerCtx(), &BidRequest{
		ProjectID:  env.project.ID,
		ProviderID: env.provider.ID,
		Amount:     500,
		Message:    "ready to start",
	})
	require.NoError(t, err)
	require.NotNil(t, bid)
	assert.NotEqual(t, uuid.Nil, bid.ID)
	assert.InDelta(t, 80.0, bid.Score, 0.001)
	assert.InDelta(t, 100.0, bid.GeoScore, 0.001)

	require.Len(t, env.notifier.placed, 1)
	assert.Equal(t, "seeker@example.com", env.notifier.placed[0].Email)
	assert.Equal(t, env.project.Title, env.notifier.placed[0].ProjectTitle)
	assert.InDelta(t, 500.0, env.notifier.placed[0].Amount, 0.001)
}

func TestBidOnProjectUserNotApproved(t *testing.T) {
	env := newBidEnv(t)

	// unauthenticated caller
	_, err := env.svc.BidOnProject(context.Background(), &BidRequest{
		ProjectID:  env.project.ID,
		ProviderID: env.provider.ID,
		Amount:     500,
	})
	assert.ErrorIs(t, err, ErrUserNotApproved)

	// pending account
	ctx := requestinfo.NewContext(context.Background(), requestinfo.Info{UserID: "seed"})
	pending := &User{ID: uuid.New(), Email: "pending@example.com", Status: UserStatusPending}
	require.NoError(t, repository.NewAuditableRepository[User](env.db).Create(ctx, pending))

	pendingCtx := requestinfo.NewContext(context.Background(), requestinfo.Info{
		UserID: pending.ID.String(),
		Role:   requestinfo.RoleProvider,
	})
	_, err = env.svc.BidOnProject(pendingCtx, &BidRequest{
		ProjectID:  env.project.ID,
		ProviderID: env.provider.ID,
		Amount:     500,
	})
	assert.ErrorIs(t, err, ErrUserNotApproved)
}

func TestBidOnProjectDuplicate(t *testing.T) {
	env := newBidEnv(t)
	req := &BidRequest{ProjectID: env.project.ID, ProviderID: env.provider.ID, Amount: 500}

	_, err := env.svc.BidOnProject(env.providerCtx(), req)
	require.NoError(t, err)

	_, err = env.svc.BidOnProject(env.providerCtx(), req)
	assert.ErrorIs(t, err, ErrBidAlreadyExists)
}

func TestBidOnProjectRebidAfterCancel(t *testing.T) {
	env := newBidEnv(t)
	req := &BidRequest{ProjectID: env.project.ID, ProviderID: env.provider.ID, Amount: 500}

	_, err := env.svc.BidOnProject(env.providerCtx(), req)
	require.NoError(t, err)
	require.NoError(t, env.svc.CancelBid(env.providerCtx(), env.project.ID, env.provider.ID))

	// a canceled bid does not block a fresh one
	_, err = env.svc.BidOnProject(env.providerCtx(), req)
	assert.NoError(t, err)
}

func TestBidOnProjectNotFound(t *testing.T) {
	env := newBidEnv(t)

	_, err := env.svc.BidOnProject(env.providerCtx(), &BidRequest{
		ProjectID:  uuid.New(),
		ProviderID: env.provider.ID,
		Amount:     500,
	})
	assert.ErrorIs(t, err, ErrProjectNotFound)
}

func TestBidOnProjectNotOpen(t *testing.T) {
	env := newBidEnv(t)
	ctx := requestinfo.NewContext(context.Background(), requestinfo.Info{UserID: "seed"})

	draft := &Project{
		ID:       uuid.New(),
		SeekerID: env.seeker.ID,
		Title:    "Unpublished",
		Status:   ProjectStatusDraft,
	}
	require.NoError(t, repository.NewAuditableRepository[Project](env.db).Create(ctx, draft))

	_, err := env.svc.BidOnProject(env.providerCtx(), &BidRequest{
		ProjectID:  draft.ID,
		ProviderID: env.provider.ID,
		Amount:     500,
	})
	assert.ErrorIs(t, err, ErrProjectNotOpen)
}

func TestBidOnProjectAmountOutOfRange(t *testing.T) {
	env := newBidEnv(t)

	for _, amount := range []float64{50, 5000} {
		_, err := env.svc.BidOnProject(env.providerCtx(), &BidRequest{
			ProjectID:  env.project.ID,
			ProviderID: env.provider.ID,
			Amount:     amount,
		})
		assert.ErrorIs(t, err, ErrAmountOutOfRange)
	}
}

func TestBidOnProjectOpenEndedBudget(t *testing.T) {
	env := newBidEnv(t)
	ctx := requestinfo.NewContext(context.Background(), requestinfo.Info{UserID: "seed"})

	open := &Project{
		ID:        uuid.New(),
		SeekerID:  env.seeker.ID,
		Title:     "No ceiling",
		Status:    ProjectStatusOpen,
		BudgetMin: floatPtr(100),
	}
	require.NoError(t, repository.NewAuditableRepository[Project](env.db).Create(ctx, open))

	// one missing bound disables the range check entirely
	_, err := env.svc.BidOnProject(env.providerCtx(), &BidRequest{
		ProjectID:  open.ID,
		ProviderID: env.provider.ID,
		Amount:     7,
	})
	assert.NoError(t, err)
}

func TestBidOnProjectProviderNotFound(t *testing.T) {
	env := newBidEnv(t)

	_, err := env.svc.BidOnProject(env.providerCtx(), &BidRequest{
		ProjectID:  env.project.ID,
		ProviderID: uuid.New(),
		Amount:     500,
	})
	assert.ErrorIs(t, err, ErrProviderNotFound)
}

func TestApproveBidStartsWork(t *testing.T) {
	env := newBidEnv(t)
	rival, rivalCtx := env.addProvider(t, "rival@example.com")

	bid, err := env.svc.BidOnProject(env.providerCtx(), &BidRequest{
		ProjectID:  env.project.ID,
		ProviderID: env.provider.ID,
		Amount:     500,
	})
	require.NoError(t, err)
	_, err = env.svc.BidOnProject(rivalCtx, &BidRequest{
		ProjectID:  env.project.ID,
		ProviderID: rival.ID,
		Amount:     600,
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.ApproveBid(env.seekerCtx(), bid.ID, PaymentMethodCard))

	project, err := repository.NewAuditableRepository[Project](env.db).GetOne(context.Background(), env.project.ID)
	require.NoError(t, err)
	require.NotNil(t, project)
	assert.Equal(t, ProjectStatusInProgress, project.Status)
	require.NotNil(t, project.ProjectBidID)
	assert.Equal(t, bid.ID, *project.ProjectBidID)
	require.NotNil(t, project.StartDate)
	require.NotNil(t, project.EndDate)
	assert.Equal(t, project.StartDate.AddDate(0, 0, 10), *project.EndDate)

	require.Len(t, env.notifier.approved, 1)
	assert.Equal(t, "provider@example.com", env.notifier.approved[0].Email)
	require.Len(t, env.notifier.rejected, 1)
	assert.Equal(t, "rival@example.com", env.notifier.rejected[0].Email)
}

func TestApproveBidDeferredPayment(t *testing.T) {
	env := newBidEnv(t)

	bid, err := env.svc.BidOnProject(env.providerCtx(), &BidRequest{
		ProjectID:  env.project.ID,
		ProviderID: env.provider.ID,
		Amount:     500,
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.ApproveBid(env.seekerCtx(), bid.ID, PaymentMethodOther))

	project, err := repository.NewAuditableRepository[Project](env.db).GetOne(context.Background(), env.project.ID)
	require.NoError(t, err)
	require.NotNil(t, project)
	assert.Equal(t, ProjectStatusPendingPayment, project.Status)
	assert.Nil(t, project.StartDate)

	// payment is parked, nobody hears about it yet
	assert.Empty(t, env.notifier.approved)
	assert.Empty(t, env.notifier.rejected)
}

func TestApproveBidNotFound(t *testing.T) {
	env := newBidEnv(t)
	err := env.svc.ApproveBid(env.seekerCtx(), uuid.New(), PaymentMethodCard)
	assert.ErrorIs(t, err, ErrBidNotFound)
}

func TestApproveBidCanceled(t *testing.T) {
	env := newBidEnv(t)

	bid, err := env.svc.BidOnProject(env.providerCtx(), &BidRequest{
		ProjectID:  env.project.ID,
		ProviderID: env.provider.ID,
		Amount:     500,
	})
	require.NoError(t, err)
	require.NoError(t, env.svc.CancelBid(env.providerCtx(), env.project.ID, env.provider.ID))

	err = env.svc.ApproveBid(env.seekerCtx(), bid.ID, PaymentMethodCard)
	assert.ErrorIs(t, err, ErrBidCanceled)
}

func TestApproveBidProjectNotOpen(t *testing.T) {
	env := newBidEnv(t)

	bid, err := env.svc.BidOnProject(env.providerCtx(), &BidRequest{
		ProjectID:  env.project.ID,
		ProviderID: env.provider.ID,
		Amount:     500,
	})
	require.NoError(t, err)
	require.NoError(t, env.svc.ApproveBid(env.seekerCtx(), bid.ID, PaymentMethodCard))

	// the project left the open state with the first approval
	err = env.svc.ApproveBid(env.seekerCtx(), bid.ID, PaymentMethodCard)
	assert.ErrorIs(t, err, ErrProjectNotOpen)
}

func TestCancelBidByOwner(t *testing.T) {
	env := newBidEnv(t)

	bid, err := env.svc.BidOnProject(env.providerCtx(), &BidRequest{
		ProjectID:  env.project.ID,
		ProviderID: env.provider.ID,
		Amount:     500,
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.CancelBid(env.providerCtx(), env.project.ID, env.provider.ID))

	view, err := env.svc.GetBidByID(context.Background(), bid.ID)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.True(t, view.IsCanceled)

	// a provider cancellation is not a seeker rejection
	assert.Empty(t, env.notifier.rejected)
}

func TestCancelBidNotOwner(t *testing.T) {
	env := newBidEnv(t)
	_, rivalCtx := env.addProvider(t, "rival@example.com")

	_, err := env.svc.BidOnProject(env.providerCtx(), &BidRequest{
		ProjectID:  env.project.ID,
		ProviderID: env.provider.ID,
		Amount:     500,
	})
	require.NoError(t, err)

	err = env.svc.CancelBid(rivalCtx, env.project.ID, env.provider.ID)
	assert.ErrorIs(t, err, ErrNotBidOwner)
}

func TestCancelBidBySeekerNotifies(t *testing.T) {
	env := newBidEnv(t)

	_, err := env.svc.BidOnProject(env.providerCtx(), &BidRequest{
		ProjectID:  env.project.ID,
		ProviderID: env.provider.ID,
		Amount:     500,
	})
	require.NoError(t, err)

	require.NoError(t, env.svc.CancelBid(env.seekerCtx(), env.project.ID, env.provider.ID))

	require.Len(t, env.notifier.rejected, 1)
	assert.Equal(t, "provider@example.com", env.notifier.rejected[0].Email)
}

func TestCancelBidMissingAndRepeated(t *testing.T) {
	env := newBidEnv(t)

	err := env.svc.CancelBid(env.providerCtx(), env.project.ID, env.provider.ID)
	assert.ErrorIs(t, err, ErrBidNotFound)

	_, err = env.svc.BidOnProject(env.providerCtx(), &BidRequest{
		ProjectID:  env.project.ID,
		ProviderID: env.provider.ID,
		Amount:     500,
	})
	require.NoError(t, err)
	require.NoError(t, env.svc.CancelBid(env.providerCtx(), env.project.ID, env.provider.ID))

	err = env.svc.CancelBid(env.providerCtx(), env.project.ID, env.provider.ID)
	assert.ErrorIs(t, err, ErrBidCanceled)
}

func TestGetBidByIDAppliesFee(t *testing.T) {
	env := newBidEnv(t)
	env.setSetting(t, appconfig.PaymentProcessingFee, "5")

	bid, err := env.svc.BidOnProject(env.providerCtx(), &BidRequest{
		ProjectID:  env.project.ID,
		ProviderID: env.provider.ID,
		Amount:     100,
	})
	require.NoError(t, err)

	view, err := env.svc.GetBidByID(context.Background(), bid.ID)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.Equal(t, env.project.Title, view.ProjectTitle)
	assert.InDelta(t, 100.0, view.BidAmount, 0.001)
	assert.InDelta(t, 105.0, view.AmountToBePaid, 0.001)
}

func TestGetBidByIDNoFeeConfigured(t *testing.T) {
	env := newBidEnv(t)

	bid, err := env.svc.BidOnProject(env.providerCtx(), &BidRequest{
		ProjectID:  env.project.ID,
		ProviderID: env.provider.ID,
		Amount:     250,
	})
	require.NoError(t, err)

	view, err := env.svc.GetBidByID(context.Background(), bid.ID)
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.InDelta(t, 250.0, view.AmountToBePaid, 0.001)
}

func TestGetBidByIDTruncatesNotRounds(t *testing.T) {
	env := newBidEnv(t)
	env.setSetting(t, appconfig.PaymentProcessingFee, "3.33")

	bid, err := env.svc.BidOnProject(env.providerCtx(), &BidRequest{
		ProjectID:  env.project.ID,
		ProviderID: env.provider.ID,
		Amount:     999.99,
	})
	require.NoError(t, err)

	view, err := env.svc.GetBidByID(context.Background(), bid.ID)
	require.NoError(t, err)
	require.NotNil(t, view)
	// 999.99 + 33.299667 = 1033.289667, truncated down to the cent
	assert.InDelta(t, 1033.28, view.AmountToBePaid, 0.001)
}

func TestNotificationLocaleFallsBackToCaller(t *testing.T) {
	env := newBidEnv(t)
	ctx := requestinfo.NewContext(context.Background(), requestinfo.Info{UserID: "seed"})

	// account without a stored language
	quiet := &User{ID: uuid.New(), Email: "quiet@example.com", Status: UserStatusApproved}
	require.NoError(t, repository.NewAuditableRepository[User](env.db).Create(ctx, quiet))
	seeker := &Seeker{ID: uuid.New(), UserID: quiet.ID}
	require.NoError(t, repository.NewAuditableRepository[Seeker](env.db).Create(ctx, seeker))
	project := &Project{ID: uuid.New(), SeekerID: seeker.ID, Title: "Quiet build", Status: ProjectStatusOpen}
	require.NoError(t, repository.NewAuditableRepository[Project](env.db).Create(ctx, project))

	_, err := env.svc.BidOnProject(env.providerCtx(), &BidRequest{
		ProjectID:  project.ID,
		ProviderID: env.provider.ID,
		Amount:     300,
	})
	require.NoError(t, err)

	require.Len(t, env.notifier.placed, 1)
	assert.Equal(t, "quiet@example.com", env.notifier.placed[0].Email)
	assert.Equal(t, "en", env.notifier.placed[0].Language)
}

func TestNotificationRecipientLocaleWins(t *testing.T) {
	env := newBidEnv(t)

	// the seeded seeker stores "en"; a differing caller locale loses
	callerCtx := requestinfo.NewContext(context.Background(), requestinfo.Info{
		UserID:     env.providerUser.ID.String(),
		Role:       requestinfo.RoleProvider,
		ProviderID: env.provider.ID,
		Language:   "de",
	})
	_, err := env.svc.BidOnProject(callerCtx, &BidRequest{
		ProjectID:  env.project.ID,
		ProviderID: env.provider.ID,
		Amount:     500,
	})
	require.NoError(t, err)

	require.Len(t, env.notifier.placed, 1)
	assert.Equal(t, "en", env.notifier.placed[0].Language)
}

func TestGetBidByIDMissing(t *testing.T) {
	env := newBidEnv(t)

	view, err := env.svc.GetBidByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, view)
}
