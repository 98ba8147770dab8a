package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/contesthub/lifecycle"
	"github.com/Dosada05/contesthub/models"
	"github.com/Dosada05/contesthub/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestContestCreate_ExhaustedQuota(t *testing.T) {
	w := newWorld()
	creator := w.users.add("Cora", models.RoleCreator)
	w.packages.give(creator.ID, 3, 3, testNow.Add(24*time.Hour))

	_, err := w.contestSvc.Create(context.Background(), actorOf(creator), validContestInput())

	require.ErrorIs(t, err, ErrQuotaExceeded)
	var qe *QuotaError
	require.ErrorAs(t, err, &qe)
	assert.Contains(t, qe.Reason, "used all contests")

	count, _ := w.contests.Count(context.Background(), nil)
	assert.Zero(t, count)
	pkg, _ := w.packages.GetLatestForUser(context.Background(), creator.ID)
	assert.Equal(t, 3, pkg.ContestsUsed)
}

func TestContestCreate_QuotaReasons(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(w *world, userID int)
		reason string
	}{
		{"no package", func(*world, int) {}, "no package found"},
		{"expired package", func(w *world, id int) { w.packages.give(id, 3, 0, testNow) }, "expired"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := newWorld()
			creator := w.users.add("Cora", models.RoleCreator)
			tt.setup(w, creator.ID)

			_, err := w.contestSvc.Create(context.Background(), actorOf(creator), validContestInput())

			var qe *QuotaError
			require.ErrorAs(t, err, &qe)
			assert.Contains(t, qe.Reason, tt.reason)
		})
	}
}

func TestContestCreate_Succeeds(t *testing.T) {
	w := newWorld()
	creator := w.users.add("Cora", models.RoleCreator)
	w.packages.give(creator.ID, 3, 1, testNow.Add(24*time.Hour))

	view, err := w.contestSvc.Create(context.Background(), actorOf(creator), validContestInput())
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, view.Status)
	assert.Equal(t, "brand-refresh", view.Slug)
	assert.Equal(t, creator.ID, view.CreatorID)
	assert.Equal(t, 3, view.TimeLeft.Days)
	assert.Empty(t, view.Participants)

	pkg, _ := w.packages.GetLatestForUser(context.Background(), creator.ID)
	assert.Equal(t, 2, pkg.ContestsUsed)
}

func TestContestCreate_UnlimitedPackage(t *testing.T) {
	w := newWorld()
	creator := w.users.add("Cora", models.RoleCreator)
	w.packages.give(creator.ID, models.UnlimitedContests, 500, testNow.Add(time.Hour))

	_, err := w.contestSvc.Create(context.Background(), actorOf(creator), validContestInput())
	assert.NoError(t, err)
}

func TestContestCreate_RejectsNonCreatorsAndBadInput(t *testing.T) {
	w := newWorld()
	user := w.users.add("Uma", models.RoleUser)
	creator := w.users.add("Cora", models.RoleCreator)
	w.packages.give(creator.ID, 3, 0, testNow.Add(24*time.Hour))

	_, err := w.contestSvc.Create(context.Background(), actorOf(user), validContestInput())
	assert.ErrorIs(t, err, ErrForbidden)

	input := validContestInput()
	input.Deadline = testNow.Add(-time.Hour)
	input.Type = "Poetry"
	input.Prize = decimal.NewFromInt(-1)
	_, err = w.contestSvc.Create(context.Background(), actorOf(creator), input)

	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Contains(t, ve.Fields, "deadline")
	assert.Contains(t, ve.Fields, "type")
	assert.Contains(t, ve.Fields, "prize")
}

func TestApproveThenJoin(t *testing.T) {
	w := newWorld()
	admin := w.users.add("Ada", models.RoleAdmin)
	creator := w.users.add("Cora", models.RoleCreator)
	user := w.users.add("Uma", models.RoleUser)
	c := w.contests.seed(models.Contest{
		CreatorID: creator.ID,
		Status:    models.StatusPending,
		Price:     decimal.RequireFromString("5"),
		Deadline:  testNow.Add(48 * time.Hour),
	})
	ctx := context.Background()

	approved, err := w.contestSvc.Approve(ctx, actorOf(admin), c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, approved.Status)

	res, err := w.contestSvc.Join(ctx, actorOf(user), c.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.PaymentRef, "pay_"))
	assert.Equal(t, 1, res.Contest.ParticipantsCount)

	stored := w.contests.get(c.ID)
	assert.Equal(t, []int{user.ID}, stored.Participants)
	assert.Equal(t, 1, w.users.get(user.ID).ParticipatedCount)
	require.Len(t, w.payments.payments, 1)
	assert.Equal(t, models.PaymentPurposeContestEntry, w.payments.payments[0].Purpose)

	_, err = w.contestSvc.Join(ctx, actorOf(user), c.ID)
	assert.ErrorIs(t, err, ErrAlreadyJoined)
	assert.Len(t, w.contests.get(c.ID).Participants, 1)
}

func TestApprove_Rules(t *testing.T) {
	w := newWorld()
	admin := w.users.add("Ada", models.RoleAdmin)
	creator := w.users.add("Cora", models.RoleCreator)
	c := w.contests.seed(models.Contest{CreatorID: creator.ID, Status: models.StatusPending, Deadline: testNow.Add(time.Hour)})
	ctx := context.Background()

	_, err := w.contestSvc.Approve(ctx, actorOf(creator), c.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = w.contestSvc.Approve(ctx, actorOf(admin), c.ID)
	require.NoError(t, err)

	_, err = w.contestSvc.Approve(ctx, actorOf(admin), c.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, err, lifecycle.ErrActionNotAllowed)

	_, err = w.contestSvc.Reject(ctx, actorOf(admin), c.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = w.contestSvc.SetStatus(ctx, actorOf(admin), c.ID, models.StatusPending)
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestJoin_AfterDeadline(t *testing.T) {
	w := newWorld()
	creator := w.users.add("Cora", models.RoleCreator)
	user := w.users.add("Uma", models.RoleUser)
	c := w.contests.seed(models.Contest{CreatorID: creator.ID, Status: models.StatusConfirmed, Deadline: testNow.Add(-time.Minute)})

	_, err := w.contestSvc.Join(context.Background(), actorOf(user), c.ID)

	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, err, lifecycle.ErrDeadlinePassed)
	assert.Empty(t, w.contests.get(c.ID).Participants)
	assert.Empty(t, w.payments.payments)
}

func TestJoin_RequiresConfirmedContestAndUserRole(t *testing.T) {
	w := newWorld()
	creator := w.users.add("Cora", models.RoleCreator)
	user := w.users.add("Uma", models.RoleUser)
	pending := w.contests.seed(models.Contest{CreatorID: creator.ID, Status: models.StatusPending, Deadline: testNow.Add(time.Hour)})
	open := w.contests.seed(models.Contest{CreatorID: creator.ID, Status: models.StatusConfirmed, Deadline: testNow.Add(time.Hour)})

	_, err := w.contestSvc.Join(context.Background(), actorOf(user), pending.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	_, err = w.contestSvc.Join(context.Background(), actorOf(creator), open.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = w.contestSvc.Join(context.Background(), actorOf(user), 999)
	assert.ErrorIs(t, err, ErrContestNotFound)
}

func TestJoin_PaymentDeclined(t *testing.T) {
	w := newWorld()
	w.contestSvc.gateway = decliningGateway{}
	creator := w.users.add("Cora", models.RoleCreator)
	user := w.users.add("Uma", models.RoleUser)
	c := w.contests.seed(models.Contest{CreatorID: creator.ID, Status: models.StatusConfirmed, Deadline: testNow.Add(time.Hour)})

	_, err := w.contestSvc.Join(context.Background(), actorOf(user), c.ID)

	assert.ErrorIs(t, err, ErrPaymentDeclined)
	assert.Empty(t, w.contests.get(c.ID).Participants)
	assert.Zero(t, w.users.get(user.ID).ParticipatedCount)
}

func TestJoin_DuplicateDuringChargeIsRefunded(t *testing.T) {
	w := newWorld()
	core, logs := observer.New(zap.WarnLevel)
	w.contestSvc.logger = zap.New(core)
	creator := w.users.add("Cora", models.RoleCreator)
	user := w.users.add("Uma", models.RoleUser)
	c := w.contests.seed(models.Contest{
		CreatorID: creator.ID,
		Status:    models.StatusConfirmed,
		Price:     decimal.RequireFromString("5"),
		Deadline:  testNow.Add(time.Hour),
	})

	gw := newRecordingGateway()
	gw.beforeReturn = func() {
		// a second Join by the same user commits first
		require.NoError(t, w.contests.AddParticipant(context.Background(), nil, c.ID, user.ID, "pay_other", testNow))
	}
	w.contestSvc.gateway = gw

	_, err := w.contestSvc.Join(context.Background(), actorOf(user), c.ID)

	require.ErrorIs(t, err, ErrAlreadyJoined)
	require.Len(t, gw.charges, 1)
	assert.Equal(t, gw.charges, gw.refunded)
	assert.Empty(t, w.payments.payments)
	assert.Len(t, w.contests.get(c.ID).Participants, 1)
	assert.Zero(t, w.cache.invalidated)

	entries := logs.FilterField(zap.String("payment_ref", gw.charges[0])).All()
	require.Len(t, entries, 1)
	assert.Equal(t, "charge not settled, refunded", entries[0].Message)
}

func TestJoin_RefundFailureIsLoggedForReconciliation(t *testing.T) {
	w := newWorld()
	core, logs := observer.New(zap.ErrorLevel)
	w.contestSvc.logger = zap.New(core)
	creator := w.users.add("Cora", models.RoleCreator)
	user := w.users.add("Uma", models.RoleUser)
	c := w.contests.seed(models.Contest{CreatorID: creator.ID, Status: models.StatusConfirmed, Deadline: testNow.Add(time.Hour)})

	gw := newRecordingGateway()
	gw.beforeReturn = func() {
		// the charge is reversed out of band before settlement
		require.NoError(t, gw.Gateway.Refund(context.Background(), gw.charges[0]))
		require.NoError(t, w.contests.UpdateStatus(context.Background(), c.ID, models.StatusConfirmed, models.StatusCompleted))
	}
	w.contestSvc.gateway = gw

	_, err := w.contestSvc.Join(context.Background(), actorOf(user), c.ID)

	require.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, gw.refunded)
	entries := logs.FilterMessage("charge not settled and refund failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, gw.charges[0], entries[0].ContextMap()["payment_ref"])
}

func TestJoin_InvalidatesLeaderboard(t *testing.T) {
	w := newWorld()
	creator := w.users.add("Cora", models.RoleCreator)
	user := w.users.add("Uma", models.RoleUser)
	c := w.contests.seed(models.Contest{CreatorID: creator.ID, Status: models.StatusConfirmed, Deadline: testNow.Add(time.Hour)})

	_, err := w.contestSvc.Join(context.Background(), actorOf(user), c.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, w.cache.invalidated)
}

func TestUpdate_OnlyWhilePending(t *testing.T) {
	w := newWorld()
	admin := w.users.add("Ada", models.RoleAdmin)
	creator := w.users.add("Cora", models.RoleCreator)
	other := w.users.add("Otto", models.RoleCreator)
	c := w.contests.seed(models.Contest{CreatorID: creator.ID, Status: models.StatusPending, Deadline: testNow.Add(time.Hour)})
	ctx := context.Background()

	input := validContestInput()
	input.Name = "Renamed Contest"

	_, err := w.contestSvc.Update(ctx, actorOf(other), c.ID, input)
	assert.ErrorIs(t, err, ErrForbidden)

	view, err := w.contestSvc.Update(ctx, actorOf(creator), c.ID, input)
	require.NoError(t, err)
	assert.Equal(t, "renamed-contest", view.Slug)

	_, err = w.contestSvc.Approve(ctx, actorOf(admin), c.ID)
	require.NoError(t, err)

	_, err = w.contestSvc.Update(ctx, actorOf(creator), c.ID, input)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	_, err = w.contestSvc.Update(ctx, actorOf(admin), c.ID, input)
	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestDelete_OwnerVersusAdmin(t *testing.T) {
	w := newWorld()
	admin := w.users.add("Ada", models.RoleAdmin)
	creator := w.users.add("Cora", models.RoleCreator)
	user := w.users.add("Uma", models.RoleUser)
	pending := w.contests.seed(models.Contest{CreatorID: creator.ID, Status: models.StatusPending, Deadline: testNow.Add(time.Hour)})
	confirmed := w.contests.seed(models.Contest{CreatorID: creator.ID, Status: models.StatusConfirmed, Deadline: testNow.Add(time.Hour)})
	ctx := context.Background()

	assert.ErrorIs(t, w.contestSvc.Delete(ctx, actorOf(user), pending.ID), ErrForbidden)

	err := w.contestSvc.Delete(ctx, actorOf(creator), confirmed.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.NotNil(t, w.contests.get(confirmed.ID))

	require.NoError(t, w.contestSvc.Delete(ctx, actorOf(creator), pending.ID))
	assert.Nil(t, w.contests.get(pending.ID))

	require.NoError(t, w.contestSvc.Delete(ctx, actorOf(admin), confirmed.ID))
	assert.Nil(t, w.contests.get(confirmed.ID))

	assert.ErrorIs(t, w.contestSvc.Delete(ctx, actorOf(admin), confirmed.ID), ErrContestNotFound)
}

func TestGet_HidesUnpublishedContests(t *testing.T) {
	w := newWorld()
	admin := w.users.add("Ada", models.RoleAdmin)
	creator := w.users.add("Cora", models.RoleCreator)
	user := w.users.add("Uma", models.RoleUser)
	c := w.contests.seed(models.Contest{CreatorID: creator.ID, Status: models.StatusPending, Deadline: testNow.Add(time.Hour)})
	ctx := context.Background()

	_, err := w.contestSvc.Get(ctx, actorOf(user), c.ID)
	assert.ErrorIs(t, err, ErrContestNotFound)

	_, err = w.contestSvc.Get(ctx, actorOf(creator), c.ID)
	assert.NoError(t, err)
	_, err = w.contestSvc.Get(ctx, actorOf(admin), c.ID)
	assert.NoError(t, err)
}

func TestListings(t *testing.T) {
	w := newWorld()
	admin := w.users.add("Ada", models.RoleAdmin)
	creator := w.users.add("Cora", models.RoleCreator)
	w.contests.seed(models.Contest{Name: "Logo sprint", CreatorID: creator.ID, Status: models.StatusConfirmed, Type: models.TypeLogoDesign, Deadline: testNow.Add(time.Hour)})
	w.contests.seed(models.Contest{Name: "Blog post", CreatorID: creator.ID, Status: models.StatusConfirmed, Type: models.TypeArticleWriting, Deadline: testNow.Add(time.Hour)})
	w.contests.seed(models.Contest{Name: "Draft", CreatorID: creator.ID, Status: models.StatusPending, Deadline: testNow.Add(time.Hour)})
	ctx := context.Background()

	public, err := w.contestSvc.ListPublic(ctx, PublicContestFilter{})
	require.NoError(t, err)
	assert.Len(t, public, 2)

	logo := models.TypeLogoDesign
	filtered, err := w.contestSvc.ListPublic(ctx, PublicContestFilter{Type: &logo})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Logo sprint", filtered[0].Name)

	searched, err := w.contestSvc.ListPublic(ctx, PublicContestFilter{Search: "blog"})
	require.NoError(t, err)
	assert.Len(t, searched, 1)

	mine, err := w.contestSvc.ListByCreator(ctx, actorOf(creator))
	require.NoError(t, err)
	assert.Len(t, mine, 3)

	_, err = w.contestSvc.ListAll(ctx, actorOf(creator), nil)
	assert.ErrorIs(t, err, ErrForbidden)

	pending := models.StatusPending
	queue, err := w.contestSvc.ListAll(ctx, actorOf(admin), &pending)
	require.NoError(t, err)
	assert.Len(t, queue, 1)
}

func TestPopular_TopFiveConfirmedByParticipants(t *testing.T) {
	w := newWorld()
	creator := w.users.add("Cora", models.RoleCreator)
	for i := 0; i < 7; i++ {
		participants := make([]int, i)
		for p := range participants {
			participants[p] = 100 + p
		}
		w.contests.seed(models.Contest{CreatorID: creator.ID, Status: models.StatusConfirmed, Participants: participants, Deadline: testNow.Add(time.Hour)})
	}
	w.contests.seed(models.Contest{CreatorID: creator.ID, Status: models.StatusPending, Participants: []int{1, 2, 3, 4, 5, 6, 7, 8}, Deadline: testNow.Add(time.Hour)})

	popular, err := w.contestSvc.Popular(context.Background())
	require.NoError(t, err)
	require.Len(t, popular, 5)
	assert.Equal(t, 6, popular[0].ParticipantsCount)
	assert.Equal(t, 2, popular[4].ParticipantsCount)
	for _, c := range popular {
		assert.Equal(t, models.StatusConfirmed, c.Status)
		assert.False(t, c.TimeLeft.Ended)
	}

	winners, err := w.contestSvc.RecentWinners(context.Background())
	require.NoError(t, err)
	assert.Empty(t, winners)
}

func TestUploadImage_ReplacesPreviousObject(t *testing.T) {
	w := newWorld()
	creator := w.users.add("Cora", models.RoleCreator)
	c := w.contests.seed(models.Contest{Name: "Poster", CreatorID: creator.ID, Status: models.StatusPending, Deadline: testNow.Add(time.Hour)})
	ctx := context.Background()

	first, err := w.contestSvc.UploadImage(ctx, actorOf(creator), c.ID, "image/png", strings.NewReader("png"))
	require.NoError(t, err)
	require.NotNil(t, first.ImageURL)
	assert.Contains(t, *first.ImageURL, "contests/")

	second, err := w.contestSvc.UploadImage(ctx, actorOf(creator), c.ID, "image/jpeg", strings.NewReader("jpg"))
	require.NoError(t, err)
	assert.NotEqual(t, *first.ImageURL, *second.ImageURL)
	assert.Len(t, w.uploader.objects, 1)
	assert.Len(t, w.uploader.deleted, 1)

	_, err = w.contestSvc.UploadImage(ctx, actorOf(creator), c.ID, "application/pdf", strings.NewReader("pdf"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)
}

func TestContestStateConflictIsTransitionError(t *testing.T) {
	err := raceLost(models.StatusPending, lifecycle.ActionEdit)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, err, repositories.ErrContestStateConflict)
}
