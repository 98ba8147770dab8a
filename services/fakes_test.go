package services

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Dosada05/contesthub/models"
	"github.com/Dosada05/contesthub/payments"
	"github.com/Dosada05/contesthub/repositories"
	"github.com/Dosada05/contesthub/storage"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var testNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

type fakeTx struct{}

func (fakeTx) WithinTx(_ context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[int]*models.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int]*models.User{}, nextID: 1}
}

func (r *fakeUserRepo) add(name string, role models.UserRole) *models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := &models.User{
		ID:        r.nextID,
		Name:      name,
		Email:     strings.ToLower(name) + "@example.com",
		Role:      role,
		CreatedAt: testNow.Add(time.Duration(r.nextID) * time.Minute),
	}
	r.users[u.ID] = u
	r.nextID++
	cp := *u
	return &cp
}

func (r *fakeUserRepo) get(id int) models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return *r.users[id]
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return repositories.ErrUserEmailConflict
		}
	}
	user.ID = r.nextID
	user.CreatedAt = testNow
	r.nextID++
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[user.ID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Name, u.PhotoURL, u.PhotoKey, u.Bio, u.Address = user.Name, user.PhotoURL, user.PhotoKey, user.Bio, user.Address
	return nil
}

func (r *fakeUserRepo) UpdateRole(_ context.Context, id int, role models.UserRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func (r *fakeUserRepo) IncrementParticipated(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.ParticipatedCount++
	return nil
}

func (r *fakeUserRepo) IncrementWon(_ context.Context, _ repositories.SQLExecutor, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.WonCount++
	return nil
}

func (r *fakeUserRepo) sorted(less func(a, b *models.User) bool) []models.User {
	all := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		all = append(all, u)
	}
	sort.Slice(all, func(i, j int) bool { return less(all[i], all[j]) })
	out := make([]models.User, len(all))
	for i, u := range all {
		out[i] = *u
	}
	return out
}

func window(users []models.User, limit, offset int) []models.User {
	if offset >= len(users) {
		return []models.User{}
	}
	end := len(users)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return users[offset:end]
}

func (r *fakeUserRepo) List(_ context.Context, filter repositories.ListUsersFilter) ([]models.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.sorted(func(a, b *models.User) bool { return a.ID < b.ID })
	matched := make([]models.User, 0, len(all))
	for _, u := range all {
		if filter.Role != nil && u.Role != *filter.Role {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(u.Name), strings.ToLower(filter.Search)) {
			continue
		}
		matched = append(matched, u)
	}
	return window(matched, filter.Limit, filter.Offset), len(matched), nil
}

func (r *fakeUserRepo) Count(_ context.Context, role *models.UserRole) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, u := range r.users {
		if role == nil || u.Role == *role {
			n++
		}
	}
	return n, nil
}

func (r *fakeUserRepo) Ranking(_ context.Context, limit, offset int) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ranked := r.sorted(func(a, b *models.User) bool {
		if a.WonCount != b.WonCount {
			return a.WonCount > b.WonCount
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	return window(ranked, limit, offset), nil
}

type fakeContestRepo struct {
	mu       sync.Mutex
	contests map[int]*models.Contest
	nextID   int
}

func newFakeContestRepo() *fakeContestRepo {
	return &fakeContestRepo{contests: map[int]*models.Contest{}, nextID: 1}
}

func copyContest(c *models.Contest) *models.Contest {
	cp := *c
	cp.Participants = append([]int(nil), c.Participants...)
	return &cp
}

func (r *fakeContestRepo) seed(c models.Contest) *models.Contest {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.nextID
	r.nextID++
	if c.Name == "" {
		c.Name = "Contest"
	}
	c.ParticipantsCount = len(c.Participants)
	r.contests[c.ID] = copyContest(&c)
	return copyContest(&c)
}

func (r *fakeContestRepo) get(id int) *models.Contest {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contests[id]
	if !ok {
		return nil
	}
	return copyContest(c)
}

func (r *fakeContestRepo) Create(_ context.Context, _ repositories.SQLExecutor, c *models.Contest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.ID = r.nextID
	c.CreatedAt = testNow
	r.nextID++
	r.contests[c.ID] = copyContest(c)
	return nil
}

func (r *fakeContestRepo) GetByID(_ context.Context, id int) (*models.Contest, error) {
	c := r.get(id)
	if c == nil {
		return nil, repositories.ErrContestNotFound
	}
	return c, nil
}

func (r *fakeContestRepo) List(_ context.Context, f repositories.ListContestsFilter) ([]models.Contest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Contest, 0)
	for id := 1; id < r.nextID; id++ {
		c, ok := r.contests[id]
		if !ok {
			continue
		}
		switch {
		case f.Status != nil && c.Status != *f.Status,
			f.Type != nil && c.Type != *f.Type,
			f.CreatorID != nil && c.CreatorID != *f.CreatorID,
			f.ParticipantID != nil && !c.HasParticipant(*f.ParticipantID),
			f.WinnerID != nil && (c.WinnerID == nil || *c.WinnerID != *f.WinnerID),
			f.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(f.Search)):
			continue
		}
		out = append(out, *copyContest(c))
	}
	return out, nil
}

func (r *fakeContestRepo) Popular(ctx context.Context, limit int) ([]models.Contest, error) {
	confirmed := models.StatusConfirmed
	all, _ := r.List(ctx, repositories.ListContestsFilter{Status: &confirmed})
	sort.SliceStable(all, func(i, j int) bool { return all[i].ParticipantsCount > all[j].ParticipantsCount })
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r *fakeContestRepo) RecentWinners(context.Context, int) ([]models.RecentWinner, error) {
	return []models.RecentWinner{}, nil
}

func (r *fakeContestRepo) Update(_ context.Context, c *models.Contest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.contests[c.ID]
	if !ok || cur.Status != models.StatusPending {
		return repositories.ErrContestStateConflict
	}
	r.contests[c.ID] = copyContest(c)
	return nil
}

func (r *fakeContestRepo) UpdateStatus(_ context.Context, id int, from, to models.ContestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contests[id]
	if !ok || c.Status != from {
		return repositories.ErrContestStateConflict
	}
	c.Status = to
	return nil
}

func (r *fakeContestRepo) UpdateImage(_ context.Context, id int, url, key *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contests[id]
	if !ok || c.Status != models.StatusPending {
		return repositories.ErrContestStateConflict
	}
	c.ImageURL, c.ImageKey = url, key
	return nil
}

func (r *fakeContestRepo) Delete(_ context.Context, id int, requireStatus *models.ContestStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contests[id]
	if !ok {
		return repositories.ErrContestNotFound
	}
	if requireStatus != nil && c.Status != *requireStatus {
		return repositories.ErrContestStateConflict
	}
	delete(r.contests, id)
	return nil
}

func (r *fakeContestRepo) AddParticipant(_ context.Context, _ repositories.SQLExecutor, contestID, userID int, _ string, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contests[contestID]
	if !ok || c.Status != models.StatusConfirmed || !c.Deadline.After(now) {
		return repositories.ErrContestStateConflict
	}
	if c.HasParticipant(userID) {
		return repositories.ErrAlreadyParticipant
	}
	c.Participants = append(c.Participants, userID)
	c.ParticipantsCount = len(c.Participants)
	return nil
}

func (r *fakeContestRepo) IsParticipant(_ context.Context, contestID, userID int) (bool, error) {
	c := r.get(contestID)
	return c != nil && c.HasParticipant(userID), nil
}

func (r *fakeContestRepo) SetWinner(_ context.Context, _ repositories.SQLExecutor, contestID, winnerID int, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.contests[contestID]
	if !ok || c.WinnerID != nil || c.Status != models.StatusConfirmed || !c.HasParticipant(winnerID) {
		return repositories.ErrWinnerAlreadySet
	}
	c.WinnerID = &winnerID
	c.WinnerDeclaredAt = &now
	return nil
}

func (r *fakeContestRepo) Count(_ context.Context, status *models.ContestStatus) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, c := range r.contests {
		if status == nil || c.Status == *status {
			n++
		}
	}
	return n, nil
}

func (r *fakeContestRepo) TotalPrizePool(context.Context) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	total := decimal.Zero
	for _, c := range r.contests {
		if c.Status == models.StatusConfirmed {
			total = total.Add(c.Prize)
		}
	}
	return total, nil
}

type fakeSubmissionRepo struct {
	mu   sync.Mutex
	subs []models.Submission
}

func (r *fakeSubmissionRepo) Create(_ context.Context, s *models.Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.subs {
		if existing.ContestID == s.ContestID && existing.UserID == s.UserID {
			return repositories.ErrSubmissionConflict
		}
	}
	s.ID = len(r.subs) + 1
	r.subs = append(r.subs, *s)
	return nil
}

func (r *fakeSubmissionRepo) ListByContest(_ context.Context, contestID int) ([]models.Submission, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]models.Submission, 0)
	for _, s := range r.subs {
		if s.ContestID == contestID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakePackageRepo struct {
	mu       sync.Mutex
	plans    []models.PackagePlan
	packages []models.CreatorPackage
}

func newFakePackageRepo() *fakePackageRepo {
	return &fakePackageRepo{plans: []models.PackagePlan{
		{ID: 1, Name: "Basic", Price: decimal.RequireFromString("9.99"), ContestLimit: 3, DurationDays: 30},
		{ID: 2, Name: "Pro", Price: decimal.RequireFromString("24.99"), ContestLimit: 10, DurationDays: 30, Popular: true},
		{ID: 3, Name: "Enterprise", Price: decimal.RequireFromString("79.99"), ContestLimit: models.UnlimitedContests, DurationDays: 30},
	}}
}

func (r *fakePackageRepo) give(userID, limit, used int, expiresAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.packages = append(r.packages, models.CreatorPackage{
		ID:           len(r.packages) + 1,
		UserID:       userID,
		PlanID:       1,
		PlanName:     "Basic",
		ContestLimit: limit,
		ContestsUsed: used,
		PurchasedAt:  expiresAt.AddDate(0, 0, -30),
		ExpiresAt:    expiresAt,
	})
}

func (r *fakePackageRepo) latestIndex(userID int) int {
	idx := -1
	for i, p := range r.packages {
		if p.UserID == userID {
			idx = i
		}
	}
	return idx
}

func (r *fakePackageRepo) ListPlans(context.Context) ([]models.PackagePlan, error) {
	return r.plans, nil
}

func (r *fakePackageRepo) GetPlan(_ context.Context, id int) (*models.PackagePlan, error) {
	for _, p := range r.plans {
		if p.ID == id {
			cp := p
			return &cp, nil
		}
	}
	return nil, repositories.ErrPlanNotFound
}

func (r *fakePackageRepo) GetLatestForUser(_ context.Context, userID int) (*models.CreatorPackage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.latestIndex(userID)
	if idx < 0 {
		return nil, repositories.ErrPackageNotFound
	}
	cp := r.packages[idx]
	return &cp, nil
}

func (r *fakePackageRepo) Create(_ context.Context, _ repositories.SQLExecutor, p *models.CreatorPackage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = len(r.packages) + 1
	r.packages = append(r.packages, *p)
	return nil
}

func (r *fakePackageRepo) ConsumeQuota(_ context.Context, _ repositories.SQLExecutor, userID int, now time.Time) (*models.CreatorPackage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := r.latestIndex(userID)
	if idx < 0 || !r.packages[idx].HasQuota(now) {
		return nil, repositories.ErrQuotaUnavailable
	}
	r.packages[idx].ContestsUsed++
	cp := r.packages[idx]
	return &cp, nil
}

type fakePaymentRepo struct {
	mu       sync.Mutex
	payments []models.Payment
}

func (r *fakePaymentRepo) Record(_ context.Context, _ repositories.SQLExecutor, p *models.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = len(r.payments) + 1
	r.payments = append(r.payments, *p)
	return nil
}

type decliningGateway struct{}

func (decliningGateway) Charge(context.Context, payments.ChargeRequest) (*payments.Receipt, error) {
	return nil, payments.ErrPaymentDeclined
}

func (decliningGateway) Refund(context.Context, string) error {
	return payments.ErrUnknownCharge
}

// recordingGateway charges through a ledger gateway and records refunds.
// beforeReturn runs after the charge is issued, mimicking a concurrent
// request that lands while the provider call is in flight.
type recordingGateway struct {
	payments.Gateway
	beforeReturn func()

	mu       sync.Mutex
	charges  []string
	refunded []string
}

func newRecordingGateway() *recordingGateway {
	return &recordingGateway{Gateway: payments.NewLedgerGateway()}
}

func (g *recordingGateway) Charge(ctx context.Context, req payments.ChargeRequest) (*payments.Receipt, error) {
	receipt, err := g.Gateway.Charge(ctx, req)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	g.charges = append(g.charges, receipt.Reference)
	g.mu.Unlock()
	if g.beforeReturn != nil {
		g.beforeReturn()
	}
	return receipt, nil
}

func (g *recordingGateway) Refund(ctx context.Context, reference string) error {
	if err := g.Gateway.Refund(ctx, reference); err != nil {
		return err
	}
	g.mu.Lock()
	g.refunded = append(g.refunded, reference)
	g.mu.Unlock()
	return nil
}

type fakeUploader struct {
	objects map[string]string
	deleted []string
}

func newFakeUploader() *fakeUploader {
	return &fakeUploader{objects: map[string]string{}}
}

func (u *fakeUploader) Upload(_ context.Context, key, contentType string, reader io.Reader) (*storage.UploadResult, error) {
	if _, err := io.ReadAll(reader); err != nil {
		return nil, err
	}
	u.objects[key] = contentType
	return &storage.UploadResult{Key: key, Location: u.GetPublicURL(key)}, nil
}

func (u *fakeUploader) Delete(_ context.Context, key string) error {
	if _, ok := u.objects[key]; !ok {
		return errors.New("no such object")
	}
	delete(u.objects, key)
	u.deleted = append(u.deleted, key)
	return nil
}

func (u *fakeUploader) GetPublicURL(key string) string {
	return "https://cdn.example.com/" + key
}

type countingCache struct {
	pages       map[[2]int]models.LeaderboardPage
	invalidated int
}

func newCountingCache() *countingCache {
	return &countingCache{pages: map[[2]int]models.LeaderboardPage{}}
}

func (c *countingCache) Get(_ context.Context, page, limit int) (*models.LeaderboardPage, bool, error) {
	p, ok := c.pages[[2]int{page, limit}]
	if !ok {
		return nil, false, nil
	}
	return &p, true, nil
}

func (c *countingCache) Set(_ context.Context, p *models.LeaderboardPage) error {
	c.pages[[2]int{p.Page, p.Limit}] = *p
	return nil
}

func (c *countingCache) Invalidate(context.Context) error {
	c.invalidated++
	c.pages = map[[2]int]models.LeaderboardPage{}
	return nil
}

// world wires every service against the same in-memory state.
type world struct {
	users       *fakeUserRepo
	contests    *fakeContestRepo
	submissions *fakeSubmissionRepo
	packages    *fakePackageRepo
	payments    *fakePaymentRepo
	uploader    *fakeUploader
	cache       *countingCache

	contestSvc     *contestService
	submissionSvc  *submissionService
	packageSvc     *packageService
	userSvc        *userService
	adminSvc       *adminUserService
	leaderboardSvc *leaderboardService
	dashboardSvc   *dashboardService
	authSvc        *authService
}

func newWorld() *world {
	w := &world{
		users:       newFakeUserRepo(),
		contests:    newFakeContestRepo(),
		submissions: &fakeSubmissionRepo{},
		packages:    newFakePackageRepo(),
		payments:    &fakePaymentRepo{},
		uploader:    newFakeUploader(),
		cache:       newCountingCache(),
	}
	log := zap.NewNop()
	gateway := payments.NewLedgerGateway()

	w.contestSvc = NewContestService(fakeTx{}, w.contests, w.packages, w.payments, w.users, gateway, w.uploader, w.cache, log).(*contestService)
	w.contestSvc.now = fixedClock
	w.submissionSvc = NewSubmissionService(fakeTx{}, w.contests, w.submissions, w.users, w.cache, log).(*submissionService)
	w.submissionSvc.now = fixedClock
	w.packageSvc = NewPackageService(fakeTx{}, w.packages, w.payments, gateway, log).(*packageService)
	w.packageSvc.now = fixedClock
	w.userSvc = NewUserService(w.users, w.contests, w.uploader, log).(*userService)
	w.userSvc.now = fixedClock
	w.adminSvc = NewAdminUserService(w.users, w.cache, log).(*adminUserService)
	w.leaderboardSvc = NewLeaderboardService(w.users, w.cache, log).(*leaderboardService)
	w.dashboardSvc = NewDashboardService(w.users, w.contests).(*dashboardService)
	w.authSvc = NewAuthService(w.users, w.cache, log).(*authService)
	return w
}

func actorOf(u *models.User) models.Actor {
	return models.Actor{UserID: u.ID, Role: u.Role}
}

func validContestInput() ContestInput {
	return ContestInput{
		Name:            "Brand Refresh",
		Description:     "Design a new logo",
		TaskInstruction: "Submit a link to an SVG",
		Type:            models.TypeLogoDesign,
		Price:           decimal.RequireFromString("5"),
		Prize:           decimal.RequireFromString("250"),
		Deadline:        testNow.Add(72 * time.Hour),
	}
}
