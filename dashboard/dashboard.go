// Package dashboard selects the role-specific view of the application once per
// request. Each view only carries the operations its role may perform.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Dosada05/contesthub/models"
	"github.com/Dosada05/contesthub/services"
	"github.com/Dosada05/contesthub/session"
)

var ErrUnknownRole = errors.New("no dashboard for role")

type Kind string

const (
	KindAdmin       Kind = "admin"
	KindCreator     Kind = "creator"
	KindParticipant Kind = "participant"
)

// Descriptor is what GET /dashboard returns.
type Descriptor struct {
	Kind       Kind            `json:"kind"`
	Role       models.UserRole `json:"role"`
	UserID     int             `json:"user_id"`
	Tabs       []string        `json:"tabs"`
	DefaultTab string          `json:"default_tab"`
	Operations []string        `json:"operations"`
}

// View is closed: only this package can implement it.
type View interface {
	Role() models.UserRole
	Descriptor() Descriptor
	view()
}

type AdminView struct {
	actor    models.Actor
	contests services.ContestService
	users    services.AdminUserService
	stats    services.DashboardService
}

func (*AdminView) view() {}

func (v *AdminView) Role() models.UserRole { return models.RoleAdmin }

func (v *AdminView) Descriptor() Descriptor {
	return Descriptor{
		Kind:       KindAdmin,
		Role:       models.RoleAdmin,
		UserID:     v.actor.UserID,
		Tabs:       []string{"overview", "contests", "users"},
		DefaultTab: "overview",
		Operations: []string{"review_contest", "edit_contest", "delete_contest", "list_contests", "list_users", "set_role", "stats"},
	}
}

func (v *AdminView) Stats(ctx context.Context) (*models.DashboardStats, error) {
	return v.stats.GetStats(ctx, v.actor)
}

func (v *AdminView) ListContests(ctx context.Context, status *models.ContestStatus) ([]services.ContestView, error) {
	return v.contests.ListAll(ctx, v.actor, status)
}

func (v *AdminView) ReviewContest(ctx context.Context, contestID int, status models.ContestStatus) (*services.ContestView, error) {
	return v.contests.SetStatus(ctx, v.actor, contestID, status)
}

func (v *AdminView) EditContest(ctx context.Context, contestID int, input services.ContestInput) (*services.ContestView, error) {
	return v.contests.Update(ctx, v.actor, contestID, input)
}

func (v *AdminView) DeleteContest(ctx context.Context, contestID int) error {
	return v.contests.Delete(ctx, v.actor, contestID)
}

func (v *AdminView) ListUsers(ctx context.Context, filter models.UserFilter) (models.UserListResponse, error) {
	return v.users.ListUsers(ctx, v.actor, filter)
}

func (v *AdminView) SetRole(ctx context.Context, userID int, input services.SetRoleInput) (*models.User, error) {
	return v.users.SetRole(ctx, v.actor, userID, input)
}

type CreatorView struct {
	actor       models.Actor
	contests    services.ContestService
	submissions services.SubmissionService
	packages    services.PackageService
}

func (*CreatorView) view() {}

func (v *CreatorView) Role() models.UserRole { return models.RoleCreator }

func (v *CreatorView) Descriptor() Descriptor {
	return Descriptor{
		Kind:       KindCreator,
		Role:       models.RoleCreator,
		UserID:     v.actor.UserID,
		Tabs:       []string{"my-contests", "add-contest", "submissions"},
		DefaultTab: "my-contests",
		Operations: []string{
			"create_contest", "edit_contest", "delete_contest", "upload_contest_image",
			"list_submissions", "declare_winner", "package", "purchase_package",
		},
	}
}

func (v *CreatorView) CreateContest(ctx context.Context, input services.ContestInput) (*services.ContestView, error) {
	return v.contests.Create(ctx, v.actor, input)
}

func (v *CreatorView) EditContest(ctx context.Context, contestID int, input services.ContestInput) (*services.ContestView, error) {
	return v.contests.Update(ctx, v.actor, contestID, input)
}

func (v *CreatorView) DeleteContest(ctx context.Context, contestID int) error {
	return v.contests.Delete(ctx, v.actor, contestID)
}

func (v *CreatorView) UploadContestImage(ctx context.Context, contestID int, contentType string, r io.Reader) (*services.ContestView, error) {
	return v.contests.UploadImage(ctx, v.actor, contestID, contentType, r)
}

func (v *CreatorView) MyContests(ctx context.Context) ([]services.ContestView, error) {
	return v.contests.ListByCreator(ctx, v.actor)
}

func (v *CreatorView) Submissions(ctx context.Context, contestID int) ([]models.Submission, error) {
	return v.submissions.List(ctx, v.actor, contestID)
}

func (v *CreatorView) DeclareWinner(ctx context.Context, contestID, winnerID int) (*services.ContestView, error) {
	return v.submissions.DeclareWinner(ctx, v.actor, contestID, winnerID)
}

func (v *CreatorView) PurchasePackage(ctx context.Context, planID int) (*services.PackageSummary, error) {
	return v.packages.Purchase(ctx, v.actor, planID)
}

func (v *CreatorView) Package(ctx context.Context) (*services.PackageStatus, error) {
	return v.packages.Current(ctx, v.actor)
}

func (v *CreatorView) CanCreate(ctx context.Context) (*services.CreateEligibility, error) {
	return v.packages.CanCreate(ctx, v.actor)
}

type ParticipantView struct {
	actor       models.Actor
	contests    services.ContestService
	submissions services.SubmissionService
}

func (*ParticipantView) view() {}

func (v *ParticipantView) Role() models.UserRole { return models.RoleUser }

func (v *ParticipantView) Descriptor() Descriptor {
	return Descriptor{
		Kind:       KindParticipant,
		Role:       models.RoleUser,
		UserID:     v.actor.UserID,
		Tabs:       []string{"participated", "winning", "profile"},
		DefaultTab: "participated",
		Operations: []string{"join", "submit", "participated", "winnings", "profile"},
	}
}

func (v *ParticipantView) Join(ctx context.Context, contestID int) (*services.JoinResult, error) {
	return v.contests.Join(ctx, v.actor, contestID)
}

func (v *ParticipantView) Submit(ctx context.Context, contestID int, input services.SubmitInput) (*models.Submission, error) {
	return v.submissions.Submit(ctx, v.actor, contestID, input)
}

// Router builds views for resolved sessions.
type Router struct {
	contests    services.ContestService
	submissions services.SubmissionService
	packages    services.PackageService
	admin       services.AdminUserService
	stats       services.DashboardService
}

func NewRouter(
	contests services.ContestService,
	submissions services.SubmissionService,
	packages services.PackageService,
	admin services.AdminUserService,
	stats services.DashboardService,
) *Router {
	return &Router{
		contests:    contests,
		submissions: submissions,
		packages:    packages,
		admin:       admin,
		stats:       stats,
	}
}

func (r *Router) Resolve(s session.Session) (View, error) {
	actor := s.Actor()
	switch actor.Role {
	case models.RoleAdmin:
		return &AdminView{actor: actor, contests: r.contests, users: r.admin, stats: r.stats}, nil
	case models.RoleCreator:
		return &CreatorView{actor: actor, contests: r.contests, submissions: r.submissions, packages: r.packages}, nil
	case models.RoleUser:
		return &ParticipantView{actor: actor, contests: r.contests, submissions: r.submissions}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownRole, actor.Role)
	}
}

func AsAdmin(v View) (*AdminView, bool) {
	a, ok := v.(*AdminView)
	return a, ok
}

func AsCreator(v View) (*CreatorView, bool) {
	c, ok := v.(*CreatorView)
	return c, ok
}

func AsParticipant(v View) (*ParticipantView, bool) {
	p, ok := v.(*ParticipantView)
	return p, ok
}
