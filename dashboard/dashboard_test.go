package dashboard

import (
	"context"
	"testing"

	"github.com/Dosada05/contesthub/models"
	"github.com/Dosada05/contesthub/services"
	"github.com/Dosada05/contesthub/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingContests struct {
	services.ContestService
	lastActor models.Actor
}

func (r *recordingContests) Join(_ context.Context, actor models.Actor, contestID int) (*services.JoinResult, error) {
	r.lastActor = actor
	return &services.JoinResult{PaymentRef: "pay_test"}, nil
}

func (r *recordingContests) ListAll(_ context.Context, actor models.Actor, _ *models.ContestStatus) ([]services.ContestView, error) {
	r.lastActor = actor
	return []services.ContestView{}, nil
}

func sessionFor(id int, role models.UserRole) session.Session {
	return session.Session{User: models.User{ID: id, Role: role}}
}

func TestResolve(t *testing.T) {
	router := NewRouter(&recordingContests{}, nil, nil, nil, nil)

	tests := []struct {
		role models.UserRole
		kind Kind
		tab  string
	}{
		{models.RoleAdmin, KindAdmin, "overview"},
		{models.RoleCreator, KindCreator, "my-contests"},
		{models.RoleUser, KindParticipant, "participated"},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			v, err := router.Resolve(sessionFor(7, tt.role))
			require.NoError(t, err)

			d := v.Descriptor()
			assert.Equal(t, tt.kind, d.Kind)
			assert.Equal(t, tt.role, v.Role())
			assert.Equal(t, 7, d.UserID)
			assert.Equal(t, tt.tab, d.DefaultTab)
			assert.Contains(t, d.Tabs, tt.tab)
		})
	}

	_, err := router.Resolve(sessionFor(7, "guest"))
	assert.ErrorIs(t, err, ErrUnknownRole)
}

func TestVariantsAreExclusive(t *testing.T) {
	router := NewRouter(&recordingContests{}, nil, nil, nil, nil)

	v, err := router.Resolve(sessionFor(1, models.RoleUser))
	require.NoError(t, err)

	_, isAdmin := AsAdmin(v)
	_, isCreator := AsCreator(v)
	_, isParticipant := AsParticipant(v)
	assert.False(t, isAdmin)
	assert.False(t, isCreator)
	assert.True(t, isParticipant)
}

func TestViewsBindTheSessionActor(t *testing.T) {
	contests := &recordingContests{}
	router := NewRouter(contests, nil, nil, nil, nil)

	v, err := router.Resolve(sessionFor(11, models.RoleUser))
	require.NoError(t, err)
	p, ok := AsParticipant(v)
	require.True(t, ok)

	res, err := p.Join(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "pay_test", res.PaymentRef)
	assert.Equal(t, models.Actor{UserID: 11, Role: models.RoleUser}, contests.lastActor)

	v, err = router.Resolve(sessionFor(2, models.RoleAdmin))
	require.NoError(t, err)
	a, ok := AsAdmin(v)
	require.True(t, ok)
	_, err = a.ListContests(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, contests.lastActor.Role)
}

// The view follows the role stored on the session, so a promotion shows up on
// the next resolve.
func TestResolveFollowsRoleChange(t *testing.T) {
	router := NewRouter(&recordingContests{}, nil, nil, nil, nil)

	before, err := router.Resolve(sessionFor(5, models.RoleUser))
	require.NoError(t, err)
	after, err := router.Resolve(sessionFor(5, models.RoleCreator))
	require.NoError(t, err)

	assert.Equal(t, KindParticipant, before.Descriptor().Kind)
	assert.Equal(t, KindCreator, after.Descriptor().Kind)
}
