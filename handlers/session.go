package handlers

import (
	"net/http"

	"github.com/Dosada05/contesthub/dashboard"
	"github.com/Dosada05/contesthub/session"
)

func currentSession(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	s, err := session.MustFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return session.Session{}, false
	}
	return s, true
}

func resolveView(w http.ResponseWriter, r *http.Request, router *dashboard.Router) (dashboard.View, bool) {
	s, ok := currentSession(w, r)
	if !ok {
		return nil, false
	}
	v, err := router.Resolve(s)
	if err != nil {
		forbiddenResponse(w, r, err.Error())
		return nil, false
	}
	return v, true
}

func adminView(w http.ResponseWriter, r *http.Request, router *dashboard.Router) (*dashboard.AdminView, bool) {
	v, ok := resolveView(w, r, router)
	if !ok {
		return nil, false
	}
	a, ok := dashboard.AsAdmin(v)
	if !ok {
		forbiddenResponse(w, r, "admin access required")
	}
	return a, ok
}

func creatorView(w http.ResponseWriter, r *http.Request, router *dashboard.Router) (*dashboard.CreatorView, bool) {
	v, ok := resolveView(w, r, router)
	if !ok {
		return nil, false
	}
	c, ok := dashboard.AsCreator(v)
	if !ok {
		forbiddenResponse(w, r, "creator access required")
	}
	return c, ok
}

func participantView(w http.ResponseWriter, r *http.Request, router *dashboard.Router) (*dashboard.ParticipantView, bool) {
	v, ok := resolveView(w, r, router)
	if !ok {
		return nil, false
	}
	p, ok := dashboard.AsParticipant(v)
	if !ok {
		forbiddenResponse(w, r, "participant access required")
	}
	return p, ok
}
