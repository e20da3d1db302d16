package session

import (
	"github.com/spec-kit/complaint-portal/internal/domain"
)

// State is the immutable session snapshot. Mutations go through the pure
// transition functions below so the store and durable storage can never see
// half-applied changes.
type State struct {
	AccessToken      string       `json:"accessToken"`
	RefreshToken     string       `json:"refreshToken"`
	User             *domain.User `json:"user"`
	IsAuthenticated  bool         `json:"isAuthenticated"`
	SidebarCollapsed bool         `json:"sidebarCollapsed"`
}

// HasRole reports whether the session is authenticated and the user's role
// outranks or equals min.
func (s State) HasRole(min domain.Role) bool {
	if !s.IsAuthenticated || s.User == nil {
		return false
	}
	return s.User.Role.AtLeast(min)
}

// withLogin produces the state after a successful login.
func (s State) withLogin(access, refresh string, user *domain.User) State {
	next := s
	next.AccessToken = access
	next.RefreshToken = refresh
	next.User = user
	next.IsAuthenticated = true
	return next
}

// withTokens produces the state after a token refresh. An empty rotated
// refresh token keeps the previous one.
func (s State) withTokens(access, refresh string) State {
	next := s
	next.AccessToken = access
	if refresh != "" {
		next.RefreshToken = refresh
	}
	return next
}

// cleared produces the logged-out state. The sidebar preference survives
// logout.
func (s State) cleared() State {
	return State{SidebarCollapsed: s.SidebarCollapsed}
}

// withSidebar produces the state with the UI preference flipped.
func (s State) withSidebar(collapsed bool) State {
	next := s
	next.SidebarCollapsed = collapsed
	return next
}
