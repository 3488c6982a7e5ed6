package auth

import "github.com/hray3182/todolist/internal/models"

// Identity is the authenticated user attached to a request.
type Identity struct {
	UserID   int64
	Username string
}

// Session carries the current identity for one request, plus any login or
// logout the handler asked for. The HTTP layer turns those into cookies.
type Session struct {
	identity    *Identity
	established bool
	ended       bool
}

func NewSession(identity *Identity) *Session {
	return &Session{identity: identity}
}

// Identity returns the current user, or nil for an anonymous request.
func (s *Session) Identity() *Identity {
	return s.identity
}

func (s *Session) Authenticated() bool {
	return s.identity != nil
}

// Establish logs user in for the rest of this request and for later ones.
func (s *Session) Establish(user *models.User) {
	s.identity = &Identity{UserID: user.UserID, Username: user.Username}
	s.established = true
	s.ended = false
}

// End logs the current user out.
func (s *Session) End() {
	s.identity = nil
	s.established = false
	s.ended = true
}

// Established reports whether a new session cookie must be issued.
func (s *Session) Established() bool { return s.established }

// Ended reports whether the session cookie must be cleared.
func (s *Session) Ended() bool { return s.ended }
