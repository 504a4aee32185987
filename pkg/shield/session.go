package shield

import (
	"context"
	"sync"
)

// SessionState is a point-in-time snapshot of the authentication state.
// Operations set IsLoading on entry and on completion write either the user
// or the error, never both.
type SessionState struct {
	User            *User
	IsAuthenticated bool
	IsLoading       bool
	Err             string
}

// Session is the authentication store. It is a dependency-injected instance,
// not a package-level global, so tests can run isolated sessions side by
// side.
type Session struct {
	client *Client
	creds  CredentialStore

	mu    sync.Mutex
	state SessionState
}

// NewSession builds a session over the given client. If the credential store
// holds a persisted token it is installed on the client so the session can be
// resumed with FetchCurrentUser.
func NewSession(client *Client, creds CredentialStore) *Session {
	s := &Session{client: client, creds: creds}
	if creds != nil {
		if token, err := creds.Load(); err == nil && token != "" {
			client.SetToken(token)
		}
	}
	return s
}

// State returns a snapshot of the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.state
	if state.User != nil {
		userCopy := *state.User
		state.User = &userCopy
	}
	return state
}

// RegisterInput carries the profile fields collected at registration.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
	JobTitle string `json:"job_title,omitempty"`
	PhotoURL string `json:"photo_url,omitempty"`
}

// ProfileUpdate carries mutable profile fields. Nil fields are left
// unchanged.
type ProfileUpdate struct {
	Name     *string `json:"name,omitempty"`
	JobTitle *string `json:"job_title,omitempty"`
	PhotoURL *string `json:"photo_url,omitempty"`
}

type authPayload struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

// Login authenticates with the backend. On success the credential is
// persisted so the session survives a restart.
func (s *Session) Login(ctx context.Context, email, password string) (*User, error) {
	s.beginLoading()
	var payload authPayload
	err := s.client.post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &payload)
	if err != nil {
		s.finishError(err)
		return nil, err
	}
	s.installSession(payload)
	return s.State().User, nil
}

// Register creates an account and opens a session for it.
func (s *Session) Register(ctx context.Context, input RegisterInput) (*User, error) {
	s.beginLoading()
	var payload authPayload
	if err := s.client.post(ctx, "/auth/register", input, &payload); err != nil {
		s.finishError(err)
		return nil, err
	}
	s.installSession(payload)
	return s.State().User, nil
}

// Logout ends the session. Local state is cleared unconditionally, even when
// the remote call fails, so the caller is never stranded in an
// authenticated-looking state; the remote error is still returned.
func (s *Session) Logout(ctx context.Context) error {
	s.beginLoading()
	err := s.client.post(ctx, "/auth/logout", nil, nil)

	s.client.SetToken("")
	if s.creds != nil {
		_ = s.creds.Clear()
	}
	s.mu.Lock()
	s.state = SessionState{}
	s.mu.Unlock()
	return err
}

// FetchCurrentUser loads the account behind the installed credential, for
// example after resuming a persisted session.
func (s *Session) FetchCurrentUser(ctx context.Context) (*User, error) {
	s.beginLoading()
	var user User
	if err := s.client.get(ctx, "/auth/me", &user); err != nil {
		s.finishError(err)
		return nil, err
	}
	s.finishUser(user)
	return s.State().User, nil
}

// UpdateProfile mutates the caller's profile and refreshes the session user.
func (s *Session) UpdateProfile(ctx context.Context, update ProfileUpdate) (*User, error) {
	current := s.State()
	if !current.IsAuthenticated || current.User == nil {
		return nil, authRequiredErr("UpdateProfile")
	}
	s.beginLoading()
	var user User
	if err := s.client.put(ctx, "/users/"+current.User.ID, update, &user); err != nil {
		s.finishError(err)
		return nil, err
	}
	s.finishUser(user)
	return s.State().User, nil
}

func (s *Session) installSession(payload authPayload) {
	s.client.SetToken(payload.Token)
	if s.creds != nil {
		_ = s.creds.Save(payload.Token)
	}
	s.finishUser(payload.User)
}

func (s *Session) beginLoading() {
	s.mu.Lock()
	s.state.IsLoading = true
	s.state.Err = ""
	s.mu.Unlock()
}

func (s *Session) finishUser(user User) {
	s.mu.Lock()
	s.state = SessionState{User: &user, IsAuthenticated: true}
	s.mu.Unlock()
}

func (s *Session) finishError(err error) {
	s.mu.Lock()
	s.state.IsLoading = false
	s.state.Err = err.Error()
	s.mu.Unlock()
}
