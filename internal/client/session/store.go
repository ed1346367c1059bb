// Package session owns the authenticated identity of the client.
//
// A Store is the single source of truth for "who is logged in". It persists
// the user and bearer token in the metadata repository, so a session survives
// restarts, and notifies subscribers whenever the identity changes.
//
// A session exists only when both the serialized user and the token are
// stored; either one alone is treated as no session.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/moonmatch/internal/client/models"
	"github.com/dmitrijs2005/moonmatch/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/moonmatch/internal/logging"
)

// Authenticator is the part of the backend the store needs.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*models.AuthResult, error)
	Register(ctx context.Context, email, password, name, eventID string) (*models.AuthResult, error)
}

// Manager is what UI code depends on.
type Manager interface {
	Current() *models.User
	IsAuthenticated() bool
	IsLoading() bool
	Initialized() bool

	Initialize(ctx context.Context)
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, email, password, name string) error
	Logout(ctx context.Context) error
	UpdateUser(ctx context.Context, patch models.UserPatch) error

	Token(ctx context.Context) (string, error)
	Subscribe(fn func(*models.User)) (cancel func())
}

type Store struct {
	repo           metadata.Repository
	auth           Authenticator
	log            logging.Logger
	defaultEventID string

	mu          sync.RWMutex
	user        *models.User
	initialized bool
	inflight    int

	subMu   sync.Mutex
	subs    map[int]func(*models.User)
	nextSub int
}

var _ Manager = (*Store)(nil)

func NewStore(repo metadata.Repository, auth Authenticator, defaultEventID string, log logging.Logger) *Store {
	return &Store{
		repo:           repo,
		auth:           auth,
		log:            log,
		defaultEventID: defaultEventID,
		subs:           make(map[int]func(*models.User)),
	}
}

// Current returns a copy of the session user, or nil.
func (s *Store) Current() *models.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user.Clone()
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// IsLoading is true until Initialize has run and while a login or
// registration is in flight.
func (s *Store) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.initialized || s.inflight > 0
}

func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Initialize loads the persisted session. Read and parse failures are logged
// and leave the session absent; the store is marked initialized either way.
func (s *Store) Initialize(ctx context.Context) {
	user := s.load(ctx)

	s.mu.Lock()
	s.user = user
	s.initialized = true
	s.mu.Unlock()

	s.notify(user)
}

func (s *Store) load(ctx context.Context) *models.User {
	rawUser, err := s.repo.Get(ctx, metadata.KeyUser)
	if err != nil {
		s.log.Error(ctx, "error loading stored user", "error", err)
		return nil
	}
	token, err := s.repo.Get(ctx, metadata.KeyToken)
	if err != nil {
		s.log.Error(ctx, "error loading stored token", "error", err)
		return nil
	}
	if len(rawUser) == 0 || len(token) == 0 {
		if len(rawUser) != 0 || len(token) != 0 {
			s.log.Warn(ctx, "partial session in storage, treating as logged out")
		}
		return nil
	}

	var user models.User
	if err := json.Unmarshal(rawUser, &user); err != nil {
		s.log.Error(ctx, "error parsing stored user", "error", err)
		return nil
	}
	return &user
}

// Login authenticates and persists the returned user and token. On failure the
// previous session, if any, is left as it was.
func (s *Store) Login(ctx context.Context, email, password string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return ErrMissingCredentials
	}

	s.beginLoading()
	defer s.endLoading()

	res, err := s.auth.Login(ctx, email, password)
	if err != nil {
		s.log.Warn(ctx, "login failed", "email", email, "error", err)
		return fmt.Errorf("login: %w", err)
	}
	if err := s.establish(ctx, res); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	s.log.Info(ctx, "login succeeded", "user_id", res.User.ID)
	return nil
}

// Register creates an account bound to the default event and logs it in.
func (s *Store) Register(ctx context.Context, email, password, name string) error {
	if strings.TrimSpace(email) == "" || password == "" {
		return ErrMissingCredentials
	}

	s.beginLoading()
	defer s.endLoading()

	res, err := s.auth.Register(ctx, email, password, name, s.defaultEventID)
	if err != nil {
		s.log.Warn(ctx, "registration failed", "email", email, "error", err)
		return fmt.Errorf("register: %w", err)
	}
	if err := s.establish(ctx, res); err != nil {
		return fmt.Errorf("register: %w", err)
	}
	s.log.Info(ctx, "registration succeeded", "user_id", res.User.ID)
	return nil
}

func (s *Store) establish(ctx context.Context, res *models.AuthResult) error {
	raw, err := json.Marshal(res.User)
	if err != nil {
		return fmt.Errorf("%w: encode user: %v", ErrStorage, err)
	}

	err = s.repo.Update(ctx, func(ctx context.Context, r metadata.Repository) error {
		if err := r.Set(ctx, metadata.KeyUser, raw); err != nil {
			return err
		}
		if err := r.Set(ctx, metadata.KeyToken, []byte(res.Token)); err != nil {
			return err
		}
		return r.Set(ctx, metadata.KeyLoggedIn, []byte("true"))
	})
	if err != nil {
		s.log.Error(ctx, "persisting session failed", "error", err)
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}

	user := res.User
	s.mu.Lock()
	s.user = &user
	s.mu.Unlock()

	s.notify(&user)
	return nil
}

// Logout removes the persisted session and clears the in-memory one. Storage
// failures are logged and returned, but the in-memory session is cleared
// regardless.
func (s *Store) Logout(ctx context.Context) error {
	var errs []error
	for _, key := range []string{metadata.KeyUser, metadata.KeyToken, metadata.KeyLoggedIn} {
		if err := s.repo.Delete(ctx, key); err != nil {
			s.log.Error(ctx, "logout: removing stored key failed", "key", key, "error", err)
			errs = append(errs, err)
		}
	}

	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	s.notify(nil)

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrStorage, errors.Join(errs...))
	}
	return nil
}

// UpdateUser shallow-merges patch over the session user and persists the
// result. It fails with ErrNoSession when nobody is logged in.
func (s *Store) UpdateUser(ctx context.Context, patch models.UserPatch) error {
	s.mu.Lock()
	if s.user == nil {
		s.mu.Unlock()
		return ErrNoSession
	}
	merged := patch.Apply(*s.user)

	raw, err := json.Marshal(merged)
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("%w: encode user: %v", ErrStorage, err)
	}
	if err := s.repo.Set(ctx, metadata.KeyUser, raw); err != nil {
		s.mu.Unlock()
		s.log.Error(ctx, "update user failed", "error", err)
		return fmt.Errorf("%w: %v", ErrStorage, err)
	}
	s.user = &merged
	s.mu.Unlock()

	s.notify(&merged)
	return nil
}

// Token returns the persisted bearer token. See StoredToken.
func (s *Store) Token(ctx context.Context) (string, error) {
	return NewStoredToken(s.repo).Token(ctx)
}

// Subscribe registers fn to be called with a copy of the session user (nil
// when logged out) after every change. The returned func unregisters it.
func (s *Store) Subscribe(fn func(*models.User)) (cancel func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(user *models.User) {
	s.subMu.Lock()
	fns := make([]func(*models.User), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(user.Clone())
	}
}

func (s *Store) beginLoading() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
}

func (s *Store) endLoading() {
	s.mu.Lock()
	s.inflight--
	s.mu.Unlock()
}
