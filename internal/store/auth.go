package store

import (
	"context"
	"log"
	"sync"
	"time"

	"shopapp/internal/models"
	"shopapp/internal/remote"
	"shopapp/internal/session"

	"github.com/dgrijalva/jwt-go"
)

// AuthStore holds the authentication session and its sync status. A
// successful sign-up or sign-in persists the session to durable local
// storage and schedules a cancellable one-shot expiry task; a new
// authentication or an explicit logout cancels the previous task, so a
// stale timer can never clobber a newer session.
type AuthStore struct {
	syncState
	token    string
	userID   string
	loggedIn bool
	expiry   time.Time
	timer    *time.Timer
	mu       sync.RWMutex

	identity *remote.IdentityClient
	sessions session.Repository
}

// AuthSnapshot is a point-in-time view of the session state.
type AuthSnapshot struct {
	Token      string    `json:"token"`
	UserID     string    `json:"userId"`
	IsLoggedIn bool      `json:"isLoggedIn"`
	Expiry     time.Time `json:"expiry"`
	Status     Status    `json:"status"`
	Error      string    `json:"error,omitempty"`
}

// NewAuthStore creates a new AuthStore.
func NewAuthStore(identity *remote.IdentityClient, sessions session.Repository) *AuthStore {
	return &AuthStore{
		syncState: newSyncState(),
		identity:  identity,
		sessions:  sessions,
	}
}

// SignUp registers a new account with the identity API and logs in on
// success.
func (s *AuthStore) SignUp(ctx context.Context, email, password string) error {
	return s.sign(ctx, email, password, s.identity.SignUp)
}

// SignIn exchanges credentials for a session with the identity API.
func (s *AuthStore) SignIn(ctx context.Context, email, password string) error {
	return s.sign(ctx, email, password, s.identity.SignIn)
}

type identityCall func(ctx context.Context, email, password string) (*remote.AuthPayload, error)

func (s *AuthStore) sign(ctx context.Context, email, password string, call identityCall) error {
	s.mu.Lock()
	gen := s.begin()
	s.loggedIn = false
	s.token = ""
	s.userID = ""
	s.stopTimerLocked()
	s.mu.Unlock()

	payload, err := call(ctx, email, password)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.current(gen) {
		return err
	}
	if err != nil {
		s.fail(err)
		s.loggedIn = false
		s.token = ""
		s.userID = ""
		return err
	}

	var expiry time.Time
	if d := payload.ExpiresInDuration(); d > 0 {
		expiry = time.Now().Add(d)
	} else {
		expiry = tokenExpiry(payload.IDToken)
	}
	s.succeed()
	s.applySessionLocked(payload.IDToken, payload.LocalID, expiry)

	if err := s.sessions.Save(&models.SessionRecord{
		Token:      payload.IDToken,
		UserID:     payload.LocalID,
		ExpiryDate: expiry,
	}); err != nil {
		log.Printf("Warning: failed to persist session: %v", err)
	}
	return nil
}

// Authenticate transitions synchronously to the logged-in state with an
// already-issued token, scheduling the expiry task. It does not persist;
// it is the restore path for a session that is already stored.
func (s *AuthStore) Authenticate(token, userID string, expiresIn time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Invalidate any in-flight sign-in so its response cannot clobber
	// this session.
	s.gen++
	s.succeed()
	s.applySessionLocked(token, userID, time.Now().Add(expiresIn))
}

// Logout clears the session, cancels the pending expiry task and removes
// the persisted session.
func (s *AuthStore) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.gen++
	s.clearLocked()
	if err := s.sessions.Clear(); err != nil {
		log.Printf("Warning: failed to clear persisted session: %v", err)
	}
}

// Restore loads the persisted session and re-authenticates from it. An
// expired or unreadable session is cleared instead. Reports whether a
// session was restored.
func (s *AuthStore) Restore() bool {
	rec, err := s.sessions.Load()
	if err != nil {
		log.Printf("Warning: failed to load persisted session: %v", err)
		return false
	}
	if rec == nil || rec.Token == "" {
		return false
	}

	expiry := rec.ExpiryDate
	if expiry.IsZero() {
		// Older records carry no expiry; fall back to the token's own
		// exp claim.
		expiry = tokenExpiry(rec.Token)
	}
	if expiry.IsZero() || !expiry.After(time.Now()) {
		if err := s.sessions.Clear(); err != nil {
			log.Printf("Warning: failed to clear expired session: %v", err)
		}
		return false
	}

	s.Authenticate(rec.Token, rec.UserID, time.Until(expiry))
	return true
}

// applySessionLocked installs the session and schedules its expiry task.
func (s *AuthStore) applySessionLocked(token, userID string, expiry time.Time) {
	s.loggedIn = true
	s.token = token
	s.userID = userID
	s.expiry = expiry
	s.stopTimerLocked()
	if expiry.IsZero() {
		return
	}
	s.timer = time.AfterFunc(time.Until(expiry), func() {
		s.expire(token)
	})
}

// expire is the one-shot expiry task. It only acts while the session
// that scheduled it is still the current one.
func (s *AuthStore) expire(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loggedIn || s.token != token {
		return
	}
	s.clearLocked()
	if err := s.sessions.Clear(); err != nil {
		log.Printf("Warning: failed to clear expired session: %v", err)
	}
}

func (s *AuthStore) clearLocked() {
	s.stopTimerLocked()
	s.loggedIn = false
	s.token = ""
	s.userID = ""
	s.expiry = time.Time{}
	s.reset()
}

func (s *AuthStore) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// Token returns the current session token.
func (s *AuthStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// UserID returns the current user id.
func (s *AuthStore) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// IsLoggedIn reports whether a session is held and not yet expired.
func (s *AuthStore) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.loggedIn {
		return false
	}
	return s.expiry.IsZero() || s.expiry.After(time.Now())
}

// Snapshot returns a point-in-time view of the session state.
func (s *AuthStore) Snapshot() AuthSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return AuthSnapshot{
		Token:      s.token,
		UserID:     s.userID,
		IsLoggedIn: s.loggedIn && (s.expiry.IsZero() || s.expiry.After(time.Now())),
		Expiry:     s.expiry,
		Status:     s.status,
		Error:      s.err,
	}
}

// tokenExpiry reads the exp claim from an identity token without
// verifying the signature; the signing key belongs to the remote identity
// service. An unreadable token yields the zero time.
func tokenExpiry(token string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return time.Time{}
	}
	if exp, ok := claims["exp"].(float64); ok {
		return time.Unix(int64(exp), 0)
	}
	return time.Time{}
}
