package auth

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/montybasquiart/sihiri-build/pkg/errors"
)

// Profile defaults for wallets that publish no name or avatar.
const (
	DefaultName      = "Anonymous Creator"
	DefaultAvatarURL = "/assets/default-avatar.png"
)

// UserData is what a signed-in session knows about its user.
type UserData struct {
	Addresses  map[string]string `json:"addresses"`
	Username   string            `json:"username,omitempty"`
	Name       string            `json:"name,omitempty"`
	AvatarURL  string            `json:"avatar_url,omitempty"`
	AuthToken  string            `json:"auth_token"`
	PublicKey  string            `json:"public_key"`
	SignedInAt time.Time         `json:"signed_in_at"`
	ExpiresAt  time.Time         `json:"expires_at,omitempty"`
}

// expired reports whether the token's expiry has passed at now.
func (u *UserData) expired(now time.Time) bool {
	return !u.ExpiresAt.IsZero() && !now.Before(u.ExpiresAt)
}

func (u *UserData) clone() *UserData {
	c := *u
	c.Addresses = make(map[string]string, len(u.Addresses))
	for k, v := range u.Addresses {
		c.Addresses[k] = v
	}
	return &c
}

// Profile returns the display view of u, substituting DefaultName and
// DefaultAvatarURL for missing values.
func (u *UserData) Profile() *UserProfile {
	p := &UserProfile{
		StxAddress:     u.Addresses["mainnet"],
		TestnetAddress: u.Addresses["testnet"],
		Name:           u.Name,
		AvatarURL:      u.AvatarURL,
		Username:       u.Username,
	}
	if p.Name == "" {
		p.Name = DefaultName
	}
	if p.AvatarURL == "" {
		p.AvatarURL = DefaultAvatarURL
	}
	return p
}

// UserProfile is the display view of a session.
type UserProfile struct {
	StxAddress     string `json:"stxAddress"`
	TestnetAddress string `json:"testnetAddress"`
	Name           string `json:"name"`
	AvatarURL      string `json:"avatarUrl"`
	Username       string `json:"username"`
}

// Authenticator obtains a signed auth-response token from a wallet. A user
// rejection is reported as a CancelledError.
type Authenticator interface {
	Authenticate(ctx context.Context) (string, error)
}

// Session holds the signed-in user. The zero value is not usable; use
// NewSession.
type Session struct {
	mu     sync.RWMutex
	data   *UserData
	store  *SessionStore
	logger *zap.Logger
	now    func() time.Time
}

// NewSession creates a signed-out session. store may be nil for a session
// that is never persisted.
func NewSession(store *SessionStore, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{store: store, logger: logger, now: time.Now}
}

// Restore loads a persisted session. An expired one is discarded.
func (s *Session) Restore() error {
	if s.store == nil {
		return nil
	}
	data, err := s.store.Load()
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}
	if data.expired(s.now()) {
		s.logger.Info("Stored session expired, discarding", zap.Time("expires_at", data.ExpiresAt))
		return s.store.Clear()
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	s.logger.Debug("Session restored", zap.String("path", s.store.Path()))
	return nil
}

// SignIn runs the wallet handshake, verifies its response and stores the
// result. A cancelled handshake leaves the session unchanged.
func (s *Session) SignIn(ctx context.Context, a Authenticator) (*UserData, error) {
	token, err := a.Authenticate(ctx)
	if err != nil {
		if errors.IsCancelled(err) {
			s.logger.Info("Sign-in cancelled")
		}
		return nil, err
	}

	data, err := VerifyAuthResponse(token)
	if err != nil {
		s.logger.Warn("Rejected auth response", zap.Error(err))
		return nil, err
	}

	// Persist first so a failed save leaves the session signed out.
	if s.store != nil {
		if err := s.store.Save(data); err != nil {
			return nil, err
		}
	}

	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	s.logger.Info("Signed in",
		zap.String("mainnet", data.Addresses["mainnet"]),
		zap.String("testnet", data.Addresses["testnet"]))
	return data.clone(), nil
}

// SignOut forgets the user locally. Wallet-side grants are not revoked.
func (s *Session) SignOut() error {
	s.mu.Lock()
	s.data = nil
	s.mu.Unlock()

	if s.store != nil {
		return s.store.Clear()
	}
	return nil
}

// current returns the live session data, or nil when signed out or expired.
// Callers must hold s.mu.
func (s *Session) current() *UserData {
	if s.data == nil || s.data.expired(s.now()) {
		return nil
	}
	return s.data
}

// IsAuthenticated reports whether a non-expired user is signed in.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current() != nil
}

// Address returns the user's address on network ("mainnet" or "testnet").
func (s *Session) Address(network string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.current()
	if d == nil {
		return "", false
	}
	addr, ok := d.Addresses[network]
	return addr, ok && addr != ""
}

// AuthToken returns the raw auth-response token for API requests.
func (s *Session) AuthToken() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.current()
	if d == nil {
		return "", false
	}
	return d.AuthToken, true
}

// UserData returns a copy of the session data, or nil when signed out.
func (s *Session) UserData() *UserData {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d := s.current()
	if d == nil {
		return nil
	}
	return d.clone()
}

// Profile returns the display profile with defaults filled in.
func (s *Session) Profile() (*UserProfile, bool) {
	d := s.UserData()
	if d == nil {
		return nil, false
	}
	return d.Profile(), true
}

// RequireAuthenticated returns an UnauthorizedError when signed out.
func (s *Session) RequireAuthenticated() error {
	if !s.IsAuthenticated() {
		return errors.NewUnauthorizedError("")
	}
	return nil
}
