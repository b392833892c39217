package auth

import (
	"strconv"
	"sync"

	"github.com/openvoice/feedback-service/internal/config"
	apperrors "github.com/openvoice/feedback-service/pkg/util"
)

// Session abstracts the admin authentication mechanism so the dashboard gate
// can be backed by a real token scheme or a local flag without touching its
// consumers. The gate is a presentation concern, not a hard security
// boundary.
type Session interface {
	// Login exchanges credentials for an opaque session token.
	Login(username, password string) (string, error)
	// IsAuthenticated reports whether the token denotes a live session.
	IsAuthenticated(token string) bool
	// Logout invalidates the token. Unknown tokens are ignored.
	Logout(token string)
}

// jwtSession backs the gate with signed JWTs and a single configured admin
// credential. Logout keeps a revocation set because the tokens themselves
// are stateless.
type jwtSession struct {
	tokens       *TokenManager
	username     string
	passwordHash string

	mu      sync.Mutex
	revoked map[string]struct{}
}

// NewJWTSession builds the production session from config. The admin
// password is hashed once at startup so the plaintext is not kept around.
func NewJWTSession(cfg config.AuthConfig) (Session, error) {
	hash, err := HashPassword(cfg.AdminPassword, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	return &jwtSession{
		tokens:       NewTokenManager(cfg.JWTSecret, cfg.AccessTokenTTLMinutes),
		username:     cfg.AdminUsername,
		passwordHash: hash,
		revoked:      make(map[string]struct{}),
	}, nil
}

func (s *jwtSession) Login(username, password string) (string, error) {
	if username != s.username {
		return "", apperrors.NewUnauthorized("invalid credentials")
	}
	if err := ComparePassword(s.passwordHash, password); err != nil {
		return "", apperrors.NewUnauthorized("invalid credentials")
	}
	token, _, err := s.tokens.GenerateToken(username)
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	return token, nil
}

func (s *jwtSession) IsAuthenticated(token string) bool {
	s.mu.Lock()
	_, revoked := s.revoked[token]
	s.mu.Unlock()
	if revoked {
		return false
	}
	_, err := s.tokens.ParseToken(token)
	return err == nil
}

func (s *jwtSession) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[token] = struct{}{}
}

// memorySession is a local-flag session for tests and offline runs.
type memorySession struct {
	username string
	password string

	mu     sync.Mutex
	active map[string]struct{}
	nextID int
}

// NewMemorySession builds an in-memory session gate.
func NewMemorySession(username, password string) Session {
	return &memorySession{
		username: username,
		password: password,
		active:   make(map[string]struct{}),
	}
}

func (s *memorySession) Login(username, password string) (string, error) {
	if username != s.username || password != s.password {
		return "", apperrors.NewUnauthorized("invalid credentials")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	token := "session-" + strconv.Itoa(s.nextID)
	s.active[token] = struct{}{}
	return token, nil
}

func (s *memorySession) IsAuthenticated(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[token]
	return ok
}

func (s *memorySession) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, token)
}
