package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/showtix/showtix-go/internal/domain"
	"github.com/showtix/showtix-go/internal/repository"
	redisrepo "github.com/showtix/showtix-go/internal/repository/redis"
	"golang.org/x/crypto/bcrypt"
)

type Config struct {
	Secret     string
	SessionTTL time.Duration
	BcryptCost int
}

type Service struct {
	users    repository.UserStore
	sessions repository.SessionStore
	limiter  *redisrepo.SlidingWindowLimiter
	cfg      Config
}

// Session is a live authenticated session. The token is an HS256 JWT
// whose jti is registered in the session store; the token stops being
// honored the moment the jti is deleted.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      domain.User
}

func New(
	users repository.UserStore,
	sessions repository.SessionStore,
	limiter *redisrepo.SlidingWindowLimiter,
	cfg Config,
) *Service {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 24 * time.Hour
	}

	if cfg.BcryptCost <= 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}

	return &Service{
		users:    users,
		sessions: sessions,
		limiter:  limiter,
		cfg:      cfg,
	}
}

// Register creates an account and starts a session for it.
//
// Returns:
//   - error: auth.ErrPasswordMismatch if password and confirm differ.
//   - error: auth.ErrUsernameTaken if the username is already in use.
func (s *Service) Register(ctx context.Context, username, email, password, confirm string) (*Session, error) {
	const op = "service.auth.Register"

	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	if password != confirm {
		return nil, fmt.Errorf("%s: %w", op, ErrPasswordMismatch)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	user, err := s.users.CreateUser(ctx, username, email, string(hash))
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, fmt.Errorf("%s: %w", op, ErrUsernameTaken)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return session, nil
}

// Login verifies credentials and starts a session. Unknown usernames
// and wrong passwords fail the same way.
//
// Returns:
//   - error: auth.ErrInvalidCredentials on any credential failure.
//   - error: auth.ErrTooManyAttempts when rlKey exceeds the login rate limit.
func (s *Service) Login(ctx context.Context, username, password, rlKey string) (*Session, error) {
	const op = "service.auth.Login"

	if s.limiter != nil && rlKey != "" {
		ok, _, _, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s: %w", op, ErrTooManyAttempts)
		}
	}

	user, err := s.users.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}

	session, err := s.startSession(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return session, nil
}

// Logout revokes the session behind the token. Revoking an already
// dead session is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	const op = "service.auth.Logout"

	sessionID, _, err := s.parseToken(token)
	if err != nil {
		return fmt.Errorf("%s: %w", op, ErrInvalidSession)
	}

	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Verify resolves a token to its user. The token must parse, carry a
// live session ID, and the session must belong to the token's subject.
//
// Returns:
//   - error: auth.ErrInvalidSession for anything short of a live session.
func (s *Service) Verify(ctx context.Context, token string) (*domain.User, error) {
	const op = "service.auth.Verify"

	sessionID, userID, err := s.parseToken(token)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidSession)
	}

	owner, ok, err := s.sessions.SessionUser(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if !ok || owner != userID {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidSession)
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidSession)
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (s *Service) startSession(ctx context.Context, user *domain.User) (*Session, error) {
	sessionID := uuid.NewString()
	exp := time.Now().UTC().Add(s.cfg.SessionTTL)

	claims := jwt.MapClaims{
		"sub": strconv.FormatInt(user.ID, 10),
		"jti": sessionID,
		"exp": exp.Unix(),
		"iat": time.Now().UTC().Unix(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.Secret))
	if err != nil {
		return nil, err
	}

	if err := s.sessions.SaveSession(ctx, sessionID, user.ID, s.cfg.SessionTTL); err != nil {
		return nil, err
	}

	return &Session{
		Token:     signed,
		ExpiresAt: exp,
		User:      *user,
	}, nil
}

func (s *Service) parseToken(token string) (sessionID string, userID int64, err error) {
	tok, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.Secret), nil
	})
	if err != nil || !tok.Valid {
		return "", 0, ErrInvalidSession
	}

	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", 0, ErrInvalidSession
	}

	sessionID, _ = claims["jti"].(string)
	sub, _ := claims["sub"].(string)

	userID, convErr := strconv.ParseInt(sub, 10, 64)
	if sessionID == "" || convErr != nil {
		return "", 0, ErrInvalidSession
	}

	return sessionID, userID, nil
}
