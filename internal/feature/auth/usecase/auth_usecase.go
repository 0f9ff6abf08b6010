package usecase

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"gym_backend/internal/feature/auth/domain/entity"

	"golang.org/x/crypto/bcrypt"
)

// dummyHash is compared against when the email is unknown, so that a login
// for a missing account costs the same as one with a wrong password.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// MaxPasswordBytes is the longest password bcrypt accepts, counted in bytes.
const MaxPasswordBytes = 72

// UserRepository abstracts the user store.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type UserRepository interface {
	// Create assigns the next ID, stamps CreatedAt/UpdatedAt, marks the user active and stores it.
	// It returns ErrEmailAlreadyExists if a user with the same email already exists.
	Create(ctx context.Context, user *entity.User) error

	// FindByEmail retrieves the user whose email exactly equals the argument.
	// It returns ErrUserNotFound if there is none.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByID retrieves a user matching the specified ID.
	// It returns ErrUserNotFound if the user does not exist.
	FindByID(ctx context.Context, id uint) (*entity.User, error)
}

// JWTGenerator defines the interface for JWT token generation.
type JWTGenerator interface {
	// GenerateToken creates a signed token bound to the given session.
	GenerateToken(userID uint, email, sessionID string, expiresAt time.Time) (string, error)
}

// Options tunes password policy and session handling.
type Options struct {
	MinPasswordLength  int
	BcryptCost         int
	SessionTTL         time.Duration
	MaxSessionsPerUser int
}

// DefaultOptions returns the options used when none are configured.
func DefaultOptions() Options {
	return Options{
		MinPasswordLength:  6,
		BcryptCost:         bcrypt.DefaultCost,
		SessionTTL:         24 * time.Hour,
		MaxSessionsPerUser: 5,
	}
}

// RegisterInput carries the fields collected by the registration form.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// ClientMeta describes the client opening a session.
type ClientMeta struct {
	UserAgent string
	IPAddress string
}

// LoginResult is returned by a successful Login.
type LoginResult struct {
	User      *entity.User
	Session   *entity.Session
	Token     string
	ExpiresAt time.Time
}

// AuthUsecase implements registration, the login check and session handling.
type AuthUsecase struct {
	users        UserRepository
	sessions     SessionRepository
	jwtGenerator JWTGenerator
	opts         Options
}

// NewAuthUsecase creates a new AuthUsecase. Zero-valued options fall back to DefaultOptions.
func NewAuthUsecase(users UserRepository, sessions SessionRepository, jwtGenerator JWTGenerator, opts Options) *AuthUsecase {
	def := DefaultOptions()
	if opts.MinPasswordLength <= 0 {
		opts.MinPasswordLength = def.MinPasswordLength
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = def.BcryptCost
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = def.SessionTTL
	}
	return &AuthUsecase{
		users:        users,
		sessions:     sessions,
		jwtGenerator: jwtGenerator,
		opts:         opts,
	}
}

func (u *AuthUsecase) validatePassword(password string) error {
	if len(password) < u.opts.MinPasswordLength {
		return fmt.Errorf("%w: must be at least %d characters long", ErrWeakPassword, u.opts.MinPasswordLength)
	}
	if len(password) > MaxPasswordBytes {
		return fmt.Errorf("%w: must be at most %d bytes", ErrPasswordTooLong, MaxPasswordBytes)
	}
	return nil
}

// Register creates a new account with a bcrypt-hashed password.
// Uniqueness of the email is enforced atomically by the repository.
func (u *AuthUsecase) Register(ctx context.Context, in RegisterInput) (*entity.User, error) {
	if err := u.validatePassword(in.Password); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.opts.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Email:        in.Email,
		PasswordHash: string(hashed),
		FirstName:    optional(in.FirstName),
		LastName:     optional(in.LastName),
	}
	if err := u.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// CheckLogin returns the user when the email exists and the password matches its hash.
// An unknown email and a wrong password both yield ErrInvalidCredentials.
func (u *AuthUsecase) CheckLogin(ctx context.Context, email, password string) (*entity.User, error) {
	user, err := u.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	passwordHash := dummyHash
	if err == nil {
		passwordHash = user.PasswordHash
	}

	// Always compare so both failure paths take the same time.
	compareErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))
	if err != nil || compareErr != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Login checks the credentials, opens a session and signs a token for it.
func (u *AuthUsecase) Login(ctx context.Context, email, password string, meta ClientMeta) (*LoginResult, error) {
	user, err := u.CheckLogin(ctx, email, password)
	if err != nil {
		return nil, err
	}

	session, err := u.openSession(ctx, user.ID, meta)
	if err != nil {
		return nil, err
	}

	token, err := u.jwtGenerator.GenerateToken(user.ID, user.Email, session.ID, session.ExpiresAt)
	if err != nil {
		if revokeErr := u.sessions.Revoke(ctx, session.ID); revokeErr != nil {
			slog.Warn("failed to revoke orphaned session", "session_id", session.ID, "error", revokeErr)
		}
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &LoginResult{
		User:      user,
		Session:   session,
		Token:     token,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (u *AuthUsecase) openSession(ctx context.Context, userID uint, meta ClientMeta) (*entity.Session, error) {
	if u.opts.MaxSessionsPerUser > 0 {
		count, err := u.sessions.CountByUserID(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to count sessions: %w", err)
		}
		if count >= int64(u.opts.MaxSessionsPerUser) {
			if err := u.sessions.DeleteOldestByUserID(ctx, userID); err != nil {
				return nil, fmt.Errorf("failed to evict oldest session: %w", err)
			}
		}
	}

	id, err := newSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	now := time.Now()
	session := &entity.Session{
		ID:        id,
		UserID:    userID,
		UserAgent: meta.UserAgent,
		IPAddress: meta.IPAddress,
		CreatedAt: now,
		ExpiresAt: now.Add(u.opts.SessionTTL),
	}
	if err := u.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return session, nil
}

// ValidateSession reports whether the session is usable by the given user.
func (u *AuthUsecase) ValidateSession(ctx context.Context, sessionID string, userID uint) error {
	session, err := u.sessions.FindByID(ctx, sessionID)
	if err != nil {
		return err
	}
	switch {
	case session.UserID != userID:
		return ErrSessionMismatch
	case session.IsRevoked():
		return ErrSessionRevoked
	case session.IsExpired():
		return ErrSessionExpired
	}
	return nil
}

// Logout revokes a single session.
func (u *AuthUsecase) Logout(ctx context.Context, sessionID string) error {
	return u.sessions.Revoke(ctx, sessionID)
}

// LogoutAll revokes every session of the user.
func (u *AuthUsecase) LogoutAll(ctx context.Context, userID uint) error {
	return u.sessions.RevokeAllByUserID(ctx, userID)
}

// ActiveSessions lists the user's sessions that are neither revoked nor expired.
func (u *AuthUsecase) ActiveSessions(ctx context.Context, userID uint) ([]*entity.Session, error) {
	return u.sessions.FindByUserID(ctx, userID)
}

// CurrentUser looks up the signed-in user by ID.
func (u *AuthUsecase) CurrentUser(ctx context.Context, userID uint) (*entity.User, error) {
	return u.users.FindByID(ctx, userID)
}

// PurgeExpiredSessions deletes expired sessions and returns how many were removed.
func (u *AuthUsecase) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return u.sessions.DeleteExpired(ctx)
}

// RunSessionSweeper calls PurgeExpiredSessions every interval until ctx is done.
func (u *AuthUsecase) RunSessionSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := u.PurgeExpiredSessions(ctx)
			if err != nil {
				slog.Error("session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("expired sessions purged", "count", n)
			}
		}
	}
}

func newSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
