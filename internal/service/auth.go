// Package service contains application services for authentication, users and reports.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/grantlemons/expenser/internal/crypto"
	"github.com/grantlemons/expenser/internal/errs"
	"github.com/grantlemons/expenser/internal/limiter"
	"github.com/grantlemons/expenser/internal/model"
	"github.com/grantlemons/expenser/internal/repository"
)

// Tokens is the result of a successful login.
type Tokens struct {
	AccessToken string
	ExpiresAt   time.Time
}

// Registration is the submitted form of a new account.
type Registration struct {
	Username       string
	Email          string
	Password       string
	ProfilePicture []byte
}

// AuthService defines account creation and authentication.
type AuthService interface {
	// Register creates a new user with a hashed password.
	Register(ctx context.Context, r Registration) (model.UserInfo, error)
	// LoginWithIP applies rate limiting and authenticates the user.
	LoginWithIP(ctx context.Context, username, password, ip string) (Tokens, model.UserInfo, error)
	// ChangePassword replaces the password of userID.
	ChangePassword(ctx context.Context, userID int64, password string) error
	// Authenticate verifies an access token and returns its user ID.
	Authenticate(token string) (int64, error)
}

type AuthServiceImpl struct {
	users     repository.UserRepository
	hasher    crypto.Hasher
	signKey   []byte
	accessTTL time.Duration
	lim       limiter.Limiter
	now       func() time.Time
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(users repository.UserRepository, hasher crypto.Hasher, signKey []byte, accessTTL time.Duration, lim limiter.Limiter) *AuthServiceImpl {
	if lim == nil {
		lim = limiter.Nop{}
	}
	return &AuthServiceImpl{users: users, hasher: hasher, signKey: signKey, accessTTL: accessTTL, lim: lim, now: time.Now}
}

// Register validates the form, hashes the password and inserts the user.
// A taken username or email fails with errs.ErrAlreadyExists.
func (s *AuthServiceImpl) Register(ctx context.Context, r Registration) (model.UserInfo, error) {
	if strings.TrimSpace(r.Username) == "" || strings.TrimSpace(r.Email) == "" || r.Password == "" {
		return model.UserInfo{}, fmt.Errorf("%w: empty username/email/password", errs.ErrInvalid)
	}
	hash, err := s.hasher.Hash(r.Password)
	if err != nil {
		return model.UserInfo{}, fmt.Errorf("hash password: %w", err)
	}
	b := model.NewUserBuilder().Username(r.Username).Email(r.Email).PasswordHash(hash)
	if r.ProfilePicture != nil {
		b.ProfilePicture(r.ProfilePicture)
	}
	nu, err := b.Build()
	if err != nil {
		return model.UserInfo{}, err
	}
	u, err := s.users.Insert(ctx, nu)
	if err != nil {
		return model.UserInfo{}, err
	}
	return u.Info(), nil
}

// LoginWithIP authenticates with rate limiting by (username, ip).
func (s *AuthServiceImpl) LoginWithIP(ctx context.Context, username, password, ip string) (Tokens, model.UserInfo, error) {
	ipHash := limiter.HashIP(ip)

	allowed, _, err := s.lim.Allow(ctx, username, ipHash)
	if err != nil {
		return Tokens{}, model.UserInfo{}, err
	}
	if !allowed {
		return Tokens{}, model.UserInfo{}, errs.ErrRateLimited
	}

	u, err := s.users.GetByUsername(ctx, username)
	if err != nil && !errors.Is(err, errs.ErrNotFound) {
		return Tokens{}, model.UserInfo{}, err
	}
	if err != nil || !s.hasher.Verify(password, u.PasswordHash) {
		if blocked, _, ferr := s.lim.Failure(ctx, username, ipHash); ferr == nil && blocked {
			return Tokens{}, model.UserInfo{}, errs.ErrRateLimited
		}
		// unknown user and wrong password look the same
		return Tokens{}, model.UserInfo{}, errs.ErrUnauthorized
	}

	_ = s.lim.Success(ctx, username, ipHash)

	tok, err := s.issueAccessToken(u.ID)
	if err != nil {
		return Tokens{}, model.UserInfo{}, err
	}
	return tok, u.Info(), nil
}

// ChangePassword hashes and stores a new password.
func (s *AuthServiceImpl) ChangePassword(ctx context.Context, userID int64, password string) error {
	if password == "" {
		return fmt.Errorf("%w: empty password", errs.ErrInvalid)
	}
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	_, err = s.users.UpdatePassword(ctx, userID, hash)
	return err
}

// issueAccessToken creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueAccessToken(userID int64) (Tokens, error) {
	now := s.now()
	exp := now.Add(s.accessTTL)
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.signKey)
	if err != nil {
		return Tokens{}, fmt.Errorf("sign token: %w", err)
	}
	return Tokens{AccessToken: signed, ExpiresAt: exp}, nil
}

// Authenticate verifies HS256 and expiry, and returns sub as a user ID.
func (s *AuthServiceImpl) Authenticate(token string) (int64, error) {
	var claims jwt.RegisteredClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return s.signKey, nil
	}, jwt.WithLeeway(30*time.Second), jwt.WithTimeFunc(s.now))
	if err != nil || !parsed.Valid {
		return 0, fmt.Errorf("%w: invalid token", errs.ErrUnauthorized)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: bad subject", errs.ErrUnauthorized)
	}
	return id, nil
}
