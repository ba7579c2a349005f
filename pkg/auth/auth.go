// Package auth implements registration, login and bearer-token verification
// for the forum.
//
// Passwords are hashed with bcrypt (cost 10, tuned so verification takes on
// the order of tens of milliseconds). Tokens are HS256 JWTs carrying the
// user ID as subject plus issuance and expiry claims; the signing secret is
// supplied by configuration at process start and is never hardcoded.
//
// Verification fails closed: a missing header is ErrMissingToken, and every
// other failure mode (bad signature, wrong algorithm, malformed claims,
// expiry) collapses into ErrInvalidToken so callers cannot probe which
// check failed. Login likewise reports one undifferentiated
// ErrAuthenticationFailed for unknown email and wrong password alike.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/models"
	"github.com/arpitdobariya/shipmnt-stackoverflow/pkg/store"
)

var (
	// ErrAuthenticationFailed covers both unknown email and wrong password.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrMissingToken is returned when no token was supplied at all.
	ErrMissingToken = errors.New("token missing")

	// ErrInvalidToken covers every verification failure: bad signature,
	// malformed token, wrong algorithm, or expiry.
	ErrInvalidToken = errors.New("invalid token")
)

const bearerPrefix = "Bearer "

// Service issues and verifies tokens and owns password hashing. It is the
// only component that reads or writes password hashes.
type Service struct {
	store    store.Store
	secret   []byte
	tokenTTL time.Duration
}

func NewService(st store.Store, secret []byte, tokenTTL time.Duration) *Service {
	return &Service{store: st, secret: secret, tokenTTL: tokenTTL}
}

// Register creates a user with a bcrypt-hashed password and returns a fresh
// token bound to the new user. store.ErrDuplicateEmail passes through when
// the email is already registered.
func (s *Service) Register(ctx context.Context, username, email, password string) (string, *models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		return "", nil, err
	}

	token, err := s.issueToken(user.ID)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Login verifies the email/password pair and returns a fresh token. The
// bcrypt comparison runs even though a miss is reported identically to an
// unknown email; only the email lookup short-circuits.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrAuthenticationFailed
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrAuthenticationFailed
	}

	return s.issueToken(user.ID)
}

// Authenticate verifies a raw Authorization header value and returns the
// user ID the token is bound to. A "Bearer " prefix is stripped when
// present; a bare token is accepted as well. This is a pure gate: it never
// touches the store.
func (s *Service) Authenticate(raw string) (models.UserID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.UserID{}, ErrMissingToken
	}
	if len(raw) > len(bearerPrefix) && strings.EqualFold(raw[:len(bearerPrefix)], bearerPrefix) {
		raw = raw[len(bearerPrefix):]
	}

	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return models.UserID{}, ErrInvalidToken
	}

	userID, err := models.ParseUserID(claims.Subject)
	if err != nil {
		return models.UserID{}, ErrInvalidToken
	}
	return userID, nil
}

func (s *Service) issueToken(userID models.UserID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenTTL)),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}
