package app

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/quotewall/quotewall/internal/domain"
	"github.com/quotewall/quotewall/internal/platform/logging"
	"github.com/quotewall/quotewall/internal/ports"
)

// TokenPair is the credential set returned by login and refresh.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64 // access token lifetime in seconds
}

// AuthService handles registration, login and token lifecycle. Access tokens
// are HS256 JWTs; refresh tokens are opaque and stored hashed.
type AuthService struct {
	users      ports.UserRepository
	tokens     ports.TokenRepository
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// AuthServiceConfig contains dependencies for the auth service.
type AuthServiceConfig struct {
	Users      ports.UserRepository
	Tokens     ports.TokenRepository
	JWTSecret  string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Logger     *slog.Logger
}

// NewAuthService creates an auth service.
func NewAuthService(cfg AuthServiceConfig) *AuthService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &AuthService{
		users:      cfg.Users,
		tokens:     cfg.Tokens,
		secret:     []byte(cfg.JWTSecret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		logger:     logger.With(slog.String("component", "app.AuthService")),
		now:        time.Now,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*domain.User, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))

	if name == "" {
		return nil, domain.NewValidationError("name", "cannot be empty")
	}

	if email == "" {
		return nil, domain.NewValidationError("email", "cannot be empty")
	}

	if len(password) < 8 {
		return nil, domain.NewValidationError("password", "must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("registering user: %w", err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "user registered",
		slog.String("user_id", user.ID.String()),
	)

	return user, nil
}

// Login verifies credentials and issues a token pair. Unknown emails and bad
// passwords return the same unauthorized error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewUnauthorizedError("invalid credentials")
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.NewUnauthorizedError("invalid credentials")
	}

	return s.issueTokens(ctx, user.ID)
}

// Refresh rotates a refresh token: the presented token is revoked and a new
// pair is issued.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	record, err := s.lookupRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Revoke(ctx, record.ID); err != nil {
		return nil, fmt.Errorf("revoking refresh token: %w", err)
	}

	return s.issueTokens(ctx, record.UserID)
}

// Logout revokes the presented refresh token.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	record, err := s.lookupRefreshToken(ctx, refreshToken)
	if err != nil {
		return err
	}

	if err := s.tokens.Revoke(ctx, record.ID); err != nil {
		return fmt.Errorf("revoking refresh token: %w", err)
	}

	return nil
}

// Profile returns the account behind an access token subject.
func (s *AuthService) Profile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading profile: %w", err)
	}

	return user, nil
}

// ParseAccessToken validates an access token and returns its subject.
func (s *AuthService) ParseAccessToken(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return uuid.Nil, domain.NewUnauthorizedError("invalid access token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, domain.NewUnauthorizedError("invalid token subject")
	}

	return userID, nil
}

// issueTokens creates an access JWT and a stored, hashed refresh token.
func (s *AuthService) issueTokens(ctx context.Context, userID uuid.UUID) (*TokenPair, error) {
	now := s.now()

	claims := jwt.RegisteredClaims{
		Subject:   userID.String(),
		Issuer:    s.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}

	refreshToken, err := newOpaqueToken()
	if err != nil {
		return nil, fmt.Errorf("generating refresh token: %w", err)
	}

	record := &domain.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: now.Add(s.refreshTTL),
	}

	if err := s.tokens.Store(ctx, record); err != nil {
		return nil, fmt.Errorf("storing refresh token: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

// lookupRefreshToken resolves a presented refresh token to a live record.
func (s *AuthService) lookupRefreshToken(ctx context.Context, refreshToken string) (*domain.RefreshToken, error) {
	record, err := s.tokens.GetByHash(ctx, hashToken(refreshToken))
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.NewUnauthorizedError("unknown refresh token")
		}
		return nil, fmt.Errorf("looking up refresh token: %w", err)
	}

	if record.Revoked {
		return nil, domain.NewUnauthorizedError("refresh token revoked")
	}

	if record.Expired(s.now()) {
		return nil, domain.NewUnauthorizedError("refresh token expired")
	}

	return record, nil
}

// newOpaqueToken returns 32 bytes of hex-encoded randomness.
func newOpaqueToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	return hex.EncodeToString(buf), nil
}

// hashToken returns the hex SHA-256 of a refresh token. Only hashes are
// persisted.
func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
