// internal/domain/user/service.go
package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront/internal/config"
	"github.com/your-org/storefront/internal/pkg/auth"
	"gorm.io/gorm"
)

// Sentinel errors surfaced to the transport layer
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmailTaken         = errors.New("user with this email already exists")
	// ErrAccountRecordMissing means the credentials verified but the
	// identity row is gone (deleted between credential check and fetch).
	// Callers must treat the session as signed out.
	ErrAccountRecordMissing = errors.New("account record missing")
	ErrUserNotFound         = errors.New("user not found")
)

// Service handles identity and session operations
type Service struct {
	db          *gorm.DB
	redisClient *redis.Client
	config      *config.Config
	jwtManager  *auth.JWTManager
	passwordMgr *auth.PasswordManager
	stream      *Stream
}

// NewService creates a new user service
func NewService(db *gorm.DB, redisClient *redis.Client, cfg *config.Config, stream *Stream) *Service {
	return &Service{
		db:          db,
		redisClient: redisClient,
		config:      cfg,
		jwtManager:  auth.NewJWTManager(cfg),
		passwordMgr: auth.NewPasswordManager(cfg),
		stream:      stream,
	}
}

// SignUpRequest represents a sign-up request
type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	FullName string `json:"full_name" binding:"required,min=2,max=255"`
}

// SignInRequest represents a sign-in request
type SignInRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequest represents a password change request
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=8"`
}

// RefreshTokenRequest represents a token refresh request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	User         *User  `json:"user"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// SignUp registers a new identity or claims an existing password-less row.
// A row created earlier by the OAuth flow (or seeded with a role) keeps its
// role; only the password and name are filled in. A row that already has a
// password is a conflict.
func (s *Service) SignUp(ctx context.Context, req *SignUpRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	hashed, err := s.passwordMgr.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	var identity User
	err = s.db.WithContext(ctx).Where("email = ?", email).First(&identity).Error
	switch {
	case err == nil:
		if identity.Password != "" {
			return nil, ErrEmailTaken
		}
		// Claim the existing row, preserving its role.
		updates := map[string]interface{}{
			"password":  hashed,
			"full_name": req.FullName,
		}
		if err := s.db.WithContext(ctx).Model(&identity).Updates(updates).Error; err != nil {
			return nil, fmt.Errorf("failed to update user: %w", err)
		}
		identity.Password = hashed
		identity.FullName = req.FullName
	case errors.Is(err, gorm.ErrRecordNotFound):
		identity = User{
			Email:    email,
			Password: hashed,
			FullName: req.FullName,
			Role:     RoleUser,
		}
		if err := s.db.WithContext(ctx).Create(&identity).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return s.startSession(ctx, &identity)
}

// SignIn verifies credentials and establishes a session. The identity row is
// re-fetched by ID after the credential check; if it vanished in between the
// session is not established and ErrAccountRecordMissing is returned.
func (s *Service) SignIn(ctx context.Context, req *SignInRequest) (*AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	var identity User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&identity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if identity.Password == "" {
		// OAuth-only account, no password to verify against.
		return nil, ErrInvalidCredentials
	}
	if err := s.passwordMgr.VerifyPassword(req.Password, identity.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	var fresh User
	if err := s.db.WithContext(ctx).Where("id = ?", identity.ID).First(&fresh).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountRecordMissing
		}
		return nil, fmt.Errorf("failed to load user record: %w", err)
	}

	return s.startSession(ctx, &fresh)
}

// SignOut revokes the stored refresh token and publishes the signed-out event
func (s *Service) SignOut(ctx context.Context, userID string) error {
	if err := s.redisClient.Del(ctx, s.refreshTokenKey(userID)).Err(); err != nil {
		logrus.WithError(err).WithField("user_id", userID).Warn("Failed to revoke refresh token")
	}

	s.stream.Publish(Event{Type: EventSignedOut, User: &User{ID: userID}})
	return nil
}

// RefreshToken exchanges a valid refresh token for a new token pair
func (s *Service) RefreshToken(ctx context.Context, req *RefreshTokenRequest) (*AuthResponse, error) {
	claims, err := s.jwtManager.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}

	stored, err := s.redisClient.Get(ctx, s.refreshTokenKey(claims.UserID)).Result()
	if err != nil || stored != req.RefreshToken {
		return nil, fmt.Errorf("refresh token revoked or expired")
	}

	var identity User
	if err := s.db.WithContext(ctx).Where("id = ?", claims.UserID).First(&identity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountRecordMissing
		}
		return nil, fmt.Errorf("failed to load user record: %w", err)
	}

	return s.issueTokens(ctx, &identity)
}

// GetUser loads an identity by ID
func (s *Service) GetUser(ctx context.Context, userID string) (*User, error) {
	var identity User
	if err := s.db.WithContext(ctx).Where("id = ?", userID).First(&identity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &identity, nil
}

// ChangePassword updates the password after verifying the current one
func (s *Service) ChangePassword(ctx context.Context, userID string, req *ChangePasswordRequest) error {
	identity, err := s.GetUser(ctx, userID)
	if err != nil {
		return err
	}

	if identity.Password == "" {
		return fmt.Errorf("account has no password set")
	}
	if err := s.passwordMgr.VerifyPassword(req.CurrentPassword, identity.Password); err != nil {
		return fmt.Errorf("current password is incorrect")
	}

	hashed, err := s.passwordMgr.HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.db.WithContext(ctx).Model(identity).Update("password", hashed).Error; err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// UpsertIdentity finds or creates the identity row for an OAuth sign-in.
// Existing rows keep their role and password; only the name is filled in
// when it was previously empty.
func (s *Service) UpsertIdentity(ctx context.Context, email, fullName string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var identity User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&identity).Error
	switch {
	case err == nil:
		if identity.FullName == "" && fullName != "" {
			if err := s.db.WithContext(ctx).Model(&identity).Update("full_name", fullName).Error; err != nil {
				return nil, fmt.Errorf("failed to update user: %w", err)
			}
			identity.FullName = fullName
		}
		return &identity, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		identity = User{
			Email:    email,
			FullName: fullName,
			Role:     RoleUser,
		}
		if err := s.db.WithContext(ctx).Create(&identity).Error; err != nil {
			return nil, fmt.Errorf("failed to create user: %w", err)
		}
		return &identity, nil
	default:
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
}

// StartSessionFor establishes a session for an already-resolved identity.
// Used by the OAuth flow after UpsertIdentity.
func (s *Service) StartSessionFor(ctx context.Context, identity *User) (*AuthResponse, error) {
	return s.startSession(ctx, identity)
}

// Private helper methods

func (s *Service) startSession(ctx context.Context, identity *User) (*AuthResponse, error) {
	resp, err := s.issueTokens(ctx, identity)
	if err != nil {
		return nil, err
	}

	s.stream.Publish(Event{Type: EventSignedIn, User: identity})

	logrus.WithFields(logrus.Fields{
		"user_id": identity.ID,
		"email":   identity.Email,
	}).Info("Session established")

	return resp, nil
}

func (s *Service) issueTokens(ctx context.Context, identity *User) (*AuthResponse, error) {
	accessToken, err := s.jwtManager.GenerateAccessToken(identity.ID, identity.Email, identity.Role)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := s.jwtManager.GenerateRefreshToken(identity.ID, identity.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	// Store the refresh token so sign-out can revoke it
	err = s.redisClient.Set(ctx, s.refreshTokenKey(identity.ID), refreshToken, s.config.JWT.RefreshTokenExpiry).Err()
	if err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &AuthResponse{
		User:         identity,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.JWT.AccessTokenExpiry / time.Second),
	}, nil
}

func (s *Service) refreshTokenKey(userID string) string {
	return fmt.Sprintf("refresh_token:%s", userID)
}
