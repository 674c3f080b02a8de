// internal/domain/user/service_test.go
package user

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/storefront/internal/config"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&User{}, &Address{}))

	mr := miniredis.RunT(t)
	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	cfg := &config.Config{}
	cfg.App.Name = "storefront-test"
	cfg.JWT.Secret = "test-secret-key-that-is-long-enough-0123"
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.JWT.RefreshTokenExpiry = 24 * time.Hour
	cfg.Security.BcryptCost = bcrypt.MinCost

	return NewService(db, redisClient, cfg, NewStream()), db
}

func TestSignUpCreatesUserWithDefaultRole(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.SignUp(ctx, &SignUpRequest{
		Email:    "Alice@Example.com",
		Password: "password123",
		FullName: "Alice",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", resp.User.Email)
	assert.Equal(t, RoleUser, resp.User.Role)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
}

func TestSignUpPreservesRoleOfPasswordlessRow(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	// Row created out of band (OAuth first sign-in or seeded admin),
	// no password set.
	seeded := User{Email: "boss@example.com", Role: RoleAdmin}
	require.NoError(t, db.Create(&seeded).Error)

	resp, err := svc.SignUp(ctx, &SignUpRequest{
		Email:    "boss@example.com",
		Password: "password123",
		FullName: "The Boss",
	})
	require.NoError(t, err)

	assert.Equal(t, seeded.ID, resp.User.ID)
	assert.Equal(t, RoleAdmin, resp.User.Role)
	assert.Equal(t, "The Boss", resp.User.FullName)
}

func TestSignUpRejectsExistingPasswordAccount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, &SignUpRequest{Email: "a@b.com", Password: "password123", FullName: "A"})
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, &SignUpRequest{Email: "a@b.com", Password: "other-password", FullName: "B"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignInSuccessAndFailure(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, &SignUpRequest{Email: "a@b.com", Password: "password123", FullName: "A"})
	require.NoError(t, err)

	resp, err := svc.SignIn(ctx, &SignInRequest{Email: "a@b.com", Password: "password123"})
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", resp.User.Email)

	_, err = svc.SignIn(ctx, &SignInRequest{Email: "a@b.com", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn(ctx, &SignInRequest{Email: "nobody@b.com", Password: "password123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignInRejectsOAuthOnlyAccount(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UpsertIdentity(ctx, "oauth@example.com", "OAuth User")
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, &SignInRequest{Email: "oauth@example.com", Password: "anything123"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignInPublishesEvent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	events, cancel := svc.stream.Subscribe()
	defer cancel()

	_, err := svc.SignUp(ctx, &SignUpRequest{Email: "a@b.com", Password: "password123", FullName: "A"})
	require.NoError(t, err)

	evt := <-events
	assert.Equal(t, EventSignedIn, evt.Type)
	require.NotNil(t, evt.User)
	assert.Equal(t, "a@b.com", evt.User.Email)
}

func TestSignOutPublishesEventWithUserID(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	signedUp, err := svc.SignUp(ctx, &SignUpRequest{Email: "a@b.com", Password: "password123", FullName: "A"})
	require.NoError(t, err)

	events, cancel := svc.stream.Subscribe()
	defer cancel()

	require.NoError(t, svc.SignOut(ctx, signedUp.User.ID))

	evt := <-events
	assert.Equal(t, EventSignedOut, evt.Type)
	require.NotNil(t, evt.User)
	assert.Equal(t, signedUp.User.ID, evt.User.ID)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	signedUp, err := svc.SignUp(ctx, &SignUpRequest{Email: "a@b.com", Password: "password123", FullName: "A"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(ctx, &RefreshTokenRequest{RefreshToken: signedUp.RefreshToken})
	require.NoError(t, err)
	assert.Equal(t, signedUp.User.ID, refreshed.User.ID)
	assert.NotEmpty(t, refreshed.AccessToken)
}

func TestRefreshTokenRejectedAfterSignOut(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	signedUp, err := svc.SignUp(ctx, &SignUpRequest{Email: "a@b.com", Password: "password123", FullName: "A"})
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, signedUp.User.ID))

	_, err = svc.RefreshToken(ctx, &RefreshTokenRequest{RefreshToken: signedUp.RefreshToken})
	assert.Error(t, err)
}

func TestRefreshTokenMissingAccountRecord(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	signedUp, err := svc.SignUp(ctx, &SignUpRequest{Email: "a@b.com", Password: "password123", FullName: "A"})
	require.NoError(t, err)

	// Identity row deleted while the session token is still valid
	require.NoError(t, db.Delete(&User{}, "id = ?", signedUp.User.ID).Error)

	_, err = svc.RefreshToken(ctx, &RefreshTokenRequest{RefreshToken: signedUp.RefreshToken})
	assert.ErrorIs(t, err, ErrAccountRecordMissing)
}

func TestUpsertIdentityReusesRowAndRole(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.UpsertIdentity(ctx, "Repeat@Example.com", "")
	require.NoError(t, err)
	assert.Equal(t, RoleUser, first.Role)

	second, err := svc.UpsertIdentity(ctx, "repeat@example.com", "Filled In")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "Filled In", second.FullName)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	signedUp, err := svc.SignUp(ctx, &SignUpRequest{Email: "a@b.com", Password: "password123", FullName: "A"})
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, signedUp.User.ID, &ChangePasswordRequest{
		CurrentPassword: "wrong",
		NewPassword:     "newpassword123",
	})
	assert.Error(t, err)

	err = svc.ChangePassword(ctx, signedUp.User.ID, &ChangePasswordRequest{
		CurrentPassword: "password123",
		NewPassword:     "newpassword123",
	})
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, &SignInRequest{Email: "a@b.com", Password: "newpassword123"})
	assert.NoError(t, err)
}
