package auth

import (
	"context"
	"testing"

	pkgauth "github.com/assetdesk/assetdesk-backend/pkg/auth"
	"github.com/assetdesk/assetdesk-backend/pkg/auth/session"
	"github.com/assetdesk/assetdesk-backend/pkg/config"
	"github.com/assetdesk/assetdesk-backend/pkg/db/models"
	pkgerrors "github.com/assetdesk/assetdesk-backend/pkg/errors"
	"github.com/assetdesk/assetdesk-backend/pkg/security"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubUserStore struct {
	byUsername map[string]*models.User
	byID       map[uuid.UUID]*models.User
	saved      []*models.User
}

func (s *stubUserStore) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if u, ok := s.byID[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserStore) FindByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := s.byUsername[username]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserStore) Save(_ context.Context, user *models.User) (int64, error) {
	s.saved = append(s.saved, user)
	return 1, nil
}

type stubSessions struct {
	generated map[string]string
	rotateErr error
	revoked   []string
}

func (s *stubSessions) Generate(_ context.Context, _ uuid.UUID, accessID string) (string, error) {
	if s.generated == nil {
		s.generated = map[string]string{}
	}
	token := "refresh-" + accessID
	s.generated[accessID] = token
	return token, nil
}

func (s *stubSessions) Rotate(_ context.Context, _ uuid.UUID, oldAccessID, provided string) (string, string, error) {
	if s.rotateErr != nil {
		return "", "", s.rotateErr
	}
	if s.generated[oldAccessID] != provided {
		return "", "", session.ErrInvalidRefreshToken
	}
	delete(s.generated, oldAccessID)
	newID := "rotated-" + oldAccessID
	s.generated[newID] = "refresh-" + newID
	return newID, "refresh-" + newID, nil
}

func (s *stubSessions) Revoke(_ context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	delete(s.generated, accessID)
	return nil
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:            "test-secret",
		Issuer:            "assetdesk-test",
		ExpirationMinutes: 15,
	}
}

func newAuthFixture(t *testing.T) (Service, *stubUserStore, *stubSessions, *models.User) {
	t.Helper()
	pwCfg := config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
	hash, err := security.HashPassword("binhnv@01012000", pwCfg)
	require.NoError(t, err)

	user := &models.User{
		ID:           uuid.New(),
		Username:     "binhnv",
		PasswordHash: hash,
		FirstLogin:   true,
		Role:         &models.Role{ID: uuid.New(), Name: models.RoleStaff},
	}
	users := &stubUserStore{
		byUsername: map[string]*models.User{user.Username: user},
		byID:       map[uuid.UUID]*models.User{user.ID: user},
	}
	sessions := &stubSessions{}

	svc, err := NewService(ServiceParams{
		Users:          users,
		SessionManager: sessions,
		JWTConfig:      testJWTConfig(),
		PasswordConfig: pwCfg,
	})
	require.NoError(t, err)
	return svc, users, sessions, user
}

func TestLoginIssuesTokenPair(t *testing.T) {
	svc, _, sessions, user := newAuthFixture(t)

	resp, err := svc.Login(context.Background(), LoginRequest{Username: "binhnv", Password: "binhnv@01012000"})
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.NotEmpty(t, resp.RefreshToken)
	require.True(t, resp.FirstLogin)
	require.Equal(t, models.RoleStaff, resp.Role)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, user.ID, claims.UserID)
	require.Contains(t, sessions.generated, claims.ID)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _, _, _ := newAuthFixture(t)
	ctx := context.Background()

	_, err := svc.Login(ctx, LoginRequest{Username: "binhnv", Password: "wrong"})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))

	_, err = svc.Login(ctx, LoginRequest{Username: "ghost", Password: "whatever"})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestRefreshRotatesSession(t *testing.T) {
	svc, _, sessions, _ := newAuthFixture(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Username: "binhnv", Password: "binhnv@01012000"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	require.NotEqual(t, login.AccessToken, refreshed.AccessToken)
	require.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The old pair is gone; replaying it must fail.
	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
	require.Len(t, sessions.generated, 1)
}

func TestRefreshRejectsDisabledUser(t *testing.T) {
	svc, users, _, user := newAuthFixture(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Username: "binhnv", Password: "binhnv@01012000"})
	require.NoError(t, err)

	delete(users.byID, user.ID)
	_, err = svc.Refresh(ctx, RefreshRequest{
		AccessToken:  login.AccessToken,
		RefreshToken: login.RefreshToken,
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
}

func TestChangePasswordClearsFirstLogin(t *testing.T) {
	svc, users, _, user := newAuthFixture(t)
	ctx := context.Background()

	err := svc.ChangePassword(ctx, user.ID, ChangePasswordRequest{
		OldPassword: "binhnv@01012000",
		NewPassword: "correct horse battery",
	})
	require.NoError(t, err)
	require.Len(t, users.saved, 1)
	require.False(t, users.saved[0].FirstLogin)

	ok, err := security.VerifyPassword("correct horse battery", users.saved[0].PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestChangePasswordRequiresCurrentPassword(t *testing.T) {
	svc, users, _, user := newAuthFixture(t)

	err := svc.ChangePassword(context.Background(), user.ID, ChangePasswordRequest{
		OldPassword: "wrong",
		NewPassword: "something else",
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeUnauthorized))
	require.Empty(t, users.saved)
}

func TestChangePasswordRejectsReuse(t *testing.T) {
	svc, _, _, user := newAuthFixture(t)

	err := svc.ChangePassword(context.Background(), user.ID, ChangePasswordRequest{
		OldPassword: "binhnv@01012000",
		NewPassword: "binhnv@01012000",
	})
	require.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestLogoutRevokesSession(t *testing.T) {
	svc, _, sessions, _ := newAuthFixture(t)
	ctx := context.Background()

	login, err := svc.Login(ctx, LoginRequest{Username: "binhnv", Password: "binhnv@01012000"})
	require.NoError(t, err)

	claims, err := pkgauth.ParseAccessToken(testJWTConfig(), login.AccessToken)
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, claims.ID))
	require.Equal(t, []string{claims.ID}, sessions.revoked)
	require.Empty(t, sessions.generated)
}
