package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vendsight/vendsight-backend/internal/app/repository"
	"github.com/vendsight/vendsight-backend/internal/db"
	"github.com/vendsight/vendsight-backend/pkg/util"
)

func setupAuthTest(t *testing.T) AuthService {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	return NewAuthService(repository.NewUserRepository(testDB), "test-secret", time.Hour)
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	service := setupAuthTest(t)

	user, token, err := service.Register("op@example.com", "secret123", "Acme Vending")
	require.NoError(t, err)
	require.NotZero(t, user.ID)
	assert.Equal(t, "Acme Vending", user.BusinessName)
	assert.False(t, user.OnboardingCompleted)
	assert.NotEqual(t, "secret123", user.Password)

	claims, err := util.ValidateToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)

	loggedIn, _, err := service.Login("op@example.com", "secret123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	service := setupAuthTest(t)

	_, _, err := service.Register("op@example.com", "secret123", "")
	require.NoError(t, err)

	_, _, err = service.Register("op@example.com", "other", "")
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	service := setupAuthTest(t)

	_, _, err := service.Register("op@example.com", "secret123", "")
	require.NoError(t, err)

	_, _, err = service.Login("op@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// unknown account gets the same error as a wrong password
	_, _, err = service.Login("nobody@example.com", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_UpdateProfile(t *testing.T) {
	service := setupAuthTest(t)

	user, _, err := service.Register("op@example.com", "secret123", "")
	require.NoError(t, err)

	updated, err := service.UpdateProfile(user.ID, "Acme Vending", "Acme Inc", "America/Chicago")
	require.NoError(t, err)
	assert.Equal(t, "Acme Vending", updated.BusinessName)
	assert.Equal(t, "Acme Inc", updated.CompanyName)
	assert.Equal(t, "America/Chicago", updated.Timezone)
}

func TestAuthService_MarkOnboardingCompleted(t *testing.T) {
	service := setupAuthTest(t)

	user, _, err := service.Register("op@example.com", "secret123", "")
	require.NoError(t, err)

	require.NoError(t, service.MarkOnboardingCompleted(user.ID))
	require.NoError(t, service.MarkOnboardingCompleted(user.ID)) // idempotent

	refreshed, err := service.GetUserByID(user.ID)
	require.NoError(t, err)
	assert.True(t, refreshed.OnboardingCompleted)
}
