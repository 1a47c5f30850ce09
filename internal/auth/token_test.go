package auth

import (
	"testing"
	"time"

	"github.com/knowara/portal/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "unit-test-secret-that-is-long-enough"

func testAccount() *models.Account {
	return &models.Account{
		ID:       "acc1",
		Username: "jdoe",
		Name:     "Jane Doe",
		Email:    "jdoe@example.com",
		Active:   true,
		Roles: []models.Role{
			{Name: models.RoleUser, Priority: 10},
			{Name: models.RoleAdmin, Priority: 1},
		},
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 24*time.Hour)

	token, err := tm.IssueAccessToken(testAccount())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, "access", claims.Type)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Equal(t, "jdoe@example.com", claims.Email)
	assert.Contains(t, claims.Roles, models.RoleAdmin)
	assert.Contains(t, claims.Roles, models.RoleUser)
	assert.Equal(t, "acc1", claims.Subject)
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 24*time.Hour)

	token, err := tm.IssueRefreshToken("jdoe")
	require.NoError(t, err)

	claims, err := tm.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, "refresh", claims.Type)
	assert.Equal(t, "jdoe", claims.Username)
	assert.Empty(t, claims.Roles)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 24*time.Hour)
	other := NewTokenManager("a-completely-different-signing-secret", 15*time.Minute, 24*time.Hour)

	token, err := tm.IssueAccessToken(testAccount())
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	tm := NewTokenManager(testSecret, -1*time.Minute, 24*time.Hour)

	token, err := tm.IssueAccessToken(testAccount())
	require.NoError(t, err)

	_, err = tm.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	tm := NewTokenManager(testSecret, 15*time.Minute, 24*time.Hour)

	_, err := tm.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}
