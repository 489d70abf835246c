package identity

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/manarainnovate/Le-Tatche-bois-v280126.01-sub010/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

func validParams() UserParams {
	return UserParams{Email: "  Karim@LeTatcheBois.ma ", Name: " Karim Benali ", Role: RoleCommercial, IsActive: true}
}

func TestNewUser(t *testing.T) {
	t.Run("normalizes and hashes", func(t *testing.T) {
		u, err := NewUser(validParams(), "motdepasse1", testNow)
		require.NoError(t, err)
		assert.Equal(t, "karim@letatchebois.ma", u.Email)
		assert.Equal(t, "Karim Benali", u.Name)
		assert.NotEqual(t, "motdepasse1", u.PasswordHash)
		assert.True(t, u.VerifyPassword("motdepasse1"))
		assert.Equal(t, testNow, u.CreatedAt)
		assert.Equal(t, 1, u.Version)
	})

	t.Run("collects validation details", func(t *testing.T) {
		_, err := NewUser(UserParams{Email: "nope", Role: "BOSS"}, "motdepasse1", testNow)
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, shared.CodeValidationFailed, de.Code)
		assert.Len(t, de.Details, 3)
	})

	t.Run("password policy", func(t *testing.T) {
		_, err := NewUser(validParams(), "court", testNow)
		assert.Error(t, err)
		_, err = NewUser(validParams(), strings.Repeat("x", 73), testNow)
		assert.Error(t, err)
	})
}

func TestAuthenticate(t *testing.T) {
	u, err := NewUser(validParams(), "motdepasse1", testNow)
	require.NoError(t, err)

	assert.NoError(t, u.Authenticate("motdepasse1"))
	assert.ErrorIs(t, u.Authenticate("mauvais"), ErrInvalidCredentials)

	u.IsActive = false
	assert.ErrorIs(t, u.Authenticate("motdepasse1"), ErrAccountDisabled)
	// a wrong password never reveals the account state
	assert.ErrorIs(t, u.Authenticate("mauvais"), ErrInvalidCredentials)

	later := testNow.Add(time.Hour)
	u.RecordLogin("196.200.1.1", later)
	assert.Equal(t, &later, u.LastLoginAt)
	assert.Equal(t, "196.200.1.1", u.LastLoginIP)
}

func TestChangePassword(t *testing.T) {
	u, err := NewUser(validParams(), "motdepasse1", testNow)
	require.NoError(t, err)

	assert.ErrorIs(t, u.ChangePassword("mauvais", "nouveau-mdp", testNow), ErrWrongPassword)
	require.NoError(t, u.ChangePassword("motdepasse1", "nouveau-mdp", testNow))
	assert.True(t, u.VerifyPassword("nouveau-mdp"))
	assert.False(t, u.VerifyPassword("motdepasse1"))
	assert.Equal(t, 2, u.Version)
}

func TestUpdateUser(t *testing.T) {
	u, err := NewUser(validParams(), "motdepasse1", testNow)
	require.NoError(t, err)

	p := validParams()
	p.Role = RoleManager
	p.IsActive = false
	require.NoError(t, u.Update(p, testNow.Add(time.Minute)))
	assert.Equal(t, RoleManager, u.Role)
	assert.False(t, u.IsActive)

	p.Name = ""
	assert.Error(t, u.Update(p, testNow))
}
