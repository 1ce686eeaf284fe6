package store

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore(t *testing.T) {
	t.Run("SuccessfulCreation", func(t *testing.T) {
		s, err := NewStore("Sari-Sari Central", 123456789)
		require.NoError(t, err)
		require.NotNil(t, s)

		assert.NotEqual(t, uuid.Nil, s.ID)
		assert.Equal(t, "Sari-Sari Central", s.Name)
		assert.Equal(t, int64(123456789), s.TelegramID)
		assert.False(t, s.CreatedAt.IsZero())
	})

	t.Run("TrimsName", func(t *testing.T) {
		s, err := NewStore("  Branch 2  ", 0)
		require.NoError(t, err)
		assert.Equal(t, "Branch 2", s.Name)
	})

	t.Run("EmptyNameRejected", func(t *testing.T) {
		s, err := NewStore("   ", 1)
		assert.Nil(t, s)
		assert.ErrorIs(t, err, ErrEmptyStoreName)
	})
}

func TestEmployee_Onboarding(t *testing.T) {
	storeID := uuid.New()

	emp, err := NewEmployee(storeID, "Maria")
	require.NoError(t, err)
	assert.Equal(t, storeID, emp.StoreID)
	assert.False(t, emp.BotConfirmed)
	assert.Empty(t, emp.OnboardToken)

	token := emp.IssueOnboardToken()
	require.NotEmpty(t, token)
	assert.Equal(t, token, emp.OnboardToken)

	// Re-issuing replaces the token
	second := emp.IssueOnboardToken()
	assert.NotEqual(t, token, second)

	emp.CompleteOnboarding(987654321)
	assert.Equal(t, int64(987654321), emp.TelegramID)
	assert.True(t, emp.BotConfirmed)
	assert.Empty(t, emp.OnboardToken, "token must be burned after onboarding")
}

func TestNewEmployee_EmptyName(t *testing.T) {
	emp, err := NewEmployee(uuid.New(), "")
	assert.Nil(t, emp)
	assert.ErrorIs(t, err, ErrEmptyEmployeeName)
}
