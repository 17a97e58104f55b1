package jwt

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNewManager(t *testing.T) {
	secret := "test-secret-key-for-testing-purposes"
	expiry := 7 * 24 * time.Hour

	manager := NewManager(secret, expiry)

	assert.NotNil(t, manager)
	assert.Equal(t, secret, manager.secretKey)
	assert.Equal(t, expiry, manager.tokenDuration)
}

func TestGenerateToken(t *testing.T) {
	manager := NewManager("test-secret", 15*time.Minute)
	userID := uuid.New()

	token, err := manager.GenerateToken(userID, "test@example.com", "testuser")

	assert.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestValidateToken_ValidToken(t *testing.T) {
	manager := NewManager("test-secret", 15*time.Minute)
	userID := uuid.New()

	// Generate token
	token, err := manager.GenerateToken(userID, "test@example.com", "testuser")
	assert.NoError(t, err)

	// Validate token
	claims, err := manager.ValidateToken(token)

	assert.NoError(t, err)
	assert.NotNil(t, claims)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "test@example.com", claims.Email)
	assert.Equal(t, "testuser", claims.Username)
	assert.Equal(t, "gamerchat-auth", claims.Issuer)
}

func TestValidateToken_InvalidSignature(t *testing.T) {
	manager := NewManager("test-secret", 15*time.Minute)
	other := NewManager("different-secret", 15*time.Minute)
	userID := uuid.New()

	token, err := other.GenerateToken(userID, "test@example.com", "testuser")
	assert.NoError(t, err)

	claims, err := manager.ValidateToken(token)

	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestValidateToken_ExpiredToken(t *testing.T) {
	manager := NewManager("test-secret", -1*time.Minute)
	userID := uuid.New()

	token, err := manager.GenerateToken(userID, "test@example.com", "testuser")
	assert.NoError(t, err)

	claims, err := manager.ValidateToken(token)

	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestValidateToken_Garbage(t *testing.T) {
	manager := NewManager("test-secret", 15*time.Minute)

	claims, err := manager.ValidateToken("not-a-token")

	assert.Error(t, err)
	assert.Nil(t, claims)
}

func TestExtractUserID(t *testing.T) {
	manager := NewManager("test-secret", 15*time.Minute)
	userID := uuid.New()

	token, err := manager.GenerateToken(userID, "test@example.com", "testuser")
	assert.NoError(t, err)

	extracted, err := manager.ExtractUserID(token)

	assert.NoError(t, err)
	assert.Equal(t, userID, extracted)
}
