package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewKeys_EmptySecret(t *testing.T) {
	_, err := NewKeys("")
	assert.Error(t, err)
}

func TestTokenRoundTrip(t *testing.T) {
	keys, err := NewKeys("test-secret")
	require.NoError(t, err)

	token, err := keys.GenerateToken("42", "jane@example.com", RoleCustomer)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := keys.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Subject)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, RoleCustomer, claims.Role)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	keys, err := NewKeys("test-secret")
	require.NoError(t, err)
	otherKeys, err := NewKeys("other-secret")
	require.NoError(t, err)

	token, err := keys.GenerateToken("42", "jane@example.com", RoleAdmin)
	require.NoError(t, err)

	_, err = otherKeys.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	keys, err := NewKeys("test-secret")
	require.NoError(t, err)

	_, err = keys.ValidateToken("not.a.token")
	assert.Error(t, err)
}
