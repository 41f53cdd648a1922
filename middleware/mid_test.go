package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"ecommerce-backend/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T, keys *auth.Keys) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	m, err := NewMid(keys)
	require.NoError(t, err)

	r := gin.New()
	r.Use(Logger())
	protected := r.Group("/")
	protected.Use(m.Authentication())
	protected.GET("/customer-only", m.Authorize(func(c *gin.Context) {
		claims := c.Request.Context().Value(auth.ClaimsKey).(auth.Claims)
		c.JSON(http.StatusOK, gin.H{"subject": claims.Subject})
	}, auth.RoleCustomer))
	return r
}

func TestAuthentication_MissingHeader(t *testing.T) {
	keys, err := auth.NewKeys("test-secret")
	require.NoError(t, err)
	r := newTestEngine(t, keys)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/customer-only", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthentication_BadToken(t *testing.T) {
	keys, err := auth.NewKeys("test-secret")
	require.NoError(t, err)
	r := newTestEngine(t, keys)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/customer-only", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthentication_ValidToken(t *testing.T) {
	keys, err := auth.NewKeys("test-secret")
	require.NoError(t, err)
	r := newTestEngine(t, keys)

	token, err := keys.GenerateToken("42", "jane@example.com", auth.RoleCustomer)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/customer-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subject":"42"`)
}

func TestAuthorize_WrongRole(t *testing.T) {
	keys, err := auth.NewKeys("test-secret")
	require.NoError(t, err)
	r := newTestEngine(t, keys)

	token, err := keys.GenerateToken("1", "root@example.com", auth.RoleAdmin)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/customer-only", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}
