package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthFlow_RegisterVerifyLogin(t *testing.T) {
	env := setupTestEnv(t)

	// Register
	w := env.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Reader",
		"email":    "reader@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, true, body["email_sent"])

	// Login works before verification; the flag tells the client
	w = env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "reader@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"email_verified":false`)

	// Verify with the emailed code
	code := env.mailer.codes["reader@example.com"]
	require.Len(t, code, 6)
	w = env.doJSON(t, http.MethodPost, "/api/auth/verify-email", "", map[string]string{
		"code": code,
	})
	require.Equal(t, http.StatusOK, w.Code)

	// Login now succeeds and the token works on a protected route
	w = env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "reader@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	token, ok := decodeBody(t, w)["token"].(string)
	require.True(t, ok)

	w = env.doJSON(t, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reader@example.com")
	// Password hash never leaves the API
	assert.NotContains(t, w.Body.String(), "password")
}

func TestAuth_RegisterDuplicate(t *testing.T) {
	env := setupTestEnv(t)
	env.seedVerifiedUser(t, "reader@example.com", "user")

	w := env.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Reader",
		"email":    "reader@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestAuth_LoginBadCredentials(t *testing.T) {
	env := setupTestEnv(t)
	env.seedVerifiedUser(t, "reader@example.com", "user")

	w := env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "reader@example.com",
		"password": "not-the-password",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.doJSON(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "password123",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ResendVerification(t *testing.T) {
	env := setupTestEnv(t)

	w := env.doJSON(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name":     "Reader",
		"email":    "reader@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	firstCode := env.mailer.codes["reader@example.com"]

	w = env.doJSON(t, http.MethodPost, "/api/auth/resend-verification", "", map[string]string{
		"email": "reader@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code)
	secondCode := env.mailer.codes["reader@example.com"]

	// Only the newest code verifies; the superseded one reads as used
	if firstCode != secondCode {
		w = env.doJSON(t, http.MethodPost, "/api/auth/verify-email", "", map[string]string{
			"code": firstCode,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	}
	w = env.doJSON(t, http.MethodPost, "/api/auth/verify-email", "", map[string]string{
		"code": secondCode,
	})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_ProfileRequiresToken(t *testing.T) {
	env := setupTestEnv(t)

	w := env.doJSON(t, http.MethodGet, "/api/auth/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_Logout(t *testing.T) {
	env := setupTestEnv(t)
	_, token := env.seedVerifiedUser(t, "reader@example.com", "user")

	w := env.doJSON(t, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
