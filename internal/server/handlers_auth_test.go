package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignup(t *testing.T) {
	h := newTestServer(t)

	rec := h.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Token string `json:"token"`
		User  struct {
			Name           string  `json:"name"`
			Email          string  `json:"email"`
			VirtualBalance float64 `json:"virtual_balance"`
		} `json:"user"`
	}
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Alice", resp.User.Name)
	assert.Equal(t, 100000.0, resp.User.VirtualBalance)

	// The raw password and its hash never appear in the response.
	assert.NotContains(t, rec.Body.String(), "hunter22")
	assert.NotContains(t, rec.Body.String(), "$2a$")

	// The returned token works against a protected endpoint.
	rec = h.do(t, http.MethodGet, "/dashboard/profile", resp.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignupDuplicateEmail(t *testing.T) {
	h := newTestServer(t)
	h.seedUser(t, "u1", "Alice", "alice@example.com", "hunter22", 100000)

	rec := h.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"name":     "Other Alice",
		"email":    "alice@example.com",
		"password": "different",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp ErrorResponse
	decodeBody(t, rec, &resp)
	assert.Equal(t, "email_taken", resp.Code)
}

func TestSignupInvalidBody(t *testing.T) {
	h := newTestServer(t)

	cases := []map[string]string{
		{"email": "alice@example.com", "password": "hunter22"}, // missing name
		{"name": "Alice", "password": "hunter22"},              // missing email
		{"name": "Alice", "email": "not-an-email", "password": "hunter22"},
		{"name": "Alice", "email": "alice@example.com", "password": "abc"}, // too short
	}
	for _, body := range cases {
		rec := h.do(t, http.MethodPost, "/auth/signup", "", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %v", body)
	}
}

func TestLogin(t *testing.T) {
	h := newTestServer(t)
	h.seedUser(t, "u1", "Alice", "alice@example.com", "hunter22", 100000)

	rec := h.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Token string `json:"token"`
	}
	decodeBody(t, rec, &resp)
	assert.NotEmpty(t, resp.Token)

	claims, err := h.app.Tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", claims.Subject)
}

func TestLoginWrongPassword(t *testing.T) {
	h := newTestServer(t)
	h.seedUser(t, "u1", "Alice", "alice@example.com", "hunter22", 100000)

	rec := h.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginUnknownEmail(t *testing.T) {
	h := newTestServer(t)

	rec := h.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever1",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginMethodNotAllowed(t *testing.T) {
	h := newTestServer(t)

	rec := h.do(t, http.MethodGet, "/auth/login", "", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestPasswordTruncationAt72Bytes(t *testing.T) {
	h := newTestServer(t)

	long := make([]byte, 100)
	for i := range long {
		long[i] = 'a'
	}
	h.seedUser(t, "u1", "Alice", "alice@example.com", string(long), 100000)

	// First 72 bytes identical: bcrypt accepts it.
	rec := h.do(t, http.MethodPost, "/auth/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": string(long[:72]) + "trailing-difference",
	})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignupStoresHashNotPassword(t *testing.T) {
	h := newTestServer(t)

	rec := h.do(t, http.MethodPost, "/auth/signup", "", map[string]string{
		"name":     "Alice",
		"email":    "alice@example.com",
		"password": "hunter22",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	user, err := h.store.GetUserByEmail(context.Background(), "alice@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", user.PasswordHash)
	assert.True(t, checkPassword(user.PasswordHash, "hunter22"))
}
