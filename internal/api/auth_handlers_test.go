package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/domain/customer"
)

const testPassword = "correct horse battery"

// register signs up a new account and returns a client holding its token.
func register(t *testing.T, server *testServer, email string) *client {
	t.Helper()
	c := server.client(t)
	rec := c.do(http.MethodPost, "/api/customer/auth/register", RegisterRequest{
		Email:    email,
		Password: testPassword,
		Name:     "Test Customer",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c.token = decode[AuthResponse](t, rec).AccessToken
	return c
}

// ============================================
// Register Tests
// ============================================

func TestRegister(t *testing.T) {
	c := newTestServer(t).client(t)

	rec := c.do(http.MethodPost, "/api/customer/auth/register", RegisterRequest{
		Email:    "Grace@Example.com",
		Password: testPassword,
		Name:     "Grace Hopper",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	resp := decode[AuthResponse](t, rec)
	assert.Equal(t, customer.IDForEmail("grace@example.com"), resp.Customer.ID)
	assert.Equal(t, "grace@example.com", resp.Customer.Email)
	assert.True(t, resp.Customer.Registered)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotContains(t, rec.Body.String(), "password")

	cookie, ok := c.cookies[middleware.AccessTokenCookie]
	require.True(t, ok)
	assert.Equal(t, resp.AccessToken, cookie.Value)
}

func TestRegister_Errors(t *testing.T) {
	server := newTestServer(t)
	register(t, server, "taken@example.com")

	tests := []struct {
		name   string
		req    RegisterRequest
		status int
	}{
		{"email taken", RegisterRequest{Email: "taken@example.com", Password: testPassword, Name: "X"}, http.StatusConflict},
		{"short password", RegisterRequest{Email: "new@example.com", Password: "short", Name: "X"}, http.StatusBadRequest},
		{"bad email", RegisterRequest{Email: "nope", Password: testPassword, Name: "X"}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := server.client(t).do(http.MethodPost, "/api/customer/auth/register", tt.req)

			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestRegister_ClaimsGuestOrders(t *testing.T) {
	server := newTestServer(t)
	guest := server.client(t)
	guest.addItem(burgerID, 1)
	placed := checkout(guest, checkoutRequest{Contact: guestContact})

	c := register(t, server, guestContact.Email)
	rec := c.do(http.MethodGet, "/api/orders/"+placed.ID, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
}

// ============================================
// Authenticate Tests
// ============================================

func TestAuthenticate(t *testing.T) {
	server := newTestServer(t)
	register(t, server, "grace@example.com")
	c := server.client(t)

	rec := c.do(http.MethodPost, "/api/customer/auth/authenticate", AuthenticateRequest{Email: "grace@example.com", Password: testPassword})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, decode[AuthResponse](t, rec).AccessToken)

	rec = c.do(http.MethodGet, "/api/customers/me", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "grace@example.com", decode[CustomerResponse](t, rec).Email)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	server := newTestServer(t)
	register(t, server, "grace@example.com")

	rec := server.client(t).do(http.MethodPost, "/api/customer/auth/authenticate", AuthenticateRequest{Email: "grace@example.com", Password: "wrong password"})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, customer.ErrInvalidCredentials.Error(), errorMessage(t, rec))
}

func TestAuthenticate_UnknownEmail(t *testing.T) {
	rec := newTestServer(t).client(t).do(http.MethodPost, "/api/customer/auth/authenticate", AuthenticateRequest{Email: "ghost@example.com", Password: testPassword})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================
// Session Tests
// ============================================

func TestMe(t *testing.T) {
	server := newTestServer(t)
	c := register(t, server, "grace@example.com")
	delete(c.cookies, middleware.AccessTokenCookie)

	rec := c.do(http.MethodGet, "/api/customers/me", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[CustomerResponse](t, rec)
	assert.Equal(t, customer.IDForEmail("grace@example.com"), me.ID)
	assert.Equal(t, "Test Customer", me.Name)
}

func TestMe_Unauthenticated(t *testing.T) {
	rec := newTestServer(t).client(t).do(http.MethodGet, "/api/customers/me", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogout(t *testing.T) {
	server := newTestServer(t)
	c := register(t, server, "grace@example.com")
	c.token = ""

	rec := c.do(http.MethodPost, "/api/customer/auth/logout", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, c.cookies, middleware.AccessTokenCookie)

	rec = c.do(http.MethodGet, "/api/customers/me", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

// ============================================
// Find Or Create Tests
// ============================================

func TestFindOrCreate(t *testing.T) {
	c := newTestServer(t).client(t)
	body := map[string]string{"email": "ada@example.com", "name": "Ada"}

	first := c.do(http.MethodPost, "/api/customers/find-or-create", body)
	second := c.do(http.MethodPost, "/api/customers/find-or-create", body)

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	a, b := decode[CustomerResponse](t, first), decode[CustomerResponse](t, second)
	assert.Equal(t, a.ID, b.ID)
	assert.False(t, a.Registered)
}

func TestFindOrCreate_InvalidEmail(t *testing.T) {
	rec := newTestServer(t).client(t).do(http.MethodPost, "/api/customers/find-or-create", map[string]string{"email": "nope", "name": "Ada"})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
