package api

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/example/storefront/internal/api/middleware"
	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/domain/customer"
)

// AuthHandlers handles customer accounts and sign-in
type AuthHandlers struct {
	customerService *customer.Service
	jwtService      *auth.JWTService
	logger          *zap.Logger
}

// NewAuthHandlers creates a new AuthHandlers instance
func NewAuthHandlers(customerService *customer.Service, jwtService *auth.JWTService, logger *zap.Logger) *AuthHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandlers{
		customerService: customerService,
		jwtService:      jwtService,
		logger:          logger.Named("auth"),
	}
}

// RegisterRequest represents the registration request body
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// AuthenticateRequest represents the sign-in request body
type AuthenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CustomerResponse represents customer data in responses
type CustomerResponse struct {
	ID         string    `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Phone      string    `json:"phone,omitempty"`
	Registered bool      `json:"registered"`
	CreatedAt  time.Time `json:"created_at"`
}

// AuthResponse represents the authentication response
type AuthResponse struct {
	Customer    CustomerResponse `json:"customer"`
	AccessToken string           `json:"access_token"`
	ExpiresAt   time.Time        `json:"expires_at"`
}

func newCustomerResponse(c *customer.Customer) CustomerResponse {
	return CustomerResponse{
		ID:         c.ID,
		Email:      c.Email,
		Name:       c.Name,
		Phone:      c.Phone,
		Registered: c.Registered(),
		CreatedAt:  c.CreatedAt,
	}
}

// Register creates an account, claiming any guest orders placed with the
// same email, and signs the customer in.
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondErr(w, r, h.logger, err)
		return
	}

	c, err := h.customerService.Register(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		respondErr(w, r, h.logger, err)
		return
	}

	h.signIn(w, r, c, http.StatusCreated)
}

// Authenticate checks email and password and signs the customer in.
func (h *AuthHandlers) Authenticate(w http.ResponseWriter, r *http.Request) {
	var req AuthenticateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondErr(w, r, h.logger, err)
		return
	}

	c, err := h.customerService.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		respondErr(w, r, h.logger, err)
		return
	}

	h.signIn(w, r, c, http.StatusOK)
}

// Logout clears the access token cookie
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
	respondJSON(w, http.StatusOK, map[string]string{"message": "Logout successful"})
}

// Me returns the signed-in customer
func (h *AuthHandlers) Me(w http.ResponseWriter, r *http.Request) {
	c, err := h.customerService.Get(r.Context(), middleware.GetCustomerID(r.Context()))
	if err != nil {
		respondErr(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newCustomerResponse(c))
}

// FindOrCreate resolves a guest customer by email, creating one on first
// use.
func (h *AuthHandlers) FindOrCreate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Phone string `json:"phone,omitempty"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		respondErr(w, r, h.logger, err)
		return
	}

	c, err := h.customerService.FindOrCreate(r.Context(), customer.Contact{
		Email: req.Email,
		Name:  req.Name,
		Phone: req.Phone,
	})
	if err != nil {
		respondErr(w, r, h.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newCustomerResponse(c))
}

func (h *AuthHandlers) signIn(w http.ResponseWriter, r *http.Request, c *customer.Customer, status int) {
	token, expiresAt, err := h.jwtService.Issue(c.ID, c.Email, auth.RoleCustomer)
	if err != nil {
		respondErr(w, r, h.logger, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})

	respondJSON(w, status, AuthResponse{
		Customer:    newCustomerResponse(c),
		AccessToken: token,
		ExpiresAt:   expiresAt,
	})
}
