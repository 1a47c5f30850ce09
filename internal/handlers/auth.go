package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/knowara/portal/internal/services"
	pkghttp "github.com/knowara/portal/pkg/http"
)

// AuthServiceInterface defines the interface for authentication business logic
type AuthServiceInterface interface {
	Login(ctx context.Context, username, password, ipAddress string) (*services.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*services.AuthResponse, error)
	Register(ctx context.Context, input services.RegisterInput) (*services.RegisterResponse, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	service  AuthServiceInterface
	ipConfig *pkghttp.IPConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(service AuthServiceInterface, ipConfig *pkghttp.IPConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		ipConfig: ipConfig,
	}
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Username   string `json:"username" validate:"required,min=3,max=50"`
	Password   string `json:"password" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Name       string `json:"name" validate:"required,min=1,max=100"`
	Department string `json:"department" validate:"max=100"`
	Position   string `json:"position" validate:"max=100"`
	Phone      string `json:"phone" validate:"max=30"`
}

// RefreshTokenRequest represents the request body for token refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			pkghttp.WritePayloadTooLarge(w)
			return false
		}
		pkghttp.WriteBadRequest(w, "invalid request body")
		return false
	}
	return true
}

// Login handles credential authentication and issues a token pair.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	ipAddress := pkghttp.ClientIP(r, h.ipConfig)

	authResp, err := h.service.Login(r.Context(), req.Username, req.Password, ipAddress)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteOK(w, authResp, "login successful")
}

// Register handles account registration.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	resp, err := h.service.Register(r.Context(), services.RegisterInput{
		Username:   req.Username,
		Password:   req.Password,
		Email:      req.Email,
		Name:       req.Name,
		Department: req.Department,
		Position:   req.Position,
		Phone:      req.Phone,
	})
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteCreated(w, resp.Account, resp.Message)
}

// RefreshToken exchanges a refresh token for a fresh token pair.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshTokenRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := ValidateRequest(req); err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	authResp, err := h.service.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		pkghttp.WriteError(w, err)
		return
	}

	pkghttp.WriteOK(w, authResp, "token refreshed")
}
