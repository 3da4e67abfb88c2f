package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/Dhee091/Housing-Management-sub000/internal/identity"
	"github.com/Dhee091/Housing-Management-sub000/internal/listing/domain"
	"github.com/Dhee091/Housing-Management-sub000/internal/platform/logger"
)

// AuthService is the identity surface the HTTP layer needs.
type AuthService interface {
	Authenticator
	Register(ctx context.Context, in identity.RegisterInput) (*identity.Session, error)
	Login(ctx context.Context, email, password string) (*identity.Session, error)
	Logout(ctx context.Context, sessionID string) error
}

type AuthHandler struct {
	svc    AuthService
	logger *logger.Logger
}

func NewAuthHandler(svc AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: log.Named("AuthHandler")}
}

type registerRequest struct {
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Name     string      `json:"name"`
	Phone    string      `json:"phone"`
	Role     domain.Role `json:"role"`
	Company  string      `json:"company"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type principalResponse struct {
	ID    string      `json:"id"`
	Role  domain.Role `json:"role"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
}

func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	sess, err := h.svc.Register(r.Context(), identity.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
		Phone:    req.Phone,
		Role:     req.Role,
		Company:  req.Company,
	})
	if err != nil {
		writeError(w, h.logger, "HandleRegister", err)
		return
	}
	writeJSON(w, http.StatusCreated, sess)
}

func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid request body")
		return
	}
	sess, err := h.svc.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, h.logger, "HandleLogin", err)
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Logout(r.Context(), sessionIDFrom(r.Context())); err != nil {
		writeError(w, h.logger, "HandleLogout", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) HandleSession(w http.ResponseWriter, r *http.Request) {
	p, _ := PrincipalFrom(r.Context())
	writeJSON(w, http.StatusOK, principalResponse{ID: p.ID, Role: p.Role, Name: p.Name, Email: p.Email})
}
