package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"pathway-engine/internal/interfaces/http/dto"
	"pathway-engine/pkg/api"
	"pathway-engine/pkg/auth"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// AuthHandler issues bearer tokens in exchange for the shared admin secret.
type AuthHandler struct {
	tokens   *auth.TokenService
	secret   string
	validate *validator.Validate
	logger   *zap.Logger
}

// NewAuthHandler creates the token-issuing endpoint.
func NewAuthHandler(tokens *auth.TokenService, secret string, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		tokens:   tokens,
		secret:   secret,
		validate: validator.New(),
		logger:   logger,
	}
}

// IssueToken validates the shared secret and returns a signed bearer token.
func (h *AuthHandler) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		api.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if subtle.ConstantTimeCompare([]byte(req.Secret), []byte(h.secret)) != 1 {
		h.logger.Warn("token request with bad secret", zap.String("subject", req.Subject))
		api.Error(w, http.StatusUnauthorized, "invalid secret")
		return
	}

	token, err := h.tokens.CreateToken(req.Subject, "admin")
	if err != nil {
		h.logger.Error("token creation failed", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "an internal error occurred")
		return
	}

	api.Success(w, http.StatusOK, dto.TokenResponse{Token: token})
}
