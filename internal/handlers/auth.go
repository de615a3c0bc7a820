package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/EmptyEmeraldTablet/blankpage/internal/auth"
	"github.com/EmptyEmeraldTablet/blankpage/internal/dto"
)

// AuthHandler handles login and logout for the single shared secret.
type AuthHandler struct {
	tokens *auth.Store
	secret auth.Secret
}

// NewAuthHandler returns a new AuthHandler.
func NewAuthHandler(tokens *auth.Store, secret auth.Secret) *AuthHandler {
	return &AuthHandler{tokens: tokens, secret: secret}
}

// Login godoc
// @Summary      Exchange the shared password for a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.LoginRequest  true  "Credentials"
// @Success      200   {object}  dto.LoginResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: dto.CodeInvalidPayload})
		return
	}
	if !h.secret.Verify(req.Password) {
		c.JSON(http.StatusUnauthorized, dto.ErrorResponse{Error: dto.CodeInvalidCredentials})
		return
	}
	token, err := h.tokens.Create(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: dto.CodeRequestFailed})
		return
	}
	c.JSON(http.StatusOK, dto.LoginResponse{Token: token})
}

// Logout godoc
// @Summary      Invalidate the presented bearer token
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Router       /logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if token := auth.BearerToken(c); token != "" {
		_ = h.tokens.Delete(c.Request.Context(), token)
	}
	c.Status(http.StatusNoContent)
}
