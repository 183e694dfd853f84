package handler

import (
	"github.com/erp/backoffice/internal/application/identity"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles login, logout and the current user
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
	userService *identity.UserService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identity.AuthService, userService *identity.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// Login exchanges email and password for an access token.
//
// @ID           login
//
//	@Summary		Autentica com email e senha
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			request	body	identity.LoginInput	true	"Credenciais"
//	@Success		200	{object}	dto.Response{data=identity.LoginResult}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		429	{object}	dto.Response
//	@Router			/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var input identity.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.HandleError(c, middleware.BindError(err))
		return
	}

	result, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		h.HandleInputError(c, err, input)
		return
	}
	h.Success(c, result)
}

// Logout revokes the presented token.
//
// @ID           logout
//
//	@Summary		Encerra a sessão do token apresentado
//	@Tags			auth
//	@Produce		json
//	@Success		204
//	@Failure		401	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.GetJWTClaims(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me returns the acting user.
//
// @ID           me
//
//	@Summary		Usuário autenticado
//	@Tags			auth
//	@Produce		json
//	@Success		200	{object}	dto.Response{data=identity.UserDTO}
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	id, err := middleware.ActingUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
