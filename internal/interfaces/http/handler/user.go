package handler

import (
	"github.com/erp/backoffice/internal/application/identity"
	domainIdentity "github.com/erp/backoffice/internal/domain/identity"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserHandler handles user management HTTP requests
type UserHandler struct {
	BaseHandler
	userService *identity.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *identity.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

type userQuery struct {
	EmpresaID string `form:"empresa_id" binding:"omitempty,uuid"`
}

// List returns a page of users, optionally of one company (?empresa_id=)
//
// @ID           listUsers
//
//	@Summary		Lista usuários
//	@Tags			users
//	@Produce		json
//	@Param			empresa_id	query	string	false	"Empresa ID"
//	@Param			page	query	int	false	"Página (1..)"
//	@Param			page_size	query	int	false	"Itens por página (máx. 100)"
//	@Param			status	query	string	false	"Status"	Enums(ativo, inativo)
//	@Param			search	query	string	false	"Busca por nome"
//	@Success		200	{object}	dto.Response{data=[]identity.UserDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/users [get]
func (h *UserHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var q userQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.HandleError(c, middleware.BindError(err))
		return
	}

	userFilter := domainIdentity.UserFilter{ListFilter: filter}
	if q.EmpresaID != "" {
		id := uuid.MustParse(q.EmpresaID)
		userFilter.CompanyID = &id
	}

	page, err := h.userService.List(c.Request.Context(), userFilter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Create registers a user with its stores and roles
//
// @ID           createUser
//
//	@Summary		Cria um usuário
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			request	body	identity.CreateUserInput	true	"Dados do usuário"
//	@Success		201	{object}	dto.Response{data=identity.UserDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var input identity.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.HandleError(c, middleware.BindError(err))
		return
	}
	result, err := h.userService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleInputError(c, err, input)
		return
	}
	h.Created(c, result)
}

// Get returns a user with company, stores and roles
//
// @ID           getUser
//
//	@Summary		Obtém um usuário
//	@Tags			users
//	@Produce		json
//	@Param			id	path	string	true	"User ID"
//	@Success		200	{object}	dto.Response{data=identity.UserDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/users/{id} [get]
func (h *UserHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	result, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Update changes the submitted fields; "lojas" is always the complete set
//
// @ID           updateUser
//
//	@Summary		Atualiza um usuário
//	@Tags			users
//	@Accept			json
//	@Produce		json
//	@Param			id	path	string	true	"User ID"
//	@Param			request	body	identity.UpdateUserInput	true	"Campos alterados"
//	@Success		200	{object}	dto.Response{data=identity.UserDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/users/{id} [put]
func (h *UserHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var input identity.UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.HandleError(c, middleware.BindError(err))
		return
	}
	result, err := h.userService.Update(c.Request.Context(), id, input)
	if err != nil {
		h.HandleInputError(c, err, input)
		return
	}
	h.Success(c, result)
}

// Delete removes a user other than the acting one
//
// @ID           deleteUser
//
//	@Summary		Exclui um usuário
//	@Tags			users
//	@Produce		json
//	@Param			id	path	string	true	"User ID"
//	@Success		204
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		403	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/users/{id} [delete]
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	actor, err := middleware.ActingUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.userService.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
