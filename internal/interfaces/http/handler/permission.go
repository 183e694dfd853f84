package handler

import (
	"github.com/erp/backoffice/internal/application/identity"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// PermissionHandler handles permission management HTTP requests
type PermissionHandler struct {
	BaseHandler
	permissionService *identity.PermissionService
}

// NewPermissionHandler creates a new permission handler
func NewPermissionHandler(permissionService *identity.PermissionService) *PermissionHandler {
	return &PermissionHandler{permissionService: permissionService}
}

// List returns a page of permissions searched by name
//
// @ID           listPermissions
//
//	@Summary		Lista permissões
//	@Tags			permissions
//	@Produce		json
//	@Param			page	query	int	false	"Página (1..)"
//	@Param			page_size	query	int	false	"Itens por página (máx. 100)"
//	@Param			status	query	string	false	"Status"	Enums(ativo, inativo)
//	@Param			search	query	string	false	"Busca por nome"
//	@Success		200	{object}	dto.Response{data=[]identity.PermissionDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/permissions [get]
func (h *PermissionHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, err := h.permissionService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Create registers a permission
//
// @ID           createPermission
//
//	@Summary		Cria uma permissão
//	@Tags			permissions
//	@Accept			json
//	@Produce		json
//	@Param			request	body	identity.PermissionInput	true	"Permissão"
//	@Success		201	{object}	dto.Response{data=identity.PermissionDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/permissions [post]
func (h *PermissionHandler) Create(c *gin.Context) {
	var input identity.PermissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.HandleError(c, middleware.BindError(err))
		return
	}
	result, err := h.permissionService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleInputError(c, err, input)
		return
	}
	h.Created(c, result)
}

// Get returns a permission
//
// @ID           getPermission
//
//	@Summary		Obtém uma permissão
//	@Tags			permissions
//	@Produce		json
//	@Param			id	path	string	true	"Permission ID"
//	@Success		200	{object}	dto.Response{data=identity.PermissionDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/permissions/{id} [get]
func (h *PermissionHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	result, err := h.permissionService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Update changes a permission
//
// @ID           updatePermission
//
//	@Summary		Atualiza uma permissão
//	@Tags			permissions
//	@Accept			json
//	@Produce		json
//	@Param			id	path	string	true	"Permission ID"
//	@Param			request	body	identity.PermissionInput	true	"Permissão"
//	@Success		200	{object}	dto.Response{data=identity.PermissionDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/permissions/{id} [put]
func (h *PermissionHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var input identity.PermissionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.HandleError(c, middleware.BindError(err))
		return
	}
	result, err := h.permissionService.Update(c.Request.Context(), id, input)
	if err != nil {
		h.HandleInputError(c, err, input)
		return
	}
	h.Success(c, result)
}

// Delete removes a permission and its role links
//
// @ID           deletePermission
//
//	@Summary		Exclui uma permissão
//	@Tags			permissions
//	@Produce		json
//	@Param			id	path	string	true	"Permission ID"
//	@Success		204
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/permissions/{id} [delete]
func (h *PermissionHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.permissionService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
