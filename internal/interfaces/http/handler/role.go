package handler

import (
	"github.com/erp/backoffice/internal/application/identity"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// RoleHandler handles role management HTTP requests
type RoleHandler struct {
	BaseHandler
	roleService *identity.RoleService
}

// NewRoleHandler creates a new role handler
func NewRoleHandler(roleService *identity.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// List returns a page of roles searched by name
//
// @ID           listRoles
//
//	@Summary		Lista papéis
//	@Tags			roles
//	@Produce		json
//	@Param			page	query	int	false	"Página (1..)"
//	@Param			page_size	query	int	false	"Itens por página (máx. 100)"
//	@Param			status	query	string	false	"Status"	Enums(ativo, inativo)
//	@Param			search	query	string	false	"Busca por nome"
//	@Success		200	{object}	dto.Response{data=[]identity.RoleDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/roles [get]
func (h *RoleHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, err := h.roleService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Create registers a role; guard_name defaults to "web"
//
// @ID           createRole
//
//	@Summary		Cria um papel
//	@Tags			roles
//	@Accept			json
//	@Produce		json
//	@Param			request	body	identity.RoleInput	true	"Papel"
//	@Success		201	{object}	dto.Response{data=identity.RoleDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/roles [post]
func (h *RoleHandler) Create(c *gin.Context) {
	var input identity.RoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.HandleError(c, middleware.BindError(err))
		return
	}
	result, err := h.roleService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleInputError(c, err, input)
		return
	}
	h.Created(c, result)
}

// Get returns a role with its permission ids
//
// @ID           getRole
//
//	@Summary		Obtém um papel
//	@Tags			roles
//	@Produce		json
//	@Param			id	path	string	true	"Role ID"
//	@Success		200	{object}	dto.Response{data=identity.RoleDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/roles/{id} [get]
func (h *RoleHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	result, err := h.roleService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Update renames a role; an omitted guard_name keeps the current one
//
// @ID           updateRole
//
//	@Summary		Atualiza um papel
//	@Tags			roles
//	@Accept			json
//	@Produce		json
//	@Param			id	path	string	true	"Role ID"
//	@Param			request	body	identity.RoleInput	true	"Papel"
//	@Success		200	{object}	dto.Response{data=identity.RoleDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/roles/{id} [put]
func (h *RoleHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var input identity.RoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.HandleError(c, middleware.BindError(err))
		return
	}
	result, err := h.roleService.Update(c.Request.Context(), id, input)
	if err != nil {
		h.HandleInputError(c, err, input)
		return
	}
	h.Success(c, result)
}

// Delete removes a role
//
// @ID           deleteRole
//
//	@Summary		Exclui um papel
//	@Tags			roles
//	@Produce		json
//	@Param			id	path	string	true	"Role ID"
//	@Success		204
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/roles/{id} [delete]
func (h *RoleHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.roleService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SyncPermissions replaces the permission set of a role.
//
// @ID           syncRolePermissions
//
//	@Summary		Substitui as permissões do papel
//	@Tags			roles
//	@Accept			json
//	@Produce		json
//	@Param			id	path	string	true	"Role ID"
//	@Param			request	body	identity.SyncPermissionsInput	true	"Permissões"
//	@Success		200	{object}	dto.Response{data=identity.RoleDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/roles/{id}/permissions [put]
func (h *RoleHandler) SyncPermissions(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var input identity.SyncPermissionsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.HandleError(c, middleware.BindError(err))
		return
	}
	result, err := h.roleService.SyncPermissions(c.Request.Context(), id, input)
	if err != nil {
		h.HandleInputError(c, err, input)
		return
	}
	h.Success(c, result)
}
