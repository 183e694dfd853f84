package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/erp/backoffice/internal/application/company"
	"github.com/erp/backoffice/internal/application/validation"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// CompanyHandler handles company HTTP requests. Create and update accept
// either JSON or multipart/form-data with an optional "logo" file.
type CompanyHandler struct {
	BaseHandler
	companyService *company.Service
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companyService *company.Service) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// List returns a page of live companies filtered by status and search
//
// @ID           listEmpresas
//
//	@Summary		Lista empresas
//	@Tags			empresas
//	@Produce		json
//	@Param			page	query	int	false	"Página (1..)"
//	@Param			page_size	query	int	false	"Itens por página (máx. 100)"
//	@Param			status	query	string	false	"Status"	Enums(ativo, inativo)
//	@Param			search	query	string	false	"Busca por nome"
//	@Success		200	{object}	dto.Response{data=[]company.CompanyDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/empresas [get]
func (h *CompanyHandler) List(c *gin.Context) {
	filter, err := bindListFilter(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, err := h.companyService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Create registers a company
//
// @ID           createEmpresa
//
//	@Summary		Cria uma empresa
//	@Tags			empresas
//	@Accept			json,mpfd
//	@Produce		json
//	@Param			request	body	company.CreateCompanyInput	true	"Dados da empresa"
//	@Param			logo	formData	file	false	"Logo (multipart)"
//	@Success		201	{object}	dto.Response{data=company.CompanyDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/empresas [post]
func (h *CompanyHandler) Create(c *gin.Context) {
	var input company.CreateCompanyInput
	if err := c.ShouldBind(&input); err != nil {
		h.HandleError(c, middleware.BindError(err))
		return
	}
	logo, err := readLogo(c)
	if err != nil {
		h.HandleInputError(c, err, input)
		return
	}
	input.Logo = logo

	result, err := h.companyService.Create(c.Request.Context(), input)
	if err != nil {
		h.HandleInputError(c, err, input)
		return
	}
	h.Created(c, result)
}

// Get returns one live company
//
// @ID           getEmpresa
//
//	@Summary		Obtém uma empresa
//	@Tags			empresas
//	@Produce		json
//	@Param			id	path	string	true	"Empresa ID"
//	@Success		200	{object}	dto.Response{data=company.CompanyDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/empresas/{id} [get]
func (h *CompanyHandler) Get(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	result, err := h.companyService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Update changes the submitted fields and, with a new logo, replaces it
//
// @ID           updateEmpresa
//
//	@Summary		Atualiza uma empresa
//	@Tags			empresas
//	@Accept			json,mpfd
//	@Produce		json
//	@Param			id	path	string	true	"Empresa ID"
//	@Param			request	body	company.UpdateCompanyInput	true	"Campos alterados"
//	@Param			logo	formData	file	false	"Novo logo (multipart)"
//	@Success		200	{object}	dto.Response{data=company.CompanyDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/empresas/{id} [put]
func (h *CompanyHandler) Update(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var input company.UpdateCompanyInput
	if err := c.ShouldBind(&input); err != nil {
		h.HandleError(c, middleware.BindError(err))
		return
	}
	logo, err := readLogo(c)
	if err != nil {
		h.HandleInputError(c, err, input)
		return
	}
	input.Logo = logo

	result, err := h.companyService.Update(c.Request.Context(), id, input)
	if err != nil {
		h.HandleInputError(c, err, input)
		return
	}
	h.Success(c, result)
}

// Delete soft-deletes a company
//
// @ID           deleteEmpresa
//
//	@Summary		Exclui uma empresa (soft delete)
//	@Tags			empresas
//	@Produce		json
//	@Param			id	path	string	true	"Empresa ID"
//	@Success		204
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/empresas/{id} [delete]
func (h *CompanyHandler) Delete(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.companyService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Restore reinstates a soft-deleted company
//
// @ID           restoreEmpresa
//
//	@Summary		Restaura uma empresa excluída
//	@Tags			empresas
//	@Produce		json
//	@Param			id	path	string	true	"Empresa ID"
//	@Success		200	{object}	dto.Response{data=company.CompanyDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/empresas/{id}/restore [post]
func (h *CompanyHandler) Restore(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	result, err := h.companyService.Restore(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// readLogo returns the "logo" part of a multipart request, nil when the
// request is not multipart or carries no logo. The content is read up to one
// byte past the size limit; the size check itself is left to validation.
func readLogo(c *gin.Context) (*company.LogoUpload, error) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return nil, nil
	}
	fh, err := c.FormFile(validation.LogoRule.Field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, middleware.BindError(err)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, middleware.BindError(err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, validation.LogoRule.MaxKB*1024+1))
	if err != nil {
		return nil, middleware.BindError(err)
	}
	return &company.LogoUpload{
		Filename: fh.Filename,
		Size:     fh.Size,
		Content:  content,
	}, nil
}
