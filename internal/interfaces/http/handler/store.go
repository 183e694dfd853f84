package handler

import (
	"github.com/erp/backoffice/internal/application/store"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StoreHandler handles the stores of a company. The company always comes
// from the route (":id"), the store from ":lojaId".
type StoreHandler struct {
	BaseHandler
	storeService *store.Service
}

// NewStoreHandler creates a new store handler
func NewStoreHandler(storeService *store.Service) *StoreHandler {
	return &StoreHandler{storeService: storeService}
}

func storeRoute(c *gin.Context) (companyID, storeID uuid.UUID, err error) {
	if companyID, err = parseID(c, "id"); err != nil {
		return
	}
	storeID, err = parseID(c, "lojaId")
	return
}

// List returns a page of the company's stores
//
// @ID           listLojas
//
//	@Summary		Lista as lojas da empresa
//	@Tags			lojas
//	@Produce		json
//	@Param			id	path	string	true	"Empresa ID"
//	@Param			page	query	int	false	"Página (1..)"
//	@Param			page_size	query	int	false	"Itens por página (máx. 100)"
//	@Param			status	query	string	false	"Status"	Enums(ativo, inativo)
//	@Param			search	query	string	false	"Busca por nome"
//	@Success		200	{object}	dto.Response{data=[]store.StoreDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/empresas/{id}/lojas [get]
func (h *StoreHandler) List(c *gin.Context) {
	companyID, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	filter, err := bindListFilter(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	page, err := h.storeService.List(c.Request.Context(), companyID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	respondPage(c, page)
}

// Active returns id, nome and cnpj of the company's active stores for
// selection lists
//
// @ID           listLojasAtivas
//
//	@Summary		Lojas ativas da empresa
//	@Tags			lojas
//	@Produce		json
//	@Param			id	path	string	true	"Empresa ID"
//	@Success		200	{object}	dto.Response{data=[]store.SummaryDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/empresas/{id}/lojas/ativas [get]
func (h *StoreHandler) Active(c *gin.Context) {
	companyID, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	stores, err := h.storeService.ActiveByCompany(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stores)
}

// Create registers a store under the company
//
// @ID           createLoja
//
//	@Summary		Cria uma loja na empresa
//	@Tags			lojas
//	@Accept			json
//	@Produce		json
//	@Param			id	path	string	true	"Empresa ID"
//	@Param			request	body	store.CreateStoreInput	true	"Dados da loja"
//	@Success		201	{object}	dto.Response{data=store.StoreDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/empresas/{id}/lojas [post]
func (h *StoreHandler) Create(c *gin.Context) {
	companyID, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var input store.CreateStoreInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.HandleError(c, middleware.BindError(err))
		return
	}
	result, err := h.storeService.Create(c.Request.Context(), companyID, input)
	if err != nil {
		h.HandleInputError(c, err, input)
		return
	}
	h.Created(c, result)
}

// Get returns a store of the company
//
// @ID           getLoja
//
//	@Summary		Obtém uma loja da empresa
//	@Tags			lojas
//	@Produce		json
//	@Param			id	path	string	true	"Empresa ID"
//	@Param			lojaId	path	string	true	"Loja ID"
//	@Success		200	{object}	dto.Response{data=store.StoreDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/empresas/{id}/lojas/{lojaId} [get]
func (h *StoreHandler) Get(c *gin.Context) {
	companyID, storeID, err := storeRoute(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	result, err := h.storeService.Get(c.Request.Context(), companyID, storeID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Update changes the submitted fields of a store of the company
//
// @ID           updateLoja
//
//	@Summary		Atualiza uma loja da empresa
//	@Tags			lojas
//	@Accept			json
//	@Produce		json
//	@Param			id	path	string	true	"Empresa ID"
//	@Param			lojaId	path	string	true	"Loja ID"
//	@Param			request	body	store.UpdateStoreInput	true	"Campos alterados"
//	@Success		200	{object}	dto.Response{data=store.StoreDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		409	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/empresas/{id}/lojas/{lojaId} [put]
func (h *StoreHandler) Update(c *gin.Context) {
	companyID, storeID, err := storeRoute(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	var input store.UpdateStoreInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.HandleError(c, middleware.BindError(err))
		return
	}
	result, err := h.storeService.Update(c.Request.Context(), companyID, storeID, input)
	if err != nil {
		h.HandleInputError(c, err, input)
		return
	}
	h.Success(c, result)
}

// Delete soft-deletes a store of the company
//
// @ID           deleteLoja
//
//	@Summary		Exclui uma loja (soft delete)
//	@Tags			lojas
//	@Produce		json
//	@Param			id	path	string	true	"Empresa ID"
//	@Param			lojaId	path	string	true	"Loja ID"
//	@Success		204
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/empresas/{id}/lojas/{lojaId} [delete]
func (h *StoreHandler) Delete(c *gin.Context) {
	companyID, storeID, err := storeRoute(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if err := h.storeService.Delete(c.Request.Context(), companyID, storeID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
