package handler

import (
	"github.com/erp/backoffice/internal/application/address"
	"github.com/erp/backoffice/internal/domain/location"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AddressHandler serves the CEP lookup and the estado/municipio reference data
type AddressHandler struct {
	BaseHandler
	lookup    *address.Service
	reference *address.ReferenceService
}

// NewAddressHandler creates a new address handler
func NewAddressHandler(lookup *address.Service, reference *address.ReferenceService) *AddressHandler {
	return &AddressHandler{lookup: lookup, reference: reference}
}

// LookupCEP resolves a postal code: 200 when found, 400 for a malformed CEP,
// 404 when unknown and 502 when the provider fails.
//
// @ID           lookupCEP
//
//	@Summary		Consulta um CEP
//	@Tags			address
//	@Produce		json
//	@Param			cep	path	string	true	"CEP com ou sem máscara"
//	@Success		200	{object}	dto.Response{data=address.LookupResult}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Failure		502	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/cep/{cep} [get]
func (h *AddressHandler) LookupCEP(c *gin.Context) {
	result, err := h.lookup.Lookup(c.Request.Context(), c.Param("cep"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// ListEstados lists every federative unit
//
// @ID           listEstados
//
//	@Summary		Lista os estados
//	@Tags			address
//	@Produce		json
//	@Success		200	{object}	dto.Response{data=[]address.SubdivisionDTO}
//	@Failure		401	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/estados [get]
func (h *AddressHandler) ListEstados(c *gin.Context) {
	estados, err := h.reference.ListSubdivisions(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, estados)
}

// GetEstado returns one federative unit
//
// @ID           getEstado
//
//	@Summary		Obtém um estado
//	@Tags			address
//	@Produce		json
//	@Param			id	path	string	true	"Estado ID"
//	@Success		200	{object}	dto.Response{data=address.SubdivisionDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/estados/{id} [get]
func (h *AddressHandler) GetEstado(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	estado, err := h.reference.GetSubdivision(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, estado)
}

type municipioQuery struct {
	EstadoID string `form:"estado_id" binding:"omitempty,uuid"`
	Search   string `form:"search" binding:"omitempty,max=100"`
	Limit    int    `form:"limit" binding:"omitempty,min=1,max=1000"`
}

// ListMunicipios lists municipalities, optionally of one estado and matching
// a name fragment
//
// @ID           listMunicipios
//
//	@Summary		Lista municípios
//	@Tags			address
//	@Produce		json
//	@Param			estado_id	query	string	false	"Estado ID"
//	@Param			search	query	string	false	"Parte do nome"
//	@Param			limit	query	int	false	"Limite (1..1000)"
//	@Success		200	{object}	dto.Response{data=[]address.MunicipalityDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		500	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/municipios [get]
func (h *AddressHandler) ListMunicipios(c *gin.Context) {
	var q municipioQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.HandleError(c, middleware.BindError(err))
		return
	}

	filter := location.MunicipalityFilter{Search: q.Search, Limit: q.Limit}
	if q.EstadoID != "" {
		id := uuid.MustParse(q.EstadoID)
		filter.EstadoID = &id
	}

	municipios, err := h.reference.ListMunicipalities(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, municipios)
}

// GetMunicipio returns one municipality
//
// @ID           getMunicipio
//
//	@Summary		Obtém um município
//	@Tags			address
//	@Produce		json
//	@Param			id	path	string	true	"Município ID"
//	@Success		200	{object}	dto.Response{data=address.MunicipalityDTO}
//	@Failure		400	{object}	dto.Response
//	@Failure		401	{object}	dto.Response
//	@Failure		404	{object}	dto.Response
//	@Security		BearerAuth
//	@Router			/municipios/{id} [get]
func (h *AddressHandler) GetMunicipio(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.HandleError(c, err)
		return
	}
	municipio, err := h.reference.GetMunicipality(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, municipio)
}
