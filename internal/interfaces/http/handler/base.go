// Package handler adapts the application services to HTTP. Handlers decode
// requests, call one service operation and render the JSON envelope.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/logger"
	"github.com/erp/backoffice/internal/interfaces/http/dto"
	"github.com/erp/backoffice/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrInvalidID is returned for a path identifier that is not a UUID
var ErrInvalidID = shared.NewDomainError(shared.CodeInvalidInput, "Identificador inválido.")

// fields never echoed back to the client
var secretInputFields = []string{"password", "password_confirmation", "logo"}

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// HandleError renders err with the status of its code. Errors that are not
// domain errors are logged and reported as INTERNAL_ERROR without detail.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	h.respondError(c, err, nil)
}

// HandleInputError is HandleError for requests carrying a payload: rejected
// input (validation or uniqueness) is echoed back without secrets so the
// client can refill its form.
func (h *BaseHandler) HandleInputError(c *gin.Context, err error, input any) {
	h.respondError(c, err, input)
}

func (h *BaseHandler) respondError(c *gin.Context, err error, input any) {
	if err == nil {
		return
	}
	requestID := middleware.GetRequestID(c)
	_ = c.Error(err)

	de, ok := shared.AsDomainError(err)
	if !ok {
		logger.L(c.Request.Context()).Error("Unhandled error", zap.Error(err))
		de = shared.ErrInternal
	}
	c.Set(middleware.ErrorCodeKey, de.Code)

	resp := dto.NewDomainErrorResponse(de, requestID)
	if input != nil && (de.Code == shared.CodeValidation || de.Code == shared.CodeAlreadyExists) {
		resp.Error.Input = echoInput(input)
	}
	c.JSON(dto.GetHTTPStatus(de.Code), resp)
}

// echoInput renders input through its json tags and strips secrets
func echoInput(input any) map[string]any {
	raw, err := json.Marshal(input)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil
	}
	for _, k := range secretInputFields {
		delete(out, k)
	}
	return out
}

// parseID reads a UUID path parameter
func parseID(c *gin.Context, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, ErrInvalidID.WithDetails(map[string]string{"field": param})
	}
	return id, nil
}

// listQuery is the query string of every paginated listing
type listQuery struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	Status   string `form:"status"`
	Search   string `form:"search"`
}

// bindListFilter reads pagination, status and search. Out-of-range values
// are clamped by the filter rather than rejected.
func bindListFilter(c *gin.Context) (shared.ListFilter, error) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		return shared.ListFilter{}, middleware.BindError(err)
	}
	return shared.ListFilter{
		Page:     q.Page,
		PageSize: q.PageSize,
		Status:   q.Status,
		Search:   q.Search,
	}.Normalize(), nil
}

// respondPage sends a page: items as data, the rest as meta
func respondPage[T any](c *gin.Context, page shared.Page[T]) {
	c.JSON(http.StatusOK, dto.NewPageResponse(page))
}
