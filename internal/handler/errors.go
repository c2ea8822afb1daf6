package handler

import (
	"errors"
	"net/http"

	"medstock/internal/service"
	"medstock/pkg/response"

	"github.com/gin-gonic/gin"
)

// writeError maps service errors to HTTP status codes:
// validation 400, authorization 403, not found 404, invalid transition and
// insufficient stock 409, anything else 500.
func writeError(c *gin.Context, err error) {
	var (
		validationErr   *service.ValidationError
		authErr         *service.AuthorizationError
		notFoundErr     *service.NotFoundError
		transitionErr   *service.InvalidTransitionError
		insufficientErr *service.InsufficientStockError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
	case errors.As(err, &authErr):
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, err.Error()))
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, response.Error(http.StatusNotFound, err.Error()))
	case errors.As(err, &transitionErr):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	case errors.As(err, &insufficientErr):
		c.JSON(http.StatusConflict, response.Error(http.StatusConflict, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "internal server error"))
	}
}
