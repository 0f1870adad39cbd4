package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vargamick/poster-memento-sub005/pkg/server/dto"
	"github.com/vargamick/poster-memento-sub005/pkg/types"
)

// respondError maps engine errors onto HTTP status codes. Validation
// failures are the caller's fault, missing entities are 404, everything
// else is an internal failure.
func respondError(c *gin.Context, err error) {
	var (
		validation  *types.ValidationError
		notFound    *types.NotFoundError
		unavailable *types.StrategyUnavailableError
	)
	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	case errors.As(err, &notFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.As(err, &unavailable):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
	}
}
