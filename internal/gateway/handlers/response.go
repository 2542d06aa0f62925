package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"shopledger-system/internal/models"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

func successResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}
}

func errorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
	}
}

// respondError translates the engine's error taxonomy to HTTP statuses.
func respondError(c *gin.Context, err error) {
	var (
		notFound    *models.NotFoundError
		validation  *models.ValidationError
		stock       *models.InsufficientStockError
		duplicate   *models.DuplicateBarcodeError
		persistence *models.PersistenceError
	)

	switch {
	case errors.As(err, &notFound) || errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.As(err, &stock):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.As(err, &duplicate):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	case errors.As(err, &persistence):
		c.JSON(http.StatusInternalServerError, errorResponse("storage failure, operation aborted"))
	default:
		c.JSON(http.StatusInternalServerError, errorResponse(err.Error()))
	}
}
