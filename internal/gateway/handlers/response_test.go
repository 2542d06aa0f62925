package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"shopledger-system/internal/models"
)

func statusFor(t *testing.T, err error) int {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	respondError(c, err)
	return w.Code
}

func TestRespondErrorStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, statusFor(t, &models.NotFoundError{Kind: "item", Key: "1"}))
	assert.Equal(t, http.StatusBadRequest, statusFor(t, &models.ValidationError{Field: "quantity", Reason: "bad"}))
	assert.Equal(t, http.StatusConflict, statusFor(t, &models.InsufficientStockError{Barcode: "1", Requested: 2, Available: 1}))
	assert.Equal(t, http.StatusConflict, statusFor(t, &models.DuplicateBarcodeError{Barcode: "1"}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(t, &models.PersistenceError{Op: "write", Path: "x", Err: errors.New("disk")}))
	assert.Equal(t, http.StatusInternalServerError, statusFor(t, errors.New("unexpected")))
}

func TestRespondErrorWrappedNotFound(t *testing.T) {
	err := errors.Join(errors.New("context"), models.ErrNotFound)
	assert.Equal(t, http.StatusNotFound, statusFor(t, err))
}
