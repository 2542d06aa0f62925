package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopledger-system/internal/models"
)

func TestGenerateBarcodeFormat(t *testing.T) {
	code := GenerateBarcode(nil)
	assert.Len(t, code, 12)
	assert.True(t, isAllDigits(code))
}

func TestGenerateBarcodeAvoidsExisting(t *testing.T) {
	items := []models.Item{
		{Barcode: "111111111111", ProductName: "Cola"},
	}
	for i := 0; i < 100; i++ {
		code := GenerateBarcode(items)
		assert.NotEqual(t, "111111111111", code)
	}
}

func TestValidateManualBarcode(t *testing.T) {
	items := []models.Item{
		{Barcode: "111111111111", ProductName: "Cola"},
	}

	require.NoError(t, ValidateManualBarcode("222222222222", items))
	require.NoError(t, ValidateManualBarcode("2222222222223", items))

	var verr *models.ValidationError
	require.ErrorAs(t, ValidateManualBarcode("12345", items), &verr)
	require.ErrorAs(t, ValidateManualBarcode("12345678901a", items), &verr)
	require.ErrorAs(t, ValidateManualBarcode("", items), &verr)

	var dup *models.DuplicateBarcodeError
	require.ErrorAs(t, ValidateManualBarcode("111111111111", items), &dup)
}
