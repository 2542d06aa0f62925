package handler

import (
	"math/rand"

	"shopledger-system/internal/models"
)

const generatedBarcodeLength = 12

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// GenerateBarcode produces a random 12-digit code not present in items. The
// collision odds are negligible but it still loops rather than assuming
// uniqueness.
func GenerateBarcode(items []models.Item) string {
	for {
		code := make([]byte, generatedBarcodeLength)
		for i := range code {
			code[i] = byte('0' + rand.Intn(10))
		}
		if FindByBarcode(items, string(code)) < 0 {
			return string(code)
		}
	}
}

// ValidateManualBarcode checks a manually entered reference number: all
// digits, 12 or 13 characters, and not already in the catalog.
func ValidateManualBarcode(code string, items []models.Item) error {
	if !isAllDigits(code) || (len(code) != 12 && len(code) != 13) {
		return &models.ValidationError{Field: "ref_number", Reason: "barcode must be 12 or 13 digits"}
	}
	if FindByBarcode(items, code) >= 0 {
		return &models.DuplicateBarcodeError{Barcode: code}
	}
	return nil
}

// --- BarcodeAllocator surface ---

func (s *CatalogHandler) Generate() string {
	return GenerateBarcode(s.items.Snapshot())
}

func (s *CatalogHandler) Validate(code string) error {
	return ValidateManualBarcode(code, s.items.Snapshot())
}
