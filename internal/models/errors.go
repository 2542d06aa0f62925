package models

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned for any lookup miss (item, sale order, purchase
// order, barcode). Wrap it with context via NotFoundError.
var ErrNotFound = errors.New("record not found")

type NotFoundError struct {
	Kind string
	Key  string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Key)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

type InsufficientStockError struct {
	Barcode   string
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.Barcode, e.Requested, e.Available)
}

type DuplicateBarcodeError struct {
	Barcode string
}

func (e *DuplicateBarcodeError) Error() string {
	return fmt.Sprintf("barcode %s already exists", e.Barcode)
}

// PersistenceError wraps a failed read or write of a collection file. Read
// errors other than a missing file surface through it; write errors abort the
// operation that triggered them.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
