// Package store persists each collection as a single JSON file holding the
// full record sequence in insertion order. Every mutation rewrites the file
// through a temp-file-then-rename cycle so a crash mid-write never corrupts
// the previous snapshot.
package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"shopledger-system/internal/models"
)

type Collection[T any] struct {
	path string
	mu   sync.Mutex
	recs []T
}

// Open loads the collection file. A missing file is first-run bootstrap and
// yields an empty collection; anything else unreadable is a PersistenceError.
func Open[T any](path string) (*Collection[T], error) {
	c := &Collection[T]{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, &models.PersistenceError{Op: "read", Path: path, Err: err}
	}
	if len(data) == 0 {
		return c, nil
	}
	if err := json.Unmarshal(data, &c.recs); err != nil {
		return nil, &models.PersistenceError{Op: "decode", Path: path, Err: err}
	}
	return c, nil
}

func (c *Collection[T]) Path() string {
	return c.path
}

// Snapshot returns a point-in-time copy of the records.
func (c *Collection[T]) Snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]T(nil), c.recs...)
}

func (c *Collection[T]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.recs)
}

// Append adds one record and persists. The lock is held for the full
// read-modify-persist cycle.
func (c *Collection[T]) Append(rec T) error {
	return c.Update(func(recs []T) ([]T, error) {
		return append(recs, rec), nil
	})
}

// Update applies fn to a copy of the records and persists the result. If fn
// or the write fails, the in-memory and on-disk state are left untouched.
func (c *Collection[T]) Update(fn func(recs []T) ([]T, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	next, err := fn(append([]T(nil), c.recs...))
	if err != nil {
		return err
	}
	if err := persist(c.path, next); err != nil {
		return err
	}
	c.recs = next
	return nil
}

// Transact runs fn over copies of two collections and persists a before b.
// Lock order is fixed: a is always locked first, so every caller must pass
// the item catalog as a and the ledger as b. If persisting b fails, a's file
// is restored from the pre-transaction snapshot.
func Transact[A, B any](a *Collection[A], b *Collection[B], fn func(av []A, bv []B) ([]A, []B, error)) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	b.mu.Lock()
	defer b.mu.Unlock()

	prevA := a.recs
	nextA, nextB, err := fn(append([]A(nil), a.recs...), append([]B(nil), b.recs...))
	if err != nil {
		return err
	}
	if err := persist(a.path, nextA); err != nil {
		return err
	}
	if err := persist(b.path, nextB); err != nil {
		// Roll the catalog file back so neither side of the transaction
		// is visible.
		_ = persist(a.path, prevA)
		return err
	}
	a.recs = nextA
	b.recs = nextB
	return nil
}

func persist[T any](path string, recs []T) error {
	if recs == nil {
		recs = []T{}
	}
	data, err := json.MarshalIndent(recs, "", "  ")
	if err != nil {
		return &models.PersistenceError{Op: "encode", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return &models.PersistenceError{Op: "write", Path: path, Err: err}
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &models.PersistenceError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &models.PersistenceError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return &models.PersistenceError{Op: "rename", Path: path, Err: err}
	}
	return nil
}
