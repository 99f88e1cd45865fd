// Package repository implements Task/Tag CRUD, soft-delete, and
// acyclic reparent (spec.md §4.C) against a storage transaction handed
// in by the Command Surface.
package repository

import "errors"

// Sentinel errors the Command Surface maps onto core.ErrorKind via
// errors.Is, keeping this package free of any dependency on internal/core.
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrArchived      = errors.New("archived")
	ErrCycleDetected = errors.New("cycle detected")
)
