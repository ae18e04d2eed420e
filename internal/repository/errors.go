// Package repository defines error types that are reused across multiple
// repositories. These sentinel values let handlers distinguish failure
// scenarios without inspecting driver errors: a duplicate email maps to
// HTTP 409, a missing row to 404 and an insufficient balance to 400.
// Anything else is a dependency failure and
// surfaces as HTTP 500 — a store error is never read as "not found".
package repository

import "errors"

// ErrEmailExists is returned when an insert collides with the unique email
// index of an account table.
var ErrEmailExists = errors.New("email already exists")

// ErrNotFound is returned when a requested row does not exist or is
// inactive.  Inactive accounts are reported identically to absent ones so
// login cannot leak which accounts exist or are disabled.
var ErrNotFound = errors.New("not found")

// ErrInsufficientPoints is returned when a redemption would drive a client's
// point balance below zero.
var ErrInsufficientPoints = errors.New("insufficient points")
