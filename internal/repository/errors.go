// Package repository contains data access logic separated from HTTP
// handlers.  This file defines sentinel error values reused across the
// repositories so higher layers can distinguish failure scenarios with
// errors.Is instead of inspecting driver errors.
package repository

import "errors"

// ErrUserExists is returned when a username is already taken.
// Handlers should translate this into an HTTP 409 response.
var ErrUserExists = errors.New("username already exists")

// ErrUserNotFound is returned when a user row cannot be found.
var ErrUserNotFound = errors.New("user not found")

// ErrQuizNotFound is returned when a quiz row cannot be found, or is
// owned by someone else.  Handlers should translate this into an HTTP
// 404 response; ownership is deliberately not distinguishable from
// absence.
var ErrQuizNotFound = errors.New("quiz not found")
