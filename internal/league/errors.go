// Package league implements the services behind the commander league API:
// the deck update orchestrator, seasons, games, leaderboards and admin.
package league

import (
	"errors"
	"fmt"

	"github.com/rookenthusiast/mtg-commander-league/internal/storage/repository"
)

// ValidationError reports rejected input. Maps to HTTP 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// NotFoundError reports a missing entity. Maps to HTTP 404.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// PersistenceError wraps a storage failure. Maps to HTTP 500.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("failed to %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// wrapStorage classifies a repository error: ErrNotFound becomes a
// NotFoundError, anything else a PersistenceError.
func wrapStorage(op, entity, id string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &NotFoundError{Entity: entity, ID: id}
	}
	return &PersistenceError{Op: op, Err: err}
}
