// Package repository contains the data-access layer: one repository per
// entity, all speaking plain SQL against the league database.
package repository

import "errors"

// ErrNotFound is returned when a requested row does not exist. Callers map
// it to their own error taxonomy at the service boundary.
var ErrNotFound = errors.New("not found")
