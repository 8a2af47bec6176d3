// Package repositories defines the data-access interfaces and their GORM
// implementations. Sentinel errors declared here let higher layers map
// storage failures to HTTP statuses with errors.Is instead of string checks.
package repositories

import "errors"

// ErrNotFound is returned when a looked-up user, item or outfit does not
// exist. Handlers translate this into an HTTP 404 response.
var ErrNotFound = errors.New("record not found")
