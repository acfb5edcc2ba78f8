package domain

import "errors"

// ErrSessionNotFound is returned when no session is stored for a user.
var ErrSessionNotFound = errors.New("session not found")

// ErrInvalidStep is returned when a step value is outside the defined set.
var ErrInvalidStep = errors.New("invalid step")

// ErrCatalogUnavailable is returned when course data could not be loaded.
var ErrCatalogUnavailable = errors.New("course catalog unavailable")
