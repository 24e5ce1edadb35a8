package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrTemplateNotFound is returned by a TemplateStore when a descriptor no
// longer resolves to a readable template.
var ErrTemplateNotFound = errors.New("template not found")

// ErrServiceUnavailable is returned when the generative service is
// short-circuited by an open breaker. Expected condition, not exceptional.
var ErrServiceUnavailable = errors.New("generative service unavailable")
