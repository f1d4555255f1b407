package domain

import "errors"

// ErrSessionNotFound is returned when a user id cannot be found in the
// session store.
var ErrSessionNotFound = errors.New("session not found")

// ErrLanguageNotFound is returned when a language code misses the cached
// table, typically after a refresh dropped the code a session captured.
var ErrLanguageNotFound = errors.New("language not found")
