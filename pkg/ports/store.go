package ports

import (
	"context"

	"github.com/unitpass/passbot/pkg/domain"
)

// SessionStore persists dialog sessions keyed by the stable user id.
// It is the only mutable shared state in the system.
//
// Load and Save are not an atomic pair: the engine's read-validate-write
// of a session may interleave with another event from the same user, and
// the last write wins. Callers that need stronger ordering wrap handling
// in a per-user critical section (see pkg/session).
type SessionStore interface {
	// Load retrieves the session for a user.
	// Returns domain.ErrSessionNotFound if the user has none.
	Load(ctx context.Context, userID int64) (*domain.Session, error)

	// Save persists the session for a user, overwriting any previous one.
	Save(ctx context.Context, userID int64, s *domain.Session) error

	// Delete removes the session for a user. Deleting a missing session
	// is not an error.
	Delete(ctx context.Context, userID int64) error
}
