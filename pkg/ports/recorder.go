package ports

import (
	"context"

	"github.com/unitpass/passbot/pkg/domain"
)

// Recorder is the persistence sink for completed dialogs. Append is
// invoked exactly once per completed dialog; implementations create
// their backing structure on first use if it is absent.
type Recorder interface {
	Append(ctx context.Context, rec *domain.PassCodeRecord) error
}
