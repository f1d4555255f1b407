package ports

import (
	"context"

	"github.com/unitpass/passbot/pkg/domain"
)

// LanguageSource fetches the full language table from an external
// provider. Implementations report failures as plain errors; the fallback
// behavior (never surfacing a failure to the dialog) belongs to the
// caching table in internal/langs, not to the source.
type LanguageSource interface {
	Fetch(ctx context.Context) (map[string]domain.LanguageBundle, error)
}
