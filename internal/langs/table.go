// Package langs maintains the cached language resource table.
//
// The table is read-mostly and rebuildable at any time: every dialog-start
// refreshes it from the source, in-flight sessions re-resolve their bundle
// from the current cache at reply time and tolerate a stale snapshot.
package langs

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/unitpass/passbot/pkg/domain"
	"github.com/unitpass/passbot/pkg/ports"
)

//go:embed fallback.yaml
var fallbackYAML []byte

var fallback map[string]domain.LanguageBundle

func init() {
	if err := yaml.Unmarshal(fallbackYAML, &fallback); err != nil {
		panic(fmt.Sprintf("langs: bad embedded fallback table: %v", err))
	}
}

// Fallback returns a copy of the built-in bundle table. It always holds
// at least two languages so the dialog can proceed without the external
// provider.
func Fallback() map[string]domain.LanguageBundle {
	cp := make(map[string]domain.LanguageBundle, len(fallback))
	for code, b := range fallback {
		cp[code] = b
	}
	return cp
}

// Table caches language bundles fetched from a source. A refresh never
// fails to the caller: when the source errors or returns no rows, the
// embedded fallback table is served instead.
type Table struct {
	source ports.LanguageSource
	logger *slog.Logger

	mu    sync.RWMutex
	cache map[string]domain.LanguageBundle
}

// NewTable creates a table seeded with the fallback bundles, so Get works
// even before the first refresh.
func NewTable(source ports.LanguageSource, logger *slog.Logger) *Table {
	return &Table{
		source: source,
		logger: logger,
		cache:  Fallback(),
	}
}

// FetchAll refreshes the cache from the source and returns a snapshot.
func (t *Table) FetchAll(ctx context.Context) map[string]domain.LanguageBundle {
	bundles, err := t.source.Fetch(ctx)
	switch {
	case err != nil:
		t.logger.Warn("language fetch failed, serving fallback", "err", err)
		bundles = Fallback()
	case len(bundles) == 0:
		t.logger.Warn("language source returned no rows, serving fallback")
		bundles = Fallback()
	}

	t.mu.Lock()
	t.cache = bundles
	t.mu.Unlock()

	snapshot := make(map[string]domain.LanguageBundle, len(bundles))
	for code, b := range bundles {
		snapshot[code] = b
	}
	return snapshot
}

// Get returns the cached bundle for code. A miss means the code is stale
// or unknown and the caller should restart language selection.
func (t *Table) Get(code string) (domain.LanguageBundle, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	b, ok := t.cache[code]
	return b, ok
}
