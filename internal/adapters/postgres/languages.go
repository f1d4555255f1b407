package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/unitpass/passbot/pkg/domain"
)

// LanguageSource reads the langs table. Failures and empty results are
// plain errors/empty maps here; the caching table in internal/langs
// decides to fall back.
type LanguageSource struct {
	db *sql.DB
}

// NewLanguageSource creates a source over an existing pool.
func NewLanguageSource(db *sql.DB) *LanguageSource {
	return &LanguageSource{db: db}
}

const selectLangsSQL = `
SELECT lang_code,
       COALESCE(name, ''),
       COALESCE(text1, ''),
       COALESCE(text2, ''),
       COALESCE(text3, ''),
       COALESCE(text4, ''),
       COALESCE(text5, ''),
       COALESCE(text6, ''),
       COALESCE(text7, ''),
       COALESCE(text8, '')
FROM langs`

// Fetch loads every language row.
func (s *LanguageSource) Fetch(ctx context.Context) (map[string]domain.LanguageBundle, error) {
	rows, err := s.db.QueryContext(ctx, selectLangsSQL)
	if err != nil {
		return nil, fmt.Errorf("query langs: %w", err)
	}
	defer rows.Close()

	bundles := make(map[string]domain.LanguageBundle)
	for rows.Next() {
		var code string
		var b domain.LanguageBundle
		if err := rows.Scan(
			&code,
			&b.Name,
			&b.SerialPrompt,
			&b.SerialError,
			&b.DatePrompt,
			&b.CodeIs,
			&b.Closing,
			&b.TodayButton,
			&b.ManualButton,
			&b.ManualPrompt,
		); err != nil {
			return nil, fmt.Errorf("scan lang row: %w", err)
		}
		if code == "" {
			continue
		}
		bundles[code] = b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate langs: %w", err)
	}
	return bundles, nil
}
