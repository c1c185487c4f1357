package search

import (
	"strings"
	"unicode"

	"github.com/hyperjump/souq/internal/config"
	"github.com/hyperjump/souq/internal/intent"
	"github.com/hyperjump/souq/internal/models"
)

// ProcessQuery validates the query, applies limit defaults and settles its language.
// An explicit language is kept. Otherwise Arabic text means "ar", other text "en",
// and a query without letters gets the configured default.
func ProcessQuery(query *models.SearchQuery, cfg *config.SearchConfig) error {
	if err := query.Validate(cfg.DefaultLimit, cfg.MaxLimit); err != nil {
		return err
	}
	if query.Language != "" {
		return nil
	}
	if cfg.DefaultLanguage != "" && strings.IndexFunc(query.Query, unicode.IsLetter) < 0 {
		query.Language = cfg.DefaultLanguage
		return nil
	}
	query.Language = intent.ResolveLanguage(query.Query, "")
	return nil
}
