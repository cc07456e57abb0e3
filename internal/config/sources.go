package config

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"event-scraper/internal/domain/entity"
)

// sourceYAML is the on-disk shape of one source entry. Selector values are
// comma-separated fallback lists, parsed once here so call sites only ever
// see the ordered form.
type sourceYAML struct {
	Name              string            `yaml:"name"`
	BaseURL           string            `yaml:"base_url"`
	SearchURLTemplate string            `yaml:"search_url_template"`
	Enabled           *bool             `yaml:"enabled"`
	Category          string            `yaml:"category"`
	Type              string            `yaml:"type"`
	RateLimitSeconds  float64           `yaml:"rate_limit_seconds"`
	UserAgent         string            `yaml:"user_agent"`
	Selectors         map[string]string `yaml:"selectors"`
}

type sourcesFile struct {
	Sources []sourceYAML `yaml:"sources"`
}

// LoadSources reads the YAML source catalog at path and returns the valid
// entries. Sources that fail validation are skipped with a warning rather
// than failing startup, so one bad entry cannot take every source down.
func LoadSources(path string, logger *slog.Logger) ([]entity.SourceConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sources config: %w", err)
	}

	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse sources config: %w", err)
	}

	sources := make([]entity.SourceConfig, 0, len(file.Sources))
	for _, raw := range file.Sources {
		src := entity.SourceConfig{
			Name:              raw.Name,
			BaseURL:           raw.BaseURL,
			SearchURLTemplate: raw.SearchURLTemplate,
			Enabled:           raw.Enabled == nil || *raw.Enabled,
			Category:          raw.Category,
			Type:              raw.Type,
			RateLimitSeconds:  raw.RateLimitSeconds,
			UserAgent:         raw.UserAgent,
			Selectors: entity.Selectors{
				Title:         entity.ParseSelectorList(raw.Selectors["title"]),
				Content:       entity.ParseSelectorList(raw.Selectors["content"]),
				PublishedDate: entity.ParseSelectorList(raw.Selectors["published_date"]),
				Author:        entity.ParseSelectorList(raw.Selectors["author"]),
				ArticleLinks:  entity.ParseSelectorList(raw.Selectors["article_links"]),
			},
		}

		if err := src.Validate(); err != nil {
			logger.Warn("skipping invalid source",
				slog.String("source", raw.Name),
				slog.String("error", err.Error()))
			continue
		}

		sources = append(sources, src)
	}

	logger.Info("loaded source catalog",
		slog.String("path", path),
		slog.Int("sources", len(sources)),
		slog.Int("skipped", len(file.Sources)-len(sources)))

	return sources, nil
}

// EnabledSources filters the catalog to enabled entries.
func EnabledSources(sources []entity.SourceConfig) []entity.SourceConfig {
	out := make([]entity.SourceConfig, 0, len(sources))
	for _, s := range sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}
