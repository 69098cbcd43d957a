package sources

import (
	"context"
	"sort"

	"github.com/maxaizer/jobs-collector/internal/config"
	"github.com/maxaizer/jobs-collector/internal/entities"
)

type Result struct {
	Postings []entities.RawPosting
	// Skipped counts malformed items left out of Postings.
	Skipped int
}

// Adapter talks to one external source and maps its items onto RawPosting.
// Adapters keep no state between Fetch calls.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) (Result, error)
}

type Factory func(cfg config.SourceConfig) (Adapter, error)

var registry = map[string]Factory{
	config.SourceSaramin:  func(cfg config.SourceConfig) (Adapter, error) { return NewSaramin(cfg), nil },
	config.SourceWanted:   func(cfg config.SourceConfig) (Adapter, error) { return NewWanted(cfg), nil },
	config.SourceJumpit:   func(cfg config.SourceConfig) (Adapter, error) { return NewJumpit(cfg), nil },
	config.SourceRSS:      func(cfg config.SourceConfig) (Adapter, error) { return NewRSS(cfg), nil },
	config.SourceCareers:  func(cfg config.SourceConfig) (Adapter, error) { return NewCareers(cfg) },
	config.SourceJSONFeed: func(cfg config.SourceConfig) (Adapter, error) { return NewJSONFeed(cfg) },
}

func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// Build constructs the enabled adapters in configuration order.
func Build(configs []config.SourceConfig) ([]Adapter, error) {
	var adapters []Adapter
	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}

		factory, ok := registry[cfg.Kind]
		if !ok {
			return nil, newAdapterError(cfg.Name, KindConfig, nil, "unknown source kind %q", cfg.Kind)
		}

		adapter, err := factory(cfg)
		if err != nil {
			return nil, AsConfigError(cfg.Name, err)
		}
		adapters = append(adapters, adapter)
	}
	return adapters, nil
}

func AsConfigError(source string, err error) *AdapterError {
	return newAdapterError(source, KindConfig, err, "invalid source configuration")
}
