package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	SourceSaramin  = "saramin"
	SourceWanted   = "wanted"
	SourceJumpit   = "jumpit"
	SourceRSS      = "rss"
	SourceCareers  = "careers"
	SourceJSONFeed = "jsonfeed"
)

// SourceConfig configures one adapter instance. Name identifies the source in
// reports and postings, Kind selects the adapter implementation.
type SourceConfig struct {
	Name                 string            `mapstructure:"name" validate:"required"`
	Kind                 string            `mapstructure:"kind" validate:"required,oneof=saramin wanted jumpit rss careers jsonfeed"`
	Enabled              bool              `mapstructure:"enabled"`
	URL                  string            `mapstructure:"url" validate:"omitempty,url"`
	AccessKey            string            `mapstructure:"access_key"`
	Query                string            `mapstructure:"query"`
	MaxRequestsPerSecond float32           `mapstructure:"max_requests_per_second" validate:"gte=0"`
	MaxPages             int               `mapstructure:"max_pages" validate:"gte=0"`
	PageSize             int               `mapstructure:"page_size" validate:"gte=0"`
	Company              string            `mapstructure:"company"`
	CompanyDomain        string            `mapstructure:"company_domain"`
	CategoryHint         string            `mapstructure:"category_hint"`
	Selectors            map[string]string `mapstructure:"selectors"`
	Fields               map[string]string `mapstructure:"fields"`
}

var secretEnvironmentVariables = map[string]string{
	SourceSaramin: "SARAMIN_ACCESS_KEY",
}

func bindSourceSecrets(v *viper.Viper) error {
	for kind, env := range secretEnvironmentVariables {
		if err := v.BindEnv("secrets."+kind+"_access_key", env); err != nil {
			return err
		}
	}
	return nil
}

// applySourceSecrets fills access keys that are not set in the file from the environment.
func applySourceSecrets(v *viper.Viper, sources []SourceConfig) {
	for i := range sources {
		if sources[i].AccessKey != "" {
			continue
		}
		if _, ok := secretEnvironmentVariables[sources[i].Kind]; ok {
			sources[i].AccessKey = v.GetString("secrets." + sources[i].Kind + "_access_key")
		}
	}
}

func validateSources(sources []SourceConfig) error {
	validate := validator.New()

	var problems []string
	names := make(map[string]bool, len(sources))

	for i, source := range sources {
		if err := validate.Struct(source); err != nil {
			problems = append(problems, fmt.Sprintf("sources[%d]: %v", i, err))
			continue
		}
		if names[source.Name] {
			problems = append(problems, fmt.Sprintf("sources[%d]: duplicate name %q", i, source.Name))
		}
		names[source.Name] = true

		if !source.Enabled {
			continue
		}
		for _, field := range source.missingFields() {
			problems = append(problems, fmt.Sprintf("sources[%d] %s: missing %s", i, source.Name, field))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid sources: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (config SourceConfig) missingFields() []string {
	var missing []string

	switch config.Kind {
	case SourceSaramin:
		if config.AccessKey == "" {
			missing = append(missing, "access_key")
		}
	case SourceRSS, SourceJSONFeed:
		if config.URL == "" {
			missing = append(missing, "url")
		}
	case SourceCareers:
		if config.URL == "" {
			missing = append(missing, "url")
		}
		if config.Company == "" {
			missing = append(missing, "company")
		}
		for _, selector := range []string{"item", "title"} {
			if config.Selectors[selector] == "" {
				missing = append(missing, "selectors."+selector)
			}
		}
	}
	return missing
}
