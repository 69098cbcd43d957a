package config

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type PipelineConfig struct {
	// Schedule is a cron expression for the built-in trigger; empty runs once and exits.
	Schedule              string        `mapstructure:"schedule"`
	RunOnStart            bool          `mapstructure:"run_on_start"`
	MaxConcurrentAdapters int           `mapstructure:"max_concurrent_adapters" validate:"gte=1"`
	AdapterTimeout        time.Duration `mapstructure:"adapter_timeout" validate:"gt=0"`
	LookbackDays          int           `mapstructure:"lookback_days" validate:"gte=1"`
	// ReviewRetentionDays bounds the match review queue; zero keeps reviews forever.
	ReviewRetentionDays   int           `mapstructure:"review_retention_days" validate:"gte=0"`
	// SkillsVocabulary replaces the embedded skill vocabulary when set.
	SkillsVocabulary      string        `mapstructure:"skills_vocabulary" validate:"omitempty,file"`
}

func (config PipelineConfig) validate() error {
	if err := validator.New().Struct(config); err != nil {
		return err
	}

	if config.Schedule != "" {
		if _, err := cron.ParseStandard(config.Schedule); err != nil {
			return err
		}
	}
	return nil
}

func (config PipelineConfig) bindEnvironmentVariables(v *viper.Viper) error {
	var errs []error

	bindings := map[string]string{
		"pipeline.schedule":                "COLLECTION_SCHEDULE",
		"pipeline.run_on_start":            "RUN_ON_START",
		"pipeline.max_concurrent_adapters": "MAX_CONCURRENT_ADAPTERS",
		"pipeline.adapter_timeout":         "ADAPTER_TIMEOUT",
		"pipeline.lookback_days":           "LOOKBACK_DAYS",
		"pipeline.review_retention_days":   "REVIEW_RETENTION_DAYS",
		"pipeline.skills_vocabulary":       "SKILLS_VOCABULARY",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return createMultiError(errs)
	}
	return nil
}
