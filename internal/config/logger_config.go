package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type LogLevel string

const (
	LevelInfo    LogLevel = "INFO"
	LevelDebug   LogLevel = "DEBUG"
	LevelWarning LogLevel = "WARNING"
	LevelError   LogLevel = "ERROR"
	LevelFatal   LogLevel = "FATAL"
)

type LoggerConfig struct {
	LogLevel   LogLevel   `mapstructure:"log_level"`
	AppName    string     `mapstructure:"app_name"`
	OutputFile string     `mapstructure:"output_file"`
	Loki       LokiConfig `mapstructure:"loki"`
}

// LokiConfig enables log shipping when Url is set.
type LokiConfig struct {
	Url          string        `mapstructure:"url"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	TenantKey    string        `mapstructure:"tenant_key"`
	TenantValue  string        `mapstructure:"tenant_value"`
	BatchMaxSize int           `mapstructure:"batch_max_size"`
	BatchMaxWait time.Duration `mapstructure:"batch_max_wait"`
}

func (config LokiConfig) Enabled() bool {
	return config.Url != ""
}

func (config LoggerConfig) validate() error {
	var errs []error

	if config.LogLevel == "" {
		errs = append(errs, fmt.Errorf("missing variable: log_level"))
	}
	if config.OutputFile == "" {
		errs = append(errs, fmt.Errorf("missing variable: output_file"))
	}
	if config.Loki.BatchMaxSize < 0 {
		errs = append(errs, fmt.Errorf("loki.batch_max_size must not be negative"))
	}
	if config.Loki.BatchMaxWait < 0 {
		errs = append(errs, fmt.Errorf("loki.batch_max_wait must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config LoggerConfig) bindEnvironmentVariables(v *viper.Viper) error {

	err := v.BindEnv("logger.app_name", "APP_NAME")
	if err != nil {
		return err
	}

	err = v.BindEnv("logger.output_file", "LOG_OUTPUT_FILE")
	if err != nil {
		return err
	}

	err = v.BindEnv("logger.loki.url", "LOKI_URL")
	if err != nil {
		return err
	}

	err = v.BindEnv("logger.loki.username", "LOKI_USERNAME")
	if err != nil {
		return err
	}

	err = v.BindEnv("logger.loki.password", "LOKI_PASSWORD")
	if err != nil {
		return err
	}

	return v.BindEnv("logger.log_level", "LOG_LEVEL")
}
