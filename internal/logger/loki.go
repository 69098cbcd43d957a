package logger

import (
	"fmt"
	"github.com/maxaizer/jobs-collector/internal/config"
	"github.com/maxaizer/jobs-collector/pkg/loki"
	log "github.com/sirupsen/logrus"
	"path/filepath"
	"strconv"
)

const lokiSourceField = "source"

var lokiPusher *loki.Pusher

type logrusAdapter struct{}

func (l *logrusAdapter) Error(msg string, args ...any) {
	log.WithFields(log.Fields{"args": args, lokiSourceField: "loki"}).Error(msg)
}

type lokiHook struct {
	pusher   *loki.Pusher
	minLevel log.Level
}

func (h *lokiHook) Fire(entry *log.Entry) error {
	if entry.Data[lokiSourceField] == "loki" {
		return nil
	}

	caller := ""
	if entry.Caller != nil {
		caller = filepath.Base(entry.Caller.Function) + ":" + strconv.Itoa(entry.Caller.Line)
	}

	h.pusher.Push(loki.LogEntry{
		Time:    entry.Time,
		Level:   entry.Level.String(),
		Message: entry.Message,
		Caller:  caller,
		Fields:  stringFields(entry.Data),
	})
	return nil
}

func (h *lokiHook) Levels() []log.Level {
	var levels []log.Level
	for _, level := range log.AllLevels {
		if level <= h.minLevel {
			levels = append(levels, level)
		}
	}
	return levels
}

func stringFields(data log.Fields) map[string]string {
	if len(data) == 0 {
		return nil
	}
	fields := make(map[string]string, len(data))
	for key, value := range data {
		fields[key] = fmt.Sprint(value)
	}
	return fields
}

func addLokiHook(cfg config.LoggerConfig, minLevel log.Level) error {
	pusher, err := loki.New(loki.Config{
		Url:          cfg.Loki.Url,
		BatchMaxSize: cfg.Loki.BatchMaxSize,
		BatchMaxWait: cfg.Loki.BatchMaxWait,
		Labels:       map[string]string{"app": cfg.AppName},
		TenantKey:    cfg.Loki.TenantKey,
		TenantValue:  cfg.Loki.TenantValue,
		Username:     cfg.Loki.Username,
		Password:     cfg.Loki.Password,
	}, &logrusAdapter{})
	if err != nil {
		return err
	}

	lokiPusher = pusher
	log.AddHook(&lokiHook{pusher: pusher, minLevel: minLevel})
	log.Info("Loki logging enabled")
	return nil
}

func stopLokiHook() {
	if lokiPusher != nil {
		lokiPusher.Stop()
	}
}
