package logger

import (
	"github.com/maxaizer/jobs-collector/internal/metrics"
	log "github.com/sirupsen/logrus"
)

// errorTypes bounds the "type" label of metrics.ErrorsCounter.
var errorTypes = []string{ErrorTypeDb, ErrorTypeAdapter, ErrorTypeSink, ErrorTypeConfig}

const unknownErrorType = "unknown"

// prometheusHook counts error entries by their error_type field.
type prometheusHook struct{}

func (h *prometheusHook) Fire(entry *log.Entry) error {
	metrics.ErrorsCounter.WithLabelValues(errorTypeOf(entry)).Inc()
	return nil
}

func (h *prometheusHook) Levels() []log.Level {
	return []log.Level{
		log.ErrorLevel,
		log.FatalLevel,
		log.PanicLevel,
	}
}

func errorTypeOf(entry *log.Entry) string {
	errorType, _ := entry.Data[ErrorTypeField].(string)
	for _, known := range errorTypes {
		if errorType == known {
			return errorType
		}
	}
	return unknownErrorType
}

func addPrometheusHook() {
	for _, errorType := range append(errorTypes, unknownErrorType) {
		metrics.ErrorsCounter.WithLabelValues(errorType)
	}
	log.AddHook(&prometheusHook{})
}
