package engine

import (
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/edp1096/audio-spice/internal/logging"
	"github.com/edp1096/audio-spice/pkg/analysis"
	"github.com/edp1096/audio-spice/pkg/response"
)

const defaultTracerName = "github.com/edp1096/audio-spice/pkg/engine"

// Config wires the engine's collaborators. Zero values fall back to
// sensible defaults in New.
type Config struct {
	Logger     logging.Logger
	Registerer prometheus.Registerer // nil skips metric registration
	Workers    int                   // per-net worker goroutines, GOMAXPROCS when <= 0
	TracerName string
	Model      *response.Model // shared by every run, created when nil
}

func DefaultConfig() Config {
	return Config{
		Logger:     logging.Noop(),
		Workers:    analysis.DefaultWorkers(),
		TracerName: defaultTracerName,
	}
}

// ConfigFromEnv starts from DefaultConfig, registers metrics with the default
// Prometheus registry and applies AUDIOSPICE_WORKERS and the
// LOG_LEVEL/LOG_FORMAT logger settings.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.Logger = logging.NewFromEnv()
	cfg.Registerer = prometheus.DefaultRegisterer
	if raw := os.Getenv("AUDIOSPICE_WORKERS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	return cfg
}
