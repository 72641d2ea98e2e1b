package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"godrift/domain/anomaly"
	"godrift/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Detection DetectionConfig
	Server    ServerConfig
}

// DetectionConfig holds detection run settings
type DetectionConfig struct {
	Parameters anomaly.DetectionParameters
	// RunTimeout bounds a full detection run; columns not finished in
	// time are reported as skipped, never silently dropped.
	RunTimeout time.Duration
	// DriftBaselineBuckets is the trailing-window size for text drift.
	DriftBaselineBuckets int
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
}

// Load reads configuration from environment variables and validates it.
// A .env file is honored when present, matching the deployment setup.
func Load() (*Config, error) {
	_ = godotenv.Load()

	params := anomaly.DefaultParameters()
	params.ZScoreThreshold = envFloat("DETECT_ZSCORE_THRESHOLD", params.ZScoreThreshold)
	params.MovingAverageWindow = envInt("DETECT_MOVING_AVERAGE_WINDOW", params.MovingAverageWindow)
	params.PercentileThresholds[0] = envFloat("DETECT_PERCENTILE_LOWER", params.PercentileThresholds[0])
	params.PercentileThresholds[1] = envFloat("DETECT_PERCENTILE_UPPER", params.PercentileThresholds[1])
	params.TextSimilarityThreshold = envFloat("DETECT_TEXT_SIMILARITY_THRESHOLD", params.TextSimilarityThreshold)
	params.MinimumAnomalyDuration = envInt("DETECT_MIN_ANOMALY_DURATION", params.MinimumAnomalyDuration)

	if err := params.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid detection parameters")
	}

	cfg := &Config{
		Detection: DetectionConfig{
			Parameters:           params,
			RunTimeout:           envDuration("DETECT_RUN_TIMEOUT", 30*time.Second),
			DriftBaselineBuckets: envInt("DETECT_DRIFT_BASELINE_BUCKETS", 3),
		},
		Server: ServerConfig{
			Port: envString("SERVER_PORT", "8080"),
		},
	}
	if cfg.Detection.DriftBaselineBuckets <= 0 {
		return nil, errors.ConfigInvalid("DETECT_DRIFT_BASELINE_BUCKETS must be positive")
	}
	return cfg, nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
