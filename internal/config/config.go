package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// Server
	Port        int    `envconfig:"PORT" default:"3000"`
	Environment string `envconfig:"ENV" default:"development"`

	// Database
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// Face pipeline providers
	FaceProvider string `envconfig:"EMBEDDER_TYPE" default:"deepface"`
	DeepFaceURL  string `envconfig:"DEEPFACE_URL" default:"http://localhost:5005"`
	AWSRegion    string `envconfig:"AWS_REGION" default:"us-east-1"`

	// Recognition tuning
	MatchThreshold       float64 `envconfig:"MATCH_THRESHOLD" default:"0.78"`
	RequiredStableFrames int     `envconfig:"REQUIRED_STABLE_FRAMES" default:"25"`
	MatchWindowSize      int     `envconfig:"MATCH_WINDOW_SIZE" default:"3"`
	EmbeddingDim         int     `envconfig:"EMBEDDING_DIM" default:"512"`

	// Attendance
	MinVisitSeconds int `envconfig:"MIN_VISIT_SECONDS" default:"60"`

	// Denied-attempt rate limiting
	DeniedAttemptLimit  int `envconfig:"DENIED_ATTEMPT_LIMIT" default:"10"`
	DeniedAttemptWindow int `envconfig:"DENIED_ATTEMPT_WINDOW_SECONDS" default:"60"`
}

// Load reads configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// MinVisit returns the minimum visit window as a duration.
func (c *Config) MinVisit() time.Duration {
	return time.Duration(c.MinVisitSeconds) * time.Second
}
