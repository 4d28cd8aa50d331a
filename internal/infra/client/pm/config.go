package pm

import (
	"fmt"
	"net/url"
	"os"

	"github.com/nordviken/onboarding-backend/pkg/env"
)

type Config struct {
	schema string
	host   string
	port   string
	apiKey string
}

func NewConfig() *Config {
	return &Config{
		schema: env.GetEnv("PM_SCHEMA", "https"),
		host:   env.GetEnv("PM_HOST", "localhost"),
		port:   env.GetEnv("PM_PORT", "443"),
		apiKey: os.Getenv("PM_API_KEY"),
	}
}

func NewConfigFromURL(raw string) (*Config, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid pm url %q, %v", raw, err)
	}
	return &Config{
		schema: u.Scheme,
		host:   u.Hostname(),
		port:   u.Port(),
	}, nil
}
