package registry

import (
	"os"
)

type Config struct {
	BaseURL      string
	IssuerURL    string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
}

func NewConfig() *Config {
	return &Config{
		BaseURL:      os.Getenv("REGISTRY_URL"),
		IssuerURL:    os.Getenv("REGISTRY_ISSUER"),
		TokenURL:     os.Getenv("REGISTRY_TOKEN_URL"),
		ClientID:     os.Getenv("REGISTRY_CLIENT_ID"),
		ClientSecret: os.Getenv("REGISTRY_CLIENT_SECRET"),
		Scopes:       []string{"registry:read"},
	}
}
