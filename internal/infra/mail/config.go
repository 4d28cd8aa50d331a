package mail

import (
	"os"

	"github.com/nordviken/onboarding-backend/pkg/env"
)

type MailConfig struct {
	SMTPHost string
	SMTPPort string
	Username string
	Password string
	From     string
}

func NewMailConfig() *MailConfig {
	username := os.Getenv("MAIL_USERNAME")
	return &MailConfig{
		SMTPHost: os.Getenv("MAIL_HOST"),
		SMTPPort: env.GetEnv("MAIL_PORT", "587"),
		Username: username,
		Password: os.Getenv("MAIL_PASSWORD"),
		From:     env.GetEnv("MAIL_FROM", username),
	}
}
