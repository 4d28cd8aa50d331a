package auth

import (
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/nordviken/onboarding-backend/pkg/env"
)

type OIDCConfig struct {
	IssuerURL  string
	ClientID   string
	AdminGroup string
	Mode       string
	TestUser   *uuid.UUID
}

func NewOIDCConfig() *OIDCConfig {
	var testUserID uuid.UUID
	testUser := os.Getenv("TEST_USER")
	if testUser != "" {
		var err error
		testUserID, err = uuid.Parse(testUser)
		if err != nil {
			log.Panicf("TEST_USER is not a valid user ID: %v", err)
		}
	}
	return &OIDCConfig{
		IssuerURL:  os.Getenv("OIDC_ISSUER"),
		ClientID:   os.Getenv("OIDC_CLIENT_ID"),
		AdminGroup: env.GetEnv("OIDC_ADMIN_GROUP", "onboarding-admins"),
		Mode:       os.Getenv("MODE"),
		TestUser:   &testUserID,
	}
}
