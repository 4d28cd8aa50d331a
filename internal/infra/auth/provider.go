package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/MicahParks/keyfunc/v3"
	jwtv4 "github.com/golang-jwt/jwt/v4"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type IdentityProvider struct {
	cfg  *OIDCConfig
	jwks keyfunc.Keyfunc
}

type Identity struct {
	UserID uuid.UUID
	Admin  bool
}

func NewIdentityProvider(cfg *OIDCConfig) (*IdentityProvider, error) {
	if cfg.Mode == "TEST" || cfg.IssuerURL == "" {
		return &IdentityProvider{cfg: cfg}, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*2)
	defer cancel()
	jwks, err := keyfunc.NewDefaultCtx(ctx, []string{cfg.IssuerURL + "/.well-known/jwks.json"})
	if err != nil {
		return nil, fmt.Errorf("failed to get JWKS: %v", err)
	}
	return &IdentityProvider{cfg: cfg, jwks: jwks}, nil
}

func (p *IdentityProvider) GetIdentity(tokenString string) (*Identity, error) {
	if p.cfg.Mode == "TEST" {
		return &Identity{
			UserID: *p.cfg.TestUser,
			Admin:  true,
		}, nil
	}

	if p.jwks != nil {
		claims := jwt.MapClaims{}
		_, err := jwt.ParseWithClaims(tokenString, claims, p.jwks.Keyfunc, jwt.WithLeeway(10*time.Second))
		if err != nil {
			return nil, fmt.Errorf("failed to parse JWT: %v", err)
		}
		return p.identityFromClaims(claims)
	}

	token, _, err := new(jwtv4.Parser).ParseUnverified(tokenString, jwtv4.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("identity can't be retrieved, %v", err)
	}
	claims := token.Claims.(jwtv4.MapClaims)
	return p.identityFromClaims(claims)
}

func (p *IdentityProvider) identityFromClaims(claims map[string]interface{}) (*Identity, error) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, fmt.Errorf("token has no sub claim")
	}
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, fmt.Errorf("sub claim is not a valid user ID, %v", err)
	}

	identity := &Identity{UserID: userID}
	if groups, ok := claims["groups"].([]interface{}); ok {
		for _, g := range groups {
			if name, ok := g.(string); ok && name == p.cfg.AdminGroup {
				identity.Admin = true
			}
		}
	}
	return identity, nil
}
