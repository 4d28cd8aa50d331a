package auth

import (
	"fmt"
	"time"

	jwtv4 "github.com/golang-jwt/jwt/v4"
)

// SignInternalToken issues a short-lived HS256 token for internal
// scheduler-to-API calls.
func SignInternalToken(secret string, subject string) (string, error) {
	now := time.Now()
	token := jwtv4.NewWithClaims(jwtv4.SigningMethodHS256, jwtv4.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwtv4.NewNumericDate(now),
		ExpiresAt: jwtv4.NewNumericDate(now.Add(time.Minute * 5)),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("error signing internal token, %v", err)
	}
	return signed, nil
}

func VerifyInternalToken(secret string, tokenString string) error {
	token, err := jwtv4.Parse(tokenString, func(t *jwtv4.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtv4.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return fmt.Errorf("error parsing internal token, %v", err)
	}
	if !token.Valid {
		return fmt.Errorf("internal token is invalid")
	}
	return nil
}
