package auth

import (
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/promptvault/server/internal/config"
)

// Identity is what a validated token asserts about the caller
type Identity struct {
	UserID string
	Email  string
}

// Verifier validates access tokens issued by the external identity provider.
// This service never issues tokens itself.
type Verifier struct {
	config config.AuthConfig
}

// NewVerifier creates a token verifier
func NewVerifier(cfg config.AuthConfig) *Verifier {
	return &Verifier{config: cfg}
}

// ValidateAccessToken checks the signature and standard claims and returns
// the caller's identity. Issuer and audience are only enforced when
// configured.
func (v *Verifier) ValidateAccessToken(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(v.config.JWTSecret), nil
	})
	if err != nil {
		return nil, &AuthError{Code: "invalid_token", Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, &AuthError{Code: "invalid_token", Message: "invalid token claims"}
	}

	if v.config.JWTIssuer != "" {
		if iss, _ := claims["iss"].(string); iss != v.config.JWTIssuer {
			return nil, &AuthError{Code: "invalid_token", Message: "invalid token issuer"}
		}
	}
	if v.config.JWTAudience != "" {
		if aud, _ := claims["aud"].(string); aud != v.config.JWTAudience {
			return nil, &AuthError{Code: "invalid_token", Message: "invalid token audience"}
		}
	}

	userID, ok := claims["sub"].(string)
	if !ok || userID == "" {
		return nil, &AuthError{Code: "invalid_token", Message: "invalid token subject"}
	}

	email, _ := claims["email"].(string)

	return &Identity{UserID: userID, Email: email}, nil
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *AuthError) Error() string {
	return e.Message
}
