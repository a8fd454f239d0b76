package auth

import (
	"crypto/ecdsa"
	"fmt"
	"time"

	"github.com/haguru/kakashi/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	ISSUER  = "github.com/haguru/kakashi"
	SUBJECT = "AUTHENTICATION"

	// TokenLifetime is how long an issued token stays valid. There is no
	// revocation list; a deleted principal's token verifies until it
	// expires and is only rejected by the gate's existence check.
	TokenLifetime = time.Hour
)

// CustomClaims carries the principal id and role alongside the registered claims.
type CustomClaims struct {
	PrincipalID string      `json:"id"`
	Role        models.Role `json:"role"`
	jwt.RegisteredClaims
}

// CreateToken issues an ES256-signed token for the given principal. The
// expiry is exactly TokenLifetime from issuance.
func CreateToken(principalID string, role models.Role, privateKey *ecdsa.PrivateKey) (string, error) {
	now := time.Now()
	claims := CustomClaims{
		PrincipalID: principalID,
		Role:        role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenLifetime)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    ISSUER,
			Subject:   SUBJECT,
			Audience:  []string{"api" + ISSUER},
			ID:        uuid.NewString(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)

	signToken, err := token.SignedString(privateKey)
	if err != nil {
		return "", err
	}

	return signToken, nil
}

// VerifyToken validates the signature and time claims and returns the decoded
// claims. Structural, signature, and expiry failures all come back as a
// single opaque error; callers get no expired-vs-malformed distinction.
func VerifyToken(tokenString string, publicKey *ecdsa.PublicKey) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		// validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return publicKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("token parsing error: %v", err)
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token or claims")
}
