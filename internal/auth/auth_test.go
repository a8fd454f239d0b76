package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"log"
	"os"
	"testing"
	"time"

	"github.com/haguru/kakashi/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// testJwtPrivateKey is generated once in TestMain and shared by the tests.
var testJwtPrivateKey *ecdsa.PrivateKey

// otherPrivateKey signs tokens that must fail verification against
// testJwtPrivateKey's public key.
var otherPrivateKey *ecdsa.PrivateKey

func TestMain(m *testing.M) {
	validKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		log.Fatalf("Failed to generate ECDSA private key for tests: %v", err)
	}
	testJwtPrivateKey = validKey

	otherKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		log.Fatalf("Failed to generate second ECDSA private key for tests: %v", err)
	}
	otherPrivateKey = otherKey

	// PEM fixtures for the key-loading tests.
	der, err := x509.MarshalECPrivateKey(testJwtPrivateKey)
	if err != nil {
		log.Fatalf("Failed to marshal ECDSA private key: %v", err)
	}
	validPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
	if err := os.WriteFile(validKeyPath, validPEM, 0600); err != nil {
		log.Fatalf("Failed to write valid key fixture: %v", err)
	}
	if err := os.WriteFile(invalidKeyPath, []byte("not a pem block"), 0600); err != nil {
		log.Fatalf("Failed to write invalid key fixture: %v", err)
	}

	code := m.Run()

	os.Remove(validKeyPath)
	os.Remove(invalidKeyPath)

	os.Exit(code)
}

func TestCreateToken(t *testing.T) {
	type args struct {
		principalID string
		role        models.Role
	}
	tests := []struct {
		name    string
		args    args
		wantErr bool
	}{
		{
			name: "Successful token creation for user",
			args: args{
				principalID: "64f1d2a4c3b2a1908f7e6d5c",
				role:        models.RoleUser,
			},
			wantErr: false,
		},
		{
			name: "Successful token creation for admin",
			args: args{
				principalID: "64f1d2a4c3b2a1908f7e6d5d",
				role:        models.RoleAdmin,
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotTokenString, err := CreateToken(tt.args.principalID, tt.args.role, testJwtPrivateKey)
			if (err != nil) != tt.wantErr {
				t.Errorf("CreateToken() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if gotTokenString == "" {
				t.Error("CreateToken() returned an empty token string for a successful case")
				return
			}

			publicKey := &testJwtPrivateKey.PublicKey

			parsedToken, parseErr := jwt.ParseWithClaims(gotTokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodECDSA); !ok {
					return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
				}
				return publicKey, nil
			}, jwt.WithValidMethods([]string{"ES256"}))
			if parseErr != nil {
				t.Fatalf("Failed to parse or validate token: %v", parseErr)
			}
			if !parsedToken.Valid {
				t.Error("Parsed token is not valid")
			}

			claims, ok := parsedToken.Claims.(*CustomClaims)
			if !ok {
				t.Fatal("Failed to cast claims to *CustomClaims")
			}

			if claims.PrincipalID != tt.args.principalID {
				t.Errorf("Expected PrincipalID to be %s, got %s", tt.args.principalID, claims.PrincipalID)
			}
			if claims.Role != tt.args.role {
				t.Errorf("Expected Role to be %s, got %s", tt.args.role, claims.Role)
			}

			// Expiry must be exactly TokenLifetime out, with some slack for
			// test execution time.
			now := time.Now()
			if claims.ExpiresAt == nil ||
				claims.ExpiresAt.Before(now.Add(TokenLifetime-time.Minute)) ||
				claims.ExpiresAt.After(now.Add(TokenLifetime+time.Minute)) {
				t.Errorf("ExpiresAt claim is not within expected range, got %v", claims.ExpiresAt)
			}
			if claims.IssuedAt == nil || claims.IssuedAt.After(now.Add(5*time.Second)) || claims.IssuedAt.Before(now.Add(-5*time.Second)) {
				t.Errorf("IssuedAt claim is not recent enough, got %v", claims.IssuedAt)
			}
			if claims.Issuer != ISSUER {
				t.Errorf("Expected Issuer to be %s, got %s", ISSUER, claims.Issuer)
			}
			if claims.Subject != SUBJECT {
				t.Errorf("Expected Subject to be %s, got %s", SUBJECT, claims.Subject)
			}
			if claims.ID == "" {
				t.Error("ID (JTI) claim is empty")
			}
			if _, err := uuid.Parse(claims.ID); err != nil {
				t.Errorf("ID (JTI) claim is not a valid UUID: %v", err)
			}
		})
	}
}

func TestVerifyToken(t *testing.T) {
	validToken, err := CreateToken("64f1d2a4c3b2a1908f7e6d5c", models.RoleUser, testJwtPrivateKey)
	if err != nil {
		t.Fatalf("Failed to create token for test: %v", err)
	}

	differentKeyToken, err := CreateToken("64f1d2a4c3b2a1908f7e6d5c", models.RoleUser, otherPrivateKey)
	if err != nil {
		t.Fatalf("Failed to create token with different key: %v", err)
	}

	expiredToken := makeExpiredToken(t)
	hmacToken := makeHMACToken(t)

	tests := []struct {
		name        string
		tokenString string
		wantErr     bool
	}{
		{
			name:        "Successful token verification with valid token",
			tokenString: validToken,
			wantErr:     false,
		},
		{
			name:        "Error with invalid token format",
			tokenString: "invalid-token-format",
			wantErr:     true,
		},
		{
			name:        "Error with token signed by different key",
			tokenString: differentKeyToken,
			wantErr:     true,
		},
		{
			name:        "Error with expired token",
			tokenString: expiredToken,
			wantErr:     true,
		},
		{
			name:        "Error with unexpected signing method",
			tokenString: hmacToken,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotClaims, err := VerifyToken(tt.tokenString, &testJwtPrivateKey.PublicKey)
			if (err != nil) != tt.wantErr {
				t.Errorf("VerifyToken() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}

			if gotClaims == nil {
				t.Error("VerifyToken() returned nil claims for a successful case")
				return
			}
			if gotClaims.PrincipalID != "64f1d2a4c3b2a1908f7e6d5c" {
				t.Errorf("Expected PrincipalID to be '64f1d2a4c3b2a1908f7e6d5c', got %s", gotClaims.PrincipalID)
			}
			if gotClaims.Role != models.RoleUser {
				t.Errorf("Expected Role to be %s, got %s", models.RoleUser, gotClaims.Role)
			}
		})
	}
}

// makeExpiredToken signs a token whose expiry is already in the past.
func makeExpiredToken(t *testing.T) string {
	t.Helper()

	claims := CustomClaims{
		PrincipalID: "64f1d2a4c3b2a1908f7e6d5c",
		Role:        models.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			Issuer:    ISSUER,
			Subject:   SUBJECT,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	signed, err := token.SignedString(testJwtPrivateKey)
	if err != nil {
		t.Fatalf("Failed to sign expired token: %v", err)
	}
	return signed
}

// makeHMACToken signs a token with HS256; the verifier only accepts ECDSA.
func makeHMACToken(t *testing.T) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, CustomClaims{
		PrincipalID: "64f1d2a4c3b2a1908f7e6d5c",
		Role:        models.RoleUser,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte("not-an-ecdsa-key"))
	if err != nil {
		t.Fatalf("Failed to sign HMAC token: %v", err)
	}
	return signed
}
