package middleware

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/haguru/kakashi/internal/auth"
	"github.com/haguru/kakashi/internal/interfaces"
	"github.com/haguru/kakashi/internal/models"
	"github.com/haguru/kakashi/internal/models/dto"
)

type contextKey string

// ClaimsContextKey is where the gate stores the decoded token claims.
const ClaimsContextKey contextKey = "authClaims"

const (
	MsgAccessDenied     = "Access denied"
	MsgInvalidToken     = "Invalid token"
	MsgUserNotFound     = "User not found"
	MsgAdminNotFound    = "Admin not found"
	MsgRoleMismatch     = "Token role does not match"
	BearerSchemePrefix  = "Bearer "
	AuthorizationHeader = "Authorization"
)

// AuthGate guards routes behind a bearer-token check for a required
// principal kind. The decoded id is resolved against the repository of the
// REQUIRED kind, so by default a token's embedded role is not consulted;
// StrictRoleCheck adds that comparison.
type AuthGate struct {
	PublicKey       *ecdsa.PublicKey
	UserRepo        interfaces.PrincipalRepository
	AdminRepo       interfaces.PrincipalRepository
	StrictRoleCheck bool
	Logger          interfaces.Logger
}

// NewAuthGate creates an AuthGate resolving principals from the given repositories.
func NewAuthGate(publicKey *ecdsa.PublicKey, userRepo, adminRepo interfaces.PrincipalRepository,
	strictRoleCheck bool, logger interfaces.Logger,
) *AuthGate {
	return &AuthGate{
		PublicKey:       publicKey,
		UserRepo:        userRepo,
		AdminRepo:       adminRepo,
		StrictRoleCheck: strictRoleCheck,
		Logger:          logger,
	}
}

// RequireRole wraps a handler so it only runs for requests carrying a valid
// bearer token that resolves to an existing principal of the required kind.
// Missing/garbled header -> 403, failed verification -> 400, principal not
// in the required collection -> 401.
func (g *AuthGate) RequireRole(role models.Role, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		token, ok := bearerToken(req)
		if !ok {
			g.deny(w, http.StatusForbidden, MsgAccessDenied)
			return
		}

		claims, err := auth.VerifyToken(token, g.PublicKey)
		if err != nil {
			g.Logger.Debug("Token verification failed", "error", err)
			g.deny(w, http.StatusBadRequest, MsgInvalidToken)
			return
		}

		if g.StrictRoleCheck && claims.Role != role {
			g.deny(w, http.StatusUnauthorized, MsgRoleMismatch)
			return
		}

		repo, notFoundMsg := g.UserRepo, MsgUserNotFound
		if role == models.RoleAdmin {
			repo, notFoundMsg = g.AdminRepo, MsgAdminNotFound
		}

		principal, err := repo.GetPrincipalByID(req.Context(), claims.PrincipalID)
		if err != nil {
			g.Logger.Error("Principal lookup failed", "id", claims.PrincipalID, "error", err)
			g.deny(w, http.StatusUnauthorized, notFoundMsg)
			return
		}
		if principal == nil {
			g.deny(w, http.StatusUnauthorized, notFoundMsg)
			return
		}

		ctx := context.WithValue(req.Context(), ClaimsContextKey, claims)
		next(w, req.WithContext(ctx))
	}
}

// ClaimsFromContext returns the claims the gate attached, or nil if the
// request never passed through a gate.
func ClaimsFromContext(ctx context.Context) *auth.CustomClaims {
	claims, _ := ctx.Value(ClaimsContextKey).(*auth.CustomClaims)
	return claims
}

// bearerToken extracts the token from the Authorization header. A missing
// header or a value without the Bearer scheme counts as no token.
func bearerToken(req *http.Request) (string, bool) {
	header := req.Header.Get(AuthorizationHeader)
	if header == "" || !strings.HasPrefix(header, BearerSchemePrefix) {
		return "", false
	}
	token := strings.TrimPrefix(header, BearerSchemePrefix)
	if token == "" {
		return "", false
	}
	return token, true
}

func (g *AuthGate) deny(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(dto.MessageResponseDTO{Message: message})
}
