package middleware

import (
	"net/http"
	"strings"

	"venuebook/internal/shared/config"
	"venuebook/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Roles issued by the identity service
const (
	RoleUser  = "USER"
	RoleVenue = "VENUE"
	RoleAdmin = "ADMIN"
)

const identityKey = "identity"

// Identity is the authenticated caller, trusted as issued by the identity service
type Identity struct {
	PartyID uuid.UUID
	Email   string
	Role    string
	VenueID *uuid.UUID // set for VENUE staff
}

// IsAdmin reports whether the caller has the ADMIN role
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// ManagesVenue reports whether the caller may act on behalf of venueID
func (i Identity) ManagesVenue(venueID uuid.UUID) bool {
	if i.IsAdmin() {
		return true
	}
	return i.Role == RoleVenue && i.VenueID != nil && *i.VenueID == venueID
}

// JWTAuth creates a JWT authentication middleware with config
func JWTAuth(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "Authorization header is required", nil, nil)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "authorization header format must be Bearer {token}", nil, nil)
			c.Abort()
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})
		if err != nil || !token.Valid {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid or expired token", nil, nil)
			c.Abort()
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid token claims", nil, nil)
			c.Abort()
			return
		}
		if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid token type", nil, nil)
			c.Abort()
			return
		}

		identity, err := identityFromClaims(claims)
		if err != nil {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "invalid identity claims", nil, nil)
			c.Abort()
			return
		}

		c.Set(identityKey, identity)
		c.Set("user_id", identity.PartyID.String())
		c.Set("user_role", identity.Role)
		c.Next()
	}
}

func identityFromClaims(claims jwt.MapClaims) (Identity, error) {
	userID, _ := claims["user_id"].(string)
	partyID, err := uuid.Parse(userID)
	if err != nil {
		return Identity{}, err
	}

	email, _ := claims["email"].(string)
	role, _ := claims["role"].(string)
	identity := Identity{
		PartyID: partyID,
		Email:   email,
		Role:    strings.ToUpper(role),
	}

	if raw, ok := claims["venue_id"].(string); ok && raw != "" {
		venueID, err := uuid.Parse(raw)
		if err != nil {
			return Identity{}, err
		}
		identity.VenueID = &venueID
	}
	return identity, nil
}

// CurrentIdentity returns the identity set by JWTAuth
func CurrentIdentity(c *gin.Context) (Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return Identity{}, false
	}
	identity, ok := value.(Identity)
	return identity, ok
}

// SetIdentity stores identity on the context. Used by tests and internal callers.
func SetIdentity(c *gin.Context, identity Identity) {
	c.Set(identityKey, identity)
	c.Set("user_id", identity.PartyID.String())
	c.Set("user_role", identity.Role)
}

// RequireAdmin middleware that requires admin role
func RequireAdmin() gin.HandlerFunc {
	return RequireRoles(RoleAdmin)
}

// RequireRoles middleware checks if user has any of the required roles
func RequireRoles(requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, exists := CurrentIdentity(c)
		if !exists {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "user role not found in context", nil, nil)
			c.Abort()
			return
		}

		for _, role := range requiredRoles {
			if identity.Role == role {
				c.Next()
				return
			}
		}

		response.RespondJSON(c, "error", http.StatusForbidden, "Insufficient permissions", nil, nil)
		c.Abort()
	}
}
