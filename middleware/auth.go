package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// AuthRequired is a middleware that rejects requests without a valid access
// token. On success the verified claims are stored in the gin context; the
// claims are the sole identity carrier, handlers do not re-query the store
// per request unless they need fresher role or active-state data.
func AuthRequired(c *gin.Context) {
	claims, err := JWT_decoder(c)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(claimsKey, claims)
	c.Next()
}

// AdminRequired rejects requests whose token does not carry the admin role.
// Must run after AuthRequired.
func AdminRequired(c *gin.Context) {
	claims := GetClaims(c)
	if claims == nil || claims.Role != "admin" {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You must be an admin to perform this action."})
		return
	}
	c.Next()
}

// GetClaims returns the verified claims stored by AuthRequired, or nil when
// the request was not authenticated.
func GetClaims(c *gin.Context) *Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, ok := v.(*Claims)
	if !ok {
		return nil
	}
	return claims
}

// IsSelfOrAdmin reports whether the claims may act on the target user id:
// admins pass every check, everyone else only self-referencing ones.
func IsSelfOrAdmin(claims *Claims, targetID string) bool {
	if claims == nil {
		return false
	}
	return claims.Role == "admin" || claims.UserID == targetID
}
