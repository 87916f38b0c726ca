// Package middleware carries the gin handlers shared by the admin and
// student route groups.
package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ldtran/examdesk/internal/auth"
	"github.com/ldtran/examdesk/internal/dto"
)

const claimsKey = "authClaims"

// RequireAuth validates the bearer token and stows its claims in the
// context for the role checks and handlers downstream.
func RequireAuth(tokens *auth.Manager) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		header := ctx.GetHeader("Authorization")
		if header == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "missing authorization header"})
			return
		}
		claims, err := tokens.Validate(header)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "invalid or expired token"})
			return
		}
		ctx.Set(claimsKey, claims)
		ctx.Next()
	}
}

// RequireRole rejects callers whose token carries a different role.
func RequireRole(role string) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, ok := Claims(ctx)
		if !ok {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{Error: "unauthenticated"})
			return
		}
		if claims.Role != role {
			ctx.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{Error: "forbidden"})
			return
		}
		ctx.Next()
	}
}

// Claims returns the token claims stored by RequireAuth.
func Claims(ctx *gin.Context) (*auth.Claims, bool) {
	v, ok := ctx.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
