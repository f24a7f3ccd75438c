package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"coachdesk-backend/internal/platform/apierr"
)

const (
	CtxUserIDKey  = "user_id"
	CtxRoleKey    = "role"
	CtxStaffIDKey = "staff_id"
)

// RequireAuth validates "Authorization: Bearer <token>" and stores sub, role
// and staff_id in the gin context.
func RequireAuth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.GetHeader("Authorization")
		if h == "" {
			apierr.Abort(c, apierr.Unauthenticated("missing Authorization header"))
			return
		}

		parts := strings.SplitN(h, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			apierr.Abort(c, apierr.Unauthenticated("invalid Authorization header"))
			return
		}

		tokenStr := strings.TrimSpace(parts[1])
		if tokenStr == "" {
			apierr.Abort(c, apierr.Unauthenticated("empty token"))
			return
		}

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
			return secret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
		if err != nil || token == nil || !token.Valid {
			apierr.Abort(c, apierr.Unauthenticated("invalid token"))
			return
		}

		sub, _ := claims["sub"].(string)
		if sub == "" {
			apierr.Abort(c, apierr.Unauthenticated("invalid sub"))
			return
		}
		role, _ := claims["role"].(string)
		staffID, _ := claims["staff_id"].(string)

		c.Set(CtxUserIDKey, sub)
		c.Set(CtxRoleKey, role)
		c.Set(CtxStaffIDKey, staffID)
		c.Next()
	}
}

// RequireRole lets the request through only for one of roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	roleSet := make(map[string]struct{})
	for _, r := range roles {
		if r == "" {
			continue
		}
		roleSet[r] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(CtxRoleKey)
		if role == "" {
			apierr.Abort(c, apierr.Forbidden("missing role"))
			return
		}
		if _, allowed := roleSet[role]; !allowed {
			apierr.Abort(c, apierr.Forbidden("forbidden"))
			return
		}
		c.Next()
	}
}

// RequireStaff rejects tokens that are not linked to a staff record.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		if StaffID(c) == "" {
			apierr.Abort(c, apierr.Forbidden("account is not linked to a staff member"))
			return
		}
		c.Next()
	}
}

func StaffID(c *gin.Context) string { return c.GetString(CtxStaffIDKey) }

func IsAdmin(c *gin.Context) bool { return c.GetString(CtxRoleKey) == RoleAdmin }
