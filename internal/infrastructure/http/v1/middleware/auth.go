package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"vendra/internal/core/apperror"
	appctx "vendra/internal/core/context"
)

// JWTValidator interface for token validation.
type JWTValidator interface {
	ValidateToken(tokenString string) (*appctx.UserContext, error)
}

// Auth middleware validates JWT tokens and populates user context.
func Auth(validator JWTValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, "missing authorization header")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		user, err := validator.ValidateToken(parts[1])
		if err != nil {
			_ = c.Error(apperror.NewUnauthorized("invalid token"))
			c.Abort()
			return
		}

		ctx := appctx.WithUser(c.Request.Context(), user)
		c.Request = c.Request.WithContext(ctx)

		c.Set("user_id", user.UserID)
		c.Set("seller_id", user.SellerID)

		c.Next()
	}
}

// RequireAdmin rejects callers without the admin capability. Override
// mutations are admin-only.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := appctx.GetUser(c.Request.Context())
		if user == nil {
			_ = c.Error(apperror.NewUnauthorized("authentication required"))
			c.Abort()
			return
		}
		if !user.IsAdmin {
			_ = c.Error(apperror.NewForbidden("admin access required"))
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireSellerAccess checks that the caller may act on the :sellerId in
// the route. Admins pass for any seller.
func RequireSellerAccess(param string) gin.HandlerFunc {
	return func(c *gin.Context) {
		sellerID := c.Param(param)
		if sellerID == "" {
			_ = c.Error(apperror.NewValidation("missing seller id"))
			c.Abort()
			return
		}
		if !appctx.HasSellerAccess(c.Request.Context(), sellerID) {
			_ = c.Error(apperror.NewForbidden("no access to this seller"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
