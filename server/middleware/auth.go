package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/bookstore/auth/authctx"
	"github.com/kbukum/bookstore/auth/jwt"
	"github.com/kbukum/bookstore/authz"
	apperrors "github.com/kbukum/bookstore/errors"
)

// TokenParser validates a bearer token.
type TokenParser func(token string) (*jwt.Claims, error)

// Auth requires a valid bearer token and stores its claims in the request
// context.
func Auth(parse TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, apperrors.Unauthorized("Authorization header required"))
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
			abort(c, apperrors.Unauthorized("Invalid authorization header format"))
			return
		}
		claims, err := parse(token)
		if err != nil {
			_ = c.Error(err)
			abort(c, apperrors.InvalidToken())
			return
		}
		c.Request = c.Request.WithContext(authctx.Set(c.Request.Context(), claims))
		c.Next()
	}
}

// RequirePermission rejects callers whose role lacks permission. It must run
// after Auth.
func RequirePermission(checker authz.Checker, permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := authctx.Get(c.Request.Context())
		if !ok {
			abort(c, apperrors.Unauthorized(""))
			return
		}
		if !checker.HasPermission(claims.Role, permission) {
			abort(c, apperrors.Forbidden(permission))
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, err *apperrors.AppError) {
	c.AbortWithStatusJSON(err.HTTPStatus, err.ToResponse())
}
