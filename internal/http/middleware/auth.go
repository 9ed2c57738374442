package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/accessly-backend/internal/domain"
	"github.com/yungbote/accessly-backend/internal/http/response"
	"github.com/yungbote/accessly-backend/internal/platform/ctxutil"
	"github.com/yungbote/accessly-backend/internal/platform/logger"
	"github.com/yungbote/accessly-backend/internal/services"
)

const (
	TokenCookie = "token"
	userKey     = "auth_user"
)

type AuthMiddleware struct {
	log         *logger.Logger
	authService services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, authService services.AuthService) *AuthMiddleware {
	middlewareLogger := log.With("middleware", "AuthMiddleware")
	return &AuthMiddleware{log: middlewareLogger, authService: authService}
}

// RequireAuth resolves the session token, rejects revoked or expired ones,
// and attaches the user to the request.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ExtractToken(c)
		user, claims, err := am.authService.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			am.log.Debug("Authentication rejected", "path", c.FullPath(), "error", err)
			response.AbortAPIError(c, err)
			return
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			TokenString: tokenString,
			UserID:      user.ID,
			Email:       claims.Email,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Set(userKey, user)
		c.Next()
	}
}

// ExtractToken prefers the session cookie and falls back to a bearer header.
func ExtractToken(c *gin.Context) string {
	if cookie, err := c.Cookie(TokenCookie); err == nil && cookie != "" {
		return cookie
	}
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}

// CurrentUser returns the user attached by RequireAuth.
func CurrentUser(c *gin.Context) *types.User {
	v, ok := c.Get(userKey)
	if !ok {
		return nil
	}
	u, _ := v.(*types.User)
	return u
}
