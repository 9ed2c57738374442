package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/accessly-backend/internal/http/middleware"
	"github.com/yungbote/accessly-backend/internal/http/response"
	"github.com/yungbote/accessly-backend/internal/platform/apierr"
	"github.com/yungbote/accessly-backend/internal/services"
)

type AuthHandler struct {
	authService  services.AuthService
	cookieSecure bool
}

func NewAuthHandler(authService services.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{authService: authService, cookieSecure: cookieSecure}
}

func (ah *AuthHandler) setSessionCookie(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, token, maxAge, "/", "", ah.cookieSecure, true)
}

// POST /user/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	user, token, err := ah.authService.Register(c.Request.Context(), req)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	ah.setSessionCookie(c, token, int(ah.authService.GetAccessTTL().Seconds()))
	response.RespondCreated(c, gin.H{
		"user":    user.Public(),
		"message": "registered successfully",
	})
}

// POST /user/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"emailId"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	user, token, err := ah.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	ah.setSessionCookie(c, token, int(ah.authService.GetAccessTTL().Seconds()))
	response.RespondCreated(c, gin.H{
		"user":    user.Public(),
		"message": "logged in successfully",
	})
}

// POST /user/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Logout(c.Request.Context(), middleware.ExtractToken(c)); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	ah.setSessionCookie(c, "", -1)
	response.RespondOK(c, gin.H{"message": "logged out successfully"})
}

// GET /user/check
func (ah *AuthHandler) Check(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.RespondAPIError(c, apierr.Unauthenticated(nil))
		return
	}
	response.RespondOK(c, gin.H{
		"user":    user.Public(),
		"message": "Valid User",
	})
}
