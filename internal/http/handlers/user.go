package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/accessly-backend/internal/http/middleware"
	"github.com/yungbote/accessly-backend/internal/http/response"
	"github.com/yungbote/accessly-backend/internal/platform/apierr"
	"github.com/yungbote/accessly-backend/internal/services"
)

type UserHandler struct {
	userService services.UserService
}

func NewUserHandler(userService services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// GET /user/getprofile
func (uh *UserHandler) GetProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.RespondAPIError(c, apierr.Unauthenticated(nil))
		return
	}
	info, err := uh.userService.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"info":    info,
		"message": "profile fetched successfully",
	})
}

// PUT /user/updateprofile
// body: { "firstName": "...", "lastName": "..." }, either field may be omitted
func (uh *UserHandler) UpdateProfile(c *gin.Context) {
	user := middleware.CurrentUser(c)
	if user == nil {
		response.RespondAPIError(c, apierr.Unauthenticated(nil))
		return
	}
	var req struct {
		FirstName *string `json:"firstName"`
		LastName  *string `json:"lastName"`
		// older clients send the lowercase spelling
		LastNameAlt *string `json:"lastname"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	lastName := req.LastName
	if lastName == nil {
		lastName = req.LastNameAlt
	}
	updated, err := uh.userService.UpdateProfile(c.Request.Context(), user.ID, services.ProfileUpdate{
		FirstName: trimmed(req.FirstName),
		LastName:  trimmed(lastName),
	})
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"data":    updated,
		"message": "updated successfully",
	})
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}
