package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/accessly-backend/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

// RespondAPIError maps err onto its apierr status and code. Internal,
// upstream and token causes are recorded on the gin context and replaced by
// a fixed message.
func RespondAPIError(c *gin.Context, err error) {
	var ae *apierr.Error
	if !errors.As(err, &ae) || ae.Code == apierr.CodeInternal {
		_ = c.Error(err)
		RespondError(c, http.StatusInternalServerError, apierr.CodeInternal, errors.New("internal server error"))
		return
	}
	if ae.Code == apierr.CodeAssistantUnavailable {
		_ = c.Error(err)
		RespondError(c, ae.Status, ae.Code, errors.New("assistant is unavailable, please try again later"))
		return
	}
	if ae.Code == apierr.CodeUnauthenticated {
		_ = c.Error(err)
		RespondError(c, ae.Status, ae.Code, errors.New(apierr.UnauthenticatedMessage))
		return
	}
	if ae.Status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	RespondError(c, ae.Status, ae.Code, ae)
}

func AbortAPIError(c *gin.Context, err error) {
	RespondAPIError(c, err)
	c.Abort()
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

func RespondCreated(c *gin.Context, payload any) {
	c.JSON(http.StatusCreated, payload)
}
