package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/accessly-backend/internal/assistant"
	types "github.com/yungbote/accessly-backend/internal/domain"
	"github.com/yungbote/accessly-backend/internal/http/response"
	"github.com/yungbote/accessly-backend/internal/platform/apierr"
)

type ChatHandler struct {
	assistant assistant.Service
}

func NewChatHandler(svc assistant.Service) *ChatHandler {
	return &ChatHandler{assistant: svc}
}

// POST /ai/chat
// body: { "messages": [{ "role": "user", "parts": [{ "text": "..." }] }], "violations": [...] }
func (ch *ChatHandler) Chat(c *gin.Context) {
	var req struct {
		Messages   []assistant.Message `json:"messages"`
		Violations []types.Violation   `json:"violations"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondAPIError(c, apierr.Validation("invalid request body: %v", err))
		return
	}
	text, err := ch.assistant.Ask(c.Request.Context(), req.Messages, req.Violations)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": text})
}
