package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/verba-ai/verba/internal/model"
	"github.com/verba-ai/verba/internal/pkg/errcode"
	"github.com/verba-ai/verba/internal/pkg/response"
	"github.com/verba-ai/verba/internal/service"
)

type ChatHandler struct {
	chat *service.ChatService
}

func NewChatHandler(chat *service.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type chatTurnRequest struct {
	SystemPrompt string          `json:"system_prompt"`
	History      []model.Message `json:"history"`
	Message      string          `json:"message"`
}

func (h *ChatHandler) Turn(c *gin.Context) {
	var req chatTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	reply, err := h.chat.Turn(c.Request.Context(), service.ChatTurn{
		SystemPrompt: req.SystemPrompt,
		History:      req.History,
		Message:      req.Message,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, reply)
}
