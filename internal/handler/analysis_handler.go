package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/verba-ai/verba/internal/model"
	"github.com/verba-ai/verba/internal/pkg/errcode"
	"github.com/verba-ai/verba/internal/pkg/response"
	"github.com/verba-ai/verba/internal/service"
)

type AnalysisHandler struct {
	analysis *service.AnalysisService
}

func NewAnalysisHandler(analysis *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis}
}

type analyzeRequest struct {
	ConversationID string          `json:"conversation_id"`
	UserID         string          `json:"user_id"`
	Scenario       string          `json:"scenario"`
	Difficulty     string          `json:"difficulty"`
	Messages       []model.Message `json:"messages"`
}

func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.analysis.Analyze(c.Request.Context(), service.AnalyzeRequest{
		ConversationID: req.ConversationID,
		UserID:         req.UserID,
		Scenario:       req.Scenario,
		Difficulty:     req.Difficulty,
		Messages:       req.Messages,
	})
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
