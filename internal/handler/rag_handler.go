package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/verba-ai/verba/internal/model"
	"github.com/verba-ai/verba/internal/pkg/errcode"
	"github.com/verba-ai/verba/internal/pkg/response"
	"github.com/verba-ai/verba/internal/service"
)

type RAGHandler struct {
	rag *service.RAGService
}

func NewRAGHandler(rag *service.RAGService) *RAGHandler {
	return &RAGHandler{rag: rag}
}

func (h *RAGHandler) Init(c *gin.Context) {
	names, err := h.rag.InitializeIndexes(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, gin.H{"indexes": names})
}

func (h *RAGHandler) Stats(c *gin.Context) {
	stats, err := h.rag.IndexStats(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, stats)
}

type embedRequest struct {
	Text string `json:"text"`
}

func (h *RAGHandler) Embed(c *gin.Context) {
	var req embedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, errcode.ErrInvalid, "invalid request")
		return
	}
	result, err := h.rag.EmbedText(c.Request.Context(), req.Text)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}

func (h *RAGHandler) Search(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		response.Error(c, errcode.ErrInvalid, "query required")
		return
	}
	domain := model.Domain(c.DefaultQuery("domain", string(model.DomainBooks)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "5"))
	userID := c.Query("user_id")
	result, err := h.rag.Search(c.Request.Context(), query, domain, limit, userID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, result)
}
