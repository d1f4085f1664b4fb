package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/verba-ai/verba/internal/middleware"
)

type RouterDeps struct {
	RAG      *RAGHandler
	Chat     *ChatHandler
	Analysis *AnalysisHandler
}

func RegisterRoutes(api *gin.RouterGroup, deps RouterDeps) {
	api.POST("/rag/init", deps.RAG.Init)
	api.GET("/rag/stats", deps.RAG.Stats)
	api.POST("/rag/embed", deps.RAG.Embed)
	api.GET("/rag/search", deps.RAG.Search)

	api.POST("/chat/turn", deps.Chat.Turn)

	api.POST("/conversations/analyze",
		middleware.RateLimit(2*time.Second),
		deps.Analysis.Analyze,
	)
}
