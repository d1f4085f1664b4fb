package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/verba-ai/verba/internal/pkg/errcode"
	"github.com/verba-ai/verba/internal/pkg/errs"
	"github.com/verba-ai/verba/internal/pkg/response"
)

func handleError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	logutil.GetLogger(c.Request.Context()).Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	switch {
	case errs.IsConfiguration(err):
		response.Error(c, errcode.ErrAIUnavailable, "ai not configured")
	case errs.IsUnsupportedFormat(err):
		response.Error(c, errcode.ErrUnsupportedFormat, "unsupported document format")
	case errs.IsProvider(err):
		response.Error(c, errcode.ErrProviderFailure, "ai provider failed")
	case errs.IsStorage(err):
		response.Error(c, errcode.ErrStorageFailure, "index storage failed")
	case errors.Is(err, errs.ErrInvalid):
		response.Error(c, errcode.ErrInvalid, "invalid request")
	case errors.Is(err, errs.ErrNotFound):
		response.Error(c, errcode.ErrNotFound, "not found")
	default:
		response.Error(c, errcode.ErrInternal, "internal error")
	}
}
