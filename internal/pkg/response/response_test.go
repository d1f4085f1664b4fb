package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/verba-ai/verba/internal/pkg/errcode"
)

type envelope struct {
	Code    uint32          `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func TestSuccess_ZeroCodeEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	Success(c, map[string]string{"status": "ok"})

	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, uint32(0), env.Code)
	require.JSONEq(t, `{"status":"ok"}`, string(env.Data))
}

func TestError_CarriesCodeWithOKStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	Error(c, errcode.ErrInvalid, "query required")

	require.True(t, c.IsAborted())
	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Equal(t, uint32(errcode.ErrInvalid), env.Code)
	require.Equal(t, "query required", env.Message)
}
