package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solstice-ai/optimal-energy-storage/internal/api/models"
)

func recoveringRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/string", func(c *gin.Context) { panic("scenario rows out of order") })
	r.GET("/value", func(c *gin.Context) { panic(42) })
	return r
}

func TestErrorHandler_RecoversWithEnvelope(t *testing.T) {
	w := httptest.NewRecorder()
	recoveringRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/string", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.Equal(t, "scenario rows out of order", resp.Error.Message)
}

func TestErrorHandler_NonStringPanicGetsGenericMessage(t *testing.T) {
	w := httptest.NewRecorder()
	recoveringRouter().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/value", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INTERNAL_ERROR", resp.Error.Code)
	assert.Equal(t, "An unexpected error occurred", resp.Error.Message)
}
