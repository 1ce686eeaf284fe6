package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCorrelationID_GeneratesWhenAbsent(t *testing.T) {
	r := gin.New()
	r.Use(CorrelationID())

	var captured string
	r.GET("/test", func(c *gin.Context) {
		captured = GetCorrelationID(c)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	r.ServeHTTP(w, req)

	assert.NotEmpty(t, captured)
	assert.Equal(t, captured, w.Header().Get(CorrelationIDHeader))
}

func TestCorrelationID_ReusesHeader(t *testing.T) {
	r := gin.New()
	r.Use(CorrelationID())
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set(CorrelationIDHeader, "existing-id")
	r.ServeHTTP(w, req)

	assert.Equal(t, "existing-id", w.Header().Get(CorrelationIDHeader))
}

func TestRecovery_ConvertsPanicTo500(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	r := gin.New()
	r.Use(CorrelationID())
	r.Use(Recovery(logger))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "INTERNAL_SERVER_ERROR")
	assert.Contains(t, w.Body.String(), "correlation_id")
}

func TestLogger_PassesRequestThrough(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	r := gin.New()
	r.Use(Logger(logger))
	r.GET("/test", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test?x=1", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}
