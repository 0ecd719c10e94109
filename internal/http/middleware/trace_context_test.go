package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/shipping-estimator/internal/platform/ctxutil"
)

func TestAttachTraceContextEchoesIncomingIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())

	var seen *ctxutil.TraceData
	r.GET("/x", func(c *gin.Context) {
		seen = ctxutil.GetTraceData(c.Request.Context())
		c.Status(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(headerRequestID, "req-1")
	req.Header.Set(headerTraceID, "trace-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if seen == nil || seen.RequestID != "req-1" || seen.TraceID != "trace-1" {
		t.Fatalf("trace data=%+v", seen)
	}
	if got := rec.Header().Get(headerRequestID); got != "req-1" {
		t.Fatalf("X-Request-Id=%q", got)
	}
	if got := rec.Header().Get(headerTraceID); got != "trace-1" {
		t.Fatalf("X-Trace-Id=%q", got)
	}
}

func TestAttachTraceContextGeneratesIDs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	reqID := rec.Header().Get(headerRequestID)
	traceID := rec.Header().Get(headerTraceID)
	if reqID == "" || traceID == "" {
		t.Fatalf("missing ids: request=%q trace=%q", reqID, traceID)
	}
	if reqID == traceID {
		t.Fatalf("request and trace ids should differ: %q", reqID)
	}
}
