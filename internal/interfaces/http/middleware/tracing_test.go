package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newSpanRecorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(t.Context()) })
	return sr, tp
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]string {
	out := make(map[attribute.Key]string)
	for _, kv := range s.Attributes() {
		out[kv.Key] = kv.Value.Emit()
	}
	return out
}

func TestTracing_Disabled(t *testing.T) {
	assert.Empty(t, Tracing(TracingConfig{Enabled: false}))
}

func TestTracing_AnnotatesServerSpan(t *testing.T) {
	sr, tp := newSpanRecorder(t)

	router := gin.New()
	router.Use(RequestID())
	router.Use(Tracing(TracingConfig{ServiceName: "backoffice-test", Enabled: true, TracerProvider: tp})...)
	router.GET("/empresas/:id", func(c *gin.Context) {
		c.Set(JWTUserIDKey, "user-1")
		c.Set(JWTEmpresaIDKey, "empresa-1")
		c.Set(ErrorCodeKey, "NOT_FOUND")
		c.Status(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/empresas/42", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	w := serve(router, req)
	assert.Equal(t, http.StatusNotFound, w.Code)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /empresas/:id", spans[0].Name())

	attrs := spanAttrs(spans[0])
	assert.Equal(t, "req-42", attrs["request_id"])
	assert.Equal(t, "user-1", attrs["user_id"])
	assert.Equal(t, "empresa-1", attrs["empresa_id"])
	assert.Equal(t, "NOT_FOUND", attrs["error.code"])
}

func TestTracing_PropagatesParent(t *testing.T) {
	sr, tp := newSpanRecorder(t)

	router := gin.New()
	router.Use(Tracing(TracingConfig{ServiceName: "backoffice-test", Enabled: true, TracerProvider: tp})...)
	router.GET("/test", func(c *gin.Context) {
		_, child := tp.Tracer("test").Start(c.Request.Context(), "child")
		child.End()
		c.Status(http.StatusOK)
	})

	serve(router, httptest.NewRequest(http.MethodGet, "/test", nil))

	spans := sr.Ended()
	require.Len(t, spans, 2)
	child, server := spans[0], spans[1]
	assert.Equal(t, "child", child.Name())
	assert.Equal(t, server.SpanContext().SpanID(), child.Parent().SpanID())
}
