package llm

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/sapientpants/quorum-sub001/llm/observability"
	"github.com/sapientpants/quorum-sub001/testutil"
)

func newSpanRecorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return sr, tp
}

func spanAttr(span sdktrace.ReadOnlySpan, key string) attribute.Value {
	for _, kv := range span.Attributes() {
		if string(kv.Key) == key {
			return kv.Value
		}
	}
	return attribute.Value{}
}

func TestWithTracer_SpanPerCall(t *testing.T) {
	sr, tp := newSpanRecorder(t)
	srv, _ := testutil.JSONServer(t, http.StatusOK, `{"text":"ok"}`, nil)
	c := NewClient(newFakeAdapter(srv.URL), WithTracer(tp.Tracer("test")))

	_, err := c.SendMessage(testutil.TestContext(t), testutil.Conversation("", "Hi"), "sk-test", "fake-large", nil, nil)
	require.NoError(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "llm.send", spans[0].Name())
	assert.Equal(t, codes.Ok, spans[0].Status().Code)
	assert.Equal(t, "fake", spanAttr(spans[0], "llm.provider").AsString())
	assert.Equal(t, "fake-large", spanAttr(spans[0], "llm.model").AsString())
	assert.Equal(t, "success", spanAttr(spans[0], "llm.status").AsString())
}

func TestWithTracer_ErrorSpanCarriesCode(t *testing.T) {
	sr, tp := newSpanRecorder(t)
	srv, _ := testutil.JSONServer(t, http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, nil)
	c := NewClient(newFakeAdapter(srv.URL), WithTracer(tp.Tracer("test")))

	_, err := c.SendMessage(testutil.TestContext(t), testutil.Conversation("", "Hi"), "sk-test", "fake-large", nil, nil)
	require.Error(t, err)

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, "AUTHENTICATION", spanAttr(spans[0], "error.code").AsString())
}

func TestWithTelemetry_RecordsRequestCounter(t *testing.T) {
	_, tp := newSpanRecorder(t)
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })

	m, err := observability.NewMetricsWith(tp.Tracer("test"), mp.Meter("test"))
	require.NoError(t, err)

	srv, _ := testutil.JSONServer(t, http.StatusOK, `{"text":"ok"}`, nil)
	c := NewClient(newFakeAdapter(srv.URL), WithTelemetry(m))
	_, err = c.SendMessage(testutil.TestContext(t), testutil.Conversation("", "Hi"), "sk-test", "fake-large", nil, nil)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			if metric.Name != "llm.request.total" {
				continue
			}
			sum, ok := metric.Data.(metricdata.Sum[int64])
			require.True(t, ok)
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	assert.Equal(t, int64(1), total)
}

func TestWithExactTokenCount_OnlyForOpenAIFamily(t *testing.T) {
	c := NewClient(newFakeAdapter("http://127.0.0.1:0"), WithExactTokenCount(true))
	assert.True(t, c.exactTokens)
	// fake-* models have no tiktoken encoding
	assert.Equal(t, "estimator", c.tokenizer.Name())
}
