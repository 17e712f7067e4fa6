// Package metrics provides internal metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// codeOK 是成功调用的 code 标签值
const codeOK = "OK"

// =============================================================================
// 📊 指标收集器
// =============================================================================

// Collector LLM 调用指标收集器, 实现 llm.Recorder.
type Collector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	streamTokens    *prometheus.CounterVec
	errorsTotal     *prometheus.CounterVec

	logger *zap.Logger
}

// NewCollector 创建指标收集器并注册到 reg.
// reg 为 nil 时使用 prometheus.DefaultRegisterer.
func NewCollector(namespace string, reg prometheus.Registerer, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	c := &Collector{
		logger: logger.With(zap.String("component", "metrics")),
	}

	c.requestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_requests_total",
			Help:      "Total number of LLM calls",
		},
		[]string{"provider", "model", "mode", "code"},
	)

	c.requestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "llm_request_duration_seconds",
			Help:      "LLM call duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "model", "mode"},
	)

	c.streamTokens = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_stream_tokens_total",
			Help:      "Total number of streamed token events delivered",
		},
		[]string{"provider", "model"},
	)

	c.errorsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_errors_total",
			Help:      "Total number of failed LLM calls by error code",
		},
		[]string{"provider", "code"},
	)

	c.logger.Debug("metrics collector initialized", zap.String("namespace", namespace))

	return c
}

// =============================================================================
// 🤖 LLM 指标记录
// =============================================================================

// RecordCall 记录一次结束的调用. code 为 "OK" 或错误码.
func (c *Collector) RecordCall(provider, model string, stream bool, code string, duration time.Duration, tokens int) {
	m := mode(stream)
	c.requestsTotal.WithLabelValues(provider, model, m, code).Inc()
	c.requestDuration.WithLabelValues(provider, model, m).Observe(duration.Seconds())
	if stream && tokens > 0 {
		c.streamTokens.WithLabelValues(provider, model).Add(float64(tokens))
	}
	if code != codeOK {
		c.errorsTotal.WithLabelValues(provider, code).Inc()
	}
}

// =============================================================================
// 🌐 暴露
// =============================================================================

// Handler 返回 gatherer 的 /metrics 处理器.
// gatherer 为 nil 时使用 prometheus.DefaultGatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// =============================================================================
// 🔧 辅助函数
// =============================================================================

func mode(stream bool) string {
	if stream {
		return "stream"
	}
	return "send"
}
