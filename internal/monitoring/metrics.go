package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 监控指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 密钥指标
	KeysGenerated prometheus.Counter
	KeysValidated *prometheus.CounterVec // result: valid / invalid
	UsersSaved    prometheus.Counter
	UsersDeleted  prometheus.Counter

	// 认证指标
	AdminsRegistered prometheus.Counter
	LoginsTotal      *prometheus.CounterVec // result: success / failure
}

// NewMetrics 创建监控指标
//
// promauto 会把指标注册到默认 Registry，本函数
// 每个进程只应调用一次。
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keysmith_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "keysmith_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		KeysGenerated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "keysmith_keys_generated_total",
			Help: "Total number of API keys generated",
		}),
		KeysValidated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keysmith_keys_validated_total",
				Help: "Total number of API key validation lookups",
			},
			[]string{"result"},
		),
		UsersSaved: promauto.NewCounter(prometheus.CounterOpts{
			Name: "keysmith_users_saved_total",
			Help: "Total number of users persisted with a key",
		}),
		UsersDeleted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "keysmith_users_deleted_total",
			Help: "Total number of users deleted (cascade)",
		}),
		AdminsRegistered: promauto.NewCounter(prometheus.CounterOpts{
			Name: "keysmith_admins_registered_total",
			Help: "Total number of registered admins",
		}),
		LoginsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "keysmith_logins_total",
				Help: "Total number of admin login attempts",
			},
			[]string{"result"},
		),
	}
}

// RecordHTTPRequest 记录一次 HTTP 请求
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// HTTPHandler 返回 Prometheus 指标导出端点
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.Handler()
}
