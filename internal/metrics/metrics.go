// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// auth.Recorder、blog.Recorder、middleware.HTTPRecorderを満たす。
type Collector struct {
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
	loginAttempts  *prometheus.CounterVec
	authRejections *prometheus.CounterVec
	postOperations *prometheus.CounterVec
	postCount      prometheus.Gauge
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "blogman_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogman_login_attempts_total",
			Help: "ログイン試行の合計数（結果別）",
		}, []string{"result"}),
		authRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogman_auth_rejections_total",
			Help: "認可拒否の合計数（内部診断理由別）",
		}, []string{"reason"}),
		postOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blogman_post_operations_total",
			Help: "成功したブログ変更操作の合計数",
		}, []string{"operation"}),
		postCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "blogman_posts",
			Help: "現在保持しているブログ数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.loginAttempts,
		c.authRejections,
		c.postOperations,
		c.postCount,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordLoginAttempt はログイン試行の結果を記録する。
func (c *Collector) RecordLoginAttempt(success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	c.loginAttempts.WithLabelValues(result).Inc()
}

// RecordAuthRejection は認可拒否を内部診断理由付きで記録する。
func (c *Collector) RecordAuthRejection(reason string) {
	c.authRejections.WithLabelValues(reason).Inc()
}

// RecordPostOperation は成功したブログ変更操作（create/update/delete）を記録する。
func (c *Collector) RecordPostOperation(operation string) {
	c.postOperations.WithLabelValues(operation).Inc()
}

// SetPostCount は現在のブログ数を設定する。
func (c *Collector) SetPostCount(n int) {
	c.postCount.Set(float64(n))
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
