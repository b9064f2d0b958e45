// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層・カタログクライアント・ミドルウェアから利用する。
type MetricsCollector interface {
	RecordDuplicateFollow()
	RecordFailSafeRead(operation string)
	RecordCatalogLatency(duration time.Duration)
	RecordCatalogFailure(endpoint string)
	RecordHTTPStatus(statusCode int)
	RecordSessionStarted()
	RecordSessionEnded()
	RecordUserDataCleared()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	duplicateFollow prometheus.Counter
	failSafeRead    *prometheus.CounterVec
	catalogLatency  prometheus.Histogram
	catalogFail     *prometheus.CounterVec
	httpStatus      *prometheus.CounterVec
	sessionsStarted prometheus.Counter
	sessionsEnded   prometheus.Counter
	userDataCleared prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		duplicateFollow: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "castboard_duplicate_follow_total",
			Help: "一意制約違反として吸収されたフォロー重複の合計数",
		}),
		failSafeRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "castboard_failsafe_read_total",
			Help: "デフォルト値で握りつぶされた読み取り失敗の操作別合計数",
		}, []string{"operation"}),
		catalogLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "castboard_catalog_latency_seconds",
			Help:    "カタログAPI呼び出しのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		catalogFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "castboard_catalog_fail_total",
			Help: "カタログAPI呼び出し失敗のエンドポイント別合計数",
		}, []string{"endpoint"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "castboard_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "castboard_sessions_started_total",
			Help: "開始されたセッションの合計数",
		}),
		sessionsEnded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "castboard_sessions_ended_total",
			Help: "終了されたセッションの合計数",
		}),
		userDataCleared: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "castboard_user_data_cleared_total",
			Help: "実行されたユーザーデータ全消去の合計数",
		}),
	}

	reg.MustRegister(
		c.duplicateFollow,
		c.failSafeRead,
		c.catalogLatency,
		c.catalogFail,
		c.httpStatus,
		c.sessionsStarted,
		c.sessionsEnded,
		c.userDataCleared,
	)

	return c
}

// RecordDuplicateFollow は吸収されたフォロー重複を記録する。
func (c *Collector) RecordDuplicateFollow() {
	c.duplicateFollow.Inc()
}

// RecordFailSafeRead はデフォルト値に落とした読み取り失敗を記録する。
func (c *Collector) RecordFailSafeRead(operation string) {
	c.failSafeRead.WithLabelValues(operation).Inc()
}

// RecordCatalogLatency はカタログAPI呼び出しのレイテンシを記録する。
func (c *Collector) RecordCatalogLatency(duration time.Duration) {
	c.catalogLatency.Observe(duration.Seconds())
}

// RecordCatalogFailure はカタログAPI呼び出し失敗を記録する。
func (c *Collector) RecordCatalogFailure(endpoint string) {
	c.catalogFail.WithLabelValues(endpoint).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordSessionStarted はセッション開始を記録する。
func (c *Collector) RecordSessionStarted() {
	c.sessionsStarted.Inc()
}

// RecordSessionEnded はセッション終了を記録する。
func (c *Collector) RecordSessionEnded() {
	c.sessionsEnded.Inc()
}

// RecordUserDataCleared はユーザーデータ全消去の実行を記録する。
func (c *Collector) RecordUserDataCleared() {
	c.userDataCleared.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
