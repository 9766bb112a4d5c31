package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	UploadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "paddock_uploads_total",
		Help: "Total number of /upload requests by result",
	}, []string{"result"})
	UploadDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "paddock_upload_duration_ms",
		Help:    "Upload processing duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000},
	})
	UploadBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "paddock_upload_bytes",
		Help:    "Size of uploaded GeoJSON documents in bytes",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 9),
	})
	FeaturesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "paddock_features_total",
		Help: "Processed features by geometry outcome",
	}, []string{"outcome"})
	RepairedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "paddock_geometry_repaired_total",
		Help: "Total geometries made valid by repair",
	})
	ReportCacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "paddock_report_cache_hits_total",
		Help: "Total report cache hits",
	}, []string{"backend"})
	ReportCacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "paddock_report_cache_misses_total",
		Help: "Total report cache misses",
	}, []string{"backend"})
	RateLimitedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "paddock_rate_limited_total",
		Help: "Total requests rejected by the rate limiter",
	})
)

func init() {
	prometheus.MustRegister(UploadsTotal)
	prometheus.MustRegister(UploadDurationMs)
	prometheus.MustRegister(UploadBytes)
	prometheus.MustRegister(FeaturesTotal)
	prometheus.MustRegister(RepairedTotal)
	prometheus.MustRegister(ReportCacheHitsTotal)
	prometheus.MustRegister(ReportCacheMissesTotal)
	prometheus.MustRegister(RateLimitedTotal)
}

// 文档注释：返回 Prometheus 指标监听器
// 背景：统一暴露注册指标到 /metrics 路径，供 Prometheus 抓取；在主入口挂载。
func Handler() http.Handler { return promhttp.Handler() }
