package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pai_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pai_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	LLMRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pai_llm_requests_total",
			Help: "Total number of model generation requests.",
		},
		[]string{"status"},
	)

	LLMRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pai_llm_request_duration_seconds",
			Help:    "Model generation request duration in seconds.",
			Buckets: prometheus.DefBuckets,
		},
	)

	TurnsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pai_turns_total",
			Help: "Total number of conversation turns processed.",
		},
	)

	FunctionCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pai_function_calls_total",
			Help: "Total number of function calls dispatched.",
		},
		[]string{"function", "status"},
	)

	RemindersDeliveredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pai_reminders_delivered_total",
			Help: "Total number of due reminders delivered.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		HTTPRequestsTotal,
		HTTPRequestDuration,
		LLMRequestsTotal,
		LLMRequestDuration,
		TurnsTotal,
		FunctionCallsTotal,
		RemindersDeliveredTotal,
	)
}
