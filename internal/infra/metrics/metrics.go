package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	ScanRuns = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scan_runs_total",
		Help: "Количество запусков сканирования лент",
	})
	ScanErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "scan_errors_total",
		Help: "Ошибки при обработке элементов лент",
	})
	SummariesCreated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "summaries_created_total",
		Help: "Количество новых резюме по моделям",
	}, []string{"model"})
	SendErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "send_errors_total",
		Help: "Ошибки отправки сообщений ботом",
	})
	SummariesSent = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "summaries_sent_total",
		Help: "Количество отправленных резюме",
	})

	NetworkRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "network_request_duration_seconds",
		Help:    "Длительность сетевых запросов",
		Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20, 30, 60, 120, 180, 300},
	}, []string{"component", "operation", "target", "status"})

	LLMGenerationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "llm_generation_duration_seconds",
		Help:    "Длительность генерации резюме LLM",
		Buckets: prometheus.DefBuckets,
	}, []string{"model"})

	LLMTokensTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "llm_tokens_total",
		Help: "Количество токенов, использованных LLM",
	}, []string{"model", "type"})
)

// MustRegister регистрирует метрики.
func MustRegister(registerer prometheus.Registerer) {
	registerer.MustRegister(
		ScanRuns,
		ScanErrors,
		SummariesCreated,
		SendErrors,
		SummariesSent,
		NetworkRequestDuration,
		LLMGenerationDuration,
		LLMTokensTotal,
	)
}

// ObserveNetworkRequest фиксирует длительность и статус сетевого запроса.
func ObserveNetworkRequest(component, operation, target string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	NetworkRequestDuration.WithLabelValues(component, operation, target, status).Observe(time.Since(start).Seconds())
}

// ObserveLLMTokens фиксирует расход токенов по модели.
func ObserveLLMTokens(model string, prompt, completion int) {
	if prompt > 0 {
		LLMTokensTotal.WithLabelValues(model, "prompt").Add(float64(prompt))
	}
	if completion > 0 {
		LLMTokensTotal.WithLabelValues(model, "completion").Add(float64(completion))
	}
}
