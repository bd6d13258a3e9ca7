// Package metrics expone los colectores Prometheus del motor de inventario y del servidor HTTP.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/inventario-lab/internal/application/inventory"
	"github.com/jhoicas/inventario-lab/internal/domain"
)

var _ inventory.Metrics = (*Metrics)(nil)

// Metrics registry propio más los colectores. Todos los métodos toleran receptor nil.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	movements       *prometheus.CounterVec
	sweepProducts   *prometheus.CounterVec
	sweepDuration   prometheus.Histogram
	jobRuns         *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// New inicializa el registry y registra los colectores.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	movements := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventario_movements_total",
		Help: "Movimientos de inventario procesados por dirección, motivo y resultado.",
	}, []string{"direction", "reason", "outcome"})
	sweepProducts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventario_sweep_products_total",
		Help: "Productos visitados por el barrido de estados según resultado.",
	}, []string{"result"})
	sweepDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "inventario_sweep_duration_seconds",
		Help:    "Duración de cada pasada del barrido de estados.",
		Buckets: prometheus.DefBuckets,
	})
	jobRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventario_jobs_total",
		Help: "Ejecuciones de tareas en segundo plano por nombre y estado.",
	}, []string{"job", "status"})
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventario_job_duration_seconds",
		Help:    "Duración de las tareas en segundo plano.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inventario_http_requests_total",
		Help: "Peticiones HTTP por ruta y código.",
	}, []string{"route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inventario_http_request_duration_seconds",
		Help:    "Duración de las peticiones HTTP por ruta.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		movements, sweepProducts, sweepDuration, jobRuns, jobDuration, requests, duration,
	)
	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		movements:       movements,
		sweepProducts:   sweepProducts,
		sweepDuration:   sweepDuration,
		jobRuns:         jobRuns,
		jobDuration:     jobDuration,
		requestsTotal:   requests,
		requestDuration: duration,
	}
}

// Handler http.Handler para /metrics.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveMovement cuenta un movimiento por resultado.
func (m *Metrics) ObserveMovement(direction, reason string, err error) {
	if m == nil {
		return
	}
	if reason == "" {
		reason = "none"
	}
	m.movements.WithLabelValues(direction, reason, Outcome(err)).Inc()
}

// ObserveSweep registra una pasada del barrido.
func (m *Metrics) ObserveSweep(changed, skipped, failed int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.sweepProducts.WithLabelValues("changed").Add(float64(changed))
	m.sweepProducts.WithLabelValues("skipped").Add(float64(skipped))
	m.sweepProducts.WithLabelValues("failed").Add(float64(failed))
	m.sweepDuration.Observe(elapsed.Seconds())
}

// Outcome clasifica el error de un movimiento para la etiqueta outcome.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case domain.IsRetryable(err):
		return "busy"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case domain.IsValidation(err):
		return "invalid"
	case domain.IsConflict(err):
		return "conflict"
	default:
		return "error"
	}
}

// Tracker instrumenta una ejecución de tarea.
type Tracker struct {
	metrics *Metrics
	job     string
	start   time.Time
}

// Track abre un tracker para la tarea indicada.
func (m *Metrics) Track(job string) *Tracker {
	return &Tracker{metrics: m, job: job, start: time.Now()}
}

// End registra duración y estado, y devuelve err sin tocarlo.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil || t.job == "" {
		return err
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	t.metrics.jobRuns.WithLabelValues(t.job, status).Inc()
	t.metrics.jobDuration.WithLabelValues(t.job).Observe(time.Since(t.start).Seconds())
	return err
}

// Middleware registra código y duración por ruta de fiber.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if m == nil {
			return c.Next()
		}
		start := time.Now()
		err := c.Next()
		code := c.Response().StatusCode()
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		route := c.Route().Path
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(code)).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
		return err
	}
}
