// Package metrics contadores Prometheus de alta de cuentas y lecturas degradadas.
// Todos los métodos aceptan receptor nil para que los casos de uso funcionen sin registro.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Resultados de un alta.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// ProvisioningMetrics altas de técnicos y clientes y sus compensaciones.
type ProvisioningMetrics struct {
	accounts      *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	compensations *prometheus.CounterVec
}

// NewProvisioningMetrics registra las métricas de alta en reg. Con reg nil no registra nada.
func NewProvisioningMetrics(reg prometheus.Registerer) *ProvisioningMetrics {
	if reg == nil {
		return &ProvisioningMetrics{}
	}
	accounts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provisioning_accounts_total",
		Help: "Altas de cuentas por tipo (worker, customer) y resultado.",
	}, []string{"kind", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "provisioning_duration_seconds",
		Help:    "Duración de un alta completa en segundos.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})
	compensations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "provisioning_compensations_total",
		Help: "Deshacer pasos previos tras un fallo, por paso (profile, identity) y resultado.",
	}, []string{"step", "outcome"})
	reg.MustRegister(accounts, duration, compensations)
	return &ProvisioningMetrics{accounts: accounts, duration: duration, compensations: compensations}
}

// ObserveAccount registra el resultado y la duración de un alta.
func (m *ProvisioningMetrics) ObserveAccount(kind, outcome string, d time.Duration) {
	if m == nil || m.accounts == nil {
		return
	}
	m.accounts.WithLabelValues(normalizeLabel(kind), normalizeLabel(outcome)).Inc()
	m.duration.WithLabelValues(normalizeLabel(kind)).Observe(d.Seconds())
}

// IncCompensation cuenta un paso de compensación.
func (m *ProvisioningMetrics) IncCompensation(step, outcome string) {
	if m == nil || m.compensations == nil {
		return
	}
	m.compensations.WithLabelValues(normalizeLabel(step), normalizeLabel(outcome)).Inc()
}

// ReadMetrics lecturas que degradaron a vacío o null por un error del almacén.
type ReadMetrics struct {
	degraded *prometheus.CounterVec
}

// NewReadMetrics registra las métricas de lectura en reg. Con reg nil no registra nada.
func NewReadMetrics(reg prometheus.Registerer) *ReadMetrics {
	if reg == nil {
		return &ReadMetrics{}
	}
	degraded := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "read_degraded_total",
		Help: "Consultas de lectura que devolvieron vacío por un error del almacén.",
	}, []string{"query"})
	reg.MustRegister(degraded)
	return &ReadMetrics{degraded: degraded}
}

// IncDegraded cuenta una lectura degradada.
func (m *ReadMetrics) IncDegraded(query string) {
	if m == nil || m.degraded == nil {
		return
	}
	m.degraded.WithLabelValues(normalizeLabel(query)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
