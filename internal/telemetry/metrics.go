package telemetry

import (
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName = "github.com/wolfeidau/tasktracker"
)

// Outcome attribute values recorded on the auth counters.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds all the OpenTelemetry metric instruments
type Metrics struct {
	// Auth flow metrics
	SignupsTotal       metric.Int64Counter
	LoginsTotal        metric.Int64Counter
	TokensIssuedTotal  metric.Int64Counter
	TokensRevokedTotal metric.Int64Counter

	// Gate metrics
	GateRejectionsTotal metric.Int64Counter
	PasswordHashLatency metric.Float64Histogram

	// Resource metrics
	ProjectsCreatedTotal metric.Int64Counter
	TasksCreatedTotal    metric.Int64Counter
}

var (
	once    sync.Once
	metrics *Metrics
)

// GetMetrics returns the singleton Metrics instance, initializing it if necessary
func GetMetrics() *Metrics {
	once.Do(func() {
		metrics = initMetrics()
	})
	return metrics
}

// initMetrics creates and registers all metric instruments.
// Instruments come from the global meter provider, which is a no-op until
// InitTelemetry installs an exporting one.
func initMetrics() *Metrics {
	meter := otel.GetMeterProvider().Meter(meterName)

	m := &Metrics{}

	m.SignupsTotal, _ = meter.Int64Counter(
		"tasktracker.auth.signups.total",
		metric.WithDescription("Total number of signup attempts by outcome"),
		metric.WithUnit("{signup}"),
	)

	m.LoginsTotal, _ = meter.Int64Counter(
		"tasktracker.auth.logins.total",
		metric.WithDescription("Total number of login attempts by outcome"),
		metric.WithUnit("{login}"),
	)

	m.TokensIssuedTotal, _ = meter.Int64Counter(
		"tasktracker.auth.tokens.issued.total",
		metric.WithDescription("Total number of session tokens issued"),
		metric.WithUnit("{token}"),
	)

	m.TokensRevokedTotal, _ = meter.Int64Counter(
		"tasktracker.auth.tokens.revoked.total",
		metric.WithDescription("Total number of session tokens added to the denylist"),
		metric.WithUnit("{token}"),
	)

	m.GateRejectionsTotal, _ = meter.Int64Counter(
		"tasktracker.auth.gate.rejections.total",
		metric.WithDescription("Total number of requests rejected by the auth gate"),
		metric.WithUnit("{request}"),
	)

	m.PasswordHashLatency, _ = meter.Float64Histogram(
		"tasktracker.auth.password_hash.duration",
		metric.WithDescription("Duration of password hash and verify operations"),
		metric.WithUnit("ms"),
	)

	m.ProjectsCreatedTotal, _ = meter.Int64Counter(
		"tasktracker.projects.created.total",
		metric.WithDescription("Total number of projects created"),
		metric.WithUnit("{project}"),
	)

	m.TasksCreatedTotal, _ = meter.Int64Counter(
		"tasktracker.tasks.created.total",
		metric.WithDescription("Total number of tasks created"),
		metric.WithUnit("{task}"),
	)

	return m
}
