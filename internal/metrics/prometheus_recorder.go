package metrics

import (
	"strconv"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once              sync.Once
	stepDuration      *prom.HistogramVec
	stepResults       *prom.CounterVec
	provisionDuration prom.Histogram
	provisionOutcome  *prom.CounterVec
	launchDuration    prom.Histogram
	launchExits       *prom.CounterVec
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stepDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "mlenv",
			Name:      "step_duration_seconds",
			Help:      "Duration of individual provisioning steps",
			Buckets:   prom.DefBuckets,
		}, []string{"step"})
		pr.stepResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "mlenv",
			Name:      "step_results_total",
			Help:      "Provisioning step result counts by outcome",
		}, []string{"step", "result"})
		pr.provisionDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "mlenv",
			Name:      "provision_duration_seconds",
			Help:      "Total provisioning run duration",
			Buckets:   prom.DefBuckets,
		})
		pr.provisionOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "mlenv",
			Name:      "provision_outcomes_total",
			Help:      "Provisioning run outcomes by final status",
		}, []string{"outcome"})
		pr.launchDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "mlenv",
			Name:      "launch_duration_seconds",
			Help:      "Wall-clock duration of launched training jobs",
			Buckets:   prom.DefBuckets,
		})
		pr.launchExits = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "mlenv",
			Name:      "launch_exits_total",
			Help:      "Launched job exits by exit code",
		}, []string{"code"})
		reg.MustRegister(pr.stepDuration, pr.stepResults, pr.provisionDuration, pr.provisionOutcome, pr.launchDuration, pr.launchExits)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStepDuration(step string, d time.Duration) {
	if p == nil || p.stepDuration == nil {
		return
	}
	p.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStepResult(step string, result ResultLabel) {
	if p == nil || p.stepResults == nil {
		return
	}
	p.stepResults.WithLabelValues(step, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveProvisionDuration(d time.Duration) {
	if p == nil || p.provisionDuration == nil {
		return
	}
	p.provisionDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncProvisionOutcome(outcome string) {
	if p == nil || p.provisionOutcome == nil {
		return
	}
	p.provisionOutcome.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) ObserveLaunchDuration(d time.Duration) {
	if p == nil || p.launchDuration == nil {
		return
	}
	p.launchDuration.Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncLaunchExit(code int) {
	if p == nil || p.launchExits == nil {
		return
	}
	p.launchExits.WithLabelValues(strconv.Itoa(code)).Inc()
}
