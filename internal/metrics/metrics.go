// Package metrics holds Switchboard's Prometheus collectors.
package metrics

import (
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricPrefix = "switchboard_"

// Control command results.
const (
	CommandPublished = "published"
	CommandDenied    = "denied"
	CommandInvalid   = "invalid"
	CommandFailed    = "failed"
)

// Device operation results.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

// Collector groups the control and device collectors. A nil *Collector is
// valid and records nothing.
type Collector struct {
	commands       *prometheus.CounterVec
	publishLatency prometheus.Histogram
	deviceOps      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. Registering twice
// on the same registry reuses the existing collectors.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		commands: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "control_commands_total",
				Help: "Total control requests by terminal result",
			},
			[]string{"result"},
		),
		publishLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "control_publish_seconds",
				Help:    "Time from publish call to broker acceptance",
				Buckets: prometheus.DefBuckets,
			},
		),
		deviceOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "device_operations_total",
				Help: "Total device repository operations by operation and result",
			},
			[]string{"operation", "result"},
		),
	}

	var err error
	if c.commands, err = register(reg, c.commands); err != nil {
		return nil, err
	}
	if c.publishLatency, err = register(reg, c.publishLatency); err != nil {
		return nil, err
	}
	if c.deviceOps, err = register(reg, c.deviceOps); err != nil {
		return nil, err
	}
	return c, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, col T) (T, error) {
	if err := reg.Register(col); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		var zero T
		return zero, fmt.Errorf("registering collector: %w", err)
	}
	return col, nil
}

// ObserveCommand counts one terminal control outcome.
func (c *Collector) ObserveCommand(result string) {
	if c == nil {
		return
	}
	c.commands.WithLabelValues(result).Inc()
}

// ObservePublish records how long the broker took to accept a command.
func (c *Collector) ObservePublish(d time.Duration) {
	if c == nil {
		return
	}
	c.publishLatency.Observe(d.Seconds())
}

// ObserveDeviceOperation counts one repository call; err nil means success.
func (c *Collector) ObserveDeviceOperation(operation string, err error) {
	if c == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	c.deviceOps.WithLabelValues(operation, result).Inc()
}
