package sim

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/steerlab/steering/internal/sim"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// metrics holds the runner's instruments. Uses the global OTel meter by
// default, which is a no-op until a meter provider is installed.
type metrics struct {
	ticks        metric.Int64Counter
	steering     metric.Float64Histogram
	collisions   metric.Int64Counter
	tickDuration metric.Float64Histogram
	queueSize    metric.Int64ObservableGauge
	registration metric.Registration
}

func newMetrics(m metric.Meter, queueLen func() int) (*metrics, error) {
	var (
		mt  metrics
		err error
	)

	mt.ticks, err = m.Int64Counter(
		"sim.ticks",
		metric.WithDescription("Total ticks simulated"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ticks counter: %w", err)
	}

	mt.steering, err = m.Float64Histogram(
		"sim.steering.magnitude",
		metric.WithDescription("Length of the steering force applied to an agent"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating steering histogram: %w", err)
	}

	mt.collisions, err = m.Int64Counter(
		"sim.collisions",
		metric.WithDescription("Contacts detected, by kind"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating collisions counter: %w", err)
	}

	mt.tickDuration, err = m.Float64Histogram(
		"sim.tick.duration",
		metric.WithDescription("Wall time spent computing one tick"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating tick duration histogram: %w", err)
	}

	mt.queueSize, err = m.Int64ObservableGauge(
		"sim.record.queue.size",
		metric.WithDescription("States waiting to be flushed to storage"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating queue size gauge: %w", err)
	}

	mt.registration, err = m.RegisterCallback(
		func(ctx context.Context, o metric.Observer) error {
			o.ObserveInt64(mt.queueSize, int64(queueLen()))
			return nil
		},
		mt.queueSize,
	)
	if err != nil {
		return nil, fmt.Errorf("registering queue callback: %w", err)
	}

	return &mt, nil
}

func (m *metrics) collision(ctx context.Context, kind string) {
	m.collisions.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func (m *metrics) close() {
	if m.registration != nil {
		_ = m.registration.Unregister()
	}
}
