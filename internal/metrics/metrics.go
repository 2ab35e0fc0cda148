// Package metrics exposes Prometheus metrics for the moderation workflow.
package metrics

import (
	"context"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"campusboard/internal/apperr"
	"campusboard/internal/lifecycle"
	"campusboard/internal/logging"
	"campusboard/internal/models"
)

var submissionsDesc = prometheus.NewDesc(
	"campusboard_submissions",
	"Current number of submissions by content type and status",
	[]string{"content_type", "status"},
	nil,
)

// StatusCounter reports how many items are in each state.
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[models.ContentType]map[models.Status]int, error)
}

// SubmissionCollector reads status counts from the database on each scrape.
type SubmissionCollector struct {
	counter StatusCounter
}

// Describe sends the metric descriptor to the channel.
func (c *SubmissionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- submissionsDesc
}

// Collect queries the database and emits one gauge per type and status.
func (c *SubmissionCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	counts, err := c.counter.CountByStatus(ctx)
	if err != nil {
		logging.Error().Err(err).Msg("failed to collect submission metrics")
		return
	}
	for contentType, byStatus := range counts {
		for status, n := range byStatus {
			ch <- prometheus.MustNewConstMetric(
				submissionsDesc,
				prometheus.GaugeValue,
				float64(n),
				string(contentType),
				string(status),
			)
		}
	}
}

// TransitionCounter counts engine actions by outcome. It is registered as
// an engine hook.
type TransitionCounter struct {
	counter *prometheus.CounterVec
}

func newTransitionCounter() *TransitionCounter {
	return &TransitionCounter{
		counter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "campusboard_transitions_total",
			Help: "Lifecycle actions by content type, action and outcome",
		}, []string{"content_type", "action", "outcome"}),
	}
}

func (t *TransitionCounter) AfterTransition(_ context.Context, ev lifecycle.Event) error {
	outcome := "ok"
	if ev.Err != nil {
		outcome = string(apperr.CodeOf(ev.Err))
	}
	t.counter.WithLabelValues(string(ev.ContentType), string(ev.Action), outcome).Inc()
	return nil
}

// Register adds the collectors to reg and returns the transition hook.
func Register(reg prometheus.Registerer, counter StatusCounter) *TransitionCounter {
	transitions := newTransitionCounter()
	reg.MustRegister(transitions.counter)
	if counter != nil {
		reg.MustRegister(&SubmissionCollector{counter: counter})
	}
	return transitions
}

var (
	transitions *TransitionCounter
	initOnce    sync.Once
)

// Init registers with the default registry. Must be called once at startup;
// later calls return the same hook.
func Init(counter StatusCounter) *TransitionCounter {
	initOnce.Do(func() {
		transitions = Register(prometheus.DefaultRegisterer, counter)
	})
	return transitions
}
