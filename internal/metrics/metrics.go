package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"interview-bot/internal/aggregate"
	"interview-bot/internal/interview"
)

// Metrics owns the bot's collectors on a private registry. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	started        prometheus.Counter
	cancelled      prometheus.Counter
	completed      *prometheus.CounterVec
	transitions    *prometheus.CounterVec
	recoveries     *prometheus.CounterVec
	painScores     prometheus.Histogram
	truncated      prometheus.Counter
	sendErrors     *prometheus.CounterVec
	activeSessions prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "interview_started_total",
			Help: "Interviews started with /start.",
		}),
		cancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "interview_cancelled_total",
			Help: "Interviews discarded with /cancel.",
		}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_completed_total",
			Help: "Interviews that reached the final stage.",
		}, []string{"persisted"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_stage_entered_total",
			Help: "Stage transitions by target stage.",
		}, []string{"stage"}),
		recoveries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "interview_recoveries_total",
			Help: "Recoveries of missing session state.",
		}, []string{"stage"}),
		painScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "interview_pain_score",
			Help:    "Scores of committed pain analyses.",
			Buckets: prometheus.LinearBuckets(0, 1, 11),
		}),
		truncated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "interview_pains_truncated_total",
			Help: "Pain analyses that did not fit into the export row.",
		}),
		sendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "telegram_send_errors_total",
			Help: "Failed outgoing Telegram calls.",
		}, []string{"kind"}),
		activeSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "interview_active_sessions",
			Help: "Interviews currently in progress.",
		}),
	}
	m.Registry.MustRegister(
		m.started, m.cancelled, m.completed, m.transitions, m.recoveries,
		m.painScores, m.truncated, m.sendErrors, m.activeSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Hooks adapts the collectors to the interview engine.
func (m *Metrics) Hooks() interview.Hooks {
	if m == nil {
		return interview.Hooks{}
	}
	return interview.Hooks{
		OnTransition: func(_, to interview.Stage) {
			m.transitions.WithLabelValues(to.String()).Inc()
		},
		OnRecover: func(stage interview.Stage, _ string) {
			m.recoveries.WithLabelValues(stage.String()).Inc()
		},
		OnPainCommitted: func(e interview.PainEntry) {
			m.painScores.Observe(float64(e.Score))
		},
		OnComplete: func(rec *interview.Record, err error) {
			persisted := "true"
			if err != nil {
				persisted = "false"
			}
			m.completed.WithLabelValues(persisted).Inc()
			if n := len(rec.PainAnalysis) - aggregate.MaxPainGroups; n > 0 {
				m.truncated.Add(float64(n))
			}
		},
	}
}

func (m *Metrics) InterviewStarted() {
	if m != nil {
		m.started.Inc()
	}
}

func (m *Metrics) InterviewCancelled() {
	if m != nil {
		m.cancelled.Inc()
	}
}

func (m *Metrics) SendFailed(kind string) {
	if m != nil {
		m.sendErrors.WithLabelValues(kind).Inc()
	}
}

func (m *Metrics) SetActiveSessions(n int) {
	if m != nil {
		m.activeSessions.Set(float64(n))
	}
}
