// Package metrics holds the domain counters of the issue core.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics groups the counters incremented by the attachment store, audit log
// and orchestrator. A nil *Metrics is valid and records nothing.
type Metrics struct {
	AttachmentsStored   *prometheus.CounterVec
	AttachmentsRejected *prometheus.CounterVec
	Thumbnails          *prometheus.CounterVec
	CleanupFailures     prometheus.Counter
	AuditFailures       prometheus.Counter
	Mutations           *prometheus.CounterVec
}

// New creates the counters and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		AttachmentsStored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "issue_attachments_stored_total",
			Help: "Attachments written to storage, by slot.",
		}, []string{"slot"}),
		AttachmentsRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "issue_attachments_rejected_total",
			Help: "Attachments refused for type or size, by slot and reason.",
		}, []string{"slot", "reason"}),
		Thumbnails: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "issue_thumbnails_total",
			Help: "Thumbnail derivations, by result (created, exists, failed).",
		}, []string{"result"}),
		CleanupFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "issue_attachment_cleanup_failures_total",
			Help: "Best-effort file deletions that failed.",
		}),
		AuditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "issue_audit_write_failures_total",
			Help: "Audit entries that could not be written.",
		}),
		Mutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "issue_mutations_total",
			Help: "Issue mutations, by operation and outcome.",
		}, []string{"op", "outcome"}),
	}

	for _, c := range []prometheus.Collector{
		m.AttachmentsStored, m.AttachmentsRejected, m.Thumbnails,
		m.CleanupFailures, m.AuditFailures, m.Mutations,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Stored(slot string) {
	if m != nil {
		m.AttachmentsStored.WithLabelValues(slot).Inc()
	}
}

func (m *Metrics) Rejected(slot, reason string) {
	if m != nil {
		m.AttachmentsRejected.WithLabelValues(slot, reason).Inc()
	}
}

func (m *Metrics) Thumbnail(result string) {
	if m != nil {
		m.Thumbnails.WithLabelValues(result).Inc()
	}
}

func (m *Metrics) CleanupFailed() {
	if m != nil {
		m.CleanupFailures.Inc()
	}
}

func (m *Metrics) AuditFailed() {
	if m != nil {
		m.AuditFailures.Inc()
	}
}

func (m *Metrics) Mutation(op string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.Mutations.WithLabelValues(op, outcome).Inc()
}
