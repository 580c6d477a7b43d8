package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.Stored("photo")
	m.Stored("photo")
	m.Rejected("document", "type")
	m.Thumbnail("created")
	m.CleanupFailed()
	m.AuditFailed()
	m.Mutation("update", nil)
	m.Mutation("update", errors.New("boom"))

	assert.Equal(t, float64(2), testutil.ToFloat64(m.AttachmentsStored.WithLabelValues("photo")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AttachmentsRejected.WithLabelValues("document", "type")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Thumbnails.WithLabelValues("created")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CleanupFailures))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.AuditFailures))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Mutations.WithLabelValues("update", "error")))

	_, err = New(reg)
	assert.Error(t, err, "second registration on the same registry")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.Stored("photo")
		m.Rejected("photo", "size")
		m.Thumbnail("failed")
		m.CleanupFailed()
		m.AuditFailed()
		m.Mutation("create", nil)
	})
}
