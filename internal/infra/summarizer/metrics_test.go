package summarizer

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrometheusSummaryMetrics_Singleton(t *testing.T) {
	m1 := NewPrometheusSummaryMetrics()
	m2 := NewPrometheusSummaryMetrics()

	require.NotNil(t, m1)
	assert.Same(t, m1, m2)
}

func TestPrometheusSummaryMetrics_RecordEmpty(t *testing.T) {
	m := NewPrometheusSummaryMetrics()
	counter := m.emptyTotal.WithLabelValues(string(MethodFrequency), "no_vocabulary")
	before := testutil.ToFloat64(counter)

	m.RecordEmpty(MethodFrequency, "no_vocabulary")
	m.RecordEmpty(MethodFrequency, "no_vocabulary")

	assert.Equal(t, before+2, testutil.ToFloat64(counter))
}

func TestPrometheusSummaryMetrics_Observations(t *testing.T) {
	m := NewPrometheusSummaryMetrics()

	assert.NotPanics(t, func() {
		m.RecordSentences(MethodLead, 40, 4)
		m.RecordSentences(MethodFrequency, 0, 0)
		m.RecordDuration(MethodFrequency, 3*time.Millisecond)
	})
	assert.Positive(t, testutil.CollectAndCount(m.sourceSentences))
	assert.Positive(t, testutil.CollectAndCount(m.durationHistogram))
}
