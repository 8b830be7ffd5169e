package metrics

import (
	"testing"
	"time"

	"github.com/ai-blog-writer/internal/provider"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestProviderObserver(t *testing.T) {
	before := testutil.ToFloat64(ProviderAttemptsTotal.WithLabelValues("gemini", provider.OutcomeTimeout))

	var obs provider.Observer = ProviderObserver{}
	obs.ObserveAttempt(provider.Gemini, provider.OutcomeTimeout, 30*time.Millisecond)
	obs.ObserveAttempt(provider.Gemini, provider.OutcomeTimeout, 30*time.Millisecond)

	after := testutil.ToFloat64(ProviderAttemptsTotal.WithLabelValues("gemini", provider.OutcomeTimeout))
	assert.Equal(t, before+2, after)
}

func TestRecordDemoFallback(t *testing.T) {
	before := testutil.ToFloat64(DemoFallbacksTotal.WithLabelValues("claude", "missing_api_key"))
	RecordDemoFallback("claude", "missing_api_key")
	assert.Equal(t, before+1, testutil.ToFloat64(DemoFallbacksTotal.WithLabelValues("claude", "missing_api_key")))
}

func TestRecordScheduleTransition(t *testing.T) {
	before := testutil.ToFloat64(ScheduleTransitionsTotal.WithLabelValues("scheduled", "published"))
	RecordScheduleTransition("scheduled", "published")
	assert.Equal(t, before+1, testutil.ToFloat64(ScheduleTransitionsTotal.WithLabelValues("scheduled", "published")))
}
