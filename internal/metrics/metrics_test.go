package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("write metric: %v", err)
	}
	return m.GetCounter().GetValue()
}

func TestRecordAssessment(t *testing.T) {
	beforeCritical := counterValue(t, AssessmentsTotal.WithLabelValues("critical"))
	beforeFlagged := counterValue(t, FraudFlaggedTotal)
	beforeRule := counterValue(t, RuleHitsTotal.WithLabelValues("velocity"))

	RecordAssessment("critical", 85, true, []string{"velocity", "round_amount"})

	if got := counterValue(t, AssessmentsTotal.WithLabelValues("critical")); got != beforeCritical+1 {
		t.Errorf("assessments_total{critical} = %v, want %v", got, beforeCritical+1)
	}
	if got := counterValue(t, FraudFlaggedTotal); got != beforeFlagged+1 {
		t.Errorf("fraud_flagged_total = %v, want %v", got, beforeFlagged+1)
	}
	if got := counterValue(t, RuleHitsTotal.WithLabelValues("velocity")); got != beforeRule+1 {
		t.Errorf("rule_hits_total{velocity} = %v, want %v", got, beforeRule+1)
	}
}

func TestRecordAssessmentNotFlagged(t *testing.T) {
	beforeFlagged := counterValue(t, FraudFlaggedTotal)
	beforeLow := counterValue(t, AssessmentsTotal.WithLabelValues("low"))

	RecordAssessment("low", 0, false, nil)

	if got := counterValue(t, FraudFlaggedTotal); got != beforeFlagged {
		t.Errorf("fraud_flagged_total incremented for non-fraud assessment")
	}
	if got := counterValue(t, AssessmentsTotal.WithLabelValues("low")); got != beforeLow+1 {
		t.Errorf("assessments_total{low} = %v, want %v", got, beforeLow+1)
	}
}

func TestStatusBucket(t *testing.T) {
	cases := map[int]string{
		102: "1xx",
		200: "2xx",
		301: "3xx",
		404: "4xx",
		500: "5xx",
	}
	for code, want := range cases {
		if got := statusBucket(code); got != want {
			t.Errorf("statusBucket(%d) = %s, want %s", code, got, want)
		}
	}
}
