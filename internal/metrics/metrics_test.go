package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveMatches(t *testing.T) {
	matched := MatchesTotal.WithLabelValues(KindDNSProxy, OutcomeMatched)
	unmatched := MatchesTotal.WithLabelValues(KindDNSProxy, OutcomeUnmatched)
	beforeMatched := testutil.ToFloat64(matched)
	beforeUnmatched := testutil.ToFloat64(unmatched)

	ObserveMatches(KindDNSProxy, 3, 1)

	if got := testutil.ToFloat64(matched) - beforeMatched; got != 3 {
		t.Errorf("expected matched to grow by 3, got %v", got)
	}
	if got := testutil.ToFloat64(unmatched) - beforeUnmatched; got != 1 {
		t.Errorf("expected unmatched to grow by 1, got %v", got)
	}
}

func TestObserveValidation(t *testing.T) {
	ObserveValidation(false, 4, 2)

	if got := testutil.ToFloat64(ValidationValid); got != 0 {
		t.Errorf("expected valid gauge 0, got %v", got)
	}
	if got := testutil.ToFloat64(ValidationFindings.WithLabelValues("error")); got != 4 {
		t.Errorf("expected 4 errors, got %v", got)
	}

	ObserveValidation(true, 0, 2)
	if got := testutil.ToFloat64(ValidationValid); got != 1 {
		t.Errorf("expected valid gauge 1, got %v", got)
	}
}
