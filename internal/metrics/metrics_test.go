package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveExport(t *testing.T) {
	okBefore := testutil.ToFloat64(PaymentsExported.WithLabelValues(ResultSuccess))
	errBefore := testutil.ToFloat64(PaymentsExported.WithLabelValues(ResultError))

	ObserveExport(time.Now(), nil)
	ObserveExport(time.Now(), errors.New("sheets unavailable"))
	ObserveExport(time.Now(), nil)

	if got := testutil.ToFloat64(PaymentsExported.WithLabelValues(ResultSuccess)) - okBefore; got != 2 {
		t.Errorf("success delta = %v, want 2", got)
	}
	if got := testutil.ToFloat64(PaymentsExported.WithLabelValues(ResultError)) - errBefore; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
}

func TestOutcome(t *testing.T) {
	if Outcome(nil) != ResultSuccess {
		t.Errorf("Outcome(nil) = %q", Outcome(nil))
	}
	if Outcome(errors.New("boom")) != ResultError {
		t.Errorf("Outcome(err) = %q", Outcome(errors.New("boom")))
	}
}

func TestCollectorsLint(t *testing.T) {
	PaymentsRecorded.WithLabelValues("one_time").Inc()
	problems, err := testutil.CollectAndLint(PaymentsRecorded)
	if err != nil {
		t.Fatalf("CollectAndLint: %v", err)
	}
	if len(problems) > 0 {
		t.Fatalf("lint problems: %v", problems)
	}
}
