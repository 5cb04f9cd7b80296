package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveDispatch(t *testing.T) {
	m := New()
	m.ObserveDispatch("reentry", ModeSimulated, 100*time.Millisecond)
	m.ObserveDispatch("reentry", ModeSimulated, 100*time.Millisecond)
	m.ObserveFailure("break_ritual")

	if got := testutil.ToFloat64(m.dispatches.WithLabelValues("reentry", ModeSimulated)); got != 2 {
		t.Fatalf("expected 2 simulated reentry dispatches, got %v", got)
	}
	if got := testutil.ToFloat64(m.failures.WithLabelValues("break_ritual")); got != 1 {
		t.Fatalf("expected 1 failure, got %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveDispatch("reentry", ModeNova, time.Second)
	m.ObserveFailure("reentry")
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObserveDispatch("break_ritual", ModeNova, time.Second)

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	body, _ := io.ReadAll(rr.Body)
	if !strings.Contains(string(body), `nova_bridge_dispatch_total{mode="nova",ritual="break_ritual"} 1`) {
		t.Fatalf("dispatch counter missing from exposition:\n%s", body)
	}
}
