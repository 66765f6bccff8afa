package metrics

import (
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNew_RegistersWithGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Operation("fetch_one", "FOUND")
	m.Operation("fetch_one", "ACCESS_DENIED")
	m.Operation("remove", "ACCESS_DENIED")
	m.AuthFailure("basic")

	if got := testutil.ToFloat64(m.operations.WithLabelValues("fetch_one", "FOUND")); got != 1 {
		t.Errorf("operations{fetch_one,FOUND} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.accessDenied.WithLabelValues("remove")); got != 1 {
		t.Errorf("access_denied{remove} = %v, want 1", got)
	}

	expected := `
# HELP identity_authentication_failures_total Total number of requests whose credentials could not be verified.
# TYPE identity_authentication_failures_total counter
identity_authentication_failures_total{scheme="basic"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "identity_authentication_failures_total"); err != nil {
		t.Fatal(err)
	}

	count, err := testutil.GatherAndCount(reg, "identity_operations_total", "identity_access_denied_total")
	if err != nil {
		t.Fatal(err)
	}
	if count != 5 {
		t.Errorf("expected 5 series, got %d", count)
	}
}

func TestNew_TwoRegistriesDoNotCollide(t *testing.T) {
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}

func TestNilMetrics_IsNoop(t *testing.T) {
	var m *Metrics
	m.Operation("register", "CREATED")
	m.AuthFailure("bearer")
}
