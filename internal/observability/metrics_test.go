package observability

import (
	"testing"
	"time"
)

func TestMetricsSnapshotIsACopy(t *testing.T) {
	m := NewMetrics()
	m.RecordRequest("/auth/me", "GET", 200, time.Millisecond)
	m.RecordError("/auth/me", "GET", "UNAUTHORIZED")
	m.RecordAuthFailure("revoked")
	m.RecordAuthFailure("revoked")

	snap := m.Snapshot()
	if snap.Requests["/auth/me|GET|200"] != 1 {
		t.Fatalf("unexpected request counts: %v", snap.Requests)
	}
	if snap.Errors["/auth/me|GET|UNAUTHORIZED"] != 1 {
		t.Fatalf("unexpected error counts: %v", snap.Errors)
	}
	if snap.AuthFailures["revoked"] != 2 {
		t.Fatalf("unexpected auth failure counts: %v", snap.AuthFailures)
	}

	snap.AuthFailures["revoked"] = 100
	if m.Snapshot().AuthFailures["revoked"] != 2 {
		t.Fatal("snapshot mutation leaked into metrics")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.RecordRequest("/", "GET", 200, 0)
	m.RecordError("/", "GET", "X")
	m.RecordAuthFailure("expired")
	if snap := m.Snapshot(); snap.Requests != nil {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
}
