package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.TableLoaded(42)
	m.TableLoadFailed()
	m.ObserveRender("http", 3*time.Millisecond)
	m.ObserveRender("websocket", time.Millisecond)
	m.ObserveRender("websocket", time.Millisecond)
	m.Exported(10)
	m.Exported(5)
	m.SessionOpened()
	m.SessionOpened()
	m.SessionClosed()

	if got := testutil.ToFloat64(m.tableLoads.WithLabelValues("success")); got != 1 {
		t.Errorf("Expected 1 successful load, got %v", got)
	}
	if got := testutil.ToFloat64(m.tableLoads.WithLabelValues("error")); got != 1 {
		t.Errorf("Expected 1 failed load, got %v", got)
	}
	if got := testutil.ToFloat64(m.tableRows); got != 42 {
		t.Errorf("Expected 42 rows, got %v", got)
	}
	if got := testutil.ToFloat64(m.renders.WithLabelValues("websocket")); got != 2 {
		t.Errorf("Expected 2 websocket renders, got %v", got)
	}
	if got := testutil.ToFloat64(m.exportedRows); got != 15 {
		t.Errorf("Expected 15 exported rows, got %v", got)
	}
	if got := testutil.ToFloat64(m.sessions); got != 1 {
		t.Errorf("Expected 1 active session, got %v", got)
	}
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.Exported(1)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "seclab_dashboard_exports_total 1") {
		t.Error("Expected exports counter in exposition output")
	}
}
