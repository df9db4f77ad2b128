package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CollectorがMetricsCollectorインターフェースを満たすことを検証
func TestCollector_ImplementsInterface(t *testing.T) {
	reg := prometheus.NewRegistry()
	var _ MetricsCollector = NewCollector(reg)
}

// メトリクスの記録と/metricsでの公開を検証
func TestCollector_RecordAndExpose(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordLoginSuccess("password")
	c.RecordLoginSuccess("google")
	c.RecordLoginFailure("password", "invalid_credentials")
	c.RecordRegistration()
	c.RecordEmailSent("verification")
	c.RecordEmailFailure("password_reset")
	c.RecordHTTPStatus(200)
	c.RecordHTTPStatus(404)
	c.RecordRequestLatency(50 * time.Millisecond)

	server := httptest.NewServer(SetupMetricsRoute(reg))
	defer server.Close()

	resp, err := http.Get(server.URL + "/metrics")
	if err != nil {
		t.Fatalf("failed to scrape metrics: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read metrics body: %v", err)
	}
	output := string(body)

	expected := []string{
		`torneo_login_success_total{method="password"} 1`,
		`torneo_login_success_total{method="google"} 1`,
		`torneo_login_fail_total{method="password",reason="invalid_credentials"} 1`,
		`torneo_registrations_total 1`,
		`torneo_emails_sent_total{kind="verification"} 1`,
		`torneo_emails_fail_total{kind="password_reset"} 1`,
		`torneo_http_status_total{status_code="200"} 1`,
		`torneo_http_status_total{status_code="404"} 1`,
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("metrics output should contain %q", want)
		}
	}

	if !strings.Contains(output, "torneo_request_latency_seconds") {
		t.Error("metrics output should contain the latency histogram")
	}
}

// 同じレジストリへの二重登録がpanicすることを検証（設定ミス検出）
func TestNewCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)

	defer func() {
		if r := recover(); r == nil {
			t.Error("expected panic on duplicate registration")
		}
	}()
	NewCollector(reg)
}
