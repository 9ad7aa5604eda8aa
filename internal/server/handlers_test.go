package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/egressguard/egressguard/internal/config"
	"github.com/egressguard/egressguard/internal/detect"
	"github.com/egressguard/egressguard/internal/logger"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()

	cfg := config.GetDefaults()
	cfg.Cache.Enabled = false
	cfg.RateLimit.Enabled = false
	if mutate != nil {
		mutate(cfg)
	}

	srv, err := New(cfg, &logger.Logger{Logger: zap.NewNop()})
	if err != nil {
		t.Fatalf("failed to create server: %v", err)
	}
	return srv
}

func postJSON(t *testing.T, srv *Server, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)
	return rec
}

func TestHandleScan(t *testing.T) {
	srv := newTestServer(t, nil)
	secret := "sk-proj-" + strings.Repeat("a", 49)

	t.Run("detects api key", func(t *testing.T) {
		rec := postJSON(t, srv, "/v1/scan", scanRequest{Text: "My key is " + secret})
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}

		var result detect.DetectionResult
		if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if !result.HasSensitiveData {
			t.Error("expected sensitive data to be reported")
		}
		if result.Summary.ByType[detect.TypeAPIKeyOpenAI] != 1 {
			t.Errorf("expected one openai finding, got %v", result.Summary.ByType)
		}
	})

	t.Run("raw value never serialized", func(t *testing.T) {
		rec := postJSON(t, srv, "/v1/scan", scanRequest{Text: "My key is " + secret})
		if strings.Contains(rec.Body.String(), secret) {
			t.Error("raw secret leaked into the response body")
		}
	})

	t.Run("clean text", func(t *testing.T) {
		rec := postJSON(t, srv, "/v1/scan", scanRequest{Text: "nothing to see here"})
		var result detect.DetectionResult
		if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if result.HasSensitiveData {
			t.Error("expected no findings for clean text")
		}
	})

	t.Run("caller options override defaults", func(t *testing.T) {
		rec := postJSON(t, srv, "/v1/scan", scanRequest{
			Text:    "ssn is 545-12-0089",
			Options: &detect.ScanOptions{SensitivityLevel: detect.SensitivityLow},
		})
		var result detect.DetectionResult
		if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if result.HasSensitiveData {
			t.Error("expected low sensitivity to suppress the 0.75-confidence finding")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/v1/scan", strings.NewReader("{not json"))
		rec := httptest.NewRecorder()
		srv.router.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})
}

func TestHandleScanAllowlist(t *testing.T) {
	secret := "sk-proj-" + strings.Repeat("a", 49)
	srv := newTestServer(t, func(c *config.Config) {
		c.Detection.Allowlist = []string{secret}
	})

	rec := postJSON(t, srv, "/v1/scan", scanRequest{Text: "key " + secret})
	var result detect.DetectionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.HasSensitiveData {
		t.Error("expected allowlisted value to be dropped")
	}
	if result.Summary.Total != 0 {
		t.Errorf("expected empty summary, got %d", result.Summary.Total)
	}
}

func TestHandleScanRequestAllowlist(t *testing.T) {
	srv := newTestServer(t, nil)
	secret := "sk-proj-" + strings.Repeat("a", 49)

	rec := postJSON(t, srv, "/v1/scan", scanRequest{
		Text:    "key " + secret,
		Options: &detect.ScanOptions{Allowlist: []string{secret}},
	})
	var result detect.DetectionResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if result.HasSensitiveData {
		t.Errorf("expected caller-allowlisted value to be dropped, got %d findings", result.Summary.Total)
	}

	// An unrelated allowlist entry must not suppress anything.
	rec = postJSON(t, srv, "/v1/scan", scanRequest{
		Text:    "key " + secret,
		Options: &detect.ScanOptions{Allowlist: []string{"some-other-value"}},
	})
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !result.HasSensitiveData {
		t.Error("expected the finding to survive an unrelated allowlist entry")
	}
}

func TestHandleQuickCheck(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name string
		text string
		want bool
	}{
		{"openai prefix", "sk-proj-abc123", true},
		{"plain prose", "the quick brown fox", false},
		{"too short", "sk-", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, srv, "/v1/quickcheck", scanRequest{Text: tt.text})
			var resp map[string]bool
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp["match"] != tt.want {
				t.Errorf("quickcheck(%q) = %v, want %v", tt.text, resp["match"], tt.want)
			}
		})
	}
}

func TestHandleRedact(t *testing.T) {
	srv := newTestServer(t, nil)
	secret := "sk-proj-" + strings.Repeat("a", 49)

	t.Run("labeled style", func(t *testing.T) {
		rec := postJSON(t, srv, "/v1/redact", redactRequest{Text: "key " + secret, Style: "labeled"})
		var resp redactResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if strings.Contains(resp.Redacted, secret) {
			t.Error("raw secret survived redaction")
		}
		if !strings.Contains(resp.Redacted, "[REDACTED_") {
			t.Errorf("expected a labeled marker, got %q", resp.Redacted)
		}
		if resp.Total != 1 {
			t.Errorf("expected 1 finding, got %d", resp.Total)
		}
	})

	t.Run("partial style keeps edges", func(t *testing.T) {
		rec := postJSON(t, srv, "/v1/redact", redactRequest{Text: "key " + secret, Style: "partial"})
		var resp redactResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if strings.Contains(resp.Redacted, secret) {
			t.Error("raw secret survived redaction")
		}
		if !strings.Contains(resp.Redacted, "sk-p") {
			t.Errorf("expected the masked value to keep its prefix, got %q", resp.Redacted)
		}
	})
}

func TestHandleDetectors(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/detectors", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	var resp struct {
		Total     int            `json:"total"`
		Detectors []detectorInfo `json:"detectors"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Total == 0 || len(resp.Detectors) != resp.Total {
		t.Fatalf("inconsistent catalog: total=%d len=%d", resp.Total, len(resp.Detectors))
	}

	found := false
	for _, d := range resp.Detectors {
		if d.Type == detect.TypeEmail && d.Label != "" {
			found = true
		}
	}
	if !found {
		t.Error("expected the email detector in the catalog")
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	srv.router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) {
		c.RateLimit.Enabled = true
		c.RateLimit.RequestsPerSec = 0.001
		c.RateLimit.Burst = 1
	})

	first := postJSON(t, srv, "/v1/quickcheck", scanRequest{Text: "hello"})
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}

	second := postJSON(t, srv, "/v1/quickcheck", scanRequest{Text: "hello"})
	if second.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after burst exhausted, got %d", second.Code)
	}
}

func TestReloadAppliesRateLimit(t *testing.T) {
	srv := newTestServer(t, func(c *config.Config) {
		c.RateLimit.Enabled = true
		c.RateLimit.RequestsPerSec = 0.001
		c.RateLimit.Burst = 1
	})

	if rec := postJSON(t, srv, "/v1/quickcheck", scanRequest{Text: "hello"}); rec.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}
	if rec := postJSON(t, srv, "/v1/quickcheck", scanRequest{Text: "hello"}); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst exhausted, got %d", rec.Code)
	}

	updated := config.GetDefaults()
	updated.Cache.Enabled = false
	updated.RateLimit.Enabled = true
	updated.RateLimit.RequestsPerSec = 100
	updated.RateLimit.Burst = 10
	srv.Reload(updated)

	if rec := postJSON(t, srv, "/v1/quickcheck", scanRequest{Text: "hello"}); rec.Code != http.StatusOK {
		t.Errorf("expected the reloaded rate limit to admit the request, got %d", rec.Code)
	}
}
