package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/egressguard/egressguard/internal/cache"
	"github.com/egressguard/egressguard/internal/detect"
	"github.com/egressguard/egressguard/internal/websocket"
	"go.uber.org/zap"
)

// scanRequest is the body of POST /v1/scan and POST /v1/quickcheck.
type scanRequest struct {
	Text    string              `json:"text"`
	Options *detect.ScanOptions `json:"options,omitempty"`
}

// redactRequest is the body of POST /v1/redact.
type redactRequest struct {
	Text  string `json:"text"`
	Style string `json:"style,omitempty"` // partial or labeled
}

type redactResponse struct {
	Redacted string                  `json:"redacted"`
	Total    int                     `json:"total"`
	Summary  detect.DetectionSummary `json:"summary"`
}

type detectorInfo struct {
	Type  detect.DetectorType `json:"type"`
	Label string              `json:"label"`
}

// handleScan runs a full detection scan over the request text.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	cfg := s.currentConfig()
	log := s.logger.WithRequestID(getRequestID(r.Context()))

	var req scanRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	opts := s.resolveOptions(req.Options)

	var key string
	if s.cache != nil {
		key = cache.Key(req.Text, opts)
		if cached, err := s.cache.Get(r.Context(), key); err != nil {
			log.Warn("Cache lookup failed", zap.Error(err))
		} else if cached != nil {
			s.writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	result := detect.Scan(req.Text, opts)
	applyAllowlist(result, opts.Allowlist)

	atomic.AddInt64(&s.totalScans, 1)
	if result.HasSensitiveData {
		atomic.AddInt64(&s.totalDetections, 1)
		s.broadcastDetection(r, result, cfg.Detection.Style())
	}

	if s.cache != nil {
		if err := s.cache.Set(r.Context(), key, result); err != nil {
			log.Warn("Cache store failed", zap.Error(err))
		}
	}

	log.Info("Scan completed",
		zap.Int("text_length", result.TextLength),
		zap.Int("findings", result.Summary.Total),
		zap.Float64("scan_time_ms", result.ScanTime),
	)

	s.writeJSON(w, http.StatusOK, result)
}

// handleQuickCheck runs the cheap boolean pre-filter.
func (s *Server) handleQuickCheck(w http.ResponseWriter, r *http.Request) {
	var req scanRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]bool{"match": detect.QuickCheck(req.Text)})
}

// handleRedact scans the text and returns a sanitized copy. The raw
// findings never leave this handler.
func (s *Server) handleRedact(w http.ResponseWriter, r *http.Request) {
	cfg := s.currentConfig()

	var req redactRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	style := cfg.Detection.Style()
	switch req.Style {
	case "partial":
		style = detect.RedactionPartial
	case "labeled":
		style = detect.RedactionLabeled
	}

	opts := s.resolveOptions(nil)
	result := detect.Scan(req.Text, opts)
	applyAllowlist(result, opts.Allowlist)
	atomic.AddInt64(&s.totalScans, 1)
	if result.HasSensitiveData {
		atomic.AddInt64(&s.totalDetections, 1)
	}

	s.writeJSON(w, http.StatusOK, redactResponse{
		Redacted: detect.RedactStyled(req.Text, result.Findings, style),
		Total:    result.Summary.Total,
		Summary:  result.Summary,
	})
}

// handleDetectors lists the detector catalog.
func (s *Server) handleDetectors(w http.ResponseWriter, r *http.Request) {
	types := detect.AllDetectorTypes()
	catalog := make([]detectorInfo, 0, len(types))
	for _, t := range types {
		catalog = append(catalog, detectorInfo{Type: t, Label: t.Label()})
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"total":     len(catalog),
		"detectors": catalog,
	})
}

// handleHealth is the liveness endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleInfo reports service configuration and counters.
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	cfg := s.currentConfig()

	info := map[string]interface{}{
		"service":          "egressguard",
		"uptime":           time.Since(s.startedAt).Round(time.Second).String(),
		"total_scans":      s.scanCount(),
		"total_detections": s.detectionCount(),
		"sensitivity":      cfg.Detection.Sensitivity,
		"detectors":        cfg.Detection.Detectors,
		"monitors":         s.wsHub.ClientCount(),
	}
	if s.cache != nil {
		info["cache"] = s.cache.Stats()
	}

	s.writeJSON(w, http.StatusOK, info)
}

// resolveOptions merges caller options with the configured defaults.
// Caller options win field-by-field; the configured domain filter and
// allowlist always apply.
func (s *Server) resolveOptions(reqOpts *detect.ScanOptions) *detect.ScanOptions {
	cfg := s.currentConfig()
	opts := cfg.Detection.ScanOptions()
	if reqOpts == nil {
		return opts
	}

	merged := *reqOpts
	if merged.SensitivityLevel == "" {
		merged.SensitivityLevel = opts.SensitivityLevel
	}
	if len(merged.EnabledDetectors) == 0 {
		merged.EnabledDetectors = opts.EnabledDetectors
	}
	if merged.MaxResults <= 0 {
		merged.MaxResults = opts.MaxResults
	}
	if merged.IncludeContext == nil {
		merged.IncludeContext = opts.IncludeContext
	}
	if merged.ContextSize <= 0 {
		merged.ContextSize = opts.ContextSize
	}
	if merged.MinConfidence <= 0 {
		merged.MinConfidence = opts.MinConfidence
	}
	merged.FilterDomains = append(merged.FilterDomains, opts.FilterDomains...)
	merged.Allowlist = append(merged.Allowlist, opts.Allowlist...)

	return &merged
}

// applyAllowlist drops findings whose exact raw value the operator or
// caller has allowlisted, then rebuilds the summary.
func applyAllowlist(result *detect.DetectionResult, allowlist []string) {
	if len(allowlist) == 0 || len(result.Findings) == 0 {
		return
	}

	allowed := make(map[string]bool, len(allowlist))
	for _, v := range allowlist {
		allowed[v] = true
	}

	kept := result.Findings[:0]
	for _, f := range result.Findings {
		if !allowed[f.Value] {
			kept = append(kept, f)
		}
	}

	result.Findings = kept
	result.HasSensitiveData = len(kept) > 0
	result.Summary = detect.Summarize(kept)
}

// broadcastDetection pushes a masked summary of the scan to monitors.
func (s *Server) broadcastDetection(r *http.Request, result *detect.DetectionResult, style detect.RedactionStyle) {
	const maxSamples = 5

	samples := make([]websocket.FindingSample, 0, maxSamples)
	for _, f := range result.Findings {
		if len(samples) == maxSamples {
			break
		}
		samples = append(samples, websocket.FindingSample{
			Type:       f.Type,
			Label:      f.Type.Label(),
			Confidence: f.Confidence,
			Masked:     detect.MaskStyled(f.Value, f.Type, style),
		})
	}

	s.wsHub.BroadcastEvent(websocket.Event{
		Type:      websocket.EventTypeDetection,
		Timestamp: time.Now(),
		RequestID: getRequestID(r.Context()),
		Data: websocket.DetectionEvent{
			RequestID:         getRequestID(r.Context()),
			ClientIP:          clientIP(r),
			TextLength:        result.TextLength,
			TotalFindings:     result.Summary.Total,
			ByType:            result.Summary.ByType,
			HighestConfidence: result.Summary.HighestConfidence,
			Samples:           samples,
			ScanTimeMS:        result.ScanTime,
		},
	})
}

// decodeBody reads and decodes a JSON request body, enforcing the
// configured size cap. It writes the error response itself.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	cfg := s.currentConfig()
	body := http.MaxBytesReader(w, r.Body, cfg.Server.MaxBodyBytes)
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		http.Error(w, "request body too large or unreadable", http.StatusRequestEntityTooLarge)
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		http.Error(w, "invalid JSON body", http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (s *Server) scanCount() int64 {
	return atomic.LoadInt64(&s.totalScans)
}

func (s *Server) detectionCount() int64 {
	return atomic.LoadInt64(&s.totalDetections)
}

// getRequestID extracts the request ID placed by the logging middleware.
func getRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return "unknown"
}
