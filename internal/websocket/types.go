package websocket

import (
	"time"

	"github.com/egressguard/egressguard/internal/detect"
)

// EventType represents the type of event pushed to monitoring clients.
type EventType string

const (
	// EventTypeDetection is emitted after a scan that found sensitive data
	EventTypeDetection EventType = "detection"
	// EventTypeSystemStatus carries periodic service health information
	EventTypeSystemStatus EventType = "system_status"
	// EventTypeConnection signals monitor connects and disconnects
	EventTypeConnection EventType = "connection"
)

// Event is the envelope written to every subscribed client.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
	RequestID string      `json:"request_id,omitempty"`
}

// FindingSample is the broadcast-safe view of one finding: the display
// value is already masked and the raw value never enters an event.
type FindingSample struct {
	Type       detect.DetectorType `json:"type"`
	Label      string              `json:"label"`
	Confidence float64             `json:"confidence"`
	Masked     string              `json:"masked"`
}

// DetectionEvent summarizes one scan with sensitive findings.
type DetectionEvent struct {
	RequestID         string                      `json:"request_id"`
	ClientIP          string                      `json:"client_ip"`
	TextLength        int                         `json:"text_length"`
	TotalFindings     int                         `json:"total_findings"`
	ByType            map[detect.DetectorType]int `json:"by_type"`
	HighestConfidence float64                     `json:"highest_confidence"`
	Samples           []FindingSample             `json:"samples,omitempty"`
	ScanTimeMS        float64                     `json:"scan_time_ms"`
}

// SystemStatusEvent carries service-level counters.
type SystemStatusEvent struct {
	Status           string `json:"status"`
	Uptime           string `json:"uptime"`
	TotalScans       int64  `json:"total_scans"`
	TotalDetections  int64  `json:"total_detections"`
	ConnectedClients int    `json:"connected_clients"`
}

// ConnectionEvent signals monitor lifecycle changes.
type ConnectionEvent struct {
	Action   string `json:"action"` // "connected" or "disconnected"
	ClientID string `json:"client_id"`
	ClientIP string `json:"client_ip"`
}
