package websocket

import (
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestShouldBroadcast(t *testing.T) {
	hub := NewHub(&HubConfig{
		BroadcastDetections: true,
		BroadcastSystem:     false,
		BroadcastConnects:   false,
	}, zap.NewNop())

	if !hub.shouldBroadcast(EventTypeDetection) {
		t.Error("expected detection events to be broadcast")
	}
	if hub.shouldBroadcast(EventTypeSystemStatus) {
		t.Error("expected system events to be suppressed")
	}
	if hub.shouldBroadcast(EventType("bogus")) {
		t.Error("expected unknown event types to be suppressed")
	}
}

func TestUpdateConfig(t *testing.T) {
	hub := NewHub(&HubConfig{BroadcastDetections: false}, zap.NewNop())

	hub.BroadcastEvent(Event{Type: EventTypeDetection, Timestamp: time.Now()})
	if len(hub.broadcast) != 0 {
		t.Fatal("expected suppressed event to be dropped before queueing")
	}

	hub.UpdateConfig(&HubConfig{BroadcastDetections: true})

	hub.BroadcastEvent(Event{Type: EventTypeDetection, Timestamp: time.Now()})
	if len(hub.broadcast) != 1 {
		t.Error("expected the event to be queued after the switch was enabled")
	}
}

func TestCheckOrigin(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"wildcard", []string{"*"}, "https://evil.example", true},
		{"exact match", []string{"https://ops.internal"}, "https://ops.internal", true},
		{"case insensitive", []string{"https://ops.internal"}, "https://OPS.internal", true},
		{"no match", []string{"https://ops.internal"}, "https://evil.example", false},
		{"no origin header", []string{"https://ops.internal"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := NewHub(&HubConfig{AllowedOrigins: tt.allowed}, zap.NewNop())
			r := httptest.NewRequest("GET", "/ws", nil)
			if tt.origin != "" {
				r.Header.Set("Origin", tt.origin)
			}
			if got := hub.checkOrigin(r); got != tt.want {
				t.Errorf("checkOrigin(%q) = %v, want %v", tt.origin, got, tt.want)
			}
		})
	}
}
