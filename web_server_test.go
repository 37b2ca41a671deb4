package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/epidemic_sim/epidemic"
	"github.com/example/epidemic_sim/telemetry"
	"github.com/example/epidemic_sim/visual"
)

func newTestServer() *WebServer {
	return NewWebServer("127.0.0.1:0", telemetry.NewWindow(0))
}

func testFrame() *SimulationFrame {
	return &SimulationFrame{
		Counts:  epidemic.Counts{Healthy: 3, Infected: 1},
		Step:    9,
		Day:     2,
		Running: true,
		Driver:  DriverLocal,
		Nodes: []NodeSnapshot{
			{ID: 0, X: 0.1, Y: 0.2, State: "healthy"},
			{ID: 1, X: 0.3, Y: 0.4, State: "infected"},
		},
		Edges: []EdgeSnapshot{{Source: 0, Target: 1}},
	}
}

func TestWebServer_FrameEndpoint(t *testing.T) {
	server := newTestServer()

	// No frame published yet.
	req := httptest.NewRequest("GET", "/api/frame", nil)
	w := httptest.NewRecorder()
	server.handleFrame(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for empty frame, got %d", w.Code)
	}

	server.UpdateFrame(testFrame())

	req = httptest.NewRequest("GET", "/api/frame", nil)
	w = httptest.NewRecorder()
	server.handleFrame(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}

	var result SimulationFrame
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if result.Step != 9 {
		t.Errorf("Expected step 9, got %d", result.Step)
	}
	if len(result.Nodes) != 2 {
		t.Errorf("Expected 2 nodes, got %d", len(result.Nodes))
	}

	// Wrong method.
	req = httptest.NewRequest("POST", "/api/frame", nil)
	w = httptest.NewRecorder()
	server.handleFrame(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", w.Code)
	}
}

func TestWebServer_StatusEndpoint(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest("GET", "/api/status", nil)
	w := httptest.NewRecorder()
	server.handleStatus(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 before any frame, got %d", w.Code)
	}

	var status map[string]any
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode status: %v", err)
	}
	if status["status"] != "ok" {
		t.Errorf("Expected status ok, got %v", status["status"])
	}
	if status["running"] != false {
		t.Errorf("Expected running false, got %v", status["running"])
	}

	server.UpdateFrame(testFrame())

	req = httptest.NewRequest("GET", "/api/status", nil)
	w = httptest.NewRecorder()
	server.handleStatus(w, req)
	if err := json.NewDecoder(w.Body).Decode(&status); err != nil {
		t.Fatalf("Failed to decode status: %v", err)
	}
	if status["running"] != true {
		t.Errorf("Expected running true, got %v", status["running"])
	}
	if status["step"] != float64(9) {
		t.Errorf("Expected step 9, got %v", status["step"])
	}
}

func TestWebServer_NetworkEndpoint(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest("GET", "/api/network", nil)
	w := httptest.NewRecorder()
	server.handleNetwork(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404 before any frame, got %d", w.Code)
	}

	server.UpdateFrame(testFrame())

	req = httptest.NewRequest("GET", "/api/network", nil)
	w = httptest.NewRecorder()
	server.handleNetwork(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var payload NetworkPayload
	if err := json.NewDecoder(w.Body).Decode(&payload); err != nil {
		t.Fatalf("Failed to decode network: %v", err)
	}
	if payload.TotalNodes != 2 || len(payload.Nodes) != 2 || len(payload.Edges) != 1 {
		t.Errorf("Unexpected network payload %+v", payload)
	}
}

func TestWebServer_StepEndpoint(t *testing.T) {
	server := newTestServer()
	server.UpdateFrame(testFrame())

	req := httptest.NewRequest("GET", "/api/simulation/step", nil)
	w := httptest.NewRecorder()
	server.handleStep(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var payload StepPayload
	if err := json.NewDecoder(w.Body).Decode(&payload); err != nil {
		t.Fatalf("Failed to decode step payload: %v", err)
	}
	if payload.Step != 9 || payload.Day != 2 {
		t.Errorf("Expected step 9 day 2, got %d/%d", payload.Step, payload.Day)
	}
	if payload.Healthy != 3 || payload.Infected != 1 {
		t.Errorf("Unexpected counts in payload %+v", payload)
	}
	if len(payload.Nodes) != 2 {
		t.Errorf("Expected full node shape, got %d nodes", len(payload.Nodes))
	}
}

func TestWebServer_StartEndpoint(t *testing.T) {
	server := newTestServer()

	body := `{"infectionRate":0.4,"recoveryRate":0.1,"deathRate":0.02,"quarantineRate":0.3,"initialInfected":7}`
	req := httptest.NewRequest("POST", "/api/simulation/start", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	server.handleStart(w, req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", w.Code)
	}

	cmd, ok := server.NextCommand()
	if !ok {
		t.Fatal("Expected command, got none")
	}
	if cmd.Type != visual.CommandStart {
		t.Errorf("Expected start command, got %s", cmd.Type)
	}
	if cmd.Start == nil || cmd.Start.InfectionRate != 0.4 || cmd.Start.InitialInfected != 7 {
		t.Errorf("Unexpected start params %+v", cmd.Start)
	}

	// Out-of-range rate is rejected before queuing.
	body = `{"infectionRate":1.5}`
	req = httptest.NewRequest("POST", "/api/simulation/start", bytes.NewBufferString(body))
	w = httptest.NewRecorder()
	server.handleStart(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for invalid rate, got %d", w.Code)
	}
	if _, ok := server.NextCommand(); ok {
		t.Error("Rejected request must not queue a command")
	}

	// Wrong method.
	req = httptest.NewRequest("GET", "/api/simulation/start", nil)
	w = httptest.NewRecorder()
	server.handleStart(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", w.Code)
	}
}

func TestWebServer_StopResetEndpoints(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest("POST", "/api/simulation/stop", nil)
	w := httptest.NewRecorder()
	server.handleStop(w, req)
	if w.Code != http.StatusAccepted {
		t.Errorf("Expected 202, got %d", w.Code)
	}
	if cmd, ok := server.NextCommand(); !ok || cmd.Type != visual.CommandStop {
		t.Errorf("Expected stop command, got %+v", cmd)
	}

	req = httptest.NewRequest("POST", "/api/simulation/reset", nil)
	w = httptest.NewRecorder()
	server.handleReset(w, req)
	if w.Code != http.StatusAccepted {
		t.Errorf("Expected 202, got %d", w.Code)
	}
	if cmd, ok := server.NextCommand(); !ok || cmd.Type != visual.CommandReset {
		t.Errorf("Expected reset command, got %+v", cmd)
	}
}

func TestWebServer_InterventionEndpoint(t *testing.T) {
	server := newTestServer()

	body := `{"type":"social_distancing","strength":0.5}`
	req := httptest.NewRequest("POST", "/api/simulation/intervention", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	server.handleIntervention(w, req)
	if w.Code != http.StatusAccepted {
		t.Fatalf("Expected 202, got %d", w.Code)
	}

	cmd, ok := server.NextCommand()
	if !ok || cmd.Type != visual.CommandIntervention {
		t.Fatalf("Expected intervention command, got %+v", cmd)
	}
	if cmd.Intervention.Type != "social_distancing" || cmd.Intervention.Strength != 0.5 {
		t.Errorf("Unexpected intervention params %+v", cmd.Intervention)
	}

	// Missing type is rejected.
	req = httptest.NewRequest("POST", "/api/simulation/intervention", bytes.NewBufferString(`{"strength":1}`))
	w = httptest.NewRecorder()
	server.handleIntervention(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for missing type, got %d", w.Code)
	}
}

func TestWebServer_TelemetryEndpoint(t *testing.T) {
	window := telemetry.NewWindow(10)
	window.Record(0, epidemic.Counts{Healthy: 5})
	window.Record(1, epidemic.Counts{Healthy: 4, Infected: 1})
	server := NewWebServer("127.0.0.1:0", window)

	req := httptest.NewRequest("GET", "/api/telemetry", nil)
	w := httptest.NewRecorder()
	server.handleTelemetry(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var points []telemetry.Point
	if err := json.NewDecoder(w.Body).Decode(&points); err != nil {
		t.Fatalf("Failed to decode telemetry: %v", err)
	}
	if len(points) != 2 || points[1].Counts.Infected != 1 {
		t.Errorf("Unexpected telemetry %+v", points)
	}
}

func TestWebServer_ConfigsEndpoint(t *testing.T) {
	server := newTestServer()

	req := httptest.NewRequest("GET", "/api/configs", nil)
	w := httptest.NewRecorder()
	server.handleConfigs(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", w.Code)
	}

	var configs []ScenarioConfig
	if err := json.NewDecoder(w.Body).Decode(&configs); err != nil {
		t.Fatalf("Failed to decode configs: %v", err)
	}
	if len(configs) == 0 {
		t.Fatal("Expected at least one predefined scenario")
	}
	found := false
	for _, sc := range configs {
		if sc.Name == "baseline" {
			found = true
		}
	}
	if !found {
		t.Error("Expected baseline scenario in list")
	}
}

func TestWebServer_NextCommand_NonBlocking(t *testing.T) {
	server := newTestServer()

	cmd, ok := server.NextCommand()
	if ok {
		t.Errorf("Expected no command, got %v", cmd)
	}
	if cmd.Type != visual.CommandNone {
		t.Errorf("Expected CommandNone, got %s", cmd.Type)
	}

	req := httptest.NewRequest("POST", "/api/simulation/stop", nil)
	w := httptest.NewRecorder()
	server.handleStop(w, req)

	cmd, ok = server.NextCommand()
	if !ok || cmd.Type != visual.CommandStop {
		t.Errorf("Expected queued stop command, got %+v", cmd)
	}
}
