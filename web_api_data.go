package main

import (
	"encoding/json"
	"net/http"
)

func (ws *WebServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := map[string]any{
		"status":  "ok",
		"running": false,
		"step":    0,
		"day":     0,
		"driver":  DriverLocal,
	}
	if frame := ws.Frame(); frame != nil {
		status["running"] = frame.Running
		status["step"] = frame.Step
		status["day"] = frame.Day
		status["driver"] = frame.Driver
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(status); err != nil {
		http.Error(w, "Failed to encode status", http.StatusInternalServerError)
	}
}

func (ws *WebServer) handleNetwork(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	frame := ws.Frame()
	if frame == nil {
		http.Error(w, "No network available", http.StatusNotFound)
		return
	}

	payload := NetworkPayload{
		Nodes:      frame.Nodes,
		Edges:      frame.Edges,
		TotalNodes: len(frame.Nodes),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "Failed to encode network", http.StatusInternalServerError)
	}
}

// handleStep serves the state advanced most recently by the run loop. The
// loop owns the cadence; polling this endpoint never forces a step.
func (ws *WebServer) handleStep(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	frame := ws.Frame()
	if frame == nil {
		http.Error(w, "No simulation state available", http.StatusNotFound)
		return
	}

	payload := StepPayload{
		Status:      "ok",
		Step:        frame.Step,
		Day:         frame.Day,
		Nodes:       frame.Nodes,
		Healthy:     frame.Counts.Healthy,
		Infected:    frame.Counts.Infected,
		Recovered:   frame.Counts.Recovered,
		Quarantined: frame.Counts.Quarantined,
		Deceased:    frame.Counts.Deceased,
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, "Failed to encode step", http.StatusInternalServerError)
	}
}

func (ws *WebServer) handleFrame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	frame := ws.Frame()
	if frame == nil {
		http.Error(w, "No frame available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(frame); err != nil {
		http.Error(w, "Failed to encode frame", http.StatusInternalServerError)
	}
}

func (ws *WebServer) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	points := ws.window.Points()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(points); err != nil {
		http.Error(w, "Failed to encode telemetry", http.StatusInternalServerError)
	}
}

func (ws *WebServer) handleConfigs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	configs := GetPredefinedConfigs()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(configs); err != nil {
		http.Error(w, "Failed to encode configs", http.StatusInternalServerError)
	}
}
