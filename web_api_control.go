package main

import (
	"encoding/json"
	"net/http"

	"github.com/example/epidemic_sim/epidemic"
	"github.com/example/epidemic_sim/visual"
)

func (ws *WebServer) handleStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	params := &visual.StartParams{}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(params); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
	}

	rates := epidemic.Rates{
		Infection:  params.InfectionRate,
		Recovery:   params.RecoveryRate,
		Death:      params.DeathRate,
		Quarantine: params.QuarantineRate,
	}
	if err := rates.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if params.InitialInfected < 0 {
		http.Error(w, "initial_infected must be non-negative", http.StatusBadRequest)
		return
	}

	ws.acceptCommand(w, visual.ControlCommand{Type: visual.CommandStart, Start: params})
}

func (ws *WebServer) handleStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ws.acceptCommand(w, visual.ControlCommand{Type: visual.CommandStop})
}

func (ws *WebServer) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ws.acceptCommand(w, visual.ControlCommand{Type: visual.CommandReset})
}

func (ws *WebServer) handleIntervention(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var params visual.InterventionParams
	if err := json.NewDecoder(r.Body).Decode(&params); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if params.Type == "" {
		http.Error(w, "intervention type required", http.StatusBadRequest)
		return
	}

	ws.acceptCommand(w, visual.ControlCommand{Type: visual.CommandIntervention, Intervention: &params})
}

// acceptCommand queues cmd for the run loop, answering 202 on success. A
// full queue reports 503 rather than blocking a handler goroutine.
func (ws *WebServer) acceptCommand(w http.ResponseWriter, cmd visual.ControlCommand) {
	if !ws.queueCommand(cmd) {
		http.Error(w, "Command queue full", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}
