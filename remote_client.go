package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/example/epidemic_sim/visual"
)

// RemoteClient talks to the external simulation service. The service is an
// opaque collaborator: its responses are authoritative for the run when the
// remote driver is active.
type RemoteClient struct {
	base string
	http *http.Client
}

// NewRemoteClient creates a client for the service rooted at base
// (e.g. "http://127.0.0.1:5000/api").
func NewRemoteClient(base string) *RemoteClient {
	return &RemoteClient{
		base: strings.TrimRight(base, "/"),
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// StepPayload is the per-step response shape shared by start and step.
// Either Nodes (full shape, state+position) or NodeStates (legacy shape,
// state only) is populated.
type StepPayload struct {
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`

	Step int `json:"step"`
	Day  int `json:"day"`

	Nodes      []NodeSnapshot    `json:"nodes,omitempty"`
	NodeStates map[string]string `json:"node_states,omitempty"`

	Healthy     int `json:"healthy"`
	Infected    int `json:"infected"`
	Recovered   int `json:"recovered"`
	Quarantined int `json:"quarantined"`
	Deceased    int `json:"deceased"`
}

// LegacyStates converts the legacy node_states object, whose JSON keys are
// stringified identities, into an id-keyed map.
func (p *StepPayload) LegacyStates() map[int]string {
	if len(p.NodeStates) == 0 {
		return nil
	}
	out := make(map[int]string, len(p.NodeStates))
	for k, v := range p.NodeStates {
		id, err := strconv.Atoi(k)
		if err != nil {
			continue
		}
		out[id] = v
	}
	return out
}

// Probe checks reachability; any success response marks the service
// connected.
func (c *RemoteClient) Probe() bool {
	resp, err := c.http.Get(c.base + "/status")
	if err != nil {
		return false
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// FetchNetwork retrieves the service's topology.
func (c *RemoteClient) FetchNetwork() (*NetworkPayload, error) {
	var payload NetworkPayload
	if err := c.getJSON("/network", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Start forwards the run parameters and returns the authoritative initial
// state.
func (c *RemoteClient) Start(params visual.StartParams) (*StepPayload, error) {
	var payload StepPayload
	if err := c.postJSON("/simulation/start", params, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Step advances the remote simulation by one step.
func (c *RemoteClient) Step() (*StepPayload, error) {
	var payload StepPayload
	if err := c.getJSON("/simulation/step", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Stop halts the remote simulation; the acknowledgement body is ignored.
func (c *RemoteClient) Stop() error {
	return c.postJSON("/simulation/stop", nil, nil)
}

// Reset returns the remote simulation to its initial state.
func (c *RemoteClient) Reset() error {
	return c.postJSON("/simulation/reset", nil, nil)
}

// Intervene forwards an intervention; fire-and-forget, no response contract.
func (c *RemoteClient) Intervene(params visual.InterventionParams) error {
	return c.postJSON("/simulation/intervention", params, nil)
}

func (c *RemoteClient) getJSON(path string, dst any) error {
	resp, err := c.http.Get(c.base + path)
	if err != nil {
		return fmt.Errorf("GET %s: %w", path, err)
	}
	defer resp.Body.Close()
	return decodeResponse(path, resp, dst)
}

func (c *RemoteClient) postJSON(path string, body, dst any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", path, err)
		}
		reader = bytes.NewReader(data)
	}
	resp, err := c.http.Post(c.base+path, "application/json", reader)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()
	return decodeResponse(path, resp, dst)
}

func decodeResponse(path string, resp *http.Response, dst any) error {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%s: unexpected status %d", path, resp.StatusCode)
	}
	if dst == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
