// Package dispatch models the external LLM orchestrator that maps free-text
// utterances to capabilities. The decision logic is non-deterministic and
// lives outside this service; only the capability interface is defined here.
package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/lungsight/apiserver/internal/session"
)

// Capability names one of the routable components.
type Capability string

const (
	CapabilityAuth   Capability = "auth"
	CapabilityCXR    Capability = "cxr"
	CapabilitySearch Capability = "search"
	CapabilityReport Capability = "report"
)

// Valid reports whether the capability is one of the known components.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityAuth, CapabilityCXR, CapabilitySearch, CapabilityReport:
		return true
	}
	return false
}

// Dispatcher decides which capability should handle an utterance, given the
// conversation's authentication snapshot.
type Dispatcher interface {
	Route(ctx context.Context, status session.Status, utterance string) (Capability, error)
}

const defaultRequestTimeout = 30 * time.Second

// HTTPDispatcher forwards routing decisions to the external orchestrator
// endpoint.
type HTTPDispatcher struct {
	url    string
	client *http.Client
}

func NewHTTPDispatcher(url string) (*HTTPDispatcher, error) {
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("dispatcher url is required")
	}
	return &HTTPDispatcher{
		url:    url,
		client: &http.Client{Timeout: defaultRequestTimeout},
	}, nil
}

type routeRequest struct {
	LoggedIn  bool   `json:"logged_in"`
	UUID      string `json:"uuid,omitempty"`
	Utterance string `json:"utterance"`
}

type routeResponse struct {
	Capability Capability `json:"capability"`
}

// Route posts the session snapshot and utterance to the orchestrator and
// validates the returned capability name.
func (d *HTTPDispatcher) Route(ctx context.Context, status session.Status, utterance string) (Capability, error) {
	body, err := json.Marshal(routeRequest{
		LoggedIn:  status.LoggedIn,
		UUID:      status.UUID,
		Utterance: utterance,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("dispatcher returned status %d", resp.StatusCode)
	}

	var decoded routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", err
	}
	if !decoded.Capability.Valid() {
		return "", fmt.Errorf("dispatcher returned unknown capability %q", decoded.Capability)
	}
	return decoded.Capability, nil
}
