package dispatch

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lungsight/apiserver/internal/session"
	"github.com/stretchr/testify/require"
)

func TestCapabilityValid(t *testing.T) {
	for _, c := range []Capability{CapabilityAuth, CapabilityCXR, CapabilitySearch, CapabilityReport} {
		require.True(t, c.Valid())
	}
	require.False(t, Capability("").Valid())
	require.False(t, Capability("weather").Valid())
}

func TestHTTPDispatcherRoute(t *testing.T) {
	var received routeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		_ = json.NewEncoder(w).Encode(routeResponse{Capability: CapabilityCXR})
	}))
	defer srv.Close()

	d, err := NewHTTPDispatcher(srv.URL)
	require.NoError(t, err)

	capability, err := d.Route(context.Background(), session.Status{LoggedIn: true, UUID: "uuid-alice"}, "classify image 1")
	require.NoError(t, err)
	require.Equal(t, CapabilityCXR, capability)

	require.True(t, received.LoggedIn)
	require.Equal(t, "uuid-alice", received.UUID)
	require.Equal(t, "classify image 1", received.Utterance)
}

func TestHTTPDispatcherRejectsBadResponses(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"non_200", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"unknown_capability", func(w http.ResponseWriter, r *http.Request) {
			_ = json.NewEncoder(w).Encode(routeResponse{Capability: "weather"})
		}},
		{"not_json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("nope"))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			d, err := NewHTTPDispatcher(srv.URL)
			require.NoError(t, err)

			_, err = d.Route(context.Background(), session.Status{}, "hello")
			require.Error(t, err)
		})
	}
}

func TestNewHTTPDispatcherRequiresURL(t *testing.T) {
	_, err := NewHTTPDispatcher("  ")
	require.Error(t, err)
}
