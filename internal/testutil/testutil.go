package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"waystation/internal/apiclient"
	"waystation/internal/devserver"
	"waystation/internal/models"
	"waystation/internal/websocket"
)

// Sandbox is an in-memory sandbox backend served over HTTP, with a client
// pointed at it.
type Sandbox struct {
	Store  *devserver.Store
	Hub    *websocket.Hub
	Server *httptest.Server
	Client *apiclient.Client
}

// NewSandbox starts a sandbox backend for the duration of the test. With
// seed set it is loaded with the standard sample data.
func NewSandbox(t *testing.T, seed bool) *Sandbox {
	t.Helper()
	store, err := devserver.Open(":memory:")
	if err != nil {
		t.Fatalf("Failed to open sandbox store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	if seed {
		if err := store.Seed(context.Background()); err != nil {
			t.Fatalf("Failed to seed sandbox: %v", err)
		}
	}

	hub := websocket.NewHub()
	srv := httptest.NewServer(devserver.New(store, hub).Handler(0))
	t.Cleanup(srv.Close)

	client, err := apiclient.New(apiclient.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("Failed to build client: %v", err)
	}
	return &Sandbox{Store: store, Hub: hub, Server: srv, Client: client}
}

// RFQByItem returns the stored RFQ with the given item name.
func (s *Sandbox) RFQByItem(t *testing.T, item string) models.RFQ {
	t.Helper()
	rfqs, err := s.Store.ListRFQs(context.Background())
	if err != nil {
		t.Fatalf("Failed to list RFQs: %v", err)
	}
	for _, r := range rfqs {
		if r.Item == item {
			return r
		}
	}
	t.Fatalf("No RFQ for item %q", item)
	return models.RFQ{}
}

// JSONRequest builds a request with body encoded as JSON.
func JSONRequest(method, path string, body any) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// Serve runs req through the sandbox handler stack without a network hop.
func (s *Sandbox) Serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.Server.Config.Handler.ServeHTTP(w, req)
	return w
}

// AssertStatus checks that the HTTP status code matches expected.
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// DecodeDetail returns the "detail" message of an error response.
func DecodeDetail(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	return body.Detail
}
