package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"waystation/internal/models"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(Config{BaseURL: srv.URL + "/", DefaultHeaders: map[string]string{"X-Tenant": "buyer-1"}})
	require.NoError(t, err)
	return c, srv
}

func TestNewRequiresValidBaseURL(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
	_, err = New(Config{BaseURL: "localhost"})
	assert.Error(t, err)

	c, err := New(Config{BaseURL: "http://localhost:8000//"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8000", c.BaseURL())
}

func TestGetSendsHeadersAndQuery(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/rfqs", r.URL.Path)
		assert.Equal(t, "a b", r.URL.Query().Get("q"))
		assert.Equal(t, "1", r.URL.Query().Get("page"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.Equal(t, "buyer-1", r.Header.Get("X-Tenant"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.Empty(t, r.Header.Get("Content-Type"))
		w.Write([]byte(`[]`))
	})

	var out []models.RFQ
	err := c.Get(context.Background(), "/api/rfqs", map[string]string{"q": "a b", "page": "1"}, &out)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestPostEncodesJSONBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["raw_text"])
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"q1","price_per_pound":2.5,"certifications":[],"supplier":{"company_name":"X"}}`))
	})

	q, err := c.ProcessEmail(context.Background(), models.EmailSubmission{RFQID: "r1", RawText: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "q1", q.ID)
	assert.Equal(t, models.Present(2.5), q.PricePerPound)
}

func TestNoContentLeavesOutputUntouched(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	out := map[string]string{"kept": "yes"}
	require.NoError(t, c.Delete(context.Background(), "/api/x", nil, &out))
	assert.Equal(t, "yes", out["kept"])
}

func TestErrorMessageTakenFromDetail(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail":"RFQ not found"}`))
	})

	_, err := c.ListQuotesForRFQ(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "RFQ not found", err.Error())
	assert.Equal(t, KindApplication, KindOf(err))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.Status)
}

func TestErrorMessageFallbacks(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"empty body", ``, "Request failed with status 502"},
		{"not json", `<html>bad gateway</html>`, "Request failed with status 502"},
		{"empty detail", `{"detail":""}`, "Request failed with status 502"},
		{"error key", `{"error":"title required"}`, "title required"},
		{"validation list", `{"detail":[{"msg":"field required"},{"msg":"value is not a valid email address"}]}`, "field required; value is not a valid email address"},
		{"validation list with locations", `{"detail":[{"loc":["body","item"],"msg":"is required"},{"loc":["body","certifications",1],"msg":"is blank"}]}`, "item: is required; 1: is blank"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				io.WriteString(w, tc.body)
			})
			_, err := c.ListSuppliers(context.Background())
			require.Error(t, err)
			assert.Equal(t, tc.want, err.Error())
		})
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()
	c, err := New(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.ListRFQs(context.Background())
	require.Error(t, err)
	assert.Equal(t, KindTransport, KindOf(err))
	assert.ErrorIs(t, err, ErrTransport)
}

func TestMalformedResponseIsTransportFailure(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"a list"`))
	})
	_, err := c.ListQuotes(context.Background())
	assert.Equal(t, KindTransport, KindOf(err))
}

func TestPreconditionsIssueNoRequest(t *testing.T) {
	hits := 0
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) { hits++ })
	ctx := context.Background()

	_, err := c.ProcessEmail(ctx, models.EmailSubmission{RFQID: "r1", RawText: "   "})
	assert.Equal(t, KindPrecondition, KindOf(err))
	assert.Equal(t, "RFQ ID and email text are required.", err.Error())

	_, err = c.ListQuotesForRFQ(ctx, "")
	assert.Equal(t, KindPrecondition, KindOf(err))

	_, err = c.GenerateClarificationEmail(ctx, "")
	assert.Equal(t, "Quote ID is required.", err.Error())

	_, err = c.CreateRFQ(ctx, models.RFQCreatePayload{Item: "Oats", DueDate: models.Present("next week")})
	assert.Equal(t, KindPrecondition, KindOf(err))
	assert.Contains(t, err.Error(), "due_date")

	assert.Equal(t, 0, hits)
}

func TestEndpointsPaths(t *testing.T) {
	var seen []string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Method+" "+r.URL.EscapedPath())
		switch {
		case strings.HasSuffix(r.URL.Path, "generate-clarification-email"):
			w.Write([]byte(`{"email_text":"Dear Jane"}`))
		case r.Method == http.MethodPost:
			w.Write([]byte(`{"id":"r9","item":"Oats","required_certifications":[{"id":"c","name":"Organic"}]}`))
		default:
			w.Write([]byte(`[]`))
		}
	})
	ctx := context.Background()

	_, err := c.ListRFQs(ctx)
	require.NoError(t, err)
	rfq, err := c.CreateRFQ(ctx, models.RFQCreatePayload{Item: "Oats", RequiredCertifications: []string{"Organic"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Organic"}, rfq.RequiredCertificationNames())
	_, err = c.ListQuotesForRFQ(ctx, "r/9")
	require.NoError(t, err)
	_, err = c.ListQuotes(ctx)
	require.NoError(t, err)
	email, err := c.GenerateClarificationEmail(ctx, "q1")
	require.NoError(t, err)
	assert.Equal(t, "Dear Jane", email.EmailText)
	_, err = c.ListSuppliers(ctx)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"GET /api/rfqs",
		"POST /api/rfqs",
		"GET /api/rfqs/r%2F9/quotes",
		"GET /api/quotes",
		"POST /api/quotes/q1/generate-clarification-email",
		"GET /api/suppliers",
	}, seen)
}

func TestRateLimiterHonoursContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()
	c, err := New(Config{BaseURL: srv.URL, RateLimit: 0.001, Burst: 1})
	require.NoError(t, err)

	_, err = c.ListRFQs(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.ListRFQs(ctx)
	assert.Equal(t, KindTransport, KindOf(err))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "precondition_violation", KindPrecondition.String())
	assert.Equal(t, "transport_failure", KindTransport.String())
	assert.Equal(t, "application_error", KindApplication.String())
	assert.Equal(t, "unknown", KindOf(errors.New("x")).String())
	assert.Equal(t, KindUnknown, KindOf(nil))
}
