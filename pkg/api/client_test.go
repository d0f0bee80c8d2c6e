package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/prianik/storefront/pkg/config"
	"github.com/prianik/storefront/pkg/metrics"
	"github.com/prianik/storefront/pkg/types"
)

// fakeBackend records the last request seen by a chi-routed stub of the
// storefront backend.
type fakeBackend struct {
	server      *httptest.Server
	lastPath    string
	lastQuery   url.Values
	lastHeader  http.Header
	lastBody    []byte
	orderStatus int
	orderReply  string
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	fb := &fakeBackend{orderStatus: http.StatusOK}
	router := chi.NewRouter()
	router.Use(fb.capture)

	router.Get("/categories", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":[{"id":1,"name":"Cookies","subcategories":[]}]}`)
	})
	router.Get("/products", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"items":[],"total_items":0}}`)
	})
	router.Get("/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"id":7,"name":"Gingerbread","price":12.5,"currency":"USD","category_id":1,"images":[]}}`)
	})
	router.Get("/products/{id}/related", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":[]}`)
	})
	router.Get("/gallery", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":[]}`)
	})
	router.Post("/contact", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true,"data":{"message":"sent"}}`)
	})
	router.Post("/orders", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, fb.orderStatus, fb.orderReplyBody())
	})

	fb.server = httptest.NewServer(router)
	t.Cleanup(fb.server.Close)
	return fb
}

func (fb *fakeBackend) capture(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fb.lastPath = r.URL.Path
		fb.lastQuery = r.URL.Query()
		fb.lastHeader = r.Header.Clone()
		if r.Body != nil {
			body, _ := io.ReadAll(r.Body)
			fb.lastBody = body
		}
		next.ServeHTTP(w, r)
	})
}

func (fb *fakeBackend) orderReplyBody() string {
	if fb.orderReply != "" {
		return fb.orderReply
	}
	return `{"success":true,"data":{"order_id":42,"message":"created"}}`
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write([]byte(body))
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	client, err := New(config.APIConfig{BaseURL: baseURL, Language: "ru", Timeout: 5 * time.Second}, nil, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return client
}

func TestNewRejectsInvalidBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := New(config.APIConfig{BaseURL: ""}, nil); err == nil {
		t.Fatal("expected error for empty base url")
	}
	if _, err := New(config.APIConfig{BaseURL: "not a url"}, nil); err == nil {
		t.Fatal("expected error for malformed base url")
	}
}

func TestCatalogReadAppendsExactlyOneLanguageParam(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(t)
	client := newTestClient(t, backend.server.URL)

	resp := client.Categories(context.Background(), "en")
	if !resp.Success {
		t.Fatalf("expected success, got %+v", resp)
	}
	if got := backend.lastQuery["language"]; len(got) != 1 || got[0] != "en" {
		t.Fatalf("expected exactly one language=en param, got %v", got)
	}
}

func TestUnsupportedLanguageFallsBackToDefault(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(t)
	client := newTestClient(t, backend.server.URL)

	client.Categories(context.Background(), "fr")
	if got := backend.lastQuery.Get("language"); got != "ru" {
		t.Fatalf("expected fallback language ru, got %q", got)
	}
}

func TestProductsQueryBuilding(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(t)
	client := newTestClient(t, backend.server.URL)

	client.Products(context.Background(), ProductQuery{
		CategoryID: 3,
		Search:     "имбирный пряник & мед",
		SortPrice:  SortPriceDesc,
	}, "es")

	q := backend.lastQuery
	if q.Get("page") != "1" || q.Get("page_size") != "10" {
		t.Fatalf("expected default pagination, got page=%q page_size=%q", q.Get("page"), q.Get("page_size"))
	}
	if q.Get("category") != "3" {
		t.Fatalf("expected category=3, got %q", q.Get("category"))
	}
	if q.Has("subcategory") {
		t.Fatal("unset subcategory must not be sent")
	}
	if q.Get("search") != "имбирный пряник & мед" {
		t.Fatalf("search term must survive escaping, got %q", q.Get("search"))
	}
	if q.Get("sort_price") != "desc" {
		t.Fatalf("expected sort_price=desc, got %q", q.Get("sort_price"))
	}

	client.Products(context.Background(), ProductQuery{SortPrice: "sideways"}, "es")
	if backend.lastQuery.Has("sort_price") {
		t.Fatal("invalid sort direction must be dropped")
	}
}

func TestRelatedProductsDefaultsLimit(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(t)
	client := newTestClient(t, backend.server.URL)

	client.RelatedProducts(context.Background(), 7, 0, "ru")
	if backend.lastPath != "/products/7/related" {
		t.Fatalf("unexpected path %q", backend.lastPath)
	}
	if got := backend.lastQuery.Get("limit"); got != "5" {
		t.Fatalf("expected default limit 5, got %q", got)
	}
}

func TestWritesNeverCarryLanguageQueryParam(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(t)
	client := newTestClient(t, backend.server.URL)

	order := types.OrderRequest{Name: "N", Email: "n@example.com", Phone: "+1", Language: "en",
		Items: []types.OrderItem{{ProductID: 1, Quantity: 2}}, RecaptchaResponse: "tok"}
	resp := client.CreateOrder(context.Background(), order)
	if !resp.Success || resp.Data.OrderID != 42 {
		t.Fatalf("expected created order, got %+v", resp)
	}
	if backend.lastQuery.Has("language") {
		t.Fatal("order write must not carry the language query param")
	}

	var sent map[string]any
	if err := json.Unmarshal(backend.lastBody, &sent); err != nil {
		t.Fatalf("order body not json: %v", err)
	}
	if sent["language"] != "en" {
		t.Fatalf("language must travel in the body, got %v", sent["language"])
	}

	client.SubmitContact(context.Background(), types.ContactRequest{Name: "N", Email: "n@example.com",
		Phone: "+1", Language: "es", Message: "hi", RecaptchaResponse: "tok"})
	if backend.lastQuery.Has("language") {
		t.Fatal("contact write must not carry the language query param")
	}
}

func TestContentTypeSetAndCallerCanOverride(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(t)
	client := newTestClient(t, backend.server.URL)
	client.Categories(context.Background(), "ru")
	if got := backend.lastHeader.Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected json content type, got %q", got)
	}

	// Caller headers are merged after the contract header and may
	// override it. Documented looseness, not a bug.
	override := newTestClient(t, backend.server.URL, WithHeaders(http.Header{
		"Content-Type": {"application/vnd.custom+json"},
		"X-Client":     {"cli"},
	}))
	override.Categories(context.Background(), "ru")
	if got := backend.lastHeader.Get("Content-Type"); got != "application/vnd.custom+json" {
		t.Fatalf("expected caller content type to win, got %q", got)
	}
	if got := backend.lastHeader.Get("X-Client"); got != "cli" {
		t.Fatalf("expected extra header to pass through, got %q", got)
	}
}

func TestTransportFailureResolvesToFailedEnvelope(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "http://127.0.0.1:1")

	resp := client.CreateOrder(context.Background(), types.OrderRequest{})
	if resp.Success {
		t.Fatal("expected failure envelope")
	}
	if resp.Error == "" {
		t.Fatal("expected non-empty error message")
	}
	if client.IsLoading() {
		t.Fatal("loading flag must reset after completion")
	}
	if client.LastError() == "" {
		t.Fatal("last error must record the failure")
	}
}

func TestNonJSONBodyResolvesToGenericError(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>gateway timeout</html>"))
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	resp := client.Categories(context.Background(), "ru")
	if resp.Success {
		t.Fatal("expected failure envelope")
	}
	if resp.Error != genericErrorMessage {
		t.Fatalf("expected generic fallback, got %q", resp.Error)
	}
}

func TestServerFailurePassesErrorAndValidationThrough(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(t)
	backend.orderStatus = http.StatusBadRequest
	backend.orderReply = `{"success":false,"error":"validation failed","validation_errors":[{"field":"email","message":"must be a valid email"}]}`
	client := newTestClient(t, backend.server.URL)

	resp := client.CreateOrder(context.Background(), types.OrderRequest{})
	if resp.Success {
		t.Fatal("expected failure envelope")
	}
	if resp.Error != "validation failed" {
		t.Fatalf("server error must pass through verbatim, got %q", resp.Error)
	}
	if len(resp.ValidationErrors) != 1 || resp.ValidationErrors[0].Field != "email" {
		t.Fatalf("validation errors must pass through, got %+v", resp.ValidationErrors)
	}
	if client.LastError() != "validation failed" {
		t.Fatalf("last error must hold the server message, got %q", client.LastError())
	}
}

func TestSuccessClearsLastError(t *testing.T) {
	t.Parallel()

	backend := newFakeBackend(t)
	client := newTestClient(t, backend.server.URL)

	backend.orderStatus = http.StatusInternalServerError
	backend.orderReply = `{"success":false,"error":"boom"}`
	client.CreateOrder(context.Background(), types.OrderRequest{})
	if client.LastError() != "boom" {
		t.Fatalf("expected recorded failure, got %q", client.LastError())
	}

	client.Categories(context.Background(), "ru")
	if client.LastError() != "" {
		t.Fatalf("success must clear last error, got %q", client.LastError())
	}
}

func TestMetricsRecordOutcomes(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	recorder := metrics.NewAPIMetrics(reg)

	backend := newFakeBackend(t)
	client := newTestClient(t, backend.server.URL, WithMetrics(recorder))
	client.Categories(context.Background(), "ru")

	failing := newTestClient(t, "http://127.0.0.1:1", WithMetrics(recorder))
	failing.Categories(context.Background(), "ru")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	names := map[string]bool{}
	for _, mf := range mfs {
		names[mf.GetName()] = true
	}
	if !names["api_request_success"] || !names["api_request_failure"] {
		t.Fatalf("expected success and failure series, got %v", names)
	}
}
