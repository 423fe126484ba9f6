package apiclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/carebridge-health/dme-orders/pkg/common/models"
)

func testClient(url string) *Client {
	return &Client{
		baseURL:   url,
		http:      http.DefaultClient,
		attempts:  3,
		baseDelay: time.Millisecond,
	}
}

func TestSubmitSuccess(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Path != "/api/v1/orders" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Fatalf("unexpected content type %q", got)
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	err := testClient(server.URL).Submit(context.Background(), models.OrderPayload{Device: "Walker"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected one request, got %d", calls)
	}
}

func TestSubmitRejectionIsNotRetried(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	err := testClient(server.URL).Submit(context.Background(), models.OrderPayload{Device: "Walker"})
	if err == nil {
		t.Fatal("expected rejection error")
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt for a 4xx, got %d", calls)
	}
}

func TestSubmitRetriesServerErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	err := testClient(server.URL).Submit(context.Background(), models.OrderPayload{Device: "Walker"})
	if err != nil {
		t.Fatalf("expected eventual success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected three attempts, got %d", calls)
	}
}
