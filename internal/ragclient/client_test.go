package ragclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestAsk_LocalAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ask" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		if got := r.URL.Query().Get("q"); got != "what is a server" {
			t.Errorf("q: got %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"route": "local",
			"answer": "A server handles requests.",
			"contextMap": [
				{"index": 1, "doc_id": "d1", "chunk_id": "c3", "score": 0.82}
			]
		}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	ans, err := c.Ask(context.Background(), "what is a server")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if ans.Route != "local" || ans.Answer != "A server handles requests." {
		t.Errorf("got route=%q answer=%q", ans.Route, ans.Answer)
	}
	if len(ans.ContextMap) != 1 || ans.ContextMap[0].DocID != "d1" || ans.ContextMap[0].Score != 0.82 {
		t.Errorf("context: %+v", ans.ContextMap)
	}
}

func TestAsk_AbstainWithNullAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"route": "abstain", "answer": null, "contextMap": []}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	ans, err := c.Ask(context.Background(), "unknown thing")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if ans.Route != "abstain" {
		t.Errorf("route: got %q, want abstain", ans.Route)
	}
	if ans.Answer != "" {
		t.Errorf("null answer should decode to empty, got %q", ans.Answer)
	}
}

func TestAsk_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if _, err := c.Ask(context.Background(), "q"); err == nil {
		t.Fatal("expected error for 500 response")
	}
}

func TestAsk_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if _, err := c.Ask(context.Background(), "q"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestAsk_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"route":"local","answer":"late","contextMap":[]}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(srv.URL, time.Second)
	if _, err := c.Ask(ctx, "q"); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestAsk_ServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := New(srv.URL, time.Second)
	if _, err := c.Ask(context.Background(), "q"); err == nil {
		t.Fatal("expected error for unreachable service")
	}
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/health" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if err := c.Ping(context.Background()); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestPing_Unhealthy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second)
	if err := c.Ping(context.Background()); err == nil {
		t.Fatal("expected error for unhealthy service")
	}
}

func TestNew_TrimsTrailingSlash(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/ask" {
			t.Errorf("path: got %q", r.URL.Path)
		}
		w.Write([]byte(`{"route":"local","answer":"x","contextMap":[]}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", time.Second)
	if _, err := c.Ask(context.Background(), "q"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
}
