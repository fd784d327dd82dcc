package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/sitelog/pkg/collection"
)

func testClient(url string) *Client {
	c := NewClient(url, "secret", time.Second, zerolog.Nop())
	c.retryDelay = time.Millisecond
	return c
}

func TestFetchRawSendsScopeAndToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/visits" || r.URL.Query().Get("scope") != "p1" {
			t.Errorf("unexpected request %s", r.URL)
		}
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("missing token")
		}
		_, _ = io.WriteString(w, `[{"id":"v1"}]`)
	}))
	defer srv.Close()

	b, err := testClient(srv.URL).FetchRaw(context.Background(), "visits", "p1")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(b) != `[{"id":"v1"}]` {
		t.Fatalf("unexpected body %s", b)
	}
}

func TestClientErrorsAreFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchRaw(context.Background(), "events", "p1")
	if !collection.IsFatal(err) || !errors.Is(err, ErrStatus) {
		t.Fatalf("expected fatal status error, got %v", err)
	}
}

func TestServerErrorsAreRetriedOnce(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "busy", http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	if _, err := testClient(srv.URL).FetchRaw(context.Background(), "events", ""); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
}

func TestPersistentServerErrorIsRecoverable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).FetchRaw(context.Background(), "events", "")
	if err == nil || collection.IsFatal(err) {
		t.Fatalf("expected recoverable error, got %v", err)
	}
}

func TestDeleteAndCreate(t *testing.T) {
	var gotMethod, gotPath, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		if r.Method == http.MethodPost {
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write(b)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	if err := c.Delete(context.Background(), "materials", "m 1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/api/materials/m 1" {
		t.Fatalf("unexpected request %s %s", gotMethod, gotPath)
	}
	out, err := c.Create(context.Background(), "materials", "p1", []byte(`{"id":"m2"}`))
	if err != nil || string(out) != `{"id":"m2"}` || gotBody != `{"id":"m2"}` {
		t.Fatalf("unexpected create result %s %v", out, err)
	}
}
