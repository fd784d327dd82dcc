package serve

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"tableflip.dev/sitelog/pkg/app"
	"tableflip.dev/sitelog/pkg/site"
	"tableflip.dev/sitelog/pkg/source"
)

func TestServeUntilCancelled(t *testing.T) {
	svc := &app.Service{
		Raw: source.RawFunc(func(context.Context, string, string) ([]byte, error) {
			return []byte(`[]`), nil
		}),
		Role: site.RoleViewer,
		Log:  zerolog.Nop(),
	}
	listening := make(chan net.Addr, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve{
			Service:     svc,
			Addr:        "127.0.0.1:0",
			OnListening: func(a net.Addr) { listening <- a },
			Log:         zerolog.Nop(),
		}.Do(ctx)
	}()

	var addr net.Addr
	select {
	case addr = <-listening:
	case err := <-done:
		t.Fatalf("serve exited early: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not start")
	}

	resp, err := http.Get(fmt.Sprintf("http://%s/healthz", addr))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var body map[string]string
	_ = json.NewDecoder(resp.Body).Decode(&body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("unexpected health %d %v", resp.StatusCode, body)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
