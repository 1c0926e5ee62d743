package metrics

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestEnabled(t *testing.T) {
	t.Parallel()

	cases := map[string]bool{
		"":            false,
		"off":         false,
		" Disabled":   false,
		"false":       false,
		":9090":       true,
		"127.0.0.1:0": true,
	}
	for addr, want := range cases {
		if got := Enabled(addr); got != want {
			t.Fatalf("Enabled(%q) = %v, want %v", addr, got, want)
		}
	}
}

func TestStartServer_DisabledReturnsNil(t *testing.T) {
	t.Parallel()

	srv, errCh, err := StartServer(context.Background(), "off")
	if err != nil {
		t.Fatalf("StartServer() error = %v", err)
	}
	if srv != nil || errCh != nil {
		t.Fatalf("StartServer() = (%v, %v), want nil server", srv, errCh)
	}
}

func TestStartServer_ServesMetrics(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	AssessmentsTotal.WithLabelValues("low").Inc()

	srv, _, err := StartServer(ctx, "127.0.0.1:0")
	if err != nil {
		t.Fatalf("StartServer() error = %v", err)
	}

	resp, err := http.Get("http://" + srv.Addr + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics error = %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body error = %v", err)
	}
	if !strings.Contains(string(body), "oauthrisk_assessments_total") {
		t.Fatalf("metrics body missing oauthrisk_assessments_total")
	}
}
