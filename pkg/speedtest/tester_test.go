package speedtest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// newSpeedServer serves the three stages plus a few misbehaving endpoints.
func newSpeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/down", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 1<<20))
	})
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/slow-down", func(w http.ResponseWriter, r *http.Request) {
		chunk := make([]byte, 32<<10)
		for {
			if _, err := w.Write(chunk); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
			select {
			case <-r.Context().Done():
				return
			case <-time.After(5 * time.Millisecond):
			}
		}
	})
	mux.HandleFunc("/slow-ping", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
			return
		case <-time.After(150 * time.Millisecond):
		}
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/trickle-down", func(w http.ResponseWriter, r *http.Request) {
		chunk := make([]byte, 512)
		for {
			if _, err := w.Write(chunk); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
			select {
			case <-r.Context().Done():
				return
			case <-time.After(20 * time.Millisecond):
			}
		}
	})
	mux.HandleFunc("/trickle-up", func(w http.ResponseWriter, r *http.Request) {
		buf := make([]byte, 512)
		for {
			if _, err := io.ReadFull(r.Body, buf); err != nil {
				break
			}
			select {
			case <-r.Context().Done():
				return
			case <-time.After(20 * time.Millisecond):
			}
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/hang", func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newTestTester(srv *httptest.Server, ep Endpoints) *Tester {
	tt := New(srv.Client(), ep)
	tt.SetUploadSize(256 << 10)
	return tt
}

func TestTester_Probe(t *testing.T) {
	srv := newSpeedServer(t)
	tt := newTestTester(srv, Endpoints{
		Download: srv.URL + "/down",
		Upload:   srv.URL + "/up",
		Ping:     srv.URL + "/ping",
	})

	res, err := tt.Probe(context.Background(), 5*time.Second)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if res.DownloadMbps <= 0 {
		t.Errorf("expected positive download, got %f", res.DownloadMbps)
	}
	if res.UploadMbps <= 0 {
		t.Errorf("expected positive upload, got %f", res.UploadMbps)
	}
	if res.PingMs < 0 {
		t.Errorf("expected non-negative ping, got %f", res.PingMs)
	}
}

func TestTester_DownloadTruncatedByBudget(t *testing.T) {
	srv := newSpeedServer(t)
	tt := newTestTester(srv, Endpoints{
		Download: srv.URL + "/slow-down",
		Upload:   srv.URL + "/up",
		Ping:     srv.URL + "/ping",
	})

	start := time.Now()
	res, err := tt.Probe(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("Probe: %v", err)
	}
	if res.DownloadMbps <= 0 {
		t.Errorf("expected partial download throughput, got %f", res.DownloadMbps)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("probe overran its timeout: %s", elapsed)
	}
}

func TestTester_SlowLinkReportsPartialResult(t *testing.T) {
	srv := newSpeedServer(t)
	tt := newTestTester(srv, Endpoints{
		Download: srv.URL + "/trickle-down",
		Upload:   srv.URL + "/trickle-up",
		Ping:     srv.URL + "/slow-ping",
	})
	// Large enough that the trickling upload cannot finish in its budget.
	tt.SetUploadSize(64 << 20)

	start := time.Now()
	res, err := tt.Probe(context.Background(), time.Second)
	if err != nil {
		t.Fatalf("slow link reported as error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("probe overran its timeout: %s", elapsed)
	}
	if res.PingMs < 150 {
		t.Errorf("ping = %f ms, want at least 150", res.PingMs)
	}
	if res.DownloadMbps <= 0 || res.UploadMbps <= 0 {
		t.Errorf("expected partial throughput, got %s", res)
	}
	if res.DownloadMbps > 1 {
		t.Errorf("download = %f Mbps, want a slow link", res.DownloadMbps)
	}
}

func TestTester_SlowLinkUnderCallerDeadline(t *testing.T) {
	srv := newSpeedServer(t)
	tt := newTestTester(srv, Endpoints{
		Download: srv.URL + "/trickle-down",
		Upload:   srv.URL + "/trickle-up",
		Ping:     srv.URL + "/slow-ping",
	})
	tt.SetUploadSize(64 << 20)

	// Callers such as the scheduler bound the probe with the same timeout.
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := tt.Probe(ctx, time.Second); err != nil {
		t.Fatalf("Probe: %v", err)
	}
}

func TestStageBudgets(t *testing.T) {
	ping, down, up := stageBudgets(5 * time.Second)
	if ping != 900*time.Millisecond || down != 1800*time.Millisecond || up != 1800*time.Millisecond {
		t.Errorf("budgets = %s/%s/%s", ping, down, up)
	}
	if total := ping + down + up; total >= 5*time.Second {
		t.Errorf("stage budgets %s reach the probe timeout", total)
	}
}

func TestTester_HangingPingIsError(t *testing.T) {
	srv := newSpeedServer(t)
	tt := newTestTester(srv, Endpoints{
		Download: srv.URL + "/down",
		Upload:   srv.URL + "/up",
		Ping:     srv.URL + "/hang",
	})

	_, err := tt.Probe(context.Background(), 250*time.Millisecond)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), "ping:") {
		t.Errorf("expected ping stage error, got %v", err)
	}
}

func TestTester_BadStatus(t *testing.T) {
	srv := newSpeedServer(t)
	tt := newTestTester(srv, Endpoints{
		Download: srv.URL + "/broken",
		Upload:   srv.URL + "/up",
		Ping:     srv.URL + "/ping",
	})

	_, err := tt.Probe(context.Background(), 2*time.Second)
	if !errors.Is(err, ErrBadStatus) {
		t.Fatalf("expected ErrBadStatus, got %v", err)
	}
}

func TestTester_CanceledContext(t *testing.T) {
	srv := newSpeedServer(t)
	tt := newTestTester(srv, Endpoints{
		Download: srv.URL + "/down",
		Upload:   srv.URL + "/up",
		Ping:     srv.URL + "/ping",
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := tt.Probe(ctx, time.Second); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestTester_InvalidTimeout(t *testing.T) {
	tt := New(nil, Endpoints{})
	if _, err := tt.Probe(context.Background(), 0); err == nil {
		t.Fatal("expected error for zero timeout")
	}
}

func TestNew_DefaultEndpoints(t *testing.T) {
	tt := New(nil, Endpoints{Upload: "http://example.test/up"})
	if tt.endpoints.Download != DefaultDownloadURL {
		t.Errorf("expected default download URL, got %s", tt.endpoints.Download)
	}
	if tt.endpoints.Ping != DefaultPingURL {
		t.Errorf("expected default ping URL, got %s", tt.endpoints.Ping)
	}
	if tt.endpoints.Upload != "http://example.test/up" {
		t.Errorf("expected custom upload URL to be kept, got %s", tt.endpoints.Upload)
	}
	if tt.client == nil {
		t.Error("expected a default client")
	}
}

func TestMbps(t *testing.T) {
	if got := mbps(1_000_000, time.Second); got != 8 {
		t.Errorf("expected 8 Mbps, got %f", got)
	}
	if got := mbps(0, time.Second); got != 0 {
		t.Errorf("expected 0 for no bytes, got %f", got)
	}
	if got := mbps(100, 0); got != 0 {
		t.Errorf("expected 0 for zero duration, got %f", got)
	}
}

func TestResult_String(t *testing.T) {
	r := Result{DownloadMbps: 12.345, UploadMbps: 1.5, PingMs: 42.4}
	if got, want := r.String(), "D/U: 12.35/1.50 Mbps, Ping: 42 ms"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
