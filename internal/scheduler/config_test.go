package scheduler

import (
	"math"
	"testing"
	"time"

	"github.com/warpdl/iback/pkg/speedtest"
)

func TestConfig_Passes(t *testing.T) {
	cfg := Config{MinDownloadMbps: 0.5, MinUploadMbps: 0.5, MaxPingMs: 100}
	tests := []struct {
		name   string
		result speedtest.Result
		want   bool
	}{
		{"all above", speedtest.Result{DownloadMbps: 10, UploadMbps: 5, PingMs: 20}, true},
		{"exact bounds", speedtest.Result{DownloadMbps: 0.5, UploadMbps: 0.5, PingMs: 100}, true},
		{"slow download", speedtest.Result{DownloadMbps: 0.2, UploadMbps: 1, PingMs: 50}, false},
		{"slow upload", speedtest.Result{DownloadMbps: 1, UploadMbps: 0.49, PingMs: 50}, false},
		{"high ping", speedtest.Result{DownloadMbps: 1, UploadMbps: 1, PingMs: 100.1}, false},
		{"everything bad", speedtest.Result{PingMs: 1000}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.Passes(tt.result); got != tt.want {
				t.Errorf("Passes(%+v) = %v, want %v", tt.result, got, tt.want)
			}
		})
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.ProbeTimeout != 5*time.Second {
		t.Errorf("ProbeTimeout = %s, want 5s", cfg.ProbeTimeout)
	}
	if cfg.MinDownloadMbps != 0.01 || cfg.MinUploadMbps != 0.01 {
		t.Errorf("min throughput = %v/%v, want 0.01/0.01", cfg.MinDownloadMbps, cfg.MinUploadMbps)
	}
	if cfg.MaxPingMs != 5000 {
		t.Errorf("MaxPingMs = %v, want 5000", cfg.MaxPingMs)
	}
	if cfg.ErrorRetry != After(60) {
		t.Errorf("ErrorRetry = %s, want 60s", cfg.ErrorRetry)
	}
	if cfg.FailureRetry != After(0) {
		t.Errorf("FailureRetry = %s, want 0s", cfg.FailureRetry)
	}
}

func TestConfig_Normalize(t *testing.T) {
	cfg := Config{
		MinDownloadMbps: math.NaN(),
		MinUploadMbps:   2,
		MaxPingMs:       math.NaN(),
		ErrorRetry:      After(-3),
		FailureRetry:    RetryDelay{Seconds: -1, Disabled: true},
	}.normalize()

	if cfg.ProbeTimeout != DefaultProbeTimeout {
		t.Errorf("ProbeTimeout = %s, want %s", cfg.ProbeTimeout, DefaultProbeTimeout)
	}
	if cfg.MinDownloadMbps != DefaultMinDownloadMbps {
		t.Errorf("MinDownloadMbps = %v, want default", cfg.MinDownloadMbps)
	}
	if cfg.MinUploadMbps != 2 {
		t.Errorf("MinUploadMbps = %v, want 2", cfg.MinUploadMbps)
	}
	if cfg.MaxPingMs != DefaultMaxPingMs {
		t.Errorf("MaxPingMs = %v, want default", cfg.MaxPingMs)
	}
	if cfg.ErrorRetry.Seconds != 0 {
		t.Errorf("ErrorRetry.Seconds = %d, want 0", cfg.ErrorRetry.Seconds)
	}
	if !cfg.FailureRetry.Disabled {
		t.Error("FailureRetry lost its Disabled flag")
	}
}

func TestRetryDelay_String(t *testing.T) {
	if got := Never().String(); got != "never" {
		t.Errorf("Never().String() = %q", got)
	}
	if got := After(12).String(); got != "12s" {
		t.Errorf("After(12).String() = %q", got)
	}
}

func TestPhase_String(t *testing.T) {
	tests := map[Phase]string{
		PhaseIdle:          "idle",
		PhaseTesting:       "testing",
		PhaseAwaitingRetry: "awaiting-retry",
		PhaseHalted:        "halted",
		Phase(42):          "phase(42)",
	}
	for p, want := range tests {
		if got := p.String(); got != want {
			t.Errorf("Phase(%d).String() = %q, want %q", int(p), got, want)
		}
	}
}
