package scheduler

import (
	"math"
	"time"

	"github.com/warpdl/iback/pkg/speedtest"
)

// Defaults used by DefaultConfig and to repair unusable values.
const (
	DefaultProbeTimeout    = 5 * time.Second
	DefaultMinDownloadMbps = 0.01
	DefaultMinUploadMbps   = 0.01
	DefaultMaxPingMs       = 5000
	DefaultErrorRetry      = 60
	DefaultFailureRetry    = 0
)

// DefaultConfig returns the configuration used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		ProbeTimeout:    DefaultProbeTimeout,
		MinDownloadMbps: DefaultMinDownloadMbps,
		MinUploadMbps:   DefaultMinUploadMbps,
		MaxPingMs:       DefaultMaxPingMs,
		ErrorRetry:      After(DefaultErrorRetry),
		FailureRetry:    After(DefaultFailureRetry),
	}
}

// normalize replaces values that cannot be used as-is: a non-positive
// timeout, NaN thresholds and negative retry delays.
func (c Config) normalize() Config {
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = DefaultProbeTimeout
	}
	if math.IsNaN(c.MinDownloadMbps) {
		c.MinDownloadMbps = DefaultMinDownloadMbps
	}
	if math.IsNaN(c.MinUploadMbps) {
		c.MinUploadMbps = DefaultMinUploadMbps
	}
	if math.IsNaN(c.MaxPingMs) {
		c.MaxPingMs = DefaultMaxPingMs
	}
	c.ErrorRetry.Seconds = max(c.ErrorRetry.Seconds, 0)
	c.FailureRetry.Seconds = max(c.FailureRetry.Seconds, 0)
	return c
}

// Passes reports whether r meets every threshold. Bounds are inclusive.
func (c Config) Passes(r speedtest.Result) bool {
	return r.DownloadMbps >= c.MinDownloadMbps &&
		r.UploadMbps >= c.MinUploadMbps &&
		r.PingMs <= c.MaxPingMs
}
