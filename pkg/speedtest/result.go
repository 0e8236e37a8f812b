// Package speedtest implements a single-shot HTTP connectivity measurement:
// latency, download throughput and upload throughput against a speed test
// service. A Tester keeps no state between probes.
package speedtest

import "fmt"

// Result is one completed measurement. Throughputs are in megabits per
// second, latency in milliseconds.
type Result struct {
	DownloadMbps float64 `json:"download"`
	UploadMbps   float64 `json:"upload"`
	PingMs       float64 `json:"ping"`
}

func (r Result) String() string {
	return fmt.Sprintf("D/U: %.2f/%.2f Mbps, Ping: %.0f ms", r.DownloadMbps, r.UploadMbps, r.PingMs)
}
