package speedtest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptrace"
	"sync/atomic"
	"time"
)

// Default endpoints of the Cloudflare speed test service.
const (
	DefaultDownloadURL = "https://speed.cloudflare.com/__down?bytes=25000000"
	DefaultUploadURL   = "https://speed.cloudflare.com/__up"
	DefaultPingURL     = "https://speed.cloudflare.com/__down?bytes=0"
)

const (
	// DefaultUploadSize is the payload posted by the upload stage.
	DefaultUploadSize int64 = 10 << 20
	// DefaultPingCount is the number of latency samples per probe.
	DefaultPingCount = 5
)

var (
	ErrNoEndpoint = errors.New("speedtest: endpoint not configured")
	ErrBadStatus  = errors.New("speedtest: unexpected response status")
	ErrNoSample   = errors.New("speedtest: no latency sample")
)

// Endpoints are the URLs the three measurement stages talk to.
type Endpoints struct {
	Download string
	Upload   string
	Ping     string
}

// DefaultEndpoints returns the Cloudflare endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Download: DefaultDownloadURL,
		Upload:   DefaultUploadURL,
		Ping:     DefaultPingURL,
	}
}

// Tester measures latency, download and upload throughput. The stages share
// a window of 9/10 of the probe timeout: 1/5 of it for latency and 2/5 each
// for download and upload, so every stage deadline falls before the probe
// deadline. A stage that runs out of budget after moving data reports the
// throughput observed so far; running out of the whole timeout is an error.
type Tester struct {
	client     *http.Client
	endpoints  Endpoints
	uploadSize int64
	pingCount  int
}

// New creates a Tester. Empty endpoint fields fall back to the defaults.
func New(client *http.Client, endpoints Endpoints) *Tester {
	def := DefaultEndpoints()
	if endpoints.Download == "" {
		endpoints.Download = def.Download
	}
	if endpoints.Upload == "" {
		endpoints.Upload = def.Upload
	}
	if endpoints.Ping == "" {
		endpoints.Ping = def.Ping
	}
	if client == nil {
		client = &http.Client{CheckRedirect: RedirectPolicy(DefaultMaxRedirects)}
	}
	return &Tester{
		client:     client,
		endpoints:  endpoints,
		uploadSize: DefaultUploadSize,
		pingCount:  DefaultPingCount,
	}
}

// SetUploadSize overrides the number of bytes posted by the upload stage.
func (t *Tester) SetUploadSize(n int64) {
	if n > 0 {
		t.uploadSize = n
	}
}

// Probe runs one measurement bounded by timeout.
func (t *Tester) Probe(ctx context.Context, timeout time.Duration) (*Result, error) {
	if timeout <= 0 {
		return nil, fmt.Errorf("speedtest: invalid timeout %s", timeout)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pingBudget, downBudget, upBudget := stageBudgets(timeout)
	ping, err := t.latency(ctx, pingBudget)
	if err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}
	down, err := t.download(ctx, downBudget)
	if err != nil {
		return nil, fmt.Errorf("download: %w", err)
	}
	up, err := t.upload(ctx, upBudget)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	return &Result{
		DownloadMbps: down,
		UploadMbps:   up,
		PingMs:       ping,
	}, nil
}

// stageBudgets splits the stage window of timeout between latency,
// download and upload. The last tenth of the timeout is kept free so a
// stage cut short by its own budget still has time to report.
func stageBudgets(timeout time.Duration) (ping, down, up time.Duration) {
	window := timeout - timeout/10
	return window / 5, window * 2 / 5, window * 2 / 5
}

// budgetSpent reports whether stage ended because its own budget ran out
// while the probe as a whole is still alive.
func budgetSpent(probe, stage context.Context) bool {
	return probe.Err() == nil && errors.Is(stage.Err(), context.DeadlineExceeded)
}

func (t *Tester) latency(ctx context.Context, budget time.Duration) (float64, error) {
	if t.endpoints.Ping == "" {
		return 0, ErrNoEndpoint
	}
	sctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	best := -1.0
	for i := 0; i < t.pingCount; i++ {
		rtt, err := t.roundTrip(sctx)
		if err != nil {
			if best >= 0 && budgetSpent(ctx, sctx) {
				break
			}
			return 0, err
		}
		if best < 0 || rtt < best {
			best = rtt
		}
	}
	if best < 0 {
		return 0, ErrNoSample
	}
	return best, nil
}

// roundTrip returns the time between writing a request and the first
// response byte, in milliseconds.
func (t *Tester) roundTrip(ctx context.Context) (float64, error) {
	var wrote, first atomic.Int64
	trace := &httptrace.ClientTrace{
		WroteRequest: func(httptrace.WroteRequestInfo) {
			wrote.Store(time.Now().UnixNano())
		},
		GotFirstResponseByte: func() {
			first.Store(time.Now().UnixNano())
		},
	}
	req, err := http.NewRequestWithContext(httptrace.WithClientTrace(ctx, trace), http.MethodGet, t.endpoints.Ping, nil)
	if err != nil {
		return 0, err
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return 0, err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return 0, err
	}
	w, f := wrote.Load(), first.Load()
	if w == 0 || f < w {
		return 0, ErrNoSample
	}
	return float64(f-w) / float64(time.Millisecond), nil
}

func (t *Tester) download(ctx context.Context, budget time.Duration) (float64, error) {
	if t.endpoints.Download == "" {
		return 0, ErrNoEndpoint
	}
	sctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	req, err := http.NewRequestWithContext(sctx, http.MethodGet, t.endpoints.Download, nil)
	if err != nil {
		return 0, err
	}
	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return 0, err
	}
	n, err := io.Copy(io.Discard, resp.Body)
	elapsed := time.Since(start)
	if err != nil && !(n > 0 && budgetSpent(ctx, sctx)) {
		return 0, err
	}
	return mbps(n, elapsed), nil
}

func (t *Tester) upload(ctx context.Context, budget time.Duration) (float64, error) {
	if t.endpoints.Upload == "" {
		return 0, ErrNoEndpoint
	}
	sctx, cancel := context.WithTimeout(ctx, budget)
	defer cancel()

	body := &countingReader{r: io.LimitReader(zeroReader{}, t.uploadSize)}
	req, err := http.NewRequestWithContext(sctx, http.MethodPost, t.endpoints.Upload, body)
	if err != nil {
		return 0, err
	}
	req.ContentLength = t.uploadSize
	req.Header.Set("Content-Type", "application/octet-stream")

	start := time.Now()
	resp, err := t.client.Do(req)
	elapsed := time.Since(start)
	n := body.n.Load()
	if err != nil {
		if n > 0 && budgetSpent(ctx, sctx) {
			return mbps(n, elapsed), nil
		}
		return 0, err
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if err := checkStatus(resp); err != nil {
		return 0, err
	}
	return mbps(n, elapsed), nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s", ErrBadStatus, resp.Status)
	}
	return nil
}

func mbps(n int64, d time.Duration) float64 {
	if n <= 0 || d <= 0 {
		return 0
	}
	return float64(n) * 8 / 1e6 / d.Seconds()
}

type zeroReader struct{}

func (zeroReader) Read(p []byte) (int, error) {
	clear(p)
	return len(p), nil
}

// countingReader counts bytes handed to the transport; it is read from the
// transport's goroutine.
type countingReader struct {
	r io.Reader
	n atomic.Int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n.Add(int64(n))
	return n, err
}
