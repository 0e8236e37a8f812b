// Package presenter turns scheduler events into terminal output and desktop
// notifications.
package presenter

import (
	"io"
	"sync"

	"github.com/warpdl/iback/internal/notify"
	"github.com/warpdl/iback/internal/scheduler"
	"github.com/warpdl/iback/pkg/logger"
	"github.com/warpdl/iback/pkg/speedtest"
)

// NotificationTitle is the title of every desktop notification.
const NotificationTitle = "Iback"

// Options controls what is drawn and what is notified.
type Options struct {
	// Thresholds used to highlight the values that failed a test.
	MinDownloadMbps float64
	MinUploadMbps   float64
	MaxPingMs       float64

	Silent  bool
	Sticky  bool
	NoSound bool

	NotifyOnErrors bool
	LogErrors      bool
	NoErrorRetry   bool

	NotifyOnFailures bool
	LogFailures      bool
	NoFailureRetry   bool

	// Interactive enables the spinner and in-place redraws.
	Interactive bool
	// Color enables ANSI colors.
	Color bool
}

// Presenter renders scheduler events. Handle is meant to be subscribed to a
// scheduler; Close may be called from another goroutine.
type Presenter struct {
	opts     Options
	notifier notify.Notifier
	log      logger.Logger
	out      io.Writer
	scr      *screen
	pal      palette
	sym      symbols

	mu       sync.Mutex
	spin     *spinner
	errShown bool
	closed   bool
}

// New creates a Presenter writing to out. A nil notifier disables
// notifications, a nil log discards log output.
func New(out io.Writer, opts Options, n notify.Notifier, log logger.Logger) *Presenter {
	if n == nil || opts.Silent {
		n = notify.Nop{}
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Presenter{
		opts:     opts,
		notifier: n,
		log:      log,
		out:      out,
		scr:      &screen{w: out, live: opts.Interactive},
		pal:      palette{enabled: opts.Color},
		sym:      defaultSymbols(),
	}
}

// Handle renders one event.
func (p *Presenter) Handle(ev scheduler.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	if ev.Type != scheduler.EventTesting {
		p.stopSpinner()
	}

	switch ev.Type {
	case scheduler.EventTesting:
		p.renderTesting()
	case scheduler.EventRetryingAfter:
		p.scr.update(p.pal.yellow("Retrying after " + itoa(ev.SecondsRemaining) + " seconds"))
	case scheduler.EventRetrying:
		p.errShown = false
	case scheduler.EventError:
		p.onError(ev.Err)
	case scheduler.EventFailure:
		if ev.Result != nil {
			p.onFailure(*ev.Result)
		}
	case scheduler.EventBack:
		if ev.Result != nil {
			p.onBack(*ev.Result)
		}
	}
}

// Close stops the spinner and freezes the last frame.
func (p *Presenter) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.closed = true
	p.stopSpinner()
	p.scr.done()
}

func (p *Presenter) renderTesting() {
	if !p.opts.Interactive {
		p.scr.update("Testing...")
		return
	}
	if p.spin != nil {
		return
	}
	// The spinner draws on its own; drop whatever the screen was showing.
	p.scr.update("")
	p.spin = startSpinner(p.out, "Testing")
}

func (p *Presenter) stopSpinner() {
	if p.spin == nil {
		return
	}
	p.spin.stop()
	p.spin = nil
	p.scr.lines = 0
}

func (p *Presenter) onError(err error) {
	if p.opts.LogErrors {
		p.scr.update(p.sym.failure + " " + p.pal.red("Test failed") + "\n" + errString(err))
		p.scr.done()
		p.log.Error("test failed: %v", err)
	}
	if p.errShown {
		return
	}
	p.errShown = true
	if p.opts.NotifyOnErrors {
		p.notify("Test Error"+retrySuffix(p.opts.NoErrorRetry), p.opts.Sticky)
	}
}

func (p *Presenter) onFailure(r speedtest.Result) {
	if p.opts.LogFailures {
		p.scr.update(p.sym.warning + " " + p.failureLine(r))
		p.scr.done()
		p.log.Warning("slow internet: %s", r)
	}
	if p.opts.NotifyOnFailures {
		msg := "Slow Internet (D/U: " + formatMbps(r.DownloadMbps) + "/" + formatMbps(r.UploadMbps) +
			" Mbps, Ping: " + formatMs(r.PingMs) + " ms)" + retrySuffix(p.opts.NoFailureRetry)
		p.notify(msg, p.opts.Sticky)
	}
}

// failureLine is yellow with the values that missed a threshold in red.
func (p *Presenter) failureLine(r speedtest.Result) string {
	value := func(s string, bad bool) string {
		if bad {
			return p.pal.red(s)
		}
		return p.pal.yellow(s)
	}
	y := p.pal.yellow
	return y("Slow Internet, D/U: ") +
		value(formatMbps(r.DownloadMbps), r.DownloadMbps < p.opts.MinDownloadMbps) +
		y("/") +
		value(formatMbps(r.UploadMbps), r.UploadMbps < p.opts.MinUploadMbps) +
		y(" Mbps, Ping: ") +
		value(formatMs(r.PingMs), r.PingMs > p.opts.MaxPingMs) +
		y(" ms.")
}

func (p *Presenter) onBack(r speedtest.Result) {
	c := p.pal
	p.scr.update(p.sym.success + " " + c.green("Internet is back!") + "\n" +
		"Ping " + c.blueBright(formatMs(r.PingMs)) + " " + c.blue("ms") + "\n" +
		"Download " + c.blueBright(formatMbps(r.DownloadMbps)) + " " + c.blue("Mbps") + "\n" +
		"Upload " + c.blueBright(formatMbps(r.UploadMbps)) + " " + c.blue("Mbps"))
	p.scr.done()
	p.log.Info("internet is back: %s", r)
	p.notify("Internet is Back!", true)
}

func (p *Presenter) notify(msg string, wait bool) {
	err := p.notifier.Notify(notify.Notification{
		Title:   NotificationTitle,
		Message: msg,
		Wait:    wait,
		Sound:   !p.opts.NoSound,
	})
	if err != nil {
		p.log.Warning("notification failed: %v", err)
	}
}

func retrySuffix(noRetry bool) string {
	if noRetry {
		return "."
	}
	return ", retrying.."
}

func errString(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
