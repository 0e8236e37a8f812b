// Package notify shows desktop notifications.
//
// The platform backend is chosen at build time: the freedesktop
// notification service over D-Bus on Linux and BSD, toast notifications on
// Windows and osascript on macOS.
package notify

import (
	"errors"
	"sync"

	"github.com/warpdl/iback/pkg/logger"
)

// ErrUnsupported is returned by New on platforms without a backend.
var ErrUnsupported = errors.New("notify: no notification backend for this platform")

// Notification is one desktop notification.
type Notification struct {
	Title   string
	Message string
	// Wait keeps the notification on screen until the user dismisses it.
	Wait bool
	// Sound plays the platform's notification sound.
	Sound bool
}

// Notifier delivers notifications.
type Notifier interface {
	Notify(Notification) error
}

// New returns the backend for the running platform. Backends that deliver
// asynchronously report failures to log.
func New(appName string, log logger.Logger) (Notifier, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return newPlatform(appName, log)
}

// Nop drops every notification.
type Nop struct{}

func (Nop) Notify(Notification) error { return nil }

// Recorder keeps every notification it receives. Err, when set, is returned
// from Notify after recording.
type Recorder struct {
	Err error

	mu   sync.Mutex
	sent []Notification
}

func (r *Recorder) Notify(n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
	return r.Err
}

// Sent returns a copy of the recorded notifications.
func (r *Recorder) Sent() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.sent))
	copy(out, r.sent)
	return out
}
