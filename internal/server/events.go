package server

import (
	"time"

	"github.com/warpdl/iback/internal/scheduler"
)

// MethodPrefix prefixes the method name of every pushed event.
const MethodPrefix = "iback."

// EventNotification is the params object of a pushed event. The measurement
// fields are omitted for events without a result.
type EventNotification struct {
	Type             string    `json:"type"`
	At               time.Time `json:"at"`
	Download         *float64  `json:"download,omitempty"`
	Upload           *float64  `json:"upload,omitempty"`
	Ping             *float64  `json:"ping,omitempty"`
	Error            string    `json:"error,omitempty"`
	SecondsRemaining int       `json:"secondsRemaining,omitempty"`
}

func methodFor(t scheduler.EventType) string {
	return MethodPrefix + string(t)
}

func notificationFor(ev scheduler.Event) EventNotification {
	n := EventNotification{
		Type:             string(ev.Type),
		At:               ev.At,
		SecondsRemaining: ev.SecondsRemaining,
	}
	if ev.Result != nil {
		r := *ev.Result
		n.Download, n.Upload, n.Ping = &r.DownloadMbps, &r.UploadMbps, &r.PingMs
	}
	if ev.Err != nil {
		n.Error = ev.Err.Error()
	}
	return n
}
