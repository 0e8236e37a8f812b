//go:build windows

package notify

import (
	"github.com/go-toast/toast"
	"github.com/warpdl/iback/pkg/logger"
)

type toaster struct {
	appID string
	log   logger.Logger
}

func newPlatform(appName string, log logger.Logger) (Notifier, error) {
	return &toaster{appID: appName, log: log}, nil
}

func toastFor(appID string, n Notification) toast.Notification {
	t := toast.Notification{
		AppID:    appID,
		Title:    n.Title,
		Message:  n.Message,
		Audio:    toast.Default,
		Duration: toast.Short,
	}
	if n.Wait {
		t.Duration = toast.Long
	}
	if !n.Sound {
		t.Audio = toast.Silent
	}
	return t
}

// Notify pushes the toast in the background; Push shells out to
// PowerShell and takes a while.
func (t *toaster) Notify(n Notification) error {
	msg := toastFor(t.appID, n)
	go func() {
		if err := msg.Push(); err != nil {
			t.log.Warning("notify: toast: %v", err)
		}
	}()
	return nil
}
