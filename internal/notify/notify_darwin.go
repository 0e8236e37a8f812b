//go:build darwin

package notify

import (
	"os/exec"

	"github.com/warpdl/iback/pkg/logger"
)

type osascript struct {
	log logger.Logger
}

func newPlatform(_ string, log logger.Logger) (Notifier, error) {
	if _, err := exec.LookPath("osascript"); err != nil {
		return nil, err
	}
	return &osascript{log: log}, nil
}

func (o *osascript) Notify(n Notification) error {
	cmd := exec.Command("osascript", "-e", appleScript(n))
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			o.log.Warning("notify: osascript: %v", err)
		}
	}()
	return nil
}
