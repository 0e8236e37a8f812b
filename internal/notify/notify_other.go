//go:build !linux && !freebsd && !netbsd && !openbsd && !dragonfly && !darwin && !windows

package notify

import "github.com/warpdl/iback/pkg/logger"

func newPlatform(string, logger.Logger) (Notifier, error) {
	return nil, ErrUnsupported
}
