//go:build linux || freebsd || netbsd || openbsd || dragonfly

package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/warpdl/iback/pkg/logger"
)

const (
	dbusDest   = "org.freedesktop.Notifications"
	dbusPath   = "/org/freedesktop/Notifications"
	dbusNotify = dbusDest + ".Notify"

	urgencyNormal   byte = 1
	urgencyCritical byte = 2

	// expireDefault lets the server pick the timeout, expireNever keeps the
	// notification until it is dismissed.
	expireDefault int32 = -1
	expireNever   int32 = 0

	// Notify runs on the scheduler loop; a stuck notification service must
	// not stall it.
	defaultCallTimeout = 2 * time.Second
)

type desktopBus struct {
	app     string
	log     logger.Logger
	timeout time.Duration

	mu  sync.Mutex
	obj dbus.BusObject
	// connect is replaced in tests.
	connect func() (dbus.BusObject, error)
}

func newPlatform(appName string, log logger.Logger) (Notifier, error) {
	return &desktopBus{app: appName, log: log, timeout: defaultCallTimeout, connect: sessionObject}, nil
}

func sessionObject() (dbus.BusObject, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}
	return conn.Object(dbusDest, dbusPath), nil
}

// object connects on first use so that a missing session bus only matters
// once something is actually shown.
func (d *desktopBus) object() (dbus.BusObject, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.obj != nil {
		return d.obj, nil
	}
	obj, err := d.connect()
	if err != nil {
		return nil, err
	}
	d.obj = obj
	return obj, nil
}

func notifyHints(n Notification) (map[string]dbus.Variant, int32) {
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgencyNormal),
	}
	timeout := expireDefault
	if n.Wait {
		hints["urgency"] = dbus.MakeVariant(urgencyCritical)
		timeout = expireNever
	}
	if n.Sound {
		hints["sound-name"] = dbus.MakeVariant("message-new-instant")
	} else {
		hints["suppress-sound"] = dbus.MakeVariant(true)
	}
	return hints, timeout
}

func (d *desktopBus) Notify(n Notification) error {
	obj, err := d.object()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()
	hints, timeout := notifyHints(n)
	call := obj.CallWithContext(ctx, dbusNotify, 0,
		d.app,      // app_name
		uint32(0),  // replaces_id
		"",         // app_icon
		n.Title,    // summary
		n.Message,  // body
		[]string{}, // actions
		hints,
		timeout,
	)
	if call.Err != nil {
		return fmt.Errorf("dbus notify: %w", call.Err)
	}
	return nil
}
