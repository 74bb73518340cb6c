//go:build linux

package platform

import (
	"github.com/godbus/dbus/v5"
)

// Notify sends a desktop notification through org.freedesktop.Notifications
// and returns the id the daemon assigned to it.
func Notify(title, body string, opts Options) (uint32, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return 0, err
	}
	defer conn.Close()

	obj := conn.Object("org.freedesktop.Notifications", "/org/freedesktop/Notifications")
	var id uint32
	err = obj.Call("org.freedesktop.Notifications.Notify", 0,
		AppName, opts.ReplacesID, opts.IconPath, title, body, []string{}, map[string]dbus.Variant{}, opts.timeout()).Store(&id)
	return id, err
}
