//go:build linux

package discovery

import (
	"os"
	"strings"

	"github.com/godbus/dbus/v5"
)

const (
	portalObjectName    = "org.freedesktop.portal.Desktop"
	portalObjectPath    = "/org/freedesktop/portal/desktop"
	portalPropertiesGet = "org.freedesktop.DBus.Properties.Get"
	screencastInterface = "org.freedesktop.portal.ScreenCast"
)

// waylandSession reports whether the current session compositor is Wayland,
// where x11grab cannot capture. Capture there would go through the
// xdg-desktop-portal ScreenCast interface, which needs compositor-side frame
// delivery and is out of scope; we only detect and report it.
func waylandSession() bool {
	return strings.EqualFold(strings.TrimSpace(os.Getenv("XDG_SESSION_TYPE")), "wayland")
}

// screencastPortalVersion queries the ScreenCast portal version over the
// session bus, for diagnostics when a Wayland session is detected. Returns 0
// when the portal (or the bus) is absent.
func screencastPortalVersion() uint32 {
	conn, err := dbus.SessionBus()
	if err != nil {
		return 0
	}

	obj := conn.Object(portalObjectName, dbus.ObjectPath(portalObjectPath))
	call := obj.Call(portalPropertiesGet, 0, screencastInterface, "version")
	if call.Err != nil {
		return 0
	}

	var value any
	if err := call.Store(&value); err != nil {
		return 0
	}
	if v, ok := value.(uint32); ok {
		return v
	}
	return 0
}
