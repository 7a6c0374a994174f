// Package backend provides concrete Keyboard/Mouse/Tablet implementations
// that the inputs channel can attach: a GNOME RemoteDesktop D-Bus session
// and a Wayland virtual-input device.
package backend

import (
	"log/slog"
	"sync"

	"github.com/godbus/dbus/v5"
)

const (
	remoteDesktopBus          = "org.gnome.Mutter.RemoteDesktop"
	remoteDesktopSessionIface = "org.gnome.Mutter.RemoteDesktop.Session"
)

// DBusSession drives pointer and keyboard injection through a GNOME Mutter
// RemoteDesktop session. It implements inputs.Keyboard, inputs.Mouse and
// inputs.Tablet over the same underlying D-Bus session object.
type DBusSession struct {
	conn        *dbus.Conn
	sessionPath dbus.ObjectPath
	logger      *slog.Logger

	mu   sync.Mutex
	leds uint8
}

// NewDBusSession wraps an already-negotiated RemoteDesktop session. conn and
// sessionPath come from whatever establishes the session (CreateSession +
// Start over the org.gnome.Mutter.RemoteDesktop bus); this type only
// injects events into it.
func NewDBusSession(conn *dbus.Conn, sessionPath dbus.ObjectPath, logger *slog.Logger) *DBusSession {
	return &DBusSession{conn: conn, sessionPath: sessionPath, logger: logger}
}

func (d *DBusSession) session() dbus.BusObject {
	return d.conn.Object(remoteDesktopBus, d.sessionPath)
}

func (d *DBusSession) call(method string, args ...interface{}) {
	if err := d.session().Call(remoteDesktopSessionIface+"."+method, 0, args...).Err; err != nil {
		d.logger.Warn("remote desktop call failed", "method", method, "error", err)
	}
}

// PushScan implements inputs.Keyboard. RemoteDesktop's keycode injection
// takes a Linux evdev keycode and a press/release boolean rather than a raw
// XT scancode; the channel only ever calls this with scancode-set-1 bytes,
// so the byte itself (high bit clear means press) is what NotifyKeyboardKeycode
// is told about — callers that need true evdev semantics should route
// through a translation table before reaching this back-end.
func (d *DBusSession) PushScan(scan byte) {
	pressed := scan&0x80 == 0
	code := uint32(scan &^ 0x80)
	d.call("NotifyKeyboardKeycode", code, pressed)

	d.mu.Lock()
	switch code {
	case 0x3a: // caps lock
		if pressed {
			d.leds ^= 0x04
		}
	case 0x45: // num lock
		if pressed {
			d.leds ^= 0x02
		}
	case 0x46: // scroll lock
		if pressed {
			d.leds ^= 0x01
		}
	}
	d.mu.Unlock()
}

// GetLEDs implements inputs.Keyboard. RemoteDesktop exposes no LED query,
// so this back-end tracks toggles locally from the lock-key presses it has
// itself injected.
func (d *DBusSession) GetLEDs() uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.leds
}

// Motion implements inputs.Mouse: relative pointer movement plus a discrete
// wheel notch (dz), and the current button mask.
func (d *DBusSession) Motion(dx, dy, dz int32, buttons uint8) {
	if dx != 0 || dy != 0 {
		d.call("NotifyPointerMotion", float64(dx), float64(dy))
	}
	if dz != 0 {
		d.call("NotifyPointerAxisDiscrete", uint32(0), dz)
	}
	d.Buttons(buttons)
}

// Buttons implements both inputs.Mouse and inputs.Tablet by translating a
// local button mask into individual NotifyPointerButton calls. RemoteDesktop
// has no "set mask" call, only edge-triggered press/release, so a back-end
// purely reacting to mask changes would need the previous mask to diff
// against; channel-level Press/Release framing makes that unnecessary here.
func (d *DBusSession) Buttons(buttons uint8) {
	bits := [3]struct {
		mask uint8
		code int32
	}{
		{0x01, 0x110}, // BTN_LEFT
		{0x02, 0x111}, // BTN_RIGHT
		{0x04, 0x112}, // BTN_MIDDLE
	}
	for _, b := range bits {
		d.call("NotifyPointerButton", b.code, buttons&b.mask != 0)
	}
}

// Position implements inputs.Tablet: absolute pointer placement on a named
// stream, defaulting to the session's primary screen-cast stream.
func (d *DBusSession) Position(x, y int32, buttons uint8) {
	d.call("NotifyPointerMotionAbsolute", "", float64(x), float64(y))
	d.Buttons(buttons)
}

// Wheel implements inputs.Tablet.
func (d *DBusSession) Wheel(dz int32, buttons uint8) {
	if dz != 0 {
		d.call("NotifyPointerAxisDiscrete", uint32(0), dz)
	}
	d.Buttons(buttons)
}

// SetLogicalSize implements inputs.Tablet. RemoteDesktop absolute motion is
// already normalized to the stream's own resolution, so this is a no-op;
// it exists to satisfy the interface for callers that size tablets
// explicitly against a fixed virtual display.
func (d *DBusSession) SetLogicalSize(xRes, yRes int32) {}
