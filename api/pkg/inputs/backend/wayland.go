package backend

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bnema/wayland-virtual-input-go/virtual_keyboard"
	"github.com/bnema/wayland-virtual-input-go/virtual_pointer"
)

// Wayland drives input through zwlr_virtual_pointer_v1 and
// zwp_virtual_keyboard_v1, the wlroots virtual-input protocols. It needs no
// /dev/uinput access and no elevated privileges, unlike a uinput-backed
// device would.
type Wayland struct {
	pointerManager  *virtual_pointer.VirtualPointerManager
	pointer         *virtual_pointer.VirtualPointer
	keyboardManager *virtual_keyboard.VirtualKeyboardManager
	keyboard        *virtual_keyboard.VirtualKeyboard
	logger          *slog.Logger

	mu     sync.Mutex
	closed bool
	leds   uint8

	logicalX, logicalY int32
}

// NewWayland connects to the Wayland compositor and creates a virtual
// pointer and keyboard pair.
func NewWayland(logger *slog.Logger) (*Wayland, error) {
	ctx := context.Background()

	pointerManager, err := virtual_pointer.NewVirtualPointerManager(ctx)
	if err != nil {
		return nil, fmt.Errorf("create virtual pointer manager: %w", err)
	}
	pointer, err := pointerManager.CreatePointer()
	if err != nil {
		pointerManager.Close()
		return nil, fmt.Errorf("create virtual pointer: %w", err)
	}

	keyboardManager, err := virtual_keyboard.NewVirtualKeyboardManager(ctx)
	if err != nil {
		pointer.Close()
		pointerManager.Close()
		return nil, fmt.Errorf("create virtual keyboard manager: %w", err)
	}
	keyboard, err := keyboardManager.CreateKeyboard()
	if err != nil {
		keyboardManager.Close()
		pointer.Close()
		pointerManager.Close()
		return nil, fmt.Errorf("create virtual keyboard: %w", err)
	}

	return &Wayland{
		pointerManager:  pointerManager,
		pointer:         pointer,
		keyboardManager: keyboardManager,
		keyboard:        keyboard,
		logger:          logger,
	}, nil
}

// Close releases the virtual devices. Safe to call more than once.
func (w *Wayland) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	if err := w.keyboard.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := w.keyboardManager.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := w.pointer.Close(); err != nil {
		errs = append(errs, err)
	}
	if err := w.pointerManager.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// xtToEvdev converts an XT scancode-set-1 byte (press or release, high bit
// clear or set) into a Linux evdev keycode. XT codes 0x01–0x58 equal their
// evdev keycodes, so the low seven bits pass through unchanged; this covers
// the common range plus the three lock keys the channel's LED reconciler
// injects.
func xtToEvdev(scan byte) uint32 {
	return uint32(scan &^ 0x80)
}

// PushScan implements inputs.Keyboard.
func (w *Wayland) PushScan(scan byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}

	pressed := scan&0x80 == 0
	evdev := xtToEvdev(scan)
	state := virtual_keyboard.KeyStateReleased
	if pressed {
		state = virtual_keyboard.KeyStatePressed
	}
	if err := w.keyboard.Key(time.Now(), evdev, state); err != nil {
		w.logger.Warn("wayland key injection failed", "scan", scan, "error", err)
	}

	if !pressed {
		return
	}
	switch scan &^ 0x80 {
	case 0x3a:
		w.leds ^= 0x04
	case 0x45:
		w.leds ^= 0x02
	case 0x46:
		w.leds ^= 0x01
	}
}

// GetLEDs implements inputs.Keyboard, tracked locally since the virtual
// keyboard protocol carries no LED state back from the compositor.
func (w *Wayland) GetLEDs() uint8 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.leds
}

// Motion implements inputs.Mouse: the virtual pointer protocol only
// supports relative movement, so dx/dy map straight through.
func (w *Wayland) Motion(dx, dy, dz int32, buttons uint8) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if dx != 0 || dy != 0 {
		w.pointer.MoveRelative(float64(dx), float64(dy))
	}
	if dz != 0 {
		w.pointer.ScrollVertical(float64(dz))
	}
	w.pointer.Frame()
	w.applyButtonsLocked(buttons)
}

// Buttons implements inputs.Mouse and inputs.Tablet by diffing against no
// prior state — it unconditionally presses every bit set in buttons and
// releases every bit clear, which is safe because the virtual-pointer
// protocol's button events are idempotent per state.
func (w *Wayland) Buttons(buttons uint8) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	w.applyButtonsLocked(buttons)
}

func (w *Wayland) applyButtonsLocked(buttons uint8) {
	type bit struct {
		mask uint8
		btn  uint32
	}
	bits := [3]bit{
		{0x01, virtual_pointer.BTN_LEFT},
		{0x02, virtual_pointer.BTN_RIGHT},
		{0x04, virtual_pointer.BTN_MIDDLE},
	}
	for _, b := range bits {
		state := virtual_pointer.BUTTON_STATE_RELEASED
		if buttons&b.mask != 0 {
			state = virtual_pointer.BUTTON_STATE_PRESSED
		}
		w.pointer.Button(time.Now(), b.btn, state)
	}
	w.pointer.Frame()
}

// Position implements inputs.Tablet. The virtual pointer protocol has no
// absolute-motion request, so position is synthesized as relative movement
// from the last known logical coordinate, matching the desktop bridge this
// back-end is adapted from.
func (w *Wayland) Position(x, y int32, buttons uint8) {
	w.mu.Lock()
	dx := x - w.logicalX
	dy := y - w.logicalY
	w.logicalX, w.logicalY = x, y
	if w.closed {
		w.mu.Unlock()
		return
	}
	if dx != 0 || dy != 0 {
		w.pointer.MoveRelative(float64(dx), float64(dy))
		w.pointer.Frame()
	}
	w.mu.Unlock()

	w.Buttons(buttons)
}

// Wheel implements inputs.Tablet.
func (w *Wayland) Wheel(dz int32, buttons uint8) {
	w.mu.Lock()
	if !w.closed && dz != 0 {
		w.pointer.ScrollVertical(float64(dz))
		w.pointer.Frame()
	}
	w.mu.Unlock()

	w.Buttons(buttons)
}

// SetLogicalSize implements inputs.Tablet, establishing the coordinate
// space Position's relative-motion synthesis operates in.
func (w *Wayland) SetLogicalSize(xRes, yRes int32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.logicalX = xRes / 2
	w.logicalY = yRes / 2
}
