package inputs

// Mouse press button codes (distinct from the button bitmask carried
// alongside them): LEFT/MIDDLE/RIGHT identify which button changed state,
// UP/DOWN identify a wheel notch.
const (
	MouseButtonLeft   uint8 = 1
	MouseButtonMiddle uint8 = 2
	MouseButtonRight  uint8 = 3
	MouseButtonUp     uint8 = 4
	MouseButtonDown   uint8 = 5
)

// lockKey scancodes that arm the modifier watch on KEY_DOWN.
const (
	scrollLockScanCode byte = 0x46
	numLockScanCode    byte = 0x45
	capsLockScanCode   byte = 0x3a
)

// Handle parses and applies one client-originated message, delegating to
// the keyboard tracker, the mouse router, the motion-ack controller and the
// LED reconciler as appropriate.
//
// Per-message errors are local: Handle never tears the client down itself.
// The one exception is a message too large for the receive buffer, which
// ReadMessage already turns into ErrFatalMessage before Handle is reached.
func (c *Channel) Handle(cl *Client, msgType MsgType, payload []byte) error {
	switch msgType {
	case MsgKeyDown:
		code, err := parseKeyCode(payload)
		if err != nil {
			return err
		}
		if isLockKeyCode(code) {
			c.armModifiersWatch()
		}
		// Deliberate fall-through: KEY_DOWN emits the same scancode bytes as
		// KEY_UP. The only thing distinguishing DOWN from UP here is the
		// lock-key detection above; the byte itself (high bit set or clear)
		// already encodes press vs release.
		return c.handleKeyUp(code)

	case MsgKeyUp:
		code, err := parseKeyCode(payload)
		if err != nil {
			return err
		}
		return c.handleKeyUp(code)

	case MsgKeyScancode:
		for _, b := range payload {
			c.pushScan(b)
		}
		return nil

	case MsgMouseMotion:
		dx, dy, buttons, err := parseMouseMotion(payload)
		if err != nil {
			return err
		}
		if cl.bumpMotion() {
			cl.enqueue(MouseMotionAck{})
		}
		if c.mouse != nil && c.collab.MouseMode() == MouseModeServer {
			c.mouse.Motion(int32(dx), int32(dy), 0, localMask(buttons))
		}
		return nil

	case MsgMousePosition:
		x, y, buttons, displayID, err := parseMousePosition(payload)
		if err != nil {
			return err
		}
		if cl.bumpMotion() {
			cl.enqueue(MouseMotionAck{})
		}
		c.routePosition(x, y, buttons, displayID)
		return nil

	case MsgMousePress:
		button, buttons, err := parseMousePress(payload)
		if err != nil {
			return err
		}
		var dz int32
		switch button {
		case MouseButtonUp:
			dz = -1
		case MouseButtonDown:
			dz = 1
		}
		c.routePress(dz, buttons)
		return nil

	case MsgMouseRelease:
		buttons, err := parseMouseRelease(payload)
		if err != nil {
			return err
		}
		c.routeRelease(buttons)
		return nil

	case MsgKeyModifiers:
		modifiers, err := parseKeyModifiers(payload)
		if err != nil {
			return err
		}
		c.reconcileModifiers(modifiers)
		return nil

	case MsgDisconnecting:
		return nil

	default:
		// Unknown/other message types are the outer channel framework's
		// concern; there is nothing for the inputs core to do with them.
		return nil
	}
}

func (c *Channel) handleKeyUp(code uint32) error {
	for i := 0; i < 4; i++ {
		b := byte(code >> (8 * uint(i)))
		if b == 0 {
			break
		}
		c.pushScan(b)
	}
	return nil
}

func isLockKeyCode(code uint32) bool {
	switch byte(code) {
	case capsLockScanCode, numLockScanCode, scrollLockScanCode:
		return code <= 0xff
	default:
		return false
	}
}
