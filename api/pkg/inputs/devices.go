package inputs

// Keyboard is the capability surface a local keyboard back-end exposes to
// the channel.
type Keyboard interface {
	PushScan(scan byte)
	GetLEDs() uint8
}

// Mouse is the relative-motion back-end used in SERVER mouse mode.
type Mouse interface {
	Motion(dx, dy, dz int32, buttons uint8)
	Buttons(buttons uint8)
}

// Tablet is the absolute-position back-end used in CLIENT mouse mode when
// no vdagent is available.
type Tablet interface {
	Position(x, y int32, buttons uint8)
	Wheel(dz int32, buttons uint8)
	Buttons(buttons uint8)
	SetLogicalSize(xRes, yRes int32)
}

// AttachKeyboard binds a keyboard back-end, creating its tracked-key state.
// Returns ErrAlreadyBound if a keyboard is already attached.
func (c *Channel) AttachKeyboard(kbd Keyboard) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.keyboard != nil {
		return ErrAlreadyBound
	}
	c.keyboard = kbd
	c.kbdState = newKeyboardState()
	return nil
}

// AttachMouse binds a relative-mouse back-end.
func (c *Channel) AttachMouse(m Mouse) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mouse != nil {
		return ErrAlreadyBound
	}
	c.mouse = m
	return nil
}

// AttachTablet binds a tablet back-end.
func (c *Channel) AttachTablet(t Tablet) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.tablet != nil {
		return ErrAlreadyBound
	}
	c.tablet = t
	return nil
}

// DetachTablet clears the tablet handle. Idempotent: detaching an absent
// tablet is a no-op, and a detached tablet may be reattached later.
func (c *Channel) DetachTablet() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tablet = nil
}

// HasTablet reports whether a tablet back-end is currently attached.
func (c *Channel) HasTablet() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tablet != nil
}

// keyboardLEDs returns the current LED byte, or 0 if no keyboard is attached.
func (c *Channel) keyboardLEDs() uint8 {
	if c.keyboard == nil {
		return 0
	}
	return c.keyboard.GetLEDs()
}

// pushScan forwards a scancode both to the tracker and the back-end, and is
// a silent no-op when no keyboard is attached.
func (c *Channel) pushScan(scan byte) {
	if c.keyboard == nil {
		return
	}
	c.kbdState.PushScan(scan)
	c.keyboard.PushScan(scan)
}
