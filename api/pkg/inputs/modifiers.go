package inputs

import "time"

// Lock-key modifier bits, matching the wire encoding used by KEY_MODIFIERS
// and INPUTS_INIT.
const (
	LedScrollLock uint8 = 0x01
	LedNumLock    uint8 = 0x02
	LedCapsLock   uint8 = 0x04
)

// lockBit pairs a modifier bit with the scancode that toggles it, in the
// order they must be injected: scroll-lock, then num-lock, then caps-lock.
type lockBit struct {
	bit  uint8
	scan byte
}

var lockBits = [3]lockBit{
	{LedScrollLock, scrollLockScanCode},
	{LedNumLock, numLockScanCode},
	{LedCapsLock, capsLockScanCode},
}

// reconcileModifiers applies a client-reported desired LED state: for every
// lock bit that differs from the keyboard back-end's actual LED state, it
// synthesizes a press-then-release of that lock key so the guest keyboard's
// own LED state ends up matching what the client asked for. It then arms
// the reconcile watch so the resulting state gets pushed back to every
// client shortly after. With no keyboard attached it does nothing, and the
// watch is not armed.
func (c *Channel) reconcileModifiers(wanted uint8) {
	c.mu.Lock()
	kbd := c.keyboard
	if kbd == nil {
		c.mu.Unlock()
		return
	}
	actual := kbd.GetLEDs()
	c.mu.Unlock()

	for _, lb := range lockBits {
		if wanted&lb.bit == actual&lb.bit {
			continue
		}
		c.pushScan(lb.scan)
		c.pushScan(lb.scan | 0x80)
	}

	c.armModifiersWatch()
}

// armModifiersWatch (re-)starts the per-channel LED reconcile timer. Unlike
// the process-wide timer this began life as, it is scoped to the owning
// Channel, so two channels never race on the same timer.
func (c *Channel) armModifiersWatch() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ledTimer != nil {
		c.ledTimer.Stop()
	}
	c.ledTimer = time.AfterFunc(c.cfg.LEDTimerTTL, c.pushLEDsToClients)
}

// onKeyboardLEDsChange is the immediate-push callback a keyboard back-end
// invokes when its LED state changes for a reason other than a client
// request (e.g. the guest OS toggled caps-lock on its own). It bypasses the
// timer and pushes the new state to every client right away.
func (c *Channel) onKeyboardLEDsChange(leds uint8) {
	c.pushLEDsToClients()
}

// pushLEDsToClients enqueues a KEY_MODIFIERS pipe item, carrying the
// keyboard back-end's current LED byte, on every connected client. It is a
// no-op while this channel is the source side of an in-progress migration,
// since the destination channel owns client communication until the
// handoff completes.
func (c *Channel) pushLEDsToClients() {
	c.mu.Lock()
	if c.srcDuringMigrate {
		c.mu.Unlock()
		return
	}
	leds := c.keyboardLEDs()
	clients := make([]*Client, 0, len(c.clients))
	for cl := range c.clients {
		clients = append(clients, cl)
	}
	c.mu.Unlock()

	for _, cl := range clients {
		cl.enqueue(KeyModifiers{Modifiers: leds})
	}
}
