package inputs

// SPICE wire button masks.
const (
	ButtonLeft   uint8 = 0x01
	ButtonMiddle uint8 = 0x02
	ButtonRight  uint8 = 0x04
	ButtonUp     uint8 = 0x08
	ButtonDown   uint8 = 0x10
)

// vdagent wire button masks (distinct encoding from the local device masks).
const (
	agentLButton uint8 = 0x01
	agentMButton uint8 = 0x02
	agentRButton uint8 = 0x04
	agentUButton uint8 = 0x08
	agentDButton uint8 = 0x10
)

// MouseMode is the server-global pointer routing mode.
type MouseMode int

const (
	MouseModeServer MouseMode = iota
	MouseModeClient
)

// AgentMouseState is the vdagent wire representation of pointer state,
// cached on Channel and posted through ServerCollaborators.
type AgentMouseState struct {
	X, Y      int32
	Buttons   uint8
	DisplayID uint32
}

// ServerCollaborators is the narrow façade over the server-wide state the
// channel consults when routing pointer events: mouse mode,
// agent/vdagent availability, posting agent events, and pushing non-fatal
// notices to the client's main channel.
type ServerCollaborators interface {
	MouseMode() MouseMode
	AgentMouseActive() bool
	HasVDAgent() bool
	PostAgentMouse(state AgentMouseState)
	PushNotify(msg string)
}

// localMask converts a SPICE wire button mask into the local device-backend
// encoding: left stays put, middle moves into the right-button bit position
// and right moves into the middle-button bit position.
func localMask(state uint8) uint8 {
	return (state & ButtonLeft) |
		((state & ButtonMiddle) << 1) |
		((state & ButtonRight) >> 1)
}

// agentMask converts a SPICE wire button mask into the vdagent wire mask.
func agentMask(state uint8) uint8 {
	var out uint8
	if state&ButtonLeft != 0 {
		out |= agentLButton
	}
	if state&ButtonMiddle != 0 {
		out |= agentMButton
	}
	if state&ButtonRight != 0 {
		out |= agentRButton
	}
	return out
}

// routePosition implements the absolute-position routing table: agent
// dispatch takes priority when the vdagent is active, falling back to a
// bound tablet, all gated on client-mouse-mode being active.
func (c *Channel) routePosition(x, y int32, buttons uint8, displayID uint32) {
	if c.collab.MouseMode() != MouseModeClient {
		return
	}

	if c.collab.AgentMouseActive() && c.collab.HasVDAgent() {
		state := AgentMouseState{X: x, Y: y, Buttons: agentMask(buttons), DisplayID: displayID}
		c.lastAgentState = state
		c.collab.PostAgentMouse(state)
		return
	}

	if c.tablet != nil {
		c.tablet.Position(x, y, localMask(buttons))
		return
	}

	// A caller is expected to guarantee at least one of agent/tablet is
	// available in CLIENT mode; reaching here is a routing invariant
	// violation rather than a recoverable condition.
	if c.logger != nil {
		c.logger.Error("mouse position routed with neither agent nor tablet available", "error", ErrAssertion)
	}
}

// routePress implements the button/wheel press routing table. dz is -1
// for wheel-up, +1 for wheel-down, 0 for an ordinary button press.
func (c *Channel) routePress(dz int32, buttons uint8) {
	if c.collab.MouseMode() == MouseModeClient {
		if c.collab.AgentMouseActive() && c.collab.HasVDAgent() {
			state := c.lastAgentState
			state.Buttons = agentMask(buttons)
			if dz == -1 {
				state.Buttons |= agentUButton
			}
			if dz == 1 {
				state.Buttons |= agentDButton
			}
			c.lastAgentState = state
			c.collab.PostAgentMouse(state)
			return
		}
		if c.tablet != nil {
			c.tablet.Wheel(dz, localMask(buttons))
		}
		return
	}

	if c.mouse != nil {
		c.mouse.Motion(0, 0, dz, localMask(buttons))
	}
}

// routeRelease implements the button-release routing table.
func (c *Channel) routeRelease(buttons uint8) {
	if c.collab.MouseMode() == MouseModeClient {
		if c.collab.AgentMouseActive() && c.collab.HasVDAgent() {
			state := c.lastAgentState
			state.Buttons = agentMask(buttons)
			c.lastAgentState = state
			c.collab.PostAgentMouse(state)
			return
		}
		if c.tablet != nil {
			c.tablet.Buttons(localMask(buttons))
		}
		return
	}

	if c.mouse != nil {
		c.mouse.Buttons(localMask(buttons))
	}
}
