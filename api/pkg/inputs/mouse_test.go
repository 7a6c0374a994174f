package inputs

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMouse struct {
	dx, dy, dz int32
	buttons    uint8
	calls      int
}

func (m *fakeMouse) Motion(dx, dy, dz int32, buttons uint8) {
	m.dx, m.dy, m.dz, m.buttons = dx, dy, dz, buttons
	m.calls++
}
func (m *fakeMouse) Buttons(buttons uint8) { m.buttons = buttons; m.calls++ }

type fakeTablet struct {
	x, y, dz int32
	buttons  uint8
	calls    int
}

func (t *fakeTablet) Position(x, y int32, buttons uint8) {
	t.x, t.y, t.buttons = x, y, buttons
	t.calls++
}
func (t *fakeTablet) Wheel(dz int32, buttons uint8) { t.dz, t.buttons = dz, buttons; t.calls++ }
func (t *fakeTablet) Buttons(buttons uint8)         { t.buttons = buttons; t.calls++ }
func (t *fakeTablet) SetLogicalSize(xRes, yRes int32) {}

type fakeCollab struct {
	mode          MouseMode
	agentActive   bool
	hasVDAgent    bool
	posted        []AgentMouseState
	notifications []string
}

func (f *fakeCollab) MouseMode() MouseMode      { return f.mode }
func (f *fakeCollab) AgentMouseActive() bool    { return f.agentActive }
func (f *fakeCollab) HasVDAgent() bool          { return f.hasVDAgent }
func (f *fakeCollab) PostAgentMouse(s AgentMouseState) {
	f.posted = append(f.posted, s)
}
func (f *fakeCollab) PushNotify(msg string) { f.notifications = append(f.notifications, msg) }

func newTestChannel(collab ServerCollaborators) *Channel {
	return NewChannel(collab, slog.Default(), Config{})
}

func TestRoutePositionServerModeIgnored(t *testing.T) {
	collab := &fakeCollab{mode: MouseModeServer}
	c := newTestChannel(collab)
	tablet := &fakeTablet{}
	require.NoError(t, c.AttachTablet(tablet))

	c.routePosition(10, 20, ButtonLeft, 0)
	assert.Zero(t, tablet.calls, "position routing only applies in client mouse mode")
}

func TestRoutePositionToAgent(t *testing.T) {
	collab := &fakeCollab{mode: MouseModeClient, agentActive: true, hasVDAgent: true}
	c := newTestChannel(collab)

	c.routePosition(100, 200, ButtonLeft|ButtonRight, 3)
	require.Len(t, collab.posted, 1)
	assert.Equal(t, int32(100), collab.posted[0].X)
	assert.Equal(t, int32(200), collab.posted[0].Y)
	assert.Equal(t, uint32(3), collab.posted[0].DisplayID)
	assert.Equal(t, agentLButton|agentRButton, collab.posted[0].Buttons)
}

func TestRoutePositionToTabletWhenNoAgent(t *testing.T) {
	collab := &fakeCollab{mode: MouseModeClient}
	c := newTestChannel(collab)
	tablet := &fakeTablet{}
	require.NoError(t, c.AttachTablet(tablet))

	c.routePosition(5, 6, ButtonMiddle, 0)
	require.Equal(t, 1, tablet.calls)
	assert.Equal(t, localMask(ButtonMiddle), tablet.buttons)
}

func TestRoutePressServerModeGoesToMouse(t *testing.T) {
	collab := &fakeCollab{mode: MouseModeServer}
	c := newTestChannel(collab)
	mouse := &fakeMouse{}
	require.NoError(t, c.AttachMouse(mouse))

	c.routePress(-1, ButtonLeft)
	require.Equal(t, 1, mouse.calls)
	assert.Equal(t, int32(-1), mouse.dz)
}

func TestRouteReleaseClientModeAgent(t *testing.T) {
	collab := &fakeCollab{mode: MouseModeClient, agentActive: true, hasVDAgent: true}
	c := newTestChannel(collab)

	c.routeRelease(0)
	require.Len(t, collab.posted, 1)
	assert.Zero(t, collab.posted[0].Buttons)
}

func TestLocalMaskSwapsMiddleAndRight(t *testing.T) {
	assert.Equal(t, ButtonLeft, localMask(ButtonLeft))
	assert.Equal(t, ButtonRight, localMask(ButtonMiddle))
	assert.Equal(t, ButtonMiddle, localMask(ButtonRight))
}

func TestAgentMaskRoundTripsKnownBits(t *testing.T) {
	in := ButtonLeft | ButtonMiddle | ButtonRight
	out := agentMask(in)
	assert.Equal(t, agentLButton|agentMButton|agentRButton, out)
}
