package inputs

import (
	"bytes"
	"encoding/binary"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyCodePayload(code uint32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, code)
	return b
}

func TestHandleKeyDownFallsThroughToKeyUp(t *testing.T) {
	c := NewChannel(&fakeCollab{}, slog.Default(), Config{})
	kbd := &fakeKeyboard{}
	require.NoError(t, c.AttachKeyboard(kbd))
	cl := NewClient(c)

	require.NoError(t, c.Handle(cl, MsgKeyDown, keyCodePayload(0x1e)))
	require.NoError(t, c.Handle(cl, MsgKeyUp, keyCodePayload(0x9e)))

	assert.Equal(t, []byte{0x1e, 0x9e}, kbd.pushed,
		"KEY_DOWN and KEY_UP both push scancode bytes through the same path")
}

func TestHandleKeyDownArmsModifiersWatchOnLockKey(t *testing.T) {
	c := NewChannel(&fakeCollab{}, slog.Default(), Config{LEDTimerTTL: time.Millisecond})
	kbd := &fakeKeyboard{}
	require.NoError(t, c.AttachKeyboard(kbd))
	cl := NewClient(c)

	require.NoError(t, c.Handle(cl, MsgKeyDown, keyCodePayload(uint32(capsLockScanCode))))

	c.mu.Lock()
	timerArmed := c.ledTimer != nil
	c.mu.Unlock()
	assert.True(t, timerArmed, "pressing a lock key must arm the LED reconcile watch")
}

func TestHandleKeyScancodeForwardsEveryByte(t *testing.T) {
	c := NewChannel(&fakeCollab{}, slog.Default(), Config{})
	kbd := &fakeKeyboard{}
	require.NoError(t, c.AttachKeyboard(kbd))
	cl := NewClient(c)

	require.NoError(t, c.Handle(cl, MsgKeyScancode, []byte{0xe0, 0x48}))
	assert.Equal(t, []byte{0xe0, 0x48}, kbd.pushed)
}

func TestHandleMouseMotionEnqueuesAckOnBunchBoundary(t *testing.T) {
	c := NewChannel(&fakeCollab{mode: MouseModeServer}, slog.Default(), Config{AckBunch: 1})
	mouse := &fakeMouse{}
	require.NoError(t, c.AttachMouse(mouse))
	cl := NewClient(c)
	cl.Drain() // discard INPUTS_INIT

	motion := []byte{0x01, 0x00, 0x01, 0x00, byte(ButtonLeft)}
	require.NoError(t, c.Handle(cl, MsgMouseMotion, motion))

	items := cl.Drain()
	require.Len(t, items, 1)
	_, ok := items[0].(MouseMotionAck)
	assert.True(t, ok)
	assert.Equal(t, int32(1), mouse.dx)
}

func TestHandleMousePressWheelDirection(t *testing.T) {
	c := NewChannel(&fakeCollab{mode: MouseModeServer}, slog.Default(), Config{})
	mouse := &fakeMouse{}
	require.NoError(t, c.AttachMouse(mouse))
	cl := NewClient(c)

	require.NoError(t, c.Handle(cl, MsgMousePress, []byte{MouseButtonUp, 0}))
	assert.Equal(t, int32(-1), mouse.dz)

	require.NoError(t, c.Handle(cl, MsgMousePress, []byte{MouseButtonDown, 0}))
	assert.Equal(t, int32(1), mouse.dz)
}

func TestReadMessageFatalOversizeNeverReachesHandle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, MsgKeyScancode, make([]byte, 10)))

	_, _, err := ReadMessage(&buf, 4)
	assert.ErrorIs(t, err, ErrFatalMessage)
}
