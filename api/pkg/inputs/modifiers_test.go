package inputs

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReconcileModifiersInjectsDifferingLockKeys(t *testing.T) {
	c := NewChannel(&fakeCollab{}, slog.Default(), Config{LEDTimerTTL: time.Hour})
	kbd := &fakeKeyboard{leds: 0}
	require.NoError(t, c.AttachKeyboard(kbd))

	c.reconcileModifiers(LedCapsLock)

	require.Len(t, kbd.pushed, 2)
	assert.Equal(t, capsLockScanCode, kbd.pushed[0])
	assert.Equal(t, capsLockScanCode|0x80, kbd.pushed[1])
}

func TestReconcileModifiersNoopWhenAlreadyMatching(t *testing.T) {
	c := NewChannel(&fakeCollab{}, slog.Default(), Config{LEDTimerTTL: time.Hour})
	kbd := &fakeKeyboard{leds: LedNumLock}
	require.NoError(t, c.AttachKeyboard(kbd))

	c.reconcileModifiers(LedNumLock)
	assert.Empty(t, kbd.pushed)
}

func TestReconcileModifiersOrderIsScrollNumCaps(t *testing.T) {
	c := NewChannel(&fakeCollab{}, slog.Default(), Config{LEDTimerTTL: time.Hour})
	kbd := &fakeKeyboard{leds: 0}
	require.NoError(t, c.AttachKeyboard(kbd))

	c.reconcileModifiers(LedScrollLock | LedNumLock | LedCapsLock)

	require.Len(t, kbd.pushed, 6)
	assert.Equal(t, scrollLockScanCode, kbd.pushed[0])
	assert.Equal(t, numLockScanCode, kbd.pushed[2])
	assert.Equal(t, capsLockScanCode, kbd.pushed[4])
}

func TestPushLEDsToClientsSuppressedDuringSrcMigration(t *testing.T) {
	c := NewChannel(&fakeCollab{}, slog.Default(), Config{})
	kbd := &fakeKeyboard{leds: LedCapsLock}
	require.NoError(t, c.AttachKeyboard(kbd))
	cl := NewClient(c)
	cl.Drain()

	c.BeginMigrateSrc()
	c.pushLEDsToClients()
	assert.Empty(t, cl.Drain())
}

func TestOnKeyboardLEDsChangePushesImmediately(t *testing.T) {
	c := NewChannel(&fakeCollab{}, slog.Default(), Config{})
	kbd := &fakeKeyboard{leds: LedCapsLock}
	require.NoError(t, c.AttachKeyboard(kbd))
	cl := NewClient(c)
	cl.Drain()

	c.onKeyboardLEDsChange(kbd.leds)
	items := cl.Drain()
	require.Len(t, items, 1)
	km, ok := items[0].(KeyModifiers)
	require.True(t, ok)
	assert.Equal(t, LedCapsLock, km.Modifiers)
}
