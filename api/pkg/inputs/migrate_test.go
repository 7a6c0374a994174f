package inputs

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlushMigrateDataClearsSrcFlag(t *testing.T) {
	c := NewChannel(&fakeCollab{}, slog.Default(), Config{})
	cl := NewClient(c)
	cl.Drain()
	cl.setMotionCount(7)

	c.BeginMigrateSrc()
	require.True(t, c.SrcDuringMigrate())

	c.FlushMigrateData(cl)
	assert.False(t, c.SrcDuringMigrate())

	items := cl.Drain()
	require.Len(t, items, 1)
	data, ok := items[0].(MigrateData)
	require.True(t, ok)
	assert.Equal(t, uint16(7), data.MotionCount)
	assert.Equal(t, migrateDataMagic, data.Magic)
}

func TestApplyMigrateDataRejectsBadHeader(t *testing.T) {
	c := NewChannel(&fakeCollab{}, slog.Default(), Config{})
	cl := NewClient(c)

	err := c.ApplyMigrateData(cl, MigrateData{Magic: 0xdeadbeef, Version: migrateDataVersion})
	assert.ErrorIs(t, err, ErrBadMigrationHeader)
}

func TestApplyMigrateDataReplaysOwedAcks(t *testing.T) {
	c := NewChannel(&fakeCollab{}, slog.Default(), Config{AckBunch: 4})
	cl := NewClient(c)
	cl.Drain()

	err := c.ApplyMigrateData(cl, MigrateData{
		Magic:       migrateDataMagic,
		Version:     migrateDataVersion,
		MotionCount: 10,
	})
	require.NoError(t, err)

	items := cl.Drain()
	var acks int
	for _, it := range items {
		if _, ok := it.(MouseMotionAck); ok {
			acks++
		}
	}
	assert.Equal(t, 2, acks, "10 motions / bunch-of-4 owes exactly 2 acks")
	assert.Equal(t, uint16(2), cl.MotionCount(), "remainder carries over after replay")
}

func TestApplyMigrateDataPushesLEDsImmediately(t *testing.T) {
	c := NewChannel(&fakeCollab{}, slog.Default(), Config{})
	kbd := &fakeKeyboard{leds: LedNumLock}
	require.NoError(t, c.AttachKeyboard(kbd))
	cl := NewClient(c)
	cl.Drain()

	require.NoError(t, c.ApplyMigrateData(cl, MigrateData{Magic: migrateDataMagic, Version: migrateDataVersion}))

	items := cl.Drain()
	found := false
	for _, it := range items {
		if km, ok := it.(KeyModifiers); ok {
			found = true
			assert.Equal(t, LedNumLock, km.Modifiers)
		}
	}
	assert.True(t, found)
}
