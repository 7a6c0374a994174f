package inputs

// Migration header constants, carried verbatim across a live migration
// handoff so the destination can reject a stream that isn't actually an
// inputs-channel migration payload.
const (
	migrateDataMagic   uint32 = 0x4b5a4c47
	migrateDataVersion uint32 = 1
)

// BeginMigrateSrc marks this channel as the source side of an in-progress
// migration: LED pushes are suppressed and flow-control acks stop going out
// to clients until the destination takes over.
func (c *Channel) BeginMigrateSrc() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.srcDuringMigrate = true
}

// FlushMigrateData enqueues the migration handoff payload for cl: the
// current motion-ack counter, wrapped in the header the destination
// validates. Once enqueued, this channel's source-side migration flag is
// cleared — the client is about to start talking to the destination, so
// there is nothing left here to suppress.
func (c *Channel) FlushMigrateData(cl *Client) {
	item := MigrateData{
		Magic:       migrateDataMagic,
		Version:     migrateDataVersion,
		MotionCount: cl.MotionCount(),
	}
	cl.enqueue(item)

	c.mu.Lock()
	c.srcDuringMigrate = false
	c.mu.Unlock()
}

// ApplyMigrateData validates and applies an incoming migration payload on
// the destination side: it restores the client's motion-ack counter,
// pushes the current LED state immediately (the client's view of LEDs is
// stale until this happens), and replays any ack bunches the counter
// implies were already owed before the handoff.
func (c *Channel) ApplyMigrateData(cl *Client, data MigrateData) error {
	if data.Magic != migrateDataMagic || data.Version != migrateDataVersion {
		return ErrBadMigrationHeader
	}

	cl.setMotionCount(data.MotionCount)
	c.onKeyboardLEDsChange(c.keyboardLEDs())

	count := data.MotionCount
	for count >= c.cfg.AckBunch {
		cl.enqueue(MouseMotionAck{})
		count -= c.cfg.AckBunch
	}
	cl.setMotionCount(count)

	return nil
}
