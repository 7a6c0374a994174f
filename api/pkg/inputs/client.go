package inputs

import (
	"errors"
	"log/slog"
	"net"
	"sync"
	"syscall"

	"github.com/google/uuid"
)

// Client is one connected viewer's channel state: a reference to the shared
// Channel, the motion-ack counter, and the outbound pipe.
type Client struct {
	id      uuid.UUID
	channel *Channel
	logger  *slog.Logger

	mu          sync.Mutex
	motionCount uint16
	pipe        []PipeItem
}

// NewClient registers a new viewer on channel and enqueues the initial
// INPUTS_INIT pipe item carrying the current LED state.
func NewClient(channel *Channel) *Client {
	cl := &Client{
		id:      uuid.New(),
		channel: channel,
		logger:  channel.logger,
	}
	channel.registerClient(cl)
	cl.enqueue(InputsInit{Modifiers: channel.keyboardLEDs()})
	return cl
}

// ID returns the client's connection identifier.
func (cl *Client) ID() uuid.UUID {
	return cl.id
}

// Disconnect releases every key this client's channel still sees as
// pressed and stops tracking the client. Idempotent per Client instance is
// not guaranteed; callers must call it exactly once, on connection close.
func (cl *Client) Disconnect() {
	cl.channel.unregisterClient(cl)
	cl.logger.Debug("client disconnected", "client", cl.id)
}

// bumpMotion implements the motion-ack flow controller: it increments
// motion_count on every MOTION/POSITION message and reports
// whether a MOTION_ACK should be enqueued. The reset to zero on a bunch
// boundary is unconditional; the ack itself is suppressed while the
// channel is the source of an in-progress migration.
func (cl *Client) bumpMotion() bool {
	cl.mu.Lock()
	defer cl.mu.Unlock()

	cl.motionCount++
	if cl.motionCount%cl.channel.cfg.AckBunch != 0 {
		return false
	}
	cl.motionCount = 0
	return !cl.channel.SrcDuringMigrate()
}

// MotionCount returns the current flow-control counter, primarily for tests
// and migration state transfer.
func (cl *Client) MotionCount() uint16 {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	return cl.motionCount
}

func (cl *Client) setMotionCount(v uint16) {
	cl.mu.Lock()
	defer cl.mu.Unlock()
	cl.motionCount = v
}

// ConfigureSocket applies TCP_NODELAY to a freshly accepted connection. A
// setsockopt failure is only treated as fatal when the platform actually
// refused the option; ENOTSUP and ENOPROTOOPT (the "this platform doesn't
// have that knob" cases) are tolerated.
func ConfigureSocket(conn *net.TCPConn) error {
	err := conn.SetNoDelay(true)
	if err == nil {
		return nil
	}
	if errors.Is(err, syscall.ENOTSUP) || errors.Is(err, syscall.ENOPROTOOPT) {
		return nil
	}
	return err
}
