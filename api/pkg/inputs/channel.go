// Package inputs implements the server side of a SPICE-family inputs
// channel: it parses client keyboard/mouse/tablet messages, tracks keyboard
// scancode and LED state, routes pointer events to the right local
// back-end, and carries per-client state across live migration.
package inputs

import (
	"log/slog"
	"sync"
	"time"
)

// AckBunch is the number of motion/position messages between flow-control
// acknowledgements.
const AckBunch = 64

// ReceiveBufSize bounds incoming message size; oversize messages are a
// fatal channel-level error.
const ReceiveBufSize = 4096

// LEDTimerTTL is how long the modifier/LED reconcile timer waits before
// re-pushing LED state to every connected client.
const LEDTimerTTL = 2 * time.Second

// Config holds channel-wide tunables. Zero values are replaced with the
// package defaults by NewChannel's apply-defaults pattern.
type Config struct {
	AckBunch       uint16
	ReceiveBufSize int
	LEDTimerTTL    time.Duration
}

func (cfg Config) withDefaults() Config {
	if cfg.AckBunch == 0 {
		cfg.AckBunch = AckBunch
	}
	if cfg.ReceiveBufSize == 0 {
		cfg.ReceiveBufSize = ReceiveBufSize
	}
	if cfg.LEDTimerTTL == 0 {
		cfg.LEDTimerTTL = LEDTimerTTL
	}
	return cfg
}

// Channel is the process-wide (per SPICE server instance) inputs channel
// state: the bound device handles, the cached last-known agent mouse state,
// the migration flag, and the LED reconcile timer. One Channel is shared by
// every connected Client.
type Channel struct {
	mu sync.Mutex

	cfg    Config
	collab ServerCollaborators
	logger *slog.Logger

	keyboard Keyboard
	mouse    Mouse
	tablet   Tablet
	kbdState *keyboardState

	lastAgentState AgentMouseState

	srcDuringMigrate bool

	ledTimer *time.Timer

	clients map[*Client]struct{}
}

// NewChannel creates a Channel bound to the given server collaborators.
// logger may be nil, in which case logging is a no-op.
func NewChannel(collab ServerCollaborators, logger *slog.Logger, cfg Config) *Channel {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(discardWriter{}, nil))
	}
	return &Channel{
		cfg:     cfg.withDefaults(),
		collab:  collab,
		logger:  logger,
		clients: make(map[*Client]struct{}),
	}
}

// discardWriter discards everything written to it; used to make a no-op
// logger without reaching for a third dependency just to swallow log lines.
type discardWriter struct{}

func (discardWriter) Write(p []byte) (int, error) { return len(p), nil }

// SrcDuringMigrate reports whether this channel is currently the source
// side of a live migration in progress.
func (c *Channel) SrcDuringMigrate() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.srcDuringMigrate
}

// registerClient tracks a connected client so LED pushes can reach it.
func (c *Channel) registerClient(cl *Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clients[cl] = struct{}{}
}

// unregisterClient drops a disconnected client and releases any keys it
// left pressed via the keyboard back-end.
func (c *Channel) unregisterClient(cl *Client) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.clients, cl)
	if c.kbdState != nil {
		c.kbdState.releaseAll(c.keyboard)
	}
}

// Stop cancels the LED reconcile timer. Call on channel teardown.
func (c *Channel) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.ledTimer != nil {
		c.ledTimer.Stop()
	}
}
