package main

import (
	"log/slog"
	"sync"

	"github.com/redsgate/inputschannel/api/pkg/inputs"
)

// standaloneCollaborators is a minimal ServerCollaborators for inputsd
// running on its own, with no vdagent and no separate display server to
// coordinate mouse mode with: the pointer is always routed to whatever
// local back-end is attached, in SERVER mode, never CLIENT mode.
type standaloneCollaborators struct {
	logger *slog.Logger

	mu    sync.Mutex
	state inputs.AgentMouseState
}

func newStandaloneCollaborators(logger *slog.Logger) *standaloneCollaborators {
	return &standaloneCollaborators{logger: logger}
}

func (s *standaloneCollaborators) MouseMode() inputs.MouseMode { return inputs.MouseModeServer }
func (s *standaloneCollaborators) AgentMouseActive() bool      { return false }
func (s *standaloneCollaborators) HasVDAgent() bool            { return false }

func (s *standaloneCollaborators) PostAgentMouse(state inputs.AgentMouseState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

func (s *standaloneCollaborators) PushNotify(msg string) {
	if s.logger != nil {
		s.logger.Warn("inputs channel notice", "message", msg)
	}
}
