package scene

import (
	"time"

	"github.com/matzehuels/graphscope/pkg/errors"
	"github.com/matzehuels/graphscope/pkg/events"
	"github.com/matzehuels/graphscope/pkg/observability"
)

// FrameInterval is the frame period used by Tick-driven hosts.
const FrameInterval = 16 * time.Millisecond

// Run starts the frame loop and publishes core:run. With noLayout the
// layout is treated as converged immediately.
func (s *Scene) Run(noLayout bool) error {
	if err := s.guard("Run"); err != nil {
		return err
	}
	s.running = true
	s.layoutStopped = noLayout
	s.requestFrame()
	s.bus.CoreRun.Publish(events.Signal{})
	if noLayout {
		s.StopLayout()
	}
	return nil
}

// Stop halts the loop and cancels the pending frame request.
func (s *Scene) Stop() {
	s.running = false
	s.cancelFrame()
}

// StopLayout stops stepping the layout and publishes layout:ready.
func (s *Scene) StopLayout() {
	if s.destroyed {
		return
	}
	s.layoutStopped = true
	s.bus.LayoutReady.Publish(events.Signal{})
}

// Frame advances the scheduler to now: due timers fire, then the frames
// requested before the call run.
func (s *Scene) Frame(now time.Time) error {
	if s.destroyed {
		return errors.Destroyed("scene", "Frame")
	}
	s.sched.Advance(now)
	return nil
}

// Tick advances the scheduler by d.
func (s *Scene) Tick(d time.Duration) error {
	return s.Frame(s.sched.Now().Add(d))
}

// Converge ticks until the layout has stopped and the viewport has
// settled, or maxFrames frames have run. It reports whether both happened.
func (s *Scene) Converge(maxFrames int) (bool, error) {
	for i := 0; i < maxFrames; i++ {
		if s.layoutStopped && !s.view.Animating() && !s.view.SettlePending() {
			return true, nil
		}
		if err := s.Tick(FrameInterval); err != nil {
			return false, err
		}
	}
	return s.layoutStopped && !s.view.Animating() && !s.view.SettlePending(), nil
}

// Suspend pauses the loop; the pending frame is cancelled. Calls nest.
func (s *Scene) Suspend() {
	s.suspended++
	s.cancelFrame()
}

// Resume undoes one Suspend and requests a frame when the loop is running.
func (s *Scene) Resume() {
	if s.suspended > 0 {
		s.suspended--
	}
	if s.suspended == 0 && s.running {
		s.requestFrame()
	}
}

// RenderFrame renders without a physics step. Animated camera moves call it
// while the loop is suspended.
func (s *Scene) RenderFrame(now time.Time) {
	s.bus.ViewFrame.Publish(events.Frame{Time: now})
}

func (s *Scene) requestFrame() {
	if s.framePending || s.suspended > 0 {
		return
	}
	s.frame = s.sched.RequestFrame(s.run)
	s.framePending = true
}

func (s *Scene) cancelFrame() {
	if !s.framePending {
		return
	}
	s.sched.CancelFrame(s.frame)
	s.framePending = false
}

// run is one iteration of the loop: layout step, position refresh,
// nodes:moved, then view:frame.
func (s *Scene) run(now time.Time) {
	s.framePending = false
	if !s.running || s.suspended > 0 {
		return
	}
	start := time.Now()
	s.requestFrame()

	moved := 0
	if !s.layoutStopped && s.layout != nil {
		converged := s.layout.Step()
		ids := s.refreshPositions()
		moved = len(ids)
		if moved > 0 {
			s.bus.NodesMoved.Publish(events.Moved{IDs: ids})
		}
		if converged {
			s.StopLayout()
		}
	}
	s.RenderFrame(now)
	observability.View().OnFrame(time.Since(start), moved)
}

// refreshPositions copies layout positions into the entity store and
// returns the ids that changed, sorted. Dragged nodes keep their pinned
// position.
func (s *Scene) refreshPositions() []string {
	var moved []string
	for _, id := range s.NodeIDs() {
		if s.dragging[id] > 0 {
			continue
		}
		st := s.nodes[id]
		p, ok := s.layout.NodePosition(id)
		if !ok || p == st.pos {
			continue
		}
		st.pos = p
		moved = append(moved, id)
	}
	return moved
}
