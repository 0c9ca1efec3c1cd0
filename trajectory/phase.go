// Package trajectory schedules multi-phase locomotion: phases with stance
// contacts, walk cycles repeating them, and assembly of the full
// constraint graph across phase boundaries.
package trajectory

import (
	"github.com/golang/geo/r3"

	"github.com/kinodynamics/kinodyn/dynamics"
)

// Phase is one stretch of a gait with a constant contact set. A phase is
// declared with its step count, configured by adding contact points, and
// sealed once a Trajectory consumes it. Sealing is one way only.
type Phase struct {
	numSteps     int
	contacts     []dynamics.ContactPoint
	instantiated bool
}

// NewPhase declares a phase lasting numSteps timesteps.
func NewPhase(numSteps int) (*Phase, error) {
	if numSteps < 1 {
		return nil, NewEmptyPhaseError()
	}
	return &Phase{numSteps: numSteps}, nil
}

// AddContactPoints marks each named link as in stance at the given offset
// and ground height. A link may carry at most one contact point per phase.
func (p *Phase) AddContactPoints(links []string, offset r3.Vector, height float64) error {
	if p.instantiated {
		return NewInstantiatedPhaseError()
	}
	for _, name := range links {
		for _, cp := range p.contacts {
			if cp.Link == name {
				return NewDuplicateContactError(name)
			}
		}
		p.contacts = append(p.contacts, dynamics.ContactPoint{Link: name, Offset: offset, Height: height})
	}
	return nil
}

// NumSteps returns the phase length in timesteps.
func (p *Phase) NumSteps() int { return p.numSteps }

// ContactPoints returns a copy of the phase's contact points.
func (p *Phase) ContactPoints() []dynamics.ContactPoint {
	return append([]dynamics.ContactPoint(nil), p.contacts...)
}

// Instantiated reports whether a trajectory has sealed this phase.
func (p *Phase) Instantiated() bool { return p.instantiated }

func (p *Phase) seal() { p.instantiated = true }

// WalkCycle is an ordered sequence of phases forming one gait period.
type WalkCycle struct {
	phases []*Phase
}

// NewWalkCycle orders phases into a cycle.
func NewWalkCycle(phases ...*Phase) (*WalkCycle, error) {
	if len(phases) == 0 {
		return nil, NewEmptyWalkCycleError()
	}
	return &WalkCycle{phases: append([]*Phase(nil), phases...)}, nil
}

// NumPhases returns the number of phases in one cycle.
func (w *WalkCycle) NumPhases() int { return len(w.phases) }

// Phases returns the phases in cycle order.
func (w *WalkCycle) Phases() []*Phase {
	return append([]*Phase(nil), w.phases...)
}
