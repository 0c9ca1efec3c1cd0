package trajectory

import "github.com/pkg/errors"

// NewEmptyPhaseError is returned for phases with no timesteps.
func NewEmptyPhaseError() error {
	return errors.New("a phase needs at least one timestep")
}

// NewInstantiatedPhaseError is returned when a phase is modified after a
// trajectory consumed it.
func NewInstantiatedPhaseError() error {
	return errors.New("phase already belongs to a trajectory and cannot change")
}

// NewEmptyWalkCycleError is returned for walk cycles with no phases.
func NewEmptyWalkCycleError() error {
	return errors.New("a walk cycle needs at least one phase")
}

// NewRepeatCountError is returned for non-positive repetition counts.
func NewRepeatCountError(n int) error {
	return errors.Errorf("walk cycle repetition count must be positive, got %d", n)
}

// NewDuplicateContactError is returned when a link gains a second contact
// point within one phase.
func NewDuplicateContactError(link string) error {
	return errors.Errorf("link %q already has a contact point in this phase", link)
}

// NewPhaseIndexError is returned for out-of-range phase indices.
func NewPhaseIndexError(p, n int) error {
	return errors.Errorf("phase index %d out of range, trajectory has %d phases", p, n)
}
