package pipeline

import "fmt"

// State is the position of a pipeline run.
type State string

const (
	StateIdle         State = "IDLE"
	StateInstallDeps  State = "INSTALL_DEPS"
	StateInitVCS      State = "INIT_VCS"
	StateBuildImage   State = "BUILD_IMAGE"
	StateRunContainer State = "RUN_CONTAINER"
	StateRunTests     State = "RUN_TESTS"
	StateDone         State = "DONE"
	StateAborted      State = "ABORTED"
)

// IsTerminal reports whether the state is terminal (finished).
func IsTerminal(s State) bool {
	return s == StateDone || s == StateAborted
}

// next lists the single forward successor of each non-terminal state.
var next = map[State]State{
	StateIdle:         StateInstallDeps,
	StateInstallDeps:  StateInitVCS,
	StateInitVCS:      StateBuildImage,
	StateBuildImage:   StateRunContainer,
	StateRunContainer: StateRunTests,
	StateRunTests:     StateDone,
}

// Transition validates and performs from -> to on *cur.
//
// The caller supplies the expected prior state (from) so stale callers are
// caught. Any non-terminal state may move to its successor or to
// StateAborted; terminal states never move.
func Transition(cur *State, from, to State) error {
	if *cur != from {
		return fmt.Errorf("invalid transition: expected %s, got %s", from, *cur)
	}
	if !isAllowedTransition(from, to) {
		return fmt.Errorf("disallowed transition: %s -> %s", from, to)
	}
	*cur = to
	return nil
}

func isAllowedTransition(from, to State) bool {
	if IsTerminal(from) {
		return false
	}
	if to == StateAborted {
		return true
	}
	return next[from] == to
}
