// Package migration implements a transactional orchestrator that moves an
// OriginalsAsset across layers through an explicit state machine, with
// checkpoint/rollback and an append-only audit trail.
package migration

import "go.originals.dev/sdk/internal/errors"

// State is one node of the migration state machine.
type State string

const (
	Pending      State = "pending"
	Validating   State = "validating"
	Checkpointed State = "checkpointed"
	InProgress   State = "in_progress"
	Anchoring    State = "anchoring"
	Completed    State = "completed"
	Failed       State = "failed"
	RolledBack   State = "rolled_back"
	Quarantined  State = "quarantined"
)

// terminal holds the states a migration cannot leave.
var terminal = map[State]bool{
	Completed:   true,
	RolledBack:  true,
	Quarantined: true,
}

// adjacency is the state machine's transition table.
var adjacency = map[State][]State{
	Pending:      {Validating},
	Validating:   {Checkpointed, Failed},
	Checkpointed: {InProgress, Failed},
	InProgress:   {Anchoring, Completed, Failed},
	Anchoring:    {Completed, Failed},
	Failed:       {RolledBack, Quarantined},
	Completed:    {},
	RolledBack:   {},
	Quarantined:  {},
}

// IsTerminal reports whether state has no outgoing transitions.
func IsTerminal(state State) bool { return terminal[state] }

// GetValidTransitions returns a defensive copy of the states reachable from
// state in one step, so callers can never mutate the machine's adjacency map.
func GetValidTransitions(state State) []State {
	src := adjacency[state]
	out := make([]State, len(src))
	copy(out, src)
	return out
}

// CheckStateTransition reports an InvalidTransition error unless from->to
// appears in the state machine's adjacency map.
func CheckStateTransition(from, to State) error {
	for _, allowed := range adjacency[from] {
		if allowed == to {
			return nil
		}
	}
	return errors.InvalidTransitionErr("migration cannot move from state %q to %q", from, to)
}
