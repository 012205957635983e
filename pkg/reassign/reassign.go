// Package reassign plans changes to a password's group placement and to the
// set of users it is shared with. Planning is pure; the store layer turns a
// plan into ledger steps.
package reassign

import "errors"

// ErrNoTransition is returned when a group change names neither a source
// nor a target group.
var ErrNoTransition = errors.New("group change requires a source or a target group")

// Transition is the kind of group change a request asks for.
type Transition int

const (
	Move Transition = iota + 1
	Attach
	Detach
)

func (t Transition) String() string {
	switch t {
	case Move:
		return "move"
	case Attach:
		return "attach"
	case Detach:
		return "detach"
	default:
		return "none"
	}
}

// GroupChange is a planned explicit group change.
type GroupChange struct {
	Transition Transition
	From       uint
	To         uint
}

// PlanChangeGroup maps the (from, to) pair of a group change request onto a
// transition. A nil pointer means the group is absent from the request.
func PlanChangeGroup(from, to *uint) (GroupChange, error) {
	switch {
	case from != nil && to != nil:
		return GroupChange{Transition: Move, From: *from, To: *to}, nil
	case to != nil:
		return GroupChange{Transition: Attach, To: *to}, nil
	case from != nil:
		return GroupChange{Transition: Detach, From: *from}, nil
	default:
		return GroupChange{}, ErrNoTransition
	}
}

// Group placement sentinels carried by the toGroupId field of an update.
const (
	KeepGroup int64 = -1
	Ungroup   int64 = -2
)

// PlacementAction is what an update does to the password's group link.
type PlacementAction int

const (
	PlacementNone PlacementAction = iota
	PlacementAttach
	PlacementSync
	PlacementDetach
)

// Placement is a planned group placement. GroupID is the target group for
// attach and sync, and the current group for detach.
type Placement struct {
	Action  PlacementAction
	GroupID uint
}

// PlanPlacement decides the group link change for an update, given the
// password's current group (nil when ungrouped) and the requested target.
// Positive targets move or assign, KeepGroup leaves the link alone and
// Ungroup removes it. Any other value is treated as KeepGroup.
func PlanPlacement(current *uint, target int64) Placement {
	if current == nil {
		if target > 0 {
			return Placement{Action: PlacementAttach, GroupID: uint(target)}
		}
		return Placement{Action: PlacementNone}
	}

	switch {
	case target > 0 && uint(target) != *current:
		return Placement{Action: PlacementSync, GroupID: uint(target)}
	case target == Ungroup:
		return Placement{Action: PlacementDetach, GroupID: *current}
	default:
		return Placement{Action: PlacementNone}
	}
}

// UserDiff is the planned change to a password's non-owner user links.
type UserDiff struct {
	Detach []uint
	Attach []uint
}

// Empty reports whether the diff changes nothing.
func (d UserDiff) Empty() bool {
	return len(d.Detach) == 0 && len(d.Attach) == 0
}

// DiffAllowedUsers compares the users currently linked to a password with
// the requested set. The acting user is dropped from both sides so their own
// link is never touched. Duplicates in requested are ignored; both result
// slices keep input order.
func DiffAllowedUsers(current, requested []uint, actorID uint) UserDiff {
	want := make(map[uint]bool, len(requested))
	for _, id := range requested {
		if id != actorID {
			want[id] = true
		}
	}

	have := make(map[uint]bool, len(current))
	var diff UserDiff
	for _, id := range current {
		if id == actorID || have[id] {
			continue
		}
		have[id] = true
		if !want[id] {
			diff.Detach = append(diff.Detach, id)
		}
	}

	seen := make(map[uint]bool, len(requested))
	for _, id := range requested {
		if id == actorID || have[id] || seen[id] {
			continue
		}
		seen[id] = true
		diff.Attach = append(diff.Attach, id)
	}

	return diff
}
