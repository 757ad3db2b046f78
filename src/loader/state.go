package loader

import "fmt"

// State is where an entity is in the load cycle.
type State int

const (
	// Unresolved: the chain has not answered yet.
	Unresolved State = iota
	// Absent: the chain answered and the entity does not exist.
	Absent
	// Partial: the struct is known, its content is still being fetched.
	Partial
	// Full: struct and content are both known.
	Full
	// Failed: the struct is known (or the chain read failed) but content could not be fetched.
	Failed
)

func (s State) String() string {
	switch s {
	case Unresolved:
		return "loading"
	case Absent:
		return "not_found"
	case Partial:
		return "partial"
	case Full:
		return "full"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type ChainState int

const (
	ChainPending ChainState = iota
	ChainEmpty
	ChainPresent
)

type ContentState int

const (
	ContentPending ContentState = iota
	ContentResolved
	ContentFailed
)

// Resolve maps the chain and content states to the single state a view renders.
func Resolve(chain ChainState, content ContentState) State {
	switch chain {
	case ChainPending:
		return Unresolved
	case ChainEmpty:
		return Absent
	}
	switch content {
	case ContentResolved:
		return Full
	case ContentFailed:
		return Failed
	}
	return Partial
}
