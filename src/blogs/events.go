package blogs

import (
	"errors"
	"fmt"
	"strings"

	polkadot "github.com/stake-plus/df-blogs/src/polkadot-go"
)

var ErrNoCreatedEvent = errors.New("no Created event in transaction result")

// NewIDFromEvents recovers the id assigned by a create transaction. ProfileCreated carries the
// account as its only argument; every other *Created event carries (owner, id).
func NewIDFromEvents(events []polkadot.ChainEvent) (any, error) {
	for _, ev := range events {
		if strings.Contains(ev.Name, "ProfileCreated") {
			if len(ev.Args) < 1 {
				return nil, fmt.Errorf("%s: missing account argument", ev.Name)
			}
			return ev.Args[0], nil
		}
	}
	for _, ev := range events {
		if strings.Contains(ev.Name, "Created") {
			if len(ev.Args) < 2 {
				return nil, fmt.Errorf("%s: expected 2 arguments, got %d", ev.Name, len(ev.Args))
			}
			return ev.Args[1], nil
		}
	}
	return nil, ErrNoCreatedEvent
}

// NewEntityID is NewIDFromEvents for entities with numeric ids.
func NewEntityID(events []polkadot.ChainEvent) (uint64, error) {
	v, err := NewIDFromEvents(events)
	if err != nil {
		return 0, err
	}
	return polkadot.AsUint64(v)
}
