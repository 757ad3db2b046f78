package views

import (
	"fmt"
	"strings"

	"github.com/stake-plus/df-blogs/src/blogs"
)

// Mode is the granularity an entity is rendered at.
type Mode int

const (
	NameOnly Mode = iota
	Preview
	Detail
)

func (m Mode) String() string {
	switch m {
	case NameOnly:
		return "name"
	case Preview:
		return "preview"
	case Detail:
		return "detail"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode accepts name, preview or detail. An empty string means Detail.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "detail":
		return Detail, nil
	case "preview":
		return Preview, nil
	case "name", "nameonly", "name-only":
		return NameOnly, nil
	}
	return 0, fmt.Errorf("unknown view mode %q", s)
}

// Viewer is the account looking at a view. The zero Viewer is anonymous.
type Viewer struct {
	Account    blogs.AccountID
	SS58Prefix uint16
	signedIn   bool
}

func Anonymous(prefix uint16) Viewer {
	return Viewer{SS58Prefix: prefix}
}

func As(acc blogs.AccountID, prefix uint16) Viewer {
	return Viewer{Account: acc, SS58Prefix: prefix, signedIn: true}
}

func (v Viewer) SignedIn() bool { return v.signedIn }

// Owns reports whether the viewer is acc.
func (v Viewer) Owns(acc blogs.AccountID) bool {
	return v.signedIn && v.Account == acc
}

func (v Viewer) address(acc blogs.AccountID) string {
	return acc.Address(v.SS58Prefix)
}
