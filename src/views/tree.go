package views

import (
	"slices"

	"github.com/samber/lo"
)

type CommentNode struct {
	Comment CommentView    `json:"comment"`
	Replies []*CommentNode `json:"replies,omitempty"`
}

func byID(a, b CommentView) int {
	switch {
	case a.id < b.id:
		return -1
	case a.id > b.id:
		return 1
	}
	return 0
}

// BuildCommentTree nests comments under their parents, each level ordered by id. A comment whose
// parent is not in the list is attached at the root. Every comment appears exactly once: a
// parent cycle is cut at its lowest id, which becomes a root.
func BuildCommentTree(comments []CommentView) []*CommentNode {
	sorted := slices.Clone(comments)
	slices.SortFunc(sorted, byID)

	known := lo.Associate(sorted, func(c CommentView) (uint64, bool) { return c.id, true })
	children := lo.GroupBy(lo.Filter(sorted, func(c CommentView, _ int) bool {
		return c.parentID != nil && known[*c.parentID] && *c.parentID != c.id
	}), func(c CommentView) uint64 { return *c.parentID })

	placed := make(map[uint64]bool, len(sorted))
	var build func(c CommentView) *CommentNode
	build = func(c CommentView) *CommentNode {
		placed[c.id] = true
		n := &CommentNode{Comment: c}
		for _, r := range children[c.id] {
			if !placed[r.id] {
				n.Replies = append(n.Replies, build(r))
			}
		}
		return n
	}

	var roots []*CommentNode
	for _, c := range sorted {
		if c.parentID == nil || !known[*c.parentID] || *c.parentID == c.id {
			roots = append(roots, build(c))
		}
	}
	// only cycles are left unplaced
	for _, c := range sorted {
		if !placed[c.id] {
			roots = append(roots, build(c))
		}
	}
	slices.SortFunc(roots, func(a, b *CommentNode) int { return byID(a.Comment, b.Comment) })
	return roots
}
