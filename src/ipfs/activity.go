package ipfs

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Activity event names produced by the off-chain indexer.
const (
	AccountFollowed        = "AccountFollowed"
	BlogFollowed           = "BlogFollowed"
	BlogCreated            = "BlogCreated"
	CommentCreated         = "CommentCreated"
	PostShared             = "PostShared"
	PostReactionCreated    = "PostReactionCreated"
	CommentReactionCreated = "CommentReactionCreated"
)

// DefaultActivityLimit is the page size used by feed and notification views.
const DefaultActivityLimit = 20

// Activity is one record of the feed or notifications stream. Entity ids are hex without 0x.
type Activity struct {
	ID        string    `json:"id"`
	Account   string    `json:"account"`
	Event     string    `json:"event"`
	Date      time.Time `json:"date"`
	BlogID    string    `json:"blog_id,omitempty"`
	PostID    string    `json:"post_id,omitempty"`
	CommentID string    `json:"comment_id,omitempty"`
	AggCount  int       `json:"agg_count,omitempty"`
}

// ActivitySource serves feed and notification pages.
type ActivitySource interface {
	Feed(ctx context.Context, address string, offset, count int) ([]Activity, error)
	Notifications(ctx context.Context, address string, offset, count int) ([]Activity, error)
}

// ParseHexID decodes an activity id field; ok is false when the field is absent.
func ParseHexID(s string) (id uint64, ok bool, err error) {
	if s == "" {
		return 0, false, nil
	}
	id, err = strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 64)
	if err != nil {
		return 0, false, fmt.Errorf("bad activity id %q: %w", s, err)
	}
	return id, true, nil
}

func (a Activity) Blog() (uint64, bool, error)    { return ParseHexID(a.BlogID) }
func (a Activity) Post() (uint64, bool, error)    { return ParseHexID(a.PostID) }
func (a Activity) Comment() (uint64, bool, error) { return ParseHexID(a.CommentID) }
