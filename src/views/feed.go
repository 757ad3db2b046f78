package views

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/ipfs"
)

var ErrNoActivitySource = errors.New("activity source not configured")

// Feed renders the posts in an account's news feed as previews, newest first.
func (p *Pages) Feed(ctx context.Context, acc blogs.AccountID, offset, count int, v Viewer) ([]PostView, error) {
	if p.activity == nil {
		return nil, ErrNoActivitySource
	}
	acts, err := p.activity.Feed(ctx, v.address(acc), offset, count)
	if err != nil {
		return nil, fmt.Errorf("read feed: %w", err)
	}

	var ids []uint64
	for _, a := range acts {
		id, ok, err := a.Post()
		if err != nil {
			p.log.Warn("skipping feed item", zap.String("id", a.ID), zap.Error(err))
			continue
		}
		if ok {
			ids = append(ids, id)
		}
	}
	views := loadAll(ctx, ids, func(ctx context.Context, id uint64) PostView {
		return p.post(ctx, id, Preview, v, true)
	})
	return present(views, func(pv PostView) Header { return pv.Header }), nil
}

// Notifications renders activity by others that concerns the account.
func (p *Pages) Notifications(ctx context.Context, acc blogs.AccountID, offset, count int, v Viewer) ([]ActivityView, error) {
	if p.activity == nil {
		return nil, ErrNoActivitySource
	}
	acts, err := p.activity.Notifications(ctx, v.address(acc), offset, count)
	if err != nil {
		return nil, fmt.Errorf("read notifications: %w", err)
	}
	return p.RenderActivities(ctx, acts, v), nil
}

// RenderActivities resolves the subject of each activity and renders it.
func (p *Pages) RenderActivities(ctx context.Context, acts []ipfs.Activity, v Viewer) []ActivityView {
	out := make([]ActivityView, 0, len(acts))
	for _, a := range acts {
		reply, subject, err := p.subject(ctx, a, v)
		if err != nil {
			p.log.Warn("activity subject unresolved", zap.String("id", a.ID), zap.String("event", a.Event), zap.Error(err))
		}
		out = append(out, RenderActivity(a, reply, subject))
	}
	return out
}

func (p *Pages) subject(ctx context.Context, a ipfs.Activity, v Viewer) (reply bool, subject *Header, err error) {
	blogSubject := func() (*Header, error) {
		id, ok, err := a.Blog()
		if err != nil || !ok {
			return nil, err
		}
		h := RenderBlog(p.blogSnapshot(ctx, id), NameOnly, v).Header
		return &h, nil
	}
	postSubject := func(id uint64) *Header {
		h := RenderPost(p.postSnapshot(ctx, id), NameOnly, v).Header
		return &h
	}
	// the post a comment belongs to, and whether the comment is a reply
	commentPost := func() (uint64, bool, error) {
		id, ok, err := a.Comment()
		if err != nil || !ok {
			postID, ok, perr := a.Post()
			if perr != nil || !ok {
				return 0, false, errors.Join(err, perr, errors.New("activity has no comment or post id"))
			}
			return postID, false, nil
		}
		c, err := blogs.GetComment(ctx, p.chain, id)
		if err != nil {
			return 0, false, err
		}
		if c == nil {
			return 0, false, fmt.Errorf("comment %d not found", id)
		}
		return c.PostID, c.ParentID != nil, nil
	}

	switch a.Event {
	case ipfs.BlogFollowed, ipfs.BlogCreated:
		subject, err = blogSubject()
		return false, subject, err
	case ipfs.PostShared, ipfs.PostReactionCreated:
		id, ok, err := a.Post()
		if err != nil || !ok {
			return false, nil, err
		}
		return false, postSubject(id), nil
	case ipfs.CommentCreated, ipfs.CommentReactionCreated:
		postID, isReply, err := commentPost()
		if err != nil {
			return false, nil, err
		}
		return isReply && a.Event == ipfs.CommentCreated, postSubject(postID), nil
	}
	return false, nil, nil
}
