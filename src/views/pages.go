package views

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/ipfs"
	"github.com/stake-plus/df-blogs/src/loader"
	"github.com/stake-plus/df-blogs/src/widgets"
)

const childLoadLimit = 8

// Pages loads entities with their children and renders them. It backs the gateway and the CLI.
type Pages struct {
	chain    loader.Watcher
	store    ipfs.Store
	activity ipfs.ActivitySource
	widgets  *widgets.Widgets
	log      *zap.Logger
}

func NewPages(chain loader.Watcher, store ipfs.Store) *Pages {
	return &Pages{
		chain:   chain,
		store:   store,
		widgets: widgets.New(chain, nil),
		log:     zap.L().Named("views"),
	}
}

// WithActivity sets the source of feed and notification pages.
func (p *Pages) WithActivity(src ipfs.ActivitySource) *Pages {
	p.activity = src
	return p
}

func (p *Pages) blogSnapshot(ctx context.Context, id uint64) BlogSnapshot {
	return loader.New[blogs.Blog, blogs.BlogContent](idString(id), loader.BlogSource(p.chain, id), p.store, blogs.BlogHash).Load(ctx)
}

func (p *Pages) postSnapshot(ctx context.Context, id uint64) PostSnapshot {
	return loader.New[blogs.Post, blogs.PostContent](idString(id), loader.PostSource(p.chain, id), p.store, blogs.PostHash).Load(ctx)
}

func (p *Pages) commentSnapshot(ctx context.Context, id uint64) CommentSnapshot {
	return loader.New[blogs.Comment, blogs.CommentContent](idString(id), loader.CommentSource(p.chain, id), p.store, blogs.CommentHash).Load(ctx)
}

func (p *Pages) profileSnapshot(ctx context.Context, acc blogs.AccountID, address string) ProfileSnapshot {
	return loader.New[blogs.SocialAccount, blogs.ProfileContent](address, loader.AccountSource(p.chain, acc), p.store, blogs.ProfileHash).Load(ctx)
}

// loadAll renders ids concurrently, keeping their order.
func loadAll[V any](ctx context.Context, ids []uint64, render func(ctx context.Context, id uint64) V) []V {
	out := make([]V, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(childLoadLimit)
	for i, id := range ids {
		g.Go(func() error {
			out[i] = render(gctx, id)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (p *Pages) Blog(ctx context.Context, id uint64, mode Mode, v Viewer) (BlogView, error) {
	view := RenderBlog(p.blogSnapshot(ctx, id), mode, v)
	if mode != Detail || !view.Ready() {
		return view, nil
	}
	posts, err := p.BlogPosts(ctx, id, Preview, v)
	if err != nil {
		return view, err
	}
	view.Detail.Posts = posts
	return view, nil
}

// Blogs lists every blog from 1 up to the next unassigned id.
func (p *Pages) Blogs(ctx context.Context, mode Mode, v Viewer) ([]BlogView, error) {
	next, err := blogs.NextBlogID(ctx, p.chain)
	if err != nil {
		return nil, fmt.Errorf("read next blog id: %w", err)
	}
	ids := make([]uint64, 0, next)
	for id := uint64(1); id < next; id++ {
		ids = append(ids, id)
	}
	return p.blogList(ctx, ids, mode, v), nil
}

func (p *Pages) blogList(ctx context.Context, ids []uint64, mode Mode, v Viewer) []BlogView {
	views := loadAll(ctx, ids, func(ctx context.Context, id uint64) BlogView {
		return RenderBlog(p.blogSnapshot(ctx, id), mode, v)
	})
	return present(views, func(b BlogView) Header { return b.Header })
}

func (p *Pages) BlogPosts(ctx context.Context, blogID uint64, mode Mode, v Viewer) ([]PostView, error) {
	ids, err := blogs.PostIDsByBlog(ctx, p.chain, blogID)
	if err != nil {
		return nil, fmt.Errorf("read posts of blog %d: %w", blogID, err)
	}
	views := loadAll(ctx, ids, func(ctx context.Context, id uint64) PostView {
		return p.post(ctx, id, mode, v, true)
	})
	return present(views, func(pv PostView) Header { return pv.Header }), nil
}

// present drops entities that no longer exist from a list.
func present[V any](views []V, header func(V) Header) []V {
	out := views[:0]
	for _, view := range views {
		if header(view).State != loader.Absent.String() {
			out = append(out, view)
		}
	}
	return out
}

func (p *Pages) Post(ctx context.Context, id uint64, mode Mode, v Viewer) (PostView, error) {
	view := p.post(ctx, id, mode, v, true)
	if mode != Detail || !view.Ready() {
		return view, nil
	}

	tree, err := p.PostComments(ctx, id, v)
	if err != nil {
		return view, err
	}
	view.Detail.Comments = tree

	vote, err := p.vote(ctx, blogs.TargetPost, id, v)
	if err != nil {
		return view, err
	}
	view.Detail.Vote = vote
	return view, nil
}

// post renders a post and, when nest is set, the preview of the post it shares.
func (p *Pages) post(ctx context.Context, id uint64, mode Mode, v Viewer, nest bool) PostView {
	snap := p.postSnapshot(ctx, id)
	view := RenderPost(snap, mode, v)
	if !nest || view.Preview == nil || snap.Struct.Extension.Kind != blogs.SharedPost {
		return view
	}
	shared := p.post(ctx, snap.Struct.Extension.Target, Preview, v, false)
	view.Preview.Shared = &shared
	return view
}

func (p *Pages) PostComments(ctx context.Context, postID uint64, v Viewer) ([]*CommentNode, error) {
	ids, err := blogs.CommentIDsByPost(ctx, p.chain, postID)
	if err != nil {
		return nil, fmt.Errorf("read comments of post %d: %w", postID, err)
	}
	views := loadAll(ctx, ids, func(ctx context.Context, id uint64) CommentView {
		return RenderComment(p.commentSnapshot(ctx, id), Preview, v)
	})
	return BuildCommentTree(present(views, func(c CommentView) Header { return c.Header })), nil
}

func (p *Pages) Comment(ctx context.Context, id uint64, mode Mode, v Viewer) (CommentView, error) {
	view := RenderComment(p.commentSnapshot(ctx, id), mode, v)
	if mode != Detail || !view.Ready() {
		return view, nil
	}
	vote, err := p.vote(ctx, blogs.TargetComment, id, v)
	if err != nil {
		return view, err
	}
	view.Detail.Vote = vote
	return view, nil
}

func (p *Pages) vote(ctx context.Context, target blogs.ReactionTarget, id uint64, v Viewer) (*VoteView, error) {
	var acc blogs.AccountID
	if v.SignedIn() {
		acc = v.Account
	}
	st, err := p.widgets.Voter(target, id).StateFor(ctx, acc)
	if err != nil {
		return nil, fmt.Errorf("read votes of %s %d: %w", target, id, err)
	}
	return &VoteView{Score: st.Score, Upvotes: st.Upvotes, Downvotes: st.Downvotes, Mine: st.Mine()}, nil
}

func (p *Pages) Profile(ctx context.Context, acc blogs.AccountID, mode Mode, v Viewer) (ProfileView, error) {
	address := v.address(acc)
	view := RenderProfile(p.profileSnapshot(ctx, acc, address), address, mode, v)
	if mode != Detail || !view.Ready() {
		return view, nil
	}
	list, err := p.AccountBlogs(ctx, acc, Preview, v)
	if err != nil {
		return view, err
	}
	view.Detail.Blogs = list
	return view, nil
}

func (p *Pages) AccountBlogs(ctx context.Context, acc blogs.AccountID, mode Mode, v Viewer) ([]BlogView, error) {
	ids, err := blogs.BlogIDsByOwner(ctx, p.chain, acc)
	if err != nil {
		return nil, fmt.Errorf("read blogs of %s: %w", v.address(acc), err)
	}
	return p.blogList(ctx, ids, mode, v), nil
}

func (p *Pages) FollowedBlogs(ctx context.Context, acc blogs.AccountID, v Viewer) ([]BlogView, error) {
	ids, err := blogs.BlogsFollowedByAccount(ctx, p.chain, acc)
	if err != nil {
		return nil, fmt.Errorf("read blogs followed by %s: %w", v.address(acc), err)
	}
	return p.blogList(ctx, ids, NameOnly, v), nil
}

func (p *Pages) accountList(ctx context.Context, accs []blogs.AccountID, v Viewer) []ProfileView {
	out := make([]ProfileView, len(accs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(childLoadLimit)
	for i, acc := range accs {
		g.Go(func() error {
			address := v.address(acc)
			view := RenderProfile(p.profileSnapshot(gctx, acc, address), address, NameOnly, v)
			if view.State == loader.Absent.String() {
				// followers without a social account still show up by address
				view.Header = Header{State: loader.Full.String(), ID: address, Label: address, Link: AccountPath(address)}
			}
			out[i] = view
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (p *Pages) BlogFollowers(ctx context.Context, blogID uint64, v Viewer) ([]ProfileView, error) {
	accs, err := blogs.BlogFollowers(ctx, p.chain, blogID)
	if err != nil {
		return nil, fmt.Errorf("read followers of blog %d: %w", blogID, err)
	}
	return p.accountList(ctx, accs, v), nil
}

func (p *Pages) AccountFollowers(ctx context.Context, acc blogs.AccountID, v Viewer) ([]ProfileView, error) {
	accs, err := blogs.AccountFollowers(ctx, p.chain, acc)
	if err != nil {
		return nil, fmt.Errorf("read followers of %s: %w", v.address(acc), err)
	}
	return p.accountList(ctx, accs, v), nil
}

func (p *Pages) AccountFollowing(ctx context.Context, acc blogs.AccountID, v Viewer) ([]ProfileView, error) {
	accs, err := blogs.AccountsFollowedByAccount(ctx, p.chain, acc)
	if err != nil {
		return nil, fmt.Errorf("read accounts followed by %s: %w", v.address(acc), err)
	}
	return p.accountList(ctx, accs, v), nil
}

type ReactionView struct {
	ID      string     `json:"id"`
	Kind    string     `json:"kind"`
	Account string     `json:"account"`
	Created ChangeView `json:"created"`
}

// Reactions lists who voted on a post or comment.
func (p *Pages) Reactions(ctx context.Context, target blogs.ReactionTarget, id uint64, v Viewer) ([]ReactionView, error) {
	ids, err := blogs.ReactionIDs(ctx, p.chain, target, id)
	if err != nil {
		return nil, fmt.Errorf("read reactions of %s %d: %w", target, id, err)
	}
	out := make([]ReactionView, 0, len(ids))
	for _, rid := range ids {
		r, err := blogs.GetReaction(ctx, p.chain, rid)
		if err != nil {
			return nil, fmt.Errorf("read reaction %d: %w", rid, err)
		}
		if r == nil {
			continue
		}
		out = append(out, ReactionView{
			ID:      idString(r.ID),
			Kind:    r.Kind.String(),
			Account: v.address(r.Created.Account),
			Created: v.change(r.Created),
		})
	}
	return out, nil
}
