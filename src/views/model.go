package views

import (
	"time"

	"github.com/samber/lo"

	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/loader"
)

// Header is present in every view. In name-only mode it is the whole view.
type Header struct {
	State   string `json:"state"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id"`
	Label   string `json:"label,omitempty"`
	Link    string `json:"link,omitempty"`
}

// Ready reports whether the entity exists and could be rendered.
func (h Header) Ready() bool {
	return h.State == loader.Full.String() || h.State == loader.Partial.String()
}

type Action struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

type ChangeView struct {
	Account string    `json:"account"`
	Block   uint32    `json:"block"`
	Time    time.Time `json:"time"`
}

type HistoryView struct {
	Edited   ChangeView `json:"edited"`
	Slug     string     `json:"slug,omitempty"`
	IpfsHash string     `json:"ipfsHash,omitempty"`
}

// VoteView is the reaction summary of a post or comment from the viewer's side.
type VoteView struct {
	Score     int    `json:"score"`
	Upvotes   uint16 `json:"upvotes"`
	Downvotes uint16 `json:"downvotes"`
	Mine      string `json:"mine,omitempty"`
}

type BlogView struct {
	Header
	Preview *BlogPreview `json:"preview,omitempty"`
	Detail  *BlogDetail  `json:"detail,omitempty"`
}

type BlogPreview struct {
	Slug           string   `json:"slug"`
	Image          string   `json:"image,omitempty"`
	Summary        string   `json:"summary,omitempty"`
	Owner          string   `json:"owner"`
	PostsCount     uint16   `json:"postsCount"`
	FollowersCount uint32   `json:"followersCount"`
	IsMine         bool     `json:"isMine"`
	Actions        []Action `json:"actions,omitempty"`
}

type BlogDetail struct {
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Tags        []string      `json:"tags,omitempty"`
	Writers     []string      `json:"writers,omitempty"`
	Created     ChangeView    `json:"created"`
	Updated     *ChangeView   `json:"updated,omitempty"`
	History     []HistoryView `json:"history,omitempty"`
	Posts       []PostView    `json:"posts,omitempty"`
}

type PostView struct {
	Header
	Preview *PostPreview `json:"preview,omitempty"`
	Detail  *PostDetail  `json:"detail,omitempty"`
}

type PostPreview struct {
	BlogID      uint64    `json:"blogId"`
	Slug        string    `json:"slug,omitempty"`
	Image       string    `json:"image,omitempty"`
	Summary     string    `json:"summary,omitempty"`
	Owner       string    `json:"owner"`
	Comments    uint16    `json:"commentsCount"`
	Upvotes     uint16    `json:"upvotesCount"`
	Downvotes   uint16    `json:"downvotesCount"`
	Shares      uint16    `json:"sharesCount"`
	Score       int       `json:"score"`
	IsMine      bool      `json:"isMine"`
	Actions     []Action  `json:"actions,omitempty"`
	Shared      *PostView `json:"shared,omitempty"`
	Unsupported string    `json:"unsupported,omitempty"`
}

type PostDetail struct {
	Title    string         `json:"title"`
	Body     string         `json:"body,omitempty"`
	Tags     []string       `json:"tags,omitempty"`
	Created  ChangeView     `json:"created"`
	Updated  *ChangeView    `json:"updated,omitempty"`
	History  []HistoryView  `json:"history,omitempty"`
	Comments []*CommentNode `json:"comments,omitempty"`
	Vote     *VoteView      `json:"vote,omitempty"`
}

type CommentView struct {
	Header
	Preview *CommentPreview `json:"preview,omitempty"`
	Detail  *CommentDetail  `json:"detail,omitempty"`

	id       uint64
	parentID *uint64
}

type CommentPreview struct {
	PostID    uint64     `json:"postId"`
	ParentID  *uint64    `json:"parentId,omitempty"`
	Body      string     `json:"body"`
	Owner     string     `json:"owner"`
	Upvotes   uint16     `json:"upvotesCount"`
	Downvotes uint16     `json:"downvotesCount"`
	Score     int        `json:"score"`
	IsMine    bool       `json:"isMine"`
	Created   ChangeView `json:"created"`
	Actions   []Action   `json:"actions,omitempty"`
}

type CommentDetail struct {
	Updated *ChangeView   `json:"updated,omitempty"`
	History []HistoryView `json:"history,omitempty"`
	Vote    *VoteView     `json:"vote,omitempty"`
}

type ProfileView struct {
	Header
	Preview *ProfilePreview `json:"preview,omitempty"`
	Detail  *ProfileDetail  `json:"detail,omitempty"`
}

type ProfilePreview struct {
	HasProfile        bool     `json:"hasProfile"`
	Username          string   `json:"username,omitempty"`
	Avatar            string   `json:"avatar,omitempty"`
	Summary           string   `json:"summary,omitempty"`
	Followers         uint32   `json:"followersCount"`
	FollowingAccounts uint16   `json:"followingAccountsCount"`
	FollowingBlogs    uint16   `json:"followingBlogsCount"`
	IsMine            bool     `json:"isMine"`
	Actions           []Action `json:"actions,omitempty"`
}

type ProfileDetail struct {
	Fullname string            `json:"fullname,omitempty"`
	About    string            `json:"about,omitempty"`
	Links    map[string]string `json:"links,omitempty"`
	Created  *ChangeView       `json:"created,omitempty"`
	Updated  *ChangeView       `json:"updated,omitempty"`
	History  []HistoryView     `json:"history,omitempty"`
	Blogs    []BlogView        `json:"blogs,omitempty"`
}

func (v Viewer) change(c blogs.Change) ChangeView {
	return ChangeView{Account: v.address(c.Account), Block: c.Block, Time: time.UnixMilli(int64(c.Time)).UTC()}
}

func (v Viewer) optionalChange(c *blogs.Change) *ChangeView {
	if c == nil {
		return nil
	}
	cv := v.change(*c)
	return &cv
}

func (v Viewer) history(entries []blogs.HistoryEntry) []HistoryView {
	return lo.Map(blogs.FillHistory(entries), func(e blogs.HistoryEntry, _ int) HistoryView {
		return HistoryView{Edited: v.change(e.Edited), Slug: e.Slug, IpfsHash: e.IpfsHash}
	})
}

func cleanTags(tags []string) []string {
	return lo.Uniq(lo.Filter(tags, func(t string, _ int) bool { return t != "" }))
}
