package views

import (
	"strconv"

	"github.com/samber/lo"

	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/loader"
)

type (
	BlogSnapshot    = loader.Snapshot[blogs.Blog, blogs.BlogContent]
	PostSnapshot    = loader.Snapshot[blogs.Post, blogs.PostContent]
	CommentSnapshot = loader.Snapshot[blogs.Comment, blogs.CommentContent]
	ProfileSnapshot = loader.Snapshot[blogs.SocialAccount, blogs.ProfileContent]
)

// UnsupportedSharedComment is shown in place of a shared comment, which has no view yet.
const UnsupportedSharedComment = "shared comments are not supported"

// status renders the states that carry no entity. ok is false when the entity can be rendered.
func status(state loader.State, id, entity string, err error) (Header, bool) {
	h := Header{State: state.String(), ID: id}
	switch state {
	case loader.Unresolved:
		h.Message = "Loading..."
	case loader.Absent:
		h.Message = entity + " not found"
	case loader.Failed:
		h.Message = entity + " could not be loaded"
		if err != nil {
			h.Message = err.Error()
		}
	default:
		return h, false
	}
	return h, true
}

func idString(id uint64) string { return strconv.FormatUint(id, 10) }

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func RenderBlog(s BlogSnapshot, mode Mode, v Viewer) BlogView {
	if h, done := status(s.State, s.ID, "Blog", s.Err); done {
		return BlogView{Header: h}
	}
	b := s.Struct
	c := lo.FromPtr(s.Content)

	out := BlogView{Header: Header{
		State: s.State.String(),
		ID:    idString(b.ID),
		Label: orDefault(c.Name, b.Slug),
		Link:  BlogPath(b.ID),
	}}
	if mode == NameOnly {
		return out
	}

	mine := v.Owns(b.Owner())
	out.Preview = &BlogPreview{
		Slug:           b.Slug,
		Image:          c.Image,
		Summary:        Summarize(c.Desc, SummaryLength),
		Owner:          v.address(b.Owner()),
		PostsCount:     b.PostsCount,
		FollowersCount: b.FollowersCount,
		IsMine:         mine,
	}
	if mine {
		out.Preview.Actions = []Action{
			{Name: "Edit", Link: BlogEditPath(b.ID)},
			{Name: "Write post", Link: NewPostPath(b.ID)},
		}
	}
	if mode == Preview {
		return out
	}

	out.Detail = &BlogDetail{
		Name:        c.Name,
		Description: RenderMarkdown(c.Desc),
		Tags:        cleanTags(c.Tags),
		Writers:     lo.Map(b.Writers, func(a blogs.AccountID, _ int) string { return v.address(a) }),
		Created:     v.change(b.Created),
		Updated:     v.optionalChange(b.Updated),
		History:     v.history(b.History()),
	}
	return out
}

func RenderPost(s PostSnapshot, mode Mode, v Viewer) PostView {
	if h, done := status(s.State, s.ID, "Post", s.Err); done {
		return PostView{Header: h}
	}
	p := s.Struct
	c := lo.FromPtr(s.Content)

	label := c.Title
	if label == "" {
		label = orDefault(p.Slug, "Post #"+idString(p.ID))
	}
	out := PostView{Header: Header{
		State: s.State.String(),
		ID:    idString(p.ID),
		Label: label,
		Link:  PostPath(p.ID),
	}}
	if mode == NameOnly {
		return out
	}

	mine := v.Owns(p.Owner())
	out.Preview = &PostPreview{
		BlogID:    p.BlogID,
		Slug:      p.Slug,
		Image:     c.Image,
		Summary:   Summarize(c.Body, SummaryLength),
		Owner:     v.address(p.Owner()),
		Comments:  p.CommentsCount,
		Upvotes:   p.UpvotesCount,
		Downvotes: p.DownvotesCount,
		Shares:    p.SharesCount,
		Score:     p.Score(),
		IsMine:    mine,
	}
	if mine {
		out.Preview.Actions = []Action{{Name: "Edit", Link: PostEditPath(p.ID)}}
	}
	if p.Extension.Kind == blogs.SharedComment {
		out.Preview.Unsupported = UnsupportedSharedComment
	}
	if mode == Preview {
		return out
	}

	out.Detail = &PostDetail{
		Title:   c.Title,
		Body:    RenderMarkdown(c.Body),
		Tags:    cleanTags(c.Tags),
		Created: v.change(p.Created),
		Updated: v.optionalChange(p.Updated),
		History: v.history(p.History()),
	}
	return out
}

func RenderComment(s CommentSnapshot, mode Mode, v Viewer) CommentView {
	if h, done := status(s.State, s.ID, "Comment", s.Err); done {
		return CommentView{Header: h}
	}
	cm := s.Struct
	c := lo.FromPtr(s.Content)

	out := CommentView{
		Header: Header{
			State: s.State.String(),
			ID:    idString(cm.ID),
			Label: Summarize(c.Body, LabelLength),
			Link:  CommentPath(cm.PostID, cm.ID),
		},
		id:       cm.ID,
		parentID: cm.ParentID,
	}
	if mode == NameOnly {
		return out
	}

	mine := v.Owns(cm.Owner())
	out.Preview = &CommentPreview{
		PostID:    cm.PostID,
		ParentID:  cm.ParentID,
		Body:      RenderMarkdown(c.Body),
		Owner:     v.address(cm.Owner()),
		Upvotes:   cm.UpvotesCount,
		Downvotes: cm.DownvotesCount,
		Score:     cm.Score(),
		IsMine:    mine,
		Created:   v.change(cm.Created),
	}
	if mine {
		out.Preview.Actions = []Action{{Name: "Edit", Link: out.Link}}
	}
	if mode == Preview {
		return out
	}

	out.Detail = &CommentDetail{
		Updated: v.optionalChange(cm.Updated),
		History: v.history(cm.History()),
	}
	return out
}

// RenderProfile renders the social account of address. Accounts without a profile still render
// their follow counters.
func RenderProfile(s ProfileSnapshot, address string, mode Mode, v Viewer) ProfileView {
	if h, done := status(s.State, address, "Profile", s.Err); done {
		return ProfileView{Header: h}
	}
	acc := s.Struct
	c := lo.FromPtr(s.Content)

	var username string
	if acc.Profile != nil {
		username = acc.Profile.Username
	}
	out := ProfileView{Header: Header{
		State: s.State.String(),
		ID:    address,
		Label: orDefault(c.Fullname, orDefault(username, address)),
		Link:  AccountPath(address),
	}}
	if mode == NameOnly {
		return out
	}

	owner, _ := blogs.ParseAccount(address)
	mine := v.Owns(owner)
	out.Preview = &ProfilePreview{
		HasProfile:        acc.Profile != nil,
		Username:          username,
		Avatar:            c.Avatar,
		Summary:           Summarize(c.About, SummaryLength),
		Followers:         acc.FollowersCount,
		FollowingAccounts: acc.FollowingAccountsCount,
		FollowingBlogs:    acc.FollowingBlogsCount,
		IsMine:            mine,
	}
	if mine {
		name := "Edit profile"
		if acc.Profile == nil {
			name = "Create profile"
		}
		out.Preview.Actions = []Action{{Name: name, Link: AccountEditPath(address)}}
	}
	if mode == Preview {
		return out
	}

	out.Detail = &ProfileDetail{
		Fullname: c.Fullname,
		About:    RenderMarkdown(c.About),
		Links: lo.OmitByValues(map[string]string{
			"facebook":  c.Facebook,
			"twitter":   c.Twitter,
			"linkedIn":  c.LinkedIn,
			"github":    c.Github,
			"instagram": c.Instagram,
		}, []string{""}),
	}
	if p := acc.Profile; p != nil {
		out.Detail.Created = v.optionalChange(&p.Created)
		out.Detail.Updated = v.optionalChange(p.Updated)
		out.Detail.History = v.history(p.History())
	}
	return out
}
