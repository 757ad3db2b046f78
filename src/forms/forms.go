// Package forms validates user input for blogs, posts, comments and profiles and commits it:
// the document is uploaded to the content store first and the chain transaction second, and
// the upload is removed again if the transaction does not go through.
package forms

import (
	"bytes"
	"errors"

	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/ipfs"
)

var ErrNothingChanged = errors.New("nothing changed")

type BlogForm struct {
	Slug  string   `json:"slug" validate:"required,slug,min=5,max=50"`
	Name  string   `json:"name" validate:"required,min=3,max=100"`
	Desc  string   `json:"desc" validate:"max=1000"`
	Image string   `json:"image" validate:"omitempty,url,max=2000"`
	Tags  []string `json:"tags" validate:"dive,max=50"`
}

func (f BlogForm) Content() blogs.BlogContent {
	return blogs.BlogContent{Name: f.Name, Desc: f.Desc, Image: f.Image, Tags: f.Tags}
}

// BlogFormOf fills a form from a stored blog, for editing.
func BlogFormOf(b blogs.Blog, c blogs.BlogContent) BlogForm {
	return BlogForm{Slug: b.Slug, Name: c.Name, Desc: c.Desc, Image: c.Image, Tags: c.Tags}
}

type PostForm struct {
	Slug  string   `json:"slug" validate:"omitempty,slug,min=5,max=50"`
	Title string   `json:"title" validate:"required"`
	Body  string   `json:"body" validate:"required"`
	Image string   `json:"image" validate:"omitempty,url,max=2000"`
	Tags  []string `json:"tags" validate:"dive,max=50"`
}

func (f PostForm) Content() blogs.PostContent {
	return blogs.PostContent{Title: f.Title, Body: f.Body, Image: f.Image, Tags: f.Tags}
}

func PostFormOf(p blogs.Post, c blogs.PostContent) PostForm {
	return PostForm{Slug: p.Slug, Title: c.Title, Body: c.Body, Image: c.Image, Tags: c.Tags}
}

type CommentForm struct {
	Body string `json:"body" validate:"required"`
}

func (f CommentForm) Content() blogs.CommentContent {
	return blogs.CommentContent{Body: f.Body}
}

type ProfileForm struct {
	Username  string `json:"username" validate:"required,slug,min=5,max=50"`
	Fullname  string `json:"fullname" validate:"omitempty,min=2,max=100"`
	Avatar    string `json:"avatar" validate:"omitempty,url,max=2000"`
	About     string `json:"about" validate:"max=1000"`
	Facebook  string `json:"facebook" validate:"omitempty,url,max=2000"`
	Twitter   string `json:"twitter" validate:"omitempty,url,max=2000"`
	LinkedIn  string `json:"linkedIn" validate:"omitempty,url,max=2000"`
	Github    string `json:"github" validate:"omitempty,url,max=2000"`
	Instagram string `json:"instagram" validate:"omitempty,url,max=2000"`
}

func (f ProfileForm) Content() blogs.ProfileContent {
	return blogs.ProfileContent{
		Fullname:  f.Fullname,
		Avatar:    f.Avatar,
		About:     f.About,
		Facebook:  f.Facebook,
		Twitter:   f.Twitter,
		LinkedIn:  f.LinkedIn,
		Github:    f.Github,
		Instagram: f.Instagram,
	}
}

func ProfileFormOf(p blogs.Profile, c blogs.ProfileContent) ProfileForm {
	return ProfileForm{
		Username:  p.Username,
		Fullname:  c.Fullname,
		Avatar:    c.Avatar,
		About:     c.About,
		Facebook:  c.Facebook,
		Twitter:   c.Twitter,
		LinkedIn:  c.LinkedIn,
		Github:    c.Github,
		Instagram: c.Instagram,
	}
}

// Edit is what changed between a stored entity and an edited form. Slug carries the new slug (or
// username); Content carries the new document. nil means unchanged.
type Edit[C any] struct {
	Slug    *string
	Content *C
}

func (e Edit[C]) IsEmpty() bool { return e.Slug == nil && e.Content == nil }

func diff[C any](oldSlug, newSlug string, oldContent, newContent C) (Edit[C], error) {
	var e Edit[C]
	if newSlug != oldSlug {
		e.Slug = &newSlug
	}
	changed, err := contentChanged(oldContent, newContent)
	if err != nil {
		return e, err
	}
	if changed {
		e.Content = &newContent
	}
	if e.IsEmpty() {
		return e, ErrNothingChanged
	}
	return e, nil
}

// contentChanged compares documents by their stored encoding.
func contentChanged(a, b any) (bool, error) {
	ra, err := ipfs.Encode(a)
	if err != nil {
		return false, err
	}
	rb, err := ipfs.Encode(b)
	if err != nil {
		return false, err
	}
	return !bytes.Equal(ra, rb), nil
}

func DiffBlog(b blogs.Blog, c blogs.BlogContent, f BlogForm) (Edit[blogs.BlogContent], error) {
	return diff(b.Slug, f.Slug, normalizeBlog(c), normalizeBlog(f.Content()))
}

func DiffPost(p blogs.Post, c blogs.PostContent, f PostForm) (Edit[blogs.PostContent], error) {
	return diff(p.Slug, f.Slug, normalizePost(c), normalizePost(f.Content()))
}

func DiffComment(c blogs.CommentContent, f CommentForm) (Edit[blogs.CommentContent], error) {
	return diff("", "", c, f.Content())
}

func DiffProfile(p blogs.Profile, c blogs.ProfileContent, f ProfileForm) (Edit[blogs.ProfileContent], error) {
	return diff(p.Username, f.Username, c, f.Content())
}

// nil and empty tag lists encode differently but mean the same.

func normalizeBlog(c blogs.BlogContent) blogs.BlogContent {
	if len(c.Tags) == 0 {
		c.Tags = nil
	}
	return c
}

func normalizePost(c blogs.PostContent) blogs.PostContent {
	if len(c.Tags) == 0 {
		c.Tags = nil
	}
	return c
}
