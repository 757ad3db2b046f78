package forms

import (
	"context"
	"fmt"

	"github.com/stake-plus/df-blogs/src/blogs"
	polkadot "github.com/stake-plus/df-blogs/src/polkadot-go"
	"github.com/stake-plus/df-blogs/src/views"
)

func createdID(res *polkadot.TxResult) (uint64, error) {
	id, err := blogs.NewEntityID(res.Events)
	if err != nil {
		return 0, fmt.Errorf("transaction in %s: %w", res.Block, err)
	}
	return id, nil
}

func (c *Committer) CreateBlog(ctx context.Context, f BlogForm) (Outcome, error) {
	if err := Validate(f); err != nil {
		return Outcome{}, err
	}
	res, err := c.Commit(ctx, f.Content(), func(hash string) blogs.Call {
		return blogs.CreateBlog(f.Slug, hash)
	})
	if err != nil {
		return Outcome{}, err
	}
	id, err := createdID(res)
	if err != nil {
		return Outcome{Block: res.Block}, err
	}
	return Outcome{ID: id, Path: views.BlogPath(id), Block: res.Block}, nil
}

// UpdateBlog sends only what differs from the stored blog and its content.
func (c *Committer) UpdateBlog(ctx context.Context, b blogs.Blog, content blogs.BlogContent, f BlogForm) (Outcome, error) {
	if err := Validate(f); err != nil {
		return Outcome{}, err
	}
	edit, err := DiffBlog(b, content, f)
	if err != nil {
		return Outcome{}, err
	}
	res, err := c.Commit(ctx, docOf(edit.Content), func(hash string) blogs.Call {
		return blogs.UpdateBlog(b.ID, blogs.BlogUpdate{Slug: edit.Slug, IpfsHash: optional(hash)})
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{ID: b.ID, Path: views.BlogPath(b.ID), Block: res.Block}, nil
}

func (c *Committer) CreatePost(ctx context.Context, blogID uint64, f PostForm) (Outcome, error) {
	if err := Validate(f); err != nil {
		return Outcome{}, err
	}
	return c.createPost(ctx, blogID, f.Slug, f.Content(), blogs.PostExtension{Kind: blogs.RegularPost})
}

// NewSharedPost posts originalID into blogID with an optional note.
func (c *Committer) NewSharedPost(ctx context.Context, blogID, originalID uint64, note string) (Outcome, error) {
	ext := blogs.PostExtension{Kind: blogs.SharedPost, Target: originalID}
	return c.createPost(ctx, blogID, "", blogs.PostContent{Body: note}, ext)
}

func (c *Committer) createPost(ctx context.Context, blogID uint64, slug string, content blogs.PostContent, ext blogs.PostExtension) (Outcome, error) {
	res, err := c.Commit(ctx, content, func(hash string) blogs.Call {
		return blogs.CreatePost(blogID, slug, hash, ext)
	})
	if err != nil {
		return Outcome{}, err
	}
	id, err := createdID(res)
	if err != nil {
		return Outcome{Block: res.Block}, err
	}
	return Outcome{ID: id, Path: views.PostPath(id), Block: res.Block}, nil
}

func (c *Committer) UpdatePost(ctx context.Context, p blogs.Post, content blogs.PostContent, f PostForm) (Outcome, error) {
	if err := Validate(f); err != nil {
		return Outcome{}, err
	}
	edit, err := DiffPost(p, content, f)
	if err != nil {
		return Outcome{}, err
	}
	res, err := c.Commit(ctx, docOf(edit.Content), func(hash string) blogs.Call {
		return blogs.UpdatePost(p.ID, blogs.PostUpdate{Slug: edit.Slug, IpfsHash: optional(hash)})
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{ID: p.ID, Path: views.PostPath(p.ID), Block: res.Block}, nil
}

func (c *Committer) CreateComment(ctx context.Context, postID uint64, parentID *uint64, f CommentForm) (Outcome, error) {
	if err := Validate(f); err != nil {
		return Outcome{}, err
	}
	res, err := c.Commit(ctx, f.Content(), func(hash string) blogs.Call {
		return blogs.CreateComment(postID, parentID, hash)
	})
	if err != nil {
		return Outcome{}, err
	}
	id, err := createdID(res)
	if err != nil {
		return Outcome{Block: res.Block}, err
	}
	return Outcome{ID: id, Path: views.CommentPath(postID, id), Block: res.Block}, nil
}

func (c *Committer) UpdateComment(ctx context.Context, cm blogs.Comment, content blogs.CommentContent, f CommentForm) (Outcome, error) {
	if err := Validate(f); err != nil {
		return Outcome{}, err
	}
	edit, err := DiffComment(content, f)
	if err != nil {
		return Outcome{}, err
	}
	res, err := c.Commit(ctx, docOf(edit.Content), func(hash string) blogs.Call {
		return blogs.UpdateComment(cm.ID, blogs.CommentUpdate{IpfsHash: hash})
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{ID: cm.ID, Path: views.CommentPath(cm.PostID, cm.ID), Block: res.Block}, nil
}

// SaveProfile creates the signer's profile, or updates it when acc already has one. acc and
// content may be nil for an account the chain has not seen.
func (c *Committer) SaveProfile(ctx context.Context, acc *blogs.SocialAccount, content *blogs.ProfileContent, f ProfileForm, prefix uint16) (Outcome, error) {
	if err := Validate(f); err != nil {
		return Outcome{}, err
	}
	address := c.tx.Account().Address(prefix)
	out := Outcome{Address: address, Path: views.AccountPath(address)}

	if acc == nil || acc.Profile == nil {
		res, err := c.Commit(ctx, f.Content(), func(hash string) blogs.Call {
			return blogs.CreateProfile(f.Username, hash)
		})
		if err != nil {
			return Outcome{}, err
		}
		out.Block = res.Block
		return out, nil
	}

	var old blogs.ProfileContent
	if content != nil {
		old = *content
	}
	edit, err := DiffProfile(*acc.Profile, old, f)
	if err != nil {
		return Outcome{}, err
	}
	res, err := c.Commit(ctx, docOf(edit.Content), func(hash string) blogs.Call {
		return blogs.UpdateProfile(blogs.ProfileUpdate{Username: edit.Slug, IpfsHash: optional(hash)})
	})
	if err != nil {
		return Outcome{}, err
	}
	out.Block = res.Block
	return out, nil
}

// docOf turns an unchanged (nil) document into an untyped nil so Commit skips the upload.
func docOf[C any](c *C) any {
	if c == nil {
		return nil
	}
	return *c
}

func optional(hash string) *string {
	if hash == "" {
		return nil
	}
	return &hash
}
