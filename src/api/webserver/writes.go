package webserver

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/forms"
	"github.com/stake-plus/df-blogs/src/ipfs"
	"github.com/stake-plus/df-blogs/src/widgets"
)

// signerOnly lets a mutation through only for the account the gateway signs with.
func (s *Server) signerOnly(c *gin.Context) {
	if s.signer == nil {
		s.fail(c, widgets.ErrReadOnly)
		return
	}
	acc, err := blogs.ParseAccount(c.GetString(addrKey))
	if err != nil || acc != s.signer.Account() {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"err": "token does not belong to the gateway signer"})
		return
	}
	c.Next()
}

func bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return badRequest{err}
	}
	return nil
}

// contentOf fetches the document behind hash; an empty hash gives the zero document.
func contentOf[C any](ctx context.Context, store ipfs.Store, hash string) (C, error) {
	var zero C
	if hash == "" {
		return zero, nil
	}
	doc, err := ipfs.Fetch[C](ctx, store, hash)
	if err != nil {
		return zero, err
	}
	return *doc, nil
}

func (s *Server) createBlog(c *gin.Context) {
	var f forms.BlogForm
	if err := bind(c, &f); err != nil {
		s.fail(c, err)
		return
	}
	out, err := s.committer.CreateBlog(c, f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (s *Server) updateBlog(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	var f forms.BlogForm
	if err := bind(c, &f); err != nil {
		s.fail(c, err)
		return
	}
	b, err := blogs.GetBlog(c, s.chain, id)
	if err == nil && b == nil {
		err = notFound("Blog")
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	content, err := contentOf[blogs.BlogContent](c, s.store, b.IpfsHash)
	if err != nil {
		s.fail(c, err)
		return
	}
	out, err := s.committer.UpdateBlog(c, *b, content, f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) createPost(c *gin.Context) {
	blogID, err := idParam(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	var f forms.PostForm
	if err := bind(c, &f); err != nil {
		s.fail(c, err)
		return
	}
	b, err := blogs.GetBlog(c, s.chain, blogID)
	if err == nil && b == nil {
		err = notFound("Blog")
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	out, err := s.committer.CreatePost(c, blogID, f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (s *Server) updatePost(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	var f forms.PostForm
	if err := bind(c, &f); err != nil {
		s.fail(c, err)
		return
	}
	p, err := blogs.GetPost(c, s.chain, id)
	if err == nil && p == nil {
		err = notFound("Post")
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	content, err := contentOf[blogs.PostContent](c, s.store, p.IpfsHash)
	if err != nil {
		s.fail(c, err)
		return
	}
	out, err := s.committer.UpdatePost(c, *p, content, f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

type commentRequest struct {
	forms.CommentForm
	ParentID *uint64 `json:"parentId"`
}

func (s *Server) createComment(c *gin.Context) {
	postID, err := idParam(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	var req commentRequest
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	p, err := blogs.GetPost(c, s.chain, postID)
	if err == nil && p == nil {
		err = notFound("Post")
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	out, err := s.committer.CreateComment(c, postID, req.ParentID, req.CommentForm)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (s *Server) updateComment(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	var f forms.CommentForm
	if err := bind(c, &f); err != nil {
		s.fail(c, err)
		return
	}
	cm, err := blogs.GetComment(c, s.chain, id)
	if err == nil && cm == nil {
		err = notFound("Comment")
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	content, err := contentOf[blogs.CommentContent](c, s.store, cm.IpfsHash)
	if err != nil {
		s.fail(c, err)
		return
	}
	out, err := s.committer.UpdateComment(c, *cm, content, f)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) saveProfile(c *gin.Context) {
	var f forms.ProfileForm
	if err := bind(c, &f); err != nil {
		s.fail(c, err)
		return
	}
	acc, err := blogs.GetSocialAccount(c, s.chain, s.signer.Account())
	if err != nil {
		s.fail(c, err)
		return
	}
	var content *blogs.ProfileContent
	if acc != nil {
		doc, err := contentOf[blogs.ProfileContent](c, s.store, blogs.ProfileHash(*acc))
		if err != nil {
			s.fail(c, err)
			return
		}
		content = &doc
	}
	out, err := s.committer.SaveProfile(c, acc, content, f, s.cfg.SS58Prefix)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) toggle(c *gin.Context, t *widgets.Toggle) {
	st, err := t.Toggle(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}

func (s *Server) followBlog(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	s.toggle(c, s.widgets.FollowBlog(id))
}

func (s *Server) followAccount(c *gin.Context) {
	acc, err := accountParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	s.toggle(c, s.widgets.FollowAccount(acc))
}

// sharePost toggles the share of a post. With a blogId in the body it instead creates a post in
// that blog which shares this one.
func (s *Server) sharePost(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	var req struct {
		BlogID uint64 `json:"blogId"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		s.fail(c, badRequest{err})
		return
	}
	if req.BlogID == 0 {
		s.toggle(c, s.widgets.SharePost(id))
		return
	}
	out, err := s.committer.NewSharedPost(c, req.BlogID, id, req.Note)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (s *Server) shareComment(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	s.toggle(c, s.widgets.ShareComment(id))
}

func (s *Server) reactPost(c *gin.Context)    { s.react(c, blogs.TargetPost) }
func (s *Server) reactComment(c *gin.Context) { s.react(c, blogs.TargetComment) }

func (s *Server) react(c *gin.Context, target blogs.ReactionTarget) {
	id, err := idParam(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	var req struct {
		Kind string `json:"kind" binding:"required"`
	}
	if err := bind(c, &req); err != nil {
		s.fail(c, err)
		return
	}
	kind, err := blogs.ParseReactionKind(req.Kind)
	if err != nil {
		s.fail(c, badRequest{err})
		return
	}
	st, err := s.widgets.Voter(target, id).Press(c, kind)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
