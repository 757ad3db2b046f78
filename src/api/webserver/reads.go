package webserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/ipfs"
	"github.com/stake-plus/df-blogs/src/views"
)

// viewer is the signed-in account, or anonymous.
func (s *Server) viewer(c *gin.Context) views.Viewer {
	if addr := c.GetString(addrKey); addr != "" {
		if acc, err := blogs.ParseAccount(addr); err == nil {
			return views.As(acc, s.cfg.SS58Prefix)
		}
	}
	return views.Anonymous(s.cfg.SS58Prefix)
}

func (s *Server) listBlogs(c *gin.Context) {
	mode, err := modeParam(c, views.Preview)
	if err != nil {
		s.fail(c, err)
		return
	}
	list, err := s.pages.Blogs(c, mode, s.viewer(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getBlog(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	mode, err := modeParam(c, views.Detail)
	if err != nil {
		s.fail(c, err)
		return
	}
	view, err := s.pages.Blog(c, id, mode, s.viewer(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, view.Header, view)
}

func (s *Server) blogPosts(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	mode, err := modeParam(c, views.Preview)
	if err != nil {
		s.fail(c, err)
		return
	}
	list, err := s.pages.BlogPosts(c, id, mode, s.viewer(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) blogFollowers(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	list, err := s.pages.BlogFollowers(c, id, s.viewer(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getPost(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	mode, err := modeParam(c, views.Detail)
	if err != nil {
		s.fail(c, err)
		return
	}
	view, err := s.pages.Post(c, id, mode, s.viewer(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, view.Header, view)
}

func (s *Server) postComments(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	tree, err := s.pages.PostComments(c, id, s.viewer(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (s *Server) postReactions(c *gin.Context)    { s.reactions(c, blogs.TargetPost) }
func (s *Server) commentReactions(c *gin.Context) { s.reactions(c, blogs.TargetComment) }

func (s *Server) reactions(c *gin.Context, target blogs.ReactionTarget) {
	id, err := idParam(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	list, err := s.pages.Reactions(c, target, id, s.viewer(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getComment(c *gin.Context) {
	id, err := idParam(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	mode, err := modeParam(c, views.Detail)
	if err != nil {
		s.fail(c, err)
		return
	}
	view, err := s.pages.Comment(c, id, mode, s.viewer(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, view.Header, view)
}

func (s *Server) getAccount(c *gin.Context) {
	acc, err := accountParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	mode, err := modeParam(c, views.Detail)
	if err != nil {
		s.fail(c, err)
		return
	}
	view, err := s.pages.Profile(c, acc, mode, s.viewer(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	s.respond(c, view.Header, view)
}

func (s *Server) accountBlogs(c *gin.Context) {
	acc, err := accountParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	mode, err := modeParam(c, views.Preview)
	if err != nil {
		s.fail(c, err)
		return
	}
	list, err := s.pages.AccountBlogs(c, acc, mode, s.viewer(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) followedBlogs(c *gin.Context) {
	acc, err := accountParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	list, err := s.pages.FollowedBlogs(c, acc, s.viewer(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) accountFollowers(c *gin.Context) {
	acc, err := accountParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	list, err := s.pages.AccountFollowers(c, acc, s.viewer(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) accountFollowing(c *gin.Context) {
	acc, err := accountParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	list, err := s.pages.AccountFollowing(c, acc, s.viewer(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// page reads ?offset= and ?count=; count defaults to the configured feed size.
func (s *Server) page(c *gin.Context) (offset, count int, err error) {
	if offset, err = intQuery(c, "offset", 0); err != nil {
		return 0, 0, err
	}
	def := s.cfg.FeedCount
	if def <= 0 {
		def = ipfs.DefaultActivityLimit
	}
	if count, err = intQuery(c, "count", def); err != nil {
		return 0, 0, err
	}
	return offset, count, nil
}

func (s *Server) accountFeed(c *gin.Context) {
	acc, err := accountParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	offset, count, err := s.page(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	feed, err := s.pages.Feed(c, acc, offset, count, s.viewer(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, feed)
}

func (s *Server) accountNotifications(c *gin.Context) {
	acc, err := accountParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	offset, count, err := s.page(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	list, err := s.pages.Notifications(c, acc, offset, count, s.viewer(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// followsBlog reports whether the account follows the blog, as the follow button would show it.
func (s *Server) followsBlog(c *gin.Context) {
	acc, err := accountParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	id, err := idParam(c, "id")
	if err != nil {
		s.fail(c, err)
		return
	}
	st, err := s.widgets.FollowBlog(id).StateFor(c, acc)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, st)
}
