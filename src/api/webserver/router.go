package webserver

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stake-plus/df-blogs/src/api/config"
	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/forms"
	"github.com/stake-plus/df-blogs/src/ipfs"
	"github.com/stake-plus/df-blogs/src/loader"
	"github.com/stake-plus/df-blogs/src/views"
	"github.com/stake-plus/df-blogs/src/widgets"
)

// Deps is what the gateway serves from. Signer and Ledger may be nil; without a signer every
// mutation answers 503.
type Deps struct {
	Config   config.Config
	Chain    loader.Watcher
	Store    ipfs.Store
	Activity ipfs.ActivitySource
	Nonces   NonceStore
	Signer   blogs.Submitter
	Ledger   forms.Ledger
}

type Server struct {
	cfg       config.Config
	chain     loader.Watcher
	store     ipfs.Store
	pages     *views.Pages
	widgets   *widgets.Widgets
	committer *forms.Committer
	signer    blogs.Submitter
	log       *zap.Logger
}

func New(d Deps) *gin.Engine {
	s := &Server{
		cfg:     d.Config,
		chain:   d.Chain,
		store:   d.Store,
		pages:   views.NewPages(d.Chain, d.Store).WithActivity(d.Activity),
		widgets: widgets.New(d.Chain, d.Signer),
		signer:  d.Signer,
		log:     zap.L().Named("webserver"),
	}
	if d.Signer != nil {
		s.committer = forms.NewCommitter(d.Store, d.Signer, d.Ledger)
	}

	r := gin.New()
	r.ContextWithFallback = true
	r.Use(gin.Recovery(), requestMetrics())
	attachRoutes(r, s, d.Nonces)
	return r
}

func attachRoutes(r *gin.Engine, s *Server, nonces NonceStore) {
	corsCfg := cors.Config{
		AllowOrigins:     s.cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowOrigins = nil
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	secret := []byte(s.cfg.JWTSecret)
	authH := NewAuth(nonces, secret)
	limiter := NewRateLimiter(s.cfg.RateLimit, time.Minute)

	v1 := r.Group("/v1")
	v1.POST("/auth/challenge", authH.Challenge)
	v1.POST("/auth/verify", authH.Verify)

	reads := v1.Group("", OptionalJWT(secret), RateLimitMiddleware(limiter))
	{
		reads.GET("/blogs", s.listBlogs)
		reads.GET("/blogs/:id", s.getBlog)
		reads.GET("/blogs/:id/posts", s.blogPosts)
		reads.GET("/blogs/:id/followers", s.blogFollowers)
		reads.GET("/posts/:id", s.getPost)
		reads.GET("/posts/:id/comments", s.postComments)
		reads.GET("/posts/:id/reactions", s.postReactions)
		reads.GET("/comments/:id", s.getComment)
		reads.GET("/comments/:id/reactions", s.commentReactions)
		reads.GET("/accounts/:address", s.getAccount)
		reads.GET("/accounts/:address/blogs", s.accountBlogs)
		reads.GET("/accounts/:address/followed-blogs", s.followedBlogs)
		reads.GET("/accounts/:address/followers", s.accountFollowers)
		reads.GET("/accounts/:address/following", s.accountFollowing)
		reads.GET("/accounts/:address/feed", s.accountFeed)
		reads.GET("/accounts/:address/notifications", s.accountNotifications)
		reads.GET("/accounts/:address/follow/blog/:id", s.followsBlog)
	}

	secured := v1.Group("", JWTMiddleware(secret), RateLimitMiddleware(limiter), s.signerOnly)
	{
		secured.POST("/blogs", s.createBlog)
		secured.PUT("/blogs/:id", s.updateBlog)
		secured.POST("/blogs/:id/posts", s.createPost)
		secured.PUT("/posts/:id", s.updatePost)
		secured.POST("/posts/:id/comments", s.createComment)
		secured.PUT("/comments/:id", s.updateComment)
		secured.PUT("/accounts/me", s.saveProfile)
		secured.POST("/follow/blog/:id", s.followBlog)
		secured.POST("/follow/account/:address", s.followAccount)
		secured.POST("/posts/:id/share", s.sharePost)
		secured.POST("/comments/:id/share", s.shareComment)
		secured.POST("/posts/:id/react", s.reactPost)
		secured.POST("/comments/:id/react", s.reactComment)
	}
}
