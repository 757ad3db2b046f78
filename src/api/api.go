// Package api wires the chain client, the content store, the persistence layer and the signer
// from configuration. The gateway, the relay and the CLI all start from an App.
package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stake-plus/df-blogs/src/api/config"
	"github.com/stake-plus/df-blogs/src/api/data"
	"github.com/stake-plus/df-blogs/src/api/webserver"
	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/forms"
	"github.com/stake-plus/df-blogs/src/ipfs"
	"github.com/stake-plus/df-blogs/src/keys"
	polkadot "github.com/stake-plus/df-blogs/src/polkadot-go"
	"github.com/stake-plus/df-blogs/src/views"
	"github.com/stake-plus/df-blogs/src/widgets"
)

type App struct {
	Config  config.Config
	Chain   *polkadot.Client
	Content *ipfs.Client
	Store   ipfs.Store
	Redis   *redis.Client
	DB      *gorm.DB
	Signer  *keys.Signer
	Tx      blogs.Submitter
	Ledger  forms.Ledger

	log *zap.Logger
}

// Open connects what cfg names. MySQL, Redis and the signer are optional: without MySQL the
// upload ledger lives in memory, without Redis there is no auth and no shared content cache,
// and without a signer the app is read-only.
func Open(ctx context.Context, cfg config.Config) (*App, error) {
	a := &App{Config: cfg, log: zap.L().Named("api")}
	if err := a.open(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) open(ctx context.Context) error {
	if a.Config.MySQLDSN != "" {
		db, err := data.ConnectMySQL(a.Config.MySQLDSN)
		if err != nil {
			return fmt.Errorf("mysql: %w", err)
		}
		a.DB = db
		if err := db.AutoMigrate(&data.Setting{}); err != nil {
			return fmt.Errorf("migrate settings: %w", err)
		}
		settings, err := data.LoadSettings(ctx, db)
		if err != nil {
			return fmt.Errorf("load settings: %w", err)
		}
		if err := a.Config.ApplySettings(settings); err != nil {
			return err
		}
		ledger := forms.NewGormLedger(db)
		if err := ledger.Migrate(); err != nil {
			return fmt.Errorf("migrate upload ledger: %w", err)
		}
		a.Ledger = ledger
	} else {
		a.Ledger = forms.NewMemoryLedger()
	}

	var cache ipfs.Cache
	if a.Config.RedisURL != "" {
		rdb, err := data.Redis(a.Config.RedisURL)
		if err != nil {
			return err
		}
		a.Redis = rdb
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis ping: %w", err)
		}
		cache = ipfs.NewRedisCache(rdb)
	}

	a.Content = ipfs.NewClient(a.Config.ContentAPIURL, a.Config.ContentTimeout)
	store, err := ipfs.NewCachedStore(a.Content, cache, a.Config.ContentCacheSize, a.Config.ContentCacheTTL)
	if err != nil {
		return fmt.Errorf("content cache: %w", err)
	}
	a.Store = store

	chain, err := polkadot.NewClient(a.Config.RPCURL, a.Config.SS58Prefix)
	if err != nil {
		return fmt.Errorf("connect %s: %w", a.Config.RPCURL, err)
	}
	a.Chain = chain

	if a.Config.SignerSeed != "" {
		signer, err := keys.NewSigner(a.Config.SignerSeed, a.Config.SS58Prefix)
		if err != nil {
			return fmt.Errorf("signer: %w", err)
		}
		a.Signer = signer
		a.Tx = blogs.NewTransactor(chain, signer)
		a.log.Info("signer loaded", zap.String("address", signer.Address()))
	}
	return nil
}

func (a *App) Close() {
	if a.Chain != nil {
		_ = a.Chain.Close()
	}
	if a.Content != nil {
		_ = a.Content.Close()
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

func (a *App) Viewer() views.Viewer {
	if a.Signer == nil {
		return views.Anonymous(a.Config.SS58Prefix)
	}
	return views.As(a.Signer.Account(), a.Config.SS58Prefix)
}

func (a *App) Pages() *views.Pages {
	return views.NewPages(a.Chain, a.Store).WithActivity(a.Content)
}

func (a *App) Widgets() *widgets.Widgets {
	return widgets.New(a.Chain, a.Tx)
}

func (a *App) Committer() (*forms.Committer, error) {
	if a.Tx == nil {
		return nil, widgets.ErrReadOnly
	}
	return forms.NewCommitter(a.Store, a.Tx, a.Ledger), nil
}

// Sweep settles uploads left pending longer than SweepAfter, which a crash or an unobserved
// transaction outcome leaves behind. With a chain and signer, uploads the chain references are
// kept.
func (a *App) Sweep(ctx context.Context) (int, error) {
	var inUse forms.Referenced
	if a.Chain != nil && a.Tx != nil {
		inUse = forms.ChainReferences(a.Chain, a.Tx.Account())
	}
	return forms.Sweep(ctx, a.Ledger, a.Store, time.Now().Add(-a.Config.SweepAfter), inUse)
}

func (a *App) Handler() *gin.Engine {
	deps := webserver.Deps{
		Config:   a.Config,
		Chain:    a.Chain,
		Store:    a.Store,
		Activity: a.Content,
		Signer:   a.Tx,
		Ledger:   a.Ledger,
	}
	if a.Redis != nil {
		deps.Nonces = data.NewNonces(a.Redis)
	}
	return webserver.New(deps)
}

// Serve sweeps stale uploads and runs the gateway until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	if a.Config.JWTSecret == "" {
		return errors.New("JWT_SECRET is required to serve")
	}
	if _, err := a.Sweep(ctx); err != nil {
		a.log.Warn("upload sweep failed", zap.Error(err))
	}
	return webserver.ListenAndServe(ctx, a.Config, a.Handler())
}
