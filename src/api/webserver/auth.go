package webserver

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/stake-plus/df-blogs/src/api/data"
	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/keys"
)

// NonceStore holds one pending challenge per address. *data.Nonces implements it.
type NonceStore interface {
	SetNonce(ctx context.Context, addr, nonce string) error
	TakeNonce(ctx context.Context, addr string) (string, error)
}

type Auth struct {
	nonces    NonceStore
	jwtSecret []byte
	log       *zap.Logger
}

func NewAuth(nonces NonceStore, secret []byte) Auth {
	return Auth{nonces: nonces, jwtSecret: secret, log: zap.L().Named("auth")}
}

func (a Auth) Challenge(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if _, err := blogs.ParseAccount(req.Address); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if a.nonces == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"err": "auth is not configured"})
		return
	}

	nonce := uuid.NewString()
	if err := a.nonces.SetNonce(c, req.Address, nonce); err != nil {
		a.log.Error("store nonce failed", zap.String("address", req.Address), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"err": "could not create challenge"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"nonce": nonce})
}

func (a Auth) Verify(c *gin.Context) {
	var req struct {
		Address   string `json:"address"   binding:"required"`
		Signature string `json:"signature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"err": err.Error()})
		return
	}
	if a.nonces == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"err": "auth is not configured"})
		return
	}

	nonce, err := a.nonces.TakeNonce(c, req.Address)
	if err != nil {
		if !errors.Is(err, data.ErrNoNonce) {
			a.log.Error("read nonce failed", zap.String("address", req.Address), zap.Error(err))
		}
		c.JSON(http.StatusUnauthorized, gin.H{"err": "challenge expired"})
		return
	}
	if err := keys.Verify(req.Address, req.Signature, nonce); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"err": "bad signature"})
		return
	}

	token, err := issueJWT(req.Address, a.jwtSecret)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"err": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}
