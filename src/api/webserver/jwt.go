package webserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	addrKey  = "addr"
	tokenTTL = time.Hour
)

func issueJWT(addr string, secret []byte) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"addr": addr,
		"exp":  time.Now().Add(tokenTTL).Unix(),
	})
	return tok.SignedString(secret)
}

// parseJWT returns the addr claim of a valid bearer token.
func parseJWT(header string, secret []byte) (string, bool) {
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	tok, err := jwt.Parse(header[7:], func(t *jwt.Token) (interface{}, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !tok.Valid {
		return "", false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", false
	}
	addr, ok := claims["addr"].(string)
	return addr, ok && addr != ""
}

func JWTMiddleware(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		addr, ok := parseJWT(c.GetHeader("Authorization"), secret)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"err": "invalid or missing token"})
			return
		}
		c.Set(addrKey, addr)
		c.Next()
	}
}

// OptionalJWT sets the viewer when a valid token is sent and lets anonymous requests through.
func OptionalJWT(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		if addr, ok := parseJWT(c.GetHeader("Authorization"), secret); ok {
			c.Set(addrKey, addr)
		}
		c.Next()
	}
}
