package webserver

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/forms"
	"github.com/stake-plus/df-blogs/src/ipfs"
	"github.com/stake-plus/df-blogs/src/loader"
	polkadot "github.com/stake-plus/df-blogs/src/polkadot-go"
	"github.com/stake-plus/df-blogs/src/views"
	"github.com/stake-plus/df-blogs/src/widgets"
)

var errNotFound = errors.New("not found")

func notFound(entity string) error {
	return fmt.Errorf("%s %w", entity, errNotFound)
}

// badRequest marks malformed path or query input.
type badRequest struct{ err error }

func (e badRequest) Error() string { return e.err.Error() }
func (e badRequest) Unwrap() error { return e.err }

func statusOf(err error) int {
	var (
		fields  forms.FieldErrors
		bad     badRequest
		httpErr *ipfs.HTTPError
	)
	switch {
	case errors.As(err, &fields), errors.As(err, &bad), errors.Is(err, widgets.ErrOwnAction):
		return http.StatusBadRequest
	case errors.Is(err, errNotFound), errors.Is(err, widgets.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ipfs.ErrNotFound), errors.As(err, &httpErr):
		return http.StatusBadGateway
	case errors.Is(err, forms.ErrNothingChanged), errors.Is(err, widgets.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, polkadot.ErrTxCancelled), errors.Is(err, polkadot.ErrTxUnknown):
		return http.StatusAccepted
	case errors.Is(err, polkadot.ErrTxFailed):
		return http.StatusUnprocessableEntity
	case errors.Is(err, widgets.ErrReadOnly), errors.Is(err, views.ErrNoActivitySource):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, err error) {
	status := statusOf(err)
	body := gin.H{"err": err.Error()}

	var fields forms.FieldErrors
	if errors.As(err, &fields) {
		body["fields"] = fields
	}
	if status == http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("route", c.FullPath()), zap.Error(err))
	}
	c.AbortWithStatusJSON(status, body)
}

// respond writes a rendered entity, or the status its header carries.
func (s *Server) respond(c *gin.Context, h views.Header, view any) {
	switch h.State {
	case loader.Absent.String():
		c.JSON(http.StatusNotFound, gin.H{"err": h.Message})
	case loader.Failed.String():
		c.JSON(http.StatusBadGateway, gin.H{"err": h.Message})
	default:
		c.JSON(http.StatusOK, view)
	}
}

func idParam(c *gin.Context, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest{fmt.Errorf("invalid %s %q", name, c.Param(name))}
	}
	return id, nil
}

func accountParam(c *gin.Context) (blogs.AccountID, error) {
	acc, err := blogs.ParseAccount(c.Param("address"))
	if err != nil {
		return acc, badRequest{err}
	}
	return acc, nil
}

// modeParam reads ?mode=, falling back to def when it is absent.
func modeParam(c *gin.Context, def views.Mode) (views.Mode, error) {
	raw, ok := c.GetQuery("mode")
	if !ok || raw == "" {
		return def, nil
	}
	m, err := views.ParseMode(raw)
	if err != nil {
		return def, badRequest{err}
	}
	return m, nil
}

func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, badRequest{fmt.Errorf("invalid %s %q", name, raw)}
	}
	return n, nil
}
