// Package discord relays an account's blogs notifications to a Discord channel.
package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/jpillora/backoff"
	"go.uber.org/zap"

	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/ipfs"
	"github.com/stake-plus/df-blogs/src/logging"
	"github.com/stake-plus/df-blogs/src/metrics"
	"github.com/stake-plus/df-blogs/src/views"
)

// Cursor remembers the id of the last delivered activity. *data.Cursor implements it.
type Cursor interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, id string) error
}

// Renderer turns activity records into notification views. *views.Pages implements it.
type Renderer interface {
	RenderActivities(ctx context.Context, acts []ipfs.Activity, v views.Viewer) []views.ActivityView
}

type Relay struct {
	Source    ipfs.ActivitySource
	Renderer  Renderer
	Poster    Poster
	Cursor    Cursor
	ChannelID string
	Account   blogs.AccountID
	Prefix    uint16
	SiteURL   string
	Interval  time.Duration
	PageSize  int

	log *zap.Logger
}

func (r *Relay) logger() *zap.Logger {
	if r.log == nil {
		r.log = zap.L().Named("relay").With(zap.String("address", r.Account.Address(r.Prefix)))
	}
	return r.log
}

// Run polls until ctx is done. Failed polls back off, longer when the upstream throttles.
func (r *Relay) Run(ctx context.Context) error {
	if r.Interval <= 0 {
		r.Interval = time.Minute
	}
	b := &backoff.Backoff{Min: r.Interval, Max: 10 * r.Interval, Factor: 2, Jitter: true}
	wait := time.Duration(0)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(wait):
		}

		n, err := r.Poll(ctx)
		switch {
		case err == nil:
			b.Reset()
			wait = r.Interval
			if n > 0 {
				r.logger().Info("notifications relayed", zap.Int("count", n))
			}
		case ctx.Err() != nil:
			return nil
		default:
			wait = b.Duration()
			if logging.IsRateLimit(err) {
				wait = b.Max
			}
			r.logger().Warn("relay poll failed", zap.Duration("retry_in", wait), zap.Error(err))
		}
	}
}

// Poll delivers the notifications newer than the cursor, oldest first, and advances the cursor
// after each one. The first poll without a cursor only records where the stream is.
func (r *Relay) Poll(ctx context.Context) (int, error) {
	last, err := r.Cursor.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load cursor: %w", err)
	}
	size := r.PageSize
	if size <= 0 {
		size = ipfs.DefaultActivityLimit
	}
	acts, err := r.Source.Notifications(ctx, r.Account.Address(r.Prefix), 0, size)
	if err != nil {
		return 0, fmt.Errorf("read notifications: %w", err)
	}
	if len(acts) == 0 {
		return 0, nil
	}
	if last == "" {
		return 0, r.Cursor.Save(ctx, acts[0].ID)
	}

	fresh := newerThan(acts, last)
	if len(fresh) == len(acts) {
		r.logger().Warn("cursor not in the latest page, some notifications may be skipped", zap.String("cursor", last))
	}

	viewer := views.As(r.Account, r.Prefix)
	sent := 0
	for i := len(fresh) - 1; i >= 0; i-- {
		view := r.Renderer.RenderActivities(ctx, fresh[i:i+1], viewer)[0]
		if _, err := r.Poster.ChannelMessageSendComplex(r.ChannelID, BuildMessage(view, r.SiteURL)); err != nil {
			return sent, fmt.Errorf("send %s: %w", view.ID, err)
		}
		metrics.NotificationsRelayed.Inc()
		sent++
		if err := r.Cursor.Save(ctx, view.ID); err != nil {
			return sent, fmt.Errorf("save cursor: %w", err)
		}
	}
	return sent, nil
}

// newerThan returns the records before the one with id last; acts is newest first.
func newerThan(acts []ipfs.Activity, last string) []ipfs.Activity {
	for i, a := range acts {
		if a.ID == last {
			return acts[:i]
		}
	}
	return acts
}
