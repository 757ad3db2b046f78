package views

import (
	"strconv"
	"time"

	"github.com/stake-plus/df-blogs/src/ipfs"
)

// NotificationMessage is the sentence shown after the actor's name. reply marks a CommentCreated
// whose comment answers another comment.
func NotificationMessage(event string, reply bool) string {
	switch event {
	case ipfs.AccountFollowed:
		return "followed your account"
	case ipfs.BlogFollowed:
		return "followed your blog"
	case ipfs.CommentCreated:
		if reply {
			return "replied to your comment"
		}
		return "commented your post"
	case ipfs.PostShared:
		return "shared your post"
	case ipfs.PostReactionCreated:
		return "reacted to your post"
	case ipfs.CommentReactionCreated:
		return "reacted to your comment"
	case ipfs.BlogCreated:
		return "created a blog"
	}
	return ""
}

type ActivityView struct {
	ID      string    `json:"id"`
	Actor   string    `json:"actor"`
	Event   string    `json:"event"`
	Message string    `json:"message"`
	Date    time.Time `json:"date"`
	Others  int       `json:"others,omitempty"`
	Subject *Header   `json:"subject,omitempty"`
}

// RenderActivity renders one notification. subject is the name-only view of the blog or post the
// activity is about, if one could be resolved.
func RenderActivity(a ipfs.Activity, reply bool, subject *Header) ActivityView {
	others := 0
	if a.AggCount > 1 {
		others = a.AggCount - 1
	}
	return ActivityView{
		ID:      a.ID,
		Actor:   a.Account,
		Event:   a.Event,
		Message: NotificationMessage(a.Event, reply),
		Date:    a.Date,
		Others:  others,
		Subject: subject,
	}
}

// Text is the one-line form used by the CLI and the Discord relay.
func (a ActivityView) Text() string {
	s := a.Actor
	if a.Others == 1 {
		s += " and 1 other"
	} else if a.Others > 1 {
		s += " and " + strconv.Itoa(a.Others) + " others"
	}
	s += " " + a.Message
	if a.Subject != nil && a.Subject.Label != "" {
		s += " " + a.Subject.Label
	}
	return s
}
