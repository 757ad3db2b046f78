package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/stake-plus/df-blogs/src/views"
)

const (
	maxMessageLen     = 2000
	maxButtonLabelLen = 80
)

// Poster is the part of *discordgo.Session the relay sends through.
type Poster interface {
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// BuildMessage renders a notification as a channel message, with a link button to its subject
// when site is set.
func BuildMessage(a views.ActivityView, site string) *discordgo.MessageSend {
	msg := &discordgo.MessageSend{
		Content: truncate(WrapURLsNoEmbed(a.Text()), maxMessageLen),
	}
	if a.Subject == nil {
		return msg
	}
	link := siteLink(site, a.Subject.Link)
	if link == "" {
		return msg
	}
	label := a.Subject.Label
	if label == "" {
		label = "Open"
	}
	msg.Components = []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label: truncate(label, maxButtonLabelLen),
				Style: discordgo.LinkButton,
				URL:   link,
			},
		}},
	}
	return msg
}
