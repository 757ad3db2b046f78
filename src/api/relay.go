package api

import (
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/stake-plus/df-blogs/src/api/data"
	"github.com/stake-plus/df-blogs/src/blogs"
	"github.com/stake-plus/df-blogs/src/discord"
)

// Relay builds the Discord notification relay for RELAY_ADDRESS, or the signer when unset.
func (a *App) Relay() (*discord.Relay, error) {
	cfg := a.Config
	if cfg.DiscordToken == "" || cfg.DiscordChannelID == "" {
		return nil, errors.New("DISCORD_TOKEN and DISCORD_CHANNEL_ID are required")
	}
	if a.Redis == nil {
		return nil, errors.New("REDIS_URL is required to keep the relay cursor")
	}

	address := cfg.RelayAddress
	if address == "" && a.Signer != nil {
		address = a.Signer.Address()
	}
	if address == "" {
		return nil, errors.New("RELAY_ADDRESS or SIGNER_SEED is required")
	}
	acc, err := blogs.ParseAccount(address)
	if err != nil {
		return nil, fmt.Errorf("relay address: %w", err)
	}

	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("discord session: %w", err)
	}

	return &discord.Relay{
		Source:    a.Content,
		Renderer:  a.Pages(),
		Poster:    session,
		Cursor:    data.NewCursor(a.Redis, acc.Address(cfg.SS58Prefix)),
		ChannelID: cfg.DiscordChannelID,
		Account:   acc,
		Prefix:    cfg.SS58Prefix,
		SiteURL:   cfg.SiteURL,
		Interval:  cfg.RelayInterval(),
		PageSize:  cfg.FeedCount,
	}, nil
}
