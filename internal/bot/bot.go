package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"plug-market-bot/internal/bot/customid"
	"plug-market-bot/internal/common/config"
	"plug-market-bot/internal/common/logger"
	"plug-market-bot/internal/features/credentials"
	giveawayservice "plug-market-bot/internal/features/giveaway/service"
	invoiceservice "plug-market-bot/internal/features/invoice/service"
	ticketmodels "plug-market-bot/internal/features/ticket/models"
	ticketservice "plug-market-bot/internal/features/ticket/service"
	"plug-market-bot/internal/platform/discord"
)

// Bot wires the feature engines to the Discord gateway: it registers the
// interaction handlers and owns the ready-time setup.
type Bot struct {
	session   *discordgo.Session
	cfg       *config.Config
	adapter   *discord.Adapter
	giveaways *giveawayservice.Service
	tickets   *ticketservice.Service
	invoices  *invoiceservice.Service
	creds     *credentials.Service
	log       zerolog.Logger
}

func New(
	session *discordgo.Session,
	cfg *config.Config,
	adapter *discord.Adapter,
	giveaways *giveawayservice.Service,
	tickets *ticketservice.Service,
	invoices *invoiceservice.Service,
	creds *credentials.Service,
) *Bot {
	return &Bot{
		session:   session,
		cfg:       cfg,
		adapter:   adapter,
		giveaways: giveaways,
		tickets:   tickets,
		invoices:  invoices,
		creds:     creds,
		log:       logger.Component("bot"),
	}
}

// Start registers the gateway handlers. The session must not be open yet.
func (b *Bot) Start() {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onInteraction)
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	b.log.Info().
		Str("username", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Msg("gateway ready")

	if err := s.UpdateWatchStatus(0, "Plug Market | /ticket"); err != nil {
		b.log.Warn().Err(err).Msg("failed to set activity")
	}

	b.publishTicketPanel()

	if err := b.giveaways.Restore(context.Background()); err != nil {
		b.log.Error().Err(err).Msg("failed to restore giveaway timers")
	}
}

// publishTicketPanel replaces the ticket panel in the configured channel,
// clearing the bot's earlier panel messages so only one panel is live.
func (b *Bot) publishTicketPanel() {
	channelID := b.cfg.Discord.TicketPanelChannel
	if channelID == "" {
		return
	}

	msgs, err := b.session.ChannelMessages(channelID, 50, "", "", "")
	if err != nil {
		b.log.Warn().Err(err).Str("channel_id", channelID).Msg("failed to list panel channel messages")
	} else {
		botID := b.session.State.User.ID
		for _, m := range msgs {
			if m.Author != nil && m.Author.ID == botID {
				if err := b.session.ChannelMessageDelete(channelID, m.ID); err != nil {
					b.log.Warn().Err(err).Str("message_id", m.ID).Msg("failed to delete stale panel message")
				}
			}
		}
	}

	if err := b.sendTicketPanel(channelID); err != nil {
		b.log.Error().Err(err).Str("channel_id", channelID).Msg("failed to publish ticket panel")
		return
	}
	b.log.Info().Str("channel_id", channelID).Msg("ticket panel published")
}

func (b *Bot) sendTicketPanel(channelID string) error {
	var lines []string
	for _, info := range ticketmodels.AllCategories() {
		lines = append(lines, fmt.Sprintf("%s **%s**\n%s", info.Emoji, info.Name, info.Description))
	}

	embed := &discordgo.MessageEmbed{
		Title: "🎫 Plug Market Support",
		Description: "Need help? Select the category that best fits your inquiry and a private channel will be created for you.\n\n" +
			strings.Join(lines, "\n\n"),
		Color:  discord.ColorPrimary,
		Footer: &discordgo.MessageEmbedFooter{Text: "Plug Market Support System"},
	}

	options := make([]discordgo.SelectMenuOption, 0, 4)
	for _, info := range ticketmodels.AllCategories() {
		options = append(options, discordgo.SelectMenuOption{
			Label:       info.Label,
			Value:       string(info.Value),
			Description: info.Description,
			Emoji:       &discordgo.ComponentEmoji{Name: info.Emoji},
		})
	}

	_, err := b.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						CustomID:    customid.New(customid.KindTicketCategory).Encode(),
						Placeholder: "Select a category...",
						Options:     options,
					},
				},
			},
		},
	})
	return err
}
