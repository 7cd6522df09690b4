package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"plug-market-bot/internal/bot/customid"
	"plug-market-bot/internal/common/logger"
	giveawaymodels "plug-market-bot/internal/features/giveaway/models"
	ticketmodels "plug-market-bot/internal/features/ticket/models"
	ticketservice "plug-market-bot/internal/features/ticket/service"
)

// AdapterConfig carries the guild wiring the adapter needs.
type AdapterConfig struct {
	TicketsCategory string
	SupportRole     string
	ReviewChannel   string
	LogChannel      string
}

// Adapter drives the Discord gateway for both engines: it is the giveaway
// announcer and the ticket platform.
type Adapter struct {
	session *discordgo.Session
	cfg     AdapterConfig
	log     zerolog.Logger
}

func NewAdapter(session *discordgo.Session, cfg AdapterConfig) *Adapter {
	return &Adapter{
		session: session,
		cfg:     cfg,
		log:     logger.Component("discord"),
	}
}

const (
	ownerPermissions = discordgo.PermissionViewChannel |
		discordgo.PermissionSendMessages |
		discordgo.PermissionReadMessageHistory |
		discordgo.PermissionAttachFiles
	staffPermissions = ownerPermissions | discordgo.PermissionManageMessages
)

// --- giveaway announcer ---

func giveawayDescription(g *giveawaymodels.Giveaway, entries int) string {
	return fmt.Sprintf(
		"🎉 **Ends:** in %s | 👑 **Host:** <@%s>\n"+
			"📊 **Entries:** %d | 🏆 **Count:** %d\n\n"+
			"*Click the button below to secure your entry!*",
		giveawaymodels.FormatDuration(time.Until(g.Deadline)),
		g.HostID,
		entries,
		g.Winners,
	)
}

func giveawayEmbed(g *giveawaymodels.Giveaway, entries int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🎁 " + g.Prize,
		Description: giveawayDescription(g, entries),
		Color:       ColorPrimary,
		Timestamp:   g.Deadline.Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: "Ends"},
	}
}

func joinRow(disabled bool) []discordgo.MessageComponent {
	label := "Participate!"
	emoji := "🎉"
	style := discordgo.PrimaryButton
	if disabled {
		label = "Ended"
		emoji = "🏁"
		style = discordgo.SecondaryButton
	}
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					CustomID: customid.New(customid.KindGiveawayJoin).Encode(),
					Label:    label,
					Style:    style,
					Emoji:    &discordgo.ComponentEmoji{Name: emoji},
					Disabled: disabled,
				},
			},
		},
	}
}

func (a *Adapter) PublishGiveaway(ctx context.Context, g *giveawaymodels.Giveaway) (string, error) {
	msg, err := a.session.ChannelMessageSendComplex(g.ChannelID, &discordgo.MessageSend{
		Content:    "@everyone",
		Embeds:     []*discordgo.MessageEmbed{giveawayEmbed(g, 0)},
		Components: joinRow(false),
	})
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (a *Adapter) UpdateEntryCount(ctx context.Context, g *giveawaymodels.Giveaway) error {
	embeds := []*discordgo.MessageEmbed{giveawayEmbed(g, len(g.Entrants))}
	_, err := a.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel: g.ChannelID,
		ID:      g.ID,
		Embeds:  &embeds,
	})
	return err
}

func (a *Adapter) AnnounceResult(ctx context.Context, g *giveawaymodels.Giveaway, winnerIDs []string) error {
	var description string
	color := ColorError
	if len(winnerIDs) == 0 {
		description = "❌ No participants in this giveaway."
	} else {
		mentions := make([]string, len(winnerIDs))
		for i, id := range winnerIDs {
			mentions[i] = "<@" + id + ">"
		}
		description = fmt.Sprintf("🎉 **Winner:** %s\n\nCongratulations! You won **%s**",
			strings.Join(mentions, ", "), g.Prize)
		color = ColorSuccess
	}

	embeds := []*discordgo.MessageEmbed{{
		Title:       "🎁 " + g.Prize,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer:      &discordgo.MessageEmbedFooter{Text: "Giveaway ended"},
	}}
	components := joinRow(true)
	if _, err := a.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    g.ChannelID,
		ID:         g.ID,
		Embeds:     &embeds,
		Components: &components,
	}); err != nil {
		return err
	}

	if len(winnerIDs) > 0 {
		mentions := make([]string, len(winnerIDs))
		for i, id := range winnerIDs {
			mentions[i] = "<@" + id + ">"
		}
		_, err := a.session.ChannelMessageSend(g.ChannelID, fmt.Sprintf(
			"🎊 Congratulations %s! You won **%s**\n\nPlease open a ticket to claim your prize!",
			strings.Join(mentions, ", "), g.Prize))
		return err
	}
	return nil
}

// --- ticket platform ---

func (a *Adapter) FindChannelByName(ctx context.Context, guildID, name string) (string, error) {
	channels, err := a.session.GuildChannels(guildID)
	if err != nil {
		return "", err
	}
	for _, ch := range channels {
		if ch.Type == discordgo.ChannelTypeGuildText && ch.Name == name {
			return ch.ID, nil
		}
	}
	return "", nil
}

func (a *Adapter) CreateTicketChannel(ctx context.Context, guildID string, spec ticketservice.ChannelSpec) (string, error) {
	overwrites := []*discordgo.PermissionOverwrite{
		{
			// @everyone shares its ID with the guild
			ID:   guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    spec.OwnerID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: ownerPermissions,
		},
		{
			ID:    a.cfg.SupportRole,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: staffPermissions,
		},
	}

	channel, err := a.session.GuildChannelCreateComplex(guildID, discordgo.GuildChannelCreateData{
		Name:                 spec.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                spec.Topic,
		ParentID:             a.cfg.TicketsCategory,
		PermissionOverwrites: overwrites,
	})
	if err != nil {
		return "", err
	}

	if err := a.postTicketInstructions(channel.ID, spec); err != nil {
		a.log.Warn().Err(err).Str("channel_id", channel.ID).Msg("failed to post ticket instructions")
	}

	a.PostLog(SuccessEmbed("📊 Ticket Created", fmt.Sprintf(
		"👤 User: <@%s>\n📁 Channel: <#%s>\n📂 Category: %s",
		spec.OwnerID, channel.ID, spec.Category.Name)))

	return channel.ID, nil
}

func (a *Adapter) postTicketInstructions(channelID string, spec ticketservice.ChannelSpec) error {
	info := spec.Category

	reqs := make([]string, len(info.Requirements))
	for i, r := range info.Requirements {
		reqs[i] = "• " + r
	}

	embed := &discordgo.MessageEmbed{
		Title: "🎫 " + info.Name + " Ticket",
		Description: fmt.Sprintf(
			"Hello <@%s>! Thank you for contacting **Plug Market**.\n\n"+
				"**Category:** %s\n"+
				"**Description:** %s\n\n"+
				"A member of the support team will assist you soon. Meanwhile, you can provide more details about your inquiry.\n\n"+
				"**What information should you include?**\n%s\n\n"+
				"*Response time may vary. Please be patient.*",
			spec.OwnerID, info.Name, info.Description, strings.Join(reqs, "\n")),
		Color: ColorPrimary,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "📋 Ticket Status", Value: "🟢 **Open**", Inline: true},
			{Name: "👤 User", Value: "<@" + spec.OwnerID + ">", Inline: true},
			{Name: "📅 Creation Date", Value: fmt.Sprintf("<t:%d:F>", time.Now().Unix()), Inline: true},
		},
		Footer:    &discordgo.MessageEmbedFooter{Text: footerText},
		Timestamp: time.Now().Format(time.RFC3339),
	}

	_, err := a.session.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Content: fmt.Sprintf("<@%s> | <@&%s>", spec.OwnerID, a.cfg.SupportRole),
		Embeds:  []*discordgo.MessageEmbed{embed},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						CustomID: customid.New(customid.KindCloseConfirm).Encode(),
						Label:    "Close Ticket",
						Style:    discordgo.DangerButton,
						Emoji:    &discordgo.ComponentEmoji{Name: "🔒"},
					},
				},
			},
		},
	})
	return err
}

func (a *Adapter) DeleteChannel(ctx context.Context, channelID string) error {
	_, err := a.session.ChannelDelete(channelID)
	return err
}

func (a *Adapter) GrantChannelAccess(ctx context.Context, channelID, userID string) error {
	return a.session.ChannelPermissionSet(channelID, userID,
		discordgo.PermissionOverwriteTypeMember,
		discordgo.PermissionViewChannel|discordgo.PermissionSendMessages|discordgo.PermissionReadMessageHistory,
		0)
}

func (a *Adapter) RevokeChannelAccess(ctx context.Context, channelID, userID string) error {
	return a.session.ChannelPermissionDelete(channelID, userID)
}

func (a *Adapter) RenameChannel(ctx context.Context, channelID, name string) error {
	_, err := a.session.ChannelEdit(channelID, &discordgo.ChannelEdit{Name: name})
	return err
}

func (a *Adapter) History(ctx context.Context, channelID, beforeID string, limit int) ([]ticketservice.Message, error) {
	msgs, err := a.session.ChannelMessages(channelID, limit, beforeID, "", "")
	if err != nil {
		return nil, err
	}

	out := make([]ticketservice.Message, 0, len(msgs))
	for _, m := range msgs {
		entry := ticketservice.Message{
			ID:        m.ID,
			Content:   m.Content,
			Timestamp: m.Timestamp,
		}
		if m.Author != nil {
			entry.AuthorTag = m.Author.String()
		}
		for _, att := range m.Attachments {
			entry.AttachmentURLs = append(entry.AttachmentURLs, att.URL)
		}
		for _, emb := range m.Embeds {
			if emb.Title != "" {
				entry.EmbedTitles = append(entry.EmbedTitles, emb.Title)
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func (a *Adapter) ArchiveTranscript(ctx context.Context, channelID, transcript string) error {
	if a.cfg.LogChannel == "" {
		return nil
	}
	_, err := a.session.ChannelMessageSendComplex(a.cfg.LogChannel, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{InfoEmbed("📜 Ticket transcript",
			fmt.Sprintf("Transcript of <#%s>.", channelID))},
		Files: []*discordgo.File{{
			Name:        "transcript-" + channelID + ".txt",
			ContentType: "text/plain",
			Reader:      strings.NewReader(transcript),
		}},
	})
	return err
}

func (a *Adapter) SendReviewRequest(ctx context.Context, ownerID string, req *ticketmodels.ReviewRequest, transcript string) error {
	dm, err := a.session.UserChannelCreate(ownerID)
	if err != nil {
		return err
	}

	options := make([]discordgo.SelectMenuOption, 0, 5)
	for i := 1; i <= 5; i++ {
		options = append(options, discordgo.SelectMenuOption{
			Label: strings.Repeat("⭐", i),
			Value: fmt.Sprintf("%d", i),
		})
	}

	send := &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{InfoEmbed(
			"⭐ Rate your support experience",
			"Your ticket has been closed. How was the support you received? Pick a rating below.")},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						CustomID:    customid.New(customid.KindReviewSelect, req.ID).Encode(),
						Placeholder: "Select a rating...",
						Options:     options,
					},
				},
			},
		},
	}
	if transcript != "" {
		send.Files = []*discordgo.File{{
			Name:        "transcript.txt",
			ContentType: "text/plain",
			Reader:      strings.NewReader(transcript),
		}}
	}

	_, err = a.session.ChannelMessageSendComplex(dm.ID, send)
	return err
}

func (a *Adapter) PostReview(ctx context.Context, rec ticketmodels.ReviewRecord) error {
	if a.cfg.ReviewChannel == "" {
		return nil
	}
	embed := &discordgo.MessageEmbed{
		Title: "⭐ New Review",
		Description: fmt.Sprintf("%s\n\n**Customer:** <@%s>\n**Staff:** <@%s>\n**Ticket:** %s",
			strings.Repeat("⭐", rec.Rating), rec.OwnerID, rec.StaffID, rec.TicketChannelID),
		Color:     ColorPrimary,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	_, err := a.session.ChannelMessageSendEmbed(a.cfg.ReviewChannel, embed)
	return err
}

// PostLog sends an embed to the log channel when one is configured.
func (a *Adapter) PostLog(embed *discordgo.MessageEmbed) {
	if a.cfg.LogChannel == "" {
		return
	}
	if _, err := a.session.ChannelMessageSendEmbed(a.cfg.LogChannel, embed); err != nil {
		a.log.Warn().Err(err).Msg("failed to post log message")
	}
}

// DirectMessage sends an embed to a user's DM channel.
func (a *Adapter) DirectMessage(userID string, embed *discordgo.MessageEmbed) error {
	dm, err := a.session.UserChannelCreate(userID)
	if err != nil {
		return err
	}
	_, err = a.session.ChannelMessageSendEmbed(dm.ID, embed)
	return err
}
