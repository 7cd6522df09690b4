package bot

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"plug-market-bot/internal/bot/customid"
	apperrors "plug-market-bot/internal/common/errors"
	ticketmodels "plug-market-bot/internal/features/ticket/models"
	ticketservice "plug-market-bot/internal/features/ticket/service"
	"plug-market-bot/internal/platform/discord"
)

func (b *Bot) handleTicket(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	if len(data.Options) == 0 {
		return nil
	}
	sub := data.Options[0]
	opts := optionMap(sub.Options)

	switch sub.Name {
	case "panel":
		if i.Member == nil || i.Member.Permissions&discordgo.PermissionManageServer == 0 {
			return apperrors.NewUnauthorizedError("manage server permission required")
		}
		if err := b.sendTicketPanel(i.ChannelID); err != nil {
			return apperrors.NewDiscordAPIError("post ticket panel", err)
		}
		return b.reply(i, discord.SuccessEmbed("✅ Panel posted", "The ticket panel is live in this channel."), true)

	case "close":
		ch, err := b.session.Channel(i.ChannelID)
		if err != nil {
			return apperrors.NewDiscordAPIError("fetch channel", err)
		}
		if !ticketmodels.IsTicketChannel(ch.Name) {
			return apperrors.New(apperrors.ErrCodeNotTicket, "This command can only be used in ticket channels")
		}
		return b.replyWith(i, &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{discord.WarningEmbed("🔒 Close this ticket?",
				"The channel will be deleted shortly after closing. Are you sure?")},
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.Button{
							CustomID: customid.New(customid.KindCloseConfirm).Encode(),
							Label:    "Close Ticket",
							Style:    discordgo.DangerButton,
							Emoji:    &discordgo.ComponentEmoji{Name: "🔒"},
						},
						discordgo.Button{
							CustomID: customid.New(customid.KindCloseCancel).Encode(),
							Label:    "Cancel",
							Style:    discordgo.SecondaryButton,
						},
					},
				},
			},
		})

	case "add":
		user := userOption(b.session, opts, "user")
		if user == nil {
			return apperrors.NewValidationError("user", "is required")
		}
		ch, err := b.session.Channel(i.ChannelID)
		if err != nil {
			return apperrors.NewDiscordAPIError("fetch channel", err)
		}
		if err := b.tickets.AddUser(context.Background(), i.ChannelID, ch.Name, actor(i), user.ID); err != nil {
			return err
		}
		return b.reply(i, discord.SuccessEmbed("✅ User added",
			fmt.Sprintf("<@%s> now has access to this ticket.", user.ID)), false)

	case "remove":
		user := userOption(b.session, opts, "user")
		if user == nil {
			return apperrors.NewValidationError("user", "is required")
		}
		ch, err := b.session.Channel(i.ChannelID)
		if err != nil {
			return apperrors.NewDiscordAPIError("fetch channel", err)
		}
		if err := b.tickets.RemoveUser(context.Background(), i.ChannelID, ch.Name, actor(i), user.ID); err != nil {
			return err
		}
		return b.reply(i, discord.SuccessEmbed("✅ User removed",
			fmt.Sprintf("<@%s> no longer has access to this ticket.", user.ID)), false)
	}

	return nil
}

func (b *Bot) handleTicketCategorySelect(i *discordgo.InteractionCreate) error {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return nil
	}

	who := actor(i)
	channelID, err := b.tickets.Open(context.Background(), ticketservice.OpenInput{
		GuildID:  i.GuildID,
		UserID:   who.ID,
		Username: usernameOf(i),
		UserTag:  who.Tag,
		Category: values[0],
	})
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeTicketExists {
			existing, _ := appErr.Details["channel_id"].(string)
			return b.reply(i, discord.WarningEmbed("⚠️ Ticket already open",
				fmt.Sprintf("You already have an open ticket: <#%s>", existing)), true)
		}
		return err
	}

	return b.reply(i, discord.SuccessEmbed("🎫 Ticket created",
		fmt.Sprintf("Your ticket is ready: <#%s>", channelID)), true)
}

func (b *Bot) handleCloseConfirm(i *discordgo.InteractionCreate) error {
	ch, err := b.session.Channel(i.ChannelID)
	if err != nil {
		return apperrors.NewDiscordAPIError("fetch channel", err)
	}

	if err := b.tickets.Close(context.Background(), i.ChannelID, ch.Name, ch.Topic, actor(i)); err != nil {
		return err
	}

	return b.replyWith(i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{discord.WarningEmbed("🔒 Ticket closing",
			fmt.Sprintf("This channel will be deleted in %d seconds.", int(ticketservice.DeleteDelay.Seconds())))},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.Button{
						CustomID: customid.New(customid.KindCloseCancel).Encode(),
						Label:    "Cancel",
						Style:    discordgo.SecondaryButton,
						Emoji:    &discordgo.ComponentEmoji{Name: "↩️"},
					},
				},
			},
		},
	})
}

func (b *Bot) handleCloseCancel(i *discordgo.InteractionCreate) error {
	ch, err := b.session.Channel(i.ChannelID)
	if err != nil {
		return apperrors.NewDiscordAPIError("fetch channel", err)
	}

	if err := b.tickets.CancelClose(context.Background(), i.ChannelID, ch.Name, ch.Topic, actor(i)); err != nil {
		return err
	}

	return b.reply(i, discord.SuccessEmbed("↩️ Close cancelled", "This ticket stays open."), false)
}

// statusOptions are the quick rename presets staff pick from.
var statusOptions = []struct {
	Label string
	Value string
	Emoji string
}{
	{"Replace done", "replace-done", "✅"},
	{"Waiting proofs", "waiting-proofs", "⏳"},
	{"Pending replace", "pending-replace", "🔄"},
}

func (b *Bot) handleRename(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	opts := optionMap(data.Options)

	if name := stringOption(opts, "name"); name != "" {
		ch, err := b.session.Channel(i.ChannelID)
		if err != nil {
			return apperrors.NewDiscordAPIError("fetch channel", err)
		}
		renamed, err := b.tickets.Rename(context.Background(), i.ChannelID, ch.Name, actor(i), name)
		if err != nil {
			return err
		}
		return b.reply(i, discord.SuccessEmbed("✏️ Channel renamed",
			fmt.Sprintf("This channel is now **%s**.", renamed)), false)
	}

	options := make([]discordgo.SelectMenuOption, 0, len(statusOptions))
	for _, s := range statusOptions {
		options = append(options, discordgo.SelectMenuOption{
			Label: s.Label,
			Value: s.Value,
			Emoji: &discordgo.ComponentEmoji{Name: s.Emoji},
		})
	}

	return b.replyWith(i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{discord.InfoEmbed("✏️ Rename ticket",
			"Pick a status for this ticket channel.")},
		Flags: discordgo.MessageFlagsEphemeral,
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{
					discordgo.SelectMenu{
						CustomID:    customid.New(customid.KindRenameStatus).Encode(),
						Placeholder: "Select a status...",
						Options:     options,
					},
				},
			},
		},
	})
}

func (b *Bot) handleRenameStatus(i *discordgo.InteractionCreate) error {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return nil
	}

	ch, err := b.session.Channel(i.ChannelID)
	if err != nil {
		return apperrors.NewDiscordAPIError("fetch channel", err)
	}

	renamed, err := b.tickets.Rename(context.Background(), i.ChannelID, ch.Name, actor(i), values[0])
	if err != nil {
		return err
	}

	return b.reply(i, discord.SuccessEmbed("✏️ Channel renamed",
		fmt.Sprintf("This channel is now **%s**.", renamed)), false)
}

func (b *Bot) handleReviewSelect(i *discordgo.InteractionCreate, id customid.ID) error {
	values := i.MessageComponentData().Values
	if len(values) == 0 {
		return nil
	}
	rating, err := strconv.Atoi(values[0])
	if err != nil {
		return apperrors.NewValidationError("rating", "must be a number")
	}

	if err := b.tickets.SubmitReview(context.Background(), id.Arg(0), rating); err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeReviewConsumed {
			return b.reply(i, discord.WarningEmbed("⚠️ Already submitted",
				"You already rated this ticket. Thank you!"), true)
		}
		return err
	}

	return b.reply(i, discord.SuccessEmbed("💜 Thank you!",
		fmt.Sprintf("Your %s rating has been recorded.", strings.Repeat("⭐", rating))), true)
}

func (b *Bot) handleRequirements(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	opts := optionMap(data.Options)
	category := stringOption(opts, "category")

	var content string
	if target := userOption(b.session, opts, "user"); target != nil {
		content = fmt.Sprintf("<@%s>", target.ID)
	}

	if category != "" {
		info := ticketmodels.GetCategoryInfo(category)
		return b.replyWith(i, &discordgo.InteractionResponseData{
			Content: content,
			Embeds:  []*discordgo.MessageEmbed{requirementsEmbed(info)},
		})
	}

	var sections []string
	for _, info := range ticketmodels.AllCategories() {
		lines := make([]string, len(info.Requirements))
		for idx, r := range info.Requirements {
			lines[idx] = "• " + r
		}
		sections = append(sections, fmt.Sprintf("%s **%s**\n%s", info.Emoji, info.Name, strings.Join(lines, "\n")))
	}
	return b.replyWith(i, &discordgo.InteractionResponseData{
		Content: content,
		Embeds:  []*discordgo.MessageEmbed{discord.InfoEmbed("📋 Ticket requirements", strings.Join(sections, "\n\n"))},
	})
}

func requirementsEmbed(info ticketmodels.CategoryInfo) *discordgo.MessageEmbed {
	lines := make([]string, len(info.Requirements))
	for idx, r := range info.Requirements {
		lines[idx] = "• " + r
	}
	return discord.InfoEmbed(
		fmt.Sprintf("%s %s", info.Emoji, info.Name),
		fmt.Sprintf("%s\n\n**Please include:**\n%s", info.Description, strings.Join(lines, "\n")))
}

// usernameOf returns the guild-agnostic username used to derive the ticket
// channel name.
func usernameOf(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.Username
	}
	if i.User != nil {
		return i.User.Username
	}
	return ""
}
