package bot

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"plug-market-bot/internal/bot/customid"
	apperrors "plug-market-bot/internal/common/errors"
	"plug-market-bot/internal/platform/discord"
)

func (b *Bot) handleEmbed(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	opts := optionMap(data.Options)
	raw := stringOption(opts, "json")

	var embed discordgo.MessageEmbed
	if err := json.Unmarshal([]byte(raw), &embed); err != nil {
		return apperrors.NewValidationError("json", "is not a valid embed: "+err.Error())
	}
	if embed.Color == 0 {
		embed.Color = discord.ColorPrimary
	}

	channelID := i.ChannelID
	if o, ok := opts["channel"]; ok {
		channelID = o.ChannelValue(nil).ID
	}

	if _, err := b.session.ChannelMessageSendEmbed(channelID, &embed); err != nil {
		return apperrors.NewDiscordAPIError("post embed", err)
	}

	return b.reply(i, discord.SuccessEmbed("✅ Embed posted",
		fmt.Sprintf("Your embed is live in <#%s>.", channelID)), true)
}

func (b *Bot) handleSuggest(i *discordgo.InteractionCreate) error {
	return b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: customid.New(customid.KindSuggestModal).Encode(),
			Title:    "Send a suggestion",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "suggestion",
							Label:       "Your suggestion",
							Style:       discordgo.TextInputParagraph,
							Required:    true,
							MaxLength:   1000,
							Placeholder: "Tell us what we could improve...",
						},
					},
				},
			},
		},
	})
}

func (b *Bot) handleSuggestModalSubmit(i *discordgo.InteractionCreate) error {
	text := textInputValue(i.ModalSubmitData(), "suggestion")
	if text == "" {
		return apperrors.NewValidationError("suggestion", "must not be empty")
	}

	channelID := b.cfg.Discord.SuggestionChannel
	if channelID == "" {
		return b.reply(i, discord.WarningEmbed("⚠️ Suggestions disabled",
			"This server has no suggestion channel configured."), true)
	}

	who := actor(i)
	embed := discord.InfoEmbed("💡 New suggestion",
		fmt.Sprintf("%s\n\n**From:** <@%s>", text, who.ID))
	msg, err := b.session.ChannelMessageSendEmbed(channelID, embed)
	if err != nil {
		return apperrors.NewDiscordAPIError("post suggestion", err)
	}

	// Voting reactions.
	if err := b.session.MessageReactionAdd(channelID, msg.ID, "👍"); err == nil {
		_ = b.session.MessageReactionAdd(channelID, msg.ID, "👎")
	}

	return b.reply(i, discord.SuccessEmbed("💡 Suggestion sent",
		"Thank you! The staff team will take a look."), true)
}

func (b *Bot) handleSetup(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	if len(data.Options) == 0 {
		return nil
	}

	switch data.Options[0].Name {
	case "info":
		d := b.cfg.Discord
		describe := func(id, kind string) string {
			if id == "" {
				return "*not set*"
			}
			if kind == "role" {
				return fmt.Sprintf("<@&%s>", id)
			}
			return fmt.Sprintf("<#%s>", id)
		}

		embed := discord.InfoEmbed("⚙️ Bot configuration", "")
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Ticket panel channel", Value: describe(d.TicketPanelChannel, "channel"), Inline: true},
			{Name: "Tickets category", Value: describe(d.TicketsCategory, "channel"), Inline: true},
			{Name: "Support role", Value: describe(d.SupportRole, "role"), Inline: true},
			{Name: "Admin role", Value: describe(d.AdminRole, "role"), Inline: true},
			{Name: "Log channel", Value: describe(d.LogChannel, "channel"), Inline: true},
			{Name: "Review channel", Value: describe(d.ReviewChannel, "channel"), Inline: true},
			{Name: "Suggestion channel", Value: describe(d.SuggestionChannel, "channel"), Inline: true},
		}
		return b.reply(i, embed, true)

	case "test":
		backendStatus := "🔴 not configured"
		if b.cfg.Supabase.URL != "" && b.cfg.Supabase.Key != "" {
			backendStatus = "🟢 configured"
			if _, err := b.creds.Stock(context.Background(), "minecraft_nfa_lifetime"); err != nil {
				backendStatus = "🟠 configured but unreachable"
			}
		}

		giveawayStatus := "🟢 reachable"
		if _, err := b.giveaways.ActiveInGuild(context.Background(), i.GuildID); err != nil {
			giveawayStatus = "🔴 store error"
		}

		embed := discord.InfoEmbed("🧪 Connection test", "")
		embed.Fields = []*discordgo.MessageEmbedField{
			{Name: "Billing backend", Value: backendStatus, Inline: true},
			{Name: "Giveaway store", Value: giveawayStatus, Inline: true},
			{Name: "Gateway latency", Value: fmt.Sprintf("%dms", b.session.HeartbeatLatency().Milliseconds()), Inline: true},
		}
		return b.reply(i, embed, true)
	}

	return nil
}
