package bot

import (
	"github.com/bwmarrin/discordgo"

	apperrors "plug-market-bot/internal/common/errors"
	ticketservice "plug-market-bot/internal/features/ticket/service"
	"plug-market-bot/internal/platform/discord"
)

// reply answers an interaction with a single embed.
func (b *Bot) reply(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// replyWith answers an interaction with full response data.
func (b *Bot) replyWith(i *discordgo.InteractionCreate, data *discordgo.InteractionResponseData) error {
	return b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: data,
	})
}

// deferReply acknowledges the interaction so a slow handler can follow up.
func (b *Bot) deferReply(i *discordgo.InteractionCreate, ephemeral bool) error {
	data := &discordgo.InteractionResponseData{}
	if ephemeral {
		data.Flags = discordgo.MessageFlagsEphemeral
	}
	return b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: data,
	})
}

// followUp sends an embed after a deferred acknowledgement.
func (b *Bot) followUp(i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed, extra ...discordgo.MessageComponent) error {
	_, err := b.session.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: extra,
	})
	return err
}

// replyError maps an application error to a user-facing ephemeral embed.
// Internal failures are logged and hidden behind a generic message.
func (b *Bot) replyError(i *discordgo.InteractionCreate, deferred bool, err error) {
	title := "❌ Error"
	message := "Something went wrong while processing your request. Please try again later."

	if appErr, ok := apperrors.AsAppError(err); ok && !appErr.IsInternal() {
		message = appErr.Message
		if appErr.IsUnauthorized() {
			title = "🚫 No permission"
		}
	} else {
		b.log.Error().Err(err).Str("interaction_id", i.ID).Msg("interaction handler failed")
	}

	embed := discord.ErrorEmbed(title, message)
	if deferred {
		if ferr := b.followUp(i, embed); ferr != nil {
			b.log.Warn().Err(ferr).Msg("failed to deliver error follow-up")
		}
		return
	}
	if rerr := b.reply(i, embed, true); rerr != nil {
		b.log.Warn().Err(rerr).Msg("failed to deliver error reply")
	}
}

// actor extracts who triggered the interaction. Guild interactions carry a
// member; DM interactions only a user.
func actor(i *discordgo.InteractionCreate) ticketservice.Actor {
	if i.Member != nil && i.Member.User != nil {
		return ticketservice.Actor{
			ID:    i.Member.User.ID,
			Tag:   i.Member.User.String(),
			Roles: i.Member.Roles,
		}
	}
	if i.User != nil {
		return ticketservice.Actor{ID: i.User.ID, Tag: i.User.String()}
	}
	return ticketservice.Actor{}
}

// optionMap indexes command options by name.
func optionMap(opts []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	out := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(opts))
	for _, o := range opts {
		out[o.Name] = o
	}
	return out
}

func stringOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if o, ok := opts[name]; ok {
		return o.StringValue()
	}
	return ""
}

func intOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string, fallback int) int {
	if o, ok := opts[name]; ok {
		return int(o.IntValue())
	}
	return fallback
}

func boolOption(opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) bool {
	if o, ok := opts[name]; ok {
		return o.BoolValue()
	}
	return false
}

func userOption(s *discordgo.Session, opts map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) *discordgo.User {
	if o, ok := opts[name]; ok {
		return o.UserValue(s)
	}
	return nil
}
