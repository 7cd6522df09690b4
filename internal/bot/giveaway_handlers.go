package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	giveawaymodels "plug-market-bot/internal/features/giveaway/models"
	giveawayservice "plug-market-bot/internal/features/giveaway/service"
	"plug-market-bot/internal/platform/discord"
)

// participantsShown caps how many entrant mentions the listing renders.
const participantsShown = 50

func (b *Bot) handleGiveawayCreate(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	opts := optionMap(data.Options)

	g, err := b.giveaways.Create(context.Background(), giveawayservice.CreateInput{
		GuildID:      i.GuildID,
		ChannelID:    i.ChannelID,
		HostID:       actor(i).ID,
		Prize:        stringOption(opts, "prize"),
		DurationSpec: stringOption(opts, "duration"),
		WinnerCount:  intOption(opts, "winners", 1),
	})
	if err != nil {
		return err
	}

	return b.reply(i, discord.SuccessEmbed("🎁 Giveaway started",
		fmt.Sprintf("**%s** is up for grabs. Ends in %s with %d winner(s).",
			g.Prize, giveawaymodels.FormatDuration(g.Deadline.Sub(g.CreatedAt)), g.Winners)), true)
}

func (b *Bot) handleGiveawayJoin(i *discordgo.InteractionCreate) error {
	userID := actor(i).ID
	status, g, err := b.giveaways.Enter(context.Background(), i.Message.ID, userID)
	if err != nil {
		return err
	}

	var embed *discordgo.MessageEmbed
	switch status {
	case giveawayservice.EntryJoined:
		embed = discord.SuccessEmbed("✅ You're in!",
			fmt.Sprintf("Your entry for **%s** is registered. Good luck!", g.Prize))
	case giveawayservice.EntryAlreadyEntered:
		embed = discord.WarningEmbed("⚠️ Already participating",
			"You already have an entry in this giveaway.")
	case giveawayservice.EntryClosed:
		embed = discord.ErrorEmbed("❌ Giveaway ended",
			"This giveaway is no longer accepting entries.")
	default:
		embed = discord.ErrorEmbed("❌ Giveaway not found",
			"This giveaway no longer exists.")
	}

	return b.reply(i, embed, true)
}

func (b *Bot) handleGiveawayParticipants(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	opts := optionMap(data.Options)
	ctx := context.Background()

	messageID := stringOption(opts, "message_id")
	if messageID == "" {
		active, err := b.giveaways.ActiveInGuild(ctx, i.GuildID)
		if err != nil {
			return err
		}
		if len(active) == 0 {
			return b.reply(i, discord.WarningEmbed("📭 No active giveaways",
				"There is no giveaway running in this server right now."), true)
		}
		soonest := active[0]
		for _, g := range active[1:] {
			if g.Deadline.Before(soonest.Deadline) {
				soonest = g
			}
		}
		messageID = soonest.ID
	}

	entrants, g, err := b.giveaways.Participants(ctx, messageID)
	if err != nil {
		return err
	}

	shown := entrants
	if len(shown) > participantsShown {
		shown = shown[:participantsShown]
	}
	mentions := make([]string, len(shown))
	for idx, id := range shown {
		mentions[idx] = fmt.Sprintf("%d. <@%s>", idx+1, id)
	}

	description := fmt.Sprintf("**Prize:** %s\n**Entries:** %d\n\n", g.Prize, len(entrants))
	if len(mentions) == 0 {
		description += "*No participants yet.*"
	} else {
		description += strings.Join(mentions, "\n")
		if len(entrants) > participantsShown {
			description += fmt.Sprintf("\n*...and %d more*", len(entrants)-participantsShown)
		}
	}
	description += fmt.Sprintf("\n\n[Jump to giveaway](https://discord.com/channels/%s/%s/%s)",
		g.GuildID, g.ChannelID, g.ID)

	return b.reply(i, discord.InfoEmbed("📋 Giveaway participants", description), true)
}
