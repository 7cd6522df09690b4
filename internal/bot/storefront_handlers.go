package bot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"plug-market-bot/internal/bot/customid"
	apperrors "plug-market-bot/internal/common/errors"
	"plug-market-bot/internal/features/credentials"
	"plug-market-bot/internal/platform/discord"
)

// storefrontProducts are the self-service products the panel sells.
var storefrontProducts = []struct {
	Key   string
	Name  string
	Emoji string
}{
	{credentials.ProductMinecraftNFA, "Minecraft NFA Lifetime", "⛏️"},
	{credentials.ProductMinecraftFA, "Minecraft FA Lifetime", "💎"},
}

func (b *Bot) handleMinecraft(i *discordgo.InteractionCreate, _ discordgo.ApplicationCommandInteractionData) error {
	if err := b.deferReply(i, true); err != nil {
		return apperrors.NewDiscordAPIError("acknowledge interaction", err)
	}

	embed, components, err := b.storefrontPanel(context.Background())
	if err != nil {
		return err
	}

	if _, err := b.session.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: components,
	}); err != nil {
		return apperrors.NewDiscordAPIError("post storefront panel", err)
	}

	return b.followUp(i, discord.SuccessEmbed("✅ Storefront posted",
		"The Minecraft storefront is live in this channel."))
}

func (b *Bot) storefrontPanel(ctx context.Context) (*discordgo.MessageEmbed, []discordgo.MessageComponent, error) {
	fields := make([]*discordgo.MessageEmbedField, 0, len(storefrontProducts))
	buttons := make([]discordgo.MessageComponent, 0, len(storefrontProducts)+1)

	for _, p := range storefrontProducts {
		stock, err := b.creds.Stock(ctx, p.Key)
		if err != nil {
			return nil, nil, err
		}

		status := fmt.Sprintf("🟢 **%d** in stock", stock)
		if stock == 0 {
			status = "🔴 Out of stock"
		}
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("%s %s", p.Emoji, p.Name),
			Value:  status,
			Inline: true,
		})
		buttons = append(buttons, discordgo.Button{
			CustomID: customid.New(customid.KindProductBuy, p.Key).Encode(),
			Label:    "Buy " + p.Name,
			Style:    discordgo.SuccessButton,
			Emoji:    &discordgo.ComponentEmoji{Name: p.Emoji},
			Disabled: stock == 0,
		})
	}

	buttons = append(buttons, discordgo.Button{
		CustomID: customid.New(customid.KindProductRefresh).Encode(),
		Label:    "Refresh stock",
		Style:    discordgo.SecondaryButton,
		Emoji:    &discordgo.ComponentEmoji{Name: "🔁"},
	})

	embed := discord.InfoEmbed("⛏️ Minecraft Accounts",
		"Instant delivery straight to your DMs. Pick a product below.")
	embed.Fields = fields

	return embed, []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}, nil
}

func (b *Bot) handleProductBuy(i *discordgo.InteractionCreate, id customid.ID) error {
	if err := b.deferReply(i, true); err != nil {
		return apperrors.NewDiscordAPIError("acknowledge interaction", err)
	}

	productKey := id.Arg(0)
	name := productKey
	for _, p := range storefrontProducts {
		if p.Key == productKey {
			name = p.Name
		}
	}

	cred, err := b.creds.Claim(context.Background(), productKey, true)
	if err != nil {
		if appErr, ok := apperrors.AsAppError(err); ok && appErr.Code == apperrors.ErrCodeCredentialNotFound {
			return b.followUp(i, discord.ErrorEmbed("🔴 Out of stock",
				fmt.Sprintf("**%s** is sold out right now. Check back later.", name)))
		}
		return err
	}

	buyerID := actor(i).ID
	embed := discord.SuccessEmbed("🎉 Purchase delivered", fmt.Sprintf(
		"**Product:** %s\n\n```\n📧 Email: %s\n🔑 Password: %s\n```\n*Thank you for buying at Plug Market!*",
		name, cred.Email, cred.Password))

	if err := b.adapter.DirectMessage(buyerID, embed); err != nil {
		// DMs closed: hand the account over in the ephemeral reply instead.
		return b.followUp(i, embed)
	}

	b.adapter.PostLog(discord.SuccessEmbed("🛒 Storefront sale", fmt.Sprintf(
		"👤 Buyer: <@%s>\n📦 Product: %s", buyerID, name)))

	return b.followUp(i, discord.SuccessEmbed("📬 Check your DMs",
		fmt.Sprintf("Your **%s** account has been delivered.", name)))
}

func (b *Bot) handleProductRefresh(i *discordgo.InteractionCreate) error {
	embed, components, err := b.storefrontPanel(context.Background())
	if err != nil {
		return err
	}

	return b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: components,
		},
	})
}
