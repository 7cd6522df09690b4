package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"plug-market-bot/internal/bot/customid"
	apperrors "plug-market-bot/internal/common/errors"
	"plug-market-bot/internal/features/credentials"
	invoicemodels "plug-market-bot/internal/features/invoice/models"
	"plug-market-bot/internal/platform/discord"
)

func (b *Bot) handleInvoice(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	opts := optionMap(data.Options)
	orderID := stringOption(opts, "order_id")

	if err := b.deferReply(i, true); err != nil {
		return apperrors.NewDiscordAPIError("acknowledge interaction", err)
	}

	inv, err := b.invoices.Find(context.Background(), orderID)
	if err != nil {
		return err
	}

	return b.followUp(i, invoiceEmbed(inv), discordgo.ActionsRow{
		Components: []discordgo.MessageComponent{
			discordgo.Button{
				CustomID: customid.New(customid.KindInvoiceItems, orderID).Encode(),
				Label:    "View Items",
				Style:    discordgo.SecondaryButton,
				Emoji:    &discordgo.ComponentEmoji{Name: "📦"},
			},
			discordgo.Button{
				CustomID: customid.New(customid.KindInvoiceReplace, orderID).Encode(),
				Label:    "Replace Account",
				Style:    discordgo.PrimaryButton,
				Emoji:    &discordgo.ComponentEmoji{Name: "🔄"},
			},
		},
	})
}

func invoiceEmbed(inv *invoicemodels.Invoice) *discordgo.MessageEmbed {
	ref := inv.ShortID
	if ref == "" {
		ref = inv.OrderID
	}

	fields := []*discordgo.MessageEmbedField{
		{Name: "📌 Status", Value: inv.Status, Inline: true},
		{Name: "💳 Gateway", Value: inv.Gateway, Inline: true},
		{Name: "📧 Email", Value: inv.Email, Inline: true},
	}
	if inv.TotalPrice != nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "💰 Total", Value: fmt.Sprintf("$%.2f", *inv.TotalPrice), Inline: true,
		})
	}
	if inv.TxID != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "🧾 Transaction", Value: inv.TxID, Inline: true,
		})
	}
	if inv.CreatedAt != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "📅 Created", Value: inv.CreatedAt, Inline: true,
		})
	}
	if inv.Note != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "📝 Note", Value: inv.Note,
		})
	}

	embed := discord.InfoEmbed("📄 Invoice "+ref,
		fmt.Sprintf("**Order ID:** `%s`\n**Items:** %d", inv.OrderID, len(inv.Items)))
	embed.Fields = fields
	return embed
}

func (b *Bot) handleInvoiceItems(i *discordgo.InteractionCreate, id customid.ID) error {
	inv, err := b.invoices.Find(context.Background(), id.Arg(0))
	if err != nil {
		return err
	}

	if len(inv.Items) == 0 {
		return b.reply(i, discord.WarningEmbed("📦 No items",
			"This invoice has no itemized products."), true)
	}

	var lines []string
	for _, item := range inv.Items {
		line := fmt.Sprintf("**%s** x%d", item.Name, item.Quantity)
		if item.Price != nil {
			line += fmt.Sprintf(" ($%.2f)", *item.Price)
		}
		if item.Email != "" {
			line += fmt.Sprintf("\n```\n📧 %s\n🔑 %s\n```", item.Email, item.Password)
		}
		lines = append(lines, line)
	}

	return b.reply(i, discord.InfoEmbed("📦 Invoice items", strings.Join(lines, "\n")), true)
}

func (b *Bot) handleInvoiceReplace(i *discordgo.InteractionCreate, id customid.ID) error {
	return b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: customid.New(customid.KindReplaceModal, id.Arg(0)).Encode(),
			Title:    "Replacement account",
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "email",
							Label:       "Account email",
							Style:       discordgo.TextInputShort,
							Required:    true,
							Placeholder: "new-account@example.com",
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID: "password",
							Label:    "Account password",
							Style:    discordgo.TextInputShort,
							Required: true,
						},
					},
				},
				discordgo.ActionsRow{
					Components: []discordgo.MessageComponent{
						discordgo.TextInput{
							CustomID:    "user_id",
							Label:       "Customer Discord ID (optional)",
							Style:       discordgo.TextInputShort,
							Placeholder: "Leave empty to only post here",
						},
					},
				},
			},
		},
	})
}

func (b *Bot) handleReplaceModalSubmit(i *discordgo.InteractionCreate, id customid.ID) error {
	data := i.ModalSubmitData()
	email := textInputValue(data, "email")
	password := textInputValue(data, "password")
	if email == "" || password == "" {
		return apperrors.NewValidationError("credentials", "email and password are required")
	}

	embed := replacementEmbed("Replacement account", id.Arg(0), actor(i).ID, email, password)

	if err := b.invoices.MarkReplaced(context.Background(), id.Arg(0)); err != nil {
		b.log.Warn().Err(err).Str("order_id", id.Arg(0)).Msg("failed to mark order replaced")
	}

	if buyerID := textInputValue(data, "user_id"); buyerID != "" {
		if err := b.adapter.DirectMessage(buyerID, embed); err != nil {
			b.log.Warn().Err(err).Str("buyer_id", buyerID).Msg("failed to DM replacement")
		}
	}

	return b.replyWith(i, &discordgo.InteractionResponseData{
		Embeds: []*discordgo.MessageEmbed{embed},
	})
}

func (b *Bot) handleProductAutocomplete(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	var typed string
	for _, o := range data.Options {
		if o.Focused {
			typed = o.StringValue()
			break
		}
	}

	matches := credentials.MatchProducts(typed)
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(matches))
	for _, m := range matches {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: m, Value: m})
	}

	return b.session.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionApplicationCommandAutocompleteResult,
		Data: &discordgo.InteractionResponseData{Choices: choices},
	})
}

func (b *Bot) handleReplace(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	opts := optionMap(data.Options)
	product := stringOption(opts, "product")
	target := userOption(b.session, opts, "user")
	orderID := stringOption(opts, "order_id")
	useBackend := boolOption(opts, "use_supabase")

	if err := b.deferReply(i, true); err != nil {
		return apperrors.NewDiscordAPIError("acknowledge interaction", err)
	}
	if target == nil {
		return apperrors.NewValidationError("user", "is required")
	}

	cred, err := b.creds.Claim(context.Background(), product, useBackend)
	if err != nil {
		return err
	}

	if orderID != "" && useBackend {
		if err := b.invoices.MarkReplaced(context.Background(), orderID); err != nil {
			b.log.Warn().Err(err).Str("order_id", orderID).Msg("failed to mark order replaced")
		}
	}

	embed := replacementEmbed(product, orderID, actor(i).ID, cred.Email, cred.Password)
	if err := b.adapter.DirectMessage(target.ID, embed); err != nil {
		return b.followUp(i, discord.WarningEmbed("⚠️ Could not DM the customer",
			fmt.Sprintf("<@%s> has DMs closed. Credentials:\n```\n📧 %s\n🔑 %s\n```",
				target.ID, cred.Email, cred.Password)))
	}

	b.adapter.PostLog(discord.SuccessEmbed("🔄 Replacement sent", fmt.Sprintf(
		"👤 Customer: <@%s>\n📦 Product: %s\n🧑‍💼 Staff: <@%s>", target.ID, product, actor(i).ID)))

	return b.followUp(i, discord.SuccessEmbed("✅ Replacement sent",
		fmt.Sprintf("A **%s** replacement was delivered to <@%s> by DM.", product, target.ID)))
}

func (b *Bot) handleManualReplace(i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) error {
	opts := optionMap(data.Options)
	target := userOption(b.session, opts, "user")
	product := stringOption(opts, "product")
	email := stringOption(opts, "email")
	password := stringOption(opts, "password")

	if target == nil {
		return apperrors.NewValidationError("user", "is required")
	}

	embed := replacementEmbed(product, "", actor(i).ID, email, password)
	if err := b.adapter.DirectMessage(target.ID, embed); err != nil {
		return b.reply(i, discord.WarningEmbed("⚠️ Could not DM the customer",
			fmt.Sprintf("<@%s> has DMs closed. Send the credentials manually.", target.ID)), true)
	}

	return b.reply(i, discord.SuccessEmbed("✅ Replacement sent",
		fmt.Sprintf("A **%s** replacement was delivered to <@%s> by DM.", product, target.ID)), true)
}

func replacementEmbed(product, orderID, staffID, email, password string) *discordgo.MessageEmbed {
	description := fmt.Sprintf("**Product:** %s\n", product)
	if orderID != "" {
		description += fmt.Sprintf("**Order ID:** `%s`\n", orderID)
	}
	description += fmt.Sprintf("**Staff:** <@%s>\n\n```\n📧 Email: %s\n🔑 Password: %s\n```",
		staffID, email, password)

	embed := discord.SuccessEmbed("🔄 Replacement Ready", description)
	embed.Footer = &discordgo.MessageEmbedFooter{Text: "Plug Market Support System"}
	return embed
}

func textInputValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, row := range data.Components {
		ar, ok := row.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, c := range ar.Components {
			if input, ok := c.(*discordgo.TextInput); ok && input.CustomID == customID {
				return input.Value
			}
		}
	}
	return ""
}
