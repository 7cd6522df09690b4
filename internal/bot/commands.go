package bot

import (
	"github.com/bwmarrin/discordgo"

	giveawaymodels "plug-market-bot/internal/features/giveaway/models"
	ticketmodels "plug-market-bot/internal/features/ticket/models"
)

var (
	manageGuild    int64 = discordgo.PermissionManageServer
	manageMessages int64 = discordgo.PermissionManageMessages
	administrator  int64 = discordgo.PermissionAdministrator
)

// Commands is the full application command surface the bot registers.
func Commands() []*discordgo.ApplicationCommand {
	categoryChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, 4)
	for _, info := range ticketmodels.AllCategories() {
		categoryChoices = append(categoryChoices, &discordgo.ApplicationCommandOptionChoice{
			Name:  info.Name,
			Value: string(info.Value),
		})
	}

	return []*discordgo.ApplicationCommand{
		{
			Name:                     "giveaway",
			Description:              "Start a giveaway in this channel",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "prize",
					Description: "What the winner receives",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "duration",
					Description: "How long it runs, like 10m, 2h, 3d or 1w",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "winners",
					Description: "Number of winners (default 1)",
					MinValue:    func() *float64 { v := float64(giveawaymodels.MinWinners); return &v }(),
					MaxValue:    float64(giveawaymodels.MaxWinners),
				},
			},
		},
		{
			Name:                     "giveaway-participants",
			Description:              "List the participants of a giveaway",
			DefaultMemberPermissions: &manageGuild,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "message_id",
					Description: "Giveaway message ID (defaults to the one ending soonest)",
				},
			},
		},
		{
			Name:        "ticket",
			Description: "Ticket management",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "panel",
					Description: "Post the ticket panel in this channel",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "close",
					Description: "Close this ticket",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "add",
					Description: "Add a user to this ticket",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "User to add",
							Required:    true,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "remove",
					Description: "Remove a user from this ticket",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionUser,
							Name:        "user",
							Description: "User to remove",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:        "rename",
			Description: "Rename this ticket channel",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "name",
					Description: "New channel name (omit to pick a status)",
				},
			},
		},
		{
			Name:        "requirements",
			Description: "Show what information a ticket category needs",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "category",
					Description: "Ticket category",
					Choices:     categoryChoices,
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "User to remind",
				},
			},
		},
		{
			Name:                     "invoice",
			Description:              "Look up an order invoice",
			DefaultMemberPermissions: &manageMessages,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "order_id",
					Description: "Order ID, short ID or its first characters",
					Required:    true,
				},
			},
		},
		{
			Name:                     "replace",
			Description:              "Send a replacement account to a customer",
			DefaultMemberPermissions: &manageMessages,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:         discordgo.ApplicationCommandOptionString,
					Name:         "product",
					Description:  "Product to replace",
					Required:     true,
					Autocomplete: true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Customer receiving the replacement",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "order_id",
					Description: "Related order ID",
				},
				{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "use_supabase",
					Description: "Draw the account from the credentials backend",
				},
			},
		},
		{
			Name:                     "manualreplace",
			Description:              "Send a replacement account you type in yourself",
			DefaultMemberPermissions: &manageMessages,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionUser,
					Name:        "user",
					Description: "Customer receiving the replacement",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "product",
					Description: "Product name",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "email",
					Description: "Account email",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "password",
					Description: "Account password",
					Required:    true,
				},
			},
		},
		{
			Name:                     "minecraft",
			Description:              "Post the Minecraft account storefront",
			DefaultMemberPermissions: &manageMessages,
		},
		{
			Name:                     "embed",
			Description:              "Post a custom embed from JSON",
			DefaultMemberPermissions: &manageMessages,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionString,
					Name:        "json",
					Description: "Embed JSON",
					Required:    true,
				},
				{
					Type:        discordgo.ApplicationCommandOptionChannel,
					Name:        "channel",
					Description: "Target channel (defaults to this one)",
					ChannelTypes: []discordgo.ChannelType{
						discordgo.ChannelTypeGuildText,
					},
				},
			},
		},
		{
			Name:        "suggest",
			Description: "Send a suggestion to the staff team",
		},
		{
			Name:                     "setup",
			Description:              "Bot setup utilities",
			DefaultMemberPermissions: &administrator,
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "info",
					Description: "Show the current bot configuration",
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        "test",
					Description: "Check the bot's external connections",
				},
			},
		},
	}
}
