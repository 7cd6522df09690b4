package discord

import (
	"time"

	"github.com/bwmarrin/discordgo"
)

// Brand palette.
const (
	ColorPrimary   = 0x9d4edd
	ColorSecondary = 0xc77dff
	ColorSuccess   = 0x06d6a0
	ColorError     = 0xef476f
	ColorWarning   = 0xffd166
)

const footerText = "Plug Market Support System"

func baseEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
	}
}

func SuccessEmbed(title, description string) *discordgo.MessageEmbed {
	return baseEmbed(title, description, ColorSuccess)
}

func ErrorEmbed(title, description string) *discordgo.MessageEmbed {
	return baseEmbed(title, description, ColorError)
}

func WarningEmbed(title, description string) *discordgo.MessageEmbed {
	return baseEmbed(title, description, ColorWarning)
}

func InfoEmbed(title, description string) *discordgo.MessageEmbed {
	return baseEmbed(title, description, ColorPrimary)
}
