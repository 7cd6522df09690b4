package main

import (
	"flag"

	"github.com/bwmarrin/discordgo"

	"plug-market-bot/internal/bot"
	"plug-market-bot/internal/common/config"
	"plug-market-bot/internal/common/logger"
)

// Registers the application commands without starting the bot. Guild-scoped
// registration propagates instantly, global registration can take up to an
// hour.
func main() {
	global := flag.Bool("global", false, "register commands globally instead of per guild")
	flag.Parse()

	cfg := config.Load()
	logger.Init("plug-market-deploy", cfg.Debug)
	log := logger.Component("deploy")

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create discord session")
	}

	guildID := cfg.Discord.GuildID
	if *global {
		guildID = ""
	}

	commands := bot.Commands()
	if _, err := session.ApplicationCommandBulkOverwrite(cfg.Discord.ClientID, guildID, commands); err != nil {
		log.Fatal().Err(err).Msg("failed to register commands")
	}

	scope := "guild " + guildID
	if *global {
		scope = "global"
	}
	log.Info().Int("count", len(commands)).Str("scope", scope).Msg("commands registered")
}
