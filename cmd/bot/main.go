package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	goredis "github.com/redis/go-redis/v9"

	"plug-market-bot/internal/bot"
	"plug-market-bot/internal/common/config"
	"plug-market-bot/internal/common/logger"
	"plug-market-bot/internal/common/schedule"
	"plug-market-bot/internal/features/credentials"
	"plug-market-bot/internal/features/giveaway/repository"
	filerepo "plug-market-bot/internal/features/giveaway/repository/file"
	redisrepo "plug-market-bot/internal/features/giveaway/repository/redis"
	giveawayservice "plug-market-bot/internal/features/giveaway/service"
	invoiceservice "plug-market-bot/internal/features/invoice/service"
	ticketservice "plug-market-bot/internal/features/ticket/service"
	httpserver "plug-market-bot/internal/http"
	"plug-market-bot/internal/platform/discord"
	"plug-market-bot/internal/platform/supabase"
)

func main() {
	cfg := config.Load()
	logger.Init("plug-market-bot", cfg.Debug)
	log := logger.Component("main")

	log.Info().Bool("debug", cfg.Debug).Msg("starting plug market bot")

	repo, err := buildGiveawayStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open giveaway store")
	}

	scheduler := schedule.New()

	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create discord session")
	}
	session.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMessages

	adapter := discord.NewAdapter(session, discord.AdapterConfig{
		TicketsCategory: cfg.Discord.TicketsCategory,
		SupportRole:     cfg.Discord.SupportRole,
		ReviewChannel:   cfg.Discord.ReviewChannel,
		LogChannel:      cfg.Discord.LogChannel,
	})

	supabaseClient := supabase.NewClient(cfg.Supabase.URL, cfg.Supabase.Key)

	giveaways := giveawayservice.NewService(repo, adapter, scheduler)
	tickets := ticketservice.NewService(adapter, scheduler, cfg.CloseRoles())
	invoices := invoiceservice.NewService(supabaseClient, cfg.Supabase.InvoicesTable)
	localPool, err := credentials.ParsePool(cfg.Supabase.LocalCredentials)
	if err != nil {
		log.Warn().Err(err).Msg("LOCAL_CREDENTIALS is not valid JSON, local pool disabled")
	}
	creds := credentials.NewService(supabaseClient, cfg.Supabase.CredentialsTable, localPool)

	b := bot.New(session, cfg, adapter, giveaways, tickets, invoices, creds)
	b.Start()

	if err := session.Open(); err != nil {
		log.Fatal().Err(err).Msg("failed to open gateway connection")
	}

	if _, err := session.ApplicationCommandBulkOverwrite(cfg.Discord.ClientID, cfg.Discord.GuildID, bot.Commands()); err != nil {
		log.Error().Err(err).Msg("failed to register application commands")
	} else {
		log.Info().Int("count", len(bot.Commands())).Msg("application commands registered")
	}

	health := httpserver.NewServer(cfg.Server.Port, cfg.Debug)
	health.Start()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := health.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("health server shutdown failed")
	}

	scheduler.Stop()
	if err := session.Close(); err != nil {
		log.Error().Err(err).Msg("gateway close failed")
	}

	log.Info().Msg("bye")
}

// buildGiveawayStore picks Redis when an address is configured, otherwise the
// JSON file store.
func buildGiveawayStore(cfg *config.Config) (repository.GiveawayRepository, error) {
	if cfg.Redis.Addr == "" {
		return filerepo.NewFileGiveawayRepository(cfg.Giveaways.StorePath)
	}

	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return redisrepo.NewRedisGiveawayRepository(client), nil
}
