package main

import (
	"os"

	"flotrack/internal/bot"
	"flotrack/internal/config"
	"flotrack/internal/leaderboard"
	"flotrack/internal/registry"
	"flotrack/internal/riotapi"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") != "" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	// Configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Msgf("Could not load configuration: %s", err)
	}

	// Registry of tracked players
	reg, err := registry.CreateRegistry(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Msgf("Could not open the registry: %s", err)
	}
	defaults := make([]registry.TrackedPlayer, len(cfg.DefaultPlayers))
	for i, player := range cfg.DefaultPlayers {
		defaults[i] = registry.TrackedPlayer{OwnerId: "default", Name: player.Name, Tag: player.Tag, Shard: player.Shard}
	}
	if err := reg.SeedDefaults(defaults); err != nil {
		log.Fatal().Msgf("Could not seed the default roster: %s", err)
	}

	// Riot API
	api := riotapi.CreateRiotApi(riotapi.Options{
		ApiKey:       cfg.RiotApiKey,
		Restrictions: cfg.Restrictions,
		Timeout:      cfg.RequestTimeout,
		MaxAttempts:  cfg.MaxAttempts,
		RetryAfter:   cfg.RetryAfter,
		DefaultRealm: cfg.DefaultRealm,
	})

	// Leaderboard aggregator, caching resolved puuids back into the registry
	onResolved := func(player registry.TrackedPlayer, puuid riotapi.Puuid) {
		if player.ID == 0 || player.Puuid == string(puuid) {
			return
		}
		if err := reg.SavePuuid(player.ID, string(puuid)); err != nil {
			log.Error().Msgf("Could not cache puuid for player %s: %s", &player, err)
		}
	}
	aggregator := leaderboard.CreateAggregator(&api, cfg.Workers, cfg.AggregateTimeout, onResolved)

	// Create and run the bot
	b := bot.CreateBot(cfg, reg, &api, aggregator)
	if err := b.Run(); err != nil {
		log.Fatal().Msgf("Bot stopped: %s", err)
	}
}
