package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"flotrack/internal/common"
	"flotrack/internal/riotapi"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// The roster the bot ships with. Replaced on startup unless
// DEFAULT_PLAYERS overrides it
const defaultRoster = "Gemini Brimstone#ISAAC@eune1,Odkleja#EUNE@eune1,MoBeeDick#EUNE@eune1,Gemini delirium#isaac@eune1,Gemini Wkurw#Isaac@eune1"

// DefaultPlayer is one entry of the seeded roster
type DefaultPlayer struct {
	Name  string
	Tag   string
	Shard string
}

// Config gathers everything the bot and the riot API need.
// It is built once at startup and handed to each component;
// there are no ambient globals
type Config struct {
	DiscordToken string
	RiotApiKey   string
	DatabasePath string

	DefaultRealm riotapi.Realm
	DefaultShard riotapi.Shard

	RequestTimeout time.Duration
	MaxAttempts    int
	RetryAfter     time.Duration
	Restrictions   []common.Restriction

	Workers          int
	AggregateTimeout time.Duration

	EmbedFieldLimit int

	PuuidMaxAge        time.Duration
	HousekeepingPeriod time.Duration
	MainCycle          time.Duration

	DefaultPlayers []DefaultPlayer
}

// Load the configuration from the environment,
// reading a .env file first if one is present
func Load() (Config, error) {

	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("No .env file found, relying on the environment")
	}

	var config Config

	config.DiscordToken = os.Getenv("DISCORD_TOKEN")
	if config.DiscordToken == "" {
		return Config{}, fmt.Errorf("DISCORD_TOKEN is not set")
	}
	config.RiotApiKey = os.Getenv("RIOT_API_KEY")
	if config.RiotApiKey == "" {
		return Config{}, fmt.Errorf("RIOT_API_KEY is not set")
	}
	config.DatabasePath = getEnv("DATABASE_PATH", "flotrack.db")

	config.DefaultRealm = riotapi.Realm(getEnv("DEFAULT_REALM", string(riotapi.RealmEurope)))
	config.DefaultShard = riotapi.Shard(getEnv("DEFAULT_SHARD", "eune1"))
	if !riotapi.KnownShard(config.DefaultShard) {
		return Config{}, fmt.Errorf("DEFAULT_SHARD %s is not a known shard", config.DefaultShard)
	}

	var err error
	if config.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 15*time.Second); err != nil {
		return Config{}, err
	}
	if config.MaxAttempts, err = getInt("MAX_ATTEMPTS", 3); err != nil {
		return Config{}, err
	}
	if config.RetryAfter, err = getDuration("RETRY_AFTER_FALLBACK", 5*time.Second); err != nil {
		return Config{}, err
	}
	// Development key limits of the provider
	config.Restrictions = []common.Restriction{
		{Requests: 20, Duration: time.Second},
		{Requests: 100, Duration: 2 * time.Minute},
	}

	if config.Workers, err = getInt("WORKERS", 3); err != nil {
		return Config{}, err
	}
	if config.AggregateTimeout, err = getDuration("AGGREGATE_TIMEOUT", 3*time.Minute); err != nil {
		return Config{}, err
	}

	if config.EmbedFieldLimit, err = getInt("EMBED_FIELD_LIMIT", 1024); err != nil {
		return Config{}, err
	}

	if config.PuuidMaxAge, err = getDuration("PUUID_MAX_AGE", 7*24*time.Hour); err != nil {
		return Config{}, err
	}
	if config.HousekeepingPeriod, err = getDuration("HOUSEKEEPING_PERIOD", time.Hour); err != nil {
		return Config{}, err
	}
	if config.MainCycle, err = getDuration("MAIN_CYCLE", time.Minute); err != nil {
		return Config{}, err
	}

	if config.DefaultPlayers, err = ParseDefaultPlayers(getEnv("DEFAULT_PLAYERS", defaultRoster)); err != nil {
		return Config{}, err
	}

	return config, nil
}

// Parse a comma-separated roster of Name#Tag@shard entries.
// An empty string is a valid empty roster
func ParseDefaultPlayers(value string) ([]DefaultPlayer, error) {

	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	var players []DefaultPlayer
	for _, entry := range strings.Split(value, ",") {
		entry = strings.TrimSpace(entry)
		hashtag := strings.Index(entry, "#")
		at := strings.LastIndex(entry, "@")
		if hashtag == -1 || at == -1 || at < hashtag {
			return nil, fmt.Errorf("default player entry %q is not of the form Name#Tag@shard", entry)
		}
		player := DefaultPlayer{
			Name:  entry[:hashtag],
			Tag:   entry[hashtag+1 : at],
			Shard: entry[at+1:],
		}
		if player.Name == "" || player.Tag == "" {
			return nil, fmt.Errorf("default player entry %q is missing a name or a tag", entry)
		}
		if !riotapi.KnownShard(riotapi.Shard(player.Shard)) {
			return nil, fmt.Errorf("default player entry %q names unknown shard %s", entry, player.Shard)
		}
		players = append(players, player)
	}
	return players, nil
}

func getEnv(key string, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s is not a number: %q", key, raw)
	}
	return value, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s is not a duration: %q", key, raw)
	}
	return value, nil
}
