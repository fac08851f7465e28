package config

import (
	"testing"
	"time"

	"flotrack/internal/riotapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaultPlayers(t *testing.T) {

	players, err := ParseDefaultPlayers("Gemini Brimstone#ISAAC@eune1, Odkleja#EUNE@eune1")
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, DefaultPlayer{Name: "Gemini Brimstone", Tag: "ISAAC", Shard: "eune1"}, players[0])
	assert.Equal(t, DefaultPlayer{Name: "Odkleja", Tag: "EUNE", Shard: "eune1"}, players[1])
}

func TestParseDefaultPlayersEmpty(t *testing.T) {

	players, err := ParseDefaultPlayers("")
	require.NoError(t, err)
	assert.Empty(t, players)
}

func TestParseDefaultPlayersBrokenEntries(t *testing.T) {

	for _, value := range []string{
		"NoTagOrShard",
		"Name#Tag",
		"Name@shard",
		"#Tag@eune1",
		"Name#@eune1",
		"Name#Tag@mars",
	} {
		_, err := ParseDefaultPlayers(value)
		assert.Error(t, err, value)
	}
}

func TestLoadDefaults(t *testing.T) {

	t.Setenv("DISCORD_TOKEN", "discord-token")
	t.Setenv("RIOT_API_KEY", "riot-key")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "discord-token", cfg.DiscordToken)
	assert.Equal(t, "riot-key", cfg.RiotApiKey)
	assert.Equal(t, "flotrack.db", cfg.DatabasePath)
	assert.Equal(t, riotapi.RealmEurope, cfg.DefaultRealm)
	assert.Equal(t, riotapi.Shard("eune1"), cfg.DefaultShard)
	assert.Equal(t, 15*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 5*time.Second, cfg.RetryAfter)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 1024, cfg.EmbedFieldLimit)
	assert.Len(t, cfg.DefaultPlayers, 5)
	assert.NotEmpty(t, cfg.Restrictions)
}

func TestLoadRequiresCredentials(t *testing.T) {

	t.Setenv("DISCORD_TOKEN", "")
	t.Setenv("RIOT_API_KEY", "")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("DISCORD_TOKEN", "discord-token")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoadOverrides(t *testing.T) {

	t.Setenv("DISCORD_TOKEN", "discord-token")
	t.Setenv("RIOT_API_KEY", "riot-key")
	t.Setenv("DEFAULT_REALM", "americas")
	t.Setenv("DEFAULT_SHARD", "na1")
	t.Setenv("REQUEST_TIMEOUT", "20s")
	t.Setenv("WORKERS", "1")
	t.Setenv("DEFAULT_PLAYERS", "Solo#NA1@na1")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, riotapi.RealmAmericas, cfg.DefaultRealm)
	assert.Equal(t, riotapi.Shard("na1"), cfg.DefaultShard)
	assert.Equal(t, 20*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 1, cfg.Workers)
	require.Len(t, cfg.DefaultPlayers, 1)
	assert.Equal(t, "Solo", cfg.DefaultPlayers[0].Name)
}

func TestLoadRejectsBadValues(t *testing.T) {

	t.Setenv("DISCORD_TOKEN", "discord-token")
	t.Setenv("RIOT_API_KEY", "riot-key")

	t.Setenv("DEFAULT_SHARD", "mars")
	_, err := Load()
	assert.Error(t, err)
	t.Setenv("DEFAULT_SHARD", "")

	t.Setenv("MAX_ATTEMPTS", "three")
	_, err = Load()
	assert.Error(t, err)
	t.Setenv("MAX_ATTEMPTS", "")

	t.Setenv("AGGREGATE_TIMEOUT", "forever")
	_, err = Load()
	assert.Error(t, err)
}
