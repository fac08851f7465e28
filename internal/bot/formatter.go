package bot

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"flotrack/internal/leaderboard"
	"flotrack/internal/registry"
	"flotrack/internal/riotapi"

	"github.com/bwmarrin/discordgo"
)

// Use "teal" color for the bot
const color int = 0x008080

// Discord does not accept empty field names,
// so continuation fields get a zero-width space
const continuationField = "​"

var rankEmojis = map[string]string{
	"IRON":        "⚫",
	"BRONZE":      "🟤",
	"SILVER":      "⚪",
	"GOLD":        "🟡",
	"PLATINUM":    "🔵",
	"DIAMOND":     "💎",
	"MASTER":      "🔮",
	"GRANDMASTER": "🔴",
	"CHALLENGER":  "👑",
}

func RankEmoji(tier string) string {
	if emoji, ok := rankEmojis[tier]; ok {
		return emoji
	}
	return "❓"
}

func InputNotValid(errorMessage string) []Response {

	return []Response{ResponseString{fmt.Sprintf("Input not valid: \n> %s", errorMessage)}}
}

func HelpMessage() []Response {

	embed := discordgo.MessageEmbed{Title: "Commands available", Color: color}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "`flo board [all|mine|default]`",
		Value:  "Fetch the current rank of the tracked players and print the leaderboard",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "`flo rank <riot_id> [shard]`",
		Value:  "Print the current rank of the provided player",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "`flo track <riot_id> [shard]`",
		Value:  "Add a player to the leaderboard",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "`flo untrack <riot_id> [shard]`",
		Value:  "Remove a player you added from the leaderboard",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "`flo players [all|mine|default]`",
		Value:  "List the tracked players without fetching their ranks",
		Inline: false,
	})
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:   "`flo help`",
		Value:  "Print the usage of the different commands",
		Inline: false,
	})
	return []Response{ResponseEmbed{embed}}
}

func NoResponseRiotApi(riotid riotapi.RiotId) []Response {
	return []Response{ResponseString{fmt.Sprintf("Got no response from Riot API for player `%s`", &riotid)}}
}

func PlayerDoesNotExist(riotid riotapi.RiotId, shard riotapi.Shard) []Response {
	return []Response{ResponseString{fmt.Sprintf("Player `%s` does not exist on shard `%s`", &riotid, shard)}}
}

func PlayerTracked(player registry.TrackedPlayer) []Response {
	return []Response{ResponseString{fmt.Sprintf("Player `%s` has been added to the leaderboard", &player)}}
}

func PlayerAlreadyTracked(riotid riotapi.RiotId) []Response {
	return []Response{ResponseString{fmt.Sprintf("Player `%s` is already on the leaderboard", &riotid)}}
}

func PlayerUntracked(riotid riotapi.RiotId) []Response {
	return []Response{ResponseString{fmt.Sprintf("Player `%s` has been removed from the leaderboard", &riotid)}}
}

func PlayerNotTracked(riotid riotapi.RiotId) []Response {
	return []Response{ResponseString{fmt.Sprintf("Player `%s` is not on the leaderboard", &riotid)}}
}

func PlayerNotYours(riotid riotapi.RiotId) []Response {
	return []Response{ResponseString{fmt.Sprintf("Player `%s` was added by somebody else, only they can remove it", &riotid)}}
}

// The embed shown while ranks are being fetched.
// The bot edits its description as players complete
func LoadingEmbed(total int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "🔄 Fetching TFT ranks...",
		Description: fmt.Sprintf("Please wait while I gather the latest rank data for %d players", total),
		Color:       color,
	}
}

func LoadingProgress(done int, total int) string {
	return fmt.Sprintf("Processing player %d/%d...", done, total)
}

// Render the sorted leaderboard into one embed.
// Rows are packed into as many fields as needed so that no field
// exceeds the provided length limit, and a row is never split
func LeaderboardMessage(results []leaderboard.PlayerResult, fieldLimit int) []Response {

	if len(results) == 0 {
		return []Response{ResponseString{"There are no players on the leaderboard. Add one with `flo track <riot_id>`"}}
	}

	rows := make([]string, len(results))
	for i, result := range results {
		rows[i] = resultLine(i+1, result)
	}

	embed := discordgo.MessageEmbed{Title: "🏆 TFT Leaderboard", Color: color}
	for index, value := range chunkRows(rows, fieldLimit) {
		name := "Standings"
		if index > 0 {
			name = continuationField
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: name, Value: value, Inline: false})
	}
	return []Response{ResponseEmbed{embed}}
}

// One row of the leaderboard
func resultLine(position int, result leaderboard.PlayerResult) string {

	player := result.Player
	switch result.Status {
	case leaderboard.Ranked:
		return fmt.Sprintf("**%d.** %s `%s#%s` — %s, level %d", position, RankEmoji(result.Entry.Tier), player.Name, player.Tag, EntryMessageValue(result.Entry), result.Level)
	case leaderboard.Unranked:
		return fmt.Sprintf("**%d.** 📉 `%s#%s` — Unranked, level %d", position, player.Name, player.Tag, result.Level)
	case leaderboard.NotFound:
		return fmt.Sprintf("**%d.** ❓ `%s#%s` — Not found on shard %s", position, player.Name, player.Tag, player.Shard)
	default:
		return fmt.Sprintf("**%d.** ⚠️ `%s#%s` — Riot API error", position, player.Name, player.Tag)
	}
}

func EntryMessageValue(entry *riotapi.LeagueEntry) string {

	rank := entry.Tier
	if entry.Rank != "" {
		rank += " " + entry.Rank
	}
	return fmt.Sprintf("%s %d LPs. WR %d%% (%dW/%dL)", rank, entry.Lps, int(entry.Winrate), entry.Wins, entry.Losses)
}

// Render the rank of a single player
func PlayerRankMessage(result leaderboard.PlayerResult) []Response {

	riotid := riotapi.RiotId{GameName: result.Player.Name, TagLine: result.Player.Tag}
	switch result.Status {
	case leaderboard.Ranked:
		embed := discordgo.MessageEmbed{Title: fmt.Sprintf("Current rank of player `%s`", &riotid), Color: color}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:   fmt.Sprintf("%s **%s**", RankEmoji(result.Entry.Tier), RANKED_QUEUE_LABEL),
			Value:  fmt.Sprintf("%s, level %d", EntryMessageValue(result.Entry), result.Level),
			Inline: false,
		})
		return []Response{ResponseEmbed{embed}}
	case leaderboard.Unranked:
		return []Response{ResponseString{fmt.Sprintf("Player `%s` is not ranked", &riotid)}}
	case leaderboard.NotFound:
		return PlayerDoesNotExist(riotid, riotapi.Shard(result.Player.Shard))
	default:
		return NoResponseRiotApi(riotid)
	}
}

const RANKED_QUEUE_LABEL = "Ranked TFT"

// Render the list of tracked players without their ranks
func PlayersMessage(players []registry.TrackedPlayer, scope string) []Response {

	embed := discordgo.MessageEmbed{Title: fmt.Sprintf("Tracked players (%s)", scope), Color: color}

	var field discordgo.MessageEmbedField
	if len(players) == 0 {
		field = discordgo.MessageEmbedField{
			Name:   "Players tracked:",
			Value:  "None",
			Inline: false,
		}
	} else {
		lines := make([]string, len(players))
		for i := range players {
			lines[i] = players[i].String()
		}
		field = discordgo.MessageEmbedField{
			Name:   "Players tracked:",
			Value:  strings.Join(lines, "\n"),
			Inline: false,
		}
	}
	embed.Fields = append(embed.Fields, &field)

	return []Response{ResponseEmbed{embed}}
}

// Pack rows into chunks whose length stays below the limit.
// A single row longer than the limit is truncated, never split.
// The limit counts bytes while discord counts characters, so the
// packing is conservative for rows with multibyte runes
func chunkRows(rows []string, limit int) []string {

	var chunks []string
	var current strings.Builder
	for _, row := range rows {
		if len(row) > limit {
			// Cut at the last rune boundary that fits
			cut := limit
			for cut > 0 && !utf8.RuneStart(row[cut]) {
				cut--
			}
			row = row[:cut]
		}
		length := current.Len()
		if length > 0 {
			length++ // newline
		}
		if length+len(row) > limit && current.Len() > 0 {
			chunks = append(chunks, current.String())
			current.Reset()
		}
		if current.Len() > 0 {
			current.WriteString("\n")
		}
		current.WriteString(row)
	}
	if current.Len() > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
