package bot

import (
	"fmt"
	"strings"

	"flotrack/internal/riotapi"

	"github.com/rs/zerolog/log"
)

const prefix string = "flo"

const (
	COMMAND_BOARD = iota
	COMMAND_RANK
	COMMAND_TRACK
	COMMAND_UNTRACK
	COMMAND_PLAYERS
	COMMAND_HELP
)

const (
	PARSEID_OK = iota
	PARSEID_NO_BOT_PREFIX
	PARSEID_NO_COMMAND
	PARSEID_COMMAND_NOT_RECOGNISED
	PARSEID_NO_INPUT
	PARSEID_NOT_A_RIOT_ID
	PARSEID_UNKNOWN_SHARD
	PARSEID_UNKNOWN_SCOPE
)

const (
	SCOPE_ALL     = "all"
	SCOPE_MINE    = "mine"
	SCOPE_DEFAULT = "default"
)

var errorMessages map[int]string = map[int]string{
	PARSEID_NO_COMMAND:             "No command provided",
	PARSEID_COMMAND_NOT_RECOGNISED: "Command `%s` not recognised",
	PARSEID_NO_INPUT:               "Command `%s` requires an argument",
	PARSEID_NOT_A_RIOT_ID:          "Input `%s` is not a riot id",
	PARSEID_UNKNOWN_SHARD:          "Shard `%s` is not a known one",
	PARSEID_UNKNOWN_SCOPE:          "Scope `%s` is not one of all, mine, default",
}

// PlayerArgs is the argument of the commands that name a single player.
// The shard is empty when the user did not provide one
type PlayerArgs struct {
	Riotid riotapi.RiotId
	Shard  riotapi.Shard
}

type ParseResult struct {
	command      int
	parseid      int
	errorMessage string
	arguments    interface{}
}

func Parse(message string) ParseResult {

	noInput := func(command int, commandString string) ParseResult {
		parseid := PARSEID_NO_INPUT
		return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], commandString)}
	}

	// The message has to start with the bot prefix
	if !strings.HasPrefix(message, prefix) {
		log.Debug().Msg("Reject message not intended for the bot")
		return ParseResult{parseid: PARSEID_NO_BOT_PREFIX}
	}

	// Get the command if valid
	words := strings.Fields(strings.TrimSpace(message[len(prefix):]))
	if len(words) == 0 {
		parseid := PARSEID_NO_COMMAND
		return ParseResult{parseid: parseid, errorMessage: errorMessages[parseid]}
	}
	commandString := words[0]
	words = words[1:]

	// Match the command

	switch commandString {
	case "board":
		// flo board [all|mine|default]
		return parseScope(COMMAND_BOARD, words, SCOPE_ALL)
	case "rank":
		// flo rank <riot_id> [shard]
		command := COMMAND_RANK
		if len(words) == 0 {
			return noInput(command, commandString)
		}
		return parsePlayer(command, words)
	case "track":
		// flo track <riot_id> [shard]
		command := COMMAND_TRACK
		if len(words) == 0 {
			return noInput(command, commandString)
		}
		return parsePlayer(command, words)
	case "untrack":
		// flo untrack <riot_id> [shard]
		command := COMMAND_UNTRACK
		if len(words) == 0 {
			return noInput(command, commandString)
		}
		return parsePlayer(command, words)
	case "players":
		// flo players [all|mine|default]
		return parseScope(COMMAND_PLAYERS, words, SCOPE_ALL)
	case "help":
		// flo help
		return ParseResult{command: COMMAND_HELP, parseid: PARSEID_OK}
	default:
		parseid := PARSEID_COMMAND_NOT_RECOGNISED
		return ParseResult{parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], commandString)}
	}
}

// Parse a riot id, possibly followed by the shard the player plays on.
// Game names may contain spaces, so everything up to the hashtag
// belongs to the name
func parsePlayer(command int, words []string) ParseResult {

	// A trailing word that names a known shard is the shard
	var shard riotapi.Shard
	if len(words) > 1 && !strings.Contains(words[len(words)-1], "#") {
		last := words[len(words)-1]
		if !riotapi.KnownShard(riotapi.Shard(last)) {
			parseid := PARSEID_UNKNOWN_SHARD
			return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], last)}
		}
		shard = riotapi.Shard(last)
		words = words[:len(words)-1]
	}

	// Check if the hashtag is present in the input
	word := strings.Join(words, " ")
	hashtagPos := strings.Index(word, "#")
	if hashtagPos == -1 {
		parseid := PARSEID_NOT_A_RIOT_ID
		return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], word)}
	}

	// Prepare syntactically valid riot id
	gameName := word[:hashtagPos]
	tagLine := word[hashtagPos+1:]
	if gameName == "" || tagLine == "" {
		parseid := PARSEID_NOT_A_RIOT_ID
		return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], word)}
	}
	riotid := riotapi.RiotId{GameName: gameName, TagLine: tagLine}
	return ParseResult{parseid: PARSEID_OK, command: command, arguments: PlayerArgs{Riotid: riotid, Shard: shard}}
}

func parseScope(command int, words []string, fallback string) ParseResult {

	if len(words) == 0 {
		return ParseResult{command: command, parseid: PARSEID_OK, arguments: fallback}
	}
	scope := strings.ToLower(words[0])
	switch scope {
	case SCOPE_ALL, SCOPE_MINE, SCOPE_DEFAULT:
		return ParseResult{command: command, parseid: PARSEID_OK, arguments: scope}
	default:
		parseid := PARSEID_UNKNOWN_SCOPE
		return ParseResult{command: command, parseid: parseid, errorMessage: fmt.Sprintf(errorMessages[parseid], words[0])}
	}
}
