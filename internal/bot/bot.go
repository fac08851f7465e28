package bot

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"flotrack/internal/common"
	"flotrack/internal/config"
	"flotrack/internal/leaderboard"
	"flotrack/internal/registry"
	"flotrack/internal/riotapi"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
)

type Bot struct {
	token                string
	registry             *registry.Registry
	riotapi              *riotapi.RiotApi
	aggregator           leaderboard.Aggregator
	housekeepingExecutor common.TimedExecutor
	defaultShard         riotapi.Shard
	fieldLimit           int
	commandTimeout       time.Duration
	puuidMaxAge          time.Duration
	mainCycle            time.Duration
}

func CreateBot(cfg config.Config, reg *registry.Registry, api *riotapi.RiotApi, aggregator leaderboard.Aggregator) *Bot {

	bot := &Bot{
		token:          cfg.DiscordToken,
		registry:       reg,
		riotapi:        api,
		aggregator:     aggregator,
		defaultShard:   cfg.DefaultShard,
		fieldLimit:     cfg.EmbedFieldLimit,
		commandTimeout: cfg.AggregateTimeout,
		puuidMaxAge:    cfg.PuuidMaxAge,
		mainCycle:      cfg.MainCycle,
	}
	// Housekeeping for the registry
	bot.housekeepingExecutor = common.CreateTimedExecutor(cfg.HousekeepingPeriod, bot.registryHousekeeping)

	return bot
}

func (bot *Bot) Run() error {
	// Create session
	discord, err := discordgo.New("Bot " + bot.token)
	if err != nil {
		return fmt.Errorf("could not create discord session: %w", err)
	}

	// Event handler
	discord.AddHandler(bot.Receive)

	// Open session
	if err := discord.Open(); err != nil {
		return fmt.Errorf("could not open discord session: %w", err)
	}
	defer discord.Close()
	log.Info().Msg("Connected to discord")

	// Main cycle drives the housekeeping executor
	ticker := time.NewTicker(bot.mainCycle)
	defer ticker.Stop()
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				bot.housekeepingExecutor.Execute()
			}
		}
	}()

	// Keep the bot running until there is an os interruption (ctrl + C)
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	<-c
	log.Info().Msg("Shutting down")

	return nil
}

func (bot *Bot) Receive(discord *discordgo.Session, message *discordgo.MessageCreate) {

	// Reject my own messages
	if message.Author.ID == discord.State.User.ID {
		return
	}

	// Ignore messages from private channels
	if message.GuildID == "" {
		log.Debug().Msg("Ignoring private message")
		bot.sendResponses(discord, message.ChannelID, []Response{ResponseString{"For the time being, I am ignoring private messages"}})
		return
	}

	// Parse the input provided and call the appropriate function
	parseResult := Parse(message.Content)
	switch parseResult.parseid {
	case PARSEID_NO_BOT_PREFIX:
		return
	case PARSEID_OK:
		log.Info().Msg(fmt.Sprintf("Command understood: %s", message.Content))
		var responses []Response
		switch parseResult.command {
		case COMMAND_BOARD:
			switch scope := parseResult.arguments.(type) {
			default:
				panic(fmt.Sprintf("unexpected type of scope %T", scope))
			case string:
				responses = bot.board(discord, message.ChannelID, message.Author.ID, scope)
			}
		case COMMAND_RANK:
			switch args := parseResult.arguments.(type) {
			default:
				panic(fmt.Sprintf("unexpected type of player arguments %T", args))
			case PlayerArgs:
				responses = bot.rank(args)
			}
		case COMMAND_TRACK:
			switch args := parseResult.arguments.(type) {
			default:
				panic(fmt.Sprintf("unexpected type of player arguments %T", args))
			case PlayerArgs:
				responses = bot.track(args, message.Author.ID)
			}
		case COMMAND_UNTRACK:
			switch args := parseResult.arguments.(type) {
			default:
				panic(fmt.Sprintf("unexpected type of player arguments %T", args))
			case PlayerArgs:
				responses = bot.untrack(args, message.Author.ID)
			}
		case COMMAND_PLAYERS:
			switch scope := parseResult.arguments.(type) {
			default:
				panic(fmt.Sprintf("unexpected type of scope %T", scope))
			case string:
				responses = bot.players(message.Author.ID, scope)
			}
		case COMMAND_HELP:
			responses = HelpMessage()
		default:
			panic(fmt.Sprintf("Command %d is not one of the possible ones", parseResult.command))
		}
		bot.sendResponses(discord, message.ChannelID, responses)
	default:

		// The command is invalid input, so it contains an error message
		errorMessage := parseResult.errorMessage
		log.Info().Msg(fmt.Sprintf("Wrong input: '%s'. Reason: %s", message.Content, errorMessage))
		bot.sendResponses(discord, message.ChannelID, InputNotValid(errorMessage))
	}
}

func (bot *Bot) sendResponses(discord *discordgo.Session, channelId string, responses []Response) {
	for _, response := range responses {
		response.Send(channelId, discord)
	}
}

// Fetch the ranks of the requested roster and render the leaderboard.
// A loading message is posted right away and edited as players
// complete, since the aggregation can take a while
func (bot *Bot) board(discord *discordgo.Session, channelId string, authorId string, scope string) []Response {

	roster, err := bot.roster(authorId, scope)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not read the registry: %s", err))
		return []Response{ResponseString{"Could not read the list of tracked players"}}
	}
	if len(roster) == 0 {
		return LeaderboardMessage(nil, bot.fieldLimit)
	}

	loading := LoadingEmbed(len(roster))
	loadingMessage, err := discord.ChannelMessageSendEmbed(channelId, loading)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not send the loading message: %s", err))
	}

	progress := func(done int, total int) {
		if loadingMessage == nil || done%2 != 0 {
			return
		}
		loading.Description = LoadingProgress(done, total)
		if _, err := discord.ChannelMessageEditEmbed(channelId, loadingMessage.ID, loading); err != nil {
			log.Debug().Msg(fmt.Sprintf("Could not edit the loading message: %s", err))
		}
	}

	results := bot.aggregator.Aggregate(context.Background(), roster, progress)

	if loadingMessage != nil {
		if err := discord.ChannelMessageDelete(channelId, loadingMessage.ID); err != nil {
			log.Debug().Msg(fmt.Sprintf("Could not delete the loading message: %s", err))
		}
	}
	return LeaderboardMessage(results, bot.fieldLimit)
}

// Fetch and render the rank of a single player.
// The player does not have to be tracked
func (bot *Bot) rank(args PlayerArgs) []Response {

	player := registry.TrackedPlayer{
		Name:  args.Riotid.GameName,
		Tag:   args.Riotid.TagLine,
		Shard: string(bot.shardOrDefault(args.Shard)),
	}
	results := bot.aggregator.Aggregate(context.Background(), []registry.TrackedPlayer{player}, nil)
	return PlayerRankMessage(results[0])
}

// Add a player to the registry.
// The player is resolved first, so that only existing accounts
// end up on the leaderboard
func (bot *Bot) track(args PlayerArgs, authorId string) []Response {

	shard := bot.shardOrDefault(args.Shard)
	ctx, cancel := context.WithTimeout(context.Background(), bot.commandTimeout)
	defer cancel()

	account, err := bot.riotapi.ResolveAccount(ctx, args.Riotid, shard)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not resolve %s: %s", &args.Riotid, err))
		return NoResponseRiotApi(args.Riotid)
	}
	if account == nil {
		return PlayerDoesNotExist(args.Riotid, shard)
	}

	player, err := bot.registry.Add(registry.TrackedPlayer{
		OwnerId: authorId,
		Name:    args.Riotid.GameName,
		Tag:     args.Riotid.TagLine,
		Shard:   string(shard),
		Puuid:   string(account.Puuid),
	})
	if err == registry.ErrAlreadyTracked {
		return PlayerAlreadyTracked(args.Riotid)
	}
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not add player %s: %s", &args.Riotid, err))
		return []Response{ResponseString{"Could not update the list of tracked players"}}
	}

	responses := PlayerTracked(player)

	// Also show the rank of the player that was just added
	entry, err := bot.riotapi.GetRankEntry(ctx, account.SummonerId, shard)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not fetch rank of %s: %s", &args.Riotid, err))
		return responses
	}
	result := leaderboard.PlayerResult{Player: player, Status: leaderboard.Unranked, Level: account.Level}
	if entry != nil {
		result = leaderboard.PlayerResult{Player: player, Status: leaderboard.Ranked, Entry: entry, Level: account.Level, Score: leaderboard.Score(entry)}
	}
	return append(responses, PlayerRankMessage(result)...)
}

// Remove a player from the registry.
// Only the user that added a player may remove it
func (bot *Bot) untrack(args PlayerArgs, authorId string) []Response {

	shard := bot.shardOrDefault(args.Shard)
	err := bot.registry.Remove(args.Riotid.GameName, args.Riotid.TagLine, string(shard), authorId)
	switch err {
	case nil:
		return PlayerUntracked(args.Riotid)
	case registry.ErrNotTracked:
		return PlayerNotTracked(args.Riotid)
	case registry.ErrNotOwner:
		return PlayerNotYours(args.Riotid)
	default:
		log.Error().Msg(fmt.Sprintf("Could not remove player %s: %s", &args.Riotid, err))
		return []Response{ResponseString{"Could not update the list of tracked players"}}
	}
}

// List the tracked players without fetching anything
func (bot *Bot) players(authorId string, scope string) []Response {

	roster, err := bot.roster(authorId, scope)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not read the registry: %s", err))
		return []Response{ResponseString{"Could not read the list of tracked players"}}
	}
	return PlayersMessage(roster, scope)
}

func (bot *Bot) roster(authorId string, scope string) ([]registry.TrackedPlayer, error) {
	switch scope {
	case SCOPE_MINE:
		return bot.registry.ByOwner(authorId)
	case SCOPE_DEFAULT:
		return bot.registry.Defaults()
	default:
		return bot.registry.All()
	}
}

func (bot *Bot) shardOrDefault(shard riotapi.Shard) riotapi.Shard {
	if shard == "" {
		return bot.defaultShard
	}
	return shard
}

func (bot *Bot) registryHousekeeping() {
	count, err := bot.registry.ClearStalePuuids(bot.puuidMaxAge)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Registry housekeeping failed: %s", err))
		return
	}
	if count > 0 {
		log.Info().Msg(fmt.Sprintf("Cleared %d stale cached puuids", count))
	}
}
