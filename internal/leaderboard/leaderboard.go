package leaderboard

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"flotrack/internal/registry"
	"flotrack/internal/riotapi"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Status int

const (
	Ranked Status = iota
	Unranked
	NotFound
	ApiError
)

func (status Status) String() string {
	switch status {
	case Ranked:
		return "Ranked"
	case Unranked:
		return "Unranked"
	case NotFound:
		return "Not found"
	case ApiError:
		return "API error"
	default:
		return "Unknown"
	}
}

// Scores for the non-ranked outcomes.
// A confirmed absence is more informative than a transient failure,
// so not-found sorts above an API error
const (
	ScoreUnranked = 0
	ScoreNotFound = -1
	ScoreApiError = -2
)

// Sortable score of a ranked entry. The tier contribution dominates
// division and league points combined, so a higher tier always wins
// regardless of the rest; points break ties inside a tier
func Score(entry *riotapi.LeagueEntry) int {
	return riotapi.TierRank(entry.Tier)*1000 + riotapi.DivisionRank(entry.Rank)*100 + entry.Lps
}

// PlayerResult is one row of the final leaderboard.
// Entry is only set for ranked players, Level only when the
// account resolved
type PlayerResult struct {
	Player registry.TrackedPlayer
	Status Status
	Entry  *riotapi.LeagueEntry
	Level  int
	Score  int
}

// RankSource is what the aggregator needs from the riot API
type RankSource interface {
	ResolveAccount(ctx context.Context, riotid riotapi.RiotId, shard riotapi.Shard) (*riotapi.Account, error)
	GetRankEntry(ctx context.Context, summonerId riotapi.SummonerId, shard riotapi.Shard) (*riotapi.LeagueEntry, error)
}

type Aggregator struct {
	source  RankSource
	workers int
	timeout time.Duration
	// Called after a successful resolution so the registry can cache the puuid
	onResolved func(player registry.TrackedPlayer, puuid riotapi.Puuid)
}

func CreateAggregator(source RankSource, workers int, timeout time.Duration, onResolved func(registry.TrackedPlayer, riotapi.Puuid)) Aggregator {
	if workers < 1 {
		workers = 1
	}
	return Aggregator{source: source, workers: workers, timeout: timeout, onResolved: onResolved}
}

// Build the leaderboard for the provided roster.
// Every roster entry yields exactly one result, whatever happens to the
// lookups for that player; a failure on one player never aborts the rest.
// The result is sorted by score, best first, with roster order breaking
// exact ties. The progress callback, if provided, is invoked after each
// player completes, with strictly increasing done counts; calls are
// serialized, so the callback needs no synchronization of its own
func (agg *Aggregator) Aggregate(ctx context.Context, roster []registry.TrackedPlayer, progress func(done int, total int)) []PlayerResult {

	if agg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, agg.timeout)
		defer cancel()
	}

	runid := uuid.New()
	log.Info().Msg(fmt.Sprintf("Aggregating leaderboard for %d players (run %s)", len(roster), runid))

	// Results are written by roster index, so workers never share a slot
	// and the pre-sort order is deterministic
	results := make([]PlayerResult, len(roster))
	jobs := make(chan int)
	var done int
	var progressMu sync.Mutex
	var wg sync.WaitGroup

	workers := agg.workers
	if workers > len(roster) {
		workers = len(roster)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				results[index] = agg.fetchOne(ctx, roster[index])
				if progress != nil {
					// One worker at a time, so the callback never races
					// with itself on whatever state it touches
					progressMu.Lock()
					done++
					progress(done, len(roster))
					progressMu.Unlock()
				}
			}
		}()
	}
	for index := range roster {
		jobs <- index
	}
	close(jobs)
	wg.Wait()

	// Best score first; the stable sort keeps roster order on ties
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	log.Info().Msg(fmt.Sprintf("Leaderboard run %s finished", runid))
	return results
}

// Produce the single result for one player.
// This is the isolation boundary: any error propagated by the
// resolution or the rank lookup becomes this player's API error row
func (agg *Aggregator) fetchOne(ctx context.Context, player registry.TrackedPlayer) PlayerResult {

	riotid := riotapi.RiotId{GameName: player.Name, TagLine: player.Tag}
	shard := riotapi.Shard(player.Shard)

	account, err := agg.source.ResolveAccount(ctx, riotid, shard)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not resolve %s: %s", &riotid, err))
		return PlayerResult{Player: player, Status: ApiError, Score: ScoreApiError}
	}
	if account == nil {
		log.Info().Msg(fmt.Sprintf("Player %s does not exist on shard %s", &riotid, shard))
		return PlayerResult{Player: player, Status: NotFound, Score: ScoreNotFound}
	}
	if agg.onResolved != nil {
		agg.onResolved(player, account.Puuid)
	}

	entry, err := agg.source.GetRankEntry(ctx, account.SummonerId, shard)
	if err != nil {
		log.Error().Msg(fmt.Sprintf("Could not fetch rank of %s: %s", &riotid, err))
		return PlayerResult{Player: player, Status: ApiError, Level: account.Level, Score: ScoreApiError}
	}
	if entry == nil {
		return PlayerResult{Player: player, Status: Unranked, Level: account.Level, Score: ScoreUnranked}
	}

	return PlayerResult{Player: player, Status: Ranked, Entry: entry, Level: account.Level, Score: Score(entry)}
}
