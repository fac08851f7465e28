package leaderboard

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"flotrack/internal/registry"
	"flotrack/internal/riotapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource answers resolutions and rank lookups from fixed maps,
// keyed by riot id and summoner id respectively
type fakeSource struct {
	accounts    map[string]*riotapi.Account
	accountErrs map[string]error
	entries     map[riotapi.SummonerId]*riotapi.LeagueEntry
	entryErrs   map[riotapi.SummonerId]error
}

func (source *fakeSource) ResolveAccount(ctx context.Context, riotid riotapi.RiotId, shard riotapi.Shard) (*riotapi.Account, error) {
	if err, ok := source.accountErrs[riotid.String()]; ok {
		return nil, err
	}
	return source.accounts[riotid.String()], nil
}

func (source *fakeSource) GetRankEntry(ctx context.Context, summonerId riotapi.SummonerId, shard riotapi.Shard) (*riotapi.LeagueEntry, error) {
	if err, ok := source.entryErrs[summonerId]; ok {
		return nil, err
	}
	return source.entries[summonerId], nil
}

func player(name string, tag string) registry.TrackedPlayer {
	return registry.TrackedPlayer{Name: name, Tag: tag, Shard: "euw1"}
}

func account(name string, tag string) *riotapi.Account {
	return &riotapi.Account{
		Puuid:      riotapi.Puuid("puuid-" + name),
		SummonerId: riotapi.SummonerId("summ-" + name),
		Riotid:     riotapi.RiotId{GameName: name, TagLine: tag},
		Level:      100,
	}
}

func TestAggregateRankedAndUnranked(t *testing.T) {

	// Ana is gold II 40 lps, Bob exists but is unranked
	source := &fakeSource{
		accounts: map[string]*riotapi.Account{
			"Ana#EUW": account("Ana", "EUW"),
			"Bob#EUW": account("Bob", "EUW"),
		},
		entries: map[riotapi.SummonerId]*riotapi.LeagueEntry{
			"summ-Ana": {QueueType: "RANKED_TFT", Tier: "GOLD", Rank: "II", Lps: 40, Wins: 11, Losses: 9},
		},
	}
	aggregator := CreateAggregator(source, 1, 0, nil)

	results := aggregator.Aggregate(context.Background(), []registry.TrackedPlayer{player("Ana", "EUW"), player("Bob", "EUW")}, nil)
	require.Len(t, results, 2)

	assert.Equal(t, "Ana", results[0].Player.Name)
	assert.Equal(t, Ranked, results[0].Status)
	assert.Equal(t, 4340, results[0].Score)
	assert.Equal(t, 100, results[0].Level)

	assert.Equal(t, "Bob", results[1].Player.Name)
	assert.Equal(t, Unranked, results[1].Status)
	assert.Equal(t, ScoreUnranked, results[1].Score)
	assert.Nil(t, results[1].Entry)
}

func TestAggregateFailureIsolation(t *testing.T) {

	// A player whose identity lookup 404s and a player whose lookups
	// blow up both appear in the output, and the rest of the roster
	// is still processed
	source := &fakeSource{
		accounts: map[string]*riotapi.Account{
			"Ana#EUW": account("Ana", "EUW"),
		},
		accountErrs: map[string]error{
			"Broken#EUW": errors.New("account api answered 500"),
		},
		entries: map[riotapi.SummonerId]*riotapi.LeagueEntry{
			"summ-Ana": {QueueType: "RANKED_TFT", Tier: "IRON", Rank: "IV", Lps: 0},
		},
	}
	roster := []registry.TrackedPlayer{
		player("Ghost", "EUW"),
		player("Broken", "EUW"),
		player("Ana", "EUW"),
	}
	aggregator := CreateAggregator(source, 2, 0, nil)

	results := aggregator.Aggregate(context.Background(), roster, nil)
	require.Len(t, results, 3)

	byName := map[string]PlayerResult{}
	for _, result := range results {
		byName[result.Player.Name] = result
	}
	assert.Equal(t, NotFound, byName["Ghost"].Status)
	assert.Equal(t, ScoreNotFound, byName["Ghost"].Score)
	assert.Equal(t, ApiError, byName["Broken"].Status)
	assert.Equal(t, ScoreApiError, byName["Broken"].Score)
	assert.Equal(t, Ranked, byName["Ana"].Status)

	// Ranked first, then unranked and the failures,
	// with a confirmed absence above a transient failure
	assert.Equal(t, []string{"Ana", "Ghost", "Broken"}, []string{results[0].Player.Name, results[1].Player.Name, results[2].Player.Name})
}

func TestAggregateRankLookupError(t *testing.T) {

	source := &fakeSource{
		accounts: map[string]*riotapi.Account{
			"Ana#EUW": account("Ana", "EUW"),
		},
		entryErrs: map[riotapi.SummonerId]error{
			"summ-Ana": errors.New("league api answered 503"),
		},
	}
	aggregator := CreateAggregator(source, 1, 0, nil)

	results := aggregator.Aggregate(context.Background(), []registry.TrackedPlayer{player("Ana", "EUW")}, nil)
	require.Len(t, results, 1)
	assert.Equal(t, ApiError, results[0].Status)
	assert.Equal(t, ScoreApiError, results[0].Score)
}

func TestAggregateStableOnTies(t *testing.T) {

	// Three unranked players score identically,
	// so roster order has to survive the sort
	source := &fakeSource{
		accounts: map[string]*riotapi.Account{
			"A#EUW": account("A", "EUW"),
			"B#EUW": account("B", "EUW"),
			"C#EUW": account("C", "EUW"),
		},
	}
	roster := []registry.TrackedPlayer{player("A", "EUW"), player("B", "EUW"), player("C", "EUW")}
	aggregator := CreateAggregator(source, 3, 0, nil)

	for i := 0; i < 10; i++ {
		results := aggregator.Aggregate(context.Background(), roster, nil)
		require.Len(t, results, 3)
		assert.Equal(t, "A", results[0].Player.Name)
		assert.Equal(t, "B", results[1].Player.Name)
		assert.Equal(t, "C", results[2].Player.Name)
	}
}

func TestAggregateProgressAndPuuidWriteback(t *testing.T) {

	source := &fakeSource{
		accounts: map[string]*riotapi.Account{
			"Ana#EUW": account("Ana", "EUW"),
			"Bob#EUW": account("Bob", "EUW"),
		},
	}

	var mu sync.Mutex
	var resolved []string
	onResolved := func(player registry.TrackedPlayer, puuid riotapi.Puuid) {
		mu.Lock()
		defer mu.Unlock()
		resolved = append(resolved, string(puuid))
	}
	aggregator := CreateAggregator(source, 2, time.Minute, onResolved)

	var progressCalls int
	progress := func(done int, total int) {
		mu.Lock()
		defer mu.Unlock()
		progressCalls++
		assert.Equal(t, 2, total)
	}

	results := aggregator.Aggregate(context.Background(), []registry.TrackedPlayer{player("Ana", "EUW"), player("Bob", "EUW")}, progress)
	require.Len(t, results, 2)
	assert.Equal(t, 2, progressCalls)
	assert.ElementsMatch(t, []string{"puuid-Ana", "puuid-Bob"}, resolved)
}

func TestAggregateProgressIsSerialized(t *testing.T) {

	// The callback writes shared state without any locking of its own,
	// like a caller editing a message in place would. Delivery has to be
	// serialized with strictly increasing done counts even with several
	// workers finishing at the same time
	accounts := map[string]*riotapi.Account{}
	var roster []registry.TrackedPlayer
	for _, name := range []string{"A", "B", "C", "D", "E", "F", "G", "H"} {
		accounts[name+"#EUW"] = account(name, "EUW")
		roster = append(roster, player(name, "EUW"))
	}
	source := &fakeSource{accounts: accounts}
	aggregator := CreateAggregator(source, 4, 0, nil)

	var calls []int
	var description string
	progress := func(done int, total int) {
		calls = append(calls, done)
		description = fmt.Sprintf("Processing player %d/%d", done, total)
	}

	results := aggregator.Aggregate(context.Background(), roster, progress)
	require.Len(t, results, len(roster))

	require.Len(t, calls, len(roster))
	for i, done := range calls {
		assert.Equal(t, i+1, done)
	}
	assert.Equal(t, fmt.Sprintf("Processing player %d/%d", len(roster), len(roster)), description)
}

func TestScore(t *testing.T) {

	// Higher tier always beats division and points combined
	gold := &riotapi.LeagueEntry{Tier: "GOLD", Rank: "II", Lps: 99}
	platinum := &riotapi.LeagueEntry{Tier: "PLATINUM", Rank: "IV", Lps: 0}
	assert.Less(t, Score(gold), Score(platinum))

	// Inside the same tier and division, points decide
	almost := &riotapi.LeagueEntry{Tier: "GOLD", Rank: "II", Lps: 40}
	ahead := &riotapi.LeagueEntry{Tier: "GOLD", Rank: "II", Lps: 41}
	assert.Less(t, Score(almost), Score(ahead))
	assert.Equal(t, 4340, Score(almost))

	// Apex tiers carry no division, the tier multiplier plus points decide
	master := &riotapi.LeagueEntry{Tier: "MASTER", Lps: 1200}
	diamond := &riotapi.LeagueEntry{Tier: "DIAMOND", Rank: "I", Lps: 99}
	assert.Equal(t, 8200, Score(master))
	assert.Greater(t, Score(master), Score(diamond))

	// Any ranked player sits strictly above every other outcome
	iron := &riotapi.LeagueEntry{Tier: "IRON", Rank: "IV", Lps: 0}
	assert.Greater(t, Score(iron), ScoreUnranked)
	assert.Greater(t, ScoreUnranked, ScoreNotFound)
	assert.Greater(t, ScoreNotFound, ScoreApiError)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Ranked", Ranked.String())
	assert.Equal(t, "Unranked", Unranked.String())
	assert.Equal(t, "Not found", NotFound.String())
	assert.Equal(t, "API error", ApiError.String())
}
