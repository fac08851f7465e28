package riotapi

import (
	"context"
	"fmt"
	"time"

	"flotrack/internal/common"

	"github.com/rs/zerolog/log"
)

// Riot schema
const RIOT_SCHEMA = "https://%s.api.riotgames.com"

// Routes inside the riot API
const ROUTE_ACCOUNT_PUUID = "/riot/account/v1/accounts/by-riot-id/%s/%s"
const ROUTE_SUMMONER = "/tft/summoner/v1/summoners/by-puuid/%s"
const ROUTE_LEAGUE = "/tft/league/v1/entries/by-summoner/%s"

// The queue we track. Entries for any other queue are discarded
const RANKED_QUEUE = "RANKED_TFT"

type RiotApi struct {
	proxy        common.Proxy
	schema       string
	defaultRealm Realm
}

// Options for creating a riot API
type Options struct {
	ApiKey       string
	Restrictions []common.Restriction
	Timeout      time.Duration
	MaxAttempts  int
	RetryAfter   time.Duration
	DefaultRealm Realm
	Schema       string // Base url pattern, overridable for tests
}

func CreateRiotApi(options Options) RiotApi {

	var riotapi RiotApi

	riotapi.proxy = common.CreateProxy(
		map[string]string{"X-Riot-Token": options.ApiKey},
		options.Restrictions,
		options.Timeout,
		options.MaxAttempts,
		options.RetryAfter,
	)
	riotapi.schema = options.Schema
	if riotapi.schema == "" {
		riotapi.schema = RIOT_SCHEMA
	}
	riotapi.defaultRealm = options.DefaultRealm
	if riotapi.defaultRealm == "" {
		riotapi.defaultRealm = RealmEurope
	}

	return riotapi
}

// Map a shard to the realm that serves its identity lookups.
// Unknown shards fall back to the configured default realm
func (riotapi *RiotApi) Realm(shard Shard) Realm {
	if realm, ok := realms[shard]; ok {
		return realm
	}
	log.Warn().Msg(fmt.Sprintf("Shard %s is not a known one, falling back to realm %s", shard, riotapi.defaultRealm))
	return riotapi.defaultRealm
}

// Resolve a riot id on the provided shard into an account.
// Returns nil without error if either the riot id or its summoner
// profile affirmatively does not exist
func (riotapi *RiotApi) ResolveAccount(ctx context.Context, riotid RiotId, shard Shard) (*Account, error) {

	// Identity lookup happens on the realm, not the shard
	realm := riotapi.Realm(shard)
	url := fmt.Sprintf(riotapi.schema, realm) + fmt.Sprintf(ROUTE_ACCOUNT_PUUID, riotid.GameName, riotid.TagLine)
	data, err := riotapi.proxy.Get(ctx, "Account API", url)
	if err != nil {
		return nil, err
	}
	if data == nil {
		log.Debug().Msg(fmt.Sprintf("Riot id %s does not exist on realm %s", &riotid, realm))
		return nil, nil
	}
	puuid, err := UnmarshalPuuid(data)
	if err != nil {
		return nil, err
	}

	// The summoner profile lives on the shard itself
	url = fmt.Sprintf(riotapi.schema, shard) + fmt.Sprintf(ROUTE_SUMMONER, puuid)
	data, err = riotapi.proxy.Get(ctx, "Summoner API", url)
	if err != nil {
		return nil, err
	}
	if data == nil {
		log.Debug().Msg(fmt.Sprintf("No summoner profile on shard %s for riot id %s", shard, &riotid))
		return nil, nil
	}
	summoner, err := UnmarshalSummoner(data)
	if err != nil {
		return nil, err
	}

	log.Debug().Msg(fmt.Sprintf("Resolved riot id %s to puuid %s", &riotid, puuid))
	return &Account{Puuid: puuid, SummonerId: summoner.Id, Riotid: riotid, Level: summoner.Level}, nil
}

// Fetch the ranked entry of the provided summoner for the target queue.
// Returns nil without error if the player has no entry for that
// queue, which simply means the player is unranked
func (riotapi *RiotApi) GetRankEntry(ctx context.Context, summonerId SummonerId, shard Shard) (*LeagueEntry, error) {

	url := fmt.Sprintf(riotapi.schema, shard) + fmt.Sprintf(ROUTE_LEAGUE, summonerId)
	data, err := riotapi.proxy.Get(ctx, "League API", url)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	entries, err := UnmarshalLeagueEntries(data)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if entries[i].QueueType == RANKED_QUEUE {
			return &entries[i], nil
		}
	}
	return nil, nil
}
