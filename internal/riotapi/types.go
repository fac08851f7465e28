package riotapi

import (
	"fmt"
)

type Puuid string
type SummonerId string

// Shard is the regional server cluster a player's account lives on
type Shard string

// Realm is the broader routing region used for riot id resolution only
type Realm string

const (
	RealmAmericas Realm = "americas"
	RealmEurope   Realm = "europe"
	RealmAsia     Realm = "asia"
)

// Fixed mapping from every known shard to the realm that
// serves its identity lookups
var realms = map[Shard]Realm{
	"na1":   RealmAmericas,
	"br1":   RealmAmericas,
	"la1":   RealmAmericas,
	"la2":   RealmAmericas,
	"oc1":   RealmAmericas,
	"euw1":  RealmEurope,
	"eune1": RealmEurope,
	"eun1":  RealmEurope,
	"tr1":   RealmEurope,
	"ru":    RealmEurope,
	"kr":    RealmAsia,
	"jp1":   RealmAsia,
}

// Report whether the provided shard is one of the known ones
func KnownShard(shard Shard) bool {
	_, ok := realms[shard]
	return ok
}

// All the shards the API knows about, for building user-facing messages
func KnownShards() []Shard {
	shards := make([]Shard, 0, len(realms))
	for shard := range realms {
		shards = append(shards, shard)
	}
	return shards
}

type RiotId struct {
	GameName string
	TagLine  string
}

func (riotid *RiotId) String() string {
	return fmt.Sprintf("%s#%s", riotid.GameName, riotid.TagLine)
}

// Account is the merged result of resolving a riot id:
// the cross-shard puuid plus the shard-local summoner profile
type Account struct {
	Puuid      Puuid
	SummonerId SummonerId
	Riotid     RiotId
	Level      int
}

// LeagueEntry is the ranked standing of a player in the target queue.
// Rank (the division) is empty for master, grandmaster and challenger
type LeagueEntry struct {
	QueueType string  `json:"queueType"`
	Tier      string  `json:"tier"`
	Rank      string  `json:"rank"`
	Lps       int     `json:"leaguePoints"`
	Wins      int     `json:"wins"`
	Losses    int     `json:"losses"`
	Winrate   float32 `json:"-"`
}

// Total order of the ladder tiers, lowest first
var tierRanks = map[string]int{
	"IRON":        1,
	"BRONZE":      2,
	"SILVER":      3,
	"GOLD":        4,
	"PLATINUM":    5,
	"DIAMOND":     6,
	"MASTER":      7,
	"GRANDMASTER": 8,
	"CHALLENGER":  9,
}

var divisionRanks = map[string]int{
	"IV":  1,
	"III": 2,
	"II":  3,
	"I":   4,
}

// 1-based position of the tier in the ladder order.
// Unknown tiers rank below everything
func TierRank(tier string) int {
	return tierRanks[tier]
}

// Position of the division inside a tier, IV lowest.
// The apex tiers carry no division and contribute 0
func DivisionRank(division string) int {
	return divisionRanks[division]
}
