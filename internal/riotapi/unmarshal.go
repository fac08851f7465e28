package riotapi

import (
	"encoding/json"
)

func UnmarshalPuuid(data []byte) (Puuid, error) {

	var raw struct {
		Puuid string `json:"puuid"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return "", err
	}

	return Puuid(raw.Puuid), nil
}

// Summoner is the shard-local profile behind a puuid
type Summoner struct {
	Id    SummonerId
	Level int
}

func UnmarshalSummoner(data []byte) (Summoner, error) {

	var raw struct {
		Id            string `json:"id"`
		SummonerLevel int    `json:"summonerLevel"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return Summoner{}, err
	}

	return Summoner{Id: SummonerId(raw.Id), Level: raw.SummonerLevel}, nil
}

func UnmarshalLeagueEntries(data []byte) ([]LeagueEntry, error) {

	// unmarshal
	var entries []LeagueEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, err
	}

	// Handle internal data
	for i := range entries {

		// winrate
		games := entries[i].Wins + entries[i].Losses
		if games > 0 {
			entries[i].Winrate = 100.0 * float32(entries[i].Wins) / float32(games)
		} else {
			entries[i].Winrate = 0
		}
	}

	return entries, nil
}
