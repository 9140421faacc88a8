package redisboard

import "fmt"

// Redis key pattern helpers.
//
// Key pattern: simpleboard:{instance}:{entity}
// Scoreboard-scoped key pattern: simpleboard:{instance}:sb:{scoreboard_id}:{entity}

// ScoreboardsKey returns the key of the set of allocated scoreboard ids.
func ScoreboardsKey(instanceName string) string {
	return fmt.Sprintf("simpleboard:%s:scoreboards", instanceName)
}

// BindingsKey returns the key of the viewer -> scoreboard hash.
func BindingsKey(instanceName string) string {
	return fmt.Sprintf("simpleboard:%s:bindings", instanceName)
}

// ObjectivesKey returns the key of a scoreboard's objective hash.
func ObjectivesKey(instanceName, scoreboardID string) string {
	return fmt.Sprintf("simpleboard:%s:sb:%s:objectives", instanceName, scoreboardID)
}

// ScoresKey returns the key of an objective's score ZSET.
func ScoresKey(instanceName, scoreboardID, objective string) string {
	return fmt.Sprintf("simpleboard:%s:sb:%s:objective:%s:scores", instanceName, scoreboardID, objective)
}

// TeamsKey returns the key of a scoreboard's team name set.
func TeamsKey(instanceName, scoreboardID string) string {
	return fmt.Sprintf("simpleboard:%s:sb:%s:teams", instanceName, scoreboardID)
}

// TeamKey returns the key of a team's hash.
func TeamKey(instanceName, scoreboardID, team string) string {
	return fmt.Sprintf("simpleboard:%s:sb:%s:team:%s", instanceName, scoreboardID, team)
}

// TeamEntriesKey returns the key of a team's member set.
func TeamEntriesKey(instanceName, scoreboardID, team string) string {
	return fmt.Sprintf("simpleboard:%s:sb:%s:team:%s:entries", instanceName, scoreboardID, team)
}

// EntryTeamKey returns the key of the entry -> team index of a scoreboard.
func EntryTeamKey(instanceName, scoreboardID string) string {
	return fmt.Sprintf("simpleboard:%s:sb:%s:entry_team", instanceName, scoreboardID)
}

// EventsChannel returns the Pub/Sub channel carrying mutation events.
func EventsChannel(instanceName string) string {
	return fmt.Sprintf("simpleboard:%s:events", instanceName)
}
