// Package redisboard is a Redis-backed implementation of the substrate
// contract.
//
// # Overview
//
// Scoreboards, objectives and teams live in Redis so that a board rendered by
// one process can be inspected, or displayed, by another. Every mutation is
// also published as an Event on the instance's event channel; the watch
// command of the CLI streams that channel.
//
// # Multi-Instance Support
//
// All keys and channels are namespaced by instance name so that several
// simpleboard deployments can share a Redis server.
//
// # Redis Schema
//
// All keys follow the pattern: simpleboard:{instance}:{entity}...
//
// Scoreboards: simpleboard:{instance}:scoreboards (SET of scoreboard ids)
// Bindings: simpleboard:{instance}:bindings (HASH viewer id -> scoreboard id)
// Objectives: simpleboard:{instance}:sb:{id}:objectives (HASH name -> JSON)
// Scores: simpleboard:{instance}:sb:{id}:objective:{name}:scores (ZSET)
// Teams: simpleboard:{instance}:sb:{id}:teams (SET of team names)
// Team: simpleboard:{instance}:sb:{id}:team:{name} (HASH)
// Team entries: simpleboard:{instance}:sb:{id}:team:{name}:entries (SET)
// Entry index: simpleboard:{instance}:sb:{id}:entry_team (HASH entry -> team)
//
// Events: simpleboard:{instance}:events
//
// # Usage Example
//
//	client, err := redisboard.NewClient(&redis.Options{Addr: "localhost:6379"}, "lobby-1")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
//	board, err := sidebar.New("lobby", client)
package redisboard
