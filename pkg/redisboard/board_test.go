package redisboard_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/simpleboard/internal/identifier"
	"github.com/dyluth/simpleboard/pkg/prefix"
	"github.com/dyluth/simpleboard/pkg/redisboard"
	"github.com/dyluth/simpleboard/pkg/richtext"
	"github.com/dyluth/simpleboard/pkg/sidebar"
	"github.com/dyluth/simpleboard/pkg/substrate/memory"
)

func TestBoardOnRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redisboard.NewClient(&redis.Options{Addr: mr.Addr()}, "it")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()

	lines := []string{"A", "B", "C"}
	board, err := sidebar.New("lobby", client)
	require.NoError(t, err)
	require.NoError(t, board.SetTitle(ctx, richtext.Plain("Lobby")))
	board.SetLineSource(func() []richtext.Component {
		out := make([]richtext.Component, 0, len(lines))
		for _, l := range lines {
			out = append(out, richtext.Plain(l))
		}
		return out
	})

	steve := memory.NewPlayer("Steve")
	require.NoError(t, board.Show(ctx, steve))

	sb, err := client.ScoreboardOf(ctx, steve)
	require.NoError(t, err)
	raw, err := sb.Objective(ctx, "lobby")
	require.NoError(t, err)
	obj := raw.(*redisboard.Objective)

	scores, err := obj.Scores(ctx)
	require.NoError(t, err)
	assert.Equal(t, []redisboard.ScoredEntry{
		{Entry: identifier.LineEntry(3), Score: 3},
		{Entry: identifier.LineEntry(2), Score: 2},
		{Entry: identifier.LineEntry(1), Score: 1},
	}, scores)

	lines = []string{"A", "X"}
	require.NoError(t, board.Update(ctx))

	team, err := sb.Team(ctx, identifier.LineGroup(2))
	require.NoError(t, err)
	state, err := team.(*redisboard.Team).State(ctx)
	require.NoError(t, err)
	assert.Equal(t, "X", state.Prefix.PlainText())

	_, err = sb.Team(ctx, identifier.LineGroup(1))
	assert.Error(t, err)

	require.NoError(t, board.Destroy(ctx))
	names, err := sb.Teams(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestPrefixesOnRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redisboard.NewClient(&redis.Options{Addr: mr.Addr()}, "it")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	ctx := context.Background()

	steve := memory.NewPlayer("Steve")
	sb, err := client.NewScoreboard(ctx)
	require.NoError(t, err)
	require.NoError(t, client.Bind(ctx, steve, sb))

	table := prefix.NewAssignments(client, memory.NewDirectory(steve))
	require.NoError(t, table.Assign(ctx, steve, prefix.NewDefinition(richtext.Plain("[VIP]"), 5)))

	name, err := identifier.ViewerGroup(5, steve.ID())
	require.NoError(t, err)
	team, err := sb.Team(ctx, name)
	require.NoError(t, err)
	entries, err := team.Entries(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Steve"}, entries)
}
