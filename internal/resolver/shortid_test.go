package resolver

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/simpleboard/pkg/redisboard"
	"github.com/dyluth/simpleboard/pkg/substrate"
)

func setupTestClient(t *testing.T) (*miniredis.Miniredis, *redisboard.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redisboard.NewClient(&redis.Options{Addr: mr.Addr()}, "test-instance")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestResolveScoreboardID(t *testing.T) {
	ctx := context.Background()
	mr, client := setupTestClient(t)

	key := redisboard.ScoreboardsKey("test-instance")
	_, err := mr.SetAdd(key,
		"aaaaaaaa-1111-4111-8111-111111111111",
		"aaaaaaaa-2222-4222-8222-222222222222",
		"bbbbbbbb-3333-4333-8333-333333333333",
	)
	require.NoError(t, err)

	testCases := []struct {
		name      string
		shortID   string
		want      string
		notFound  bool
		ambiguous bool
		errSubstr string
	}{
		{name: "unique prefix", shortID: "bbbbbb", want: "bbbbbbbb-3333-4333-8333-333333333333"},
		{name: "longer unique prefix", shortID: "aaaaaaaa-1", want: "aaaaaaaa-1111-4111-8111-111111111111"},
		{name: "full id", shortID: "aaaaaaaa-2222-4222-8222-222222222222", want: "aaaaaaaa-2222-4222-8222-222222222222"},
		{name: "ambiguous prefix", shortID: "aaaaaa", ambiguous: true},
		{name: "no match", shortID: "cccccc", notFound: true},
		{name: "too short", shortID: "aaa", errSubstr: "at least 6"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ResolveScoreboardID(ctx, client, tc.shortID)
			switch {
			case tc.ambiguous:
				amb, ok := AsAmbiguousError(err)
				require.True(t, ok, "expected AmbiguousError, got %v", err)
				assert.Len(t, amb.Matches, 2)
			case tc.notFound:
				assert.True(t, IsNotFoundError(err), "expected NotFoundError, got %v", err)
			case tc.errSubstr != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tc.errSubstr)
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestResolveScoreboardID_MissingFullID(t *testing.T) {
	_, client := setupTestClient(t)

	_, err := ResolveScoreboardID(context.Background(), client, "dddddddd-4444-4444-8444-444444444444")
	assert.ErrorIs(t, err, substrate.ErrNotFound)
}

func TestFormatAmbiguousError(t *testing.T) {
	matches := make([]string, 12)
	for i := range matches {
		matches[i] = "abcdef-" + string(rune('a'+i))
	}

	msg := FormatAmbiguousError(&AmbiguousError{ShortID: "abcdef", Matches: matches})
	assert.Contains(t, msg, "matches 12 scoreboards")
	assert.Contains(t, msg, "abcdef-j")
	assert.NotContains(t, msg, "abcdef-k")
	assert.Contains(t, msg, "...and 2 more")
}
