package watch

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/simpleboard/internal/filter"
	"github.com/dyluth/simpleboard/pkg/redisboard"
	"github.com/dyluth/simpleboard/pkg/richtext"
	"github.com/dyluth/simpleboard/pkg/substrate"
)

// syncBuffer is a goroutine-safe bytes.Buffer.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestParseOutputFormat(t *testing.T) {
	f, err := ParseOutputFormat("json")
	require.NoError(t, err)
	assert.Equal(t, OutputFormatJSON, f)

	_, err = ParseOutputFormat("yaml")
	assert.Error(t, err)
}

func TestDefaultFormatter(t *testing.T) {
	tests := []struct {
		name     string
		event    *redisboard.Event
		expected string
	}{
		{
			name:     "set score",
			event:    &redisboard.Event{Scoreboard: "0123456789abcdef", Kind: redisboard.EventSetScore, Name: "lobby", Entry: "§3", Score: 3},
			expected: `01234567 score "§3" = 3 in lobby`,
		},
		{
			name:     "set prefix",
			event:    &redisboard.Event{Scoreboard: "sb1", Kind: redisboard.EventSetPrefix, Name: "line_3", Value: "Online: 2"},
			expected: `sb1 team line_3 prefix: "Online: 2"`,
		},
		{
			name:     "add entry",
			event:    &redisboard.Event{Scoreboard: "sb1", Kind: redisboard.EventAddEntry, Name: "t10f8e4c6a1b2d4e", Entry: "Steve"},
			expected: `sb1 "Steve" joined team t10f8e4c6a1b2d4e`,
		},
		{
			name:     "unregister team",
			event:    &redisboard.Event{Scoreboard: "sb1", Kind: redisboard.EventUnregisterTeam, Name: "line_1"},
			expected: "sb1 team line_1 unregistered",
		},
		{
			name:     "bind",
			event:    &redisboard.Event{Scoreboard: "sb1", Kind: redisboard.EventBind, Entry: "Steve"},
			expected: "sb1 viewer Steve bound",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			formatter := &defaultFormatter{writer: buf}

			require.NoError(t, formatter.FormatEvent(tt.event))
			assert.True(t, strings.Contains(buf.String(), tt.expected),
				"Expected output to contain '%s', got: %s", tt.expected, buf.String())
		})
	}
}

func TestStreamEvents(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := redisboard.NewClient(&redis.Options{Addr: mr.Addr()}, "watch-test")
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- StreamEvents(ctx, client, OutputFormatJSON, &filter.Criteria{KindGlob: "register_*"}, out)
	}()

	// Wait until the stream is subscribed.
	require.Eventually(t, func() bool {
		return len(mr.PubSubChannels("*")) > 0
	}, time.Second, 10*time.Millisecond)

	sb, err := client.NewScoreboard(ctx)
	require.NoError(t, err)
	obj, err := sb.RegisterObjective(ctx, "lobby", richtext.Plain("Lobby"), substrate.SlotSidebar)
	require.NoError(t, err)
	require.NoError(t, obj.SetScore(ctx, "§1", 1))
	_, err = sb.RegisterTeam(ctx, "line_1")
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return strings.Count(out.String(), "\n") >= 2
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("stream did not stop after cancellation")
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)

	var first, second redisboard.Event
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &first))
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &second))
	assert.Equal(t, redisboard.EventRegisterObjective, first.Kind)
	assert.Equal(t, "Lobby", first.Value)
	assert.Equal(t, redisboard.EventRegisterTeam, second.Kind)
	assert.Equal(t, "line_1", second.Name)
}
