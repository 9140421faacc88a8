package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/simpleboard/pkg/redisboard"
	"github.com/dyluth/simpleboard/pkg/richtext"
	"github.com/dyluth/simpleboard/pkg/substrate"
)

const testConfig = `version: "1.0"
tick: 10ms
redis:
  url: %s
  instance: test
prefixes:
  admin:
    label: "[Admin]"
    priority: 1
    permission: board.admin
  member:
    label: "[Member]"
    priority: 10
boards:
  lobby:
    title: Lobby
    interval: 1t
    lines:
      - "Board {board}"
      - "Online: {online}"
viewers:
  - name: Steve
    permissions: [board.admin]
  - name: Alex
`

func writeConfig(t *testing.T, redisURL string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "simpleboard.yml")
	require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf(testConfig, redisURL)), 0644))
	return path
}

// execute runs the real root command with args and returns its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("REDIS_URL", "")
	t.Setenv("SIMPLEBOARD_INSTANCE", "")

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	// A nil slice makes cobra fall back to os.Args.
	rootCmd.SetArgs(append([]string{}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := Execute()
	return buf.String(), err
}

func TestRootCommand_ShowsHelpWhenNoSubcommand(t *testing.T) {
	output, err := execute(t)
	assert.NoError(t, err)
	assert.Contains(t, output, "Usage:")
	assert.Contains(t, output, "simpleboard")
}

func TestRootCommand_RejectsUnknownFlags(t *testing.T) {
	_, err := execute(t, "--unknown-flag", "value")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown flag")
}

func TestRootCommand_Version(t *testing.T) {
	SetVersionInfo("1.2.3", "abc123", "2026-01-01")
	assert.Equal(t, "1.2.3 (commit: abc123, built: 2026-01-01)", rootCmd.Version)
}

func TestRootCommand_Subcommands(t *testing.T) {
	var names []string
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"preview", "prefixes", "serve", "watch", "inspect"} {
		assert.Contains(t, names, want)
	}
}

func TestPreview(t *testing.T) {
	path := writeConfig(t, "redis://localhost:6379/0")

	output, err := execute(t, "preview", "--config", path, "--ticks", "1")
	require.NoError(t, err)

	assert.Contains(t, output, "Lobby")
	assert.Contains(t, output, "Board lobby")
	assert.Contains(t, output, "Online: 2")
	assert.Contains(t, output, "[Admin]")
	assert.Contains(t, output, "Steve")
	assert.Contains(t, output, "[Member]")
	assert.Contains(t, output, "Alex")
}

func TestPreview_UnknownBoard(t *testing.T) {
	path := writeConfig(t, "redis://localhost:6379/0")

	_, err := execute(t, "preview", "arena", "--config", path, "--ticks", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "arena")
}

func TestPreview_MissingConfig(t *testing.T) {
	_, err := execute(t, "preview", "--config", filepath.Join(t.TempDir(), "missing.yml"), "--ticks", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load configuration")
}

func TestPrefixes(t *testing.T) {
	path := writeConfig(t, "redis://localhost:6379/0")

	output, err := execute(t, "prefixes", "--config", path)
	require.NoError(t, err)

	member := bytes.Index([]byte(output), []byte("member"))
	admin := bytes.Index([]byte(output), []byte("admin "))
	require.NotEqual(t, -1, member)
	require.NotEqual(t, -1, admin)
	assert.Less(t, admin, member)
	assert.Contains(t, output, "board.admin")
}

func TestWatch_InvalidOutputFormat(t *testing.T) {
	path := writeConfig(t, "redis://localhost:6379/0")

	_, err := execute(t, "watch", "--config", path, "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestWatch_InvalidFilter(t *testing.T) {
	path := writeConfig(t, "redis://localhost:6379/0")

	_, err := execute(t, "watch", "--config", path, "--output", "default", "--kind", "[")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid filter")
}

func TestInspect_InvalidOutputFormat(t *testing.T) {
	path := writeConfig(t, "redis://localhost:6379/0")

	_, err := execute(t, "inspect", "--config", path, "--output", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid output format")
}

func TestInspect(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	client, err := redisboard.NewClient(&redis.Options{Addr: mr.Addr()}, "test")
	require.NoError(t, err)
	defer client.Close()

	sb, err := client.NewScoreboard(ctx)
	require.NoError(t, err)
	obj, err := sb.RegisterObjective(ctx, "lobby", richtext.Plain("Lobby"), substrate.SlotSidebar)
	require.NoError(t, err)
	team, err := sb.RegisterTeam(ctx, "line_1")
	require.NoError(t, err)
	require.NoError(t, team.SetPrefix(ctx, richtext.Plain("Hello")))
	require.NoError(t, team.AddEntry(ctx, "§1"))
	require.NoError(t, obj.SetScore(ctx, "§1", 1))

	path := writeConfig(t, "redis://"+mr.Addr()+"/0")

	output, err := execute(t, "inspect", "--config", path, "--output", "jsonl", "--name", "")
	require.NoError(t, err)
	assert.Contains(t, output, sb.ID())
	assert.Contains(t, output, "line_1")

	output, err = execute(t, "inspect", sb.ID()[:8], "--config", path, "--output", "default")
	require.NoError(t, err)
	assert.Contains(t, output, "Lobby")
	assert.Contains(t, output, "Hello")

	_, err = execute(t, "inspect", "no-such-board", "--config", path, "--output", "default")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestConnect_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	path := writeConfig(t, "redis://"+addr+"/0")
	_, err := execute(t, "inspect", "--config", path, "--output", "default")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Redis connection failed")
}

func TestInit(t *testing.T) {
	dir := t.TempDir()

	_, err := execute(t, "init", "--dir", dir, "--force=false")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "simpleboard.yml"))

	_, err = execute(t, "init", "--dir", dir, "--force=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already initialized")

	_, err = execute(t, "init", "--dir", dir, "--force")
	require.NoError(t, err)

	output, err := execute(t, "prefixes", "--config", filepath.Join(dir, "simpleboard.yml"))
	require.NoError(t, err)
	assert.Contains(t, output, "admin")
}
