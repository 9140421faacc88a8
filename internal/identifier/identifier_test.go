package identifier

import (
	"errors"
	"sort"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dyluth/simpleboard/pkg/substrate"
)

var testViewer = uuid.MustParse("0f8e4c6a-1b2d-4e3f-8a9b-0c1d2e3f4a5b")

func TestViewerGroup(t *testing.T) {
	testCases := []struct {
		name     string
		priority int
		want     string
	}{
		{name: "single digit priority", priority: 9, want: "t90f8e4c6a1b2d4e"},
		{name: "two digit priority", priority: 10, want: "t100f8e4c6a1b2d4"},
		{name: "negative priority", priority: -5, want: "t-50f8e4c6a1b2d4"},
		{name: "long priority keeps every digit", priority: 123456789, want: "t1234567890f8e4c"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ViewerGroup(tc.priority, testViewer)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.LessOrEqual(t, len(got), MaxLength)
		})
	}
}

func TestViewerGroup_Deterministic(t *testing.T) {
	a, err := ViewerGroup(7, testViewer)
	require.NoError(t, err)
	b, err := ViewerGroup(7, testViewer)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	other, err := ViewerGroup(7, uuid.MustParse("1f8e4c6a-1b2d-4e3f-8a9b-0c1d2e3f4a5b"))
	require.NoError(t, err)
	assert.NotEqual(t, a, other)
}

func TestViewerGroup_LexicographicPriorityOrder(t *testing.T) {
	names := map[string]int{}
	for _, p := range []int{9, 10, 91} {
		name, err := ViewerGroup(p, testViewer)
		require.NoError(t, err)
		names[name] = p
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	order := make([]int, 0, len(sorted))
	for _, name := range sorted {
		order = append(order, names[name])
	}
	assert.Equal(t, []int{10, 9, 91}, order)
}

func TestCompose_RejectsOverlongHead(t *testing.T) {
	_, err := Compose("tag", 1234567890123456, "abc", MaxLength)
	require.Error(t, err)
	assert.True(t, errors.Is(err, substrate.ErrInvalidArgument))
}

func TestCompose_ShortIdentityIsNotPadded(t *testing.T) {
	got, err := Compose("t", 3, "ab", MaxLength)
	require.NoError(t, err)
	assert.Equal(t, "t3ab", got)
}

func TestLineGroup(t *testing.T) {
	assert.Equal(t, "line_1", LineGroup(1))
	assert.Equal(t, "line_15", LineGroup(15))
	assert.Equal(t, "line_-2", LineGroup(-2))
}

func TestLineEntry(t *testing.T) {
	assert.Equal(t, "§1", LineEntry(1))
	assert.Equal(t, "§f", LineEntry(15))
	assert.Equal(t, "§1§0", LineEntry(16))

	seen := map[string]int{}
	for score := -20; score <= 300; score++ {
		entry := LineEntry(score)
		prev, dup := seen[entry]
		require.False(t, dup, "scores %d and %d share entry %q", prev, score, entry)
		seen[entry] = score

		// Only formatting codes: every other rune is the section sign.
		for i, r := range []rune(entry) {
			if i%2 == 0 {
				assert.Equal(t, '§', r)
			} else {
				assert.True(t, strings.ContainsRune("0123456789abcdef", r))
			}
		}
	}
}

func TestValidateName(t *testing.T) {
	testCases := []struct {
		name      string
		inputName string
		wantErr   bool
		errMsg    string
	}{
		{name: "valid simple name", inputName: "lobby", wantErr: false},
		{name: "valid with underscore", inputName: "lobby_1", wantErr: false},
		{name: "valid with hyphen", inputName: "pvp-arena", wantErr: false},
		{name: "empty name", inputName: "", wantErr: true, errMsg: "cannot be empty"},
		{name: "uppercase", inputName: "Lobby", wantErr: true, errMsg: "must be lowercase"},
		{name: "space", inputName: "my board", wantErr: true, errMsg: "must be lowercase"},
		{name: "too long", inputName: "a-very-long-board-name", wantErr: true, errMsg: "too long"},
		{name: "exactly max length", inputName: "abcdefghijklmnop", wantErr: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateName(tc.inputName)
			if tc.wantErr {
				assert.Error(t, err)
				assert.True(t, errors.Is(err, substrate.ErrInvalidArgument))
				if tc.errMsg != "" {
					assert.Contains(t, err.Error(), tc.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
