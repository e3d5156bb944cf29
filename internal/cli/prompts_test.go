package cli

import (
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/gumshoe/internal/board"
)

func TestParseCard(t *testing.T) {
	cases := []struct {
		input string
		card  board.Card
		ok    bool
	}{
		{"1", board.SuspectCard(0), true},
		{"21", board.WeaponCard(5), true},
		{"Kitchen", board.RoomCard(3), true},
		{"kitchen", board.RoomCard(3), true},
		{"LEAD PIPE", board.Card(19), true},
		{"0", board.NullCard, false},
		{"22", board.NullCard, false},
		{"Kitchn", board.NullCard, false},
		{"", board.NullCard, false},
	}
	for _, tc := range cases {
		card, ok := parseCard(tc.input)
		require.Equal(t, tc.ok, ok, "input %q", tc.input)
		require.Equal(t, tc.card, card, "input %q", tc.input)
	}
}
