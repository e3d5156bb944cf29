package detective

import (
	"io"
	"math"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"example.com/gumshoe/internal/board"
	"example.com/gumshoe/internal/nav"
)

// Two-player deal reused across tests: everything outside the
// detective's hand is in the opponent's hand or the envelope, so the
// pool enumerates 54 deals immediately.
var (
	testHands = [][]int{
		{0, 1, 4, 8, 10, 11, 15, 18, 20},
		{3, 5, 6, 7, 12, 13, 14, 16, 19},
	}
	testEnvelope = []int{2, 9, 17}
)

func cardsOf(ids []int) []board.Card {
	cards := make([]board.Card, len(ids))
	for ix, id := range ids {
		cards[ix] = board.Card(id)
	}
	return cards
}

// scriptHost counts every hook invocation and answers suggestions
// honestly from the synthetic deal.
type scriptHost struct {
	d    *Detective
	deal [][]board.Card
	roll int

	greets, setupCalls        int
	waitStarts, waitEnds      int
	progressCalls             int
	observed                  []int
	rolls                     int
	moves                     [][2]board.Node
	suggestCalls, accuseCalls int
	beliefCalls, diagCalls    int
	gameOverCalls             int
	wonReported               bool

	setup Setup
}

func (h *scriptHost) Greet() { h.greets++ }

func (h *scriptHost) CollectSetup() (Setup, error) {
	h.setupCalls++
	return h.setup, nil
}

func (h *scriptHost) WaitStart(string) { h.waitStarts++ }
func (h *scriptHost) WaitEnd(string)   { h.waitEnds++ }

func (h *scriptHost) Progress(string, int, int) { h.progressCalls++ }

func (h *scriptHost) ObserveOpponentTurn(seat int) {
	h.observed = append(h.observed, seat)
	// The opponent immediately wins, ending the game.
	env := h.deal[len(h.deal)-1]
	h.d.RecordCorrectAccusation(seat, env[0], env[1], env[2])
}

func (h *scriptHost) RollDice() int {
	h.rolls++
	return h.roll
}

func (h *scriptHost) Move(from, to board.Node) bool {
	h.moves = append(h.moves, [2]board.Node{from, to})
	return true
}

func (h *scriptHost) Suggest(suspect, room, weapon board.Card) int {
	h.suggestCalls++
	triad := board.NewCardSet(suspect, room, weapon)
	for seat := 1; seat < h.d.Players(); seat++ {
		var held board.Card = board.NullCard
		for _, c := range h.deal[seat] {
			if triad.Has(c) {
				held = c
				break
			}
		}
		if held != board.NullCard {
			h.d.RecordSeenAnswer(seat, 0, held)
			return seat
		}
		h.d.RecordPass(seat, suspect, room, weapon)
	}
	return 0
}

func (h *scriptHost) Accuse(suspect, room, weapon board.Card) bool {
	h.accuseCalls++
	env := board.NewCardSet(h.deal[len(h.deal)-1]...)
	return env == board.NewCardSet(suspect, room, weapon)
}

func (h *scriptHost) GameOver(won bool) {
	h.gameOverCalls++
	h.wonReported = won
}

func (h *scriptHost) ShowBeliefs(Beliefs)             { h.beliefCalls++ }
func (h *scriptHost) ShowTurnDiagnostics(Diagnostics) { h.diagCalls++ }

func newTestDetective(t *testing.T, suspects []board.Card) (*Detective, *scriptHost) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	host := &scriptHost{roll: 8}
	d := New(host, Options{}, log, rand.New(rand.NewSource(1)))
	host.d = d

	err := d.InitializeSynthetic(
		[][]board.Card{cardsOf(testHands[0]), cardsOf(testHands[1])},
		cardsOf(testEnvelope), suspects, 1)
	require.NoError(t, err)
	host.deal = d.SyntheticDeal()
	return d, host
}

func TestInitializeValidation(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	valid := Setup{
		Players:        2,
		Dealer:         1,
		PlayerSuspects: []board.Card{board.SuspectCard(0), board.SuspectCard(3)},
		HandSizes:      []int{9, 9},
		OwnHand:        cardsOf(testHands[0]),
	}

	cases := []struct {
		name  string
		mould func(Setup) Setup
	}{
		{"too few players", func(s Setup) Setup { s.Players = 1; return s }},
		{"too many players", func(s Setup) Setup { s.Players = 7; return s }},
		{"dealer out of range", func(s Setup) Setup { s.Dealer = 2; return s }},
		{"missing suspect assignment", func(s Setup) Setup {
			s.PlayerSuspects = s.PlayerSuspects[:1]
			return s
		}},
		{"duplicate suspect assignment", func(s Setup) Setup {
			s.PlayerSuspects = []board.Card{board.SuspectCard(0), board.SuspectCard(0)}
			return s
		}},
		{"non-suspect avatar", func(s Setup) Setup {
			s.PlayerSuspects = []board.Card{board.RoomCard(0), board.SuspectCard(3)}
			return s
		}},
		{"hand sizes leave cards undealt", func(s Setup) Setup { s.HandSizes = []int{9, 8}; return s }},
		{"empty hand", func(s Setup) Setup { s.HandSizes = []int{18, 0}; return s }},
		{"own hand size mismatch", func(s Setup) Setup { s.OwnHand = s.OwnHand[:8]; return s }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			host := &scriptHost{}
			d := New(host, Options{}, log, rand.New(rand.NewSource(1)))
			err := d.InitializeWithSetup(tc.mould(valid))
			require.ErrorIs(t, err, ErrInvalidConfiguration)
		})
	}

	t.Run("synthetic deal must partition the pack", func(t *testing.T) {
		host := &scriptHost{}
		d := New(host, Options{}, log, rand.New(rand.NewSource(1)))
		short := cardsOf(testHands[1][:8])
		err := d.InitializeSynthetic(
			[][]board.Card{cardsOf(testHands[0]), short},
			cardsOf(testEnvelope), valid.PlayerSuspects, 1)
		require.ErrorIs(t, err, ErrInvalidConfiguration)
	})

	t.Run("synthetic envelope needs one card per family", func(t *testing.T) {
		host := &scriptHost{}
		d := New(host, Options{}, log, rand.New(rand.NewSource(1)))
		err := d.InitializeSynthetic(
			[][]board.Card{cardsOf(testHands[0]), cardsOf(testHands[1])},
			cardsOf([]int{2, 3, 17}), valid.PlayerSuspects, 1)
		require.ErrorIs(t, err, ErrInvalidConfiguration)
	})
}

func TestInitializeCollectsSetupFromHost(t *testing.T) {
	// GIVEN a host able to supply the table arrangement
	log := logrus.New()
	log.SetOutput(io.Discard)
	host := &scriptHost{setup: Setup{
		Players:        2,
		Dealer:         1,
		PlayerSuspects: []board.Card{board.SuspectCard(0), board.SuspectCard(3)},
		HandSizes:      []int{9, 9},
		OwnHand:        cardsOf(testHands[0]),
	}}
	d := New(host, Options{}, log, rand.New(rand.NewSource(1)))
	host.d = d

	// WHEN the detective initialises interactively
	require.NoError(t, d.Initialize())

	// THEN it greeted, collected once, and built the enumerated pool
	require.Equal(t, 1, host.greets)
	require.Equal(t, 1, host.setupCalls)
	require.InDelta(t, math.Log(54), d.Entropy(), 1e-12)
}

func TestFirstMoverFollowsStartOrder(t *testing.T) {
	// The opening seat is the played suspect earliest in the rule
	// book's start order, not simply seat 0.
	d, _ := newTestDetective(t, []board.Card{board.SuspectCard(3), board.SuspectCard(4)})
	require.Equal(t, 1, d.HotSeat(), "suspect 4 opens before suspect 3")

	d, _ = newTestDetective(t, []board.Card{board.SuspectCard(0), board.SuspectCard(3)})
	require.Equal(t, 0, d.HotSeat())
}

func TestTakeTurnRollsAndMovesLegally(t *testing.T) {
	// GIVEN a fresh game with the detective playing the suspect
	// starting at node 51
	suspects := []board.Card{board.SuspectCard(0), board.SuspectCard(3)}
	d, host := newTestDetective(t, suspects)
	start := d.PieceAt(0)
	require.Equal(t, board.SuspectStartNodes[0], start)

	occupied := nav.OccupiedBy(
		board.SuspectStartNodes[0], board.SuspectStartNodes[1],
		board.SuspectStartNodes[2], board.SuspectStartNodes[3],
		board.SuspectStartNodes[4], board.SuspectStartNodes[5])
	feasible := nav.ReachableByRoll(start, occupied)

	// Initialisation brackets the pool rebuild with WaitStart/WaitEnd
	// too, so count only this turn's analysis.
	host.waitStarts, host.waitEnds = 0, 0

	// WHEN the detective takes its first turn with a scripted roll
	require.NoError(t, d.TakeTurn())

	// THEN the analysis was bracketed for the host and any move made
	// was legal for the rolled distance
	require.Equal(t, 1, host.waitStarts)
	require.Equal(t, 1, host.waitEnds)
	require.Equal(t, board.NumRooms, host.progressCalls)
	require.Equal(t, 1, host.diagCalls)
	require.LessOrEqual(t, len(host.moves), 1)
	if host.rolls == 1 && len(host.moves) == 1 {
		require.Equal(t, start, host.moves[0][0])
		require.Contains(t, feasible[host.roll], host.moves[0][1])
	}
	if host.suggestCalls == 1 {
		// A suggestion is only available from inside a room, and the
		// newest record must name that room.
		node := d.PieceAt(0)
		roomCard, ok := board.RoomCardAt(node)
		require.True(t, ok)
		require.Equal(t, roomCard, d.suggestions[len(d.suggestions)-1].Room)
	}
}

func TestCertainDetectiveAccuses(t *testing.T) {
	// GIVEN a detective that has seen every one of the opponent's
	// cards, leaving a single hypothesis
	d, host := newTestDetective(t, []board.Card{board.SuspectCard(0), board.SuspectCard(3)})
	for _, id := range testHands[1] {
		d.RecordSeenAnswer(1, 0, board.Card(id))
	}
	require.Zero(t, d.Entropy())

	// AND its piece standing in the believed murder room
	murderRoom := board.Card(testEnvelope[1])
	d.RecordMove(0, board.RoomNodes[murderRoom.FamilyIndex()])

	// WHEN it takes a turn
	require.NoError(t, d.TakeTurn())

	// THEN it stays, suggests there, and wins on the accusation
	require.Empty(t, host.moves)
	require.Equal(t, 1, host.suggestCalls)
	require.Equal(t, 1, host.accuseCalls)
	require.Equal(t, 1, host.gameOverCalls)
	require.True(t, host.wonReported)
	require.True(t, d.GameOver())
	require.True(t, d.Won())
}

func TestAnswerSuggestionPrefersAlreadyShownCards(t *testing.T) {
	d, _ := newTestDetective(t, []board.Card{board.SuspectCard(0), board.SuspectCard(3)})

	// First answer: nothing shown yet, so the first most-shown card of
	// the triad is revealed.
	card := d.AnswerSuggestion(1, board.Card(0), board.Card(8), board.Card(15))
	require.Equal(t, board.Card(0), card)

	// A disjoint triad is answered with a fresh card.
	card = d.AnswerSuggestion(1, board.Card(1), board.Card(8), board.Card(16))
	require.Equal(t, board.Card(1), card)

	// When an already-shown card is an option again, it is re-shown
	// rather than leaking a new one.
	card = d.AnswerSuggestion(1, board.Card(0), board.Card(8), board.Card(16))
	require.Equal(t, board.Card(0), card)
	require.Equal(t, 2, d.shownCounts[0])

	// Holding none of the triad, the detective passes and records it.
	passesBefore := len(d.passes)
	card = d.AnswerSuggestion(1,
		board.Card(testEnvelope[0]), board.Card(testEnvelope[1]), board.Card(testEnvelope[2]))
	require.Equal(t, board.NullCard, card)
	require.Len(t, d.passes, passesBefore+1)
	require.Zero(t, d.passes[len(d.passes)-1].Actor)

	// Every reveal was recorded against the detective itself.
	for _, ev := range d.seenAnswers {
		require.Zero(t, ev.Shower)
		require.Equal(t, 1, ev.Viewer)
	}
}

func TestReplayIsIdempotent(t *testing.T) {
	cases := []struct {
		name   string
		record func(d *Detective)
		replay func(d *Detective)
	}{
		{"move", func(d *Detective) {
			d.RecordMove(0, board.RoomNodes[3])
		}, (*Detective).ReplayMove},
		{"suggestion", func(d *Detective) {
			d.RecordSuggestion(1, board.SuspectCard(5), board.RoomCard(2), board.Card(16))
		}, (*Detective).ReplaySuggestion},
		{"pass", func(d *Detective) {
			d.RecordPass(1, board.Card(2), board.Card(9), board.Card(17))
		}, (*Detective).ReplayPass},
		{"seen answer", func(d *Detective) {
			d.RecordSeenAnswer(1, 0, board.Card(3))
		}, (*Detective).ReplaySeenAnswer},
		{"unseen answer", func(d *Detective) {
			d.RecordUnseenAnswer(1, 0, board.Card(3), board.Card(9), board.Card(16))
		}, (*Detective).ReplayUnseenAnswer},
		{"wrong accusation", func(d *Detective) {
			d.RecordWrongAccusation(1, board.Card(3), board.Card(9), board.Card(16))
		}, (*Detective).ReplayWrongAccusation},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// GIVEN a recorded event of this kind
			d, _ := newTestDetective(t, []board.Card{board.SuspectCard(0), board.SuspectCard(3)})
			tc.record(d)
			size := d.pool.Size()
			entropy := d.Entropy()
			pieces := d.pieces
			canSuggest := d.canSuggestHere
			ousted := append([]bool(nil), d.ousted...)

			// WHEN the newest record is re-applied
			tc.replay(d)

			// THEN neither beliefs nor board state change
			require.Equal(t, size, d.pool.Size())
			require.Equal(t, entropy, d.Entropy())
			require.Equal(t, pieces, d.pieces)
			require.Equal(t, canSuggest, d.canSuggestHere)
			require.Equal(t, ousted, d.ousted)
		})
	}
}

func TestWrongAccusationOustsAccuser(t *testing.T) {
	// GIVEN an opponent accusing a scenario that is not the answer
	d, _ := newTestDetective(t, []board.Card{board.SuspectCard(0), board.SuspectCard(3)})
	size := d.pool.Size()

	// WHEN the disproof is recorded
	d.RecordWrongAccusation(1, board.Card(3), board.Card(12), board.Card(16))

	// THEN the accuser is out and exactly that scenario is gone
	require.True(t, d.ousted[1])
	require.Equal(t, size-1, d.pool.Size())
	require.False(t, d.GameOver())
}

func TestSuggestionTeleportsNamedSuspect(t *testing.T) {
	d, _ := newTestDetective(t, []board.Card{board.SuspectCard(0), board.SuspectCard(3)})

	// An opponent's suggestion drags the named piece into the room.
	d.RecordSuggestion(1, board.SuspectCard(5), board.RoomCard(2), board.Card(16))
	require.Equal(t, board.RoomNodes[2], d.PieceAt(5))

	t.Run("dragging the detective's avatar re-arms its suggestion", func(t *testing.T) {
		d.canSuggestHere = false
		d.RecordSuggestion(1, board.SuspectCard(0), board.RoomCard(4), board.Card(16))
		require.Equal(t, board.RoomNodes[4], d.PieceAt(0))
		require.True(t, d.canSuggestHere)
	})

	t.Run("own suggestion disarms it", func(t *testing.T) {
		d.RecordSuggestion(0, board.SuspectCard(1), board.RoomCard(4), board.Card(16))
		require.False(t, d.canSuggestHere)
	})
}

func TestRunStopsWhenAnOpponentWins(t *testing.T) {
	// GIVEN a game opened by the opponent's suspect, whose scripted
	// turn is an immediate correct accusation
	d, host := newTestDetective(t, []board.Card{board.SuspectCard(3), board.SuspectCard(4)})
	require.Equal(t, 1, d.HotSeat())

	// WHEN the loop runs
	require.NoError(t, d.Run())

	// THEN it observed that one turn and reported the loss
	require.Equal(t, []int{1}, host.observed)
	require.Equal(t, 1, host.gameOverCalls)
	require.False(t, host.wonReported)
	require.True(t, d.GameOver())
	require.False(t, d.Won())
}
