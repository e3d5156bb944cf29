package hypothesis

import (
	"io"
	"math"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"example.com/gumshoe/internal/board"
	"example.com/gumshoe/internal/constraint"
)

// Two-player deal where every card outside the detective's hand is
// either in the single opponent's hand or the envelope.
var twoPlayerHands = [][]int{
	{0, 1, 4, 8, 10, 11, 15, 18, 20},
	{3, 5, 6, 7, 12, 13, 14, 16, 19},
}
var twoPlayerEnvelope = []int{2, 9, 17}

// Three-player deal used for stochastic-mode tests.
var threePlayerHands = [][]int{
	{2, 3, 7, 8, 14, 17},
	{1, 6, 9, 12, 15, 16},
	{0, 5, 11, 13, 19, 20},
}
var threePlayerEnvelope = []int{4, 10, 18}

func newTestPool(t *testing.T, hands [][]int, dealer, target int, threshold int64) (*Pool, *constraint.Store) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	own := board.CardSet(0)
	for _, id := range hands[0] {
		own = own.With(board.Card(id))
	}
	sizes := make([]int, len(hands))
	for ix, hand := range hands {
		sizes[ix] = len(hand)
	}

	store := constraint.New(len(hands), log)
	store.SeedHand(own)
	pool := New(store, Config{
		Players:       len(hands),
		Dealer:        dealer,
		HandSizes:     sizes,
		OwnHand:       own,
		SampleTarget:  target,
		EnumThreshold: threshold,
		Logger:        log,
		Rand:          rand.New(rand.NewSource(1)),
	})
	return pool, store
}

func checkDealInvariants(t *testing.T, pool *Pool, sizes []int) {
	t.Helper()
	for _, hyp := range pool.Hypotheses() {
		sc, rc, wc := hyp.Env.Cards()
		union := board.NewCardSet(sc, rc, wc)
		total := 3
		for ix, hand := range hyp.Hands {
			require.Equal(t, sizes[ix], hand.Len(), "hand %d has wrong size", ix)
			require.False(t, union.Overlaps(hand), "hand %d overlaps another holder", ix)
			union = union.Union(hand)
			total += hand.Len()
		}
		require.Equal(t, board.FullDeck(), union, "deal does not cover the deck")
		require.Equal(t, board.NumCards, total)
	}
}

func TestTwoPlayerGameEnumeratesImmediately(t *testing.T) {
	// GIVEN a two-player game where only the opponent's hand and the
	// envelope are unknown
	pool, _ := newTestPool(t, twoPlayerHands, 1, 100000, 500000)

	// WHEN the pool is first built
	pool.Rebuild()

	// THEN it switches straight to exact mode with one hypothesis per
	// (suspect, room, weapon) combination of unheld cards
	require.True(t, pool.Enumerated(), "trivial game should be enumerable")
	require.Equal(t, 3*6*3, pool.Size())

	sizes := []int{9, 9}
	checkDealInvariants(t, pool, sizes)

	t.Run("estimator agrees with the exact count", func(t *testing.T) {
		require.Equal(t, int64(3*6*3), pool.EstimateRemaining())
	})

	t.Run("belief starts uniform over scenarios", func(t *testing.T) {
		require.InDelta(t, math.Log(float64(pool.Size())), pool.Entropy(), 1e-12)
	})
}

func TestStochasticSampling(t *testing.T) {
	// GIVEN a three-player game with the enumeration threshold forced low
	// so the pool stays in sampling mode
	pool, store := newTestPool(t, threePlayerHands, 0, 400, 10)
	pool.Rebuild()

	require.False(t, pool.Enumerated())
	require.Equal(t, 400, pool.Size())
	checkDealInvariants(t, pool, []int{6, 6, 6})

	t.Run("no hypothesis violates a forbidden fact", func(t *testing.T) {
		for _, hyp := range pool.Hypotheses() {
			for player, hand := range hyp.Hands {
				require.False(t, hand.Overlaps(store.ForbiddenSet(player)),
					"player %d holds a forbidden card", player)
			}
		}
	})

	t.Run("marginal counts stay consistent with pool size", func(t *testing.T) {
		for _, counts := range [][]int{pool.SuspectCounts(), pool.RoomCounts(), pool.WeaponCounts()} {
			sum := 0
			for _, c := range counts {
				sum += c
			}
			require.Equal(t, pool.Size(), sum)
		}
	})
}

func TestSeenAnswerReduction(t *testing.T) {
	// GIVEN a sampling pool and a card seen in player 1's hand
	pool, store := newTestPool(t, threePlayerHands, 0, 300, 10)
	pool.Rebuild()

	card := board.Card(15)
	store.RecordSeenAnswer(card, 1)
	pool.NoteSeenAnswer(1, card)

	// WHEN hypotheses lacking the card in that hand are removed
	pool.RemoveWhere(func(h *Hypothesis) bool {
		return !h.Hands[1].Has(card)
	}, "seen answer")

	// THEN the pool is topped back up and every deal places the card there
	require.Equal(t, 300, pool.Size())
	for _, hyp := range pool.Hypotheses() {
		require.True(t, hyp.Hands[1].Has(card))
	}
}

func TestUnseenAnswerReduction(t *testing.T) {
	// GIVEN a sampling pool and an unseen answer by player 2 to a triad
	pool, _ := newTestPool(t, threePlayerHands, 0, 300, 10)
	pool.Rebuild()

	// The triad shares two cards with the true envelope and one with the
	// answering hand, so it is satisfiable every way.
	triad := board.NewCardSet(0,
		board.Card(threePlayerEnvelope[1]),
		board.Card(threePlayerEnvelope[2]))
	pool.NoteUnseenAnswer(2, triad)

	// WHEN deals where that hand misses the whole triad are removed
	pool.RemoveWhere(func(h *Hypothesis) bool {
		return !h.Hands[2].Overlaps(triad)
	}, "unseen answer")

	// THEN the disjunctive constraint holds in every remaining deal
	require.Equal(t, 300, pool.Size())
	for _, hyp := range pool.Hypotheses() {
		require.True(t, hyp.Hands[2].Overlaps(triad))
	}
}

func TestWrongAccusationReduction(t *testing.T) {
	// GIVEN the enumerated two-player pool
	pool, _ := newTestPool(t, twoPlayerHands, 1, 100000, 500000)
	pool.Rebuild()
	before := pool.Size()

	// WHEN an accusation of the true scenario-shaped triple proves wrong
	env, ok := EnvelopeOf(board.NewCardSet(
		board.Card(twoPlayerEnvelope[0]),
		board.Card(twoPlayerEnvelope[1]),
		board.Card(twoPlayerEnvelope[2])))
	require.True(t, ok)
	pool.NoteWrongAccusation(env)
	removed := pool.RemoveWhere(func(h *Hypothesis) bool {
		return h.Env == env
	}, "wrong accusation")

	// THEN exactly the matching scenario is gone and stays gone
	require.Equal(t, 1, removed)
	require.Equal(t, before-1, pool.Size())
	for _, hyp := range pool.Hypotheses() {
		require.NotEqual(t, env, hyp.Env)
	}
	require.Zero(t, pool.ScenarioCounts()[ScenarioIndex(env)])
}

func TestScenarioIndexRoundTrip(t *testing.T) {
	for ix := 0; ix < ScenarioSize; ix++ {
		require.Equal(t, ix, ScenarioIndex(ScenarioAt(ix)))
	}
}

func TestChoose(t *testing.T) {
	cases := []struct {
		n, r int
		want int64
	}{
		{0, 0, 1},
		{6, 3, 20},
		{18, 6, 18564},
		{12, 6, 924},
		{5, 9, 0},
		{-1, 0, 0},
	}
	for _, tc := range cases {
		if got := choose(tc.n, tc.r); got != tc.want {
			t.Errorf("choose(%d, %d) = %d, want %d", tc.n, tc.r, got, tc.want)
		}
	}
}
