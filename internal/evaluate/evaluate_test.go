package evaluate

import (
	"io"
	"math"
	"math/rand"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"example.com/gumshoe/internal/board"
	"example.com/gumshoe/internal/constraint"
	"example.com/gumshoe/internal/hypothesis"
)

// Two-player deal from the detective's seat. The unheld cards are three
// suspects, six rooms and three weapons, so exact enumeration yields 54
// hypotheses and every projection below has a closed form.
var evalOwnHand = []int{0, 1, 4, 8, 10, 11, 15, 18, 20}

func newTwoPlayerEvaluator(t *testing.T) (*Evaluator, *hypothesis.Pool) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	own := board.CardSet(0)
	for _, id := range evalOwnHand {
		own = own.With(board.Card(id))
	}
	store := constraint.New(2, log)
	store.SeedHand(own)
	pool := hypothesis.New(store, hypothesis.Config{
		Players:       2,
		Dealer:        1,
		HandSizes:     []int{9, 9},
		OwnHand:       own,
		SampleTarget:  100000,
		EnumThreshold: 500000,
		Logger:        log,
		Rand:          rand.New(rand.NewSource(1)),
	})
	pool.Rebuild()
	require.True(t, pool.Enumerated())
	require.Equal(t, 54, pool.Size())
	return New(pool), pool
}

func TestSuggestionOfOwnCardsLearnsNothing(t *testing.T) {
	// GIVEN a suggestion naming only cards in the detective's own hand
	ev, pool := newTwoPlayerEvaluator(t)

	// WHEN it is evaluated
	post := ev.Evaluate(board.Card(4), board.Card(8), board.Card(15))

	// THEN the opponent can never answer and the expected entropy is the
	// prior entropy of the pool
	require.InDelta(t, pool.Entropy(), post.ExpEntropy, 1e-12)
	require.InDelta(t, math.Log(54), post.ExpEntropy, 1e-12)
}

func TestExpectedEntropyOracle(t *testing.T) {
	ev, pool := newTwoPlayerEvaluator(t)
	prior := pool.Entropy()

	// Expected posterior entropies computed by hand over the 54
	// enumerated deals, with the opponent showing whichever held card
	// keeps the posterior entropy highest.
	cases := []struct {
		name                  string
		suspect, room, weapon board.Card
		expEntropy            float64
	}{
		{"one own card named", board.Card(3), board.Card(12), board.Card(17), 3.7031104360613547},
		{"no own cards named", board.Card(2), board.Card(10), board.Card(16), 3.3844345529863267},
		{"two own cards named", board.Card(1), board.Card(11), board.Card(17), 3.352469878269462},
		{"all own cards named", board.Card(4), board.Card(8), board.Card(15), 3.9889840465642794},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			post := ev.Evaluate(tc.suspect, tc.room, tc.weapon)
			require.InDelta(t, tc.expEntropy, post.ExpEntropy, 1e-12)
			require.LessOrEqual(t, post.ExpEntropy, prior+1e-12,
				"a suggestion cannot be expected to increase uncertainty")
		})
	}
}

func TestExpectedEntropyClosedForm(t *testing.T) {
	// GIVEN a suggestion naming two own cards and one unknown weapon.
	// The opponent either holds the weapon or it is in the envelope, so
	// the pool splits into buckets of size N/3 and 2N/3.
	ev, _ := newTwoPlayerEvaluator(t)

	post := ev.Evaluate(board.Card(1), board.Card(11), board.Card(17))

	const n = 54.0
	nPass := n / 3
	want := (nPass*math.Log(nPass) + (n-nPass)*math.Log(n-nPass)) / n
	require.InDelta(t, want, post.ExpEntropy, 1e-12)
}

func TestExpectedRoomDistribution(t *testing.T) {
	ev, _ := newTwoPlayerEvaluator(t)

	post := ev.Evaluate(board.Card(3), board.Card(12), board.Card(17))

	sum := 0.0
	for ix, p := range post.RoomDist {
		require.GreaterOrEqual(t, p, 0.0, "room %d", ix)
		sum += p
	}
	require.InDelta(t, 1.0, sum, 1e-12)

	// Rooms in the detective's own hand can never be the murder room.
	for _, id := range evalOwnHand {
		card := board.Card(id)
		if card.Family() == board.FamilyRoom {
			require.Zero(t, post.RoomDist[card.FamilyIndex()])
		}
	}
}

func TestGridWorkersMatchSequential(t *testing.T) {
	// GIVEN the full 6x6 suggestion grid for one room
	ev, _ := newTwoPlayerEvaluator(t)
	room := board.Card(12)

	// WHEN it is evaluated sequentially and with a worker pool
	sequential := ev.Grid(room, 1)
	parallel := ev.Grid(room, 4)

	// THEN the results are identical, cell by cell
	require.Equal(t, sequential, parallel)
}
