// Package evaluate scores candidate suggestions: for a (suspect, room,
// weapon) triple it computes the expected post-answer scenario entropy
// and the expected post-answer murder-room distribution, modelling every
// opponent holding a choice of revealable cards as an adversary who
// shows whichever card keeps the detective most uncertain. The
// computation is a read-only projection; the pool is never mutated.
package evaluate

import (
	"fmt"
	"sync"

	"example.com/gumshoe/internal/board"
	"example.com/gumshoe/internal/hypothesis"
	"example.com/gumshoe/internal/stats"
)

// Posterior is the expected outcome of making one suggestion.
type Posterior struct {
	ExpEntropy float64
	RoomDist   [board.NumRooms]float64
}

// Evaluator projects suggestion outcomes against a hypothesis pool.
type Evaluator struct {
	pool *hypothesis.Pool
}

func New(pool *hypothesis.Pool) *Evaluator {
	return &Evaluator{pool: pool}
}

// Answer indices within a triad: 0 suspect, 1 room, 2 weapon. A holder
// keeps a hypothesis in answer bin b (1-based bit mask of held triad
// cards); showing card a keeps exactly the bins whose mask has bit a.
var binsKeeping = [3][4]int{
	{0, 2, 4, 6}, // suspect: masks 1,3,5,7
	{1, 2, 5, 6}, // room: masks 2,3,6,7
	{3, 4, 5, 6}, // weapon: masks 4,5,6,7
}

// Evaluate returns the expected posterior for suggesting the given
// triple. Hypotheses are partitioned by the first opponent in seating
// order able to answer and by which subset of the triad that opponent
// holds; the no-answer case forms the final partition.
func (e *Evaluator) Evaluate(suspect, room, weapon board.Card) Posterior {
	hyps := e.pool.Hypotheses()
	if len(hyps) == 0 {
		return Posterior{}
	}
	players := e.pool.Players()
	asked := players - 1

	// binCounts[a][b] is the scenario tensor of hypotheses where opponent
	// a+1 answers first holding triad subset mask b+1.
	binCounts := make([][7][]int, asked)
	for a := range binCounts {
		for b := 0; b < 7; b++ {
			binCounts[a][b] = make([]int, hypothesis.ScenarioSize)
		}
	}
	noAnswer := make([]int, hypothesis.ScenarioSize)

	for ix := range hyps {
		hyp := &hyps[ix]
		scenario := hypothesis.ScenarioIndex(hyp.Env)
		answered := false
		for ply := 1; ply < players; ply++ {
			mask := 0
			if hyp.Hands[ply].Has(suspect) {
				mask |= 1
			}
			if hyp.Hands[ply].Has(room) {
				mask |= 2
			}
			if hyp.Hands[ply].Has(weapon) {
				mask |= 4
			}
			if mask > 0 {
				binCounts[ply-1][mask-1][scenario]++
				answered = true
				break
			}
		}
		if !answered {
			noAnswer[scenario]++
		}
	}

	// Posterior entropy, room marginal and bucket size after each
	// possible answer from each opponent.
	var (
		entAfter   = make([][3]float64, asked)
		roomsAfter = make([][3][board.NumRooms]int, asked)
		binTotals  = make([][7]int, asked)
	)
	tensor := make([]int, hypothesis.ScenarioSize)
	for a := 0; a < asked; a++ {
		for b := 0; b < 7; b++ {
			binTotals[a][b] = sum(binCounts[a][b])
		}
		for ans := 0; ans < 3; ans++ {
			for ix := range tensor {
				tensor[ix] = 0
			}
			for _, b := range binsKeeping[ans] {
				for ix, c := range binCounts[a][b] {
					tensor[ix] += c
				}
			}
			entAfter[a][ans] = stats.FromCounts(tensor).Entropy
			roomsAfter[a][ans] = roomMarginal(tensor)
		}
	}
	noAnswerTotal := sum(noAnswer)
	entNoAnswer := stats.FromCounts(noAnswer).Entropy
	roomsNoAnswer := roomMarginal(noAnswer)

	// Each opponent reveals, among the options their hand allows, the
	// card leaving the detective's posterior entropy highest. The
	// preference order is fixed globally per opponent from the aggregate
	// entropies above, not re-derived per hypothesis.
	received := make([][3]int, asked)
	for a := 0; a < asked; a++ {
		order := preferenceOrder(entAfter[a])
		// Single-card bins have no choice; masks 1, 2, 4.
		received[a][0] = binTotals[a][0]
		received[a][1] = binTotals[a][1]
		received[a][2] = binTotals[a][3]
		// Holding all three cards, the favourite is shown.
		received[a][order[0]] += binTotals[a][6]
		// Two-card bins go to the favourite when it is an option, else
		// to the runner-up.
		for _, mask := range [3]int{3, 5, 6} {
			if mask&(1<<order[0]) != 0 {
				received[a][order[0]] += binTotals[a][mask-1]
			} else {
				received[a][order[1]] += binTotals[a][mask-1]
			}
		}
	}

	totalReceived := noAnswerTotal
	for a := 0; a < asked; a++ {
		for ans := 0; ans < 3; ans++ {
			totalReceived += received[a][ans]
		}
	}
	if totalReceived != len(hyps) {
		panic(fmt.Sprintf("answer partition covers %d of %d hypotheses", totalReceived, len(hyps)))
	}

	// Expected entropy: each bucket's posterior entropy weighted by the
	// number of hypotheses producing that answer.
	expEnt := entNoAnswer * float64(noAnswerTotal)
	var roomDist [board.NumRooms]float64
	for r := 0; r < board.NumRooms; r++ {
		roomDist[r] = float64(roomsNoAnswer[r]) * float64(noAnswerTotal)
	}
	for a := 0; a < asked; a++ {
		for ans := 0; ans < 3; ans++ {
			weight := float64(received[a][ans])
			expEnt += entAfter[a][ans] * weight
			for r := 0; r < board.NumRooms; r++ {
				roomDist[r] += float64(roomsAfter[a][ans][r]) * weight
			}
		}
	}
	expEnt /= float64(len(hyps))

	norm := 0.0
	for _, v := range roomDist {
		norm += v
	}
	if norm > 0 {
		for r := range roomDist {
			roomDist[r] /= norm
		}
	}
	return Posterior{ExpEntropy: expEnt, RoomDist: roomDist}
}

// preferenceOrder ranks the three answers by descending posterior
// entropy. Ties fall to the later answer index, keeping the order
// deterministic.
func preferenceOrder(ents [3]float64) [3]int {
	order := [3]int{0, 1, 2}
	for i := 0; i < 2; i++ {
		for j := i + 1; j < 3; j++ {
			better := ents[order[j]] > ents[order[i]] ||
				(ents[order[j]] == ents[order[i]] && order[j] > order[i])
			if better {
				order[i], order[j] = order[j], order[i]
			}
		}
	}
	return order
}

func sum(xs []int) int {
	total := 0
	for _, x := range xs {
		total += x
	}
	return total
}

func roomMarginal(tensor []int) [board.NumRooms]int {
	var rooms [board.NumRooms]int
	for ix, c := range tensor {
		rooms[ix/board.NumWeapons%board.NumRooms] += c
	}
	return rooms
}

// Grid evaluates every (suspect, weapon) pair naming the given room.
// With workers > 1 the cells are fanned out across goroutines; each cell
// is a pure read-only projection, so the gather into an indexed array
// keeps the result bit-identical to the sequential path.
func (e *Evaluator) Grid(room board.Card, workers int) [board.NumSuspects][board.NumWeapons]Posterior {
	var out [board.NumSuspects][board.NumWeapons]Posterior
	const cells = board.NumSuspects * board.NumWeapons

	if workers <= 1 {
		for ix := 0; ix < cells; ix++ {
			s, w := ix/board.NumWeapons, ix%board.NumWeapons
			out[s][w] = e.Evaluate(board.SuspectCard(s), room, board.WeaponCard(w))
		}
		return out
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for n := 0; n < workers; n++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ix := range jobs {
				s, w := ix/board.NumWeapons, ix%board.NumWeapons
				out[s][w] = e.Evaluate(board.SuspectCard(s), room, board.WeaponCard(w))
			}
		}()
	}
	for ix := 0; ix < cells; ix++ {
		jobs <- ix
	}
	close(jobs)
	wg.Wait()
	return out
}
