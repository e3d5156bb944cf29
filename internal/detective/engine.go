package detective

import (
	"math"

	"example.com/gumshoe/internal/board"
	"example.com/gumshoe/internal/evaluate"
	"example.com/gumshoe/internal/nav"
)

const analysisOp = "analysing room scores"

// TakeTurn plays the detective's own turn: score every room by the
// entropy of its best suggestion plus the expected travel left
// afterwards, pick the cheapest of shortcut, roll or stay, then suggest
// and possibly accuse.
func (d *Detective) TakeTurn() error {
	if !d.initialized {
		return ErrNotInitialized
	}

	occupied := nav.OccupiedBy(d.pieces[:]...)
	spans := nav.Spans(occupied)
	myNode := d.pieces[d.seatSuspects[0]]
	presentRoom, inRoom := board.RoomIndex(myNode)
	if !inRoom {
		presentRoom = -1
	}

	var (
		roomEnts   [board.NumRooms]float64
		roomDists  [board.NumRooms][board.NumRooms]float64
		sugSuspect [board.NumRooms]int
		sugWeapon  [board.NumRooms]int
	)
	d.host.WaitStart(analysisOp)
	for ix := 0; ix < board.NumRooms; ix++ {
		d.host.Progress(analysisOp, ix, board.NumRooms)
		if ix == presentRoom && !d.canSuggestHere {
			// No suggestion available here until the piece leaves and
			// returns, so the room teaches nothing this turn.
			roomEnts[ix] = d.pool.Entropy()
			roomDists[ix] = d.roomMarginal()
			continue
		}
		grid := d.eval.Grid(board.RoomCard(ix), d.opts.Workers)
		best := math.Inf(1)
		for s := 0; s < board.NumSuspects; s++ {
			for w := 0; w < board.NumWeapons; w++ {
				if grid[s][w].ExpEntropy < best {
					best = grid[s][w].ExpEntropy
				}
			}
		}
		// Several suggestions may tie on expected entropy; pick one
		// uniformly.
		var mins [][2]int
		for s := 0; s < board.NumSuspects; s++ {
			for w := 0; w < board.NumWeapons; w++ {
				if grid[s][w].ExpEntropy == best {
					mins = append(mins, [2]int{s, w})
				}
			}
		}
		pick := mins[d.rng.Intn(len(mins))]
		roomEnts[ix] = best
		sugSuspect[ix], sugWeapon[ix] = pick[0], pick[1]
		roomDists[ix] = grid[pick[0]][pick[1]].RoomDist
	}
	d.host.WaitEnd(analysisOp)

	if presentRoom >= 0 && !d.canSuggestHere {
		// Suggesting here again means leaving and coming back, which
		// costs about two turns.
		spans[presentRoom][presentRoom] = 2
	}

	var remoteness, roomScores [board.NumRooms]float64
	for ix := 0; ix < board.NumRooms; ix++ {
		for k := 0; k < board.NumRooms; k++ {
			remoteness[ix] += roomDists[ix][k] * spans[ix][k]
		}
		roomScores[ix] = roomEnts[ix] + remoteness[ix]
	}

	feasible := nav.ReachableByRoll(myNode, occupied)
	var (
		bestScores        [board.MaxRoll + 1]float64
		bestMoves         [board.MaxRoll + 1]board.Node
		presentRemoteness float64
	)
	for roll := 0; roll <= board.MaxRoll; roll++ {
		bestScores[roll] = math.Inf(1)
		bestMoves[roll] = board.NullNode
		for _, dest := range feasible[roll] {
			score, rem := d.destinationScore(dest, occupied, &spans, &roomScores, &remoteness)
			if dest == myNode {
				presentRemoteness = rem
			}
			if score < bestScores[roll] {
				bestScores[roll] = score
				bestMoves[roll] = dest
			}
		}
		if len(feasible[roll]) == 0 {
			// A roll with no legal destination keeps the piece where it
			// stands.
			bestScores[roll] = bestScores[0]
			bestMoves[roll] = myNode
		}
	}

	rollScore := 0.0
	for roll := 0; roll <= board.MaxRoll; roll++ {
		rollScore += board.DiceProbs[roll] * bestScores[roll]
	}
	stickScore := bestScores[0]

	passageScore := math.Inf(1)
	passageDest, hasPassage := board.Passages[myNode]
	if hasPassage {
		if ix, ok := board.RoomIndex(passageDest); ok {
			passageScore = roomScores[ix]
		}
	}

	if !d.opts.Secretive {
		d.log.Debugf("present entropy %.4f", d.pool.Entropy())
		d.log.Debugf("expected room entropies %.3f", roomEnts)
		d.log.Debugf("expected room remoteness %.3f", remoteness)
		d.log.Debugf("scores: stick %.4f roll %.4f passage %.4f", stickScore, rollScore, passageScore)
		d.host.ShowTurnDiagnostics(Diagnostics{
			Entropy:           d.pool.Entropy(),
			RoomEntropies:     roomEnts,
			RoomRemoteness:    remoteness,
			RoomScores:        roomScores,
			PresentRemoteness: presentRemoteness,
			StickScore:        stickScore,
			RollScore:         rollScore,
			PassageScore:      passageScore,
		})
	}

	// Ties fall to the passage, then to rolling.
	switch {
	case hasPassage && passageScore <= stickScore && passageScore <= rollScore:
		d.host.Move(myNode, passageDest)
		d.RecordMove(0, passageDest)
	case rollScore <= stickScore && rollScore <= passageScore:
		roll := d.host.RollDice()
		dest := bestMoves[roll]
		if dest != board.NullNode && dest != myNode {
			d.host.Move(myNode, dest)
			d.RecordMove(0, dest)
		}
	case !inRoom:
		d.log.Error("staying put outside a room despite being unable to suggest")
	}

	myNode = d.pieces[d.seatSuspects[0]]
	roomIx, inRoom := board.RoomIndex(myNode)
	if d.canSuggestHere && inRoom {
		suspect := board.SuspectCard(sugSuspect[roomIx])
		room := board.RoomCard(roomIx)
		weapon := board.WeaponCard(sugWeapon[roomIx])
		d.RecordSuggestion(0, suspect, room, weapon)
		answerer := d.host.Suggest(suspect, room, weapon)
		d.log.Debugf("suggestion %s / %s / %s answered by seat %d",
			suspect.Name(), room.Name(), weapon.Name(), answerer)

		env, p := d.pool.MostLikely()
		d.log.Debugf("most likely scenario has p=%.3f", p)
		if p > d.opts.AccusationConfidence && env.Room == roomIx {
			if !d.opts.Secretive {
				d.host.ShowBeliefs(d.Beliefs())
			}
			accSuspect, accRoom, accWeapon := env.Cards()
			if d.host.Accuse(accSuspect, accRoom, accWeapon) {
				d.RecordCorrectAccusation(0, accSuspect, accRoom, accWeapon)
			} else {
				d.RecordWrongAccusation(0, accSuspect, accRoom, accWeapon)
			}
		}
	}
	return nil
}

// destinationScore values one reachable node: its best room score when
// the node is a room, otherwise the prior entropy plus the expected
// rolls from the node to the murder room under the current belief.
func (d *Detective) destinationScore(dest board.Node, occupied nav.Occupied,
	spans *[board.NumRooms][board.NumRooms]float64,
	roomScores, remoteness *[board.NumRooms]float64) (float64, float64) {

	if ix, ok := board.RoomIndex(dest); ok {
		return roomScores[ix], remoteness[ix]
	}
	hops := nav.RoomHops(dest, occupied)
	var hopSpans [board.NumRooms]float64
	for j := 0; j < board.NumRooms; j++ {
		hopSpans[j] = board.RollsToTraverse(hops[j])
	}
	// Reaching room k may be quicker through another room j than
	// walking to k directly.
	counts := d.pool.RoomCounts()
	total := 0
	rem := 0.0
	for k := 0; k < board.NumRooms; k++ {
		span := math.Inf(1)
		for j := 0; j < board.NumRooms; j++ {
			if s := hopSpans[j] + spans[k][j]; s < span {
				span = s
			}
		}
		rem += float64(counts[k]) * span
		total += counts[k]
	}
	if total > 0 {
		rem /= float64(total)
	}
	return d.pool.Entropy() + rem, rem
}

func (d *Detective) roomMarginal() [board.NumRooms]float64 {
	var dist [board.NumRooms]float64
	counts := d.pool.RoomCounts()
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return dist
	}
	for ix, c := range counts {
		dist[ix] = float64(c) / float64(total)
	}
	return dist
}

// Run hosts the game loop: the detective takes its own turns and asks
// the host to relay everyone else's, rotating seats and skipping
// ousted players until the game ends.
func (d *Detective) Run() error {
	if !d.initialized {
		return ErrNotInitialized
	}
	if !d.opts.Secretive {
		names := make([]string, len(d.ownCards))
		for ix, c := range d.ownCards {
			names[ix] = c.Name()
		}
		d.log.Debugf("holding cards %v", names)
	}

	for !d.gameOver {
		for seat := 0; seat < d.players; seat++ {
			d.log.Debugf("seat %d plays %s at node %d", seat,
				board.SuspectCard(d.seatSuspects[seat]).Name(),
				d.pieces[d.seatSuspects[seat]])
		}
		if !d.opts.Secretive {
			d.host.ShowBeliefs(d.Beliefs())
		}
		if d.hotSeat == 0 {
			if err := d.TakeTurn(); err != nil {
				return err
			}
		} else {
			d.host.ObserveOpponentTurn(d.hotSeat)
		}

		d.turn++
		next := (d.hotSeat + 1) % d.players
		for next != d.hotSeat && d.ousted[next] {
			next = (next + 1) % d.players
		}
		if d.ousted[next] {
			// Everyone is out; nothing left to play.
			d.gameOver = true
		}
		d.hotSeat = next
	}
	return nil
}

// EvaluateGrid exposes the suggestion grid for one room, for hosts that
// display their own diagnostics.
func (d *Detective) EvaluateGrid(room board.Card) [board.NumSuspects][board.NumWeapons]evaluate.Posterior {
	if !d.initialized {
		return [board.NumSuspects][board.NumWeapons]evaluate.Posterior{}
	}
	return d.eval.Grid(room, d.opts.Workers)
}
