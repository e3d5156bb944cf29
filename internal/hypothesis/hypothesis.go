// Package hypothesis maintains the pool of complete candidate card
// deals consistent with everything observed so far. The pool runs in one
// of two regimes: a bounded random sample while the space of feasible
// deals is large, and full enumeration once it has shrunk enough. The
// switch happens once and is never reversed.
package hypothesis

import "example.com/gumshoe/internal/board"

// Envelope is a murder scenario as family indices: which suspect, which
// room, which weapon.
type Envelope struct {
	Suspect int
	Room    int
	Weapon  int
}

// Cards returns the three cards the envelope names.
func (e Envelope) Cards() (board.Card, board.Card, board.Card) {
	return board.SuspectCard(e.Suspect), board.RoomCard(e.Room), board.WeaponCard(e.Weapon)
}

// EnvelopeOf classifies a triple of cards, one per family, into an
// Envelope. The second return is false if the cards do not cover the
// three families exactly.
func EnvelopeOf(cards board.CardSet) (Envelope, bool) {
	if cards.Len() != 3 {
		return Envelope{}, false
	}
	env := Envelope{Suspect: -1, Room: -1, Weapon: -1}
	for _, c := range cards.Cards() {
		switch c.Family() {
		case board.FamilySuspect:
			env.Suspect = c.FamilyIndex()
		case board.FamilyRoom:
			env.Room = c.FamilyIndex()
		default:
			env.Weapon = c.FamilyIndex()
		}
	}
	if env.Suspect < 0 || env.Room < 0 || env.Weapon < 0 {
		return Envelope{}, false
	}
	return env, true
}

// Hypothesis is one fully dealt candidate world: each player's hand plus
// the envelope triple. Hands are indexed by player; the envelope is held
// apart since it is a triple, not a hand.
type Hypothesis struct {
	Hands []board.CardSet
	Env   Envelope
}

// ScenarioSize is the flat length of a (suspect, room, weapon) count
// tensor.
const ScenarioSize = board.NumSuspects * board.NumRooms * board.NumWeapons

// ScenarioIndex flattens an envelope into a scenario tensor index,
// suspect-major.
func ScenarioIndex(e Envelope) int {
	return (e.Suspect*board.NumRooms+e.Room)*board.NumWeapons + e.Weapon
}

// ScenarioAt inverts ScenarioIndex.
func ScenarioAt(ix int) Envelope {
	return Envelope{
		Suspect: ix / (board.NumRooms * board.NumWeapons),
		Room:    ix / board.NumWeapons % board.NumRooms,
		Weapon:  ix % board.NumWeapons,
	}
}
