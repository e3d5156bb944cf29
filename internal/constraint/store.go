// Package constraint tracks proven negatives about card locations: a
// matrix of (holder, card) facts meaning "this holder provably does not
// have this card". Holders are the active players 0..n-1 plus one
// synthetic slot n for the murder envelope.
package constraint

import (
	"github.com/sirupsen/logrus"

	"example.com/gumshoe/internal/board"
)

// Store is the forbidden-fact matrix for one game. Facts grow
// monotonically except when a directly observed card clears a stale
// flag on its true holder.
type Store struct {
	players   int
	forbidden [][board.NumCards]bool
	sets      []board.CardSet
	log       logrus.FieldLogger
}

// New creates an empty store for a game of the given player count.
func New(players int, log logrus.FieldLogger) *Store {
	return &Store{
		players:   players,
		forbidden: make([][board.NumCards]bool, players+1),
		sets:      make([]board.CardSet, players+1),
		log:       log,
	}
}

// Players returns the active player count.
func (s *Store) Players() int { return s.players }

// EnvelopeRow returns the holder slot of the murder envelope.
func (s *Store) EnvelopeRow() int { return s.players }

// SeedHand records the detective's own dealt hand: every held card is
// forbidden to every other holder, and every unheld card to the
// detective.
func (s *Store) SeedHand(hand board.CardSet) {
	for c := board.Card(0); c < board.NumCards; c++ {
		if hand.Has(c) {
			for holder := 1; holder <= s.players; holder++ {
				s.forbid(holder, c)
			}
		} else {
			s.forbid(0, c)
		}
	}
}

func (s *Store) forbid(holder int, c board.Card) {
	s.forbidden[holder][c] = true
	s.sets[holder] = s.sets[holder].With(c)
}

// IsForbidden reports whether holder provably does not have c.
func (s *Store) IsForbidden(holder int, c board.Card) bool {
	return s.forbidden[holder][c]
}

// ForbiddenSet returns all cards forbidden to holder. Used as the fast
// existence check inside hypothesis generation loops.
func (s *Store) ForbiddenSet(holder int) board.CardSet {
	return s.sets[holder]
}

// ForbiddenCount returns the number of cards forbidden to holder.
func (s *Store) ForbiddenCount(holder int) int {
	return s.sets[holder].Len()
}

// HoldersForbidding returns how many holder slots (envelope included)
// are forbidden c.
func (s *Store) HoldersForbidding(c board.Card) int {
	n := 0
	for holder := 0; holder <= s.players; holder++ {
		if s.forbidden[holder][c] {
			n++
		}
	}
	return n
}

// FirstAllowed returns the lowest holder slot not forbidden c, or -1 if
// every slot is forbidden it.
func (s *Store) FirstAllowed(c board.Card) int {
	for holder := 0; holder <= s.players; holder++ {
		if !s.forbidden[holder][c] {
			return holder
		}
	}
	return -1
}

// RecordPass marks all three suggested cards forbidden for actor and
// applies envelope closure: a card forbidden to every active player must
// be in the envelope, so the rest of its family becomes forbidden to the
// envelope slot.
func (s *Store) RecordPass(actor int, suspect, room, weapon board.Card) {
	for _, c := range [3]board.Card{suspect, room, weapon} {
		s.forbid(actor, c)
		if s.allPlayersForbidden(c) {
			s.closeEnvelopeFamily(c)
		}
	}
}

func (s *Store) allPlayersForbidden(c board.Card) bool {
	for holder := 0; holder < s.players; holder++ {
		if !s.forbidden[holder][c] {
			return false
		}
	}
	return true
}

// closeEnvelopeFamily pins c into the envelope by forbidding the rest of
// its family there. Re-running it is a no-op, and c itself is never
// forbidden to the slot that must hold it.
func (s *Store) closeEnvelopeFamily(c board.Card) {
	family := board.FamilyDeck(c.Family()).Without(c)
	for _, other := range family.Cards() {
		s.forbid(s.players, other)
	}
	s.log.WithField("card", c.Name()).Debug("card pinned to the envelope")
}

// RecordSeenAnswer pins card to revealer: forbidden everywhere else, and
// any stale forbidden flag on revealer itself is cleared.
func (s *Store) RecordSeenAnswer(card board.Card, revealer int) {
	for holder := 0; holder <= s.players; holder++ {
		if holder != revealer {
			s.forbid(holder, card)
		} else {
			s.forbidden[holder][card] = false
			s.sets[holder] = s.sets[holder].Without(card)
		}
	}
}

// Matrix returns a copy of the forbidden matrix for display, one row per
// holder slot.
func (s *Store) Matrix() [][board.NumCards]bool {
	out := make([][board.NumCards]bool, len(s.forbidden))
	copy(out, s.forbidden)
	return out
}
