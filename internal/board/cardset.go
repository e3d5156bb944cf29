package board

import "math/bits"

// CardSet is a bitset over the deck. The zero value is the empty set.
type CardSet uint32

// NewCardSet builds a set from the given cards.
func NewCardSet(cards ...Card) CardSet {
	var s CardSet
	for _, c := range cards {
		s = s.With(c)
	}
	return s
}

// FullDeck returns the set of every card in the game.
func FullDeck() CardSet { return CardSet(1)<<NumCards - 1 }

// FamilyDeck returns the set of every card in one family.
func FamilyDeck(f Family) CardSet {
	switch f {
	case FamilySuspect:
		return (CardSet(1)<<NumSuspects - 1)
	case FamilyRoom:
		return (CardSet(1)<<NumRooms - 1) << NumSuspects
	default:
		return (CardSet(1)<<NumWeapons - 1) << (NumSuspects + NumRooms)
	}
}

func (s CardSet) Has(c Card) bool        { return s&(1<<uint(c)) != 0 }
func (s CardSet) With(c Card) CardSet    { return s | 1<<uint(c) }
func (s CardSet) Without(c Card) CardSet { return s &^ (1 << uint(c)) }

// Union returns the cards in either set.
func (s CardSet) Union(o CardSet) CardSet { return s | o }

// Intersect returns the cards in both sets.
func (s CardSet) Intersect(o CardSet) CardSet { return s & o }

// Diff returns the cards in s but not in o.
func (s CardSet) Diff(o CardSet) CardSet { return s &^ o }

func (s CardSet) Len() int                { return bits.OnesCount32(uint32(s)) }
func (s CardSet) Empty() bool             { return s == 0 }
func (s CardSet) Overlaps(o CardSet) bool { return s&o != 0 }

// Cards lists the members in ascending card order.
func (s CardSet) Cards() []Card {
	out := make([]Card, 0, s.Len())
	for rest := uint32(s); rest != 0; rest &= rest - 1 {
		out = append(out, Card(bits.TrailingZeros32(rest)))
	}
	return out
}
