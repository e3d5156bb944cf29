package detective

import (
	"example.com/gumshoe/internal/board"
)

// Every observed fact is kept as a log record so a late or repeated
// notification can be re-applied from the log. Actor, Shower and
// Viewer are seats relative to the detective (seat 0).

type MoveEvent struct {
	Turn  int
	Actor int
	From  board.Node
	To    board.Node
}

type SuggestionEvent struct {
	Turn    int
	Actor   int
	Suspect board.Card
	Room    board.Card
	Weapon  board.Card
}

type PassEvent struct {
	Turn    int
	Actor   int
	Suspect board.Card
	Room    board.Card
	Weapon  board.Card
}

type SeenAnswerEvent struct {
	Turn   int
	Shower int
	Viewer int
	Card   board.Card
}

type UnseenAnswerEvent struct {
	Turn    int
	Shower  int
	Viewer  int
	Suspect board.Card
	Room    board.Card
	Weapon  board.Card
}

type AccusationEvent struct {
	Turn    int
	Actor   int
	Suspect board.Card
	Room    board.Card
	Weapon  board.Card
}
