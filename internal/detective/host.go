package detective

import (
	"example.com/gumshoe/internal/board"
)

// Setup carries the table arrangement the detective needs before play:
// seat 0 is always the detective, and Dealer counts seats from it in
// the direction of play.
type Setup struct {
	Players        int
	Dealer         int
	PlayerSuspects []board.Card
	HandSizes      []int
	OwnHand        []board.Card
}

// Beliefs is the read-only summary of the detective's current state of
// knowledge, safe to hand to any display.
type Beliefs struct {
	Suspects  []float64
	Rooms     []float64
	Weapons   []float64
	Forbidden [][board.NumCards]bool
}

// Diagnostics exposes the intermediate scores of one turn decision.
type Diagnostics struct {
	Entropy           float64
	RoomEntropies     [board.NumRooms]float64
	RoomRemoteness    [board.NumRooms]float64
	RoomScores        [board.NumRooms]float64
	PresentRemoteness float64
	StickScore        float64
	RollScore         float64
	PassageScore      float64
}

// Host is the detective's only outward surface. The detective drives
// the game through it; the host owns all real-world interaction (dice,
// the physical board, other players) and reports what happens back
// through the Record methods.
//
// During Suggest the host must invoke RecordPass, RecordSeenAnswer or
// RecordUnseenAnswer for each opponent response before returning; the
// detective reads its updated beliefs immediately afterwards. Accuse
// returns the verdict and the detective records the outcome itself.
type Host interface {
	// Greet and CollectSetup run once, before a game starts.
	Greet()
	CollectSetup() (Setup, error)

	// WaitStart, WaitEnd and Progress bracket long computations. They
	// are notifications only and must not block.
	WaitStart(op string)
	WaitEnd(op string)
	Progress(op string, current, total int)

	// ObserveOpponentTurn asks the host to relay the given seat's turn
	// into the detective's Record methods.
	ObserveOpponentTurn(seat int)

	RollDice() int
	Move(from, to board.Node) bool
	// Suggest returns the seat of the opponent who answered, or 0 when
	// every opponent passed.
	Suggest(suspect, room, weapon board.Card) int
	Accuse(suspect, room, weapon board.Card) bool
	GameOver(won bool)

	// ShowBeliefs and ShowTurnDiagnostics are suppressed in secretive
	// games.
	ShowBeliefs(b Beliefs)
	ShowTurnDiagnostics(d Diagnostics)
}

// hostMonitor relays pool rebuild notifications to the host.
type hostMonitor struct {
	host Host
}

func (m hostMonitor) WaitStart(op string) { m.host.WaitStart(op) }
func (m hostMonitor) WaitEnd(op string)   { m.host.WaitEnd(op) }
