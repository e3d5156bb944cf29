// Package cli is the terminal host: it collects the game setup and the
// events of every opponent turn from the user, relays the detective's
// actions back to the table, and renders beliefs and turn diagnostics.
// In a synthetic game it also plays the opponents from the known deal.
package cli

import (
	"fmt"
	"math/rand"

	"github.com/peterh/liner"
	"github.com/sirupsen/logrus"

	"example.com/gumshoe/internal/board"
	"example.com/gumshoe/internal/detective"
)

// Terminal implements detective.Host on an interactive console.
type Terminal struct {
	log  *logrus.Logger
	line *liner.State
	rng  *rand.Rand
	det  *detective.Detective
}

func New(log *logrus.Logger, rng *rand.Rand) *Terminal {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	return &Terminal{log: log, line: line, rng: rng}
}

// Bind attaches the detective whose events this terminal relays. Must
// be called before the game starts.
func (t *Terminal) Bind(d *detective.Detective) { t.det = d }

func (t *Terminal) Close() { t.line.Close() }

func (t *Terminal) Greet() {
	C.Header.Println("\n--- Gumshoe ---")
	C.Info.Println("Answer the prompts to describe your table, then log what")
	C.Info.Println("happens each turn. I will tell you where to move, what to")
	C.Info.Println("suggest, and when to accuse.")
}

func (t *Terminal) CollectSetup() (detective.Setup, error) {
	players := t.promptForInt("How many players are in the game? (2-6): ", 2, 6)
	dealer := t.promptForInt(
		fmt.Sprintf("How many seats to my left is the dealer? (0-%d): ", players-1),
		0, players-1)

	names := make([]string, board.NumSuspects)
	for ix := range names {
		names[ix] = board.SuspectCard(ix).Name()
	}
	suspects := make([]board.Card, players)
	taken := board.CardSet(0)
	for seat := 0; seat < players; seat++ {
		who := "you"
		if seat > 0 {
			who = fmt.Sprintf("seat %d", seat)
		}
		for {
			pick := t.promptForSelection(fmt.Sprintf("Which suspect does %s play?", who), names)
			card := board.SuspectCard(pick)
			if taken.Has(card) {
				C.Warn.Println("That suspect is already taken.")
				continue
			}
			suspects[seat] = card
			taken = taken.With(card)
			break
		}
	}

	sizes := make([]int, players)
	for {
		total := 0
		for seat := 0; seat < players; seat++ {
			who := "do you"
			if seat > 0 {
				who = fmt.Sprintf("does seat %d", seat)
			}
			sizes[seat] = t.promptForInt(
				fmt.Sprintf("How many cards %s hold? ", who), 1, board.NumCards-3)
			total += sizes[seat]
		}
		if total == board.NumCards-3 {
			break
		}
		C.Warn.Printf("Hands must total %d cards, you described %d. Again.\n",
			board.NumCards-3, total)
	}

	C.Info.Println("\nNow select the cards in your hand.")
	hand := t.promptForCards(sizes[0])

	return detective.Setup{
		Players:        players,
		Dealer:         dealer,
		PlayerSuspects: suspects,
		HandSizes:      sizes,
		OwnHand:        hand,
	}, nil
}

func (t *Terminal) WaitStart(op string) { C.Debug.Printf("%s...\n", op) }
func (t *Terminal) WaitEnd(op string)   { C.Debug.Printf("%s done\n", op) }

func (t *Terminal) Progress(op string, current, total int) {
	t.log.Debugf("%s: %d/%d", op, current, total)
}

// ObserveOpponentTurn drives one opponent turn. In a synthetic game the
// opponent just sits out; otherwise the user logs what happened.
func (t *Terminal) ObserveOpponentTurn(seat int) {
	if t.det.SyntheticDeal() != nil {
		C.Debug.Printf("seat %d passes the turn\n", seat)
		return
	}
	suspect := board.SuspectCard(t.det.SeatSuspect(seat))
	C.Header.Printf("\n--- Turn %d: seat %d (%s) ---\n",
		t.det.Turn(), seat, ColorizeCard(suspect.Name()))
	t.printTurnHelp()

	for {
		switch t.promptForString("(turn) ") {
		case "move", "m":
			node := t.promptForInt(
				fmt.Sprintf("Destination square? (0-%d): ", board.NumNodes-1),
				0, board.NumNodes-1)
			t.det.RecordMove(seat, board.Node(node))
		case "suggest", "s":
			t.observeSuggestion(seat)
		case "accuse", "a":
			suspect, room, weapon := t.promptForTriad()
			if t.promptForYesNo("Was the accusation correct?") {
				t.det.RecordCorrectAccusation(seat, suspect, room, weapon)
				return
			}
			t.det.RecordWrongAccusation(seat, suspect, room, weapon)
		case "done", "d":
			return
		case "help", "h":
			t.printTurnHelp()
		default:
			C.Warn.Println("Unknown command. Type 'help' for a list.")
		}
	}
}

func (t *Terminal) printTurnHelp() {
	C.Info.Println("Log the turn: move (m), suggest (s), accuse (a), done (d).")
}

// observeSuggestion collects an opponent's suggestion and the chain of
// answers to it. When the question reaches us, the detective picks the
// card to show.
func (t *Terminal) observeSuggestion(seat int) {
	C.Info.Println("What was suggested?")
	suspect, room, weapon := t.promptForTriad()
	t.det.RecordSuggestion(seat, suspect, room, weapon)

	players := t.det.Players()
	for step := 1; step < players; step++ {
		asked := (seat + step) % players
		if asked == 0 {
			card := t.det.AnswerSuggestion(seat, suspect, room, weapon)
			if card == board.NullCard {
				C.Info.Println("We hold none of those cards. Say so.")
				continue
			}
			C.Yes.Printf("Show %s, and nothing else.\n", ColorizeCard(card.Name()))
			return
		}
		if t.promptForYesNo(fmt.Sprintf("Did seat %d show a card?", asked)) {
			t.det.RecordUnseenAnswer(asked, seat, suspect, room, weapon)
			return
		}
		t.det.RecordPass(asked, suspect, room, weapon)
	}
	C.Info.Println("Nobody could answer.")
}

func (t *Terminal) RollDice() int {
	if t.det.SyntheticDeal() != nil {
		roll := t.rng.Intn(6) + t.rng.Intn(6) + 2
		C.Info.Printf("I roll a %d.\n", roll)
		return roll
	}
	return t.promptForInt("Roll the dice for me. What came up? (2-12): ", 2, board.MaxRoll)
}

func (t *Terminal) Move(from, to board.Node) bool {
	C.Info.Printf("I move from square %d to square %d.\n", from, to)
	return true
}

// Suggest announces the detective's suggestion and gathers the
// responses. In a synthetic game the opponents answer from their known
// hands.
func (t *Terminal) Suggest(suspect, room, weapon board.Card) int {
	C.Info.Printf("I suggest: %s, in the %s, with the %s.\n",
		ColorizeCard(suspect.Name()), room.Name(), weapon.Name())

	if deal := t.det.SyntheticDeal(); deal != nil {
		triad := board.NewCardSet(suspect, room, weapon)
		for seat := 1; seat < t.det.Players(); seat++ {
			answered := false
			for _, c := range deal[seat] {
				if triad.Has(c) {
					C.Info.Printf("Seat %d shows me %s.\n", seat, ColorizeCard(c.Name()))
					t.det.RecordSeenAnswer(seat, 0, c)
					answered = true
					break
				}
			}
			if answered {
				return seat
			}
			t.det.RecordPass(seat, suspect, room, weapon)
		}
		return 0
	}

	for seat := 1; seat < t.det.Players(); seat++ {
		if t.promptForYesNo(fmt.Sprintf("Did seat %d show me a card?", seat)) {
			card := t.promptForAnyCard("Which card was I shown?")
			t.det.RecordSeenAnswer(seat, 0, card)
			return seat
		}
		t.det.RecordPass(seat, suspect, room, weapon)
	}
	C.Info.Println("Nobody could answer.")
	return 0
}

func (t *Terminal) Accuse(suspect, room, weapon board.Card) bool {
	C.Header.Printf("I accuse: %s, in the %s, with the %s!\n",
		ColorizeCard(suspect.Name()), room.Name(), weapon.Name())

	if deal := t.det.SyntheticDeal(); deal != nil {
		envelope := board.NewCardSet(deal[len(deal)-1]...)
		return envelope == board.NewCardSet(suspect, room, weapon)
	}
	return t.promptForYesNo("Open the envelope. Was I right?")
}

func (t *Terminal) GameOver(won bool) {
	C.Header.Println("\n--- GAME OVER ---")
	if won {
		C.Yes.Println("The accusation is CORRECT. Elementary.")
		return
	}
	C.No.Println("We lost this one.")
}

func (t *Terminal) ShowBeliefs(b detective.Beliefs)             { RenderBeliefs(b) }
func (t *Terminal) ShowTurnDiagnostics(d detective.Diagnostics) { RenderDiagnostics(d) }
