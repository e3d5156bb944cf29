// Package detective is the orchestrator: it owns all per-game mutable
// state (piece positions, seat rotation, event logs, the constraint
// store and hypothesis pool) and drives play through a Host. External
// events enter through the Record methods; decisions leave through the
// Host's action methods.
package detective

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"example.com/gumshoe/internal/board"
	"example.com/gumshoe/internal/constraint"
	"example.com/gumshoe/internal/evaluate"
	"example.com/gumshoe/internal/hypothesis"
)

var (
	// ErrInvalidConfiguration wraps every setup validation failure. A
	// failed Initialize leaves the detective untouched.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNotInitialized is returned by turn methods before a
	// successful Initialize.
	ErrNotInitialized = errors.New("detective not initialised")
)

// Options are the runtime knobs. Zero values take the defaults.
type Options struct {
	// SampleCount is the hypothesis pool size while sampling.
	SampleCount int
	// EnumerationThreshold is the estimated deal count below which the
	// pool switches to exact enumeration.
	EnumerationThreshold int64
	// AccusationConfidence is the scenario probability above which an
	// accusation is made.
	AccusationConfidence float64
	// Secretive suppresses belief and diagnostic output, for games
	// where an opponent can see the screen.
	Secretive bool
	// Workers sets the fan-out of the suggestion grid evaluation.
	Workers int
}

func (o Options) withDefaults() Options {
	if o.SampleCount == 0 {
		o.SampleCount = 100000
	}
	if o.EnumerationThreshold == 0 {
		o.EnumerationThreshold = 500000
	}
	if o.AccusationConfidence == 0 {
		o.AccusationConfidence = 0.79
	}
	if o.Workers == 0 {
		o.Workers = 1
	}
	return o
}

// Detective plays one seat of a deduction game.
type Detective struct {
	host Host
	opts Options
	log  logrus.FieldLogger
	rng  *rand.Rand

	players      int
	dealer       int
	seatSuspects []int
	handSizes    []int
	ownCards     []board.Card
	ownHand      board.CardSet

	pieces         [board.NumSuspects]board.Node
	canSuggestHere bool
	enteredRoom    bool
	turn           int
	hotSeat        int
	ousted         []bool
	gameOver       bool
	won            bool

	shownTo     [][]bool
	shownCounts []int

	store *constraint.Store
	pool  *hypothesis.Pool
	eval  *evaluate.Evaluator

	moves            []MoveEvent
	suggestions      []SuggestionEvent
	passes           []PassEvent
	seenAnswers      []SeenAnswerEvent
	unseenAnswers    []UnseenAnswerEvent
	wrongAccusations []AccusationEvent

	// synthetic holds the full deal of a synthetic game, for hosts
	// that answer suggestions automatically. Nil in real games.
	synthetic [][]board.Card

	initialized bool
}

// New creates a detective bound to a host. Every game it plays is
// stamped with a fresh ID in its log fields.
func New(host Host, opts Options, log logrus.FieldLogger, rng *rand.Rand) *Detective {
	return &Detective{
		host: host,
		opts: opts.withDefaults(),
		log:  log.WithField("game", uuid.New().String()),
		rng:  rng,
	}
}

// Initialize greets the user and collects the game setup through the
// host. Use this in assistant mode.
func (d *Detective) Initialize() error {
	d.host.Greet()
	setup, err := d.host.CollectSetup()
	if err != nil {
		return err
	}
	return d.InitializeWithSetup(setup)
}

// InitializeWithSetup starts a game from an externally supplied setup.
func (d *Detective) InitializeWithSetup(s Setup) error {
	if err := validateSetup(s); err != nil {
		return err
	}
	d.synthetic = nil
	d.applySetup(s)
	return nil
}

// InitializeSynthetic starts a game from a fully known deal: one hand
// per player, detective first, plus the envelope triple. The deal is
// kept so a host can answer suggestions on the opponents' behalf.
func (d *Detective) InitializeSynthetic(hands [][]board.Card, envelope []board.Card, suspects []board.Card, dealer int) error {
	if len(hands) < 2 || len(hands) > 6 {
		return fmt.Errorf("%w: %d hands supplied, need one per player with 2 to 6 players", ErrInvalidConfiguration, len(hands))
	}
	if len(envelope) != 3 {
		return fmt.Errorf("%w: envelope holds %d cards, need exactly 3", ErrInvalidConfiguration, len(envelope))
	}
	env := board.NewCardSet(envelope...)
	if _, ok := hypothesis.EnvelopeOf(env); !ok {
		return fmt.Errorf("%w: envelope must name one suspect, one room and one weapon", ErrInvalidConfiguration)
	}
	dealt := env
	sizes := make([]int, len(hands))
	for ix, hand := range hands {
		set := board.NewCardSet(hand...)
		if set.Len() != len(hand) || dealt.Overlaps(set) {
			return fmt.Errorf("%w: deal repeats a card", ErrInvalidConfiguration)
		}
		dealt = dealt.Union(set)
		sizes[ix] = len(hand)
	}
	if dealt != board.FullDeck() {
		return fmt.Errorf("%w: deal does not cover the full pack", ErrInvalidConfiguration)
	}

	setup := Setup{
		Players:        len(hands),
		Dealer:         dealer,
		PlayerSuspects: suspects,
		HandSizes:      sizes,
		OwnHand:        hands[0],
	}
	if err := validateSetup(setup); err != nil {
		return err
	}
	deal := make([][]board.Card, 0, len(hands)+1)
	for _, hand := range hands {
		deal = append(deal, append([]board.Card(nil), hand...))
	}
	deal = append(deal, append([]board.Card(nil), envelope...))
	d.synthetic = deal
	d.applySetup(setup)
	return nil
}

func validateSetup(s Setup) error {
	if s.Players < 2 || s.Players > 6 {
		return fmt.Errorf("%w: %d players, need 2 to 6", ErrInvalidConfiguration, s.Players)
	}
	if s.Dealer < 0 || s.Dealer >= s.Players {
		return fmt.Errorf("%w: dealer seat %d out of range", ErrInvalidConfiguration, s.Dealer)
	}
	if len(s.PlayerSuspects) != s.Players {
		return fmt.Errorf("%w: %d suspect cards for %d players", ErrInvalidConfiguration, len(s.PlayerSuspects), s.Players)
	}
	var taken board.CardSet
	for _, c := range s.PlayerSuspects {
		if !c.Valid() || c.Family() != board.FamilySuspect {
			return fmt.Errorf("%w: %q is not a suspect card", ErrInvalidConfiguration, c.Name())
		}
		if taken.Has(c) {
			return fmt.Errorf("%w: suspect %q assigned twice", ErrInvalidConfiguration, c.Name())
		}
		taken = taken.With(c)
	}
	if len(s.HandSizes) != s.Players {
		return fmt.Errorf("%w: %d hand sizes for %d players", ErrInvalidConfiguration, len(s.HandSizes), s.Players)
	}
	total := 0
	for seat, n := range s.HandSizes {
		if n <= 0 {
			return fmt.Errorf("%w: seat %d holds %d cards", ErrInvalidConfiguration, seat, n)
		}
		total += n
	}
	if total != board.NumCards-3 {
		return fmt.Errorf("%w: %d cards dealt to hands, the pack less the envelope is %d", ErrInvalidConfiguration, total, board.NumCards-3)
	}
	hand := board.NewCardSet(s.OwnHand...)
	if hand.Len() != len(s.OwnHand) || len(s.OwnHand) != s.HandSizes[0] {
		return fmt.Errorf("%w: own hand must be %d distinct cards", ErrInvalidConfiguration, s.HandSizes[0])
	}
	for _, c := range s.OwnHand {
		if !c.Valid() {
			return fmt.Errorf("%w: own hand names card %d outside the pack", ErrInvalidConfiguration, int(c))
		}
	}
	return nil
}

func (d *Detective) applySetup(s Setup) {
	d.players = s.Players
	d.dealer = s.Dealer
	d.seatSuspects = make([]int, s.Players)
	for seat, c := range s.PlayerSuspects {
		d.seatSuspects[seat] = c.FamilyIndex()
	}
	d.handSizes = append([]int(nil), s.HandSizes...)
	d.ownCards = append([]board.Card(nil), s.OwnHand...)
	d.ownHand = board.NewCardSet(s.OwnHand...)

	d.pieces = board.SuspectStartNodes
	d.canSuggestHere = true
	d.enteredRoom = false
	d.turn = 0
	d.gameOver = false
	d.won = false
	d.ousted = make([]bool, d.players)
	d.shownTo = make([][]bool, d.players-1)
	for ix := range d.shownTo {
		d.shownTo[ix] = make([]bool, len(d.ownCards))
	}
	d.shownCounts = make([]int, len(d.ownCards))

	// The opener is whichever played suspect comes first in the rule
	// book's start order.
	for _, suspIx := range board.SuspectStartOrder {
		if seat := d.seatOfSuspect(suspIx); seat >= 0 {
			d.hotSeat = seat
			break
		}
	}

	d.moves = nil
	d.suggestions = nil
	d.passes = nil
	d.seenAnswers = nil
	d.unseenAnswers = nil
	d.wrongAccusations = nil

	d.store = constraint.New(d.players, d.log)
	d.store.SeedHand(d.ownHand)
	d.pool = hypothesis.New(d.store, hypothesis.Config{
		Players:       d.players,
		Dealer:        d.dealer,
		HandSizes:     d.handSizes,
		OwnHand:       d.ownHand,
		SampleTarget:  d.opts.SampleCount,
		EnumThreshold: d.opts.EnumerationThreshold,
		Logger:        d.log,
		Rand:          d.rng,
		Monitor:       hostMonitor{d.host},
	})
	d.pool.Rebuild()
	d.eval = evaluate.New(d.pool)
	d.initialized = true
}

func (d *Detective) seatOfSuspect(suspIx int) int {
	for seat, s := range d.seatSuspects {
		if s == suspIx {
			return seat
		}
	}
	return -1
}

// Accessors safe for hosts and displays.

func (d *Detective) Players() int   { return d.players }
func (d *Detective) Turn() int      { return d.turn }
func (d *Detective) HotSeat() int   { return d.hotSeat }
func (d *Detective) GameOver() bool { return d.gameOver }
func (d *Detective) Won() bool      { return d.won }

// Entropy is the entropy of the current scenario belief in nats.
func (d *Detective) Entropy() float64 { return d.pool.Entropy() }

// PieceAt returns the board node of a suspect's piece.
func (d *Detective) PieceAt(suspIx int) board.Node { return d.pieces[suspIx] }

// SeatSuspect returns the suspect index played by a seat.
func (d *Detective) SeatSuspect(seat int) int { return d.seatSuspects[seat] }

// SyntheticDeal returns the full deal of a synthetic game, hands in
// seat order with the envelope last, or nil for a real game.
func (d *Detective) SyntheticDeal() [][]board.Card { return d.synthetic }

// Beliefs summarises the current pool marginals and forbidden matrix.
func (d *Detective) Beliefs() Beliefs {
	return Beliefs{
		Suspects:  normalise(d.pool.SuspectCounts()),
		Rooms:     normalise(d.pool.RoomCounts()),
		Weapons:   normalise(d.pool.WeaponCounts()),
		Forbidden: d.store.Matrix(),
	}
}

func normalise(counts []int) []float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	probs := make([]float64, len(counts))
	if total == 0 {
		return probs
	}
	for ix, c := range counts {
		probs[ix] = float64(c) / float64(total)
	}
	return probs
}

// RecordMove notes that a seat moved its own piece. Teleports caused by
// suggestions are handled by RecordSuggestion, not here.
func (d *Detective) RecordMove(actor int, to board.Node) {
	ev := MoveEvent{
		Turn:  d.turn,
		Actor: actor,
		From:  d.pieces[d.seatSuspects[actor]],
		To:    to,
	}
	d.moves = append(d.moves, ev)
	d.applyMove(ev)
}

// ReplayMove re-applies the newest move record.
func (d *Detective) ReplayMove() { d.applyMove(d.moves[len(d.moves)-1]) }

func (d *Detective) applyMove(ev MoveEvent) {
	if ev.Actor == 0 {
		d.canSuggestHere = true
		if board.IsRoom(ev.To) {
			d.enteredRoom = true
		}
	}
	d.pieces[d.seatSuspects[ev.Actor]] = ev.To
}

// RecordSuggestion notes a suggestion by any seat. The named suspect's
// piece is carried to the suggested room; when that piece is the
// detective's own avatar and it actually changes rooms, the detective
// may suggest there next turn without moving.
func (d *Detective) RecordSuggestion(actor int, suspect, room, weapon board.Card) {
	ev := SuggestionEvent{Turn: d.turn, Actor: actor, Suspect: suspect, Room: room, Weapon: weapon}
	d.suggestions = append(d.suggestions, ev)
	d.applySuggestion(ev)
}

func (d *Detective) ReplaySuggestion() {
	d.applySuggestion(d.suggestions[len(d.suggestions)-1])
}

func (d *Detective) applySuggestion(ev SuggestionEvent) {
	suspIx := ev.Suspect.FamilyIndex()
	roomNode := board.RoomNodes[ev.Room.FamilyIndex()]
	if ev.Actor == 0 {
		d.canSuggestHere = false
	} else if suspIx == d.seatSuspects[0] && d.pieces[suspIx] != roomNode {
		d.canSuggestHere = true
	}
	d.pieces[suspIx] = roomNode
}

// RecordPass notes that a seat held none of a suggested triad.
func (d *Detective) RecordPass(actor int, suspect, room, weapon board.Card) {
	ev := PassEvent{Turn: d.turn, Actor: actor, Suspect: suspect, Room: room, Weapon: weapon}
	d.passes = append(d.passes, ev)
	d.applyPass(ev)
}

func (d *Detective) ReplayPass() { d.applyPass(d.passes[len(d.passes)-1]) }

func (d *Detective) applyPass(ev PassEvent) {
	d.store.RecordPass(ev.Actor, ev.Suspect, ev.Room, ev.Weapon)
	triad := board.NewCardSet(ev.Suspect, ev.Room, ev.Weapon)
	d.pool.RemoveWhere(func(h *hypothesis.Hypothesis) bool {
		return h.Hands[ev.Actor].Overlaps(triad)
	}, "pass")
}

// RecordSeenAnswer notes a card the detective saw revealed, either to
// itself or by itself.
func (d *Detective) RecordSeenAnswer(shower, viewer int, card board.Card) {
	ev := SeenAnswerEvent{Turn: d.turn, Shower: shower, Viewer: viewer, Card: card}
	d.seenAnswers = append(d.seenAnswers, ev)
	d.applySeenAnswer(ev)
}

func (d *Detective) ReplaySeenAnswer() {
	d.applySeenAnswer(d.seenAnswers[len(d.seenAnswers)-1])
}

func (d *Detective) applySeenAnswer(ev SeenAnswerEvent) {
	d.store.RecordSeenAnswer(ev.Card, ev.Shower)
	d.pool.NoteSeenAnswer(ev.Shower, ev.Card)
	d.pool.RemoveWhere(func(h *hypothesis.Hypothesis) bool {
		return !h.Hands[ev.Shower].Has(ev.Card)
	}, "seen answer")
}

// RecordUnseenAnswer notes that a seat showed some unknown card of a
// suggested triad to another seat.
func (d *Detective) RecordUnseenAnswer(shower, viewer int, suspect, room, weapon board.Card) {
	ev := UnseenAnswerEvent{Turn: d.turn, Shower: shower, Viewer: viewer, Suspect: suspect, Room: room, Weapon: weapon}
	d.unseenAnswers = append(d.unseenAnswers, ev)
	d.applyUnseenAnswer(ev)
}

func (d *Detective) ReplayUnseenAnswer() {
	d.applyUnseenAnswer(d.unseenAnswers[len(d.unseenAnswers)-1])
}

func (d *Detective) applyUnseenAnswer(ev UnseenAnswerEvent) {
	triad := board.NewCardSet(ev.Suspect, ev.Room, ev.Weapon)
	d.pool.NoteUnseenAnswer(ev.Shower, triad)
	d.pool.RemoveWhere(func(h *hypothesis.Hypothesis) bool {
		return !h.Hands[ev.Shower].Overlaps(triad)
	}, "unseen answer")
}

// RecordWrongAccusation notes a disproven accusation. The accuser is
// out of the game but keeps answering suggestions.
func (d *Detective) RecordWrongAccusation(actor int, suspect, room, weapon board.Card) {
	ev := AccusationEvent{Turn: d.turn, Actor: actor, Suspect: suspect, Room: room, Weapon: weapon}
	d.wrongAccusations = append(d.wrongAccusations, ev)
	d.applyWrongAccusation(ev)
}

func (d *Detective) ReplayWrongAccusation() {
	d.applyWrongAccusation(d.wrongAccusations[len(d.wrongAccusations)-1])
}

func (d *Detective) applyWrongAccusation(ev AccusationEvent) {
	d.ousted[ev.Actor] = true
	env, ok := hypothesis.EnvelopeOf(board.NewCardSet(ev.Suspect, ev.Room, ev.Weapon))
	if !ok {
		d.log.Warnf("malformed accusation by seat %d ignored", ev.Actor)
		return
	}
	d.pool.NoteWrongAccusation(env)
	d.pool.RemoveWhere(func(h *hypothesis.Hypothesis) bool {
		return h.Env == env
	}, "wrong accusation")
}

// RecordCorrectAccusation ends the game.
func (d *Detective) RecordCorrectAccusation(actor int, suspect, room, weapon board.Card) {
	d.gameOver = true
	d.won = actor == 0
	d.host.GameOver(d.won)
}

// AnswerSuggestion picks the card to reveal to a suggesting opponent,
// or NullCard to pass. Cards already shown to that opponent are
// preferred, then cards shown most often overall, so repeated
// suggestions leak as little as possible. The resulting answer or pass
// is recorded against the detective itself.
func (d *Detective) AnswerSuggestion(suggester int, suspect, room, weapon board.Card) board.Card {
	triad := board.NewCardSet(suspect, room, weapon)
	var showable []int
	for ix, c := range d.ownCards {
		if triad.Has(c) {
			showable = append(showable, ix)
		}
	}
	if len(showable) == 0 {
		d.RecordPass(0, suspect, room, weapon)
		return board.NullCard
	}

	var shown []int
	for _, ix := range showable {
		if d.shownTo[suggester-1][ix] {
			shown = append(shown, ix)
		}
	}
	candidates := showable
	if len(shown) > 0 {
		candidates = shown
	}
	pick := candidates[0]
	for _, ix := range candidates[1:] {
		if d.shownCounts[ix] > d.shownCounts[pick] {
			pick = ix
		}
	}
	d.shownTo[suggester-1][pick] = true
	d.shownCounts[pick]++
	card := d.ownCards[pick]
	d.RecordSeenAnswer(0, suggester, card)
	return card
}
