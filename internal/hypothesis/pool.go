package hypothesis

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"example.com/gumshoe/internal/board"
	"example.com/gumshoe/internal/constraint"
	"example.com/gumshoe/internal/stats"
)

// Monitor receives notifications about potentially long pool operations.
// Implementations must not fail; the pool never checks for errors.
type Monitor interface {
	WaitStart(op string)
	WaitEnd(op string)
}

type nopMonitor struct{}

func (nopMonitor) WaitStart(string) {}
func (nopMonitor) WaitEnd(string)   {}

// Config carries the fixed setup of a pool.
type Config struct {
	Players   int
	Dealer    int
	HandSizes []int
	OwnHand   board.CardSet

	// SampleTarget is the pool size kept while sampling stochastically.
	SampleTarget int
	// EnumThreshold is the estimated-deal count below which the pool
	// switches to exact enumeration.
	EnumThreshold int64

	Logger  logrus.FieldLogger
	Rand    *rand.Rand
	Monitor Monitor
}

// SeenAnswer records a card the detective personally watched a player
// reveal.
type SeenAnswer struct {
	Holder int
	Card   board.Card
}

// UnseenAnswer records that a player revealed one unknown card from a
// suggested triad.
type UnseenAnswer struct {
	Holder int
	Triad  board.CardSet
}

// Pool is the collection of hypotheses plus the count tensors maintained
// incrementally alongside it.
type Pool struct {
	cfg     Config
	store   *constraint.Store
	log     logrus.FieldLogger
	rng     *rand.Rand
	monitor Monitor

	seen   []SeenAnswer
	unseen []UnseenAnswer
	wrong  []Envelope

	hyps          []Hypothesis
	countScenario []int
	countSuspect  []int
	countRoom     []int
	countWeapon   []int
	enumerated    bool
	current       stats.Result
}

// New creates an empty pool. Call Rebuild to populate it.
func New(store *constraint.Store, cfg Config) *Pool {
	if cfg.Monitor == nil {
		cfg.Monitor = nopMonitor{}
	}
	return &Pool{
		cfg:           cfg,
		store:         store,
		log:           cfg.Logger,
		rng:           cfg.Rand,
		monitor:       cfg.Monitor,
		countScenario: make([]int, ScenarioSize),
		countSuspect:  make([]int, board.NumSuspects),
		countRoom:     make([]int, board.NumRooms),
		countWeapon:   make([]int, board.NumWeapons),
	}
}

// Size returns the current hypothesis count.
func (p *Pool) Size() int { return len(p.hyps) }

// Enumerated reports whether the pool has switched to exact mode.
func (p *Pool) Enumerated() bool { return p.enumerated }

// Hypotheses exposes the pool for read-only projection. Callers must not
// mutate the returned slice or its hands.
func (p *Pool) Hypotheses() []Hypothesis { return p.hyps }

// Entropy returns the Shannon entropy of the current scenario belief.
func (p *Pool) Entropy() float64 { return p.current.Entropy }

// ScenarioProbs returns the current scenario distribution, flat per
// ScenarioIndex.
func (p *Pool) ScenarioProbs() []float64 { return p.current.Probs }

// MostLikely returns the modal scenario and its probability.
func (p *Pool) MostLikely() (Envelope, float64) {
	best, bestP := 0, 0.0
	for ix, pr := range p.current.Probs {
		if pr > bestP {
			best, bestP = ix, pr
		}
	}
	return ScenarioAt(best), bestP
}

// SuspectCounts returns the marginal hypothesis counts by suspect. The
// returned slice is live; callers must not mutate it.
func (p *Pool) SuspectCounts() []int { return p.countSuspect }

// RoomCounts returns the marginal hypothesis counts by room.
func (p *Pool) RoomCounts() []int { return p.countRoom }

// WeaponCounts returns the marginal hypothesis counts by weapon.
func (p *Pool) WeaponCounts() []int { return p.countWeapon }

// ScenarioCounts returns the full (suspect, room, weapon) count tensor.
func (p *Pool) ScenarioCounts() []int { return p.countScenario }

// Players returns the number of active players the pool was built for.
func (p *Pool) Players() int { return p.cfg.Players }

// NoteSeenAnswer records a directly observed reveal for use in future
// generation. It does not remove hypotheses; see RemoveWhere.
func (p *Pool) NoteSeenAnswer(holder int, card board.Card) {
	p.seen = append(p.seen, SeenAnswer{Holder: holder, Card: card})
}

// NoteUnseenAnswer records a disjunctive reveal for use in future
// generation.
func (p *Pool) NoteUnseenAnswer(holder int, triad board.CardSet) {
	p.unseen = append(p.unseen, UnseenAnswer{Holder: holder, Triad: triad})
}

// NoteWrongAccusation records a disproven envelope triple.
func (p *Pool) NoteWrongAccusation(env Envelope) {
	p.wrong = append(p.wrong, env)
}

// RemoveWhere drops every hypothesis matching pred, decrementing the
// count tensors as each one is identified, then tops the pool back up.
// It returns the number removed.
func (p *Pool) RemoveWhere(pred func(*Hypothesis) bool, reason string) int {
	kept := p.hyps[:0]
	removed := 0
	for ix := range p.hyps {
		if pred(&p.hyps[ix]) {
			p.uncount(p.hyps[ix].Env)
			removed++
		} else {
			kept = append(kept, p.hyps[ix])
		}
	}
	p.hyps = kept
	p.log.WithFields(logrus.Fields{
		"removed": removed,
		"reason":  reason,
	}).Debug("hypotheses invalidated")
	p.Rebuild()
	return removed
}

func (p *Pool) count(env Envelope) {
	p.countScenario[ScenarioIndex(env)]++
	p.countSuspect[env.Suspect]++
	p.countRoom[env.Room]++
	p.countWeapon[env.Weapon]++
}

func (p *Pool) uncount(env Envelope) {
	ix := ScenarioIndex(env)
	p.countScenario[ix]--
	p.countSuspect[env.Suspect]--
	p.countRoom[env.Room]--
	p.countWeapon[env.Weapon]--
	if p.countScenario[ix] < 0 {
		panic(fmt.Sprintf("hypothesis count for scenario %+v went negative", env))
	}
}

// EstimateRemaining approximates the number of deals still feasible
// under the recorded constraints: the count of envelope triples times,
// player by player in deal order, the ways to fill each hand from the
// shrinking card pool. Cross-player disjunctions from unseen answers are
// not modelled, so the estimate can undercount slightly.
func (p *Pool) EstimateRemaining() int64 {
	dealSpaces := make([]int, p.cfg.Players)
	copy(dealSpaces, p.cfg.HandSizes)
	cardsLeft := board.NumCards - 3

	for c := board.Card(0); c < board.NumCards; c++ {
		if p.store.HoldersForbidding(c) == p.cfg.Players {
			// Exactly one slot can hold this card.
			holder := p.store.FirstAllowed(c)
			if holder != p.store.EnvelopeRow() {
				cardsLeft--
				dealSpaces[holder]--
			}
		}
	}

	envRow := p.store.EnvelopeRow()
	envForbidden := p.store.ForbiddenSet(envRow)
	n := int64(board.NumSuspects - envForbidden.Intersect(board.FamilyDeck(board.FamilySuspect)).Len())
	n *= int64(board.NumRooms - envForbidden.Intersect(board.FamilyDeck(board.FamilyRoom)).Len())
	n *= int64(board.NumWeapons - envForbidden.Intersect(board.FamilyDeck(board.FamilyWeapon)).Len())

	for seat := 0; seat < p.cfg.Players; seat++ {
		player := (p.cfg.Dealer + seat) % p.cfg.Players
		avail := board.NumCards - p.store.ForbiddenCount(player)
		if cardsLeft < avail {
			avail = cardsLeft
		}
		n *= choose(avail, dealSpaces[player])
		cardsLeft -= dealSpaces[player]
	}
	return n
}

// choose is C(n, r) computed exactly. Out-of-range arguments give 0.
func choose(n, r int) int64 {
	if r < 0 || n < 0 || r > n {
		return 0
	}
	if r > n-r {
		r = n - r
	}
	out := int64(1)
	for ix := 1; ix <= r; ix++ {
		out = out * int64(n-r+ix) / int64(ix)
	}
	return out
}

// GenerateOne produces a single random hypothesis satisfying every
// recorded constraint, restarting internally whenever a partial random
// allocation dead-ends. It returns the number of attempts taken.
func (p *Pool) GenerateOne() (Hypothesis, int) {
	attempts := 0
	for {
		attempts++
		if hyp, ok := p.tryGenerate(); ok {
			return hyp, attempts
		}
	}
}

func (p *Pool) tryGenerate() (Hypothesis, bool) {
	hands := make([]board.CardSet, p.cfg.Players)
	hands[0] = p.cfg.OwnHand
	dealt := p.cfg.OwnHand

	// Cards seen in answers have known holders.
	for _, sa := range p.seen {
		if !hands[sa.Holder].Has(sa.Card) {
			hands[sa.Holder] = hands[sa.Holder].With(sa.Card)
			dealt = dealt.With(sa.Card)
		}
	}

	// Satisfy each unseen answer by one random allowed card from its
	// triad, unless an earlier allocation already satisfies it.
	for _, ua := range p.unseen {
		if ua.Triad.Overlaps(hands[ua.Holder]) {
			continue
		}
		if hands[ua.Holder].Len() >= p.cfg.HandSizes[ua.Holder] {
			return Hypothesis{}, false
		}
		allowed := ua.Triad.Diff(dealt).Diff(p.store.ForbiddenSet(ua.Holder))
		if allowed.Empty() {
			return Hypothesis{}, false
		}
		c := p.pickCard(allowed)
		hands[ua.Holder] = hands[ua.Holder].With(c)
		dealt = dealt.With(c)
	}

	// Pick the envelope one family at a time from what remains.
	envForbidden := p.store.ForbiddenSet(p.store.EnvelopeRow())
	var env Envelope
	for fx, family := range [3]board.Family{board.FamilySuspect, board.FamilyRoom, board.FamilyWeapon} {
		avail := board.FamilyDeck(family).Diff(dealt).Diff(envForbidden)
		if avail.Empty() {
			return Hypothesis{}, false
		}
		c := p.pickCard(avail)
		dealt = dealt.With(c)
		switch fx {
		case 0:
			env.Suspect = c.FamilyIndex()
		case 1:
			env.Room = c.FamilyIndex()
		default:
			env.Weapon = c.FamilyIndex()
		}
	}

	// Deal the rest: each card to the first player with spare capacity
	// who is not forbidden it.
	deck := board.FullDeck().Diff(dealt).Cards()
	p.rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	for _, c := range deck {
		holder := -1
		for ix := 0; ix < p.cfg.Players; ix++ {
			if !p.store.IsForbidden(ix, c) && hands[ix].Len() < p.cfg.HandSizes[ix] {
				holder = ix
				break
			}
		}
		if holder < 0 {
			return Hypothesis{}, false
		}
		hands[holder] = hands[holder].With(c)
		dealt = dealt.With(c)
	}

	// Reject scenarios already disproven by a wrong accusation.
	for _, wa := range p.wrong {
		if wa == env {
			return Hypothesis{}, false
		}
	}

	if dealt != board.FullDeck() {
		panic("hypothesis generated without dealing the full pack")
	}
	return Hypothesis{Hands: hands, Env: env}, true
}

func (p *Pool) pickCard(s board.CardSet) board.Card {
	cards := s.Cards()
	return cards[p.rng.Intn(len(cards))]
}

// Rebuild restores the pool after removals. In stochastic mode it tops
// the sample back up to the target size, or switches permanently to
// exact enumeration once the estimated feasible-deal count falls under
// the threshold. In exact mode reduction is all that ever happens, so it
// only refreshes statistics.
func (p *Pool) Rebuild() {
	if p.enumerated {
		p.log.WithField("remaining", len(p.hyps)).Debug("precise inference")
		p.refreshStats()
		return
	}
	if len(p.hyps) == 0 {
		p.monitor.WaitStart("building initial hypothesis database")
		defer p.monitor.WaitEnd("building initial hypothesis database")
	}

	estimate := p.EstimateRemaining()
	if estimate < p.cfg.EnumThreshold {
		p.log.WithField("estimate", estimate).Debug("scenario count under threshold, enumerating")
		p.enumerate()
	} else {
		p.log.WithFields(logrus.Fields{
			"estimate": estimate,
			"needed":   p.cfg.SampleTarget - len(p.hyps),
		}).Debug("scenario count high, sampling")
		p.sampleUp()
	}
	p.refreshStats()
}

func (p *Pool) refreshStats() {
	p.current = stats.FromCounts(p.countScenario)
}

func (p *Pool) sampleUp() {
	start := time.Now()
	totalAttempts := 0
	for len(p.hyps) < p.cfg.SampleTarget {
		hyp, attempts := p.GenerateOne()
		totalAttempts += attempts
		p.hyps = append(p.hyps, hyp)
		p.count(hyp.Env)
	}
	p.log.WithFields(logrus.Fields{
		"elapsed":  time.Since(start),
		"attempts": totalAttempts,
	}).Debug("sample replenished")
}

// partial is a deal under construction during enumeration.
type partial struct {
	hands []board.CardSet
	env   [3]int // family indices, -1 while unset
	dealt board.CardSet
}

func (q *partial) clone() partial {
	hands := make([]board.CardSet, len(q.hands))
	copy(hands, q.hands)
	return partial{hands: hands, env: q.env, dealt: q.dealt}
}

// enumerate replaces the sampled pool with the complete set of feasible
// deals. Runs once per game; afterwards the pool only ever shrinks.
func (p *Pool) enumerate() {
	p.monitor.WaitStart("enumerating remaining deals")
	defer p.monitor.WaitEnd("enumerating remaining deals")
	start := time.Now()

	root := partial{
		hands: make([]board.CardSet, p.cfg.Players),
		env:   [3]int{-1, -1, -1},
	}

	// Cards narrowed to a single possible slot are dealt up front.
	for c := board.Card(0); c < board.NumCards; c++ {
		if p.store.HoldersForbidding(c) != p.cfg.Players {
			continue
		}
		holder := p.store.FirstAllowed(c)
		if holder < p.cfg.Players {
			root.hands[holder] = root.hands[holder].With(c)
		} else {
			switch c.Family() {
			case board.FamilySuspect:
				root.env[0] = c.FamilyIndex()
			case board.FamilyRoom:
				root.env[1] = c.FamilyIndex()
			default:
				root.env[2] = c.FamilyIndex()
			}
		}
		root.dealt = root.dealt.With(c)
	}

	// Branch over every way to satisfy each unseen answer.
	branches := []partial{root}
	for _, ua := range p.unseen {
		var next []partial
		for ix := range branches {
			q := &branches[ix]
			if ua.Triad.Overlaps(q.hands[ua.Holder]) {
				next = append(next, *q)
				continue
			}
			if q.hands[ua.Holder].Len() >= p.cfg.HandSizes[ua.Holder] {
				continue // infeasible branch
			}
			allowed := ua.Triad.Diff(q.dealt).Diff(p.store.ForbiddenSet(ua.Holder))
			for _, c := range allowed.Cards() {
				b := q.clone()
				b.hands[ua.Holder] = b.hands[ua.Holder].With(c)
				b.dealt = b.dealt.With(c)
				next = append(next, b)
			}
		}
		branches = next
	}

	// Branch over every still-possible envelope triple.
	envForbidden := p.store.ForbiddenSet(p.store.EnvelopeRow())
	var withEnv []partial
	for ix := range branches {
		q := &branches[ix]
		families := [3]board.Family{board.FamilySuspect, board.FamilyRoom, board.FamilyWeapon}
		var choices [3][]board.Card
		for fx, family := range families {
			if q.env[fx] >= 0 {
				switch fx {
				case 0:
					choices[fx] = []board.Card{board.SuspectCard(q.env[fx])}
				case 1:
					choices[fx] = []board.Card{board.RoomCard(q.env[fx])}
				default:
					choices[fx] = []board.Card{board.WeaponCard(q.env[fx])}
				}
			} else {
				choices[fx] = board.FamilyDeck(family).Diff(q.dealt).Diff(envForbidden).Cards()
			}
		}
		for _, sc := range choices[0] {
			for _, rc := range choices[1] {
				for _, wc := range choices[2] {
					b := q.clone()
					b.env = [3]int{sc.FamilyIndex(), rc.FamilyIndex(), wc.FamilyIndex()}
					b.dealt = b.dealt.With(sc).With(rc).With(wc)
					withEnv = append(withEnv, b)
				}
			}
		}
	}

	// Deal every remaining card to every eligible opponent in turn until
	// all branches hold complete deals.
	branches = withEnv
	for {
		complete := true
		var next []partial
		for ix := range branches {
			q := &branches[ix]
			left := board.FullDeck().Diff(q.dealt)
			if left.Empty() {
				next = append(next, *q)
				continue
			}
			complete = false
			c := left.Cards()[0]
			for player := 1; player < p.cfg.Players; player++ {
				if q.hands[player].Len() < p.cfg.HandSizes[player] &&
					!p.store.IsForbidden(player, c) {
					b := q.clone()
					b.hands[player] = b.hands[player].With(c)
					b.dealt = b.dealt.With(c)
					next = append(next, b)
				}
			}
		}
		branches = next
		if complete {
			break
		}
	}

	// Drop deals disproven by recorded wrong accusations, then install
	// the enumerated pool and recount from scratch.
	p.hyps = p.hyps[:0]
	for ix := range p.countScenario {
		p.countScenario[ix] = 0
	}
	for ix := range p.countSuspect {
		p.countSuspect[ix] = 0
	}
	for ix := range p.countRoom {
		p.countRoom[ix] = 0
	}
	for ix := range p.countWeapon {
		p.countWeapon[ix] = 0
	}
	for ix := range branches {
		q := &branches[ix]
		env := Envelope{Suspect: q.env[0], Room: q.env[1], Weapon: q.env[2]}
		if p.disproven(env) {
			continue
		}
		hyp := Hypothesis{Hands: q.hands, Env: env}
		p.hyps = append(p.hyps, hyp)
		p.count(env)
	}
	p.enumerated = true
	p.log.WithFields(logrus.Fields{
		"outcomes": len(p.hyps),
		"elapsed":  time.Since(start),
	}).Debug("enumerated possible deals")
}

func (p *Pool) disproven(env Envelope) bool {
	for _, wa := range p.wrong {
		if wa == env {
			return true
		}
	}
	return false
}
