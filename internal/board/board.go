// Package board holds the static definitions of the game: the card
// families, the board graph, the rooms and their secret passages, the
// piece start squares and the dice distribution. Everything here is
// compiled data; the reasoning packages query it but never change it.
package board

import "math"

// Family classifies a card using a typed enum.
type Family int

const (
	FamilySuspect Family = iota
	FamilyRoom
	FamilyWeapon
)

func (f Family) String() string {
	return []string{"suspects", "rooms", "weapons"}[f]
}

// Card identifies one of the cards in the deck. The three families
// occupy contiguous numeric ranges so a card's family follows from its
// value alone.
type Card int

const (
	NumSuspects = 6
	NumRooms    = 9
	NumWeapons  = 6
	NumCards    = NumSuspects + NumRooms + NumWeapons

	// NullCard is the out-of-band value used for "no card".
	NullCard Card = NumCards
)

var suspectNames = [NumSuspects]string{
	"Col. Mustard", "Prof. Plum", "Mr. Green",
	"Mrs. Peacock", "Miss Scarlet", "Mrs. White",
}

var roomNames = [NumRooms]string{
	"Hall", "Lounge", "Dining Room", "Kitchen", "Ballroom",
	"Conservatory", "Billiard Room", "Library", "Study",
}

var weaponNames = [NumWeapons]string{
	"Knife", "Candlestick", "Revolver", "Rope", "Lead Pipe", "Wrench",
}

// SuspectCard returns the card for the ix'th suspect.
func SuspectCard(ix int) Card { return Card(ix) }

// RoomCard returns the card for the ix'th room.
func RoomCard(ix int) Card { return Card(NumSuspects + ix) }

// WeaponCard returns the card for the ix'th weapon.
func WeaponCard(ix int) Card { return Card(NumSuspects + NumRooms + ix) }

// Valid reports whether c names a real card.
func (c Card) Valid() bool { return c >= 0 && c < NumCards }

// Family returns the family c belongs to. Only valid cards have one.
func (c Card) Family() Family {
	switch {
	case c < NumSuspects:
		return FamilySuspect
	case c < NumSuspects+NumRooms:
		return FamilyRoom
	default:
		return FamilyWeapon
	}
}

// FamilyIndex returns c's position within its own family.
func (c Card) FamilyIndex() int {
	switch c.Family() {
	case FamilySuspect:
		return int(c)
	case FamilyRoom:
		return int(c) - NumSuspects
	default:
		return int(c) - NumSuspects - NumRooms
	}
}

func (c Card) Name() string {
	if !c.Valid() {
		return "no card"
	}
	switch c.Family() {
	case FamilySuspect:
		return suspectNames[c.FamilyIndex()]
	case FamilyRoom:
		return roomNames[c.FamilyIndex()]
	default:
		return weaponNames[c.FamilyIndex()]
	}
}

// CardByName returns the card with the given display name.
func CardByName(name string) (Card, bool) {
	for c := Card(0); c < NumCards; c++ {
		if c.Name() == name {
			return c, true
		}
	}
	return NullCard, false
}

// Node is a board square. Node 0 is the unused null node.
type Node int

const (
	NullNode Node = 0

	// NumNodes counts every entry in the adjacency table, null node
	// included.
	NumNodes = 198
)

// RoomNodes maps room index to the node of that room, in roomNames order.
var RoomNodes = [NumRooms]Node{3, 1, 79, 161, 153, 177, 104, 50, 5}

// SuspectStartNodes maps suspect index to that piece's start square.
var SuspectStartNodes = [NumSuspects]Node{51, 38, 197, 171, 2, 196}

// WeaponStartNodes maps weapon index to the room node it starts in.
var WeaponStartNodes = [NumWeapons]Node{1, 79, 5, 153, 177, 161}

// SuspectStartOrder lists suspect indices in the rule book's opening
// move priority.
var SuspectStartOrder = [NumSuspects]int{4, 0, 5, 2, 3, 1}

// Passages maps a room node to the room node its secret passage leads to.
var Passages = map[Node]Node{
	1:   177, // Lounge to Conservatory
	5:   161, // Study to Kitchen
	161: 5,   // Kitchen to Study
	177: 1,   // Conservatory to Lounge
}

var roomNodeIndex = func() map[Node]int {
	m := make(map[Node]int, NumRooms)
	for ix, n := range RoomNodes {
		m[n] = ix
	}
	return m
}()

// IsRoom reports whether n is a room node.
func IsRoom(n Node) bool {
	_, ok := roomNodeIndex[n]
	return ok
}

// RoomIndex returns the room index of n, or false if n is not a room.
func RoomIndex(n Node) (int, bool) {
	ix, ok := roomNodeIndex[n]
	return ix, ok
}

// RoomCardAt returns the room card whose room occupies node n.
func RoomCardAt(n Node) (Card, bool) {
	ix, ok := roomNodeIndex[n]
	if !ok {
		return NullCard, false
	}
	return RoomCard(ix), true
}

// MaxRoll is the highest total two dice can show.
const MaxRoll = 12

// DiceProbs[x] is the probability of rolling a total of exactly x.
var DiceProbs = [MaxRoll + 1]float64{
	0, 0,
	1. / 36., 1. / 18., 1. / 12., 1. / 9., 5. / 36., 1. / 6.,
	5. / 36., 1. / 9., 1. / 12., 1. / 18., 1. / 36.,
}

// Expected rolls to cover exact short distances, allowing overshoot.
// Beyond the table a linear fit stays within 1% of the true expectation.
var rollsToTraverse = [11]float64{
	0.0, 1.0, 1.0,
	37. / 36.,
	1.08333333333333,
	1.16512345679012,
	1.28163580246913,
	1.42817644032921,
	1.60988940329218,
	1.77443415637860,
	1.93233453360767,
}

// RollsToTraverse returns the expected number of dice rolls needed to
// travel distance squares, where the movement need not end on the exact
// target square. A negative distance means unreachable and maps to +Inf.
func RollsToTraverse(distance int) float64 {
	switch {
	case distance > 10:
		return (float64(distance) + 3.5) / 7.
	case distance >= 0:
		return rollsToTraverse[distance]
	default:
		return math.Inf(1)
	}
}

// Adjacency lists the squares directly reachable from each node. The
// graph is symmetric except that rooms list only their exits (entry
// edges appear on the doorway squares).
var Adjacency = [NumNodes][]Node{
	{},           // 0: null node
	{44},         // 1: Lounge
	{6},          // 2: Miss Scarlet start
	{20, 62, 63}, // 3: Hall
	{9},          // 4
	{22},         // 5: Study
	{2, 7, 10},
	{6, 11},
	{9, 12},
	{4, 8, 13},
	{6, 11, 14}, // 10
	{7, 10, 15},
	{8, 13, 16},
	{9, 12, 17},
	{10, 15, 18},
	{11, 14, 19},
	{12, 17, 20},
	{13, 16, 21},
	{14, 19, 28},
	{15, 18, 29},
	{3, 16, 21, 30}, // 20
	{17, 20, 22, 31},
	{5, 21, 23, 32},
	{22, 24, 33},
	{23, 25, 34},
	{24, 26, 35},
	{25, 27, 36},
	{26, 37},
	{18, 29, 45},
	{19, 28, 46},
	{20, 31, 47}, // 30
	{21, 30, 32, 48},
	{22, 31, 33, 49},
	{23, 32, 34},
	{24, 33, 35},
	{25, 34, 36},
	{26, 35, 37},
	{27, 36, 38},
	{37},
	{40, 52},
	{39, 41, 53}, // 40
	{40, 42, 54},
	{41, 43, 55},
	{42, 44, 56},
	{1, 43, 44, 57},
	{28, 44, 46, 58},
	{29, 45, 59},
	{30, 48, 66},
	{31, 47, 49, 67},
	{32, 48},
	{78, 96}, // 50: Library
	{52},
	{39, 51, 53, 68},
	{40, 52, 54, 69},
	{41, 53, 55, 70},
	{42, 54, 56, 71},
	{43, 55, 57, 72},
	{44, 56, 58, 73},
	{45, 57, 59, 74},
	{46, 58, 60, 75},
	{59, 61, 76}, // 60
	{60, 62},
	{3, 61, 63},
	{3, 62, 64},
	{63, 65},
	{64, 66},
	{47, 65, 67, 77},
	{48, 66, 78},
	{52, 69},
	{53, 68, 70},
	{54, 69, 71}, // 70
	{55, 70, 72},
	{56, 71, 73},
	{57, 72, 74, 79},
	{58, 73, 75},
	{59, 74, 76, 80},
	{60, 75, 81},
	{66, 78, 82},
	{50, 67, 77, 83},
	{73, 99}, // 79: Dining Room
	{75, 81, 84}, // 80
	{76, 80, 85},
	{77, 83, 86},
	{78, 82, 87},
	{80, 85, 89},
	{81, 84, 90},
	{82, 87, 91},
	{83, 86, 88, 92},
	{87, 93},
	{84, 90, 99},
	{85, 89, 100}, // 90
	{86, 92, 101},
	{87, 91, 93, 102},
	{88, 92, 94, 103},
	{93, 95},
	{94, 96},
	{50, 95, 97},
	{96, 98},
	{97, 104},
	{79, 89, 100, 105},
	{90, 99, 106}, // 100
	{91, 102, 107},
	{92, 101, 103, 108},
	{93, 102, 109},
	{98, 127}, // 104: Billiard Room
	{99, 106, 110},
	{100, 105, 111},
	{101, 108, 112},
	{102, 107, 109, 113},
	{103, 108, 114},
	{105, 111, 118}, // 110
	{106, 110, 119},
	{107, 113, 125},
	{108, 112, 114, 126},
	{109, 113, 127},
	{116, 132},
	{115, 117, 133},
	{116, 118, 134},
	{110, 117, 119, 135},
	{111, 118, 120, 136},
	{119, 121, 137}, // 120
	{120, 122, 138},
	{121, 123, 139},
	{122, 124, 140},
	{123, 125, 141},
	{112, 124, 126, 142},
	{113, 125, 127, 143},
	{104, 114, 126, 144},
	{129, 146},
	{128, 130, 147},
	{129, 131, 148}, // 130
	{130, 132, 149},
	{115, 131, 133, 150},
	{116, 132, 134, 151},
	{117, 133, 135, 152},
	{118, 134, 136},
	{119, 135, 137, 153},
	{120, 136, 138},
	{121, 137, 139},
	{122, 138, 140},
	{123, 139, 141}, // 140
	{124, 140, 142, 153},
	{125, 141, 143},
	{126, 142, 144, 154},
	{127, 143, 155},
	{146},
	{128, 145, 147},
	{129, 146, 148},
	{130, 147, 149},
	{131, 148, 150, 161},
	{132, 149, 151}, // 150
	{133, 150, 152, 162},
	{134, 151, 163},
	{136, 141, 173, 174}, // 153: Ballroom
	{143, 155, 164},
	{144, 154, 156, 165},
	{155, 157, 166},
	{156, 158, 167},
	{157, 159, 168},
	{158, 160, 169},
	{159, 170}, // 160
	{149},      // 161: Kitchen
	{151, 163, 172},
	{152, 162, 173},
	{154, 165, 174},
	{155, 164, 166, 175},
	{156, 165, 167, 176},
	{157, 166, 168},
	{158, 167, 169},
	{159, 168, 170},
	{160, 169, 171}, // 170
	{170},
	{162, 173, 178},
	{153, 163, 172, 179},
	{153, 164, 175, 180},
	{165, 174, 176, 181},
	{166, 175, 177},
	{176}, // 177: Conservatory
	{172, 179, 182},
	{173, 178, 183},
	{174, 181, 184}, // 180
	{175, 180, 185},
	{178, 183, 186},
	{179, 182, 187},
	{180, 185, 188},
	{181, 184, 189},
	{182, 187},
	{183, 186, 190},
	{184, 189, 195},
	{185, 188},
	{187, 191}, // 190
	{190, 192},
	{191, 196},
	{194, 197},
	{193, 195},
	{188, 194},
	{192}, // 196: Mrs. White start
	{193}, // 197: Mr. Green start
}
