// Package nav computes movement costs on the board graph: hop distances
// to rooms, expected-roll spans between rooms and the exact destination
// sets reachable per dice roll. Other pieces block plain squares but
// never rooms, so every function takes the occupied square set of the
// moment it describes.
package nav

import (
	"sort"

	"example.com/gumshoe/internal/board"
)

// Occupied is the set of squares currently holding a piece.
type Occupied map[board.Node]bool

// OccupiedBy builds the set from a list of piece positions.
func OccupiedBy(positions ...board.Node) Occupied {
	occ := make(Occupied, len(positions))
	for _, n := range positions {
		occ[n] = true
	}
	return occ
}

// RoomHops returns the minimum number of squares from start to each
// room, ignoring routes that pass through other rooms. Plain squares in
// occupied are impassable; rooms are entered regardless of occupancy and
// end the search branch. Unreachable rooms get -1. If start is itself a
// room its own distance is 0 and a room joined to it by secret passage
// gets distance 1.
func RoomHops(start board.Node, occupied Occupied) [board.NumRooms]int {
	var dists [board.NumRooms]int
	unresolved := board.NumRooms
	for ix := range dists {
		dists[ix] = -1
	}

	visited := map[board.Node]bool{start: true}
	frontier := []board.Node{start}

	if ixStart, ok := board.RoomIndex(start); ok {
		dists[ixStart] = 0
		unresolved--
		if passage, ok := board.Passages[start]; ok {
			if ixPassage, ok := board.RoomIndex(passage); ok {
				dists[ixPassage] = 1
				unresolved--
				visited[passage] = true
			}
		}
	}

	for hop := 1; unresolved > 0 && len(frontier) > 0; hop++ {
		var next []board.Node
		for _, loc := range frontier {
			for _, adj := range board.Adjacency[loc] {
				if visited[adj] {
					continue
				}
				if ix, ok := board.RoomIndex(adj); ok {
					dists[ix] = hop
					unresolved--
					visited[adj] = true
				} else if !occupied[adj] {
					next = append(next, adj)
					visited[adj] = true
				}
			}
		}
		frontier = next
	}
	return dists
}

// Spans returns the minimum expected-roll distance between every pair of
// rooms, allowing routes that pass through intermediate rooms.
//
// Direct room-to-room hop distances seed the matrix. Compound routes are
// then explored by particle propagation: one particle per room, each
// branching to every room it has not yet visited, kept alive only while
// the extended route could still beat some span from the particle's
// origin.
func Spans(occupied Occupied) [board.NumRooms][board.NumRooms]float64 {
	var hopSpans [board.NumRooms][board.NumRooms]float64
	for ix, room := range board.RoomNodes {
		hops := RoomHops(room, occupied)
		for jx, d := range hops {
			hopSpans[ix][jx] = board.RollsToTraverse(d)
		}
	}
	spans := hopSpans

	type particle struct {
		origin  int
		last    int
		visited [board.NumRooms]bool
		span    float64
	}
	var live []particle
	for ix := 0; ix < board.NumRooms; ix++ {
		p := particle{origin: ix, last: ix}
		p.visited[ix] = true
		live = append(live, p)
	}

	for len(live) > 0 {
		var next []particle
		for _, p := range live {
			for jx := 0; jx < board.NumRooms; jx++ {
				if p.visited[jx] {
					continue
				}
				span := p.span + hopSpans[p.last][jx]
				useful := false
				for kx := 0; kx < board.NumRooms; kx++ {
					if span < spans[p.origin][kx] {
						useful = true
						break
					}
				}
				if !useful {
					continue
				}
				branch := p
				branch.last = jx
				branch.visited[jx] = true
				branch.span = span
				next = append(next, branch)
				if span < spans[p.origin][jx] {
					spans[p.origin][jx] = span
				}
			}
		}
		live = next
	}
	return spans
}

// ReachableByRoll returns, for every roll value 0 through board.MaxRoll,
// the nodes reachable from start by a route of exactly that many steps
// that never revisits a square. Plain squares must be unoccupied to pass;
// a room ends the route and is listed again under every larger roll,
// since overshooting into a room is legal. Slower-than-shortest routes
// count, so a square can appear under several roll values. Results are
// sorted for deterministic iteration.
func ReachableByRoll(start board.Node, occupied Occupied) [board.MaxRoll + 1][]board.Node {
	sets := [board.MaxRoll + 1]map[board.Node]bool{}
	for ix := range sets {
		sets[ix] = make(map[board.Node]bool)
	}
	sets[0][start] = true

	routes := [][]board.Node{{start}}
	for roll := 1; roll <= board.MaxRoll; roll++ {
		var next [][]board.Node
		for _, route := range routes {
			for _, adj := range board.Adjacency[route[len(route)-1]] {
				if onRoute(route, adj) {
					continue
				}
				if board.IsRoom(adj) {
					for rest := roll; rest <= board.MaxRoll; rest++ {
						sets[rest][adj] = true
					}
				} else if !occupied[adj] {
					grown := make([]board.Node, len(route)+1)
					copy(grown, route)
					grown[len(route)] = adj
					next = append(next, grown)
					sets[roll][adj] = true
				}
			}
		}
		routes = next
	}

	var out [board.MaxRoll + 1][]board.Node
	for roll, set := range sets {
		nodes := make([]board.Node, 0, len(set))
		for n := range set {
			nodes = append(nodes, n)
		}
		sort.Slice(nodes, func(i, j int) bool { return nodes[i] < nodes[j] })
		out[roll] = nodes
	}
	return out
}

func onRoute(route []board.Node, n board.Node) bool {
	for _, r := range route {
		if r == n {
			return true
		}
	}
	return false
}
