package cli

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"example.com/gumshoe/internal/board"
	"example.com/gumshoe/internal/detective"
)

// RenderBeliefs displays the scenario marginals next to the forbidden
// matrix, one row per card.
func RenderBeliefs(b detective.Beliefs) {
	holders := len(b.Forbidden)
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("Detective Notes")

	header := table.Row{"ID", "Card", "Type", "P(envelope)"}
	for seat := 0; seat < holders-1; seat++ {
		if seat == 0 {
			header = append(header, "Me")
			continue
		}
		header = append(header, fmt.Sprintf("Seat %d", seat))
	}
	header = append(header, "Envelope")
	t.AppendHeader(header)

	for id := 0; id < board.NumCards; id++ {
		card := board.Card(id)
		if id > 0 && card.Family() != board.Card(id-1).Family() {
			t.AppendSeparator()
		}
		row := table.Row{id + 1, ColorizeCard(card.Name()), card.Family().String(),
			fmt.Sprintf("%.3f", marginalOf(b, card))}
		for seat := 0; seat < holders; seat++ {
			row = append(row, holderSymbol(b.Forbidden[seat][id]))
		}
		t.AppendRow(row)
	}
	t.SetStyle(table.StyleRounded)
	t.Style().Options.SeparateRows = false
	t.Style().Title.Align = text.AlignCenter
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 1, Align: text.AlignRight}})
	t.Render()
}

func marginalOf(b detective.Beliefs, card board.Card) float64 {
	switch card.Family() {
	case board.FamilySuspect:
		return b.Suspects[card.FamilyIndex()]
	case board.FamilyRoom:
		return b.Rooms[card.FamilyIndex()]
	default:
		return b.Weapons[card.FamilyIndex()]
	}
}

func holderSymbol(forbidden bool) string {
	if forbidden {
		return C.No.Sprint("✖")
	}
	return C.Maybe.Sprint("?")
}

// RenderDiagnostics displays the room scores of one turn decision.
func RenderDiagnostics(d detective.Diagnostics) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle(fmt.Sprintf("Turn Analysis (entropy %.3f)", d.Entropy))
	t.AppendHeader(table.Row{"Room", "Exp. Entropy", "Remoteness", "Score"})
	for ix := 0; ix < board.NumRooms; ix++ {
		t.AppendRow(table.Row{
			board.RoomCard(ix).Name(),
			fmt.Sprintf("%.3f", d.RoomEntropies[ix]),
			fmt.Sprintf("%.3f", d.RoomRemoteness[ix]),
			fmt.Sprintf("%.3f", d.RoomScores[ix]),
		})
	}
	t.AppendSeparator()
	t.AppendFooter(table.Row{"stick / roll / passage", "",
		"", fmt.Sprintf("%.3f / %.3f / %.3f", d.StickScore, d.RollScore, d.PassageScore)})
	t.SetStyle(table.StyleLight)
	t.Render()
}
