package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"example.com/gumshoe/internal/board"
)

// C holds pre-configured color objects for printing to the console.
var C = struct {
	Yes, No, Maybe, Info, Warn, Header, Prompt, Debug *color.Color
}{
	Yes:    color.New(color.FgGreen),
	No:     color.New(color.FgRed),
	Maybe:  color.New(color.FgYellow),
	Info:   color.New(color.FgCyan),
	Warn:   color.New(color.FgHiYellow),
	Header: color.New(color.FgWhite, color.Bold),
	Prompt: color.New(color.FgHiWhite),
	Debug:  color.New(color.FgMagenta),
}

// SuspectColors maps suspect names to specific colors for display.
var SuspectColors = map[string]*color.Color{
	"Miss Scarlet": color.New(color.FgRed),
	"Col. Mustard": color.New(color.FgYellow),
	"Mrs. White":   color.New(color.FgWhite),
	"Mr. Green":    color.New(color.FgGreen),
	"Mrs. Peacock": color.New(color.FgBlue),
	"Prof. Plum":   color.New(color.FgMagenta),
}

// ColorizeCard returns a card name as a colored string if it's a suspect.
func ColorizeCard(name string) string {
	if c, ok := SuspectColors[name]; ok {
		return c.Sprint(name)
	}
	return name
}

func (t *Terminal) promptForString(prompt string) string {
	for {
		C.Prompt.Print(prompt)
		input, err := t.line.Prompt("")
		if err != nil {
			C.Info.Println("\nGoodbye!")
			os.Exit(0)
		}
		trimmed := strings.TrimSpace(input)
		if trimmed != "" {
			t.line.AppendHistory(trimmed)
			return trimmed
		}
	}
}

func (t *Terminal) promptForInt(prompt string, min, max int) int {
	for {
		input := t.promptForString(prompt)
		num, err := strconv.Atoi(input)
		if err != nil || num < min || num > max {
			C.Warn.Printf("Invalid input. Please enter a number between %d and %d.\n", min, max)
			continue
		}
		return num
	}
}

func (t *Terminal) promptForYesNo(prompt string) bool {
	for {
		input := strings.ToLower(t.promptForString(prompt + " (y/n): "))
		switch input {
		case "y", "yes":
			return true
		case "n", "no":
			return false
		}
		C.Warn.Println("Please answer y or n.")
	}
}

func (t *Terminal) promptForSelection(prompt string, options []string) int {
	for {
		C.Header.Println("\n" + prompt)
		for i, opt := range options {
			fmt.Printf(" %2d: %s\n", i+1, ColorizeCard(opt))
		}
		input := t.promptForString("Enter number or name: ")
		if num, err := strconv.Atoi(input); err == nil && num >= 1 && num <= len(options) {
			return num - 1
		}
		for i, opt := range options {
			if strings.EqualFold(opt, input) {
				return i
			}
		}
		C.Warn.Println("Invalid selection.")
	}
}

// promptForCard reads one card of the given family.
func (t *Terminal) promptForCard(prompt string, family board.Family) board.Card {
	for {
		card := t.promptForAnyCard(prompt)
		if card.Family() != family {
			C.Warn.Printf("'%s' is not one of the %s.\n", card.Name(), family)
			continue
		}
		return card
	}
}

// promptForAnyCard reads one card of any family.
func (t *Terminal) promptForAnyCard(prompt string) board.Card {
	for {
		input := t.promptForString(prompt + ": ")
		card, ok := parseCard(input)
		if !ok {
			C.Warn.Printf("Error: Card '%s' not found.\n", input)
			continue
		}
		return card
	}
}

// promptForTriad reads the suspect, room and weapon of one suggestion
// or accusation.
func (t *Terminal) promptForTriad() (board.Card, board.Card, board.Card) {
	suspect := t.promptForCard("Suspect", board.FamilySuspect)
	room := t.promptForCard("Room", board.FamilyRoom)
	weapon := t.promptForCard("Weapon", board.FamilyWeapon)
	return suspect, room, weapon
}

// promptForCards reads exactly count distinct cards.
func (t *Terminal) promptForCards(count int) []board.Card {
	printCardList()
	var cards []board.Card
	seen := board.CardSet(0)
	for len(cards) < count {
		prompt := fmt.Sprintf("Enter card %d of %d: ", len(cards)+1, count)
		input := t.promptForString(prompt)
		card, ok := parseCard(input)
		if !ok {
			C.Warn.Printf("Error: Card '%s' not found.\n", input)
		} else if seen.Has(card) {
			C.Warn.Printf("You have already entered '%s'.\n", card.Name())
		} else {
			cards = append(cards, card)
			seen = seen.With(card)
			C.Info.Printf(" -> Added: %s\n", ColorizeCard(card.Name()))
		}
	}
	return cards
}

func parseCard(input string) (board.Card, bool) {
	if num, err := strconv.Atoi(input); err == nil && num >= 1 && num <= board.NumCards {
		return board.Card(num - 1), true
	}
	for id := 0; id < board.NumCards; id++ {
		if strings.EqualFold(board.Card(id).Name(), input) {
			return board.Card(id), true
		}
	}
	return board.NullCard, false
}

func printCardList() {
	C.Header.Println("\n--- Card List ---")
	for id := 0; id < board.NumCards; id++ {
		fmt.Printf("%2d: %-18s", id+1, board.Card(id).Name())
		if (id+1)%3 == 0 {
			fmt.Println()
		}
	}
	fmt.Println()
}
