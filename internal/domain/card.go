package domain

import "slices"

// Card is a single vote token from the deck.
type Card string

const (
	CardUnknown Card = "?"
	CardBreak   Card = "☕"
)

// Deck is the ordered set of cards every client is shown. Changing it
// does not change the wire shape.
var Deck = []Card{"0", "1", "2", "3", "5", "8", "13", "21", "34", "55", "89", CardUnknown, CardBreak}

func (c Card) Valid() bool {
	return slices.Contains(Deck, c)
}

// Numeric reports whether the card takes part in statistics.
func (c Card) Numeric() bool {
	return c != CardUnknown && c != CardBreak
}

// DeckValues returns a copy of the deck as plain strings for the wire.
func DeckValues() []string {
	out := make([]string, len(Deck))
	for i, c := range Deck {
		out[i] = string(c)
	}
	return out
}
