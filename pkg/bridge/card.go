package bridge

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"sort"
)

// Rank represents a card rank, Two (2) through Ace (14).
type Rank int

const (
	Two   Rank = 2
	Three Rank = 3
	Four  Rank = 4
	Five  Rank = 5
	Six   Rank = 6
	Seven Rank = 7
	Eight Rank = 8
	Nine  Rank = 9
	Ten   Rank = 10
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
	Ace   Rank = 14
)

// RankFromInt converts a numeric value in [2,14] to a Rank.
func RankFromInt(v int) (Rank, error) {
	if v < int(Two) || v > int(Ace) {
		return 0, fmt.Errorf("invalid rank value: %d", v)
	}
	return Rank(v), nil
}

// Int returns the numeric value of the rank.
func (r Rank) Int() int { return int(r) }

func (r Rank) String() string {
	switch r {
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	case Ace:
		return "A"
	default:
		return fmt.Sprintf("%d", int(r))
	}
}

// MarshalJSON implements json.Marshaler for Rank.
func (r Rank) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.String())
}

// UnmarshalJSON implements json.Unmarshaler for Rank.
func (r *Rank) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "J", "j", "jack", "Jack":
		*r = Jack
	case "Q", "q", "queen", "Queen":
		*r = Queen
	case "K", "k", "king", "King":
		*r = King
	case "A", "a", "ace", "Ace":
		*r = Ace
	case "2", "3", "4", "5", "6", "7", "8", "9", "10":
		n := 0
		fmt.Sscanf(s, "%d", &n)
		*r = Rank(n)
	default:
		return fmt.Errorf("invalid rank: %s", s)
	}
	return nil
}

// Suit represents a card suit. The ordering Clubs < Diamonds < Hearts <
// Spades is used for bid comparison and UI sorting.
type Suit int

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

// Suits lists all four suits in ascending order.
var Suits = [4]Suit{Clubs, Diamonds, Hearts, Spades}

// IsMajor reports whether the suit is a major suit (Hearts or Spades).
func (s Suit) IsMajor() bool { return s == Hearts || s == Spades }

func (s Suit) String() string {
	switch s {
	case Clubs:
		return "Clubs"
	case Diamonds:
		return "Diamonds"
	case Hearts:
		return "Hearts"
	case Spades:
		return "Spades"
	default:
		return "Unknown"
	}
}

// Letter returns the single-letter form used on the wire for cards.
func (s Suit) Letter() string {
	switch s {
	case Clubs:
		return "C"
	case Diamonds:
		return "D"
	case Hearts:
		return "H"
	case Spades:
		return "S"
	default:
		return "?"
	}
}

func suitFromString(v string) (Suit, error) {
	switch v {
	case "C", "c", "clubs", "Clubs":
		return Clubs, nil
	case "D", "d", "diamonds", "Diamonds":
		return Diamonds, nil
	case "H", "h", "hearts", "Hearts":
		return Hearts, nil
	case "S", "s", "spades", "Spades":
		return Spades, nil
	default:
		return 0, fmt.Errorf("invalid suit: %s", v)
	}
}

// MarshalJSON implements json.Marshaler for Suit. Suits serialize by full
// name; cards carry the single-letter form instead (see Card.MarshalJSON).
func (s Suit) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON implements json.Unmarshaler for Suit.
func (s *Suit) UnmarshalJSON(data []byte) error {
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	suit, err := suitFromString(v)
	if err != nil {
		return err
	}
	*s = suit
	return nil
}

// Card represents a playing card.
type Card struct {
	Rank Rank
	Suit Suit
}

type cardJSON struct {
	Rank Rank   `json:"rank"`
	Suit string `json:"suit"`
}

// MarshalJSON implements json.Marshaler for Card.
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{Rank: c.Rank, Suit: c.Suit.Letter()})
}

// UnmarshalJSON implements json.Unmarshaler for Card.
func (c *Card) UnmarshalJSON(data []byte) error {
	var cj cardJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return err
	}
	suit, err := suitFromString(cj.Suit)
	if err != nil {
		return err
	}
	if cj.Rank < Two || cj.Rank > Ace {
		return fmt.Errorf("invalid rank value: %d", cj.Rank)
	}
	c.Rank = cj.Rank
	c.Suit = suit
	return nil
}

func (c Card) String() string {
	return c.Rank.String() + c.Suit.Letter()
}

// NewDeck returns the canonical 52-card deck in suit-then-rank order.
func NewDeck() []Card {
	deck := make([]Card, 0, 52)
	for _, suit := range Suits {
		for r := Two; r <= Ace; r++ {
			deck = append(deck, Card{Rank: r, Suit: suit})
		}
	}
	return deck
}

// ShuffleDeck randomizes the order of cards using the given rng.
func ShuffleDeck(cards []Card, rng *rand.Rand) {
	rng.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// beats reports whether card a beats card b under the given trump bid type.
// b is the card currently winning the trick, so the lead suit is implied:
// cards of a third suit never beat b.
func beats(a, b Card, trump BidType) bool {
	if t, ok := trump.TrumpSuit(); ok {
		if a.Suit == t && b.Suit != t {
			return true
		}
		if a.Suit != t && b.Suit == t {
			return false
		}
	}
	return a.Suit == b.Suit && a.Rank > b.Rank
}

// TrickWinner returns the index of the winning card in a trick. cards[0] is
// the lead. A trump card dominates any non-trump; otherwise the highest card
// of the lead suit wins.
func TrickWinner(cards []Card, trump BidType) int {
	best := 0
	for i := 1; i < len(cards); i++ {
		if beats(cards[i], cards[best], trump) {
			best = i
		}
	}
	return best
}

// SortCards orders cards by descending suit then descending rank, for
// display.
func SortCards(cards []Card) {
	sort.Slice(cards, func(i, j int) bool {
		if cards[i].Suit != cards[j].Suit {
			return cards[i].Suit > cards[j].Suit
		}
		return cards[i].Rank > cards[j].Rank
	})
}
