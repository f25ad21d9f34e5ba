package bridge

import (
	"encoding/json"
	"errors"
	"math/rand"
)

// DealState is the phase of a single deal.
type DealState int

const (
	WaitingForPlayers DealState = iota
	Auction
	Tricking
	Finished
)

func (s DealState) String() string {
	switch s {
	case WaitingForPlayers:
		return "WaitingForPlayers"
	case Auction:
		return "Auction"
	case Tricking:
		return "Tricking"
	case Finished:
		return "Finished"
	default:
		return "Unknown"
	}
}

// GameValue is the doubling state of the contract.
type GameValue int

const (
	Plain GameValue = iota
	Doubled
	Redoubled
)

func (v GameValue) String() string {
	switch v {
	case Doubled:
		return "Doubled"
	case Redoubled:
		return "Redoubled"
	default:
		return "Plain"
	}
}

// MarshalJSON implements json.Marshaler for GameValue.
func (v GameValue) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON implements json.Unmarshaler for GameValue.
func (v *GameValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "Plain":
		*v = Plain
	case "Doubled":
		*v = Doubled
	case "Redoubled":
		*v = Redoubled
	default:
		return errors.New("invalid game value: " + s)
	}
	return nil
}

// multiplier returns the contract score multiplier: 1, 2 or 4.
func (v GameValue) multiplier() int {
	switch v {
	case Doubled:
		return 2
	case Redoubled:
		return 4
	default:
		return 1
	}
}

// Rule-violation errors returned by the deal engine. Every engine call is
// total: a violation leaves the deal untouched and reports one of these.
var (
	ErrGameStateMismatch = errors.New("operation does not match deal state")
	ErrPlayerOutOfTurn   = errors.New("player out of turn")
	ErrWrongBid          = errors.New("bid does not outbid the current contract")
	ErrCantDouble        = errors.New("double not available")
	ErrCantRedouble      = errors.New("redouble not available")
	ErrCardNotFound      = errors.New("card not in player's hand")
	ErrWrongCardSuit     = errors.New("must follow the lead suit")
)

// BidStatus describes the state transition caused by a successful bid.
type BidStatus int

const (
	// BidStatusAuction means the auction continues.
	BidStatusAuction BidStatus = iota
	// BidStatusTricking means the auction ended with a contract.
	BidStatusTricking
	// BidStatusFinished means four initial passes ended the deal.
	BidStatusFinished
)

// TrickStatus describes the state transition caused by a successful play.
type TrickStatus int

const (
	// TrickInProgress means the current trick has fewer than four cards.
	TrickInProgress TrickStatus = iota
	// TrickFinished means a trick resolved and more remain.
	TrickFinished
	// TrickDealFinished means the thirteenth trick resolved.
	TrickDealFinished
)

// TrickState is a resolved trick: the four cards in play order and the seat
// that took them.
type TrickState struct {
	Cards []Card `json:"cards"`
	Taker Player `json:"taker"`
}

// GameResult summarizes a finished deal that had a contract.
type GameResult struct {
	Contract  Bid
	Declarer  Player
	GameValue GameValue
	TricksWon int
}

// ContractMade reports whether the declaring side took enough tricks.
func (r GameResult) ContractMade() bool {
	return r.TricksWon-6 >= r.Contract.Level()
}

// Deal is the state machine for a single bridge hand: dealing, the auction,
// thirteen tricks, and the final evaluation. It is not safe for concurrent
// use; the room serializes access.
type Deal struct {
	rng *rand.Rand

	state         DealState
	playerCards   [4][]Card
	collected     [4][]Card
	currentTrick  []Card
	trickLeader   Player
	maxBid        Bid
	maxBidder     Player
	gameValue     GameValue
	currentPlayer Player
	trickNo       int
	dummyShown    bool
	lastTrick     *TrickState
}

// NewDeal creates a deal in WaitingForPlayers. The rng drives the shuffle.
func NewDeal(rng *rand.Rand) *Deal {
	return &Deal{rng: rng}
}

// State returns the current phase.
func (d *Deal) State() DealState { return d.state }

// CurrentPlayer returns the seat expected to act next.
func (d *Deal) CurrentPlayer() Player { return d.currentPlayer }

// MaxBid returns the highest Play bid so far, or Pass if none.
func (d *Deal) MaxBid() Bid { return d.maxBid }

// MaxBidder returns the seat holding the highest bid. Meaningful only when
// MaxBid is not Pass.
func (d *Deal) MaxBidder() Player { return d.maxBidder }

// GameValue returns the doubling state of the current contract.
func (d *Deal) GameValue() GameValue { return d.gameValue }

// TrickNo returns the number of resolved tricks, 0..13.
func (d *Deal) TrickNo() int { return d.trickNo }

// CurrentTrick returns a copy of the cards in the unresolved trick.
func (d *Deal) CurrentTrick() []Card {
	out := make([]Card, len(d.currentTrick))
	copy(out, d.currentTrick)
	return out
}

// LastTrick returns the most recently resolved trick, or nil.
func (d *Deal) LastTrick() *TrickState { return d.lastTrick }

// Cards returns a copy of the given seat's hand.
func (d *Deal) Cards(p Player) []Card {
	out := make([]Card, len(d.playerCards[p]))
	copy(out, d.playerCards[p])
	return out
}

// Collected returns a copy of the cards the given seat has taken in tricks.
func (d *Deal) Collected(p Player) []Card {
	out := make([]Card, len(d.collected[p]))
	copy(out, d.collected[p])
	return out
}

// Declarer returns the seat that won the auction, if a contract exists.
func (d *Deal) Declarer() (Player, bool) {
	if !d.maxBid.IsPlay() {
		return 0, false
	}
	return d.maxBidder, true
}

// DummyPlayer returns the declarer's partner, if a contract exists.
func (d *Deal) DummyPlayer() (Player, bool) {
	declarer, ok := d.Declarer()
	if !ok {
		return 0, false
	}
	return declarer.Partner(), true
}

// DummyCards returns the dummy's hand. It is defined only once the opening
// lead has been made; until then the hand stays private.
func (d *Deal) DummyCards() ([]Card, bool) {
	dummy, ok := d.DummyPlayer()
	if !ok || !d.dummyShown {
		return nil, false
	}
	return d.Cards(dummy), true
}

// Start shuffles and deals a fresh 52-card deck, thirteen cards per seat,
// and opens the auction with firstBidder. The deal must be in
// WaitingForPlayers or Finished (restarting reuses the same slot).
func (d *Deal) Start(firstBidder Player) error {
	if d.state != WaitingForPlayers && d.state != Finished {
		return ErrGameStateMismatch
	}
	deck := NewDeck()
	ShuffleDeck(deck, d.rng)
	for i := range d.playerCards {
		hand := make([]Card, 13)
		copy(hand, deck[i*13:(i+1)*13])
		SortCards(hand)
		d.playerCards[i] = hand
		d.collected[i] = nil
	}
	d.currentTrick = nil
	d.trickNo = 0
	d.maxBid = Pass()
	d.maxBidder = firstBidder
	d.gameValue = Plain
	d.currentPlayer = firstBidder
	d.dummyShown = false
	d.lastTrick = nil
	d.state = Auction
	return nil
}

// PlaceBid applies one auction call from the given seat. On success the
// returned status says whether the auction continues, resolved into a
// contract, or ended the deal on four initial passes.
func (d *Deal) PlaceBid(player Player, bid Bid) (BidStatus, error) {
	if d.state != Auction {
		return 0, ErrGameStateMismatch
	}
	if player != d.currentPlayer {
		return 0, ErrPlayerOutOfTurn
	}

	switch {
	case bid.IsPass():
		d.currentPlayer = d.currentPlayer.Next()
		if d.currentPlayer != d.maxBidder {
			return BidStatusAuction, nil
		}
		if d.maxBid.IsPass() {
			// Four passes with no contract: the deal is over.
			d.state = Finished
			return BidStatusFinished, nil
		}
		// The opening lead falls to the player left of the declarer.
		d.state = Tricking
		d.currentPlayer = d.maxBidder.Next()
		d.trickLeader = d.currentPlayer
		d.trickNo = 0
		d.currentTrick = nil
		return BidStatusTricking, nil

	case bid.IsPlay():
		if !bid.valid() || !bid.Outbids(d.maxBid) {
			return 0, ErrWrongBid
		}
		d.maxBid = bid
		d.maxBidder = player
		d.gameValue = Plain
		d.currentPlayer = d.currentPlayer.Next()
		return BidStatusAuction, nil

	case bid.IsDouble():
		if !d.maxBid.IsPlay() || !player.IsOpponent(d.maxBidder) || d.gameValue != Plain {
			return 0, ErrCantDouble
		}
		d.gameValue = Doubled
		d.currentPlayer = d.currentPlayer.Next()
		return BidStatusAuction, nil

	case bid.IsRedouble():
		if !d.maxBid.IsPlay() || d.gameValue != Doubled {
			return 0, ErrCantRedouble
		}
		if d.maxBidder != player && d.maxBidder != player.Partner() {
			return 0, ErrCantRedouble
		}
		d.gameValue = Redoubled
		d.currentPlayer = d.currentPlayer.Next()
		return BidStatusAuction, nil
	}
	return 0, ErrWrongBid
}

// Trick plays one card from the given seat. On success the returned status
// says whether the trick is still open, just resolved, or resolved the
// thirteenth trick and finished the deal; for the latter two the TrickState
// carries the four cards and the taker.
func (d *Deal) Trick(player Player, card Card) (TrickStatus, *TrickState, error) {
	if d.state != Tricking {
		return 0, nil, ErrGameStateMismatch
	}
	if player != d.currentPlayer {
		return 0, nil, ErrPlayerOutOfTurn
	}
	idx := -1
	for i, c := range d.playerCards[player] {
		if c == card {
			idx = i
			break
		}
	}
	if idx < 0 {
		return 0, nil, ErrCardNotFound
	}
	if len(d.currentTrick) > 0 && card.Suit != d.currentTrick[0].Suit {
		for _, c := range d.playerCards[player] {
			if c.Suit == d.currentTrick[0].Suit {
				return 0, nil, ErrWrongCardSuit
			}
		}
	}

	if len(d.currentTrick) == 0 {
		d.trickLeader = player
	}
	d.currentTrick = append(d.currentTrick, card)
	d.playerCards[player] = append(d.playerCards[player][:idx], d.playerCards[player][idx+1:]...)
	if d.trickNo == 0 && len(d.currentTrick) == 1 {
		// Opening lead: dummy goes face up.
		d.dummyShown = true
	}

	if len(d.currentTrick) < 4 {
		d.currentPlayer = d.currentPlayer.Next()
		return TrickInProgress, nil, nil
	}

	winner := TrickWinner(d.currentTrick, d.maxBid.Type())
	taker := d.trickLeader.Skip(winner)
	d.collected[taker] = append(d.collected[taker], d.currentTrick...)
	d.lastTrick = &TrickState{Cards: d.currentTrick, Taker: taker}
	d.currentTrick = nil
	d.trickNo++
	d.currentPlayer = taker
	d.trickLeader = taker

	if d.trickNo == 13 {
		d.state = Finished
		return TrickDealFinished, d.lastTrick, nil
	}
	return TrickFinished, d.lastTrick, nil
}

// TrickMax returns the card currently winning the open trick (falling back
// to the last resolved trick when the table is empty).
func (d *Deal) TrickMax() (Card, bool) {
	trick := d.currentTrick
	if len(trick) == 0 {
		if d.lastTrick == nil {
			return Card{}, false
		}
		trick = d.lastTrick.Cards
	}
	return trick[TrickWinner(trick, d.maxBid.Type())], true
}

// Evaluate summarizes a finished deal. It returns false while the deal is
// still running or when four passes produced no contract.
func (d *Deal) Evaluate() (GameResult, bool) {
	if d.state != Finished || !d.maxBid.IsPlay() {
		return GameResult{}, false
	}
	declarer := d.maxBidder
	dummy := declarer.Partner()
	tricksWon := len(d.collected[declarer])/4 + len(d.collected[dummy])/4
	return GameResult{
		Contract:  d.maxBid,
		Declarer:  declarer,
		GameValue: d.gameValue,
		TricksWon: tricksWon,
	}, true
}
