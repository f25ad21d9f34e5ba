package bridge

import (
	"encoding/json"
	"fmt"
)

// BidType is the denomination of a contract: one of the four trump suits or
// no trump. The ordering Clubs < Diamonds < Hearts < Spades < NoTrump
// governs auction comparison.
type BidType struct {
	noTrump bool
	trump   Suit
}

// Trump returns the BidType for a trump-suit contract.
func Trump(s Suit) BidType { return BidType{trump: s} }

// NoTrump returns the no-trump BidType.
func NoTrump() BidType { return BidType{noTrump: true} }

// TrumpSuit returns the trump suit, or false for no trump.
func (bt BidType) TrumpSuit() (Suit, bool) {
	if bt.noTrump {
		return 0, false
	}
	return bt.trump, true
}

// IsNoTrump reports whether the denomination is no trump.
func (bt BidType) IsNoTrump() bool { return bt.noTrump }

func (bt BidType) order() int {
	if bt.noTrump {
		return 4
	}
	return int(bt.trump)
}

func (bt BidType) String() string {
	if bt.noTrump {
		return "NoTrump"
	}
	return bt.trump.String()
}

// MarshalJSON implements json.Marshaler; the encoding is the externally
// tagged variant form, "NoTrump" or {"Trump":"Spades"}.
func (bt BidType) MarshalJSON() ([]byte, error) {
	if bt.noTrump {
		return json.Marshal("NoTrump")
	}
	return json.Marshal(map[string]Suit{"Trump": bt.trump})
}

// UnmarshalJSON implements json.Unmarshaler for BidType.
func (bt *BidType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "NoTrump" {
			return fmt.Errorf("invalid bid type: %s", s)
		}
		*bt = NoTrump()
		return nil
	}
	var tagged struct {
		Trump *Suit `json:"Trump"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	if tagged.Trump == nil {
		return fmt.Errorf("invalid bid type: %s", string(data))
	}
	*bt = Trump(*tagged.Trump)
	return nil
}

type bidKind int

const (
	bidPass bidKind = iota
	bidPlay
	bidDouble
	bidRedouble
)

// Bid is an auction call: Pass, Play(level, type), Double, or Redouble.
// The zero value is Pass.
type Bid struct {
	kind    bidKind
	level   int
	bidType BidType
}

// Pass returns a pass.
func Pass() Bid { return Bid{kind: bidPass} }

// Play returns a contract bid at the given level (1..7).
func Play(level int, bt BidType) Bid {
	return Bid{kind: bidPlay, level: level, bidType: bt}
}

// Double returns a double.
func Double() Bid { return Bid{kind: bidDouble} }

// Redouble returns a redouble.
func Redouble() Bid { return Bid{kind: bidRedouble} }

// IsPass reports whether the bid is a pass.
func (b Bid) IsPass() bool { return b.kind == bidPass }

// IsPlay reports whether the bid is a contract bid.
func (b Bid) IsPlay() bool { return b.kind == bidPlay }

// IsDouble reports whether the bid is a double.
func (b Bid) IsDouble() bool { return b.kind == bidDouble }

// IsRedouble reports whether the bid is a redouble.
func (b Bid) IsRedouble() bool { return b.kind == bidRedouble }

// Level returns the contract level of a Play bid, or 0 otherwise.
func (b Bid) Level() int { return b.level }

// Type returns the denomination of a Play bid; meaningful only when IsPlay.
func (b Bid) Type() BidType { return b.bidType }

// valid reports whether a Play bid has a legal level. Non-play bids are
// always well formed.
func (b Bid) valid() bool {
	return b.kind != bidPlay || (b.level >= 1 && b.level <= 7)
}

// Outbids reports whether b is a Play bid strictly greater than o under the
// lexicographic (level, denomination) order. o may be Pass, in which case any
// Play outbids it.
func (b Bid) Outbids(o Bid) bool {
	if !b.IsPlay() {
		return false
	}
	if !o.IsPlay() {
		return true
	}
	if b.level != o.level {
		return b.level > o.level
	}
	return b.bidType.order() > o.bidType.order()
}

func (b Bid) String() string {
	switch b.kind {
	case bidPlay:
		return fmt.Sprintf("%d %s", b.level, b.bidType)
	case bidDouble:
		return "Double"
	case bidRedouble:
		return "Redouble"
	default:
		return "Pass"
	}
}

// MarshalJSON implements json.Marshaler; the encoding is the externally
// tagged variant form, e.g. "Pass" or {"Play":[3,{"Trump":"Spades"}]}.
func (b Bid) MarshalJSON() ([]byte, error) {
	switch b.kind {
	case bidPlay:
		return json.Marshal(map[string][2]interface{}{
			"Play": {b.level, b.bidType},
		})
	case bidDouble:
		return json.Marshal("Double")
	case bidRedouble:
		return json.Marshal("Redouble")
	default:
		return json.Marshal("Pass")
	}
}

// UnmarshalJSON implements json.Unmarshaler for Bid.
func (b *Bid) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		switch s {
		case "Pass":
			*b = Pass()
		case "Double":
			*b = Double()
		case "Redouble":
			*b = Redouble()
		default:
			return fmt.Errorf("invalid bid: %s", s)
		}
		return nil
	}
	var tagged struct {
		Play *[]json.RawMessage `json:"Play"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return err
	}
	if tagged.Play == nil || len(*tagged.Play) != 2 {
		return fmt.Errorf("invalid bid: %s", string(data))
	}
	var level int
	if err := json.Unmarshal((*tagged.Play)[0], &level); err != nil {
		return err
	}
	var bt BidType
	if err := json.Unmarshal((*tagged.Play)[1], &bt); err != nil {
		return err
	}
	if level < 1 || level > 7 {
		return fmt.Errorf("invalid bid level: %d", level)
	}
	*b = Play(level, bt)
	return nil
}
