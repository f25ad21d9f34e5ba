package server

import (
	"time"

	"github.com/playbridge/bridged/pkg/bridge"
)

// Room broadcast event names.
const (
	EventJoinRoomNtf        = "join_room_notification"
	EventLeaveRoomNtf       = "leave_room_notification"
	EventSelectPlaceNtf     = "select_place_notification"
	EventGameStartedNtf     = "game_started_notification"
	EventMakeBidNtf         = "make_bid_notification"
	EventAskBidNtf          = "ask_bid_notification"
	EventAuctionFinishedNtf = "auction_finished_notification"
	EventAskTrickNtf        = "ask_trick_notification"
	EventMakeTrickNtf       = "make_trick_notification"
	EventTrickFinishedNtf   = "trick_finished_notification"
	EventDummyCardsNtf      = "dummy_cards_notification"
	EventDealFinishedNtf    = "deal_finished_notification"
	EventGameFinishedNtf    = "game_finished_notification"
)

// Notification is one queued room broadcast. Delay is how long the emitter
// waits before sending it, relative to the previous notification in the
// batch; it is never serialized.
type Notification struct {
	Delay   time.Duration
	Event   string
	Payload interface{}
}

type joinRoomNtf struct {
	User UserInfo `json:"user"`
}

type leaveRoomNtf struct {
	User UserInfo `json:"user"`
}

type selectPlaceNtf struct {
	User     UserInfo       `json:"user"`
	Position *bridge.Player `json:"position"`
}

type gameStartedNtf struct {
	StartPosition  bridge.Player `json:"start_position"`
	PlayerPosition [4]*UserInfo  `json:"player_position"`
}

type makeBidNtf struct {
	Player bridge.Player `json:"player"`
	Bid    bridge.Bid    `json:"bid"`
}

type askBidNtf struct {
	Player bridge.Player `json:"player"`
	MaxBid bridge.Bid    `json:"max_bid"`
}

type auctionWinner struct {
	Winner    bridge.Player    `json:"winner"`
	MaxBid    bridge.Bid       `json:"max_bid"`
	GameValue bridge.GameValue `json:"game_value"`
}

type askTrickNtf struct {
	Player bridge.Player `json:"player"`
	Cards  []bridge.Card `json:"cards"`
}

type makeTrickNtf struct {
	Player bridge.Player `json:"player"`
	Card   bridge.Card   `json:"card"`
}

type trickFinishedNtf struct {
	Taker bridge.Player `json:"taker"`
	Cards []bridge.Card `json:"cards"`
}

type dummyCardsNtf struct {
	Cards []bridge.Card `json:"cards"`
	Dummy bridge.Player `json:"dummy"`
}

type gameFinishedNtf struct {
	Result interface{} `json:"result"`
}

func notifyJoinRoom(name string) Notification {
	return Notification{Event: EventJoinRoomNtf, Payload: joinRoomNtf{User: UserInfo{Username: name}}}
}

func notifyLeaveRoom(name string) Notification {
	return Notification{Event: EventLeaveRoomNtf, Payload: leaveRoomNtf{User: UserInfo{Username: name}}}
}

func notifySelectPlace(name string, pos *bridge.Player) Notification {
	return Notification{Event: EventSelectPlaceNtf, Payload: selectPlaceNtf{User: UserInfo{Username: name}, Position: pos}}
}

func notifyGameStarted(start bridge.Player, seats [4]*UserInfo) Notification {
	return Notification{Event: EventGameStartedNtf, Payload: gameStartedNtf{StartPosition: start, PlayerPosition: seats}}
}

func notifyMakeBid(player bridge.Player, bid bridge.Bid) Notification {
	return Notification{Event: EventMakeBidNtf, Payload: makeBidNtf{Player: player, Bid: bid}}
}

func notifyAskBid(player bridge.Player, maxBid bridge.Bid) Notification {
	return Notification{Event: EventAskBidNtf, Payload: askBidNtf{Player: player, MaxBid: maxBid}}
}

func notifyAuctionNoWinner(delay time.Duration) Notification {
	return Notification{Delay: delay, Event: EventAuctionFinishedNtf, Payload: Unit("NoWinner")}
}

func notifyAuctionWinner(delay time.Duration, winner bridge.Player, maxBid bridge.Bid, gv bridge.GameValue) Notification {
	return Notification{
		Delay: delay,
		Event: EventAuctionFinishedNtf,
		Payload: Tagged("Winner", auctionWinner{
			Winner:    winner,
			MaxBid:    maxBid,
			GameValue: gv,
		}),
	}
}

func notifyAskTrick(player bridge.Player, trick []bridge.Card) Notification {
	if trick == nil {
		trick = []bridge.Card{}
	}
	return Notification{Event: EventAskTrickNtf, Payload: askTrickNtf{Player: player, Cards: trick}}
}

func notifyMakeTrick(player bridge.Player, card bridge.Card) Notification {
	return Notification{Event: EventMakeTrickNtf, Payload: makeTrickNtf{Player: player, Card: card}}
}

func notifyTrickFinished(delay time.Duration, taker bridge.Player, cards []bridge.Card) Notification {
	return Notification{Delay: delay, Event: EventTrickFinishedNtf, Payload: trickFinishedNtf{Taker: taker, Cards: cards}}
}

func notifyDummyCards(dummy bridge.Player, cards []bridge.Card) Notification {
	return Notification{Event: EventDummyCardsNtf, Payload: dummyCardsNtf{Cards: cards, Dummy: dummy}}
}

func notifyDealFinished(delay time.Duration, res bridge.DealResult) Notification {
	return Notification{Delay: delay, Event: EventDealFinishedNtf, Payload: res}
}

func notifyGameFinished() Notification {
	return Notification{Event: EventGameFinishedNtf, Payload: gameFinishedNtf{}}
}
