package server

import (
	"encoding/json"
	"fmt"

	"github.com/playbridge/bridged/pkg/bridge"
)

// Frame is the transport envelope: a named event with a JSON payload.
type Frame struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Client -> server event names.
const (
	EventLogin        = "login"
	EventListRooms    = "list_rooms"
	EventRegisterRoom = "register_room"
	EventJoinRoom     = "join_room"
	EventLeaveRoom    = "leave_room"
	EventListPlaces   = "list_places"
	EventSelectPlace  = "select_place"
	EventGetCards     = "get_cards"
	EventMakeBid      = "make_bid"
	EventMakeTrick    = "make_trick"
)

// Server -> client response event names.
const (
	EventLoginResponse        = "login_response"
	EventListRoomsResponse    = "list_rooms_response"
	EventRegisterRoomResponse = "register_room_response"
	EventJoinRoomResponse     = "join_room_response"
	EventLeaveRoomResponse    = "leave_room_response"
	EventListPlacesResponse   = "list_places_response"
	EventSelectPlaceResponse  = "select_place_response"
	EventGetCardsResponse     = "get_cards_response"
	EventMakeBidResponse      = "make_bid_response"
	EventMakeTrickResponse    = "make_trick_response"
)

// Response variant tags shared across the protocol.
const (
	TagOk                        = "Ok"
	TagUnauthenticated           = "Unauthenticated"
	TagUsernameAlreadyExists     = "UsernameAlreadyExists"
	TagUserAlreadyLoggedIn       = "UserAlreadyLoggedIn"
	TagUsernameInvalidCharacters = "UsernameInvalidCharacters"
	TagUsernameInvalidLength     = "UsernameInvalidLength"
	TagRoomIDAlreadyExists       = "RoomIdAlreadyExists"
	TagAlreadyInRoom             = "AlreadyInRoom"
	TagRoomNotFound              = "RoomNotFound"
	TagNotInRoom                 = "NotInRoom"
	TagPlaceAlreadyTaken         = "PlaceAlreadyTaken"
	TagSpectatorNotAllowed       = "SpectatorNotAllowed"
	TagNotYourTurn               = "NotYourTurn"
	TagAuctionNotInProcess       = "AuctionNotInProcess"
	TagInvalidBid                = "InvalidBid"
	TagTrickNotInProcess         = "TrickNotInProcess"
	TagInvalidCard               = "InvalidCard"
)

// Variant is an externally tagged enum value: unit variants encode as a bare
// string, data variants as a single-key object.
type Variant struct {
	Tag  string
	Data interface{}
}

// Unit returns a data-less variant.
func Unit(tag string) Variant { return Variant{Tag: tag} }

// Tagged returns a variant carrying data.
func Tagged(tag string, data interface{}) Variant { return Variant{Tag: tag, Data: data} }

// MarshalJSON implements json.Marshaler for Variant.
func (v Variant) MarshalJSON() ([]byte, error) {
	if v.Data == nil {
		return json.Marshal(v.Tag)
	}
	return json.Marshal(map[string]interface{}{v.Tag: v.Data})
}

// UnmarshalJSON implements json.Unmarshaler for Variant; data payloads are
// left as raw JSON.
func (v *Variant) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		v.Tag = s
		v.Data = nil
		return nil
	}
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	if len(m) != 1 {
		return fmt.Errorf("variant must have exactly one tag, got %d", len(m))
	}
	for tag, raw := range m {
		v.Tag = tag
		v.Data = raw
	}
	return nil
}

// UserInfo identifies a user on the wire.
type UserInfo struct {
	Username string `json:"username"`
}

// Visibility is a room's listing mode.
type Visibility int

const (
	Public Visibility = iota
	Private
)

func (v Visibility) String() string {
	if v == Private {
		return "Private"
	}
	return "Public"
}

// MarshalJSON implements json.Marshaler for Visibility.
func (v Visibility) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.String())
}

// UnmarshalJSON implements json.Unmarshaler for Visibility.
func (v *Visibility) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "Public":
		*v = Public
	case "Private":
		*v = Private
	default:
		return fmt.Errorf("invalid visibility: %s", s)
	}
	return nil
}

// RoomInfo is a room's identity and listing mode.
type RoomInfo struct {
	ID         string     `json:"id"`
	Visibility Visibility `json:"visibility"`
}

// Request payloads.

type LoginRequest struct {
	User UserInfo `json:"user"`
}

type RegisterRoomRequest struct {
	RoomInfo RoomInfo `json:"room_info"`
}

type JoinRoomRequest struct {
	RoomID string `json:"room_id"`
}

type SelectPlaceRequest struct {
	Position *bridge.Player `json:"position"`
}

type MakeBidRequest struct {
	Bid bridge.Bid `json:"bid"`
}

type MakeTrickRequest struct {
	Card bridge.Card `json:"card"`
}

// Response payloads with data.

type ListRoomsResponse struct {
	Rooms []string `json:"rooms"`
}

// GetCardsData is the Ok payload of get_cards_response.
type GetCardsData struct {
	Cards    []bridge.Card `json:"cards"`
	Position bridge.Player `json:"position"`
}
