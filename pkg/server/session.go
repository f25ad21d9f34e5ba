package server

import (
	"encoding/json"
	"errors"
	"regexp"

	"github.com/playbridge/bridged/pkg/bridge"
	"github.com/playbridge/bridged/pkg/utils"
)

const (
	usernameMinLen = 3
	usernameMaxLen = 20
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// dispatch routes one inbound frame to its handler. Every handler follows
// the same contract: authenticate, validate preconditions (replying with an
// error variant without mutating), then take the room's write lock, apply
// the core operation, queue the resulting notifications, and unicast the
// response. Malformed payloads are answered with the nearest error variant.
func (c *Client) dispatch(frame Frame) {
	switch frame.Event {
	case EventLogin:
		c.handleLogin(frame.Payload)
	case EventListRooms:
		c.handleListRooms()
	case EventRegisterRoom:
		c.handleRegisterRoom(frame.Payload)
	case EventJoinRoom:
		c.handleJoinRoom(frame.Payload)
	case EventLeaveRoom:
		c.handleLeaveRoom()
	case EventListPlaces:
		c.handleListPlaces()
	case EventSelectPlace:
		c.handleSelectPlace(frame.Payload)
	case EventGetCards:
		c.handleGetCards()
	case EventMakeBid:
		c.handleMakeBid(frame.Payload)
	case EventMakeTrick:
		c.handleMakeTrick(frame.Payload)
	default:
		c.log.Warnf("unknown event %q", frame.Event)
	}
}

// requireUser replies Unauthenticated on respEvent when the socket has not
// logged in.
func (c *Client) requireUser(respEvent string) bool {
	if c.user == nil {
		c.sendEvent(respEvent, Unit(TagUnauthenticated))
		return false
	}
	return true
}

// currentRoom resolves the socket's room, replying NotInRoom when it has
// none or the room was already removed.
func (c *Client) currentRoom(respEvent string) (*Room, bool) {
	if c.roomID == "" {
		c.sendEvent(respEvent, Unit(TagNotInRoom))
		return nil, false
	}
	room, ok := c.srv.getRoom(c.roomID)
	if !ok {
		// The match ended and took the room with it.
		c.roomID = ""
		c.sendEvent(respEvent, Unit(TagNotInRoom))
		return nil, false
	}
	return room, true
}

func (c *Client) handleLogin(payload json.RawMessage) {
	if c.user != nil {
		c.sendEvent(EventLoginResponse, Unit(TagUserAlreadyLoggedIn))
		return
	}
	var req LoginRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.log.Warnf("login: bad payload: %v", err)
		c.sendEvent(EventLoginResponse, Unit(TagUsernameInvalidCharacters))
		return
	}
	name := req.User.Username
	if len(name) < usernameMinLen || len(name) > usernameMaxLen {
		c.sendEvent(EventLoginResponse, Unit(TagUsernameInvalidLength))
		return
	}
	if !usernamePattern.MatchString(name) {
		c.sendEvent(EventLoginResponse, Unit(TagUsernameInvalidCharacters))
		return
	}
	u, err := c.srv.registerUser(name)
	if err != nil {
		c.sendEvent(EventLoginResponse, Unit(TagUsernameAlreadyExists))
		return
	}
	c.user = u
	c.log.Infof("user %s logged in", name)
	c.sendEvent(EventLoginResponse, Unit(TagOk))
}

func (c *Client) handleListRooms() {
	c.sendEvent(EventListRoomsResponse, ListRoomsResponse{Rooms: c.srv.listPublicRooms()})
}

func (c *Client) handleRegisterRoom(payload json.RawMessage) {
	if !c.requireUser(EventRegisterRoomResponse) {
		return
	}
	var req RegisterRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.log.Warnf("register_room: bad payload: %v", err)
		c.sendEvent(EventRegisterRoomResponse, Unit(TagRoomIDAlreadyExists))
		return
	}
	// The empty id is the sessions' "no room" state and can never name a
	// joinable room.
	if req.RoomInfo.ID == "" {
		c.sendEvent(EventRegisterRoomResponse, Unit(TagRoomIDAlreadyExists))
		return
	}
	if _, err := c.srv.registerRoom(req.RoomInfo); err != nil {
		c.sendEvent(EventRegisterRoomResponse, Unit(TagRoomIDAlreadyExists))
		return
	}
	c.log.Infof("user %s registered room %s (%s)", c.user.Name, req.RoomInfo.ID, req.RoomInfo.Visibility)
	c.sendEvent(EventRegisterRoomResponse, Unit(TagOk))
}

func (c *Client) handleJoinRoom(payload json.RawMessage) {
	if !c.requireUser(EventJoinRoomResponse) {
		return
	}
	if c.roomID != "" {
		c.sendEvent(EventJoinRoomResponse, Unit(TagAlreadyInRoom))
		return
	}
	var req JoinRoomRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.log.Warnf("join_room: bad payload: %v", err)
		c.sendEvent(EventJoinRoomResponse, Unit(TagRoomNotFound))
		return
	}
	room, ok := c.srv.getRoom(req.RoomID)
	if !ok {
		c.sendEvent(EventJoinRoomResponse, Unit(TagRoomNotFound))
		return
	}

	room.mu.Lock()
	room.addMember(c)
	c.roomID = req.RoomID
	// Reply before the replay is queued so the response reaches the
	// client's queue first; sends never block, so replying under the lock
	// is safe.
	c.sendEvent(EventJoinRoomResponse, Unit(TagOk))
	// The catch-up goes through the emitter, addressed to the joiner
	// alone: queued under the lock, it cannot be overtaken by a broadcast
	// queued after the join.
	room.queueTo(c, room.replaySnapshot())
	room.queue([]Notification{notifyJoinRoom(c.user.Name)})
	room.mu.Unlock()
}

func (c *Client) handleLeaveRoom() {
	if !c.requireUser(EventLeaveRoomResponse) {
		return
	}
	room, ok := c.currentRoom(EventLeaveRoomResponse)
	if !ok {
		return
	}
	c.leaveRoom(room)
	c.sendEvent(EventLeaveRoomResponse, Unit(TagOk))
}

// leaveRoom runs the shared departure sequence: vacate the seat while seats
// are still reassignable, drop membership, notify the rest of the room, and
// remove the room when it empties.
func (c *Client) leaveRoom(room *Room) {
	room.mu.Lock()
	if room.deal.State() == bridge.WaitingForPlayers {
		room.vacateSeat(c.user)
	}
	room.removeMember(c.user.Name)
	room.queue([]Notification{notifyLeaveRoom(c.user.Name)})
	empty := room.isEmpty()
	room.mu.Unlock()

	roomID := c.roomID
	c.roomID = ""
	if empty {
		c.srv.removeRoom(roomID)
	}
}

func (c *Client) handleListPlaces() {
	if !c.requireUser(EventListPlacesResponse) {
		return
	}
	room, ok := c.currentRoom(EventListPlacesResponse)
	if !ok {
		return
	}
	room.mu.RLock()
	seats := room.seatInfos()
	room.mu.RUnlock()
	c.sendEvent(EventListPlacesResponse, Tagged(TagOk, seats))
}

func (c *Client) handleSelectPlace(payload json.RawMessage) {
	if !c.requireUser(EventSelectPlaceResponse) {
		return
	}
	room, ok := c.currentRoom(EventSelectPlaceResponse)
	if !ok {
		return
	}
	var req SelectPlaceRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.log.Warnf("select_place: bad payload: %v", err)
		c.sendEvent(EventSelectPlaceResponse, Unit(TagPlaceAlreadyTaken))
		return
	}

	room.mu.Lock()
	// Seats are frozen once a deal is under way.
	if room.deal.State() != bridge.WaitingForPlayers {
		room.mu.Unlock()
		c.sendEvent(EventSelectPlaceResponse, Unit(TagPlaceAlreadyTaken))
		return
	}
	if req.Position != nil {
		if !room.takeSeat(c.user, *req.Position) {
			room.mu.Unlock()
			c.sendEvent(EventSelectPlaceResponse, Unit(TagPlaceAlreadyTaken))
			return
		}
	} else {
		room.vacateSeat(c.user)
	}
	ns := []Notification{notifySelectPlace(c.user.Name, req.Position)}
	if room.allSeated() {
		ns = append(ns, room.startDeal()...)
	}
	room.queue(ns)
	room.mu.Unlock()

	c.sendEvent(EventSelectPlaceResponse, Unit(TagOk))
}

func (c *Client) handleGetCards() {
	if !c.requireUser(EventGetCardsResponse) {
		return
	}
	room, ok := c.currentRoom(EventGetCardsResponse)
	if !ok {
		return
	}
	room.mu.RLock()
	seat, seated := room.seatOf(c.user)
	var cards []bridge.Card
	if seated {
		cards = room.deal.Cards(seat)
	}
	room.mu.RUnlock()
	if !seated {
		c.sendEvent(EventGetCardsResponse, Unit(TagSpectatorNotAllowed))
		return
	}
	c.sendEvent(EventGetCardsResponse, Tagged(TagOk, GetCardsData{Cards: cards, Position: seat}))
}

func (c *Client) handleMakeBid(payload json.RawMessage) {
	if !c.requireUser(EventMakeBidResponse) {
		return
	}
	room, ok := c.currentRoom(EventMakeBidResponse)
	if !ok {
		return
	}
	var req MakeBidRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.sendEvent(EventMakeBidResponse, Unit(TagInvalidBid))
		return
	}

	room.mu.Lock()
	seat, seated := room.seatOf(c.user)
	if !seated {
		room.mu.Unlock()
		c.sendEvent(EventMakeBidResponse, Unit(TagSpectatorNotAllowed))
		return
	}
	status, err := room.deal.PlaceBid(seat, req.Bid)
	if err != nil {
		room.mu.Unlock()
		c.sendEvent(EventMakeBidResponse, bidError(err))
		return
	}

	finished := false
	ns := []Notification{notifyMakeBid(seat, req.Bid)}
	switch status {
	case bridge.BidStatusAuction:
		ns = append(ns, notifyAskBid(room.deal.CurrentPlayer(), room.deal.MaxBid()))
	case bridge.BidStatusTricking:
		ns = append(ns,
			notifyAuctionWinner(room.pacing, room.deal.MaxBidder(), room.deal.MaxBid(), room.deal.GameValue()),
			notifyAskTrick(room.deal.CurrentPlayer(), room.deal.CurrentTrick()),
		)
	case bridge.BidStatusFinished:
		// Four opening passes: no contract, nothing to score.
		ns = append(ns, notifyAuctionNoWinner(room.pacing), notifyGameFinished())
		finished = true
	}
	room.appendReplay(ns)
	room.queue(ns)
	room.mu.Unlock()

	c.sendEvent(EventMakeBidResponse, Unit(TagOk))
	if finished {
		c.srv.removeRoom(c.roomID)
	}
}

func (c *Client) handleMakeTrick(payload json.RawMessage) {
	if !c.requireUser(EventMakeTrickResponse) {
		return
	}
	room, ok := c.currentRoom(EventMakeTrickResponse)
	if !ok {
		return
	}
	var req MakeTrickRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.sendEvent(EventMakeTrickResponse, Unit(TagInvalidCard))
		return
	}

	room.mu.Lock()
	seat, seated := room.seatOf(c.user)
	if !seated {
		room.mu.Unlock()
		c.sendEvent(EventMakeTrickResponse, Unit(TagSpectatorNotAllowed))
		return
	}

	// The declarer plays dummy's cards: when it is dummy's turn, a request
	// from the declarer is re-seated to dummy, while dummy's own requests
	// are turned away.
	target := seat
	if dummy, hasDummy := room.deal.DummyPlayer(); hasDummy && room.deal.State() == bridge.Tricking &&
		room.deal.CurrentPlayer() == dummy {
		declarer, _ := room.deal.Declarer()
		switch seat {
		case declarer:
			target = dummy
		case dummy:
			room.mu.Unlock()
			c.sendEvent(EventMakeTrickResponse, Unit(TagNotYourTurn))
			return
		}
	}

	status, trick, err := room.deal.Trick(target, req.Card)
	if err != nil {
		room.mu.Unlock()
		c.sendEvent(EventMakeTrickResponse, trickError(err))
		return
	}

	finished := false
	restarted := false
	ns := []Notification{notifyMakeTrick(target, req.Card)}
	if room.deal.TrickNo() == 0 && len(room.deal.CurrentTrick()) == 1 {
		// Opening lead: dummy's hand goes face up.
		if cards, shown := room.deal.DummyCards(); shown {
			dummy, _ := room.deal.DummyPlayer()
			c.log.Debugf("room %s: dummy %s shows %s", room.info.ID, dummy, utils.FormatCards(cards))
			ns = append(ns, notifyDummyCards(dummy, cards))
		}
	}
	switch status {
	case bridge.TrickFinished:
		ns = append(ns, notifyTrickFinished(room.pacing, trick.Taker, trick.Cards))
	case bridge.TrickDealFinished:
		ns = append(ns, notifyTrickFinished(room.pacing, trick.Taker, trick.Cards))
		if res, done := room.deal.Evaluate(); done {
			dealRes := room.match.ApplyDeal(res)
			ns = append(ns, notifyDealFinished(room.pacing, dealRes))
			if dealRes.IsGameFinished {
				ns = append(ns, notifyGameFinished())
				finished = true
			} else {
				// Next deal of the rubber; startDeal resets the replay log.
				ns = append(ns, room.startDeal()...)
				restarted = true
			}
		}
	}
	if room.deal.State() == bridge.Tricking {
		ns = append(ns, notifyAskTrick(room.deal.CurrentPlayer(), room.deal.CurrentTrick()))
	}
	if !restarted {
		room.appendReplay(ns)
	}
	room.queue(ns)
	room.mu.Unlock()

	c.sendEvent(EventMakeTrickResponse, Unit(TagOk))
	if finished {
		c.srv.removeRoom(c.roomID)
	}
}

func bidError(err error) Variant {
	switch {
	case errors.Is(err, bridge.ErrGameStateMismatch):
		return Unit(TagAuctionNotInProcess)
	case errors.Is(err, bridge.ErrPlayerOutOfTurn):
		return Unit(TagNotYourTurn)
	default:
		return Unit(TagInvalidBid)
	}
}

func trickError(err error) Variant {
	switch {
	case errors.Is(err, bridge.ErrGameStateMismatch):
		return Unit(TagTrickNotInProcess)
	case errors.Is(err, bridge.ErrPlayerOutOfTurn):
		return Unit(TagNotYourTurn)
	default:
		return Unit(TagInvalidCard)
	}
}

// handleDisconnect runs when the read loop exits: the user leaves their
// room and releases the nickname.
func (s *Server) handleDisconnect(c *Client) {
	if c.user == nil {
		return
	}
	if c.roomID != "" {
		if room, ok := s.getRoom(c.roomID); ok {
			c.leaveRoom(room)
		}
	}
	s.unregisterUser(c.user.Name)
	s.log.Infof("user %s disconnected", c.user.Name)
}
