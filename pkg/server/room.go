package server

import (
	"math/rand"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/playbridge/bridged/pkg/bridge"
)

const notifyQueueSize = 64

// Room is one table: its members, seat map, and the deal and match in
// progress. mu guards every field below it. Handlers hold the write lock
// across a full validate-mutate-queue cycle; the emitter goroutine then
// applies pacing delays and fans each notification out, so every member
// observes the same order and no lock is ever held across a sleep.
type Room struct {
	info   RoomInfo
	log    slog.Logger
	pacing time.Duration

	notifyCh chan notifyBatch
	quit     chan struct{}
	once     sync.Once

	mu      sync.RWMutex
	members map[string]*Client
	seats   [4]*User
	deal    *bridge.Deal
	match   *bridge.Match
	replay  []Notification
}

func newRoom(info RoomInfo, log slog.Logger, pacing time.Duration, rng *rand.Rand) *Room {
	r := &Room{
		info:     info,
		log:      log,
		pacing:   pacing,
		notifyCh: make(chan notifyBatch, notifyQueueSize),
		quit:     make(chan struct{}),
		members:  make(map[string]*Client),
		deal:     bridge.NewDeal(rng),
	}
	go r.runEmitter()
	return r
}

// close stops the emitter after it drains anything already queued.
func (r *Room) close() {
	r.once.Do(func() { close(r.quit) })
}

// notifyBatch pins the recipient set at queue time, so a member who joins
// while an earlier batch waits out its pacing delay does not see it twice:
// everything queued before the join is covered by the replay log instead.
type notifyBatch struct {
	recipients []*Client
	ns         []Notification
}

// queue hands a batch to the emitter, capturing the current membership as
// its recipients. Requires r.mu held. Best-effort: a full queue drops the
// batch rather than blocking a handler.
func (r *Room) queue(ns []Notification) {
	if len(ns) == 0 {
		return
	}
	recipients := make([]*Client, 0, len(r.members))
	for _, c := range r.members {
		recipients = append(recipients, c)
	}
	select {
	case r.notifyCh <- notifyBatch{recipients: recipients, ns: ns}:
	default:
		r.log.Warnf("room %s: notification queue full, dropped %d events", r.info.ID, len(ns))
	}
}

// queueTo hands a batch addressed to a single member to the emitter. Queued
// under r.mu like every broadcast, so the one emitter serializes it against
// them. Requires r.mu held.
func (r *Room) queueTo(c *Client, ns []Notification) {
	if len(ns) == 0 {
		return
	}
	select {
	case r.notifyCh <- notifyBatch{recipients: []*Client{c}, ns: ns}:
	default:
		r.log.Warnf("room %s: notification queue full, dropped %d events", r.info.ID, len(ns))
	}
}

func (r *Room) runEmitter() {
	for {
		select {
		case batch := <-r.notifyCh:
			r.emit(batch)
		case <-r.quit:
			// Drain whatever was queued before the room closed.
			for {
				select {
				case batch := <-r.notifyCh:
					r.emit(batch)
				default:
					return
				}
			}
		}
	}
}

func (r *Room) emit(batch notifyBatch) {
	for _, n := range batch.ns {
		if n.Delay > 0 {
			time.Sleep(n.Delay)
		}
		for _, c := range batch.recipients {
			c.sendEvent(n.Event, n.Payload)
		}
	}
}

// The methods below require r.mu to be held by the caller.

func (r *Room) addMember(c *Client) {
	r.members[c.user.Name] = c
}

func (r *Room) removeMember(name string) bool {
	if _, ok := r.members[name]; !ok {
		return false
	}
	delete(r.members, name)
	return true
}

func (r *Room) isEmpty() bool { return len(r.members) == 0 }

// seatOf returns the seat the user occupies, if any.
func (r *Room) seatOf(u *User) (bridge.Player, bool) {
	for i, s := range r.seats {
		if s == u && s != nil {
			return bridge.Player(i), true
		}
	}
	return 0, false
}

func (r *Room) seatInfos() [4]*UserInfo {
	var out [4]*UserInfo
	for i, s := range r.seats {
		if s != nil {
			out[i] = &UserInfo{Username: s.Name}
		}
	}
	return out
}

// takeSeat assigns the seat to the user if it is free, moving the user out
// of any seat held before. Reports whether the assignment happened.
func (r *Room) takeSeat(u *User, p bridge.Player) bool {
	if r.seats[p] != nil && r.seats[p] != u {
		return false
	}
	r.vacateSeat(u)
	r.seats[p] = u
	return true
}

func (r *Room) vacateSeat(u *User) {
	for i, s := range r.seats {
		if s == u {
			r.seats[i] = nil
		}
	}
}

func (r *Room) allSeated() bool {
	for _, s := range r.seats {
		if s == nil {
			return false
		}
	}
	return true
}

// startDeal shuffles a fresh deal and returns the opening notifications. The
// match is created on the first deal and carried across subsequent ones.
func (r *Room) startDeal() []Notification {
	if r.match == nil {
		r.match = bridge.NewMatch()
	}
	bidder := r.match.NextDealBidder()
	if err := r.deal.Start(bidder); err != nil {
		r.log.Errorf("room %s: start deal: %v", r.info.ID, err)
		return nil
	}
	ns := []Notification{
		notifyGameStarted(bidder, r.seatInfos()),
		notifyAskBid(bidder, bridge.Pass()),
	}
	// A fresh deal resets the replay log, bounding it to one deal's history.
	r.replay = append([]Notification(nil), ns...)
	return ns
}

// appendReplay records broadcast notifications for late joiners. Pacing
// delays are not replayed.
func (r *Room) appendReplay(ns []Notification) {
	for _, n := range ns {
		n.Delay = 0
		r.replay = append(r.replay, n)
	}
}

func (r *Room) replaySnapshot() []Notification {
	return append([]Notification(nil), r.replay...)
}
