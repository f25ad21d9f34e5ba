package server

import (
	"errors"
	"math/rand"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/gorilla/websocket"
	"github.com/vctt94/bisonbotkit/logging"
)

// DefaultPacingDelay spaces out auction and trick resolution broadcasts so
// players can follow the table.
const DefaultPacingDelay = 2 * time.Second

var (
	errUsernameTaken = errors.New("username already registered")
	errRoomExists    = errors.New("room id already registered")
)

// User is a logged-in nickname. Identity is the pointer: a seat holds the
// same *User that the registry does, so reuse of a nickname after
// disconnect never aliases an old seat.
type User struct {
	Name string
}

// Config holds the server's construction parameters.
type Config struct {
	LogBackend *logging.LogBackend
	// PacingDelay spaces out staged broadcasts. Zero sends them
	// back to back, which tests rely on.
	PacingDelay time.Duration
	// Seed makes room shuffles deterministic when non-zero.
	Seed int64
}

// Server owns the process-wide user and room registries.
type Server struct {
	log        slog.Logger
	roomLog    slog.Logger
	wsLog      slog.Logger
	logBackend *logging.LogBackend
	pacing     time.Duration
	seed       int64

	mu    sync.RWMutex
	users map[string]*User
	rooms map[string]*Room

	upgrader websocket.Upgrader
}

// NewServer builds a server from cfg. A nil LogBackend disables logging.
func NewServer(cfg Config) *Server {
	var srvLog, roomLog, wsLog slog.Logger = slog.Disabled, slog.Disabled, slog.Disabled
	if cfg.LogBackend != nil {
		srvLog = cfg.LogBackend.Logger("SRVR")
		roomLog = cfg.LogBackend.Logger("ROOM")
		wsLog = cfg.LogBackend.Logger("WS")
	}
	pacing := cfg.PacingDelay
	if pacing < 0 {
		pacing = 0
	}
	return &Server{
		log:        srvLog,
		roomLog:    roomLog,
		wsLog:      wsLog,
		logBackend: cfg.LogBackend,
		pacing:     pacing,
		seed:       cfg.Seed,
		users:      make(map[string]*User),
		rooms:      make(map[string]*Room),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The protocol authenticates by nickname, not origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// ServeHTTP upgrades the request to a websocket and runs the session until
// the peer disconnects.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnf("upgrade %s: %v", r.RemoteAddr, err)
		return
	}
	s.log.Debugf("client connected: %s", conn.RemoteAddr())
	newClient(s, conn).run()
}

// Shutdown closes every room's notification emitter.
func (s *Server) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, room := range s.rooms {
		room.close()
		delete(s.rooms, id)
	}
}

func (s *Server) newRng() *rand.Rand {
	if s.seed != 0 {
		return rand.New(rand.NewSource(s.seed))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// registerUser interns the nickname. Uniqueness is process-wide.
func (s *Server) registerUser(name string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[name]; ok {
		return nil, errUsernameTaken
	}
	u := &User{Name: name}
	s.users[name] = u
	return u, nil
}

func (s *Server) unregisterUser(name string) {
	s.mu.Lock()
	delete(s.users, name)
	s.mu.Unlock()
}

func (s *Server) registerRoom(info RoomInfo) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rooms[info.ID]; ok {
		return nil, errRoomExists
	}
	room := newRoom(info, s.roomLog, s.pacing, s.newRng())
	s.rooms[info.ID] = room
	return room, nil
}

func (s *Server) getRoom(id string) (*Room, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	room, ok := s.rooms[id]
	return room, ok
}

// removeRoom drops the room from the registry and stops its emitter. It is
// a no-op when the id was already removed.
func (s *Server) removeRoom(id string) {
	s.mu.Lock()
	room, ok := s.rooms[id]
	if ok {
		delete(s.rooms, id)
	}
	s.mu.Unlock()
	if ok {
		room.close()
		s.log.Infof("room %s removed", id)
	}
}

// listPublicRooms returns the ids of rooms listed as Public, sorted for a
// stable wire ordering.
func (s *Server) listPublicRooms() []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.rooms))
	for id, room := range s.rooms {
		if room.info.Visibility == Public {
			ids = append(ids, id)
		}
	}
	s.mu.RUnlock()
	sort.Strings(ids)
	return ids
}
