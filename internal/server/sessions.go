package server

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/mysteryserved/tourquest/internal/play"
	"github.com/mysteryserved/tourquest/internal/tourquest"
)

var errNoSession = errors.New("no valid session")

// playSession binds a runner to the tour it was opened for. Sessions are
// in-memory only: restarting the process drops every run in progress,
// which matches the no-resume contract of the player.
type playSession struct {
	Token     string
	Tour      tourquest.Tour
	Runner    *play.Runner
	CreatedAt time.Time

	mu sync.Mutex
}

// SessionRegistry holds all live play sessions.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*playSession
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*playSession),
	}
}

// Create opens a session for a tour and returns its opaque token.
func (sr *SessionRegistry) Create(tour tourquest.Tour, stops []tourquest.Stop, broker *Broker) (*playSession, error) {
	token := newToken()

	runner, err := play.NewRunner(stops, play.WithObserver(func(ev play.Event) {
		broker.Publish(token, ev)
	}))
	if err != nil {
		return nil, err
	}

	sess := &playSession{
		Token:     token,
		Tour:      tour,
		Runner:    runner,
		CreatedAt: time.Now().UTC(),
	}

	sr.mu.Lock()
	sr.sessions[token] = sess
	sr.mu.Unlock()
	return sess, nil
}

// Get looks up a session by token.
func (sr *SessionRegistry) Get(token string) (*playSession, error) {
	sr.mu.RLock()
	defer sr.mu.RUnlock()

	sess, ok := sr.sessions[token]
	if !ok {
		return nil, errNoSession
	}
	return sess, nil
}

func newToken() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// sessionFromRequest resolves the play session from a Bearer token or,
// for EventSource and websocket clients that cannot set headers, the
// token query parameter.
func sessionFromRequest(r *http.Request, sessions *SessionRegistry) (*playSession, error) {
	auth := r.Header.Get("Authorization")
	token, found := strings.CutPrefix(auth, "Bearer ")
	if !found || token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return nil, errNoSession
	}
	return sessions.Get(token)
}
