package game

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/gamehall/backend/internal/store"
)

// fakeStore is an in-memory store.Store with injectable failures. Mutations
// made through a settlement transaction only become visible on Commit.
type fakeStore struct {
	mu        sync.Mutex
	nextID    int
	sessions  map[int]*fakeSession
	ratings   map[int]int
	stats     map[int]map[store.StatKind]int
	usernames map[int]string

	failCreate bool
	failOn     string // name of the SettleTx op that should error
}

type fakeSession struct {
	playerA  int
	playerB  int
	gameType int
	finished bool
	draw     bool
	winner   *int
	loser    *int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:    1,
		sessions:  make(map[int]*fakeSession),
		ratings:   make(map[int]int),
		stats:     make(map[int]map[store.StatKind]int),
		usernames: make(map[int]string),
	}
}

func (s *fakeStore) CreateSession(ctx context.Context, playerA, playerB, gameType int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failCreate {
		return 0, errors.New("store unavailable")
	}
	id := s.nextID
	s.nextID++
	s.sessions[id] = &fakeSession{playerA: playerA, playerB: playerB, gameType: gameType}
	return id, nil
}

func (s *fakeStore) Username(ctx context.Context, playerID int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if name, ok := s.usernames[playerID]; ok {
		return name, nil
	}
	return "unknown", nil
}

func (s *fakeStore) BeginSettle(ctx context.Context) (store.SettleTx, error) {
	return &fakeTx{s: s}, nil
}

func (s *fakeStore) rating(playerID int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.ratings[playerID]; ok {
		return r
	}
	return 1000
}

func (s *fakeStore) stat(playerID int, kind store.StatKind) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats[playerID][kind]
}

// fakeTx buffers mutations and applies them atomically on Commit. Reads see
// committed state only, which matches how settlement uses the transaction.
type fakeTx struct {
	s         *fakeStore
	pending   []func()
	committed bool
}

func (t *fakeTx) fail(op string) error {
	if t.s.failOn == op {
		return fmt.Errorf("injected %s failure", op)
	}
	return nil
}

func (t *fakeTx) Session(ctx context.Context, sessionID int) (store.Session, error) {
	if err := t.fail("Session"); err != nil {
		return store.Session{}, err
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	sess, ok := t.s.sessions[sessionID]
	if !ok {
		return store.Session{}, fmt.Errorf("session %d: %w", sessionID, store.ErrSessionNotFound)
	}
	return store.Session{
		PlayerA:  sess.playerA,
		PlayerB:  sess.playerB,
		Finished: sess.finished,
		Draw:     sess.draw,
	}, nil
}

func (t *fakeTx) Rating(ctx context.Context, playerID int) (int, error) {
	if err := t.fail("Rating"); err != nil {
		return 0, err
	}
	return t.s.rating(playerID), nil
}

func (t *fakeTx) SetRating(ctx context.Context, playerID, newRating int) error {
	if err := t.fail("SetRating"); err != nil {
		return err
	}
	t.pending = append(t.pending, func() {
		t.s.ratings[playerID] = newRating
	})
	return nil
}

func (t *fakeTx) IncrementStat(ctx context.Context, playerID int, kind store.StatKind) error {
	if err := t.fail("IncrementStat"); err != nil {
		return err
	}
	t.pending = append(t.pending, func() {
		if t.s.stats[playerID] == nil {
			t.s.stats[playerID] = make(map[store.StatKind]int)
		}
		t.s.stats[playerID][kind]++
	})
	return nil
}

func (t *fakeTx) MarkFinished(ctx context.Context, sessionID int, winner, loser *int, draw bool) error {
	if err := t.fail("MarkFinished"); err != nil {
		return err
	}
	t.pending = append(t.pending, func() {
		if sess, ok := t.s.sessions[sessionID]; ok {
			sess.finished = true
			sess.draw = draw
			sess.winner = winner
			sess.loser = loser
		}
	})
	return nil
}

func (t *fakeTx) Username(ctx context.Context, playerID int) (string, error) {
	if err := t.fail("Username"); err != nil {
		return "", err
	}
	return t.s.Username(ctx, playerID)
}

func (t *fakeTx) Commit() error {
	if err := t.fail("Commit"); err != nil {
		return err
	}
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, apply := range t.pending {
		apply()
	}
	t.pending = nil
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback() error {
	if !t.committed {
		t.pending = nil
	}
	return nil
}

// fakePublisher records every notification.
type fakePublisher struct {
	mu        sync.Mutex
	toPlayer  map[int][]interface{}
	toSession map[int][]interface{}
}

func newFakePublisher() *fakePublisher {
	return &fakePublisher{
		toPlayer:  make(map[int][]interface{}),
		toSession: make(map[int][]interface{}),
	}
}

func (p *fakePublisher) ToPlayer(ctx context.Context, playerID int, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.toPlayer[playerID] = append(p.toPlayer[playerID], payload)
	return nil
}

func (p *fakePublisher) ToSession(ctx context.Context, sessionID int, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.toSession[sessionID] = append(p.toSession[sessionID], payload)
	return nil
}

func (p *fakePublisher) playerMessages(playerID int) []interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]interface{}(nil), p.toPlayer[playerID]...)
}

func (p *fakePublisher) sessionMessages(sessionID int) []interface{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]interface{}(nil), p.toSession[sessionID]...)
}
