package game

import (
	"context"
	"sync"
	"testing"

	"github.com/gamehall/backend/internal/bus"
)

func newTestCoordinator() (*Coordinator, *fakeStore, *fakePublisher) {
	fs := newFakeStore()
	fp := newFakePublisher()
	return NewCoordinator(fs, fp), fs, fp
}

func TestFirstJoinWaits(t *testing.T) {
	c, _, fp := newTestCoordinator()
	ctx := context.Background()

	c.HandleJoin(ctx, 7, 2)

	msgs := fp.playerMessages(7)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(msgs))
	}
	waiting, ok := msgs[0].(bus.MatchNotification)
	if !ok {
		t.Fatalf("expected MatchNotification, got %T", msgs[0])
	}
	if waiting.Queue != bus.QueueWaiting || waiting.YourTurn {
		t.Errorf("unexpected waiting notification: %+v", waiting)
	}
	if waiting.OpponentUsername != bus.WaitingOpponentPlaceholder {
		t.Errorf("wrong opponent placeholder: %q", waiting.OpponentUsername)
	}
}

func TestQueueFairness(t *testing.T) {
	c, fs, _ := newTestCoordinator()
	ctx := context.Background()

	// First to wait is first to be paired.
	c.HandleJoin(ctx, 1, 1)
	c.HandleJoin(ctx, 2, 1)
	c.HandleJoin(ctx, 3, 1)
	c.HandleJoin(ctx, 4, 1)

	if len(fs.sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(fs.sessions))
	}
	first := fs.sessions[1]
	if first.playerA != 1 || first.playerB != 2 {
		t.Errorf("first session paired (%d, %d), want (1, 2)", first.playerA, first.playerB)
	}
	second := fs.sessions[2]
	if second.playerA != 3 || second.playerB != 4 {
		t.Errorf("second session paired (%d, %d), want (3, 4)", second.playerA, second.playerB)
	}
}

func TestIdempotentJoinWhileWaiting(t *testing.T) {
	c, fs, fp := newTestCoordinator()
	ctx := context.Background()

	c.HandleJoin(ctx, 7, 1)
	c.HandleJoin(ctx, 7, 1)

	// Two waiting notifications, but only one queue entry.
	if got := len(fp.playerMessages(7)); got != 2 {
		t.Fatalf("expected 2 notifications, got %d", got)
	}
	if queue := c.QueueSnapshot()[1]; len(queue) != 1 || queue[0] != 7 {
		t.Fatalf("unexpected queue state: %v", queue)
	}

	// A real opponent still pairs with the single entry.
	c.HandleJoin(ctx, 9, 1)
	if len(fs.sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(fs.sessions))
	}
	if len(c.QueueSnapshot()) != 0 {
		t.Errorf("queue should be empty after pairing: %v", c.QueueSnapshot())
	}
}

func TestJoinRejectedWhileInPlay(t *testing.T) {
	c, fs, fp := newTestCoordinator()
	ctx := context.Background()

	c.HandleJoin(ctx, 7, 1)
	c.HandleJoin(ctx, 9, 1)
	if len(fs.sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(fs.sessions))
	}

	c.HandleJoin(ctx, 7, 1)

	msgs := fp.playerMessages(7)
	last, ok := msgs[len(msgs)-1].(bus.AlreadyInGameNotification)
	if !ok {
		t.Fatalf("expected AlreadyInGameNotification, got %T", msgs[len(msgs)-1])
	}
	if last.Queue != bus.QueueAlreadyInGame {
		t.Errorf("unexpected queue field: %q", last.Queue)
	}
	if len(c.QueueSnapshot()) != 0 {
		t.Errorf("rejected join must not touch the queue: %v", c.QueueSnapshot())
	}
	if len(fs.sessions) != 1 {
		t.Errorf("rejected join must not create a session")
	}
}

func TestCancelRemovesWaitingPlayer(t *testing.T) {
	c, fs, _ := newTestCoordinator()
	ctx := context.Background()

	c.HandleJoin(ctx, 7, 2)
	c.HandleCancel(ctx, 7, 2)

	// The next join waits instead of pairing with the cancelled player.
	c.HandleJoin(ctx, 9, 2)
	if len(fs.sessions) != 0 {
		t.Fatalf("expected no sessions, got %d", len(fs.sessions))
	}
	if queue := c.QueueSnapshot()[2]; len(queue) != 1 || queue[0] != 9 {
		t.Errorf("unexpected queue state: %v", queue)
	}

	// Cancel for a player who is not waiting is a no-op.
	c.HandleCancel(ctx, 7, 2)
}

func TestCrossTypeJoinMovesPlayer(t *testing.T) {
	c, fs, _ := newTestCoordinator()
	ctx := context.Background()

	// Joining another game type moves the player, so 7 waits only for type 2.
	c.HandleJoin(ctx, 7, 1)
	c.HandleJoin(ctx, 7, 2)

	snapshot := c.QueueSnapshot()
	if queue := snapshot[1]; len(queue) != 0 {
		t.Fatalf("player still waiting for type 1: %v", queue)
	}
	if queue := snapshot[2]; len(queue) != 1 || queue[0] != 7 {
		t.Fatalf("unexpected type 2 queue: %v", queue)
	}

	// A type 1 join finds nobody; a type 2 join pairs with 7.
	c.HandleJoin(ctx, 8, 1)
	c.HandleJoin(ctx, 9, 2)

	if len(fs.sessions) != 1 {
		t.Fatalf("expected 1 session, got %d", len(fs.sessions))
	}
	sess := fs.sessions[1]
	if sess.playerA != 7 || sess.playerB != 9 || sess.gameType != 2 {
		t.Errorf("unexpected pairing (%d, %d) type %d, want (7, 9) type 2",
			sess.playerA, sess.playerB, sess.gameType)
	}
	if queue := c.QueueSnapshot()[1]; len(queue) != 1 || queue[0] != 8 {
		t.Errorf("unexpected type 1 queue after pairing: %v", queue)
	}
}

func TestPairingSkipsStaleInPlayEntry(t *testing.T) {
	c, fs, _ := newTestCoordinator()
	ctx := context.Background()

	// A pairing can mark a player in-play while a leftover queue entry for
	// them still exists. The next pop must discard it, not pair with it.
	c.HandleJoin(ctx, 7, 1)
	c.inPlay.Add(7)

	c.HandleJoin(ctx, 9, 1)

	if len(fs.sessions) != 0 {
		t.Fatalf("expected no sessions, got %d", len(fs.sessions))
	}
	if queue := c.QueueSnapshot()[1]; len(queue) != 1 || queue[0] != 9 {
		t.Errorf("unexpected queue state: %v", queue)
	}
}

func TestConcurrentJoinsNoDoublePairing(t *testing.T) {
	c, fs, _ := newTestCoordinator()
	ctx := context.Background()

	const players = 40
	var wg sync.WaitGroup
	for p := 1; p <= players; p++ {
		wg.Add(1)
		go func(playerID int) {
			defer wg.Done()
			c.HandleJoin(ctx, playerID, 1)
		}(p)
	}
	wg.Wait()

	seen := make(map[int]int)
	for id, sess := range fs.sessions {
		if sess.playerA == sess.playerB {
			t.Errorf("session %d paired player %d with themselves", id, sess.playerA)
		}
		seen[sess.playerA]++
		seen[sess.playerB]++
	}
	for playerID, n := range seen {
		if n > 1 {
			t.Errorf("player %d ended up in %d sessions", playerID, n)
		}
	}

	// Everyone is either paired or still waiting, never both, never neither.
	waiting := c.QueueSnapshot()[1]
	for _, playerID := range waiting {
		if seen[playerID] > 0 {
			t.Errorf("player %d is both waiting and in a session", playerID)
		}
	}
	if got := len(fs.sessions)*2 + len(waiting); got != players {
		t.Errorf("paired + waiting = %d, want %d", got, players)
	}
}
