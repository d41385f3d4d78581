package game

import "sync"

type reserveOutcome int

const (
	// reserveWaiting: the player was appended to the queue.
	reserveWaiting reserveOutcome = iota
	// reserveAlreadyWaiting: the player is already queued; nothing changed.
	reserveAlreadyWaiting
	// reservePaired: the oldest waiting player was popped as the opponent.
	reservePaired
)

// waitingQueues holds the per-game-type FIFO of waiting player ids. One
// mutex guards the whole map; a pairing decision (membership check plus pop
// or append) must be atomic against concurrent joins for the same type.
type waitingQueues struct {
	mu     sync.Mutex
	byType map[int][]int
}

func newWaitingQueues() *waitingQueues {
	return &waitingQueues{byType: make(map[int][]int)}
}

// Reserve decides what a join does to the queue for gameType. When it
// returns reservePaired, opponent is the oldest waiting player for that type
// and the caller owns completing or undoing the pairing.
//
// A player occupies at most one waiting queue: joining a different game type
// moves the player to the new type's queue. When popping an opponent,
// entries for players the inPlay predicate reports as already bound to a
// session are stale and are discarded.
func (q *waitingQueues) Reserve(gameType, playerID int, inPlay func(int) bool) (opponent int, outcome reserveOutcome) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for otherType, queue := range q.byType {
		if otherType == gameType {
			continue
		}
		q.byType[otherType] = removeID(queue, playerID)
	}

	queue := q.byType[gameType]
	for _, id := range queue {
		if id == playerID {
			return 0, reserveAlreadyWaiting
		}
	}

	for len(queue) > 0 {
		head := queue[0]
		queue = queue[1:]
		q.byType[gameType] = queue
		if inPlay(head) {
			continue
		}
		return head, reservePaired
	}

	q.byType[gameType] = append(queue, playerID)
	return 0, reserveWaiting
}

// PushFront restores a player to the head of the queue. Used when session
// creation fails after the opponent was popped, so the opponent keeps their
// place in line.
func (q *waitingQueues) PushFront(gameType, playerID int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.byType[gameType] = append([]int{playerID}, q.byType[gameType]...)
}

// Remove drops the player from the queue for gameType. Returns false if the
// player was not waiting.
func (q *waitingQueues) Remove(gameType, playerID int) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	queue := q.byType[gameType]
	for i, id := range queue {
		if id == playerID {
			q.byType[gameType] = append(queue[:i:i], queue[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAll drops the player from every queue. Used once a pairing lands, so
// a join for another type that slipped in between the opponent pop and the
// in-play marking leaves nothing behind.
func (q *waitingQueues) RemoveAll(playerID int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for gameType, queue := range q.byType {
		q.byType[gameType] = removeID(queue, playerID)
	}
}

func removeID(queue []int, playerID int) []int {
	for i, id := range queue {
		if id == playerID {
			return append(queue[:i:i], queue[i+1:]...)
		}
	}
	return queue
}

// Snapshot copies the current queue contents, for the ops API.
func (q *waitingQueues) Snapshot() map[int][]int {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := make(map[int][]int, len(q.byType))
	for gameType, queue := range q.byType {
		if len(queue) == 0 {
			continue
		}
		out[gameType] = append([]int(nil), queue...)
	}
	return out
}
