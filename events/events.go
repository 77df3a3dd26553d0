package events

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeResultRecorded EventType = "result_recorded"
	EventTypeDuelCompleted  EventType = "duel_completed"
	EventTypeGuestMigrated  EventType = "guest_migrated"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// ResultRecordedEvent is emitted once a game result has been stored and aggregated
type ResultRecordedEvent struct {
	GameID      string    `json:"gameId"`
	PlayerID    string    `json:"playerId,omitempty"` // empty for guests
	GuestID     string    `json:"guestId,omitempty"`  // empty for accounts
	GameType    string    `json:"gameType"`
	TotalScore  int64     `json:"totalScore"`
	CompletedAt time.Time `json:"completedAt"`
}

func (e ResultRecordedEvent) Type() EventType {
	return EventTypeResultRecorded
}

// DuelCompletedEvent is emitted after a duel's stats and ranks have been committed.
// Consumers notify the challenger of the outcome.
type DuelCompletedEvent struct {
	DuelID       string    `json:"duelId"`
	DuelSeed     string    `json:"duelSeed"`
	GameType     string    `json:"gameType"`
	ChallengerID string    `json:"challengerId"`
	AccepterID   string    `json:"accepterId"`
	AccepterName string    `json:"accepterName"`
	WinnerID     string    `json:"winnerId"`
	PointsEarned int64     `json:"pointsEarned"`
	CompletedAt  time.Time `json:"completedAt"`
}

func (e DuelCompletedEvent) Type() EventType {
	return EventTypeDuelCompleted
}

// GuestMigratedEvent is emitted when guest results were moved onto an account
type GuestMigratedEvent struct {
	GuestID       string `json:"guestId"`
	PlayerID      string `json:"playerId"`
	MigratedGames int    `json:"migratedGames"`
}

func (e GuestMigratedEvent) Type() EventType {
	return EventTypeGuestMigrated
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	inflight sync.WaitGroup
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit hands the event to every registered handler on its own goroutine.
// A panicking handler is logged and does not affect the others.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	for i, handler := range handlers {
		b.inflight.Add(1)
		go func(h Handler, handlerIndex int) {
			defer b.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Wait blocks until every handler started so far has returned or ctx is done.
// It returns false when ctx expired first.
func (b *Bus) Wait(ctx context.Context) bool {
	done := make(chan struct{})
	go func() {
		b.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}

// TransactionalBus holds events raised inside a unit of work until it commits
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Queued event until commit")
	b.pending = append(b.pending, e)
}

// Flush is called after a successful commit. Handlers get a background context
// because the request that committed may already be finished.
func (b *TransactionalBus) Flush() {
	eventCtx := context.Background()
	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}

	log.WithField("eventCount", len(b.pending)).Debug("Flushed pending events")
	b.pending = nil
}

// Discard drops pending events after a rollback
func (b *TransactionalBus) Discard() {
	if len(b.pending) > 0 {
		log.WithField("eventCount", len(b.pending)).Debug("Discarded pending events")
	}
	b.pending = nil
}
