package events

import (
	"context"
	"sync"

	"boardbank/models"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeGameCreated         EventType = "game_created"
	EventTypeGameDeleted         EventType = "game_deleted"
	EventTypeGameBalanceChange   EventType = "game_balance_change"
	EventTypePlayerJoined        EventType = "player_joined"
	EventTypePlayerLeft          EventType = "player_left"
	EventTypePlayerBalanceChange EventType = "player_balance_change"
	EventTypeTransactionLogged   EventType = "transaction_logged"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
	Game() string
}

// GameCreatedEvent fires when a new game session is created
type GameCreatedEvent struct {
	GameID   string
	OwnerUID string
}

func (e GameCreatedEvent) Type() EventType { return EventTypeGameCreated }
func (e GameCreatedEvent) Game() string    { return e.GameID }

// GameDeletedEvent fires when the last member leaves and the game is
// destroyed along with its accounts and transaction log.
type GameDeletedEvent struct {
	GameID string
}

func (e GameDeletedEvent) Type() EventType { return EventTypeGameDeleted }
func (e GameDeletedEvent) Game() string    { return e.GameID }

// GameBalanceChangeEvent fires when the bank or pot balance of a game
// aggregate changes.
type GameBalanceChangeEvent struct {
	GameID      string
	BankBalance int64
	PotBalance  int64
}

func (e GameBalanceChangeEvent) Type() EventType { return EventTypeGameBalanceChange }
func (e GameBalanceChangeEvent) Game() string    { return e.GameID }

// PlayerJoinedEvent fires when an identity joins a game
type PlayerJoinedEvent struct {
	GameID   string
	PlayerID string
	UID      string
	Name     string
}

func (e PlayerJoinedEvent) Type() EventType { return EventTypePlayerJoined }
func (e PlayerJoinedEvent) Game() string    { return e.GameID }

// PlayerLeftEvent fires when an identity leaves a game
type PlayerLeftEvent struct {
	GameID string
	UID    string
}

func (e PlayerLeftEvent) Type() EventType { return EventTypePlayerLeft }
func (e PlayerLeftEvent) Game() string    { return e.GameID }

// PlayerBalanceChangeEvent fires when a player account balance changes
type PlayerBalanceChangeEvent struct {
	GameID     string
	PlayerID   string
	NewBalance int64
}

func (e PlayerBalanceChangeEvent) Type() EventType { return EventTypePlayerBalanceChange }
func (e PlayerBalanceChangeEvent) Game() string    { return e.GameID }

// TransactionLoggedEvent fires when a ledger operation appends a record
// to the transaction log.
type TransactionLoggedEvent struct {
	GameID          string
	TransactionID   int64
	TransactionType models.TransactionType
	Amount          int64
}

func (e TransactionLoggedEvent) Type() EventType { return EventTypeTransactionLogged }
func (e TransactionLoggedEvent) Game() string    { return e.GameID }

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Subscription identifies a registered handler so it can be removed
type Subscription struct {
	bus       *Bus
	eventType EventType
	id        int64
}

// Unsubscribe removes the handler from the bus. Safe to call more than
// once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.bus == nil {
		return
	}
	s.bus.remove(s.eventType, s.id)
	s.bus = nil
}

type handlerEntry struct {
	id int64
	fn Handler
}

// Bus manages event subscriptions and dispatching. Handlers run
// synchronously in emit order so observers see per-document changes in
// commit order; handlers that need to block hand off to their own
// goroutine.
type Bus struct {
	mu       sync.RWMutex
	nextID   int64
	handlers map[EventType][]handlerEntry
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]handlerEntry),
	}
}

// Subscribe adds a handler for a specific event type and returns a
// handle that removes it again.
func (b *Bus) Subscribe(eventType EventType, handler Handler) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.handlers[eventType] = append(b.handlers[eventType], handlerEntry{id: id, fn: handler})

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")

	return &Subscription{bus: b, eventType: eventType, id: id}
}

func (b *Bus) remove(eventType EventType, id int64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.handlers[eventType]
	for i, e := range entries {
		if e.id == id {
			b.handlers[eventType] = append(entries[:i:i], entries[i+1:]...)
			return
		}
	}
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]handlerEntry, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"gameID":       event.Game(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event to handlers")

	for _, handler := range handlers {
		func(h Handler) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType": event.Type(),
						"panic":     r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler.fn)
	}
}

// TransactionalBus holds pending events coupled to a unit of work and
// flushes them to the underlying bus only after the database commit, so
// observers never see uncommitted state.
type TransactionalBus struct {
	real    *Bus
	pending []Event // stashed until Flush
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
}

// Flush is called after a successful DB commit. Events are emitted in
// publish order so per-document notifications follow commit order.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithFields(log.Fields{
		"pendingEventCount": len(b.pending),
	}).Debug("Flushing pending events from transactional bus")

	// Use a background context for emission so delivery does not
	// depend on the transaction context lifetime.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events, called after a rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
