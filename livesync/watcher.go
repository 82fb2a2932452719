package livesync

import (
	"context"
	"sync"

	"boardbank/events"
	"boardbank/models"
	"boardbank/service"

	log "github.com/sirupsen/logrus"
)

// GameReader provides the game-side snapshots a watcher re-queries on
// change notifications.
type GameReader interface {
	GetGame(ctx context.Context, gameID string) (*models.Game, error)
	ListPlayers(ctx context.Context, gameID string) ([]*models.Player, error)
}

// LogReader provides transaction log snapshots
type LogReader interface {
	Transactions(ctx context.Context, gameID string, limit int) ([]*models.Transaction, error)
}

// Watcher turns committed-state events into live per-game feeds. Each
// feed re-queries a full snapshot on every notification, so consumers
// never have to merge deltas and never observe uncommitted state.
type Watcher struct {
	games  GameReader
	ledger LogReader
	bus    *events.Bus
}

// NewWatcher creates a watcher on top of the given readers and bus
func NewWatcher(games GameReader, ledger LogReader, bus *events.Bus) *Watcher {
	return &Watcher{
		games:  games,
		ledger: ledger,
		bus:    bus,
	}
}

// feed is the shared machinery behind every subscription type: a serial
// drain loop over a collapsed trigger channel. Notifications arrive in
// commit order and the loop is single-threaded, so updates are pushed
// in commit order too.
type feed[T any] struct {
	updates chan T
	errs    chan error
	trigger chan struct{}
	done    chan struct{}
	once    sync.Once
	subs    []*events.Subscription
}

func newFeed[T any]() *feed[T] {
	return &feed[T]{
		updates: make(chan T, 16),
		errs:    make(chan error, 1),
		trigger: make(chan struct{}, 1),
		done:    make(chan struct{}),
	}
}

// Updates delivers a fresh snapshot after every committed change
func (f *feed[T]) Updates() <-chan T {
	return f.updates
}

// Errors delivers re-query failures. The feed stays alive; there is no
// automatic retry, the next committed change triggers the next query.
func (f *feed[T]) Errors() <-chan error {
	return f.errs
}

// Cancel removes the bus handlers and stops the drain loop. Safe to
// call more than once.
func (f *feed[T]) Cancel() {
	f.once.Do(func() {
		for _, s := range f.subs {
			s.Unsubscribe()
		}
		close(f.done)
	})
}

// notify collapses bursts of notifications into a single pending
// trigger; the drain loop re-queries once per burst.
func (f *feed[T]) notify() {
	select {
	case f.trigger <- struct{}{}:
	default:
	}
}

func (f *feed[T]) push(v T) bool {
	select {
	case f.updates <- v:
		return true
	case <-f.done:
		return false
	}
}

func (f *feed[T]) fail(err error) bool {
	select {
	case f.errs <- err:
		return true
	case <-f.done:
		return false
	}
}

// run drives the snapshot-then-notify loop until Cancel or context end
func (f *feed[T]) run(ctx context.Context, query func(context.Context) (T, bool, error)) {
	defer f.Cancel()

	emit := func() bool {
		snapshot, alive, err := query(ctx)
		if err != nil {
			log.WithError(err).Warn("Live feed query failed")
			return f.fail(err)
		}
		if !f.push(snapshot) {
			return false
		}
		return alive
	}

	if !emit() {
		return
	}

	for {
		select {
		case <-f.done:
			return
		case <-ctx.Done():
			return
		case <-f.trigger:
			if !emit() {
				return
			}
		}
	}
}

// subscribe registers a filtered handler for each event type and
// records the handles for Cancel.
func (f *feed[T]) subscribe(bus *events.Bus, gameID string, types ...events.EventType) {
	for _, eventType := range types {
		sub := bus.Subscribe(eventType, func(ctx context.Context, e events.Event) {
			if e.Game() == gameID {
				f.notify()
			}
		})
		f.subs = append(f.subs, sub)
	}
}

// PlayersSubscription streams the member account list of a game
type PlayersSubscription struct {
	*feed[[]*models.Player]
}

// GameSubscription streams the game aggregate; a nil update signals
// the game was deleted and the feed ends.
type GameSubscription struct {
	*feed[*models.Game]
}

// TransactionsSubscription streams the transaction log, newest first
type TransactionsSubscription struct {
	*feed[[]*models.Transaction]
}

// transactionFeedLimit bounds how much history a live log feed carries
const transactionFeedLimit = 100

// WatchPlayers delivers the current player set immediately and a fresh
// snapshot after every committed membership or balance change.
func (w *Watcher) WatchPlayers(ctx context.Context, gameID string) (*PlayersSubscription, error) {
	if _, err := w.games.GetGame(ctx, gameID); err != nil {
		return nil, err
	}

	sub := &PlayersSubscription{feed: newFeed[[]*models.Player]()}
	sub.subscribe(w.bus, gameID,
		events.EventTypePlayerJoined,
		events.EventTypePlayerLeft,
		events.EventTypePlayerBalanceChange,
		events.EventTypeGameDeleted,
	)

	go sub.run(ctx, func(ctx context.Context) ([]*models.Player, bool, error) {
		players, err := w.games.ListPlayers(ctx, gameID)
		if err != nil {
			return nil, true, err
		}
		return players, true, nil
	})

	return sub, nil
}

// WatchGame delivers the game aggregate immediately and after every
// committed balance or membership change. When the game is deleted a
// final nil update is pushed and the feed ends.
func (w *Watcher) WatchGame(ctx context.Context, gameID string) (*GameSubscription, error) {
	if _, err := w.games.GetGame(ctx, gameID); err != nil {
		return nil, err
	}

	sub := &GameSubscription{feed: newFeed[*models.Game]()}
	sub.subscribe(w.bus, gameID,
		events.EventTypeGameBalanceChange,
		events.EventTypePlayerJoined,
		events.EventTypePlayerLeft,
		events.EventTypeGameDeleted,
	)

	go sub.run(ctx, func(ctx context.Context) (*models.Game, bool, error) {
		game, err := w.games.GetGame(ctx, gameID)
		if err != nil {
			if domainErr, ok := service.AsDomainError(err); ok && domainErr.Code == service.CodeGameNotFound {
				return nil, false, nil
			}
			return nil, true, err
		}
		return game, true, nil
	})

	return sub, nil
}

// WatchTransactions delivers the log snapshot immediately and again on
// every appended record.
func (w *Watcher) WatchTransactions(ctx context.Context, gameID string) (*TransactionsSubscription, error) {
	if _, err := w.games.GetGame(ctx, gameID); err != nil {
		return nil, err
	}

	sub := &TransactionsSubscription{feed: newFeed[[]*models.Transaction]()}
	sub.subscribe(w.bus, gameID, events.EventTypeTransactionLogged)

	go sub.run(ctx, func(ctx context.Context) ([]*models.Transaction, bool, error) {
		records, err := w.ledger.Transactions(ctx, gameID, transactionFeedLimit)
		if err != nil {
			return nil, true, err
		}
		return records, true, nil
	})

	return sub, nil
}
