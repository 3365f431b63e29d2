package usecase

import (
	"context"
	"sync"

	"github.com/shandysiswandi/devlink/internal/verification/entity"
	"go.uber.org/atomic"
)

const subscriberBuffer = 16

type subscriber struct {
	ch     chan entity.Event
	closed atomic.Bool
}

func (s *subscriber) close() {
	if s.closed.CompareAndSwap(false, true) {
		close(s.ch)
	}
}

// broadcaster is a session's View. It fans controller output out to stream
// subscribers and remembers the latest state and navigation target so late
// subscribers can catch up.
type broadcaster struct {
	authPath    string
	reentryPath string

	mu   sync.RWMutex
	subs map[*subscriber]struct{}
	done chan struct{}

	last       atomic.Pointer[entity.Snapshot]
	navigateTo atomic.String
	closed     atomic.Bool
}

func newBroadcaster(authPath, reentryPath string) *broadcaster {
	return &broadcaster{
		authPath:    authPath,
		reentryPath: reentryPath,
		subs:        make(map[*subscriber]struct{}),
		done:        make(chan struct{}),
	}
}

func (b *broadcaster) Render(_ context.Context, s entity.Snapshot) {
	b.last.Store(&s)
	b.publish(entity.Event{Type: entity.EventState, State: &s})
}

func (b *broadcaster) Notify(_ context.Context, kind entity.NoticeKind, message string) {
	b.publish(entity.Event{Type: entity.EventNotice, Notice: &entity.Notice{Kind: kind, Message: message}})
}

func (b *broadcaster) NavigateToAuthenticatedArea(context.Context) {
	b.navigate(b.authPath)
}

func (b *broadcaster) NavigateToReEntry(context.Context) {
	b.navigate(b.reentryPath)
}

func (b *broadcaster) navigate(path string) {
	b.navigateTo.Store(path)
	b.publish(entity.Event{Type: entity.EventNavigate, NavigateTo: path})
}

// NavigatedTo returns the last navigation target, or "".
func (b *broadcaster) NavigatedTo() string {
	return b.navigateTo.Load()
}

func (b *broadcaster) publish(evt entity.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.subs {
		if sub.closed.Load() {
			continue
		}

		select {
		case sub.ch <- evt:
			continue
		default:
		}

		// A slow stream loses state and notices, never the hand-off: make room
		// by evicting the oldest buffered event.
		if evt.Type != entity.EventNavigate {
			continue
		}
		select {
		case <-sub.ch:
		default:
		}
		select {
		case sub.ch <- evt:
		default:
		}
	}
}

// subscribe registers a stream that starts with the latest state and is
// closed when ctx is done or the session tears down.
func (b *broadcaster) subscribe(ctx context.Context) <-chan entity.Event {
	sub := &subscriber{ch: make(chan entity.Event, subscriberBuffer)}

	b.mu.Lock()
	if s := b.last.Load(); s != nil {
		snap := *s
		sub.ch <- entity.Event{Type: entity.EventState, State: &snap}
	}
	if path := b.navigateTo.Load(); path != "" {
		sub.ch <- entity.Event{Type: entity.EventNavigate, NavigateTo: path}
	}
	if b.closed.Load() {
		b.mu.Unlock()
		sub.close()
		return sub.ch
	}
	b.subs[sub] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
		}

		b.mu.Lock()
		delete(b.subs, sub)
		sub.close()
		b.mu.Unlock()
	}()

	return sub.ch
}

func (b *broadcaster) close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed.CompareAndSwap(false, true) {
		return
	}
	close(b.done)
	for sub := range b.subs {
		sub.close()
		delete(b.subs, sub)
	}
}
