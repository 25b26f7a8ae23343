package bot

import (
	"context"
	"sync"
)

// MaxPendingEvents caps the backlog of a single chat.
const MaxPendingEvents = 16

type handlerFunc func(ctx context.Context, chatID int64, ev Event)

type chatBacklog struct {
	events []Event
}

// dispatcher runs one worker per chat with pending events. A worker exits
// as soon as its chat's backlog is empty.
type dispatcher struct {
	ctx    context.Context
	handle handlerFunc

	mu    sync.Mutex
	chats map[int64]*chatBacklog
	wg    sync.WaitGroup
}

func newDispatcher(ctx context.Context, handle handlerFunc) *dispatcher {
	return &dispatcher{
		ctx:    ctx,
		handle: handle,
		chats:  make(map[int64]*chatBacklog),
	}
}

// dispatch queues ev for chatID without blocking. It returns false when the
// chat's backlog is full and ev was dropped.
func (d *dispatcher) dispatch(chatID int64, ev Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	c, ok := d.chats[chatID]
	if !ok {
		c = &chatBacklog{}
		d.chats[chatID] = c
		d.wg.Add(1)
		go d.work(chatID, c)
	}
	if len(c.events) >= MaxPendingEvents {
		return false
	}
	c.events = append(c.events, ev)
	return true
}

func (d *dispatcher) work(chatID int64, c *chatBacklog) {
	defer d.wg.Done()
	for {
		d.mu.Lock()
		if len(c.events) == 0 {
			delete(d.chats, chatID)
			d.mu.Unlock()
			return
		}
		ev := c.events[0]
		c.events = c.events[1:]
		d.mu.Unlock()

		d.handle(d.ctx, chatID, ev)
	}
}

func (d *dispatcher) active() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.chats)
}

// wait blocks until every queued event has been handled.
func (d *dispatcher) wait() {
	d.wg.Wait()
}
