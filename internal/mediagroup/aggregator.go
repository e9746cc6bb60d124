// Package mediagroup collapses a Telegram album, which arrives as one update
// per image, into a single delivery once the album stops growing.
package mediagroup

import (
	"strconv"
	"sync"
	"time"
)

type Item struct {
	ChatID       int64
	MediaGroupID string
	FileID       string
	MimeType     string
}

type Group struct {
	ChatID int64
	Items  []Item
}

// First is the earliest received item of the album.
func (g Group) First() Item {
	if len(g.Items) == 0 {
		return Item{}
	}
	return g.Items[0]
}

type Options struct {
	Debounce time.Duration
	OnFlush  func(Group)
}

type Aggregator struct {
	mu       sync.Mutex
	debounce time.Duration
	onFlush  func(Group)
	pending  map[string]*pending
	stopped  bool
}

type pending struct {
	group Group
	timer *time.Timer
}

func New(opts Options) *Aggregator {
	debounce := opts.Debounce
	if debounce <= 0 {
		debounce = 1200 * time.Millisecond
	}

	return &Aggregator{
		debounce: debounce,
		onFlush:  opts.OnFlush,
		pending:  make(map[string]*pending),
	}
}

// Add records item and restarts the album's quiet period. It reports false
// for items that are not part of an album or arrive after Stop.
func (a *Aggregator) Add(item Item) bool {
	if item.MediaGroupID == "" || item.FileID == "" {
		return false
	}

	key := strconv.FormatInt(item.ChatID, 10) + ":" + item.MediaGroupID

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopped {
		return false
	}

	p, ok := a.pending[key]
	if !ok {
		p = &pending{group: Group{ChatID: item.ChatID}}
		a.pending[key] = p
	}
	p.group.Items = append(p.group.Items, item)

	if p.timer != nil {
		p.timer.Stop()
	}
	p.timer = time.AfterFunc(a.debounce, func() { a.flush(key) })
	return true
}

// Pending reports the number of albums still waiting for their quiet period.
func (a *Aggregator) Pending() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}

// Stop drops albums that have not been flushed yet and rejects new items.
func (a *Aggregator) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.stopped = true
	for key, p := range a.pending {
		p.timer.Stop()
		delete(a.pending, key)
	}
}

func (a *Aggregator) flush(key string) {
	a.mu.Lock()
	p, ok := a.pending[key]
	if !ok {
		a.mu.Unlock()
		return
	}
	delete(a.pending, key)
	onFlush := a.onFlush
	a.mu.Unlock()

	if onFlush != nil {
		onFlush(p.group)
	}
}
