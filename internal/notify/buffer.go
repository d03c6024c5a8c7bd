package notify

import (
	"strconv"
	"sync"
	"time"
)

// Record is an event as stored by a Buffer, with a per-buffer sequence id.
type Record struct {
	EventID  string `json:"event_id"`
	ServerTS int64  `json:"server_ts"`
	Event    Event  `json:"event"`
}

// Buffer keeps the most recent events and fans new ones out to watchers.
// Slow watchers miss events rather than block publishers.
type Buffer struct {
	mu       sync.Mutex
	nextID   int64
	max      int
	records  []Record
	watchers map[chan Record]struct{}
	closed   bool
}

func NewBuffer(max int) *Buffer {
	if max <= 0 {
		max = 200
	}
	return &Buffer{
		max:      max,
		watchers: map[chan Record]struct{}{},
	}
}

func (b *Buffer) Notify(ev Event) {
	_ = b.Append(ev)
}

func (b *Buffer) Append(ev Event) Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return Record{}
	}
	b.nextID++
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	rec := Record{
		EventID:  strconv.FormatInt(b.nextID, 10),
		ServerTS: ev.At.UnixMilli(),
		Event:    ev,
	}
	b.records = append(b.records, rec)
	if len(b.records) > b.max {
		b.records = b.records[len(b.records)-b.max:]
	}
	for ch := range b.watchers {
		select {
		case ch <- rec:
		default:
		}
	}
	return rec
}

// ReplayAfter returns buffered records newer than lastEventID; an empty or
// unparsable id replays everything still buffered.
func (b *Buffer) ReplayAfter(lastEventID string) []Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	last, err := strconv.ParseInt(lastEventID, 10, 64)
	if lastEventID == "" || err != nil {
		last = 0
	}
	out := make([]Record, 0, len(b.records))
	for _, rec := range b.records {
		id, _ := strconv.ParseInt(rec.EventID, 10, 64)
		if id > last {
			out = append(out, rec)
		}
	}
	return out
}

func (b *Buffer) Subscribe() chan Record {
	ch := make(chan Record, 32)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.watchers[ch] = struct{}{}
	return ch
}

func (b *Buffer) Unsubscribe(ch chan Record) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.watchers[ch]; ok {
		delete(b.watchers, ch)
		close(ch)
	}
}

func (b *Buffer) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.watchers {
		close(ch)
		delete(b.watchers, ch)
	}
}
