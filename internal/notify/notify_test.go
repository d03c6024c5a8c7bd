package notify

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestBufferOrderAndReplay(t *testing.T) {
	buf := NewBuffer(10)
	ev1 := buf.Append(Event{Kind: KindNewGame, GameID: "g1"})
	ev2 := buf.Append(Event{Kind: KindAutoComplete, GameID: "g1"})
	ev3 := buf.Append(Event{Kind: KindWon, GameID: "g1"})

	if ev1.EventID != "1" || ev2.EventID != "2" || ev3.EventID != "3" {
		t.Fatalf("unexpected event ids: %s %s %s", ev1.EventID, ev2.EventID, ev3.EventID)
	}
	replay := buf.ReplayAfter("1")
	if len(replay) != 2 || replay[0].EventID != "2" || replay[1].Event.Kind != KindWon {
		t.Fatalf("unexpected replay: %+v", replay)
	}
	if all := buf.ReplayAfter(""); len(all) != 3 {
		t.Fatalf("expected full replay, got %d", len(all))
	}
	if all := buf.ReplayAfter("garbage"); len(all) != 3 {
		t.Fatalf("expected full replay for bad id, got %d", len(all))
	}
}

func TestBufferDropsOldest(t *testing.T) {
	buf := NewBuffer(2)
	buf.Append(Event{Kind: KindHint})
	buf.Append(Event{Kind: KindHint})
	buf.Append(Event{Kind: KindWon})
	got := buf.ReplayAfter("")
	if len(got) != 2 || got[0].EventID != "2" {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestBufferWatchers(t *testing.T) {
	buf := NewBuffer(10)
	ch := buf.Subscribe()
	buf.Notify(Event{Kind: KindHint, Message: "look at the foundations"})

	select {
	case rec := <-ch:
		if rec.Event.Kind != KindHint || rec.Event.At.IsZero() {
			t.Fatalf("unexpected record: %+v", rec)
		}
	case <-time.After(time.Second):
		t.Fatal("watcher did not receive the event")
	}

	buf.Unsubscribe(ch)
	if _, open := <-ch; open {
		t.Fatal("unsubscribe should close the channel")
	}

	ch2 := buf.Subscribe()
	buf.Close()
	if _, open := <-ch2; open {
		t.Fatal("close should close watcher channels")
	}
	if rec := buf.Append(Event{Kind: KindWon}); rec.EventID != "" {
		t.Fatal("append after close should be dropped")
	}
	if _, open := <-buf.Subscribe(); open {
		t.Fatal("subscribe after close should return a closed channel")
	}
}

func TestMultiSkipsNil(t *testing.T) {
	var got []Kind
	sink := Multi(nil, SinkFunc(func(ev Event) { got = append(got, ev.Kind) }), Nop)
	sink.Notify(Event{Kind: KindWon})
	if len(got) != 1 || got[0] != KindWon {
		t.Fatalf("unexpected fan-out: %v", got)
	}
}

func TestLogSinkWritesStructuredEvent(t *testing.T) {
	var out bytes.Buffer
	LogSink{Logger: zerolog.New(&out)}.Notify(Event{Kind: KindAutoComplete, GameID: "g7", Moves: 12})

	var line map[string]any
	if err := json.Unmarshal(out.Bytes(), &line); err != nil {
		t.Fatalf("decode log line: %v (%s)", err, out.String())
	}
	if line["event"] != "auto_complete" || line["game_id"] != "g7" || line["moves"] != float64(12) {
		t.Fatalf("unexpected log line: %v", line)
	}
}
