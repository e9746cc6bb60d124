package mediagroup

import (
	"testing"
	"time"
)

func TestAggregatorFlushesAlbumOnce(t *testing.T) {
	flushed := make(chan Group, 4)
	a := New(Options{Debounce: 20 * time.Millisecond, OnFlush: func(g Group) { flushed <- g }})

	for _, id := range []string{"f1", "f2", "f3"} {
		if !a.Add(Item{ChatID: 7, MediaGroupID: "album", FileID: id}) {
			t.Fatalf("Add(%s) rejected", id)
		}
	}

	select {
	case g := <-flushed:
		if g.ChatID != 7 || len(g.Items) != 3 {
			t.Fatalf("group = %+v", g)
		}
		if g.First().FileID != "f1" {
			t.Errorf("First = %q, want f1", g.First().FileID)
		}
	case <-time.After(time.Second):
		t.Fatal("album was not flushed")
	}

	select {
	case g := <-flushed:
		t.Fatalf("unexpected second flush: %+v", g)
	case <-time.After(60 * time.Millisecond):
	}
}

func TestAggregatorSeparatesChats(t *testing.T) {
	flushed := make(chan Group, 4)
	a := New(Options{Debounce: 10 * time.Millisecond, OnFlush: func(g Group) { flushed <- g }})

	a.Add(Item{ChatID: 1, MediaGroupID: "x", FileID: "a"})
	a.Add(Item{ChatID: 2, MediaGroupID: "x", FileID: "b"})

	seen := map[int64]bool{}
	for i := 0; i < 2; i++ {
		select {
		case g := <-flushed:
			seen[g.ChatID] = true
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for flush")
		}
	}
	if !seen[1] || !seen[2] {
		t.Errorf("flushed chats = %v", seen)
	}
}

func TestAggregatorRejects(t *testing.T) {
	a := New(Options{Debounce: time.Hour})

	if a.Add(Item{ChatID: 1, FileID: "a"}) {
		t.Error("item without media group should be rejected")
	}
	if !a.Add(Item{ChatID: 1, MediaGroupID: "g", FileID: "a"}) {
		t.Fatal("album item rejected")
	}

	a.Stop()
	if a.Pending() != 0 {
		t.Errorf("Pending = %d after Stop", a.Pending())
	}
	if a.Add(Item{ChatID: 1, MediaGroupID: "g", FileID: "b"}) {
		t.Error("Add after Stop should be rejected")
	}
}

func TestEmptyGroupFirst(t *testing.T) {
	if (Group{}).First() != (Item{}) {
		t.Error("First of empty group should be zero")
	}
}
