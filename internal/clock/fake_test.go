package clock

import (
	"testing"
	"time"
)

func TestFake_AdvanceAndSet(t *testing.T) {
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	f := NewFake(start)

	if got := f.Now(); !got.Equal(start) {
		t.Fatalf("Now() = %v, want %v", got, start)
	}

	f.Advance(5 * time.Minute)
	want := start.Add(5 * time.Minute)
	if got := f.Now(); !got.Equal(want) {
		t.Fatalf("after Advance, Now() = %v, want %v", got, want)
	}

	pinned := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	f.Set(pinned)
	if got := f.Now(); !got.Equal(pinned) {
		t.Fatalf("after Set, Now() = %v, want %v", got, pinned)
	}
}
