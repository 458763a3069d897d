package keys

import (
	"math/rand"
	"strings"
	"testing"
)

// --- Prefix Builder Tests ---

func TestUser(t *testing.T) {
	if got := User("alice"); got != "USER#alice" {
		t.Errorf("expected 'USER#alice', got %q", got)
	}
}

func TestChannel(t *testing.T) {
	if got := Channel("General"); got != "ROOM#General" {
		t.Errorf("expected 'ROOM#General', got %q", got)
	}
}

func TestConnection(t *testing.T) {
	if got := Connection("conn-123"); got != "WS#conn-123" {
		t.Errorf("expected 'WS#conn-123', got %q", got)
	}
}

func TestUser_EmptyID(t *testing.T) {
	if got := User(""); got != "USER#" {
		t.Errorf("expected bare prefix for empty id, got %q", got)
	}
}

// --- Message Sort Key Tests ---

func TestMessage_FixedWidth(t *testing.T) {
	tests := []struct {
		name      string
		timestamp int64
		jitter    string
		expected  string
	}{
		{"zero", 0, "AAAA", "WHEN#0000000000000000|AAAA"},
		{"small", 42, "XY12", "WHEN#0000000000000042|XY12"},
		{"millis", 1704067200000, "Q9Q9", "WHEN#0001704067200000|Q9Q9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Message(tt.timestamp, tt.jitter)
			if got != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestMessage_LexicographicOrderMatchesNumericOrder(t *testing.T) {
	timestamps := []int64{0, 1, 9, 10, 99, 100, 1704067200000, 9999999999999999}

	for i := 1; i < len(timestamps); i++ {
		earlier := Message(timestamps[i-1], "AAAA")
		later := Message(timestamps[i], "AAAA")
		if !(earlier < later) {
			t.Errorf("expected %q < %q", earlier, later)
		}
	}
}

func TestMessageFloor_LowerBoundsEqualTimestamp(t *testing.T) {
	floor := MessageFloor(1000)

	// Every jitter variant of the same timestamp sorts at or after the floor.
	for _, jitter := range []string{"AAAA", "ZZZZ", "0000", "9999"} {
		key := Message(1000, jitter)
		if key < floor {
			t.Errorf("expected %q >= floor %q", key, floor)
		}
	}

	// Earlier timestamps sort strictly before the floor.
	if earlier := Message(999, "ZZZZ"); earlier >= floor {
		t.Errorf("expected %q < floor %q", earlier, floor)
	}
}

// --- Jitter Tests ---

func TestJitter_Length(t *testing.T) {
	r := rand.New(rand.NewSource(1))

	for _, n := range []int{0, 1, 4, 16} {
		if got := Jitter(r, n); len(got) != n {
			t.Errorf("expected length %d, got %d (%q)", n, len(got), got)
		}
	}
}

func TestJitter_Alphabet(t *testing.T) {
	r := rand.New(rand.NewSource(2))

	for i := 0; i < 100; i++ {
		jitter := Jitter(r, 4)
		for _, c := range jitter {
			if !strings.ContainsRune(jitterSymbols, c) {
				t.Fatalf("jitter %q contains %q outside alphabet", jitter, c)
			}
		}
	}
}

func TestJitter_DeterministicWithSeededSource(t *testing.T) {
	a := Jitter(rand.New(rand.NewSource(7)), 8)
	b := Jitter(rand.New(rand.NewSource(7)), 8)
	if a != b {
		t.Errorf("expected identical output for identical seeds, got %q and %q", a, b)
	}
}

// --- Benchmark Tests ---

func BenchmarkMessage(b *testing.B) {
	for i := 0; i < b.N; i++ {
		Message(1704067200000, "AB12")
	}
}

func BenchmarkJitter(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Jitter(r, 4)
	}
}
