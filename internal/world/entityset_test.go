package world

import "testing"

func TestEntitySetBasics(t *testing.T) {
	var s EntitySet

	s.Set(1)
	s.Set(63)
	s.Set(64)
	s.Set(MaxZoneEntities - 1)

	for _, id := range []ZoneEntityID{1, 63, 64, MaxZoneEntities - 1} {
		if !s.Contains(id) {
			t.Fatalf("expected set to contain %d", id)
		}
	}
	if s.Contains(2) {
		t.Fatalf("set should not contain 2")
	}
	if got := s.Count(); got != 4 {
		t.Fatalf("Count() = %d, want 4", got)
	}

	s.Clear(63)
	if s.Contains(63) {
		t.Fatalf("63 still present after Clear")
	}
	if got := s.Count(); got != 3 {
		t.Fatalf("Count() after Clear = %d, want 3", got)
	}

	s.Reset()
	if got := s.Count(); got != 0 {
		t.Fatalf("Count() after Reset = %d, want 0", got)
	}
}

func TestEntitySetXor(t *testing.T) {
	var a, b EntitySet
	a.Set(1)
	a.Set(2)
	b.Set(2)
	b.Set(3)

	diff := a.Xor(b)

	if !diff.Contains(1) || !diff.Contains(3) {
		t.Fatalf("symmetric difference should contain 1 and 3")
	}
	if diff.Contains(2) {
		t.Fatalf("symmetric difference should not contain the shared id")
	}
	if got := diff.Count(); got != 2 {
		t.Fatalf("diff Count() = %d, want 2", got)
	}
}

func TestEntitySetForEachAscending(t *testing.T) {
	var s EntitySet
	want := []ZoneEntityID{3, 64, 65, 700, 4095}
	for _, id := range want {
		s.Set(id)
	}

	var got []ZoneEntityID
	s.ForEach(func(id ZoneEntityID) {
		got = append(got, id)
	})

	if len(got) != len(want) {
		t.Fatalf("visited %d ids, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("visit order %v, want %v", got, want)
		}
	}
}

func TestEntitySetAssignmentCopies(t *testing.T) {
	var s EntitySet
	s.Set(7)

	snapshot := s
	s.Set(8)

	if snapshot.Contains(8) {
		t.Fatalf("snapshot should not observe later mutation")
	}
	if !snapshot.Contains(7) {
		t.Fatalf("snapshot lost existing bit")
	}
}
