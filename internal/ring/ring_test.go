package ring

import "testing"

func small(size uint32) *Ring {
	return New(size, DJB2)
}

func TestAddKeyOwnershipMatchesLookup(t *testing.T) {
	r := small(10007)
	if _, err := r.AddServer("10.0.0.1", 9000, 0); err != nil {
		t.Fatalf("AddServer: %v", err)
	}
	if _, err := r.AddServer("10.0.0.2", 9000, 0); err != nil {
		t.Fatalf("AddServer: %v", err)
	}

	info, err := r.AddKey("user:42")
	if err != nil {
		t.Fatalf("AddKey: %v", err)
	}

	got, ok := r.LookupKey("user:42")
	if !ok {
		t.Fatal("expected key to be present after AddKey")
	}
	if got.IP != info.IP || got.Port != info.Port {
		t.Fatalf("LookupKey = %+v, want %+v", got, info)
	}
}

func TestRangesTileTheRing(t *testing.T) {
	r := small(10007)
	for i, port := range []int{9000, 9001, 9002} {
		if _, err := r.AddServer("10.0.0.1", port+i, 3); err != nil {
			t.Fatalf("AddServer: %v", err)
		}
	}

	servers := r.Servers()
	if len(servers) == 0 {
		t.Fatal("expected servers")
	}

	var covered uint32
	for _, s := range servers {
		if s.RangeStart <= s.RangeEnd {
			covered += s.RangeEnd - s.RangeStart + 1
		} else {
			covered += (r.Size() - s.RangeStart) + (s.RangeEnd + 1)
		}
	}
	if covered != r.Size() {
		t.Fatalf("ranges cover %d slots, want %d (full ring)", covered, r.Size())
	}
}

func TestRemoveServerIsIdempotentFailure(t *testing.T) {
	r := small(10007)
	r.AddServer("10.0.0.1", 9000, 0)

	if err := r.RemoveServer("10.0.0.1", 9000); err != nil {
		t.Fatalf("first RemoveServer: %v", err)
	}
	if err := r.RemoveServer("10.0.0.1", 9000); err == nil {
		t.Fatal("second RemoveServer on the same address should fail")
	}
}

func TestAddKeyCollidingWithServerSlotFails(t *testing.T) {
	// A constant hash puts every server and every key on the same slot,
	// making the collision deterministic instead of searched for.
	r := New(97, func(string) uint32 { return 42 })
	if _, err := r.AddServer("10.0.0.1", 9000, 0); err != nil {
		t.Fatalf("AddServer: %v", err)
	}

	if _, err := r.AddKey("whatever"); err == nil {
		t.Fatal("expected AddKey to fail when the slot already holds a server")
	}
}

func TestVirtualNodeCascadeRemoval(t *testing.T) {
	r := small(10007)
	r.AddServer("10.0.0.1", 9000, 5)

	before := r.NumberOfServers()
	if before != 6 {
		t.Fatalf("NumberOfServers = %d, want 6 (1 primary + 5 virtual)", before)
	}

	if err := r.RemoveServer("10.0.0.1", 9000); err != nil {
		t.Fatalf("RemoveServer: %v", err)
	}
	if r.NumberOfServers() != 0 {
		t.Fatalf("NumberOfServers after remove = %d, want 0 (virtuals must cascade)", r.NumberOfServers())
	}
}

func TestAddKeyOnEmptyRingFails(t *testing.T) {
	r := small(97)
	if _, err := r.AddKey("anything"); err == nil {
		t.Fatal("expected AddKey to fail on an empty ring")
	}
}

func TestKeyRemappedWhenOwningServerRemoved(t *testing.T) {
	r := small(10007)
	r.AddServer("10.0.0.1", 9000, 0)
	r.AddServer("10.0.0.2", 9000, 0)

	info, err := r.AddKey("session:1")
	if err != nil {
		t.Fatalf("AddKey: %v", err)
	}

	if err := r.RemoveServer(info.IP, info.Port); err != nil {
		t.Fatalf("RemoveServer: %v", err)
	}

	remapped, ok := r.LookupKey("session:1")
	if !ok {
		t.Fatal("key should survive owning server removal")
	}
	if remapped.IP == info.IP && remapped.Port == info.Port {
		t.Fatal("key should have been remapped off the removed server")
	}
}

func TestDuplicateServerAddFails(t *testing.T) {
	r := small(10007)
	if _, err := r.AddServer("10.0.0.1", 9000, 0); err != nil {
		t.Fatalf("AddServer: %v", err)
	}
	if _, err := r.AddServer("10.0.0.1", 9000, 0); err == nil {
		t.Fatal("expected duplicate AddServer to fail")
	}
}
