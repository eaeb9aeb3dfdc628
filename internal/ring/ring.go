// Package ring implements the COORDINATOR's consistent hash ring: the
// data-placement engine that decides which STORE owns a given key.
//
// Big idea:
//
// Plain hash(key) % serverCount remaps almost every key whenever a server
// joins or leaves. Consistent hashing places both servers and keys on a
// fixed-size circular index space; a key belongs to the first server found
// walking the ring in a fixed direction from the key's own position. Adding
// or removing one server only disturbs the keys nearest to it.
//
// Virtual nodes give a physical server several positions on the ring
// (instead of one), smoothing out the uneven load a single hash position
// would otherwise produce.
package ring

import (
	"errors"
	"fmt"
	"sync"
)

// DefaultSize is the ring's slot-space modulus: large enough that hash
// collisions between independent servers/keys stay rare without needing
// open addressing.
const DefaultSize = 4_000_000

var (
	// ErrSlotCollision is returned when the computed hash for a new server
	// or key already occupies a slot — by any kind of occupant.
	ErrSlotCollision = errors.New("ring: slot collision")
	// ErrServerNotFound is returned by RemoveServer misses.
	ErrServerNotFound = errors.New("ring: server not found")
	// ErrKeyNotFound is returned by RemoveKey misses.
	ErrKeyNotFound = errors.New("ring: key not found")
	// ErrEmptyRing is returned by AddKey when no server has been added yet.
	ErrEmptyRing = errors.New("ring: no servers present")
)

// ServerInfo describes one SERVER slot — either a primary or one of its
// virtual replicas.
type ServerInfo struct {
	IP           string
	Port         int
	RangeStart   uint32
	RangeEnd     uint32
	VirtualNodes int  // only meaningful on the primary (ReplicaIndex == 0)
	IsVirtual    bool
	ReplicaIndex int // 0 for the primary, 1..VirtualNodes for replicas
}

// KeyInfo describes one KEY slot: the key string and the (ip, port) of the
// SERVER currently responsible for it.
type KeyInfo struct {
	Key  string
	IP   string
	Port int
}

// Ring is a fixed-width consistent hash ring. Safe for concurrent use.
type Ring struct {
	mu      sync.RWMutex
	size    uint32
	hash    HashFunc
	servers bstTree // authoritative server set, keyed by hash
	keys    map[uint32]*KeyInfo
}

// New creates an empty ring of the given size using fn to place elements.
func New(size uint32, fn HashFunc) *Ring {
	if size == 0 {
		size = DefaultSize
	}
	if fn == nil {
		fn = Jenkins
	}
	return &Ring{
		size: size,
		hash: fn,
		keys: make(map[uint32]*KeyInfo),
	}
}

func (r *Ring) reduce(s string) uint32 {
	return r.hash(s) % r.size
}

func (r *Ring) serverAddrHash(ip string, port int) uint32 {
	return r.reduce(fmt.Sprintf("%s-%d", ip, port))
}

func (r *Ring) virtualAddrHash(ip string, replica, port int) uint32 {
	return r.reduce(fmt.Sprintf("%s-%d-%d", ip, replica, port))
}

// occupied reports whether hash is already held by a server or a key.
func (r *Ring) occupied(hash uint32) bool {
	if _, ok := r.servers.get(hash); ok {
		return true
	}
	_, ok := r.keys[hash]
	return ok
}

// AddServer installs a server with virtualNodes additional replica slots.
// Fails with ErrSlotCollision if the primary's computed hash is already
// occupied. Replica collisions are skipped rather than failing the whole
// call: a virtual node that happens to collide just doesn't get placed,
// the primary still succeeds.
func (r *Ring) AddServer(ip string, port int, virtualNodes int) (*ServerInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := r.serverAddrHash(ip, port)
	if r.occupied(h) {
		return nil, fmt.Errorf("%w: server %s:%d", ErrSlotCollision, ip, port)
	}

	info := &ServerInfo{
		IP:           ip,
		Port:         port,
		RangeStart:   h,
		VirtualNodes: virtualNodes,
	}
	r.servers.insert(h, info)
	placed := []*ServerInfo{info}

	for i := 1; i <= virtualNodes; i++ {
		vh := r.virtualAddrHash(ip, i, port)
		if r.occupied(vh) {
			continue
		}
		v := &ServerInfo{
			IP:           ip,
			Port:         port,
			RangeStart:   vh,
			IsVirtual:    true,
			ReplicaIndex: i,
		}
		r.servers.insert(vh, v)
		placed = append(placed, v)
	}

	r.updateRanges()
	if r.servers.size > 1 {
		for _, p := range placed {
			r.remapKeysOnAdd(p)
		}
	}

	return info, nil
}

// RemoveServer removes a primary server and cascades removal of its
// virtual replicas. Keys it owned are remapped to the immediate
// predecessor server found walking the ring counterclockwise.
func (r *Ring) RemoveServer(ip string, port int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := r.serverAddrHash(ip, port)
	info, ok := r.servers.get(h)
	if !ok || info.IsVirtual || info.IP != ip || info.Port != port {
		return fmt.Errorf("%w: %s:%d", ErrServerNotFound, ip, port)
	}

	r.servers.delete(h)
	for i := 1; i <= info.VirtualNodes; i++ {
		vh := r.virtualAddrHash(ip, i, port)
		// A replica skipped on collision was never placed; whatever sits
		// at its hash belongs to another server and stays.
		if v, ok := r.servers.get(vh); ok && v.IsVirtual && v.IP == ip && v.Port == port && v.ReplicaIndex == i {
			r.servers.delete(vh)
		}
	}

	r.updateRanges()
	r.remapKeysOnRemove(ip, port)
	return nil
}

// updateRanges recomputes every server's [RangeStart, RangeEnd] so that
// ranges exactly tile [0, size) in ring order. Uses the BST's in-order
// traversal (already sorted) rather than an O(size) scan of the slot
// space for each server.
func (r *Ring) updateRanges() {
	sorted := r.servers.inOrder()
	n := len(sorted)
	if n == 0 {
		return
	}
	for i, h := range sorted {
		info, _ := r.servers.get(h)
		next := sorted[(i+1)%n]
		info.RangeEnd = (next + r.size - 1) % r.size
	}
}

// inRange reports whether hash falls within [start, end], treating the
// ring as circular (start > end means the range wraps past size-1 to 0).
func inRange(hash, start, end uint32) bool {
	if start <= end {
		return hash >= start && hash <= end
	}
	return hash >= start || hash <= end
}

// remapKeysOnAdd reassigns any existing key whose hash now falls inside
// the newly inserted server's range.
func (r *Ring) remapKeysOnAdd(info *ServerInfo) {
	for h, k := range r.keys {
		if inRange(h, info.RangeStart, info.RangeEnd) {
			k.IP = info.IP
			k.Port = info.Port
		}
	}
}

// remapKeysOnRemove reassigns every key that was owned by (ip, port) to
// whatever server now owns its slot, found the same way a freshly added
// key would be: walking counterclockwise from the key's own hash.
func (r *Ring) remapKeysOnRemove(ip string, port int) {
	for h, k := range r.keys {
		if k.IP != ip || k.Port != port {
			continue
		}
		if owner, ok := r.findOwner(h); ok {
			k.IP = owner.IP
			k.Port = owner.Port
		}
	}
}

// findOwner walks counterclockwise from hash (inclusive) until it finds a
// SERVER slot, wrapping at 0. Returns false if the ring has no servers.
func (r *Ring) findOwner(hash uint32) (*ServerInfo, bool) {
	if r.servers.size == 0 {
		return nil, false
	}
	i := hash
	for n := uint32(0); n < r.size; n++ {
		if info, ok := r.servers.get(i); ok {
			return info, true
		}
		if i == 0 {
			i = r.size - 1
		} else {
			i--
		}
	}
	return nil, false
}

// AddKey places a key on the ring and records the server currently
// responsible for it. Fails if the ring is empty or the key's slot is
// already occupied by anything — another key or a server.
func (r *Ring) AddKey(key string) (*KeyInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.servers.size == 0 {
		return nil, ErrEmptyRing
	}

	h := r.reduce(key)
	if r.occupied(h) {
		return nil, fmt.Errorf("%w: key %q", ErrSlotCollision, key)
	}

	owner, ok := r.findOwner(h)
	if !ok {
		return nil, ErrEmptyRing
	}

	info := &KeyInfo{Key: key, IP: owner.IP, Port: owner.Port}
	r.keys[h] = info
	cp := *info
	return &cp, nil
}

// RemoveKey deletes a key slot.
func (r *Ring) RemoveKey(key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := r.reduce(key)
	if _, ok := r.keys[h]; !ok {
		return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
	}
	delete(r.keys, h)
	return nil
}

// LookupKey returns the KeyInfo for key, if present.
func (r *Ring) LookupKey(key string) (*KeyInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	k, ok := r.keys[r.reduce(key)]
	if !ok {
		return nil, false
	}
	cp := *k
	return &cp, true
}

// LookupServer returns the ServerInfo for a primary server at (ip, port).
func (r *Ring) LookupServer(ip string, port int) (*ServerInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	info, ok := r.servers.get(r.serverAddrHash(ip, port))
	if !ok {
		return nil, false
	}
	cp := *info
	return &cp, true
}

// NumberOfServers returns the total SERVER slot count, including virtuals.
func (r *Ring) NumberOfServers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.servers.size
}

// Servers returns every SERVER slot in ascending hash order, primarily for
// tests that assert range tiling.
func (r *Ring) Servers() []ServerInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	hashes := r.servers.inOrder()
	out := make([]ServerInfo, 0, len(hashes))
	for _, h := range hashes {
		info, _ := r.servers.get(h)
		out = append(out, *info)
	}
	return out
}

// Size returns the ring's slot-space modulus.
func (r *Ring) Size() uint32 {
	return r.size
}
