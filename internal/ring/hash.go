package ring

// HashFunc reduces an arbitrary string into the ring's index space.
// Both variants below return a full 32-bit hash; Ring.reduce takes it
// modulo the ring size to get a valid slot index.
type HashFunc func(key string) uint32

// DJB2 is Dan Bernstein's string hash — fast, simple, good enough
// distribution for a demo ring.
func DJB2(key string) uint32 {
	var hash uint32 = 5381
	for i := 0; i < len(key); i++ {
		hash = ((hash << 5) + hash) + uint32(key[i])
	}
	return hash
}

// Jenkins is Bob Jenkins' one-at-a-time mixer. Slightly better avalanche
// behaviour than DJB2 for short keys, which is why it's the ring's default.
func Jenkins(key string) uint32 {
	var hash uint32 = 1
	for i := 0; i < len(key); i++ {
		hash += uint32(key[i])
		hash += hash << 10
		hash ^= hash >> 6
	}
	hash += hash << 3
	hash ^= hash >> 11
	hash += hash << 15
	return hash
}
