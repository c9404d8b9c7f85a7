package kindcache

import "strings"

// keySeparator joins the namespace prefix and the logical identifier inside
// a fully-qualified cache key.
const keySeparator = ":"

// entryKey builds the fully-qualified key for a logical identifier.
// Composition is deterministic: the same (prefix, id) pair always yields
// the same key, which is what makes Set-then-Get line up.
func entryKey(prefix, id string) string {
	return prefix + keySeparator + id
}

// logicalID strips the namespace from a fully-qualified key. ok is false
// when the key belongs to a different namespace.
func logicalID(prefix, key string) (string, bool) {
	head := prefix + keySeparator
	if !strings.HasPrefix(key, head) {
		return "", false
	}
	return key[len(head):], true
}

// keyRange returns the half-open interval [lo, hi) covering every key of
// the namespace and nothing else. hi is the shortest lexicographic
// successor of lo: the last byte below 0xFF is incremented and the tail
// dropped. hi == "" means no finite upper bound exists and the caller must
// omit the upper filter.
func keyRange(prefix string) (lo, hi string) {
	lo = prefix + keySeparator
	b := []byte(lo)
	for i := len(b) - 1; i >= 0; i-- {
		if b[i] < 0xFF {
			b[i]++
			return lo, string(b[:i+1])
		}
	}
	return lo, ""
}
