package store

import "time"

// Property names recognized in query filters. Drivers map them onto their
// native representation: datastore properties, decoded struct fields, and
// so on.
const (
	FieldCacheID   = "cache_id"
	FieldExpires   = "expires"
	FieldUnlimited = "unlimited"
	FieldTags      = "tags"
)

// Op is a filter operator. OpEq against FieldTags means array membership.
type Op string

const (
	OpEq Op = "="
	OpLt Op = "<"
	OpLe Op = "<="
	OpGe Op = ">="
)

// Entry is the persisted cache record. The struct tags cover every way an
// entry travels: datastore entity properties, and the msgpack/cbor blob
// encodings used by byte-oriented drivers. Content is never indexed.
type Entry struct {
	CacheID   string    `datastore:"cache_id" msgpack:"cache_id" cbor:"cache_id"`
	Created   time.Time `datastore:"created" msgpack:"created" cbor:"created"`
	Expires   time.Time `datastore:"expires" msgpack:"expires" cbor:"expires"`
	Unlimited bool      `datastore:"unlimited" msgpack:"unlimited" cbor:"unlimited"`
	Tags      []string  `datastore:"tags" msgpack:"tags" cbor:"tags"`
	Content   []byte    `datastore:"content,noindex" msgpack:"content" cbor:"content"`
}

// Filter is one property constraint. Value must match the property's type:
// string for FieldCacheID and FieldTags, time.Time for FieldExpires, bool
// for FieldUnlimited.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Query describes one filtered, kind-scoped lookup. Filters combine with
// AND. Zero Limit means unbounded; zero PageSize leaves the page size to
// the driver.
type Query struct {
	Kind     string
	Filters  []Filter
	Limit    int
	KeysOnly bool
	PageSize int
}

// Matches reports whether e satisfies every filter. Drivers without native
// query support evaluate filters client-side with it. A filter that cannot
// be evaluated (unknown field, wrong value type, unsupported operator)
// matches nothing, so a malformed query can never select entries for
// deletion.
func Matches(e Entry, filters []Filter) bool {
	for _, f := range filters {
		if !f.match(e) {
			return false
		}
	}
	return true
}

func (f Filter) match(e Entry) bool {
	switch f.Field {
	case FieldCacheID:
		want, ok := f.Value.(string)
		if !ok {
			return false
		}
		return cmpString(e.CacheID, want, f.Op)
	case FieldExpires:
		want, ok := f.Value.(time.Time)
		if !ok {
			return false
		}
		return cmpTime(e.Expires, want, f.Op)
	case FieldUnlimited:
		want, ok := f.Value.(bool)
		if !ok || f.Op != OpEq {
			return false
		}
		return e.Unlimited == want
	case FieldTags:
		want, ok := f.Value.(string)
		if !ok || f.Op != OpEq {
			return false
		}
		for _, t := range e.Tags {
			if t == want {
				return true
			}
		}
		return false
	}
	return false
}

func cmpString(have, want string, op Op) bool {
	switch op {
	case OpEq:
		return have == want
	case OpLt:
		return have < want
	case OpLe:
		return have <= want
	case OpGe:
		return have >= want
	}
	return false
}

func cmpTime(have, want time.Time, op Op) bool {
	switch op {
	case OpEq:
		return have.Equal(want)
	case OpLt:
		return have.Before(want)
	case OpLe:
		return !have.After(want)
	case OpGe:
		return !have.Before(want)
	}
	return false
}
