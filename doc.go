// Package kindcache implements a framework-facing cache backend on top of a
// schema-less document store that offers nothing beyond key lookup and
// filtered, paginated queries. Replace-on-set, TTL expiry and tag-based
// invalidation are all expressed with those primitives; the store
// contributes no native expiry, tagging or transactions.
//
// Components:
//   - store.Store: the document-store boundary (insert, single/batched
//     delete, filtered queries with page-wise cursors). Drivers under
//     store/: memory, redis, bigcache, datastore.
//   - compress.Codec: payload transform gated by compression level
//     (0 = off, 1..9 = zlib).
//   - Backend: the cache contract (Set/Get/Has/Remove, FlushByTag,
//     IdentifiersByTag, CollectGarbage, Flush).
//
// Keys:
//
//	<prefix>:<identifier> - one namespace per backend; backends sharing an
//	entity kind are isolated by prefix, provided no prefix extends another
//	(see Options.Prefix).
//
// Consistency: on stores without atomic replace, Set is remove-then-insert
// and a reader can miss in the window between; bulk deletes commit page by
// page and are not atomic as a whole. The Backend docs state the exact
// guarantees per operation.
package kindcache
