// Package repositories implements SQLite persistence for the document hierarchy.
//
// Each repository handles CRUD operations with atomic sequence generation for stable ordering.
// Every method takes a [context.Context] and scopes reads and writes to the owning user, so a
// document owned by another user is indistinguishable from a missing one.
//
// Key Implementations:
//   - [UserRepository] : user profiles with email-based lookups
//   - [ListRepository] : a user's named lists, ordered by creation sequence
//   - [ListItemRepository] : movies inside a list, keyed by a deterministic composite ID
//
// Sequence numbers provide a monotonic, store-assigned creation order independent of UUIDs and
// wall-clock timestamps. The [NextSequence] function atomically increments per-table sequence
// counters in dedicated sequence tables.
//
// Constraint violations are translated to the sentinel errors in [shared]: a unique or primary key
// violation on list_items becomes [shared.ErrDuplicateItem] and a foreign key violation becomes
// [shared.ErrListNotFound].
package repositories
