// Package lists keeps a user's named movie lists consistent with the document store.
//
// Three components share one pair of store collaborators:
//
//   - [Store] : CRUD over a user's lists, with a two-phase cascade delete
//   - [Membership] : whether a movie is present in one list, or in each of a user's lists
//   - [Service] : the single entry point for list and item mutations
//
// Every mutation made through [Service] hits the store before it returns, and front ends re-read
// lists and membership afterwards instead of patching local copies.
//
// # Duplicates
//
// [Service.AddMovieToList] checks for an existing item before writing. Two concurrent adds of the
// same movie can both pass that check, so the store keys each item by the composite of user, list
// and movie ([shared.ItemID]) and rejects the second insert with [shared.ErrDuplicateItem].
//
// # Cascade delete
//
// [Store.DeleteList] deletes every item of the list concurrently, waits for all of them, and only
// then deletes the list document. If any item deletion fails the list is left in place. The two
// phases are not atomic: an interruption between them leaves an empty list behind.
//
// # Membership
//
// [Membership.Compute] probes lists concurrently, bounded by Options.MembershipConcurrency.
// Probe failures are logged and reported as absent, so false is not a durable guarantee.
package lists
