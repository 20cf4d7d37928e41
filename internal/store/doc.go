// Package store holds the client-side caches of backend collections.
//
// Each domain store (Members, Memberships, Products, Email) composes a
// Collection: a paginated, searchable list cache with optimistic updates
// after writes. Stores never share entities; cross-store consistency comes
// from refetching. Every call goes through a connection.HTTPClient, so an
// expired session is handled once, by its guard.
//
// List requests carry a per-collection sequence number. A response that
// arrives after a newer request was issued is dropped whole.
package store
