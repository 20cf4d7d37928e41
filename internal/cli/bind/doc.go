// Package bind connects interactive input to stores.
//
// Stores never debounce; every search input goes through SearchInput,
// which waits for a quiet period before asking the store to refetch.
package bind
