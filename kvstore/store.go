// Package kvstore defines the key-value store the session and lot state
// live in. It mirrors browser localStorage: string keys, string values,
// enumerable keys, persistence decided by the implementation.
package kvstore

import (
	"sort"
	"strings"
)

// Store is a string key-value store.
type Store interface {
	// Get returns the value for key and whether it was present
	Get(key string) (string, bool)

	// Set stores value under key
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error

	// Keys lists every key currently stored
	Keys() []string
}

// KeysWithPrefix returns the sorted keys of store that start with prefix.
func KeysWithPrefix(store Store, prefix string) []string {
	keys := make([]string, 0)
	for _, k := range store.Keys() {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// RemovePrefix deletes every key starting with prefix and returns how many
// were removed.
func RemovePrefix(store Store, prefix string) (int, error) {
	removed := 0
	for _, k := range KeysWithPrefix(store, prefix) {
		if err := store.Remove(k); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}
