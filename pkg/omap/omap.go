// Package omap defines the ordered key→bytes store attached to each object,
// separate from its byte content. Every object additionally carries one
// header blob.
//
// Two backends implement the contract: an in-memory map (pkg/omap/memory)
// and an embedded BadgerDB running in in-memory mode (pkg/omap/badger).
// Both must pass the shared conformance suite in pkg/omap/omaptest.
//
// Ordering and pagination:
//
// Keys are ordered lexicographically by byte value. Listing starts strictly
// after the start-after key, filters by prefix while scanning, and stops
// after max entries have matched. The returned "more" flag reports whether
// any keys remain beyond the last scanned position, whether or not they
// would match the prefix; this mirrors the production cluster's pagination
// contract and is deliberate.
package omap

import "github.com/marmos91/radosmem/pkg/rados"

// Entry is one key/value pair in listing order.
type Entry struct {
	Key   string
	Value []byte
}

// Store is the per-pool omap backend. Implementations must be safe for
// concurrent use; the engine additionally serializes mutations per object
// under its own locks.
//
// Values handed in and out must be independent copies: mutating a caller's
// slice after Set, or a returned slice, must not affect stored state.
type Store interface {
	// List returns up to max entries with keys strictly greater than
	// startAfter that carry the given prefix, plus a flag reporting whether
	// any keys remain beyond the scan position. max of 0 returns no
	// entries. An object with no omap state lists empty with more=false.
	List(loc rados.Locator, startAfter, prefix string, max uint64) ([]Entry, bool, error)

	// GetByKeys returns the stored values for the requested keys; missing
	// keys are absent from the result.
	GetByKeys(loc rados.Locator, keys []string) (map[string][]byte, error)

	// Set inserts or replaces the given key/value pairs.
	Set(loc rados.Locator, vals map[string][]byte) error

	// RemoveKeys deletes the given keys; missing keys are ignored.
	RemoveKeys(loc rados.Locator, keys []string) error

	// RemoveRange deletes keys in the half-open range [begin, end).
	RemoveRange(loc rados.Locator, begin, end string) error

	// Clear deletes every key but leaves the header untouched.
	Clear(loc rados.Locator) error

	// Header returns the object's header blob, empty if never set.
	Header(loc rados.Locator) ([]byte, error)

	// SetHeader replaces the object's header blob.
	SetHeader(loc rados.Locator, header []byte) error

	// Drop erases every key and the header for the locator. Called by the
	// engine when an object's revision chain is fully erased.
	Drop(loc rados.Locator) error

	// Close releases backend resources.
	Close() error
}
