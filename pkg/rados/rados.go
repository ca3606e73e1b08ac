// Package rados defines the data model and contracts for radosmem, an
// in-process, snapshot-aware object store that reproduces the observable
// copy-on-write versioning, locking and consistency behavior of a clustered
// object store.
//
// The package contains only types and collaborator interfaces. The store
// engine itself lives in pkg/rados/memory; the ordered per-object key/value
// store (omap) contract lives in pkg/omap.
//
// Object Identity:
//
// Objects are addressed by a Locator, the pair (namespace, object id). Each
// Locator owns an ordered chain of immutable-once-frozen revisions; the
// newest live revision is the "head". Reads may target the head or an
// explicit snapshot id, writes always target the head and may fork a new
// revision when they cross a snapshot boundary (see SnapContext).
package rados

// Locator uniquely identifies one object's version chain within a pool.
//
// The zero namespace is the default namespace. Locator is a comparable
// value type and is used directly as a map key by the engine and the omap
// backends.
type Locator struct {
	// Namespace isolates objects sharing a pool. Objects with the same OID
	// in different namespaces are unrelated.
	Namespace string

	// OID is the object identifier within the namespace.
	OID string
}

func (l Locator) String() string {
	if l.Namespace == "" {
		return l.OID
	}
	return l.Namespace + "/" + l.OID
}

// SnapID identifies a snapshot generation. Snapshot ids are assigned from a
// pool-wide counter and are strictly increasing.
type SnapID uint64

const (
	// NoSnap is the sentinel read view meaning "the live head". A revision
	// whose snap id equals NoSnap is unversioned (only produced by rollback's
	// overwrite branch).
	NoSnap SnapID = 0xfffffffffffffffe

	// SnapHead is the sentinel clone id reported for the live head in
	// snapshot listings. It aliases NoSnap by construction.
	SnapHead SnapID = NoSnap
)

// SnapContext is the writer's view of the current snapshot generation: the
// highest snapshot id the writer is aware of (Seq) plus the explicit ids of
// the snapshots that exist, newest first.
//
// A write carrying a SnapContext whose Snaps contain ids greater than the
// head revision's snap id (and at most Seq) forces a copy-on-write fork:
// the crossed ids are frozen onto the outgoing head and a new head is
// cloned from it.
type SnapContext struct {
	// Seq is the highest snapshot id the writer has observed.
	Seq SnapID

	// Snaps holds the existing snapshot ids, ordered newest first.
	Snaps []SnapID
}

// Valid reports whether the context is well formed: every id must be at
// most Seq. The empty context is valid.
func (sc SnapContext) Valid() bool {
	for _, id := range sc.Snaps {
		if id > sc.Seq {
			return false
		}
	}
	return true
}

// Extent is a byte range [Offset, Offset+Length).
type Extent struct {
	Offset uint64
	Length uint64
}

// CloneInfo describes one revision in a snapshot listing.
type CloneInfo struct {
	// CloneID is the revision's snap id, or SnapHead for the live head.
	CloneID SnapID

	// Snaps are the explicit snapshot ids frozen onto this revision when a
	// later write forked past them.
	Snaps []SnapID

	// Overlap are the byte ranges still identical to the next-newer
	// revision. Empty for the head descriptor.
	Overlap []Extent

	// Size is the revision's byte length.
	Size uint64
}

// SnapSet is the result of a snapshot listing: the ordered clone
// descriptors (oldest first) optionally followed by a head descriptor.
type SnapSet struct {
	Seq    SnapID
	Clones []CloneInfo
}
