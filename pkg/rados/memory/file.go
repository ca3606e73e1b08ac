package memory

import (
	"sync"
	"time"

	"github.com/marmos91/radosmem/pkg/rados"
)

// File is one revision of an object: a byte buffer plus the version and
// snapshot metadata that drives resolution. Once a newer revision has been
// forked past it, a File is frozen; no mutation path ever touches a
// non-head revision again.
//
// Each File carries its own lock guarding data, mtime, overlap and the
// per-revision counters. The pool's existence lock is always acquired
// before a File lock, and a verb never holds two File locks at once; this
// lets readers of an older snapshot proceed while a new head is forked.
type File struct {
	// mu guards this revision's content and counters.
	mu sync.RWMutex

	// data is the revision's byte content.
	data []byte

	// exists is false once the head has been removed. Historical revisions
	// of a removed head stay in the chain for snapshot reads.
	exists bool

	// snapID is the snapshot generation at creation: the SnapContext.Seq
	// the revision was written under. NoSnap marks an unversioned revision
	// (rollback's overwrite branch).
	snapID rados.SnapID

	// snaps are the explicit snapshot ids frozen onto this revision when a
	// later write forked past them.
	snaps []rados.SnapID

	// snapOverlap tracks the byte ranges still identical to the next-older
	// revision. Initialized to the whole clone length on fork; only ever
	// shrinks afterwards.
	snapOverlap rados.IntervalSet

	// mtime is the revision's last modification time.
	mtime time.Time

	// objver counts successful mutations against the chain; copy-on-write
	// carries it forward instead of resetting it.
	objver uint64

	// epoch is the pool epoch at this revision's last mutation.
	epoch uint64
}

// cloneFrom copies the source revision's metadata into a fresh revision
// with an independent data buffer. The caller fixes up snapID, overlap and
// mtime afterwards.
func cloneFrom(src *File) *File {
	return &File{
		data:   cloneBytes(src.data),
		exists: src.exists,
		snapID: src.snapID,
		snaps:  append([]rados.SnapID(nil), src.snaps...),
		mtime:  src.mtime,
		objver: src.objver,
		epoch:  src.epoch,
	}
}

// ensureLength zero-extends buf to at least length bytes.
func ensureLength(buf []byte, length uint64) []byte {
	if length > uint64(len(buf)) {
		buf = append(buf, make([]byte, length-uint64(len(buf)))...)
	}
	return buf
}

// clipIO clips [off, off+length) to the buffer bounds and returns the
// readable length.
func clipIO(off, length, bufLen uint64) uint64 {
	if off >= bufLen {
		return 0
	}
	if off+length > bufLen {
		return bufLen - off
	}
	return length
}

// sliceRange returns data[off:off+length], nil when the clipped length is
// zero (off may lie past the end in that case).
func sliceRange(data []byte, off, length uint64) []byte {
	if length == 0 {
		return nil
	}
	return data[off : off+length]
}

// cloneBytes deep-copies b so internal buffers can never be mutated through
// data returned to callers.
func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
